package fragment

import (
	"strconv"

	"github.com/serroba/pdfcraft/internal/dom"
	"golang.org/x/net/html"
)

// FootnoteClass marks footnote bodies; numbering counts them.
const FootnoteClass = "footnote"

// Footnote is a numbered reference at the cursor plus its note at the end
// of the document.
type Footnote struct {
	N    int    `json:"n"`
	Text string `json:"text"`
}

func (Footnote) Kind() Kind           { return KindFootnote }
func (Footnote) Placement() Placement { return AtCursor }

func (f Footnote) Render() []*html.Node {
	return FootnoteRef{N: f.N}.Render()
}

func (f Footnote) Parts() []Fragment {
	return []Fragment{FootnoteRef{N: f.N}, FootnoteNote(f)}
}

// FootnoteRef is the superscript marker in the running text.
type FootnoteRef struct {
	N int `json:"n"`
}

func (FootnoteRef) Kind() Kind           { return KindFootnoteRef }
func (FootnoteRef) Placement() Placement { return AtCursor }

func (r FootnoteRef) Render() []*html.Node {
	return []*html.Node{element("sup", "footnote-ref", dom.NewStyle(
		"color", "#0078d4",
		"cursor", "pointer",
	), dom.Text(strconv.Itoa(r.N)))}
}

// FootnoteNote is the editable footnote body.
type FootnoteNote struct {
	N    int    `json:"n"`
	Text string `json:"text"`
}

func (FootnoteNote) Kind() Kind           { return KindFootnoteNote }
func (FootnoteNote) Placement() Placement { return Append }

func (n FootnoteNote) Render() []*html.Node {
	return []*html.Node{editable(element("div", FootnoteClass, dom.NewStyle(
		"border-top", "1px solid #ccc",
		"padding-top", "6pt",
		"margin-top", "12pt",
		"font-size", "9pt",
	),
		dom.Element("sup", dom.Style{}, dom.Text(strconv.Itoa(n.N))),
		dom.Text(" "+orDefault(n.Text, "Footnote text here")),
	))}
}

var defaultContents = []string{"Introduction", "Main Content", "Conclusion"}

// TableOfContents lists the document's headings.
type TableOfContents struct {
	Entries []string `json:"entries"`
}

func (TableOfContents) Kind() Kind           { return KindTableOfContents }
func (TableOfContents) Placement() Placement { return Prepend }

func (t TableOfContents) Render() []*html.Node {
	entries := t.Entries
	if len(entries) == 0 {
		entries = defaultContents
	}

	list := dom.Element("div", dom.NewStyle("margin-left", "24pt"))
	for i, e := range entries {
		list.AppendChild(dom.Element("div", dom.NewStyle("margin-bottom", "6pt"),
			dom.Text(strconv.Itoa(i+1)+". "+e)))
	}

	return []*html.Node{element("div", "table-of-contents", dom.NewStyle("margin-bottom", "24pt"),
		heading("Table of Contents"), list)}
}

var defaultSources = []string{
	"Author, A. (Year). Title of work. Publisher.",
	"Author, B. (Year). Title of article. Journal Name, Volume(Issue), pages.",
}

// Bibliography is a list of sources appended to the document.
type Bibliography struct {
	Entries []string `json:"entries"`
}

func (Bibliography) Kind() Kind           { return KindBibliography }
func (Bibliography) Placement() Placement { return Append }

func (b Bibliography) Render() []*html.Node {
	entries := b.Entries
	if len(entries) == 0 {
		entries = defaultSources
	}

	list := dom.Element("div", dom.NewStyle("margin-left", "24pt"))
	for _, e := range entries {
		list.AppendChild(dom.Element("div", dom.NewStyle("margin-bottom", "12pt"), dom.Text(e)))
	}

	return []*html.Node{element("div", "bibliography", dom.NewStyle("margin-top", "24pt"),
		heading("Bibliography"), list)}
}

func heading(text string) *html.Node {
	return dom.Element("h2", dom.NewStyle(
		"font-weight", "bold",
		"margin-bottom", "12pt",
		"font-size", "16pt",
		"color", "#2F5496",
	), dom.Text(text))
}

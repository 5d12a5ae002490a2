package fragment

import (
	"strconv"
	"time"

	"github.com/serroba/pdfcraft/internal/dom"
	"golang.org/x/net/html"
)

// DateTimeLayout formats inserted timestamps.
const DateTimeLayout = "01/02/2006 15:04:05"

// Symbol is a glyph rendered at a point size.
type Symbol struct {
	Glyph    string `json:"glyph"`
	FontSize int    `json:"fontSize"`
}

func (Symbol) Kind() Kind           { return KindSymbol }
func (Symbol) Placement() Placement { return AtCursor }

func (s Symbol) Render() []*html.Node {
	var st dom.Style
	if s.FontSize > 0 {
		st = dom.NewStyle("font-size", strconv.Itoa(s.FontSize)+"pt")
	}

	return []*html.Node{dom.Element("span", st, dom.Text(s.Glyph))}
}

// DateTime is the insertion time as text.
type DateTime struct {
	At time.Time `json:"at"`
}

func (DateTime) Kind() Kind           { return KindDateTime }
func (DateTime) Placement() Placement { return AtCursor }

func (d DateTime) Render() []*html.Node {
	at := d.At
	if at.IsZero() {
		at = time.Now()
	}

	return []*html.Node{element("span", "date-time", dom.Style{}, dom.Text(at.Format(DateTimeLayout)))}
}

// PageNumber is a small "Page N" label.
type PageNumber struct {
	N int `json:"n"`
}

func (PageNumber) Kind() Kind           { return KindPageNumber }
func (PageNumber) Placement() Placement { return AtCursor }

func (p PageNumber) Render() []*html.Node {
	n := max(p.N, 1)

	return []*html.Node{element("span", "page-number", dom.NewStyle("font-size", "10pt"),
		dom.Text("Page "+strconv.Itoa(n)))}
}

// Citation is an inline source reference.
type Citation struct {
	Text string `json:"text"`
}

func (Citation) Kind() Kind           { return KindCitation }
func (Citation) Placement() Placement { return AtCursor }

func (c Citation) Render() []*html.Node {
	return []*html.Node{element("span", "citation", dom.NewStyle("color", "#0078d4"),
		dom.Text(orDefault(c.Text, "(Author, Year)")))}
}

package session

import (
	"errors"
	"strings"

	"github.com/serroba/pdfcraft/internal/dom"
	"golang.org/x/net/html"
)

// Errors returned by style and theme actions.
var (
	ErrUnknownStyle = errors.New("unknown paragraph style")
	ErrUnknownTheme = errors.New("unknown theme")
)

// ParagraphStyle is one entry of the style gallery.
type ParagraphStyle struct {
	Name       string `json:"name"`
	Class      string `json:"class"`
	FontSize   string `json:"fontSize"`
	FontWeight string `json:"fontWeight"`
	Color      string `json:"color"`
}

var paragraphStyles = []ParagraphStyle{
	{"Normal", "normal-text", "11pt", "400", "#000000"},
	{"No Spacing", "no-spacing", "11pt", "400", "#000000"},
	{"Heading 1", "heading-1", "16pt", "700", "#2F5496"},
	{"Heading 2", "heading-2", "13pt", "700", "#2F5496"},
	{"Heading 3", "heading-3", "12pt", "700", "#2F5496"},
	{"Title", "title-text", "28pt", "700", "#2F5496"},
	{"Subtitle", "subtitle-text", "11pt", "400", "#666666"},
	{"Subtle Emphasis", "subtle-emphasis", "11pt", "400", "#666666"},
	{"Emphasis", "emphasis", "11pt", "400", "#2F5496"},
	{"Intense Emphasis", "intense-emphasis", "11pt", "700", "#2F5496"},
	{"Strong", "strong", "11pt", "700", "#000000"},
	{"Quote", "quote", "11pt", "400", "#666666"},
	{"Intense Quote", "intense-quote", "11pt", "700", "#2F5496"},
}

// ParagraphStyles returns the style gallery.
func ParagraphStyles() []ParagraphStyle {
	return append([]ParagraphStyle(nil), paragraphStyles...)
}

// lookupStyle matches a style by display name or class, ignoring case.
func lookupStyle(name string) (ParagraphStyle, bool) {
	name = strings.TrimSpace(name)

	for _, st := range paragraphStyles {
		if strings.EqualFold(st.Name, name) || strings.EqualFold(st.Class, name) {
			return st, true
		}
	}

	return ParagraphStyle{}, false
}

// element builds the block holding styled content. Empty blocks get
// placeholder text.
func (p ParagraphStyle) element(empty bool) *html.Node {
	st := dom.NewStyle(
		"font-size", p.FontSize,
		"font-weight", p.FontWeight,
		"color", p.Color,
		"margin-bottom", "12pt",
	)

	if strings.HasPrefix(p.Name, "Heading") {
		st.Set("margin-top", "18pt")
	}

	div := dom.Element("div", st)
	dom.SetAttr(div, "class", p.Class)

	if empty {
		placeholder := p.Name + " text"
		if p.Name == "Normal" {
			placeholder = "Type here..."
		}

		div.AppendChild(dom.Text(placeholder))
	}

	return div
}

// Theme is a named colour palette. The first colour recolours headings.
type Theme struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Colors []string `json:"colors"`
}

var themes = []Theme{
	{"office", "Office", []string{"#0078D4", "#106EBE", "#005A9E", "#004578", "#003966", "#FFB900", "#D83B01", "#B50E0E"}},
	{"colorful", "Colorful", []string{"#E74C3C", "#3498DB", "#2ECC71", "#F39C12", "#9B59B6", "#1ABC9C", "#34495E", "#95A5A6"}},
	{"blue", "Blue", []string{"#1F4E79", "#4472C4", "#70AD47", "#FFC000", "#C55A11", "#843C0C", "#A5A5A5", "#70AD47"}},
	{"blue-warm", "Blue Warm", []string{"#0F4C75", "#3282B8", "#BBE1FA", "#1B262C", "#0F3460", "#533483", "#7209B7", "#A663CC"}},
	{"gray", "Gray", []string{"#595959", "#767171", "#A5A5A5", "#D6D6D6", "#E7E6E6", "#F2F2F2", "#FAFAFA", "#FFFFFF"}},
}

// Themes returns the theme gallery.
func Themes() []Theme {
	return append([]Theme(nil), themes...)
}

// themeColor returns the primary colour of a theme, or "" when unknown.
func themeColor(id string) string {
	for _, t := range themes {
		if t.ID == id {
			return t.Colors[0]
		}
	}

	return ""
}

// headingSelector matches the blocks a theme recolours.
const headingSelector = ".heading-1, .heading-2, .heading-3"

// comment builds the highlight span that carries a review comment.
func comment(text string) *html.Node {
	span := dom.Element("span", dom.NewStyle(
		"background-color", "#ffeb3b",
		"position", "relative",
		"cursor", "help",
	))

	dom.SetAttr(span, "title", text)
	dom.SetAttr(span, "class", "comment-highlight")

	return span
}

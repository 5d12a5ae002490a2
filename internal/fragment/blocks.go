package fragment

import (
	"fmt"

	"github.com/serroba/pdfcraft/internal/dom"
	"golang.org/x/net/html"
)

// MaxTableSize bounds rows and columns of an inserted table.
const MaxTableSize = 50

const nbsp = "\u00a0"

func element(tag, class string, st dom.Style, children ...*html.Node) *html.Node {
	n := dom.Element(tag, st, children...)
	if class != "" {
		dom.SetAttr(n, "class", class)
	}

	return n
}

func editable(n *html.Node) *html.Node {
	dom.SetAttr(n, "contenteditable", "true")

	return n
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}

// Table is a grid of editable cells, each holding a non-breaking space.
type Table struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// NewTable validates the grid size.
func NewTable(rows, cols int) (Table, error) {
	if rows < 1 || cols < 1 || rows > MaxTableSize || cols > MaxTableSize {
		return Table{}, fmt.Errorf("%w: table %dx%d", ErrInvalidParam, rows, cols)
	}

	return Table{Rows: rows, Cols: cols}, nil
}

func (Table) Kind() Kind           { return KindTable }
func (Table) Placement() Placement { return AtCursor }

func (t Table) Render() []*html.Node {
	table := element("table", "editable-table", dom.NewStyle(
		"border-collapse", "collapse",
		"width", "100%",
		"border", "1px solid #000",
		"margin", "12pt 0",
	))
	body := dom.Element("tbody", dom.Style{})
	table.AppendChild(body)

	for range t.Rows {
		row := dom.Element("tr", dom.Style{})

		for range t.Cols {
			cell := dom.Element("td", dom.NewStyle(
				"border", "1px solid #000",
				"padding", "8px",
				"min-height", "20px",
				"min-width", "50px",
			), dom.Text(nbsp))
			row.AppendChild(editable(cell))
		}

		body.AppendChild(row)
	}

	return []*html.Node{table}
}

// PageBreak forces following content onto a new printed page.
type PageBreak struct{}

func (PageBreak) Kind() Kind           { return KindPageBreak }
func (PageBreak) Placement() Placement { return Append }

func (PageBreak) Render() []*html.Node {
	n := element("div", "page-break", dom.NewStyle(
		"page-break-before", "always",
		"height", "1px",
		"border-top", "1px dashed #ccc",
		"margin", "24pt 0",
	), dom.Text(nbsp))
	dom.SetAttr(n, "contenteditable", "false")

	return []*html.Node{n}
}

// BlankPage appends an empty page-sized block.
type BlankPage struct{}

func (BlankPage) Kind() Kind           { return KindBlankPage }
func (BlankPage) Placement() Placement { return Append }

func (BlankPage) Render() []*html.Node {
	return []*html.Node{element("div", "blank-page", dom.NewStyle(
		"page-break-before", "always",
		"height", "11in",
	), dom.Text(nbsp))}
}

// Header is an editable banner placed at the top of the document.
type Header struct {
	Text string `json:"text"`
}

func (Header) Kind() Kind           { return KindHeader }
func (Header) Placement() Placement { return Prepend }

func (h Header) Render() []*html.Node {
	return []*html.Node{editable(element("div", "document-header", dom.NewStyle(
		"border-bottom", "1px solid #ccc",
		"padding-bottom", "12pt",
		"margin-bottom", "24pt",
		"text-align", "center",
	), dom.Text(orDefault(h.Text, "Header Text - Click to edit"))))}
}

// Footer is an editable banner placed at the bottom of the document.
type Footer struct {
	Text string `json:"text"`
}

func (Footer) Kind() Kind           { return KindFooter }
func (Footer) Placement() Placement { return Append }

func (f Footer) Render() []*html.Node {
	return []*html.Node{editable(element("div", "document-footer", dom.NewStyle(
		"border-top", "1px solid #ccc",
		"padding-top", "12pt",
		"margin-top", "24pt",
		"text-align", "center",
	), dom.Text(orDefault(f.Text, "Footer Text - Click to edit"))))}
}

// TextBox is a bordered editable inline block.
type TextBox struct {
	Text string `json:"text"`
}

func (TextBox) Kind() Kind           { return KindTextBox }
func (TextBox) Placement() Placement { return AtCursor }

func (b TextBox) Render() []*html.Node {
	return []*html.Node{editable(element("div", "text-box", dom.NewStyle(
		"border", "1px solid #000",
		"padding", "8px",
		"margin", "12pt 0",
		"display", "inline-block",
		"min-width", "100px",
		"min-height", "50px",
	), dom.Text(orDefault(b.Text, "Text Box - Click to edit"))))}
}

// Watermark is large faint text behind the page content.
type Watermark struct {
	Text string `json:"text"`
}

func (Watermark) Kind() Kind           { return KindWatermark }
func (Watermark) Placement() Placement { return Append }

func (w Watermark) Render() []*html.Node {
	return []*html.Node{element("div", "watermark", dom.NewStyle(
		"position", "absolute",
		"top", "50%",
		"left", "50%",
		"transform", "translate(-50%, -50%) rotate(-45deg)",
		"font-size", "72pt",
		"color", "rgba(0, 0, 0, 0.1)",
		"font-weight", "bold",
		"pointer-events", "none",
		"z-index", "-1",
	), dom.Text(orDefault(w.Text, "DRAFT")))}
}

// Shape types.
const (
	ShapeRectangle = "rectangle"
	ShapeCircle    = "circle"
	ShapeTriangle  = "triangle"
	ShapeStar      = "star"
	ShapeHeart     = "heart"
	ShapeHexagon   = "hexagon"
)

var shapeStyles = map[string]dom.Style{
	ShapeRectangle: dom.NewStyle(
		"width", "100px", "height", "60px",
		"background-color", "#0078d4", "border", "2px solid #005a9e",
	),
	ShapeCircle: dom.NewStyle(
		"width", "80px", "height", "80px",
		"background-color", "#0078d4", "border-radius", "50%", "border", "2px solid #005a9e",
	),
	ShapeTriangle: dom.NewStyle(
		"width", "0", "height", "0",
		"border-left", "40px solid transparent",
		"border-right", "40px solid transparent",
		"border-bottom", "60px solid #0078d4",
	),
	ShapeStar: dom.NewStyle(
		"width", "80px", "height", "80px", "background-color", "#0078d4",
		"clip-path", "polygon(50% 0%, 61% 35%, 98% 35%, 68% 57%, 79% 91%, 50% 70%, 21% 91%, 32% 57%, 2% 35%, 39% 35%)",
	),
	ShapeHeart: dom.NewStyle(
		"width", "80px", "height", "80px", "color", "#0078d4",
		"font-size", "64px", "line-height", "80px", "text-align", "center",
	),
	ShapeHexagon: dom.NewStyle(
		"width", "90px", "height", "80px", "background-color", "#0078d4",
		"clip-path", "polygon(25% 0%, 75% 0%, 100% 50%, 75% 100%, 25% 100%, 0% 50%)",
	),
}

// Shape is a decorative figure wrapped in an inline-block container.
type Shape struct {
	Type string `json:"type"`
}

// NewShape validates the shape type. An empty type is a rectangle.
func NewShape(shapeType string) (Shape, error) {
	if shapeType == "" {
		shapeType = ShapeRectangle
	}

	if _, ok := shapeStyles[shapeType]; !ok {
		return Shape{}, fmt.Errorf("%w: shape %q", ErrInvalidParam, shapeType)
	}

	return Shape{Type: shapeType}, nil
}

func (Shape) Kind() Kind           { return KindShape }
func (Shape) Placement() Placement { return AtCursor }

func (s Shape) Render() []*html.Node {
	st, ok := shapeStyles[s.Type]
	if !ok {
		st = shapeStyles[ShapeRectangle]
	}

	var children []*html.Node
	if s.Type == ShapeHeart {
		children = append(children, dom.Text("♥"))
	}

	figure := dom.Element("div", st, children...)
	dom.SetAttr(figure, "data-shape", s.Type)

	return []*html.Node{element("div", "shape", dom.NewStyle(
		"display", "inline-block",
		"margin", "12pt",
		"cursor", "pointer",
	), figure)}
}

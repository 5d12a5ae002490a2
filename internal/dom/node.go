package dom

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ZeroWidthSpace keeps an otherwise empty inline element addressable by the caret.
const ZeroWidthSpace = "\u200b"

// Element creates a detached element with the given style and children.
func Element(tag string, st Style, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type:     html.ElementNode,
		Data:     tag,
		DataAtom: atom.Lookup([]byte(tag)),
	}

	if st.Len() > 0 {
		SetAttr(n, "style", st.String())
	}

	for _, c := range children {
		n.AppendChild(c)
	}

	return n
}

// Text creates a detached text node.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// blockTags break the visible text into lines and own alignment and indentation.
var blockTags = map[atom.Atom]bool{
	atom.Address:    true,
	atom.Article:    true,
	atom.Aside:      true,
	atom.Blockquote: true,
	atom.Dd:         true,
	atom.Div:        true,
	atom.Dl:         true,
	atom.Dt:         true,
	atom.Figure:     true,
	atom.Footer:     true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Header:     true,
	atom.Hr:         true,
	atom.Li:         true,
	atom.Ol:         true,
	atom.P:          true,
	atom.Pre:        true,
	atom.Section:    true,
	atom.Table:      true,
	atom.Td:         true,
	atom.Th:         true,
	atom.Tr:         true,
	atom.Ul:         true,
}

// containerTags hold blocks rather than text and are never the target of block commands.
var containerTags = map[atom.Atom]bool{
	atom.Ol:    true,
	atom.Ul:    true,
	atom.Dl:    true,
	atom.Table: true,
	atom.Tr:    true,
	atom.Hr:    true,
}

// formattingTags are the inline wrappers removeFormat strips.
var formattingTags = map[atom.Atom]bool{
	atom.B:      true,
	atom.Strong: true,
	atom.I:      true,
	atom.Em:     true,
	atom.U:      true,
	atom.S:      true,
	atom.Strike: true,
	atom.Del:    true,
	atom.Sub:    true,
	atom.Sup:    true,
	atom.Span:   true,
	atom.Font:   true,
	atom.Mark:   true,
}

func isElement(n *html.Node, tags ...atom.Atom) bool {
	if n == nil || n.Type != html.ElementNode {
		return false
	}

	for _, t := range tags {
		if n.DataAtom == t {
			return true
		}
	}

	return false
}

func isBlock(n *html.Node) bool {
	return n != nil && n.Type == html.ElementNode && blockTags[n.DataAtom]
}

func isRawText(n *html.Node) bool {
	return isElement(n, atom.Script, atom.Style, atom.Template)
}

func isVoid(n *html.Node) bool {
	return isElement(n, atom.Img, atom.Br, atom.Hr, atom.Input, atom.Wbr)
}

// wrap replaces n with el and moves n inside it.
func wrap(n, el *html.Node) {
	n.Parent.InsertBefore(el, n)
	n.Parent.RemoveChild(n)
	el.AppendChild(n)
}

// unwrap replaces el with its children.
func unwrap(el *html.Node) {
	parent := el.Parent
	if parent == nil {
		return
	}

	for c := el.FirstChild; c != nil; {
		next := c.NextSibling
		el.RemoveChild(c)
		parent.InsertBefore(c, el)
		c = next
	}

	parent.RemoveChild(el)
}

// moveChildren moves every child of from to the end of to.
func moveChildren(from, to *html.Node) {
	for c := from.FirstChild; c != nil; {
		next := c.NextSibling
		from.RemoveChild(c)
		to.AppendChild(c)
		c = next
	}
}

// rename changes an element's tag in place.
func rename(n *html.Node, tag string) {
	n.Data = tag
	n.DataAtom = atom.Lookup([]byte(tag))
}

// splitText cuts a text node at rune index at and returns the new right half,
// inserted directly after n.
func splitText(n *html.Node, at int) *html.Node {
	runes := []rune(n.Data)
	right := Text(string(runes[at:]))
	n.Data = string(runes[:at])
	n.Parent.InsertBefore(right, n.NextSibling)

	return right
}

// textLen counts the addressable runes under the given nodes.
func textLen(nodes ...*html.Node) int {
	total := 0

	for _, n := range nodes {
		walk(n, func(t *html.Node) {
			total += utf8.RuneCountInString(t.Data)
		})
	}

	return total
}

// walk calls fn for every text node under n in document order,
// skipping script and style bodies.
func walk(n *html.Node, fn func(*html.Node)) {
	if n.Type == html.TextNode {
		fn(n)

		return
	}

	if isRawText(n) {
		return
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, fn)
	}
}

// visibleText approximates innerText: text nodes, a newline at block
// boundaries and <br>, a tab between table cells.
func visibleText(root *html.Node) string {
	var (
		b         strings.Builder
		needBreak bool
		needTab   bool
	)

	flush := func() {
		if b.Len() == 0 {
			needBreak, needTab = false, false

			return
		}

		last := b.String()[b.Len()-1]

		switch {
		case needBreak && last != '\n':
			b.WriteByte('\n')
		case needTab && last != '\t' && last != '\n':
			b.WriteByte('\t')
		}

		needBreak, needTab = false, false
	}

	var visit func(n *html.Node)

	visit = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			if n.Data == "" {
				return
			}

			flush()
			b.WriteString(n.Data)

			return
		case isRawText(n):
			return
		case isElement(n, atom.Br):
			b.WriteByte('\n')

			return
		case isElement(n, atom.Td, atom.Th):
			if n.PrevSibling != nil {
				needTab = true
			}
		case isBlock(n):
			needBreak = true
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			visit(c)
		}

		if isBlock(n) && !isElement(n, atom.Td, atom.Th) {
			needBreak = true
		}
	}

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		visit(c)
	}

	return b.String()
}

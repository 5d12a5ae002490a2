package dom

import (
	"unicode/utf8"

	"golang.org/x/net/html"
)

// Selection is a range over text offsets: rune positions in the concatenation
// of every text node of the document, in document order.
// Start == End is a caret.
type Selection struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Caret returns a collapsed selection at offset.
func Caret(offset int) *Selection {
	return &Selection{Start: offset, End: offset}
}

// Collapsed reports whether the selection is a caret.
func (s Selection) Collapsed() bool {
	return s.Start == s.End
}

// Len returns the number of selected runes.
func (s Selection) Len() int {
	return s.End - s.Start
}

// normalized returns the selection with Start <= End.
func (s Selection) normalized() Selection {
	if s.Start > s.End {
		s.Start, s.End = s.End, s.Start
	}

	return s
}

// textRun is a non-empty text node and the offset of its first rune.
type textRun struct {
	node  *html.Node
	start int
	runes int
}

func (r textRun) end() int {
	return r.start + r.runes
}

// runs indexes the text nodes of the document.
func (d *Document) runs() []textRun {
	var (
		out    []textRun
		offset int
	)

	walk(d.root, func(n *html.Node) {
		count := utf8.RuneCountInString(n.Data)
		if count == 0 {
			return
		}

		out = append(out, textRun{node: n, start: offset, runes: count})
		offset += count
	})

	return out
}

// check validates sel against the current text length.
func (d *Document) check(sel Selection) (Selection, error) {
	sel = sel.normalized()

	if sel.Start < 0 || sel.End > textLen(d.root) {
		return Selection{}, ErrInvalidSelection
	}

	return sel, nil
}

// splitAt ensures a text node boundary falls exactly at offset.
func (d *Document) splitAt(offset int) {
	for _, r := range d.runs() {
		if offset > r.start && offset < r.end() {
			splitText(r.node, offset-r.start)

			return
		}
	}
}

// isolate splits text nodes at the selection bounds and returns the text
// nodes lying entirely inside it. Splitting never changes the rendered HTML.
func (d *Document) isolate(sel Selection) []*html.Node {
	if sel.Collapsed() {
		return nil
	}

	d.splitAt(sel.Start)
	d.splitAt(sel.End)

	var out []*html.Node

	for _, r := range d.runs() {
		if r.start >= sel.Start && r.end() <= sel.End {
			out = append(out, r.node)
		}
	}

	return out
}

// runAt returns the text run holding the rune just before offset, falling back
// to the first run for offset 0. ok is false for an empty document.
func (d *Document) runAt(offset int) (textRun, bool) {
	runs := d.runs()
	if len(runs) == 0 {
		return textRun{}, false
	}

	if offset <= 0 {
		return runs[0], true
	}

	for _, r := range runs {
		if offset > r.start && offset <= r.end() {
			return r, true
		}
	}

	return runs[len(runs)-1], true
}

// insertionPoint resolves a caret to a parent and the child to insert before
// (nil means append). Text nodes are split when the caret falls inside one.
func (d *Document) insertionPoint(offset int) (*html.Node, *html.Node) {
	r, ok := d.runAt(offset)
	if !ok {
		return d.root, nil
	}

	local := offset - r.start

	switch {
	case local <= 0:
		return r.node.Parent, r.node
	case local >= r.runes:
		return r.node.Parent, r.node.NextSibling
	default:
		return r.node.Parent, splitText(r.node, local)
	}
}

// deleteRange removes the selected text and prunes inline elements it leaves empty.
func (d *Document) deleteRange(sel Selection) {
	for _, n := range d.isolate(sel) {
		parent := n.Parent
		parent.RemoveChild(n)
		d.pruneEmpty(parent)
	}
}

func (d *Document) pruneEmpty(n *html.Node) {
	for n != nil && n != d.root && n.FirstChild == nil && !isVoid(n) && !isBlock(n) {
		parent := n.Parent
		parent.RemoveChild(n)
		n = parent
	}
}

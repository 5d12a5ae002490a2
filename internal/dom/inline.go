package dom

import (
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// inlineFormat describes an inline wrapper such as <b> or a styled <span>.
type inlineFormat struct {
	// build creates a fresh wrapper element.
	build func() *html.Node
	// matches lists the tags that already express the format; empty means the
	// format always wraps and never toggles off.
	matches []atom.Atom
}

func tagFormat(tag string, matches ...atom.Atom) inlineFormat {
	return inlineFormat{
		build:   func() *html.Node { return Element(tag, Style{}) },
		matches: matches,
	}
}

func styleFormat(prop, value string) inlineFormat {
	return inlineFormat{
		build: func() *html.Node { return Element("span", NewStyle(prop, value)) },
	}
}

func attrFormat(tag string, attrs ...string) inlineFormat {
	return inlineFormat{
		build: func() *html.Node {
			el := Element(tag, Style{})
			for i := 0; i+1 < len(attrs); i += 2 {
				SetAttr(el, attrs[i], attrs[i+1])
			}

			return el
		},
	}
}

// ancestorIn returns the nearest ancestor of n below the root whose tag is in tags.
func (d *Document) ancestorIn(n *html.Node, tags []atom.Atom) *html.Node {
	for p := n.Parent; p != nil && p != d.root; p = p.Parent {
		if isElement(p, tags...) {
			return p
		}
	}

	return nil
}

// coveredBy reports whether every text node under el is in selected.
func coveredBy(el *html.Node, selected map[*html.Node]bool) bool {
	covered := true

	walk(el, func(t *html.Node) {
		if t.Data != "" && !selected[t] {
			covered = false
		}
	})

	return covered
}

// applyInline wraps or toggles an inline format over sel.
func (d *Document) applyInline(f inlineFormat, sel Selection) *Selection {
	if sel.Collapsed() {
		el := f.build()
		el.AppendChild(Text(ZeroWidthSpace))
		d.insertAt(sel.Start, []*html.Node{el})

		return Caret(sel.Start + 1)
	}

	nodes := d.isolate(sel)

	if len(f.matches) > 0 && d.allWithin(nodes, f.matches) {
		d.unwrapCovered(nodes, func(n *html.Node) *html.Node { return d.ancestorIn(n, f.matches) })

		return &sel
	}

	for _, n := range nodes {
		if len(f.matches) > 0 && d.ancestorIn(n, f.matches) != nil {
			continue
		}

		wrap(n, f.build())
	}

	return &sel
}

func (d *Document) allWithin(nodes []*html.Node, tags []atom.Atom) bool {
	if len(nodes) == 0 {
		return false
	}

	for _, n := range nodes {
		if d.ancestorIn(n, tags) == nil {
			return false
		}
	}

	return true
}

// unwrapCovered removes, for each selected node, the wrappers returned by next
// as long as the wrapper holds nothing but selected text. Partially covered
// wrappers are left in place.
func (d *Document) unwrapCovered(nodes []*html.Node, next func(*html.Node) *html.Node) {
	selected := make(map[*html.Node]bool, len(nodes))
	for _, n := range nodes {
		selected[n] = true
	}

	for _, n := range nodes {
		for el := next(n); el != nil; el = next(n) {
			if !coveredBy(el, selected) {
				break
			}

			unwrap(el)
		}
	}
}

// removeFormat strips every fully selected formatting wrapper.
func (d *Document) removeFormat(sel Selection) {
	nodes := d.isolate(sel)

	d.unwrapCovered(nodes, func(n *html.Node) *html.Node {
		p := n.Parent
		if p != d.root && p.Type == html.ElementNode && formattingTags[p.DataAtom] {
			return p
		}

		return nil
	})
}

// unlink removes every link touching the selection, or the link at the caret.
func (d *Document) unlink(sel Selection) {
	var nodes []*html.Node

	if sel.Collapsed() {
		if r, ok := d.runAt(sel.Start); ok {
			nodes = append(nodes, r.node)
		}
	} else {
		nodes = d.isolate(sel)
	}

	for _, n := range nodes {
		if a := d.ancestorIn(n, []atom.Atom{atom.A}); a != nil {
			unwrap(a)
		}
	}
}

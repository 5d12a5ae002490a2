package dom

import (
	"slices"
	"strconv"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// IndentStep is the margin added or removed by indent and outdent.
const IndentStep = 40

// blockTargets lists the blocks touched by sel, in document order, wrapping
// loose inline content under the root into a <div> first.
func (d *Document) blockTargets(sel Selection) []*html.Node {
	var nodes []*html.Node

	if sel.Collapsed() {
		if r, ok := d.runAt(sel.Start); ok {
			nodes = append(nodes, r.node)
		}
	} else {
		nodes = d.isolate(sel)
	}

	seen := make(map[*html.Node]bool)

	var blocks []*html.Node

	for _, n := range nodes {
		b := d.blockOf(n)
		if b == nil || seen[b] {
			continue
		}

		seen[b] = true
		blocks = append(blocks, b)
	}

	return blocks
}

func (d *Document) blockOf(n *html.Node) *html.Node {
	for cur := n; cur != nil && cur != d.root; cur = cur.Parent {
		if isBlock(cur) {
			if containerTags[cur.DataAtom] {
				return nil
			}

			return cur
		}

		if cur.Parent == d.root {
			return d.wrapInlineRun(cur)
		}
	}

	return nil
}

// wrapInlineRun moves the run of inline siblings around top into a new <div>.
func (d *Document) wrapInlineRun(top *html.Node) *html.Node {
	first, last := top, top

	for first.PrevSibling != nil && !isBlock(first.PrevSibling) {
		first = first.PrevSibling
	}

	for last.NextSibling != nil && !isBlock(last.NextSibling) {
		last = last.NextSibling
	}

	div := Element("div", Style{})
	d.root.InsertBefore(div, first)

	stop := last.NextSibling
	for c := first; c != stop; {
		next := c.NextSibling
		d.root.RemoveChild(c)
		div.AppendChild(c)
		c = next
	}

	return div
}

// setBlockStyle sets one property on every targeted block.
func (d *Document) setBlockStyle(sel Selection, prop, value string) {
	for _, b := range d.blockTargets(sel) {
		st := StyleOf(b)
		st.Set(prop, value)
		SetStyle(b, st)
	}
}

// shiftIndent moves every targeted block by delta pixels, never below zero.
func (d *Document) shiftIndent(sel Selection, delta int) {
	for _, b := range d.blockTargets(sel) {
		st := StyleOf(b)

		margin := st.pixels("margin-left") + delta
		if margin <= 0 {
			st.Remove("margin-left")
		} else {
			st.Set("margin-left", strconv.Itoa(margin)+"px")
		}

		SetStyle(b, st)
	}
}

var blockFormats = map[string]bool{
	"p": true, "h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"blockquote": true, "pre": true, "div": true,
}

// formatBlock converts the targeted blocks to tag. List items and table cells
// keep their element and receive an inner block instead.
func (d *Document) formatBlock(sel Selection, tag string) error {
	if !blockFormats[tag] {
		return ErrInvalidValue
	}

	for _, b := range d.blockTargets(sel) {
		if isElement(b, atom.Li, atom.Td, atom.Th) {
			inner := Element(tag, Style{})
			moveChildren(b, inner)
			b.AppendChild(inner)

			continue
		}

		rename(b, tag)
	}

	return nil
}

// toggleList wraps the targeted blocks in a list of the given kind, or
// dissolves the lists when every target already belongs to one.
func (d *Document) toggleList(sel Selection, kind atom.Atom) {
	blocks := d.blockTargets(sel)
	if len(blocks) == 0 {
		return
	}

	if inLists(blocks, kind) {
		dissolveLists(blocks)

		return
	}

	var list *html.Node

	for _, b := range blocks {
		if isElement(b, atom.Td, atom.Th) {
			cellList := Element(kind.String(), Style{})
			li := Element("li", Style{})
			moveChildren(b, li)
			cellList.AppendChild(li)
			b.AppendChild(cellList)

			continue
		}

		if list == nil {
			anchor := b
			if isElement(b, atom.Li) {
				anchor = b.Parent
			}

			list = Element(kind.String(), Style{})
			anchor.Parent.InsertBefore(list, anchor)
		}

		if isElement(b, atom.Li) {
			old := b.Parent
			old.RemoveChild(b)
			list.AppendChild(b)

			if old.FirstChild == nil && old.Parent != nil {
				old.Parent.RemoveChild(old)
			}

			continue
		}

		li := Element("li", StyleOf(b))
		moveChildren(b, li)
		b.Parent.RemoveChild(b)
		list.AppendChild(li)
	}
}

func inLists(blocks []*html.Node, kind atom.Atom) bool {
	for _, b := range blocks {
		if !isElement(b, atom.Li) || !isElement(b.Parent, kind) {
			return false
		}
	}

	return true
}

// dissolveLists turns every item of the lists holding blocks into a <div>
// placed where the list stood. The lists are collected before anything
// moves, since moved items no longer point at their list.
func dissolveLists(blocks []*html.Node) {
	var lists []*html.Node

	for _, b := range blocks {
		list := b.Parent
		if isElement(list, atom.Ul, atom.Ol) && list.Parent != nil && !slices.Contains(lists, list) {
			lists = append(lists, list)
		}
	}

	for _, list := range lists {
		for li := list.FirstChild; li != nil; {
			next := li.NextSibling
			list.RemoveChild(li)

			if isElement(li, atom.Li) {
				rename(li, "div")
			}

			list.Parent.InsertBefore(li, list)
			li = next
		}

		list.Parent.RemoveChild(list)
	}
}

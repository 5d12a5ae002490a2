package dom

import (
	"golang.org/x/net/html"
)

// Copy returns copies of the selected content. Each text run keeps the inline
// elements around it; a <br> separates runs from different blocks.
func (d *Document) Copy(sel Selection) ([]*html.Node, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.check(sel)
	if err != nil {
		return nil, err
	}

	return d.copyRange(s), nil
}

// Extract removes the selected content and returns it as Copy would.
func (d *Document) Extract(sel Selection) ([]*html.Node, *Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.check(sel)
	if err != nil {
		return nil, nil, err
	}

	nodes := d.copyRange(s)
	d.deleteRange(s)

	return nodes, Caret(s.Start), nil
}

// Surround moves the selected content into wrapper and puts wrapper where the
// selection started. A collapsed selection inserts wrapper as is. The caret
// ends up after wrapper.
func (d *Document) Surround(sel Selection, wrapper *html.Node) (*Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	s, err := d.check(sel)
	if err != nil {
		return nil, err
	}

	if !s.Collapsed() {
		for _, n := range d.copyRange(s) {
			wrapper.AppendChild(n)
		}

		d.deleteRange(s)
	}

	d.insertAt(s.Start, []*html.Node{wrapper})

	return Caret(s.Start + textLen(wrapper)), nil
}

func (d *Document) copyRange(s Selection) []*html.Node {
	var (
		out  []*html.Node
		last *html.Node
	)

	for i, n := range d.isolate(s) {
		block := d.enclosingBlock(n)
		if i > 0 && block != last {
			out = append(out, Element("br", Style{}))
		}

		last = block

		clone := Text(n.Data)
		for p := n.Parent; p != nil && p != d.root && !isBlock(p); p = p.Parent {
			el := shallowClone(p)
			el.AppendChild(clone)
			clone = el
		}

		out = append(out, clone)
	}

	return out
}

// enclosingBlock is the nearest block ancestor, or the root.
func (d *Document) enclosingBlock(n *html.Node) *html.Node {
	for cur := n.Parent; cur != nil; cur = cur.Parent {
		if cur == d.root || isBlock(cur) {
			return cur
		}
	}

	return d.root
}

func shallowClone(n *html.Node) *html.Node {
	return &html.Node{
		Type:      n.Type,
		Data:      n.Data,
		DataAtom:  n.DataAtom,
		Namespace: n.Namespace,
		Attr:      append([]html.Attribute(nil), n.Attr...),
	}
}

// Render serializes nodes to markup.
func Render(nodes []*html.Node) string {
	root := newRoot()
	for _, n := range nodes {
		if n.Parent != nil {
			n.Parent.RemoveChild(n)
		}

		root.AppendChild(n)
	}

	return render(root)
}

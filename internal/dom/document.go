package dom

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Document is an editable rich-text region held as an HTML node tree.
// It is safe for concurrent use.
type Document struct {
	mu   sync.RWMutex
	root *html.Node
}

// NewDocument creates a document from an HTML fragment.
func NewDocument(content string) (*Document, error) {
	d := &Document{root: newRoot()}

	if err := d.load(content); err != nil {
		return nil, err
	}

	return d, nil
}

func newRoot() *html.Node {
	return &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
}

// load replaces the tree with the parsed fragment. Callers hold the lock.
func (d *Document) load(content string) error {
	nodes, err := ParseFragment(content)
	if err != nil {
		return err
	}

	root := newRoot()
	for _, n := range nodes {
		root.AppendChild(n)
	}

	d.root = root

	return nil
}

// ParseFragment parses markup as the children of a <div>.
func ParseFragment(content string) ([]*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(content), newRoot())
	if err != nil {
		return nil, fmt.Errorf("parse fragment: %w", err)
	}

	return nodes, nil
}

// Content returns the document markup (the container's inner HTML).
func (d *Document) Content() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return render(d.root)
}

func render(root *html.Node) string {
	var b strings.Builder

	for c := root.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&b, c)
	}

	return b.String()
}

// SetContent replaces the whole document with raw markup. No sanitization
// is performed.
func (d *Document) SetContent(content string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.load(content)
}

// Text returns the visible text of the document.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return visibleText(d.root)
}

// TextLen returns the number of addressable runes.
func (d *Document) TextLen() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return textLen(d.root)
}

// Insert places nodes at the start of sel and returns the caret after them.
// Without a selection the nodes are appended to the root and no caret is returned.
func (d *Document) Insert(nodes []*html.Node, sel *Selection) (*Selection, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if sel == nil {
		for _, n := range nodes {
			d.root.AppendChild(n)
		}

		return nil, nil
	}

	s, err := d.check(*sel)
	if err != nil {
		return nil, err
	}

	d.insertAt(s.Start, nodes)

	return Caret(s.Start + textLen(nodes...)), nil
}

func (d *Document) insertAt(offset int, nodes []*html.Node) {
	parent, before := d.insertionPoint(offset)

	for _, n := range nodes {
		parent.InsertBefore(n, before)
	}
}

// Prepend inserts nodes before the first child of the root.
func (d *Document) Prepend(nodes []*html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	first := d.root.FirstChild
	for _, n := range nodes {
		d.root.InsertBefore(n, first)
	}
}

// Append inserts nodes after the last child of the root.
func (d *Document) Append(nodes []*html.Node) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, n := range nodes {
		d.root.AppendChild(n)
	}
}

// Query returns a goquery view over a copy of the current tree. Changes made
// through it do not reach the document.
func (d *Document) Query() *goquery.Document {
	d.mu.RLock()
	content := render(d.root)
	d.mu.RUnlock()

	root := newRoot()

	nodes, err := ParseFragment(content)
	if err == nil {
		for _, n := range nodes {
			root.AppendChild(n)
		}
	}

	return goquery.NewDocumentFromNode(root)
}

// Count returns how many elements match a CSS selector.
func (d *Document) Count(selector string) int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return goquery.NewDocumentFromNode(d.root).Find(selector).Length()
}

// Restyle rewrites the style of every element matching selector.
// It returns the number of elements touched.
func (d *Document) Restyle(selector string, fn func(*Style)) int {
	d.mu.Lock()
	defer d.mu.Unlock()

	matched := goquery.NewDocumentFromNode(d.root).Find(selector)

	for _, n := range matched.Nodes {
		st := StyleOf(n)
		fn(&st)
		SetStyle(n, st)
	}

	return matched.Length()
}

// ReplaceText replaces every case-insensitive literal occurrence of find
// inside text nodes. Matches do not span node boundaries.
func (d *Document) ReplaceText(find, replacement string) int {
	if find == "" {
		return 0
	}

	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(find))

	d.mu.Lock()
	defer d.mu.Unlock()

	count := 0

	walk(d.root, func(n *html.Node) {
		matches := re.FindAllStringIndex(n.Data, -1)
		if len(matches) == 0 {
			return
		}

		count += len(matches)
		n.Data = re.ReplaceAllLiteralString(n.Data, replacement)
	})

	return count
}

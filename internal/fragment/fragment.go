// Package fragment builds the HTML inserted by the editor's insert actions.
// Fragments only describe content; where it lands is decided by the caller
// from the fragment's Placement.
package fragment

import (
	"errors"

	"golang.org/x/net/html"
)

// Errors returned when building fragments.
var (
	ErrUnknownKind  = errors.New("unknown fragment kind")
	ErrInvalidParam = errors.New("invalid fragment parameter")
	ErrNotImage     = errors.New("data is not an image")
)

// Kind names a fragment variant on the wire.
type Kind string

// Fragment kinds.
const (
	KindTable           Kind = "table"
	KindImage           Kind = "image"
	KindPageBreak       Kind = "pageBreak"
	KindBlankPage       Kind = "blankPage"
	KindHeader          Kind = "header"
	KindFooter          Kind = "footer"
	KindShape           Kind = "shape"
	KindSymbol          Kind = "symbol"
	KindTextBox         Kind = "textBox"
	KindDateTime        Kind = "dateTime"
	KindPageNumber      Kind = "pageNumber"
	KindFootnote        Kind = "footnote"
	KindFootnoteRef     Kind = "footnoteRef"
	KindFootnoteNote    Kind = "footnoteNote"
	KindCitation        Kind = "citation"
	KindTableOfContents Kind = "tableOfContents"
	KindBibliography    Kind = "bibliography"
	KindWatermark       Kind = "watermark"
)

// Placement says where a fragment is inserted.
type Placement int

const (
	// AtCursor inserts at the selection start, or appends when there is none.
	AtCursor Placement = iota
	// Prepend inserts before the first child of the document.
	Prepend
	// Append inserts after the last child of the document.
	Append
)

func (p Placement) String() string {
	switch p {
	case Prepend:
		return "prepend"
	case Append:
		return "append"
	default:
		return "cursor"
	}
}

// Fragment is a piece of content ready to be rendered into nodes.
type Fragment interface {
	Kind() Kind
	Placement() Placement
	Render() []*html.Node
}

// Compound is implemented by fragments that bring further fragments with
// them, such as a footnote reference and its note.
type Compound interface {
	Fragment
	Parts() []Fragment
}

// Expand flattens a fragment into the list of fragments to insert.
func Expand(f Fragment) []Fragment {
	if c, ok := f.(Compound); ok {
		return c.Parts()
	}

	return []Fragment{f}
}

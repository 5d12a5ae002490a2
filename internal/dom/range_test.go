package dom_test

import (
	"testing"

	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/stretchr/testify/require"
)

func TestDocument_Copy_KeepsInlineFormatting(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ab<b>cd</b>ef</p>")

	nodes, err := doc.Copy(dom.Selection{Start: 1, End: 3})
	require.NoError(t, err)

	require.Equal(t, "b<b>c</b>", dom.Render(nodes))
	require.Equal(t, "<p>ab<b>cd</b>ef</p>", doc.Content())
}

func TestDocument_Copy_AcrossBlocks(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>one</p><p>two</p>")

	nodes, err := doc.Copy(dom.Selection{Start: 1, End: 5})
	require.NoError(t, err)

	require.Equal(t, "ne<br/>tw", dom.Render(nodes))
}

func TestDocument_Extract(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>hello world</p>")

	nodes, caret, err := doc.Extract(dom.Selection{Start: 5, End: 11})
	require.NoError(t, err)

	require.Equal(t, " world", dom.Render(nodes))
	require.Equal(t, "<p>hello</p>", doc.Content())
	require.Equal(t, dom.Caret(5), caret)
}

func TestDocument_Surround(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>say hi now</p>")

	span := dom.Element("span", dom.NewStyle("background-color", "#ffeb3b"))

	caret, err := doc.Surround(dom.Selection{Start: 4, End: 6}, span)
	require.NoError(t, err)

	require.Equal(t, `<p>say <span style="background-color: #ffeb3b">hi</span> now</p>`, doc.Content())
	require.Equal(t, dom.Caret(6), caret)
}

func TestDocument_Surround_Collapsed(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ab</p>")

	caret, err := doc.Surround(dom.Selection{Start: 1, End: 1}, dom.Element("span", dom.Style{}, dom.Text("X")))
	require.NoError(t, err)

	require.Equal(t, "<p>a<span>X</span>b</p>", doc.Content())
	require.Equal(t, dom.Caret(2), caret)
}

func TestDocument_Surround_InvalidSelection(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ab</p>")

	_, err := doc.Surround(dom.Selection{Start: 0, End: 9}, dom.Element("span", dom.Style{}))
	require.ErrorIs(t, err, dom.ErrInvalidSelection)
}

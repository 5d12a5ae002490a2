package dom_test

import (
	"testing"

	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/stretchr/testify/require"
)

func sel(start, end int) *dom.Selection {
	return &dom.Selection{Start: start, End: end}
}

func TestExec_InlineToggles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd  string
		want string
	}{
		{dom.CmdBold, "<p><b>Hello</b> world</p>"},
		{dom.CmdItalic, "<p><i>Hello</i> world</p>"},
		{dom.CmdUnderline, "<p><u>Hello</u> world</p>"},
		{dom.CmdStrikeThrough, "<p><strike>Hello</strike> world</p>"},
		{dom.CmdSubscript, "<p><sub>Hello</sub> world</p>"},
		{dom.CmdSuperscript, "<p><sup>Hello</sup> world</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			t.Parallel()

			doc := mustDocument(t, "<p>Hello world</p>")

			got, err := doc.Exec(tt.cmd, "", sel(0, 5))
			require.NoError(t, err)
			require.Equal(t, tt.want, doc.Content())
			require.Equal(t, sel(0, 5), got)

			_, err = doc.Exec(tt.cmd, "", sel(0, 5))
			require.NoError(t, err)
			require.Equal(t, "<p>Hello world</p>", doc.Content())
		})
	}
}

func TestExec_BoldInsideStrongTogglesOff(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p><strong>abc</strong></p>")

	_, err := doc.Exec(dom.CmdBold, "", sel(0, 3))
	require.NoError(t, err)
	require.Equal(t, "<p>abc</p>", doc.Content())
}

func TestExec_BoldPartiallyFormattedWrapsRest(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p><b>ab</b>cd</p>")

	_, err := doc.Exec(dom.CmdBold, "", sel(0, 4))
	require.NoError(t, err)
	require.Equal(t, "<p><b>ab</b><b>cd</b></p>", doc.Content())
}

func TestExec_CollapsedBoldThenTyping(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>Hi</p>")

	caret, err := doc.Exec(dom.CmdBold, "", dom.Caret(2))
	require.NoError(t, err)
	require.Equal(t, dom.Caret(3), caret)

	caret, err = doc.Exec(dom.CmdInsertText, "yo", caret)
	require.NoError(t, err)
	require.Equal(t, dom.Caret(5), caret)
	require.Equal(t, "<p>Hi<b>"+dom.ZeroWidthSpace+"yo</b></p>", doc.Content())
}

func TestExec_InlineStyles(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd   string
		value string
		want  string
	}{
		{dom.CmdFontSize, "14", `<p><span style="font-size: 14pt">abc</span></p>`},
		{dom.CmdFontSize, "2em", `<p><span style="font-size: 2em">abc</span></p>`},
		{dom.CmdFontName, "Arial", `<p><span style="font-family: Arial">abc</span></p>`},
		{dom.CmdForeColor, "#ff0000", `<p><span style="color: #ff0000">abc</span></p>`},
		{dom.CmdHiliteColor, "yellow", `<p><span style="background-color: yellow">abc</span></p>`},
		{dom.CmdBackColor, "yellow", `<p><span style="background-color: yellow">abc</span></p>`},
		{dom.CmdCreateLink, "https://example.com", `<p><a href="https://example.com">abc</a></p>`},
	}

	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.value, func(t *testing.T) {
			t.Parallel()

			doc := mustDocument(t, "<p>abc</p>")

			_, err := doc.Exec(tt.cmd, tt.value, sel(0, 3))
			require.NoError(t, err)
			require.Equal(t, tt.want, doc.Content())
		})
	}
}

func TestExec_MissingValue(t *testing.T) {
	t.Parallel()

	for _, cmd := range []string{dom.CmdFontSize, dom.CmdFontName, dom.CmdForeColor, dom.CmdCreateLink, dom.CmdLineHeight} {
		doc := mustDocument(t, "<p>abc</p>")

		_, err := doc.Exec(cmd, " ", sel(0, 3))
		require.ErrorIs(t, err, dom.ErrMissingValue, cmd)
		require.Equal(t, "<p>abc</p>", doc.Content())
	}
}

func TestExec_Unlink(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, `<p>x<a href="/y">abc</a></p>`)

	_, err := doc.Exec(dom.CmdUnlink, "", dom.Caret(2))
	require.NoError(t, err)
	require.Equal(t, "<p>xabc</p>", doc.Content())
}

func TestExec_RemoveFormat(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p><b><i>abc</i></b>d</p>")

	_, err := doc.Exec(dom.CmdRemoveFormat, "", sel(0, 3))
	require.NoError(t, err)
	require.Equal(t, "<p>abcd</p>", doc.Content())
}

func TestExec_RemoveFormat_KeepsPartiallyCoveredWrapper(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p><b>abcd</b></p>")

	_, err := doc.Exec(dom.CmdRemoveFormat, "", sel(0, 2))
	require.NoError(t, err)
	require.Equal(t, "<p><b>abcd</b></p>", doc.Content())
}

func TestExec_Justify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		cmd   string
		align string
	}{
		{dom.CmdJustifyLeft, "left"},
		{dom.CmdJustifyCenter, "center"},
		{dom.CmdJustifyRight, "right"},
		{dom.CmdJustifyFull, "justify"},
	}

	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			t.Parallel()

			doc := mustDocument(t, "<p>a</p><p>b</p>")

			_, err := doc.Exec(tt.cmd, "", dom.Caret(0))
			require.NoError(t, err)
			require.Equal(t, `<p style="text-align: `+tt.align+`">a</p><p>b</p>`, doc.Content())
		})
	}
}

func TestExec_JustifyWrapsLooseText(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "Hello <b>there</b><p>next</p>")

	_, err := doc.Exec(dom.CmdJustifyCenter, "", dom.Caret(1))
	require.NoError(t, err)
	require.Equal(t, `<div style="text-align: center">Hello <b>there</b></div><p>next</p>`, doc.Content())
}

func TestExec_JustifySpansBlocks(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ab</p><p>cd</p>")

	_, err := doc.Exec(dom.CmdJustifyRight, "", sel(1, 3))
	require.NoError(t, err)
	require.Equal(t, `<p style="text-align: right">ab</p><p style="text-align: right">cd</p>`, doc.Content())
}

func TestExec_IndentOutdent(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>x</p>")

	_, err := doc.Exec(dom.CmdIndent, "", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, `<p style="margin-left: 40px">x</p>`, doc.Content())

	_, err = doc.Exec(dom.CmdIndent, "", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, `<p style="margin-left: 80px">x</p>`, doc.Content())

	for range 3 {
		_, err = doc.Exec(dom.CmdOutdent, "", dom.Caret(0))
		require.NoError(t, err)
	}

	require.Equal(t, "<p>x</p>", doc.Content())
}

func TestExec_ListToggle(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>one</p><p>two</p>")

	_, err := doc.Exec(dom.CmdUnorderedList, "", sel(0, 6))
	require.NoError(t, err)
	require.Equal(t, "<ul><li>one</li><li>two</li></ul>", doc.Content())

	_, err = doc.Exec(dom.CmdUnorderedList, "", sel(0, 6))
	require.NoError(t, err)
	require.Equal(t, "<div>one</div><div>two</div>", doc.Content())
}

func TestExec_ListToggleOffParsedList(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		sel     *dom.Selection
		want    string
	}{
		{"whole list", "<ul><li>a</li><li>b</li><li>c</li></ul>", sel(0, 3), "<div>a</div><div>b</div><div>c</div>"},
		{"caret in middle item", "<ul><li>a</li><li>b</li><li>c</li></ul>", dom.Caret(1), "<div>a</div><div>b</div><div>c</div>"},
		{"between paragraphs", "<p>x</p><ul><li>a</li><li>b</li></ul><p>y</p>", sel(1, 3), "<p>x</p><div>a</div><div>b</div><p>y</p>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc := mustDocument(t, tt.content)

			_, err := doc.Exec(dom.CmdUnorderedList, "", tt.sel)
			require.NoError(t, err)
			require.Equal(t, tt.want, doc.Content())
		})
	}
}

func TestExec_ListSwitchKind(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<ul><li>a</li></ul>")

	_, err := doc.Exec(dom.CmdOrderedList, "", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, "<ol><li>a</li></ol>", doc.Content())
}

func TestExec_FormatBlock(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>Title</p>")

	_, err := doc.Exec(dom.CmdFormatBlock, "<H1>", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, "<h1>Title</h1>", doc.Content())

	_, err = doc.Exec(dom.CmdFormatBlock, "span", dom.Caret(0))
	require.ErrorIs(t, err, dom.ErrInvalidValue)
}

func TestExec_FormatBlockInListItem(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<ul><li>a</li></ul>")

	_, err := doc.Exec(dom.CmdFormatBlock, "h2", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, "<ul><li><h2>a</h2></li></ul>", doc.Content())
}

func TestExec_LineHeight(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>x</p>")

	_, err := doc.Exec(dom.CmdLineHeight, "1.5", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, `<p style="line-height: 1.5">x</p>`, doc.Content())
}

func TestExec_InsertText(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ad</p>")

	caret, err := doc.Exec(dom.CmdInsertText, "bc", dom.Caret(1))
	require.NoError(t, err)
	require.Equal(t, "<p>abcd</p>", doc.Content())
	require.Equal(t, dom.Caret(3), caret)
}

func TestExec_InsertTextReplacesSelection(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>hello world</p>")

	caret, err := doc.Exec(dom.CmdInsertText, "there", sel(6, 11))
	require.NoError(t, err)
	require.Equal(t, "<p>hello there</p>", doc.Content())
	require.Equal(t, dom.Caret(11), caret)
}

func TestExec_InsertTextWithoutSelectionAppends(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>a</p>")

	caret, err := doc.Exec(dom.CmdInsertText, "b", nil)
	require.NoError(t, err)
	require.Equal(t, "<p>ab</p>", doc.Content())
	require.Equal(t, dom.Caret(2), caret)
}

func TestExec_InsertTextIntoEmptyDocument(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "")

	caret, err := doc.Exec(dom.CmdInsertText, "hi", nil)
	require.NoError(t, err)
	require.Equal(t, "hi", doc.Content())
	require.Equal(t, dom.Caret(2), caret)
}

func TestExec_InsertHTML(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ad</p>")

	caret, err := doc.Exec(dom.CmdInsertHTML, "<em>bc</em>", dom.Caret(1))
	require.NoError(t, err)
	require.Equal(t, "<p>a<em>bc</em>d</p>", doc.Content())
	require.Equal(t, dom.Caret(3), caret)
}

func TestExec_InsertLineBreakAndRule(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ab</p>")

	_, err := doc.Exec(dom.CmdInsertLineBreak, "", dom.Caret(1))
	require.NoError(t, err)
	require.Equal(t, "<p>a<br/>b</p>", doc.Content())

	_, err = doc.Exec(dom.CmdInsertHorizontalRule, "", dom.Caret(2))
	require.NoError(t, err)
	require.Equal(t, "<p>a<br/>b<hr/></p>", doc.Content())
}

func TestExec_Delete(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>abc</p>")

	caret, err := doc.Exec(dom.CmdDelete, "", dom.Caret(3))
	require.NoError(t, err)
	require.Equal(t, "<p>ab</p>", doc.Content())
	require.Equal(t, dom.Caret(2), caret)

	caret, err = doc.Exec(dom.CmdForwardDelete, "", dom.Caret(0))
	require.NoError(t, err)
	require.Equal(t, "<p>b</p>", doc.Content())
	require.Equal(t, dom.Caret(0), caret)
}

func TestExec_DeleteAtBoundsIsNoop(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>abc</p>")

	_, err := doc.Exec(dom.CmdDelete, "", dom.Caret(0))
	require.NoError(t, err)

	_, err = doc.Exec(dom.CmdForwardDelete, "", dom.Caret(3))
	require.NoError(t, err)

	require.Equal(t, "<p>abc</p>", doc.Content())
}

func TestExec_DeleteSelectionPrunesEmptyWrappers(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p><b>abc</b>d</p>")

	_, err := doc.Exec(dom.CmdDelete, "", sel(0, 3))
	require.NoError(t, err)
	require.Equal(t, "<p>d</p>", doc.Content())
}

func TestExec_SelectAll(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>ab</p><p>cd</p>")

	got, err := doc.Exec(dom.CmdSelectAll, "", nil)
	require.NoError(t, err)
	require.Equal(t, sel(0, 4), got)
	require.Equal(t, "<p>ab</p><p>cd</p>", doc.Content())
}

func TestExec_CaseInsensitive(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>abc</p>")

	_, err := doc.Exec("BOLD", "", sel(0, 3))
	require.NoError(t, err)
	require.Equal(t, "<p><b>abc</b></p>", doc.Content())
}

func TestExec_Errors(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>abc</p>")

	_, err := doc.Exec("explode", "", sel(0, 1))
	require.ErrorIs(t, err, dom.ErrUnsupportedCommand)

	_, err = doc.Exec(dom.CmdBold, "", nil)
	require.ErrorIs(t, err, dom.ErrNoSelection)

	_, err = doc.Exec(dom.CmdBold, "", sel(0, 10))
	require.ErrorIs(t, err, dom.ErrInvalidSelection)

	_, err = doc.Exec(dom.CmdBold, "", sel(-1, 2))
	require.ErrorIs(t, err, dom.ErrInvalidSelection)

	require.Equal(t, "<p>abc</p>", doc.Content())
}

func TestExec_ReversedSelectionIsNormalized(t *testing.T) {
	t.Parallel()

	doc := mustDocument(t, "<p>abc</p>")

	got, err := doc.Exec(dom.CmdItalic, "", sel(3, 0))
	require.NoError(t, err)
	require.Equal(t, sel(0, 3), got)
	require.Equal(t, "<p><i>abc</i></p>", doc.Content())
}

func TestCanonical(t *testing.T) {
	t.Parallel()

	name, ok := dom.Canonical("justifycenter")
	require.True(t, ok)
	require.Equal(t, dom.CmdJustifyCenter, name)

	_, ok = dom.Canonical("nope")
	require.False(t, ok)

	require.False(t, dom.IsMutating(dom.CmdSelectAll))
	require.True(t, dom.IsMutating(dom.CmdBold))
}

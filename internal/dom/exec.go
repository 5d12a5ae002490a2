package dom

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// Errors returned by Exec.
var (
	ErrUnsupportedCommand = errors.New("unsupported command")
	ErrMissingValue       = errors.New("command requires a value")
	ErrInvalidValue       = errors.New("invalid command value")
	ErrInvalidSelection   = errors.New("selection out of range")
	ErrNoSelection        = errors.New("command requires a selection")
)

// Command names understood by Exec. Lookup is case-insensitive.
const (
	CmdBold                 = "bold"
	CmdItalic               = "italic"
	CmdUnderline            = "underline"
	CmdStrikeThrough        = "strikeThrough"
	CmdSubscript            = "subscript"
	CmdSuperscript          = "superscript"
	CmdFontSize             = "fontSize"
	CmdFontName             = "fontName"
	CmdForeColor            = "foreColor"
	CmdHiliteColor          = "hiliteColor"
	CmdBackColor            = "backColor"
	CmdCreateLink           = "createLink"
	CmdUnlink               = "unlink"
	CmdRemoveFormat         = "removeFormat"
	CmdJustifyLeft          = "justifyLeft"
	CmdJustifyCenter        = "justifyCenter"
	CmdJustifyRight         = "justifyRight"
	CmdJustifyFull          = "justifyFull"
	CmdIndent               = "indent"
	CmdOutdent              = "outdent"
	CmdUnorderedList        = "insertUnorderedList"
	CmdOrderedList          = "insertOrderedList"
	CmdFormatBlock          = "formatBlock"
	CmdLineHeight           = "lineHeight"
	CmdInsertText           = "insertText"
	CmdInsertHTML           = "insertHTML"
	CmdInsertLineBreak      = "insertLineBreak"
	CmdInsertHorizontalRule = "insertHorizontalRule"
	CmdDelete               = "delete"
	CmdForwardDelete        = "forwardDelete"
	CmdSelectAll            = "selectAll"
)

// Commands returns every command name Exec accepts.
func Commands() []string {
	return []string{
		CmdBold, CmdItalic, CmdUnderline, CmdStrikeThrough, CmdSubscript, CmdSuperscript,
		CmdFontSize, CmdFontName, CmdForeColor, CmdHiliteColor, CmdBackColor,
		CmdCreateLink, CmdUnlink, CmdRemoveFormat,
		CmdJustifyLeft, CmdJustifyCenter, CmdJustifyRight, CmdJustifyFull,
		CmdIndent, CmdOutdent, CmdUnorderedList, CmdOrderedList, CmdFormatBlock, CmdLineHeight,
		CmdInsertText, CmdInsertHTML, CmdInsertLineBreak, CmdInsertHorizontalRule,
		CmdDelete, CmdForwardDelete, CmdSelectAll,
	}
}

// Canonical maps a command name in any letter case to its canonical spelling.
func Canonical(name string) (string, bool) {
	for _, c := range Commands() {
		if strings.EqualFold(c, name) {
			return c, true
		}
	}

	return "", false
}

// IsMutating reports whether the command can change the document.
func IsMutating(cmd string) bool {
	return cmd != CmdSelectAll
}

var justifications = map[string]string{
	CmdJustifyLeft:   "left",
	CmdJustifyCenter: "center",
	CmdJustifyRight:  "right",
	CmdJustifyFull:   "justify",
}

// Exec runs a native editing command against sel and returns the selection
// the command leaves behind. Content commands without a selection act at the
// end of the document; formatting commands require one.
func (d *Document) Exec(cmd, value string, sel *Selection) (*Selection, error) {
	name, ok := Canonical(cmd)
	if !ok {
		return sel, fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var s Selection

	if sel == nil {
		if !appliesWithoutSelection(name) {
			return nil, ErrNoSelection
		}

		s = *Caret(textLen(d.root))
	} else {
		checked, err := d.check(*sel)
		if err != nil {
			return sel, err
		}

		s = checked
	}

	return d.exec(name, value, s)
}

func appliesWithoutSelection(cmd string) bool {
	switch cmd {
	case CmdInsertText, CmdInsertHTML, CmdInsertLineBreak, CmdInsertHorizontalRule, CmdSelectAll:
		return true
	default:
		return false
	}
}

func requireValue(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrMissingValue
	}

	return nil
}

//nolint:cyclop,funlen // one case per command
func (d *Document) exec(cmd, value string, s Selection) (*Selection, error) {
	switch cmd {
	case CmdBold:
		return d.applyInline(tagFormat("b", atom.B, atom.Strong), s), nil
	case CmdItalic:
		return d.applyInline(tagFormat("i", atom.I, atom.Em), s), nil
	case CmdUnderline:
		return d.applyInline(tagFormat("u", atom.U), s), nil
	case CmdStrikeThrough:
		return d.applyInline(tagFormat("strike", atom.Strike, atom.S, atom.Del), s), nil
	case CmdSubscript:
		return d.applyInline(tagFormat("sub", atom.Sub), s), nil
	case CmdSuperscript:
		return d.applyInline(tagFormat("sup", atom.Sup), s), nil
	case CmdFontSize:
		if err := requireValue(value); err != nil {
			return &s, err
		}

		return d.applyInline(styleFormat("font-size", fontSize(value)), s), nil
	case CmdFontName:
		if err := requireValue(value); err != nil {
			return &s, err
		}

		return d.applyInline(styleFormat("font-family", value), s), nil
	case CmdForeColor:
		if err := requireValue(value); err != nil {
			return &s, err
		}

		return d.applyInline(styleFormat("color", value), s), nil
	case CmdHiliteColor, CmdBackColor:
		if err := requireValue(value); err != nil {
			return &s, err
		}

		return d.applyInline(styleFormat("background-color", value), s), nil
	case CmdCreateLink:
		if err := requireValue(value); err != nil {
			return &s, err
		}

		return d.applyInline(attrFormat("a", "href", value), s), nil
	case CmdUnlink:
		d.unlink(s)

		return &s, nil
	case CmdRemoveFormat:
		d.removeFormat(s)

		return &s, nil
	case CmdJustifyLeft, CmdJustifyCenter, CmdJustifyRight, CmdJustifyFull:
		d.setBlockStyle(s, "text-align", justifications[cmd])

		return &s, nil
	case CmdIndent:
		d.shiftIndent(s, IndentStep)

		return &s, nil
	case CmdOutdent:
		d.shiftIndent(s, -IndentStep)

		return &s, nil
	case CmdUnorderedList:
		d.toggleList(s, atom.Ul)

		return &s, nil
	case CmdOrderedList:
		d.toggleList(s, atom.Ol)

		return &s, nil
	case CmdFormatBlock:
		return &s, d.formatBlock(s, strings.ToLower(strings.Trim(value, "<> ")))
	case CmdLineHeight:
		if err := requireValue(value); err != nil {
			return &s, err
		}

		d.setBlockStyle(s, "line-height", value)

		return &s, nil
	case CmdInsertText:
		return d.insertText(s, value), nil
	case CmdInsertHTML:
		return d.insertHTML(s, value)
	case CmdInsertLineBreak:
		return d.insertNodes(s, Element("br", Style{})), nil
	case CmdInsertHorizontalRule:
		return d.insertNodes(s, Element("hr", Style{})), nil
	case CmdDelete:
		return d.deleteBackward(s), nil
	case CmdForwardDelete:
		return d.deleteForward(s), nil
	case CmdSelectAll:
		return &Selection{Start: 0, End: textLen(d.root)}, nil
	default:
		return &s, fmt.Errorf("%w: %s", ErrUnsupportedCommand, cmd)
	}
}

// fontSize accepts "12" (points) or any CSS length.
func fontSize(value string) string {
	value = strings.TrimSpace(value)
	if strings.IndexFunc(value, func(r rune) bool { return (r < '0' || r > '9') && r != '.' }) < 0 {
		return value + "pt"
	}

	return value
}

// insertText replaces the selection with text, extending the text node at the
// caret when there is one so typed text inherits its formatting.
func (d *Document) insertText(s Selection, text string) *Selection {
	if !s.Collapsed() {
		d.deleteRange(s)
	}

	if text == "" {
		return Caret(s.Start)
	}

	r, ok := d.runAt(s.Start)
	if !ok {
		d.root.AppendChild(Text(text))

		return Caret(utf8.RuneCountInString(text))
	}

	runes := []rune(r.node.Data)
	local := s.Start - r.start

	if local < 0 {
		local = 0
	}

	r.node.Data = string(runes[:local]) + text + string(runes[local:])

	return Caret(s.Start + utf8.RuneCountInString(text))
}

func (d *Document) insertHTML(s Selection, markup string) (*Selection, error) {
	nodes, err := ParseFragment(markup)
	if err != nil {
		return &s, err
	}

	return d.insertNodes(s, nodes...), nil
}

func (d *Document) insertNodes(s Selection, nodes ...*html.Node) *Selection {
	if !s.Collapsed() {
		d.deleteRange(s)
	}

	d.insertAt(s.Start, nodes)

	return Caret(s.Start + textLen(nodes...))
}

func (d *Document) deleteBackward(s Selection) *Selection {
	if s.Collapsed() {
		if s.Start == 0 {
			return &s
		}

		s.Start--
	}

	d.deleteRange(s)

	return Caret(s.Start)
}

func (d *Document) deleteForward(s Selection) *Selection {
	if s.Collapsed() {
		if s.End >= textLen(d.root) {
			return &s
		}

		s.End++
	}

	d.deleteRange(s)

	return Caret(s.Start)
}

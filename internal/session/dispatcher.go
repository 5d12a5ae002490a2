package session

import (
	"errors"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/serroba/pdfcraft/internal/fragment"
)

// Errors returned by the dispatcher and its actions.
var (
	ErrUnknownAction  = errors.New("unknown action")
	ErrEmptyClipboard = errors.New("clipboard is empty")
	ErrMissingComment = errors.New("comment text is required")
)

// Extra action names on top of the native editing commands.
const (
	ActionCopy       = "copy"
	ActionCut        = "cut"
	ActionPaste      = "paste"
	ActionApplyStyle = "applyStyle"
	ActionApplyTheme = "applyTheme"
	ActionAddComment = "addComment"
	ActionGrowFont   = "growFont"
	ActionShrinkFont = "shrinkFont"
)

// InsertPrefix introduces fragment actions, e.g. "insert:table".
const InsertPrefix = "insert:"

// Handler performs an action on a locked session. A returned error means the
// action failed and the session rolls back whatever it touched.
type Handler func(s *Session, value string) error

type action struct {
	name     string
	handler  Handler
	mutating bool
}

// Dispatcher maps action names to handlers. Lookup ignores case.
// It is safe for concurrent use and can be shared across sessions.
type Dispatcher struct {
	mu      sync.RWMutex
	actions map[string]action
}

// NewDispatcher creates a dispatcher with every built-in action registered.
func NewDispatcher() *Dispatcher {
	d := &Dispatcher{actions: make(map[string]action)}

	for _, cmd := range dom.Commands() {
		d.Register(cmd, dom.IsMutating(cmd), native(cmd))
	}

	d.Register(ActionCopy, false, (*Session).copySelection)
	d.Register(ActionCut, true, (*Session).cutSelection)
	d.Register(ActionPaste, true, (*Session).paste)
	d.Register(ActionApplyStyle, true, (*Session).applyStyle)
	d.Register(ActionApplyTheme, true, (*Session).applyTheme)
	d.Register(ActionAddComment, true, (*Session).addComment)
	d.Register(ActionGrowFont, true, stepFont(FontSizeStep))
	d.Register(ActionShrinkFont, true, stepFont(-FontSizeStep))

	for _, kind := range fragment.Kinds() {
		d.Register(InsertPrefix+string(kind), true, insertKind(kind))
	}

	return d
}

// Register adds or replaces an action.
func (d *Dispatcher) Register(name string, mutating bool, h Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.actions[strings.ToLower(name)] = action{name: name, handler: h, mutating: mutating}
}

// Actions lists the registered action names, sorted.
func (d *Dispatcher) Actions() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.actions))
	for _, a := range d.actions {
		names = append(names, a.name)
	}

	slices.Sort(names)

	return names
}

// IsMutating reports whether name is a registered action that changes the document.
func (d *Dispatcher) IsMutating(name string) bool {
	a, ok := d.lookup(name)

	return ok && a.mutating
}

func (d *Dispatcher) lookup(name string) (action, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	a, ok := d.actions[strings.ToLower(strings.TrimSpace(name))]

	return a, ok
}

// native runs a dom command, filling colour and font values from the view
// when the caller leaves them out.
func native(cmd string) Handler {
	return func(s *Session, value string) error {
		value = s.defaultValue(cmd, value)

		if cmd == dom.CmdFontName {
			family, ok := fontFamily(value)
			if !ok {
				return fmt.Errorf("%w: font family %q", ErrInvalidView, value)
			}

			value = family
		}

		sel, err := s.doc.Exec(cmd, value, s.selection)
		if err != nil {
			return err
		}

		s.selection = sel
		s.remember(cmd, value)

		return nil
	}
}

func (s *Session) defaultValue(cmd, value string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}

	switch cmd {
	case dom.CmdForeColor:
		return s.view.Color
	case dom.CmdHiliteColor, dom.CmdBackColor:
		return s.view.Highlight
	case dom.CmdFontName:
		return s.view.FontFamily
	case dom.CmdFontSize:
		return strconv.Itoa(s.view.FontSize)
	default:
		return value
	}
}

// remember keeps the view's current font and colours in step with the last
// value applied.
func (s *Session) remember(cmd, value string) {
	switch cmd {
	case dom.CmdForeColor:
		s.view.Color = value
	case dom.CmdHiliteColor, dom.CmdBackColor:
		s.view.Highlight = value
	case dom.CmdFontName:
		s.view.FontFamily = value
	case dom.CmdFontSize:
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			s.view.FontSize = clampFont(n)
		}
	}
}

// requireRange returns the selection when it covers at least one rune.
func (s *Session) requireRange() (dom.Selection, error) {
	if s.selection == nil || s.selection.Collapsed() {
		return dom.Selection{}, dom.ErrNoSelection
	}

	return *s.selection, nil
}

func (s *Session) copySelection(string) error {
	sel, err := s.requireRange()
	if err != nil {
		return err
	}

	nodes, err := s.doc.Copy(sel)
	if err != nil {
		return err
	}

	s.clipboard = dom.Render(nodes)

	return nil
}

func (s *Session) cutSelection(string) error {
	sel, err := s.requireRange()
	if err != nil {
		return err
	}

	nodes, caret, err := s.doc.Extract(sel)
	if err != nil {
		return err
	}

	s.clipboard = dom.Render(nodes)
	s.selection = caret

	return nil
}

// paste inserts value as markup, or the clipboard when value is empty.
func (s *Session) paste(value string) error {
	if value == "" {
		value = s.clipboard
	}

	if value == "" {
		return ErrEmptyClipboard
	}

	sel, err := s.doc.Exec(dom.CmdInsertHTML, value, s.selection)
	if err != nil {
		return err
	}

	s.selection = sel

	return nil
}

func (s *Session) applyStyle(value string) error {
	st, ok := lookupStyle(value)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownStyle, value)
	}

	if s.selection == nil {
		return dom.ErrNoSelection
	}

	caret, err := s.doc.Surround(*s.selection, st.element(s.selection.Collapsed()))
	if err != nil {
		return err
	}

	s.selection = caret

	return nil
}

func (s *Session) applyTheme(value string) error {
	id := strings.ToLower(strings.TrimSpace(value))

	color := themeColor(id)
	if color == "" {
		return fmt.Errorf("%w: %q", ErrUnknownTheme, value)
	}

	s.view.Theme = id
	s.doc.Restyle(headingSelector, func(st *dom.Style) { st.Set("color", color) })

	return nil
}

func (s *Session) addComment(value string) error {
	if strings.TrimSpace(value) == "" {
		return ErrMissingComment
	}

	sel, err := s.requireRange()
	if err != nil {
		return err
	}

	caret, err := s.doc.Surround(sel, comment(value))
	if err != nil {
		return err
	}

	s.selection = caret

	return nil
}

// stepFont moves the view font size within bounds and applies it to the
// selection when there is one.
func stepFont(delta int) Handler {
	return func(s *Session, _ string) error {
		s.view.FontSize = clampFont(s.view.FontSize + delta)

		if s.selection == nil {
			return nil
		}

		return native(dom.CmdFontSize)(s, strconv.Itoa(s.view.FontSize))
	}
}

// insertKind parses value as URL-encoded fragment parameters.
func insertKind(kind fragment.Kind) Handler {
	return func(s *Session, value string) error {
		query, err := url.ParseQuery(value)
		if err != nil {
			return fmt.Errorf("%w: %w", fragment.ErrInvalidParam, err)
		}

		params := make(fragment.Params, len(query))
		for k := range query {
			params[k] = query.Get(k)
		}

		f, err := fragment.Parse(string(kind), params)
		if err != nil {
			return err
		}

		return s.place(f)
	}
}

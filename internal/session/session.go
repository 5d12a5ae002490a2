// Package session hosts editable document sessions: one document tree, its
// selection, undo history, statistics and view, driven by named actions.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/serroba/pdfcraft/internal/export"
	"github.com/serroba/pdfcraft/internal/fragment"
	"github.com/serroba/pdfcraft/internal/history"
	"github.com/serroba/pdfcraft/internal/stats"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/serroba/pdfcraft/internal/ws"
	"github.com/sirupsen/logrus"
)

// Common errors.
var (
	ErrSessionClosed    = errors.New("session is closed")
	ErrEmptyFind        = errors.New("find text is empty")
	ErrNoMatches        = errors.New("no matches")
	ErrPrintUnavailable = errors.New("pdf printing is not configured")
)

// DefaultTitle names documents that were never titled.
const DefaultTitle = "Document1"

// Config holds the dependencies of a session. Only DocID is required.
type Config struct {
	DocID        string
	Store        storage.Store
	Checker      *acl.Checker
	Hub          *ws.Hub
	Autosave     *storage.AutosavePolicy
	Dispatcher   *Dispatcher
	Printer      export.Printer
	Stats        stats.Calculator
	HistoryLimit int
	View         *View
	Logger       logrus.FieldLogger
}

// Session is one open document. All methods are safe for concurrent use.
type Session struct {
	docID string

	mu        sync.Mutex
	doc       *dom.Document
	history   *history.History
	selection *dom.Selection
	clipboard string
	title     string
	view      View
	stats     stats.Statistics
	revision  int
	modified  bool
	closed    bool

	store      storage.Store
	checker    *acl.Checker
	hub        *ws.Hub
	autosave   *storage.AutosavePolicy
	dispatcher *Dispatcher
	printer    export.Printer
	calc       stats.Calculator
	log        logrus.FieldLogger
}

// New creates an empty session. Call Load to read the saved document.
func New(cfg Config) *Session {
	doc, _ := dom.NewDocument("")

	view := DefaultView()
	if cfg.View != nil {
		view = *cfg.View
	}

	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = NewDispatcher()
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Session{
		docID:      cfg.DocID,
		doc:        doc,
		history:    history.New(cfg.HistoryLimit),
		title:      DefaultTitle,
		view:       view,
		store:      cfg.Store,
		checker:    cfg.Checker,
		hub:        cfg.Hub,
		autosave:   cfg.Autosave,
		dispatcher: dispatcher,
		printer:    cfg.Printer,
		calc:       cfg.Stats,
		log:        log.WithField("doc_id", cfg.DocID),
	}

	s.stats = s.calc.Compute(s.doc.Text())

	return s
}

// Load replaces the session state with the saved document.
func (s *Session) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	if s.store == nil {
		return nil
	}

	result, err := storage.NewDocumentLoader(s.store).Load(ctx, s.docID)
	if err != nil {
		return fmt.Errorf("load %s: %w", s.docID, err)
	}

	if err := s.doc.SetContent(result.Content); err != nil {
		return err
	}

	s.title = DefaultTitle
	if strings.TrimSpace(result.Title) != "" {
		s.title = result.Title
	}

	s.revision = result.Revision
	s.selection = nil
	s.modified = false
	s.history.Clear()
	s.stats = s.calc.Compute(s.doc.Text())

	return nil
}

// Command asks the session to run a named action.
type Command struct {
	ClientID  string
	UserID    string
	Name      string
	Value     string
	Selection *dom.Selection // replaces the session selection when set
}

// Result reports what an action did. Failed actions leave the document as
// it was and carry the reason.
type Result struct {
	Action    string           `json:"action"`
	Applied   bool             `json:"applied"`
	Reason    string           `json:"reason,omitempty"`
	Revision  int              `json:"revision"`
	Selection *dom.Selection   `json:"selection,omitempty"`
	Stats     stats.Statistics `json:"stats"`
	CanUndo   bool             `json:"canUndo"`
	CanRedo   bool             `json:"canRedo"`
	Replaced  int              `json:"replaced,omitempty"`
}

// Execute runs a registered action. Failures inside the action are logged
// and reported through Result; only unknown actions, access and lifecycle
// problems are returned as errors.
func (s *Session) Execute(ctx context.Context, cmd Command) (Result, error) {
	act, ok := s.dispatcher.lookup(cmd.Name)
	if !ok {
		return Result{}, fmt.Errorf("%w: %s", ErrUnknownAction, cmd.Name)
	}

	required := acl.ActionView
	if act.mutating {
		required = acl.ActionEdit
	}

	if err := s.authorize(cmd.UserID, required); err != nil {
		return Result{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Result{}, ErrSessionClosed
	}

	if cmd.Selection != nil {
		sel, err := s.checkSelection(*cmd.Selection)
		if err != nil {
			return s.failed(act.name, err), nil
		}

		s.selection = sel
	}

	if !act.mutating {
		prev := s.selection
		if err := act.handler(s, cmd.Value); err != nil {
			s.selection = prev

			return s.failed(act.name, err), nil
		}

		return s.result(act.name, true), nil
	}

	return s.mutate(ctx, act.name, cmd.ClientID, cmd.UserID, func() error {
		return act.handler(s, cmd.Value)
	}), nil
}

// mutate runs fn as one undoable step: the content before fn is recorded on
// success and restored on failure. Callers hold the lock.
func (s *Session) mutate(ctx context.Context, name, clientID, userID string, fn func() error) Result {
	before := s.doc.Content()
	sel, view, clip := s.selection, s.view, s.clipboard

	if err := fn(); err != nil {
		s.restore(before)
		s.selection, s.view, s.clipboard = sel, view, clip

		return s.failed(name, err)
	}

	s.history.Record(history.Take(before))
	s.changed(ctx, name, clientID, userID)

	return s.result(name, true)
}

func (s *Session) failed(name string, err error) Result {
	s.log.WithFields(logrus.Fields{"command": name}).WithError(err).Warn("command failed")

	r := s.result(name, false)
	r.Reason = err.Error()

	return r
}

func (s *Session) result(name string, applied bool) Result {
	return Result{
		Action:    name,
		Applied:   applied,
		Revision:  s.revision,
		Selection: s.selection,
		Stats:     s.stats,
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
	}
}

// restore puts markup back into the tree.
func (s *Session) restore(content string) {
	if err := s.doc.SetContent(content); err != nil {
		s.log.WithError(err).Error("restore content")
	}
}

// changed runs after every content change: bump the revision, recompute
// statistics, autosave and notify other clients.
func (s *Session) changed(ctx context.Context, name, clientID, userID string) {
	s.revision++
	s.modified = true
	s.stats = s.calc.Compute(s.doc.Text())

	if s.autosave != nil && s.autosave.RecordMutation(s.docID) {
		if err := s.save(ctx); err != nil {
			s.log.WithError(err).Warn("autosave failed")
		}
	}

	if s.hub != nil {
		s.hub.BroadcastChange(s.docID, s.revision, name, s.doc.Content(), userID, clientID)
	}
}

// save writes a snapshot. Callers hold the lock.
func (s *Session) save(ctx context.Context) error {
	if s.store == nil {
		return nil
	}

	err := s.store.SaveSnapshot(ctx, storage.Snapshot{
		DocID:    s.docID,
		Title:    s.title,
		Content:  s.doc.Content(),
		Revision: s.revision,
	})
	if err != nil {
		return fmt.Errorf("save %s: %w", s.docID, err)
	}

	if s.autosave != nil {
		s.autosave.Reset(s.docID)
	}

	return nil
}

func (s *Session) authorize(userID string, action acl.Action) error {
	if s.checker == nil {
		return nil
	}

	return s.checker.RequirePermission(s.docID, userID, action)
}

// lockFor checks permission and takes the lock on an open session. The
// caller must unlock.
func (s *Session) lockFor(userID string, action acl.Action) error {
	if err := s.authorize(userID, action); err != nil {
		return err
	}

	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()

		return ErrSessionClosed
	}

	return nil
}

// Undo steps back one snapshot. An empty history is a no-op.
func (s *Session) Undo(ctx context.Context, clientID, userID string) (Result, error) {
	return s.travel(ctx, "undo", clientID, userID, s.history.Undo)
}

// Redo re-applies the last undone snapshot. An empty history is a no-op.
func (s *Session) Redo(ctx context.Context, clientID, userID string) (Result, error) {
	return s.travel(ctx, "redo", clientID, userID, s.history.Redo)
}

func (s *Session) travel(
	ctx context.Context, name, clientID, userID string,
	step func(history.Snapshot) (history.Snapshot, error),
) (Result, error) {
	if err := s.lockFor(userID, acl.ActionEdit); err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	target, err := step(history.Take(s.doc.Content()))
	if err != nil {
		r := s.result(name, false)
		r.Reason = err.Error()

		return r, nil
	}

	s.restore(target.Content)
	s.clampSelection()
	s.changed(ctx, name, clientID, userID)

	return s.result(name, true), nil
}

// clampSelection keeps the selection inside the current text.
func (s *Session) clampSelection() {
	if s.selection == nil {
		return
	}

	n := s.doc.TextLen()
	s.selection = &dom.Selection{
		Start: min(s.selection.Start, n),
		End:   min(s.selection.End, n),
	}
}

// InsertRequest asks for a fragment at the selection.
type InsertRequest struct {
	ClientID  string
	UserID    string
	Kind      string
	Params    fragment.Params
	Selection *dom.Selection
}

// Insert renders a fragment and places it. Unknown kinds and bad parameters
// are returned as errors before anything changes.
func (s *Session) Insert(ctx context.Context, req InsertRequest) (Result, error) {
	f, err := fragment.Parse(req.Kind, req.Params)
	if err != nil {
		return Result{}, err
	}

	return s.insertFragment(ctx, req.ClientID, req.UserID, f, req.Selection)
}

// InsertImage embeds image bytes as a data URI at the selection.
func (s *Session) InsertImage(ctx context.Context, clientID, userID string, data []byte, width int, sel *dom.Selection) (Result, error) {
	img, err := fragment.NewImage(data)
	if err != nil {
		return Result{}, err
	}

	img.Width = width

	return s.insertFragment(ctx, clientID, userID, img, sel)
}

func (s *Session) insertFragment(ctx context.Context, clientID, userID string, f fragment.Fragment, sel *dom.Selection) (Result, error) {
	if err := s.lockFor(userID, acl.ActionEdit); err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	name := InsertPrefix + string(f.Kind())

	if sel != nil {
		checked, err := s.checkSelection(*sel)
		if err != nil {
			return s.failed(name, err), nil
		}

		s.selection = checked
	}

	return s.mutate(ctx, name, clientID, userID, func() error {
		return s.place(f)
	}), nil
}

// place inserts every part of f where its placement says.
func (s *Session) place(f fragment.Fragment) error {
	for _, part := range fragment.Expand(s.complete(f)) {
		nodes := part.Render()

		switch part.Placement() {
		case fragment.Prepend:
			before := s.doc.TextLen()
			s.doc.Prepend(nodes)

			if s.selection != nil {
				shift := s.doc.TextLen() - before
				s.selection = &dom.Selection{Start: s.selection.Start + shift, End: s.selection.End + shift}
			}
		case fragment.Append:
			s.doc.Append(nodes)
		default:
			sel, err := s.doc.Insert(nodes, s.selection)
			if err != nil {
				return err
			}

			s.selection = sel
		}
	}

	return nil
}

// complete fills in the values a fragment takes from the document or view.
func (s *Session) complete(f fragment.Fragment) fragment.Fragment {
	switch v := f.(type) {
	case fragment.Footnote:
		if v.N == 0 {
			v.N = s.doc.Count("."+fragment.FootnoteClass) + 1
		}

		return v
	case fragment.Symbol:
		if v.FontSize == 0 {
			v.FontSize = s.view.FontSize
		}

		return v
	case fragment.TableOfContents:
		if len(v.Entries) == 0 {
			v.Entries = s.headings()
		}

		return v
	default:
		return f
	}
}

// headings returns the text of the document's headings in order.
func (s *Session) headings() []string {
	var out []string

	s.doc.Query().Find("h1, h2, h3, " + headingSelector).Each(func(_ int, h *goquery.Selection) {
		if text := strings.TrimSpace(h.Text()); text != "" {
			out = append(out, text)
		}
	})

	return out
}

// Open replaces the document with raw markup. Nothing is sanitized.
func (s *Session) Open(ctx context.Context, clientID, userID, content string) (Result, error) {
	if err := s.lockFor(userID, acl.ActionEdit); err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	return s.mutate(ctx, "open", clientID, userID, func() error {
		s.selection = nil

		return s.doc.SetContent(content)
	}), nil
}

// NewDocument clears the content and resets the title.
func (s *Session) NewDocument(ctx context.Context, clientID, userID string) (Result, error) {
	if err := s.lockFor(userID, acl.ActionEdit); err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	title := s.title

	r := s.mutate(ctx, "new", clientID, userID, func() error {
		s.selection = nil
		s.title = DefaultTitle

		return s.doc.SetContent("")
	})
	if !r.Applied {
		s.title = title
	}

	return r, nil
}

// FindReplace replaces every case-insensitive literal match of find. An
// empty replacement keeps the matched text, normalising its case.
func (s *Session) FindReplace(ctx context.Context, clientID, userID, find, replacement string) (Result, error) {
	if err := s.lockFor(userID, acl.ActionEdit); err != nil {
		return Result{}, err
	}
	defer s.mu.Unlock()

	if find == "" {
		return s.failed("findReplace", ErrEmptyFind), nil
	}

	if replacement == "" {
		replacement = find
	}

	var count int

	r := s.mutate(ctx, "findReplace", clientID, userID, func() error {
		count = s.doc.ReplaceText(find, replacement)
		if count == 0 {
			return ErrNoMatches
		}

		return nil
	})
	r.Replaced = count

	return r, nil
}

// Select replaces the selection. A nil selection clears it.
func (s *Session) Select(userID string, sel *dom.Selection) error {
	if err := s.lockFor(userID, acl.ActionView); err != nil {
		return err
	}
	defer s.mu.Unlock()

	if sel == nil {
		s.selection = nil

		return nil
	}

	checked, err := s.checkSelection(*sel)
	if err != nil {
		return err
	}

	s.selection = checked

	return nil
}

// checkSelection orders sel and rejects it when it falls outside the text.
// Callers hold the lock.
func (s *Session) checkSelection(sel dom.Selection) (*dom.Selection, error) {
	start, end := min(sel.Start, sel.End), max(sel.Start, sel.End)
	if start < 0 || end > s.doc.TextLen() {
		return nil, dom.ErrInvalidSelection
	}

	return &dom.Selection{Start: start, End: end}, nil
}

// SetTitle renames the document.
func (s *Session) SetTitle(userID, title string) error {
	if err := s.lockFor(userID, acl.ActionEdit); err != nil {
		return err
	}
	defer s.mu.Unlock()

	title = strings.TrimSpace(title)
	if title == "" {
		title = DefaultTitle
	}

	if title != s.title {
		s.title = title
		s.modified = true
	}

	return nil
}

// View returns the current view.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.view
}

// UpdateView validates and installs a new view.
func (s *Session) UpdateView(userID string, v View) error {
	if err := v.Validate(); err != nil {
		return err
	}

	if err := s.lockFor(userID, acl.ActionView); err != nil {
		return err
	}
	defer s.mu.Unlock()

	s.view = v

	return nil
}

// Export renders the document as a downloadable HTML file, clears the
// modified flag and saves a snapshot.
func (s *Session) Export(ctx context.Context, userID string) (export.File, error) {
	if err := s.lockFor(userID, acl.ActionExport); err != nil {
		return export.File{}, err
	}
	defer s.mu.Unlock()

	file, err := export.HTML(s.title, s.doc.Content(), s.view.Layout())
	if err != nil {
		return export.File{}, err
	}

	s.modified = false

	if err := s.save(ctx); err != nil {
		s.log.WithError(err).Warn("save on export failed")
	}

	return file, nil
}

// Print renders the print document.
func (s *Session) Print(userID string) (string, error) {
	if err := s.lockFor(userID, acl.ActionExport); err != nil {
		return "", err
	}
	defer s.mu.Unlock()

	return export.PrintHTML(s.title, s.doc.Content(), s.view.Layout())
}

// PrintPDF prints the document through the configured printer.
func (s *Session) PrintPDF(ctx context.Context, userID string) ([]byte, error) {
	if s.printer == nil {
		return nil, ErrPrintUnavailable
	}

	markup, err := s.Print(userID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	layout := s.view.Layout()
	s.mu.Unlock()

	return s.printer.PrintPDF(ctx, markup, layout)
}

// State is a full copy of the session state.
type State struct {
	DocID     string           `json:"docId"`
	Title     string           `json:"title"`
	Content   string           `json:"content"`
	Revision  int              `json:"revision"`
	Stats     stats.Statistics `json:"stats"`
	View      View             `json:"view"`
	Selection *dom.Selection   `json:"selection,omitempty"`
	CanUndo   bool             `json:"canUndo"`
	CanRedo   bool             `json:"canRedo"`
	Modified  bool             `json:"modified"`
}

// State returns the session state for a reader.
func (s *Session) State(userID string) (State, error) {
	if err := s.lockFor(userID, acl.ActionView); err != nil {
		return State{}, err
	}
	defer s.mu.Unlock()

	return s.state(), nil
}

func (s *Session) state() State {
	return State{
		DocID:     s.docID,
		Title:     s.title,
		Content:   s.doc.Content(),
		Revision:  s.revision,
		Stats:     s.stats,
		View:      s.view,
		Selection: s.selection,
		CanUndo:   s.history.CanUndo(),
		CanRedo:   s.history.CanRedo(),
		Modified:  s.modified,
	}
}

// Payload converts the state to its WebSocket form.
func (st State) Payload() ws.StatePayload {
	return ws.StatePayload{
		DocID:    st.DocID,
		Title:    st.Title,
		Content:  st.Content,
		Revision: st.Revision,
		Stats:    st.Stats,
		View:     st.View,
		CanUndo:  st.CanUndo,
		CanRedo:  st.CanRedo,
		Modified: st.Modified,
	}
}

// DocID returns the document ID for this session.
func (s *Session) DocID() string {
	return s.docID
}

// Save writes a snapshot now.
func (s *Session) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}

	return s.save(ctx)
}

func (s *Session) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.closed
}

// Close saves a final snapshot and rejects further use. It is idempotent.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true

	return s.save(ctx)
}

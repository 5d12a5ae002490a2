package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/serroba/pdfcraft/internal/fragment"
	"github.com/serroba/pdfcraft/internal/session"
)

// CommandRequest runs a named editor action.
type CommandRequest struct {
	Command   string         `json:"command"`
	Value     string         `json:"value,omitempty"`
	Selection *dom.Selection `json:"selection,omitempty"`
}

// InsertRequest inserts a fragment.
type InsertRequest struct {
	Kind      string            `json:"kind"`
	Params    map[string]string `json:"params,omitempty"`
	Selection *dom.Selection    `json:"selection,omitempty"`
}

// FindReplaceRequest replaces every match of Find.
type FindReplaceRequest struct {
	Find    string `json:"find"`
	Replace string `json:"replace"`
}

// SelectRequest moves the selection; null clears it.
type SelectRequest struct {
	Selection *dom.Selection `json:"selection"`
}

// TitleRequest renames the document.
type TitleRequest struct {
	Title string `json:"title"`
}

// ShortcutRequest runs the action bound to a key combination.
type ShortcutRequest struct {
	Combo     string         `json:"combo"`
	Selection *dom.Selection `json:"selection,omitempty"`
}

// ShortcutResponse reports what a shortcut resolved to. Intents such as
// export and find are left to the client and carry no result.
type ShortcutResponse struct {
	Target string          `json:"target"`
	Intent bool            `json:"intent"`
	Result *session.Result `json:"result,omitempty"`
}

// handleCommand handles POST /documents/{id}/commands.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var req CommandRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.Execute(r.Context(), session.Command{
			UserID:    userID,
			Name:      req.Command,
			Value:     req.Value,
			Selection: req.Selection,
		})
	})
}

// handleUndo handles POST /documents/{id}/undo.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.Undo(r.Context(), "", userID)
	})
}

// handleRedo handles POST /documents/{id}/redo.
func (s *Server) handleRedo(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.Redo(r.Context(), "", userID)
	})
}

// handleInsert handles POST /documents/{id}/insert.
func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req InsertRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.Insert(r.Context(), session.InsertRequest{
			UserID:    userID,
			Kind:      req.Kind,
			Params:    fragment.Params(req.Params),
			Selection: req.Selection,
		})
	})
}

// handleImage handles POST /documents/{id}/images. The body is the raw image;
// width, start and end come from the query string.
func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	width, err := intParam(query.Get("width"))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	sel, err := selectionParam(query.Get("start"), query.Get("end"))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	data, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.InsertImage(r.Context(), "", userID, data, width, sel)
	})
}

// handleOpen handles POST /documents/{id}/open. The body is raw markup.
func (s *Server) handleOpen(w http.ResponseWriter, r *http.Request) {
	data, err := s.readBody(w, r)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.Open(r.Context(), "", userID, string(data))
	})
}

// handleNew handles POST /documents/{id}/new.
func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.NewDocument(r.Context(), "", userID)
	})
}

// handleFindReplace handles POST /documents/{id}/find-replace.
func (s *Server) handleFindReplace(w http.ResponseWriter, r *http.Request) {
	var req FindReplaceRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		return sess.FindReplace(r.Context(), "", userID, req.Find, req.Replace)
	})
}

// handleSelect handles POST /documents/{id}/select.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	var req SelectRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		if err := sess.Select(userID, req.Selection); err != nil {
			return nil, err
		}

		return sess.State(userID)
	})
}

// handleTitle handles POST /documents/{id}/title.
func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	var req TitleRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		if err := sess.SetTitle(userID, req.Title); err != nil {
			return nil, err
		}

		return sess.State(userID)
	})
}

// handleGetView handles GET /documents/{id}/view.
func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		state, err := sess.State(userID)
		if err != nil {
			return nil, err
		}

		return state.View, nil
	})
}

// handleUpdateView handles PUT /documents/{id}/view. The body is the full view.
func (s *Server) handleUpdateView(w http.ResponseWriter, r *http.Request) {
	var v session.View
	if err := s.decode(w, r, &v); err != nil {
		s.fail(w, r, err)

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		if err := sess.UpdateView(userID, v); err != nil {
			return nil, err
		}

		return sess.View(), nil
	})
}

// handleShortcut handles POST /documents/{id}/shortcut.
func (s *Server) handleShortcut(w http.ResponseWriter, r *http.Request) {
	var req ShortcutRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	target, err := session.ResolveShortcut(req.Combo)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	if session.IsIntent(target) {
		writeJSON(w, http.StatusOK, ShortcutResponse{Target: target, Intent: true})

		return
	}

	s.respond(w, r, func(sess *session.Session, userID string) (any, error) {
		var (
			result session.Result
			err    error
		)

		switch target {
		case session.TargetUndo:
			result, err = sess.Undo(r.Context(), "", userID)
		case session.TargetRedo:
			result, err = sess.Redo(r.Context(), "", userID)
		default:
			result, err = sess.Execute(r.Context(), session.Command{UserID: userID, Name: target, Selection: req.Selection})
		}

		if err != nil {
			return nil, err
		}

		return ShortcutResponse{Target: target, Result: &result}, nil
	})
}

// respond resolves the session for {id}, runs fn and writes its value as JSON.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, fn func(*session.Session, string) (any, error)) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	v, err := fn(sess, UserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, v)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return data, nil
}

func intParam(v string) (int, error) {
	if v == "" {
		return 0, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %q is not a non-negative integer", errBadRequest, v)
	}

	return n, nil
}

// selectionParam builds a selection from query values. No start means no
// selection; no end means a caret.
func selectionParam(start, end string) (*dom.Selection, error) {
	if start == "" {
		return nil, nil
	}

	from, err := intParam(start)
	if err != nil {
		return nil, err
	}

	to := from
	if end != "" {
		if to, err = intParam(end); err != nil {
			return nil, err
		}
	}

	return &dom.Selection{Start: from, End: to}, nil
}

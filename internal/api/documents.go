package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/session"
	"github.com/serroba/pdfcraft/internal/storage"
)

// CreateDocumentRequest is the request body for creating a document.
// Both fields are optional; a missing ID is generated.
type CreateDocumentRequest struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// CreateDocumentResponse is the response body for creating a document.
type CreateDocumentResponse struct {
	ID string `json:"id"`
}

// handleCreateDocument handles POST /documents.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	docID := strings.TrimSpace(req.ID)
	if docID == "" {
		docID = uuid.NewString()
	}

	ctx := r.Context()
	userID := UserIDFromContext(ctx)

	if err := s.store.CreateDocument(ctx, docID); err != nil {
		s.fail(w, r, err)

		return
	}

	// The creator owns the document.
	if s.permStore != nil {
		if err := s.permStore.Grant(docID, userID, acl.Owner); err != nil {
			s.fail(w, r, err)

			return
		}
	}

	if title := strings.TrimSpace(req.Title); title != "" {
		if err := s.initTitle(ctx, docID, userID, title); err != nil {
			s.fail(w, r, err)

			return
		}
	}

	writeJSON(w, http.StatusCreated, CreateDocumentResponse{ID: docID})
}

func (s *Server) initTitle(ctx context.Context, docID, userID, title string) error {
	sess, err := s.manager.GetOrCreate(ctx, docID)
	if err != nil {
		return err
	}

	if err := sess.SetTitle(userID, title); err != nil {
		return err
	}

	return sess.Save(ctx)
}

// handleListDocuments handles GET /documents. Only documents the user may
// view are listed.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	infos, err := s.store.ListDocuments(r.Context())
	if err != nil {
		s.fail(w, r, err)

		return
	}

	userID := UserIDFromContext(r.Context())
	visible := make([]storage.DocumentInfo, 0, len(infos))

	for _, info := range infos {
		if s.checker != nil {
			ok, err := s.checker.CanPerform(info.DocID, userID, acl.ActionView)
			if err != nil {
				s.fail(w, r, err)

				return
			}

			if !ok {
				continue
			}
		}

		visible = append(visible, info)
	}

	writeJSON(w, http.StatusOK, visible)
}

// handleGetDocument handles GET /documents/{id}.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	state, err := sess.State(UserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, state)
}

// handleDeleteDocument handles DELETE /documents/{id}.
func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	docID := r.PathValue("id")

	if err := s.authorize(docID, UserIDFromContext(ctx), acl.ActionDelete); err != nil {
		s.fail(w, r, err)

		return
	}

	// Close any active session first so it cannot save the document back.
	if err := s.manager.Close(ctx, docID); err != nil {
		s.log.WithField("doc_id", docID).WithError(err).Warn("close session before delete")
	}

	if err := s.store.DeleteDocument(ctx, docID); err != nil {
		s.fail(w, r, err)

		return
	}

	if s.permStore != nil {
		if err := s.permStore.RevokeAll(docID); err != nil {
			s.log.WithField("doc_id", docID).WithError(err).Warn("revoke permissions")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// session resolves {id} to an open session, writing the error response when
// it cannot.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.manager.GetOrCreate(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)

		return nil, false
	}

	return sess, true
}

func (s *Server) authorize(docID, userID string, action acl.Action) error {
	if s.checker == nil {
		return nil
	}

	return s.checker.RequirePermission(docID, userID, action)
}

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/storage"
)

var errNoPermissions = errors.New("permissions are not enabled")

// PermissionResponse is one entry of a document's access list.
type PermissionResponse struct {
	UserID string `json:"userId"`
	Role   string `json:"role"`
}

// GrantRequest sets a user's role.
type GrantRequest struct {
	Role string `json:"role"`
}

// handleListPermissions handles GET /documents/{id}/permissions.
func (s *Server) handleListPermissions(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	if !s.guardPermissions(w, r, docID, acl.ActionView) {
		return
	}

	perms, err := s.permStore.ListPermissions(docID)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	out := make([]PermissionResponse, len(perms))
	for i, p := range perms {
		out[i] = PermissionResponse{UserID: p.UserID, Role: p.Role.String()}
	}

	writeJSON(w, http.StatusOK, out)
}

// handleGrant handles PUT /documents/{id}/permissions/{user}.
func (s *Server) handleGrant(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	if !s.guardPermissions(w, r, docID, acl.ActionShare) {
		return
	}

	var req GrantRequest
	if err := s.decode(w, r, &req); err != nil {
		s.fail(w, r, err)

		return
	}

	role, err := acl.ParseRole(req.Role)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	user := r.PathValue("user")
	if err := s.permStore.Grant(docID, user, role); err != nil {
		s.fail(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, PermissionResponse{UserID: user, Role: role.String()})
}

// handleRevoke handles DELETE /documents/{id}/permissions/{user}.
func (s *Server) handleRevoke(w http.ResponseWriter, r *http.Request) {
	docID := r.PathValue("id")

	if !s.guardPermissions(w, r, docID, acl.ActionShare) {
		return
	}

	if err := s.permStore.Revoke(docID, r.PathValue("user")); err != nil {
		s.fail(w, r, err)

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// guardPermissions reports whether the caller may perform action on an
// existing document, writing the error response when not.
func (s *Server) guardPermissions(w http.ResponseWriter, r *http.Request, docID string, action acl.Action) bool {
	if s.permStore == nil {
		writeError(w, http.StatusNotFound, errNoPermissions.Error())

		return false
	}

	exists, err := s.store.DocumentExists(r.Context(), docID)
	if err != nil {
		s.fail(w, r, err)

		return false
	}

	if !exists {
		s.fail(w, r, fmt.Errorf("%w: %s", storage.ErrDocumentNotFound, docID))

		return false
	}

	if err := s.authorize(docID, UserIDFromContext(r.Context()), action); err != nil {
		s.fail(w, r, err)

		return false
	}

	return true
}

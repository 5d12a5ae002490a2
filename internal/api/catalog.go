package api

import (
	"net/http"

	"github.com/serroba/pdfcraft/internal/session"
)

// handleActions handles GET /actions.
func (s *Server) handleActions(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.manager.Dispatcher().Actions())
}

// handleStyles handles GET /styles.
func (s *Server) handleStyles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, session.ParagraphStyles())
}

// handleThemes handles GET /themes.
func (s *Server) handleThemes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, session.Themes())
}

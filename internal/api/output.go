package api

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/serroba/pdfcraft/internal/export"
)

// handleExport handles GET /documents/{id}/export as a file download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	file, err := sess.Export(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	w.Header().Set("Content-Disposition", attachment(file.Name))
	writeBody(w, file.ContentType, file.Body)
}

// handlePrint handles GET /documents/{id}/print.
func (s *Server) handlePrint(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	markup, err := sess.Print(UserIDFromContext(r.Context()))
	if err != nil {
		s.fail(w, r, err)

		return
	}

	writeBody(w, export.ContentType, []byte(markup))
}

// handlePDF handles GET /documents/{id}/pdf.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	userID := UserIDFromContext(r.Context())

	pdf, err := sess.PrintPDF(r.Context(), userID)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	state, err := sess.State(userID)
	if err != nil {
		s.fail(w, r, err)

		return
	}

	w.Header().Set("Content-Disposition", attachment(export.FileName(state.Title, ".pdf")))
	writeBody(w, "application/pdf", pdf)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%s", strconv.Quote(name))
}

func writeBody(w http.ResponseWriter, contentType string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(body)))
	w.WriteHeader(http.StatusOK)

	_, _ = w.Write(body)
}

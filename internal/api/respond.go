package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/serroba/pdfcraft/internal/fragment"
	"github.com/serroba/pdfcraft/internal/session"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/serroba/pdfcraft/internal/ws"
)

// errBadRequest marks malformed request bodies and parameters.
var errBadRequest = errors.New("bad request")

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
}

var badInput = []error{
	errBadRequest,
	session.ErrUnknownAction,
	session.ErrUnknownShortcut,
	session.ErrInvalidView,
	fragment.ErrUnknownKind,
	fragment.ErrInvalidParam,
	fragment.ErrNotImage,
	dom.ErrInvalidSelection,
	acl.ErrUnknownRole,
	acl.ErrPermissionNotFound,
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, storage.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, acl.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, storage.ErrDocumentExists):
		return http.StatusConflict
	case errors.Is(err, session.ErrSessionClosed):
		return http.StatusGone
	case errors.Is(err, session.ErrPrintUnavailable):
		return http.StatusNotImplemented
	}

	for _, target := range badInput {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// wsCode maps domain errors to WebSocket error codes.
func wsCode(err error) string {
	switch statusFor(err) {
	case http.StatusForbidden:
		return ws.ErrorCodeAccessDenied
	case http.StatusNotFound:
		return ws.ErrorCodeNotFound
	case http.StatusBadRequest:
		return ws.ErrorCodeInvalidMessage
	case http.StatusGone:
		return ws.ErrorCodeSessionClosed
	default:
		return ws.ErrorCodeInternalError
	}
}

// fail writes err with its mapped status. Internal errors are logged and
// their text is not sent to the client.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		s.log.WithField("request_id", RequestIDFromContext(r.Context())).WithError(err).Error("internal error")
		writeError(w, status, "internal server error")

		return
	}

	writeError(w, status, err.Error())
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(v)
}

// decode reads a JSON body into v. An empty body leaves v unchanged.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %w", errBadRequest, err)
	}

	return nil
}

package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/api"
	"github.com/serroba/pdfcraft/internal/export"
	"github.com/serroba/pdfcraft/internal/session"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/serroba/pdfcraft/internal/ws"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler http.Handler
	store   *storage.MemoryStore
	perms   *acl.MemoryStore
	manager *session.Manager
}

type envOptions struct {
	server  func(*api.ServerConfig)
	printer export.Printer
	noACL   bool
	idle    time.Duration
}

func newEnv(t *testing.T, opts ...func(*envOptions)) testEnv {
	t.Helper()

	o := envOptions{idle: -1}
	for _, opt := range opts {
		opt(&o)
	}

	logger, _ := test.NewNullLogger()
	store := storage.NewMemoryStore()
	hub := ws.NewHub()

	var (
		perms     *acl.MemoryStore
		permStore acl.Store
	)

	if !o.noACL {
		perms = acl.NewMemoryStore()
		permStore = perms
	}

	manager := session.NewManager(session.ManagerConfig{
		Store:       store,
		PermStore:   permStore,
		Hub:         hub,
		Printer:     o.printer,
		IdleTimeout: o.idle,
		Logger:      logger,
	})

	cfg := api.ServerConfig{
		Manager:   manager,
		Store:     store,
		PermStore: permStore,
		Hub:       hub,
		Logger:    logger,
	}

	if o.server != nil {
		o.server(&cfg)
	}

	t.Cleanup(func() { _ = manager.CloseAll(context.Background()) })

	return testEnv{
		handler: api.NewServer(cfg).Handler(),
		store:   store,
		perms:   perms,
		manager: manager,
	}
}

// do sends a request. Strings and byte slices are sent as is; other bodies
// are encoded as JSON.
func (e testEnv) do(t *testing.T, method, path, user string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	case []byte:
		reader = bytes.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)

		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	if user != "" {
		req.Header.Set("X-User-Id", user)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	return rec
}

// create makes a document owned by user.
func (e testEnv) create(t *testing.T, docID, user string) {
	t.Helper()

	rec := e.do(t, http.MethodPost, "/documents", user, map[string]string{"id": docID})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func (e testEnv) state(t *testing.T, docID, user string) session.State {
	t.Helper()

	rec := e.do(t, http.MethodGet, "/documents/"+docID, user, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return decodeBody[session.State](t, rec)
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))

	return v
}

type fakePrinter struct{}

func (fakePrinter) PrintPDF(context.Context, string, export.Layout) ([]byte, error) {
	return []byte("%PDF-1.7 fake"), nil
}

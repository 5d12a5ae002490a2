// Package api exposes document sessions over HTTP and WebSocket.
package api

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/session"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/serroba/pdfcraft/internal/ws"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// DefaultMaxBodyBytes caps request bodies when the config leaves it unset.
const DefaultMaxBodyBytes = 10 << 20

// limiterIdle is how long an unused per-user limiter is kept.
const limiterIdle = 10 * time.Minute

// Server handles HTTP requests for the editor API.
type Server struct {
	manager   *session.Manager
	store     storage.Store
	permStore acl.Store
	checker   *acl.Checker
	hub       *ws.Hub
	log       logrus.FieldLogger
	upgrader  websocket.Upgrader

	cors     *cors.Cors
	limit    rate.Limit
	burst    int
	limiters *cache.Cache
	maxBody  int64
}

// ServerConfig holds configuration for creating a server.
type ServerConfig struct {
	Manager   *session.Manager
	Store     storage.Store
	PermStore acl.Store
	Hub       *ws.Hub
	Logger    logrus.FieldLogger

	AllowedOrigins []string // empty allows every origin
	RateLimit      float64  // requests per second per user; 0 disables
	RateBurst      int
	MaxBodyBytes   int64
}

// NewServer creates a new API server.
func NewServer(cfg ServerConfig) *Server {
	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	maxBody := cfg.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	s := &Server{
		manager:   cfg.Manager,
		store:     cfg.Store,
		permStore: cfg.PermStore,
		hub:       cfg.Hub,
		log:       log,
		limit:     rate.Limit(cfg.RateLimit),
		burst:     max(cfg.RateBurst, 1),
		limiters:  cache.New(limiterIdle, limiterIdle),
		maxBody:   maxBody,
		cors: cors.New(cors.Options{
			AllowedOrigins: origins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type", headerUserID},
			ExposedHeaders: []string{headerRequestID, "Content-Disposition"},
			MaxAge:         300,
		}),
	}

	if cfg.PermStore != nil {
		s.checker = acl.NewChecker(cfg.PermStore)
	}

	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}

	return s
}

// checkOrigin applies the CORS origin list to WebSocket handshakes.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")

	return origin == "" || s.cors.OriginAllowed(r)
}

// Handler returns an http.Handler with all routes configured.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	s.route(mux, "POST /documents", s.handleCreateDocument)
	s.route(mux, "GET /documents", s.handleListDocuments)
	s.route(mux, "GET /documents/{id}", s.handleGetDocument)
	s.route(mux, "DELETE /documents/{id}", s.handleDeleteDocument)

	s.route(mux, "POST /documents/{id}/commands", s.handleCommand)
	s.route(mux, "POST /documents/{id}/undo", s.handleUndo)
	s.route(mux, "POST /documents/{id}/redo", s.handleRedo)
	s.route(mux, "POST /documents/{id}/insert", s.handleInsert)
	s.route(mux, "POST /documents/{id}/images", s.handleImage)
	s.route(mux, "POST /documents/{id}/open", s.handleOpen)
	s.route(mux, "POST /documents/{id}/new", s.handleNew)
	s.route(mux, "POST /documents/{id}/find-replace", s.handleFindReplace)
	s.route(mux, "POST /documents/{id}/select", s.handleSelect)
	s.route(mux, "POST /documents/{id}/title", s.handleTitle)
	s.route(mux, "GET /documents/{id}/view", s.handleGetView)
	s.route(mux, "PUT /documents/{id}/view", s.handleUpdateView)
	s.route(mux, "POST /documents/{id}/shortcut", s.handleShortcut)

	s.route(mux, "GET /documents/{id}/export", s.handleExport)
	s.route(mux, "GET /documents/{id}/print", s.handlePrint)
	s.route(mux, "GET /documents/{id}/pdf", s.handlePDF)

	s.route(mux, "GET /documents/{id}/permissions", s.handleListPermissions)
	s.route(mux, "PUT /documents/{id}/permissions/{user}", s.handleGrant)
	s.route(mux, "DELETE /documents/{id}/permissions/{user}", s.handleRevoke)

	s.route(mux, "GET /actions", s.handleActions)
	s.route(mux, "GET /styles", s.handleStyles)
	s.route(mux, "GET /themes", s.handleThemes)

	s.route(mux, "GET /ws", s.handleWebSocket)

	return s.logRequests(s.cors.Handler(mux))
}

// route registers an authenticated, rate limited handler.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.authMiddleware(s.rateLimit(h)))
}

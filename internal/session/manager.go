package session

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/serroba/pdfcraft/internal/acl"
	"github.com/serroba/pdfcraft/internal/export"
	"github.com/serroba/pdfcraft/internal/stats"
	"github.com/serroba/pdfcraft/internal/storage"
	"github.com/serroba/pdfcraft/internal/ws"
	"github.com/sirupsen/logrus"
)

// DefaultIdleTimeout closes sessions nobody touched for this long.
const DefaultIdleTimeout = 30 * time.Minute

// ManagerConfig holds the dependencies shared by every session.
type ManagerConfig struct {
	Store        storage.Store
	PermStore    acl.Store
	Hub          *ws.Hub
	Autosave     *storage.AutosavePolicy
	Printer      export.Printer
	Stats        stats.Calculator
	HistoryLimit int
	View         *View
	IdleTimeout  time.Duration // 0 selects DefaultIdleTimeout, negative never expires
	Logger       logrus.FieldLogger
}

// Manager owns the open sessions, keyed by document ID. Idle sessions
// expire and are closed, which saves them.
type Manager struct {
	mu       sync.Mutex
	sessions *cache.Cache

	cfg        ManagerConfig
	checker    *acl.Checker
	dispatcher *Dispatcher
	log        logrus.FieldLogger
}

// NewManager creates a session manager.
func NewManager(cfg ManagerConfig) *Manager {
	idle := cfg.IdleTimeout

	switch {
	case idle == 0:
		idle = DefaultIdleTimeout
	case idle < 0:
		idle = cache.NoExpiration
	}

	log := cfg.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}

	m := &Manager{
		sessions:   cache.New(idle, idle/2),
		cfg:        cfg,
		dispatcher: NewDispatcher(),
		log:        log,
	}

	if cfg.PermStore != nil {
		m.checker = acl.NewChecker(cfg.PermStore)
	}

	m.sessions.OnEvicted(m.evicted)

	return m
}

func (m *Manager) evicted(docID string, v any) {
	s, ok := v.(*Session)
	if !ok {
		return
	}

	if err := s.Close(context.Background()); err != nil {
		m.log.WithFields(logrus.Fields{"doc_id": docID}).WithError(err).Warn("close expired session")
	}
}

// Dispatcher returns the action registry shared by the sessions.
func (m *Manager) Dispatcher() *Dispatcher {
	return m.dispatcher
}

// GetOrCreate returns the open session for docID, loading it from storage
// on first use. Each call refreshes the idle timer.
func (m *Manager) GetOrCreate(ctx context.Context, docID string) (*Session, error) {
	if s, ok := m.touch(docID); ok {
		return s, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.touch(docID); ok {
		return s, nil
	}

	// Close a lapsed session for this document before loading its saved copy.
	m.sessions.DeleteExpired()

	s := New(Config{
		DocID:        docID,
		Store:        m.cfg.Store,
		Checker:      m.checker,
		Hub:          m.cfg.Hub,
		Autosave:     m.cfg.Autosave,
		Dispatcher:   m.dispatcher,
		Printer:      m.cfg.Printer,
		Stats:        m.cfg.Stats,
		HistoryLimit: m.cfg.HistoryLimit,
		View:         m.cfg.View,
		Logger:       m.log,
	})

	if err := s.Load(ctx); err != nil {
		return nil, err
	}

	m.sessions.SetDefault(docID, s)

	return s, nil
}

// touch looks up a session and restarts its idle timer. A closed session
// counts as missing.
func (m *Manager) touch(docID string) (*Session, bool) {
	v, ok := m.sessions.Get(docID)
	if !ok {
		return nil, false
	}

	s, ok := v.(*Session)
	if !ok || s.isClosed() {
		return nil, false
	}

	m.sessions.SetDefault(docID, s)

	return s, true
}

// Get returns an open session or nil.
func (m *Manager) Get(docID string) *Session {
	v, ok := m.sessions.Get(docID)
	if !ok {
		return nil
	}

	s, _ := v.(*Session)

	return s
}

// Close closes and forgets a session. Closing an unknown document is a no-op.
func (m *Manager) Close(ctx context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.Get(docID)
	if s == nil {
		return nil
	}

	err := s.Close(ctx)

	// The eviction callback sees an already closed session.
	m.sessions.Delete(docID)

	return err
}

// CloseAll closes every session and returns the last error.
func (m *Manager) CloseAll(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var lastErr error

	for _, item := range m.sessions.Items() {
		s, ok := item.Object.(*Session)
		if !ok {
			continue
		}

		if err := s.Close(ctx); err != nil {
			lastErr = err
		}
	}

	m.sessions.Flush()

	return lastErr
}

// Count returns the number of open sessions.
func (m *Manager) Count() int {
	return m.sessions.ItemCount()
}

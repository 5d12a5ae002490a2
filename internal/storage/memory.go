package storage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// documentData holds all persisted data for a single document.
type documentData struct {
	createdAt time.Time
	snapshot  *Snapshot
}

func (d *documentData) info(docID string) DocumentInfo {
	info := DocumentInfo{DocID: docID, UpdatedAt: d.createdAt}

	if d.snapshot != nil {
		info.Title = d.snapshot.Title
		info.Revision = d.snapshot.Revision
		info.UpdatedAt = d.snapshot.CreatedAt
	}

	return info
}

// MemoryStore is an in-memory implementation of the Store interface.
// Useful for testing and development.
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[string]*documentData
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[string]*documentData),
	}
}

// CreateDocument creates a new document with the given ID.
func (m *MemoryStore) CreateDocument(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[docID]; exists {
		return ErrDocumentExists
	}

	m.docs[docID] = &documentData{createdAt: time.Now()}

	return nil
}

// DocumentExists checks if a document exists.
func (m *MemoryStore) DocumentExists(_ context.Context, docID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.docs[docID]

	return exists, nil
}

// SaveSnapshot stores snap as the document's latest copy.
func (m *MemoryStore) SaveSnapshot(_ context.Context, snap Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	doc, exists := m.docs[snap.DocID]
	if !exists {
		return ErrDocumentNotFound
	}

	snap = stamp(snap)
	doc.snapshot = &snap

	return nil
}

// LoadSnapshot retrieves the latest snapshot for a document.
func (m *MemoryStore) LoadSnapshot(_ context.Context, docID string) (Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, exists := m.docs[docID]
	if !exists {
		return Snapshot{}, ErrDocumentNotFound
	}

	if doc.snapshot == nil {
		return Snapshot{}, ErrSnapshotNotFound
	}

	return *doc.snapshot, nil
}

// ListDocuments returns every document, most recently updated first.
func (m *MemoryStore) ListDocuments(_ context.Context) ([]DocumentInfo, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]DocumentInfo, 0, len(m.docs))

	for id, doc := range m.docs {
		result = append(result, doc.info(id))
	}

	sortInfos(result)

	return result, nil
}

// DeleteDocument removes a document.
func (m *MemoryStore) DeleteDocument(_ context.Context, docID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[docID]; !exists {
		return ErrDocumentNotFound
	}

	delete(m.docs, docID)

	return nil
}

func sortInfos(infos []DocumentInfo) {
	sort.Slice(infos, func(i, j int) bool {
		if !infos[i].UpdatedAt.Equal(infos[j].UpdatedAt) {
			return infos[i].UpdatedAt.After(infos[j].UpdatedAt)
		}

		return infos[i].DocID < infos[j].DocID
	})
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)

package storage

import (
	"context"
	"errors"
	"time"
)

// Common errors.
var (
	ErrDocumentNotFound = errors.New("document not found")
	ErrDocumentExists   = errors.New("document already exists")
	ErrSnapshotNotFound = errors.New("snapshot not found")
)

// Snapshot is a saved copy of a document's markup.
type Snapshot struct {
	DocID     string    `json:"docId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Revision  int       `json:"revision"`
	CreatedAt time.Time `json:"createdAt"`
}

// DocumentInfo summarizes a stored document for listings.
type DocumentInfo struct {
	DocID     string    `json:"docId"`
	Title     string    `json:"title"`
	Revision  int       `json:"revision"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Store defines the interface for persisting documents.
// Implementations can use in-memory storage, databases, or other backends.
type Store interface {
	// CreateDocument registers an empty document.
	// Returns ErrDocumentExists if the document already exists.
	CreateDocument(ctx context.Context, docID string) error

	// DocumentExists checks if a document exists.
	DocumentExists(ctx context.Context, docID string) (bool, error)

	// SaveSnapshot replaces the saved copy of a document. A zero CreatedAt
	// is set to the current time.
	// Returns ErrDocumentNotFound if the document doesn't exist.
	SaveSnapshot(ctx context.Context, snap Snapshot) error

	// LoadSnapshot retrieves the latest snapshot for a document.
	// Returns ErrDocumentNotFound if the document doesn't exist.
	// Returns ErrSnapshotNotFound if document exists but has never been saved.
	LoadSnapshot(ctx context.Context, docID string) (Snapshot, error)

	// ListDocuments returns every document, most recently updated first.
	ListDocuments(ctx context.Context) ([]DocumentInfo, error)

	// DeleteDocument removes a document and its snapshot.
	// Returns ErrDocumentNotFound if the document doesn't exist.
	DeleteDocument(ctx context.Context, docID string) error
}

func stamp(snap Snapshot) Snapshot {
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = time.Now()
	}

	return snap
}

package storage

import (
	"context"
	"errors"
	"sync"
)

// AutosavePolicy decides when a document has changed enough to be saved.
type AutosavePolicy struct {
	mu        sync.Mutex
	threshold int            // Save every N mutations; 0 disables
	pending   map[string]int // Mutations per document since the last save
}

// NewAutosavePolicy creates a policy that triggers a save every N mutations.
// A non-positive threshold never triggers.
func NewAutosavePolicy(threshold int) *AutosavePolicy {
	return &AutosavePolicy{
		threshold: threshold,
		pending:   make(map[string]int),
	}
}

// RecordMutation records that a document changed.
// Returns true if the document should be saved now.
func (p *AutosavePolicy) RecordMutation(docID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending[docID]++

	return p.threshold > 0 && p.pending[docID] >= p.threshold
}

// Reset clears the counter after a save.
func (p *AutosavePolicy) Reset(docID string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	delete(p.pending, docID)
}

// PendingMutations returns the number of mutations since the last save.
func (p *AutosavePolicy) PendingMutations(docID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.pending[docID]
}

// DocumentLoader loads the saved state a session starts from.
type DocumentLoader struct {
	store Store
}

// NewDocumentLoader creates a new document loader.
func NewDocumentLoader(store Store) *DocumentLoader {
	return &DocumentLoader{store: store}
}

// LoadResult contains the result of loading a document.
type LoadResult struct {
	Title    string
	Content  string
	Revision int
	IsNew    bool // True if the document was never saved
}

// Load returns the latest snapshot, or an empty document when none was saved.
// It returns ErrDocumentNotFound for unknown documents.
func (l *DocumentLoader) Load(ctx context.Context, docID string) (LoadResult, error) {
	snapshot, err := l.store.LoadSnapshot(ctx, docID)

	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		return LoadResult{IsNew: true}, nil
	case err != nil:
		return LoadResult{}, err
	}

	return LoadResult{
		Title:    snapshot.Title,
		Content:  snapshot.Content,
		Revision: snapshot.Revision,
	}, nil
}

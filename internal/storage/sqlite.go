package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id           TEXT PRIMARY KEY,
	title        TEXT NOT NULL DEFAULT '',
	content      TEXT NOT NULL DEFAULT '',
	revision     INTEGER NOT NULL DEFAULT 0,
	has_snapshot INTEGER NOT NULL DEFAULT 0,
	created_at   INTEGER NOT NULL,
	updated_at   INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_updated ON documents(updated_at);
`

// SQLiteStore keeps documents in a SQLite database file.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (creating if needed) the database at path.
// Use ":memory:" for a private in-memory database.
func OpenSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// A single connection serializes writers and keeps :memory: databases alive.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("connect sqlite: %w", err)
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()

		return nil, fmt.Errorf("init sqlite schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the database so access lists can live next to the documents.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// CreateDocument inserts an empty document row.
func (s *SQLiteStore) CreateDocument(ctx context.Context, docID string) error {
	now := time.Now().UnixNano()

	res, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO documents (id, created_at, updated_at) VALUES (?, ?, ?)`,
		docID, now, now)
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("create document: %w", err)
	}

	if n == 0 {
		return ErrDocumentExists
	}

	return nil
}

// DocumentExists checks if a document exists.
func (s *SQLiteStore) DocumentExists(ctx context.Context, docID string) (bool, error) {
	var one int

	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, docID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}

	if err != nil {
		return false, fmt.Errorf("document exists: %w", err)
	}

	return true, nil
}

// SaveSnapshot replaces the saved content of a document.
func (s *SQLiteStore) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	snap = stamp(snap)

	res, err := s.db.ExecContext(ctx,
		`UPDATE documents SET title = ?, content = ?, revision = ?, has_snapshot = 1, updated_at = ? WHERE id = ?`,
		snap.Title, snap.Content, snap.Revision, snap.CreatedAt.UnixNano(), snap.DocID)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	if n == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

// LoadSnapshot retrieves the latest snapshot for a document.
func (s *SQLiteStore) LoadSnapshot(ctx context.Context, docID string) (Snapshot, error) {
	var (
		snap        = Snapshot{DocID: docID}
		hasSnapshot bool
		updated     int64
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT title, content, revision, has_snapshot, updated_at FROM documents WHERE id = ?`, docID).
		Scan(&snap.Title, &snap.Content, &snap.Revision, &hasSnapshot, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrDocumentNotFound
	}

	if err != nil {
		return Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}

	if !hasSnapshot {
		return Snapshot{}, ErrSnapshotNotFound
	}

	snap.CreatedAt = time.Unix(0, updated)

	return snap, nil
}

// ListDocuments returns every document, most recently updated first.
func (s *SQLiteStore) ListDocuments(ctx context.Context) ([]DocumentInfo, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, revision, updated_at FROM documents ORDER BY updated_at DESC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	result := make([]DocumentInfo, 0)

	for rows.Next() {
		var (
			info    DocumentInfo
			updated int64
		)

		if err := rows.Scan(&info.DocID, &info.Title, &info.Revision, &updated); err != nil {
			return nil, fmt.Errorf("list documents: %w", err)
		}

		info.UpdatedAt = time.Unix(0, updated)
		result = append(result, info)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	return result, nil
}

// DeleteDocument removes a document row.
func (s *SQLiteStore) DeleteDocument(ctx context.Context, docID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ?`, docID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}

	if n == 0 {
		return ErrDocumentNotFound
	}

	return nil
}

var _ Store = (*SQLiteStore)(nil)

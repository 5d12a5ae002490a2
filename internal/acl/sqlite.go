package acl

import (
	"database/sql"
	"errors"
	"fmt"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS permissions (
	doc_id  TEXT NOT NULL,
	user_id TEXT NOT NULL,
	role    INTEGER NOT NULL,
	PRIMARY KEY (doc_id, user_id)
);
`

// SQLStore keeps access lists in a SQLite database, normally the one that
// holds the documents.
type SQLStore struct {
	db *sql.DB
}

// NewSQLStore creates the permissions table if needed.
func NewSQLStore(db *sql.DB) (*SQLStore, error) {
	if _, err := db.Exec(sqliteSchema); err != nil {
		return nil, fmt.Errorf("init permissions schema: %w", err)
	}

	return &SQLStore{db: db}, nil
}

func (s *SQLStore) Grant(docID, userID string, role Role) error {
	_, err := s.db.Exec(
		`INSERT INTO permissions (doc_id, user_id, role) VALUES (?, ?, ?)
		 ON CONFLICT (doc_id, user_id) DO UPDATE SET role = excluded.role`,
		docID, userID, int(role),
	)
	if err != nil {
		return fmt.Errorf("grant: %w", err)
	}

	return nil
}

func (s *SQLStore) Revoke(docID, userID string) error {
	res, err := s.db.Exec(`DELETE FROM permissions WHERE doc_id = ? AND user_id = ?`, docID, userID)
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revoke: %w", err)
	}

	if n == 0 {
		return ErrPermissionNotFound
	}

	return nil
}

func (s *SQLStore) RevokeAll(docID string) error {
	if _, err := s.db.Exec(`DELETE FROM permissions WHERE doc_id = ?`, docID); err != nil {
		return fmt.Errorf("revoke all: %w", err)
	}

	return nil
}

func (s *SQLStore) GetRole(docID, userID string) (Role, error) {
	var role int

	err := s.db.QueryRow(
		`SELECT role FROM permissions WHERE doc_id = ? AND user_id = ?`, docID, userID,
	).Scan(&role)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrPermissionNotFound
	}

	if err != nil {
		return 0, fmt.Errorf("get role: %w", err)
	}

	return Role(role), nil
}

func (s *SQLStore) ListPermissions(docID string) ([]Permission, error) {
	rows, err := s.db.Query(
		`SELECT user_id, role FROM permissions WHERE doc_id = ? ORDER BY user_id`, docID,
	)
	if err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}
	defer rows.Close()

	perms := []Permission{}

	for rows.Next() {
		p := Permission{DocID: docID}

		var role int
		if err := rows.Scan(&p.UserID, &role); err != nil {
			return nil, fmt.Errorf("list permissions: %w", err)
		}

		p.Role = Role(role)
		perms = append(perms, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list permissions: %w", err)
	}

	return perms, nil
}

var _ Store = (*SQLStore)(nil)

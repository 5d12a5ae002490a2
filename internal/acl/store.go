package acl

import (
	"cmp"
	"errors"
	"slices"
)

// Common errors.
var (
	ErrPermissionNotFound = errors.New("permission not found")
	ErrAccessDenied       = errors.New("access denied")
	ErrUnknownRole        = errors.New("unknown role")
)

// Store persists the access list of every document.
type Store interface {
	// Grant sets the user's role on a document, replacing any previous one.
	Grant(docID, userID string, role Role) error

	// Revoke drops the user from the access list. ErrPermissionNotFound when absent.
	Revoke(docID, userID string) error

	// RevokeAll drops the whole access list, as when the document is deleted.
	RevokeAll(docID string) error

	// GetRole returns the user's role. ErrPermissionNotFound when absent.
	GetRole(docID, userID string) (Role, error)

	// ListPermissions returns the access list ordered by user ID.
	ListPermissions(docID string) ([]Permission, error)
}

func sortByUser(perms []Permission) {
	slices.SortFunc(perms, func(a, b Permission) int { return cmp.Compare(a.UserID, b.UserID) })
}

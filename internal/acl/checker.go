package acl

import (
	"errors"
	"fmt"
)

// Action is something a user does to a document.
type Action int

const (
	ActionView Action = iota
	ActionEdit
	ActionExport
	ActionShare
	ActionDelete
)

// String returns the string representation of the action.
func (a Action) String() string {
	switch a {
	case ActionView:
		return "view"
	case ActionEdit:
		return "edit"
	case ActionExport:
		return "export"
	case ActionShare:
		return "share"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// Checker validates user permissions for document operations.
type Checker struct {
	store Store
}

// NewChecker creates a new permission checker.
func NewChecker(store Store) *Checker {
	return &Checker{store: store}
}

// CanPerform checks if a user can perform an action on a document.
// Users without a permission can do nothing.
func (c *Checker) CanPerform(docID, userID string, action Action) (bool, error) {
	role, err := c.store.GetRole(docID, userID)
	if err != nil {
		if errors.Is(err, ErrPermissionNotFound) {
			return false, nil
		}

		return false, err
	}

	return role.Allows(action), nil
}

// RequirePermission checks permission and returns an error if denied.
func (c *Checker) RequirePermission(docID, userID string, action Action) error {
	allowed, err := c.CanPerform(docID, userID, action)
	if err != nil {
		return err
	}

	if !allowed {
		return fmt.Errorf("%w: %s on %s", ErrAccessDenied, action, docID)
	}

	return nil
}

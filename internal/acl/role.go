package acl

import (
	"fmt"
	"strings"
)

// Role represents a user's access level for a document.
type Role int

const (
	// Viewer can open, print and export the document.
	Viewer Role = iota
	// Editor can also change the document.
	Editor
	// Owner can also share and delete the document.
	Owner
)

// String returns the string representation of the role.
func (r Role) String() string {
	switch r {
	case Viewer:
		return "viewer"
	case Editor:
		return "editor"
	case Owner:
		return "owner"
	default:
		return "unknown"
	}
}

// ParseRole parses a role name, ignoring case.
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "viewer":
		return Viewer, nil
	case "editor":
		return Editor, nil
	case "owner":
		return Owner, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, s)
	}
}

// Allows reports whether the role permits an action.
func (r Role) Allows(action Action) bool {
	switch action {
	case ActionView, ActionExport:
		return r >= Viewer && r <= Owner
	case ActionEdit:
		return r == Editor || r == Owner
	case ActionShare, ActionDelete:
		return r == Owner
	default:
		return false
	}
}

// Permission represents a user's access to a specific document.
type Permission struct {
	DocID  string `json:"docId"`
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

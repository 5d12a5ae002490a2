// Package history keeps bounded undo and redo stacks of document snapshots.
package history

import (
	"errors"
	"sync"
	"time"
)

// DefaultLimit is the number of snapshots kept on each stack.
const DefaultLimit = 50

// Errors returned when a stack is empty. Callers treat both as a no-op.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// Snapshot is the serialized document content at a point in time.
type Snapshot struct {
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Take captures content with the current time.
func Take(content string) Snapshot {
	return Snapshot{Content: content, Timestamp: time.Now()}
}

// History is a pair of bounded snapshot stacks. The newest entry of each
// stack is at the end of its slice.
type History struct {
	mu    sync.Mutex
	undo  []Snapshot
	redo  []Snapshot
	limit int
}

// New creates a history keeping at most limit snapshots per stack.
// A non-positive limit selects DefaultLimit.
func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &History{
		undo:  make([]Snapshot, 0, limit),
		redo:  make([]Snapshot, 0, limit),
		limit: limit,
	}
}

// Record pushes the pre-mutation snapshot and clears the redo stack.
func (h *History) Record(s Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undo = h.push(h.undo, s)
	h.redo = h.redo[:0]
}

// Undo pops the newest undo snapshot and pushes current onto the redo stack.
func (h *History) Undo(current Snapshot) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.undo) == 0 {
		return Snapshot{}, ErrNothingToUndo
	}

	prev := h.undo[len(h.undo)-1]
	h.undo = h.undo[:len(h.undo)-1]
	h.redo = h.push(h.redo, current)

	return prev, nil
}

// Redo pops the newest redo snapshot and pushes current onto the undo stack.
func (h *History) Redo(current Snapshot) (Snapshot, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.redo) == 0 {
		return Snapshot{}, ErrNothingToRedo
	}

	next := h.redo[len(h.redo)-1]
	h.redo = h.redo[:len(h.redo)-1]
	h.undo = h.push(h.undo, current)

	return next, nil
}

// push appends s, evicting the oldest entry on overflow.
func (h *History) push(stack []Snapshot, s Snapshot) []Snapshot {
	stack = append(stack, s)

	if len(stack) > h.limit {
		stack = append(stack[:0], stack[len(stack)-h.limit:]...)
	}

	return stack
}

// CanUndo reports whether Undo would succeed.
func (h *History) CanUndo() bool {
	return h.UndoLen() > 0
}

// CanRedo reports whether Redo would succeed.
func (h *History) CanRedo() bool {
	return h.RedoLen() > 0
}

// UndoLen returns the undo stack depth.
func (h *History) UndoLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.undo)
}

// RedoLen returns the redo stack depth.
func (h *History) RedoLen() int {
	h.mu.Lock()
	defer h.mu.Unlock()

	return len(h.redo)
}

// Limit returns the per-stack capacity.
func (h *History) Limit() int {
	return h.limit
}

// Clear empties both stacks.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.undo = h.undo[:0]
	h.redo = h.redo[:0]
}

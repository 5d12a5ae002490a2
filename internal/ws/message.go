package ws

import (
	"github.com/serroba/pdfcraft/internal/dom"
	"github.com/serroba/pdfcraft/internal/stats"
)

// MessageType identifies the kind of WebSocket message.
type MessageType string

const (
	// Client to Server messages.
	MessageTypeCommand MessageType = "command" // Run an editor action
	MessageTypeUndo    MessageType = "undo"
	MessageTypeRedo    MessageType = "redo"
	MessageTypeInsert  MessageType = "insert" // Insert a fragment
	MessageTypeSelect  MessageType = "select" // Move the selection
	MessageTypeSync    MessageType = "sync"   // Request current state

	// Server to Client messages.
	MessageTypeAck       MessageType = "ack"       // Action processed
	MessageTypeBroadcast MessageType = "broadcast" // Another client changed the document
	MessageTypeState     MessageType = "state"     // Full editor state
	MessageTypeError     MessageType = "error"
)

// Message is the envelope for all WebSocket communication.
type Message struct {
	Type    MessageType `json:"type"`
	Payload any         `json:"payload,omitempty"`
}

// CommandPayload asks the session to run a named action.
type CommandPayload struct {
	DocID     string         `json:"docId"`
	Command   string         `json:"command"`
	Value     string         `json:"value,omitempty"`
	Selection *dom.Selection `json:"selection,omitempty"`
}

// DocPayload carries only a document ID. Used by undo, redo and sync.
type DocPayload struct {
	DocID string `json:"docId"`
}

// InsertPayload asks the session to insert a fragment.
type InsertPayload struct {
	DocID     string            `json:"docId"`
	Kind      string            `json:"kind"`
	Params    map[string]string `json:"params,omitempty"`
	Selection *dom.Selection    `json:"selection,omitempty"`
}

// SelectPayload replaces the client's selection. A nil selection clears it.
type SelectPayload struct {
	DocID     string         `json:"docId"`
	Selection *dom.Selection `json:"selection"`
}

// AckPayload reports the outcome of a client action.
type AckPayload struct {
	Revision  int            `json:"revision"`
	Applied   bool           `json:"applied"`
	Selection *dom.Selection `json:"selection,omitempty"`
}

// BroadcastPayload tells other clients that a document changed.
type BroadcastPayload struct {
	DocID    string `json:"docId"`
	Revision int    `json:"revision"`
	Command  string `json:"command"`
	UserID   string `json:"userId"`
	Content  string `json:"content"`
}

// StatePayload sends the full editor state.
type StatePayload struct {
	DocID    string           `json:"docId"`
	Title    string           `json:"title"`
	Content  string           `json:"content"`
	Revision int              `json:"revision"`
	Stats    stats.Statistics `json:"stats"`
	View     any              `json:"view,omitempty"`
	CanUndo  bool             `json:"canUndo"`
	CanRedo  bool             `json:"canRedo"`
	Modified bool             `json:"modified"`
}

// ErrorPayload reports an error to the client.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes.
const (
	ErrorCodeAccessDenied   = "access_denied"
	ErrorCodeInvalidMessage = "invalid_message"
	ErrorCodeNotFound       = "not_found"
	ErrorCodeInternalError  = "internal_error"
	ErrorCodeSessionClosed  = "session_closed"
)

package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Errors returned by Receive for messages that were read but cannot be used.
var (
	ErrUnknownMessage = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid message payload")
)

// Conn abstracts a WebSocket connection for testability.
type Conn interface {
	WriteJSON(v any) error
	ReadJSON(v any) error
	Close() error
}

// Client represents a connected user.
type Client struct {
	ID     string
	UserID string
	conn   Conn

	mu    sync.Mutex
	docID string // Currently subscribed document
}

// NewClient creates a new client wrapper.
func NewClient(id, userID string, conn Conn) *Client {
	return &Client{
		ID:     id,
		UserID: userID,
		conn:   conn,
	}
}

// Send sends a message to the client.
func (c *Client) Send(msg Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.conn.WriteJSON(msg)
}

// SendError sends an error message to the client.
func (c *Client) SendError(code, message string) error {
	return c.Send(Message{
		Type: MessageTypeError,
		Payload: ErrorPayload{
			Code:    code,
			Message: message,
		},
	})
}

// Receive reads a message from the client.
func (c *Client) Receive() (Message, error) {
	var raw struct {
		Type    MessageType     `json:"type"`
		Payload json.RawMessage `json:"payload"`
	}

	if err := c.conn.ReadJSON(&raw); err != nil {
		return Message{}, err
	}

	msg := Message{Type: raw.Type}

	var err error

	switch raw.Type {
	case MessageTypeCommand:
		msg.Payload, err = decode[CommandPayload](raw.Payload)
	case MessageTypeInsert:
		msg.Payload, err = decode[InsertPayload](raw.Payload)
	case MessageTypeSelect:
		msg.Payload, err = decode[SelectPayload](raw.Payload)
	case MessageTypeUndo, MessageTypeRedo, MessageTypeSync:
		msg.Payload, err = decode[DocPayload](raw.Payload)
	case MessageTypeAck, MessageTypeBroadcast, MessageTypeState, MessageTypeError:
		// Server-to-client messages keep the raw payload
		msg.Payload = raw.Payload
	default:
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownMessage, raw.Type)
	}

	if err != nil {
		return Message{}, err
	}

	return msg, nil
}

func decode[T any](raw json.RawMessage) (T, error) {
	var payload T

	if len(raw) == 0 {
		return payload, nil
	}

	if err := json.Unmarshal(raw, &payload); err != nil {
		return payload, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}

	return payload, nil
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

// DocID returns the document the client is subscribed to.
func (c *Client) DocID() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.docID
}

// SetDocID sets the document the client is subscribed to.
func (c *Client) SetDocID(docID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.docID = docID
}

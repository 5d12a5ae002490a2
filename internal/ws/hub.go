package ws

import (
	"sync"
)

// Hub tracks connected editors per document and fans out changes.
type Hub struct {
	mu sync.RWMutex

	clients  map[string]*Client
	watchers map[string]map[string]struct{} // doc ID -> client IDs
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{
		clients:  make(map[string]*Client),
		watchers: make(map[string]map[string]struct{}),
	}
}

// Register adds a client to the hub.
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client.ID] = client
}

// Unregister removes a client and its document subscription.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detach(client.DocID(), client.ID)
	delete(h.clients, client.ID)
}

// Subscribe attaches a client to a document, leaving any previous one.
func (h *Hub) Subscribe(client *Client, docID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if prev := client.DocID(); prev != docID {
		h.detach(prev, client.ID)
	}

	set, ok := h.watchers[docID]
	if !ok {
		set = make(map[string]struct{})
		h.watchers[docID] = set
	}

	set[client.ID] = struct{}{}
	client.SetDocID(docID)
}

// Unsubscribe detaches a client from a document.
func (h *Hub) Unsubscribe(client *Client, docID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.detach(docID, client.ID)

	if client.DocID() == docID {
		client.SetDocID("")
	}
}

// detach drops clientID from docID's watchers. Callers hold the lock.
func (h *Hub) detach(docID, clientID string) {
	if docID == "" {
		return
	}

	set, ok := h.watchers[docID]
	if !ok {
		return
	}

	delete(set, clientID)

	if len(set) == 0 {
		delete(h.watchers, docID)
	}
}

// Broadcast sends msg to every client watching docID except excludeClientID.
// Sends run on their own goroutines so a slow client cannot stall the caller.
func (h *Hub) Broadcast(docID string, msg Message, excludeClientID string) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for id := range h.watchers[docID] {
		if id == excludeClientID {
			continue
		}

		client, ok := h.clients[id]
		if !ok {
			continue
		}

		go func(c *Client) {
			_ = c.Send(msg)
		}(client)
	}
}

// BroadcastChange notifies every client but the sender that a command changed the document.
func (h *Hub) BroadcastChange(docID string, revision int, command, content, userID, excludeClientID string) {
	h.Broadcast(docID, Message{
		Type: MessageTypeBroadcast,
		Payload: BroadcastPayload{
			DocID:    docID,
			Revision: revision,
			Command:  command,
			UserID:   userID,
			Content:  content,
		},
	}, excludeClientID)
}

// BroadcastState pushes a full state message to every client but the excluded one.
func (h *Hub) BroadcastState(state StatePayload, excludeClientID string) {
	h.Broadcast(state.DocID, Message{Type: MessageTypeState, Payload: state}, excludeClientID)
}

// ClientCount returns the number of clients watching a document.
func (h *Hub) ClientCount(docID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.watchers[docID])
}

// TotalClients returns the number of connected clients.
func (h *Hub) TotalClients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	return len(h.clients)
}

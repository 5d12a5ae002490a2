package ws_test

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/serroba/pdfcraft/internal/ws"
	"github.com/stretchr/testify/require"
)

const testDocID = "doc1"

// mockConn is a test double for ws.Conn.
type mockConn struct {
	mu       sync.Mutex
	messages []ws.Message
	closed   bool

	incoming chan ws.Message
}

func newMockConn() *mockConn {
	return &mockConn{
		messages: make([]ws.Message, 0),
		incoming: make(chan ws.Message, 10),
	}
}

func (m *mockConn) WriteJSON(v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return err
	}

	var msg ws.Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return err
	}

	m.messages = append(m.messages, msg)

	return nil
}

func (m *mockConn) ReadJSON(v any) error {
	msg := <-m.incoming

	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return json.Unmarshal(data, v)
}

func (m *mockConn) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true

	return nil
}

func (m *mockConn) Messages() []ws.Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	result := make([]ws.Message, len(m.messages))
	copy(result, m.messages)

	return result
}

func (m *mockConn) IsClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.closed
}

func TestHub_RegisterUnregister(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	client := ws.NewClient("c1", "user1", newMockConn())

	hub.Register(client)

	if hub.TotalClients() != 1 {
		t.Errorf("expected 1 client, got %d", hub.TotalClients())
	}

	hub.Unregister(client)

	if hub.TotalClients() != 0 {
		t.Errorf("expected 0 clients, got %d", hub.TotalClients())
	}
}

func TestHub_Subscribe(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	client := ws.NewClient("c1", "user1", newMockConn())

	hub.Register(client)
	hub.Subscribe(client, testDocID)

	if hub.ClientCount(testDocID) != 1 {
		t.Errorf("expected 1 client on doc1, got %d", hub.ClientCount(testDocID))
	}

	if client.DocID() != testDocID {
		t.Errorf("expected client docID doc1, got %s", client.DocID())
	}
}

func TestHub_Subscribe_SwitchesDocument(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	client := ws.NewClient("c1", "user1", newMockConn())

	hub.Register(client)
	hub.Subscribe(client, testDocID)
	hub.Subscribe(client, "doc2")

	if hub.ClientCount(testDocID) != 0 {
		t.Errorf("expected 0 clients on doc1, got %d", hub.ClientCount(testDocID))
	}

	if hub.ClientCount("doc2") != 1 {
		t.Errorf("expected 1 client on doc2, got %d", hub.ClientCount("doc2"))
	}
}

func TestHub_Unsubscribe(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	client := ws.NewClient("c1", "user1", newMockConn())

	hub.Register(client)
	hub.Subscribe(client, testDocID)
	hub.Unsubscribe(client, testDocID)

	if hub.ClientCount(testDocID) != 0 {
		t.Errorf("expected 0 clients on doc1, got %d", hub.ClientCount(testDocID))
	}

	if client.DocID() != "" {
		t.Errorf("expected empty docID, got %s", client.DocID())
	}
}

func TestHub_Unregister_CleansUpSubscription(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()
	client := ws.NewClient("c1", "user1", newMockConn())

	hub.Register(client)
	hub.Subscribe(client, testDocID)
	hub.Unregister(client)

	if hub.ClientCount(testDocID) != 0 {
		t.Errorf("expected 0 clients on doc1 after unregister, got %d", hub.ClientCount(testDocID))
	}
}

func TestHub_Broadcast(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	conn1 := newMockConn()
	conn2 := newMockConn()
	conn3 := newMockConn()

	client1 := ws.NewClient("c1", "user1", conn1)
	client2 := ws.NewClient("c2", "user2", conn2)
	client3 := ws.NewClient("c3", "user3", conn3)

	hub.Register(client1)
	hub.Register(client2)
	hub.Register(client3)

	hub.Subscribe(client1, testDocID)
	hub.Subscribe(client2, testDocID)
	hub.Subscribe(client3, "doc2")

	hub.Broadcast(testDocID, ws.Message{Type: ws.MessageTypeBroadcast, Payload: "test"}, "c1")

	time.Sleep(10 * time.Millisecond)

	if len(conn1.Messages()) != 0 {
		t.Errorf("sender should not receive broadcast, got %d messages", len(conn1.Messages()))
	}

	if len(conn2.Messages()) != 1 {
		t.Errorf("client2 should receive 1 message, got %d", len(conn2.Messages()))
	}

	if len(conn3.Messages()) != 0 {
		t.Errorf("client3 watches another document, got %d messages", len(conn3.Messages()))
	}
}

func TestHub_BroadcastChange(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	conn := newMockConn()
	client := ws.NewClient("c1", "user1", conn)

	hub.Register(client)
	hub.Subscribe(client, testDocID)

	hub.BroadcastChange(testDocID, 5, "bold", "<p><b>x</b></p>", "user2", "other")

	time.Sleep(10 * time.Millisecond)

	messages := conn.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, ws.MessageTypeBroadcast, messages[0].Type)

	payload, ok := messages[0].Payload.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "bold", payload["command"])
	require.InDelta(t, 5, payload["revision"], 0)
	require.Equal(t, "<p><b>x</b></p>", payload["content"])
}

func TestHub_BroadcastState(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	sender := newMockConn()
	watcher := newMockConn()

	c1 := ws.NewClient("c1", "user1", sender)
	c2 := ws.NewClient("c2", "user2", watcher)

	hub.Register(c1)
	hub.Register(c2)
	hub.Subscribe(c1, testDocID)
	hub.Subscribe(c2, testDocID)

	hub.BroadcastState(ws.StatePayload{DocID: testDocID, Title: "Notes", Revision: 2, CanUndo: true}, "c1")

	time.Sleep(10 * time.Millisecond)

	require.Empty(t, sender.Messages())

	messages := watcher.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, ws.MessageTypeState, messages[0].Type)

	payload, ok := messages[0].Payload.(map[string]any)
	require.True(t, ok)
	require.Equal(t, "Notes", payload["title"])
	require.Equal(t, true, payload["canUndo"])
}

func TestHub_MultipleDocuments(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	client1 := ws.NewClient("c1", "user1", newMockConn())
	client2 := ws.NewClient("c2", "user2", newMockConn())

	hub.Register(client1)
	hub.Register(client2)

	hub.Subscribe(client1, testDocID)
	hub.Subscribe(client2, "doc2")

	if hub.ClientCount(testDocID) != 1 {
		t.Errorf("expected 1 client on doc1, got %d", hub.ClientCount(testDocID))
	}

	if hub.ClientCount("doc2") != 1 {
		t.Errorf("expected 1 client on doc2, got %d", hub.ClientCount("doc2"))
	}

	if hub.TotalClients() != 2 {
		t.Errorf("expected 2 total clients, got %d", hub.TotalClients())
	}
}

func TestHub_ConcurrentSubscribes(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	var wg sync.WaitGroup

	for i := range 20 {
		wg.Add(1)

		go func(n int) {
			defer wg.Done()

			client := ws.NewClient(string(rune('a'+n)), "user", newMockConn())

			hub.Register(client)
			hub.Subscribe(client, testDocID)
		}(i)
	}

	wg.Wait()

	if hub.ClientCount(testDocID) != 20 {
		t.Errorf("expected 20 clients on doc1, got %d", hub.ClientCount(testDocID))
	}
}

func TestHub_Broadcast_NoSubscribers(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	hub.Broadcast("nonexistent", ws.Message{Type: ws.MessageTypeBroadcast, Payload: "test"}, "")

	require.Equal(t, 0, hub.ClientCount("nonexistent"))
}

func TestHub_Broadcast_OnlyExcludedWatcher(t *testing.T) {
	t.Parallel()

	hub := ws.NewHub()

	gone := ws.NewClient("c1", "user1", newMockConn())
	hub.Register(gone)
	hub.Subscribe(gone, testDocID)
	hub.Unregister(gone)

	conn := newMockConn()
	client := ws.NewClient("c2", "user2", conn)

	hub.Register(client)
	hub.Subscribe(client, testDocID)

	hub.Broadcast(testDocID, ws.Message{Type: ws.MessageTypeBroadcast, Payload: "test"}, "c2")

	time.Sleep(10 * time.Millisecond)

	if len(conn.Messages()) != 0 {
		t.Errorf("excluded client should not receive, got %d messages", len(conn.Messages()))
	}
}

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/serroba/pdfcraft/internal/fragment"
	"github.com/serroba/pdfcraft/internal/session"
	"github.com/serroba/pdfcraft/internal/ws"
)

var errUnexpectedMessage = fmt.Errorf("%w: unexpected message type", errBadRequest)

// handleWebSocket handles GET /ws?docId={id}.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	docID := r.URL.Query().Get("docId")
	if docID == "" {
		writeError(w, http.StatusBadRequest, "docId query parameter is required")

		return
	}

	userID := UserIDFromContext(r.Context())

	client, cleanup, err := s.setupWebSocketClient(w, r, docID, userID)
	if err != nil {
		return
	}

	defer cleanup()

	ctx := r.Context()

	if err := s.initializeSession(ctx, client, docID, userID); err != nil {
		return
	}

	s.handleMessages(ctx, client, docID, userID)
}

// setupWebSocketClient upgrades the connection and creates a client.
func (s *Server) setupWebSocketClient(
	w http.ResponseWriter, r *http.Request, docID, userID string,
) (*ws.Client, func(), error) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithField("doc_id", docID).WithError(err).Warn("websocket upgrade failed")

		return nil, nil, err
	}

	client := ws.NewClient(uuid.NewString(), userID, conn)
	s.hub.Register(client)
	s.hub.Subscribe(client, docID)

	cleanup := func() {
		s.hub.Unregister(client)
		_ = client.Close()
	}

	return client, cleanup, nil
}

// initializeSession opens the session and sends the initial state.
func (s *Server) initializeSession(ctx context.Context, client *ws.Client, docID, userID string) error {
	sess, err := s.manager.GetOrCreate(ctx, docID)
	if err != nil {
		s.sendError(client, err)

		return err
	}

	return s.sendState(client, sess, userID)
}

// handleMessages processes incoming messages until the connection fails.
func (s *Server) handleMessages(ctx context.Context, client *ws.Client, docID, userID string) {
	for {
		msg, err := client.Receive()
		if err != nil {
			if errors.Is(err, ws.ErrUnknownMessage) || errors.Is(err, ws.ErrInvalidPayload) {
				_ = client.SendError(ws.ErrorCodeInvalidMessage, err.Error())

				continue
			}

			return
		}

		s.handleMessage(ctx, client, docID, userID, msg)
	}
}

// handleMessage runs msg and sends the reply. The session is looked up for
// every message, which also keeps it from idling out while the connection
// is in use.
func (s *Server) handleMessage(ctx context.Context, client *ws.Client, docID, userID string, msg ws.Message) {
	reply, err := s.runMessage(ctx, client, docID, userID, msg)
	if errors.Is(err, session.ErrSessionClosed) {
		// Evicted between the lookup and the call; the next lookup reopens it.
		reply, err = s.runMessage(ctx, client, docID, userID, msg)
	}

	if err != nil {
		s.sendError(client, err)

		return
	}

	_ = client.Send(reply)
}

func (s *Server) runMessage(ctx context.Context, client *ws.Client, docID, userID string, msg ws.Message) (ws.Message, error) {
	sess, err := s.manager.GetOrCreate(ctx, docID)
	if err != nil {
		return ws.Message{}, err
	}

	var result session.Result

	switch p := msg.Payload.(type) {
	case ws.CommandPayload:
		result, err = sess.Execute(ctx, session.Command{
			ClientID:  client.ID,
			UserID:    userID,
			Name:      p.Command,
			Value:     p.Value,
			Selection: p.Selection,
		})
	case ws.InsertPayload:
		result, err = sess.Insert(ctx, session.InsertRequest{
			ClientID:  client.ID,
			UserID:    userID,
			Kind:      p.Kind,
			Params:    fragment.Params(p.Params),
			Selection: p.Selection,
		})
	case ws.SelectPayload:
		if err := sess.Select(userID, p.Selection); err != nil {
			return ws.Message{}, err
		}

		return stateMessage(sess, userID)
	case ws.DocPayload:
		switch msg.Type {
		case ws.MessageTypeUndo:
			result, err = sess.Undo(ctx, client.ID, userID)
		case ws.MessageTypeRedo:
			result, err = sess.Redo(ctx, client.ID, userID)
		default:
			return stateMessage(sess, userID)
		}
	default:
		// Server-to-client messages are not accepted from clients.
		return ws.Message{}, errUnexpectedMessage
	}

	if err != nil {
		return ws.Message{}, err
	}

	return ws.Message{
		Type: ws.MessageTypeAck,
		Payload: ws.AckPayload{
			Revision:  result.Revision,
			Applied:   result.Applied,
			Selection: result.Selection,
		},
	}, nil
}

func stateMessage(sess *session.Session, userID string) (ws.Message, error) {
	state, err := sess.State(userID)
	if err != nil {
		return ws.Message{}, err
	}

	return ws.Message{Type: ws.MessageTypeState, Payload: state.Payload()}, nil
}

// sendState sends the current document state to the client.
func (s *Server) sendState(client *ws.Client, sess *session.Session, userID string) error {
	msg, err := stateMessage(sess, userID)
	if err != nil {
		s.sendError(client, err)

		return err
	}

	return client.Send(msg)
}

func (s *Server) sendError(client *ws.Client, err error) {
	code := wsCode(err)

	message := err.Error()
	if code == ws.ErrorCodeInternalError {
		s.log.WithField("client_id", client.ID).WithError(err).Error("websocket request failed")
		message = "internal server error"
	}

	_ = client.SendError(code, message)
}

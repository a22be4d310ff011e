package http

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/runner"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// ChatMessage is what the /chat endpoint writes for every event.
type ChatMessage struct {
	Type     domain.EventType `json:"type"`
	Content  string           `json:"content"`
	ThreadID string           `json:"thread_id"`
}

// chatConn is one websocket client bound to a thread.
type chatConn struct {
	conn     *websocket.Conn
	threadID string

	// credential is the last token this connection sent. Other connections to the
	// same thread never see it.
	credential string
}

// Chat handles GET /chat?thread_id=<optional>. Every inbound frame is one turn.
// Reconnecting to a thread that awaits approval re-surfaces the prompt immediately.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Chat: upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(int64(runner.DefaultMaxInputSize) * 4)

	c := &chatConn{
		conn:     conn,
		threadID: r.URL.Query().Get("thread_id"),
	}
	if c.threadID == "" {
		c.threadID = uuid.NewString()
	}
	ctx := r.Context()
	logger := s.logger.With("thread_id", c.threadID)
	logger.Info("chat connected")

	if s.discardOnClose {
		defer func() {
			if err := s.engine.Delete(context.WithoutCancel(ctx), c.threadID); err != nil {
				logger.Warn("chat discard failed", "err", err)
			}
		}()
	}

	if _, events, err := s.engine.Resume(ctx, c.threadID); err == nil {
		if err := c.write(events); err != nil {
			return
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.Warn("chat read failed", "err", err)
			}
			logger.Info("chat disconnected")
			return
		}

		var in domain.Inbound
		if err := json.Unmarshal(data, &in); err != nil {
			if c.fail("invalid message: "+err.Error()) != nil {
				return
			}
			continue
		}
		clean, err := runner.SanitizeInput(in.Message)
		if err != nil {
			if c.fail(err.Error()) != nil {
				return
			}
			continue
		}
		in.Message = clean
		if in.Credential != "" {
			c.credential = in.Credential
		} else {
			in.Credential = c.credential
		}

		_, events, err := s.engine.Send(ctx, c.threadID, in)
		if err != nil {
			logger.Error("chat turn failed", "err", err)
			if c.fail(err.Error()) != nil {
				return
			}
			continue
		}
		if err := c.write(events); err != nil {
			logger.Warn("chat write failed", "err", err)
			return
		}
	}
}

func (c *chatConn) write(events []domain.Event) error {
	for _, evt := range events {
		msg := ChatMessage{Type: evt.Type, Content: evt.Content, ThreadID: c.threadID}
		if err := c.conn.WriteJSON(msg); err != nil {
			return err
		}
	}
	return nil
}

func (c *chatConn) fail(cause string) error {
	return c.conn.WriteJSON(ChatMessage{Type: domain.EventError, Content: "Error: " + cause, ThreadID: c.threadID})
}

package httpapi

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/dmitrijs2005/chatrelay/internal/server/relay"
	"github.com/gorilla/websocket"
)

// closeUsernameTaken is the application close code signalled to a client
// whose username is already registered by a live session.
const closeUsernameTaken = 4001

// wsConn adapts a gorilla WebSocket connection to relay.Conn. Writes are
// serialized with a mutex (the registry replays over it from the session
// goroutine while routers deliver from other sessions) and carry a bounded
// deadline so a stalled peer cannot pin a sender.
type wsConn struct {
	mu           sync.Mutex
	conn         *websocket.Conn
	writeTimeout time.Duration
}

func newWSConn(conn *websocket.Conn, writeTimeout time.Duration) *wsConn {
	return &wsConn{conn: conn, writeTimeout: writeTimeout}
}

func (c *wsConn) SendText(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

func (c *wsConn) ReceiveText() (string, error) {
	_, data, err := c.conn.ReadMessage()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *wsConn) Close() error {
	return c.conn.Close()
}

// closeWithStatus sends a close control frame with the given code and reason
// before the connection is torn down.
func (c *wsConn) closeWithStatus(code int, reason string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(c.writeTimeout))
}

func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {

	ctx := r.Context()
	username := r.PathValue("username")

	exists, err := s.users.Exists(ctx, username)
	if err != nil {
		s.logger.Error(ctx, "exists check failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
		return
	}
	if !exists {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "unknown username"})
		return
	}

	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		s.logger.Warn(ctx, "websocket upgrade failed", "error", err)
		return
	}

	conn := newWSConn(ws, s.sendTimeout)
	defer conn.Close()

	session := relay.NewSession(username, conn, s.registry, s.messages, s.logger)

	switch err := session.Run(ctx); {
	case errors.Is(err, common.ErrUsernameTaken):
		conn.closeWithStatus(closeUsernameTaken, "Username already in use")
	case errors.Is(err, common.ErrMalformedFrame):
		conn.closeWithStatus(websocket.CloseProtocolError, "protocol error")
	case err != nil:
		s.logger.Error(ctx, "session failed", "username", username, "error", err)
		conn.closeWithStatus(websocket.CloseInternalServerErr, "internal error")
	}
}

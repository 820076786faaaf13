package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	gws "github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
	sendBuffer     = 64
)

// Client is one live feed connection. The feed is push only; inbound frames are read
// just to observe pongs and close frames.
type Client struct {
	hub    *Hub
	conn   *gws.Conn
	send   chan []byte
	userID string
}

// Serve upgrades the request and attaches the connection to the hub until either side closes.
func (h *Hub) Serve(ctx context.Context, w http.ResponseWriter, r *http.Request, userID string, upgrader *gws.Upgrader) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, sendBuffer), userID: userID}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return nil
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	}

	go client.writePump()
	client.readPump(ctx)
	return nil
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		case <-ctx.Done():
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if gws.IsUnexpectedCloseError(err, gws.CloseGoingAway, gws.CloseNormalClosure) {
				slog.Warn("live feed connection closed", "error", err, "user_id", c.userID)
			}
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(gws.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(gws.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(gws.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

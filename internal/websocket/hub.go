package websocket

import (
	"context"
	"encoding/json"
	"log/slog"

	"idatech-backoffice/internal/event"
	"idatech-backoffice/internal/observability"
)

// Hub fans bus events out to every connected live feed client.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	bus        event.Bus
}

func NewHub(bus event.Bus) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
		clients:    make(map[*Client]bool),
		bus:        bus,
	}
}

// Run owns the client set until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	events, unsubscribe := h.bus.Subscribe()
	defer unsubscribe()
	defer close(h.done)
	defer h.closeAll()

	for {
		select {
		case <-ctx.Done():
			return
		case client := <-h.register:
			h.clients[client] = true
			observability.SetWebsocketClients(len(h.clients))
		case client := <-h.unregister:
			h.drop(client)
		case e, ok := <-events:
			if !ok {
				return
			}
			message, err := json.Marshal(e)
			if err != nil {
				slog.Error("failed to marshal event", "error", err, "type", e.Type)
				continue
			}
			for client := range h.clients {
				select {
				case client.send <- message:
				default:
					slog.Warn("dropping slow live feed client", "user_id", client.userID)
					h.drop(client)
				}
			}
		}
	}
}

func (h *Hub) drop(client *Client) {
	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)
	close(client.send)
	observability.SetWebsocketClients(len(h.clients))
}

func (h *Hub) closeAll() {
	for client := range h.clients {
		h.drop(client)
	}
}

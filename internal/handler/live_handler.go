package handler

import (
	"log/slog"
	"net/http"

	gws "github.com/gorilla/websocket"

	"idatech-backoffice/internal/websocket"
)

type LiveHandler struct {
	hub      *websocket.Hub
	upgrader *gws.Upgrader
}

// NewLiveHandler serves the event feed. allowedOrigins mirrors the CORS list; "*" accepts any origin.
func NewLiveHandler(hub *websocket.Hub, allowedOrigins []string) *LiveHandler {
	origins := map[string]struct{}{}
	for _, origin := range allowedOrigins {
		origins[origin] = struct{}{}
	}

	upgrader := &gws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			if _, wildcard := origins["*"]; wildcard {
				return true
			}
			_, ok := origins[origin]
			return ok
		},
	}
	return &LiveHandler{hub: hub, upgrader: upgrader}
}

func (h *LiveHandler) Serve(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if err := h.hub.Serve(r.Context(), w, r, actor.UserID, h.upgrader); err != nil {
		slog.Warn("live feed upgrade failed", "error", err, "user_id", actor.UserID)
	}
}

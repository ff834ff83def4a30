package events

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/gin-gonic/gin"

	"github.com/papersort/papersort/internal/server/handlers/api"
	"github.com/papersort/papersort/internal/version"
)

const maxMessageSize = 64 * 1024

// Event is one server-to-UI notification.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// Hub fans session events out to every connected browser tab. Traffic
// is one-way: clients only listen.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*client
	closed  bool
}

func NewHub() *Hub {
	return &Hub{
		clients: make(map[string]*client),
	}
}

// Publish implements session.Publisher.
func (h *Hub) Publish(event string, payload any) {
	h.Broadcast(&Event{Type: event, Payload: payload})
}

func (h *Hub) Broadcast(event *Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, c := range h.clients {
		c.Send(event)
	}
}

// WebsocketHandler upgrades the connection and registers the client.
func (h *Hub) WebsocketHandler(ctx *gin.Context) {
	conn, err := websocket.Accept(ctx.Writer, ctx.Request, &websocket.AcceptOptions{
		// loopback app; the browser connects from the page we served
		InsecureSkipVerify: true,
	})
	if err != nil {
		api.AbortWithError(ctx, http.StatusBadRequest, api.CodeInvalidRequest, fmt.Errorf("websocket accept: %w", err))
		return
	}
	conn.SetReadLimit(maxMessageSize)

	c := newClient(conn)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close(websocket.StatusGoingAway, "shutting down")
		return
	}
	h.clients[c.id] = c
	active := len(h.clients)
	h.mu.Unlock()
	slog.Debug("events client registered", "connId", c.id, "active", active)

	c.Send(&Event{Type: "hello", Payload: version.ShortWithApp()})
	c.Start(context.Background())

	go func() {
		<-c.Closed

		h.mu.Lock()
		delete(h.clients, c.id)
		active := len(h.clients)
		h.mu.Unlock()
		slog.Debug("events client removed", "connId", c.id, "active", active)
	}()
}

func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	clients := make([]*client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	slog.Info("events hub shutdown")
}

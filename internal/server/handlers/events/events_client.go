package events

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/papersort/papersort/internal/utils"
)

const (
	writeTimeout   = 10 * time.Second
	shutdownReason = "shutdown"
)

// client is one connected browser tab.
type client struct {
	id     string
	tx     chan *Event
	Closed chan struct{}

	conn      *websocket.Conn
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func newClient(conn *websocket.Conn) *client {
	return &client{
		id:     utils.TokenHex(4),
		tx:     make(chan *Event, 64),
		Closed: make(chan struct{}),
		done:   make(chan struct{}),
		conn:   conn,
	}
}

func (c *client) Start(ctx context.Context) {
	c.wg.Add(2)
	go c.writeLoop(ctx)
	go c.readLoop(ctx)
}

// Send queues an event for delivery. Slow clients drop events rather
// than stalling the session.
func (c *client) Send(event *Event) {
	select {
	case <-c.done:
	case c.tx <- event:
	default:
		slog.Warn("events client buffer full", "connId", c.id, "dropped", event.Type)
	}
}

func (c *client) Close() {
	c.closeConnection(websocket.StatusNormalClosure, shutdownReason)
	c.wg.Wait()
}

func (c *client) closeConnection(status websocket.StatusCode, reason string) {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close(status, reason)
		close(c.Closed)
		slog.Debug("events client closed", "connId", c.id)
	})
}

func (c *client) writeLoop(ctx context.Context) {
	defer func() {
		c.wg.Done()
		c.closeConnection(websocket.StatusNormalClosure, shutdownReason)
	}()

	for {
		select {
		case <-c.done:
			return
		case <-ctx.Done():
			return
		case event := <-c.tx:
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := wsjson.Write(writeCtx, c.conn, event)
			cancel()
			if err != nil {
				return
			}
		}
	}
}

// readLoop only exists to notice the peer going away; inbound payloads
// are discarded.
func (c *client) readLoop(ctx context.Context) {
	defer func() {
		c.wg.Done()
		c.closeConnection(websocket.StatusNormalClosure, shutdownReason)
	}()

	for {
		if _, _, err := c.conn.Read(ctx); err != nil {
			return
		}
	}
}

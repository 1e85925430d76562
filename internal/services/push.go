// Push channel client for live history updates
package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"
	"github.com/nvale/scrapedeck/internal/models"
	"github.com/nvale/scrapedeck/internal/shared"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// PushHandler consumes one decoded push event. Handlers run on the client's
// read goroutine and must not block.
type PushHandler func(models.PushEvent)

// PushClient owns the websocket connection to the server's push channel and
// an explicit registry of active subscribers. Components register a handler
// on mount and release it through the returned cancel func on every exit
// path.
//
// Frames carry no sequence numbers, so a message dropped or reordered by
// the transport is undetectable here; a subsequent full page load
// resnapshots the authoritative state.
type PushClient struct {
	url    string
	logger *log.Logger

	mu      sync.Mutex
	conn    *websocket.Conn
	subs    map[int]PushHandler
	nextSub int
	closed  bool
}

// NewPushClient creates a push client for the given websocket URL.
func NewPushClient(wsURL string, logger *log.Logger) *PushClient {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &PushClient{
		url:    wsURL,
		logger: logger,
		subs:   make(map[int]PushHandler),
	}
}

// Connect dials the push channel and starts the read loop. Call Close to
// tear the connection down.
func (c *PushClient) Connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %v", shared.ErrServiceUnavailable, c.url, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set read deadline: %w", err)
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		conn.Close()
		return shared.ErrPushClosed
	}
	c.conn = conn
	c.mu.Unlock()

	go c.readLoop(conn)
	go c.pingLoop(conn)
	return nil
}

// Subscribe registers a handler for all push events and returns a cancel
// func that removes it. Multiple independent subscribers are allowed.
func (c *PushClient) Subscribe(h PushHandler) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = h
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

// Close tears down the connection and drops all subscribers.
func (c *PushClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	c.subs = make(map[int]PushHandler)

	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

func (c *PushClient) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			closed := c.closed
			c.mu.Unlock()
			if !closed {
				c.logger.Error("push channel read failed", "err", err)
			}
			return
		}

		ev, err := models.DecodePushEvent(raw)
		if err != nil {
			// Unknown or malformed frames are skipped, not fatal.
			c.logger.Warn("skipping push frame", "err", err)
			continue
		}

		c.dispatch(ev)
	}
}

func (c *PushClient) pingLoop(conn *websocket.Conn) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for range ticker.C {
		c.mu.Lock()
		closed := c.closed || c.conn != conn
		c.mu.Unlock()
		if closed {
			return
		}
		if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
			return
		}
	}
}

// dispatch fans one event out to a snapshot of the current subscribers, so
// a handler unsubscribing mid-delivery cannot deadlock the registry.
func (c *PushClient) dispatch(ev models.PushEvent) {
	c.mu.Lock()
	handlers := make([]PushHandler, 0, len(c.subs))
	for _, h := range c.subs {
		handlers = append(handlers, h)
	}
	c.mu.Unlock()

	for _, h := range handlers {
		h(ev)
	}
}

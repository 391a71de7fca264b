// Package hub pushes score updates to WebSocket clients.  Clients may
// subscribe to a set of match ids; without a subscription they receive
// every match.
package hub

import (
	"context"
	"log"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Scoreboards are embedded on club sites, so any origin may read.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Hub maintains the set of active clients and broadcasts updates to them.
type Hub struct {
	clients   map[*Client]bool
	clientsMu sync.RWMutex

	broadcast  chan scoring.Update
	register   chan *Client
	unregister chan *Client
	done       chan struct{}

	totalConnections atomic.Int64
	totalMessages    atomic.Int64
	dropped          atomic.Int64
}

// New creates a hub.  Call Run before serving connections.
func New() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan scoring.Update, 1000),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's main loop.  It returns when ctx is cancelled, closing
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return
		case c := <-h.register:
			h.clientsMu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.clientsMu.Unlock()
			h.totalConnections.Add(1)
			log.Printf("live-hub: client %s connected (total: %d)", c.ID, n)
		case c := <-h.unregister:
			h.remove(c)
		case u := <-h.broadcast:
			h.fanOut(u)
		}
	}
}

// Register adds a client.  It is a no-op once the hub has stopped.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.closeSend()
	}
}

// Unregister removes a client.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast queues an update without blocking; updates are dropped when
// the queue is full.
func (h *Hub) Broadcast(u scoring.Update) {
	select {
	case h.broadcast <- u:
	default:
		h.dropped.Add(1)
		log.Printf("live-hub: broadcast buffer full, dropping %s for match %d", u.Op, u.MatchID)
	}
}

// ServeWS upgrades the request and attaches a client.  The pumps stop
// with ctx, not with the request.
func (h *Hub) ServeWS(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	c := newClient(uuid.NewString(), conn, h)
	h.Register(c)
	go c.writePump(ctx)
	go c.readPump(ctx)
	return nil
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

// Metrics reports hub counters.
func (h *Hub) Metrics() map[string]int64 {
	return map[string]int64{
		"active_clients":    int64(h.ClientCount()),
		"total_connections": h.totalConnections.Load(),
		"total_messages":    h.totalMessages.Load(),
		"dropped_updates":   h.dropped.Load(),
		"broadcast_usage":   int64(len(h.broadcast)),
	}
}

func (h *Hub) remove(c *Client) {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		c.closeSend()
		log.Printf("live-hub: client %s disconnected (total: %d)", c.ID, len(h.clients))
	}
}

func (h *Hub) fanOut(u scoring.Update) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	msg := updateMessage(u)
	for _, c := range clients {
		if !c.Follows(u.MatchID) {
			continue
		}
		if c.trySend(msg) {
			h.totalMessages.Add(1)
			continue
		}
		// Too slow to keep up; drop the connection rather than stall the feed.
		log.Printf("live-hub: client %s buffer full, disconnecting", c.ID)
		h.remove(c)
	}
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()
	log.Printf("live-hub: shutting down (%d active clients)", len(h.clients))
	for c := range h.clients {
		c.closeSend()
		delete(h.clients, c)
	}
}

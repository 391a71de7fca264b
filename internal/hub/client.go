package hub

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outbound messages
	sendBufferSize = 256
)

// Client is one live feed connection.
type Client struct {
	ID   string
	conn *websocket.Conn
	send chan ServerMessage
	hub  unregisterer

	sendMu sync.RWMutex
	closed bool

	mu               sync.RWMutex
	matches          map[uint64]bool // empty follows every match
	connectedAt      time.Time
	messagesSent     int64
	messagesReceived int64
}

type unregisterer interface {
	Unregister(c *Client)
}

func newClient(id string, conn *websocket.Conn, h unregisterer) *Client {
	return &Client{
		ID:          id,
		conn:        conn,
		send:        make(chan ServerMessage, sendBufferSize),
		hub:         h,
		matches:     map[uint64]bool{},
		connectedAt: time.Now(),
	}
}

// readPump reads client messages until the connection drops or ctx ends.
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for ctx.Err() == nil {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("live-hub: client %s unexpected close: %v", c.ID, err)
			}
			return
		}
		c.mu.Lock()
		c.messagesReceived++
		c.mu.Unlock()
		c.handle(msg)
	}
}

// writePump forwards queued messages and keeps the connection alive.
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"))
			return
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Printf("live-hub: client %s write error: %v", c.ID, err)
				return
			}
			c.mu.Lock()
			c.messagesSent++
			c.mu.Unlock()
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues msg without blocking; false means the buffer is full or
// the client has been closed.
func (c *Client) trySend(msg ServerMessage) bool {
	c.sendMu.RLock()
	defer c.sendMu.RUnlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// closeSend closes the outbound queue once; writePump then says goodbye.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// Follows reports whether the client wants updates for matchID.
func (c *Client) Follows(matchID uint64) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.matches) == 0 || c.matches[matchID]
}

func (c *Client) subscribe(ids []uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = make(map[uint64]bool, len(ids))
	for _, id := range ids {
		c.matches[id] = true
	}
}

// Stats returns connection statistics.
func (c *Client) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	subs := make([]uint64, 0, len(c.matches))
	for id := range c.matches {
		subs = append(subs, id)
	}
	return Stats{
		ClientID:         c.ID,
		ConnectedAt:      c.connectedAt,
		MessagesSent:     c.messagesSent,
		MessagesReceived: c.messagesReceived,
		Subscribed:       subs,
	}
}

func (c *Client) handle(msg ClientMessage) {
	switch msg.Type {
	case TypeSubscribe:
		c.subscribe(msg.MatchIDs)
		c.trySend(ServerMessage{Type: TypeSubscribed, Payload: c.Stats(), Timestamp: time.Now()})
	case TypeUnsubscribe:
		c.subscribe(nil)
		c.trySend(ServerMessage{Type: TypeSubscribed, Payload: c.Stats(), Timestamp: time.Now()})
	case TypeHeartbeat:
		c.trySend(ServerMessage{Type: TypeHeartbeat, Payload: c.Stats(), Timestamp: time.Now()})
	default:
		c.trySend(ServerMessage{
			Type:      TypeError,
			Payload:   ErrorPayload{Code: "unknown_message_type", Message: fmt.Sprintf("unknown message type: %q", msg.Type)},
			Timestamp: time.Now(),
		})
	}
}

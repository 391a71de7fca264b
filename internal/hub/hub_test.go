package hub

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

type received struct {
	Type    string `json:"type"`
	Payload struct {
		Op      string `json:"op"`
		MatchID uint64 `json:"matchId"`
		Code    string `json:"code"`
	} `json:"payload"`
}

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	h := New()
	go h.Run(ctx)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := h.ServeWS(ctx, w, r); err != nil {
			t.Logf("upgrade: %v", err)
		}
	}))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return h, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func next(t *testing.T, conn *websocket.Conn) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	var msg received
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

func TestHub_SubscriptionFilter(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url)

	if err := conn.WriteJSON(ClientMessage{Type: TypeSubscribe, MatchIDs: []uint64{1}}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	if msg := next(t, conn); msg.Type != TypeSubscribed {
		t.Fatalf("expected subscription ack, got %+v", msg)
	}

	h.Broadcast(scoring.Update{Op: "record-ball", MatchID: 2})
	h.Broadcast(scoring.Update{Op: "undo", MatchID: 1})

	msg := next(t, conn)
	if msg.Type != TypeScoreUpdate || msg.Payload.MatchID != 1 || msg.Payload.Op != "undo" {
		t.Errorf("expected only the match 1 update, got %+v", msg)
	}
}

func TestHub_UnsubscribedClientGetsEverything(t *testing.T) {
	h, url := startHub(t)
	conn := dial(t, url)
	// The heartbeat reply proves the client is registered before broadcasting.
	conn.WriteJSON(ClientMessage{Type: TypeHeartbeat})
	if msg := next(t, conn); msg.Type != TypeHeartbeat {
		t.Fatalf("expected heartbeat, got %+v", msg)
	}

	h.Broadcast(scoring.Update{Op: "start", MatchID: 5})
	h.Broadcast(scoring.Update{Op: "start", MatchID: 6})
	if a, b := next(t, conn), next(t, conn); a.Payload.MatchID != 5 || b.Payload.MatchID != 6 {
		t.Errorf("expected both matches in order, got %d and %d", a.Payload.MatchID, b.Payload.MatchID)
	}
	if h.ClientCount() != 1 {
		t.Errorf("expected 1 client, got %d", h.ClientCount())
	}
}

func TestHub_UnknownMessage(t *testing.T) {
	_, url := startHub(t)
	conn := dial(t, url)
	conn.WriteJSON(ClientMessage{Type: "shout"})
	msg := next(t, conn)
	if msg.Type != TypeError || msg.Payload.Code != "unknown_message_type" {
		t.Errorf("expected error reply, got %+v", msg)
	}
}

func TestClient_Follows(t *testing.T) {
	c := newClient("c1", nil, nil)
	tests := []struct {
		name string
		subs []uint64
		id   uint64
		want bool
	}{
		{"no subscription", nil, 9, true},
		{"subscribed match", []uint64{3, 9}, 9, true},
		{"other match", []uint64{3}, 9, false},
	}
	for _, tt := range tests {
		c.subscribe(tt.subs)
		if got := c.Follows(tt.id); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

func TestHub_SlowClientIsDropped(t *testing.T) {
	h := New()
	slow := newClient("slow", nil, h)
	for slow.trySend(ServerMessage{}) {
	}
	h.clients[slow] = true

	h.fanOut(scoring.Update{Op: "record-ball", MatchID: 1})
	if h.ClientCount() != 0 {
		t.Errorf("expected slow client removed")
	}
	if slow.trySend(ServerMessage{}) {
		t.Errorf("closed client must refuse messages")
	}
}

func TestHub_BroadcastNeverBlocks(t *testing.T) {
	h := New()
	for i := 0; i < cap(h.broadcast)+5; i++ {
		h.Broadcast(scoring.Update{MatchID: uint64(i)})
	}
	if got := h.Metrics()["dropped_updates"]; got != 5 {
		t.Errorf("expected 5 dropped updates, got %d", got)
	}
}

func TestHub_RegisterAfterStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := New()
	stopped := make(chan struct{})
	go func() {
		h.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	c := newClient("late", nil, h)
	h.Register(c)
	h.Unregister(c)
	if c.trySend(ServerMessage{}) {
		t.Errorf("client registered after stop should be closed")
	}
}

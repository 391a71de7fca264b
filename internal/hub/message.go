package hub

import (
	"time"

	"github.com/iliyamo/cricket-live-scoring/internal/scoring"
)

// Message types exchanged with live feed clients.
const (
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
	TypeHeartbeat   = "heartbeat"
	TypeSubscribed  = "subscribed"
	TypeScoreUpdate = "score_update"
	TypeError       = "error"
)

// ClientMessage is sent by a client.  Subscribe with an empty MatchIDs
// list follows every match.
type ClientMessage struct {
	Type     string   `json:"type"`
	MatchIDs []uint64 `json:"matchIds,omitempty"`
}

// ServerMessage is sent to a client.
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ErrorPayload describes a rejected client message.
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats describes one connection.
type Stats struct {
	ClientID         string    `json:"clientId"`
	ConnectedAt      time.Time `json:"connectedAt"`
	MessagesSent     int64     `json:"messagesSent"`
	MessagesReceived int64     `json:"messagesReceived"`
	Subscribed       []uint64  `json:"subscribed"`
}

func updateMessage(u scoring.Update) ServerMessage {
	return ServerMessage{Type: TypeScoreUpdate, Payload: u, Timestamp: u.At}
}

package ws

import (
	"encoding/json"
	"time"
)

// Server-to-client message types.
const (
	TypeConnectionEstablished = "connection_established"
	TypeNotification          = "notification"
	TypePong                  = "pong"
	TypeShutdown              = "shutdown"
)

// Client-to-server message types.
const (
	TypePing        = "ping"
	TypeSubscribe   = "subscribe"
	TypeUnsubscribe = "unsubscribe"
)

// inbound is the envelope for every client-to-server message.
type inbound struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels,omitempty"`
}

type establishedMessage struct {
	Type      string    `json:"type"`
	UserID    string    `json:"userId"`
	Timestamp time.Time `json:"timestamp"`
}

type pongMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

type shutdownMessage struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
}

// ShutdownNotice encodes the final message flushed to every client during
// graceful shutdown, so clients can distinguish a deliberate stop from a
// dropped connection and back off their reconnect loop.
func ShutdownNotice(at time.Time) []byte {
	b, _ := json.Marshal(shutdownMessage{Type: TypeShutdown, Timestamp: at.UTC()})
	return b
}

package websockets

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Message types
const (
	MsgTypeSubscribe         = "subscribe"
	MsgTypeComplaintsChanged = "complaints_changed"
)

// Client represents a connected WebSocket user
type Client struct {
	Conn *websocket.Conn
	// TicketIDs, when non-empty, limits refresh events to these complaints
	TicketIDs map[uuid.UUID]struct{}
	mu        sync.Mutex
}

type WebSocketManager struct {
	clients    map[*websocket.Conn]*Client
	broadcast  chan RefreshMessage
	register   chan *Client
	unregister chan *websocket.Conn
	done       chan struct{}
	writeWait  time.Duration
	mu         sync.Mutex
}

// RefreshMessage tells clients that listings containing TicketID are stale.
type RefreshMessage struct {
	Type     string    `json:"type"`
	TicketID uuid.UUID `json:"ticket_id"`
	Reason   string    `json:"reason,omitempty"`
}

// Message struct for incoming WebSocket messages
type Message struct {
	Type      string      `json:"type"`
	TicketIDs []uuid.UUID `json:"ticket_ids,omitempty"`
}

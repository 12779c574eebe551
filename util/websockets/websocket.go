package websockets

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const writeWait = 5 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// NewWebSocketManager initializes a WebSocketManager
func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[*websocket.Conn]*Client),
		broadcast:  make(chan RefreshMessage, 64),
		register:   make(chan *Client),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		writeWait:  writeWait,
	}
}

// Run starts the WebSocket manager and returns when ctx is done.
func (manager *WebSocketManager) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(manager.done)
			manager.mu.Lock()
			for conn := range manager.clients {
				conn.Close()
				delete(manager.clients, conn)
			}
			manager.mu.Unlock()
			return

		case client := <-manager.register:
			manager.mu.Lock()
			manager.clients[client.Conn] = client
			manager.mu.Unlock()

		case conn := <-manager.unregister:
			manager.mu.Lock()
			if _, exists := manager.clients[conn]; exists {
				delete(manager.clients, conn)
				conn.Close()
			}
			manager.mu.Unlock()

		case message := <-manager.broadcast:
			payload, err := json.Marshal(message)
			if err != nil {
				log.Println("[WebSocket]: marshal refresh message:", err)
				continue
			}
			manager.mu.Lock()
			for conn, client := range manager.clients {
				if !client.wants(message.TicketID) {
					continue
				}
				// a stalled client must not hold the hub
				if err := conn.SetWriteDeadline(time.Now().Add(manager.writeWait)); err != nil {
					conn.Close()
					delete(manager.clients, conn)
					continue
				}
				if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
					log.Println("[WebSocket]: dropping client:", err)
					conn.Close()
					delete(manager.clients, conn)
				}
			}
			manager.mu.Unlock()
		}
	}
}

// HandleConnections upgrades HTTP requests to WebSocket connections
func (manager *WebSocketManager) HandleConnections(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("[WebSocket]: upgrade error:", err)
		return
	}

	client := &Client{Conn: conn}
	select {
	case manager.register <- client:
	case <-manager.done:
		conn.Close()
		return
	}

	defer func() {
		select {
		case manager.unregister <- conn:
		case <-manager.done:
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var message Message
		if err := json.Unmarshal(msg, &message); err != nil {
			log.Println("[WebSocket]: invalid JSON:", err)
			continue
		}

		switch message.Type {
		case MsgTypeSubscribe:
			client.subscribe(message.TicketIDs)
		}
	}
}

// ComplaintsChanged queues a refresh event for connected clients. It
// never blocks the caller; when the queue is full the event is dropped.
func (manager *WebSocketManager) ComplaintsChanged(_ context.Context, ticketID uuid.UUID, reason string) {
	msg := RefreshMessage{Type: MsgTypeComplaintsChanged, TicketID: ticketID, Reason: reason}
	select {
	case manager.broadcast <- msg:
	default:
		log.Printf("[WebSocket]: refresh queue full, dropped %s for %s", reason, ticketID)
	}
}

func (c *Client) subscribe(ids []uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(ids) == 0 {
		c.TicketIDs = nil
		return
	}
	c.TicketIDs = make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		c.TicketIDs[id] = struct{}{}
	}
}

func (c *Client) wants(ticketID uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.TicketIDs) == 0 {
		return true
	}
	_, ok := c.TicketIDs[ticketID]
	return ok
}

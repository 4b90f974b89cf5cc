package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// RoomAll targets every connected client regardless of joined rooms.
const RoomAll = "*"

// Event is a message published to one room scope.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data"`
	Timestamp time.Time   `json:"timestamp"`
}

// Hub manages WebSocket connections and room-scoped broadcasting. Admin
// sessions join the rooms matching their jurisdiction (central, state, city)
// and only receive events published to those rooms.
type Hub struct {
	// Registered clients
	clients map[*Client]bool

	// Register requests from clients
	Register chan *Client

	// Unregister requests from clients
	Unregister chan *Client

	// Mutex for thread-safe operations
	mutex sync.RWMutex

	// Statistics
	connectedClients int
	publishedEvents  int
}

// NewHub creates a new WebSocket hub
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Run starts the hub's main loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.Register:
			h.mutex.Lock()
			h.clients[client] = true
			h.connectedClients = len(h.clients)
			h.mutex.Unlock()
			log.Printf("Client connected (rooms: %v). Total clients: %d", client.rooms, h.connectedClients)

		case client := <-h.Unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.connectedClients = len(h.clients)
			}
			h.mutex.Unlock()
			log.Printf("Client disconnected. Total clients: %d", h.connectedClients)
		}
	}
}

// Publish sends an event to every client that joined the room. Marshal or
// delivery problems are logged, never returned; realtime fan-out is
// best-effort by contract.
func (h *Hub) Publish(room, eventType string, payload interface{}) {
	event := Event{
		Type:      eventType,
		Data:      payload,
		Timestamp: time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal %s event for room %s: %v", eventType, room, err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	delivered := 0
	for client := range h.clients {
		if room != RoomAll && !client.inRoom(room) {
			continue
		}
		select {
		case client.send <- data:
			delivered++
		default:
			close(client.send)
			delete(h.clients, client)
		}
	}
	h.connectedClients = len(h.clients)
	h.publishedEvents++

	log.Printf("Published %s to room %s (%d clients)", eventType, room, delivered)
}

// GetStats returns current hub statistics
func (h *Hub) GetStats() (int, int) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return h.connectedClients, h.publishedEvents
}

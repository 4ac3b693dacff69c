package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Event types pushed to dashboard clients
const (
	EventDevicesImported  = "DEVICES_IMPORTED"
	EventUpdateInitiated  = "UPDATE_INITIATED"
	EventDeviceHeartbeat  = "DEVICE_HEARTBEAT"
	EventUpdateCompleted  = "UPDATE_COMPLETED"
	EventFirmwareUploaded = "FIRMWARE_UPLOADED"
)

// Event is a registry change broadcast to every connected client
type Event struct {
	Type         string    `json:"type"`
	DeviceIDs    []string  `json:"deviceIds,omitempty"`
	FirmwareName string    `json:"firmwareName,omitempty"`
	VendorID     string    `json:"vendorId,omitempty"`
	At           time.Time `json:"at"`
}

// Publisher receives registry events
type Publisher interface {
	Publish(Event)
}

// Hub maintains the set of active clients and broadcasts messages
type Hub struct {
	// Registered clients map: client ID -> Client
	clients map[string]*Client

	register   chan *Client
	unregister chan *Client
	broadcast  chan []byte
	done       chan struct{}

	// Mutex for thread-safe access to clients map
	mu sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan []byte, 64),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop. It returns after Stop.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.ID] = client
			h.mu.Unlock()
			log.Printf("📡 Dashboard connected: %s", client.ID)

		case client := <-h.unregister:
			h.drop(client.ID)

		case msg := <-h.broadcast:
			h.mu.RLock()
			var slow []string
			for id, c := range h.clients {
				select {
				case c.send <- msg:
				default:
					slow = append(slow, id)
				}
			}
			h.mu.RUnlock()
			for _, id := range slow {
				h.drop(id)
			}

		case <-h.done:
			h.mu.Lock()
			for id, c := range h.clients {
				close(c.send)
				delete(h.clients, id)
			}
			h.mu.Unlock()
			return
		}
	}
}

// Stop terminates Run and disconnects every client
func (h *Hub) Stop() {
	close(h.done)
}

func (h *Hub) drop(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.clients[id]; ok {
		delete(h.clients, id)
		close(c.send)
		log.Printf("📴 Dashboard disconnected: %s", id)
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Publish queues an event for every client. Events are dropped when the
// broadcast buffer is full.
func (h *Hub) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	msg, err := json.Marshal(ev)
	if err != nil {
		log.Printf("Error marshaling event: %v", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		log.Printf("⚠️  Event %s dropped: broadcast buffer full", ev.Type)
	}
}

package socket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	// Project messages
	MessageProjectCreated       MessageType = "project_created"
	MessageProjectUpdated       MessageType = "project_updated"
	MessageProjectStatusChanged MessageType = "project_status_changed"
	MessageProjectDeleted       MessageType = "project_deleted"
	MessageProjectsOverdue      MessageType = "projects_overdue"

	// System messages
	MessagePing MessageType = "ping"
	MessagePong MessageType = "pong"
	MessageAck  MessageType = "ack"
)

// RoomProjects is joined by every client on connect.
const RoomProjects = "projects"

// ProjectRoom is the room for events about a single project.
func ProjectRoom(projectID string) string {
	return "project:" + projectID
}

// Message represents a WebSocket message
type Message struct {
	Type      MessageType            `json:"type"`
	Payload   map[string]interface{} `json:"payload,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Client represents a connected WebSocket client
type Client struct {
	ID       string
	Conn     *websocket.Conn
	Hub      *Hub
	Send     chan []byte
	Rooms    map[string]bool
	mu       sync.Mutex
	closed   bool
	lastPing time.Time
}

// Hub maintains the set of active clients and fans messages out to rooms.
type Hub struct {
	clients     map[*Client]bool
	roomClients map[string]map[*Client]bool

	register      chan *Client
	unregister    chan *Client
	roomBroadcast chan *RoomMessage
	done          chan struct{}

	mu sync.RWMutex
}

// RoomMessage is delivered once to every client in any of Rooms.
type RoomMessage struct {
	Rooms   []string
	Message []byte
}

func NewHub() *Hub {
	return &Hub{
		clients:       make(map[*Client]bool),
		roomClients:   make(map[string]map[*Client]bool),
		register:      make(chan *Client),
		unregister:    make(chan *Client),
		roomBroadcast: make(chan *RoomMessage, 256),
		done:          make(chan struct{}),
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	log.Println("[Hub] WebSocket hub started")

	pingTicker := time.NewTicker(30 * time.Second)
	defer pingTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			log.Println("[Hub] WebSocket hub stopped")
			return

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case rm := <-h.roomBroadcast:
			h.broadcastToRoom(rm)

		case <-pingTicker.C:
			h.pingClients()
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	total := len(h.clients)
	h.mu.Unlock()

	h.JoinRoom(client, RoomProjects)
	log.Printf("[Hub] ✅ Client registered: id=%s, total_clients=%d", client.ID, total)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client]; !ok {
		return
	}
	delete(h.clients, client)

	client.mu.Lock()
	for room := range client.Rooms {
		if clients, ok := h.roomClients[room]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.roomClients, room)
			}
		}
	}
	client.mu.Unlock()

	client.closeSend()
	log.Printf("[Hub] ❌ Client disconnected: id=%s, total_clients=%d", client.ID, len(h.clients))
}

// remove asks the loop to drop client; it gives up once the hub has stopped.
func (h *Hub) remove(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) add(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		client.closeSend()
	}
	h.clients = make(map[*Client]bool)
	h.roomClients = make(map[string]map[*Client]bool)
}

func (h *Hub) broadcastToRoom(rm *RoomMessage) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	sent := make(map[*Client]bool)
	for _, room := range rm.Rooms {
		for client := range h.roomClients[room] {
			if sent[client] {
				continue
			}
			sent[client] = true
			h.deliver(client, rm.Message)
		}
	}
}

// deliver queues message for client, dropping clients that cannot keep up.
// Callers hold h.mu.
func (h *Hub) deliver(client *Client, message []byte) {
	client.mu.Lock()
	defer client.mu.Unlock()
	if client.closed {
		return
	}

	select {
	case client.Send <- message:
	default:
		go h.remove(client)
	}
}

func (h *Hub) pingClients() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	data, _ := json.Marshal(Message{
		Type:      MessagePing,
		Timestamp: time.Now().UTC(),
	})

	for client := range h.clients {
		h.deliver(client, data)
	}
}

// ============================================
// Room Management
// ============================================

// JoinRoom adds a registered client to room. Clients already dropped by the hub are ignored.
func (h *Hub) JoinRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if !h.clients[client] {
		return
	}

	client.mu.Lock()
	client.Rooms[room] = true
	client.mu.Unlock()

	if h.roomClients[room] == nil {
		h.roomClients[room] = make(map[*Client]bool)
	}
	h.roomClients[room][client] = true
}

func (h *Hub) LeaveRoom(client *Client, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client.mu.Lock()
	delete(client.Rooms, room)
	client.mu.Unlock()

	if clients, ok := h.roomClients[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.roomClients, room)
		}
	}
}

// ============================================
// Sending
// ============================================

// SendToRooms queues a message for every client in any of rooms, once per client.
func (h *Hub) SendToRooms(rooms []string, msgType MessageType, payload map[string]interface{}) {
	data, err := json.Marshal(Message{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		log.Printf("[Hub] Error marshaling message: %v", err)
		return
	}

	select {
	case h.roomBroadcast <- &RoomMessage{Rooms: rooms, Message: data}:
	default:
		log.Printf("[Hub] ⚠️ Broadcast queue full, dropped %s for rooms %v", msgType, rooms)
	}
}

// ============================================
// Query Methods
// ============================================

func (h *Hub) GetRoomClients(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.roomClients[room])
}

func (h *Hub) GetConnectedClientsCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

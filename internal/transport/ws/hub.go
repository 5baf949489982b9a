package ws

import (
	"encoding/json"

	"campusinterview/internal/logger"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgConnected MessageType = "connected"
	MsgError     MessageType = "error"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans session events out to every observer of that session
type Hub struct {
	// sessionID -> observers
	conns map[string]map[*Connection]bool

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage
	disconnect chan string
	done       chan struct{}

	log *logger.Logger
}

// Connection represents a WebSocket connection
type Connection struct {
	SessionID string
	Send      chan []byte
	Hub       *Hub
}

// BroadcastMessage is a message to broadcast
type BroadcastMessage struct {
	SessionID string
	Message   *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log *logger.Logger) *Hub {
	h := &Hub{
		conns:      make(map[string]map[*Connection]bool),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		disconnect: make(chan string, 16),
		done:       make(chan struct{}),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case <-h.done:
			for id := range h.conns {
				h.closeSession(id)
			}
			return

		case conn := <-h.register:
			if h.conns[conn.SessionID] == nil {
				h.conns[conn.SessionID] = make(map[*Connection]bool)
			}
			h.conns[conn.SessionID][conn] = true
			h.log.Debug("observer connected", "session_id", conn.SessionID, "observers", len(h.conns[conn.SessionID]))

		case conn := <-h.unregister:
			if set, ok := h.conns[conn.SessionID]; ok && set[conn] {
				delete(set, conn)
				close(conn.Send)
				if len(set) == 0 {
					delete(h.conns, conn.SessionID)
				}
				h.log.Debug("observer disconnected", "session_id", conn.SessionID)
			}

		case id := <-h.disconnect:
			h.closeSession(id)

		case msg := <-h.broadcast:
			data, err := json.Marshal(msg.Message)
			if err != nil {
				continue
			}
			for conn := range h.conns[msg.SessionID] {
				select {
				case conn.Send <- data:
				default:
					// Drop message if buffer full
				}
			}
		}
	}
}

func (h *Hub) closeSession(id string) {
	for conn := range h.conns[id] {
		close(conn.Send)
	}
	delete(h.conns, id)
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	select {
	case h.register <- conn:
	case <-h.done:
		close(conn.Send)
	}
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

// Close stops the hub and closes every observer
func (h *Hub) Close() {
	close(h.done)
}

// BroadcastToSession sends a message to all observers of a session (implements service.Broadcaster)
func (h *Hub) BroadcastToSession(sessionID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Warn("dropping unencodable event", "type", msgType, "error", err)
		return
	}
	msg := &BroadcastMessage{
		SessionID: sessionID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
	select {
	case h.broadcast <- msg:
	case <-h.done:
	}
}

// DisconnectSession closes every observer of a deleted session (implements service.Broadcaster)
func (h *Hub) DisconnectSession(sessionID string) {
	select {
	case h.disconnect <- sessionID:
	case <-h.done:
	}
}

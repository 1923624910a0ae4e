package ws

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog"
)

// MessageType defines the type of WebSocket message
type MessageType string

const (
	MsgFormSaved    MessageType = "form_saved"
	MsgEditorJoined MessageType = "editor_joined"
	MsgEditorLeft   MessageType = "editor_left"
)

// Message is the WebSocket envelope format
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Hub fans out form events to every editor connected to that form
type Hub struct {
	// formID -> connections
	forms map[string]map[*Connection]struct{}

	mu sync.RWMutex

	register   chan *Connection
	unregister chan *Connection
	broadcast  chan *BroadcastMessage

	log zerolog.Logger
}

// Connection represents a WebSocket connection of one editor
type Connection struct {
	FormID string
	UserID string
	Send   chan []byte
	Hub    *Hub
}

// BroadcastMessage is a message to broadcast to one form
type BroadcastMessage struct {
	FormID  string
	Message *Message
}

// NewHub creates a new WebSocket hub
func NewHub(log zerolog.Logger) *Hub {
	h := &Hub{
		forms:      make(map[string]map[*Connection]struct{}),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
		broadcast:  make(chan *BroadcastMessage, 256),
		log:        log,
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case conn := <-h.register:
			h.mu.Lock()
			if h.forms[conn.FormID] == nil {
				h.forms[conn.FormID] = make(map[*Connection]struct{})
			}
			h.forms[conn.FormID][conn] = struct{}{}
			h.log.Debug().Str("form_id", conn.FormID).Str("user_id", conn.UserID).Msg("editor connected")
			h.send(conn.FormID, editorEvent(MsgEditorJoined, conn.UserID), conn)
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.forms[conn.FormID]; ok {
				if _, ok := conns[conn]; ok {
					delete(conns, conn)
					close(conn.Send)
					if len(conns) == 0 {
						delete(h.forms, conn.FormID)
					}
					h.log.Debug().Str("form_id", conn.FormID).Str("user_id", conn.UserID).Msg("editor disconnected")
					h.send(conn.FormID, editorEvent(MsgEditorLeft, conn.UserID), nil)
				}
			}
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			data, err := json.Marshal(msg.Message)
			if err == nil {
				h.send(msg.FormID, data, nil)
			}
			h.mu.RUnlock()
		}
	}
}

// send delivers data to every connection of formID except skip. Slow
// connections drop the message. Callers hold mu.
func (h *Hub) send(formID string, data []byte, skip *Connection) {
	if data == nil {
		return
	}
	for conn := range h.forms[formID] {
		if conn == skip {
			continue
		}
		select {
		case conn.Send <- data:
		default:
		}
	}
}

// connections returns the number of editors connected to formID.
func (h *Hub) connections(formID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.forms[formID])
}

// Register adds a connection
func (h *Hub) Register(conn *Connection) {
	h.register <- conn
}

// Unregister removes a connection
func (h *Hub) Unregister(conn *Connection) {
	h.unregister <- conn
}

// BroadcastToForm sends a message to every editor of a form (implements service.Broadcaster)
func (h *Hub) BroadcastToForm(formID string, msgType string, payload interface{}) {
	data, err := json.Marshal(payload)
	if err != nil {
		h.log.Error().Err(err).Str("form_id", formID).Msg("encode broadcast payload")
		return
	}
	h.broadcast <- &BroadcastMessage{
		FormID: formID,
		Message: &Message{
			Type:    MessageType(msgType),
			Payload: data,
		},
	}
}

func editorEvent(t MessageType, userID string) []byte {
	payload, err := json.Marshal(map[string]string{"userId": userID})
	if err != nil {
		return nil
	}
	data, err := json.Marshal(&Message{Type: t, Payload: payload})
	if err != nil {
		return nil
	}
	return data
}

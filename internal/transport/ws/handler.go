package ws

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/service"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for dev
	},
}

// Handler handles WebSocket connections
type Handler struct {
	hub          *Hub
	interviewSvc *service.InterviewService
	log          *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, interviewSvc *service.InterviewService, log *logger.Logger) *Handler {
	return &Handler{
		hub:          hub,
		interviewSvc: interviewSvc,
		log:          log,
	}
}

// SessionWS handles GET /v1/ws/sessions/{id}
func (h *Handler) SessionWS(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	session, err := h.interviewSvc.GetSession(r.Context(), id)
	if errors.Is(err, service.ErrSessionNotFound) {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	wsConn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}

	conn := &Connection{
		SessionID: id,
		Send:      make(chan []byte, 256),
		Hub:       h.hub,
	}

	// greet with the current state before any live event
	if hello, err := connectedMessage(session, h.interviewSvc.PendingPrompt(session)); err == nil {
		conn.Send <- hello
	}
	h.hub.Register(conn)

	go h.writePump(wsConn, conn)
	go h.readPump(wsConn, conn)
}

func connectedMessage(session *model.Session, prompt string) ([]byte, error) {
	ev := model.SessionEvent{
		SessionID:     session.ID,
		State:         session.State(),
		QuestionIndex: session.CurrentQuestionIdx,
		Message:       prompt,
		Status:        session.Status,
	}
	if t := session.CurrentTopic(); t != nil {
		ev.Topic = t.Name
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, err
	}
	return json.Marshal(&Message{Type: MsgConnected, Payload: payload})
}

func (h *Handler) readPump(wsConn *websocket.Conn, conn *Connection) {
	defer func() {
		h.hub.Unregister(conn)
		wsConn.Close()
	}()

	wsConn.SetReadLimit(maxMessageSize)
	wsConn.SetReadDeadline(time.Now().Add(pongWait))
	wsConn.SetPongHandler(func(string) error {
		wsConn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, _, err := wsConn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				h.log.Warn("websocket read error", "session_id", conn.SessionID, "error", err)
			}
			break
		}
		// observers are read-only
	}
}

func (h *Handler) writePump(wsConn *websocket.Conn, conn *Connection) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		wsConn.Close()
	}()

	for {
		select {
		case message, ok := <-conn.Send:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				wsConn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := wsConn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			wsConn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := wsConn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

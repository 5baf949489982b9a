package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"campusinterview/internal/logger"
	"campusinterview/internal/model"
	"campusinterview/internal/service"
)

// SessionHandler handles interview session endpoints
type SessionHandler struct {
	interviewSvc *service.InterviewService
	log          *logger.Logger
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(interviewSvc *service.InterviewService, log *logger.Logger) *SessionHandler {
	return &SessionHandler{
		interviewSvc: interviewSvc,
		log:          log,
	}
}

// SessionResponse pairs a session with the question it is waiting on
type SessionResponse struct {
	Session   *model.Session `json:"session"`
	Prompt    string         `json:"prompt"`
	UndoDepth int            `json:"undoDepth"`
}

// MessagesResponse is the transcript of a session
type MessagesResponse struct {
	SessionID string          `json:"sessionId"`
	Status    string          `json:"status"`
	Messages  []model.Message `json:"messages"`
}

// Create handles POST /v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.StartSessionRequest
	// an empty body starts an anonymous interview
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	session, err := h.interviewSvc.StartSession(r.Context(), req.UserName, req.Topics)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, SessionResponse{
		Session: session,
		Prompt:  h.interviewSvc.PendingPrompt(session),
	})
}

// Get handles GET /v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	session, err := h.interviewSvc.GetSession(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	depth, err := h.interviewSvc.UndoDepth(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		Session:   session,
		Prompt:    h.interviewSvc.PendingPrompt(session),
		UndoDepth: depth,
	})
}

// Export handles GET /v1/sessions/{id}/export
func (h *SessionHandler) Export(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	export, err := h.interviewSvc.ExportSession(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Disposition", `attachment; filename="interview-`+id+`.json"`)
	writeJSON(w, http.StatusOK, export)
}

// Delete handles DELETE /v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.interviewSvc.DeleteSession(r.Context(), mux.Vars(r)["id"]); err != nil {
		h.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Messages handles GET /v1/sessions/{id}/messages
func (h *SessionHandler) Messages(w http.ResponseWriter, r *http.Request) {
	h.writeTranscript(w, r, mux.Vars(r)["id"])
}

// Answer handles POST /v1/sessions/{id}/messages
func (h *SessionHandler) Answer(w http.ResponseWriter, r *http.Request) {
	var req model.AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_body", "invalid request body")
		return
	}

	result, err := h.interviewSvc.ProcessAnswer(r.Context(), mux.Vars(r)["id"], req.Text)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Skip handles POST /v1/sessions/{id}/skip
func (h *SessionHandler) Skip(w http.ResponseWriter, r *http.Request) {
	result, err := h.interviewSvc.SkipQuestion(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Undo handles POST /v1/sessions/{id}/undo and returns the rewound transcript
func (h *SessionHandler) Undo(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.interviewSvc.UndoLast(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeTranscript(w, r, id)
}

// Restart handles POST /v1/sessions/{id}/restart
func (h *SessionHandler) Restart(w http.ResponseWriter, r *http.Request) {
	session, err := h.interviewSvc.Restart(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, SessionResponse{
		Session: session,
		Prompt:  h.interviewSvc.PendingPrompt(session),
	})
}

func (h *SessionHandler) writeTranscript(w http.ResponseWriter, r *http.Request, id string) {
	session, err := h.interviewSvc.GetSession(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	messages, err := h.interviewSvc.GetMessages(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessagesResponse{
		SessionID: id,
		Status:    string(session.Status),
		Messages:  messages,
	})
}

func (h *SessionHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if !service.IsClientError(err) {
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeServiceError(w, err)
}

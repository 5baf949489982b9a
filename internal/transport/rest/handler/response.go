package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"campusinterview/internal/service"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// writeServiceError maps service sentinels onto HTTP statuses
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session_not_found", err.Error())
	case errors.Is(err, service.ErrSessionCompleted):
		writeError(w, http.StatusConflict, "session_completed", err.Error())
	case errors.Is(err, service.ErrNothingToUndo):
		writeError(w, http.StatusConflict, "nothing_to_undo", err.Error())
	case errors.Is(err, service.ErrInvalidTopic):
		writeError(w, http.StatusBadRequest, "invalid_topic", err.Error())
	case errors.Is(err, service.ErrEmptySession):
		writeError(w, http.StatusConflict, "empty_session", err.Error())
	case errors.Is(err, service.ErrRollbackFailed):
		writeError(w, http.StatusInternalServerError, "rollback_failed", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal", "internal error")
	}
}

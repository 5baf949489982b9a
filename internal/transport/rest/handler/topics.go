package handler

import (
	"net/http"

	"campusinterview/internal/model"
	"campusinterview/internal/service"
)

// TopicHandler exposes the topic catalog
type TopicHandler struct {
	interviewSvc *service.InterviewService
}

// NewTopicHandler creates a new topic handler
func NewTopicHandler(interviewSvc *service.InterviewService) *TopicHandler {
	return &TopicHandler{interviewSvc: interviewSvc}
}

// List handles GET /v1/topics, optionally filtered by ?scene= and ?eduType=
func (h *TopicHandler) List(w http.ResponseWriter, r *http.Request) {
	scene := model.Scene(r.URL.Query().Get("scene"))
	eduType := model.EduType(r.URL.Query().Get("eduType"))

	topics := make([]model.Topic, 0, len(h.interviewSvc.Topics()))
	for _, t := range h.interviewSvc.Topics() {
		if scene != "" && t.Scene != scene {
			continue
		}
		if eduType != "" && t.EduType != eduType {
			continue
		}
		topics = append(topics, t)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"topics": topics,
		"count":  len(topics),
	})
}

package rest

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"campusinterview/internal/logger"
	"campusinterview/internal/service"
	"campusinterview/internal/transport/rest/handler"
	"campusinterview/internal/transport/rest/middleware"
	"campusinterview/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	InterviewService *service.InterviewService
	WSHub            *ws.Hub
	Logger           *logger.Logger
	AllowedOrigins   []string
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	sessionHandler := handler.NewSessionHandler(c.InterviewService, c.Logger)
	topicHandler := handler.NewTopicHandler(c.InterviewService)
	wsHandler := ws.NewHandler(c.WSHub, c.InterviewService, c.Logger)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.AllowedOrigins))
	r.Use(middleware.RequestLogger(c.Logger))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	v1.HandleFunc("/topics", topicHandler.List).Methods("GET", "OPTIONS")

	v1.HandleFunc("/sessions", sessionHandler.Create).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Get).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}", sessionHandler.Delete).Methods("DELETE", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/messages", sessionHandler.Messages).Methods("GET", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/messages", sessionHandler.Answer).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/skip", sessionHandler.Skip).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/undo", sessionHandler.Undo).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/restart", sessionHandler.Restart).Methods("POST", "OPTIONS")
	v1.HandleFunc("/sessions/{id}/export", sessionHandler.Export).Methods("GET", "OPTIONS")

	// WebSocket routes
	v1.HandleFunc("/ws/sessions/{id}", wsHandler.SessionWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	return r
}

func corsMiddleware(origins []string) mux.MiddlewareFunc {
	allowedOrigins := strings.Join(origins, ", ")
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

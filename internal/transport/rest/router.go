package rest

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"hrforms/internal/service"
	"hrforms/internal/transport/rest/handler"
	"hrforms/internal/transport/rest/middleware"
	"hrforms/internal/transport/ws"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService     *service.AuthService
	FormService     *service.FormService
	EditorService   *service.EditorService
	FeedbackService *service.FeedbackService
	WSHub           *ws.Hub
	CORSOrigins     string
	Log             zerolog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	formHandler := handler.NewFormHandler(c.FormService)
	editorHandler := handler.NewEditorHandler(c.EditorService)
	feedbackHandler := handler.NewFeedbackHandler(c.FeedbackService)
	wsHandler := ws.NewHandler(c.WSHub, c.AuthService, c.FormService, c.Log)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware(c.CORSOrigins))
	r.Use(accessLog(c.Log))

	// API v1 routes
	v1 := r.PathPrefix("/v1").Subrouter()

	// Public routes
	v1.HandleFunc("/auth/token", authHandler.Token).Methods("POST", "OPTIONS")

	// WebSocket routes (token in query param)
	v1.HandleFunc("/ws/forms/{formId}", wsHandler.FormWS).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Tenant routes
	api := v1.NewRoute().Subrouter()
	api.Use(authMW.RequireTenant)

	api.HandleFunc("/forms", formHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/forms", formHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/forms/{formId}", formHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/forms/{formId}", formHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/forms/{formId}/sessions", editorHandler.Open).Methods("POST", "OPTIONS")
	api.HandleFunc("/forms/{formId}/feedback", feedbackHandler.Start).Methods("POST", "OPTIONS")
	api.HandleFunc("/forms/{formId}/feedback", feedbackHandler.List).Methods("GET", "OPTIONS")
	api.HandleFunc("/forms/{formId}/feedback/{feedbackId}", feedbackHandler.Get).Methods("GET", "OPTIONS")

	// Editing session routes
	api.HandleFunc("/sessions/{sessionId}", editorHandler.Get).Methods("GET", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}", editorHandler.Close).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/cursor", editorHandler.Select).Methods("PUT", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/details", editorHandler.UpdateDetails).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/setting", editorHandler.UpdateSetting).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/save", editorHandler.Save).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions", editorHandler.AddQuestion).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/reorder", editorHandler.Reorder).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/{questionId}", editorHandler.EditQuestion).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/{questionId}", editorHandler.DeleteQuestion).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/{questionId}/required", editorHandler.SetRequired).Methods("PUT", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/{questionId}/options", editorHandler.AddOption).Methods("POST", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/{questionId}/options/{optionId}", editorHandler.EditOption).Methods("PATCH", "OPTIONS")
	api.HandleFunc("/sessions/{sessionId}/questions/{questionId}/options/{optionId}", editorHandler.DeleteOption).Methods("DELETE", "OPTIONS")

	return r
}

func corsMiddleware(allowedOrigins string) mux.MiddlewareFunc {
	if allowedOrigins == "" {
		allowedOrigins = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// Hijack lets the WebSocket upgrade through the access log.
func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	s.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func accessLog(log zerolog.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", rec.status).
				Dur("duration", time.Since(start)).
				Msg("request")
		})
	}
}

package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"expvar"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/einfachManu/marine-snow-tutor/internal/knowledge"
	"github.com/einfachManu/marine-snow-tutor/internal/models"
	"github.com/einfachManu/marine-snow-tutor/internal/pipeline"
	"github.com/einfachManu/marine-snow-tutor/internal/session"
)

// Server is an HTTP API server that exposes the tutoring pipeline.
type Server struct {
	registry     *session.Registry
	engine       *pipeline.Engine
	kb           *knowledge.Base
	logger       *slog.Logger
	authToken    string // empty = no auth required
	defaultLevel models.StyleLevel
}

// NewServer creates a new Server with the given dependencies.
func NewServer(reg *session.Registry, eng *pipeline.Engine, kb *knowledge.Base, logger *slog.Logger, authToken string, defaultLevel models.StyleLevel) *Server {
	return &Server{
		registry:     reg,
		engine:       eng,
		kb:           kb,
		logger:       logger,
		authToken:    authToken,
		defaultLevel: defaultLevel,
	}
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Health check and metrics — no auth required.
	mux.HandleFunc("GET /healthz", s.handleHealthz)
	mux.Handle("GET /debug/vars", expvar.Handler())

	// Session and chat endpoints — wrapped with auth middleware.
	mux.HandleFunc("POST /v1/sessions", s.auth(s.handleCreateSession))
	mux.HandleFunc("DELETE /v1/sessions/{id}", s.auth(s.handleDeleteSession))
	mux.HandleFunc("POST /v1/chat", s.auth(s.handleChat))
	mux.HandleFunc("GET /v1/topics", s.auth(s.handleTopics))

	return mux
}

// --- middleware ---

// auth wraps a handler with Bearer token authentication when authToken is set.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.authToken == "" {
			next(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(token), []byte(s.authToken)) != 1 {
			s.writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r)
	}
}

// --- handlers ---

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// createSessionRequest is the body accepted by POST /v1/sessions. Level is
// optional; absence selects the configured default.
type createSessionRequest struct {
	Level *int `json:"level"`
}

// createSessionResponse is returned by POST /v1/sessions.
type createSessionResponse struct {
	SessionID   string `json:"session_id"`
	Level       int    `json:"level"`
	Greeting    string `json:"greeting"`
	Avatar      string `json:"avatar"`
	SpinnerText string `json:"spinner_text"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	level := s.defaultLevel
	if req.Level != nil {
		level = models.StyleLevel(*req.Level)
	}
	if !level.IsValid() {
		s.writeError(w, http.StatusBadRequest, "level must be 0, 1 or 2")
		return
	}

	sess := s.registry.Create(level)

	s.writeJSON(w, http.StatusOK, createSessionResponse{
		SessionID:   sess.ID,
		Level:       int(level),
		Greeting:    s.kb.Greeting(level),
		Avatar:      s.kb.Avatar(level),
		SpinnerText: s.kb.SpinnerText(level),
	})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		s.writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if _, err := s.registry.Get(id); errors.Is(err, session.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	s.registry.Delete(id)
	s.writeJSON(w, http.StatusOK, map[string]bool{"deleted": true})
}

// chatRequest is the body accepted by POST /v1/chat.
type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

// chatResponse is returned by POST /v1/chat.
type chatResponse struct {
	Reply  string        `json:"reply"`
	Intent models.Intent `json:"intent"`
	Topic  models.Topic  `json:"topic,omitempty"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1 MB limit
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.SessionID == "" {
		s.writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		s.writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	sess, err := s.registry.Get(req.SessionID)
	if err != nil {
		s.writeError(w, http.StatusNotFound, "session not found")
		return
	}

	res, err := s.engine.HandleTurn(r.Context(), sess, req.Message)
	if err != nil {
		s.logger.Error("failed to handle turn", "session", sess.ID, "error", err)
		s.writeError(w, http.StatusInternalServerError, "failed to handle message")
		return
	}

	s.writeJSON(w, http.StatusOK, chatResponse{Reply: res.Reply, Intent: res.Intent, Topic: res.Topic})
}

// topicsResponse is returned by GET /v1/topics.
type topicsResponse struct {
	Topics []string `json:"topics"`
}

func (s *Server) handleTopics(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, topicsResponse{Topics: s.kb.ScopeTopics()})
}

// --- helpers ---

// writeJSON encodes v as JSON and writes it to w with the given status code.
func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if encErr := json.NewEncoder(w).Encode(v); encErr != nil {
		s.logger.Error("failed to encode response", "error", encErr)
	}
}

// writeError writes a JSON error response.
func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

// Shutdown gracefully shuts down an http.Server with the given timeout.
// This is a convenience helper used by the serve command.
func Shutdown(srv *http.Server, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return srv.Shutdown(ctx)
}

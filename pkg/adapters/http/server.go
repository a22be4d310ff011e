package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/aretw0/concierge/pkg/domain"
	"github.com/aretw0/concierge/pkg/ports"
	"github.com/aretw0/concierge/pkg/runner"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes a DialogEngine over REST and a websocket chat endpoint.
type Server struct {
	engine         ports.DialogEngine
	logger         *slog.Logger
	gatherer       prometheus.Gatherer
	discardOnClose bool
	version        string
	upgrader       websocket.Upgrader
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithDiscardOnClose deletes a websocket thread when its connection closes.
func WithDiscardOnClose(discard bool) Option {
	return func(s *Server) {
		s.discardOnClose = discard
	}
}

// WithVersion sets the version reported by GET /info.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = v
	}
}

// NewServer creates a Server for the engine.
func NewServer(engine ports.DialogEngine, opts ...Option) *Server {
	s := &Server{
		engine:  engine,
		version: "dev",
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	return s
}

// NewHandler creates a new HTTP handler for the engine.
func NewHandler(engine ports.DialogEngine, opts ...Option) http.Handler {
	return NewServer(engine, opts...).Routes()
}

// Routes builds the chi router.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(enableCORS)

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/chat", s.Chat)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Route("/{threadID}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Get("/pending", s.GetPending)
			r.Post("/messages", s.SendMessage)
			r.Post("/signal", s.Signal)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// TurnResponse is the outcome of one message.
type TurnResponse struct {
	ThreadID    string               `json:"thread_id"`
	ActiveAgent domain.AgentID       `json:"active_agent"`
	Status      domain.SessionStatus `json:"status"`
	Events      []domain.Event       `json:"events"`
}

// PendingResponse describes the action awaiting approval.
type PendingResponse struct {
	Handle string         `json:"handle"`
	Agent  domain.AgentID `json:"agent"`
	Tool   string         `json:"tool"`
	Args   map[string]any `json:"args,omitempty"`
	Prompt string         `json:"prompt"`
}

// SignalRequest is the body of POST /sessions/{id}/signal.
type SignalRequest struct {
	Signal string `json:"signal"`
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"app": "concierge-http", "version": s.version})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	threads, err := s.engine.Sessions(r.Context())
	if err != nil {
		s.fail(w, "ListSessions", err)
		return
	}
	if threads == nil {
		threads = []string{}
	}
	s.writeJSON(w, http.StatusOK, threads)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.engine.Session(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		s.fail(w, "GetSession", err)
		return
	}
	s.writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), chi.URLParam(r, "threadID")); err != nil {
		s.fail(w, "DeleteSession", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPending handles GET /sessions/{id}/pending. An idle thread answers 204.
func (s *Server) GetPending(w http.ResponseWriter, r *http.Request) {
	sess, events, err := s.engine.Resume(r.Context(), chi.URLParam(r, "threadID"))
	if err != nil {
		s.fail(w, "GetPending", err)
		return
	}
	if sess.Pending == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	resp := PendingResponse{
		Handle: sess.Pending.Handle,
		Agent:  sess.Pending.Agent,
		Tool:   sess.Pending.Call.Name,
		Args:   sess.Pending.Call.Args,
	}
	for _, evt := range events {
		if evt.Type == domain.EventApprovalNeeded {
			resp.Prompt = evt.Content
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// SendMessage handles POST /sessions/{id}/messages: one turn, events in the response.
func (s *Server) SendMessage(w http.ResponseWriter, r *http.Request) {
	var in domain.Inbound
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		s.logger.Warn("SendMessage: invalid request body", "err", err)
		return
	}
	clean, err := runner.SanitizeInput(in.Message)
	if err != nil {
		http.Error(w, "Invalid input: "+err.Error(), http.StatusBadRequest)
		s.logger.Warn("SendMessage: input rejected", "err", err, "size", len(in.Message))
		return
	}
	in.Message = clean

	sess, events, err := s.engine.Send(r.Context(), chi.URLParam(r, "threadID"), in)
	if err != nil {
		s.fail(w, "SendMessage", err)
		return
	}
	if events == nil {
		events = []domain.Event{}
	}
	s.writeJSON(w, http.StatusOK, TurnResponse{
		ThreadID:    sess.ThreadID,
		ActiveAgent: sess.ActiveAgent,
		Status:      sess.Status,
		Events:      events,
	})
}

// Signal handles POST /sessions/{id}/signal.
func (s *Server) Signal(w http.ResponseWriter, r *http.Request) {
	var body SignalRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Signal == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	sess, err := s.engine.Signal(r.Context(), chi.URLParam(r, "threadID"), body.Signal)
	if err != nil {
		s.fail(w, "Signal", err)
		return
	}
	s.writeJSON(w, http.StatusOK, TurnResponse{
		ThreadID:    sess.ThreadID,
		ActiveAgent: sess.ActiveAgent,
		Status:      sess.Status,
		Events:      []domain.Event{},
	})
}

func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrUnhandledSignal):
		http.Error(w, "Signal unhandled: "+err.Error(), http.StatusNotFound)
	default:
		http.Error(w, op+" error: "+err.Error(), http.StatusInternalServerError)
		s.logger.Error(op+" failed", "err", err)
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// Package http exposes the conversation over a JSON API.
//
// Events are posted by the client; the commands produced for them are
// returned in the response and also pushed to any server-sent event stream
// open for the same user.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/mitchellh/mapstructure"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/ports"
)

// DefaultMaxBodySize bounds request bodies, uploads included.
const DefaultMaxBodySize = 20 << 20

// Sessions is the session administration the API exposes.
type Sessions interface {
	List(ctx context.Context) ([]string, error)
	Load(ctx context.Context, userID string) (*domain.Session, error)
	Delete(ctx context.Context, userID string) error
}

// Server serves the datadesk API.
type Server struct {
	Dispatcher ports.Dispatcher
	Sessions   Sessions
	Streams    *StreamManager

	logger      *zap.Logger
	gatherer    prometheus.Gatherer
	maxBodySize int64
	version     string
	admin       bool
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics serves the gatherer's metrics at /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.gatherer = g
	}
}

// WithMaxBodySize bounds request bodies.
func WithMaxBodySize(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodySize = n
		}
	}
}

// WithVersion sets the version reported by /health.
func WithVersion(v string) Option {
	return func(s *Server) {
		s.version = strings.TrimSpace(v)
	}
}

// WithSessionAdmin mounts the /v1/sessions routes, which expose every user's
// session. They are off by default and never carry CORS headers.
func WithSessionAdmin(enabled bool) Option {
	return func(s *Server) {
		s.admin = enabled
	}
}

// NewHandler creates the HTTP handler for the API.
func NewHandler(dispatcher ports.Dispatcher, sessions Sessions, opts ...Option) http.Handler {
	s := &Server{
		Dispatcher:  dispatcher,
		Sessions:    sessions,
		Streams:     NewStreamManager(),
		logger:      zap.NewNop(),
		maxBodySize: DefaultMaxBodySize,
		version:     "dev",
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams.logger = s.logger

	r := chi.NewRouter()
	r.Get("/health", s.GetHealth)
	if s.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/events", s.PostEvent)
		r.Post("/users/{userID}/documents", s.PostDocument)
		r.Get("/users/{userID}/stream", s.Stream)
		if s.admin {
			r.Get("/sessions", s.ListSessions)
			r.Get("/sessions/{userID}", s.GetSession)
			r.Delete("/sessions/{userID}", s.DeleteSession)
		}
	})
	return enableCORS(r)
}

const adminPrefix = "/v1/sessions"

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, adminPrefix) {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// EventRequest is the body of POST /v1/events. Payload depends on Type.
type EventRequest struct {
	Type    domain.EventType `json:"type"`
	UserID  string           `json:"user_id"`
	Payload map[string]any   `json:"payload"`
}

type textPayload struct {
	Text string `mapstructure:"text"`
}

type actionPayload struct {
	Action string `mapstructure:"action"`
}

// documentPayload carries a small upload inline; large files go through
// POST /v1/users/{userID}/documents.
type documentPayload struct {
	Format  string `mapstructure:"format"`
	Content string `mapstructure:"content"`
}

// CommandsResponse is the body of every dispatching endpoint.
type CommandsResponse struct {
	Commands []domain.Command `json:"commands"`
}

func decodePayload(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		ErrorUnused: true,
		Result:      out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// toEvent maps a request to a domain event.
func toEvent(req EventRequest) (domain.Event, error) {
	switch req.Type {
	case domain.EventTextReceived:
		var p textPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return domain.Event{}, err
		}
		return domain.TextReceived(req.UserID, p.Text), nil
	case domain.EventActionSelected:
		var p actionPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return domain.Event{}, err
		}
		if p.Action == "" {
			return domain.Event{}, errors.New("payload.action is required")
		}
		return domain.ActionSelected(req.UserID, p.Action), nil
	case domain.EventDatasetUploaded:
		var p documentPayload
		if err := decodePayload(req.Payload, &p); err != nil {
			return domain.Event{}, err
		}
		return domain.DatasetUploaded(req.UserID, []byte(p.Content), p.Format), nil
	default:
		return domain.Event{}, fmt.Errorf("unknown event type %q", req.Type)
	}
}

// PostEvent handles POST /v1/events.
func (s *Server) PostEvent(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodySize)

	var req EventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		s.logger.Warn("PostEvent: invalid request body", zap.Error(err))
		return
	}
	if req.UserID == "" {
		writeError(w, http.StatusBadRequest, "user_id is required")
		return
	}
	ev, err := toEvent(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid payload: %v", err))
		s.logger.Warn("PostEvent: invalid payload", zap.String("user_id", req.UserID), zap.Error(err))
		return
	}
	s.dispatch(w, r, ev)
}

// PostDocument handles POST /v1/users/{userID}/documents?format=csv.
func (s *Server) PostDocument(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	format := r.URL.Query().Get("format")
	if format == "" {
		writeError(w, http.StatusBadRequest, "format query parameter is required")
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodySize))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "document too large")
			return
		}
		writeError(w, http.StatusBadRequest, "failed to read document")
		s.logger.Warn("PostDocument: read failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	s.dispatch(w, r, domain.DatasetUploaded(userID, data, format))
}

func (s *Server) dispatch(w http.ResponseWriter, r *http.Request, ev domain.Event) {
	cmds, err := s.Dispatcher.Dispatch(r.Context(), ev)
	if err != nil {
		status := http.StatusInternalServerError
		if r.Context().Err() == nil {
			status = http.StatusBadRequest
		}
		writeError(w, status, err.Error())
		s.logger.Warn("Dispatch failed", zap.String("user_id", ev.UserID), zap.Error(err))
		return
	}
	if cmds == nil {
		cmds = []domain.Command{}
	}

	if len(cmds) > 0 {
		if payload, err := json.Marshal(cmds); err == nil {
			s.Streams.Broadcast(ev.UserID, string(payload))
		}
	}
	writeJSON(w, http.StatusOK, CommandsResponse{Commands: cmds})
}

// ListSessions handles GET /v1/sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		s.logger.Error("ListSessions failed", zap.Error(err))
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// GetSession handles GET /v1/sessions/{userID}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	sess, err := s.Sessions.Load(r.Context(), userID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session")
		s.logger.Error("GetSession failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

// DeleteSession handles DELETE /v1/sessions/{userID}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	if err := s.Sessions.Delete(r.Context(), userID); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		s.logger.Error("DeleteSession failed", zap.String("user_id", userID), zap.Error(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"app":     "datadesk",
		"version": s.version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

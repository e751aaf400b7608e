package http

import (
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// StreamManager fans command batches out to open SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // userID -> set of channels
	logger      *zap.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      zap.NewNop(),
	}
}

// Subscribe registers a channel for the user. The returned func unregisters
// and closes it.
func (sm *StreamManager) Subscribe(userID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[userID]; !ok {
		sm.subscribers[userID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[userID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[userID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, userID)
				}
			}
		})
	}
}

// Subscribers reports how many streams are open for the user.
func (sm *StreamManager) Subscribers(userID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[userID])
}

// Broadcast delivers msg to every stream of the user. Slow clients lose
// messages rather than block the dispatcher.
func (sm *StreamManager) Broadcast(userID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[userID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", zap.String("user_id", userID))
		}
	}
}

// Stream handles GET /v1/users/{userID}/stream.
func (s *Server) Stream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	userID := chi.URLParam(r, "userID")

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch, cancel := s.Streams.Subscribe(userID)
	defer cancel()
	s.logger.Info("SSE: client subscribed", zap.String("user_id", userID))

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", zap.String("user_id", userID))
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: commands\ndata: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

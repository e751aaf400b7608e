package memory

import (
	"context"
	"time"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/patrickmn/go-cache"
)

const (
	// DefaultTTL evicts sessions idle for a day.
	DefaultTTL = 24 * time.Hour
	// DefaultCleanupInterval is how often expired sessions are purged.
	DefaultCleanupInterval = 10 * time.Minute
)

// Store implements ports.SessionStore in process memory.
// Every Save refreshes the session's idle expiration.
// Safe for concurrent use.
type Store struct {
	cache *cache.Cache
}

type config struct {
	ttl     time.Duration
	cleanup time.Duration
}

// Option configures the Store.
type Option func(*config)

// WithTTL sets how long an untouched session is kept. Zero disables expiry.
func WithTTL(ttl time.Duration) Option {
	return func(c *config) {
		c.ttl = ttl
	}
}

// WithCleanupInterval sets how often expired sessions are purged.
func WithCleanupInterval(d time.Duration) Option {
	return func(c *config) {
		c.cleanup = d
	}
}

// NewStore creates a new in-memory store.
func NewStore(opts ...Option) *Store {
	cfg := config{ttl: DefaultTTL, cleanup: DefaultCleanupInterval}
	for _, opt := range opts {
		opt(&cfg)
	}

	ttl := cfg.ttl
	if ttl <= 0 {
		ttl = cache.NoExpiration
		cfg.cleanup = 0
	}
	return &Store{cache: cache.New(ttl, cfg.cleanup)}
}

// Save persists a copy of the session.
func (s *Store) Save(ctx context.Context, userID string, session *domain.Session) error {
	s.cache.Set(userID, session.Clone(), cache.DefaultExpiration)
	return nil
}

// Load returns a copy so callers can't mutate stored state through the pointer.
func (s *Store) Load(ctx context.Context, userID string) (*domain.Session, error) {
	x, found := s.cache.Get(userID)
	if !found {
		return nil, domain.ErrSessionNotFound
	}
	return x.(*domain.Session).Clone(), nil
}

// Delete removes the session.
func (s *Store) Delete(ctx context.Context, userID string) error {
	s.cache.Delete(userID)
	return nil
}

// List returns the sessions that have not expired.
func (s *Store) List(ctx context.Context) ([]string, error) {
	items := s.cache.Items()
	ids := make([]string, 0, len(items))
	for id := range items {
		ids = append(ids, id)
	}
	return ids, nil
}

// Len reports how many sessions are held, expired ones included until the
// next cleanup.
func (s *Store) Len() int {
	return s.cache.ItemCount()
}

package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/aretw0/datadesk/internal/logging"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/aretw0/datadesk/pkg/ports"
	"go.uber.org/zap"
)

// DefaultLockTTL bounds how long a distributed lock survives a crashed holder.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *zap.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL for distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new session Manager over the given store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(userID) after unlocking.
func (m *Manager) acquire(userID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[userID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, userID)
	}
}

// WithLock executes fn while holding the lock for the user.
func (m *Manager) WithLock(ctx context.Context, userID string, fn func(context.Context) error) error {
	entry := m.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(userID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, userID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			// The event context may already be cancelled; release regardless.
			if err := unlock(context.WithoutCancel(ctx)); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					zap.String("user_id", userID),
					zap.Error(err),
				)
			}
		}()
	}

	return fn(ctx)
}

// load reads the stored session or builds a fresh one. The bool reports
// whether the session already existed.
func (m *Manager) load(ctx context.Context, userID string) (*domain.Session, bool, error) {
	s, err := m.store.Load(ctx, userID)
	if err == nil {
		return s, true, nil
	}
	if !errors.Is(err, domain.ErrSessionNotFound) {
		return nil, false, fmt.Errorf("failed to load session: %w", err)
	}
	return domain.NewSession(userID), false, nil
}

// Update runs fn on a private copy of the user's session and stores the copy
// if fn returns nil and ctx is still live. Otherwise nothing is written, so
// an event either applies completely or not at all.
func (m *Manager) Update(ctx context.Context, userID string, fn func(*domain.Session) error) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		current, _, err := m.load(ctx, userID)
		if err != nil {
			return err
		}

		next := current.Clone()
		if err := fn(next); err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		next.UserID = userID
		next.UpdatedAt = m.now()
		if err := m.store.Save(ctx, userID, next); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
		return nil
	})
}

// GetOrCreate returns the user's session, creating and storing a fresh one
// in the Message stage on first access.
func (m *Manager) GetOrCreate(ctx context.Context, userID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		s, existed, err := m.load(ctx, userID)
		if err != nil {
			return err
		}
		if !existed {
			s.UpdatedAt = m.now()
			if err := m.store.Save(ctx, userID, s); err != nil {
				return fmt.Errorf("failed to initialize session: %w", err)
			}
			m.logger.Debug("Session created", zap.String("user_id", userID))
		}
		session = s
		return nil
	})
	return session, err
}

// Load retrieves an existing session.
func (m *Manager) Load(ctx context.Context, userID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, userID)
		return err
	})
	return session, err
}

// SetStage overwrites the user's stage.
func (m *Manager) SetStage(ctx context.Context, userID string, stage domain.Stage) error {
	return m.Update(ctx, userID, func(s *domain.Session) error {
		s.State.Stage = stage
		return nil
	})
}

// SetDataset replaces the user's dataset.
func (m *Manager) SetDataset(ctx context.Context, userID string, ds domain.Dataset) error {
	return m.Update(ctx, userID, func(s *domain.Session) error {
		s.State.Dataset = ds
		return nil
	})
}

// SetLastResult replaces the result of the user's latest query.
func (m *Manager) SetLastResult(ctx context.Context, userID string, ds domain.Dataset) error {
	return m.Update(ctx, userID, func(s *domain.Session) error {
		s.State.LastResult = ds
		return nil
	})
}

// SetFilterFields records the pending filter selection.
func (m *Manager) SetFilterFields(ctx context.Context, userID string, field1, field2 domain.FieldID) error {
	return m.Update(ctx, userID, func(s *domain.Session) error {
		s.State.FilterField1 = field1
		s.State.FilterField2 = field2
		return nil
	})
}

// SetLastSortField remembers the field used by direction toggles.
func (m *Manager) SetLastSortField(ctx context.Context, userID string, field domain.FieldID) error {
	return m.Update(ctx, userID, func(s *domain.Session) error {
		s.State.LastSortField = field
		return nil
	})
}

// Push appends a frame to the user's navigation history.
func (m *Manager) Push(ctx context.Context, userID string, frame navigation.Frame) error {
	return m.Update(ctx, userID, func(s *domain.Session) error {
		s.Navigation.Push(frame)
		return nil
	})
}

// Pop goes back one step in the user's navigation history and returns the
// frame now showing. ok is false when the user is already at the root.
func (m *Manager) Pop(ctx context.Context, userID string) (frame navigation.Frame, ok bool, err error) {
	err = m.Update(ctx, userID, func(s *domain.Session) error {
		frame, ok = s.Navigation.Pop()
		return nil
	})
	return frame, ok, err
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, userID string) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Delete(ctx, userID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

package ports

import (
	"context"

	"github.com/aretw0/datadesk/pkg/domain"
)

// SessionStore defines the interface for persisting user sessions.
type SessionStore interface {
	// Save persists the session for a given user ID.
	Save(ctx context.Context, userID string, session *domain.Session) error

	// Load retrieves the session for a given user ID.
	// Returns domain.ErrSessionNotFound if the session does not exist or expired.
	Load(ctx context.Context, userID string) (*domain.Session, error)

	// Delete removes the session for a given user ID.
	Delete(ctx context.Context, userID string) error

	// List returns the IDs of the sessions currently held.
	List(ctx context.Context) ([]string, error)
}

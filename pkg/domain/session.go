package domain

import (
	"time"

	"github.com/aretw0/datadesk/pkg/navigation"
)

// Stage is the position of a user in the conversation.
type Stage string

const (
	StageMessage  Stage = "message"  // Free-text commands; waiting for a dataset.
	StageDocument Stage = "document" // A dataset is loaded; menus drive the flow.
	StageFilter   Stage = "filter"   // Waiting for filter input as text.
)

// SessionState holds what a user currently has loaded and selected.
type SessionState struct {
	Stage         Stage   `json:"stage"`
	Dataset       Dataset `json:"dataset,omitempty"`
	LastResult    Dataset `json:"last_result,omitempty"`
	FilterField1  FieldID `json:"filter_field_1,omitempty"`
	FilterField2  FieldID `json:"filter_field_2,omitempty"`
	LastSortField FieldID `json:"last_sort_field,omitempty"`
}

// Session is the per-user aggregate persisted by the session store.
// State and Navigation are always read and written together under the
// user's lock.
type Session struct {
	UserID     string           `json:"user_id"`
	State      SessionState     `json:"state"`
	Navigation navigation.Stack `json:"navigation"`
	UpdatedAt  time.Time        `json:"updated_at"`

	// Sealed carries the encrypted session when the store encrypts at rest.
	// It is empty on every session handed to the controller.
	Sealed []byte `json:"sealed,omitempty"`
}

// NewSession creates a fresh session in the Message stage.
func NewSession(userID string) *Session {
	return &Session{
		UserID: userID,
		State:  SessionState{Stage: StageMessage},
	}
}

// Clone returns a copy that can be modified without affecting s.
// Datasets are shared because they are never mutated in place.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Navigation = s.Navigation.Clone()
	return &c
}

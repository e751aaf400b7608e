package runtime

import (
	"errors"
	"fmt"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/observability"
	"github.com/aretw0/datadesk/pkg/query"
	"github.com/aretw0/datadesk/pkg/schema"
)

var (
	// ErrUnknownEvent is returned for events the controller has no route for.
	ErrUnknownEvent = errors.New("unknown event type")
	// ErrMissingUser is returned for events without a user id.
	ErrMissingUser = errors.New("event has no user id")
	// ErrUploadTooLarge rejects documents above the configured upload limit.
	ErrUploadTooLarge = errors.New("file exceeds maximum allowed size")
)

// CollaboratorError wraps a failure reported by the codec or the input
// sanitizer. The user sees the collaborator's message; the controller does
// not look inside it.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error { return e.Err }

// PanicError carries a value recovered from a handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("handler panicked: %v", e.Value)
}

// classify maps a handler error to the reply the user should see. ok is
// false for fatal errors, which abort the transaction instead.
func classify(err error, s *domain.Session) (reply, class string, ok bool) {
	var (
		mismatch *schema.TypeMismatchError
		collab   *CollaboratorError
	)
	switch {
	case errors.As(err, &mismatch):
		return fmt.Sprintf(msgTypeMismatch, mismatch.Raw, mismatch.Expected, fieldLabel(mismatch.Field), mismatch.Expected.Hint()) +
			msgRetry, observability.ClassUser, true
	case errors.Is(err, query.ErrMalformedCompoundInput):
		f1, f2 := filterFields(s.State)
		return fmt.Sprintf(msgMalformed, fieldLabel(f1), fieldLabel(f2)) + msgRetry, observability.ClassUser, true
	case errors.Is(err, query.ErrNoMatch):
		return msgNoMatch + msgRetry, observability.ClassUser, true
	case errors.Is(err, query.ErrEmptyDataset):
		return msgNoData, observability.ClassUser, true
	case errors.Is(err, query.ErrIncompleteData):
		return msgIncomplete, observability.ClassUser, true
	case errors.As(err, &collab):
		return fmt.Sprintf(msgCollaborator, collab.Err), observability.ClassCollaborator, true
	}
	return "", observability.ClassFatal, false
}

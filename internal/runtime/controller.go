package runtime

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aretw0/datadesk/pkg/codec"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/aretw0/datadesk/pkg/observability"
	"github.com/aretw0/datadesk/pkg/ports"
	"github.com/aretw0/datadesk/pkg/session"
)

// DefaultMaxUploadSize bounds an uploaded document, in bytes.
const DefaultMaxUploadSize = 20 << 20

// Controller routes events through the per-user state machine.
type Controller struct {
	sessions  *session.Manager
	codec     ports.Codec
	logger    *zap.Logger
	metrics   *observability.Metrics
	maxInput  int
	maxUpload int
	actions   map[string]handler
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger. Defaults to a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records event counts and latencies.
func WithMetrics(m *observability.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

// WithCodec replaces the dataset codec.
func WithCodec(cd ports.Codec) Option {
	return func(c *Controller) {
		if cd != nil {
			c.codec = cd
		}
	}
}

// WithMaxInputSize bounds text messages. Zero keeps DefaultMaxInputSize.
func WithMaxInputSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxInput = n
		}
	}
}

// WithMaxUploadSize bounds uploaded documents. Zero keeps DefaultMaxUploadSize.
func WithMaxUploadSize(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxUpload = n
		}
	}
}

// NewController creates a controller over the given session manager.
func NewController(sessions *session.Manager, opts ...Option) *Controller {
	c := &Controller{
		sessions:  sessions,
		codec:     codec.New(),
		logger:    zap.NewNop(),
		maxInput:  DefaultMaxInputSize,
		maxUpload: DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.actions = c.buildActions()
	return c
}

// Sessions exposes the underlying session manager.
func (c *Controller) Sessions() *session.Manager {
	return c.sessions
}

// outbox collects the commands of one event. They are released only after
// the session commit succeeds.
type outbox struct {
	userID string
	cmds   []domain.Command
}

func (o *outbox) text(text string, suggestions ...string) {
	o.cmds = append(o.cmds, domain.NewText(o.userID, text, suggestions...))
}

func (o *outbox) menu(f navigation.Frame, mode domain.RenderMode) {
	o.cmds = append(o.cmds, domain.NewMenu(o.userID, f, mode))
}

func (o *outbox) file(f domain.FileAttachment) {
	o.cmds = append(o.cmds, domain.NewFile(o.userID, f))
}

func (o *outbox) reset() {
	o.cmds = nil
}

// Dispatch handles one event and returns the commands to deliver.
//
// A nil error means the event was handled, possibly with an error reply.
// Errors are returned only for malformed events and for a cancelled ctx.
// A fatal handler error rolls the session back and resets its stage to
// Message within the same transaction.
func (c *Controller) Dispatch(ctx context.Context, ev domain.Event) ([]domain.Command, error) {
	if ev.UserID == "" {
		return nil, ErrMissingUser
	}
	switch ev.Type {
	case domain.EventDatasetUploaded, domain.EventTextReceived, domain.EventActionSelected:
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	start := time.Now()
	defer func() {
		c.metrics.ObserveEvent(string(ev.Type), time.Since(start))
	}()

	log := c.logger.With(
		zap.String("request_id", uuid.NewString()),
		zap.String("user_id", ev.UserID),
		zap.String("event", string(ev.Type)),
	)
	log.Debug("Dispatching event", zap.String("action", ev.Action))

	out := &outbox{userID: ev.UserID}
	var fatal error
	err := c.sessions.Update(ctx, ev.UserID, func(s *domain.Session) error {
		out.reset()
		fatal = nil
		snapshot := s.Clone()
		if ferr := c.safeRoute(log, s, ev, out); ferr != nil {
			// Roll back and reset the stage in the same commit.
			*s = *snapshot
			s.State.Stage = domain.StageMessage
			out.reset()
			fatal = ferr
		}
		return nil
	})
	if err == nil && fatal == nil {
		return out.cmds, nil
	}

	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			log.Warn("Event abandoned", zap.Error(err))
			return nil, ctxErr
		}
		// The session could not be loaded, locked or saved.
		c.metrics.ObserveFailure(observability.ClassFatal)
		log.Error("Event failed, resetting stage", zap.Error(err))
		if rerr := c.sessions.SetStage(ctx, ev.UserID, domain.StageMessage); rerr != nil {
			log.Error("Failed to reset stage", zap.Error(rerr))
		}
		return []domain.Command{domain.NewText(ev.UserID, msgProcessingFailed)}, nil
	}

	c.metrics.ObserveFailure(observability.ClassFatal)
	var p *PanicError
	if errors.As(fatal, &p) {
		log.Error("Handler panicked, stage reset", zap.Any("panic", p.Value), zap.ByteString("stack", p.Stack))
	} else {
		log.Error("Event failed, stage reset", zap.Error(fatal))
	}
	return []domain.Command{domain.NewText(ev.UserID, msgProcessingFailed)}, nil
}

// safeRoute is route with panics turned into a *PanicError.
func (c *Controller) safeRoute(log *zap.Logger, s *domain.Session, ev domain.Event, out *outbox) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Value: r, Stack: debug.Stack()}
		}
	}()
	return c.route(log, s, ev, out)
}

// route runs the handler for ev. User and collaborator errors are answered
// here and leave the session as it was before the event; any other error is
// returned and Dispatch rolls the session back.
func (c *Controller) route(log *zap.Logger, s *domain.Session, ev domain.Event, out *outbox) error {
	snapshot := s.Clone()

	err := c.handle(s, ev, out)
	if err == nil {
		return nil
	}

	reply, class, ok := classify(err, snapshot)
	if !ok {
		return err
	}
	*s = *snapshot
	out.reset()
	out.text(reply)
	c.metrics.ObserveFailure(class)
	log.Info("Request rejected", zap.String("class", class), zap.Error(err))
	return nil
}

func (c *Controller) handle(s *domain.Session, ev domain.Event, out *outbox) error {
	switch ev.Type {
	case domain.EventDatasetUploaded:
		return c.upload(s, ev, out)
	case domain.EventActionSelected:
		return c.action(s, ev.Action, out)
	}

	text, err := SanitizeInput(ev.Text, c.maxInput)
	if err != nil {
		return &CollaboratorError{Op: "read message", Err: err}
	}
	switch s.State.Stage {
	case domain.StageMessage:
		c.command(text, out)
		return nil
	case domain.StageDocument:
		c.menuText(text, out)
		return nil
	case domain.StageFilter:
		return c.filterInput(s, text, out)
	default:
		return fmt.Errorf("session %s is in unknown stage %q", s.UserID, s.State.Stage)
	}
}

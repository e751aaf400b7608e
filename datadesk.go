package datadesk

import (
	"context"

	"go.uber.org/zap"

	"github.com/aretw0/datadesk/internal/runtime"
	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/observability"
	"github.com/aretw0/datadesk/pkg/ports"
	"github.com/aretw0/datadesk/pkg/session"
)

// Version is the release of the datadesk module.
var Version = "0.4.0"

// Desk is the high-level entry point for the library.
// It wires a session manager to the transactional controller and exposes the
// single Dispatch operation transports need.
type Desk struct {
	controller *runtime.Controller
	sessions   *session.Manager

	store     ports.SessionStore
	locker    ports.DistributedLocker
	codec     ports.Codec
	logger    *zap.Logger
	metrics   *observability.Metrics
	maxInput  int
	maxUpload int
}

// Option defines a functional option for configuring the Desk.
type Option func(*Desk)

// WithStore sets the session store. Defaults to an in-memory store.
func WithStore(store ports.SessionStore) Option {
	return func(d *Desk) {
		d.store = store
	}
}

// WithLocker serializes a user's events across processes sharing the store.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(d *Desk) {
		d.locker = locker
	}
}

// WithCodec overrides the dataset codec.
func WithCodec(cd ports.Codec) Option {
	return func(d *Desk) {
		d.codec = cd
	}
}

// WithLogger sets a structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(d *Desk) {
		d.logger = logger
	}
}

// WithMetrics records dispatch metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(d *Desk) {
		d.metrics = m
	}
}

// WithMaxInputSize bounds free-text messages, in bytes.
func WithMaxInputSize(n int) Option {
	return func(d *Desk) {
		d.maxInput = n
	}
}

// WithMaxUploadSize bounds uploaded files, in bytes.
func WithMaxUploadSize(n int) Option {
	return func(d *Desk) {
		d.maxUpload = n
	}
}

// New builds a Desk. Without options it keeps sessions in memory and logs nothing.
func New(opts ...Option) *Desk {
	d := &Desk{}
	for _, opt := range opts {
		opt(d)
	}

	if d.store == nil {
		d.store = memory.NewStore()
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}

	d.sessions = session.NewManager(d.store,
		session.WithLocker(d.locker),
		session.WithLogger(d.logger),
	)

	ctrlOpts := []runtime.Option{
		runtime.WithLogger(d.logger),
		runtime.WithMetrics(d.metrics),
	}
	if d.codec != nil {
		ctrlOpts = append(ctrlOpts, runtime.WithCodec(d.codec))
	}
	if d.maxInput > 0 {
		ctrlOpts = append(ctrlOpts, runtime.WithMaxInputSize(d.maxInput))
	}
	if d.maxUpload > 0 {
		ctrlOpts = append(ctrlOpts, runtime.WithMaxUploadSize(d.maxUpload))
	}
	d.controller = runtime.NewController(d.sessions, ctrlOpts...)

	return d
}

// Dispatch handles one inbound event and returns the commands the transport
// must execute, in order. The user's session changes only if the event was
// handled, including handled rejections such as a bad filter value.
func (d *Desk) Dispatch(ctx context.Context, event domain.Event) ([]domain.Command, error) {
	return d.controller.Dispatch(ctx, event)
}

// Sessions returns the session manager backing the desk.
func (d *Desk) Sessions() *session.Manager {
	return d.sessions
}

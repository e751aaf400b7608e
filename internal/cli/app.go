package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	"github.com/aretw0/datadesk"
	"github.com/aretw0/datadesk/internal/config"
	"github.com/aretw0/datadesk/internal/logging"
	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/adapters/redis"
	"github.com/aretw0/datadesk/pkg/observability"
	"github.com/aretw0/datadesk/pkg/persistence/middleware"
	"github.com/aretw0/datadesk/pkg/ports"
)

const redisConnectTimeout = 5 * time.Second

// App holds the components every command shares, built from one Config.
type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Desk     *datadesk.Desk
	Registry *prometheus.Registry

	closers []func() error
}

// Build wires logging, storage, metrics and the desk.
func Build(cfg *config.Config) (*App, error) {
	logger, err := logging.New(logging.Options{
		Level:   cfg.Log.Level,
		File:    cfg.Log.File,
		Console: cfg.Log.Console,
	})
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:   cfg,
		Logger:   logger,
		Registry: prometheus.NewRegistry(),
	}
	app.closers = append(app.closers, func() error {
		// Sync fails on unbuffered terminals; nothing to flush there.
		_ = logger.Sync()
		return nil
	})

	store, locker, activeSessions, err := app.openStore()
	if err != nil {
		_ = app.Close()
		return nil, err
	}
	if store, err = sealStore(store, cfg.Store.Encryption); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics, err := observability.NewMetrics(app.Registry, activeSessions)
	if err != nil {
		_ = app.Close()
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	opts := []datadesk.Option{
		datadesk.WithStore(store),
		datadesk.WithLogger(logger),
		datadesk.WithMetrics(metrics),
		datadesk.WithMaxInputSize(cfg.Limits.MaxInputSize),
		datadesk.WithMaxUploadSize(cfg.Limits.MaxUploadSize),
	}
	if locker != nil {
		opts = append(opts, datadesk.WithLocker(locker))
	}
	app.Desk = datadesk.New(opts...)

	logger.Debug("application built",
		zap.String("store", cfg.Store.Backend),
		zap.Duration("session_ttl", cfg.Store.TTL),
	)
	return app, nil
}

// openStore returns the session store, the locker to share it across
// replicas (nil for memory) and the active session sampler (nil for redis).
func (a *App) openStore() (ports.SessionStore, ports.DistributedLocker, func() int, error) {
	sc := a.Config.Store
	switch sc.Backend {
	case "redis":
		store := redis.New(sc.Redis.Addr, sc.Redis.Password, sc.Redis.DB,
			redis.WithTTL(sc.TTL),
			redis.WithPrefix(sc.Redis.Prefix),
		)
		ctx, cancel := context.WithTimeout(context.Background(), redisConnectTimeout)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			_ = store.Close()
			return nil, nil, nil, fmt.Errorf("connect to redis at %s: %w", sc.Redis.Addr, err)
		}
		a.closers = append(a.closers, store.Close)
		a.Logger.Info("session store ready", zap.String("backend", "redis"), zap.String("addr", sc.Redis.Addr))
		return store, redis.NewLocker(store.Client(), store.Prefix()), nil, nil
	default:
		store := memory.NewStore(memory.WithTTL(sc.TTL))
		a.Logger.Info("session store ready", zap.String("backend", "memory"))
		return store, nil, store.Len, nil
	}
}

// sealStore wraps store with at-rest encryption when a key is configured.
func sealStore(store ports.SessionStore, ec config.EncryptionConfig) (ports.SessionStore, error) {
	if ec.Key == "" {
		return store, nil
	}
	active, err := base64.StdEncoding.DecodeString(ec.Key)
	if err != nil {
		return nil, fmt.Errorf("decode encryption key: %w", err)
	}
	enc := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range ec.FallbackKeys {
		key, err := base64.StdEncoding.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("decode fallback key %d: %w", i, err)
		}
		enc.FallbackKeys = append(enc.FallbackKeys, key)
	}

	mw, err := middleware.NewEncryptionMiddleware(enc)
	if err != nil {
		return nil, err
	}
	return middleware.Chain(store, mw), nil
}

// Close releases the store connection and flushes the logger, in reverse
// order of acquisition.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

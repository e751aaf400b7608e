package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/aretw0/datadesk"
	"github.com/aretw0/datadesk/internal/presentation/tui"
	"github.com/aretw0/datadesk/pkg/adapters/console"
	api "github.com/aretw0/datadesk/pkg/adapters/http"
	"github.com/aretw0/datadesk/pkg/adapters/telegram"
)

const shutdownTimeout = 5 * time.Second

// RunTelegram long-polls the Bot API until ctx is cancelled.
func RunTelegram(ctx context.Context, app *App) error {
	cfg := app.Config
	if err := cfg.RequireTelegram(); err != nil {
		return err
	}

	botAPI, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return fmt.Errorf("connect to telegram: %w", err)
	}
	app.Logger.Info("telegram bot authorized",
		zap.String("username", botAPI.Self.UserName),
		zap.Int("workers", cfg.Telegram.Workers),
	)

	bot := telegram.New(botAPI, app.Desk,
		telegram.WithLogger(app.Logger),
		telegram.WithWorkers(cfg.Telegram.Workers),
		telegram.WithMaxUploadSize(int64(cfg.Limits.MaxUploadSize)),
	)
	updates := telegram.Listen(ctx, botAPI, cfg.Telegram.PollTimeout)

	err = bot.Run(ctx, updates)
	logSignal(ctx, app.Logger)
	app.Logger.Info("telegram bot stopped")
	return handleExecutionError(err)
}

// NewHTTPHandler builds the API handler for the app.
func NewHTTPHandler(app *App) http.Handler {
	return api.NewHandler(app.Desk, app.Desk.Sessions(),
		api.WithLogger(app.Logger),
		api.WithMetrics(app.Registry),
		// Inline JSON escaping can double an upload.
		api.WithMaxBodySize(2*int64(app.Config.Limits.MaxUploadSize)),
		api.WithVersion(datadesk.Version),
		api.WithSessionAdmin(app.Config.HTTP.SessionAdmin),
	)
}

// RunServer serves the HTTP API until ctx is cancelled, then drains
// outstanding requests for up to shutdownTimeout.
func RunServer(ctx context.Context, app *App) error {
	srv := &http.Server{
		Addr:              app.Config.HTTP.Addr,
		Handler:           NewHTTPHandler(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		app.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("http server: %w", err)

	case <-ctx.Done():
		logSignal(ctx, app.Logger)
		app.Logger.Info("http server shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Warn("graceful shutdown did not complete",
				zap.Duration("timeout", shutdownTimeout),
				zap.Error(err),
			)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("close http server: %w", err)
			}
		}
		if err := <-serverErrors; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		app.Logger.Info("http server stopped")
		return nil
	}
}

// ChatOptions configures RunChat.
type ChatOptions struct {
	UserID    string
	OutputDir string
	Banner    bool
}

// RunChat runs the console chat on in and out. Markdown rendering is enabled
// only when out is a terminal.
func RunChat(ctx context.Context, app *App, in io.Reader, out io.Writer, opts ChatOptions) error {
	if opts.Banner {
		tui.PrintBanner(out, datadesk.Version)
	}

	chatOpts := []console.Option{
		console.WithUserID(opts.UserID),
		console.WithLogger(app.Logger),
	}
	if opts.OutputDir != "" {
		chatOpts = append(chatOpts, console.WithOutputDir(opts.OutputDir))
	}
	if f, ok := out.(*os.File); ok {
		if render := tui.NewRenderer(f); render != nil {
			chatOpts = append(chatOpts, console.WithRenderer(render))
		}
	}

	chat := console.New(app.Desk, in, out, chatOpts...)
	return handleExecutionError(chat.Run(ctx))
}

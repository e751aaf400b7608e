// Package telegram connects the conversation controller to the Telegram Bot
// API by long polling.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/ports"
)

const (
	DefaultWorkers       = 8
	DefaultMaxUploadSize = 20 << 20
	DefaultPollTimeout   = 60
)

const msgDownloadFailed = "⚠️ Could not download the file. Please send it again."

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Bot turns Telegram updates into events and commands into Bot API calls.
type Bot struct {
	api        API
	dispatcher ports.Dispatcher
	logger     *zap.Logger
	client     *http.Client
	workers    int
	maxUpload  int64
}

// Option configures a Bot.
type Option func(*Bot)

func WithLogger(logger *zap.Logger) Option {
	return func(b *Bot) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithWorkers bounds how many updates are handled concurrently.
func WithWorkers(n int) Option {
	return func(b *Bot) {
		if n > 0 {
			b.workers = n
		}
	}
}

// WithMaxUploadSize caps how many bytes of a document are downloaded.
func WithMaxUploadSize(n int64) Option {
	return func(b *Bot) {
		if n > 0 {
			b.maxUpload = n
		}
	}
}

// WithHTTPClient sets the client used to download documents.
func WithHTTPClient(c *http.Client) Option {
	return func(b *Bot) {
		if c != nil {
			b.client = c
		}
	}
}

// New creates a bot.
func New(api API, dispatcher ports.Dispatcher, opts ...Option) *Bot {
	b := &Bot{
		api:        api,
		dispatcher: dispatcher,
		logger:     zap.NewNop(),
		client:     &http.Client{Timeout: 30 * time.Second},
		workers:    DefaultWorkers,
		maxUpload:  DefaultMaxUploadSize,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Listen starts long polling. The channel is closed once ctx is done.
func Listen(ctx context.Context, api *tgbotapi.BotAPI, timeout int) tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = timeout
	updates := api.GetUpdatesChan(u)
	go func() {
		<-ctx.Done()
		api.StopReceivingUpdates()
	}()
	return updates
}

// queueSize is the backlog each worker accepts before Run blocks.
const queueSize = 16

// Run handles updates until the channel is closed or ctx is done, then waits
// for in-flight updates. Updates from one user always go to the same worker,
// so each user's updates are handled in the order they arrived.
func (b *Bot) Run(ctx context.Context, updates <-chan tgbotapi.Update) error {
	queues := make([]chan tgbotapi.Update, b.workers)
	var g errgroup.Group
	for i := range queues {
		q := make(chan tgbotapi.Update, queueSize)
		queues[i] = q
		g.Go(func() error {
			for u := range q {
				// Drain without handling once stopped.
				if ctx.Err() != nil {
					continue
				}
				b.HandleUpdate(ctx, u)
			}
			return nil
		})
	}
	stop := func() error {
		for _, q := range queues {
			close(q)
		}
		return g.Wait()
	}

	for {
		select {
		case <-ctx.Done():
			stop()
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return stop()
			}
			select {
			case queues[shard(u, len(queues))] <- u:
			case <-ctx.Done():
				stop()
				return ctx.Err()
			}
		}
	}
}

// shard maps the update's sender to one of n workers.
func shard(u tgbotapi.Update, n int) int {
	var id int64
	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.From != nil:
		id = u.CallbackQuery.From.ID
	case u.Message != nil && u.Message.From != nil:
		id = u.Message.From.ID
	}
	return int(uint64(id) % uint64(n))
}

// target is where replies to one update go.
type target struct {
	chatID    int64
	messageID int // menu message of a callback, 0 otherwise
}

// HandleUpdate processes one update. Failures are logged and, where the user
// is waiting for an answer, reported back to the chat.
func (b *Bot) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	var (
		ev  domain.Event
		dst target
	)
	switch {
	case u.CallbackQuery != nil:
		cq := u.CallbackQuery
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			b.logger.Warn("Failed to acknowledge callback", zap.String("callback_id", cq.ID), zap.Error(err))
		}
		if cq.From == nil || cq.Message == nil || cq.Message.Chat == nil {
			return
		}
		ev = domain.ActionSelected(userID(cq.From), cq.Data)
		dst = target{chatID: cq.Message.Chat.ID, messageID: cq.Message.MessageID}

	case u.Message != nil && u.Message.From != nil && u.Message.Chat != nil:
		msg := u.Message
		dst = target{chatID: msg.Chat.ID}
		if msg.Document != nil {
			data, err := b.download(ctx, msg.Document.FileID)
			if err != nil {
				b.logger.Warn("Document download failed",
					zap.String("user_id", userID(msg.From)),
					zap.String("file_name", msg.Document.FileName),
					zap.Error(err),
				)
				b.send(dst, tgbotapi.NewMessage(dst.chatID, msgDownloadFailed))
				return
			}
			ev = domain.DatasetUploaded(userID(msg.From), data, msg.Document.FileName)
		} else {
			ev = domain.TextReceived(userID(msg.From), msg.Text)
		}

	default:
		return
	}

	cmds, err := b.dispatcher.Dispatch(ctx, ev)
	if err != nil {
		b.logger.Warn("Dispatch failed", zap.String("user_id", ev.UserID), zap.Error(err))
		return
	}
	for _, cmd := range cmds {
		b.deliver(dst, cmd)
	}
}

func userID(u *tgbotapi.User) string {
	return strconv.FormatInt(u.ID, 10)
}

// download fetches at most maxUpload+1 bytes so oversized files are still
// recognized as such downstream.
func (b *Bot) download(ctx context.Context, fileID string) ([]byte, error) {
	url, err := b.api.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve file: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download file: status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, b.maxUpload+1))
}

// deliver maps one command to a Bot API call.
func (b *Bot) deliver(dst target, cmd domain.Command) {
	switch p := cmd.Payload.(type) {
	case domain.RenderMenu:
		markup := frameMarkup(p.Frame)
		if p.Mode == domain.RenderEdit && dst.messageID != 0 {
			b.send(dst, tgbotapi.NewEditMessageTextAndMarkup(dst.chatID, dst.messageID, p.Frame.Prompt, markup))
			return
		}
		msg := tgbotapi.NewMessage(dst.chatID, p.Frame.Prompt)
		msg.ReplyMarkup = markup
		b.send(dst, msg)
	case domain.PlainText:
		msg := tgbotapi.NewMessage(dst.chatID, p.Text)
		if len(p.Suggestions) > 0 {
			msg.ReplyMarkup = suggestionKeyboard(p.Suggestions)
		}
		b.send(dst, msg)
	case domain.FileAttachment:
		doc := tgbotapi.NewDocument(dst.chatID, tgbotapi.FileBytes{Name: p.Name, Bytes: p.Data})
		doc.Caption = p.Caption
		b.send(dst, doc)
	default:
		b.logger.Error("Unsupported command", zap.String("type", string(cmd.Type)))
	}
}

func (b *Bot) send(dst target, c tgbotapi.Chattable) {
	_, err := b.api.Send(c)
	if err == nil {
		return
	}
	var apiErr *tgbotapi.Error
	if errors.As(err, &apiErr) && strings.Contains(apiErr.Message, "message is not modified") {
		return
	}
	b.logger.Warn("Telegram send failed", zap.Int64("chat_id", dst.chatID), zap.Error(err))
}

package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/aretw0/datadesk/internal/runtime"
	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/navigation"
	"github.com/aretw0/datadesk/pkg/session"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const registryCSV = `"ID";"FullName";"global_id";"ShortName";"AdmArea";"District";"Address";"Owner";"TestDate";"geodata_center";"geoarea";
"Код";"Полное официальное наименование";"global_id";"Сокращенное наименование";"Административный округ";"Район";"Адрес";"Наименование компании";"Дата проверки";"geodata_center";"geoarea";
"1";"Gas station #1";"1001";"GS1";"Central";"Arbat";"Street 1";"Lukoil";"15.06.2021";"";""
`

type fakeAPI struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	fileURL  string
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	return f.fileURL + "/" + fileID, nil
}

func (f *fakeAPI) Sent() []tgbotapi.Chattable {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.Chattable(nil), f.sent...)
}

func newBot(t *testing.T, api *fakeAPI, opts ...Option) *Bot {
	t.Helper()
	manager := session.NewManager(memory.NewStore(memory.WithTTL(0)))
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	opts = append([]Option{WithHTTPClient(client), WithWorkers(1)}, opts...)
	return New(api, runtime.NewController(manager), opts...)
}

func textUpdate(user int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: user},
		Chat: &tgbotapi.Chat{ID: user},
		Text: text,
	}}
}

func documentUpdate(user int64, fileID, name string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From:     &tgbotapi.User{ID: user},
		Chat:     &tgbotapi.Chat{ID: user},
		Document: &tgbotapi.Document{FileID: fileID, FileName: name},
	}}
}

func callbackUpdate(user int64, messageID int, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb-" + data,
		From:    &tgbotapi.User{ID: user},
		Message: &tgbotapi.Message{MessageID: messageID, Chat: &tgbotapi.Chat{ID: user}},
		Data:    data,
	}}
}

func run(t *testing.T, b *Bot, updates ...tgbotapi.Update) {
	t.Helper()
	ch := make(chan tgbotapi.Update, len(updates))
	for _, u := range updates {
		ch <- u
	}
	close(ch)
	require.NoError(t, b.Run(context.Background(), ch))
}

func fileServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/registry" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(registryCSV))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFrameMarkup(t *testing.T) {
	f := navigation.NewFrame("Pick",
		navigation.Row(navigation.Choice{Label: "A", Token: "TokA"}, navigation.Choice{Label: "B", Token: "TokB"}),
		navigation.Row(navigation.Choice{Label: "Back", Token: "Back"}),
	)

	markup := frameMarkup(f)
	require.Len(t, markup.InlineKeyboard, 2)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "B", markup.InlineKeyboard[0][1].Text)
	require.NotNil(t, markup.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "TokB", *markup.InlineKeyboard[0][1].CallbackData)
	assert.Equal(t, "Back", *markup.InlineKeyboard[1][0].CallbackData)
}

func TestSuggestionKeyboard(t *testing.T) {
	kb := suggestionKeyboard([]string{"/start", "/help"})
	require.Len(t, kb.Keyboard, 1)
	assert.Equal(t, "/help", kb.Keyboard[0][1].Text)
	assert.True(t, kb.OneTimeKeyboard)
}

func TestBot_TextCommand(t *testing.T) {
	api := &fakeAPI{}
	run(t, newBot(t, api), textUpdate(10, "hello"))

	sent := api.Sent()
	require.Len(t, sent, 1)
	msg, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(10), msg.ChatID)
	assert.Contains(t, msg.Text, "/start")
	_, isKeyboard := msg.ReplyMarkup.(tgbotapi.ReplyKeyboardMarkup)
	assert.True(t, isKeyboard, "unknown commands offer /start and /help")
}

func TestBot_UploadAndNavigate(t *testing.T) {
	srv := fileServer(t)
	api := &fakeAPI{fileURL: srv.URL}
	b := newBot(t, api)

	run(t, b,
		documentUpdate(10, "registry", "registry.csv"),
		callbackUpdate(10, 555, runtime.TokenSorting),
	)

	sent := api.Sent()
	require.Len(t, sent, 3)

	text, ok := sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "✅ File processed: 1 records loaded.", text.Text)

	root, ok := sent[1].(tgbotapi.MessageConfig)
	require.True(t, ok)
	markup, ok := root.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	assert.Equal(t, runtime.TokenSorting, *markup.InlineKeyboard[0][0].CallbackData)

	edit, ok := sent[2].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok, "callback menus are edited in place")
	assert.Equal(t, 555, edit.MessageID)
	assert.Equal(t, int64(10), edit.ChatID)
	require.NotNil(t, edit.ReplyMarkup)

	api.mu.Lock()
	defer api.mu.Unlock()
	require.Len(t, api.requests, 1)
	ack, ok := api.requests[0].(tgbotapi.CallbackConfig)
	require.True(t, ok)
	assert.Equal(t, "cb-"+runtime.TokenSorting, ack.CallbackQueryID)
}

func TestBot_ExportSendsDocument(t *testing.T) {
	srv := fileServer(t)
	api := &fakeAPI{fileURL: srv.URL}

	run(t, newBot(t, api),
		documentUpdate(10, "registry", "registry.csv"),
		callbackUpdate(10, 1, runtime.TokenSorting),
		callbackUpdate(10, 1, runtime.TokenSortTestDateAsc),
		callbackUpdate(10, 1, runtime.TokenSendCSV),
	)

	sent := api.Sent()
	doc, ok := sent[len(sent)-1].(tgbotapi.DocumentConfig)
	require.True(t, ok)
	assert.Equal(t, "🗂 Updated data", doc.Caption)
	file, ok := doc.File.(tgbotapi.FileBytes)
	require.True(t, ok)
	assert.Equal(t, "Updated data.csv", file.Name)
	assert.Contains(t, string(file.Bytes), "Lukoil")
}

func TestBot_DownloadFailure(t *testing.T) {
	srv := fileServer(t)
	api := &fakeAPI{fileURL: srv.URL}

	run(t, newBot(t, api), documentUpdate(10, "missing", "registry.csv"))

	sent := api.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, msgDownloadFailed, sent[0].(tgbotapi.MessageConfig).Text)
}

func TestBot_OversizedDocument(t *testing.T) {
	srv := fileServer(t)
	api := &fakeAPI{fileURL: srv.URL}
	manager := session.NewManager(memory.NewStore(memory.WithTTL(0)))
	controller := runtime.NewController(manager, runtime.WithMaxUploadSize(32))
	client := &http.Client{Transport: &http.Transport{DisableKeepAlives: true}}
	b := New(api, controller, WithHTTPClient(client), WithMaxUploadSize(32), WithWorkers(1))

	run(t, b, documentUpdate(10, "registry", "registry.csv"))

	sent := api.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].(tgbotapi.MessageConfig).Text, "exceeds maximum allowed size")

	s, err := manager.Load(context.Background(), "10")
	require.NoError(t, err)
	assert.Equal(t, domain.StageMessage, s.State.Stage)
}

func TestBot_ConcurrentUsers(t *testing.T) {
	api := &fakeAPI{}
	b := newBot(t, api, WithWorkers(4))

	var updates []tgbotapi.Update
	for i := int64(1); i <= 20; i++ {
		updates = append(updates, textUpdate(i, "/start"))
	}
	run(t, b, updates...)

	assert.Len(t, api.Sent(), 20)
}

func TestShard(t *testing.T) {
	assert.Equal(t, shard(textUpdate(7, "/start"), 4), shard(callbackUpdate(7, 1, runtime.TokenSorting), 4))
	assert.Equal(t, 3, shard(textUpdate(7, "/start"), 4))
	assert.Equal(t, 0, shard(tgbotapi.Update{}, 4))
	assert.Equal(t, 0, shard(textUpdate(7, "/start"), 1))
}

func TestBot_KeepsPerUserOrder(t *testing.T) {
	srv := fileServer(t)
	api := &fakeAPI{fileURL: srv.URL}
	b := newBot(t, api, WithWorkers(4))

	updates := []tgbotapi.Update{documentUpdate(10, "registry", "registry.csv")}
	for i := int64(1); i <= 8; i++ {
		updates = append(updates, textUpdate(100+i, "/start"))
	}
	updates = append(updates,
		callbackUpdate(10, 1, runtime.TokenSorting),
		callbackUpdate(10, 1, runtime.TokenSortTestDateAsc),
		callbackUpdate(10, 1, runtime.TokenSendCSV),
	)
	run(t, b, updates...)

	var mine []tgbotapi.Chattable
	for _, c := range api.Sent() {
		switch m := c.(type) {
		case tgbotapi.MessageConfig:
			if m.ChatID == 10 {
				mine = append(mine, c)
			}
		case tgbotapi.EditMessageTextConfig:
			if m.ChatID == 10 {
				mine = append(mine, c)
			}
		case tgbotapi.DocumentConfig:
			if m.ChatID == 10 {
				mine = append(mine, c)
			}
		}
	}
	require.Len(t, mine, 5)
	_, ok := mine[2].(tgbotapi.EditMessageTextConfig)
	assert.True(t, ok)
	_, ok = mine[3].(tgbotapi.EditMessageTextConfig)
	assert.True(t, ok)
	doc, ok := mine[4].(tgbotapi.DocumentConfig)
	require.True(t, ok, "export runs after the upload and the sort")
	assert.Equal(t, "Updated data.csv", doc.File.(tgbotapi.FileBytes).Name)
}

func TestBot_RunStopsOnCancel(t *testing.T) {
	api := &fakeAPI{}
	b := newBot(t, api)
	ctx, cancel := context.WithCancel(context.Background())
	updates := make(chan tgbotapi.Update)

	done := make(chan error, 1)
	go func() { done <- b.Run(ctx, updates) }()
	cancel()

	assert.ErrorIs(t, <-done, context.Canceled)
}

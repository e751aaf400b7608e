package cli

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/datadesk/internal/config"
	"github.com/aretw0/datadesk/pkg/domain"
)

const registryJSON = `[
  {"ID": 1, "FullName": "Gas station #1", "global_id": 1001, "ShortName": "GS1",
   "AdmArea": "Central", "District": "Arbat", "Address": "Street 1",
   "Owner": "Lukoil", "TestDate": "2021-06-15T00:00:00"}
]`

func quietConfig() *config.Config {
	cfg := config.Default()
	cfg.Log.File = ""
	cfg.Log.Console = false
	return cfg
}

func buildApp(t *testing.T, cfg *config.Config) *App {
	t.Helper()
	app, err := Build(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func uploadRegistry(t *testing.T, app *App, userID string) {
	t.Helper()
	_, err := app.Desk.Dispatch(context.Background(), domain.DatasetUploaded(userID, []byte(registryJSON), "json"))
	require.NoError(t, err)
}

func TestBuild_MemorySessionCommands(t *testing.T) {
	app := buildApp(t, quietConfig())
	ctx := context.Background()

	var out bytes.Buffer
	require.NoError(t, ListSessions(ctx, app, &out))
	assert.Equal(t, "No active sessions found.\n", out.String())

	uploadRegistry(t, app, "bob")
	uploadRegistry(t, app, "alice")

	out.Reset()
	require.NoError(t, ListSessions(ctx, app, &out))
	assert.Equal(t, "Active Sessions:\n- alice\n- bob\n", out.String())

	out.Reset()
	require.NoError(t, InspectSession(ctx, app, &out, "alice", false))
	assert.Contains(t, out.String(), `"stage": "document"`)
	assert.Contains(t, out.String(), `"user_id": "alice"`)

	out.Reset()
	require.NoError(t, InspectSession(ctx, app, &out, "alice", true))
	assert.True(t, strings.HasPrefix(out.String(), "graph TD\n"), out.String())
	assert.Contains(t, out.String(), "class frame0 current;")

	out.Reset()
	require.NoError(t, RemoveSessions(ctx, app, &out, []string{"alice", "bob"}))
	assert.Equal(t, "Removed session 'alice'\nRemoved session 'bob'\n", out.String())

	assert.Error(t, InspectSession(ctx, app, io.Discard, "alice", false))
}

func TestBuild_Redis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := quietConfig()
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.Addr = mr.Addr()
	app := buildApp(t, cfg)

	uploadRegistry(t, app, "carol")
	assert.True(t, mr.Exists("datadesk:session:carol"))

	s, err := app.Desk.Sessions().Load(context.Background(), "carol")
	require.NoError(t, err)
	assert.Equal(t, domain.StageDocument, s.State.Stage)
}

func TestBuild_EncryptedRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := quietConfig()
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.Addr = mr.Addr()
	cfg.Store.Encryption.Key = base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{7}, 32))
	app := buildApp(t, cfg)

	uploadRegistry(t, app, "frank")
	raw, err := mr.Get("datadesk:session:frank")
	require.NoError(t, err)
	assert.NotContains(t, raw, "Lukoil")
	assert.Contains(t, raw, `"sealed"`)

	s, err := app.Desk.Sessions().Load(context.Background(), "frank")
	require.NoError(t, err)
	require.Len(t, s.State.Dataset, 1)
	assert.Equal(t, "Lukoil", s.State.Dataset[0].Owner)
}

func TestBuild_ShortEncryptionKey(t *testing.T) {
	cfg := quietConfig()
	cfg.Store.Encryption.Key = base64.StdEncoding.EncodeToString([]byte("too short"))
	_, err := Build(cfg)
	assert.Error(t, err)
}

func TestBuild_RedisUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cfg := quietConfig()
	cfg.Store.Backend = "redis"
	cfg.Store.Redis.Addr = addr

	_, err := Build(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connect to redis")
}

func TestNewHTTPHandler_Metrics(t *testing.T) {
	app := buildApp(t, quietConfig())
	uploadRegistry(t, app, "dave")

	srv := httptest.NewServer(NewHTTPHandler(app))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `datadesk_events_total{type="dataset_uploaded"} 1`)
	assert.Contains(t, string(body), "datadesk_active_sessions 1")
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRunServer_StopsOnCancel(t *testing.T) {
	cfg := quietConfig()
	cfg.HTTP.Addr = "127.0.0.1:0"
	app := buildApp(t, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.NoError(t, RunServer(ctx, app))
}

func TestRunChat(t *testing.T) {
	app := buildApp(t, quietConfig())

	var out bytes.Buffer
	in := strings.NewReader("/start\n:quit\n")
	err := RunChat(context.Background(), app, in, &out, ChatOptions{UserID: "eve"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Hi! I work with the Moscow gas station registry.")
}

func TestRunTelegram_RequiresToken(t *testing.T) {
	app := buildApp(t, quietConfig())
	err := RunTelegram(context.Background(), app)
	assert.ErrorIs(t, err, config.ErrMissingToken)
}

func TestHandleExecutionError(t *testing.T) {
	assert.NoError(t, handleExecutionError(nil))
	assert.NoError(t, handleExecutionError(context.Canceled))
	assert.Error(t, handleExecutionError(io.ErrUnexpectedEOF))
}

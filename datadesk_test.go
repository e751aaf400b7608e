package datadesk_test

import (
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/datadesk"
	"github.com/aretw0/datadesk/pkg/adapters/memory"
	"github.com/aretw0/datadesk/pkg/domain"
	"github.com/aretw0/datadesk/pkg/observability"
)

func newDesk(t *testing.T, opts ...datadesk.Option) *datadesk.Desk {
	t.Helper()
	opts = append([]datadesk.Option{datadesk.WithStore(memory.NewStore(memory.WithTTL(0)))}, opts...)
	return datadesk.New(opts...)
}

func TestDesk_UploadMovesToDocumentStage(t *testing.T) {
	desk := newDesk(t)
	ctx := context.Background()

	cmds, err := desk.Dispatch(ctx, domain.DatasetUploaded("u1", []byte(registryJSON), "json"))
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.Equal(t, domain.CommandSendText, cmds[0].Type)
	assert.Equal(t, domain.CommandRenderMenu, cmds[1].Type)

	s, err := desk.Sessions().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageDocument, s.State.Stage)
	assert.Len(t, s.State.Dataset, 2)
}

func TestDesk_MaxUploadSize(t *testing.T) {
	desk := newDesk(t, datadesk.WithMaxUploadSize(16))
	ctx := context.Background()

	cmds, err := desk.Dispatch(ctx, domain.DatasetUploaded("u1", []byte(registryJSON), "json"))
	require.NoError(t, err)
	require.NotEmpty(t, cmds)
	text, ok := cmds[0].Payload.(domain.PlainText)
	require.True(t, ok)
	assert.True(t, strings.HasPrefix(text.Text, "❌"), text.Text)

	s, err := desk.Sessions().Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.StageMessage, s.State.Stage)
	assert.True(t, s.State.Dataset.Empty())
}

func TestDesk_MaxInputSize(t *testing.T) {
	desk := newDesk(t, datadesk.WithMaxInputSize(8))

	cmds, err := desk.Dispatch(context.Background(), domain.TextReceived("u1", "/start and a lot more text"))
	require.NoError(t, err)
	require.Len(t, cmds, 1)
	text := cmds[0].Payload.(domain.PlainText)
	assert.True(t, strings.HasPrefix(text.Text, "❌"), text.Text)
}

func TestDesk_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := observability.NewMetrics(reg, nil)
	require.NoError(t, err)

	desk := newDesk(t, datadesk.WithMetrics(m))
	_, err = desk.Dispatch(context.Background(), domain.TextReceived("u1", "/help"))
	require.NoError(t, err)

	count, err := testutil.GatherAndCount(reg, "datadesk_events_total")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDesk_RejectsMissingUser(t *testing.T) {
	desk := newDesk(t)
	_, err := desk.Dispatch(context.Background(), domain.TextReceived("", "/start"))
	assert.Error(t, err)
}

package telegram

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/tg"
	"github.com/stretchr/testify/assert"

	"tgrelay/internal/common"
	"tgrelay/internal/creds"
	"tgrelay/internal/logging"
)

// Transfer sends through either builder depending on whether a thread is
// targeted; both must satisfy the single-option Media shape it relies on.
var (
	_ interface {
		Media(context.Context, message.MediaOption) (tg.UpdatesClass, error)
	} = (*message.RequestBuilder)(nil)
	_ interface {
		Media(context.Context, message.MediaOption) (tg.UpdatesClass, error)
	} = (*message.Builder)(nil)
)

func testAdapter() *Adapter {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
	return NewAdapter(creds.NewCell(), logger)
}

func TestPeerMatches(t *testing.T) {
	tests := []struct {
		name string
		peer tg.InputPeerClass
		want int64
		ok   bool
	}{
		{"user by id", &tg.InputPeerUser{UserID: 42}, 42, true},
		{"user mismatch", &tg.InputPeerUser{UserID: 42}, 43, false},
		{"basic group bare id", &tg.InputPeerChat{ChatID: 7}, 7, true},
		{"basic group negated id", &tg.InputPeerChat{ChatID: 7}, -7, true},
		{"channel bare id", &tg.InputPeerChannel{ChannelID: 1234}, 1234, true},
		{"channel bot-api id", &tg.InputPeerChannel{ChannelID: 1234}, -1000000001234, true},
		{"channel mismatch", &tg.InputPeerChannel{ChannelID: 1234}, -1234, false},
		{"self peer never matches", &tg.InputPeerSelf{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.ok, peerMatches(tt.peer, tt.want))
		})
	}
}

func TestAdapter_NotInitialized(t *testing.T) {
	a := testAdapter()

	assert.False(t, a.IsConnected())

	err := a.Transfer(context.Background(), TransferRequest{Path: "x", ChatID: "1"}, nil)
	assert.ErrorIs(t, err, common.ErrAuth)

	err = a.Ping(context.Background())
	assert.ErrorIs(t, err, common.ErrAuth)
}

func TestAdapter_InitializeRequiresAPICreds(t *testing.T) {
	a := testAdapter()
	err := a.Initialize(context.Background(), EncodeSession([]byte("state")))
	assert.ErrorIs(t, err, common.ErrAPICredsNotConfigured)
}

func TestAdapter_InitializeRejectsBadSessionString(t *testing.T) {
	a := testAdapter()
	a.creds.Store(creds.Set{APIID: 1, APIHash: "h"})

	err := a.Initialize(context.Background(), "％％not-base64")
	assert.ErrorIs(t, err, common.ErrValidation)

	err = a.Initialize(context.Background(), "")
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestAdapter_SendLoginCodeValidation(t *testing.T) {
	a := testAdapter()

	err := a.SendLoginCode(context.Background(), 1, "h", "   ")
	assert.ErrorIs(t, err, common.ErrValidation)

	// creds missing everywhere is reported before any network use
	err = a.SendLoginCode(context.Background(), 0, "", "+15551234")
	assert.ErrorIs(t, err, common.ErrAPICredsNotConfigured)
}

func TestAdapter_ConfirmLoginCodeValidation(t *testing.T) {
	a := testAdapter()
	ctx := context.Background()

	_, err := a.ConfirmLoginCode(ctx, "", "123", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = a.ConfirmLoginCode(ctx, "+15551234", " ", "")
	assert.ErrorIs(t, err, common.ErrValidation)

	_, err = a.ConfirmLoginCode(ctx, "+15551234", "123", "")
	assert.ErrorIs(t, err, common.ErrNoPendingLogin)
}

func TestAdapter_CloseWithoutClient(t *testing.T) {
	a := testAdapter()
	assert.NoError(t, a.Close())
}

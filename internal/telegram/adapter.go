package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/message"
	"github.com/gotd/td/telegram/message/styling"
	"github.com/gotd/td/telegram/query"
	"github.com/gotd/td/telegram/uploader"
	"github.com/gotd/td/tg"
	"github.com/sethvargo/go-retry"

	"tgrelay/internal/common"
	"tgrelay/internal/creds"
	"tgrelay/internal/filex"
	"tgrelay/internal/logging"
)

const (
	connectAttempts = 5
	connectBackoff  = 2 * time.Second
	dialogBatchSize = 100
)

// TransferRequest describes one outbound file delivery.
type TransferRequest struct {
	// Path is the local file to send.
	Path string
	// Filename is the name the recipient sees.
	Filename string
	// ChatID is a username (with or without @) or a numeric chat id,
	// including the -100-prefixed channel form.
	ChatID string
	// ThreadID, when positive, targets a forum topic.
	ThreadID int
	// Caption is attached to the message when non-empty.
	Caption string
}

// ProgressFunc receives chunk-level upload progress.
type ProgressFunc func(percent float64, uploaded, total int64)

// Adapter owns the live MTProto client and the pending login registry.
type Adapter struct {
	creds  *creds.Cell
	logger logging.Logger

	mu      sync.Mutex
	client  *telegram.Client
	stop    bg.StopFunc
	storage *blobStorage

	logins loginRegistry
}

func NewAdapter(c *creds.Cell, logger logging.Logger) *Adapter {
	return &Adapter{
		creds:  c,
		logger: logger.With("component", "telegram"),
		logins: newLoginRegistry(),
	}
}

// Initialize connects a client from the given string session, replacing any
// previous one. The session must belong to an authorized account; the
// connection is verified with a config round trip before it is adopted.
func (a *Adapter) Initialize(ctx context.Context, stringSession string) error {
	apiID, apiHash, err := a.creds.API()
	if err != nil {
		return err
	}

	data, err := DecodeSession(stringSession)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty session string", common.ErrValidation)
	}

	storage := newBlobStorage(data)
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: storage,
		NoUpdates:      true,
	})

	stop, err := a.connect(ctx, client)
	if err != nil {
		return err
	}

	status, err := client.Auth().Status(ctx)
	if err != nil {
		_ = stop()
		return fmt.Errorf("authorization check: %w", err)
	}
	if !status.Authorized {
		_ = stop()
		return fmt.Errorf("%w: stored session is not authorized", common.ErrAuth)
	}

	if err := a.ping(ctx, client); err != nil {
		_ = stop()
		return err
	}

	a.mu.Lock()
	if a.stop != nil {
		_ = a.stop()
	}
	a.client, a.stop, a.storage = client, stop, storage
	a.mu.Unlock()

	a.logger.Info(ctx, "telegram client connected")
	return nil
}

// IsConnected reports whether an initialized client is held.
func (a *Adapter) IsConnected() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.client != nil
}

// Ping verifies the live connection with a config round trip.
func (a *Adapter) Ping(ctx context.Context) error {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()
	if client == nil {
		return fmt.Errorf("%w: client not initialized", common.ErrAuth)
	}
	return a.ping(ctx, client)
}

// Close stops the live client and any pending login handles.
func (a *Adapter) Close() error {
	a.logins.closeAll()

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stop == nil {
		return nil
	}
	err := a.stop()
	a.client, a.stop, a.storage = nil, nil, nil
	return err
}

// Transfer uploads the file and sends it as a document to the requested
// chat, reporting progress per uploaded chunk.
func (a *Adapter) Transfer(ctx context.Context, req TransferRequest, progress ProgressFunc) error {
	a.mu.Lock()
	client := a.client
	a.mu.Unlock()
	if client == nil {
		return fmt.Errorf("%w: client not initialized", common.ErrAuth)
	}

	if !filex.Exists(req.Path) {
		return fmt.Errorf("%w: file %q", common.ErrNotFound, req.Path)
	}

	api := client.API()
	up := uploader.NewUploader(api)
	if progress != nil {
		up = up.WithProgress(progressAdapter{fn: progress})
	}

	f, err := up.FromPath(ctx, req.Path)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	var doc *message.UploadedDocumentBuilder
	if req.Caption != "" {
		doc = message.UploadedDocument(f, styling.Plain(req.Caption))
	} else {
		doc = message.UploadedDocument(f)
	}
	doc = doc.Filename(req.Filename).ForceFile(true)

	sender := message.NewSender(api).WithUploader(up)

	rb, err := a.resolveTarget(ctx, sender, api, req.ChatID)
	if err != nil {
		return err
	}

	var target interface {
		Media(context.Context, message.MediaOption) (tg.UpdatesClass, error)
	} = rb
	if req.ThreadID > 0 {
		target = rb.Reply(req.ThreadID)
	}

	if _, err := target.Media(ctx, doc); err != nil {
		return fmt.Errorf("send to %s: %w", req.ChatID, err)
	}
	return nil
}

func (a *Adapter) resolveTarget(ctx context.Context, sender *message.Sender, api *tg.Client, chat string) (*message.RequestBuilder, error) {
	chat = strings.TrimSpace(chat)
	if chat == "" {
		return nil, fmt.Errorf("%w: chat id is required", common.ErrValidation)
	}

	if id, err := strconv.ParseInt(chat, 10, 64); err == nil {
		peer, err := a.findDialogPeer(ctx, api, id)
		if err != nil {
			return nil, err
		}
		return sender.To(peer), nil
	}

	return sender.Resolve(strings.TrimPrefix(chat, "@")), nil
}

// findDialogPeer scans the account's dialogs for a peer matching id in
// either its bare or bot-api form.
func (a *Adapter) findDialogPeer(ctx context.Context, api *tg.Client, id int64) (tg.InputPeerClass, error) {
	iter := query.GetDialogs(api).BatchSize(dialogBatchSize).Iter()
	for iter.Next(ctx) {
		if p := iter.Value().Peer; peerMatches(p, id) {
			return p, nil
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("list dialogs: %w", err)
	}
	return nil, fmt.Errorf("%w: chat %d not among account dialogs", common.ErrNotFound, id)
}

func peerMatches(p tg.InputPeerClass, want int64) bool {
	switch v := p.(type) {
	case *tg.InputPeerUser:
		return v.UserID == want
	case *tg.InputPeerChat:
		return v.ChatID == want || -v.ChatID == want
	case *tg.InputPeerChannel:
		return v.ChannelID == want || want == -1000000000000-v.ChannelID
	}
	return false
}

func (a *Adapter) connect(ctx context.Context, client *telegram.Client) (bg.StopFunc, error) {
	var stop bg.StopFunc
	backoff := retry.WithMaxRetries(connectAttempts, retry.NewConstant(connectBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		s, err := bg.Connect(client)
		if err != nil {
			a.logger.Warn(ctx, "connect attempt failed", "error", err)
			return retry.RetryableError(err)
		}
		stop = s
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}
	return stop, nil
}

func (a *Adapter) ping(ctx context.Context, client *telegram.Client) error {
	backoff := retry.WithMaxRetries(connectAttempts, retry.NewConstant(connectBackoff))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if _, err := client.API().HelpGetConfig(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("liveness check: %w", err)
	}
	return nil
}

type progressAdapter struct {
	fn ProgressFunc
}

func (p progressAdapter) Chunk(_ context.Context, state uploader.ProgressState) error {
	if state.Total > 0 {
		p.fn(float64(state.Uploaded)/float64(state.Total)*100, state.Uploaded, state.Total)
	}
	return nil
}

package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/gotd/contrib/bg"
	"github.com/gotd/td/telegram"
	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"

	"tgrelay/internal/common"
)

// pendingLogin is a connected but unauthorized client parked between the
// send-code and confirm-code steps.
type pendingLogin struct {
	client   *telegram.Client
	stop     bg.StopFunc
	storage  *blobStorage
	codeHash string
}

func (p *pendingLogin) close() {
	_ = p.stop()
}

type loginRegistry struct {
	mu sync.Mutex
	m  map[string]*pendingLogin
}

func newLoginRegistry() loginRegistry {
	return loginRegistry{m: make(map[string]*pendingLogin)}
}

// put parks a pending login, returning any displaced one for the same phone.
func (r *loginRegistry) put(phone string, pl *pendingLogin) *pendingLogin {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.m[phone]
	r.m[phone] = pl
	return prev
}

// take removes and returns the pending login for phone. At most one caller
// gets it.
func (r *loginRegistry) take(phone string) (*pendingLogin, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	pl, ok := r.m[phone]
	if ok {
		delete(r.m, phone)
	}
	return pl, ok
}

func (r *loginRegistry) closeAll() {
	r.mu.Lock()
	pending := make([]*pendingLogin, 0, len(r.m))
	for k, pl := range r.m {
		pending = append(pending, pl)
		delete(r.m, k)
	}
	r.mu.Unlock()

	for _, pl := range pending {
		pl.close()
	}
}

func normalizePhone(phone string) string {
	return strings.TrimSpace(phone)
}

// SendLoginCode opens a fresh client for phone and asks Telegram to deliver
// a login code. The connected client is parked until ConfirmLoginCode; a
// repeat request for the same phone replaces the earlier handle. A zero
// apiID or empty apiHash falls back to the credential cell.
func (a *Adapter) SendLoginCode(ctx context.Context, apiID int, apiHash, phone string) error {
	phone = normalizePhone(phone)
	if phone == "" {
		return fmt.Errorf("%w: phone number is required", common.ErrValidation)
	}

	if apiID == 0 || apiHash == "" {
		id, hash, err := a.creds.API()
		if err != nil {
			return err
		}
		apiID, apiHash = id, hash
	}

	storage := newBlobStorage(nil)
	client := telegram.NewClient(apiID, apiHash, telegram.Options{
		SessionStorage: storage,
		NoUpdates:      true,
	})

	stop, err := a.connect(ctx, client)
	if err != nil {
		return err
	}

	sent, err := client.Auth().SendCode(ctx, phone, auth.SendCodeOptions{})
	if err != nil {
		_ = stop()
		return fmt.Errorf("%w: send code: %v", common.ErrAuth, err)
	}
	code, ok := sent.(*tg.AuthSentCode)
	if !ok {
		_ = stop()
		return fmt.Errorf("%w: unexpected send code response %T", common.ErrAuth, sent)
	}

	displaced := a.logins.put(phone, &pendingLogin{
		client:   client,
		stop:     stop,
		storage:  storage,
		codeHash: code.PhoneCodeHash,
	})
	if displaced != nil {
		displaced.close()
	}

	a.logger.Info(ctx, "login code sent", "phone", phone)
	return nil
}

// ConfirmLoginCode completes the login started by SendLoginCode and returns
// the authorized string session. The pending handle is consumed on the first
// attempt regardless of outcome; a concurrent or repeated confirm reports
// common.ErrNoPendingLogin. Accounts with two-step verification need the
// password argument, otherwise common.ErrPasswordRequired is returned.
func (a *Adapter) ConfirmLoginCode(ctx context.Context, phone, code, password string) (string, error) {
	phone = normalizePhone(phone)
	code = strings.TrimSpace(code)
	if phone == "" || code == "" {
		return "", fmt.Errorf("%w: phone number and code are required", common.ErrValidation)
	}

	pl, ok := a.logins.take(phone)
	if !ok {
		return "", common.ErrNoPendingLogin
	}
	defer pl.close()

	_, err := pl.client.Auth().SignIn(ctx, phone, code, pl.codeHash)
	if errors.Is(err, auth.ErrPasswordAuthNeeded) {
		if password == "" {
			return "", common.ErrPasswordRequired
		}
		_, err = pl.client.Auth().Password(ctx, password)
	}
	if err != nil {
		return "", fmt.Errorf("%w: sign in: %v", common.ErrAuth, err)
	}

	data := pl.storage.Bytes()
	if len(data) == 0 {
		return "", fmt.Errorf("%w: no session state captured after sign in", common.ErrAuth)
	}

	a.logger.Info(ctx, "login confirmed", "phone", phone)
	return EncodeSession(data), nil
}

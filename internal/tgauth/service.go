// Package tgauth orchestrates the Telegram account login lifecycle: code
// delivery, confirmation, credential persistence, and logout.
package tgauth

import (
	"context"
	"fmt"

	"tgrelay/internal/common"
	"tgrelay/internal/creds"
	"tgrelay/internal/logging"
	"tgrelay/internal/repositories/tgsessions"
	"tgrelay/internal/telegram"
)

// Authenticator is the client surface the login flow needs.
type Authenticator interface {
	SendLoginCode(ctx context.Context, apiID int, apiHash, phone string) error
	ConfirmLoginCode(ctx context.Context, phone, code, password string) (string, error)
	Initialize(ctx context.Context, stringSession string) error
	IsConnected() bool
	Ping(ctx context.Context) error
	Close() error
}

type Service struct {
	sessions tgsessions.Store
	creds    *creds.Cell
	client   Authenticator
	logger   logging.Logger
}

func NewService(sessionStore tgsessions.Store, credCell *creds.Cell, client Authenticator, logger logging.Logger) *Service {
	return &Service{
		sessions: sessionStore,
		creds:    credCell,
		client:   client,
		logger:   logger.With("component", "tgauth"),
	}
}

// SendCode asks Telegram to deliver a login code to phone. API credentials
// may come with the request or, when omitted there, from the credential
// cell; missing in both places is a validation failure.
func (s *Service) SendCode(ctx context.Context, apiID int, apiHash, phone string) error {
	apiID, apiHash, err := s.resolveAPICreds(apiID, apiHash)
	if err != nil {
		return err
	}
	return s.client.SendLoginCode(ctx, apiID, apiHash, phone)
}

// ConfirmCode completes the pending login, persists the resulting string
// session as the current credential, and publishes the full credential
// triple to the in-process override cell in one write, so the next relay
// picks it up without a restart and never observes a half-updated pair.
// The relay client is reconnected best effort; a reconnect failure does not
// undo the login.
func (s *Service) ConfirmCode(ctx context.Context, apiID int, apiHash, phone, code, password string) error {
	apiID, apiHash, err := s.resolveAPICreds(apiID, apiHash)
	if err != nil {
		return err
	}

	blob, err := s.client.ConfirmLoginCode(ctx, phone, code, password)
	if err != nil {
		return err
	}

	if _, err := s.sessions.Save(ctx, blob); err != nil {
		return fmt.Errorf("persist credential: %w", err)
	}

	s.creds.Store(creds.Set{Session: blob, APIID: apiID, APIHash: apiHash})

	if err := s.client.Initialize(ctx, blob); err != nil {
		s.logger.Warn(ctx, "client reconnect after login failed", "error", err)
	}

	s.logger.Info(ctx, "telegram account logged in", "phone", phone)
	return nil
}

// Logout disconnects the client and discards every stored credential.
// Logging out when nothing is stored is success.
func (s *Service) Logout(ctx context.Context) error {
	if err := s.client.Close(); err != nil {
		s.logger.Warn(ctx, "client close on logout failed", "error", err)
	}

	if err := s.sessions.Clear(ctx); err != nil {
		return err
	}

	set, _ := s.creds.Load()
	set.Session = ""
	s.creds.Store(set)

	s.logger.Info(ctx, "telegram account logged out")
	return nil
}

// Connected reports whether the relay client is currently live.
func (s *Service) Connected() bool {
	return s.client.IsConnected()
}

// Test verifies that a usable credential exists and that a client connected
// from it answers a liveness probe.
func (s *Service) Test(ctx context.Context) error {
	if s.client.IsConnected() {
		return s.client.Ping(ctx)
	}

	session, err := s.resolveSession(ctx)
	if err != nil {
		return err
	}
	if err := s.client.Initialize(ctx, session); err != nil {
		return err
	}
	return s.client.Ping(ctx)
}

// ConnectFromEnv brings the client up at startup when the environment
// carries a session override. Absence of an override is not an error.
func (s *Service) ConnectFromEnv(ctx context.Context) error {
	session := s.creds.Session()
	if session == "" {
		return nil
	}
	return s.client.Initialize(ctx, session)
}

// CurrentSession reports whether a credential is available and where it
// came from: "env" for the override cell, "stored" for the database.
func (s *Service) CurrentSession(ctx context.Context) (string, bool, error) {
	if s.creds.Session() != "" {
		return "env", true, nil
	}
	stored, err := s.sessions.GetLatest(ctx)
	if err != nil {
		return "", false, err
	}
	if stored == "" {
		return "", false, nil
	}
	return "stored", true, nil
}

// SaveSession stores an externally supplied string session as the current
// credential.
func (s *Service) SaveSession(ctx context.Context, blob string) error {
	if blob == "" || blob == common.EnvSessionPlaceholder {
		return fmt.Errorf("%w: string session is required", common.ErrValidation)
	}
	if _, err := telegram.DecodeSession(blob); err != nil {
		return err
	}
	if _, err := s.sessions.Save(ctx, blob); err != nil {
		return err
	}
	return nil
}

func (s *Service) resolveAPICreds(apiID int, apiHash string) (int, string, error) {
	if apiID != 0 && apiHash != "" {
		return apiID, apiHash, nil
	}
	id, hash, err := s.creds.API()
	if err != nil {
		return 0, "", fmt.Errorf("%w: api_id and api_hash are required", common.ErrValidation)
	}
	return id, hash, nil
}

func (s *Service) resolveSession(ctx context.Context) (string, error) {
	if session := s.creds.Session(); session != "" {
		return session, nil
	}
	stored, err := s.sessions.GetLatest(ctx)
	if err != nil {
		return "", err
	}
	if stored == "" {
		return "", common.ErrNoSession
	}
	return stored, nil
}

var _ Authenticator = (*telegram.Adapter)(nil)

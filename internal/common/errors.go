// Package common defines shared constants and sentinel errors used across
// tgrelay components. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage error")

	// Request validation errors.
	ErrValidation = errors.New("validation error")

	// Server misconfiguration (missing upload token, missing API credentials).
	ErrConfig                = errors.New("server misconfiguration")
	ErrTokenNotConfigured    = errors.New("upload token is not configured on the server")
	ErrInvalidUploadToken    = errors.New("invalid upload token")
	ErrAPICredsNotConfigured = errors.New("telegram api credentials not configured")

	// Telegram session errors.
	ErrNoSession        = errors.New("no telegram session found, authenticate first")
	ErrAuth             = errors.New("telegram session is not authorized")
	ErrNoPendingLogin   = errors.New("no pending login request found for this phone number")
	ErrPasswordRequired = errors.New("account has two-factor authentication enabled")

	// Dashboard auth errors.
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")

	// Filesystem errors (reading, hashing, relocating uploads).
	ErrIO = errors.New("i/o error")
)

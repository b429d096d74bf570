// Package common defines shared constants and sentinel errors used across
// client and server layers of blinkauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal = errors.New("internal error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Configuration errors.
	ErrUnknownKeySource      = errors.New("unknown key source")
	ErrUnknownPasswordScheme = errors.New("unknown password scheme")
	ErrKeyTooShort           = errors.New("signing key too short")
	ErrInvalidConfig         = errors.New("invalid configuration")
)

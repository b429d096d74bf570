package models

import "time"

// Token is the persisted, revocable counterpart of a signed token. Token
// holds the serialized signed token and is unique.
type Token struct {
	ID        int64
	Token     string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
}

// Package tokens declares the repository contract for persisted token
// records, the revocable half of every issued bearer token.
package tokens

import (
	"context"
	"time"

	"github.com/blinkdrive/blinkauth/internal/server/models"
)

// Repository defines operations for recording, checking, and revoking tokens.
// Records are never deleted here.
type Repository interface {
	// Create stores a new token record with revoked = false.
	Create(ctx context.Context, token *models.Token) error

	// IsActive reports whether a record with exactly this token string exists,
	// expires after now and is not revoked.
	IsActive(ctx context.Context, token string, now time.Time) (bool, error)

	// Revoke marks the record revoked and reports whether one existed.
	// Revoking an already revoked record still reports true.
	Revoke(ctx context.Context, token string) (bool, error)
}

// Package keys decides where the HMAC key that signs bearer tokens comes
// from.
//
// With the ephemeral source the key lives only in process memory, so a
// restart makes every previously issued token fail signature checks even
// though its database record may still be active. The static and S3 sources
// keep the key stable across restarts. None of them rotate keys.
package keys

import (
	"context"
	"fmt"

	"github.com/blinkdrive/blinkauth/internal/common"
)

// MinKeySize is the smallest accepted HS256 key, in bytes.
const MinKeySize = 32

const (
	SourceEphemeral = "ephemeral"
	SourceStatic    = "static"
	SourceS3        = "s3"
)

// Source yields the signing key. It is called once at start-up.
type Source interface {
	Key(ctx context.Context) ([]byte, error)
}

// Ephemeral generates a fresh random key per process.
type Ephemeral struct{}

func (Ephemeral) Key(context.Context) ([]byte, error) {
	key, err := common.GenerateRandByteArray(MinKeySize)
	if err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}
	return key, nil
}

// Static serves key material supplied through configuration.
type Static struct {
	Secret []byte
}

func (s Static) Key(context.Context) ([]byte, error) {
	if len(s.Secret) < MinKeySize {
		return nil, fmt.Errorf("%w: %d bytes, need %d", common.ErrKeyTooShort, len(s.Secret), MinKeySize)
	}
	key := make([]byte, len(s.Secret))
	copy(key, s.Secret)
	return key, nil
}

// Package cryptox implements salted password hashing for stored user
// credentials.
//
// Two schemes exist. SchemeSHA256 is a single SHA-256 over salt ‖ password,
// kept for compatibility with existing user records; it has no work factor
// and is weak against offline guessing. SchemeArgon2id is an explicit opt-in:
// its hashes carry a "$argon2id$" prefix, so VerifyPassword can check records
// of either scheme side by side.
package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/blinkdrive/blinkauth/internal/common"
	"golang.org/x/crypto/argon2"
)

const (
	SchemeSHA256   = "sha256"
	SchemeArgon2id = "argon2id"

	// SaltSize is the number of random bytes behind every salt.
	SaltSize = 16

	argon2Prefix = "$argon2id$"
)

// argon2id parameters for newly hashed passwords.
const (
	argon2Time    uint32 = 1
	argon2Memory  uint32 = 64 * 1024
	argon2Threads uint8  = 4
	argon2KeyLen  uint32 = 32
)

// Hasher turns a password and its salt into the string stored in
// users.password_hash.
type Hasher interface {
	Scheme() string
	Hash(password, salt string) string
}

// NewHasher returns the Hasher for scheme.
func NewHasher(scheme string) (Hasher, error) {
	switch scheme {
	case SchemeSHA256, "":
		return SHA256Hasher{}, nil
	case SchemeArgon2id:
		return Argon2Hasher{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", common.ErrUnknownPasswordScheme, scheme)
	}
}

// NewSalt returns SaltSize random bytes from crypto/rand, base64 encoded.
func NewSalt() (string, error) {
	b, err := common.GenerateRandByteArray(SaltSize)
	if err != nil {
		return "", fmt.Errorf("salt generation: %w", err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

// SHA256Hasher computes base64(SHA-256(salt ‖ password)) where salt is the
// encoded salt string as stored.
type SHA256Hasher struct{}

func (SHA256Hasher) Scheme() string { return SchemeSHA256 }

func (SHA256Hasher) Hash(password, salt string) string {
	h := sha256.New()
	h.Write([]byte(salt))
	h.Write([]byte(password))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// Argon2Hasher computes an argon2id key and encodes it with its parameters.
type Argon2Hasher struct{}

func (Argon2Hasher) Scheme() string { return SchemeArgon2id }

func (Argon2Hasher) Hash(password, salt string) string {
	return argon2Encode(password, salt, argon2Time, argon2Memory, argon2Threads)
}

func argon2Encode(password, salt string, t, m uint32, p uint8) string {
	key := argon2.IDKey([]byte(password), []byte(salt), t, m, p, argon2KeyLen)
	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s",
		argon2Prefix, argon2.Version, m, t, p, base64.RawStdEncoding.EncodeToString(key))
}

// VerifyPassword reports whether password with salt reproduces stored.
// The scheme is taken from stored itself.
func VerifyPassword(password, salt, stored string) bool {
	var candidate string
	if strings.HasPrefix(stored, argon2Prefix) {
		var (
			version, m, t uint32
			p             uint8
		)
		n, err := fmt.Sscanf(strings.TrimPrefix(stored, argon2Prefix), "v=%d$m=%d,t=%d,p=%d$", &version, &m, &t, &p)
		if err != nil || n != 4 || version != argon2.Version || !argon2ParamsValid(t, m, p) {
			return false
		}
		candidate = argon2Encode(password, salt, t, m, p)
	} else {
		candidate = SHA256Hasher{}.Hash(password, salt)
	}
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(stored)) == 1
}

// maxArgon2Memory caps the KiB a stored record may ask for (1 GiB).
const maxArgon2Memory = 1 << 20

// argon2ParamsValid rejects parameters argon2.IDKey would panic on, and
// memory costs far beyond anything Argon2Hasher writes.
func argon2ParamsValid(t, m uint32, p uint8) bool {
	return t >= 1 && p >= 1 && m >= 8*uint32(p) && m <= maxArgon2Memory
}

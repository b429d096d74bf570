package auth

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/blinkdrive/blinkauth/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, err := GenerateToken("alice", testKey, now, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	claims, err := ParseToken(tok, testKey, now)
	if err != nil {
		t.Fatalf("ParseToken error: %v", err)
	}
	if claims.Subject != "alice" {
		t.Fatalf("subject mismatch: got %q", claims.Subject)
	}
	if claims.ID == "" {
		t.Fatal("expected a token id")
	}
	if claims.IssuedAt.Unix() != now.Unix() || claims.ExpiresAt.Unix() != now.Add(time.Hour).Unix() {
		t.Fatalf("unexpected times: iat=%v exp=%v", claims.IssuedAt, claims.ExpiresAt)
	}
}

func TestGenerateToken_DistinctWithinSameSecond(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a, _ := GenerateToken("alice", testKey, now, time.Hour)
	b, _ := GenerateToken("alice", testKey, now, time.Hour)
	if a == b {
		t.Fatal("two tokens minted at the same instant must differ")
	}
}

func TestParseToken_Expired(t *testing.T) {
	t.Parallel()

	issued := time.Now().Add(-2 * time.Hour)
	tok, err := GenerateToken("u1", testKey, issued, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = ParseToken(tok, testKey, time.Now())
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestParseToken_WrongKey(t *testing.T) {
	t.Parallel()

	tok, _ := GenerateToken("u2", testKey, time.Now(), time.Hour)

	_, err := ParseToken(tok, []byte("another-key-another-key-another!"), time.Now())
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseToken_TamperedPayload(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, _ := GenerateToken("alice", testKey, now, time.Hour)
	forged, _ := GenerateToken("mallory", testKey, now, time.Hour)

	// alice's header and signature around mallory's claims
	a := strings.Split(tok, ".")
	m := strings.Split(forged, ".")
	spliced := a[0] + "." + m[1] + "." + a[2]

	if _, err := ParseToken(spliced, testKey, now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for spliced token, got %v", err)
	}
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	now := time.Now()
	claims := Claims{RegisteredClaims: jwt.RegisteredClaims{
		Issuer:    Issuer,
		Subject:   "alice",
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
	}}

	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString(testKey)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := ParseToken(hs512, testKey, now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for HS512, got %v", err)
	}

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign none: %v", err)
	}
	if _, err := ParseToken(none, testKey, now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for alg=none, got %v", err)
	}
}

func TestParseToken_MissingSubject(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tok, _ := GenerateToken("", testKey, now, time.Hour)
	if _, err := ParseToken(tok, testKey, now); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken without subject, got %v", err)
	}
}

func TestParseToken_Malformed(t *testing.T) {
	t.Parallel()

	for _, in := range []string{"", "not.a.jwt", "\x00\xff\xfe", "a.b"} {
		if _, err := ParseToken(in, testKey, time.Now()); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", in, err)
		}
	}
}

package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blinkdrive/blinkauth/internal/cryptox"
	"github.com/blinkdrive/blinkauth/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	keyA = []byte("aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa")
	keyB = []byte("bbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb")
)

func register(t *testing.T, s *AuthService, user, pass string) {
	t.Helper()
	ok, err := s.Register(context.Background(), user, pass)
	require.NoError(t, err)
	require.True(t, ok)
}

func login(t *testing.T, s *AuthService, user, pass string) string {
	t.Helper()
	tok, ok, err := s.Authenticate(context.Background(), user, pass)
	require.NoError(t, err)
	require.True(t, ok)
	require.NotEmpty(t, tok)
	return tok
}

func TestRegisterThenAuthenticate(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)

	for _, pass := range []string{"p", "correct horse battery staple", "пароль", " spaces ", "\x00bin"} {
		user := "user-" + pass
		register(t, s, user, pass)
		login(t, s, user, pass)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)
	register(t, s, "alice", "secret")

	tok, ok, err := s.Authenticate(context.Background(), "alice", "Secret")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tok)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)

	tok, ok, err := s.Authenticate(context.Background(), "ghost", "secret")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, tok)
}

func TestRegister_Duplicate(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	register(t, s, "alice", "first")

	before := *store.users["alice"]

	ok, err := s.Register(context.Background(), "alice", "second")
	require.NoError(t, err)
	assert.False(t, ok)

	after := *store.users["alice"]
	assert.Equal(t, before, after, "first registration's hash and salt must be unchanged")

	login(t, s, "alice", "first")
	_, ok, err = s.Authenticate(context.Background(), "alice", "second")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRegister_EmptyFields(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)

	for _, tc := range [][2]string{{"", "pw"}, {"bob", ""}, {"", ""}} {
		ok, err := s.Register(context.Background(), tc[0], tc[1])
		require.NoError(t, err)
		assert.False(t, ok)
	}
	assert.Empty(t, store.users)
}

func TestRegister_StoresSaltedHash(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	register(t, s, "alice", "secret")
	register(t, s, "bob", "secret")

	a, b := store.users["alice"], store.users["bob"]
	assert.NotEqual(t, a.Salt, b.Salt)
	assert.NotEqual(t, a.PasswordHash, b.PasswordHash, "same password, different salt")
	assert.NotContains(t, a.PasswordHash, "secret")
	assert.Equal(t, cryptox.SHA256Hasher{}.Hash("secret", a.Salt), a.PasswordHash)
}

func TestRegister_StorageError(t *testing.T) {
	store := newMemStore()
	store.usersErr = errBoom{}
	s := newAuthService(t, store, keyA)

	ok, err := s.Register(context.Background(), "alice", "pw")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Regexp(t, `registration failed: .*boom`, err.Error())
}

func TestAuthenticate_StorageErrors(t *testing.T) {
	t.Run("user lookup", func(t *testing.T) {
		store := newMemStore()
		s := newAuthService(t, store, keyA)
		register(t, s, "alice", "pw")
		store.usersErr = errBoom{}

		_, ok, err := s.Authenticate(context.Background(), "alice", "pw")
		assert.False(t, ok)
		require.Error(t, err)
		assert.Regexp(t, `authentication failed: .*boom`, err.Error())
	})

	t.Run("token insert", func(t *testing.T) {
		store := newMemStore()
		s := newAuthService(t, store, keyA)
		register(t, s, "alice", "pw")
		store.createErr = errBoom{}

		tok, ok, err := s.Authenticate(context.Background(), "alice", "pw")
		assert.False(t, ok)
		assert.Empty(t, tok)
		require.Error(t, err)
		assert.Empty(t, store.tokens)
	})
}

func TestAuthenticate_PersistsRecord(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	now := time.Date(2025, 5, 1, 10, 0, 0, 500, time.UTC)
	s.now = func() time.Time { return now }
	register(t, s, "alice", "pw")

	tok := login(t, s, "alice", "pw")

	rec, ok := store.tokens[tok]
	require.True(t, ok)
	assert.Equal(t, store.users["alice"].ID, rec.UserID)
	assert.Equal(t, now.Truncate(time.Second).Add(time.Hour), rec.ExpiresAt)
	assert.False(t, rec.Revoked)
}

func TestValidateToken_FreshToken(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)
	register(t, s, "alice", "pw")
	tok := login(t, s, "alice", "pw")

	assert.True(t, s.ValidateToken(context.Background(), tok))
	assert.True(t, s.ValidateToken(context.Background(), tok), "validation has no side effects")
}

func TestRevokeToken(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)
	register(t, s, "alice", "pw")
	tok := login(t, s, "alice", "pw")
	other := login(t, s, "alice", "pw")
	require.NotEqual(t, tok, other)

	ok, err := s.RevokeToken(context.Background(), tok)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.False(t, s.ValidateToken(context.Background(), tok))

	ok, err = s.RevokeToken(context.Background(), tok)
	require.NoError(t, err)
	assert.True(t, ok, "revocation is idempotent")
	assert.False(t, s.ValidateToken(context.Background(), tok))

	assert.True(t, s.ValidateToken(context.Background(), other), "no global logout")
}

func TestRevokeToken_NeverIssued(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)

	ok, err := s.RevokeToken(context.Background(), "never.issued.token")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRevokeToken_StorageError(t *testing.T) {
	store := newMemStore()
	store.tokensErr = errBoom{}
	s := newAuthService(t, store, keyA)

	ok, err := s.RevokeToken(context.Background(), "t")
	assert.False(t, ok)
	require.Error(t, err)
	assert.Regexp(t, `failed to revoke token: .*boom`, err.Error())
}

func TestValidateToken_Garbage(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)

	for _, in := range []string{"", "random", "\xff\xfe\x00", "a.b.c"} {
		assert.NotPanics(t, func() {
			assert.False(t, s.ValidateToken(context.Background(), in))
		})
	}
}

func TestValidateToken_RecordPresentButSignatureBad(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	register(t, s, "alice", "pw")
	tok := login(t, s, "alice", "pw")

	// an active record whose key is not a token this authority signed
	parts := strings.Split(tok, ".")
	require.Len(t, parts, 3)
	forged := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	rec := *store.tokens[tok]
	rec.Token = forged
	store.tokens[forged] = &rec

	assert.False(t, s.ValidateToken(context.Background(), forged))
}

func TestValidateToken_Expired(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	start := time.Now()
	s.now = func() time.Time { return start }
	register(t, s, "alice", "pw")
	tok := login(t, s, "alice", "pw")

	s.now = func() time.Time { return start.Add(time.Hour + time.Second) }
	assert.False(t, s.ValidateToken(context.Background(), tok))

	t.Run("embedded expiry alone", func(t *testing.T) {
		// record pushed far out, the token's own exp claim still rejects it
		store.tokens[tok].ExpiresAt = start.Add(48 * time.Hour)
		assert.False(t, s.ValidateToken(context.Background(), tok))
	})
}

func TestValidateToken_StorageErrorIsFalse(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	register(t, s, "alice", "pw")
	tok := login(t, s, "alice", "pw")

	store.tokensErr = errBoom{}
	assert.False(t, s.ValidateToken(context.Background(), tok))
}

func TestValidateToken_KeyChangeInvalidatesTokens(t *testing.T) {
	store := newMemStore()
	before := newAuthService(t, store, keyA)
	register(t, before, "alice", "pw")
	tok := login(t, before, "alice", "pw")
	require.True(t, before.ValidateToken(context.Background(), tok))

	// same database, new process key
	after := newAuthService(t, store, keyB)
	assert.True(t, tokenActive(store.tokens[tok], time.Now()), "record itself is still active")
	assert.False(t, after.ValidateToken(context.Background(), tok))

	login(t, after, "alice", "pw")
}

func TestPasswordSchemesCoexist(t *testing.T) {
	store := newMemStore()
	argon := NewAuthService(newSQLMockDB(t), fakeRepoManager{store}, keyA, cryptox.Argon2Hasher{}, time.Hour, logging.Nop{})
	legacy := newAuthService(t, store, keyA)

	register(t, argon, "new-user", "pw")
	register(t, legacy, "old-user", "pw")

	login(t, legacy, "new-user", "pw")
	login(t, argon, "old-user", "pw")
}

func TestConcurrentAuthenticate_DistinctTokens(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)
	register(t, s, "alice", "pw")

	const n = 8
	var wg sync.WaitGroup
	results := make(chan string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tok, ok, err := s.Authenticate(context.Background(), "alice", "pw")
			if err == nil && ok {
				results <- tok
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for tok := range results {
		seen[tok] = true
		assert.True(t, s.ValidateToken(context.Background(), tok))
	}
	assert.Len(t, seen, n)
}

func TestConcurrentRegister_SingleWinner(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)

	const n = 8
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.Register(context.Background(), "alice", "pw")
			if err == nil && ok {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

func TestAuthenticate_VerifiesWithoutHoldingConnection(t *testing.T) {
	store := newMemStore()
	s := newAuthService(t, store, keyA)
	register(t, s, "alice", "pw1")

	orig := verifyPassword
	t.Cleanup(func() { verifyPassword = orig })

	var calls int
	verifyPassword = func(password, salt, stored string) bool {
		calls++
		assert.Zero(t, s.db.Stats().InUse, "a pooled connection is held during hash verification")
		return orig(password, salt, stored)
	}

	login(t, s, "alice", "pw1")

	_, ok, err := s.Authenticate(context.Background(), "alice", "wrong")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Equal(t, 2, calls)
	assert.Zero(t, s.db.Stats().InUse)
	assert.Len(t, store.tokens, 1)
}

func TestAuthenticate_UnknownUserSkipsVerification(t *testing.T) {
	s := newAuthService(t, newMemStore(), keyA)

	orig := verifyPassword
	t.Cleanup(func() { verifyPassword = orig })
	verifyPassword = func(string, string, string) bool {
		t.Fatal("verification must not run without a user record")
		return false
	}

	_, ok, err := s.Authenticate(context.Background(), "ghost", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
}

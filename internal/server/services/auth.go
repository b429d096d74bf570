// Package services contains server-side business logic. AuthService is the
// credential and token authority: it registers users, authenticates them
// into signed bearer tokens, validates those tokens against both their
// signature and a revocable database record, and revokes them.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/blinkdrive/blinkauth/internal/common"
	"github.com/blinkdrive/blinkauth/internal/cryptox"
	"github.com/blinkdrive/blinkauth/internal/dbx"
	"github.com/blinkdrive/blinkauth/internal/logging"
	"github.com/blinkdrive/blinkauth/internal/server/auth"
	"github.com/blinkdrive/blinkauth/internal/server/models"
	"github.com/blinkdrive/blinkauth/internal/server/repositories/repomanager"
)

// verifyPassword is a test seam for cryptox.VerifyPassword.
var verifyPassword = cryptox.VerifyPassword

// AuthService owns the signing key for the lifetime of the process. Every
// operation runs on its own pooled connection, released before returning.
type AuthService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	signingKey    []byte
	hasher        cryptox.Hasher
	tokenValidity time.Duration
	logger        logging.Logger
	now           func() time.Time
}

// NewAuthService constructs an AuthService. signingKey must not be shared
// with anything that should not be able to mint tokens.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, signingKey []byte, hasher cryptox.Hasher,
	tokenValidity time.Duration, logger logging.Logger) *AuthService {
	return &AuthService{
		db:            db,
		repomanager:   m,
		signingKey:    signingKey,
		hasher:        hasher,
		tokenValidity: tokenValidity,
		logger:        logger.With("module", "auth_service"),
		now:           time.Now,
	}
}

// Register creates a user. It returns false without error when either field
// is empty or the username is already taken; the users table's unique
// constraint decides the latter, so concurrent registrations are safe.
func (s *AuthService) Register(ctx context.Context, username, password string) (bool, error) {
	if username == "" || password == "" {
		return false, nil
	}

	salt, err := cryptox.NewSalt()
	if err != nil {
		return false, fmt.Errorf("registration failed: %w", err)
	}

	user := &models.User{
		UserName:     username,
		PasswordHash: s.hasher.Hash(password, salt),
		Salt:         salt,
	}

	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		_, err := s.repomanager.Users(conn).Create(ctx, user)
		return err
	})
	if errors.Is(err, common.ErrorAlreadyExists) {
		s.logger.Info(ctx, "registration rejected, username taken", "username", username)
		return false, nil
	}
	if err != nil {
		s.logger.Error(ctx, "registration failed", "username", username, "error", err)
		return false, fmt.Errorf("registration failed: %w", err)
	}

	s.logger.Info(ctx, "user registered", "username", username, "scheme", s.hasher.Scheme())
	return true, nil
}

// Authenticate checks the credentials and, when they match, mints a signed
// token and records it. ok is false for an unknown user and for a wrong
// password alike. Users may hold any number of live tokens.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (token string, ok bool, err error) {
	var user *models.User
	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		user, err = s.repomanager.Users(conn).GetUserByLogin(ctx, username)
		if errors.Is(err, common.ErrorNotFound) {
			return nil
		}
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "authentication failed", "username", username, "error", err)
		return "", false, fmt.Errorf("authentication failed: %w", err)
	}

	// Hash verification runs with no pooled connection held.
	if user != nil && verifyPassword(password, user.Salt, user.PasswordHash) {
		token, err = s.issueToken(ctx, user)
		if err != nil {
			s.logger.Error(ctx, "authentication failed", "username", username, "error", err)
			return "", false, fmt.Errorf("authentication failed: %w", err)
		}
	}

	if token == "" {
		s.logger.Info(ctx, "authentication rejected", "username", username)
		return "", false, nil
	}

	s.logger.Info(ctx, "token issued", "username", username)
	return token, true, nil
}

// issueToken mints a token for user and records it on a fresh pooled
// connection.
func (s *AuthService) issueToken(ctx context.Context, user *models.User) (string, error) {
	// JWT times have second precision; keep the record in step with the claims.
	issuedAt := s.now().Truncate(time.Second)
	signed, err := auth.GenerateToken(user.UserName, s.signingKey, issuedAt, s.tokenValidity)
	if err != nil {
		return "", err
	}

	record := &models.Token{
		Token:     signed,
		UserID:    user.ID,
		ExpiresAt: issuedAt.Add(s.tokenValidity),
	}
	err = dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		return s.repomanager.Tokens(conn).Create(ctx, record)
	})
	if err != nil {
		return "", err
	}
	return signed, nil
}

// ValidateToken reports whether token may be used for access. The database
// record must exist, be unexpired and unrevoked; only then is the signature
// and the token's own expiry checked. Every failure, storage errors
// included, reads as false.
func (s *AuthService) ValidateToken(ctx context.Context, token string) bool {
	now := s.now()

	var active bool
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		active, err = s.repomanager.Tokens(conn).IsActive(ctx, token, now)
		return err
	})
	if err != nil {
		s.logger.Warn(ctx, "token lookup failed, treating as invalid", "error", err)
		return false
	}
	if !active {
		return false
	}

	if _, err := auth.ParseToken(token, s.signingKey, now); err != nil {
		s.logger.Debug(ctx, "token rejected by signature check", "error", err)
		return false
	}

	return true
}

// RevokeToken marks the token's record revoked. It reports whether the
// record exists; revoking twice still reports true. Other tokens of the
// same user are untouched.
func (s *AuthService) RevokeToken(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := dbx.WithConn(ctx, s.db, func(ctx context.Context, conn dbx.DBTX) error {
		var err error
		revoked, err = s.repomanager.Tokens(conn).Revoke(ctx, token)
		return err
	})
	if err != nil {
		s.logger.Error(ctx, "revocation failed", "error", err)
		return false, fmt.Errorf("failed to revoke token: %w", err)
	}

	if revoked {
		s.logger.Info(ctx, "token revoked")
	}
	return revoked, nil
}

// Package users declares the repository contract for the users table.
package users

import (
	"context"

	"github.com/blinkdrive/blinkauth/internal/server/models"
)

// Repository stores user credentials.
type Repository interface {
	// Create inserts user and fills in its ID. Implementations must return
	// common.ErrorAlreadyExists when the username is taken.
	Create(ctx context.Context, user *models.User) (*models.User, error)

	// GetUserByLogin returns common.ErrorNotFound when no such user exists.
	GetUserByLogin(ctx context.Context, login string) (*models.User, error)
}

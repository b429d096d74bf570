// Package repomanager vends repository implementations bound to a given
// database handle and runs schema migrations.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/blinkdrive/blinkauth/internal/dbx"
	"github.com/blinkdrive/blinkauth/internal/server/repositories/tokens"
	"github.com/blinkdrive/blinkauth/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Tokens(db dbx.DBTX) tokens.Repository
}

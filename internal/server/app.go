// Package server wires the blinkauth process together: configuration, the
// signing key, the PostgreSQL pool and schema, the AuthService and its gRPC
// endpoint. It also handles graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/blinkdrive/blinkauth/internal/common"
	"github.com/blinkdrive/blinkauth/internal/cryptox"
	"github.com/blinkdrive/blinkauth/internal/logging"
	"github.com/blinkdrive/blinkauth/internal/server/config"
	"github.com/blinkdrive/blinkauth/internal/server/keys"
	"github.com/blinkdrive/blinkauth/internal/server/repositories/repomanager"
	"github.com/blinkdrive/blinkauth/internal/server/services"

	gs "github.com/blinkdrive/blinkauth/internal/server/grpc"
)

// seams for tests
var (
	openDB         = repomanager.OpenPostgres
	newRepoManager = func() repomanager.RepositoryManager { return repomanager.NewPostgresRepositoryManager() }
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	return newApp(ctx, c, logging.NewJSONLogger(os.Stdout, slog.LevelInfo))
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {

	if c.TokenValidityDuration <= 0 {
		return nil, fmt.Errorf("%w: token validity must be positive, got %s", common.ErrInvalidConfig, c.TokenValidityDuration)
	}

	hasher, err := cryptox.NewHasher(c.PasswordScheme)
	if err != nil {
		return nil, fmt.Errorf("password hashing: %w", err)
	}

	source, err := keys.NewSource(ctx, c.KeySettings())
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	signingKey, err := source.Key(ctx)
	if err != nil {
		return nil, fmt.Errorf("signing key: %w", err)
	}
	if _, ok := source.(keys.Ephemeral); ok {
		logger.Warn(ctx, "Signing key is ephemeral, tokens will not survive a restart")
	}

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := newRepoManager()
	if c.RunMigrations {
		if err := rm.RunMigrations(ctx, db); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("db init error: %w", err)
		}
	}

	as := services.NewAuthService(db, rm, signingKey, hasher, c.TokenValidityDuration, logger)

	logger.Info(ctx, "App initialized",
		"password_scheme", hasher.Scheme(),
		"key_source", c.KeySource,
		"token_validity", c.TokenValidityDuration.String(),
	)

	return &App{config: c, logger: logger, db: db, authService: as}, nil
}

func (app *App) initSignalHandler(ctx context.Context, cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		defer signal.Stop(sigs)
		select {
		case <-sigs:
			cancelFunc()
		case <-ctx.Done():
		}
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {

	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.authService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a shutdown signal arrives, then
// closes the database pool.
func (app *App) Run(ctx context.Context) error {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(ctx, cancelFunc)

	var (
		wg     sync.WaitGroup
		runErr error
	)

	wg.Add(1)
	go func() {
		defer wg.Done()
		runErr = app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "closing database", "error", err.Error())
	}
	app.logger.Info(ctx, "App stopped")

	return runErr
}

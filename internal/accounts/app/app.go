package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/tubeworks/accounts/internal/accounts/http"
	"github.com/tubeworks/accounts/internal/accounts/media"
	"github.com/tubeworks/accounts/internal/accounts/service"
	"github.com/tubeworks/accounts/internal/accounts/store"
	"github.com/tubeworks/accounts/internal/accounts/store/drivers/sqlite"
	"github.com/tubeworks/accounts/pkg/cryptox"
	"github.com/tubeworks/accounts/pkg/jwtx"
	"github.com/tubeworks/accounts/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the accounts service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	uploader *media.MinioUploader

	// Services
	tokenService *service.TokenService
	userService  *service.UserService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accounts-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initMedia(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("accounts service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a shutdown signal or server error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down accounts service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("accounts service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initMedia initializes the object store client for avatar and cover uploads.
func (app *Application) initMedia() error {
	uploader, err := media.NewMinioUploader(app.cfg.Minio)
	if err != nil {
		return fmt.Errorf("failed to initialize media storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := uploader.EnsureBucket(ctx); err != nil {
		return fmt.Errorf("failed to ensure media bucket: %w", err)
	}

	app.uploader = uploader
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	// The two token classes must not share a secret, otherwise a refresh
	// token would verify as an access token.
	if app.cfg.AccessTokenSecret == app.cfg.RefreshTokenSecret {
		return errors.New("access and refresh token secrets must differ")
	}

	access, err := jwtx.NewHS256(app.cfg.AccessTokenSecret, app.cfg.Issuer, app.cfg.AccessTokenTTL)
	if err != nil {
		return fmt.Errorf("access token signer: %w", err)
	}
	refresh, err := jwtx.NewHS256(app.cfg.RefreshTokenSecret, app.cfg.Issuer, app.cfg.RefreshTokenTTL)
	if err != nil {
		return fmt.Errorf("refresh token signer: %w", err)
	}

	app.tokenService = &service.TokenService{
		Access:  access,
		Refresh: refresh,
		Store:   app.db,
	}
	app.userService = &service.UserService{Store: app.db}

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.uploader, app.logger)
	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.ApplyRoutes()
	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

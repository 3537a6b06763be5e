// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package server wires configuration, storage and services into the HTTP API.
package server

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

	"github.com/labstack/echo/v4"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"

	"codeberg.org/skillnaav/portal/internal/config"
	"codeberg.org/skillnaav/portal/internal/database"
	"codeberg.org/skillnaav/portal/internal/handlers"
	"codeberg.org/skillnaav/portal/internal/i18n"
	"codeberg.org/skillnaav/portal/internal/obs"
	"codeberg.org/skillnaav/portal/internal/repository"
	"codeberg.org/skillnaav/portal/internal/services/application"
	"codeberg.org/skillnaav/portal/internal/services/approval"
	authsvc "codeberg.org/skillnaav/portal/internal/services/auth"
	"codeberg.org/skillnaav/portal/internal/services/chat"
	"codeberg.org/skillnaav/portal/internal/services/email"
	"codeberg.org/skillnaav/portal/internal/services/internship"
	"codeberg.org/skillnaav/portal/internal/services/token"
	"codeberg.org/skillnaav/portal/internal/sse"
)

// App is the assembled HTTP application.
type App struct {
	Echo    *echo.Echo
	Auth    *authsvc.Service
	Metrics *obs.Metrics
	Hub     *sse.Hub
	repo    *repository.Repository
	cfg     *config.Config
}

// Run starts the server with the given CLI command.
func Run(ctx context.Context, cmd *cli.Command) error {
	cfg := config.NewFromCLI(cmd)
	setupLogger(cfg.Log.Level, cfg.Log.Format)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	slog.Info("starting server",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"base_url", cfg.Server.BaseURL,
	)

	// Database (migrations run on open)
	db, err := database.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if closeErr := database.Close(db); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()

	// i18n
	if initErr := i18n.Init(); initErr != nil {
		return fmt.Errorf("failed to init i18n: %w", initErr)
	}

	app, err := New(cfg, db)
	if err != nil {
		return err
	}
	if err := app.Bootstrap(ctx); err != nil {
		return err
	}

	return startWithGracefulShutdown(ctx, app.Echo, cfg)
}

// New builds the services and the echo instance serving them.
func New(cfg *config.Config, db *sqlx.DB) (*App, error) {
	repo := repository.New(db)
	metrics := obs.New()

	tokens, err := token.NewService(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	notifier, err := email.NewNotifier(&cfg.SMTP)
	if err != nil {
		return nil, fmt.Errorf("failed to create notifier: %w", err)
	}
	if !cfg.SMTP.Enabled() {
		slog.Warn("smtp not configured, notifications are only logged")
	}

	store, err := application.NewFileStore(cfg.Uploads.Dir, int64(cfg.Uploads.MaxResumeSize)<<20)
	if err != nil {
		return nil, fmt.Errorf("failed to create upload store: %w", err)
	}

	hub := sse.NewHub()
	metrics.TrackStreams(hub)
	authService := authsvc.NewService(repo, &cfg.Auth, tokens, notifier, metrics)
	h := handlers.New(
		repo,
		authService,
		approval.NewService(repo, notifier, metrics, &cfg.Internships, store),
		internship.NewService(repo),
		application.NewService(repo, store),
		chat.NewService(repo, hub),
	)

	// Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	setupMiddleware(e, cfg, metrics)

	// Routes
	setupRoutes(e, h, metrics, loginLimiter(cfg.Auth.LoginRatePerMin))

	return &App{Echo: e, Auth: authService, Metrics: metrics, Hub: hub, repo: repo, cfg: cfg}, nil
}

// Bootstrap creates or approves the configured admin account.
func (a *App) Bootstrap(ctx context.Context) error {
	if a.cfg.Auth.AdminEmail != "" {
		if err := a.Auth.EnsureAdmin(ctx, a.cfg.Auth.AdminEmail, a.cfg.Auth.AdminPassword, a.cfg.Auth.AdminName); err != nil {
			return fmt.Errorf("failed to bootstrap admin: %w", err)
		}
	}

	admins, err := a.repo.CountApprovedAdmins(ctx)
	if err != nil {
		return fmt.Errorf("failed to count admins: %w", err)
	}
	if admins == 0 {
		slog.Warn("no approved admin, pending accounts cannot be reviewed")
	}
	return nil
}

func setupRoutes(e *echo.Echo, h *handlers.Handlers, metrics *obs.Metrics, credentials echo.MiddlewareFunc) {
	e.GET("/health", h.Health)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	h.Routes(e.Group("/api"), credentials)
}

func startWithGracefulShutdown(ctx context.Context, e *echo.Echo, cfg *config.Config) error {
	// Channel for server errors
	errChan := make(chan error, 1)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	go func() {
		slog.Info("Server running", "url", cfg.Server.BaseURL)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	// Wait for interrupt signal or error
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case <-quit:
		slog.Info("shutting down server")
	case <-ctx.Done():
		slog.Info("shutting down server", "reason", ctx.Err())
	case err := <-errChan:
		slog.Error("server error", "error", err)
		return err
	}

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("failed to shutdown server", "error", err)
	}

	slog.Info("server stopped")
	return nil
}

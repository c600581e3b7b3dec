// Package app wires together the store, registry, chat engine, and the
// admin control plane.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/classcord/classcord-server/internal/admin"
	"github.com/classcord/classcord-server/internal/auth"
	"github.com/classcord/classcord-server/internal/config"
	ccslog "github.com/classcord/classcord-server/internal/log"
	"github.com/classcord/classcord-server/internal/registry"
	"github.com/classcord/classcord-server/internal/server"
	"github.com/classcord/classcord-server/internal/store"
	"github.com/classcord/classcord-server/internal/store/sqlite"
	"github.com/classcord/classcord-server/internal/transport/httpapi"
)

const adminTokenTTL = 24 * time.Hour

// App runs the chat engine and the admin HTTP server as one process.
type App struct {
	chat            *server.Server
	adminServer     *http.Server
	store           store.Store
	shutdownTimeout time.Duration
	log             *zerolog.Logger
	closeAudit      func() error
}

// New constructs the application with provided configuration.
func New(cfg config.Config, logger *zerolog.Logger) (*App, error) {
	st, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	logger.Info().Str("db_path", cfg.DatabasePath).Msg("database initialized")

	audit, closeAudit, err := ccslog.NewAudit(cfg.AuditLogPath)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("init audit log: %w", err)
	}

	reg := registry.New(cfg.DefaultChannel, cfg.Channels)
	chat := server.New(cfg, reg, st, logger, audit)

	adminService := admin.NewService(reg, st, logger, audit)
	authService := auth.NewService(cfg.AdminPassword, &auth.JWTConfig{
		Secret:   []byte(cfg.JWTSecret),
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
		TTL:      adminTokenTTL,
	})
	adminServer := httpapi.NewServer(adminService, authService, chat, cfg, logger)

	return &App{
		chat:            chat,
		adminServer:     adminServer,
		store:           st,
		shutdownTimeout: cfg.ShutdownTimeout,
		log:             logger,
		closeAudit:      closeAudit,
	}, nil
}

// Run starts both servers and blocks until context cancellation or fatal error.
func (a *App) Run(ctx context.Context) error {
	if err := a.chat.Listen(); err != nil {
		a.cleanup()
		return err
	}

	chatErr := make(chan error, 1)
	adminErr := make(chan error, 1)

	go func() {
		chatErr <- a.chat.Serve(ctx)
	}()

	go func() {
		a.log.Info().Str("addr", a.adminServer.Addr).Msg("admin api listening")
		if err := a.adminServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			adminErr <- err
			return
		}
		adminErr <- nil
	}()

	var runErr error
	select {
	case runErr = <-chatErr:
	case runErr = <-adminErr:
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.shutdownTimeout)
		defer cancel()

		a.log.Info().Msg("shutting down")
		if err := a.adminServer.Shutdown(shutdownCtx); err != nil {
			runErr = err
		}
		<-adminErr
		if err := <-chatErr; err != nil && runErr == nil {
			runErr = err
		}
	}

	a.cleanup()
	return runErr
}

// cleanup closes the database and the audit log.
func (a *App) cleanup() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close store")
		} else {
			a.log.Info().Msg("store closed")
		}
	}
	if a.closeAudit != nil {
		if err := a.closeAudit(); err != nil {
			a.log.Warn().Err(err).Msg("failed to close audit log")
		}
	}
}

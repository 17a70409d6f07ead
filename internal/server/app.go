// Package server initializes and runs the relay application: it opens the
// database, wires the repositories and services together, starts the
// background session sweep, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"tgrelay/internal/authsessions"
	"tgrelay/internal/creds"
	"tgrelay/internal/filex"
	"tgrelay/internal/httpapi"
	"tgrelay/internal/logging"
	"tgrelay/internal/repositories/chats"
	"tgrelay/internal/repositories/files"
	"tgrelay/internal/repositories/tgsessions"
	"tgrelay/internal/server/config"
	"tgrelay/internal/storage"
	"tgrelay/internal/telegram"
	"tgrelay/internal/tgauth"
	"tgrelay/internal/uploads"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	server  *httpapi.Server
	pruner  *authsessions.Pruner
	adapter *telegram.Adapter
	tgauth  *tgauth.Service
	closeDB func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {

	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := storage.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	uploadDir, err := filex.EnsureDir(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	stagingDir, err := filex.EnsureDir(filepath.Join(uploadDir, ".staging"))
	if err != nil {
		return nil, err
	}

	fileRepo := files.NewSQLiteRepository(db)
	chatDir := chats.NewSQLiteDirectory(db)
	sessionStore := tgsessions.NewSQLiteStore(db)
	authStore := authsessions.NewSQLiteStore(db,
		authsessions.WithTTL(cfg.SessionTTL),
		authsessions.WithRetention(cfg.SessionRetention),
	)

	credCell := creds.FromEnv()
	adapter := telegram.NewAdapter(credCell, logger)

	uploadSvc := uploads.NewService(fileRepo, chatDir, sessionStore, credCell, adapter, logger, cfg.UploadToken, uploadDir)
	authSvc := tgauth.NewService(sessionStore, credCell, adapter, logger)

	srv := httpapi.NewServer(uploadSvc, chatDir, authSvc, authStore, logger, httpapi.Options{
		StagingDir:        stagingDir,
		MaxUploadBytes:    cfg.MaxUploadBytes,
		AdminUsername:     cfg.AdminUsername,
		AdminPasswordHash: cfg.AdminPasswordHash,
		JWTSecret:         []byte(cfg.SecretKey),
		SessionTTL:        cfg.SessionTTL,
		CookieSecure:      cfg.CookieSecure,
	})

	return &App{
		config:  cfg,
		logger:  logger,
		server:  srv,
		pruner:  authsessions.NewPruner(authStore, logger, cfg.PruneInterval),
		adapter: adapter,
		tgauth:  authSvc,
		closeDB: db.Close,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	app.pruner.Start(ctx)
	defer app.pruner.Stop()

	// connect eagerly when the environment carries a session; uploads will
	// connect lazily otherwise
	if err := app.tgauth.ConnectFromEnv(ctx); err != nil {
		app.logger.Warn(ctx, "startup telegram connect failed", "error", err)
	}
	defer func() {
		if err := app.adapter.Close(); err != nil {
			app.logger.Warn(ctx, "telegram client close failed", "error", err)
		}
	}()

	httpSrv := &http.Server{
		Addr:    app.config.Addr,
		Handler: app.server.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "http server failed", "error", err)
		}
	case <-ctx.Done():
		app.logger.Info(ctx, "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "http shutdown failed", "error", err)
		}
	}

	if err := app.closeDB(); err != nil {
		app.logger.Error(ctx, "db close failed", "error", err)
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"peer-delivery-api/accounts"
	"peer-delivery-api/config"
	"peer-delivery-api/handlers"
	"peer-delivery-api/ledger"
	"peer-delivery-api/lifecycle"
	"peer-delivery-api/logger"
	"peer-delivery-api/notify"
	"peer-delivery-api/rating"
	"peer-delivery-api/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// bootstrap loads configuration, builds the logger and opens the migrated database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	log, err := logger.New(cfg.Log)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	db, err := config.OpenDB(cfg.Database, log)
	if err != nil {
		_ = log.Sync()
		return nil, nil, nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info("Database ready", zap.String("path", cfg.Database.Path))
	return cfg, log, db, nil
}

func seedAdmin(ctx context.Context, cfg *config.Config, log *zap.Logger, svc *accounts.Service) error {
	if cfg.Admin.Email == "" {
		return nil
	}
	admin, err := svc.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("failed to seed administrator: %w", err)
	}
	log.Info("Administrator available", zap.Uint("user_id", admin.ID), zap.String("email", admin.Email))
	return nil
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() { _ = config.CloseDB(db) }()

	if err := seedAdmin(cmd.Context(), cfg, log, accounts.NewService(db, log)); err != nil {
		return err
	}
	log.Info("Migration complete")
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()
	defer func() {
		if err := config.CloseDB(db); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	log.Info("Starting Peer Delivery API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	dispatcher := notify.NewDispatcher(db, log, cfg.Notify.QueueSize)
	defer dispatcher.Close()

	accountService := accounts.NewService(db, log)
	if err := seedAdmin(cmd.Context(), cfg, log, accountService); err != nil {
		return err
	}

	h := handlers.New(handlers.Deps{
		Accounts: accountService,
		Orders: lifecycle.NewService(db, dispatcher, log, lifecycle.Options{
			StrictOnTheWay: cfg.Lifecycle.StrictOnTheWay,
			StrictCancel:   cfg.Lifecycle.StrictCancel,
		}),
		Ledger:     ledger.New(db),
		Ratings:    rating.NewService(db, dispatcher, log),
		Inbox:      notify.NewInbox(db),
		Dispatcher: dispatcher,
		JWTSecret:  []byte(cfg.JWT.Secret),
		TokenTTL:   cfg.JWT.Expiration,
		Logger:     log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           routes.NewEngine(log, h, []byte(cfg.JWT.Secret)),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serveErr:
		if err != nil {
			log.Error("Failed to start server", zap.Error(err))
			return err
		}
	case <-quit:
	}
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
	return nil
}

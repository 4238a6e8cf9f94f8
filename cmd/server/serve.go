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

	"github.com/damacus/bucket-console/internal/config"
	"github.com/damacus/bucket-console/internal/logger"
	"github.com/damacus/bucket-console/internal/services"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var envDir, address string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the console HTTP server",
		Long:  `Loads configuration, connects to the storage backend and serves the console until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), envDir, address)
		},
	}
	cmd.Flags().StringVar(&envDir, "env-dir", ".", "directory containing an optional .env file")
	cmd.Flags().StringVar(&address, "address", "", "listen address (overrides SERVER_ADDRESS)")
	return cmd
}

func runServe(ctx context.Context, envDir, address string) error {
	if ctx == nil {
		ctx = context.Background()
	}

	// 1. Load Configuration
	cfg, err := config.LoadConfig(envDir)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if address != "" {
		cfg.Server.Address = address
	}

	// 2. Initialize Logger
	log, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	// 3. Initialize Storage
	store, err := services.NewStore(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to create storage client: %w", err)
	}

	if cfg.Server.SecretKey == "" {
		log.Warn("SERVER_SECRET_KEY not set, pending notifications will not survive a restart")
	}

	console := services.NewConsoleService(store, services.ConsoleConfig{
		Region:   cfg.Storage.Region,
		PageSize: cfg.Storage.PageSize,
	}, log)

	e, err := newServer(serverDeps{
		Console:       console,
		Flash:         services.NewFlashService(cfg.Server.SecretKey),
		Logger:        log,
		SecureCookies: cfg.Server.SecureCookies,
	})
	if err != nil {
		return err
	}

	// 4. Start Server
	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server",
			zap.String("address", cfg.Server.Address),
			zap.String("driver", cfg.Storage.Driver),
		)
		if err := e.Start(cfg.Server.Address); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// 5. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-quit:
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}

package main

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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"transport-net/config"
	"transport-net/database"
	"transport-net/game"
	"transport-net/handlers"
	"transport-net/logging"
	"transport-net/simulation"
	"transport-net/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			if port, _ := cmd.Flags().GetString("port"); port != "" {
				cfg.ServerPort = port
			}
			logger := logging.NewLogger(cfg.LogLevel, os.Stderr)
			slog.SetDefault(logger)
			logger.Info("starting transport-net", "version", version, "driver", cfg.DBDriver)

			repo, err := openRepository(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer repo.Close()

			sessions := game.NewManager(repo, sessionOptions(cfg, logger))
			defer sessions.CloseAll()

			if os.Getenv("GIN_MODE") != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			router := handlers.NewRouter(handlers.New(repo, sessions, logger), cfg.CORSOrigins, logger)

			srv := &http.Server{
				Addr:    ":" + cfg.ServerPort,
				Handler: router,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server listening", "port", cfg.ServerPort)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			// Wait for interrupt signal for graceful shutdown
			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			select {
			case <-quit:
			case err := <-errCh:
				return fmt.Errorf("failed to start server: %w", err)
			}

			logger.Info("shutting down server")
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			logger.Info("server exited")
			return nil
		},
	}

	cmd.Flags().String("port", "", "Listen port (overrides SERVER_PORT)")
	return cmd
}

// openRepository connects the storage backend selected by DB_DRIVER.
func openRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Repository, error) {
	if cfg.DBDriver == config.DriverMemory {
		logger.Warn("using in-memory storage, networks are lost on exit")
		return store.NewMemoryStore(), nil
	}

	db, dialect, err := database.Connect(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.RunMigrations(ctx, db, dialect, logger); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store.NewSQLStore(db, dialect, logger), nil
}

func sessionOptions(cfg *config.Config, logger *slog.Logger) game.Options {
	return game.Options{
		Simulation: simulation.Config{
			PassiveIncome: cfg.PassiveIncome,
			RevenuePeriod: cfg.RevenuePeriod,
			SavePeriod:    cfg.SavePeriod,
		},
		SaveTimeout:   cfg.SaveTimeout,
		FrameInterval: cfg.FrameInterval,
		Logger:        logger,
	}
}

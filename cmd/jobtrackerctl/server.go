package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/config"
	"github.com/doodlesbykumbi/jobtracker/pkg/db"
	"github.com/doodlesbykumbi/jobtracker/pkg/logging"
	"github.com/doodlesbykumbi/jobtracker/pkg/server"
	"github.com/doodlesbykumbi/jobtracker/pkg/server/endpoints"
)

const shutdownTimeout = 10 * time.Second

func defaultBindAddress() string {
	if addr := os.Getenv("BIND_ADDRESS"); addr != "" {
		return addr
	}
	return "0.0.0.0"
}

func defaultPort() string {
	if port := os.Getenv("PORT"); port != "" {
		return port
	}
	return "8000"
}

// serverCmd represents the server command
var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Run the job tracker API server",
	Long: `Run the job tracker API server.

The server requires DATABASE_URL and JOBTRACKER_SECRET_KEY.

By default, database migrations are run on startup. Use --no-migrate to skip.
The server shuts down gracefully on SIGINT or SIGTERM.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, logger, err := loadConfig()
		if err != nil {
			fail("%v", err)
		}
		defer func() { _ = logger.Sync() }()

		if err := cfg.Validate(); err != nil {
			fail("Invalid configuration: %v", err)
		}

		noMigrate, _ := cmd.Flags().GetBool("no-migrate")
		if !noMigrate {
			logger.Info("running database migrations")
			status, changed, err := db.MigrateUp(cfg.DatabaseURL)
			if err != nil {
				fail("Migration failed: %v", err)
			}
			logger.Info("database schema ready",
				zap.Uint("version", status.Version),
				zap.Bool("changed", changed))
		}

		host, _ := cmd.Flags().GetString("bind-address")
		port, _ := cmd.Flags().GetString("port")

		if err := runServer(cfg, logger, host, port); err != nil {
			logger.Error("server stopped", zap.Error(err))
			os.Exit(1)
		}
	},
}

func runServer(cfg *config.Config, logger *zap.Logger, host, port string) error {
	database, err := db.Connect(db.Config{
		URL:    cfg.DatabaseURL,
		Debug:  logging.Config{Level: cfg.LogLevel}.IsDebug(),
		Logger: logger,
	})
	if err != nil {
		return err
	}

	s := server.NewServer(cfg, database, logger, host, port)
	endpoints.RegisterAll(s)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringP("port", "p", defaultPort(), "server listen port")
	serverCmd.Flags().StringP("bind-address", "b", defaultBindAddress(), "server bind address")
	serverCmd.Flags().Bool("no-migrate", false, "skip running database migrations on start")
}

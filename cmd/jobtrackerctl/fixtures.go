package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/doodlesbykumbi/jobtracker/pkg/db"
	"github.com/doodlesbykumbi/jobtracker/pkg/fixtures"
)

// fixturesCmd represents the fixtures command
var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Load users and applications from YAML",
	Long: `Load users and job applications from YAML fixture files.

Loading is idempotent: users are matched by username and applications by
owner, company and position.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'fixtures' requires a subcommand (load, watch)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var fixturesLoadCmd = &cobra.Command{
	Use:   "load <file>",
	Short: "Load a fixture file",
	Long: `Load a fixture file into the database.

All statements are applied in one transaction. With --dry-run the file is
validated and applied, then rolled back.

Example:
  jobtrackerctl fixtures load demo.yml
  jobtrackerctl fixtures load --dry-run demo.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dryRun, _ := cmd.Flags().GetBool("dry-run")

		withFixtureLoader(func(loader *fixtures.Loader, logger *zap.Logger) error {
			result, err := loadFixtureFile(cmd.Context(), loader.WithDryRun(dryRun), args[0])
			if err != nil {
				return err
			}
			output, _ := json.MarshalIndent(result, "", "  ")
			fmt.Println(string(output))
			return nil
		})
	},
}

var fixturesWatchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Watch a fixture file and load it whenever it changes",
	Long: `Watch a fixture file and load it whenever it is written.

The file is loaded once at start. Editors that replace the file on save are
supported since the containing directory is watched.

Example:
  jobtrackerctl fixtures watch demo.yml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]

		withFixtureLoader(func(loader *fixtures.Loader, logger *zap.Logger) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			load := func() error {
				result, err := loadFixtureFile(ctx, loader, filename)
				if err != nil {
					return err
				}
				logger.Info("fixtures loaded",
					zap.String("file", filename),
					zap.Strings("created_users", result.CreatedUsers),
					zap.Int("created_applications", result.CreatedApplications),
					zap.Int("updated_applications", result.UpdatedApplications),
					zap.Int("status_changes", result.StatusChanges),
				)
				return nil
			}
			if err := load(); err != nil {
				logger.Error("failed to load fixtures", zap.String("file", filename), zap.Error(err))
			}

			watcher, err := newFixtureWatcher(filename)
			if err != nil {
				return err
			}
			defer func() { _ = watcher.Close() }()

			fmt.Printf("Watching %s for changes\n", filename)
			return watchFixtures(ctx, watcher, filename, load, logger)
		})
	},
}

func init() {
	rootCmd.AddCommand(fixturesCmd)
	fixturesCmd.AddCommand(fixturesLoadCmd, fixturesWatchCmd)

	fixturesLoadCmd.Flags().Bool("dry-run", false, "validate and roll back")
}

// withFixtureLoader connects to the database and runs fn with a loader.
func withFixtureLoader(fn func(*fixtures.Loader, *zap.Logger) error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	defer func() { _ = logger.Sync() }()

	database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Logger: logger})
	if err != nil {
		fail("%v", err)
	}

	loader := fixtures.NewLoader(fixtures.NewGormStore(database, cfg.Location()))
	if err := fn(loader, logger.Named("fixtures")); err != nil {
		fail("Failed to load fixtures: %v", err)
	}
}

func loadFixtureFile(ctx context.Context, loader *fixtures.Loader, filename string) (*fixtures.LoadResult, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return loader.LoadFromReader(ctx, file)
}

// newFixtureWatcher watches the directory holding filename.
func newFixtureWatcher(filename string) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", filename, err)
	}
	return watcher, nil
}

// watchFixtures calls load for every write or create of filename until ctx
// is done. Load errors are logged and watching continues.
func watchFixtures(ctx context.Context, watcher *fsnotify.Watcher, filename string, load func() error, logger *zap.Logger) error {
	target := filepath.Clean(filename)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
				continue
			}
			logger.Info("fixture file changed", zap.String("file", filename))
			if err := load(); err != nil {
				logger.Error("failed to load fixtures", zap.String("file", filename), zap.Error(err))
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))
		case <-ctx.Done():
			return nil
		}
	}
}

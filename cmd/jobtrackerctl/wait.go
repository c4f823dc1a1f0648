package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/jobtracker/pkg/db"
)

// waitCmd represents the wait command
var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Wait for the database to accept connections",
	Long: `Wait for the database to accept connections.

This command pings the database once a second until it answers or the
timeout expires. Useful before "db migrate" in container entrypoints.

Example:
  jobtrackerctl wait
  jobtrackerctl wait --timeout 2m`,
	Run: func(cmd *cobra.Command, args []string) {
		timeout, _ := cmd.Flags().GetDuration("timeout")

		cfg, logger, err := loadConfig()
		if err != nil {
			fail("%v", err)
		}
		database, err := db.Connect(db.Config{URL: cfg.DatabaseURL, Logger: logger})
		if err != nil {
			fail("%v", err)
		}

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		fmt.Println("Waiting for the database to be ready...")
		if err := db.WaitFor(ctx, database, time.Second); err != nil {
			fail("Database did not become ready after %s: %v", timeout, err)
		}
		fmt.Println("Database is ready")
	},
}

func init() {
	rootCmd.AddCommand(waitCmd)
	waitCmd.Flags().DurationP("timeout", "t", 90*time.Second, "how long to wait")
}

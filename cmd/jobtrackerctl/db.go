package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/doodlesbykumbi/jobtracker/pkg/db"
)

// dbCmd represents the db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the database",
	Long:  `Manage the database schema and migrations.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("error: Command 'db' requires a subcommand (migrate, down, status)")
		fmt.Println()
		_ = cmd.Help()
		os.Exit(1)
	},
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create and/or upgrade the database schema",
	Long: `Create and/or upgrade the database schema.

This command runs all pending database migrations to bring the schema
up to date. The migrations are embedded in the binary; set
JOBTRACKER_MIGRATIONS_DIR to read them from a directory instead.

Example:
  jobtrackerctl db migrate`,
	Run: func(cmd *cobra.Command, args []string) {
		status, changed, err := db.MigrateUp(databaseURL())
		if err != nil {
			fail("Migration failed: %v", err)
		}
		if !changed {
			fmt.Println("No migrations to run - database is up to date")
		}
		printStatus(status)
	},
}

var dbMigrateDownCmd = &cobra.Command{
	Use:   "down [steps]",
	Short: "Rollback database migrations",
	Long: `Rollback database migrations.

This command rolls back the specified number of migrations (default: 1).

Example:
  jobtrackerctl db down      # Rollback 1 migration
  jobtrackerctl db down 3    # Rollback 3 migrations`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		steps := 1
		if len(args) > 0 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				fail("Invalid number of steps %q", args[0])
			}
			steps = n
		}

		status, err := db.MigrateDown(databaseURL(), steps)
		if err != nil {
			fail("Rollback failed: %v", err)
		}
		printStatus(status)
	},
}

var dbMigrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show current migration version",
	Long:  `Show the current database migration version.`,
	Run: func(cmd *cobra.Command, args []string) {
		status, err := db.Status(databaseURL())
		if err != nil {
			fail("Failed to get status: %v", err)
		}
		printStatus(status)
	},
}

func init() {
	rootCmd.AddCommand(dbCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbMigrateDownCmd)
	dbCmd.AddCommand(dbMigrateStatusCmd)
}

// databaseURL reads DATABASE_URL through the configuration so a config
// file can supply it too.
func databaseURL() string {
	cfg, _, err := loadConfig()
	if err != nil {
		fail("%v", err)
	}
	return cfg.DatabaseURL
}

func printStatus(status db.MigrationStatus) {
	if !status.Applied {
		fmt.Println("No migrations applied")
		return
	}
	fmt.Printf("Current version: %d (dirty: %v)\n", status.Version, status.Dirty)
}

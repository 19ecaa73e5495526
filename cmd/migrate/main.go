package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"medtrack/internal/config"
	"medtrack/internal/db"
)

var (
	resetFirst bool
	assumeYes  bool
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Long: `Create or update every table and index used by the API server.

The target database is read from the same environment as the server
(DB_DRIVER, DB_HOST, DB_PORT, DB_NAME, DB_USER, DB_PASSWORD or DATABASE_DSN).

Examples:
  migrate
  migrate --reset --yes`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	rootCmd.Flags().BoolVar(&resetFirst, "reset", false, "drop every table before migrating (destroys all data)")
	rootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "do not ask for confirmation with --reset")
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	gormDB, err := db.Open(cfg.DB, nil)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	if resetFirst {
		if !assumeYes && !confirm(cmd, cfg.DB.Driver, cfg.DB.Name) {
			color.Yellow("Aborted")
			return nil
		}
		if err := db.Reset(ctx, gormDB); err != nil {
			return err
		}
		color.Yellow("✓ Dropped all tables")
	}

	if err := db.Migrate(ctx, gormDB); err != nil {
		return err
	}
	color.Green("✓ Schema is up to date (%s)", cfg.DB.Driver)
	return nil
}

func confirm(cmd *cobra.Command, driver, name string) bool {
	color.New(color.FgRed, color.Bold).Fprintf(cmd.OutOrStdout(), "Drop every table in %s database %q? [y/N] ", driver, name)
	var answer string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &answer); err != nil {
		return false
	}
	return answer == "y" || answer == "Y" || answer == "yes"
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		color.Red("✗ %v", err)
		os.Exit(1)
	}
}

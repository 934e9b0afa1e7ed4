// Package main implements the tasker-api server: a task board backend with
// accounts, tasks and comments over a JSON document store.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phrazzld/tasker-api/internal/config"
	"github.com/phrazzld/tasker-api/internal/platform/postgres"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Running the root command serves HTTP.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "tasker",
		Short:         "Tasker API server",
		Long:          "Tasker serves the account, task and comment REST API.",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          runServe,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}

	migrateCmd := &cobra.Command{
		Use:       "migrate <up|down|reset|status|version>",
		Short:     "Run database migrations against database.url",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down", "reset", "status", "version"},
		RunE:      runMigrate,
	}

	rootCmd.AddCommand(serveCmd, migrateCmd)
	return rootCmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, provider, err := config.LoadWithProvider()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	app, err := newApplication(ctx, cfg, provider)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}
	return app.Run(ctx)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	command, err := postgres.ParseMigrationCommand(args[0])
	if err != nil {
		return err
	}

	cfg, provider, err := config.LoadWithProvider()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if cfg.Database.Driver != driverPostgres {
		return fmt.Errorf("migrations require the postgres driver, got %q", cfg.Database.Driver)
	}

	facade, log := setupLogging(cfg, provider)
	defer func() { _ = facade.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	db, err := setupAppDatabase(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	return postgres.Migrate(ctx, db, command, log)
}

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/db"
	"github.com/jonathan/job-assistant/internal/migrate"
	"github.com/jonathan/job-assistant/internal/observability"
)

var (
	migrateFrom string
	migrateTo   string
	migrateJSON bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Manage the database schema",
	Long:  "Apply, revert and inspect the schema migrations recorded in the schema_version table.",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up [revision]",
	Short: "Upgrade to a revision (default head)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migrate.Runner) error {
			applied, err := r.Upgrade(ctx, targetArg(args, migrate.Head))
			printIDs(cmd.OutOrStdout(), "applied", applied)
			return err
		})
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down <revision>",
	Short: "Downgrade to a revision; base reverts everything",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migrate.Runner) error {
			reverted, err := r.Downgrade(ctx, args[0])
			printIDs(cmd.OutOrStdout(), "reverted", reverted)
			return err
		})
	},
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the current revision",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migrate.Runner) error {
			current, err := r.Current(ctx)
			if err != nil {
				return err
			}
			if current == "" {
				current = migrate.Base
			}
			fmt.Fprintln(cmd.OutOrStdout(), current)
			return nil
		})
	},
}

var migrateHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List every revision and whether it is applied",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withRunner(cmd, func(ctx context.Context, r *migrate.Runner) error {
			revisions, err := r.History(ctx)
			if err != nil {
				return err
			}
			return printHistory(cmd.OutOrStdout(), revisions, migrateJSON)
		})
	},
}

var migrateSQLCmd = &cobra.Command{
	Use:   "sql",
	Short: "Print the SQL between two revisions without connecting",
	Args:  cobra.NoArgs,
	RunE:  runMigrateSQL,
}

func init() {
	migrateHistoryCmd.Flags().BoolVar(&migrateJSON, "json", false, "Print history as JSON")
	migrateSQLCmd.Flags().StringVar(&migrateFrom, "from", migrate.Base, "Starting revision")
	migrateSQLCmd.Flags().StringVar(&migrateTo, "to", migrate.Head, "Target revision")

	migrateCmd.AddCommand(migrateUpCmd, migrateDownCmd, migrateStatusCmd, migrateHistoryCmd, migrateSQLCmd)
	rootCmd.AddCommand(migrateCmd)
}

func runMigrateSQL(cmd *cobra.Command, _ []string) error {
	runner, err := migrate.NewRunner(nil, migrate.All(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		return err
	}
	statements, err := runner.SQL(migrateFrom, migrateTo)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, stmt := range statements {
		if strings.HasPrefix(stmt, "--") {
			fmt.Fprintf(out, "\n%s\n", stmt)
			continue
		}
		fmt.Fprintf(out, "%s;\n", stmt)
	}
	return nil
}

// withRunner connects to the configured database and runs fn with a migration runner on it.
func withRunner(cmd *cobra.Command, fn func(context.Context, *migrate.Runner) error) error {
	settings, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	database, err := db.Connect(ctx, settings.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	runner, err := migrate.NewRunner(migrate.NewPgStore(database.Pool()), migrate.All(), logger)
	if err != nil {
		return err
	}
	return fn(ctx, runner)
}

func targetArg(args []string, def string) string {
	if len(args) == 0 {
		return def
	}
	return args[0]
}

func printIDs(w io.Writer, verb string, ids []string) {
	if len(ids) == 0 {
		fmt.Fprintf(w, "nothing %s\n", verb)
		return
	}
	for _, id := range ids {
		fmt.Fprintf(w, "%s %s\n", verb, id)
	}
}

func printHistory(w io.Writer, revisions []migrate.Revision, asJSON bool) error {
	if !asJSON {
		observability.NewPrinter(w).PrintRevisions(revisions)
		return nil
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(revisions)
}

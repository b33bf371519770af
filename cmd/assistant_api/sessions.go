package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/job-assistant/internal/db"
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Maintain login sessions",
}

var sessionsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete sessions that have expired",
	Args:  cobra.NoArgs,
	RunE:  runSessionsPrune,
}

func init() {
	sessionsCmd.AddCommand(sessionsPruneCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func runSessionsPrune(cmd *cobra.Command, _ []string) error {
	settings, logger, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	database, err := db.Connect(cmd.Context(), settings.DatabaseURL())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	n, err := database.DeleteExpiredSessions(cmd.Context(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to prune sessions: %w", err)
	}
	logger.Info("pruned expired sessions", "count", n)
	fmt.Fprintf(cmd.OutOrStdout(), "deleted %d expired session(s)\n", n)
	return nil
}

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ymatsuda/vocapix/internal/cli"
	"github.com/ymatsuda/vocapix/internal/session"
)

func newCleanupCommand() *cobra.Command {
	var retentionDays int

	command := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete completed sessions older than the retention period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			if retentionDays == 0 {
				retentionDays = cfg.Quiz.SessionRetentionDays
			}
			return cli.CleanupSessions(cmd.Context(), os.Stdout, session.NewRepository(db), retentionDays)
		},
	}

	command.Flags().IntVar(&retentionDays, "days", 0, "Retention period in days (defaults to the configured value)")
	return command
}

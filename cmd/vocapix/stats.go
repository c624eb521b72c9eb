package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ymatsuda/vocapix/internal/cli"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats [username]",
		Short: "Show corpus, image, and learning statistics",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			c, err := loadCorpus(cfg)
			if err != nil {
				return err
			}
			db, err := openDatabase(cfg)
			if err != nil {
				return err
			}
			defer func() {
				_ = db.Close()
			}()

			stack, err := buildQuizStack(cfg, c, db)
			if err != nil {
				return err
			}

			username := ""
			if len(args) > 0 {
				username = args[0]
			}
			return cli.ShowStatistics(cmd.Context(), os.Stdout, c, stack.illustrator, stack.users, stack.logs, username)
		},
	}
}

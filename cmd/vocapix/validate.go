package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ymatsuda/vocapix/internal/cli"
)

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the vocabulary and caption files for consistency",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			c, err := loadCorpus(cfg)
			if err != nil {
				return err
			}
			return cli.ValidateCorpus(os.Stdout, c)
		},
	}
}

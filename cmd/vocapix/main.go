package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configFile string

func newRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           "vocapix",
		Short:         "Vocabulary learning from image captions",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().StringVar(&configFile, "config", "", "Path to the configuration file")

	rootCommand.AddCommand(newQuizCommand())
	rootCommand.AddCommand(newValidateCommand())
	rootCommand.AddCommand(newStatsCommand())
	rootCommand.AddCommand(newCleanupCommand())
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

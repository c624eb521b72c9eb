package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ymatsuda/vocapix/internal/cli"
	"github.com/ymatsuda/vocapix/internal/session"
)

// ModeFlag restricts the quiz mode flag to the supported modes.
type ModeFlag string

// Set implements pflag.Value.
func (m *ModeFlag) Set(v string) error {
	switch v {
	case session.ModeLearning, session.ModeReview:
		*m = ModeFlag(v)
	default:
		return fmt.Errorf("invalid value %q, valid values are %q or %q", v, session.ModeLearning, session.ModeReview)
	}
	return nil
}

// String implements pflag.Value.
func (m *ModeFlag) String() string {
	if m == nil {
		return ""
	}
	return string(*m)
}

// Type implements pflag.Value.
func (m *ModeFlag) Type() string {
	return "ModeFlag"
}

var (
	_ pflag.Value = (*ModeFlag)(nil)
)

func newQuizCommand() *cobra.Command {
	var (
		username string
		pos      string
		cefr     string
	)
	mode := ModeFlag(session.ModeLearning)

	command := &cobra.Command{
		Use:   "quiz",
		Short: "Practice vocabulary with fill-in-the-blank questions",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("loadConfig() > %w", err)
			}
			if cfg.OpenAI.APIKey == "" {
				return fmt.Errorf("OPENAI_API_KEY environment variable is required")
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

			quizCLI, err := cli.NewVocabularyQuizCLI(
				context.Background(),
				stack.orchestrator,
				cfg.Images.OutputDirectory,
				username,
				string(mode),
				pos,
				cefr,
			)
			if err != nil {
				return err
			}

			fmt.Println("Type the choice number or the word itself. Type 'quit' to exit.")
			fmt.Println()
			return quizCLI.Run(context.Background(), quizCLI)
		},
	}

	flags := command.Flags()
	flags.StringVar(&username, "user", "", "Username to record the results under")
	flags.Var(&mode, "mode", "Quiz mode. Options: learning, review")
	flags.StringVar(&pos, "pos", "", "Limit questions to one part of speech")
	flags.StringVar(&cefr, "cefr", "", "Limit questions to one CEFR level")
	_ = command.MarkFlagRequired("user")

	return command
}

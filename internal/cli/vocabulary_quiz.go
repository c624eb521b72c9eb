package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/ymatsuda/vocapix/internal/question"
	"github.com/ymatsuda/vocapix/internal/session"
)

// VocabularyQuizCLI manages the interactive CLI session for one quiz run.
type VocabularyQuizCLI struct {
	*InteractiveQuizCLI
	orchestrator *session.Orchestrator
	imageDir     string
	sessionID    string
	userID       int64
}

// NewVocabularyQuizCLI starts a session for the user and returns the CLI
// driving it.
func NewVocabularyQuizCLI(
	ctx context.Context,
	orchestrator *session.Orchestrator,
	imageDir string,
	username, mode, pos, cefr string,
) (*VocabularyQuizCLI, error) {
	s, user, err := orchestrator.Start(ctx, username, mode, pos, cefr)
	if err != nil {
		return nil, fmt.Errorf("orchestrator.Start > %w", err)
	}

	cli := &VocabularyQuizCLI{
		InteractiveQuizCLI: newInteractiveQuizCLI(),
		orchestrator:       orchestrator,
		imageDir:           imageDir,
		sessionID:          s.ID,
		userID:             user.ID,
	}
	fmt.Fprintf(cli.stdoutWriter, "Started a %s session for %s", s.Mode, username)
	if s.PartOfSpeech != "" || s.CEFRLevel != "" {
		fmt.Fprintf(cli.stdoutWriter, " (%s %s)", s.PartOfSpeech, s.CEFRLevel)
	}
	fmt.Fprintln(cli.stdoutWriter)
	return cli, nil
}

func (r *VocabularyQuizCLI) Session(ctx context.Context) error {
	completed, err := r.orchestrator.CheckCompletion(ctx, r.sessionID)
	if err != nil {
		return fmt.Errorf("orchestrator.CheckCompletion > %w", err)
	}
	if completed {
		if err := r.displaySummary(ctx); err != nil {
			return err
		}
		return errEnd
	}

	view, err := r.orchestrator.GetCurrentQuestion(ctx, r.sessionID)
	if err != nil {
		return fmt.Errorf("orchestrator.GetCurrentQuestion > %w", err)
	}
	if view == nil {
		fmt.Fprintln(r.stdoutWriter, "No more questions available for the selected criteria.")
		return errEnd
	}

	r.displayQuestion(view)
	answer, quit, err := r.readAnswer(view.Choices)
	if err != nil {
		return err
	}
	if quit {
		fmt.Fprintln(r.stdoutWriter, "Practice session ended.")
		return errEnd
	}

	feedback, err := r.orchestrator.ProcessUserAnswer(ctx, r.sessionID, view.Question.ID, answer)
	if err != nil {
		return fmt.Errorf("orchestrator.ProcessUserAnswer > %w", err)
	}
	return r.displayFeedback(feedback)
}

func (r *VocabularyQuizCLI) displayQuestion(view *session.QuestionView) {
	fmt.Fprintf(r.stdoutWriter, "\nQuestion %d/%d [%s %s]\n",
		view.QuestionNumber, view.TotalQuestions, view.Question.PartOfSpeech, view.Question.CEFRLevel)
	_, _ = r.bold.Fprintln(r.stdoutWriter, blankedSentence(view.Question.BlankedTokens))
	for i, choice := range view.Choices {
		fmt.Fprintf(r.stdoutWriter, "  %d) %s\n", i+1, choice)
	}
}

// readAnswer accepts either the choice number or the word itself.
func (r *VocabularyQuizCLI) readAnswer(choices []string) (string, bool, error) {
	fmt.Fprint(r.stdoutWriter, "Answer: ")
	input, err := r.stdinReader.ReadString('\n')
	if err != nil {
		return "", false, fmt.Errorf("error reading input: %w", err)
	}
	input = strings.TrimSpace(input)

	if input == "quit" || input == "exit" {
		return "", true, nil
	}
	if index, err := strconv.Atoi(input); err == nil && index >= 1 && index <= len(choices) {
		return choices[index-1], false, nil
	}
	return input, false, nil
}

func (r *VocabularyQuizCLI) displayFeedback(feedback *session.Feedback) error {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)

	if feedback.IsCorrect {
		if _, err := green.Fprintf(r.stdoutWriter, "Correct! %s\n",
			r.italic.Sprintf("%s", feedback.CompletedSentence),
		); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
		return nil
	}

	if _, err := red.Fprintf(r.stdoutWriter, "Not quite. Here is what %q would look like: %s\n",
		feedback.UserAnswer,
		r.italic.Sprintf("%s", feedback.CompletedSentence),
	); err != nil {
		return fmt.Errorf("failed to write to stdout: %w", err)
	}
	if feedback.ImageAvailable {
		if _, err := fmt.Fprintf(r.stdoutWriter, "  Generated image: %s\n",
			filepath.Join(r.imageDir, feedback.GeneratedImage),
		); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	} else {
		if _, err := fmt.Fprintln(r.stdoutWriter, "  Image not available."); err != nil {
			return fmt.Errorf("failed to write to stdout: %w", err)
		}
	}
	return nil
}

func (r *VocabularyQuizCLI) displaySummary(ctx context.Context) error {
	summary, err := r.orchestrator.Summary(ctx, r.sessionID)
	if err != nil {
		return fmt.Errorf("orchestrator.Summary > %w", err)
	}
	stats, err := r.orchestrator.UserStatistics(ctx, r.userID)
	if err != nil {
		return fmt.Errorf("orchestrator.UserStatistics > %w", err)
	}

	_, _ = r.bold.Fprintln(r.stdoutWriter, "\nSession complete!")
	fmt.Fprintf(r.stdoutWriter, "Answered %d of %d questions.\n", summary.AnsweredQuestions, summary.TotalQuestions)
	fmt.Fprintf(r.stdoutWriter, "Lifetime: %d/%d correct (%.1f%%) over %d sessions.\n",
		stats.CorrectAnswers, stats.TotalAnswers, stats.Accuracy()*100, stats.TotalSessions)
	return nil
}

// blankedSentence renders the blank as underscores for terminal display.
func blankedSentence(tokens []string) string {
	display := make([]string, len(tokens))
	for i, token := range tokens {
		if token == question.Placeholder {
			display[i] = "____"
		} else {
			display[i] = token
		}
	}
	return question.CompleteSentence(display, "")
}

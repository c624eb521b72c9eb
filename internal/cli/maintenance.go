package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/illustrator"
	"github.com/ymatsuda/vocapix/internal/learning"
	"github.com/ymatsuda/vocapix/internal/session"
)

// ValidateCorpus prints the corpus summary and any integrity problems.
// It returns an error when the corpus references missing captions.
func ValidateCorpus(w io.Writer, c *corpus.Corpus) error {
	stats := c.Stats()
	fmt.Fprintf(w, "Vocabulary entries: %d\n", stats.TotalVocabulary)
	fmt.Fprintf(w, "Captions: %d\n", stats.TotalCaptions)
	for pos, count := range stats.ByPOS {
		fmt.Fprintf(w, "  %s: %d\n", pos, count)
	}

	integrity := c.ValidateIntegrity()
	if len(integrity.MissingCaptions) == 0 {
		fmt.Fprintln(w, "No integrity issues found.")
		return nil
	}
	for _, captionID := range integrity.MissingCaptions {
		fmt.Fprintf(w, "Missing caption: %s\n", captionID)
	}
	return fmt.Errorf("%d caption references are missing", len(integrity.MissingCaptions))
}

// ShowStatistics prints corpus and image counts, plus the learning
// statistics of the user when a username is given.
func ShowStatistics(
	ctx context.Context,
	w io.Writer,
	c *corpus.Corpus,
	il *illustrator.Illustrator,
	users *learning.UserRepository,
	logs *learning.LogRepository,
	username string,
) error {
	corpusStats := c.Stats()
	fmt.Fprintf(w, "Corpus: %d words, %d captions\n", corpusStats.TotalVocabulary, corpusStats.TotalCaptions)

	imageStats, err := il.DiskStats()
	if err != nil {
		return fmt.Errorf("illustrator.DiskStats > %w", err)
	}
	fmt.Fprintf(w, "Generated images: %d (%.1f MB)\n",
		imageStats.TotalImages, float64(imageStats.TotalSizeBytes)/(1024*1024))

	if username == "" {
		return nil
	}
	user, err := users.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("users.FindByUsername > %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %s not found", username)
	}
	stats, err := logs.UserStatistics(ctx, user.ID)
	if err != nil {
		return fmt.Errorf("logs.UserStatistics > %w", err)
	}

	fmt.Fprintf(w, "%s: %d/%d correct (%.1f%%) over %d sessions\n",
		username, stats.CorrectAnswers, stats.TotalAnswers, stats.Accuracy()*100, stats.TotalSessions)
	for _, group := range stats.ByCEFRLevel {
		fmt.Fprintf(w, "  %s: %d/%d\n", group.Group, group.Correct, group.Attempted)
	}
	for _, group := range stats.ByPartOfSpeech {
		fmt.Fprintf(w, "  %s: %d/%d\n", group.Group, group.Correct, group.Attempted)
	}
	return nil
}

// CleanupSessions deletes completed sessions older than the retention
// period.
func CleanupSessions(ctx context.Context, w io.Writer, sessions *session.Repository, retentionDays int) error {
	deleted, err := sessions.DeleteCompletedBefore(ctx, retentionDays)
	if err != nil {
		return fmt.Errorf("sessions.DeleteCompletedBefore > %w", err)
	}
	fmt.Fprintf(w, "Deleted %d completed sessions older than %d days.\n", deleted, retentionDays)
	return nil
}

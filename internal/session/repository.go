package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository persists quiz sessions.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create starts a new session and returns it. An unknown mode falls back to
// learning.
func (r *Repository) Create(ctx context.Context, userID int64, mode, pos, cefr string, totalQuestions int) (*Session, error) {
	if mode != ModeLearning && mode != ModeReview {
		mode = ModeLearning
	}
	if totalQuestions <= 0 {
		totalQuestions = DefaultTotalQuestions
	}

	s := &Session{
		ID:             uuid.NewString(),
		UserID:         userID,
		Mode:           mode,
		PartOfSpeech:   strings.ToLower(pos),
		CEFRLevel:      strings.ToUpper(cefr),
		TotalQuestions: totalQuestions,
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO learning_sessions (session_id, user_id, mode, pos_filter, cefr_filter, total_questions)
		VALUES (?, ?, ?, ?, ?, ?)`,
		s.ID, s.UserID, s.Mode, s.PartOfSpeech, s.CEFRLevel, s.TotalQuestions)
	if err != nil {
		return nil, fmt.Errorf("db.ExecContext(insert session) > %w", err)
	}
	return s, nil
}

// Find returns the session with the given id, or ErrSessionNotFound.
func (r *Repository) Find(ctx context.Context, sessionID string) (*Session, error) {
	var s Session
	err := r.db.GetContext(ctx, &s, "SELECT * FROM learning_sessions WHERE session_id = ?", sessionID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(session) > %w", err)
	}
	return &s, nil
}

// AdvanceProgress increments the answered question counter.
func (r *Repository) AdvanceProgress(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE learning_sessions SET current_question = current_question + 1 WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(advance session) > %w", err)
	}
	return nil
}

// Complete marks the session completed. Completion is sticky; there is no
// way back to in progress.
func (r *Repository) Complete(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE learning_sessions SET is_completed = TRUE WHERE session_id = ?",
		sessionID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(complete session) > %w", err)
	}
	return nil
}

// DeleteCompletedBefore removes completed sessions older than the given
// number of days and returns how many were deleted.
func (r *Repository) DeleteCompletedBefore(ctx context.Context, days int) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM learning_sessions
		WHERE created_at < datetime('now', ? || ' days') AND is_completed = TRUE`,
		fmt.Sprintf("-%d", days))
	if err != nil {
		return 0, fmt.Errorf("db.ExecContext(delete old sessions) > %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("result.RowsAffected() > %w", err)
	}
	return deleted, nil
}

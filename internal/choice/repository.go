// Package choice generates and stores the answer options of a question:
// the correct answer plus two distractors picked by edit-distance scoring.
package choice

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists choice sets. A question's choices are stored with the
// correct answer at order 0 and are replaced wholesale on save.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Save replaces the stored choice set of a question. The first element of
// choices must be the correct answer.
func (r *Repository) Save(ctx context.Context, qid int64, choices []string, answer string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("db.BeginTxx > %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, "DELETE FROM choices WHERE qid = ?", qid); err != nil {
		return fmt.Errorf("tx.ExecContext(delete choices) > %w", err)
	}
	for order, choice := range choices {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO choices (qid, choice_text, is_correct, choice_order) VALUES (?, ?, ?, ?)",
			qid, choice, choice == answer, order); err != nil {
			return fmt.Errorf("tx.ExecContext(insert choice) > %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("tx.Commit > %w", err)
	}
	return nil
}

// FindByQuestion returns the stored choices of a question in saved order.
func (r *Repository) FindByQuestion(ctx context.Context, qid int64) ([]string, error) {
	var choices []string
	err := r.db.SelectContext(ctx, &choices,
		"SELECT choice_text FROM choices WHERE qid = ? ORDER BY choice_order", qid)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(choices) > %w", err)
	}
	return choices, nil
}

// CorrectAnswer returns the choice marked correct, or "" when the question
// has no stored choices.
func (r *Repository) CorrectAnswer(ctx context.Context, qid int64) (string, error) {
	var answer string
	err := r.db.GetContext(ctx, &answer,
		"SELECT choice_text FROM choices WHERE qid = ? AND is_correct = TRUE", qid)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("db.GetContext(correct answer) > %w", err)
	}
	return answer, nil
}

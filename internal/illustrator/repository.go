package illustrator

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists the paths of generated wrong-answer images, one row
// per (question, wrong choice) pair.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Save records the image path for a (question, wrong choice) pair,
// overwriting an earlier path for the same pair.
func (r *Repository) Save(ctx context.Context, qid int64, wrongChoice, imagePath string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO generated_images (qid, wrong_choice, image_path) VALUES (?, ?, ?)
		ON CONFLICT(qid, wrong_choice) DO UPDATE SET image_path = excluded.image_path`,
		qid, wrongChoice, imagePath)
	if err != nil {
		return fmt.Errorf("db.ExecContext(upsert generated_image) > %w", err)
	}
	return nil
}

// FindPath returns the stored image path for a (question, wrong choice)
// pair, or "" when no image has been generated yet.
func (r *Repository) FindPath(ctx context.Context, qid int64, wrongChoice string) (string, error) {
	var path string
	err := r.db.GetContext(ctx, &path,
		"SELECT image_path FROM generated_images WHERE qid = ? AND wrong_choice = ?",
		qid, wrongChoice)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("db.GetContext(generated_image) > %w", err)
	}
	return path, nil
}

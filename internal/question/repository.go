package question

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository persists questions.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a new Repository.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Save inserts the question and fills in its id. A duplicate natural key is
// not an error: the existing row's id is read back instead.
func (r *Repository) Save(ctx context.Context, q *Question) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO questions (image_id, caption_id, caption, lemma, pos, cefr, answer, blanked_tokens, lemmatized_tokens)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ImageID, q.CaptionID, q.Caption, q.Lemma, q.PartOfSpeech, q.CEFRLevel,
		q.Answer, q.BlankedTokens, q.LemmatizedTokens)
	if err != nil {
		existing, findErr := r.FindByNaturalKey(ctx, q.Lemma, q.PartOfSpeech, q.CEFRLevel)
		if findErr != nil {
			return fmt.Errorf("db.ExecContext(insert question) > %w", err)
		}
		if existing == nil {
			return fmt.Errorf("db.ExecContext(insert question) > %w", err)
		}
		q.ID = existing.ID
		return nil
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	q.ID = id
	return nil
}

// FindByID returns the question with the given id, or nil if not found.
func (r *Repository) FindByID(ctx context.Context, qid int64) (*Question, error) {
	var q Question
	err := r.db.GetContext(ctx, &q, "SELECT * FROM questions WHERE qid = ?", qid)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(question) > %w", err)
	}
	return &q, nil
}

// FindByNaturalKey returns the question for (lemma, pos, cefr), or nil if
// not found. The part of speech is stored lowercase and the level uppercase.
func (r *Repository) FindByNaturalKey(ctx context.Context, lemma, pos, cefr string) (*Question, error) {
	var q Question
	err := r.db.GetContext(ctx, &q,
		"SELECT * FROM questions WHERE lemma = ? AND pos = ? AND cefr = ?",
		lemma, normalizePOS(pos), normalizeCEFR(cefr))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(question by natural key) > %w", err)
	}
	return &q, nil
}

// FindLemmas resolves question ids to their lemmas, lowercased. Unknown ids
// are skipped.
func (r *Repository) FindLemmas(ctx context.Context, qids []int64) (map[string]struct{}, error) {
	lemmas := make(map[string]struct{}, len(qids))
	if len(qids) == 0 {
		return lemmas, nil
	}

	query, args, err := sqlx.In("SELECT lemma FROM questions WHERE qid IN (?)", qids)
	if err != nil {
		return nil, fmt.Errorf("sqlx.In > %w", err)
	}

	var found []string
	if err := r.db.SelectContext(ctx, &found, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("db.SelectContext(lemmas) > %w", err)
	}
	for _, lemma := range found {
		lemmas[toLower(lemma)] = struct{}{}
	}
	return lemmas, nil
}

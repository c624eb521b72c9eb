package learning

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// UserRepository manages users.
type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetOrCreate returns the user with the given username, creating it first
// when it does not exist yet.
func (r *UserRepository) GetOrCreate(ctx context.Context, username string) (*User, error) {
	user, err := r.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	result, err := r.db.ExecContext(ctx, "INSERT INTO users (username) VALUES (?)", username)
	if err != nil {
		// Another connection may have created the user concurrently.
		user, findErr := r.FindByUsername(ctx, username)
		if findErr == nil && user != nil {
			return user, nil
		}
		return nil, fmt.Errorf("db.ExecContext(insert user) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("result.LastInsertId() > %w", err)
	}
	return &User{ID: id, Username: username}, nil
}

// FindByUsername returns the user with the given username, or nil if not
// found.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	var user User
	err := r.db.GetContext(ctx, &user, "SELECT * FROM users WHERE username = ?", username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("db.GetContext(user) > %w", err)
	}
	return &user, nil
}

// LogRepository manages learning logs.
type LogRepository struct {
	db *sqlx.DB
}

// NewLogRepository creates a new LogRepository.
func NewLogRepository(db *sqlx.DB) *LogRepository {
	return &LogRepository{db: db}
}

// Create inserts the log and fills in its id.
func (r *LogRepository) Create(ctx context.Context, log *Log) error {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO learning_logs (user_id, qid, selected_choice, is_correct, generated_image_path, session_id)
		VALUES (?, ?, ?, ?, ?, ?)`,
		log.UserID, log.QuestionID, log.SelectedChoice, log.IsCorrect, log.ImagePath, log.SessionID)
	if err != nil {
		return fmt.Errorf("db.ExecContext(insert learning_log) > %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("result.LastInsertId() > %w", err)
	}
	log.ID = id
	return nil
}

// AnsweredQuestionIDs returns the distinct question ids answered in a
// session.
func (r *LogRepository) AnsweredQuestionIDs(ctx context.Context, sessionID string) ([]int64, error) {
	var qids []int64
	err := r.db.SelectContext(ctx, &qids,
		"SELECT DISTINCT qid FROM learning_logs WHERE session_id = ?", sessionID)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(answered qids) > %w", err)
	}
	return qids, nil
}

// History returns the user's answered questions, newest first.
func (r *LogRepository) History(ctx context.Context, userID int64, limit int) ([]HistoryEntry, error) {
	var entries []HistoryEntry
	err := r.db.SelectContext(ctx, &entries,
		`SELECT ll.*, q.lemma, q.pos, q.cefr, q.caption
		FROM learning_logs ll
		JOIN questions q ON ll.qid = q.qid
		WHERE ll.user_id = ?
		ORDER BY ll.answered_at DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(history) > %w", err)
	}
	return entries, nil
}

// ReviewCandidates returns questions the user answered before, wrong
// answers first and recent ones before older ones within each group.
func (r *LogRepository) ReviewCandidates(ctx context.Context, userID int64, limit int) ([]ReviewCandidate, error) {
	var candidates []ReviewCandidate
	err := r.db.SelectContext(ctx, &candidates,
		`SELECT DISTINCT q.qid, ll.is_correct
		FROM questions q
		JOIN learning_logs ll ON q.qid = ll.qid
		WHERE ll.user_id = ?
		ORDER BY ll.is_correct ASC, ll.answered_at DESC
		LIMIT ?`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("db.SelectContext(review candidates) > %w", err)
	}
	return candidates, nil
}

// UserStatistics aggregates a user's answers overall and grouped by level
// and part of speech.
func (r *LogRepository) UserStatistics(ctx context.Context, userID int64) (Statistics, error) {
	var stats Statistics
	err := r.db.QueryRowContext(ctx,
		`SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN is_correct THEN 1 ELSE 0 END), 0),
			COUNT(DISTINCT session_id)
		FROM learning_logs
		WHERE user_id = ?`,
		userID).Scan(&stats.TotalAnswers, &stats.CorrectAnswers, &stats.TotalSessions)
	if err != nil {
		return Statistics{}, fmt.Errorf("db.QueryRowContext(basic stats) > %w", err)
	}

	stats.ByCEFRLevel, err = r.groupedStats(ctx, userID, "q.cefr")
	if err != nil {
		return Statistics{}, err
	}
	stats.ByPartOfSpeech, err = r.groupedStats(ctx, userID, "q.pos")
	if err != nil {
		return Statistics{}, err
	}
	return stats, nil
}

func (r *LogRepository) groupedStats(ctx context.Context, userID int64, column string) ([]GroupStats, error) {
	var groups []GroupStats
	query := fmt.Sprintf(
		`SELECT
			%s AS grp,
			COUNT(*) AS attempted,
			SUM(CASE WHEN ll.is_correct THEN 1 ELSE 0 END) AS correct
		FROM learning_logs ll
		JOIN questions q ON ll.qid = q.qid
		WHERE ll.user_id = ?
		GROUP BY %s
		ORDER BY %s`, column, column, column)
	if err := r.db.SelectContext(ctx, &groups, query, userID); err != nil {
		return nil, fmt.Errorf("db.SelectContext(grouped stats by %s) > %w", column, err)
	}
	return groups, nil
}

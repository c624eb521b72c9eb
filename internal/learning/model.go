// Package learning provides the user and learning log domain models and
// their repositories.
package learning

import (
	"database/sql"
	"time"
)

// User is a learner identified by username.
type User struct {
	ID        int64     `db:"user_id"`
	Username  string    `db:"username"`
	CreatedAt time.Time `db:"created_at"`
}

// Log records one answered question. ImagePath is set when a wrong answer
// produced a feedback image.
type Log struct {
	ID             int64          `db:"log_id"`
	UserID         int64          `db:"user_id"`
	QuestionID     int64          `db:"qid"`
	SelectedChoice string         `db:"selected_choice"`
	IsCorrect      bool           `db:"is_correct"`
	ImagePath      sql.NullString `db:"generated_image_path"`
	SessionID      string         `db:"session_id"`
	AnsweredAt     time.Time      `db:"answered_at"`
}

// HistoryEntry is a log joined with its question, newest first.
type HistoryEntry struct {
	Log
	Lemma        string `db:"lemma"`
	PartOfSpeech string `db:"pos"`
	CEFRLevel    string `db:"cefr"`
	Caption      string `db:"caption"`
}

// ReviewCandidate is a previously answered question, ordered so wrong
// answers come before correct ones.
type ReviewCandidate struct {
	QuestionID int64 `db:"qid"`
	IsCorrect  bool  `db:"is_correct"`
}

// GroupStats counts attempts and correct answers within one group value.
type GroupStats struct {
	Group     string `db:"grp"`
	Attempted int    `db:"attempted"`
	Correct   int    `db:"correct"`
}

// Statistics summarizes a user's learning history.
type Statistics struct {
	TotalAnswers   int
	CorrectAnswers int
	TotalSessions  int
	ByCEFRLevel    []GroupStats
	ByPartOfSpeech []GroupStats
}

// Accuracy returns the share of correct answers, 0 when nothing was
// answered yet.
func (s Statistics) Accuracy() float64 {
	if s.TotalAnswers == 0 {
		return 0
	}
	return float64(s.CorrectAnswers) / float64(s.TotalAnswers)
}

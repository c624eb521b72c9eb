// Package session manages quiz sessions: creating them, serving the next
// question, grading answers, and tracking progress until completion.
package session

import (
	"errors"
	"time"
)

// ErrSessionNotFound is returned when a session id does not exist.
var ErrSessionNotFound = errors.New("session not found")

// Session modes. Learning serves fresh questions; review prefers questions
// the user answered before, wrong answers first.
const (
	ModeLearning = "learning"
	ModeReview   = "review"
)

// DefaultTotalQuestions is the number of questions per session.
const DefaultTotalQuestions = 10

// Session is one quiz run with fixed part of speech and level filters.
type Session struct {
	ID              string    `db:"session_id"`
	UserID          int64     `db:"user_id"`
	Mode            string    `db:"mode"`
	PartOfSpeech    string    `db:"pos_filter"`
	CEFRLevel       string    `db:"cefr_filter"`
	TotalQuestions  int       `db:"total_questions"`
	CurrentQuestion int       `db:"current_question"`
	IsCompleted     bool      `db:"is_completed"`
	CreatedAt       time.Time `db:"created_at"`
}

// ProgressRate returns the share of the session already answered, in
// percent.
func (s Session) ProgressRate() float64 {
	if s.TotalQuestions == 0 {
		return 0
	}
	return float64(s.CurrentQuestion) / float64(s.TotalQuestions) * 100
}

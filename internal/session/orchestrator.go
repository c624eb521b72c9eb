package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/ymatsuda/vocapix/internal/learning"
	"github.com/ymatsuda/vocapix/internal/question"
)

//go:generate mockgen -source=orchestrator.go -destination=../mocks/session/mock_providers.go -package=mock_session

// QuestionProvider supplies questions for a session, generating new ones or
// loading stored ones together with their choices.
type QuestionProvider interface {
	GetOrGenerate(ctx context.Context, pos, cefr string, excludeQIDs []int64, forceNew bool) (*question.Question, error)
	GetQuestionByID(ctx context.Context, qid int64) (*question.Question, []string, error)
}

// WrongAnswerIllustrator produces the image shown after a wrong answer.
type WrongAnswerIllustrator interface {
	GetOrGenerate(ctx context.Context, qid int64, q *question.Question, wrongChoice string, forceRegenerate bool) (string, error)
}

// reviewCandidateLimit is how many previously answered questions are
// considered when picking a review question.
const reviewCandidateLimit = 20

// reviewMissWeight is the sampling weight of a previously missed question
// relative to a correctly answered one in review mode.
const reviewMissWeight = 3

// QuestionView is a question prepared for display, with its choices
// shuffled.
type QuestionView struct {
	Question       *question.Question
	Choices        []string
	QuestionNumber int
	TotalQuestions int
	Mode           string
}

// Feedback is the result of grading one answer. After a wrong answer the
// correct answer is withheld so the learner studies the generated image
// instead of memorizing the solution.
type Feedback struct {
	QuestionID        int64
	IsCorrect         bool
	UserAnswer        string
	CorrectAnswer     string
	ShowCorrectAnswer bool
	CompletedSentence string
	OriginalCaption   string
	ImageID           string
	GeneratedImage    string
	ImageAvailable    bool
}

// Summary describes a session's progress.
type Summary struct {
	SessionID         string
	UserID            int64
	Mode              string
	PartOfSpeech      string
	CEFRLevel         string
	TotalQuestions    int
	CurrentQuestion   int
	AnsweredQuestions int
	ProgressRate      float64
	IsCompleted       bool
}

// Orchestrator drives a quiz session from start to completion.
type Orchestrator struct {
	sessions       *Repository
	users          *learning.UserRepository
	logs           *learning.LogRepository
	provider       QuestionProvider
	illustrator    WrongAnswerIllustrator
	rand           *rand.Rand
	totalQuestions int
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(
	sessions *Repository,
	users *learning.UserRepository,
	logs *learning.LogRepository,
	provider QuestionProvider,
	illustrator WrongAnswerIllustrator,
	rng *rand.Rand,
) *Orchestrator {
	return &Orchestrator{
		sessions:       sessions,
		users:          users,
		logs:           logs,
		provider:       provider,
		illustrator:    illustrator,
		rand:           rng,
		totalQuestions: DefaultTotalQuestions,
	}
}

// SetTotalQuestions overrides the number of questions per session.
func (o *Orchestrator) SetTotalQuestions(n int) {
	if n > 0 {
		o.totalQuestions = n
	}
}

// Start creates the user when needed and opens a new session for them.
func (o *Orchestrator) Start(ctx context.Context, username, mode, pos, cefr string) (*Session, *learning.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, fmt.Errorf("username must not be empty")
	}

	user, err := o.users.GetOrCreate(ctx, username)
	if err != nil {
		return nil, nil, fmt.Errorf("users.GetOrCreate > %w", err)
	}
	s, err := o.sessions.Create(ctx, user.ID, mode, pos, cefr, o.totalQuestions)
	if err != nil {
		return nil, nil, fmt.Errorf("sessions.Create > %w", err)
	}
	slog.Default().Info("started session",
		"session_id", s.ID, "username", username, "mode", s.Mode, "pos", s.PartOfSpeech, "cefr", s.CEFRLevel)
	return s, user, nil
}

// GetCurrentQuestion picks the next question of the session. In review mode
// previously answered questions are preferred, wrong answers first; when
// none are left, or in learning mode, a fresh question is generated.
// Returns nil when no question can be produced or the session is done.
func (o *Orchestrator) GetCurrentQuestion(ctx context.Context, sessionID string) (*QuestionView, error) {
	s, err := o.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.IsCompleted || s.CurrentQuestion >= s.TotalQuestions {
		return nil, nil
	}

	answered, err := o.logs.AnsweredQuestionIDs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("logs.AnsweredQuestionIDs > %w", err)
	}

	var q *question.Question
	var choices []string
	if s.Mode == ModeReview {
		q, choices, err = o.pickReviewQuestion(ctx, s, answered)
		if err != nil {
			return nil, err
		}
	}
	if q == nil {
		q, err = o.provider.GetOrGenerate(ctx, s.PartOfSpeech, s.CEFRLevel, answered, true)
		if err != nil {
			return nil, fmt.Errorf("provider.GetOrGenerate > %w", err)
		}
		if q == nil {
			return nil, nil
		}
		q, choices, err = o.provider.GetQuestionByID(ctx, q.ID)
		if err != nil {
			return nil, fmt.Errorf("provider.GetQuestionByID > %w", err)
		}
		if q == nil {
			return nil, nil
		}
	}

	return &QuestionView{
		Question:       q,
		Choices:        choices,
		QuestionNumber: s.CurrentQuestion + 1,
		TotalQuestions: s.TotalQuestions,
		Mode:           s.Mode,
	}, nil
}

// pickReviewQuestion chooses a weighted-random question among the user's
// unanswered review candidates, preferring previously missed ones. Returns
// nil when there are none left.
func (o *Orchestrator) pickReviewQuestion(ctx context.Context, s *Session, answered []int64) (*question.Question, []string, error) {
	candidates, err := o.logs.ReviewCandidates(ctx, s.UserID, reviewCandidateLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("logs.ReviewCandidates > %w", err)
	}

	answeredSet := make(map[int64]struct{}, len(answered))
	for _, qid := range answered {
		answeredSet[qid] = struct{}{}
	}
	var missed, rest []learning.ReviewCandidate
	for _, candidate := range candidates {
		if _, ok := answeredSet[candidate.QuestionID]; ok {
			continue
		}
		if candidate.IsCorrect {
			rest = append(rest, candidate)
		} else {
			missed = append(missed, candidate)
		}
	}
	if len(missed) == 0 && len(rest) == 0 {
		return nil, nil, nil
	}

	picked := o.weightedReviewPick(missed, rest)
	q, choices, err := o.provider.GetQuestionByID(ctx, picked.QuestionID)
	if err != nil {
		return nil, nil, fmt.Errorf("provider.GetQuestionByID > %w", err)
	}
	return q, choices, nil
}

// weightedReviewPick samples one candidate, counting each missed question
// reviewMissWeight times so misses come up more often than correct ones.
func (o *Orchestrator) weightedReviewPick(missed, rest []learning.ReviewCandidate) learning.ReviewCandidate {
	n := o.rand.Intn(len(missed)*reviewMissWeight + len(rest))
	if n < len(missed)*reviewMissWeight {
		return missed[n/reviewMissWeight]
	}
	return rest[n-len(missed)*reviewMissWeight]
}

// ProcessUserAnswer grades the answer, generates the wrong-answer image
// when needed, records the learning log, and advances the session. The log
// and the progress update happen regardless of image generation failures.
func (o *Orchestrator) ProcessUserAnswer(ctx context.Context, sessionID string, qid int64, userAnswer string) (*Feedback, error) {
	s, err := o.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	q, _, err := o.provider.GetQuestionByID(ctx, qid)
	if err != nil {
		return nil, fmt.Errorf("provider.GetQuestionByID > %w", err)
	}
	if q == nil {
		return nil, fmt.Errorf("question %d not found", qid)
	}

	userAnswer = strings.TrimSpace(userAnswer)
	isCorrect := strings.EqualFold(userAnswer, strings.TrimSpace(q.Answer))

	feedback := &Feedback{
		QuestionID:      qid,
		IsCorrect:       isCorrect,
		UserAnswer:      userAnswer,
		OriginalCaption: q.Caption,
		ImageID:         q.ImageID,
	}
	if isCorrect {
		feedback.CorrectAnswer = q.Answer
		feedback.ShowCorrectAnswer = true
		feedback.CompletedSentence = question.CompleteSentence(q.BlankedTokens, q.Answer)
	} else {
		feedback.ShowCorrectAnswer = false
		feedback.CompletedSentence = question.CompleteSentence(q.BlankedTokens, userAnswer)
		imagePath, err := o.illustrator.GetOrGenerate(ctx, qid, q, userAnswer, false)
		if err != nil {
			// The quiz continues without the image.
			slog.Default().Error("failed to generate wrong answer image",
				"qid", qid, "wrong_choice", userAnswer, "error", err)
		} else if imagePath != "" {
			feedback.GeneratedImage = imagePath
			feedback.ImageAvailable = true
		}
	}

	log := &learning.Log{
		UserID:         s.UserID,
		QuestionID:     qid,
		SelectedChoice: userAnswer,
		IsCorrect:      isCorrect,
		SessionID:      sessionID,
	}
	if feedback.GeneratedImage != "" {
		log.ImagePath = sql.NullString{String: feedback.GeneratedImage, Valid: true}
	}
	if err := o.logs.Create(ctx, log); err != nil {
		return nil, fmt.Errorf("logs.Create > %w", err)
	}
	if err := o.sessions.AdvanceProgress(ctx, sessionID); err != nil {
		return nil, fmt.Errorf("sessions.AdvanceProgress > %w", err)
	}
	return feedback, nil
}

// CheckCompletion reports whether the session is done, marking it completed
// once all questions are answered.
func (o *Orchestrator) CheckCompletion(ctx context.Context, sessionID string) (bool, error) {
	s, err := o.sessions.Find(ctx, sessionID)
	if err != nil {
		return false, err
	}
	if s.IsCompleted {
		return true, nil
	}
	if s.CurrentQuestion >= s.TotalQuestions {
		if err := o.sessions.Complete(ctx, sessionID); err != nil {
			return false, fmt.Errorf("sessions.Complete > %w", err)
		}
		return true, nil
	}
	return false, nil
}

// Summary returns the session's progress.
func (o *Orchestrator) Summary(ctx context.Context, sessionID string) (*Summary, error) {
	s, err := o.sessions.Find(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answered, err := o.logs.AnsweredQuestionIDs(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("logs.AnsweredQuestionIDs > %w", err)
	}

	return &Summary{
		SessionID:         s.ID,
		UserID:            s.UserID,
		Mode:              s.Mode,
		PartOfSpeech:      s.PartOfSpeech,
		CEFRLevel:         s.CEFRLevel,
		TotalQuestions:    s.TotalQuestions,
		CurrentQuestion:   s.CurrentQuestion,
		AnsweredQuestions: len(answered),
		ProgressRate:      s.ProgressRate(),
		IsCompleted:       s.IsCompleted,
	}, nil
}

// UserStatistics returns the lifetime statistics of the session's user.
func (o *Orchestrator) UserStatistics(ctx context.Context, userID int64) (learning.Statistics, error) {
	return o.logs.UserStatistics(ctx, userID)
}

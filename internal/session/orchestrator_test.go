package session

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ymatsuda/vocapix/internal/learning"
	mock_session "github.com/ymatsuda/vocapix/internal/mocks/session"
	"github.com/ymatsuda/vocapix/internal/question"
)

type orchestratorFixture struct {
	db           *sqlx.DB
	sessions     *Repository
	logs         *learning.LogRepository
	provider     *mock_session.MockQuestionProvider
	illustrator  *mock_session.MockWrongAnswerIllustrator
	orchestrator *Orchestrator
	user         *learning.User
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	db := newTestDB(t)
	ctrl := gomock.NewController(t)

	f := &orchestratorFixture{
		db:          db,
		sessions:    NewRepository(db),
		logs:        learning.NewLogRepository(db),
		provider:    mock_session.NewMockQuestionProvider(ctrl),
		illustrator: mock_session.NewMockWrongAnswerIllustrator(ctrl),
		user:        newTestUser(t, db, "alice"),
	}
	f.orchestrator = NewOrchestrator(
		f.sessions,
		learning.NewUserRepository(db),
		f.logs,
		f.provider,
		f.illustrator,
		rand.New(rand.NewSource(1)),
	)
	return f
}

// insertQuestion stores a real question row so learning logs can reference
// it.
func (f *orchestratorFixture) insertQuestion(t *testing.T, lemma string) *question.Question {
	t.Helper()
	q := &question.Question{
		ImageID:       "42",
		CaptionID:     "100",
		Caption:       "A " + lemma + " sitting on a table.",
		Lemma:         lemma,
		PartOfSpeech:  "noun",
		CEFRLevel:     "A1",
		Answer:        lemma,
		BlankedTokens: question.TokenList{"A", question.Placeholder, "sitting", "on", "a", "table", "."},
	}
	require.NoError(t, question.NewRepository(f.db).Save(context.Background(), q))
	return q
}

func TestOrchestrator_Start(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture(t)

	s, user, err := f.orchestrator.Start(ctx, "bob", ModeLearning, "noun", "A1")
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)
	assert.Equal(t, user.ID, s.UserID)
	assert.Equal(t, DefaultTotalQuestions, s.TotalQuestions)

	t.Run("empty username is rejected", func(t *testing.T) {
		_, _, err := f.orchestrator.Start(ctx, "   ", ModeLearning, "noun", "A1")
		assert.Error(t, err)
	})
}

func TestOrchestrator_GetCurrentQuestion(t *testing.T) {
	ctx := context.Background()

	t.Run("learning mode generates a fresh question", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)

		q := f.insertQuestion(t, "cat")
		f.provider.EXPECT().
			GetOrGenerate(gomock.Any(), "noun", "A1", gomock.Any(), true).
			Return(q, nil)
		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), q.ID).
			Return(q, []string{"dog", "cat", "hat"}, nil)

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, q.ID, view.Question.ID)
		assert.Equal(t, []string{"dog", "cat", "hat"}, view.Choices)
		assert.Equal(t, 1, view.QuestionNumber)
		assert.Equal(t, 10, view.TotalQuestions)
		assert.Equal(t, ModeLearning, view.Mode)
	})

	t.Run("review mode picks a previously answered question", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeReview, "noun", "A1", 10)
		require.NoError(t, err)

		wrong := f.insertQuestion(t, "dog")
		require.NoError(t, f.logs.Create(ctx, &learning.Log{
			UserID: f.user.ID, QuestionID: wrong.ID, SelectedChoice: "bird",
			IsCorrect: false, SessionID: "earlier-session",
		}))

		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), wrong.ID).
			Return(wrong, []string{"dog", "cat", "hat"}, nil)

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, wrong.ID, view.Question.ID)
		assert.Equal(t, ModeReview, view.Mode)
	})

	t.Run("review mode without history falls back to generation", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeReview, "noun", "A1", 10)
		require.NoError(t, err)

		q := f.insertQuestion(t, "cat")
		f.provider.EXPECT().
			GetOrGenerate(gomock.Any(), "noun", "A1", gomock.Any(), true).
			Return(q, nil)
		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), q.ID).
			Return(q, []string{"dog", "cat", "hat"}, nil)

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, q.ID, view.Question.ID)
	})

	t.Run("exhausted vocabulary yields no question", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)

		f.provider.EXPECT().
			GetOrGenerate(gomock.Any(), "noun", "A1", gomock.Any(), true).
			Return(nil, nil)

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("completed session yields no question", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)
		require.NoError(t, f.sessions.Complete(ctx, s.ID))

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("unknown session", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		_, err := f.orchestrator.GetCurrentQuestion(ctx, "no-such-session")
		assert.ErrorIs(t, err, ErrSessionNotFound)
	})
}

func TestOrchestrator_ReviewPrefersMissedQuestions(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture(t)
	s, err := f.sessions.Create(ctx, f.user.ID, ModeReview, "noun", "A1", 10)
	require.NoError(t, err)

	missed := f.insertQuestion(t, "dog")
	require.NoError(t, f.logs.Create(ctx, &learning.Log{
		UserID: f.user.ID, QuestionID: missed.ID, SelectedChoice: "bird",
		IsCorrect: false, SessionID: "earlier-session",
	}))
	var correct []*question.Question
	for _, lemma := range []string{"cat", "sun"} {
		q := f.insertQuestion(t, lemma)
		require.NoError(t, f.logs.Create(ctx, &learning.Log{
			UserID: f.user.ID, QuestionID: q.ID, SelectedChoice: lemma,
			IsCorrect: true, SessionID: "earlier-session",
		}))
		correct = append(correct, q)
	}

	f.provider.EXPECT().
		GetQuestionByID(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, qid int64) (*question.Question, []string, error) {
			return &question.Question{ID: qid}, []string{"dog", "cat", "sun"}, nil
		}).
		AnyTimes()

	const trials = 3000
	counts := map[int64]int{}
	for i := 0; i < trials; i++ {
		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		counts[view.Question.ID]++
	}

	assert.Greater(t, counts[missed.ID], counts[correct[0].ID])
	assert.Greater(t, counts[missed.ID], counts[correct[1].ID])
	// The missed question carries 3 of the 5 sampling weights.
	assert.InDelta(t, trials*3/5, counts[missed.ID], float64(trials)*0.1)
}

func TestOrchestrator_ProcessUserAnswer(t *testing.T) {
	ctx := context.Background()

	t.Run("correct answer", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)
		q := f.insertQuestion(t, "cat")

		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), q.ID).
			Return(q, []string{"dog", "cat", "hat"}, nil)

		feedback, err := f.orchestrator.ProcessUserAnswer(ctx, s.ID, q.ID, " Cat ")
		require.NoError(t, err)
		assert.True(t, feedback.IsCorrect)
		assert.True(t, feedback.ShowCorrectAnswer)
		assert.Equal(t, "cat", feedback.CorrectAnswer)
		assert.Equal(t, "A cat sitting on a table.", feedback.CompletedSentence)
		assert.Empty(t, feedback.GeneratedImage)

		qids, err := f.logs.AnsweredQuestionIDs(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, []int64{q.ID}, qids)

		found, err := f.sessions.Find(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.CurrentQuestion)
	})

	t.Run("wrong answer generates an image and withholds the answer", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)
		q := f.insertQuestion(t, "cat")

		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), q.ID).
			Return(q, []string{"dog", "cat", "hat"}, nil)
		f.illustrator.EXPECT().
			GetOrGenerate(gomock.Any(), q.ID, q, "dog", false).
			Return("qid_1/d3_q1_ansabc123.jpeg", nil)

		feedback, err := f.orchestrator.ProcessUserAnswer(ctx, s.ID, q.ID, "dog")
		require.NoError(t, err)
		assert.False(t, feedback.IsCorrect)
		assert.False(t, feedback.ShowCorrectAnswer)
		assert.Empty(t, feedback.CorrectAnswer)
		assert.Equal(t, "A dog sitting on a table.", feedback.CompletedSentence)
		assert.Equal(t, "qid_1/d3_q1_ansabc123.jpeg", feedback.GeneratedImage)
		assert.True(t, feedback.ImageAvailable)

		history, err := f.logs.History(ctx, f.user.ID, 10)
		require.NoError(t, err)
		require.Len(t, history, 1)
		assert.False(t, history[0].IsCorrect)
		assert.Equal(t, "qid_1/d3_q1_ansabc123.jpeg", history[0].ImagePath.String)
	})

	t.Run("image generation failure still logs and advances", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)
		q := f.insertQuestion(t, "cat")

		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), q.ID).
			Return(q, []string{"dog", "cat", "hat"}, nil)
		f.illustrator.EXPECT().
			GetOrGenerate(gomock.Any(), q.ID, q, "dog", false).
			Return("", fmt.Errorf("response error 500: overloaded"))

		feedback, err := f.orchestrator.ProcessUserAnswer(ctx, s.ID, q.ID, "dog")
		require.NoError(t, err)
		assert.False(t, feedback.IsCorrect)
		assert.Empty(t, feedback.GeneratedImage)
		assert.False(t, feedback.ImageAvailable)

		found, err := f.sessions.Find(ctx, s.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, found.CurrentQuestion)
	})

	t.Run("unknown question", func(t *testing.T) {
		f := newOrchestratorFixture(t)
		s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 10)
		require.NoError(t, err)

		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), int64(9999)).
			Return(nil, nil, nil)

		_, err = f.orchestrator.ProcessUserAnswer(ctx, s.ID, 9999, "cat")
		assert.Error(t, err)
	})
}

func TestOrchestrator_SessionLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newOrchestratorFixture(t)
	s, err := f.sessions.Create(ctx, f.user.ID, ModeLearning, "noun", "A1", 3)
	require.NoError(t, err)

	lemmas := []string{"cat", "dog", "bird"}
	for i, lemma := range lemmas {
		done, err := f.orchestrator.CheckCompletion(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, done)

		q := f.insertQuestion(t, lemma)
		f.provider.EXPECT().
			GetOrGenerate(gomock.Any(), "noun", "A1", gomock.Any(), true).
			Return(q, nil)
		f.provider.EXPECT().
			GetQuestionByID(gomock.Any(), q.ID).
			Return(q, []string{lemma, "hat", "sun"}, nil).
			Times(2)

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		require.NotNil(t, view)
		assert.Equal(t, i+1, view.QuestionNumber)

		_, err = f.orchestrator.ProcessUserAnswer(ctx, s.ID, q.ID, lemma)
		require.NoError(t, err)
	}

	done, err := f.orchestrator.CheckCompletion(ctx, s.ID)
	require.NoError(t, err)
	assert.True(t, done)

	summary, err := f.orchestrator.Summary(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, summary.CurrentQuestion)
	assert.Equal(t, 3, summary.AnsweredQuestions)
	assert.InDelta(t, 100.0, summary.ProgressRate, 1e-9)
	assert.True(t, summary.IsCompleted)

	t.Run("completion is sticky", func(t *testing.T) {
		done, err := f.orchestrator.CheckCompletion(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, done)

		view, err := f.orchestrator.GetCurrentQuestion(ctx, s.ID)
		require.NoError(t, err)
		assert.Nil(t, view)
	})

	t.Run("user statistics reflect the session", func(t *testing.T) {
		stats, err := f.orchestrator.UserStatistics(ctx, f.user.ID)
		require.NoError(t, err)
		assert.Equal(t, 3, stats.TotalAnswers)
		assert.Equal(t, 3, stats.CorrectAnswers)
		assert.Equal(t, 1, stats.TotalSessions)
	})
}

package server

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ymatsuda/vocapix/internal/learning"
	"github.com/ymatsuda/vocapix/internal/session"
)

type startLearningRequest struct {
	Username     string `json:"username" binding:"required"`
	Mode         string `json:"mode"`
	PartOfSpeech string `json:"pos"`
	CEFRLevel    string `json:"cefr"`
}

type answerRequest struct {
	QuestionID int64  `json:"qid" binding:"required"`
	Choice     string `json:"choice" binding:"required"`
}

type questionResponse struct {
	QuestionID     int64    `json:"qid"`
	ImageID        string   `json:"image_id"`
	BlankedTokens  []string `json:"blanked_tokens"`
	Choices        []string `json:"choices"`
	Lemma          string   `json:"lemma"`
	PartOfSpeech   string   `json:"pos"`
	CEFRLevel      string   `json:"cefr"`
	QuestionNumber int      `json:"question_number"`
	TotalQuestions int      `json:"total_questions"`
	Mode           string   `json:"mode"`
}

type feedbackResponse struct {
	QuestionID        int64  `json:"qid"`
	IsCorrect         bool   `json:"is_correct"`
	UserAnswer        string `json:"user_answer"`
	CorrectAnswer     string `json:"correct_answer,omitempty"`
	ShowCorrectAnswer bool   `json:"show_correct_answer"`
	CompletedSentence string `json:"completed_sentence"`
	OriginalCaption   string `json:"original_caption"`
	ImageID           string `json:"image_id"`
	GeneratedImage    string `json:"generated_image,omitempty"`
	ImageAvailable    bool   `json:"image_available"`
}

type summaryResponse struct {
	SessionID         string  `json:"session_id"`
	Mode              string  `json:"mode"`
	PartOfSpeech      string  `json:"pos"`
	CEFRLevel         string  `json:"cefr"`
	TotalQuestions    int     `json:"total_questions"`
	CurrentQuestion   int     `json:"current_question"`
	AnsweredQuestions int     `json:"answered_questions"`
	ProgressRate      float64 `json:"progress_rate"`
	IsCompleted       bool    `json:"is_completed"`
}

type statisticsResponse struct {
	TotalAnswers   int                   `json:"total_answers"`
	CorrectAnswers int                   `json:"correct_answers"`
	Accuracy       float64               `json:"accuracy"`
	TotalSessions  int                   `json:"total_sessions"`
	ByCEFRLevel    []learning.GroupStats `json:"by_cefr_level"`
	ByPartOfSpeech []learning.GroupStats `json:"by_pos"`
}

func newFeedbackResponse(f *session.Feedback) feedbackResponse {
	return feedbackResponse{
		QuestionID:        f.QuestionID,
		IsCorrect:         f.IsCorrect,
		UserAnswer:        f.UserAnswer,
		CorrectAnswer:     f.CorrectAnswer,
		ShowCorrectAnswer: f.ShowCorrectAnswer,
		CompletedSentence: f.CompletedSentence,
		OriginalCaption:   f.OriginalCaption,
		ImageID:           f.ImageID,
		GeneratedImage:    f.GeneratedImage,
		ImageAvailable:    f.ImageAvailable,
	}
}

func newSummaryResponse(s *session.Summary) summaryResponse {
	return summaryResponse{
		SessionID:         s.SessionID,
		Mode:              s.Mode,
		PartOfSpeech:      s.PartOfSpeech,
		CEFRLevel:         s.CEFRLevel,
		TotalQuestions:    s.TotalQuestions,
		CurrentQuestion:   s.CurrentQuestion,
		AnsweredQuestions: s.AnsweredQuestions,
		ProgressRate:      s.ProgressRate,
		IsCompleted:       s.IsCompleted,
	}
}

func newStatisticsResponse(stats learning.Statistics) statisticsResponse {
	return statisticsResponse{
		TotalAnswers:   stats.TotalAnswers,
		CorrectAnswers: stats.CorrectAnswers,
		Accuracy:       stats.Accuracy(),
		TotalSessions:  stats.TotalSessions,
		ByCEFRLevel:    stats.ByCEFRLevel,
		ByPartOfSpeech: stats.ByPartOfSpeech,
	}
}

func (s *Server) handleCriteria(c *gin.Context) {
	c.JSON(http.StatusOK, s.corpus.AvailableCriteria())
}

func (s *Server) handleStartLearning(c *gin.Context) {
	var req startLearningRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}

	sess, user, err := s.orchestrator.Start(c.Request.Context(), req.Username, req.Mode, req.PartOfSpeech, req.CEFRLevel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.setSessionCookie(c, sess.ID)

	c.JSON(http.StatusOK, gin.H{
		"session_id": sess.ID,
		"username":   user.Username,
		"mode":       sess.Mode,
		"pos":        sess.PartOfSpeech,
		"cefr":       sess.CEFRLevel,
	})
}

func (s *Server) handleQuestion(c *gin.Context) {
	sessionID, ok := s.sessionID(c)
	if !ok {
		return
	}

	completed, err := s.orchestrator.CheckCompletion(c.Request.Context(), sessionID)
	if err != nil {
		s.sessionError(c, err)
		return
	}
	if completed {
		c.JSON(http.StatusOK, gin.H{"session_completed": true})
		return
	}

	view, err := s.orchestrator.GetCurrentQuestion(c.Request.Context(), sessionID)
	if err != nil {
		s.sessionError(c, err)
		return
	}
	if view == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no question available for the selected criteria"})
		return
	}

	c.JSON(http.StatusOK, questionResponse{
		QuestionID:     view.Question.ID,
		ImageID:        view.Question.ImageID,
		BlankedTokens:  view.Question.BlankedTokens,
		Choices:        view.Choices,
		Lemma:          view.Question.Lemma,
		PartOfSpeech:   view.Question.PartOfSpeech,
		CEFRLevel:      view.Question.CEFRLevel,
		QuestionNumber: view.QuestionNumber,
		TotalQuestions: view.TotalQuestions,
		Mode:           view.Mode,
	})
}

func (s *Server) handleAnswer(c *gin.Context) {
	sessionID, ok := s.sessionID(c)
	if !ok {
		return
	}
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "qid and choice are required"})
		return
	}

	feedback, err := s.orchestrator.ProcessUserAnswer(c.Request.Context(), sessionID, req.QuestionID, req.Choice)
	if err != nil {
		s.sessionError(c, err)
		return
	}
	s.mu.Lock()
	s.lastFeedback[sessionID] = feedback
	s.mu.Unlock()

	c.JSON(http.StatusOK, newFeedbackResponse(feedback))
}

// handleResult re-serves the feedback of the session's latest answer.
// Without one the learner is sent back to the start.
func (s *Server) handleResult(c *gin.Context) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie == "" {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	s.mu.Lock()
	feedback, ok := s.lastFeedback[cookie]
	s.mu.Unlock()
	if !ok {
		c.Redirect(http.StatusFound, "/login")
		return
	}
	c.JSON(http.StatusOK, newFeedbackResponse(feedback))
}

func (s *Server) handleNextQuestion(c *gin.Context) {
	sessionID, ok := s.sessionID(c)
	if !ok {
		return
	}
	completed, err := s.orchestrator.CheckCompletion(c.Request.Context(), sessionID)
	if err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"session_completed": completed})
}

func (s *Server) handleSessionStatus(c *gin.Context) {
	sessionID, ok := s.sessionID(c)
	if !ok {
		return
	}
	summary, err := s.orchestrator.Summary(c.Request.Context(), sessionID)
	if err != nil {
		s.sessionError(c, err)
		return
	}
	c.JSON(http.StatusOK, newSummaryResponse(summary))
}

func (s *Server) handleSessionComplete(c *gin.Context) {
	sessionID, ok := s.sessionID(c)
	if !ok {
		return
	}
	summary, err := s.orchestrator.Summary(c.Request.Context(), sessionID)
	if err != nil {
		s.sessionError(c, err)
		return
	}
	stats, err := s.orchestrator.UserStatistics(c.Request.Context(), summary.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"session":    newSummaryResponse(summary),
		"statistics": newStatisticsResponse(stats),
	})
}

func (s *Server) handleUserStats(c *gin.Context) {
	username := c.Param("username")
	user, err := s.users.FindByUsername(c.Request.Context(), username)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": fmt.Sprintf("user %s not found", username)})
		return
	}
	stats, err := s.logs.UserStatistics(c.Request.Context(), user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"username":   user.Username,
		"statistics": newStatisticsResponse(stats),
	})
}

func (s *Server) handleStats(c *gin.Context) {
	images, err := s.illustrator.DiskStats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read image statistics"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"corpus": s.corpus.Stats(),
		"images": gin.H{
			"total_images":     images.TotalImages,
			"total_size_bytes": images.TotalSizeBytes,
		},
	})
}

// handleGeneratedImage serves wrong-answer images from the output
// directory. The cleaned path must stay inside it.
func (s *Server) handleGeneratedImage(c *gin.Context) {
	relative := strings.TrimPrefix(c.Param("filepath"), "/")
	cleaned := filepath.Clean(relative)
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image path"})
		return
	}
	c.File(filepath.Join(s.config.ImageDirectory, cleaned))
}

// handleStaticImage serves the original caption images, which are stored
// as zero-padded twelve digit ids.
func (s *Server) handleStaticImage(c *gin.Context) {
	imageID := c.Param("image_id")
	for _, r := range imageID {
		if r < '0' || r > '9' {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
			return
		}
	}
	var id int64
	if _, err := fmt.Sscanf(imageID, "%d", &id); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image id"})
		return
	}
	c.File(filepath.Join(s.config.StaticImageDirectory, fmt.Sprintf("%012d.jpg", id)))
}

func (s *Server) setSessionCookie(c *gin.Context, sessionID string) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     sessionCookie,
		Value:    sessionID,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.config.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// sessionID extracts the session cookie, writing the error response when
// it is missing.
func (s *Server) sessionID(c *gin.Context) (string, bool) {
	cookie, err := c.Cookie(sessionCookie)
	if err != nil || cookie == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no active session"})
		return "", false
	}
	return cookie, true
}

func (s *Server) sessionError(c *gin.Context, err error) {
	if errors.Is(err, session.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
}

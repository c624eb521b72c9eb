// Package server exposes the quiz over HTTP as a JSON API plus image
// endpoints for a browser frontend.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/illustrator"
	"github.com/ymatsuda/vocapix/internal/learning"
	"github.com/ymatsuda/vocapix/internal/session"
)

// sessionCookie carries the quiz session id between requests.
const sessionCookie = "vocapix_session"

// Config holds the server settings.
type Config struct {
	Port                 int
	AllowedOrigins       []string
	SecureCookies        bool
	ImageDirectory       string
	StaticImageDirectory string
}

// Server serves the quiz API.
type Server struct {
	config       Config
	engine       *gin.Engine
	orchestrator *session.Orchestrator
	users        *learning.UserRepository
	logs         *learning.LogRepository
	corpus       *corpus.Corpus
	illustrator  *illustrator.Illustrator

	// lastFeedback keeps each session's most recent graded answer so the
	// result page can re-render it.
	mu           sync.Mutex
	lastFeedback map[string]*session.Feedback
}

// New creates a Server and registers its routes.
func New(
	config Config,
	orchestrator *session.Orchestrator,
	users *learning.UserRepository,
	logs *learning.LogRepository,
	c *corpus.Corpus,
	il *illustrator.Illustrator,
) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())
	engine.Use(cors.New(cors.Config{
		AllowOrigins:     config.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	s := &Server{
		config:       config,
		engine:       engine,
		orchestrator: orchestrator,
		users:        users,
		logs:         logs,
		corpus:       c,
		illustrator:  il,
		lastFeedback: make(map[string]*session.Feedback),
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	s.engine.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, "/login") })
	s.engine.GET("/login", s.handleCriteria)
	s.engine.POST("/start_learning", s.handleStartLearning)
	s.engine.GET("/question", s.handleQuestion)
	s.engine.POST("/answer", s.handleAnswer)
	s.engine.GET("/result", s.handleResult)
	s.engine.POST("/next_question", s.handleNextQuestion)
	s.engine.GET("/session_complete", s.handleSessionComplete)

	api := s.engine.Group("/api")
	{
		api.GET("/criteria", s.handleCriteria)
		api.POST("/start_learning", s.handleStartLearning)
		api.GET("/question", s.handleQuestion)
		api.POST("/answer", s.handleAnswer)
		api.POST("/next_question", s.handleNextQuestion)
		api.GET("/session_status", s.handleSessionStatus)
		api.GET("/session_complete", s.handleSessionComplete)
		api.GET("/user_stats/:username", s.handleUserStats)
		api.GET("/stats", s.handleStats)
	}

	s.engine.GET("/images/*filepath", s.handleGeneratedImage)
	s.engine.GET("/static_images/:image_id", s.handleStaticImage)
}

// requestLogger logs each request with slog.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Default().Info("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Default().Info("server listening", "port", s.config.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("httpServer.Shutdown > %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("httpServer.ListenAndServe > %w", err)
		}
		return nil
	}
}

// Handler exposes the routing tree, used by tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

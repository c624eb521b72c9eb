package main

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/ymatsuda/vocapix/internal/choice"
	"github.com/ymatsuda/vocapix/internal/config"
	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/database"
	"github.com/ymatsuda/vocapix/internal/illustrator"
	"github.com/ymatsuda/vocapix/internal/illustrator/openai"
	"github.com/ymatsuda/vocapix/internal/learning"
	"github.com/ymatsuda/vocapix/internal/nlp"
	"github.com/ymatsuda/vocapix/internal/question"
	"github.com/ymatsuda/vocapix/internal/session"
)

func loadConfig() (*config.Config, error) {
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

func loadCorpus(cfg *config.Config) (*corpus.Corpus, error) {
	if cfg.Corpus.VocabularyFile == "" || cfg.Corpus.CaptionFile == "" {
		return nil, fmt.Errorf("corpus.vocabulary_file and corpus.caption_file must be configured")
	}
	c, err := corpus.Load(cfg.Corpus.VocabularyFile, cfg.Corpus.CaptionFile)
	if err != nil {
		return nil, fmt.Errorf("corpus.Load() > %w", err)
	}
	return c, nil
}

func openDatabase(cfg *config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("database.Open() > %w", err)
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database.Migrate() > %w", err)
	}
	return db, nil
}

// quizStack holds the assembled components behind a quiz session.
type quizStack struct {
	orchestrator *session.Orchestrator
	illustrator  *illustrator.Illustrator
	users        *learning.UserRepository
	logs         *learning.LogRepository
	sessions     *session.Repository
}

func buildQuizStack(cfg *config.Config, c *corpus.Corpus, db *sqlx.DB) (*quizStack, error) {
	tokenizer, err := nlp.NewProseTokenizer()
	if err != nil {
		return nil, fmt.Errorf("nlp.NewProseTokenizer() > %w", err)
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	selector := choice.NewSelector(c, choice.NewRepository(db), rng)
	synthesizer := question.NewSynthesizer(c, tokenizer, question.NewRepository(db), selector, rng)

	imageAPI := openai.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.RetryAttempts,
		time.Duration(cfg.OpenAI.MinIntervalSeconds)*time.Second,
	)
	saver := illustrator.NewImageSaver(time.Duration(cfg.Images.DownloadTimeoutSeconds) * time.Second)
	il := illustrator.New(imageAPI, illustrator.NewRepository(db), saver, cfg.Images.OutputDirectory)

	users := learning.NewUserRepository(db)
	logs := learning.NewLogRepository(db)
	sessions := session.NewRepository(db)
	orchestrator := session.NewOrchestrator(sessions, users, logs, synthesizer, il, rng)
	orchestrator.SetTotalQuestions(cfg.Quiz.QuestionsPerSession)

	return &quizStack{
		orchestrator: orchestrator,
		illustrator:  il,
		users:        users,
		logs:         logs,
		sessions:     sessions,
	}, nil
}

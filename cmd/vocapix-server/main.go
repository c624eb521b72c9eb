package main

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/ymatsuda/vocapix/internal/bootstrap"
	"github.com/ymatsuda/vocapix/internal/choice"
	"github.com/ymatsuda/vocapix/internal/config"
	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/database"
	"github.com/ymatsuda/vocapix/internal/illustrator"
	"github.com/ymatsuda/vocapix/internal/illustrator/openai"
	"github.com/ymatsuda/vocapix/internal/learning"
	"github.com/ymatsuda/vocapix/internal/nlp"
	"github.com/ymatsuda/vocapix/internal/question"
	"github.com/ymatsuda/vocapix/internal/server"
	"github.com/ymatsuda/vocapix/internal/session"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig() > %w", err)
	}
	if cfg.OpenAI.APIKey == "" {
		return fmt.Errorf("OPENAI_API_KEY environment variable is required")
	}
	if cfg.Corpus.VocabularyFile == "" || cfg.Corpus.CaptionFile == "" {
		return fmt.Errorf("corpus.vocabulary_file and corpus.caption_file must be configured")
	}

	c, err := corpus.Load(cfg.Corpus.VocabularyFile, cfg.Corpus.CaptionFile)
	if err != nil {
		return fmt.Errorf("corpus.Load() > %w", err)
	}

	app := bootstrap.New()

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("database.Open() > %w", err)
	}
	app.AddCloser(db)
	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("database.Migrate() > %w", err)
	}

	tokenizer, err := nlp.NewProseTokenizer()
	if err != nil {
		return fmt.Errorf("nlp.NewProseTokenizer() > %w", err)
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
	orchestrator := session.NewOrchestrator(session.NewRepository(db), users, logs, synthesizer, il, rng)
	orchestrator.SetTotalQuestions(cfg.Quiz.QuestionsPerSession)

	srv := server.New(server.Config{
		Port:                 cfg.Server.Port,
		AllowedOrigins:       cfg.Server.CORS.AllowedOrigins,
		ImageDirectory:       cfg.Images.OutputDirectory,
		StaticImageDirectory: cfg.Corpus.StaticImageDirectory,
	}, orchestrator, users, logs, c, il)

	return app.Run(context.Background(), srv.Run)
}

func loadConfig() (*config.Config, error) {
	configFile := os.Getenv("VOCAPIX_CONFIG")
	loader, err := config.NewConfigLoader(configFile)
	if err != nil {
		return nil, fmt.Errorf("config.NewConfigLoader() > %w", err)
	}
	return loader.Load()
}

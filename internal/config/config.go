// Package config loads and validates the application configuration from a
// YAML file and environment variables.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Corpus   CorpusConfig   `mapstructure:"corpus"`
	Database DatabaseConfig `mapstructure:"database"`
	Images   ImagesConfig   `mapstructure:"images"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Quiz     QuizConfig     `mapstructure:"quiz"`
}

type ServerConfig struct {
	Port int        `mapstructure:"port"`
	CORS CORSConfig `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type CorpusConfig struct {
	VocabularyFile string `mapstructure:"vocabulary_file" validate:"omitempty,file"`
	CaptionFile    string `mapstructure:"caption_file" validate:"omitempty,file"`
	// StaticImageDirectory holds the source photographs referenced by
	// caption image ids.
	StaticImageDirectory string `mapstructure:"static_image_directory"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type ImagesConfig struct {
	OutputDirectory        string `mapstructure:"output_directory"`
	DownloadTimeoutSeconds int    `mapstructure:"download_timeout_seconds"`
}

type OpenAIConfig struct {
	APIKey             string `mapstructure:"api_key"`
	RetryAttempts      uint   `mapstructure:"retry_attempts"`
	MinIntervalSeconds int    `mapstructure:"min_interval_seconds"`
}

type QuizConfig struct {
	QuestionsPerSession  int `mapstructure:"questions_per_session"`
	SessionRetentionDays int `mapstructure:"session_retention_days"`
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
}

func NewConfigLoader(configFile string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/vocapix")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	v := loader.viper

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})
	// The corpus files have no usable defaults; they stay empty until the
	// deployment points at real data.
	v.SetDefault("corpus.vocabulary_file", "")
	v.SetDefault("corpus.caption_file", "")
	v.SetDefault("corpus.static_image_directory", filepath.Join("data", "images"))
	v.SetDefault("database.path", "vocabulary_learning.db")
	v.SetDefault("images.output_directory", "generated_images")
	v.SetDefault("images.download_timeout_seconds", 20)
	v.SetDefault("openai.retry_attempts", 1)
	v.SetDefault("openai.min_interval_seconds", 1)
	v.SetDefault("quiz.questions_per_session", 10)
	v.SetDefault("quiz.session_retention_days", 30)

	// OPENAI_API_KEY overrides an api_key set in the config file.
	if err := v.BindEnv("openai.api_key", "OPENAI_API_KEY"); err != nil {
		return nil, fmt.Errorf("failed to bind OPENAI_API_KEY environment variable: %w", err)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}

	if err := loader.validator.Struct(cfg); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

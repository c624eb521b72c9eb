package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymatsuda/vocapix/internal/config"
	"github.com/ymatsuda/vocapix/internal/corpus"
)

func TestSetupTestConfig(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfgPath := SetupTestConfig(t, t.TempDir())

	loader, err := config.NewConfigLoader(cfgPath)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)

	c, err := corpus.Load(cfg.Corpus.VocabularyFile, cfg.Corpus.CaptionFile)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Size())
	assert.Empty(t, cfg.OpenAI.APIKey)
}

func TestSetupTestConfigWithAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	cfgPath := SetupTestConfigWithAPIKey(t, t.TempDir())

	loader, err := config.NewConfigLoader(cfgPath)
	require.NoError(t, err)
	cfg, err := loader.Load()
	require.NoError(t, err)
	assert.Equal(t, "fake-key-for-testing", cfg.OpenAI.APIKey)
}

// Package testutil provides shared test helpers for creating config files and corpus fixtures.
package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestVocabularyCSV is a small vocabulary covering two parts of speech and
// two CEFR levels.
const TestVocabularyCSV = `Word,POS,CEFR,CaptionID,ImageID
cat,noun,A1,100,1
dog,noun,A1,101,2
bird,noun,A2,102,3
run,verb,A1,103,4
`

// TestCaptionJSON contains the captions referenced by TestVocabularyCSV.
const TestCaptionJSON = `{
  "annotations": [
    {"id": 100, "image_id": 1, "caption": "A cat sitting on a table"},
    {"id": 101, "image_id": 2, "caption": "A dog in the park"},
    {"id": 102, "image_id": 3, "caption": "A bird on a branch"},
    {"id": 103, "image_id": 4, "caption": "A man running on the beach"}
  ]
}`

// CreateCorpusFiles writes the default vocabulary and caption fixtures into
// dir and returns their paths.
func CreateCorpusFiles(t *testing.T, dir string) (string, string) {
	t.Helper()

	vocabPath := filepath.Join(dir, "vocab.csv")
	captionPath := filepath.Join(dir, "captions.json")
	require.NoError(t, os.WriteFile(vocabPath, []byte(TestVocabularyCSV), 0644))
	require.NoError(t, os.WriteFile(captionPath, []byte(TestCaptionJSON), 0644))
	return vocabPath, captionPath
}

// SetupTestConfig creates a config file with corpus fixtures and all
// required directories for testing. Returns the path to the config file.
func SetupTestConfig(t *testing.T, tmpDir string) string {
	t.Helper()

	for _, d := range []string{"images", "static_images"} {
		require.NoError(t, os.MkdirAll(filepath.Join(tmpDir, d), 0755))
	}
	vocabPath, captionPath := CreateCorpusFiles(t, tmpDir)

	configContent := fmt.Sprintf(`corpus:
  vocabulary_file: %s
  caption_file: %s
  static_image_directory: %s
database:
  path: %s
images:
  output_directory: %s
`,
		vocabPath,
		captionPath,
		filepath.Join(tmpDir, "static_images"),
		filepath.Join(tmpDir, "vocapix.db"),
		filepath.Join(tmpDir, "images"),
	)

	cfgPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// SetupTestConfigWithAPIKey creates a config file with a fake OpenAI API key
// for tests that require API key validation to pass.
func SetupTestConfigWithAPIKey(t *testing.T, tmpDir string) string {
	t.Helper()
	cfgPath := SetupTestConfig(t, tmpDir)

	content, err := os.ReadFile(cfgPath)
	require.NoError(t, err)
	content = append(content, []byte("openai:\n  api_key: fake-key-for-testing\n")...)
	require.NoError(t, os.WriteFile(cfgPath, content, 0644))
	return cfgPath
}

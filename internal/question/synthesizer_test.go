package question

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/nlp"
)

// wordTokenizer splits on whitespace, treats trailing punctuation as its own
// token, and lemmatizes by trimming a plural "s".
type wordTokenizer struct{}

func (wordTokenizer) Tokenize(text string) ([]nlp.Token, error) {
	var tokens []nlp.Token
	for _, field := range strings.Fields(text) {
		if trimmed := strings.TrimRight(field, ".,!?"); trimmed != field {
			tokens = append(tokens, newToken(trimmed), nlp.Token{Text: field[len(trimmed):], Lemma: field[len(trimmed):], Tag: "."})
			continue
		}
		tokens = append(tokens, newToken(field))
	}
	return tokens, nil
}

func newToken(text string) nlp.Token {
	lemma := strings.ToLower(text)
	if len(lemma) > 3 {
		lemma = strings.TrimSuffix(lemma, "s")
	}
	return nlp.Token{Text: text, Lemma: lemma, Tag: "NN"}
}

type failingTokenizer struct{}

func (failingTokenizer) Tokenize(string) ([]nlp.Token, error) {
	return nil, fmt.Errorf("model not loaded")
}

// recordingGenerator records choice generation calls per question id.
type recordingGenerator struct {
	calls map[int64]int
}

func newRecordingGenerator() *recordingGenerator {
	return &recordingGenerator{calls: map[int64]int{}}
}

func (g *recordingGenerator) GetOrGenerate(_ context.Context, qid int64, q *Question, _ bool) ([]string, error) {
	g.calls[qid]++
	return []string{q.Answer, "wrong1", "wrong2"}, nil
}

func writeTestCorpus(t *testing.T, vocabRows []string, captions string) *corpus.Corpus {
	t.Helper()
	dir := t.TempDir()
	vocabPath := filepath.Join(dir, "vocab.csv")
	captionPath := filepath.Join(dir, "captions.json")

	contents := "Word,POS,CEFR,CaptionID,ImageID\n" + strings.Join(vocabRows, "\n") + "\n"
	require.NoError(t, os.WriteFile(vocabPath, []byte(contents), 0o644))
	require.NoError(t, os.WriteFile(captionPath, []byte(captions), 0o644))

	c, err := corpus.Load(vocabPath, captionPath)
	require.NoError(t, err)
	return c
}

const testCaptions = `{"annotations": [
	{"id": 100, "image_id": 42, "caption": "Two cats sitting on a table."},
	{"id": 101, "image_id": 43, "caption": "A dog runs in the park."},
	{"id": 102, "image_id": 44, "caption": "A bird flying over water."}
]}`

func newTestSynthesizer(t *testing.T, c *corpus.Corpus, tokenizer nlp.Tokenizer) (*Synthesizer, *recordingGenerator) {
	t.Helper()
	repo := newTestRepository(t)
	generator := newRecordingGenerator()
	return NewSynthesizer(c, tokenizer, repo, generator, rand.New(rand.NewSource(1))), generator
}

func TestSynthesizer_GetOrGenerate(t *testing.T) {
	ctx := context.Background()
	c := writeTestCorpus(t, []string{
		"cat,noun,A1,100,42",
		"dog,noun,A1,101,43",
		"bird,noun,A2,102,44",
	}, testCaptions)

	t.Run("generates a blanked question", func(t *testing.T) {
		s, generator := newTestSynthesizer(t, c, wordTokenizer{})

		q, err := s.GetOrGenerate(ctx, "noun", "A2", nil, false)
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, "bird", q.Lemma)
		assert.Equal(t, "bird", q.Answer)
		assert.Equal(t, TokenList{"A", Placeholder, "flying", "over", "water", "."}, q.BlankedTokens)
		assert.Equal(t, "A bird flying over water.", q.Caption)
		assert.Equal(t, "noun", q.PartOfSpeech)
		assert.Equal(t, "A2", q.CEFRLevel)
		assert.Equal(t, 1, generator.calls[q.ID])
		assert.Equal(t, "A bird flying over water.", CompleteSentence(q.BlankedTokens, q.Answer))
	})

	t.Run("blanks every occurrence and keeps the first surface form", func(t *testing.T) {
		multi := writeTestCorpus(t, []string{"cat,noun,A1,200,50"}, `{"annotations": [
			{"id": 200, "image_id": 50, "caption": "Cats watching other cats."}
		]}`)
		s, _ := newTestSynthesizer(t, multi, wordTokenizer{})

		q, err := s.GetOrGenerate(ctx, "noun", "A1", nil, false)
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, "Cats", q.Answer)
		assert.Equal(t, TokenList{Placeholder, "watching", "other", Placeholder, "."}, q.BlankedTokens)
	})

	t.Run("same natural key reuses the stored question", func(t *testing.T) {
		s, generator := newTestSynthesizer(t, c, wordTokenizer{})

		first, err := s.GetOrGenerate(ctx, "noun", "A2", nil, false)
		require.NoError(t, err)
		require.NotNil(t, first)

		second, err := s.GetOrGenerate(ctx, "noun", "A2", nil, false)
		require.NoError(t, err)
		require.NotNil(t, second)
		assert.Equal(t, first.ID, second.ID)
		assert.Equal(t, 1, generator.calls[first.ID])
	})

	t.Run("excluded question ids remove their lemmas from sampling", func(t *testing.T) {
		s, _ := newTestSynthesizer(t, c, wordTokenizer{})

		bird, err := s.GetOrGenerate(ctx, "noun", "A2", nil, false)
		require.NoError(t, err)
		require.NotNil(t, bird)

		q, err := s.GetOrGenerate(ctx, "noun", "A2", []int64{bird.ID}, false)
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("no matching vocabulary", func(t *testing.T) {
		s, _ := newTestSynthesizer(t, c, wordTokenizer{})

		q, err := s.GetOrGenerate(ctx, "verb", "C2", nil, false)
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("lemma missing from caption yields no question", func(t *testing.T) {
		mismatched := writeTestCorpus(t, []string{"horse,noun,A1,100,42"}, testCaptions)
		s, _ := newTestSynthesizer(t, mismatched, wordTokenizer{})

		q, err := s.GetOrGenerate(ctx, "noun", "A1", nil, false)
		require.NoError(t, err)
		assert.Nil(t, q)
	})

	t.Run("tokenizer failure yields no question", func(t *testing.T) {
		s, _ := newTestSynthesizer(t, c, failingTokenizer{})

		q, err := s.GetOrGenerate(ctx, "noun", "A1", nil, false)
		require.NoError(t, err)
		assert.Nil(t, q)
	})
}

func TestSynthesizer_GetQuestionByID(t *testing.T) {
	ctx := context.Background()
	c := writeTestCorpus(t, []string{"dog,noun,A1,101,43"}, testCaptions)
	s, generator := newTestSynthesizer(t, c, wordTokenizer{})

	created, err := s.GetOrGenerate(ctx, "noun", "A1", nil, false)
	require.NoError(t, err)
	require.NotNil(t, created)

	t.Run("found with choices", func(t *testing.T) {
		q, choices, err := s.GetQuestionByID(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, q)
		assert.Equal(t, "dog", q.Lemma)
		assert.Equal(t, []string{"dog", "wrong1", "wrong2"}, choices)
		assert.Equal(t, 2, generator.calls[created.ID])
	})
	t.Run("not found", func(t *testing.T) {
		q, choices, err := s.GetQuestionByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, q)
		assert.Nil(t, choices)
	})
}

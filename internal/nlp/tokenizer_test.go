package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToken_IsAdverb(t *testing.T) {
	tests := []struct {
		tag  string
		want bool
	}{
		{"RB", true},
		{"RBR", true},
		{"RBS", true},
		{"NN", false},
		{"VBG", false},
	}
	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			assert.Equal(t, tt.want, Token{Tag: tt.tag}.IsAdverb())
		})
	}
}

func TestToken_IsPunctuation(t *testing.T) {
	assert.True(t, Token{Text: "."}.IsPunctuation())
	assert.True(t, Token{Text: ","}.IsPunctuation())
	assert.False(t, Token{Text: "cat"}.IsPunctuation())
	assert.False(t, Token{Text: ""}.IsPunctuation())
}

func TestProseTokenizer_Tokenize(t *testing.T) {
	tokenizer, err := NewProseTokenizer()
	require.NoError(t, err)

	tokens, err := tokenizer.Tokenize("Two cats quickly jumped on a table.")
	require.NoError(t, err)
	require.NotEmpty(t, tokens)

	byText := make(map[string]Token, len(tokens))
	for _, token := range tokens {
		byText[token.Text] = token
	}

	cats, ok := byText["cats"]
	require.True(t, ok)
	assert.Equal(t, "cat", cats.Lemma)

	// Adverbs keep their surface form.
	quickly, ok := byText["quickly"]
	require.True(t, ok)
	assert.Equal(t, "quickly", quickly.Lemma)
}

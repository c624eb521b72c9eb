// Package nlp tokenizes and lemmatizes caption text.
package nlp

import (
	"fmt"
	"strings"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
)

//go:generate mockgen -source=tokenizer.go -destination=../mocks/nlp/mock_tokenizer.go -package=mock_nlp

// Token is one tokenized word with its lemma and Penn Treebank tag.
type Token struct {
	Text  string
	Lemma string
	Tag   string
}

// IsAdverb reports whether the token is tagged as an adverb (RB, RBR, RBS).
// Adverbs are not reliably lemmatized and must keep their surface form.
func (t Token) IsAdverb() bool {
	return strings.HasPrefix(t.Tag, "RB")
}

// IsPunctuation reports whether the token is a punctuation mark.
func (t Token) IsPunctuation() bool {
	if t.Text == "" {
		return false
	}
	return strings.ContainsAny(t.Text[:1], ".,!?;:")
}

// Tokenizer converts raw caption text into tagged, lemmatized tokens.
type Tokenizer interface {
	Tokenize(text string) ([]Token, error)
}

// ProseTokenizer tags tokens with prose and lemmatizes them with golem.
type ProseTokenizer struct {
	lemmatizer *golem.Lemmatizer
}

// NewProseTokenizer loads the English lemmatizer dictionary.
func NewProseTokenizer() (*ProseTokenizer, error) {
	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("golem.New > %w", err)
	}
	return &ProseTokenizer{lemmatizer: lemmatizer}, nil
}

// Tokenize splits the text into tokens. Every token carries its lemma
// except adverbs, which keep their surface form as the lemma.
func (p *ProseTokenizer) Tokenize(text string) ([]Token, error) {
	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false))
	if err != nil {
		return nil, fmt.Errorf("prose.NewDocument > %w", err)
	}

	proseTokens := doc.Tokens()
	tokens := make([]Token, 0, len(proseTokens))
	for _, pt := range proseTokens {
		token := Token{Text: pt.Text, Tag: pt.Tag}
		if token.IsAdverb() {
			token.Lemma = pt.Text
		} else {
			token.Lemma = p.lemmatizer.Lemma(pt.Text)
		}
		tokens = append(tokens, token)
	}
	return tokens, nil
}

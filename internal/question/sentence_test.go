package question

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompleteSentence(t *testing.T) {
	tests := []struct {
		name   string
		tokens TokenList
		answer string
		want   string
	}{
		{
			name:   "simple sentence",
			tokens: TokenList{"A", "()", "sitting", "on", "a", "table", "."},
			answer: "cat",
			want:   "A cat sitting on a table.",
		},
		{
			name:   "multiple blanks",
			tokens: TokenList{"A", "()", "chases", "another", "()", "."},
			answer: "dog",
			want:   "A dog chases another dog.",
		},
		{
			name:   "comma attaches to previous word",
			tokens: TokenList{"()", ",", "a", "small", "animal", ",", "sleeps", "."},
			answer: "Cat",
			want:   "Cat, a small animal, sleeps.",
		},
		{
			name:   "apostrophe fragment attaches",
			tokens: TokenList{"The", "()", "'s", "bowl", "is", "empty", "."},
			answer: "cat",
			want:   "The cat's bowl is empty.",
		},
		{
			name:   "question mark",
			tokens: TokenList{"Is", "this", "a", "()", "?"},
			answer: "cat",
			want:   "Is this a cat?",
		},
		{
			name:   "empty tokens",
			tokens: TokenList{},
			answer: "cat",
			want:   "",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CompleteSentence(tc.tokens, tc.answer))
		})
	}
}

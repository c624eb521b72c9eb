package question

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"

	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/nlp"
)

// DefaultMaxAttempts bounds how many sampled vocabulary entries are tried
// before giving up on a synthesis request.
const DefaultMaxAttempts = 200

//go:generate mockgen -source=synthesizer.go -destination=../mocks/question/mock_choice_generator.go -package=mock_question

// ChoiceGenerator produces or loads the 3-element choice set of a question.
// Implemented by the choice selector; declared here so synthesis can trigger
// choice generation for newly persisted questions.
type ChoiceGenerator interface {
	GetOrGenerate(ctx context.Context, qid int64, q *Question, forceRegenerate bool) ([]string, error)
}

// Synthesizer builds questions by sampling the corpus and blanking captions.
type Synthesizer struct {
	corpus      *corpus.Corpus
	tokenizer   nlp.Tokenizer
	questions   *Repository
	choices     ChoiceGenerator
	rand        *rand.Rand
	maxAttempts int
}

// NewSynthesizer creates a Synthesizer. The random source is injectable so
// sampling is seedable in tests.
func NewSynthesizer(
	c *corpus.Corpus,
	tokenizer nlp.Tokenizer,
	questions *Repository,
	choices ChoiceGenerator,
	rng *rand.Rand,
) *Synthesizer {
	return &Synthesizer{
		corpus:      c,
		tokenizer:   tokenizer,
		questions:   questions,
		choices:     choices,
		rand:        rng,
		maxAttempts: DefaultMaxAttempts,
	}
}

// GetOrGenerate samples a matching vocabulary entry and converts its caption
// into a blanked question. Lemmas answered earlier in the same session are
// excluded; lemmas persisted by other sessions are not. Returns nil when no
// question can be produced.
func (s *Synthesizer) GetOrGenerate(
	ctx context.Context,
	pos, cefr string,
	excludeQIDs []int64,
	forceNew bool,
) (*Question, error) {
	excludedLemmas, err := s.questions.FindLemmas(ctx, excludeQIDs)
	if err != nil {
		return nil, fmt.Errorf("questions.FindLemmas > %w", err)
	}

	candidate := s.sampleQuestion(pos, cefr, excludedLemmas)
	if candidate == nil {
		return nil, nil
	}

	existing, err := s.questions.FindByNaturalKey(ctx, candidate.Lemma, candidate.PartOfSpeech, candidate.CEFRLevel)
	if err != nil {
		return nil, fmt.Errorf("questions.FindByNaturalKey > %w", err)
	}
	if existing != nil {
		slog.Default().Info("reusing existing question",
			"qid", existing.ID, "lemma", existing.Lemma)
		return existing, nil
	}

	if err := s.questions.Save(ctx, candidate); err != nil {
		return nil, fmt.Errorf("questions.Save > %w", err)
	}
	if _, err := s.choices.GetOrGenerate(ctx, candidate.ID, candidate, false); err != nil {
		return nil, fmt.Errorf("choices.GetOrGenerate > %w", err)
	}
	slog.Default().Info("created new question",
		"qid", candidate.ID, "lemma", candidate.Lemma)
	return candidate, nil
}

// sampleQuestion tries corpus entries in random order without replacement
// until one of them yields a processable caption.
func (s *Synthesizer) sampleQuestion(pos, cefr string, excludedLemmas map[string]struct{}) *Question {
	filtered := s.corpus.Filter(pos, cefr, excludedLemmas)
	if len(filtered) == 0 {
		slog.Default().Warn("no vocabulary found", "pos", pos, "cefr", cefr)
		return nil
	}

	attempts := len(filtered)
	if attempts > s.maxAttempts {
		attempts = s.maxAttempts
	}
	s.rand.Shuffle(len(filtered), func(i, j int) {
		filtered[i], filtered[j] = filtered[j], filtered[i]
	})

	for _, entry := range filtered[:attempts] {
		caption, ok := s.corpus.CaptionByID(entry.CaptionID)
		if !ok {
			continue
		}
		q, err := s.processCaption(caption, entry.Word, pos, cefr)
		if err != nil {
			slog.Default().Debug("caption processing failed",
				"word", entry.Word, "caption", caption.Text, "error", err)
			continue
		}
		if q != nil {
			return q
		}
	}
	slog.Default().Warn("failed to generate question",
		"pos", pos, "cefr", cefr, "attempts", attempts)
	return nil
}

// processCaption tokenizes the caption and blanks the target word. Every
// token whose lemma matches the target is replaced with the placeholder; the
// first occurrence's surface form becomes the answer. Returns nil when the
// target lemma is not present in the caption.
func (s *Synthesizer) processCaption(caption corpus.Caption, targetWord, pos, cefr string) (*Question, error) {
	tokens, err := s.tokenizer.Tokenize(caption.Text)
	if err != nil {
		return nil, fmt.Errorf("tokenizer.Tokenize > %w", err)
	}

	var answer string
	blanked := make(TokenList, 0, len(tokens))
	lemmatized := make(TokenList, 0, len(tokens))
	for _, token := range tokens {
		lemmatized = append(lemmatized, token.Lemma)
		if strings.EqualFold(token.Lemma, targetWord) {
			if answer == "" {
				answer = token.Text
			}
			blanked = append(blanked, Placeholder)
			continue
		}
		blanked = append(blanked, token.Text)
	}
	if answer == "" {
		return nil, nil
	}

	return &Question{
		ImageID:          caption.ImageID,
		CaptionID:        caption.ID,
		Caption:          caption.Text,
		Lemma:            targetWord,
		PartOfSpeech:     normalizePOS(pos),
		CEFRLevel:        normalizeCEFR(cefr),
		Answer:           answer,
		BlankedTokens:    blanked,
		LemmatizedTokens: lemmatized,
	}, nil
}

// GetQuestionByID loads a question together with its choice set, generating
// choices on demand so a question is never returned without exactly three.
func (s *Synthesizer) GetQuestionByID(ctx context.Context, qid int64) (*Question, []string, error) {
	q, err := s.questions.FindByID(ctx, qid)
	if err != nil {
		return nil, nil, fmt.Errorf("questions.FindByID > %w", err)
	}
	if q == nil {
		return nil, nil, nil
	}

	choices, err := s.choices.GetOrGenerate(ctx, qid, q, false)
	if err != nil {
		return nil, nil, fmt.Errorf("choices.GetOrGenerate > %w", err)
	}
	return q, choices, nil
}

package choice

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"strings"
	"sync"

	"github.com/agext/levenshtein"

	"github.com/ymatsuda/vocapix/internal/corpus"
	"github.com/ymatsuda/vocapix/internal/question"
)

const (
	numDistractors = 2
	totalChoices   = 3

	// similarityWeight balances edit-distance similarity against length
	// similarity when scoring distractor candidates.
	similarityWeight = 0.7

	maxSimilarityCandidates = 10
	maxRandomCandidates     = 15
	maxRelaxedCandidates    = 10
)

// fallbackWords are per-part-of-speech distractors used when the vocabulary
// cannot supply enough candidates.
var fallbackWords = map[string][]string{
	"noun":      {"thing", "person", "place", "time", "way"},
	"verb":      {"go", "come", "make", "take", "get"},
	"adjective": {"good", "new", "big", "small", "old"},
	"adverb":    {"well", "now", "here", "there", "very"},
}

var genericFallbackWords = []string{"option1", "option2"}

// Selector picks distractors for a question from the vocabulary corpus and
// keeps the resulting choice sets in the store and an in-process cache.
// It satisfies question.ChoiceGenerator.
type Selector struct {
	corpus *corpus.Corpus
	store  *Repository
	rand   *rand.Rand

	mu    sync.Mutex
	cache map[int64][]string
}

// NewSelector creates a Selector. The random source is injectable so
// candidate sampling is seedable in tests.
func NewSelector(c *corpus.Corpus, store *Repository, rng *rand.Rand) *Selector {
	return &Selector{
		corpus: c,
		store:  store,
		rand:   rng,
		cache:  map[int64][]string{},
	}
}

var _ question.ChoiceGenerator = (*Selector)(nil)

// ClearCache drops the in-memory choice cache. Stored sets stay intact.
func (s *Selector) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache = map[int64][]string{}
}

// GetOrGenerate returns the choice set of a question, shuffled for display.
// Cached and stored sets are reused unless forceRegenerate is set; a newly
// generated set is persisted with the correct answer first.
func (s *Selector) GetOrGenerate(ctx context.Context, qid int64, q *question.Question, forceRegenerate bool) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !forceRegenerate {
		if cached, ok := s.cache[qid]; ok {
			return s.shuffled(cached), nil
		}
		stored, err := s.store.FindByQuestion(ctx, qid)
		if err != nil {
			return nil, fmt.Errorf("store.FindByQuestion > %w", err)
		}
		if len(stored) == totalChoices {
			s.cache[qid] = stored
			return s.shuffled(stored), nil
		}
	}

	choices, persist := s.generate(q)
	if persist {
		if err := s.store.Save(ctx, qid, choices, q.Answer); err != nil {
			return nil, fmt.Errorf("store.Save > %w", err)
		}
		s.cache[qid] = choices
	}
	slog.Default().Info("generated choices", "qid", qid, "choices", choices)
	return s.shuffled(choices), nil
}

// generate builds the choice set with the correct answer first. Exactly
// totalChoices entries are always returned. A set built purely from the
// fixed fallback lists is not worth persisting and reports persist=false.
func (s *Selector) generate(q *question.Question) (choices []string, persist bool) {
	pos := strings.ToLower(q.PartOfSpeech)
	cefr := strings.ToUpper(q.CEFRLevel)

	if q.Lemma == "" || pos == "" || cefr == "" || q.Answer == "" {
		slog.Default().Warn("question is missing choice generation fields",
			"qid", q.ID, "lemma", q.Lemma, "pos", q.PartOfSpeech, "cefr", q.CEFRLevel)
		distractors := s.fillShortfall(nil, q.Lemma, pos, q.Answer)
		return append([]string{q.Answer}, distractors[:numDistractors]...), false
	}

	candidates := s.collectCandidates(q.Lemma, pos, cefr, q.Answer)
	distractors := s.selectBest(q.Lemma, candidates, numDistractors)
	distractors = s.fillShortfall(distractors, q.Lemma, pos, q.Answer)
	return append([]string{q.Answer}, distractors[:numDistractors]...), true
}

// collectCandidates gathers candidates from three tiers: edit-distance
// neighbors, random same-level words, and words from adjacent levels.
// Duplicates and the correct answer are removed; order is preserved.
func (s *Selector) collectCandidates(lemma, pos, cefr, answer string) []string {
	var candidates []string
	candidates = append(candidates, s.similarityCandidates(lemma, pos, cefr)...)
	candidates = append(candidates, s.randomCandidates(lemma, pos, cefr)...)
	candidates = append(candidates, s.relaxedLevelCandidates(lemma, pos, cefr)...)

	seen := make(map[string]struct{}, len(candidates))
	unique := candidates[:0]
	for _, candidate := range candidates {
		key := strings.ToLower(candidate)
		if key == strings.ToLower(answer) {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, candidate)
	}
	return unique
}

// similarityCandidates returns same-level words whose edit distance to the
// lemma falls in [1, min(len)/2+2], closest first.
func (s *Selector) similarityCandidates(lemma, pos, cefr string) []string {
	words := s.corpus.Words(pos, cefr, lemma)

	type scored struct {
		word     string
		distance int
	}
	var near []scored
	for _, word := range words {
		distance := levenshtein.Distance(strings.ToLower(lemma), strings.ToLower(word), nil)
		if distance < 1 || distance > min(len(lemma), len(word))/2+2 {
			continue
		}
		near = append(near, scored{word: word, distance: distance})
	}
	sort.SliceStable(near, func(i, j int) bool { return near[i].distance < near[j].distance })

	candidates := make([]string, 0, maxSimilarityCandidates)
	for _, c := range near {
		if len(candidates) == maxSimilarityCandidates {
			break
		}
		candidates = append(candidates, c.word)
	}
	return candidates
}

func (s *Selector) randomCandidates(lemma, pos, cefr string) []string {
	return s.sample(s.corpus.Words(pos, cefr, lemma), maxRandomCandidates)
}

// relaxedLevelCandidates samples from the levels adjacent to cefr, splitting
// the budget evenly between them.
func (s *Selector) relaxedLevelCandidates(lemma, pos, cefr string) []string {
	adjacent := corpus.AdjacentLevels(cefr)
	if len(adjacent) == 0 {
		return nil
	}

	var candidates []string
	for _, level := range adjacent {
		words := s.corpus.Words(pos, level, lemma)
		candidates = append(candidates, s.sample(words, maxRelaxedCandidates/len(adjacent))...)
	}
	return candidates
}

// selectBest scores the candidates, keeps the top 2*numSelect, and samples
// numSelect of them so repeated generations are not identical.
func (s *Selector) selectBest(lemma string, candidates []string, numSelect int) []string {
	if len(candidates) <= numSelect {
		return candidates
	}

	type scored struct {
		word  string
		score float64
	}
	ranked := make([]scored, 0, len(candidates))
	for _, candidate := range candidates {
		ranked = append(ranked, scored{word: candidate, score: distractorScore(lemma, candidate)})
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })

	shortlist := make([]string, 0, numSelect*2)
	for _, c := range ranked[:min(numSelect*2, len(ranked))] {
		shortlist = append(shortlist, c.word)
	}
	return s.sample(shortlist, numSelect)
}

// distractorScore rates a candidate as a distractor for the target word.
// Moderately similar words score highest: normalized edit distance in
// [0.3, 0.7] is ideal, with linear falloff on either side. Length
// similarity contributes the remaining weight.
func distractorScore(target, candidate string) float64 {
	distance := levenshtein.Distance(strings.ToLower(target), strings.ToLower(candidate), nil)
	maxLen := max(len(target), len(candidate))
	if maxLen == 0 {
		return 0
	}

	var similarityScore float64
	normalized := float64(distance) / float64(maxLen)
	switch {
	case normalized >= 0.3 && normalized <= 0.7:
		similarityScore = 1.0
	case normalized < 0.3:
		similarityScore = normalized / 0.3
	default:
		similarityScore = max(0, 1.0-(normalized-0.7)/0.3)
	}

	lengthDiff := len(target) - len(candidate)
	if lengthDiff < 0 {
		lengthDiff = -lengthDiff
	}
	lengthScore := max(0, 1.0-float64(lengthDiff)/float64(maxLen))

	return similarityWeight*similarityScore + (1-similarityWeight)*lengthScore
}

// fillShortfall tops the distractor list up to numDistractors, first from
// words sharing only the part of speech, then from the fixed per-POS lists,
// then from generic placeholders.
func (s *Selector) fillShortfall(distractors []string, lemma, pos, answer string) []string {
	if len(distractors) >= numDistractors {
		return distractors
	}
	slog.Default().Warn("not enough distractors, using fallbacks",
		"lemma", lemma, "found", len(distractors))

	used := make(map[string]struct{}, numDistractors+1)
	used[strings.ToLower(answer)] = struct{}{}
	for _, d := range distractors {
		used[strings.ToLower(d)] = struct{}{}
	}
	appendUnused := func(words []string) {
		for _, word := range words {
			if len(distractors) >= numDistractors {
				return
			}
			if _, ok := used[strings.ToLower(word)]; ok {
				continue
			}
			used[strings.ToLower(word)] = struct{}{}
			distractors = append(distractors, word)
		}
	}

	appendUnused(s.sample(s.corpus.WordsByPOS(pos, lemma), 5))
	appendUnused(fallbackWords[pos])
	appendUnused(genericFallbackWords)
	// The answer may collide with the generic words; number past them.
	for i := len(genericFallbackWords) + 1; len(distractors) < numDistractors; i++ {
		appendUnused([]string{fmt.Sprintf("option%d", i)})
	}
	return distractors
}

// sample picks up to n items uniformly without replacement.
func (s *Selector) sample(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	shuffled := make([]string, len(items))
	copy(shuffled, items)
	s.rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled[:n]
}

// shuffled returns a shuffled copy so the stored answer-first order never
// leaks to callers.
func (s *Selector) shuffled(choices []string) []string {
	shuffled := make([]string, len(choices))
	copy(shuffled, choices)
	s.rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	return shuffled
}

// Package corpus loads and queries the vocabulary and caption reference data.
// Both files are read once at startup and are immutable afterwards.
package corpus

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// CEFRLevels is the fixed six-level ordering used for adjacency lookups.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

// Entry is a single vocabulary word with its source caption reference.
type Entry struct {
	Word         string
	PartOfSpeech string
	CEFRLevel    string
	CaptionID    string
	ImageID      string
}

// Caption is one COCO-style caption annotation.
type Caption struct {
	ID      string `json:"id"`
	ImageID string `json:"image_id"`
	Text    string `json:"caption"`
}

// Corpus holds the vocabulary entries and the caption lookup table.
type Corpus struct {
	entries  []Entry
	captions map[string]Caption
}

var requiredColumns = []string{"Word", "POS", "CEFR", "CaptionID", "ImageID"}

// Load reads the vocabulary CSV and the caption JSON file.
// A missing file or a missing required CSV column is a fatal startup error.
func Load(vocabPath, captionPath string) (*Corpus, error) {
	entries, err := loadVocabulary(vocabPath)
	if err != nil {
		return nil, fmt.Errorf("loadVocabulary(%s) > %w", vocabPath, err)
	}
	captions, err := loadCaptions(captionPath)
	if err != nil {
		return nil, fmt.Errorf("loadCaptions(%s) > %w", captionPath, err)
	}
	return &Corpus{entries: entries, captions: captions}, nil
}

func loadVocabulary(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("os.Open > %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	reader := csv.NewReader(f)
	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("csv.Reader.Read(header) > %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("required column %q not found in vocabulary file", required)
		}
	}

	var entries []Entry
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv.Reader.Read > %w", err)
		}
		entries = append(entries, Entry{
			Word:         strings.TrimSpace(record[columns["Word"]]),
			PartOfSpeech: strings.TrimSpace(record[columns["POS"]]),
			CEFRLevel:    strings.TrimSpace(record[columns["CEFR"]]),
			CaptionID:    strings.TrimSpace(record[columns["CaptionID"]]),
			ImageID:      strings.TrimSpace(record[columns["ImageID"]]),
		})
	}
	return entries, nil
}

type captionFile struct {
	Annotations []struct {
		ID      json.Number `json:"id"`
		ImageID json.Number `json:"image_id"`
		Caption string      `json:"caption"`
	} `json:"annotations"`
}

func loadCaptions(path string) (map[string]Caption, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("os.ReadFile > %w", err)
	}

	var file captionFile
	if err := json.Unmarshal(contents, &file); err != nil {
		return nil, fmt.Errorf("json.Unmarshal > %w", err)
	}
	if file.Annotations == nil {
		return nil, fmt.Errorf("caption file has no annotations field")
	}

	captions := make(map[string]Caption, len(file.Annotations))
	for _, annotation := range file.Annotations {
		captions[annotation.ID.String()] = Caption{
			ID:      annotation.ID.String(),
			ImageID: annotation.ImageID.String(),
			Text:    annotation.Caption,
		}
	}
	return captions, nil
}

// Size returns the number of vocabulary entries.
func (c *Corpus) Size() int {
	return len(c.entries)
}

// CaptionCount returns the number of loaded captions.
func (c *Corpus) CaptionCount() int {
	return len(c.captions)
}

// CaptionByID returns the caption for the given id, or false when unknown.
func (c *Corpus) CaptionByID(id string) (Caption, bool) {
	caption, ok := c.captions[id]
	return caption, ok
}

// Filter returns the entries matching the part of speech and CEFR level,
// excluding the given lemmas. Matching is case-insensitive.
func (c *Corpus) Filter(pos, cefr string, excludedLemmas map[string]struct{}) []Entry {
	var matched []Entry
	for _, entry := range c.entries {
		if !strings.EqualFold(entry.PartOfSpeech, pos) {
			continue
		}
		if !strings.EqualFold(entry.CEFRLevel, cefr) {
			continue
		}
		if _, excluded := excludedLemmas[strings.ToLower(entry.Word)]; excluded {
			continue
		}
		matched = append(matched, entry)
	}
	return matched
}

// Words returns the distinct words matching pos and cefr, excluding the
// target word (case-insensitive).
func (c *Corpus) Words(pos, cefr, excludeWord string) []string {
	return c.distinctWords(func(entry Entry) bool {
		return strings.EqualFold(entry.PartOfSpeech, pos) &&
			strings.EqualFold(entry.CEFRLevel, cefr) &&
			!strings.EqualFold(entry.Word, excludeWord)
	})
}

// WordsByPOS returns the distinct words matching only the part of speech,
// ignoring CEFR level. Used as the fallback distractor pool.
func (c *Corpus) WordsByPOS(pos, excludeWord string) []string {
	return c.distinctWords(func(entry Entry) bool {
		return strings.EqualFold(entry.PartOfSpeech, pos) &&
			!strings.EqualFold(entry.Word, excludeWord)
	})
}

func (c *Corpus) distinctWords(match func(Entry) bool) []string {
	seen := make(map[string]struct{})
	var words []string
	for _, entry := range c.entries {
		if !match(entry) {
			continue
		}
		key := strings.ToLower(entry.Word)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		words = append(words, entry.Word)
	}
	return words
}

// AdjacentLevels returns the CEFR levels immediately above and below the
// given one. A boundary level has a single neighbor; an unknown level has
// none.
func AdjacentLevels(cefr string) []string {
	index := -1
	for i, level := range CEFRLevels {
		if strings.EqualFold(level, cefr) {
			index = i
			break
		}
	}
	if index < 0 {
		return nil
	}

	var adjacent []string
	if index > 0 {
		adjacent = append(adjacent, CEFRLevels[index-1])
	}
	if index < len(CEFRLevels)-1 {
		adjacent = append(adjacent, CEFRLevels[index+1])
	}
	return adjacent
}

// AvailableCriteria returns, per part of speech, the sorted CEFR levels
// present in the corpus.
func (c *Corpus) AvailableCriteria() map[string][]string {
	levels := make(map[string]map[string]struct{})
	for _, entry := range c.entries {
		pos := strings.ToLower(entry.PartOfSpeech)
		if levels[pos] == nil {
			levels[pos] = make(map[string]struct{})
		}
		levels[pos][strings.ToUpper(entry.CEFRLevel)] = struct{}{}
	}

	criteria := make(map[string][]string, len(levels))
	for pos, set := range levels {
		sorted := make([]string, 0, len(set))
		for level := range set {
			sorted = append(sorted, level)
		}
		sort.Strings(sorted)
		criteria[pos] = sorted
	}
	return criteria
}

// Stats summarizes the corpus by part of speech and CEFR level.
type Stats struct {
	TotalVocabulary int            `json:"total_vocabulary"`
	TotalCaptions   int            `json:"total_captions"`
	ByPOS           map[string]int `json:"by_pos"`
	ByCEFR          map[string]int `json:"by_cefr"`
}

// Stats returns summary counts over the corpus.
func (c *Corpus) Stats() Stats {
	stats := Stats{
		TotalVocabulary: len(c.entries),
		TotalCaptions:   len(c.captions),
		ByPOS:           make(map[string]int),
		ByCEFR:          make(map[string]int),
	}
	for _, entry := range c.entries {
		stats.ByPOS[strings.ToLower(entry.PartOfSpeech)]++
		stats.ByCEFR[strings.ToUpper(entry.CEFRLevel)]++
	}
	return stats
}

// Integrity lists data problems detected between the vocabulary and the
// caption table.
type Integrity struct {
	MissingCaptions []string `json:"missing_captions"`
}

// ValidateIntegrity checks that every caption referenced by a vocabulary
// entry exists in the caption table.
func (c *Corpus) ValidateIntegrity() Integrity {
	var issues Integrity
	seen := make(map[string]struct{})
	for _, entry := range c.entries {
		if _, ok := seen[entry.CaptionID]; ok {
			continue
		}
		seen[entry.CaptionID] = struct{}{}
		if _, ok := c.captions[entry.CaptionID]; !ok {
			issues.MissingCaptions = append(issues.MissingCaptions, entry.CaptionID)
		}
	}
	return issues
}

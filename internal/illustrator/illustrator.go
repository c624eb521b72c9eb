// Package illustrator produces feedback images that depict a learner's
// wrong answer: the question caption with the wrong choice swapped in is
// sent to an image generation API and the result is stored on disk.
package illustrator

import (
	"context"
	"crypto/md5"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ymatsuda/vocapix/internal/question"
)

//go:generate mockgen -source=illustrator.go -destination=../mocks/illustrator/mock_image_api.go -package=mock_illustrator

// ImageAPI generates an image for a prompt and returns its download URL.
type ImageAPI interface {
	GenerateImage(ctx context.Context, prompt string) (string, error)
}

// softenedWords maps prompt words the image API tends to reject to harmless
// stand-ins with a similar visual meaning.
var softenedWords = map[string]string{
	"violent":   "peaceful",
	"scary":     "calm",
	"dangerous": "safe",
	"blood":     "red",
	"weapon":    "object",
	"gun":       "tool",
	"knife":     "utensil",
	"death":     "sleep",
	"kill":      "stop",
	"hurt":      "touch",
}

// Illustrator generates wrong-answer images, reusing earlier results from
// an in-process cache, the store, and the output directory.
type Illustrator struct {
	api       ImageAPI
	store     *Repository
	saver     *ImageSaver
	outputDir string

	mu    sync.Mutex
	cache map[string]string
}

// New creates an Illustrator writing images below outputDir.
func New(api ImageAPI, store *Repository, saver *ImageSaver, outputDir string) *Illustrator {
	return &Illustrator{
		api:       api,
		store:     store,
		saver:     saver,
		outputDir: outputDir,
		cache:     map[string]string{},
	}
}

// ClearCache drops the in-memory path cache. Stored rows and files stay
// intact.
func (il *Illustrator) ClearCache() {
	il.mu.Lock()
	defer il.mu.Unlock()
	il.cache = map[string]string{}
}

// GetOrGenerate returns the path of the image depicting wrongChoice for the
// question, relative to the output directory. Cached and stored images are
// reused unless forceRegenerate is set or the stored file went missing.
func (il *Illustrator) GetOrGenerate(
	ctx context.Context,
	qid int64,
	q *question.Question,
	wrongChoice string,
	forceRegenerate bool,
) (string, error) {
	il.mu.Lock()
	defer il.mu.Unlock()

	cacheKey := fmt.Sprintf("%d_%s", qid, wrongChoice)
	if !forceRegenerate {
		if path, ok := il.cache[cacheKey]; ok {
			return path, nil
		}
		path, err := il.store.FindPath(ctx, qid, wrongChoice)
		if err != nil {
			return "", fmt.Errorf("store.FindPath > %w", err)
		}
		if path != "" && il.validImageFile(path) {
			il.cache[cacheKey] = path
			return path, nil
		}
	}

	path, err := il.generate(ctx, qid, q, wrongChoice)
	if err != nil {
		return "", err
	}
	if err := il.store.Save(ctx, qid, wrongChoice, path); err != nil {
		return "", fmt.Errorf("store.Save > %w", err)
	}
	il.cache[cacheKey] = path
	slog.Default().Info("generated wrong answer image",
		"qid", qid, "wrong_choice", wrongChoice, "path", path)
	return path, nil
}

func (il *Illustrator) generate(ctx context.Context, qid int64, q *question.Question, wrongChoice string) (string, error) {
	prompt := BuildPrompt(q.Caption, q.Lemma, wrongChoice)
	url, err := il.api.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("api.GenerateImage > %w", err)
	}

	relativePath := filepath.Join(questionDir(qid), imageFilename(qid, wrongChoice))
	fullPath := filepath.Join(il.outputDir, relativePath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", fmt.Errorf("os.MkdirAll > %w", err)
	}
	if err := il.saver.DownloadAndSave(ctx, url, fullPath); err != nil {
		return "", fmt.Errorf("saver.DownloadAndSave > %w", err)
	}
	return relativePath, nil
}

// BuildPrompt swaps the target lemma for the wrong choice in the caption,
// softens words the image API rejects, and quotes the result.
func BuildPrompt(caption, lemma, wrongChoice string) string {
	modified := strings.ReplaceAll(caption, lemma, wrongChoice)

	softened := strings.ToLower(modified)
	for unsafe, safe := range softenedWords {
		softened = strings.ReplaceAll(softened, unsafe, safe)
	}
	return fmt.Sprintf("%q", capitalize(softened))
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func questionDir(qid int64) string {
	return fmt.Sprintf("qid_%d", qid)
}

// imageFilename derives a stable filename from the question id and the
// wrong choice so regeneration overwrites instead of piling up files.
func imageFilename(qid int64, wrongChoice string) string {
	hash := fmt.Sprintf("%x", md5.Sum([]byte(fmt.Sprintf("%d_%s", qid, wrongChoice))))[:6]
	return sanitizeFilename(fmt.Sprintf("d3_q%d_ans%s.jpeg", qid, hash))
}

func sanitizeFilename(filename string) string {
	sanitized := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			return '_'
		}
		return r
	}, filename)
	if len(sanitized) > 100 {
		ext := filepath.Ext(sanitized)
		sanitized = sanitized[:90] + ext
	}
	return sanitized
}

// validImageFile reports whether the stored path still points at a
// non-empty file below the output directory.
func (il *Illustrator) validImageFile(relativePath string) bool {
	info, err := os.Stat(filepath.Join(il.outputDir, relativePath))
	return err == nil && info.Size() > 0
}

// Stats summarizes the images on disk.
type Stats struct {
	TotalImages    int
	TotalSizeBytes int64
}

// DiskStats walks the output directory and counts generated images.
func (il *Illustrator) DiskStats() (Stats, error) {
	var stats Stats
	entries, err := os.ReadDir(il.outputDir)
	if os.IsNotExist(err) {
		return stats, nil
	}
	if err != nil {
		return stats, fmt.Errorf("os.ReadDir > %w", err)
	}

	for _, entry := range entries {
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), "qid_") {
			continue
		}
		images, err := os.ReadDir(filepath.Join(il.outputDir, entry.Name()))
		if err != nil {
			return stats, fmt.Errorf("os.ReadDir(%s) > %w", entry.Name(), err)
		}
		for _, image := range images {
			info, err := image.Info()
			if err != nil {
				continue
			}
			stats.TotalImages++
			stats.TotalSizeBytes += info.Size()
		}
	}
	return stats, nil
}

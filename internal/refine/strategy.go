package refine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/valpere/bookweave/internal/book"
)

const (
	// DefaultThreshold separates clear from ambiguous paragraphs.
	DefaultThreshold = 0.7
	// DefaultBatchSize is the number of ambiguous paragraphs per
	// collaborator call.
	DefaultBatchSize = 20
	// DefaultConcurrency bounds in-flight collaborator calls per chapter.
	DefaultConcurrency = 4
	// DefaultTimeout bounds one collaborator call.
	DefaultTimeout = 90 * time.Second
)

// Config tunes the refinement pass. Zero values take the defaults above.
type Config struct {
	Threshold   float64
	BatchSize   int
	Concurrency int
	Timeout     time.Duration

	// Known seeds the known-speakers context with labels remembered from
	// earlier passes over the same book.
	Known []string
}

func (c Config) withDefaults() Config {
	if c.Threshold <= 0 {
		c.Threshold = DefaultThreshold
	}
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Concurrency <= 0 {
		c.Concurrency = DefaultConcurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Strategy runs the refinement pass over a book.
type Strategy struct {
	refiner Refiner
	cfg     Config
	logger  *slog.Logger
}

// NewStrategy creates a Strategy. The refiner may not be nil; callers
// without an available collaborator simply skip the pass.
func NewStrategy(r Refiner, cfg Config, logger *slog.Logger) *Strategy {
	return &Strategy{refiner: r, cfg: cfg.withDefaults(), logger: logger}
}

// Pass refines speaker attribution in place. Per chapter it partitions
// paragraphs into clear and ambiguous by the confidence threshold, chunks
// the ambiguous subset into batches, dispatches the batches concurrently,
// and merges replies back onto the original paragraphs once all batches
// settle. Only speaker and confidence change; text and ordering never do.
// A failed or malformed batch leaves its paragraphs untouched.
//
// The known-speakers context grows chapter by chapter as the collaborator
// attributes new names. Pass returns the number of paragraphs refined.
func (s *Strategy) Pass(ctx context.Context, b *book.Book) int {
	known := mergeKnown(s.cfg.Known, b.KnownSpeakers())
	refined := 0

	for _, ch := range b.Chapters {
		var ambiguous []*book.Paragraph
		for _, p := range ch.Paragraphs() {
			if p.Confidence < s.cfg.Threshold {
				ambiguous = append(ambiguous, p)
			}
		}
		if len(ambiguous) == 0 {
			continue
		}

		bc := BookContext{BookTitle: b.Title(), KnownSpeakers: known}
		merged := s.refineChapter(ctx, ch.RefID, ambiguous, bc)
		refined += merged

		known = mergeKnown(s.cfg.Known, b.KnownSpeakers())
	}

	if refined > 0 {
		b.Touch()
	}
	s.logger.Info("refinement pass complete", "slug", b.Slug, "refined", refined)
	return refined
}

// refineChapter dispatches all batches of one chapter concurrently and
// applies the merged answers deterministically by original position.
func (s *Strategy) refineChapter(ctx context.Context, chapterRef string, ambiguous []*book.Paragraph, bc BookContext) int {
	byPos := make(map[int]*book.Paragraph, len(ambiguous))
	items := make([]Item, len(ambiguous))
	for i, p := range ambiguous {
		byPos[p.N] = p
		items[i] = Item{N: p.N, Text: p.Text}
	}

	batches := chunkItems(items, s.cfg.BatchSize)
	results := make([][]Guess, len(batches))

	var wg sync.WaitGroup
	sem := make(chan struct{}, s.cfg.Concurrency)
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
			defer cancel()

			guesses, err := s.refiner.RefineSpeakers(callCtx, batch, bc)
			if err != nil {
				s.logger.Warn("refinement batch degraded",
					"chapter", chapterRef, "batch", i, "size", len(batch), "error", err)
				return
			}
			results[i] = guesses
		}(i, batch)
	}
	wg.Wait()

	// Merge strictly in batch order so concurrent dispatch never changes
	// the outcome.
	merged := 0
	for _, guesses := range results {
		for _, g := range guesses {
			p, ok := byPos[g.N]
			if !ok {
				continue
			}
			p.Speaker = g.Speaker
			p.Confidence = 1.0
			merged++
		}
	}
	return merged
}

// mergeKnown joins the seeded labels with the book's current speakers,
// keeping first-seen order and dropping duplicates.
func mergeKnown(seed, current []string) []string {
	seen := make(map[string]bool, len(seed)+len(current))
	var out []string
	for _, s := range seed {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, s := range current {
		if s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}

func chunkItems(items []Item, size int) [][]Item {
	var out [][]Item
	for len(items) > size {
		out = append(out, items[:size])
		items = items[size:]
	}
	if len(items) > 0 {
		out = append(out, items)
	}
	return out
}

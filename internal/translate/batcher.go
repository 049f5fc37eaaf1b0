package translate

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/valpere/bookweave/internal/book"
	"github.com/valpere/bookweave/internal/validator"
)

const (
	// DefaultBatchSize is the number of paragraphs per collaborator call.
	DefaultBatchSize = 15
	// DefaultConcurrency bounds in-flight collaborator calls per chapter.
	DefaultConcurrency = 4
	// DefaultTimeout bounds one collaborator call.
	DefaultTimeout = 120 * time.Second
)

// Config tunes a translation pass.
type Config struct {
	Targets     []string // target language codes, primary is skipped
	Preserve    []string // terms kept untranslated
	BatchSize   int
	Concurrency int
	Timeout     time.Duration
}

func (c Config) withDefaults() Config {
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

// Batcher fills i18n slots for every target language. Source text is never
// modified; a failed batch leaves the prior slot values and never blocks
// other batches or languages.
type Batcher struct {
	tr     Translator
	cfg    Config
	check  *validator.Validator // nil disables the advisory language check
	logger *slog.Logger
}

// NewBatcher creates a Batcher. check may be nil to skip result-language
// validation.
func NewBatcher(tr Translator, cfg Config, check *validator.Validator, logger *slog.Logger) *Batcher {
	return &Batcher{tr: tr, cfg: cfg.withDefaults(), check: check, logger: logger}
}

// Pass translates the book into every configured target language and merges
// the results into the i18n maps. It returns the number of paragraph slots
// filled.
func (b *Batcher) Pass(ctx context.Context, bk *book.Book) int {
	filled := 0
	for _, lang := range b.cfg.Targets {
		if lang == "" || lang == bk.PrimaryLang {
			continue
		}
		filled += b.translateLanguage(ctx, bk, lang)
	}
	if filled > 0 {
		bk.Touch()
	}
	b.logger.Info("translation pass complete", "slug", bk.Slug, "filled", filled)
	return filled
}

func (b *Batcher) translateLanguage(ctx context.Context, bk *book.Book, lang string) int {
	src := bk.PrimaryLang

	if title := bk.Title(); title != "" && bk.Titles[lang] == "" {
		if tr, ok := b.single(ctx, title, src, lang); ok {
			bk.Titles[lang] = tr
		}
	}

	filled := 0
	for _, ch := range bk.Chapters {
		if ch.Title != "" && ch.I18n[lang] == "" {
			if tr, ok := b.single(ctx, ch.Title, src, lang); ok {
				if ch.I18n == nil {
					ch.I18n = make(map[string]string)
				}
				ch.I18n[lang] = tr
			}
		}
		for _, sec := range ch.Sections() {
			if sec.Title == "" || sec.I18n[lang] != "" {
				continue
			}
			if tr, ok := b.single(ctx, sec.Title, src, lang); ok {
				if sec.I18n == nil {
					sec.I18n = make(map[string]string)
				}
				sec.I18n[lang] = tr
			}
		}
		filled += b.translateChapter(ctx, ch, src, lang)
	}
	return filled
}

// translateChapter dispatches the chapter's paragraph batches concurrently
// and merges replies by position after all batches settle.
func (b *Batcher) translateChapter(ctx context.Context, ch *book.Chapter, src, lang string) int {
	paragraphs := ch.Paragraphs()
	if len(paragraphs) == 0 {
		return 0
	}

	byPos := make(map[int]*book.Paragraph, len(paragraphs))
	items := make([]Item, len(paragraphs))
	for i, p := range paragraphs {
		// First pass seeds an empty slot so a failed batch is visible as
		// untranslated rather than missing.
		if _, ok := p.I18n[lang]; !ok {
			p.SetTranslation(lang, "")
		}
		byPos[p.N] = p
		items[i] = Item{N: p.N, Text: p.Text}
	}

	batches := chunk(items, b.cfg.BatchSize)
	results := make([][]Item, len(batches))

	var wg sync.WaitGroup
	sem := make(chan struct{}, b.cfg.Concurrency)
	for i, batch := range batches {
		wg.Add(1)
		go func(i int, batch []Item) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
			defer cancel()

			out, err := b.tr.TranslateBatch(callCtx, batch, src, lang, b.cfg.Preserve)
			if err != nil {
				b.logger.Warn("translation batch degraded",
					"chapter", ch.RefID, "lang", lang, "batch", i, "size", len(batch), "error", err)
				return
			}
			results[i] = out
		}(i, batch)
	}
	wg.Wait()

	filled := 0
	for _, out := range results {
		for _, it := range out {
			p, ok := byPos[it.N]
			if !ok || it.Text == "" {
				continue
			}
			p.SetTranslation(lang, it.Text)
			filled++
			b.validate(it.Text, lang, p.RefID)
		}
	}
	return filled
}

// single translates one standalone string (a title) in its own call.
func (b *Batcher) single(ctx context.Context, text, src, lang string) (string, bool) {
	callCtx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	out, err := b.tr.TranslateBatch(callCtx, []Item{{N: 1, Text: text}}, src, lang, b.cfg.Preserve)
	if err != nil || len(out) == 0 || out[0].Text == "" {
		b.logger.Warn("title translation degraded", "lang", lang, "error", err)
		return "", false
	}
	return out[0].Text, true
}

// validate is an advisory post-check that the merged text is actually in
// the target language. Mismatches are logged, never fatal.
func (b *Batcher) validate(text, lang, refID string) {
	if b.check == nil {
		return
	}
	if ok, err := b.check.IsValid(text, lang); !ok && err != nil {
		b.logger.Warn("translated text failed language check",
			"refId", refID, "lang", lang, "error", err)
	}
}

func chunk(items []Item, size int) [][]Item {
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

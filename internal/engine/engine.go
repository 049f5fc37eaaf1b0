// Package engine assembles a draft book tree from raw OCR text: it
// normalizes the text, segments chapters and paragraphs under a rule
// profile, attributes speakers, and stamps reference ids.
package engine

import (
	"log/slog"

	"github.com/valpere/bookweave/internal/book"
	"github.com/valpere/bookweave/internal/normalize"
	"github.com/valpere/bookweave/internal/profile"
	"github.com/valpere/bookweave/internal/segment"
	"github.com/valpere/bookweave/internal/speaker"
)

// Engine builds draft books. It is stateless across documents and safe for
// concurrent use on independent inputs.
type Engine struct {
	cleaner   *normalize.Cleaner
	segmenter *segment.Segmenter
	logger    *slog.Logger
}

// New creates an Engine.
func New(logger *slog.Logger) *Engine {
	return &Engine{
		cleaner:   normalize.NewCleaner(),
		segmenter: segment.NewSegmenter(),
		logger:    logger,
	}
}

// Build produces a fully addressed draft book from raw text. The result is
// deterministic for a given input and profile; every chapter is flat (the
// rule engine never invents sections) and every paragraph carries its
// initial confidence and speaker.
func (e *Engine) Build(slug, code, primaryLang, title, raw string, p profile.Profile) *book.Book {
	compiled := p.MustCompile(e.logger)

	b := book.New(slug, code, primaryLang, title)
	text := e.cleaner.Clean(raw)

	for _, span := range segment.SplitChapters(text, compiled) {
		var paragraphs []*book.Paragraph
		for _, t := range e.segmenter.SplitParagraphs(span.Content, compiled) {
			conf := segment.Score(t)
			spk, conf := speaker.Attribute(t, conf, compiled)
			paragraphs = append(paragraphs, &book.Paragraph{
				Text:       t,
				Speaker:    spk,
				Confidence: conf,
			})
		}
		b.Chapters = append(b.Chapters, book.NewChapter(span.Title, paragraphs))
	}

	b.AssignRefs()
	e.logger.Info("built draft book",
		"slug", slug,
		"chapters", len(b.Chapters),
		"paragraphs", b.ParagraphCount())
	return b
}

package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/valpere/bookweave/internal/book"
)

// SplitThreshold is the serialized size in bytes above which the artifact
// is written as one file per chapter plus a _meta.json index.
const SplitThreshold = 100_000

// Exporter writes validated artifacts to disk. Export is a pure read of the
// tree: it never mutates the book.
type Exporter struct {
	logger *slog.Logger
}

// NewExporter creates an Exporter.
func NewExporter(logger *slog.Logger) *Exporter {
	return &Exporter{logger: logger}
}

// meta is the index document of a split-file export: the top-level artifact
// fields with chapter stubs in place of chapter bodies.
type meta struct {
	BookDoc
	Chapters []chapterStub `json:"chapters"`
}

type chapterStub struct {
	N              int               `json:"n"`
	Title          string            `json:"title"`
	I18n           map[string]string `json:"i18n"`
	RefID          string            `json:"refId"`
	File           string            `json:"file"`
	ParagraphCount int               `json:"paragraphCount"`
}

// Write builds, validates, and writes the artifact for a book under dir. A
// single file "{slug}.json" is written when the serialized artifact fits
// SplitThreshold; otherwise a "{slug}/" directory holds one file per
// chapter and a _meta.json index. A schema violation aborts the attempt:
// the error lists every offending path and nothing is written.
func (e *Exporter) Write(b *book.Book, dir string) ([]string, error) {
	return e.WriteDoc(Build(b), dir)
}

// WriteDoc is Write for an already built artifact document.
func (e *Exporter) WriteDoc(doc BookDoc, dir string) ([]string, error) {
	data, err := Marshal(doc)
	if err != nil {
		return nil, err
	}
	if err := Validate(data); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	if len(data) <= SplitThreshold {
		path := filepath.Join(dir, doc.Slug+".json")
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write artifact: %w", err)
		}
		e.logger.Info("exported single-file artifact", "slug", doc.Slug, "bytes", len(data))
		return []string{path}, nil
	}
	return e.writeSplit(doc, dir)
}

func (e *Exporter) writeSplit(doc BookDoc, dir string) ([]string, error) {
	bookDir := filepath.Join(dir, doc.Slug)
	if err := os.MkdirAll(bookDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}

	var written []string
	m := meta{BookDoc: doc}
	for _, ch := range doc.Chapters {
		name := fmt.Sprintf("%s.json", ch.RefID)
		data, err := Marshal(ch)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(bookDir, name)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write chapter artifact: %w", err)
		}
		written = append(written, path)

		count := len(ch.Paragraphs)
		for _, sec := range ch.Sections {
			count += len(sec.Paragraphs)
		}
		m.Chapters = append(m.Chapters, chapterStub{
			N: ch.N, Title: ch.Title, I18n: ch.I18n, RefID: ch.RefID,
			File: name, ParagraphCount: count,
		})
	}

	metaData, err := Marshal(m)
	if err != nil {
		return nil, err
	}
	metaPath := filepath.Join(bookDir, "_meta.json")
	if err := os.WriteFile(metaPath, metaData, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write meta index: %w", err)
	}
	written = append(written, metaPath)

	e.logger.Info("exported split-file artifact",
		"slug", doc.Slug, "chapters", len(doc.Chapters), "files", len(written))
	return written, nil
}

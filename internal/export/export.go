// Package export serializes a book to its canonical JSON artifact shape.
// The artifact is the external contract: workflow fields (confidence,
// vetted) never appear in it, a chapter carries either paragraphs or
// sections but never both, and the whole document is schema-validated
// before anything is written.
package export

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/valpere/bookweave/internal/book"
)

// SchemaVersion identifies the artifact shape.
const SchemaVersion = "bookweave/book-v1"

// BookDoc is the top-level artifact shape.
type BookDoc struct {
	Slug            string            `json:"slug"`
	Code            string            `json:"code"`
	PrimaryLang     string            `json:"primaryLang"`
	Titles          map[string]string `json:"titles"`
	Schema          string            `json:"schema"`
	Revision        int               `json:"revision"`
	Updated         time.Time         `json:"updated"`
	Chapters        []ChapterDoc      `json:"chapters"`
	RefID           string            `json:"refId"`
	ParagraphCount  int               `json:"paragraphCount"`
	ChapterCount    int               `json:"chapterCount"`
	PublicationYear int               `json:"publicationYear,omitempty"`
}

// ChapterDoc carries exactly one of Paragraphs or Sections.
type ChapterDoc struct {
	N          int               `json:"n"`
	Title      string            `json:"title"`
	I18n       map[string]string `json:"i18n"`
	RefID      string            `json:"refId"`
	Paragraphs []ParagraphDoc    `json:"paragraphs,omitempty"`
	Sections   []SectionDoc      `json:"sections,omitempty"`
}

type SectionDoc struct {
	N          int               `json:"n"`
	Title      string            `json:"title"`
	I18n       map[string]string `json:"i18n"`
	Paragraphs []ParagraphDoc    `json:"paragraphs"`
}

type ParagraphDoc struct {
	N       int               `json:"n"`
	Speaker *string           `json:"speaker"`
	Text    string            `json:"text"`
	I18n    map[string]string `json:"i18n"`
	RefID   string            `json:"refId"`
}

// Build converts a book to its artifact shape.
func Build(b *book.Book) BookDoc {
	doc := BookDoc{
		Slug:            b.Slug,
		Code:            b.Code,
		PrimaryLang:     b.PrimaryLang,
		Titles:          nonNil(b.Titles),
		Schema:          SchemaVersion,
		Revision:        b.Revision,
		Updated:         b.Updated,
		RefID:           b.Code,
		ParagraphCount:  b.ParagraphCount(),
		ChapterCount:    len(b.Chapters),
		PublicationYear: b.PublicationYear,
	}
	for _, ch := range b.Chapters {
		doc.Chapters = append(doc.Chapters, buildChapter(ch))
	}
	if doc.Chapters == nil {
		doc.Chapters = []ChapterDoc{}
	}
	return doc
}

func buildChapter(ch *book.Chapter) ChapterDoc {
	cd := ChapterDoc{N: ch.N, Title: ch.Title, I18n: nonNil(ch.I18n), RefID: ch.RefID}
	if secs := ch.Sections(); secs != nil {
		for _, sec := range secs {
			sd := SectionDoc{N: sec.N, Title: sec.Title, I18n: nonNil(sec.I18n)}
			sd.Paragraphs = buildParagraphs(sec.Paragraphs)
			cd.Sections = append(cd.Sections, sd)
		}
		return cd
	}
	cd.Paragraphs = buildParagraphs(ch.Flat())
	return cd
}

func buildParagraphs(ps []*book.Paragraph) []ParagraphDoc {
	out := make([]ParagraphDoc, 0, len(ps))
	for _, p := range ps {
		var spk *string
		if p.Speaker != "" {
			s := p.Speaker
			spk = &s
		}
		out = append(out, ParagraphDoc{
			N: p.N, Speaker: spk, Text: p.Text, I18n: nonNil(p.I18n), RefID: p.RefID,
		})
	}
	return out
}

func nonNil(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

// Marshal serializes the artifact with stable two-space indentation.
func Marshal(doc any) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize artifact: %w", err)
	}
	return data, nil
}

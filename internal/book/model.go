// Package book defines the structured document model produced by the rule
// engine: a Book of Chapters, each holding either a flat paragraph list or a
// list of Sections. The package owns reference-id assignment and the
// structural edit operations, so the numbering invariants never leak out of
// it in a violated state.
package book

import (
	"time"
)

// Vetted is the human review state of a paragraph. It is a workflow flag,
// independent of the confidence heuristic, and is never exported.
type Vetted int

const (
	Unreviewed Vetted = iota
	VettedOK
	VettedSkipped
)

// Book is one structured source document.
type Book struct {
	Slug            string
	Code            string
	PrimaryLang     string
	Titles          map[string]string
	PublicationYear int
	Revision        int
	Updated         time.Time
	Chapters        []*Chapter
}

// New creates an empty book. Code is the short uppercase identifier used in
// reference ids; it must not change after AssignRefs without a full
// re-addressing pass.
func New(slug, code, primaryLang, title string) *Book {
	return &Book{
		Slug:        slug,
		Code:        code,
		PrimaryLang: primaryLang,
		Titles:      map[string]string{primaryLang: title},
		Revision:    1,
		Updated:     time.Now().UTC(),
	}
}

// Title returns the book title in its primary language.
func (b *Book) Title() string {
	return b.Titles[b.PrimaryLang]
}

// Touch bumps the revision counter and the updated timestamp.
func (b *Book) Touch() {
	b.Revision++
	b.Updated = time.Now().UTC()
}

// ParagraphCount returns the total number of paragraphs across all chapters.
func (b *Book) ParagraphCount() int {
	n := 0
	for _, ch := range b.Chapters {
		n += len(ch.Paragraphs())
	}
	return n
}

// KnownSpeakers returns the distinct non-empty speaker labels across the
// whole book, in first-seen order.
func (b *Book) KnownSpeakers() []string {
	seen := make(map[string]bool)
	var out []string
	for _, ch := range b.Chapters {
		for _, p := range ch.Paragraphs() {
			if p.Speaker != "" && !seen[p.Speaker] {
				seen[p.Speaker] = true
				out = append(out, p.Speaker)
			}
		}
	}
	return out
}

// Chapter holds either a flat ordered paragraph list or an ordered section
// list, never both. The body is unexported so the mutual-exclusivity
// invariant cannot be broken from outside the package.
type Chapter struct {
	N     int
	Title string
	I18n  map[string]string
	RefID string

	flat     []*Paragraph
	sections []*Section
}

// NewChapter creates a flat chapter with the given title. An empty title
// marks an untitled (preamble) chapter.
func NewChapter(title string, paragraphs []*Paragraph) *Chapter {
	return &Chapter{Title: title, flat: paragraphs}
}

// Sectioned reports whether the chapter body is a section list.
func (c *Chapter) Sectioned() bool {
	return c.sections != nil
}

// Sections returns the section list, or nil for a flat chapter.
func (c *Chapter) Sections() []*Section {
	return c.sections
}

// Flat returns the flat paragraph list, or nil for a sectioned chapter.
func (c *Chapter) Flat() []*Paragraph {
	if c.sections != nil {
		return nil
	}
	return c.flat
}

// Paragraphs returns all paragraphs of the chapter in order, crossing
// section boundaries for sectioned chapters.
func (c *Chapter) Paragraphs() []*Paragraph {
	if c.sections == nil {
		return c.flat
	}
	var out []*Paragraph
	for _, s := range c.sections {
		out = append(out, s.Paragraphs...)
	}
	return out
}

// SetFlat replaces the chapter body with a flat paragraph list.
func (c *Chapter) SetFlat(paragraphs []*Paragraph) {
	c.flat = paragraphs
	c.sections = nil
}

// SetSections replaces the chapter body with a section list. Fewer than two
// sections collapse back to the flat form: sections are only meaningful when
// a chapter has at least two of them.
func (c *Chapter) SetSections(sections []*Section) {
	switch len(sections) {
	case 0:
		c.SetFlat(nil)
	case 1:
		c.SetFlat(sections[0].Paragraphs)
	default:
		c.sections = sections
		c.flat = nil
	}
}

// normalize re-establishes the section-count invariant after a mutation.
func (c *Chapter) normalize() {
	if c.sections != nil && len(c.sections) < 2 {
		c.SetSections(c.sections)
	}
}

// Section is a titled subdivision of a chapter. Paragraph numbering is
// chapter-scoped and runs continuously across sections.
type Section struct {
	N          int
	Title      string
	I18n       map[string]string
	Paragraphs []*Paragraph
}

// Paragraph is the leaf unit of the tree. Text is the primary-language
// content; translations live in I18n keyed by language code, which never
// contains the primary language.
type Paragraph struct {
	N          int
	Text       string
	Speaker    string
	I18n       map[string]string
	RefID      string
	Confidence float64
	Vetted     Vetted
}

// SetTranslation stores translated text for a language. The primary
// language is the caller's responsibility to exclude; an empty lang is
// ignored.
func (p *Paragraph) SetTranslation(lang, text string) {
	if lang == "" {
		return
	}
	if p.I18n == nil {
		p.I18n = make(map[string]string)
	}
	p.I18n[lang] = text
}

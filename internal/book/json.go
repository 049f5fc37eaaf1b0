package book

import (
	"encoding/json"
	"fmt"
	"time"
)

// Internal JSON codec for persisting a book as an opaque payload blob. This
// shape carries the workflow fields (confidence, vetted) and is distinct
// from the export artifact contract, which omits them.

type bookJSON struct {
	Slug            string            `json:"slug"`
	Code            string            `json:"code"`
	PrimaryLang     string            `json:"primaryLang"`
	Titles          map[string]string `json:"titles"`
	PublicationYear int               `json:"publicationYear,omitempty"`
	Revision        int               `json:"revision"`
	Updated         time.Time         `json:"updated"`
	Chapters        []*Chapter        `json:"chapters"`
}

type chapterJSON struct {
	N          int               `json:"n"`
	Title      string            `json:"title"`
	I18n       map[string]string `json:"i18n,omitempty"`
	RefID      string            `json:"refId"`
	Paragraphs []*Paragraph      `json:"paragraphs,omitempty"`
	Sections   []*Section        `json:"sections,omitempty"`
}

type sectionJSON struct {
	N          int               `json:"n"`
	Title      string            `json:"title"`
	I18n       map[string]string `json:"i18n,omitempty"`
	Paragraphs []*Paragraph      `json:"paragraphs"`
}

type paragraphJSON struct {
	N          int               `json:"n"`
	Text       string            `json:"text"`
	Speaker    string            `json:"speaker,omitempty"`
	I18n       map[string]string `json:"i18n,omitempty"`
	RefID      string            `json:"refId"`
	Confidence float64           `json:"confidence"`
	Vetted     Vetted            `json:"vetted"`
}

// MarshalJSON emits exactly one of "paragraphs" or "sections".
func (c *Chapter) MarshalJSON() ([]byte, error) {
	cj := chapterJSON{N: c.N, Title: c.Title, I18n: c.I18n, RefID: c.RefID}
	if c.sections != nil {
		cj.Sections = c.sections
	} else {
		cj.Paragraphs = c.flat
	}
	return json.Marshal(cj)
}

// UnmarshalJSON rejects payloads carrying both body forms.
func (c *Chapter) UnmarshalJSON(data []byte) error {
	var cj chapterJSON
	if err := json.Unmarshal(data, &cj); err != nil {
		return err
	}
	if cj.Paragraphs != nil && cj.Sections != nil {
		return fmt.Errorf("chapter %q carries both paragraphs and sections", cj.RefID)
	}
	c.N = cj.N
	c.Title = cj.Title
	c.I18n = cj.I18n
	c.RefID = cj.RefID
	if cj.Sections != nil {
		c.SetSections(cj.Sections)
	} else {
		c.SetFlat(cj.Paragraphs)
	}
	return nil
}

func (s *Section) MarshalJSON() ([]byte, error) {
	return json.Marshal(sectionJSON{N: s.N, Title: s.Title, I18n: s.I18n, Paragraphs: s.Paragraphs})
}

func (s *Section) UnmarshalJSON(data []byte) error {
	var sj sectionJSON
	if err := json.Unmarshal(data, &sj); err != nil {
		return err
	}
	*s = Section{N: sj.N, Title: sj.Title, I18n: sj.I18n, Paragraphs: sj.Paragraphs}
	return nil
}

func (p *Paragraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(paragraphJSON{
		N: p.N, Text: p.Text, Speaker: p.Speaker, I18n: p.I18n,
		RefID: p.RefID, Confidence: p.Confidence, Vetted: p.Vetted,
	})
}

func (p *Paragraph) UnmarshalJSON(data []byte) error {
	var pj paragraphJSON
	if err := json.Unmarshal(data, &pj); err != nil {
		return err
	}
	*p = Paragraph{
		N: pj.N, Text: pj.Text, Speaker: pj.Speaker, I18n: pj.I18n,
		RefID: pj.RefID, Confidence: pj.Confidence, Vetted: pj.Vetted,
	}
	return nil
}

// Marshal serializes the book to its internal payload form.
func (b *Book) Marshal() ([]byte, error) {
	return json.Marshal(bookJSON{
		Slug: b.Slug, Code: b.Code, PrimaryLang: b.PrimaryLang,
		Titles: b.Titles, PublicationYear: b.PublicationYear,
		Revision: b.Revision, Updated: b.Updated, Chapters: b.Chapters,
	})
}

// Unmarshal restores a book from its internal payload form.
func Unmarshal(data []byte) (*Book, error) {
	var bj bookJSON
	if err := json.Unmarshal(data, &bj); err != nil {
		return nil, fmt.Errorf("failed to decode book payload: %w", err)
	}
	return &Book{
		Slug: bj.Slug, Code: bj.Code, PrimaryLang: bj.PrimaryLang,
		Titles: bj.Titles, PublicationYear: bj.PublicationYear,
		Revision: bj.Revision, Updated: bj.Updated, Chapters: bj.Chapters,
	}, nil
}

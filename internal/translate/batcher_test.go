package translate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/valpere/bookweave/internal/book"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockTranslator prefixes each text with the target language. failFor makes
// batches containing that position fail.
type mockTranslator struct {
	mu      sync.Mutex
	calls   int
	failFor int
	err     error
}

func (m *mockTranslator) Name() string { return "mock" }

func (m *mockTranslator) TranslateBatch(ctx context.Context, items []Item, sourceLang, targetLang string, preserve []string) ([]Item, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.err != nil {
		return nil, m.err
	}
	out := make([]Item, len(items))
	for i, it := range items {
		if m.failFor != 0 && it.N == m.failFor {
			return nil, errors.New("batch failed")
		}
		out[i] = Item{N: it.N, Text: fmt.Sprintf("[%s] %s", targetLang, it.Text)}
	}
	return out, nil
}

func testBook() *book.Book {
	b := book.New("genesis", "GEN", "en", "Genesis")
	b.Chapters = []*book.Chapter{book.NewChapter("Chapter One", []*book.Paragraph{
		{Text: "First paragraph.", Confidence: 1.0},
		{Text: "Second paragraph.", Confidence: 1.0},
	})}
	b.AssignRefs()
	return b
}

func TestPass_FillsTranslations(t *testing.T) {
	b := testBook()
	m := &mockTranslator{}
	batcher := NewBatcher(m, Config{Targets: []string{"uk"}}, nil, discard())

	filled := batcher.Pass(context.Background(), b)
	if filled != 2 {
		t.Errorf("expected 2 slots filled, got %d", filled)
	}

	for _, p := range b.Chapters[0].Flat() {
		want := "[uk] " + p.Text
		if p.I18n["uk"] != want {
			t.Errorf("expected %q, got %q", want, p.I18n["uk"])
		}
		if p.Text == p.I18n["uk"] {
			t.Error("source text must never change")
		}
	}
	if b.Titles["uk"] != "[uk] Genesis" {
		t.Errorf("expected book title translated, got %q", b.Titles["uk"])
	}
	if b.Chapters[0].I18n["uk"] != "[uk] Chapter One" {
		t.Errorf("expected chapter title translated, got %q", b.Chapters[0].I18n["uk"])
	}
}

func TestPass_SkipsPrimaryLanguage(t *testing.T) {
	b := testBook()
	m := &mockTranslator{}
	batcher := NewBatcher(m, Config{Targets: []string{"en", ""}}, nil, discard())

	if filled := batcher.Pass(context.Background(), b); filled != 0 {
		t.Errorf("expected primary and empty targets skipped, got %d filled", filled)
	}
	if m.calls != 0 {
		t.Errorf("expected no collaborator calls, got %d", m.calls)
	}
	for _, p := range b.Chapters[0].Flat() {
		if len(p.I18n) != 0 {
			t.Errorf("i18n must never contain the primary language: %v", p.I18n)
		}
	}
}

func TestPass_FailedBatchLeavesEmptySlot(t *testing.T) {
	b := testBook()
	m := &mockTranslator{err: errors.New("service down")}
	batcher := NewBatcher(m, Config{Targets: []string{"uk"}}, nil, discard())

	if filled := batcher.Pass(context.Background(), b); filled != 0 {
		t.Errorf("expected 0 filled on failure, got %d", filled)
	}
	for _, p := range b.Chapters[0].Flat() {
		got, ok := p.I18n["uk"]
		if !ok {
			t.Error("expected an empty seeded slot for the failed language")
		}
		if got != "" {
			t.Errorf("expected empty slot, got %q", got)
		}
	}
}

func TestPass_FailedBatchKeepsPriorValue(t *testing.T) {
	b := testBook()
	b.Chapters[0].Flat()[0].SetTranslation("uk", "stara versiia")

	m := &mockTranslator{err: errors.New("service down")}
	batcher := NewBatcher(m, Config{Targets: []string{"uk"}}, nil, discard())
	batcher.Pass(context.Background(), b)

	if got := b.Chapters[0].Flat()[0].I18n["uk"]; got != "stara versiia" {
		t.Errorf("failed batch must keep the prior translation, got %q", got)
	}
}

func TestPass_MultipleLanguagesIndependent(t *testing.T) {
	b := testBook()
	m := &mockTranslator{}
	batcher := NewBatcher(m, Config{Targets: []string{"uk", "de"}}, nil, discard())

	filled := batcher.Pass(context.Background(), b)
	if filled != 4 {
		t.Errorf("expected 4 slots filled across two languages, got %d", filled)
	}
	p := b.Chapters[0].Flat()[0]
	if p.I18n["uk"] == "" || p.I18n["de"] == "" {
		t.Errorf("expected both languages filled, got %v", p.I18n)
	}
}

func TestPass_SectionTitles(t *testing.T) {
	b := book.New("genesis", "GEN", "en", "Genesis")
	ch := &book.Chapter{Title: "One"}
	ch.SetSections([]*book.Section{
		{Title: "Alpha", Paragraphs: []*book.Paragraph{{Text: "a", Confidence: 1.0}}},
		{Title: "Beta", Paragraphs: []*book.Paragraph{{Text: "b", Confidence: 1.0}}},
	})
	b.Chapters = []*book.Chapter{ch}
	b.AssignRefs()

	batcher := NewBatcher(&mockTranslator{}, Config{Targets: []string{"uk"}}, nil, discard())
	batcher.Pass(context.Background(), b)

	for _, sec := range ch.Sections() {
		if sec.I18n["uk"] == "" {
			t.Errorf("expected section %q title translated", sec.Title)
		}
	}
}

func TestPass_KeepsExistingTitleTranslations(t *testing.T) {
	b := book.New("genesis", "GEN", "en", "Genesis")
	ch := &book.Chapter{Title: "One", I18n: map[string]string{"uk": "Odyn"}}
	ch.SetSections([]*book.Section{
		{Title: "Alpha", I18n: map[string]string{"uk": "Alfa"}, Paragraphs: []*book.Paragraph{{Text: "a", Confidence: 1.0}}},
		{Title: "Beta", Paragraphs: []*book.Paragraph{{Text: "b", Confidence: 1.0}}},
	})
	b.Chapters = []*book.Chapter{ch}
	b.Titles["uk"] = "Buttia"
	b.AssignRefs()

	batcher := NewBatcher(&mockTranslator{}, Config{Targets: []string{"uk"}}, nil, discard())
	batcher.Pass(context.Background(), b)

	if b.Titles["uk"] != "Buttia" {
		t.Errorf("repeated pass must keep the book title, got %q", b.Titles["uk"])
	}
	if ch.I18n["uk"] != "Odyn" {
		t.Errorf("repeated pass must keep the chapter title, got %q", ch.I18n["uk"])
	}
	secs := ch.Sections()
	if secs[0].I18n["uk"] != "Alfa" {
		t.Errorf("repeated pass must keep the section title, got %q", secs[0].I18n["uk"])
	}
	if secs[1].I18n["uk"] != "[uk] Beta" {
		t.Errorf("untranslated section title must still be filled, got %q", secs[1].I18n["uk"])
	}
}

func TestPass_RevisionBumpedOnlyOnChange(t *testing.T) {
	b := testBook()
	rev := b.Revision

	NewBatcher(&mockTranslator{err: errors.New("down")}, Config{Targets: []string{"uk"}}, nil, discard()).
		Pass(context.Background(), b)
	if b.Revision != rev {
		t.Error("failed pass must not bump the revision")
	}

	NewBatcher(&mockTranslator{}, Config{Targets: []string{"uk"}}, nil, discard()).
		Pass(context.Background(), b)
	if b.Revision != rev+1 {
		t.Errorf("expected revision bump, got %d", b.Revision)
	}
}

func TestChunk(t *testing.T) {
	items := make([]Item, 35)
	batches := chunk(items, 15)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 15 || len(batches[2]) != 5 {
		t.Errorf("unexpected batch sizes %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}

	if got := chunk(nil, 15); got != nil {
		t.Errorf("expected no batches for no items, got %v", got)
	}
}

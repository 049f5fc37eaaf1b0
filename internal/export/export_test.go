package export

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/valpere/bookweave/internal/book"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func para(text, speaker string) *book.Paragraph {
	return &book.Paragraph{Text: text, Speaker: speaker, Confidence: 1.0}
}

func sampleBook() *book.Book {
	b := book.New("genesis", "GEN", "en", "Genesis")
	b.Chapters = []*book.Chapter{book.NewChapter("Chapter One", []*book.Paragraph{
		para("In the beginning.", "Narrator"),
		para("— who is there?", ""),
	})}
	b.AssignRefs()
	return b
}

func TestBuild_OmitsWorkflowFields(t *testing.T) {
	b := sampleBook()
	b.Chapters[0].Flat()[0].Vetted = book.VettedOK

	data, err := Marshal(Build(b))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	s := string(data)
	if strings.Contains(s, "confidence") || strings.Contains(s, "vetted") {
		t.Error("workflow fields must never appear in the artifact")
	}
}

func TestBuild_SpeakerNullWhenEmpty(t *testing.T) {
	data, err := Marshal(Build(sampleBook()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	chapters := doc["chapters"].([]any)
	paragraphs := chapters[0].(map[string]any)["paragraphs"].([]any)

	if got := paragraphs[0].(map[string]any)["speaker"]; got != "Narrator" {
		t.Errorf("expected speaker 'Narrator', got %v", got)
	}
	if got := paragraphs[1].(map[string]any)["speaker"]; got != nil {
		t.Errorf("expected null speaker for unattributed dialogue, got %v", got)
	}
}

func TestBuild_FlatChapterHasNoSectionsKey(t *testing.T) {
	data, err := Marshal(Build(sampleBook()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if strings.Contains(string(data), `"sections"`) {
		t.Error("a flat chapter must not carry a sections key")
	}
}

func TestBuild_Counts(t *testing.T) {
	doc := Build(sampleBook())
	if doc.ParagraphCount != 2 || doc.ChapterCount != 1 {
		t.Errorf("unexpected counts %d/%d", doc.ParagraphCount, doc.ChapterCount)
	}
	if doc.Schema != SchemaVersion {
		t.Errorf("unexpected schema tag %q", doc.Schema)
	}
}

func TestValidate_AcceptsBuiltArtifact(t *testing.T) {
	data, err := Marshal(Build(sampleBook()))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Errorf("built artifact must validate, got: %v", err)
	}
}

func TestValidate_SectionedArtifact(t *testing.T) {
	b := book.New("genesis", "GEN", "en", "Genesis")
	ch := &book.Chapter{Title: "One"}
	ch.SetSections([]*book.Section{
		{Title: "Alpha", Paragraphs: []*book.Paragraph{para("a", "Narrator")}},
		{Title: "Beta", Paragraphs: []*book.Paragraph{para("b", "Narrator")}},
	})
	b.Chapters = []*book.Chapter{ch}
	b.AssignRefs()

	data, err := Marshal(Build(b))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Errorf("sectioned artifact must validate, got: %v", err)
	}
}

func TestValidate_RejectsBothBodyForms(t *testing.T) {
	doc := Build(sampleBook())
	doc.Chapters[0].Sections = []SectionDoc{
		{N: 1, Title: "s", I18n: map[string]string{}, Paragraphs: []ParagraphDoc{}},
		{N: 2, Title: "t", I18n: map[string]string{}, Paragraphs: []ParagraphDoc{}},
	}

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	err = Validate(data)
	if err == nil {
		t.Fatal("expected validation failure for a chapter with both body forms")
	}
	var ve *ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if len(ve.Issues) == 0 {
		t.Error("expected at least one issue with a path")
	}
}

func TestValidate_RejectsSingleSection(t *testing.T) {
	doc := Build(sampleBook())
	doc.Chapters[0].Paragraphs = nil
	doc.Chapters[0].Sections = []SectionDoc{
		{N: 1, Title: "only", I18n: map[string]string{}, Paragraphs: []ParagraphDoc{}},
	}

	data, err := Marshal(doc)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if err := Validate(data); err == nil {
		t.Error("expected validation failure for a single-section chapter")
	}
}

func TestValidate_RejectsMissingFields(t *testing.T) {
	if err := Validate([]byte(`{"slug": "x"}`)); err == nil {
		t.Error("expected validation failure for a bare document")
	}
	if err := Validate([]byte(`{broken`)); err == nil {
		t.Error("expected error for malformed JSON")
	}
}

func TestWrite_SingleFile(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(discard())

	written, err := e.Write(sampleBook(), dir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 file, got %d", len(written))
	}
	want := filepath.Join(dir, "genesis.json")
	if written[0] != want {
		t.Errorf("expected %q, got %q", want, written[0])
	}

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("failed to read artifact: %v", err)
	}
	if err := Validate(data); err != nil {
		t.Errorf("written artifact must validate: %v", err)
	}
}

func TestWrite_SplitsLargeBook(t *testing.T) {
	b := book.New("tome", "TOME", "en", "A Large Tome")
	long := strings.Repeat("All work and no play makes a dull chapter. ", 60)
	for i := 0; i < 60; i++ {
		b.Chapters = append(b.Chapters, book.NewChapter("Chapter", []*book.Paragraph{
			para(long, "Narrator"),
		}))
	}
	b.AssignRefs()

	dir := t.TempDir()
	written, err := NewExporter(discard()).Write(b, dir)
	if err != nil {
		t.Fatalf("export failed: %v", err)
	}

	// 60 chapter files plus the meta index, all under {slug}/.
	if len(written) != 61 {
		t.Fatalf("expected 61 files, got %d", len(written))
	}
	metaPath := filepath.Join(dir, "tome", "_meta.json")
	metaData, err := os.ReadFile(metaPath)
	if err != nil {
		t.Fatalf("failed to read meta index: %v", err)
	}

	var m struct {
		Slug     string `json:"slug"`
		Chapters []struct {
			File           string `json:"file"`
			ParagraphCount int    `json:"paragraphCount"`
		} `json:"chapters"`
	}
	if err := json.Unmarshal(metaData, &m); err != nil {
		t.Fatalf("failed to decode meta index: %v", err)
	}
	if m.Slug != "tome" || len(m.Chapters) != 60 {
		t.Errorf("unexpected meta index: slug=%q chapters=%d", m.Slug, len(m.Chapters))
	}
	if m.Chapters[0].File != "TOME-1.json" || m.Chapters[0].ParagraphCount != 1 {
		t.Errorf("unexpected first stub %+v", m.Chapters[0])
	}
	if _, err := os.Stat(filepath.Join(dir, "tome", "TOME-1.json")); err != nil {
		t.Errorf("expected chapter file present: %v", err)
	}
}

func TestWrite_InvalidArtifactWritesNothing(t *testing.T) {
	dir := t.TempDir()
	doc := Build(sampleBook())
	doc.Slug = ""

	if _, err := NewExporter(discard()).WriteDoc(doc, dir); err == nil {
		t.Fatal("expected validation failure")
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("a failed export must write nothing, found %d entries", len(entries))
	}
}

func TestRenderHTML(t *testing.T) {
	b := sampleBook()
	b.Chapters[0].Flat()[0].SetTranslation("uk", "На початку.")
	doc := Build(b)

	html := RenderHTML(doc, "")
	if !strings.Contains(html, "<h1>Genesis</h1>") {
		t.Errorf("expected book heading, got %q", html)
	}
	if !strings.Contains(html, "<h2>Chapter One</h2>") {
		t.Errorf("expected chapter heading, got %q", html)
	}
	if !strings.Contains(html, "<strong>Narrator:</strong>") {
		t.Errorf("expected bold speaker label, got %q", html)
	}
	if !strings.Contains(html, "In the beginning.") {
		t.Error("expected primary text in primary render")
	}

	uk := RenderHTML(doc, "uk")
	if !strings.Contains(uk, "На початку.") {
		t.Error("expected translated text in uk render")
	}
	// Paragraphs without a uk translation fall back to the primary text.
	if !strings.Contains(uk, "who is there?") {
		t.Error("expected untranslated paragraphs to fall back to primary text")
	}
}

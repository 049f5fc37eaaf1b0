package engine

import (
	"io"
	"log/slog"
	"testing"

	"github.com/valpere/bookweave/internal/profile"
)

func testEngine() *Engine {
	return New(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestBuild_EndToEnd(t *testing.T) {
	raw := "# CH I\n\nHello there.\n\n42\n\nYahweh: I am here."

	p := profile.Profile{
		ChapterPatterns:    []string{`^#\s+CH\s+[IVX]+`},
		ParagraphSeparator: `\n\n`,
		StripPatterns:      []string{`^\d{1,3}$`},
		SpeakerPatterns:    profile.SpeakerPatterns{KnownSpeakers: []string{"Yahweh"}},
		DefaultSpeaker:     "Narrator",
	}

	b := testEngine().Build("genesis", "GEN", "en", "Genesis", raw, p)

	if len(b.Chapters) != 1 {
		t.Fatalf("expected 1 chapter, got %d", len(b.Chapters))
	}
	ch := b.Chapters[0]
	if ch.Title != "CH I" {
		t.Errorf("expected chapter title 'CH I', got %q", ch.Title)
	}
	if ch.Sectioned() {
		t.Error("the rule engine must never produce sections")
	}
	if ch.RefID != "GEN-1" {
		t.Errorf("expected chapter ref 'GEN-1', got %q", ch.RefID)
	}

	ps := ch.Flat()
	if len(ps) != 2 {
		t.Fatalf("expected 2 paragraphs (page number stripped), got %d", len(ps))
	}
	if ps[0].Text != "Hello there." || ps[0].Speaker != "Narrator" {
		t.Errorf("unexpected first paragraph %q / %q", ps[0].Text, ps[0].Speaker)
	}
	if ps[1].Text != "Yahweh: I am here." || ps[1].Speaker != "Yahweh" {
		t.Errorf("unexpected second paragraph %q / %q", ps[1].Text, ps[1].Speaker)
	}
	if ps[1].Confidence != 1.0 {
		t.Errorf("expected full confidence on a lexical speaker match, got %v", ps[1].Confidence)
	}
	if ps[0].RefID != "GEN-1:1" || ps[1].RefID != "GEN-1:2" {
		t.Errorf("unexpected refs %q / %q", ps[0].RefID, ps[1].RefID)
	}
}

func TestBuild_Deterministic(t *testing.T) {
	raw := "# Chapter One\n\nFirst paragraph of the chapter.\n\nSecond paragraph of the chapter."

	e := testEngine()
	a := e.Build("x", "X", "en", "X", raw, profile.Default())
	b := e.Build("x", "X", "en", "X", raw, profile.Default())

	if a.ParagraphCount() != b.ParagraphCount() || len(a.Chapters) != len(b.Chapters) {
		t.Error("expected identical structure for identical input")
	}
	for i := range a.Chapters {
		if a.Chapters[i].Title != b.Chapters[i].Title {
			t.Errorf("chapter %d titles differ", i)
		}
		pa, pb := a.Chapters[i].Flat(), b.Chapters[i].Flat()
		for j := range pa {
			if pa[j].Text != pb[j].Text || pa[j].RefID != pb[j].RefID {
				t.Errorf("chapter %d paragraph %d differs between runs", i, j)
			}
		}
	}
}

func TestBuild_NoHeadings(t *testing.T) {
	b := testEngine().Build("x", "X", "en", "X", "just a single paragraph of plain text", profile.Default())

	if len(b.Chapters) != 1 {
		t.Fatalf("expected 1 untitled chapter, got %d", len(b.Chapters))
	}
	if b.Chapters[0].Title != "" {
		t.Errorf("expected untitled chapter, got %q", b.Chapters[0].Title)
	}
	if b.ParagraphCount() != 1 {
		t.Errorf("expected 1 paragraph, got %d", b.ParagraphCount())
	}
}

func TestBuild_ShortParagraphLowConfidence(t *testing.T) {
	b := testEngine().Build("x", "X", "en", "X", "# One\n\nTiny.", profile.Default())

	ps := b.Chapters[0].Flat()
	if len(ps) != 1 {
		t.Fatalf("expected 1 paragraph, got %d", len(ps))
	}
	if ps[0].Confidence != 0.3 {
		t.Errorf("expected low confidence for a very short paragraph, got %v", ps[0].Confidence)
	}
}

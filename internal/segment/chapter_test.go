package segment

import (
	"log/slog"
	"testing"

	"github.com/valpere/bookweave/internal/profile"
)

func testCompiled(t *testing.T, p profile.Profile) *profile.Compiled {
	t.Helper()
	c, err := p.Compile()
	if err != nil {
		t.Fatalf("failed to compile profile: %v", err)
	}
	return c
}

func defaultCompiled(t *testing.T) *profile.Compiled {
	t.Helper()
	return profile.Default().MustCompile(slog.Default())
}

func TestSplitChapters_MarkdownHeadings(t *testing.T) {
	c := defaultCompiled(t)

	text := "# Chapter One\n\nfirst body\n\n## Chapter Two\n\nsecond body"
	spans := SplitChapters(text, c)

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Title != "Chapter One" {
		t.Errorf("expected title 'Chapter One', got %q", spans[0].Title)
	}
	if spans[0].Content != "first body" {
		t.Errorf("expected content 'first body', got %q", spans[0].Content)
	}
	if spans[1].Title != "Chapter Two" {
		t.Errorf("expected title 'Chapter Two', got %q", spans[1].Title)
	}
}

func TestSplitChapters_Preamble(t *testing.T) {
	c := defaultCompiled(t)

	text := "a foreword before any heading\n\n# Chapter One\n\nbody"
	spans := SplitChapters(text, c)

	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Title != "" {
		t.Errorf("expected untitled preamble, got title %q", spans[0].Title)
	}
	if spans[0].Content != "a foreword before any heading" {
		t.Errorf("unexpected preamble content %q", spans[0].Content)
	}
}

func TestSplitChapters_NoMatches(t *testing.T) {
	c := defaultCompiled(t)

	spans := SplitChapters("just plain text, no headings", c)
	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Title != "" {
		t.Errorf("expected untitled span, got %q", spans[0].Title)
	}
}

func TestSplitChapters_NoBoundaryPattern(t *testing.T) {
	p := profile.Profile{ChapterPatterns: nil, ParagraphSeparator: `\n\n`}
	c := testCompiled(t, p)

	spans := SplitChapters("# looks like a heading\n\nbody", c)
	if len(spans) != 1 {
		t.Fatalf("expected whole text as one span, got %d", len(spans))
	}
}

func TestSplitChapters_WordHeadings(t *testing.T) {
	c := defaultCompiled(t)

	text := "Chapter IV\n\nthe body of chapter four"
	spans := SplitChapters(text, c)

	if len(spans) != 1 {
		t.Fatalf("expected 1 span, got %d", len(spans))
	}
	if spans[0].Title != "Chapter IV" {
		t.Errorf("expected title 'Chapter IV', got %q", spans[0].Title)
	}
}

func TestStripHeadingMarker(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"# Chapter One", "Chapter One"},
		{"### Deep Heading", "Deep Heading"},
		{"  ## Indented  ", "Indented"},
		{"=== Old Style ===", "Old Style ==="},
		{"Chapter IV", "Chapter IV"},
	}
	for _, tt := range tests {
		if got := stripHeadingMarker(tt.input); got != tt.expected {
			t.Errorf("stripHeadingMarker(%q) = %q, expected %q", tt.input, got, tt.expected)
		}
	}
}

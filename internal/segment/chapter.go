// Package segment splits normalized text into chapter spans and paragraph
// lists according to a compiled rule profile, and scores each paragraph with
// a fast deterministic confidence heuristic. It produces raw spans only;
// numbering and reference ids are assigned later by the book package.
package segment

import (
	"strings"

	"github.com/valpere/bookweave/internal/profile"
)

// Span is one detected chapter: its heading-derived title (empty for an
// untitled preamble) and its raw content.
type Span struct {
	Title   string
	Content string
}

// SplitChapters scans text for non-overlapping chapter boundary matches.
// Content runs from the end of a heading match to the start of the next.
// Text before the first match becomes an untitled preamble span; when
// nothing matches, the whole text is one untitled span.
func SplitChapters(text string, c *profile.Compiled) []Span {
	if c.ChapterBoundary == nil {
		return wholeText(text)
	}
	matches := c.ChapterBoundary.FindAllStringIndex(text, -1)
	if len(matches) == 0 {
		return wholeText(text)
	}

	var spans []Span
	if lead := strings.TrimSpace(text[:matches[0][0]]); lead != "" {
		spans = append(spans, Span{Content: lead})
	}
	for i, m := range matches {
		end := len(text)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		spans = append(spans, Span{
			Title:   stripHeadingMarker(text[m[0]:m[1]]),
			Content: strings.TrimSpace(text[m[1]:end]),
		})
	}
	return spans
}

func wholeText(text string) []Span {
	return []Span{{Content: strings.TrimSpace(text)}}
}

// stripHeadingMarker removes the leading heading markup (#, *, =, dashes)
// and surrounding whitespace from a matched heading line.
func stripHeadingMarker(heading string) string {
	return strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(heading), "#*=- \t"))
}

package segment

import (
	"strings"

	"github.com/valpere/bookweave/internal/normalize"
	"github.com/valpere/bookweave/internal/profile"
)

// Segmenter splits chapter content into paragraphs. It owns a Cleaner so
// the normalization patterns compile once per pipeline.
type Segmenter struct {
	cleaner *normalize.Cleaner
}

// NewSegmenter creates a paragraph segmenter.
func NewSegmenter() *Segmenter {
	return &Segmenter{cleaner: normalize.NewCleaner()}
}

// SplitParagraphs runs the per-chapter pipeline: OCR cleanup (hyphen-break
// repair, character normalization, space collapsing), noise-line stripping
// with the profile's patterns, blank-line collapsing, then splitting on the
// profile's separator. Empty results are dropped.
func (s *Segmenter) SplitParagraphs(content string, c *profile.Compiled) []string {
	text := s.cleaner.Clean(content)

	for _, re := range c.Strip {
		text = re.ReplaceAllString(text, "")
	}
	text = s.cleaner.CollapseBlankLines(text)
	if text == "" {
		return nil
	}

	var out []string
	for _, part := range c.Separator.Split(text, -1) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

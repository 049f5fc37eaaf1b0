// Package normalize repairs common OCR artifacts in raw scanned text:
// ligatures, smart quotes, words hyphenated across line breaks, and runaway
// whitespace. All functions are pure; the Cleaner precompiles its patterns
// once and is safe for concurrent use.
package normalize

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Cleaner applies OCR cleanup with precompiled patterns.
type Cleaner struct {
	reHyphenBreak *regexp.Regexp
	reMultiSpace  *regexp.Regexp
	reBlankLines  *regexp.Regexp

	charReplacer *strings.Replacer
}

// NewCleaner creates a Cleaner with the standard artifact patterns.
func NewCleaner() *Cleaner {
	return &Cleaner{
		// "infor-\n mation" -> "information"
		reHyphenBreak: regexp.MustCompile(`(\p{L})-\s*\n\s*(\p{L})`),

		// collapse runs of spaces and tabs within a line
		reMultiSpace: regexp.MustCompile(`[ \t]{2,}`),

		// collapse three or more newlines down to one blank line
		reBlankLines: regexp.MustCompile(`\n{3,}`),

		charReplacer: strings.NewReplacer(
			// ligatures
			"ﬁ", "fi",
			"ﬂ", "fl",
			"ﬀ", "ff",
			"ﬃ", "ffi",
			"ﬄ", "ffl",
			// smart quotes
			"“", `"`,
			"”", `"`,
			"‘", "'",
			"’", "'",
			// ellipsis, en-dash
			"…", "...",
			"–", "—",
			// carriage returns
			"\r", "",
		),
	}
}

// Clean runs the full OCR repair pipeline: hyphen-break joining, character
// normalization, in-line space collapsing, and NFC normalization. Blank
// lines are preserved because they carry paragraph-boundary information.
func (c *Cleaner) Clean(text string) string {
	if text == "" {
		return text
	}
	text = c.charReplacer.Replace(text)
	text = c.reHyphenBreak.ReplaceAllString(text, "$1$2")
	text = c.reMultiSpace.ReplaceAllString(text, " ")
	return norm.NFC.String(text)
}

// CollapseBlankLines squeezes runs of three or more newlines down to a
// single blank line and trims the result. It runs after noise-line
// stripping, which leaves holes where page numbers and running headers were.
func (c *Cleaner) CollapseBlankLines(text string) string {
	return strings.TrimSpace(c.reBlankLines.ReplaceAllString(text, "\n\n"))
}

package segment

import (
	"strings"
	"unicode"
)

// basicPunct are the punctuation characters the special-character ratio
// treats as ordinary prose.
const basicPunct = `.,;:!?'"()-`

// Score estimates segmentation reliability for one paragraph. It is
// intentionally crude and fast: it exists only to flag candidates for the
// refinement pass, not to measure text quality.
//
//	< 10 runes                 -> 0.3
//	< 30 runes                 -> 0.6
//	special-char ratio > 0.3   -> 0.5
//	otherwise                  -> 1.0
func Score(text string) float64 {
	runes := []rune(text)
	switch {
	case len(runes) < 10:
		return 0.3
	case len(runes) < 30:
		return 0.6
	case specialRatio(runes) > 0.3:
		return 0.5
	default:
		return 1.0
	}
}

// specialRatio is the share of characters outside letters, digits,
// whitespace and basic punctuation.
func specialRatio(runes []rune) float64 {
	if len(runes) == 0 {
		return 0
	}
	special := 0
	for _, r := range runes {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			continue
		}
		if strings.ContainsRune(basicPunct, r) {
			continue
		}
		special++
	}
	return float64(special) / float64(len(runes))
}

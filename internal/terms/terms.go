// Package terms protects proper nouns and other do-not-translate terms
// during translation by replacing them with numbered markers ([PH0], [PH1],
// …) that are restored after the collaborator returns. Mechanical services
// (Google) rely on the markers; LLM services additionally receive an
// instruction naming the terms.
package terms

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// rePlaceholder matches a marker in translated text.
var rePlaceholder = regexp.MustCompile(`\[PH(\d+)\]`)

// Protect replaces every occurrence of each preserve-term in text with a
// numbered placeholder, longest terms first so overlapping terms resolve to
// the most specific match. It returns the modified text and the captured
// originals in marker order for Restore.
func Protect(text string, preserve []string) (string, []string) {
	if len(preserve) == 0 {
		return text, nil
	}

	ordered := make([]string, 0, len(preserve))
	for _, t := range preserve {
		if t = strings.TrimSpace(t); t != "" {
			ordered = append(ordered, t)
		}
	}
	sort.Slice(ordered, func(i, j int) bool { return len(ordered[i]) > len(ordered[j]) })

	var markers []string
	for _, term := range ordered {
		re, err := regexp.Compile(`\b` + regexp.QuoteMeta(term) + `\b`)
		if err != nil {
			continue
		}
		text = re.ReplaceAllStringFunc(text, func(match string) string {
			id := fmt.Sprintf("[PH%d]", len(markers))
			markers = append(markers, match)
			return id
		})
	}
	return text, markers
}

// Restore substitutes [PHn] markers back with the originals captured by
// Protect. Unrecognised indices leave the marker as-is; markers the
// translator dropped are simply absent from the result.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		if len(sub) < 2 {
			return match
		}
		idx := 0
		fmt.Sscanf(sub[1], "%d", &idx)
		if idx < 0 || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// InstructionHint returns the prompt sentence telling an LLM translator to
// leave the named terms and any [PHn] markers untouched.
func InstructionHint(preserve []string) string {
	if len(preserve) == 0 {
		return "Preserve all [PHn] markers exactly as they appear."
	}
	return fmt.Sprintf(
		"Do not translate the following terms, keep them exactly as written: %s. Preserve all [PHn] markers exactly as they appear.",
		strings.Join(preserve, ", "))
}

// Missing returns the marker indices created by Protect that no longer
// appear in the translated text.
func Missing(text string, markers []string) []int {
	var missing []int
	for i := range markers {
		if !strings.Contains(text, fmt.Sprintf("[PH%d]", i)) {
			missing = append(missing, i)
		}
	}
	return missing
}

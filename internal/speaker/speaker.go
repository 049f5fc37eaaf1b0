// Package speaker assigns a speaker label to each paragraph from the rule
// profile's lexical patterns.
package speaker

import "github.com/valpere/bookweave/internal/profile"

// maxDialogueConfidence caps the confidence of dialogue whose speaker could
// not be determined; such paragraphs are the canonical refinement case.
const maxDialogueConfidence = 0.5

// Attribute decides the speaker for one paragraph and adjusts its
// confidence, in priority order:
//
//  1. A known-speaker lexical match ("Name:", "[Name]", "«Name") assigns
//     that speaker at full confidence.
//  2. A dialogue-opening dash assigns no speaker and caps confidence at
//     maxDialogueConfidence.
//  3. Otherwise the profile's default speaker is assigned, confidence
//     untouched.
func Attribute(text string, confidence float64, c *profile.Compiled) (string, float64) {
	for _, ks := range c.KnownSpeakers {
		if ks.Re.MatchString(text) {
			return ks.Name, 1.0
		}
	}
	if c.DialogueDash != nil && c.DialogueDash.MatchString(text) {
		if confidence > maxDialogueConfidence {
			confidence = maxDialogueConfidence
		}
		return "", confidence
	}
	return c.DefaultSpeaker, confidence
}

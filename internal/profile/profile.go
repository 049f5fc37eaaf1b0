// Package profile loads the declarative rule profiles that drive
// segmentation. A profile is pure data: boundary patterns, the paragraph
// separator, noise patterns, known speakers, and the default speaker. New
// document traditions are supported by authoring a new profile, never by
// changing segmentation code.
package profile

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"regexp"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Profile is the on-disk JSON shape of a rule profile.
type Profile struct {
	ChapterPatterns    []string        `json:"chapter_patterns"`
	ParagraphSeparator string          `json:"paragraph_separator"`
	StripPatterns      []string        `json:"strip_patterns"`
	SpeakerPatterns    SpeakerPatterns `json:"speaker_patterns"`
	DefaultSpeaker     string          `json:"default_speaker"`
}

// SpeakerPatterns configures speaker attribution.
type SpeakerPatterns struct {
	DialogueDash  string   `json:"dialogue_dash"`
	KnownSpeakers []string `json:"known_speakers"`
}

// Default returns the built-in profile used when no profile is given or the
// given one is invalid: markdown-style headings, blank-line paragraph
// separation, bare page numbers stripped, narrator fallback.
func Default() Profile {
	return Profile{
		ChapterPatterns: []string{
			`^#{1,3}\s+.+$`,
			`^(?:chapter|part|book)\s+[0-9ivxlcdm]+\b.*$`,
		},
		ParagraphSeparator: `\n\n`,
		StripPatterns:      []string{`^\s*\d{1,4}\s*$`},
		SpeakerPatterns: SpeakerPatterns{
			DialogueDash: `^\s*[\x{2014}\x{2013}\x{2012}-]\s?`,
		},
		DefaultSpeaker: "Narrator",
	}
}

const schemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "properties": {
    "chapter_patterns": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "paragraph_separator": {"type": "string", "minLength": 1},
    "strip_patterns": {"type": "array", "items": {"type": "string", "minLength": 1}},
    "speaker_patterns": {
      "type": "object",
      "properties": {
        "dialogue_dash": {"type": "string"},
        "known_speakers": {"type": "array", "items": {"type": "string", "minLength": 1}}
      },
      "additionalProperties": false
    },
    "default_speaker": {"type": "string"}
  },
  "additionalProperties": false
}`

var schema = jsonschema.MustCompileString("profile.schema.json", schemaJSON)

// Load reads and validates a profile file. Missing or invalid profiles are
// a non-fatal configuration error: Load logs a warning and returns the
// built-in default so the pipeline always has a usable profile.
func Load(path string, logger *slog.Logger) Profile {
	p, err := load(path)
	if err != nil {
		logger.Warn("falling back to default rule profile", "path", path, "error", err)
		return Default()
	}
	return p
}

func load(path string) (Profile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("failed to read profile: %w", err)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return Profile{}, fmt.Errorf("profile is not valid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return Profile{}, fmt.Errorf("profile failed schema validation: %w", err)
	}

	p := Default()
	if err := json.Unmarshal(raw, &p); err != nil {
		return Profile{}, fmt.Errorf("failed to decode profile: %w", err)
	}
	return p, nil
}

// Compiled is a profile with every pattern compiled, ready for the
// segmenters and the speaker attributor.
type Compiled struct {
	ChapterBoundary *regexp.Regexp // nil when the profile has no chapter patterns
	Separator       *regexp.Regexp
	Strip           []*regexp.Regexp
	DialogueDash    *regexp.Regexp // nil when dialogue detection is disabled
	KnownSpeakers   []KnownSpeaker
	DefaultSpeaker  string
}

// KnownSpeaker is one known-speaker lexical matcher.
type KnownSpeaker struct {
	Name string
	Re   *regexp.Regexp
}

// Compile turns the profile's pattern strings into regular expressions.
// Chapter patterns are OR-combined into a single case-insensitive multiline
// alternation; strip patterns run in multiline mode per line.
func (p Profile) Compile() (*Compiled, error) {
	c := &Compiled{DefaultSpeaker: p.DefaultSpeaker}
	if c.DefaultSpeaker == "" {
		c.DefaultSpeaker = Default().DefaultSpeaker
	}

	if len(p.ChapterPatterns) > 0 {
		alt := "(?im)" + strings.Join(wrapEach(p.ChapterPatterns), "|")
		re, err := regexp.Compile(alt)
		if err != nil {
			return nil, fmt.Errorf("invalid chapter pattern: %w", err)
		}
		c.ChapterBoundary = re
	}

	sep := p.ParagraphSeparator
	if sep == "" {
		sep = Default().ParagraphSeparator
	}
	re, err := regexp.Compile(sep)
	if err != nil {
		return nil, fmt.Errorf("invalid paragraph separator: %w", err)
	}
	c.Separator = re

	for _, pat := range p.StripPatterns {
		re, err := regexp.Compile("(?m)" + pat)
		if err != nil {
			return nil, fmt.Errorf("invalid strip pattern %q: %w", pat, err)
		}
		c.Strip = append(c.Strip, re)
	}

	if p.SpeakerPatterns.DialogueDash != "" {
		re, err := regexp.Compile(p.SpeakerPatterns.DialogueDash)
		if err != nil {
			return nil, fmt.Errorf("invalid dialogue dash pattern: %w", err)
		}
		c.DialogueDash = re
	}

	for _, name := range p.SpeakerPatterns.KnownSpeakers {
		q := regexp.QuoteMeta(name)
		// Matches "Name:", "[Name]" and "«Name" at the start of a paragraph.
		// The guillemet form cannot end on \b: RE2's \b is ASCII-only and
		// never fires after a non-ASCII name, so the name must be followed
		// by end of text or a non-alphanumeric rune instead.
		re, err := regexp.Compile(`(?i)^\s*(?:` + q + `\s*:|\[` + q + `\]|«\s*` + q + `(?:$|[^\p{L}\p{N}]))`)
		if err != nil {
			return nil, fmt.Errorf("invalid known speaker %q: %w", name, err)
		}
		c.KnownSpeakers = append(c.KnownSpeakers, KnownSpeaker{Name: name, Re: re})
	}

	return c, nil
}

// MustCompile compiles the profile, substituting the default profile when
// any pattern fails to compile. Pattern errors are configuration errors and
// never abort the pipeline.
func (p Profile) MustCompile(logger *slog.Logger) *Compiled {
	c, err := p.Compile()
	if err != nil {
		logger.Warn("profile pattern failed to compile, using default profile", "error", err)
		c, err = Default().Compile()
		if err != nil {
			panic(fmt.Sprintf("default profile must compile: %v", err))
		}
	}
	return c
}

func wrapEach(patterns []string) []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = "(?:" + p + ")"
	}
	return out
}

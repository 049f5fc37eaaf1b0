// Package llmtext removes common LLM artifacts from collaborator replies
// and extracts the JSON payload the refinement and translation contracts
// expect. A malformed reply is a batch-local error for the caller, never a
// pipeline failure.
package llmtext

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// thinkingBlockRe matches complete <thinking>…</thinking> style blocks.
// Each tag variant is listed explicitly because Go's RE2 engine does not
// support backreferences.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<thinking>.*?</thinking>|<think>.*?</think>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

// truncatedThinkingRe matches an opened thinking tag whose closing tag is
// missing (the model was cut off mid-thought).
var truncatedThinkingRe = regexp.MustCompile(
	`(?is)(?:<thinking>|<think>|<reasoning>|<reflection>).*$`,
)

// echoPatterns match introductory phrases models prepend even when told not
// to. Anchored to the start of the reply and requiring a colon to avoid
// false positives on content.
var echoPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the)? (?:json|translation|result|answer|output)\s*:`),
	regexp.MustCompile(`(?i)^(?:the )?(?:json|translation|result|answer|output)\s*:`),
	regexp.MustCompile(`(?i)^(?:certainly|sure|of course)[,.]? here(?:'s| is)(?: the)? (?:json|translation|result|answer|output)\s*:`),
}

// fenceRe matches a markdown code fence wrapping the whole reply.
var fenceRe = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

// Clean strips thinking blocks, instruction echoes, code fences and
// wrapping quotes from an LLM reply and trims the result.
func Clean(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	text = strings.TrimSpace(text)

	for _, re := range echoPatterns {
		if loc := re.FindStringIndex(text); loc != nil && loc[0] == 0 {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}

	if m := fenceRe.FindStringSubmatch(text); m != nil {
		text = strings.TrimSpace(m[1])
	}
	return stripQuoteWrapping(text)
}

// stripQuoteWrapping removes a matching pair of outer quotes when the
// entire text is wrapped in them.
func stripQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	first, last := runes[0], runes[n-1]
	if (first == '"' && last == '"') ||
		(first == '\'' && last == '\'') ||
		(first == '«' && last == '»') ||
		(first == '“' && last == '”') ||
		(first == '‘' && last == '’') {
		return strings.TrimSpace(string(runes[1 : n-1]))
	}
	return text
}

// ExtractJSONArray cleans the reply, locates the first top-level JSON array
// in it, and unmarshals that array into v. It tolerates prose before and
// after the array but rejects replies containing no array at all.
func ExtractJSONArray(reply string, v any) error {
	text := Clean(reply)

	start := strings.IndexByte(text, '[')
	if start < 0 {
		return fmt.Errorf("reply contains no JSON array")
	}
	end := matchingBracket(text, start)
	if end < 0 {
		return fmt.Errorf("reply contains an unterminated JSON array")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return fmt.Errorf("failed to decode JSON array: %w", err)
	}
	return nil
}

// matchingBracket returns the index of the ']' closing the '[' at start,
// skipping brackets inside JSON strings, or -1.
func matchingBracket(s string, start int) int {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

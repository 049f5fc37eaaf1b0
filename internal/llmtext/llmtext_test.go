package llmtext

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text untouched",
			input:    "Just the translated text.",
			expected: "Just the translated text.",
		},
		{
			name:     "thinking block removed",
			input:    "<thinking>let me ponder</thinking>The answer.",
			expected: "The answer.",
		},
		{
			name:     "think tag removed",
			input:    "<think>hmm\nmultiline</think>The answer.",
			expected: "The answer.",
		},
		{
			name:     "truncated thinking removed",
			input:    "The answer.<thinking>and then the model was cut o",
			expected: "The answer.",
		},
		{
			name:     "echo prefix removed",
			input:    "Here's the translation: Bonjour.",
			expected: "Bonjour.",
		},
		{
			name:     "bare label removed",
			input:    "Translation: Bonjour.",
			expected: "Bonjour.",
		},
		{
			name:     "polite echo removed",
			input:    "Sure, here is the result: Bonjour.",
			expected: "Bonjour.",
		},
		{
			name:     "code fence unwrapped",
			input:    "```json\n[1, 2]\n```",
			expected: "[1, 2]",
		},
		{
			name:     "plain fence unwrapped",
			input:    "```\nhello\n```",
			expected: "hello",
		},
		{
			name:     "wrapping quotes stripped",
			input:    `"Bonjour."`,
			expected: "Bonjour.",
		},
		{
			name:     "guillemets stripped",
			input:    "«Bonjour.»",
			expected: "Bonjour.",
		},
		{
			name:     "interior quotes kept",
			input:    `He said "yes" and left.`,
			expected: `He said "yes" and left.`,
		},
		{
			name:     "empty input",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.input)
			if got != tt.expected {
				t.Errorf("Clean(%q) = %q, expected %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestExtractJSONArray(t *testing.T) {
	type guess struct {
		N       int    `json:"n"`
		Speaker string `json:"speaker"`
	}

	t.Run("bare array", func(t *testing.T) {
		var got []guess
		err := ExtractJSONArray(`[{"n":1,"speaker":"Yahweh"}]`, &got)
		if err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(got) != 1 || got[0].Speaker != "Yahweh" {
			t.Errorf("unexpected result %v", got)
		}
	})

	t.Run("array with prose around it", func(t *testing.T) {
		var got []guess
		reply := `Based on the context, the speakers are:
[{"n":1,"speaker":"Narrator"},{"n":2,"speaker":"Yahweh"}]
Let me know if you need anything else.`
		if err := ExtractJSONArray(reply, &got); err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(got) != 2 {
			t.Errorf("expected 2 guesses, got %d", len(got))
		}
	})

	t.Run("fenced array", func(t *testing.T) {
		var got []guess
		reply := "```json\n[{\"n\":3,\"speaker\":\"Eve\"}]\n```"
		if err := ExtractJSONArray(reply, &got); err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(got) != 1 || got[0].N != 3 {
			t.Errorf("unexpected result %v", got)
		}
	})

	t.Run("brackets inside strings skipped", func(t *testing.T) {
		var got []guess
		reply := `[{"n":1,"speaker":"the [unknown] one"}]`
		if err := ExtractJSONArray(reply, &got); err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if got[0].Speaker != "the [unknown] one" {
			t.Errorf("unexpected speaker %q", got[0].Speaker)
		}
	})

	t.Run("nested arrays", func(t *testing.T) {
		var got [][]int
		if err := ExtractJSONArray("[[1,2],[3]]", &got); err != nil {
			t.Fatalf("extract failed: %v", err)
		}
		if len(got) != 2 || got[1][0] != 3 {
			t.Errorf("unexpected result %v", got)
		}
	})

	t.Run("no array", func(t *testing.T) {
		var got []guess
		if err := ExtractJSONArray("I could not determine any speakers.", &got); err == nil {
			t.Error("expected error for a reply with no array")
		}
	})

	t.Run("unterminated array", func(t *testing.T) {
		var got []guess
		if err := ExtractJSONArray(`[{"n":1`, &got); err == nil {
			t.Error("expected error for an unterminated array")
		}
	})

	t.Run("malformed array", func(t *testing.T) {
		var got []guess
		if err := ExtractJSONArray(`[{"n":}]`, &got); err == nil {
			t.Error("expected error for malformed JSON")
		}
	})
}

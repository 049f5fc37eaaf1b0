package translate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/valpere/bookweave/internal/llmtext"
	"github.com/valpere/bookweave/internal/terms"
)

// OllamaTranslator translates batches through a local Ollama model. Term
// preservation rides in the prompt instruction.
type OllamaTranslator struct {
	model   string
	baseURL string
	client  *http.Client
}

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type ollamaResponse struct {
	Response string `json:"response"`
}

// NewOllamaTranslator creates an Ollama-backed translator.
func NewOllamaTranslator(model, baseURL string) *OllamaTranslator {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaTranslator{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (o *OllamaTranslator) Name() string {
	return "ollama"
}

// TranslateBatch prompts the model with the whole batch as JSON and parses
// the JSON-array reply. Replies changing the item count or positions are
// rejected so a hallucinated reply can never scramble the merge.
func (o *OllamaTranslator) TranslateBatch(ctx context.Context, items []Item, sourceLang, targetLang string, preserve []string) ([]Item, error) {
	prompt, err := buildTranslationPrompt(items, sourceLang, targetLang, preserve)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(ollamaRequest{Model: o.model, Prompt: prompt, Stream: false})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal translation request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", o.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create translation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("translation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("translator returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode translation response: %w", err)
	}

	var out []Item
	if err := llmtext.ExtractJSONArray(ollamaResp.Response, &out); err != nil {
		return nil, fmt.Errorf("malformed translator reply: %w", err)
	}
	if len(out) != len(items) {
		return nil, fmt.Errorf("translator changed batch size: sent %d, got %d", len(items), len(out))
	}
	for i := range out {
		if out[i].N != items[i].N {
			return nil, fmt.Errorf("translator reordered batch at position %d", i)
		}
	}
	return out, nil
}

func buildTranslationPrompt(items []Item, sourceLang, targetLang string, preserve []string) (string, error) {
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch: %w", err)
	}

	return fmt.Sprintf(`You are a professional literary translator. Translate the "text" field of
every entry below from %s to %s.

%s
Do not merge, split, drop, or reorder entries: the reply must contain
exactly the same entries with the same "n" values, in the same order.

ENTRIES:
%s

Reply with ONLY the translated JSON array. Do not include any explanation.`,
		sourceLang, targetLang, terms.InstructionHint(preserve), payload), nil
}

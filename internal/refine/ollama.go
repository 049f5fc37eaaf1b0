package refine

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/valpere/bookweave/internal/llmtext"
)

// OllamaRefiner attributes speakers using a local Ollama model.
type OllamaRefiner struct {
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

// NewOllamaRefiner creates a refiner backed by a local Ollama model.
func NewOllamaRefiner(model, baseURL string) *OllamaRefiner {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	return &OllamaRefiner{
		model:   model,
		baseURL: baseURL,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// RefineSpeakers sends one batch to the model and parses the JSON-array
// reply. Entries with positions outside the batch are dropped.
func (r *OllamaRefiner) RefineSpeakers(ctx context.Context, items []Item, bc BookContext) ([]Guess, error) {
	prompt, err := buildSpeakerPrompt(items, bc)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(ollamaRequest{Model: r.model, Prompt: prompt, Stream: false})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal refinement request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", fmt.Sprintf("%s/api/generate", r.baseURL), bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create refinement request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("refinement request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("refiner returned status %d", resp.StatusCode)
	}

	var ollamaResp ollamaResponse
	if err := json.NewDecoder(resp.Body).Decode(&ollamaResp); err != nil {
		return nil, fmt.Errorf("failed to decode refinement response: %w", err)
	}

	var guesses []Guess
	if err := llmtext.ExtractJSONArray(ollamaResp.Response, &guesses); err != nil {
		return nil, fmt.Errorf("malformed refiner reply: %w", err)
	}

	valid := make(map[int]bool, len(items))
	for _, it := range items {
		valid[it.N] = true
	}
	out := guesses[:0]
	for _, g := range guesses {
		g.Speaker = strings.TrimSpace(g.Speaker)
		if valid[g.N] && g.Speaker != "" {
			out = append(out, g)
		}
	}
	return out, nil
}

func buildSpeakerPrompt(items []Item, bc BookContext) (string, error) {
	payload, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal batch: %w", err)
	}

	known := "none known yet"
	if len(bc.KnownSpeakers) > 0 {
		known = strings.Join(bc.KnownSpeakers, ", ")
	}

	return fmt.Sprintf(`You are an expert literary analyst attributing dialogue in the book %q.

Known speakers so far: %s.

Below is a JSON list of paragraphs whose speaker is uncertain. For each
paragraph you can attribute, decide who is speaking. Prefer the known
speakers; introduce a new name only when the text clearly names one.

PARAGRAPHS:
%s

Reply with ONLY a JSON array of objects {"n": <paragraph n>, "speaker": "<name>"}.
Omit paragraphs you cannot attribute. Do not include any explanation.`,
		bc.BookTitle, known, payload), nil
}

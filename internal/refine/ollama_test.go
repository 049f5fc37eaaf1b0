package refine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOllamaRefiner_New(t *testing.T) {
	r := NewOllamaRefiner("llama3.2", "")
	if r.baseURL != "http://localhost:11434" {
		t.Errorf("expected default base URL, got %q", r.baseURL)
	}
	if r.client == nil {
		t.Error("expected non-nil HTTP client")
	}
}

func TestOllamaRefiner_RefineSpeakers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/generate" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		var req ollamaRequest
		json.NewDecoder(r.Body).Decode(&req)
		if req.Model != "llama3.2" {
			t.Errorf("expected model 'llama3.2', got %q", req.Model)
		}
		if req.Stream {
			t.Error("expected stream=false")
		}

		json.NewEncoder(w).Encode(ollamaResponse{
			Response: `Here's the result: [{"n":1,"speaker":"Yahweh"},{"n":7,"speaker":"Ghost"},{"n":2,"speaker":"  "}]`,
		})
	}))
	defer server.Close()

	r := NewOllamaRefiner("llama3.2", server.URL)
	items := []Item{{N: 1, Text: "— I am here."}, {N: 2, Text: "— Short."}}

	guesses, err := r.RefineSpeakers(context.Background(), items, BookContext{BookTitle: "Genesis"})
	if err != nil {
		t.Fatalf("refine failed: %v", err)
	}

	// The out-of-batch position and the blank speaker are both dropped.
	if len(guesses) != 1 {
		t.Fatalf("expected 1 valid guess, got %d: %v", len(guesses), guesses)
	}
	if guesses[0].N != 1 || guesses[0].Speaker != "Yahweh" {
		t.Errorf("unexpected guess %v", guesses[0])
	}
}

func TestOllamaRefiner_MalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ollamaResponse{Response: "I cannot attribute any of these."})
	}))
	defer server.Close()

	r := NewOllamaRefiner("llama3.2", server.URL)
	_, err := r.RefineSpeakers(context.Background(), []Item{{N: 1, Text: "x"}}, BookContext{})
	if err == nil {
		t.Error("expected error for a reply with no JSON array")
	}
}

func TestOllamaRefiner_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	r := NewOllamaRefiner("llama3.2", server.URL)
	_, err := r.RefineSpeakers(context.Background(), []Item{{N: 1, Text: "x"}}, BookContext{})
	if err == nil {
		t.Error("expected error for a non-200 status")
	}
}

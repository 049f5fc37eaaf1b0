// Package refine implements the LLM-assisted correction pass for
// low-confidence speaker attribution. The strategy partitions paragraphs by
// confidence, batches the ambiguous ones to a Refiner collaborator, and
// merges results back by original position. Any batch failure degrades to
// the unmodified paragraphs; refinement never fails the pipeline.
package refine

import "context"

// Item is one paragraph sent to the collaborator: its chapter-scoped
// position and primary-language text.
type Item struct {
	N    int    `json:"n"`
	Text string `json:"text"`
}

// Guess is one collaborator answer. Positions absent from the reply leave
// the corresponding paragraph unchanged.
type Guess struct {
	N       int    `json:"n"`
	Speaker string `json:"speaker"`
}

// BookContext is the shared context sent with every batch.
type BookContext struct {
	BookTitle     string   `json:"book_title"`
	KnownSpeakers []string `json:"known_speakers"`
}

// Refiner attributes speakers to a batch of ambiguous paragraphs.
type Refiner interface {
	RefineSpeakers(ctx context.Context, items []Item, bc BookContext) ([]Guess, error)
}

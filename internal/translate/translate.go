// Package translate fills the per-language i18n slots of a book. The
// batcher chunks paragraphs per target language, builds term-preservation
// instructions, dispatches batches to a Translator collaborator, and merges
// translated text back by position without ever touching the source text.
package translate

import "context"

// Item is one unit of the translation contract: a position and its text.
// Requests and replies share the shape; positions absent from a reply leave
// the prior i18n value in place.
type Item struct {
	N    int    `json:"n"`
	Text string `json:"text"`
}

// Translator translates one batch between two languages, keeping the listed
// terms untranslated and preserving item count and order.
type Translator interface {
	Name() string
	TranslateBatch(ctx context.Context, items []Item, sourceLang, targetLang string, preserve []string) ([]Item, error)
}

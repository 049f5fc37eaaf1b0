package translate

import (
	"context"
	"fmt"
	"log/slog"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/bookweave/internal/terms"
)

// GoogleTranslator translates batches through the Cloud Translation API.
// Term preservation is mechanical: preserve-terms are swapped for [PHn]
// markers before the call and restored afterwards, since the API accepts no
// instructions.
type GoogleTranslator struct {
	credentials string
	logger      *slog.Logger
}

// NewGoogleTranslator creates a Google translator. credentials may be empty
// to use ambient application-default credentials.
func NewGoogleTranslator(credentials string, logger *slog.Logger) *GoogleTranslator {
	return &GoogleTranslator{credentials: credentials, logger: logger}
}

func (g *GoogleTranslator) Name() string {
	return "google"
}

// TranslateBatch sends all batch texts in one API call, preserving order.
func (g *GoogleTranslator) TranslateBatch(ctx context.Context, items []Item, sourceLang, targetLang string, preserve []string) ([]Item, error) {
	target, err := language.Parse(targetLang)
	if err != nil {
		return nil, fmt.Errorf("invalid target language %q: %w", targetLang, err)
	}

	var opts []option.ClientOption
	if g.credentials != "" {
		opts = append(opts, option.WithCredentialsFile(g.credentials))
	}
	client, err := translate.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create translate client: %w", err)
	}
	defer client.Close()

	texts := make([]string, len(items))
	captured := make([][]string, len(items))
	for i, it := range items {
		texts[i], captured[i] = terms.Protect(it.Text, preserve)
	}

	var transOpts *translate.Options
	if sourceLang != "" && sourceLang != "auto" {
		source, err := language.Parse(sourceLang)
		if err != nil {
			return nil, fmt.Errorf("invalid source language %q: %w", sourceLang, err)
		}
		transOpts = &translate.Options{Source: source, Format: translate.Text}
	} else {
		transOpts = &translate.Options{Format: translate.Text}
	}

	translations, err := client.Translate(ctx, texts, target, transOpts)
	if err != nil {
		return nil, fmt.Errorf("translation failed: %w", err)
	}
	if len(translations) != len(items) {
		return nil, fmt.Errorf("expected %d translations, got %d", len(items), len(translations))
	}

	out := make([]Item, len(items))
	for i, tr := range translations {
		out[i] = Item{N: items[i].N, Text: g.restore(tr.Text, captured[i], items[i].N)}
	}
	return out, nil
}

// restore substitutes the protected terms back in. Markers the service
// dropped cannot be restored; those terms are lost from the translation and
// are logged for review.
func (g *GoogleTranslator) restore(text string, captured []string, n int) string {
	if dropped := terms.Missing(text, captured); len(dropped) > 0 {
		lost := make([]string, 0, len(dropped))
		for _, idx := range dropped {
			lost = append(lost, captured[idx])
		}
		g.logger.Warn("translation dropped preserve-term markers", "n", n, "terms", lost)
	}
	return terms.Restore(text, captured)
}

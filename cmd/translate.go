/*
Copyright © 2025 Valentyn Solomko <valentyn.solomko@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/valpere/bookweave/internal/job"
	"github.com/valpere/bookweave/internal/translate"
	"github.com/valpere/bookweave/internal/validator"
)

var (
	transSlug      string
	transTargets   []string
	transService   string
	transCreds     string
	transModel     string
	transURL       string
	transBatchSize int
	transConcur    int
	transPreserve  []string
	transValidate  bool
)

var translateCmd = &cobra.Command{
	Use:   "translate",
	Short: "Fill translation slots of a stored book",
	Long: `Translate a stored book into one or more target languages, batch by
batch, merging results into the per-language i18n slots. Source text is
never modified and a failed batch never blocks the others.

Available services:
  - google   Google Cloud Translation (requires credentials)
  - ollama   Ollama LLM (self-hosted)

Preserve-terms registered with "bookweave terms add" are kept untranslated;
--preserve adds more for this run only.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		ctx := context.Background()

		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		b, err := db.LoadBook(ctx, transSlug)
		if err != nil {
			return err
		}

		tr, err := buildTranslator(transService, transCreds, transModel, transURL, logger)
		if err != nil {
			return err
		}

		preserve, err := db.ListTerms(ctx, transSlug)
		if err != nil {
			return fmt.Errorf("failed to load preserve-terms: %w", err)
		}
		preserve = append(preserve, transPreserve...)

		var check *validator.Validator
		if transValidate {
			check = validator.New()
		}

		jobID, err := db.CreateJob(ctx, transSlug)
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		_ = db.AdvanceJob(ctx, jobID, job.StatusTranslating, "")

		batcher := translate.NewBatcher(tr, translate.Config{
			Targets:     transTargets,
			Preserve:    preserve,
			BatchSize:   transBatchSize,
			Concurrency: transConcur,
		}, check, logger)

		filled := batcher.Pass(ctx, b)

		if err := db.SaveBook(ctx, b); err != nil {
			_ = db.AdvanceJob(ctx, jobID, job.StatusError, err.Error())
			return fmt.Errorf("failed to save book: %w", err)
		}
		_ = db.AdvanceJob(ctx, jobID, job.StatusComplete, "")

		fmt.Printf("Translated %q via %s: %d slot(s) filled across %d language(s)\n",
			transSlug, tr.Name(), filled, len(transTargets))
		if filled == 0 {
			fmt.Fprintln(os.Stderr, "No slots filled; check service availability")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(translateCmd)

	translateCmd.Flags().StringVar(&transSlug, "slug", "", "Book to translate (required)")
	translateCmd.Flags().StringSliceVarP(&transTargets, "targets", "t", nil, "Target language codes (required)")
	translateCmd.Flags().StringVar(&transService, "service", "ollama", "Translation service (google, ollama)")
	translateCmd.Flags().StringVarP(&transCreds, "credentials", "c", "", "Path to Google Cloud credentials")
	translateCmd.Flags().StringVar(&transModel, "model", "llama3.2", "Ollama model name")
	translateCmd.Flags().StringVar(&transURL, "ollama-url", "http://localhost:11434", "Ollama base URL")
	translateCmd.Flags().IntVar(&transBatchSize, "batch-size", translate.DefaultBatchSize, "Paragraphs per translation batch")
	translateCmd.Flags().IntVar(&transConcur, "concurrency", translate.DefaultConcurrency, "Concurrent translation batches")
	translateCmd.Flags().StringSliceVar(&transPreserve, "preserve", nil, "Extra terms to keep untranslated")
	translateCmd.Flags().BoolVar(&transValidate, "validate", false, "Check translated text is in the target language")

	translateCmd.MarkFlagRequired("slug")
	translateCmd.MarkFlagRequired("targets")
}

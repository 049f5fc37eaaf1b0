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
	"strings"

	"github.com/spf13/cobra"

	"github.com/valpere/bookweave/internal/engine"
	"github.com/valpere/bookweave/internal/job"
	"github.com/valpere/bookweave/internal/profile"
	"github.com/valpere/bookweave/internal/refine"
)

var (
	structInput   string
	structSlug    string
	structCode    string
	structTitle   string
	structLang    string
	structProfile string

	structRefine     bool
	structThreshold  float64
	structBatchSize  int
	refinerModel     string
	refinerURL       string
	refineConcurrent int
)

var structureCmd = &cobra.Command{
	Use:   "structure",
	Short: "Build a structured book from raw OCR text",
	Long: `Segment raw OCR markdown into chapters, paragraphs and speakers under a
rule profile, stamp reference ids, and save the draft book.

With --refine, low-confidence paragraphs are sent to an Ollama model in
batches for speaker attribution; a failed batch leaves its paragraphs
untouched.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		raw, err := os.ReadFile(structInput)
		if err != nil {
			return fmt.Errorf("failed to read input file: %w", err)
		}

		logger := newLogger()
		ctx := context.Background()

		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		jobID, err := db.CreateJob(ctx, structSlug)
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		_ = db.AdvanceJob(ctx, jobID, job.StatusParsing, "")

		p := profile.Default()
		if structProfile != "" {
			p = profile.Load(structProfile, logger)
		}

		code := strings.ToUpper(strings.TrimSpace(structCode))
		b := engine.New(logger).Build(structSlug, code, structLang, structTitle, string(raw), p)

		if structRefine {
			_ = db.AdvanceJob(ctx, jobID, job.StatusRefining, "")
			remembered, err := db.ListSpeakers(ctx, structSlug)
			if err != nil {
				return fmt.Errorf("failed to load remembered speakers: %w", err)
			}
			strategy := refine.NewStrategy(
				refine.NewOllamaRefiner(refinerModel, refinerURL),
				refine.Config{
					Threshold:   structThreshold,
					BatchSize:   structBatchSize,
					Concurrency: refineConcurrent,
					Known:       remembered,
				},
				logger,
			)
			refined := strategy.Pass(ctx, b)
			if refined > 0 {
				_ = db.RememberSpeakers(ctx, b.Slug, b.KnownSpeakers())
			}
			fmt.Fprintf(os.Stderr, "Refined %d paragraph(s)\n", refined)
		}

		if err := db.SaveBook(ctx, b); err != nil {
			_ = db.AdvanceJob(ctx, jobID, job.StatusError, err.Error())
			return fmt.Errorf("failed to save book: %w", err)
		}
		_ = db.AdvanceJob(ctx, jobID, job.StatusComplete, "")

		fmt.Printf("Structured %q: %d chapter(s), %d paragraph(s)\n",
			structSlug, len(b.Chapters), b.ParagraphCount())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(structureCmd)

	structureCmd.Flags().StringVarP(&structInput, "input", "i", "", "Input OCR text file (required)")
	structureCmd.Flags().StringVar(&structSlug, "slug", "", "Stable book identifier (required)")
	structureCmd.Flags().StringVar(&structCode, "code", "", "Short uppercase code used in reference ids (required)")
	structureCmd.Flags().StringVar(&structTitle, "title", "", "Book title in its primary language")
	structureCmd.Flags().StringVar(&structLang, "lang", "en", "Primary language code")
	structureCmd.Flags().StringVar(&structProfile, "profile", "", "Rule profile JSON file (built-in default if omitted)")

	structureCmd.Flags().BoolVar(&structRefine, "refine", false, "Run LLM speaker refinement on low-confidence paragraphs")
	structureCmd.Flags().Float64Var(&structThreshold, "threshold", refine.DefaultThreshold, "Confidence threshold below which paragraphs are refined")
	structureCmd.Flags().IntVar(&structBatchSize, "batch-size", refine.DefaultBatchSize, "Paragraphs per refinement batch")
	structureCmd.Flags().IntVar(&refineConcurrent, "concurrency", refine.DefaultConcurrency, "Concurrent refinement batches")
	structureCmd.Flags().StringVar(&refinerModel, "refiner-model", "llama3.2", "Refiner model name")
	structureCmd.Flags().StringVar(&refinerURL, "refiner-url", "http://localhost:11434", "Refiner Ollama URL")

	structureCmd.MarkFlagRequired("input")
	structureCmd.MarkFlagRequired("slug")
	structureCmd.MarkFlagRequired("code")
}

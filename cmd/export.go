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
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/valpere/bookweave/internal/export"
	"github.com/valpere/bookweave/internal/job"
)

var (
	exportSlug string
	exportDir  string
	exportHTML string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export a stored book as its canonical JSON artifact",
	Long: `Serialize a stored book to the canonical JSON artifact. Small books
become a single "{slug}.json"; books above the size threshold become a
"{slug}/" directory with one file per chapter and a _meta.json index.
The artifact is schema-validated first; a violation aborts the export and
lists every offending path.

--html additionally writes an HTML preview in the given language ("primary"
for the source text).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		ctx := context.Background()

		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		b, err := db.LoadBook(ctx, exportSlug)
		if err != nil {
			return err
		}

		jobID, err := db.CreateJob(ctx, exportSlug)
		if err != nil {
			return fmt.Errorf("failed to create job: %w", err)
		}
		_ = db.AdvanceJob(ctx, jobID, job.StatusExporting, "")

		doc := export.Build(b)
		written, err := export.NewExporter(logger).WriteDoc(doc, exportDir)
		if err != nil {
			_ = db.AdvanceJob(ctx, jobID, job.StatusError, err.Error())
			return err
		}

		if exportHTML != "" {
			lang := exportHTML
			if lang == "primary" {
				lang = ""
			}
			html := export.RenderHTML(doc, lang)
			path := filepath.Join(exportDir, exportSlug+".html")
			if err := os.WriteFile(path, []byte(html), 0o644); err != nil {
				_ = db.AdvanceJob(ctx, jobID, job.StatusError, err.Error())
				return fmt.Errorf("failed to write HTML preview: %w", err)
			}
			written = append(written, path)
		}

		_ = db.AdvanceJob(ctx, jobID, job.StatusComplete, "")
		fmt.Printf("Exported %q: %d file(s)\n", exportSlug, len(written))
		for _, p := range written {
			fmt.Printf("  %s\n", p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportSlug, "slug", "", "Book to export (required)")
	exportCmd.Flags().StringVarP(&exportDir, "out", "o", "./out", "Output directory")
	exportCmd.Flags().StringVar(&exportHTML, "html", "", `Also write an HTML preview in this language ("primary" for source)`)

	exportCmd.MarkFlagRequired("slug")
}

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

	"github.com/spf13/cobra"
)

var termsSlug string

var termsCmd = &cobra.Command{
	Use:   "terms",
	Short: "Manage preserve-terms for a book",
	Long: `Preserve-terms (proper nouns, invented names) are kept untranslated by
every translation pass over the book.`,
}

var termsAddCmd = &cobra.Command{
	Use:   "add <term>...",
	Short: "Register preserve-terms for a book",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		ctx := context.Background()
		for _, term := range args {
			if err := db.AddTerm(ctx, termsSlug, term); err != nil {
				return fmt.Errorf("failed to add term %q: %w", term, err)
			}
		}
		fmt.Printf("Added %d term(s) for %q\n", len(args), termsSlug)
		return nil
	},
}

var termsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List preserve-terms for a book",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		terms, err := db.ListTerms(context.Background(), termsSlug)
		if err != nil {
			return fmt.Errorf("failed to list terms: %w", err)
		}
		if len(terms) == 0 {
			fmt.Printf("No preserve-terms for %q\n", termsSlug)
			return nil
		}
		for _, t := range terms {
			fmt.Println(t)
		}
		return nil
	},
}

var termsDeleteCmd = &cobra.Command{
	Use:   "delete <term>",
	Short: "Remove a preserve-term from a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteTerm(context.Background(), termsSlug, args[0]); err != nil {
			return fmt.Errorf("failed to delete term: %w", err)
		}
		fmt.Printf("Deleted term %q from %q\n", args[0], termsSlug)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(termsCmd)

	termsCmd.PersistentFlags().StringVar(&termsSlug, "slug", "", "Book the terms belong to (required)")
	termsCmd.MarkPersistentFlagRequired("slug")

	termsCmd.AddCommand(termsAddCmd)
	termsCmd.AddCommand(termsListCmd)
	termsCmd.AddCommand(termsDeleteCmd)
}

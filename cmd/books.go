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
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var booksCmd = &cobra.Command{
	Use:   "books",
	Short: "Manage stored books",
}

var booksListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all stored books",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		books, err := db.ListBooks(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list books: %w", err)
		}
		if len(books) == 0 {
			fmt.Println("No books stored.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SLUG\tCODE\tLANG\tREV\tUPDATED")
		for _, b := range books {
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				b.Slug, b.Code, b.PrimaryLang, b.Revision,
				b.Updated.Format("2006-01-02 15:04"))
		}
		return w.Flush()
	},
}

var booksJobsCmd = &cobra.Command{
	Use:   "jobs <slug>",
	Short: "List pipeline jobs for a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		jobs, err := db.ListJobs(context.Background(), args[0])
		if err != nil {
			return fmt.Errorf("failed to list jobs: %w", err)
		}
		if len(jobs) == 0 {
			fmt.Printf("No jobs for %q\n", args[0])
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSTATUS\tCREATED\tUPDATED\tERROR")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				j.ID, j.Status,
				j.CreatedAt.Format("2006-01-02 15:04"),
				j.UpdatedAt.Format("2006-01-02 15:04"),
				j.Error)
		}
		return w.Flush()
	},
}

var booksDeleteCmd = &cobra.Command{
	Use:   "delete <slug>",
	Short: "Delete a stored book and its jobs, terms, and speakers",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openStore()
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		if err := db.DeleteBook(context.Background(), args[0]); err != nil {
			return fmt.Errorf("failed to delete book: %w", err)
		}
		fmt.Printf("Deleted book %q\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(booksCmd)

	booksCmd.AddCommand(booksListCmd)
	booksCmd.AddCommand(booksJobsCmd)
	booksCmd.AddCommand(booksDeleteCmd)
}

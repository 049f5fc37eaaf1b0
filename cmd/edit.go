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

	"github.com/valpere/bookweave/internal/book"
)

var editSlug string

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Apply structural edits to a stored book",
	Long: `Structural edit operations on a stored book, addressed by reference id
or position. Invalid addresses are no-ops; the whole tree is renumbered
after every edit, so reference ids printed before an edit may change.`,
}

// runEdit loads the book, applies op, and saves it back when changed.
func runEdit(op func(*book.Book) bool) error {
	ctx := context.Background()

	db, err := openStore()
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	b, err := db.LoadBook(ctx, editSlug)
	if err != nil {
		return err
	}

	if !op(b) {
		fmt.Println("No change (address not found or edit not applicable)")
		return nil
	}

	b.Touch()
	if err := db.SaveBook(ctx, b); err != nil {
		return fmt.Errorf("failed to save book: %w", err)
	}
	fmt.Printf("Edited %q (revision %d)\n", editSlug, b.Revision)
	return nil
}

var mergeParagraphsCmd = &cobra.Command{
	Use:   "merge-paragraphs <refId>",
	Short: "Merge the paragraph at refId with its successor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(func(b *book.Book) bool { return b.MergeParagraphs(args[0]) })
	},
}

var splitParagraphCmd = &cobra.Command{
	Use:   "split-paragraph <refId> <offset>",
	Short: "Split the paragraph at refId at a rune offset",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var offset int
		if _, err := fmt.Sscanf(args[1], "%d", &offset); err != nil {
			return fmt.Errorf("invalid offset %q", args[1])
		}
		return runEdit(func(b *book.Book) bool { return b.SplitParagraph(args[0], offset) })
	},
}

var splitChapterCmd = &cobra.Command{
	Use:   "split-chapter <refId>",
	Short: "Start a new chapter at the paragraph refId",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(func(b *book.Book) bool { return b.SplitChapterAt(args[0]) })
	},
}

var splitSectionCmd = &cobra.Command{
	Use:   "split-section <refId>",
	Short: "Start a new section at the paragraph refId",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(func(b *book.Book) bool { return b.SplitSectionAt(args[0]) })
	},
}

var mergeChaptersCmd = &cobra.Command{
	Use:   "merge-chapters <n>",
	Short: "Absorb chapter n+1 into chapter n",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var n int
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
			return fmt.Errorf("invalid chapter number %q", args[0])
		}
		return runEdit(func(b *book.Book) bool { return b.MergeChapters(n) })
	},
}

var mergeSectionsCmd = &cobra.Command{
	Use:   "merge-sections <chapterN> <sectionN>",
	Short: "Absorb section sectionN+1 into section sectionN of a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cn, sn int
		if _, err := fmt.Sscanf(args[0], "%d", &cn); err != nil {
			return fmt.Errorf("invalid chapter number %q", args[0])
		}
		if _, err := fmt.Sscanf(args[1], "%d", &sn); err != nil {
			return fmt.Errorf("invalid section number %q", args[1])
		}
		return runEdit(func(b *book.Book) bool { return b.MergeSections(cn, sn) })
	},
}

var deleteParagraphsCmd = &cobra.Command{
	Use:   "delete-paragraphs <refId>...",
	Short: "Delete the paragraphs addressed by the given refIds",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runEdit(func(b *book.Book) bool { return b.DeleteParagraphs(args) })
	},
}

var deleteChapterCmd = &cobra.Command{
	Use:   "delete-chapter <n>",
	Short: "Delete chapter n",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var n int
		if _, err := fmt.Sscanf(args[0], "%d", &n); err != nil {
			return fmt.Errorf("invalid chapter number %q", args[0])
		}
		return runEdit(func(b *book.Book) bool { return b.DeleteChapter(n) })
	},
}

var deleteSectionCmd = &cobra.Command{
	Use:   "delete-section <chapterN> <n>",
	Short: "Delete section n of a chapter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var cn, sn int
		if _, err := fmt.Sscanf(args[0], "%d", &cn); err != nil {
			return fmt.Errorf("invalid chapter number %q", args[0])
		}
		if _, err := fmt.Sscanf(args[1], "%d", &sn); err != nil {
			return fmt.Errorf("invalid section number %q", args[1])
		}
		return runEdit(func(b *book.Book) bool { return b.DeleteSection(cn, sn) })
	},
}

var insertBreakCmd = &cobra.Command{
	Use:   "break <refId>",
	Short: "Insert a chapter or section break before the paragraph refId",
	Long: `Insert a structural break immediately before the paragraph at refId.
--kind chapter starts a new chapter there; --kind section starts a new
section (synthesizing sections when the chapter has none).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind, _ := cmd.Flags().GetString("kind")
		switch kind {
		case "chapter":
			return runEdit(func(b *book.Book) bool { return b.SplitChapterAt(args[0]) })
		case "section":
			return runEdit(func(b *book.Book) bool { return b.SplitSectionAt(args[0]) })
		default:
			return fmt.Errorf("unknown break kind: %s", kind)
		}
	},
}

func init() {
	rootCmd.AddCommand(editCmd)

	editCmd.PersistentFlags().StringVar(&editSlug, "slug", "", "Book to edit (required)")
	editCmd.MarkPersistentFlagRequired("slug")

	insertBreakCmd.Flags().String("kind", "section", "Break kind (chapter, section)")

	editCmd.AddCommand(mergeParagraphsCmd)
	editCmd.AddCommand(splitParagraphCmd)
	editCmd.AddCommand(splitChapterCmd)
	editCmd.AddCommand(splitSectionCmd)
	editCmd.AddCommand(mergeChaptersCmd)
	editCmd.AddCommand(mergeSectionsCmd)
	editCmd.AddCommand(deleteParagraphsCmd)
	editCmd.AddCommand(deleteChapterCmd)
	editCmd.AddCommand(deleteSectionCmd)
	editCmd.AddCommand(insertBreakCmd)
}

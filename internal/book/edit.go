package book

import "strings"

// Structural edit operations. Every operation is a total function over a
// valid tree: invalid addresses and impossible cuts are no-ops, never
// errors, so callers may retry freely with stale reference ids. Each
// operation finishes with AssignRefs, and the returned bool reports whether
// the tree changed.

// paragraphJoin separates the texts of two merged paragraphs.
const paragraphJoin = "\n\n"

// MergeParagraphs concatenates the paragraph at refID with its immediate
// successor in the same scope (section, or chapter for flat chapters) and
// drops the successor. The last paragraph of a scope has no successor.
func (b *Book) MergeParagraphs(refID string) bool {
	defer b.AssignRefs()

	loc, ok := b.findParagraph(refID)
	if !ok {
		return false
	}
	ps := b.scopeParagraphs(loc)
	if loc.index >= len(ps)-1 {
		return false
	}

	head, next := ps[loc.index], ps[loc.index+1]
	head.Text = head.Text + paragraphJoin + next.Text
	head.I18n = nil
	head.Vetted = Unreviewed
	if next.Confidence < head.Confidence {
		head.Confidence = next.Confidence
	}

	b.setScopeParagraphs(loc, append(ps[:loc.index+1], ps[loc.index+2:]...))
	b.removeEmptySections()
	return true
}

// SplitParagraph cuts the paragraph at refID at the given rune offset,
// creating a new downstream sibling holding the tail. Offsets at or beyond
// the text bounds, or cutting an all-whitespace half, are no-ops.
func (b *Book) SplitParagraph(refID string, offset int) bool {
	defer b.AssignRefs()

	loc, ok := b.findParagraph(refID)
	if !ok {
		return false
	}
	ps := b.scopeParagraphs(loc)
	p := ps[loc.index]

	runes := []rune(p.Text)
	if offset <= 0 || offset >= len(runes) {
		return false
	}
	head := strings.TrimSpace(string(runes[:offset]))
	tail := strings.TrimSpace(string(runes[offset:]))
	if head == "" || tail == "" {
		return false
	}

	p.Text = head
	p.I18n = nil
	p.Vetted = Unreviewed
	tailPara := &Paragraph{
		Text:       tail,
		Speaker:    p.Speaker,
		Confidence: p.Confidence,
	}

	out := make([]*Paragraph, 0, len(ps)+1)
	out = append(out, ps[:loc.index+1]...)
	out = append(out, tailPara)
	out = append(out, ps[loc.index+1:]...)
	b.setScopeParagraphs(loc, out)
	return true
}

// SplitChapterAt cuts the owning chapter immediately before the paragraph at
// refID, creating a new untitled downstream chapter. Splitting before the
// first paragraph would create an empty leading chapter and is a no-op. For
// sectioned chapters the owning section is cut as well and the tail sections
// move to the new chapter; both halves re-flatten when left with fewer than
// two sections.
func (b *Book) SplitChapterAt(refID string) bool {
	defer b.AssignRefs()

	loc, ok := b.findParagraph(refID)
	if !ok {
		return false
	}
	ch := b.Chapters[loc.chapter]

	var tail *Chapter
	if loc.section < 0 {
		if loc.index == 0 {
			return false
		}
		tail = NewChapter("", ch.flat[loc.index:])
		ch.flat = ch.flat[:loc.index]
	} else {
		if loc.section == 0 && loc.index == 0 {
			return false
		}
		sec := ch.sections[loc.section]
		tailSections := make([]*Section, 0, len(ch.sections)-loc.section)
		if loc.index > 0 {
			tailSections = append(tailSections, &Section{
				Title:      sec.Title,
				Paragraphs: sec.Paragraphs[loc.index:],
			})
			sec.Paragraphs = sec.Paragraphs[:loc.index]
			tailSections = append(tailSections, ch.sections[loc.section+1:]...)
			ch.sections = ch.sections[:loc.section+1]
		} else {
			tailSections = append(tailSections, ch.sections[loc.section:]...)
			ch.sections = ch.sections[:loc.section]
		}
		tail = &Chapter{}
		tail.SetSections(tailSections)
		ch.SetSections(ch.sections)
	}

	out := make([]*Chapter, 0, len(b.Chapters)+1)
	out = append(out, b.Chapters[:loc.chapter+1]...)
	out = append(out, tail)
	out = append(out, b.Chapters[loc.chapter+1:]...)
	b.Chapters = out
	return true
}

// SplitSectionAt cuts the owning section immediately before the paragraph at
// refID. On a flat chapter it synthesizes two sections from the flat
// paragraph list; on a sectioned chapter only the owning section is split.
// Splitting before the first paragraph of a scope is a no-op.
func (b *Book) SplitSectionAt(refID string) bool {
	defer b.AssignRefs()

	loc, ok := b.findParagraph(refID)
	if !ok {
		return false
	}
	ch := b.Chapters[loc.chapter]

	if loc.section < 0 {
		if loc.index == 0 {
			return false
		}
		ch.SetSections([]*Section{
			{Paragraphs: ch.flat[:loc.index]},
			{Paragraphs: ch.flat[loc.index:]},
		})
		return true
	}

	if loc.index == 0 {
		return false
	}
	sec := ch.sections[loc.section]
	tail := &Section{Paragraphs: sec.Paragraphs[loc.index:]}
	sec.Paragraphs = sec.Paragraphs[:loc.index]

	out := make([]*Section, 0, len(ch.sections)+1)
	out = append(out, ch.sections[:loc.section+1]...)
	out = append(out, tail)
	out = append(out, ch.sections[loc.section+1:]...)
	ch.sections = out
	return true
}

// MergeChapters absorbs chapter n+1 into chapter n. Mixed bodies are
// reconciled toward the richer form: a flat side is wrapped into a single
// untitled section when the other side is sectioned.
func (b *Book) MergeChapters(n int) bool {
	defer b.AssignRefs()

	i := n - 1
	if i < 0 || i >= len(b.Chapters)-1 {
		return false
	}
	ch, next := b.Chapters[i], b.Chapters[i+1]

	switch {
	case ch.sections == nil && next.sections == nil:
		ch.flat = append(ch.flat, next.flat...)
	case ch.sections != nil && next.sections != nil:
		ch.sections = append(ch.sections, next.sections...)
	case ch.sections != nil:
		ch.sections = append(ch.sections, &Section{Title: next.Title, Paragraphs: next.flat})
	default:
		secs := append([]*Section{{Title: ch.Title, Paragraphs: ch.flat}}, next.sections...)
		ch.SetSections(secs)
	}

	b.Chapters = append(b.Chapters[:i+1], b.Chapters[i+2:]...)
	return true
}

// MergeSections absorbs section sectionN+1 of chapter chapterN into section
// sectionN. When the merge leaves the chapter with a single section, the
// chapter collapses back to flat paragraph form.
func (b *Book) MergeSections(chapterN, sectionN int) bool {
	defer b.AssignRefs()

	ci := chapterN - 1
	if ci < 0 || ci >= len(b.Chapters) {
		return false
	}
	ch := b.Chapters[ci]
	si := sectionN - 1
	if ch.sections == nil || si < 0 || si >= len(ch.sections)-1 {
		return false
	}

	sec, next := ch.sections[si], ch.sections[si+1]
	sec.Paragraphs = append(sec.Paragraphs, next.Paragraphs...)
	ch.SetSections(append(ch.sections[:si+1], ch.sections[si+2:]...))
	return true
}

// DeleteParagraphs removes every paragraph addressed by refIDs. Ids that
// resolve to nothing are skipped. Sections emptied by the removal are
// dropped, which may flatten the owning chapter.
func (b *Book) DeleteParagraphs(refIDs []string) bool {
	defer b.AssignRefs()

	doomed := make(map[string]bool, len(refIDs))
	for _, id := range refIDs {
		doomed[id] = true
	}

	changed := false
	for _, ch := range b.Chapters {
		if ch.sections != nil {
			for _, sec := range ch.sections {
				sec.Paragraphs, changed = dropDoomed(sec.Paragraphs, doomed, changed)
			}
			continue
		}
		ch.flat, changed = dropDoomed(ch.flat, doomed, changed)
	}
	if changed {
		b.removeEmptySections()
	}
	return changed
}

func dropDoomed(ps []*Paragraph, doomed map[string]bool, changed bool) ([]*Paragraph, bool) {
	out := ps[:0]
	for _, p := range ps {
		if doomed[p.RefID] {
			changed = true
			continue
		}
		out = append(out, p)
	}
	return out, changed
}

// DeleteChapter removes chapter n.
func (b *Book) DeleteChapter(n int) bool {
	defer b.AssignRefs()

	i := n - 1
	if i < 0 || i >= len(b.Chapters) {
		return false
	}
	b.Chapters = append(b.Chapters[:i], b.Chapters[i+1:]...)
	return true
}

// DeleteSection removes section n of chapter chapterN. A chapter left with
// one section collapses back to flat paragraph form.
func (b *Book) DeleteSection(chapterN, n int) bool {
	defer b.AssignRefs()

	ci := chapterN - 1
	if ci < 0 || ci >= len(b.Chapters) {
		return false
	}
	ch := b.Chapters[ci]
	si := n - 1
	if ch.sections == nil || si < 0 || si >= len(ch.sections) {
		return false
	}
	ch.SetSections(append(ch.sections[:si], ch.sections[si+1:]...))
	return true
}

// removeEmptySections drops sections left without paragraphs, flattening
// chapters that fall below two sections.
func (b *Book) removeEmptySections() {
	for _, ch := range b.Chapters {
		if ch.sections == nil {
			continue
		}
		kept := ch.sections[:0]
		for _, sec := range ch.sections {
			if len(sec.Paragraphs) > 0 {
				kept = append(kept, sec)
			}
		}
		ch.SetSections(kept)
	}
}

package book

import "fmt"

// AssignRefs renumbers the whole tree and restamps every reference id. It is
// the only place that writes the N and RefID fields, it is idempotent, and
// it must run after every structural mutation before the tree is considered
// valid.
//
// Chapters are numbered 1..len in order and stamped "{code}-{n}". Within a
// chapter a single paragraph counter runs across section boundaries, so
// paragraph numbering is chapter-scoped and does not reset per section.
// Paragraphs are stamped "{code}-{chapterN}:{paragraphN}".
func (b *Book) AssignRefs() {
	for ci, ch := range b.Chapters {
		ch.normalize()
		ch.N = ci + 1
		ch.RefID = fmt.Sprintf("%s-%d", b.Code, ch.N)

		pn := 0
		stamp := func(p *Paragraph) {
			pn++
			p.N = pn
			p.RefID = fmt.Sprintf("%s-%d:%d", b.Code, ch.N, pn)
		}

		if ch.sections != nil {
			for si, sec := range ch.sections {
				sec.N = si + 1
				for _, p := range sec.Paragraphs {
					stamp(p)
				}
			}
		} else {
			for _, p := range ch.flat {
				stamp(p)
			}
		}
	}
}

// paraLoc addresses one paragraph inside the tree. section is -1 for flat
// chapters.
type paraLoc struct {
	chapter int
	section int
	index   int // position within the owning paragraph slice
}

// findParagraph resolves a paragraph reference id to its location. The
// second return value is false when the id does not address any paragraph.
func (b *Book) findParagraph(refID string) (paraLoc, bool) {
	for ci, ch := range b.Chapters {
		if ch.sections != nil {
			for si, sec := range ch.sections {
				for pi, p := range sec.Paragraphs {
					if p.RefID == refID {
						return paraLoc{chapter: ci, section: si, index: pi}, true
					}
				}
			}
			continue
		}
		for pi, p := range ch.flat {
			if p.RefID == refID {
				return paraLoc{chapter: ci, section: -1, index: pi}, true
			}
		}
	}
	return paraLoc{}, false
}

// scopeParagraphs returns the paragraph slice owning the location: the
// section's slice for sectioned chapters, the chapter's flat slice otherwise.
func (b *Book) scopeParagraphs(loc paraLoc) []*Paragraph {
	ch := b.Chapters[loc.chapter]
	if loc.section >= 0 {
		return ch.sections[loc.section].Paragraphs
	}
	return ch.flat
}

// setScopeParagraphs writes back the paragraph slice for a location.
func (b *Book) setScopeParagraphs(loc paraLoc, ps []*Paragraph) {
	ch := b.Chapters[loc.chapter]
	if loc.section >= 0 {
		ch.sections[loc.section].Paragraphs = ps
		return
	}
	ch.flat = ps
}

package export

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

// RenderHTML produces a human-readable HTML preview of the book in the
// given language (empty lang renders the primary text). Paragraph text may
// carry residual markdown emphasis from the OCR source, so the preview runs
// through a markdown renderer rather than plain escaping.
func RenderHTML(doc BookDoc, lang string) string {
	var md strings.Builder
	md.WriteString(fmt.Sprintf("# %s\n\n", pick(doc.Titles, doc.PrimaryLang, lang)))

	for _, ch := range doc.Chapters {
		if title := pickTitle(ch.Title, ch.I18n, lang); title != "" {
			md.WriteString(fmt.Sprintf("## %s\n\n", title))
		}
		if ch.Sections != nil {
			for _, sec := range ch.Sections {
				if title := pickTitle(sec.Title, sec.I18n, lang); title != "" {
					md.WriteString(fmt.Sprintf("### %s\n\n", title))
				}
				writeParagraphs(&md, sec.Paragraphs, lang)
			}
			continue
		}
		writeParagraphs(&md, ch.Paragraphs, lang)
	}

	return toHTML(md.String())
}

func writeParagraphs(md *strings.Builder, ps []ParagraphDoc, lang string) {
	for _, p := range ps {
		text := p.Text
		if lang != "" {
			if tr := p.I18n[lang]; tr != "" {
				text = tr
			}
		}
		if p.Speaker != nil {
			md.WriteString(fmt.Sprintf("**%s:** %s\n\n", *p.Speaker, text))
			continue
		}
		md.WriteString(text + "\n\n")
	}
}

func pick(titles map[string]string, primary, lang string) string {
	if lang != "" && titles[lang] != "" {
		return titles[lang]
	}
	return titles[primary]
}

func pickTitle(title string, i18n map[string]string, lang string) string {
	if lang != "" && i18n[lang] != "" {
		return i18n[lang]
	}
	return title
}

func toHTML(md string) string {
	opts := html.RendererOptions{Flags: html.CommonFlags}
	renderer := html.NewRenderer(opts)
	p := parser.NewWithExtensions(parser.CommonExtensions)
	doc := p.Parse([]byte(md))
	return string(markdown.Render(doc, renderer))
}

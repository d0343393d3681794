package fetch

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
)

// baseNoise is removed from every page before content selection.
const baseNoise = "nav, footer, header, script, style, noscript, svg, iframe, .ad, .advertisement, .ads, .sidebar, .cookie-banner, .popup"

// Selectors choose the listing container of a page and the elements to drop
// from it. The first content selector that matches wins; the body is used
// when none do.
type Selectors struct {
	Content []string
	Noise   []string
}

// Markdown selects the listing content of html and converts it to markdown.
// Headings and list items survive, which is what separates one posting from
// the next on a listing page.
func (s Selectors) Markdown(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	doc.Find(baseNoise).Remove()
	if len(s.Noise) > 0 {
		doc.Find(strings.Join(s.Noise, ", ")).Remove()
	}

	main := doc.Find("body")
	for _, selector := range s.Content {
		if sel := doc.Find(selector); sel.Length() > 0 {
			main = sel.First()
			break
		}
	}

	fragment, err := goquery.OuterHtml(main)
	if err != nil {
		return "", fmt.Errorf("failed to render selection: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(fragment)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

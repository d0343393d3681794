// Package ingestion turns raw careers-page content into normalized page text.
package ingestion

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"

	"github.com/jonathan/cold-outreach/internal/fetch"
)

var (
	spaceRun  = regexp.MustCompile(`\s+`)
	blankRun  = regexp.MustCompile(`\n\n\n+`)
	mdImage   = regexp.MustCompile(`!\[[^\]]*\]\([^)]*\)`)
	mdLink    = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	knownTags = regexp.MustCompile(`(?i)</?(html|head|body|div|p|br|span|ul|ol|li|h[1-6]|a|strong|em|b|i|table|tr|td|section|article|main|header|footer|nav|script|style)(\s[^<>]*)?/?>`)
)

var invisible = strings.NewReplacer(
	"\u00a0", " ",
	"\u200b", "",
	"\u200c", "",
	"\u200d", "",
	"\ufeff", "",
)

// NormalizePage strips markup artifacts and whitespace noise from extracted
// page text. It accepts plain text, markdown, or HTML and is a pure function:
// the same input always yields the same output.
func NormalizePage(raw string) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}

	text := invisible.Replace(raw)
	if knownTags.MatchString(text) {
		text = stripMarkup(text)
	}

	text = mdImage.ReplaceAllString(text, "")
	text = mdLink.ReplaceAllString(text, "$1")
	text = html.UnescapeString(text)

	return CleanText(text)
}

// stripMarkup converts leftover HTML to markdown so block boundaries survive
// as line breaks. Falls back to the bare text content.
func stripMarkup(content string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return knownTags.ReplaceAllString(content, " ")
	}
	doc.Find("script, style, noscript, template").Remove()

	body, err := doc.Find("body").Html()
	if err == nil {
		if markdown, convErr := htmltomarkdown.ConvertString(body); convErr == nil {
			return markdown
		}
	}
	return doc.Text()
}

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankRun.ReplaceAllString(result, "\n\n")

	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving structure
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return spaceRun.ReplaceAllString(trimmed, " ")
	}

	indent := ""
	if lead := len(line) - len(trimmed); lead > 0 {
		indent = strings.Repeat(" ", lead)
	}

	// Typographic bullets become markdown bullets
	if isBulletLine(trimmed) {
		item := strings.TrimSpace(trimmed[strings.Index(trimmed, " "):])
		marker := trimmed[:1]
		if marker != "-" && marker != "*" {
			marker = "-"
		}
		return indent + marker + " " + spaceRun.ReplaceAllString(item, " ")
	}

	return indent + spaceRun.ReplaceAllString(strings.TrimSpace(line), " ")
}

// isBulletLine checks if a line is a bullet list item
func isBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ")
}

// IngestFromFile reads a saved careers page (text, markdown, or HTML) and
// returns its page text with metadata. HTML files go through the same content
// selection as fetched pages.
func IngestFromFile(path string) (string, *Metadata, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil, fmt.Errorf("file not found: %w", err)
		}
		return "", nil, fmt.Errorf("failed to read file: %w", err)
	}

	text := string(content)
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".html" || ext == ".htm" {
		text, err = fetch.SelectorsFor(fetch.PlatformUnknown).Markdown(text)
		if err != nil {
			return "", nil, fmt.Errorf("%w: %w", ErrContentExtractionFailed, err)
		}
	}

	return text, NewMetadata(text, ""), nil
}

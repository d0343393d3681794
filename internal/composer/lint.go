package composer

import (
	"regexp"
	"strings"
)

// Lint failure kinds.
const (
	KindPlaceholder     = "unfilled_placeholder"
	KindForbiddenPhrase = "forbidden_phrase"
)

var placeholderPattern = regexp.MustCompile(`(?i)\[\s*(?:your|recipient'?s?|hiring manager'?s?|company'?s?|insert)?\s*(?:name|company|title|role|position|website|link|date)\s*\]|\{\{[^}]*\}\}`)

// findPlaceholders returns template slots such as "[Your Name]" left in text.
func findPlaceholders(text string) []string {
	return placeholderPattern.FindAllString(text, -1)
}

// checkForbiddenPhrases returns the phrases found in text, case-insensitively
// and without duplicates, in the order they were configured.
func checkForbiddenPhrases(text string, phrases []string) []string {
	if len(phrases) == 0 {
		return nil
	}

	normalizedText := strings.ToLower(text)

	var found []string
	seen := make(map[string]bool)
	for _, phrase := range phrases {
		normalized := strings.ToLower(strings.TrimSpace(phrase))
		if normalized == "" || seen[normalized] {
			continue
		}
		if strings.Contains(normalizedText, normalized) {
			found = append(found, phrase)
			seen[normalized] = true
		}
	}
	return found
}

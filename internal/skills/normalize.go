// Package skills canonicalizes skill names so that job requirements and
// portfolio entries compare on the same vocabulary.
package skills

import (
	"strings"
)

// aliases maps common skill name variants to their canonical lowercase form
var aliases = map[string]string{
	"golang":     "go",
	"go lang":    "go",
	"js":         "javascript",
	"ts":         "typescript",
	"k8s":        "kubernetes",
	"react.js":   "react",
	"reactjs":    "react",
	"vue.js":     "vue",
	"vuejs":      "vue",
	"nodejs":     "node.js",
	"node":       "node.js",
	"postgresql": "postgres",
	"psql":       "postgres",
	"py":         "python",
	"python3":    "python",
	"ml":         "machine learning",
	"gcp":        "google cloud",
}

// Normalize returns the canonical lowercase form of a skill name.
// Surrounding whitespace and bullet punctuation are removed and inner runs of
// whitespace collapse to one space. Returns "" for blank input.
func Normalize(skill string) string {
	s := strings.ToLower(strings.TrimSpace(skill))
	s = strings.Trim(s, "-•*·,;: \t")
	if s == "" {
		return ""
	}
	s = strings.Join(strings.Fields(s), " ")
	if canonical, ok := aliases[s]; ok {
		return canonical
	}
	return s
}

// NormalizeAll normalizes a list of skills, dropping blanks and duplicates
// while keeping the order of first appearance.
func NormalizeAll(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, skill := range in {
		n := Normalize(skill)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}

// Split parses a delimited skill list such as "Python, Postgres; Docker"
// and normalizes the result.
func Split(list string) []string {
	parts := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == '|' || r == '\n'
	})
	return NormalizeAll(parts)
}

// Set builds a lookup set from already-normalized skills.
func Set(normalized []string) map[string]struct{} {
	set := make(map[string]struct{}, len(normalized))
	for _, s := range normalized {
		set[s] = struct{}{}
	}
	return set
}

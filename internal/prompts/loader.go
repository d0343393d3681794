// Package prompts holds the generation prompt templates. They live in
// outreach.json, embedded at compile time, keyed by name.
package prompts

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"regexp"
	"slices"
	"strings"
	"sync"
)

//go:embed outreach.json
var outreachJSON []byte

var templates = sync.OnceValues(func() (map[string]string, error) {
	var m map[string]string
	if err := json.Unmarshal(outreachJSON, &m); err != nil {
		return nil, fmt.Errorf("failed to parse outreach.json: %w", err)
	}
	return m, nil
})

var placeholderRe = regexp.MustCompile(`\{\{\.(\w+)\}\}`)

// Get returns the template stored under key.
func Get(key string) (string, error) {
	m, err := templates()
	if err != nil {
		return "", err
	}
	t, ok := m[key]
	if !ok {
		return "", fmt.Errorf("prompt %q not found", key)
	}
	return t, nil
}

// MustGet is Get for templates that must exist; it panics otherwise.
func MustGet(key string) string {
	t, err := Get(key)
	if err != nil {
		panic(err)
	}
	return t
}

// Keys lists the template names in sorted order.
func Keys() []string {
	m, err := templates()
	if err != nil {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Placeholders returns the distinct {{.Name}} fields a template uses, in
// order of first appearance.
func Placeholders(template string) []string {
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(template, -1) {
		if !slices.Contains(names, m[1]) {
			names = append(names, m[1])
		}
	}
	return names
}

// Format fills {{.Key}} fields from data in a single pass, so template-like
// text inside a value (scraped pages sometimes contain it) is left alone.
// Fields missing from data are kept verbatim.
func Format(template string, data map[string]string) string {
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

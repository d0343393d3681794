package ratelimit

import "strings"

func splitPattern(pattern string) (method, path string) {
	method, path, ok := strings.Cut(pattern, " ")
	if !ok {
		return "", pattern
	}
	return method, path
}

// matchPattern reports whether pattern covers the request. An empty method
// in the pattern matches any method.
func matchPattern(pattern, method, path string) (match, exact bool) {
	m, p := splitPattern(pattern)
	if m != "" && m != method {
		return false, false
	}
	if p == path {
		return true, true
	}
	return strings.HasSuffix(p, "/") && strings.HasPrefix(path, p), false
}

// ruleFor returns the rule governing a request. ok is false for exempt
// routes. An exact pattern beats a subtree pattern; among subtree patterns
// the first listed wins.
func (c *Config) ruleFor(method, path string) (rule Rule, ok bool) {
	for _, pattern := range c.Exempt {
		if match, _ := matchPattern(pattern, method, path); match {
			return Rule{}, false
		}
	}

	var subtree *Rule
	for i := range c.Rules {
		match, exact := matchPattern(c.Rules[i].Pattern, method, path)
		if exact {
			return c.Rules[i], true
		}
		if match && subtree == nil {
			subtree = &c.Rules[i]
		}
	}
	if subtree != nil {
		return *subtree, true
	}
	return c.Default, true
}

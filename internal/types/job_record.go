// Package types provides type definitions for structured data used throughout the cold-outreach system.
//
//nolint:revive // types is a standard Go package name pattern
package types

// JobRecord represents one job posting extracted from a listing page.
// Records are created by the extractor and are not modified afterwards.
type JobRecord struct {
	Role        string   `json:"role"`
	Skills      []string `json:"skills"`               // lowercase, deduplicated, in order of first mention
	Experience  *string  `json:"experience,omitempty"` // nil when the posting states no requirement
	Description string   `json:"description"`
}

// ExperienceOrEmpty returns the experience requirement or "" when unset.
func (j JobRecord) ExperienceOrEmpty() string {
	if j.Experience == nil {
		return ""
	}
	return *j.Experience
}

// PortfolioEntry is one row of the portfolio catalog.
type PortfolioEntry struct {
	Skills []string `json:"skills" validate:"required,min=1,dive,required"`
	Link   string   `json:"link" validate:"required,http_url"`
}

// Match is a single scored catalog hit.
type Match struct {
	Link   string   `json:"link"`
	Score  float64  `json:"score"`
	Skills []string `json:"skills"` // skills shared with the query
}

// RetrievalResult holds links ranked by skill overlap, best first.
type RetrievalResult struct {
	Links   []string `json:"links"`
	Matches []Match  `json:"matches,omitempty"`
}

// Empty reports whether no links were retrieved.
func (r RetrievalResult) Empty() bool {
	return len(r.Links) == 0
}

package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes where a page's text came from.
type Metadata struct {
	URL       string    `json:"url,omitempty"`
	FetchedAt time.Time `json:"fetched_at"`
	Hash      string    `json:"hash"` // sha256 of the page text, hex
	Platform  string    `json:"platform,omitempty"`
	Rendered  bool      `json:"rendered,omitempty"` // text came from a headless browser render
	Chars     int       `json:"chars"`
}

// NewMetadata describes text read from url now. url is empty for files.
func NewMetadata(text string, url string) *Metadata {
	sum := sha256.Sum256([]byte(text))
	return &Metadata{
		URL:       url,
		FetchedAt: time.Now().UTC(),
		Hash:      hex.EncodeToString(sum[:]),
		Chars:     len(text),
	}
}

// ShortHash returns the first 12 hex digits of Hash for log lines.
func (m *Metadata) ShortHash() string {
	if m == nil || len(m.Hash) < 12 {
		return ""
	}
	return m.Hash[:12]
}

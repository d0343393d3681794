package ingestion

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMetadata(t *testing.T) {
	before := time.Now().UTC()
	m := NewMetadata("Senior Backend Engineer", "https://example.com/careers")

	assert.Equal(t, "https://example.com/careers", m.URL)
	assert.Len(t, m.Hash, 64)
	assert.Equal(t, len("Senior Backend Engineer"), m.Chars)
	assert.False(t, m.FetchedAt.Before(before))
}

func TestNewMetadata_HashTracksText(t *testing.T) {
	a := NewMetadata("page one", "")
	b := NewMetadata("page two", "")
	assert.NotEqual(t, a.Hash, b.Hash)
	assert.Equal(t, a.Hash, NewMetadata("page one", "https://other.example").Hash)
}

func TestMetadata_ShortHash(t *testing.T) {
	m := NewMetadata("x", "")
	assert.Equal(t, m.Hash[:12], m.ShortHash())

	var missing *Metadata
	assert.Empty(t, missing.ShortHash())
}

func TestMetadata_JSONOmitsEmptyOptionalFields(t *testing.T) {
	data, err := json.Marshal(NewMetadata("x", ""))
	require.NoError(t, err)

	assert.NotContains(t, string(data), "platform")
	assert.NotContains(t, string(data), "rendered")
	assert.NotContains(t, string(data), `"url"`)
	assert.Contains(t, string(data), `"chars":1`)
	assert.Contains(t, string(data), `"fetched_at"`)
}

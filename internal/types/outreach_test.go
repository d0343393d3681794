package types

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPipelineResult(t *testing.T) {
	r := NewPipelineResult("https://example.com/careers")

	assert.NotEqual(t, uuid.Nil, r.RunID)
	assert.Equal(t, "https://example.com/careers", r.SourceURL)
	assert.False(t, r.CreatedAt.IsZero())

	// Empty slices, not nil, so clients always see arrays.
	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"emails":[]`)
	assert.Contains(t, string(data), `"failures":[]`)
}

func TestOutreachEmail_JSONFieldNames(t *testing.T) {
	data, err := json.Marshal(OutreachEmail{Role: "SRE", Body: "Hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"job_title":"SRE","email":"Hello"}`, string(data))
}

func TestJobRecord_ExperienceOrEmpty(t *testing.T) {
	assert.Equal(t, "", JobRecord{}.ExperienceOrEmpty())

	exp := "3+ years"
	assert.Equal(t, "3+ years", JobRecord{Experience: &exp}.ExperienceOrEmpty())
}

func TestJobRecord_NullExperience(t *testing.T) {
	var j JobRecord
	require.NoError(t, json.Unmarshal([]byte(`{"role":"Data Engineer","skills":["python"],"experience":null,"description":"ETL"}`), &j))
	assert.Nil(t, j.Experience)
	assert.Equal(t, []string{"python"}, j.Skills)
}

func TestRetrievalResult_Empty(t *testing.T) {
	assert.True(t, RetrievalResult{}.Empty())
	assert.False(t, RetrievalResult{Links: []string{"https://a.example"}}.Empty())
}

package fetch

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectPlatform(t *testing.T) {
	tests := []struct {
		url  string
		want Platform
	}{
		{"https://job-boards.greenhouse.io/doordashusa/jobs/7063751", PlatformGreenhouse},
		{"https://boards.greenhouse.io/company", PlatformGreenhouse},
		{"https://jobs.lever.co/company", PlatformLever},
		{"https://lever.co/jobs/123", PlatformLever},
		{"https://company.wd5.myworkdayjobs.com/en-US/External", PlatformWorkday},
		{"https://jobs.ashbyhq.com/acme", PlatformAshby},
		{"https://JOBS.LEVER.CO/acme", PlatformLever},
		{"https://example.com/careers", PlatformUnknown},
		{"https://notlever.co.example.com/careers", PlatformUnknown},
		{"://bad", PlatformUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectPlatform(tt.url))
		})
	}
}

func TestSelectorsFor_Greenhouse(t *testing.T) {
	s := SelectorsFor(PlatformGreenhouse)
	assert.Equal(t, "#main", s.Content[0])
	assert.Contains(t, s.Noise, "form")
	assert.Contains(t, s.Noise, "#usa_self_id_section")
}

func TestSelectorsFor_Unknown(t *testing.T) {
	s := SelectorsFor(PlatformUnknown)
	assert.Less(t, slices.Index(s.Content, ".job-listings"), slices.Index(s.Content, "main"))
	assert.Equal(t, commonNoise, s.Noise)
}

func TestSelectorsFor_DoesNotShareNoiseSlice(t *testing.T) {
	a := SelectorsFor(PlatformLever)
	b := SelectorsFor(PlatformAshby)
	assert.Contains(t, a.Noise, ".posting-apply")
	assert.NotContains(t, b.Noise, ".posting-apply")
	assert.Len(t, commonNoise, len(SelectorsFor(PlatformUnknown).Noise))
}

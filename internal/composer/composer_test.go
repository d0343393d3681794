package composer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/cold-outreach/internal/llm"
	"github.com/jonathan/cold-outreach/internal/types"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) Generate(_ context.Context, req llm.Request) (string, error) {
	g.prompts = append(g.prompts, req.Prompt)
	return g.response, g.err
}

func (g *stubGenerator) Close() error { return nil }

func backendJob() types.JobRecord {
	exp := "5+ years"
	return types.JobRecord{
		Role:        "Senior Backend Engineer",
		Skills:      []string{"go", "postgres"},
		Experience:  &exp,
		Description: "Own the ingestion services.",
	}
}

func sender() SenderProfile {
	s := DefaultSender()
	s.Website = "https://brightline.example"
	return s
}

func TestCompose_WithLinks(t *testing.T) {
	gen := &stubGenerator{response: `{"subject": "Backend help for your team", "body": "Hi,\nSee https://example.com/a and https://example.com/b.\nAlex"}`}
	links := types.RetrievalResult{Links: []string{"https://example.com/a", "https://example.com/b"}}

	email, err := New(gen, sender()).Compose(context.Background(), backendJob(), links)
	require.NoError(t, err)

	assert.Equal(t, "Senior Backend Engineer", email.Role)
	assert.Equal(t, "Backend help for your team", email.Subject)
	assert.Contains(t, email.Body, "https://example.com/a")
	assert.Equal(t, links.Links, email.Links)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "- https://example.com/a\n- https://example.com/b")
	assert.Contains(t, prompt, "Position: Senior Backend Engineer")
	assert.Contains(t, prompt, "Experience required: 5+ years")
	assert.Contains(t, prompt, "Skills: go, postgres")
	assert.Contains(t, prompt, "Alex Morgan")
	assert.NotContains(t, prompt, "{{.")
}

func TestCompose_NoLinksUsesGenericPrompt(t *testing.T) {
	gen := &stubGenerator{response: `{"subject": "Hello", "body": "We build software. Learn more at https://brightline.example/about"}`}
	job := types.JobRecord{Role: "Office Manager"}

	email, err := New(gen, sender()).Compose(context.Background(), job, types.RetrievalResult{})
	require.NoError(t, err)

	assert.NotNil(t, email.Links)
	assert.Empty(t, email.Links)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "no portfolio samples")
	assert.Contains(t, gen.prompts[0], "Skills: not specified")
	assert.Contains(t, gen.prompts[0], "Experience required: not specified")
}

func TestCompose_FabricatedLink(t *testing.T) {
	gen := &stubGenerator{response: `{"subject": "Hi", "body": "Our work: https://example.com/a and https://made-up.example/case-study."}`}
	links := types.RetrievalResult{Links: []string{"https://example.com/a"}}

	_, err := New(gen, sender()).Compose(context.Background(), backendJob(), links)
	require.Error(t, err)

	var compErr *CompositionError
	require.True(t, errors.As(err, &compErr))
	assert.Equal(t, KindFabricatedLink, compErr.Kind)
	assert.Contains(t, err.Error(), "https://made-up.example/case-study")
}

func TestCompose_LinkMatchingIsLenient(t *testing.T) {
	gen := &stubGenerator{response: `{"subject": "Hi", "body": "See HTTPS://Example.com/A/, or (https://example.com/a)."}`}
	links := types.RetrievalResult{Links: []string{"https://example.com/a"}}

	_, err := New(gen, sender()).Compose(context.Background(), backendJob(), links)
	assert.NoError(t, err)
}

func TestCompose_GenerationError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind string
	}{
		{"timeout", context.DeadlineExceeded, "timeout"},
		{"rate limited", &llm.GenerationError{Kind: llm.KindRateLimited, Message: "quota"}, "rate_limited"},
		{"unavailable", errors.New("connection refused"), "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{err: tt.err}

			_, err := New(gen, sender()).Compose(context.Background(), backendJob(), types.RetrievalResult{})
			require.Error(t, err)

			var compErr *CompositionError
			require.True(t, errors.As(err, &compErr))
			assert.Equal(t, tt.kind, compErr.Kind)
			assert.True(t, errors.Is(err, tt.err))
		})
	}
}

func TestCompose_MalformedOutput(t *testing.T) {
	tests := []struct {
		name     string
		response string
	}{
		{"not json", "Dear hiring manager, ..."},
		{"missing body", `{"subject": "Hi"}`},
		{"empty body", `{"subject": "Hi", "body": ""}`},
		{"array", `[{"subject": "Hi", "body": "x"}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &stubGenerator{response: tt.response}

			_, err := New(gen, sender()).Compose(context.Background(), backendJob(), types.RetrievalResult{})

			var compErr *CompositionError
			require.True(t, errors.As(err, &compErr))
			assert.Equal(t, string(llm.KindMalformed), compErr.Kind)
		})
	}
}

func TestUnknownLinks_SenderWebsiteAllowed(t *testing.T) {
	c := New(nil, sender())
	email := types.OutreachEmail{Body: "Visit https://brightline.example or https://brightline.example/work. Not https://brightline.example.evil.com"}

	unknown := c.unknownLinks(email, nil)
	assert.Equal(t, []string{"https://brightline.example.evil.com"}, unknown)
}

func TestUnknownLinks_NoWebsiteConfigured(t *testing.T) {
	c := New(nil, DefaultSender())
	email := types.OutreachEmail{Subject: "https://a.example", Body: "no links"}

	assert.Equal(t, []string{"https://a.example"}, c.unknownLinks(email, nil))
}

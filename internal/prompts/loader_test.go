package prompts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	prompt, err := Get("extract-jobs")
	require.NoError(t, err)
	assert.Contains(t, prompt, "{{.PageText}}")

	_, err = Get("nonexistent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `prompt "nonexistent" not found`)
}

func TestMustGet(t *testing.T) {
	assert.Panics(t, func() { MustGet("nonexistent") })
	assert.NotPanics(t, func() { MustGet("compose-email") })
}

func TestKeys(t *testing.T) {
	assert.Equal(t, []string{"compose-email", "compose-email-generic", "extract-jobs"}, Keys())
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, []string{"Name", "Company"}, Placeholders("Hi {{.Name}} of {{.Company}}, {{.Name}}"))
	assert.Empty(t, Placeholders("no fields {{ .Spaced }}"))
}

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		template string
		data     map[string]string
		want     string
	}{
		{"fills fields", "Hello {{.Name}}, welcome to {{.Company}}!", map[string]string{"Name": "Alice", "Company": "Acme"}, "Hello Alice, welcome to Acme!"},
		{"missing field kept", "Hello {{.Name}}", map[string]string{}, "Hello {{.Name}}"},
		{"value with field syntax", "Role: {{.Role}}\nText: {{.PageText}}", map[string]string{"Role": "SRE", "PageText": "apply at {{.Role}}"}, "Role: SRE\nText: apply at {{.Role}}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.template, tt.data))
		})
	}
}

func TestComposeTemplates(t *testing.T) {
	withLinks := Placeholders(MustGet("compose-email"))
	generic := Placeholders(MustGet("compose-email-generic"))

	for _, key := range []string{"SenderName", "SenderTitle", "SenderCompany", "Role", "Skills", "Description", "Format"} {
		assert.Contains(t, withLinks, key)
		assert.Contains(t, generic, key)
	}
	assert.Contains(t, withLinks, "Links")
	assert.NotContains(t, generic, "Links")
	assert.Contains(t, generic, "SenderWebsite")
}

package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema describes the shape of a structured LLM response so it can
// be rendered into a prompt. The authoritative check is still the JSON Schema
// in internal/schemas; this is only the hint the model sees.
type ExtractionSchema struct {
	Name        string
	Description string
	// Array means the model must return a list of Fields objects.
	Array  bool
	Fields []SchemaField
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint rendered verbatim, e.g. "string" or ["string"]
	Description string
	Required    bool
}

// OutputFormat renders the "return exactly this JSON" block of a prompt.
func (s ExtractionSchema) OutputFormat() string {
	var sb strings.Builder

	if s.Array {
		sb.WriteString("Return ONLY a valid JSON array. Each element must match this exact structure:\n{\n")
	} else {
		sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	}
	for i, field := range s.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = `"string"`
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(s.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n")
	sb.WriteString("Do not wrap the JSON in markdown and do not add any explanation.")

	return sb.String()
}

// BuildExtractionPrompt constructs a standalone prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")
	sb.WriteString(schema.OutputFormat())
	sb.WriteString("\n\n")
	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// JobPostingsSchema is the hint for extracting every posting on a careers page.
func JobPostingsSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "JobPostings",
		Description: `You are parsing the scraped text of a careers page. It may list one or several open positions.
Extract every distinct position. Do not invent positions that are not in the text.`,
		Array: true,
		Fields: []SchemaField{
			{Name: "role", Type: `"string"`, Description: "Job title exactly as written", Required: true},
			{Name: "experience", Type: `"string" | null`, Description: "Required experience, e.g. '3+ years'; null if not stated", Required: true},
			{Name: "skills", Type: `["string"]`, Description: "Technologies and skills the role asks for, one per item", Required: true},
			{Name: "description", Type: `"string"`, Description: "One or two sentences summarising the role", Required: true},
		},
	}
}

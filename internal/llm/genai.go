package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient implements Generator using the google.golang.org/genai SDK
type GenAIClient struct {
	client *genai.Client
	config *Config
}

// NewGenAIClient creates a client for the Gemini API backend of the genai SDK
func NewGenAIClient(ctx context.Context, config *Config, apiKey string) (*GenAIClient, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(apiKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(config.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(config.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GenAIClient{client: client, config: config}, nil
}

// Generate runs one prompt against the model configured for req.Tier
func (c *GenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	modelName := c.config.GetModel(req.Tier)
	if modelName == "" {
		return "", &GenerationError{Kind: KindUnavailable, Message: fmt.Sprintf("no model configured for tier %s", req.Tier)}
	}

	gc := &genai.GenerateContentConfig{
		CandidateCount: 1,
		Temperature:    genai.Ptr(c.config.Temperature),
	}
	if req.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	resp, err := c.client.Models.GenerateContent(ctx, modelName, genai.Text(req.Prompt), gc)
	if err != nil {
		return "", wrapProviderError("failed to generate content", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", malformed("no candidates in response")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", malformed("no text parts in response")
	}
	if req.JSON {
		return CleanJSONBlock(text), nil
	}
	return text, nil
}

// Close is a no-op; the genai client holds no releasable resources.
func (c *GenAIClient) Close() error {
	return nil
}

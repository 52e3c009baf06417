package gemini

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

// New connects to the Gemini API and returns its model endpoint. An empty baseURL keeps the SDK default.
func New(ctx context.Context, baseURL, apiKey string, timeout time.Duration) (*genai.Models, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
			Timeout: &timeout,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return client.Models, nil
}

// InlineData returns the first binary part of the first candidate.
func InlineData(resp *genai.GenerateContentResponse) (*genai.Blob, bool) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, false
	}

	for _, part := range resp.Candidates[0].Content.Parts {
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			return part.InlineData, true
		}
	}

	return nil, false
}

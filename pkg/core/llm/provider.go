package llm

import (
	"context"
)

// Provider is the interface for all LLM providers. Commentary generation is
// strictly optional: a nil provider means the feature is off.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Message is one chat turn for OpenAI-compatible endpoints.
type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

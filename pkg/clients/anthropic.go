package clients

import (
	"fmt"

	"github.com/tmc/langchaingo/llms/anthropic"
)

// AnthropicAI creates a Claude chat model. Anthropic offers no embeddings, so
// it only serves text generation.
func AnthropicAI(model, apiKey string) (*anthropic.LLM, error) {
	llm, err := anthropic.New(anthropic.WithToken(apiKey), anthropic.WithModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create anthropic model: %w", err)
	}
	return llm, nil
}

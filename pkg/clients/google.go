package clients

import (
	"context"
	"fmt"

	"github.com/mikeboe/blog-post-creator/pkg/embeddings"
	"github.com/tmc/langchaingo/llms/googleai"
)

// GoogleAi creates a Gemini chat model.
func GoogleAi(ctx context.Context, model, apiKey string) (*googleai.GoogleAI, error) {
	// See https://ai.google.dev/gemini-api/docs/models/gemini for possible models
	llm, err := googleai.New(ctx, googleai.WithAPIKey(apiKey), googleai.WithDefaultModel(model))
	if err != nil {
		return nil, fmt.Errorf("failed to create google model: %w", err)
	}
	return llm, nil
}

func googleEmbedder(ctx context.Context, model, apiKey string) (*embeddings.GoogleEmbedder, error) {
	return embeddings.NewGoogleEmbedder(ctx, model, apiKey)
}

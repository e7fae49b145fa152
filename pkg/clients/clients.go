package clients

import (
	"context"
	"fmt"

	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/vectorstore"
	"github.com/tmc/langchaingo/llms"
)

// NewTextModel returns the chat model selected by LLM_PROVIDER.
func NewTextModel(ctx context.Context, cfg *config.Config) (llms.Model, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return OpenAI(cfg.ChatModel, cfg.EmbeddingModel, cfg.OpenAIApiKey)
	case config.ProviderGoogle:
		return GoogleAi(ctx, cfg.ChatModel, cfg.GoogleApiKey)
	case config.ProviderAnthropic:
		return AnthropicAI(cfg.ChatModel, cfg.AnthropicApiKey)
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.LLMProvider)
	}
}

// NewEmbedder returns the embedder selected by EMBEDDING_PROVIDER.
func NewEmbedder(ctx context.Context, cfg *config.Config) (vectorstore.Embedder, error) {
	switch cfg.EmbeddingProvider {
	case config.ProviderOpenAI:
		return openAIEmbedder(cfg.EmbeddingModel, cfg.OpenAIApiKey)
	case config.ProviderGoogle:
		return googleEmbedder(ctx, cfg.EmbeddingModel, cfg.GoogleApiKey)
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.EmbeddingProvider)
	}
}

// ImageRenderer turns a description into a remote image URL.
type ImageRenderer interface {
	Render(ctx context.Context, prompt string) (string, error)
}

// NewImageRenderer returns nil when no OpenAI key is configured; the image
// pipeline then skips covers.
func NewImageRenderer(cfg *config.Config) ImageRenderer {
	if !cfg.ImagesEnabled() {
		return nil
	}
	return NewDallE(cfg.OpenAIApiKey, cfg.ImageModel)
}

package clients

import (
	"context"
	"errors"
	"fmt"

	goopenai "github.com/sashabaranov/go-openai"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

// OpenAI creates a chat model backed by the OpenAI API.
func OpenAI(model, embeddingModel, apiKey string) (*openai.LLM, error) {
	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(model),
		openai.WithEmbeddingModel(embeddingModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai model: %w", err)
	}
	return llm, nil
}

func openAIEmbedder(model, apiKey string) (*embeddings.EmbedderImpl, error) {
	llm, err := OpenAI("", model, apiKey)
	if err != nil {
		return nil, err
	}
	e, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai embedder: %w", err)
	}
	return e, nil
}

var errNoImage = errors.New("image response contained no data")

// DallE renders images through the OpenAI images endpoint.
type DallE struct {
	client *goopenai.Client
	model  string
}

func NewDallE(apiKey, model string) *DallE {
	return NewDallEWithConfig(goopenai.DefaultConfig(apiKey), model)
}

func NewDallEWithConfig(cfg goopenai.ClientConfig, model string) *DallE {
	if model == "" {
		model = goopenai.CreateImageModelDallE3
	}
	return &DallE{client: goopenai.NewClientWithConfig(cfg), model: model}
}

// Render requests one 1792x1024 standard-quality image and returns its URL.
func (d *DallE) Render(ctx context.Context, prompt string) (string, error) {
	resp, err := d.client.CreateImage(ctx, goopenai.ImageRequest{
		Prompt:         prompt,
		Model:          d.model,
		Size:           goopenai.CreateImageSize1792x1024,
		Quality:        goopenai.CreateImageQualityStandard,
		N:              1,
		ResponseFormat: goopenai.CreateImageResponseFormatURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create image: %w", err)
	}
	if len(resp.Data) == 0 || resp.Data[0].URL == "" {
		return "", errNoImage
	}
	return resp.Data[0].URL, nil
}

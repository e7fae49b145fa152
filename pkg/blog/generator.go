package blog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mikeboe/blog-post-creator/pkg/models"
	"github.com/tmc/langchaingo/llms"
)

// ErrNoChoices is returned when the model answers without any completion.
var ErrNoChoices = errors.New("llm returned no choices")

// TextGenerator is the part of llms.Model the pipeline uses.
type TextGenerator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Generator writes the article body from retrieved context.
type Generator struct {
	LLM         TextGenerator
	Temperature float64
	Logger      *slog.Logger
}

func NewGenerator(llm TextGenerator, temperature float64) *Generator {
	return &Generator{LLM: llm, Temperature: temperature, Logger: slog.Default()}
}

// Generate makes a single model call. The markdown is returned as produced.
func (g *Generator) Generate(ctx context.Context, keyword string, chunks models.RetrievalResult) (models.GeneratedArticle, error) {
	prompt, err := formatPrompt(articlePrompt, keyword, strings.Join(chunks.Texts(), "\n\n"))
	if err != nil {
		return models.GeneratedArticle{}, fmt.Errorf("failed to format prompt: %w", err)
	}

	g.Logger.Info("Generating article", "keyword", keyword, "context_chunks", len(chunks))
	content, err := complete(ctx, g.LLM, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithTemperature(g.Temperature))
	if err != nil {
		return models.GeneratedArticle{}, err
	}

	return models.GeneratedArticle{Title: extractTitle(content), Markdown: content}, nil
}

func complete(ctx context.Context, llm TextGenerator, messages []llms.MessageContent, options ...llms.CallOption) (string, error) {
	resp, err := llm.GenerateContent(ctx, messages, options...)
	if err != nil {
		return "", fmt.Errorf("llm generation failed: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	return resp.Choices[0].Content, nil
}

// extractTitle returns the text of the first level-one heading.
func extractTitle(markdown string) string {
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

package blog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mikeboe/blog-post-creator/pkg/models"
	"github.com/tmc/langchaingo/llms"
)

const coverTimeFormat = "20060102_150405"

// ImageRenderer turns a description into a remote image URL.
type ImageRenderer interface {
	Render(ctx context.Context, prompt string) (string, error)
}

// ImagePipeline produces the optional cover image. It never fails the post:
// every error is logged and reported as "no image".
type ImagePipeline struct {
	LLM         TextGenerator
	Renderer    ImageRenderer
	Temperature float64
	MaxTokens   int
	Dir         string
	HTTPClient  *http.Client
	Now         func() time.Time
	Logger      *slog.Logger
}

func NewImagePipeline(llm TextGenerator, renderer ImageRenderer, dir string) *ImagePipeline {
	return &ImagePipeline{
		LLM:         llm,
		Renderer:    renderer,
		Temperature: 0.7,
		MaxTokens:   200,
		Dir:         dir,
		HTTPClient:  &http.Client{Timeout: 60 * time.Second},
		Now:         time.Now,
		Logger:      slog.Default(),
	}
}

// Enabled reports whether a renderer is configured.
func (p *ImagePipeline) Enabled() bool {
	return p != nil && p.Renderer != nil
}

func (p *ImagePipeline) Generate(ctx context.Context, keyword string, chunks models.RetrievalResult) (models.GeneratedImage, bool) {
	if !p.Enabled() {
		return models.GeneratedImage{}, false
	}

	description, err := p.describe(ctx, keyword, strings.Join(chunks.Texts(), "\n"))
	if err != nil {
		p.Logger.Warn("Skipping cover image, description failed", "error", err)
		return models.GeneratedImage{}, false
	}

	remote, err := p.Renderer.Render(ctx, description)
	if err != nil {
		p.Logger.Warn("Skipping cover image, rendering failed", "error", err)
		return models.GeneratedImage{}, false
	}

	local, err := p.download(ctx, remote)
	if err != nil {
		p.Logger.Warn("Skipping cover image, download failed", "url", remote, "error", err)
		return models.GeneratedImage{}, false
	}

	p.Logger.Info("Cover image saved", "path", local)
	return models.GeneratedImage{Description: description, RemoteURL: remote, LocalPath: local}, true
}

func (p *ImagePipeline) describe(ctx context.Context, keyword, contextText string) (string, error) {
	prompt, err := formatPrompt(imagePrompt, keyword, contextText)
	if err != nil {
		return "", fmt.Errorf("failed to format prompt: %w", err)
	}

	content, err := complete(ctx, p.LLM, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, imageSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}, llms.WithTemperature(p.Temperature), llms.WithMaxTokens(p.MaxTokens))
	if err != nil {
		return "", err
	}

	content = strings.TrimSpace(content)
	if content == "" {
		return "", errors.New("empty image description")
	}
	return content, nil
}

func (p *ImagePipeline) download(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	client := p.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("image request returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read image: %w", err)
	}

	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create images directory: %w", err)
	}
	return writeExclusive(p.Dir, "cover_"+p.Now().Format(coverTimeFormat), ".png", data)
}

// writeExclusive writes data to dir/base+ext, adding a numeric suffix when a
// file of that name already exists.
func writeExclusive(dir, base, ext string, data []byte) (string, error) {
	for n := 1; n < 100; n++ {
		name := base + ext
		if n > 1 {
			name = fmt.Sprintf("%s_%d%s", base, n, ext)
		}
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create %s: %w", path, err)
		}
		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("failed to write %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("failed to close %s: %w", path, err)
		}
		return path, nil
	}
	return "", fmt.Errorf("no free file name for %s%s", base, ext)
}

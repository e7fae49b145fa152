package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/models"
	"github.com/mikeboe/blog-post-creator/pkg/splitter"
)

// ErrNoDocuments is returned when no link produced any usable text.
var ErrNoDocuments = errors.New("no documents could be loaded")

// textSelector lists the elements whose text is kept. Everything else on the
// page (navigation, scripts, footers) is ignored.
const textSelector = "h1, h2, h3, h4, h5, h6, p"

// Loader fetches pages and turns them into chunks.
type Loader struct {
	UserAgent string
	Timeout   time.Duration
	Splitter  *splitter.TextSplitter
	Logger    *slog.Logger
}

func New(cfg *config.Config) *Loader {
	return &Loader{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Splitter:  splitter.NewRecursiveCharacterTextSplitter(cfg.ChunkSize, cfg.ChunkOverlap),
		Logger:    slog.Default(),
	}
}

// Load fetches every link in order. Failed or empty pages are skipped; the
// only error returned is the context's.
func (l *Loader) Load(ctx context.Context, links []models.SourceLink) ([]models.RawDocument, error) {
	seen := make(map[string]bool, len(links))
	var docs []models.RawDocument

	for _, link := range links {
		if err := ctx.Err(); err != nil {
			return docs, err
		}
		if seen[link.URL] {
			continue
		}
		seen[link.URL] = true

		text, err := l.fetch(ctx, link.URL)
		if err != nil {
			l.Logger.Warn("Skipping document", "url", link.URL, "error", err)
			continue
		}
		if text == "" {
			l.Logger.Warn("Skipping document without text", "url", link.URL)
			continue
		}

		l.Logger.Debug("Loaded document", "url", link.URL, "chars", len([]rune(text)))
		docs = append(docs, models.RawDocument{URL: link.URL, Text: text, FetchedAt: time.Now()})
	}
	return docs, nil
}

// LoadAndChunk loads the links and splits each document. SequenceIndex runs
// across all documents of the call.
func (l *Loader) LoadAndChunk(ctx context.Context, links []models.SourceLink) ([]models.Chunk, error) {
	docs, err := l.Load(ctx, links)
	if err != nil {
		return nil, err
	}

	var chunks []models.Chunk
	for _, doc := range docs {
		pieces, err := l.Splitter.Split(doc.Text)
		if err != nil {
			l.Logger.Warn("Failed to split document", "url", doc.URL, "error", err)
			continue
		}
		for _, p := range pieces {
			chunks = append(chunks, models.Chunk{
				SourceURL:     doc.URL,
				Text:          p.Text,
				StartOffset:   p.Start,
				SequenceIndex: len(chunks),
			})
		}
	}

	if len(chunks) == 0 {
		return nil, ErrNoDocuments
	}
	l.Logger.Info("Documents chunked", "documents", len(docs), "chunks", len(chunks))
	return chunks, nil
}

func (l *Loader) fetch(ctx context.Context, url string) (string, error) {
	c := colly.NewCollector(colly.UserAgent(l.UserAgent))
	if l.Timeout > 0 {
		c.SetRequestTimeout(l.Timeout)
	}

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
		}
	})

	var blocks []string
	c.OnHTML(textSelector, func(e *colly.HTMLElement) {
		if text := strings.TrimSpace(e.Text); text != "" {
			blocks = append(blocks, text)
		}
	})

	if err := c.Visit(url); err != nil {
		return "", fmt.Errorf("failed to fetch page: %w", err)
	}
	c.Wait()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return strings.Join(blocks, "\n\n"), nil
}

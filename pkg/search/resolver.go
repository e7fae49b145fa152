package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/models"
)

// FallbackBaseURL addresses the reference page used when search yields nothing.
const FallbackBaseURL = "https://en.wikipedia.org/wiki/"

var errNoLinks = errors.New("no links in search results")

// Searcher runs a web search and returns its raw result text.
type Searcher interface {
	Search(ctx context.Context, keyword string, maxResults int) (string, error)
}

// Resolver turns a keyword into candidate source links.
type Resolver struct {
	Searcher Searcher
	Attempts int
	Backoff  time.Duration
	Logger   *slog.Logger

	// Sleep waits between attempts; tests replace it.
	Sleep func(ctx context.Context, d time.Duration) error
}

func NewResolver(s Searcher, attempts int, backoff time.Duration) *Resolver {
	return &Resolver{
		Searcher: s,
		Attempts: attempts,
		Backoff:  backoff,
		Logger:   slog.Default(),
		Sleep:    sleepContext,
	}
}

// FallbackLink derives the deterministic reference URL for a keyword.
func FallbackLink(keyword string) models.SourceLink {
	return models.SourceLink{URL: FallbackBaseURL + strings.ReplaceAll(keyword, " ", "_")}
}

// Resolve never returns an empty slice: when every attempt fails it returns
// the fallback link alone.
func (r *Resolver) Resolve(ctx context.Context, q models.SearchQuery) []models.SourceLink {
	if q.DesiredResultCount < models.MinReferenceCount {
		q.DesiredResultCount = models.DefaultReferenceCount
	}
	r.Logger.Info("Resolving links", "keyword", q.Keyword, "count", q.DesiredResultCount)

	delay := r.Backoff
	for attempt := 1; attempt <= r.Attempts; attempt++ {
		links, err := r.attempt(ctx, q)
		if err == nil {
			r.Logger.Info("Links resolved", "attempt", attempt, "links", len(links))
			return links
		}

		r.Logger.Warn("Search attempt failed", "attempt", attempt, "error", err)
		if attempt == r.Attempts {
			break
		}
		r.Logger.Info("Waiting before next search attempt", "delay", delay)
		if err := r.Sleep(ctx, delay); err != nil {
			r.Logger.Warn("Search retry interrupted", "error", err)
			break
		}
		delay *= 2
	}

	fallback := FallbackLink(q.Keyword)
	r.Logger.Warn("No links found, using fallback", "url", fallback.URL)
	return []models.SourceLink{fallback}
}

func (r *Resolver) attempt(ctx context.Context, q models.SearchQuery) ([]models.SourceLink, error) {
	text, err := r.Searcher.Search(ctx, q.Keyword, q.DesiredResultCount)
	if err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}

	urls := ParseLinks(text)
	if len(urls) == 0 {
		return nil, errNoLinks
	}
	if len(urls) > q.DesiredResultCount {
		urls = urls[:q.DesiredResultCount]
	}

	links := make([]models.SourceLink, len(urls))
	for i, u := range urls {
		links[i] = models.SourceLink{URL: u}
	}
	return links, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// New builds the searcher selected in the configuration.
func New(cfg *config.Config) (Searcher, error) {
	switch cfg.SearchProvider {
	case config.SearchDuckDuckGo, "":
		return NewDuckDuckGo(cfg.UserAgent), nil
	case config.SearchBrave:
		return &Brave{ApiKey: cfg.BraveApiKey}, nil
	case config.SearchSerper:
		return &Serper{ApiKey: cfg.SerperApiKey}, nil
	default:
		return nil, fmt.Errorf("unsupported search provider: %s", cfg.SearchProvider)
	}
}

package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/tools/duckduckgo"
)

const (
	braveBaseURL  = "https://api.search.brave.com/res/v1/web/search"
	serperBaseURL = "https://google.serper.dev/search"
)

// Result is one search hit.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// FormatResults renders hits as `snippet: ..., title: ..., link: <url>`
// entries, the text form ParseLinks reads.
func FormatResults(results []Result) string {
	entries := make([]string, 0, len(results))
	for _, r := range results {
		entries = append(entries, fmt.Sprintf("[snippet: %s, title: %s, link: %s]",
			strings.TrimSpace(r.Snippet), strings.TrimSpace(r.Title), strings.TrimSpace(r.URL)))
	}
	return strings.Join(entries, ", ")
}

// DuckDuckGo searches through the langchaingo DuckDuckGo tool.
type DuckDuckGo struct {
	UserAgent string
}

func NewDuckDuckGo(userAgent string) *DuckDuckGo {
	return &DuckDuckGo{UserAgent: userAgent}
}

func (d *DuckDuckGo) Search(ctx context.Context, keyword string, maxResults int) (string, error) {
	tool, err := duckduckgo.New(maxResults, d.UserAgent)
	if err != nil {
		return "", fmt.Errorf("failed to create duckduckgo tool: %w", err)
	}
	return tool.Call(ctx, keyword)
}

// Brave queries the Brave web search API.
type Brave struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

func (b *Brave) Search(ctx context.Context, keyword string, maxResults int) (string, error) {
	base := b.BaseURL
	if base == "" {
		base = braveBaseURL
	}
	params := url.Values{}
	params.Add("q", keyword)
	params.Add("count", strconv.Itoa(maxResults))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Subscription-Token", b.ApiKey)

	body, err := do(client(b.Client), req)
	if err != nil {
		return "", err
	}

	var raw struct {
		Web struct {
			Results []struct {
				Title       string `json:"title"`
				URL         string `json:"url"`
				Description string `json:"description"`
			} `json:"results"`
		} `json:"web"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("failed to decode brave response: %w", err)
	}

	var results []Result
	for i, r := range raw.Web.Results {
		if i >= maxResults {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.URL, Snippet: r.Description})
	}
	return FormatResults(results), nil
}

// Serper queries the Serper Google search API.
type Serper struct {
	ApiKey  string
	BaseURL string
	Client  *http.Client
}

func (s *Serper) Search(ctx context.Context, keyword string, maxResults int) (string, error) {
	base := s.BaseURL
	if base == "" {
		base = serperBaseURL
	}
	payload, err := json.Marshal(map[string]interface{}{"q": keyword, "num": maxResults})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", s.ApiKey)

	body, err := do(client(s.Client), req)
	if err != nil {
		return "", err
	}

	var raw struct {
		Organic []struct {
			Title   string `json:"title"`
			Link    string `json:"link"`
			Snippet string `json:"snippet"`
		} `json:"organic"`
	}
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", fmt.Errorf("failed to decode serper response: %w", err)
	}

	var results []Result
	for i, r := range raw.Organic {
		if i >= maxResults {
			break
		}
		results = append(results, Result{Title: r.Title, URL: r.Link, Snippet: r.Snippet})
	}
	return FormatResults(results), nil
}

func client(c *http.Client) *http.Client {
	if c != nil {
		return c
	}
	return http.DefaultClient
}

func do(c *http.Client, req *http.Request) ([]byte, error) {
	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make API request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned non-200 status code: %d, body: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

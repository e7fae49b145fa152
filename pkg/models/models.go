package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	MinReferenceCount     = 1
	MaxReferenceCount     = 10
	DefaultReferenceCount = 3
)

var (
	ErrEmptyKeyword          = errors.New("keyword cannot be empty")
	ErrInvalidReferenceCount = fmt.Errorf("reference count must be between %d and %d", MinReferenceCount, MaxReferenceCount)
)

// SearchQuery is the input of a single blog post request.
type SearchQuery struct {
	Keyword            string `json:"keyword"`
	DesiredResultCount int    `json:"desired_result_count"`
}

// NewSearchQuery trims the keyword and validates both fields.
func NewSearchQuery(keyword string, desiredResultCount int) (SearchQuery, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return SearchQuery{}, ErrEmptyKeyword
	}
	if desiredResultCount < MinReferenceCount || desiredResultCount > MaxReferenceCount {
		return SearchQuery{}, fmt.Errorf("%w: got %d", ErrInvalidReferenceCount, desiredResultCount)
	}
	return SearchQuery{Keyword: keyword, DesiredResultCount: desiredResultCount}, nil
}

// SourceLink is a candidate reference URL, in search rank order.
type SourceLink struct {
	URL string `json:"url"`
}

// URLs flattens links into plain strings.
func URLs(links []SourceLink) []string {
	out := make([]string, len(links))
	for i, l := range links {
		out[i] = l.URL
	}
	return out
}

// RawDocument holds the extracted text of one fetched page.
type RawDocument struct {
	URL       string    `json:"url"`
	Text      string    `json:"text"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Chunk is a slice of a document's text. StartOffset is the character
// offset in the source text, SequenceIndex the position across the request.
type Chunk struct {
	SourceURL     string `json:"source_url"`
	Text          string `json:"text"`
	StartOffset   int    `json:"start_offset"`
	SequenceIndex int    `json:"sequence_index"`
}

// RetrievalResult is ordered by similarity, most similar first.
type RetrievalResult []Chunk

// Texts returns the chunk texts in rank order.
func (r RetrievalResult) Texts() []string {
	out := make([]string, len(r))
	for i, c := range r {
		out[i] = c.Text
	}
	return out
}

// GeneratedArticle is the model output. Title is informational and may be empty.
type GeneratedArticle struct {
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
}

// GeneratedImage describes a cover image persisted on disk.
type GeneratedImage struct {
	Description string `json:"description"`
	RemoteURL   string `json:"remote_url"`
	LocalPath   string `json:"local_path"`
}

// BlogPost is the final artifact, written once.
type BlogPost struct {
	Markdown  string    `json:"markdown"`
	Path      string    `json:"path"`
	CoverPath string    `json:"cover_path,omitempty"`
	Sources   []string  `json:"sources"`
	CreatedAt time.Time `json:"created_at"`
}

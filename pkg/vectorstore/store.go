package vectorstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/mikeboe/blog-post-creator/pkg/models"
)

// ErrEmptyIndex is returned when an index would be built from zero chunks.
var ErrEmptyIndex = errors.New("cannot build an index without chunks")

// Embedder turns text into vectors.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Builder creates a fresh index for one request.
type Builder interface {
	Build(ctx context.Context, chunks []models.Chunk) (Index, error)
}

// Index answers nearest-neighbour queries over the chunks it was built from.
// Results are ordered by similarity, most similar first, ties by chunk order.
type Index interface {
	Query(ctx context.Context, text string, k int) (models.RetrievalResult, error)
	Len() int
	Close(ctx context.Context) error
}

func embedChunks(ctx context.Context, e Embedder, chunks []models.Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, ErrEmptyIndex
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	vectors, err := e.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))
	}
	return vectors, nil
}

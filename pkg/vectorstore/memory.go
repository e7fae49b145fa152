package vectorstore

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/mikeboe/blog-post-creator/pkg/models"
)

// MemoryBuilder builds indexes that live in process memory.
type MemoryBuilder struct {
	Embedder Embedder
}

func NewMemoryBuilder(e Embedder) *MemoryBuilder {
	return &MemoryBuilder{Embedder: e}
}

func (b *MemoryBuilder) Build(ctx context.Context, chunks []models.Chunk) (Index, error) {
	vectors, err := embedChunks(ctx, b.Embedder, chunks)
	if err != nil {
		return nil, err
	}
	return &MemoryIndex{
		embedder: b.Embedder,
		chunks:   append([]models.Chunk(nil), chunks...),
		vectors:  vectors,
	}, nil
}

// MemoryIndex performs exact cosine search.
type MemoryIndex struct {
	embedder Embedder
	chunks   []models.Chunk
	vectors  [][]float32
}

type scored struct {
	chunk models.Chunk
	score float64
}

func (m *MemoryIndex) Query(ctx context.Context, text string, k int) (models.RetrievalResult, error) {
	if k <= 0 || len(m.chunks) == 0 {
		return models.RetrievalResult{}, nil
	}

	q, err := m.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	results := make([]scored, len(m.chunks))
	for i, c := range m.chunks {
		results[i] = scored{chunk: c, score: cosine(q, m.vectors[i])}
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].score != results[j].score {
			return results[i].score > results[j].score
		}
		return results[i].chunk.SequenceIndex < results[j].chunk.SequenceIndex
	})

	n := min(k, len(results))
	out := make(models.RetrievalResult, n)
	for i := 0; i < n; i++ {
		out[i] = results[i].chunk
	}
	return out, nil
}

func (m *MemoryIndex) Len() int {
	return len(m.chunks)
}

func (m *MemoryIndex) Close(ctx context.Context) error {
	m.chunks = nil
	m.vectors = nil
	return nil
}

// cosine returns 0 when either vector has no magnitude.
func cosine(a, b []float32) float64 {
	n := min(len(a), len(b))
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

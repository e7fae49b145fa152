package vectorstore

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mikeboe/blog-post-creator/pkg/database"
	"github.com/mikeboe/blog-post-creator/pkg/models"
	"github.com/pgvector/pgvector-go"
)

// isValidTableName validates that a table name contains only safe characters
// to prevent SQL injection attacks
func isValidTableName(name string) bool {
	// Table names must start with a letter or underscore and be between 1-63 chars (PostgreSQL limit)
	matched, _ := regexp.MatchString(`^[a-z_][a-zA-Z0-9_]{0,62}$`, name)
	return matched
}

// chunkTableName derives a per-request table name.
func chunkTableName() string {
	return "chunks_" + strings.ReplaceAll(uuid.NewString(), "-", "")
}

// PGVectorBuilder stores each request's chunks in a table of its own, dropped
// when the index is closed.
type PGVectorBuilder struct {
	db       *database.PostgresDB
	embedder Embedder
	logger   *slog.Logger
}

func NewPGVectorBuilder(db *database.PostgresDB, e Embedder) *PGVectorBuilder {
	return &PGVectorBuilder{db: db, embedder: e, logger: slog.Default()}
}

func (b *PGVectorBuilder) Build(ctx context.Context, chunks []models.Chunk) (Index, error) {
	vectors, err := embedChunks(ctx, b.embedder, chunks)
	if err != nil {
		return nil, err
	}

	tableName := chunkTableName()
	if !isValidTableName(tableName) {
		return nil, fmt.Errorf("invalid table name: %s", tableName)
	}
	if err := b.db.CreateChunksTable(ctx, tableName, len(vectors[0])); err != nil {
		return nil, err
	}

	idx := &PGVectorIndex{db: b.db, embedder: b.embedder, tableName: tableName, size: len(chunks), logger: b.logger}
	if err := idx.insert(ctx, chunks, vectors); err != nil {
		if dropErr := b.db.DropTable(ctx, tableName); dropErr != nil {
			b.logger.Warn("Failed to drop chunk table", "table", tableName, "error", dropErr)
		}
		return nil, err
	}

	b.logger.Debug("Built pgvector index", "table", tableName, "chunks", len(chunks))
	return idx, nil
}

// PGVectorIndex queries one request's chunk table.
type PGVectorIndex struct {
	db        *database.PostgresDB
	embedder  Embedder
	tableName string
	size      int
	logger    *slog.Logger
}

func (vs *PGVectorIndex) insert(ctx context.Context, chunks []models.Chunk, vectors [][]float32) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (seq, source_url, start_offset, content, embedding)
		VALUES ($1, $2, $3, $4, $5)
	`, pgx.Identifier{vs.tableName}.Sanitize())

	batch := &pgx.Batch{}
	for i, c := range chunks {
		batch.Queue(query, c.SequenceIndex, c.SourceURL, c.StartOffset, c.Text, pgvector.NewVector(vectors[i]))
	}

	br := vs.db.Pool.SendBatch(ctx, batch)
	defer br.Close()

	for range chunks {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}
	return nil
}

func (vs *PGVectorIndex) Query(ctx context.Context, text string, k int) (models.RetrievalResult, error) {
	if k <= 0 {
		return models.RetrievalResult{}, nil
	}

	q, err := vs.embedder.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT seq, source_url, start_offset, content
		FROM %s
		ORDER BY embedding <=> $1, seq
		LIMIT $2
	`, pgx.Identifier{vs.tableName}.Sanitize())

	rows, err := vs.db.Pool.Query(ctx, query, pgvector.NewVector(q), k)
	if err != nil {
		return nil, fmt.Errorf("failed to execute similarity search: %w", err)
	}
	defer rows.Close()

	result := models.RetrievalResult{}
	for rows.Next() {
		var c models.Chunk
		if err := rows.Scan(&c.SequenceIndex, &c.SourceURL, &c.StartOffset, &c.Text); err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}
	return result, nil
}

func (vs *PGVectorIndex) Len() int {
	return vs.size
}

func (vs *PGVectorIndex) Close(ctx context.Context) error {
	return vs.db.DropTable(ctx, vs.tableName)
}

// NewBuilder selects the index backend. db may be nil for the memory backend.
func NewBuilder(backend string, db *database.PostgresDB, e Embedder) (Builder, error) {
	switch backend {
	case "", "memory":
		return NewMemoryBuilder(e), nil
	case "pgvector":
		if db == nil {
			return nil, fmt.Errorf("pgvector backend requires a database")
		}
		return NewPGVectorBuilder(db, e), nil
	default:
		return nil, fmt.Errorf("unsupported index backend: %s", backend)
	}
}

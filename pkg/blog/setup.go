package blog

import (
	"context"
	"fmt"

	"github.com/mikeboe/blog-post-creator/pkg/clients"
	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/database"
	"github.com/mikeboe/blog-post-creator/pkg/search"
	"github.com/mikeboe/blog-post-creator/pkg/vectorstore"
)

// NewEngineFromConfig builds the provider clients named by cfg and wires them
// into an Engine. db is only needed for the pgvector index backend.
func NewEngineFromConfig(ctx context.Context, cfg *config.Config, db *database.PostgresDB) (*Engine, error) {
	llm, err := clients.NewTextModel(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create text model: %w", err)
	}

	embedder, err := clients.NewEmbedder(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	searcher, err := search.New(cfg)
	if err != nil {
		return nil, err
	}

	indexer, err := vectorstore.NewBuilder(cfg.IndexBackend, db, embedder)
	if err != nil {
		return nil, err
	}

	return NewEngine(cfg, llm, searcher, indexer, clients.NewImageRenderer(cfg)), nil
}

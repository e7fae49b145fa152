// Package dbtest starts a throwaway pgvector-enabled Postgres for tests.
package dbtest

import (
	"context"
	"testing"
	"time"

	"github.com/mikeboe/blog-post-creator/pkg/database"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

const image = "pgvector/pgvector:pg16"

// New runs a Postgres container with the vector extension and the job schema
// installed. It skips in -short mode and when no container runtime is
// reachable; the container is terminated when the test ends.
func New(t *testing.T) *database.PostgresDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage(image),
		tcPostgres.WithDatabase("blog_posts"),
		tcPostgres.WithUsername("blog"),
		tcPostgres.WithPassword("blog"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("postgres container: %v", err)
	}
	t.Cleanup(func() {
		_ = pgC.Terminate(context.Background())
	})

	dsn, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("postgres dsn: %v", err)
	}

	db, err := database.NewPostgresDB(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.EnsureVectorExtension(ctx); err != nil {
		t.Fatalf("vector extension: %v", err)
	}
	if err := db.InitSchema(ctx); err != nil {
		t.Fatalf("init schema: %v", err)
	}
	return db
}

// TableExists reports whether a table of that name is in the public schema.
func TableExists(t *testing.T, db *database.PostgresDB, name string) bool {
	t.Helper()
	var exists bool
	err := db.Pool.QueryRow(context.Background(),
		"SELECT to_regclass('public.' || $1) IS NOT NULL", name).Scan(&exists)
	if err != nil {
		t.Fatalf("table lookup: %v", err)
	}
	return exists
}

package database

import (
	"context"
	"fmt"
)

func (db *PostgresDB) InitSchema(ctx context.Context) error {
	// 1. Blog Jobs Table
	jobsQuery := `
		CREATE TABLE IF NOT EXISTS blog_jobs (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			keyword TEXT NOT NULL,
			reference_count INTEGER NOT NULL,
			filename TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			stage TEXT,
			markdown TEXT,
			path TEXT,
			cover_path TEXT,
			sources JSONB,
			error TEXT,
			created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
		);
	`
	if _, err := db.Pool.Exec(ctx, jobsQuery); err != nil {
		return fmt.Errorf("failed to create blog_jobs table: %w", err)
	}

	// 2. Blog Logs Table
	logsQuery := `
		CREATE TABLE IF NOT EXISTS blog_logs (
			id SERIAL PRIMARY KEY,
			job_id UUID NOT NULL REFERENCES blog_jobs(id) ON DELETE CASCADE,
			timestamp TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
			level TEXT NOT NULL,
			message TEXT NOT NULL,
			metadata JSONB
		);
	`
	if _, err := db.Pool.Exec(ctx, logsQuery); err != nil {
		return fmt.Errorf("failed to create blog_logs table: %w", err)
	}

	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_blog_logs_job_id ON blog_logs(job_id)"); err != nil {
		return fmt.Errorf("failed to create index on blog_logs: %w", err)
	}
	if _, err := db.Pool.Exec(ctx, "CREATE INDEX IF NOT EXISTS idx_blog_jobs_created_at ON blog_jobs(created_at DESC)"); err != nil {
		return fmt.Errorf("failed to create index on blog_jobs: %w", err)
	}

	return nil
}

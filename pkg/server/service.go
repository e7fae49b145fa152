package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/mikeboe/blog-post-creator/pkg/blog"
	"github.com/mikeboe/blog-post-creator/pkg/config"
	"github.com/mikeboe/blog-post-creator/pkg/database"
	"github.com/mikeboe/blog-post-creator/pkg/models"
)

const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrJobNotFound    = errors.New("job not found")
	ErrInvalidRequest = errors.New("invalid request")
)

// Jobs is the job store the HTTP and MCP surfaces work against.
type Jobs interface {
	CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error)
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
	ListJobs(ctx context.Context) ([]Job, error)
	GetJobLogs(ctx context.Context, jobID uuid.UUID) ([]LogEntry, error)
}

type Service struct {
	DB        *database.PostgresDB
	Cfg       *config.Config
	Metrics   *Metrics
	NewEngine func(ctx context.Context) (*blog.Engine, error)
}

func NewService(db *database.PostgresDB, cfg *config.Config, metrics *Metrics) *Service {
	s := &Service{
		DB:      db,
		Cfg:     cfg,
		Metrics: metrics,
	}
	s.NewEngine = func(ctx context.Context) (*blog.Engine, error) {
		return blog.NewEngineFromConfig(ctx, s.Cfg, s.DB)
	}
	return s
}

type Job struct {
	ID         uuid.UUID       `json:"id"`
	Keyword    string          `json:"keyword"`
	References int             `json:"references"`
	Filename   string          `json:"filename"`
	Status     string          `json:"status"`
	Stage      *string         `json:"stage,omitempty"`
	Markdown   *string         `json:"markdown,omitempty"`
	Path       *string         `json:"path,omitempty"`
	CoverPath  *string         `json:"cover_path,omitempty"`
	Sources    json.RawMessage `json:"sources,omitempty"`
	Error      *string         `json:"error,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// SourceURLs decodes the stored reference list. Jobs that have not finished
// have none.
func (j *Job) SourceURLs() ([]string, error) {
	if len(j.Sources) == 0 {
		return nil, nil
	}
	var urls []string
	if err := json.Unmarshal(j.Sources, &urls); err != nil {
		return nil, fmt.Errorf("failed to decode sources: %w", err)
	}
	return urls, nil
}

type CreateJobRequest struct {
	Keyword    string `json:"keyword"`
	References int    `json:"references"`
	Filename   string `json:"filename"`
}

// Query validates the request. Zero references means the default count.
func (r CreateJobRequest) Query() (models.SearchQuery, error) {
	refs := r.References
	if refs == 0 {
		refs = models.DefaultReferenceCount
	}
	q, err := models.NewSearchQuery(r.Keyword, refs)
	if err != nil {
		return models.SearchQuery{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	if r.Filename != "" {
		if err := blog.CheckFilename(r.Filename); err != nil {
			return models.SearchQuery{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
	}
	return q, nil
}

const jobColumns = `id, keyword, reference_count, filename, status, stage, markdown, path, cover_path, sources, error, created_at, updated_at`

func scanJob(row pgx.Row, job *Job) error {
	return row.Scan(
		&job.ID, &job.Keyword, &job.References, &job.Filename, &job.Status, &job.Stage,
		&job.Markdown, &job.Path, &job.CoverPath, &job.Sources, &job.Error, &job.CreatedAt, &job.UpdatedAt,
	)
}

func (s *Service) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	q, err := req.Query()
	if err != nil {
		return nil, err
	}
	filename := req.Filename
	if filename == "" {
		filename = blog.DefaultFilename(q.Keyword, time.Now())
	}

	query := `
		INSERT INTO blog_jobs (id, keyword, reference_count, filename, status)
		VALUES ($1, $2, $3, $4, 'pending')
		RETURNING ` + jobColumns

	job := &Job{}
	if err := scanJob(s.DB.Pool.QueryRow(ctx, query, uuid.New(), q.Keyword, q.DesiredResultCount, filename), job); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}

	// Start background worker
	go s.runWorker(job.ID, blog.Request{Query: q, Filename: filename})

	return job, nil
}

func (s *Service) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	query := `SELECT ` + jobColumns + ` FROM blog_jobs WHERE id = $1`
	job := &Job{}
	if err := scanJob(s.DB.Pool.QueryRow(ctx, query, id), job); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return job, nil
}

func (s *Service) ListJobs(ctx context.Context) ([]Job, error) {
	query := `
		SELECT ` + jobColumns + `
		FROM blog_jobs
		ORDER BY created_at DESC
		LIMIT 50
	`
	rows, err := s.DB.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []Job
	for rows.Next() {
		var job Job
		if err := scanJob(rows, &job); err != nil {
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

type LogEntry struct {
	ID        int             `json:"id"`
	Timestamp time.Time       `json:"timestamp"`
	Level     string          `json:"level"`
	Message   string          `json:"message"`
	Metadata  json.RawMessage `json:"metadata"`
}

func (s *Service) GetJobLogs(ctx context.Context, jobID uuid.UUID) ([]LogEntry, error) {
	query := `
		SELECT id, timestamp, level, message, metadata
		FROM blog_logs
		WHERE job_id = $1
		ORDER BY id ASC
	`
	rows, err := s.DB.Pool.Query(ctx, query, jobID)
	if err != nil {
		return nil, fmt.Errorf("failed to get logs: %w", err)
	}
	defer rows.Close()

	var logs []LogEntry
	for rows.Next() {
		var l LogEntry
		if err := rows.Scan(&l.ID, &l.Timestamp, &l.Level, &l.Message, &l.Metadata); err != nil {
			continue
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (s *Service) runWorker(jobID uuid.UUID, req blog.Request) {
	ctx := context.Background()
	s.Metrics.JobStarted()

	_, _ = s.DB.Pool.Exec(ctx, "UPDATE blog_jobs SET status = 'running', updated_at = NOW() WHERE id = $1", jobID)

	dbLogger := slog.New(NewDBLogHandler(s.DB, jobID))

	engine, err := s.NewEngine(ctx)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("Failed to init engine: %v", err))
		return
	}
	engine.WithLogger(dbLogger)

	engine.OnStage = func(ev blog.StageEvent) {
		s.Metrics.ObserveStage(ev)
		_, err := s.DB.Pool.Exec(context.Background(),
			"UPDATE blog_jobs SET stage = $2, updated_at = NOW() WHERE id = $1",
			jobID, string(ev.Stage))
		if err != nil {
			dbLogger.Error("Failed to save stage to DB", "error", err)
		}
	}

	post, err := engine.Run(ctx, req)
	if err != nil {
		s.failJob(ctx, jobID, fmt.Sprintf("Post generation failed: %v", err))
		return
	}

	sourcesJSON, err := json.Marshal(post.Sources)
	if err != nil {
		sourcesJSON = []byte("[]")
	}
	var coverPath *string
	if post.CoverPath != "" {
		coverPath = &post.CoverPath
	}

	_, err = s.DB.Pool.Exec(ctx, `
		UPDATE blog_jobs
		SET status = 'completed', markdown = $2, path = $3, cover_path = $4, sources = $5, updated_at = NOW()
		WHERE id = $1`,
		jobID, post.Markdown, post.Path, coverPath, sourcesJSON)
	if err != nil {
		dbLogger.Error("Failed to save post to DB", "error", err)
	}
	s.Metrics.JobFinished(StatusCompleted, coverPath != nil)
}

func (s *Service) failJob(ctx context.Context, jobID uuid.UUID, reason string) {
	dbLogger := slog.New(NewDBLogHandler(s.DB, jobID))
	dbLogger.Error(reason)

	_, _ = s.DB.Pool.Exec(ctx, "UPDATE blog_jobs SET status = 'failed', error = $2, updated_at = NOW() WHERE id = $1", jobID, reason)
	s.Metrics.JobFinished(StatusFailed, false)
}

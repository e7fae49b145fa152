package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/mikeboe/blog-post-creator/pkg/blog"
)

type fakeJobs struct {
	jobs      map[uuid.UUID]*Job
	logs      map[uuid.UUID][]LogEntry
	created   []CreateJobRequest
	createErr error
	getErr    error
}

func newFakeJobs() *fakeJobs {
	return &fakeJobs{jobs: map[uuid.UUID]*Job{}, logs: map[uuid.UUID][]LogEntry{}}
}

func (f *fakeJobs) CreateJob(ctx context.Context, req CreateJobRequest) (*Job, error) {
	q, err := req.Query()
	if err != nil {
		return nil, err
	}
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.created = append(f.created, req)
	job := &Job{
		ID:         uuid.New(),
		Keyword:    q.Keyword,
		References: q.DesiredResultCount,
		Filename:   req.Filename,
		Status:     StatusPending,
	}
	f.jobs[job.ID] = job
	return job, nil
}

func (f *fakeJobs) GetJob(ctx context.Context, id uuid.UUID) (*Job, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	job, ok := f.jobs[id]
	if !ok {
		return nil, ErrJobNotFound
	}
	return job, nil
}

func (f *fakeJobs) ListJobs(ctx context.Context) ([]Job, error) {
	var out []Job
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, nil
}

func (f *fakeJobs) GetJobLogs(ctx context.Context, id uuid.UUID) ([]LogEntry, error) {
	return f.logs[id], nil
}

func (f *fakeJobs) add(job Job) uuid.UUID {
	job.ID = uuid.New()
	f.jobs[job.ID] = &job
	return job.ID
}

func newTestRouter(jobs Jobs, metrics *Metrics) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHandler(jobs, metrics).RegisterRoutes(r)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func strPtr(s string) *string { return &s }

func TestCreateJob(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
	}{
		{"valid", `{"keyword":"café especial","references":5}`, nil, http.StatusCreated},
		{"default references", `{"keyword":"café"}`, nil, http.StatusCreated},
		{"malformed json", `{"keyword":`, nil, http.StatusBadRequest},
		{"blank keyword", `{"keyword":"   "}`, nil, http.StatusBadRequest},
		{"too many references", `{"keyword":"café","references":11}`, nil, http.StatusBadRequest},
		{"filename with path", `{"keyword":"café","filename":"../x.md"}`, nil, http.StatusBadRequest},
		{"store failure", `{"keyword":"café"}`, errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jobs := newFakeJobs()
			jobs.createErr = tt.createErr
			w := do(newTestRouter(jobs, nil), http.MethodPost, "/api/posts", tt.body)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus != http.StatusCreated {
				return
			}
			var job Job
			if err := json.Unmarshal(w.Body.Bytes(), &job); err != nil {
				t.Fatalf("decode response: %v", err)
			}
			if job.ID == uuid.Nil || job.Status != StatusPending {
				t.Errorf("job = %+v, want a pending job with an id", job)
			}
		})
	}
}

func TestListJobsEmpty(t *testing.T) {
	w := do(newTestRouter(newFakeJobs(), nil), http.MethodGet, "/api/posts", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestGetJob(t *testing.T) {
	jobs := newFakeJobs()
	id := jobs.add(Job{Keyword: "café", Status: StatusRunning, Stage: strPtr("load")})
	r := newTestRouter(jobs, nil)

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"found", "/api/posts/" + id.String(), http.StatusOK},
		{"invalid uuid", "/api/posts/not-a-uuid", http.StatusBadRequest},
		{"unknown", "/api/posts/" + uuid.NewString(), http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, tt.path, "")
			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}

	t.Run("store failure", func(t *testing.T) {
		failing := newFakeJobs()
		failing.getErr = errors.New("db down")
		w := do(newTestRouter(failing, nil), http.MethodGet, "/api/posts/"+id.String(), "")
		if w.Code != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", w.Code)
		}
	})
}

func TestGetJobLogs(t *testing.T) {
	jobs := newFakeJobs()
	id := jobs.add(Job{Keyword: "café", Status: StatusRunning})
	jobs.logs[id] = []LogEntry{{ID: 1, Level: "INFO", Message: "Starting blog post", Metadata: json.RawMessage(`{}`)}}
	r := newTestRouter(jobs, nil)

	w := do(r, http.MethodGet, "/api/posts/"+id.String()+"/logs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var logs []LogEntry
	if err := json.Unmarshal(w.Body.Bytes(), &logs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(logs) != 1 || logs[0].Message != "Starting blog post" {
		t.Errorf("logs = %+v", logs)
	}

	w = do(r, http.MethodGet, "/api/posts/"+uuid.NewString()+"/logs", "")
	if got := strings.TrimSpace(w.Body.String()); got != "[]" {
		t.Errorf("body for job without logs = %s, want []", got)
	}
}

func TestPreviewPost(t *testing.T) {
	cover := filepath.Join(t.TempDir(), "cover_20240102_030405.png")
	if err := os.WriteFile(cover, []byte("png"), 0644); err != nil {
		t.Fatal(err)
	}
	withCover := blog.NewAssembler(t.TempDir()).Compose(cover, "# Café\n\nTexto.")

	jobs := newFakeJobs()
	pending := jobs.add(Job{Keyword: "café", Status: StatusPending})
	done := jobs.add(Job{Keyword: "café", Status: StatusCompleted, Markdown: strPtr(withCover)})
	plain := jobs.add(Job{Keyword: "café", Status: StatusCompleted, Markdown: strPtr("# Café\n\nTexto.")})
	r := newTestRouter(jobs, nil)

	tests := []struct {
		name       string
		id         uuid.UUID
		wantStatus int
		wantBody   string
	}{
		{"not ready", pending, http.StatusConflict, "not ready"},
		{"cover inlined", done, http.StatusOK, "data:image/png;base64,cG5n"},
		{"no cover", plain, http.StatusOK, "# Café\n\nTexto."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, http.MethodGet, "/api/posts/"+tt.id.String()+"/preview", "")
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if !strings.Contains(w.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to contain %q", w.Body.String(), tt.wantBody)
			}
		})
	}
}

func TestHealthAndMetrics(t *testing.T) {
	m := NewMetrics()
	m.JobStarted()
	m.ObserveStage(blog.StageEvent{Stage: blog.StageLoad, Duration: 2 * time.Second, Err: errors.New("no documents")})
	m.JobFinished(StatusFailed, false)
	m.JobStarted()
	m.ObserveStage(blog.StageEvent{Stage: blog.StageGenerate, Duration: time.Second})
	m.JobFinished(StatusCompleted, true)

	r := newTestRouter(newFakeJobs(), m)

	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Errorf("/healthz status = %d, want 200", w.Code)
	}

	w := do(r, http.MethodGet, "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", w.Code)
	}
	for _, want := range []string{
		`blog_jobs_total{status="completed"} 1`,
		`blog_jobs_total{status="failed"} 1`,
		`blog_covers_total{result="generated"} 1`,
		`blog_jobs_in_flight 0`,
		`blog_stage_duration_seconds_count{outcome="error",stage="load"} 1`,
		`blog_stage_duration_seconds_count{outcome="ok",stage="generate"} 1`,
	} {
		if !strings.Contains(w.Body.String(), want) {
			t.Errorf("/metrics missing %q", want)
		}
	}
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	m.JobStarted()
	m.ObserveStage(blog.StageEvent{Stage: blog.StageLoad})
	m.JobFinished(StatusCompleted, false)

	w := do(newTestRouter(newFakeJobs(), nil), http.MethodGet, "/metrics", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("/metrics status without metrics = %d, want 404", w.Code)
	}
}

package server

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
)

func TestMCPGenerate(t *testing.T) {
	ctx := context.Background()

	t.Run("creates a job", func(t *testing.T) {
		jobs := newFakeJobs()
		s := NewMCPServer(jobs)

		_, out, err := s.handleGenerate(ctx, nil, GeneratePostInput{Keyword: "café", References: 2, Filename: "cafe.md"})
		if err != nil {
			t.Fatalf("handleGenerate() error = %v", err)
		}
		if out.ID == "" || out.Status != StatusPending || out.Filename != "cafe.md" {
			t.Errorf("output = %+v", out)
		}
		if len(jobs.created) != 1 || jobs.created[0].References != 2 {
			t.Errorf("created = %+v, want one request with 2 references", jobs.created)
		}
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		s := NewMCPServer(newFakeJobs())
		_, _, err := s.handleGenerate(ctx, nil, GeneratePostInput{Keyword: " "})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Errorf("handleGenerate() error = %v, want %v", err, ErrInvalidRequest)
		}
	})
}

func TestMCPGet(t *testing.T) {
	ctx := context.Background()
	jobs := newFakeJobs()
	id := jobs.add(Job{
		Keyword:  "café",
		Status:   StatusCompleted,
		Stage:    strPtr("assemble"),
		Markdown: strPtr("# Café"),
		Path:     strPtr("blogs/cafe.md"),
		Sources:  json.RawMessage(`["https://a.example"]`),
	})
	s := NewMCPServer(jobs)

	t.Run("completed job", func(t *testing.T) {
		_, out, err := s.handleGet(ctx, nil, GetPostInput{ID: id.String()})
		if err != nil {
			t.Fatalf("handleGet() error = %v", err)
		}
		if out.Status != StatusCompleted || out.Markdown != "# Café" || out.Path != "blogs/cafe.md" || out.Stage != "assemble" {
			t.Errorf("output = %+v", out)
		}
		if len(out.Sources) != 1 || out.Sources[0] != "https://a.example" {
			t.Errorf("sources = %v", out.Sources)
		}
	})

	t.Run("invalid id", func(t *testing.T) {
		if _, _, err := s.handleGet(ctx, nil, GetPostInput{ID: "nope"}); err == nil {
			t.Error("handleGet() error = nil, want an error")
		}
	})

	t.Run("unknown job", func(t *testing.T) {
		_, _, err := s.handleGet(ctx, nil, GetPostInput{ID: "00000000-0000-0000-0000-000000000001"})
		if !errors.Is(err, ErrJobNotFound) {
			t.Errorf("handleGet() error = %v, want %v", err, ErrJobNotFound)
		}
	})
}

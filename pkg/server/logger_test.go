package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestRecordMetadata(t *testing.T) {
	r := slog.NewRecord(time.Now(), slog.LevelError, "Stage failed", 0)
	r.AddAttrs(
		slog.String("stage", "load"),
		slog.Any("error", errors.New("no documents")),
		slog.Duration("duration", 1500*time.Millisecond),
		slog.Int("chunks", 3),
	)
	base := []slog.Attr{slog.String("keyword", "café"), slog.String("stage", "resolve")}

	var got map[string]any
	if err := json.Unmarshal(recordMetadata(base, r), &got); err != nil {
		t.Fatalf("metadata is not JSON: %v", err)
	}

	want := map[string]any{
		"keyword":  "café",
		"stage":    "load",
		"error":    "no documents",
		"duration": "1.5s",
		"chunks":   float64(3),
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("metadata[%q] = %v, want %v", k, got[k], v)
		}
	}
}

func TestDBLogHandlerWithAttrs(t *testing.T) {
	h := NewDBLogHandler(nil, uuid.New())
	child := h.WithAttrs([]slog.Attr{slog.String("a", "1")}).(*DBLogHandler)
	grandchild := child.WithAttrs([]slog.Attr{slog.String("b", "2")}).(*DBLogHandler)

	if len(h.attrs) != 0 {
		t.Errorf("parent attrs = %v, want none", h.attrs)
	}
	if len(child.attrs) != 1 || len(grandchild.attrs) != 2 {
		t.Errorf("attrs = %v / %v, want 1 and 2 entries", child.attrs, grandchild.attrs)
	}
	if grandchild.JobID != h.JobID {
		t.Errorf("JobID = %v, want %v", grandchild.JobID, h.JobID)
	}
	if !h.Enabled(context.Background(), slog.LevelDebug) {
		t.Error("Enabled(Debug) = false, want true")
	}
}

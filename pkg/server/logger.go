package server

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/mikeboe/blog-post-creator/pkg/database"
)

// DBLogHandler is a slog.Handler that writes records to blog_logs
type DBLogHandler struct {
	DB    *database.PostgresDB
	JobID uuid.UUID
	attrs []slog.Attr
}

func NewDBLogHandler(db *database.PostgresDB, jobID uuid.UUID) *DBLogHandler {
	return &DBLogHandler{
		DB:    db,
		JobID: jobID,
	}
}

func (h *DBLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return true // Log everything
}

func (h *DBLogHandler) Handle(ctx context.Context, r slog.Record) error {
	query := `
		INSERT INTO blog_logs (job_id, timestamp, level, message, metadata)
		VALUES ($1, $2, $3, $4, $5)
	`

	// Background context so logs persist after the job context ends
	_, err := h.DB.Pool.Exec(context.Background(), query, h.JobID, r.Time, r.Level.String(), r.Message, recordMetadata(h.attrs, r))
	return err
}

func (h *DBLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.attrs = append(append([]slog.Attr{}, h.attrs...), attrs...)
	return &next
}

func (h *DBLogHandler) WithGroup(name string) slog.Handler {
	return h
}

// recordMetadata flattens handler and record attributes into a JSON object.
// Record attributes win on key collisions.
func recordMetadata(base []slog.Attr, r slog.Record) []byte {
	attrs := make(map[string]any, len(base)+r.NumAttrs())
	add := func(a slog.Attr) bool {
		v := a.Value.Resolve().Any()
		switch val := v.(type) {
		case error:
			v = val.Error()
		case interface{ String() string }:
			v = val.String()
		}
		attrs[a.Key] = v
		return true
	}
	for _, a := range base {
		add(a)
	}
	r.Attrs(add)

	metaJSON, err := json.Marshal(attrs)
	if err != nil {
		return []byte("{}")
	}
	return metaJSON
}

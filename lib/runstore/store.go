// Package runstore records one row per extraction run so `history` can
// show what the tool has been doing and how often the cache is hit.
package runstore

import (
	"context"
	"database/sql"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("apastats.lib.runstore")

type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

type Run struct {
	ID              int64         `json:"id"`
	StartedAt       time.Time     `json:"started_at"`
	Duration        time.Duration `json:"duration"`
	Operation       string        `json:"operation"`
	Target          string        `json:"target"`
	League          string        `json:"league"`
	Expanded        bool          `json:"expanded"`
	CacheHit        bool          `json:"cache_hit"`
	PartialFailures int           `json:"partial_failures"`
	Error           string        `json:"error,omitempty"`
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func (s Store) Record(ctx context.Context, run Run) error {
	ctx, span := tracer.Start(ctx, "Record")
	defer span.End()
	span.SetAttributes(
		attribute.String("operation", run.Operation),
		attribute.String("target", run.Target),
	)

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO runs (
			started_at, duration_ms, operation, target, league,
			expanded, cache_hit, partial_failures, error
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.StartedAt.Unix(),
		run.Duration.Milliseconds(),
		run.Operation,
		run.Target,
		run.League,
		boolInt(run.Expanded),
		boolInt(run.CacheHit),
		run.PartialFailures,
		run.Error,
	)
	return err
}

// Recent returns the newest runs first. A non-positive limit defaults
// to 20.
func (s Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	ctx, span := tracer.Start(ctx, "Recent")
	defer span.End()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, started_at, duration_ms, operation, target, league,
			expanded, cache_hit, partial_failures, error
		FROM runs ORDER BY started_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		var startedAt, durationMs, expanded, cacheHit int64
		err := rows.Scan(
			&r.ID, &startedAt, &durationMs, &r.Operation, &r.Target,
			&r.League, &expanded, &cacheHit, &r.PartialFailures, &r.Error,
		)
		if err != nil {
			return nil, err
		}
		r.StartedAt = time.Unix(startedAt, 0)
		r.Duration = time.Duration(durationMs) * time.Millisecond
		r.Expanded = expanded != 0
		r.CacheHit = cacheHit != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

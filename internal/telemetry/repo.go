package telemetry

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"perflab/internal/host"
)

// Repo reads and writes render passes.
type Repo struct {
	db *sql.DB
}

func NewRepo(db *sql.DB) *Repo {
	return &Repo{db: db}
}

func (r *Repo) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, SchemaSQL)
	return err
}

const insertPassSQL = `
INSERT INTO render_passes (
    seq, recorded_at, virtualized, scroll_offset, viewport_extent,
    start_index, end_index, materialized, item_count, total_extent,
    mounted, unmounted, compute_us
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

// InsertPasses writes a batch in one transaction.
func (r *Repo) InsertPasses(ctx context.Context, passes []host.Pass) error {
	if len(passes) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, insertPassSQL)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range passes {
		_, err := stmt.ExecContext(ctx,
			p.Seq,
			p.RecordedAt.UTC(),
			p.Virtualized,
			p.ScrollOffset,
			p.ViewportExtent,
			p.StartIndex,
			p.EndIndex,
			p.Materialized,
			p.ItemCount,
			p.TotalExtent,
			p.Mounted,
			p.Unmounted,
			p.Compute.Microseconds(),
		)
		if err != nil {
			return fmt.Errorf("insert pass %d: %w", p.Seq, err)
		}
	}

	return tx.Commit()
}

// Summary aggregates every recorded pass.
type Summary struct {
	Passes          int64   `json:"passes"`
	AvgMaterialized float64 `json:"avg_materialized"`
	MaxMaterialized int64   `json:"max_materialized"`
	AvgComputeUS    float64 `json:"avg_compute_us"`
	P95ComputeUS    float64 `json:"p95_compute_us"`
	VirtualizedPct  float64 `json:"virtualized_pct"`
}

func (r *Repo) Summary(ctx context.Context) (Summary, error) {
	const query = `
		SELECT
			COUNT(*),
			COALESCE(AVG(materialized), 0),
			COALESCE(MAX(materialized), 0),
			COALESCE(AVG(compute_us), 0),
			COALESCE(quantile_cont(compute_us, 0.95), 0),
			COALESCE(AVG(CASE WHEN virtualized THEN 100.0 ELSE 0.0 END), 0)
		FROM render_passes
	`

	var s Summary
	err := r.db.QueryRowContext(ctx, query).Scan(
		&s.Passes,
		&s.AvgMaterialized,
		&s.MaxMaterialized,
		&s.AvgComputeUS,
		&s.P95ComputeUS,
		&s.VirtualizedPct,
	)
	if err != nil {
		return Summary{}, fmt.Errorf("summary query failed: %w", err)
	}
	return s, nil
}

// Recent returns the newest passes first.
func (r *Repo) Recent(ctx context.Context, limit int) ([]host.Pass, error) {
	if limit <= 0 {
		limit = 10
	}
	if limit > 100 {
		limit = 100 // Safety limit
	}

	const query = `
		SELECT
			seq, recorded_at, virtualized, scroll_offset, viewport_extent,
			start_index, end_index, materialized, item_count, total_extent,
			mounted, unmounted, compute_us
		FROM render_passes
		ORDER BY pass_id DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query passes failed: %w", err)
	}
	defer rows.Close()

	passes := []host.Pass{}
	for rows.Next() {
		var p host.Pass
		var computeUS int64
		err := rows.Scan(
			&p.Seq,
			&p.RecordedAt,
			&p.Virtualized,
			&p.ScrollOffset,
			&p.ViewportExtent,
			&p.StartIndex,
			&p.EndIndex,
			&p.Materialized,
			&p.ItemCount,
			&p.TotalExtent,
			&p.Mounted,
			&p.Unmounted,
			&computeUS,
		)
		if err != nil {
			return nil, fmt.Errorf("scan pass failed: %w", err)
		}
		p.Compute = time.Duration(computeUS) * time.Microsecond
		passes = append(passes, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return passes, nil
}

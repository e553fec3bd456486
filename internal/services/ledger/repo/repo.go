// Package repo provides the ledger repository over ClickHouse
package repo

import (
	"context"

	"curtaincall/internal/platform/store"
	"curtaincall/internal/services/ledger/domain"
)

// CH is the ClickHouse-backed ledger repository
type CH struct {
	db store.Clickhouse
}

// NewCH constructs the repo
func NewCH(db store.Clickhouse) *CH { return &CH{db: db} }

// WriteLookups inserts source lookup rows
func (r *CH) WriteLookups(ctx context.Context, xs []domain.LookupRow) error {
	if len(xs) == 0 {
		return nil
	}
	rows := make([][]any, 0, len(xs))
	for _, x := range xs {
		rows = append(rows, []any{
			x.RunID, x.ActorID, x.ActorName,
			x.Source, x.Family, x.Tier,
			x.OK, x.ErrorKind, x.DurationMS,
			x.CostUSD, x.Confidence, x.Cached, x.TS,
		})
	}
	return r.db.Insert(ctx, `source_lookups
	(run_id, actor_id, actor_name, source, family, tier, ok, error_kind,
	duration_ms, cost_usd, confidence, cached, ts)`, rows)
}

// WriteRun inserts one batch summary row
func (r *CH) WriteRun(ctx context.Context, x domain.RunRow) error {
	return r.db.Insert(ctx, `enrichment_runs
	(run_id, started_at, finished_at, processed, enriched, total_cost_usd,
	fill_rate, exit_reason, cost_by_source)`, [][]any{{
		x.RunID, x.StartedAt, x.FinishedAt,
		x.Processed, x.Enriched, x.TotalCostUSD,
		x.FillRate, x.ExitReason, x.CostBySource,
	}})
}

// RecentRuns lists the latest batch summaries
func (r *CH) RecentRuns(ctx context.Context, limit int) ([]domain.RunRow, error) {
	rows, err := r.db.Query(ctx, `
	SELECT run_id, started_at, finished_at, processed, enriched,
		total_cost_usd, fill_rate, exit_reason, cost_by_source
	FROM enrichment_runs
	ORDER BY started_at DESC
	LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunRow
	for rows.Next() {
		var x domain.RunRow
		if err := rows.Scan(
			&x.RunID, &x.StartedAt, &x.FinishedAt, &x.Processed, &x.Enriched,
			&x.TotalCostUSD, &x.FillRate, &x.ExitReason, &x.CostBySource,
		); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, rows.Err()
}

// RunSourceStats aggregates lookups per source for one run
func (r *CH) RunSourceStats(ctx context.Context, runID string) ([]domain.RunSourceStat, error) {
	rows, err := r.db.Query(ctx, `
	SELECT source,
		count() AS lookups,
		countIf(ok) AS successes,
		sum(cost_usd) AS cost_usd,
		avg(duration_ms) AS avg_ms
	FROM source_lookups
	WHERE run_id = ?
	GROUP BY source
	ORDER BY source`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RunSourceStat
	for rows.Next() {
		var x domain.RunSourceStat
		if err := rows.Scan(&x.Source, &x.Lookups, &x.Successes, &x.CostUSD, &x.AvgMS); err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		kinds, err := r.errorKinds(ctx, runID, out[i].Source)
		if err != nil {
			return nil, err
		}
		out[i].ErrorKinds = kinds
	}
	return out, nil
}

func (r *CH) errorKinds(ctx context.Context, runID, source string) (map[string]uint64, error) {
	rows, err := r.db.Query(ctx, `
	SELECT error_kind, count() AS n
	FROM source_lookups
	WHERE run_id = ? AND source = ? AND NOT ok
	GROUP BY error_kind`, runID, source)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := map[string]uint64{}
	for rows.Next() {
		var kind string
		var n uint64
		if err := rows.Scan(&kind, &n); err != nil {
			return nil, err
		}
		out[kind] = n
	}
	return out, rows.Err()
}

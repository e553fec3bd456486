// Package http provides http transport for run telemetry
package http

import (
	stdhttp "net/http"
	"time"

	"curtaincall/internal/modkit/httpkit"
	"curtaincall/internal/services/api/runs/domain"
	ledger "curtaincall/internal/services/ledger/domain"
)

// Register mounts run telemetry endpoints on the given router
func Register(r httpkit.Router, q ledger.QueryPort) {
	h := &handlers{query: q}

	// most recent runs
	httpkit.PostJSON[domain.RecentInput](r, "/recent", h.recent)

	// per-source breakdown of one run
	httpkit.PostJSON[domain.SourceStatsInput](r, "/sources", h.sourceStats)
}

type handlers struct{ query ledger.QueryPort }

// swagger:route POST /runs/recent Runs runsRecent
// @Summary Most recent enrichment runs
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body domain.RecentInput true "Query"
// @Success 200 {array} domain.RunRow "ok"
// @Router /runs/recent [post]
func (h *handlers) recent(r *stdhttp.Request, in domain.RecentInput) (any, error) {
	rows, err := h.query.RecentRuns(r.Context(), in.Limit)
	if err != nil {
		return nil, err
	}
	out := make([]domain.RunRow, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRunRow(row))
	}
	return out, nil
}

// swagger:route POST /runs/sources Runs runsSourceStats
// @Summary Per-source stats for one run
// @Tags Runs
// @Accept json
// @Produce json
// @Param payload body domain.SourceStatsInput true "Query"
// @Success 200 {array} domain.SourceStatRow "ok"
// @Router /runs/sources [post]
func (h *handlers) sourceStats(r *stdhttp.Request, in domain.SourceStatsInput) (any, error) {
	stats, err := h.query.RunSourceStats(r.Context(), in.RunID)
	if err != nil {
		return nil, err
	}
	out := make([]domain.SourceStatRow, 0, len(stats))
	for _, s := range stats {
		out = append(out, domain.SourceStatRow{
			Source:     s.Source,
			Lookups:    s.Lookups,
			Successes:  s.Successes,
			CostUSD:    s.CostUSD,
			AvgMS:      s.AvgMS,
			ErrorKinds: s.ErrorKinds,
		})
	}
	return out, nil
}

func toRunRow(row ledger.RunRow) domain.RunRow {
	return domain.RunRow{
		RunID:        row.RunID,
		StartedAt:    row.StartedAt.UTC().Format(time.RFC3339),
		FinishedAt:   row.FinishedAt.UTC().Format(time.RFC3339),
		Processed:    row.Processed,
		Enriched:     row.Enriched,
		TotalCostUSD: row.TotalCostUSD,
		FillRate:     row.FillRate,
		ExitReason:   row.ExitReason,
		CostBySource: row.CostBySource,
	}
}

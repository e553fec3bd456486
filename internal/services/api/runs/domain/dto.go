// Package domain holds DTOs for the runs http contracts
package domain

// RecentInput selects the most recent enrichment runs
type RecentInput struct {
	Limit int `json:"limit,omitempty" validate:"omitempty,min=1,max=100" example:"20"`
}

// RunRow summarizes one enrichment run
type RunRow struct {
	RunID        string             `json:"run_id" example:"0b9e0f66-1f0a-4b9e-9a7f-6f6f9f1c2d3e"`
	StartedAt    string             `json:"started_at" example:"2026-08-01T03:00:00Z"`
	FinishedAt   string             `json:"finished_at" example:"2026-08-01T03:42:10Z"`
	Processed    uint64             `json:"processed" example:"250"`
	Enriched     uint64             `json:"enriched" example:"212"`
	TotalCostUSD float64            `json:"total_cost_usd" example:"4.83"`
	FillRate     float64            `json:"fill_rate" example:"0.85"`
	ExitReason   string             `json:"exit_reason" example:"completed"`
	CostBySource map[string]float64 `json:"cost_by_source,omitempty"`
}

// SourceStatsInput selects per-source stats for one run
type SourceStatsInput struct {
	RunID string `json:"run_id" validate:"required,uuid4" example:"0b9e0f66-1f0a-4b9e-9a7f-6f6f9f1c2d3e"`
}

// SourceStatRow aggregates one source's lookups within a run
type SourceStatRow struct {
	Source     string            `json:"source" example:"wikipedia"`
	Lookups    uint64            `json:"lookups" example:"250"`
	Successes  uint64            `json:"successes" example:"187"`
	CostUSD    float64           `json:"cost_usd" example:"0"`
	AvgMS      float64           `json:"avg_ms" example:"412.7"`
	ErrorKinds map[string]uint64 `json:"error_kinds,omitempty"`
}

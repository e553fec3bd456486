// Package domain holds the enrichment telemetry rows
package domain

import "time"

// LookupRow is one source lookup outcome, success or failure
type LookupRow struct {
	RunID      string
	ActorID    string
	ActorName  string
	Source     string
	Family     string
	Tier       string
	OK         bool
	ErrorKind  string
	DurationMS int64
	CostUSD    float64
	Confidence float64
	Cached     bool
	TS         time.Time
}

// RunRow summarizes one enrichment batch
type RunRow struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Processed    uint64
	Enriched     uint64
	TotalCostUSD float64
	FillRate     float64
	ExitReason   string
	CostBySource map[string]float64
}

// RunSourceStat aggregates one source's behavior within a run
type RunSourceStat struct {
	Source     string
	Lookups    uint64
	Successes  uint64
	CostUSD    float64
	AvgMS      float64
	ErrorKinds map[string]uint64
}

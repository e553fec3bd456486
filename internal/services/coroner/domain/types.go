// Package domain holds the orchestrator types
package domain

import (
	"time"

	"curtaincall/internal/adapters/sources"
	obit "curtaincall/internal/services/obituarist/domain"
)

// ExitReason says why a batch stopped
type ExitReason string

// Batch exit reasons
const (
	ExitCompleted   ExitReason = "completed"
	ExitCostLimit   ExitReason = "cost_limit"
	ExitInterrupted ExitReason = "interrupted"
)

// Stats aggregates one actor's enrichment pass
type Stats struct {
	SourcesAttempted int
	SourcesSucceeded int
	CostUSD          float64
	WallMS           int64
	CostBySource     map[string]float64
}

// EnrichmentResult is the outcome of enriching one actor. Raw is retained
// even when synthesis fails so a later pass can resynthesize without
// refetching
type EnrichmentResult struct {
	Data  *obit.Record
	Raw   []sources.Result
	Stats Stats
	Err   string
}

// RunStats summarizes one batch
type RunStats struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Processed    int
	Enriched     int
	TotalCostUSD float64
	CostBySource map[string]float64
	FillRate     float64
	ExitReason   ExitReason
}

// ProgressFunc reports per-actor completion during a batch
type ProgressFunc func(done, total int, actorName string, res EnrichmentResult)

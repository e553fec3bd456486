package domain

import (
	"context"

	"curtaincall/internal/adapters/sources"
)

// OrchestratorPort drives enrichment for one actor or a batch
type OrchestratorPort interface {
	Enrich(ctx context.Context, actor sources.Actor) EnrichmentResult
	EnrichBatch(ctx context.Context, actors []sources.Actor, onActor ProgressFunc) (map[string]EnrichmentResult, RunStats)
	SourceCount() int
	SourceNames() []string
}

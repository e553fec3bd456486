package domain

import "context"

// ReaderPort reads actors for enrichment
type ReaderPort interface {
	LoadActor(ctx context.Context, id string) (Actor, error)
	LoadActorsForEnrichment(ctx context.Context, c Criteria, limit int) ([]Actor, error)

	// ResolveActorsByName maps free-form names to actor ids; unknown
	// and ambiguous names are absent from the result
	ResolveActorsByName(ctx context.Context, names []string) (map[string]string, error)
}

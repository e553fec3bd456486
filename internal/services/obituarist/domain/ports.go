package domain

import (
	"context"

	"curtaincall/internal/adapters/sources"
)

// SynthesizerPort fuses raw source results into one Record.
// cost is the synthesis spend in USD, billed even on failure
type SynthesizerPort interface {
	Synthesize(ctx context.Context, actor sources.Actor, raws []sources.Result) (rec *Record, cost float64, err error)
}

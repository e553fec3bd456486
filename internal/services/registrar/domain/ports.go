package domain

import "context"

// WriterPort persists enrichment results
type WriterPort interface {
	WriteEnrichment(ctx context.Context, req WriteRequest) error
	RecordRejectedFactors(ctx context.Context, rows []RejectedFactorRow) error
}

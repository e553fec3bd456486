package domain

import "context"

// RecorderPort writes telemetry. Implementations must never fail the
// enrichment path; errors are logged and swallowed upstream
type RecorderPort interface {
	RecordLookups(ctx context.Context, rows []LookupRow) error
	RecordRun(ctx context.Context, run RunRow) error
}

// QueryPort reads telemetry for the ops API
type QueryPort interface {
	RecentRuns(ctx context.Context, limit int) ([]RunRow, error)
	RunSourceStats(ctx context.Context, runID string) ([]RunSourceStat, error)
}

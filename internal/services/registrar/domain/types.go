// Package domain holds the enrichment write types
package domain

import (
	"curtaincall/internal/adapters/sources"
	obit "curtaincall/internal/services/obituarist/domain"
)

// Mode selects the write target
type Mode string

// Write modes
const (
	ModeProduction Mode = "production"
	ModeStaging    Mode = "staging"
)

// WriteRequest is one enrichment write
type WriteRequest struct {
	Mode    Mode
	RunID   string
	ActorID string

	Record *obit.Record
	Raw    []sources.Result

	// SourceTypes and Model feed the idempotency hash
	SourceTypes []string
	Model       string
}

// RejectedFactorRow is one vocabulary miss, written for telemetry
type RejectedFactorRow struct {
	ActorID   string
	ActorName string
	Factor    string
	Kind      string
}

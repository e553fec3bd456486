// Package service provides the ledger service implementation
package service

import (
	"context"

	"curtaincall/internal/platform/logger"
	"curtaincall/internal/platform/store"
	dom "curtaincall/internal/services/ledger/domain"
	"curtaincall/internal/services/ledger/repo"
)

// Service implements domain.RecorderPort and domain.QueryPort.
// Telemetry is best effort: write failures are logged, never returned
// to the enrichment path
type Service struct {
	repo *repo.CH
	log  logger.Logger
}

// New constructs the ledger service; db may be nil (telemetry disabled)
func New(db store.Clickhouse) *Service {
	s := &Service{log: *logger.Named("ledger")}
	if db != nil {
		s.repo = repo.NewCH(db)
	}
	return s
}

// RecordLookups implements domain.RecorderPort
func (s *Service) RecordLookups(ctx context.Context, rows []dom.LookupRow) error {
	if s.repo == nil || len(rows) == 0 {
		return nil
	}
	if err := s.repo.WriteLookups(ctx, rows); err != nil {
		s.log.Warn().Err(err).Int("rows", len(rows)).Msg("lookup telemetry dropped")
	}
	return nil
}

// RecordRun implements domain.RecorderPort
func (s *Service) RecordRun(ctx context.Context, run dom.RunRow) error {
	if s.repo == nil {
		return nil
	}
	if err := s.repo.WriteRun(ctx, run); err != nil {
		s.log.Warn().Err(err).Str("run", run.RunID).Msg("run telemetry dropped")
	}
	return nil
}

// RecentRuns implements domain.QueryPort
func (s *Service) RecentRuns(ctx context.Context, limit int) ([]dom.RunRow, error) {
	if s.repo == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.RecentRuns(ctx, limit)
}

// RunSourceStats implements domain.QueryPort
func (s *Service) RunSourceStats(ctx context.Context, runID string) ([]dom.RunSourceStat, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.RunSourceStats(ctx, runID)
}

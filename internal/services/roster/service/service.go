// Package service provides the roster service implementation
package service

import (
	"context"

	"curtaincall/internal/modkit/repokit"
	dom "curtaincall/internal/services/roster/domain"
	"curtaincall/internal/services/roster/repo"
)

// Config for the roster service
type Config struct {
	HardLimit int
}

// Service implements domain.ReaderPort against the PG repo
type Service struct {
	repo repo.Storage
	cfg  Config
}

// New constructs a new roster service
func New(q repokit.Queryer, cfg Config) *Service {
	if cfg.HardLimit <= 0 {
		cfg.HardLimit = 500
	}
	return &Service{repo: repo.NewPG().Bind(q), cfg: cfg}
}

// LoadActor implements domain.ReaderPort
func (s *Service) LoadActor(ctx context.Context, id string) (dom.Actor, error) {
	return s.repo.LoadActor(ctx, id)
}

// LoadActorsForEnrichment implements domain.ReaderPort
func (s *Service) LoadActorsForEnrichment(ctx context.Context, c dom.Criteria, limit int) ([]dom.Actor, error) {
	if limit <= 0 || limit > s.cfg.HardLimit {
		limit = s.cfg.HardLimit
	}
	return s.repo.LoadActorsForEnrichment(ctx, c, limit)
}

// ResolveActorsByName implements domain.ReaderPort
func (s *Service) ResolveActorsByName(ctx context.Context, names []string) (map[string]string, error) {
	return s.repo.ResolveActorsByName(ctx, names)
}

// Package service implements the enrichment writer: transactional
// persistence with mandatory cache invalidation on the production path
package service

import (
	"context"
	"encoding/json"

	"curtaincall/internal/core/version"
	"curtaincall/internal/modkit/repokit"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
	"curtaincall/internal/platform/store"
	"curtaincall/internal/services/registrar/domain"
	"curtaincall/internal/services/registrar/repo"
	roster "curtaincall/internal/services/roster/domain"
)

// Service implements domain.WriterPort
type Service struct {
	db     repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	cache  store.Cache
	roster roster.ReaderPort // nil skips related-celebrity resolution
	log    logger.Logger
}

// New constructs the registrar service. cache may be nil only in staging-only
// deployments; a production write with a nil cache fails
func New(db repokit.TxRunner, cache store.Cache, rosterPort roster.ReaderPort) *Service {
	return &Service{
		db:     db,
		binder: repo.NewPG(),
		cache:  cache,
		roster: rosterPort,
		log:    *logger.Named("registrar"),
	}
}

// WriteEnrichment implements domain.WriterPort
func (s *Service) WriteEnrichment(ctx context.Context, req domain.WriteRequest) error {
	if req.Record == nil {
		return perr.Newf(perr.ErrorCodeInvalidArgument, "write without a record")
	}
	ver := version.EnrichmentVersion(req.SourceTypes, req.Model)
	raw, err := json.Marshal(req.Raw)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "raw sources not serializable")
	}

	if req.Mode == domain.ModeStaging {
		recJSON, err := json.Marshal(req.Record)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeJSON, "record not serializable")
		}
		return repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
			return s.binder.Bind(q).InsertStaging(ctx, req.RunID, req.ActorID, ver, recJSON, raw)
		})
	}

	relatedIDs := s.resolveRelated(ctx, req.Record.RelatedCelebrities)

	err = repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		st := s.binder.Bind(q)
		if err := st.UpdateActorEnrichment(ctx, req.ActorID, req.Record.CauseOfDeath, ver); err != nil {
			return err
		}
		if err := st.UpsertCircumstances(ctx, req.ActorID, ver, req.Record, relatedIDs); err != nil {
			return err
		}
		return st.ArchiveRaw(ctx, req.ActorID, req.RunID, raw)
	})
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeDB, "enrichment write for actor %s", req.ActorID)
	}

	// a committed write with a stale cache is worse than a failed write;
	// the actor gets flagged so reconciliation can redo the invalidation
	if err := s.invalidate(ctx, req.ActorID); err != nil {
		s.markReconcile(ctx, req.ActorID)
		return perr.Wrapf(err, perr.ErrorCodeCacheUnavailable, "cache invalidation for actor %s", req.ActorID)
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, actorID string) error {
	if s.cache == nil {
		return perr.CacheUnavailablef("no cache wired for production writes")
	}
	if err := s.cache.Invalidate(ctx,
		"actor:id:"+actorID,
		"actor:id:"+actorID+":type:death",
	); err != nil {
		return err
	}
	_, err := s.cache.InvalidatePattern(ctx, "actors:list:*")
	return err
}

func (s *Service) markReconcile(ctx context.Context, actorID string) {
	err := repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		return s.binder.Bind(q).MarkReconcile(ctx, actorID)
	})
	if err != nil {
		s.log.Error().Err(err).Str("actor", actorID).Msg("reconcile flag write failed")
	}
}

// resolveRelated maps free-form celebrity names to actor ids where the
// roster knows them unambiguously
func (s *Service) resolveRelated(ctx context.Context, names []string) []string {
	if s.roster == nil || len(names) == 0 {
		return nil
	}
	m, err := s.roster.ResolveActorsByName(ctx, names)
	if err != nil {
		s.log.Warn().Err(err).Msg("related celebrity resolution failed")
		return nil
	}
	out := make([]string, 0, len(m))
	for _, n := range names {
		if id, ok := m[n]; ok {
			out = append(out, id)
		}
	}
	return out
}

// RecordRejectedFactors implements domain.WriterPort
func (s *Service) RecordRejectedFactors(ctx context.Context, rows []domain.RejectedFactorRow) error {
	if len(rows) == 0 {
		return nil
	}
	return repokit.WithTx(ctx, s.db, func(q repokit.Queryer) error {
		return s.binder.Bind(q).InsertRejectedFactors(ctx, rows)
	})
}

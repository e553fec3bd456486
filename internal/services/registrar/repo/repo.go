// Package repo provides the registrar repository implementation
package repo

import (
	"context"

	"curtaincall/internal/modkit/repokit"
	obit "curtaincall/internal/services/obituarist/domain"
	"curtaincall/internal/services/registrar/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the registrar repository
type Storage interface {
	UpdateActorEnrichment(ctx context.Context, actorID, causeOfDeath, version string) error
	UpsertCircumstances(ctx context.Context, actorID, version string, rec *obit.Record, relatedIDs []string) error
	ArchiveRaw(ctx context.Context, actorID, runID string, raw []byte) error
	InsertStaging(ctx context.Context, runID, actorID, version string, recJSON, raw []byte) error
	InsertRejectedFactors(ctx context.Context, rows []domain.RejectedFactorRow) error
	MarkReconcile(ctx context.Context, actorID string) error
}

// UpdateActorEnrichment implements Storage
func (s *pg) UpdateActorEnrichment(ctx context.Context, actorID, causeOfDeath, version string) error {
	_, err := s.q.Exec(ctx, `
	UPDATE actors SET
		cause_of_death = COALESCE(NULLIF($2, ''), cause_of_death),
		enrichment_version = $3,
		circumstances_enriched_at = now()
	WHERE id = $1::uuid`, actorID, causeOfDeath, version)
	return err
}

// UpsertCircumstances implements Storage. Idempotent on
// (actor_id, source_version): rerunning the same sources and model
// rewrites the same row
func (s *pg) UpsertCircumstances(ctx context.Context, actorID, version string, rec *obit.Record, relatedIDs []string) error {
	_, err := s.q.Exec(ctx, `
	INSERT INTO death_circumstances
		(actor_id, source_version, circumstances, rumored_circumstances,
		location_of_death, cause_of_death,
		cause_confidence, details_confidence, birthday_confidence, deathday_confidence,
		notable_factors, last_project, posthumous_releases, career_status_at_death,
		related_celebrities, related_celebrity_ids, related_deaths,
		narrative, has_substantive_content, updated_at)
	VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16::uuid[], $17, $18, $19, now())
	ON CONFLICT (actor_id, source_version) DO UPDATE SET
		circumstances = EXCLUDED.circumstances,
		rumored_circumstances = EXCLUDED.rumored_circumstances,
		location_of_death = EXCLUDED.location_of_death,
		cause_of_death = EXCLUDED.cause_of_death,
		cause_confidence = EXCLUDED.cause_confidence,
		details_confidence = EXCLUDED.details_confidence,
		birthday_confidence = EXCLUDED.birthday_confidence,
		deathday_confidence = EXCLUDED.deathday_confidence,
		notable_factors = EXCLUDED.notable_factors,
		last_project = EXCLUDED.last_project,
		posthumous_releases = EXCLUDED.posthumous_releases,
		career_status_at_death = EXCLUDED.career_status_at_death,
		related_celebrities = EXCLUDED.related_celebrities,
		related_celebrity_ids = EXCLUDED.related_celebrity_ids,
		related_deaths = EXCLUDED.related_deaths,
		narrative = EXCLUDED.narrative,
		has_substantive_content = EXCLUDED.has_substantive_content,
		updated_at = now()`,
		actorID, version,
		rec.Circumstances, rec.RumoredCircumstances,
		rec.LocationOfDeath, rec.CauseOfDeath,
		string(rec.CauseConfidence), string(rec.DetailsConfidence),
		string(rec.BirthdayConfidence), string(rec.DeathdayConfidence),
		rec.NotableFactors, rec.LastProject, rec.PosthumousReleases, rec.CareerStatusAtDeath,
		rec.RelatedCelebrities, relatedIDs, rec.RelatedDeaths,
		rec.Narrative, rec.HasSubstantiveContent,
	)
	return err
}

// ArchiveRaw implements Storage
func (s *pg) ArchiveRaw(ctx context.Context, actorID, runID string, raw []byte) error {
	_, err := s.q.Exec(ctx, `
	INSERT INTO enrichment_archive (actor_id, run_id, raw_sources, archived_at)
	VALUES ($1::uuid, $2::uuid, $3::jsonb, now())`, actorID, runID, raw)
	return err
}

// InsertStaging implements Storage
func (s *pg) InsertStaging(ctx context.Context, runID, actorID, version string, recJSON, raw []byte) error {
	_, err := s.q.Exec(ctx, `
	INSERT INTO death_circumstances_staging
		(run_id, actor_id, source_version, record, raw_sources, created_at)
	VALUES ($1::uuid, $2::uuid, $3, $4::jsonb, $5::jsonb, now())`,
		runID, actorID, version, recJSON, raw)
	return err
}

// InsertRejectedFactors implements Storage
func (s *pg) InsertRejectedFactors(ctx context.Context, rows []domain.RejectedFactorRow) error {
	for _, r := range rows {
		if _, err := s.q.Exec(ctx, `
	INSERT INTO rejected_factors (actor_id, actor_name, factor, kind, seen_at)
	VALUES ($1::uuid, $2, $3, $4, now())`,
			r.ActorID, r.ActorName, r.Factor, r.Kind); err != nil {
			return err
		}
	}
	return nil
}

// MarkReconcile implements Storage
func (s *pg) MarkReconcile(ctx context.Context, actorID string) error {
	_, err := s.q.Exec(ctx, `
	UPDATE actors SET needs_cache_reconcile = true WHERE id = $1::uuid`, actorID)
	return err
}

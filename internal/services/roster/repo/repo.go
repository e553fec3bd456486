// Package repo provides the roster repository implementation
package repo

import (
	"fmt"
	"strings"
	"time"

	"context"

	"curtaincall/internal/modkit/repokit"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/services/roster/domain"
)

type (
	pg     struct{ q repokit.Queryer }
	binder struct{}
)

// NewPG constructs a new repo binder for Postgres
func NewPG() repokit.Binder[Storage] { return binder{} }

// Bind implements repokit.Binder
func (binder) Bind(q repokit.Queryer) Storage { return &pg{q: q} }

// Storage defines the roster repository
type Storage interface {
	LoadActor(ctx context.Context, id string) (domain.Actor, error)
	LoadActorsForEnrichment(ctx context.Context, c domain.Criteria, limit int) ([]domain.Actor, error)
	ResolveActorsByName(ctx context.Context, names []string) (map[string]string, error)
}

const actorCols = `
	a.id::text, a.external_id, a.name,
	a.birthday, a.deathday, COALESCE(a.place_of_birth, ''),
	COALESCE(a.cause_of_death, ''), a.popularity, COALESCE(a.biography, '')`

// LoadActor implements Storage
func (s *pg) LoadActor(ctx context.Context, id string) (domain.Actor, error) {
	row := s.q.QueryRow(ctx, `SELECT `+actorCols+` FROM actors a WHERE a.id = $1::uuid`, id)
	a, err := scanActor(row)
	if err != nil {
		return domain.Actor{}, perr.Wrapf(err, perr.ErrorCodeNotFound, "actor %s", id)
	}
	return a, nil
}

// LoadActorsForEnrichment implements Storage
func (s *pg) LoadActorsForEnrichment(ctx context.Context, c domain.Criteria, limit int) ([]domain.Actor, error) {
	var sb strings.Builder
	var args []any
	arg := func(v any) string { args = append(args, v); return fmt.Sprintf("$%d", len(args)) }

	sb.WriteString(`SELECT ` + actorCols + ` FROM actors a WHERE a.deathday IS NOT NULL`)

	switch c.Kind {
	case domain.MissingCircumstances:
		sb.WriteString(`
	AND NOT EXISTS (SELECT 1 FROM death_circumstances d WHERE d.actor_id = a.id)`)
		// keyset; popularity ties broken by id for a stable walk
		if c.AfterID != "" {
			sb.WriteString("\n\tAND a.id > " + arg(c.AfterID) + "::uuid")
		}
		sb.WriteString("\nORDER BY a.id")

	case domain.ByIDs:
		if len(c.IDs) == 0 {
			return nil, nil
		}
		sb.WriteString("\n\tAND a.id = ANY(" + arg(c.IDs) + "::uuid[])\nORDER BY a.popularity DESC, a.id")

	case domain.ByExternalIDs:
		if len(c.ExternalIDs) == 0 {
			return nil, nil
		}
		sb.WriteString("\n\tAND a.external_id = ANY(" + arg(c.ExternalIDs) + ")\nORDER BY a.popularity DESC, a.id")

	case domain.TopBilledInYear:
		sb.WriteString(`
	AND EXISTS (
		SELECT 1
		FROM credits c
		JOIN (
			SELECT id FROM movies
			WHERE release_year = ` + arg(c.Year) + `
			ORDER BY popularity DESC
			LIMIT ` + arg(c.TopMovies) + `
		) m ON m.id = c.movie_id
		WHERE c.actor_id = a.id AND c.billing_order <= ` + arg(c.MaxBilling) + `
	)
ORDER BY a.popularity DESC, a.id`)

	default:
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "unknown criteria kind %q", c.Kind)
	}

	sb.WriteString("\nLIMIT " + arg(limit))

	rows, err := s.q.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Actor
	for rows.Next() {
		a, err := scanActor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ResolveActorsByName implements Storage. Names resolving to more than one
// actor are dropped rather than guessed
func (s *pg) ResolveActorsByName(ctx context.Context, names []string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	if len(names) == 0 {
		return out, nil
	}

	rows, err := s.q.Query(ctx, `
	SELECT name, MIN(id::text), COUNT(*)
	FROM actors
	WHERE lower(name) = ANY(SELECT lower(unnest($1::text[])))
	GROUP BY name`, names)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	byLower := map[string]string{}
	for rows.Next() {
		var name, id string
		var n int
		if err := rows.Scan(&name, &id, &n); err != nil {
			return nil, err
		}
		if n == 1 {
			byLower[strings.ToLower(name)] = id
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, n := range names {
		if id, ok := byLower[strings.ToLower(n)]; ok {
			out[n] = id
		}
	}
	return out, nil
}

type scannable interface{ Scan(dest ...any) error }

func scanActor(row scannable) (domain.Actor, error) {
	var a domain.Actor
	var birth, death *time.Time
	if err := row.Scan(
		&a.ID, &a.ExternalID, &a.Name,
		&birth, &death, &a.PlaceOfBirth,
		&a.CauseOfDeath, &a.Popularity, &a.Biography,
	); err != nil {
		return domain.Actor{}, err
	}
	if birth != nil {
		a.Birthday = birth.Format("2006-01-02")
	}
	if death != nil {
		a.Deathday = death.Format("2006-01-02")
	}
	return a, nil
}

// Package domain holds the actor roster types
package domain

// Actor is one person from the catalog, dates in YYYY-MM-DD
type Actor struct {
	ID           string
	ExternalID   int64
	Name         string
	Birthday     string
	Deathday     string
	PlaceOfBirth string
	CauseOfDeath string
	Popularity   float64
	Biography    string
}

// CriteriaKind selects how the enrichment batch is drawn
type CriteriaKind string

// Selection criteria kinds
const (
	MissingCircumstances CriteriaKind = "missing_circumstances"
	ByIDs                CriteriaKind = "by_ids"
	ByExternalIDs        CriteriaKind = "by_external_ids"
	TopBilledInYear      CriteriaKind = "top_billed_in_year"
)

// Criteria narrows the enrichment candidate scan
type Criteria struct {
	Kind CriteriaKind

	IDs         []string // by_ids
	ExternalIDs []int64  // by_external_ids

	// top_billed_in_year
	Year       int
	MaxBilling int // keep actors billed at or above this slot
	TopMovies  int // per-year popularity cutoff

	// keyset cursor for the missing-circumstances scan
	AfterID string
}

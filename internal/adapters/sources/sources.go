// Package sources implements the uniform contract over the ~27 external
// data sources the orchestrator draws from
//
// A source is a Descriptor (static metadata: family, tier, cost, limits)
// plus one perform function. The shared base pipeline around perform handles
// cache probe, rate limiting, the timeout budget, block fallback, and result
// caching, so concrete sources only fetch and parse
package sources

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Category is the pipeline priority grouping
type Category string

// Categories in pipeline priority order
const (
	CategoryFree      Category = "free"
	CategoryReference Category = "reference"
	CategoryBooks     Category = "books"
	CategoryWebSearch Category = "webSearch"
	CategoryNews      Category = "news"
	CategoryObituary  Category = "obituary"
	CategoryArchives  Category = "archives"
	CategoryAI        Category = "ai"
)

// CategoryOrder returns the fixed pipeline priority order
func CategoryOrder() []Category {
	return []Category{
		CategoryFree, CategoryReference, CategoryBooks, CategoryWebSearch,
		CategoryNews, CategoryObituary, CategoryArchives, CategoryAI,
	}
}

// Tier is the a-priori reliability class of a source
type Tier string

// Reliability tiers
const (
	TierStructuredData Tier = "structured_data"
	TierTier1News      Tier = "tier_1_news"
	TierTradePress     Tier = "trade_press"
	TierSecondary      Tier = "secondary_compilation"
	TierMarginal       Tier = "marginal_editorial"
	TierArchival       Tier = "archival"
	TierWebSearch      Tier = "web_search"
	TierAI             Tier = "ai"
)

// Score derives the reliability score from the tier; it is not free-form
func (t Tier) Score() float64 {
	switch t {
	case TierStructuredData, TierTier1News:
		return 0.95
	case TierArchival, TierTradePress:
		return 0.90
	case TierSecondary:
		return 0.85
	case TierMarginal:
		return 0.65
	case TierWebSearch:
		return 0.50
	case TierAI:
		return 0.70
	default:
		return 0
	}
}

// Type is the stable snake_case source identifier used in joins and telemetry
type Type string

// Source types
const (
	TypeWikidata      Type = "wikidata"
	TypeWikipedia     Type = "wikipedia"
	TypeBritannica    Type = "britannica"
	TypeIMDbBio       Type = "imdb_bio"
	TypeGoogleBooks   Type = "google_books"
	TypeIABooks       Type = "ia_books"
	TypeOpenLibrary   Type = "open_library"
	TypeBing          Type = "bing"
	TypeBrave         Type = "brave"
	TypeDuckDuckGo    Type = "duckduckgo"
	TypeGoogleCSE     Type = "google_cse"
	TypeAPNews        Type = "ap_news"
	TypeBBC           Type = "bbc"
	TypeGuardian      Type = "guardian"
	TypeNYT           Type = "nyt"
	TypeTMZ           Type = "tmz"
	TypeVariety       Type = "variety"
	TypeBiographyCom  Type = "biography_com"
	TypeHistoryCom    Type = "history_com"
	TypePeople        Type = "people"
	TypeSmithsonian   Type = "smithsonian"
	TypeChroniclingAm Type = "chronicling_america"
	TypeEuropeana     Type = "europeana"
	TypeInternetArch  Type = "internet_archive"
	TypeTrove         Type = "trove"
	TypeClaude        Type = "claude"
	TypeGemini        Type = "gemini"
)

// Descriptor is the static metadata of one source
type Descriptor struct {
	Type     Type
	Name     string
	Category Category
	Family   string
	Tier     Tier

	Free         bool
	CostPerQuery float64 // USD
	MinDelay     time.Duration
	Timeout      time.Duration

	// Creds are the env var names Available checks; empty means keyless
	Creds []string

	// ArchiveFallback marks scraping sources that retry via the archive
	// mirror on block; API-key sources never need it
	ArchiveFallback bool

	// MinContentLen gates cleaned text (80-200 chars depending on source)
	MinContentLen int
}

// Score is the reliability score derived from the tier
func (d Descriptor) Score() float64 { return d.Tier.Score() }

// Available reports whether every credential env var is present
func (d Descriptor) Available() bool {
	for _, k := range d.Creds {
		if strings.TrimSpace(os.Getenv(k)) == "" {
			return false
		}
	}
	return true
}

// Actor is the source-facing view of the enrichment subject
type Actor struct {
	ID           string
	Name         string
	Birthday     string // YYYY-MM-DD, optional
	Deathday     string // YYYY-MM-DD, optional
	PlaceOfBirth string
	KnownCause   string // prior cause-of-death, if any
}

// BirthYear returns the birth year, 0 when unknown
func (a Actor) BirthYear() int { return yearOf(a.Birthday) }

// DeathYear returns the death year, 0 when unknown
func (a Actor) DeathYear() int { return yearOf(a.Deathday) }

func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}

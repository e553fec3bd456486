package sources

import (
	"time"

	perr "curtaincall/internal/platform/errors"
)

// Entry is the telemetry common to every lookup outcome
type Entry struct {
	Type        Type      `json:"type"`
	RetrievedAt time.Time `json:"retrieved_at"`
	Confidence  float64   `json:"confidence"`
	Tier        Tier      `json:"tier"`
	Score       float64   `json:"score"`
	CostUSD     float64   `json:"cost_usd"`
	Meta        Meta      `json:"meta,omitempty"`
}

// Meta carries provenance that survives into synthesis attribution
type Meta struct {
	URL         string `json:"url,omitempty"`
	Title       string `json:"title,omitempty"`
	Publication string `json:"publication,omitempty"`
	ViaArchive  bool   `json:"via_archive,omitempty"`
	Cached      bool   `json:"cached,omitempty"`
}

// BiographySnippet is free text biographical material about the subject
type BiographySnippet struct {
	Text     string   `json:"text"`
	Families []string `json:"families,omitempty"`
}

// DeathSnippet is structured death material from wikidata and the AI sources
type DeathSnippet struct {
	Circumstances        string   `json:"circumstances,omitempty"`
	RumoredCircumstances string   `json:"rumored_circumstances,omitempty"`
	CauseOfDeath         string   `json:"cause_of_death,omitempty"`
	MannerOfDeath        string   `json:"manner_of_death,omitempty"`
	Location             string   `json:"location,omitempty"`
	Factors              []string `json:"factors,omitempty"`
	RelatedCelebrities   string   `json:"related_celebrities,omitempty"`
	Context              string   `json:"context,omitempty"`
}

// LookupError is a classified failure; Kind matches the error taxonomy labels
type LookupError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Result is the outcome of one source lookup. Exactly one of Bio, Death,
// or Err is set
type Result struct {
	Entry
	Bio   *BiographySnippet `json:"bio,omitempty"`
	Death *DeathSnippet     `json:"death,omitempty"`
	Err   *LookupError      `json:"err,omitempty"`
}

// OK reports whether the lookup produced material
func (r Result) OK() bool { return r.Err == nil && (r.Bio != nil || r.Death != nil) }

// FailKind returns the failure kind, empty on success
func (r Result) FailKind() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Kind
}

// Failure builds a classified failure Result from an error
func Failure(d Descriptor, err error, cost float64) Result {
	return Result{
		Entry: Entry{
			Type:        d.Type,
			RetrievedAt: time.Now().UTC(),
			Tier:        d.Tier,
			Score:       d.Score(),
			CostUSD:     cost,
		},
		Err: &LookupError{Kind: perr.Kind(err), Message: err.Error()},
	}
}

// definitiveKinds are failure kinds worth caching; transient kinds
// (rate limits, timeouts, upstream errors) are never cached
var definitiveKinds = map[string]bool{
	"not_found":          true,
	"blocked":            true,
	"content_too_short":  true,
	"content_irrelevant": true,
}

// Cacheable reports whether the result may be stored (success or
// definitive failure)
func (r Result) Cacheable() bool {
	if r.OK() {
		return true
	}
	return r.Err != nil && definitiveKinds[r.Err.Kind]
}

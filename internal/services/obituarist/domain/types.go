// Package domain holds the synthesized enrichment record and its ports
package domain

// Confidence grades a synthesized field
type Confidence string

// Field confidence grades; empty means the field is null
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Record is the structured output of one synthesis pass. String fields are
// empty when the sources did not support them; the synthesizer is told that
// null beats fabrication
type Record struct {
	Circumstances        string     `json:"circumstances"`
	RumoredCircumstances string     `json:"rumoredCircumstances"`
	LocationOfDeath      string     `json:"locationOfDeath"`
	CauseOfDeath         string     `json:"causeOfDeath"`
	CauseConfidence      Confidence `json:"causeConfidence"`
	DetailsConfidence    Confidence `json:"detailsConfidence"`
	BirthdayConfidence   Confidence `json:"birthdayConfidence"`
	DeathdayConfidence   Confidence `json:"deathdayConfidence"`

	NotableFactors      []string `json:"notableFactors"`
	LastProject         string   `json:"lastProject"`
	PosthumousReleases  []string `json:"posthumousReleases"`
	CareerStatusAtDeath string   `json:"careerStatusAtDeath"`
	RelatedCelebrities  []string `json:"relatedCelebrities"`
	RelatedDeaths       string   `json:"relatedDeaths"`
	Narrative           string   `json:"narrative"`

	HasSubstantiveContent bool `json:"hasSubstantiveContent"`

	// RejectedFactors are model-invented factors that failed the closed
	// vocabulary, kept for telemetry rather than discarded silently
	RejectedFactors []RejectedFactor `json:"-"`
}

// RejectedFactor is one vocabulary miss
type RejectedFactor struct {
	Factor string
	Kind   string // unknown_factor
}

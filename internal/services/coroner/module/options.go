package module

import (
	"curtaincall/internal/adapters/sources"
	"curtaincall/internal/platform/config"
	"curtaincall/internal/services/coroner/service"
)

// Options holds configuration settings for the coroner module
type Options struct {
	Categories          []string
	EarlyStop           int
	MaxCostPerActor     float64
	MaxTotalCost        float64
	ConfidenceThreshold float64
	SynthesisModel      string
	AICleaning          bool
	Workers             int
}

// FromConfig reads configuration settings from the config.Conf
func FromConfig(cfg config.Conf) Options {
	cf := cfg.Prefix("CORE_CORONER_")
	return Options{
		Categories:          cf.MayCSV("CATEGORIES", nil),
		EarlyStop:           service.NormalizeEarlyStop(cf.MayFloat64("EARLY_STOP", 5)),
		MaxCostPerActor:     cf.MayFloat64("MAX_COST_PER_ACTOR", 0.50),
		MaxTotalCost:        cf.MayFloat64("MAX_TOTAL_COST", 25.00),
		ConfidenceThreshold: cf.MayFloat64("CONFIDENCE_THRESHOLD", 0.60),
		SynthesisModel:      cf.MayString("SYNTHESIS_MODEL", "claude-sonnet-4-5"),
		AICleaning:          cf.MayBool("AI_CLEANING", false),
		Workers:             cf.MayInt("WORKERS", 1),
	}
}

// EnabledCategories converts the CSV option into a catalog filter. An empty
// list means every category is enabled
func (o Options) EnabledCategories() map[sources.Category]bool {
	if len(o.Categories) == 0 {
		return nil
	}
	out := make(map[sources.Category]bool, len(o.Categories))
	for _, c := range o.Categories {
		out[sources.Category(c)] = true
	}
	return out
}

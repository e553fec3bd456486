// Package service implements the synthesis pass: raw source results in,
// one structured enrichment record out
package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"curtaincall/internal/adapters/llm"
	"curtaincall/internal/adapters/sources"
	"curtaincall/internal/core/factors"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
	dom "curtaincall/internal/services/obituarist/domain"
)

// Config for the synthesizer
type Config struct {
	Model      string
	MaxRetries int
	RetryBase  time.Duration
	Timeout    time.Duration
}

// Service implements domain.SynthesizerPort
type Service struct {
	llm   llm.Completer
	pack  *factors.Pack
	cfg   Config
	log   logger.Logger
	sleep func(time.Duration)
}

// New constructs the synthesizer. pack may be nil to skip factor filtering
func New(completer llm.Completer, pack *factors.Pack, cfg Config) *Service {
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-5"
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = 2 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	return &Service{
		llm:   completer,
		pack:  pack,
		cfg:   cfg,
		log:   *logger.Named("obituarist"),
		sleep: time.Sleep,
	}
}

// Factor rejection tolerance: a response inventing this many unknown factors
// is treated as a hallucinated record, not a salvageable one
const (
	rejectAbsolute = 6
	rejectMinimum  = 4
)

// Synthesize implements domain.SynthesizerPort
func (s *Service) Synthesize(ctx context.Context, actor sources.Actor, raws []sources.Result) (*dom.Record, float64, error) {
	if len(raws) == 0 {
		return nil, 0, perr.SynthesisFailedf("no data")
	}

	ordered := orderSnippets(raws)
	prompt := buildPrompt(actor, ordered)
	maxTokens := 1500 + 150*len(ordered)
	if maxTokens > 4000 {
		maxTokens = 4000
	}

	comp, err := s.complete(ctx, prompt, maxTokens)
	if err != nil {
		return nil, comp.CostUSD, err
	}

	rec, err := parseRecord(comp.Text)
	if err != nil {
		s.log.Warn().Err(err).Str("actor", actor.Name).Msg("synthesis response unparseable")
		return nil, comp.CostUSD, err
	}

	if err := s.filterFactors(rec); err != nil {
		return nil, comp.CostUSD, err
	}

	rec.HasSubstantiveContent = len(rec.Circumstances) > 200 ||
		len(rec.RumoredCircumstances) > 100 ||
		len(rec.RelatedDeaths) > 50

	deriveConfidences(rec, ordered)
	return rec, comp.CostUSD, nil
}

// complete calls the LLM with bounded retries. Transient trouble backs off;
// auth and quota problems surface immediately
func (s *Service) complete(ctx context.Context, prompt string, maxTokens int) (llm.Completion, error) {
	var last error
	var spent float64
	for attempt := 0; attempt < s.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			s.sleep(s.cfg.RetryBase << uint(attempt-1))
		}
		cctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
		comp, err := s.llm.Complete(cctx, llm.Request{
			Model:     s.cfg.Model,
			System:    systemPrompt,
			Prompt:    prompt,
			MaxTokens: maxTokens,
		})
		cancel()
		spent += comp.CostUSD

		if err == nil {
			comp.CostUSD = spent
			return comp, nil
		}
		switch perr.CodeOf(err) {
		case perr.ErrorCodeUnauthorized, perr.ErrorCodeForbidden, perr.ErrorCodeInvalidArgument:
			return llm.Completion{CostUSD: spent}, err
		}
		if ctx.Err() != nil {
			return llm.Completion{CostUSD: spent}, perr.Wrapf(err, perr.ErrorCodeTimeout, "synthesis canceled")
		}
		last = err
		s.log.Warn().Err(err).Int("attempt", attempt).Msg("synthesis attempt failed")
	}
	return llm.Completion{CostUSD: spent},
		perr.Wrapf(last, perr.ErrorCodeSynthesisFailed, "synthesis failed after %d attempts", s.cfg.MaxRetries)
}

// filterFactors runs notableFactors through the closed vocabulary and
// decides whether the response as a whole is trustworthy
func (s *Service) filterFactors(rec *dom.Record) error {
	if s.pack == nil || len(rec.NotableFactors) == 0 {
		return nil
	}
	kept, rejected := s.pack.Filter(rec.NotableFactors)
	rec.NotableFactors = kept
	for _, r := range rejected {
		rec.RejectedFactors = append(rec.RejectedFactors, dom.RejectedFactor{Factor: r, Kind: "unknown_factor"})
	}
	if len(rejected) > rejectAbsolute ||
		(len(rejected) >= rejectMinimum && len(rejected) >= 2*len(kept)) {
		return perr.SynthesisFailedf("model invented %d of %d factors", len(rejected), len(rejected)+len(kept))
	}
	return nil
}

// orderSnippets sorts by reliability score then snippet confidence, highest
// first, so the prompt presents the best material first
func orderSnippets(raws []sources.Result) []sources.Result {
	ok := make([]sources.Result, 0, len(raws))
	for _, r := range raws {
		if r.OK() {
			ok = append(ok, r)
		}
	}
	sort.SliceStable(ok, func(i, j int) bool {
		if ok[i].Score != ok[j].Score {
			return ok[i].Score > ok[j].Score
		}
		return ok[i].Confidence > ok[j].Confidence
	})
	return ok
}

const systemPrompt = `You are a meticulous film-history researcher compiling death and biography records for actors. You only state what the provided sources support. When sources disagree, prefer the higher-reliability source. Keep verified fact and rumor strictly separate. If a field cannot be supported, output null for it. Fabricating a detail is a critical failure; an empty field is not.`

func buildPrompt(actor sources.Actor, ordered []sources.Result) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Subject: %s", actor.Name)
	if actor.Birthday != "" {
		fmt.Fprintf(&sb, ", born %s", actor.Birthday)
	}
	if actor.Deathday != "" {
		fmt.Fprintf(&sb, ", died %s", actor.Deathday)
	}
	if actor.PlaceOfBirth != "" {
		fmt.Fprintf(&sb, ", from %s", actor.PlaceOfBirth)
	}
	if actor.KnownCause != "" {
		fmt.Fprintf(&sb, ". Previously recorded cause of death: %s", actor.KnownCause)
	}
	sb.WriteString(".\n\nSources, most reliable first:\n")

	for i, r := range ordered {
		fmt.Fprintf(&sb, "\n--- Source %d: %s (reliability %.2f, snippet confidence %.2f)", i+1, r.Type, r.Score, r.Confidence)
		if r.Meta.Publication != "" {
			fmt.Fprintf(&sb, " [%s]", r.Meta.Publication)
		}
		if r.Meta.URL != "" {
			fmt.Fprintf(&sb, " %s", r.Meta.URL)
		}
		sb.WriteString(" ---\n")
		switch {
		case r.Bio != nil:
			sb.WriteString(r.Bio.Text + "\n")
		case r.Death != nil:
			d := r.Death
			if d.Circumstances != "" {
				sb.WriteString("Circumstances: " + d.Circumstances + "\n")
			}
			if d.RumoredCircumstances != "" {
				sb.WriteString("Rumored: " + d.RumoredCircumstances + "\n")
			}
			if d.CauseOfDeath != "" {
				sb.WriteString("Cause: " + d.CauseOfDeath + "\n")
			}
			if d.MannerOfDeath != "" {
				sb.WriteString("Manner: " + d.MannerOfDeath + "\n")
			}
			if d.Location != "" {
				sb.WriteString("Location: " + d.Location + "\n")
			}
			if len(d.Factors) > 0 {
				sb.WriteString("Factors: " + strings.Join(d.Factors, ", ") + "\n")
			}
			if d.RelatedCelebrities != "" {
				sb.WriteString("Related celebrities: " + d.RelatedCelebrities + "\n")
			}
		}
	}

	sb.WriteString(`
Produce a single JSON object with exactly these keys:
{
  "circumstances": "verified circumstances of death, prose, or null",
  "rumoredCircumstances": "rumored or disputed accounts, or null",
  "locationOfDeath": "place of death, or null",
  "causeOfDeath": "cause of death, or null",
  "causeConfidence": "high|medium|low|null",
  "detailsConfidence": "high|medium|low|null",
  "birthdayConfidence": "high|medium|low|null",
  "deathdayConfidence": "high|medium|low|null",
  "notableFactors": ["snake_case factor identifiers"],
  "lastProject": "final credited project, or null",
  "posthumousReleases": ["projects released after death"],
  "careerStatusAtDeath": "active|retired|semi-retired or null",
  "relatedCelebrities": ["names connected to the death"],
  "relatedDeaths": "narrative of connected deaths, or null",
  "narrative": "long-form biographical narrative"
}
Respond with only the JSON object.`)
	return sb.String()
}

// parseRecord accepts fenced or bare JSON
func parseRecord(text string) (*dom.Record, error) {
	raw := strings.TrimSpace(text)
	if i := strings.Index(raw, "```"); i >= 0 {
		raw = raw[i+3:]
		raw = strings.TrimPrefix(raw, "json")
		if j := strings.Index(raw, "```"); j >= 0 {
			raw = raw[:j]
		}
	}
	lo, hi := strings.Index(raw, "{"), strings.LastIndex(raw, "}")
	if lo < 0 || hi <= lo {
		return nil, perr.SynthesisFailedf("response carries no JSON object")
	}

	var rec dom.Record
	if err := json.Unmarshal([]byte(raw[lo:hi+1]), &rec); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeSynthesisFailed, "synthesis JSON invalid")
	}
	return &rec, nil
}

// deriveConfidences fills missing field confidences from the strongest
// contributing snippet
func deriveConfidences(rec *dom.Record, ordered []sources.Result) {
	var top float64
	for _, r := range ordered {
		if r.Confidence > top {
			top = r.Confidence
		}
	}
	derived := dom.ConfidenceLow
	switch {
	case top >= 0.7:
		derived = dom.ConfidenceHigh
	case top >= 0.4:
		derived = dom.ConfidenceMedium
	}

	fill := func(c *dom.Confidence, has bool) {
		if *c == "" && has {
			*c = derived
		}
	}
	fill(&rec.CauseConfidence, rec.CauseOfDeath != "")
	fill(&rec.DetailsConfidence, rec.Circumstances != "")
	fill(&rec.BirthdayConfidence, true)
	fill(&rec.DeathdayConfidence, true)
}

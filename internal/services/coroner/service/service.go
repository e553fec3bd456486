// Package service implements the enrichment orchestrator: the ordered
// source pipeline, early stop, cost ceilings, and batch control
package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"curtaincall/internal/adapters/sources"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
	dom "curtaincall/internal/services/coroner/domain"
	ledger "curtaincall/internal/services/ledger/domain"
	obit "curtaincall/internal/services/obituarist/domain"
)

// qualifyingScore is the reliability floor for early-stop accounting.
// Confidence alone is not enough: a confident hit from a weak source
// must not shorten the pipeline
const qualifyingScore = 0.7

// bookTypes are exempt from early stop: cheap, and disproportionately
// useful for narratives of older deaths
var bookTypes = map[sources.Type]bool{
	sources.TypeGoogleBooks: true,
	sources.TypeIABooks:     true,
	sources.TypeOpenLibrary: true,
}

// Config controls the orchestrator
type Config struct {
	EarlyStop           int
	MaxCostPerActor     float64
	MaxTotalCost        float64
	ConfidenceThreshold float64
	Workers             int
}

// Service implements domain.OrchestratorPort
type Service struct {
	srcs     []sources.Source
	synth    obit.SynthesizerPort
	recorder ledger.RecorderPort // nil disables telemetry
	cfg      Config
	log      logger.Logger
	now      func() time.Time
}

// New constructs the orchestrator over an ordered source catalog
func New(srcs []sources.Source, synth obit.SynthesizerPort, recorder ledger.RecorderPort, cfg Config) *Service {
	cfg.EarlyStop = NormalizeEarlyStop(float64(cfg.EarlyStop))
	if cfg.MaxCostPerActor <= 0 {
		cfg.MaxCostPerActor = 0.50
	}
	if cfg.MaxTotalCost <= 0 {
		cfg.MaxTotalCost = 25.00
	}
	if cfg.ConfidenceThreshold <= 0 {
		cfg.ConfidenceThreshold = 0.60
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &Service{
		srcs:     srcs,
		synth:    synth,
		recorder: recorder,
		cfg:      cfg,
		log:      *logger.Named("coroner"),
		now:      time.Now,
	}
}

// SourceCount implements domain.OrchestratorPort
func (s *Service) SourceCount() int { return len(s.srcs) }

// SourceNames implements domain.OrchestratorPort
func (s *Service) SourceNames() []string {
	out := make([]string, len(s.srcs))
	for i, src := range s.srcs {
		out[i] = src.Name()
	}
	return out
}

// budget makes in-flight spend visible across batch workers. The run
// total only moves when an actor finishes, so concurrent workers charge
// the budget as costs accrue and the scheduler admits against it
type budget struct {
	mu    sync.Mutex
	max   float64
	spent float64
}

// charge is nil-safe so the single-actor and sequential paths can skip it
func (b *budget) charge(c float64) {
	if b == nil || c == 0 {
		return
	}
	b.mu.Lock()
	b.spent += c
	b.mu.Unlock()
}

func (b *budget) exhausted() bool {
	if b == nil {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.spent >= b.max
}

// Enrich implements domain.OrchestratorPort for one actor
func (s *Service) Enrich(ctx context.Context, actor sources.Actor) dom.EnrichmentResult {
	return s.enrich(ctx, uuid.NewString(), actor, nil)
}

func (s *Service) enrich(ctx context.Context, runID string, actor sources.Actor, bud *budget) dom.EnrichmentResult {
	start := s.now()
	res := dom.EnrichmentResult{Stats: dom.Stats{CostBySource: map[string]float64{}}}
	var rows []ledger.LookupRow

	families := map[string]bool{}
	stopping := false

	for _, src := range s.srcs {
		if ctx.Err() != nil {
			break
		}
		if !src.Available() {
			continue
		}
		if res.Stats.CostUSD >= s.cfg.MaxCostPerActor {
			s.log.Warn().Str("actor", actor.Name).Float64("cost", res.Stats.CostUSD).Msg("per-actor cost ceiling reached")
			break
		}
		if bud.exhausted() {
			s.log.Warn().Str("actor", actor.Name).Msg("batch cost ceiling reached mid-actor")
			break
		}
		if stopping && !bookTypes[src.Type()] {
			continue
		}

		lstart := s.now()
		lr := s.lookup(ctx, src, actor)
		res.Stats.SourcesAttempted++
		res.Stats.CostUSD += lr.CostUSD
		res.Stats.CostBySource[string(lr.Type)] += lr.CostUSD
		bud.charge(lr.CostUSD)
		rows = append(rows, s.lookupRow(runID, actor, src, lr, s.now().Sub(lstart)))

		if lr.OK() {
			res.Stats.SourcesSucceeded++
			res.Raw = append(res.Raw, lr)
			if lr.Confidence >= s.cfg.ConfidenceThreshold && lr.Score >= qualifyingScore {
				families[src.Desc().Family] = true
			}
		}
		if !stopping && len(families) >= s.cfg.EarlyStop {
			stopping = true
		}
	}

	switch {
	case len(res.Raw) == 0:
		res.Err = "no data"
	case ctx.Err() != nil:
		res.Err = "interrupted before synthesis"
	default:
		rec, scost, err := s.synth.Synthesize(ctx, actor, res.Raw)
		res.Stats.CostUSD += scost
		res.Stats.CostBySource["synthesis"] += scost
		bud.charge(scost)
		if err != nil {
			s.log.Warn().Err(err).Str("actor", actor.Name).Msg("synthesis failed, raw sources retained")
			res.Err = "sources collected but synthesis failed"
		} else {
			res.Data = rec
		}
	}

	res.Stats.WallMS = s.now().Sub(start).Milliseconds()
	s.record(ctx, rows)
	return res
}

// lookup shields the pipeline from a misbehaving source: a panic becomes
// a recorded failure, never a dead batch
func (s *Service) lookup(ctx context.Context, src sources.Source, actor sources.Actor) (lr sources.Result) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error().Str("source", string(src.Type())).Any("panic", r).Msg("source panicked")
			lr = sources.Failure(src.Desc(), perr.PanicErrf("source %s panicked: %v", src.Type(), r), 0)
		}
	}()
	return src.Lookup(ctx, actor)
}

// EnrichBatch implements domain.OrchestratorPort. onActor may be nil
func (s *Service) EnrichBatch(ctx context.Context, actors []sources.Actor, onActor dom.ProgressFunc) (map[string]dom.EnrichmentResult, dom.RunStats) {
	run := dom.RunStats{
		RunID:        uuid.NewString(),
		StartedAt:    s.now(),
		CostBySource: map[string]float64{},
		ExitReason:   dom.ExitCompleted,
	}
	results := make(map[string]dom.EnrichmentResult, len(actors))

	if s.cfg.Workers > 1 {
		s.batchConcurrent(ctx, actors, results, &run, onActor)
	} else {
		s.batchSequential(ctx, actors, results, &run, onActor)
	}

	run.FinishedAt = s.now()
	if run.Processed > 0 {
		run.FillRate = float64(run.Enriched) / float64(run.Processed)
	}
	s.recordRun(ctx, run)
	return results, run
}

func (s *Service) batchSequential(ctx context.Context, actors []sources.Actor, results map[string]dom.EnrichmentResult, run *dom.RunStats, onActor dom.ProgressFunc) {
	total := len(actors)
	for i, a := range actors {
		if ctx.Err() != nil {
			run.ExitReason = dom.ExitInterrupted
			return
		}
		if run.TotalCostUSD >= s.cfg.MaxTotalCost {
			run.ExitReason = dom.ExitCostLimit
			return
		}

		res := s.enrich(ctx, run.RunID, a, nil)
		results[a.ID] = res
		s.tally(run, res)

		if onActor != nil {
			onActor(i+1, total, a.Name, res)
		}
	}
}

// batchConcurrent runs the same loop across a bounded worker pool. Workers
// charge a shared budget as source and synthesis costs accrue, so the
// scheduler sees in-flight spend, not just completed actors, and admitted
// actors stop drawing sources once the ceiling is committed
func (s *Service) batchConcurrent(ctx context.Context, actors []sources.Actor, results map[string]dom.EnrichmentResult, run *dom.RunStats, onActor dom.ProgressFunc) {
	var mu sync.Mutex
	done := 0
	total := len(actors)
	bud := &budget{max: s.cfg.MaxTotalCost}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Workers)

	for _, a := range actors {
		a := a
		mu.Lock()
		if run.ExitReason != dom.ExitCompleted {
			mu.Unlock()
			break
		}
		mu.Unlock()

		if bud.exhausted() {
			mu.Lock()
			run.ExitReason = dom.ExitCostLimit
			mu.Unlock()
			break
		}

		if gctx.Err() != nil {
			mu.Lock()
			run.ExitReason = dom.ExitInterrupted
			mu.Unlock()
			break
		}

		g.Go(func() error {
			res := s.enrich(gctx, run.RunID, a, bud)

			mu.Lock()
			defer mu.Unlock()
			results[a.ID] = res
			s.tally(run, res)
			done++
			if onActor != nil {
				onActor(done, total, a.Name, res)
			}
			return nil
		})
	}
	_ = g.Wait()

	switch {
	case ctx.Err() != nil && run.ExitReason == dom.ExitCompleted:
		run.ExitReason = dom.ExitInterrupted
	case run.ExitReason == dom.ExitCompleted && run.TotalCostUSD >= s.cfg.MaxTotalCost:
		// in-flight actors can overshoot together; the exit reason must
		// still match what sequential mode reports for the same spend
		run.ExitReason = dom.ExitCostLimit
	}
}

// tally folds one actor result into the run totals; callers hold any lock
func (s *Service) tally(run *dom.RunStats, res dom.EnrichmentResult) {
	run.Processed++
	if res.Data != nil {
		run.Enriched++
	}
	run.TotalCostUSD += res.Stats.CostUSD
	for src, c := range res.Stats.CostBySource {
		run.CostBySource[src] += c
	}
}

func (s *Service) record(ctx context.Context, rows []ledger.LookupRow) {
	if s.recorder == nil || len(rows) == 0 {
		return
	}
	// telemetry must survive caller cancellation
	_ = s.recorder.RecordLookups(context.WithoutCancel(ctx), rows)
}

func (s *Service) recordRun(ctx context.Context, run dom.RunStats) {
	if s.recorder == nil {
		return
	}
	_ = s.recorder.RecordRun(context.WithoutCancel(ctx), ledger.RunRow{
		RunID:        run.RunID,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
		Processed:    uint64(run.Processed),
		Enriched:     uint64(run.Enriched),
		TotalCostUSD: run.TotalCostUSD,
		FillRate:     run.FillRate,
		ExitReason:   string(run.ExitReason),
		CostBySource: run.CostBySource,
	})
}

func (s *Service) lookupRow(runID string, actor sources.Actor, src sources.Source, lr sources.Result, dur time.Duration) ledger.LookupRow {
	row := ledger.LookupRow{
		RunID:      runID,
		ActorID:    actor.ID,
		ActorName:  actor.Name,
		Source:     string(src.Type()),
		Family:     src.Desc().Family,
		Tier:       string(src.Desc().Tier),
		OK:         lr.OK(),
		DurationMS: dur.Milliseconds(),
		CostUSD:    lr.CostUSD,
		Confidence: lr.Confidence,
		Cached:     lr.Meta.Cached,
		TS:         s.now().UTC(),
	}
	if lr.Err != nil {
		row.ErrorKind = lr.Err.Kind
	}
	return row
}

// NormalizeEarlyStop clamps a configured early-stop count to something the
// pipeline can honor: NaN, infinities, and non-positive values fall back to
// the default, fractional values floor
func NormalizeEarlyStop(v float64) int {
	const def = 5
	if v != v || v > float64(1<<30) || v < 0 { // NaN or absurd
		return def
	}
	n := int(v)
	if n <= 0 {
		return def
	}
	return n
}

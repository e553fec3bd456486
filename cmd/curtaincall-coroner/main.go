// Command curtaincall-coroner enriches dead actors with death circumstances
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"curtaincall/internal/modkit"
	"curtaincall/internal/modkit/module"
	"curtaincall/internal/platform/config"
	"curtaincall/internal/platform/logger"
	"curtaincall/internal/platform/store"

	"curtaincall/internal/adapters/fetch"
	"curtaincall/internal/adapters/llm"
	"curtaincall/internal/adapters/llm/claude"
	"curtaincall/internal/adapters/llm/gemini"
	"curtaincall/internal/adapters/sources"
	"curtaincall/internal/core/factors"

	cordom "curtaincall/internal/services/coroner/domain"
	cormod "curtaincall/internal/services/coroner/module"
	ledgermod "curtaincall/internal/services/ledger/module"
	obitsvc "curtaincall/internal/services/obituarist/service"
	regdom "curtaincall/internal/services/registrar/domain"
	regmod "curtaincall/internal/services/registrar/module"
	rosterdom "curtaincall/internal/services/roster/domain"
	rostermod "curtaincall/internal/services/roster/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func main() {
	root := config.New()
	pgCfg := root.Prefix("SERVICE_PGSQL_")
	chCfg := root.Prefix("SERVICE_CLICKHOUSE_")
	rdCfg := root.Prefix("SERVICE_REDIS_")

	l := logger.Get()

	var (
		fIDs         = flag.String("ids", "", "comma-separated actor uuids to enrich")
		fExternalIDs = flag.String("external-ids", "", "comma-separated external catalog ids")
		fYear        = flag.Int("year", 0, "enrich top-billed actors from this release year")
		fMaxBilling  = flag.Int("max-billing", 5, "billing slot cutoff for -year selection")
		fTopMovies   = flag.Int("top-movies", 50, "per-year popularity cutoff for -year selection")
		fLimit       = flag.Int("limit", 50, "max actors to enrich this run")
		fAfter       = flag.String("after", "", "keyset cursor (actor uuid) for the default scan")
		fStaging     = flag.Bool("staging", false, "write to the staging table instead of production")

		fCategories = flag.String("categories", "", "comma-separated source categories (empty = all)")
		fEarlyStop  = flag.Float64("early-stop", 5, "distinct qualifying families before skipping non-book sources")
		fMaxCost    = flag.Float64("max-cost", 0.50, "per-actor USD ceiling")
		fMaxTotal   = flag.Float64("max-total-cost", 25.00, "per-run USD ceiling")
		fConfidence = flag.Float64("confidence", 0.60, "snippet confidence floor for early-stop accounting")
		fModel      = flag.String("model", "claude-sonnet-4-5", "synthesis model")
		fAIClean    = flag.Bool("ai-cleaning", false, "narrow scraped pages with the extraction model")
		fWorkers    = flag.Int("workers", 1, "concurrent actors (1 = sequential)")
	)
	flag.Parse()

	// surface flags as CORE_CORONER_* so the module reads them via FromConfig
	mustSetEnv("CORE_CORONER_CATEGORIES", *fCategories)
	mustSetEnv("CORE_CORONER_EARLY_STOP", strconv.FormatFloat(*fEarlyStop, 'f', -1, 64))
	mustSetEnv("CORE_CORONER_MAX_COST_PER_ACTOR", strconv.FormatFloat(*fMaxCost, 'f', -1, 64))
	mustSetEnv("CORE_CORONER_MAX_TOTAL_COST", strconv.FormatFloat(*fMaxTotal, 'f', -1, 64))
	mustSetEnv("CORE_CORONER_CONFIDENCE_THRESHOLD", strconv.FormatFloat(*fConfidence, 'f', -1, 64))
	mustSetEnv("CORE_CORONER_SYNTHESIS_MODEL", *fModel)
	mustSetEnv("CORE_CORONER_AI_CLEANING", map[bool]string{true: "1", false: "0"}[*fAIClean])
	mustSetEnv("CORE_CORONER_WORKERS", strconv.Itoa(*fWorkers))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{
		PG: store.PGConfig{
			Enabled:     true,
			URL:         pgCfg.MustString("DBURL"),
			MaxConns:    int32(pgCfg.MayInt("MAX_CONNS", 4)),
			SlowQueryMs: pgCfg.MayInt("SLOW_MS", 500),
			LogSQL:      pgCfg.MayBool("LOG_SQL", false),
		},
		CH: store.CHConfig{
			// telemetry is optional; no DBURL means no ledger
			Enabled: chCfg.MayString("DBURL", "") != "",
			URL:     chCfg.MayString("DBURL", ""),
		},
		RDS: store.RedisConfig{
			Enabled: rdCfg.MayBool("ENABLED", true),
			Addr:    rdCfg.MayString("ADDR", "localhost:6379"),
			DB:      rdCfg.MayInt("DB", 0),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := modkit.Deps{
		Cfg: root,
		PG:  st.PG,
		CH:  st.CH,
		RD:  st.RD,
		Log: *l,
	}

	opts := cormod.FromConfig(root)

	// AI clients are optional except the synthesizer
	anthropicKey := strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	if anthropicKey == "" {
		l.Panic().Msg("ANTHROPIC_API_KEY is required for synthesis")
	}
	claudeClient := claude.New(anthropicKey, opts.SynthesisModel)

	var geminiGrounded llm.Grounded
	var extractor llm.Extractor
	if key := strings.TrimSpace(os.Getenv("GEMINI_API_KEY")); key != "" {
		gc, err := gemini.New(ctx, key, "gemini-2.5-flash")
		if err != nil {
			l.Panic().Err(err).Msg("gemini client failed")
		}
		geminiGrounded = gc
		extractor = gc
	}

	fetcher := fetch.New(fetch.Options{
		UserAgent:  "curtaincall/1.0 (death circumstances enrichment)",
		MaxRetries: 2,
		RetryBase:  500 * time.Millisecond,
	})

	catalog := sources.Catalog(sources.Deps{
		Fetch:   fetcher,
		Cache:   st.RD,
		Claude:  claudeClient,
		Gemini:  geminiGrounded,
		Clean:   extractor,
		AIClean: opts.AICleaning,
	}, opts.EnabledCategories())

	pack, err := factors.Load()
	if err != nil {
		l.Panic().Err(err).Msg("factor vocabulary failed to load")
	}
	synth := obitsvc.New(claudeClient, pack, obitsvc.Config{Model: opts.SynthesisModel})

	rm := rostermod.New(deps)
	lm := ledgermod.New(deps)
	wm := regmod.New(deps, rm.Ports().(rostermod.Ports).Reader)
	cm := cormod.New(deps, catalog, synth, lm.Ports().(ledgermod.Ports).Recorder)

	module.Register(rm.Name(), rm.Ports())
	module.Register(lm.Name(), lm.Ports())
	module.Register(wm.Name(), wm.Ports())
	module.Register(cm.Name(), cm.Ports())

	roster := module.MustPortsOf[rostermod.Ports](rm).Reader
	writer := module.MustPortsOf[regmod.Ports](wm).Writer
	coroner := module.MustPortsOf[cormod.Ports](cm).Orchestrator

	criteria := buildCriteria(*fIDs, *fExternalIDs, *fYear, *fMaxBilling, *fTopMovies, *fAfter)
	rows, err := roster.LoadActorsForEnrichment(ctx, criteria, *fLimit)
	if err != nil {
		l.Fatal().Err(err).Msg("actor selection failed")
	}
	if len(rows) == 0 {
		l.Info().Msg("no actors matched the selection")
		return
	}

	actors := make([]sources.Actor, len(rows))
	byID := make(map[string]rosterdom.Actor, len(rows))
	for i, a := range rows {
		actors[i] = sources.Actor{
			ID:           a.ID,
			Name:         a.Name,
			Birthday:     a.Birthday,
			Deathday:     a.Deathday,
			PlaceOfBirth: a.PlaceOfBirth,
			KnownCause:   a.CauseOfDeath,
		}
		byID[a.ID] = a
	}

	l.Info().
		Int("actors", len(actors)).
		Int("sources", coroner.SourceCount()).
		Bool("staging", *fStaging).
		Msg("enrichment starting")

	mode := regdom.ModeProduction
	if *fStaging {
		mode = regdom.ModeStaging
	}

	results, run := coroner.EnrichBatch(ctx, actors, func(done, total int, name string, res cordom.EnrichmentResult) {
		ev := l.Info().Int("done", done).Int("total", total).Str("actor", name).
			Float64("cost_usd", res.Stats.CostUSD)
		if res.Err != "" {
			ev = ev.Str("err", res.Err)
		}
		ev.Msg("actor finished")
	})

	written, failed := 0, 0
	for id, res := range results {
		if res.Data == nil {
			continue
		}
		req := regdom.WriteRequest{
			Mode:        mode,
			RunID:       run.RunID,
			ActorID:     id,
			Record:      res.Data,
			Raw:         res.Raw,
			SourceTypes: sourceTypes(res.Raw),
			Model:       opts.SynthesisModel,
		}
		if err := writer.WriteEnrichment(context.WithoutCancel(ctx), req); err != nil {
			l.Error().Err(err).Str("actor_id", id).Msg("enrichment write failed")
			failed++
			continue
		}
		written++

		if len(res.Data.RejectedFactors) > 0 {
			rej := make([]regdom.RejectedFactorRow, 0, len(res.Data.RejectedFactors))
			for _, rf := range res.Data.RejectedFactors {
				rej = append(rej, regdom.RejectedFactorRow{
					ActorID:   id,
					ActorName: byID[id].Name,
					Factor:    rf.Factor,
					Kind:      rf.Kind,
				})
			}
			if err := writer.RecordRejectedFactors(context.WithoutCancel(ctx), rej); err != nil {
				l.Warn().Err(err).Str("actor_id", id).Msg("rejected factor write failed")
			}
		}
	}

	l.Info().
		Str("run_id", run.RunID).
		Int("processed", run.Processed).
		Int("enriched", run.Enriched).
		Int("written", written).
		Int("write_failures", failed).
		Float64("total_cost_usd", run.TotalCostUSD).
		Float64("fill_rate", run.FillRate).
		Str("exit", string(run.ExitReason)).
		Dur("wall", run.FinishedAt.Sub(run.StartedAt)).
		Msg("enrichment finished")

	fmt.Printf("run %s: %d/%d enriched, %d written, $%.2f, exit=%s\n",
		run.RunID, run.Enriched, run.Processed, written, run.TotalCostUSD, run.ExitReason)
}

func buildCriteria(ids, externalIDs string, year, maxBilling, topMovies int, after string) rosterdom.Criteria {
	switch {
	case ids != "":
		return rosterdom.Criteria{Kind: rosterdom.ByIDs, IDs: splitCSV(ids)}
	case externalIDs != "":
		var out []int64
		for _, s := range splitCSV(externalIDs) {
			n, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				continue
			}
			out = append(out, n)
		}
		return rosterdom.Criteria{Kind: rosterdom.ByExternalIDs, ExternalIDs: out}
	case year > 0:
		return rosterdom.Criteria{
			Kind:       rosterdom.TopBilledInYear,
			Year:       year,
			MaxBilling: maxBilling,
			TopMovies:  topMovies,
		}
	default:
		return rosterdom.Criteria{Kind: rosterdom.MissingCircumstances, AfterID: after}
	}
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func sourceTypes(raw []sources.Result) []string {
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		out = append(out, string(r.Type))
	}
	return out
}

package sources

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"curtaincall/internal/adapters/fetch"
	"curtaincall/internal/adapters/llm"
	"curtaincall/internal/core/bioscore"
	"curtaincall/internal/core/cleanse"
	"curtaincall/internal/core/namematch"
	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
	"curtaincall/internal/platform/store"
)

const (
	ttlSuccess = 7 * 24 * time.Hour
	ttlFailure = 24 * time.Hour
)

// Source is the uniform contract every source satisfies
type Source interface {
	Name() string
	Type() Type
	Desc() Descriptor
	Available() bool
	Lookup(ctx context.Context, a Actor) Result
}

// Deps are the shared collaborators injected into every source
type Deps struct {
	Fetch *fetch.Client
	Cache store.Cache // nil disables result caching

	Claude llm.Grounded  // nil disables the claude source
	Gemini llm.Grounded  // nil disables the gemini source
	Clean  llm.Extractor // nil disables AI cleaning

	// AIClean narrows web search scrapings to biographical passages
	// through Clean before scoring
	AIClean bool

	Now func() time.Time // test seam
}

func (d Deps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

// performFunc does the actual fetch and parse for one source
type performFunc func(ctx context.Context, a Actor) (Result, error)

// base wraps perform with the shared lookup pipeline
type base struct {
	desc    Descriptor
	deps    Deps
	lim     *rate.Limiter
	perform performFunc
	log     logger.Logger
}

func newBase(desc Descriptor, deps Deps, perform performFunc) *base {
	delay := desc.MinDelay
	if delay <= 0 {
		delay = time.Second
	}
	return &base{
		desc:    desc,
		deps:    deps,
		lim:     rate.NewLimiter(rate.Every(delay), 1),
		perform: perform,
		log:     *logger.Named("source." + string(desc.Type)),
	}
}

func (b *base) Name() string { return b.desc.Name }

func (b *base) Type() Type { return b.desc.Type }

func (b *base) Desc() Descriptor { return b.desc }

func (b *base) Available() bool { return b.desc.Available() }

// Lookup runs the full pipeline: cache probe, politeness delay, timeout
// budget, perform, classification, and cache store
func (b *base) Lookup(ctx context.Context, a Actor) Result {
	key := b.cacheKey(a)
	if res, ok := b.cacheGet(ctx, key); ok {
		return res
	}

	if err := b.lim.Wait(ctx); err != nil {
		return Failure(b.desc, perr.Timeoutf("%s rate wait: %v", b.desc.Type, err), 0)
	}

	cctx, cancel := context.WithTimeout(ctx, b.desc.Timeout)
	defer cancel()

	res, err := b.perform(cctx, a)
	if err != nil {
		if cctx.Err() == context.DeadlineExceeded && perr.Kind(err) == "unknown" {
			err = perr.Timeoutf("%s exceeded %s budget", b.desc.Type, b.desc.Timeout)
		}
		res = Failure(b.desc, err, res.CostUSD)
	}
	b.stamp(&res)

	if res.Err != nil {
		b.log.Debug().Str("actor", a.Name).Str("kind", res.Err.Kind).Msg("lookup failed")
	}
	b.cachePut(ctx, key, res)
	return res
}

// stamp fills the Entry fields perform is allowed to leave blank
func (b *base) stamp(res *Result) {
	res.Type = b.desc.Type
	res.Tier = b.desc.Tier
	res.Score = b.desc.Score()
	if res.RetrievedAt.IsZero() {
		res.RetrievedAt = b.deps.now().UTC()
	}
	if res.OK() && res.CostUSD == 0 {
		res.CostUSD = b.desc.CostPerQuery
	}
}

// cacheKey is src:v1:{type}:{actor-id-or-name}:{query-hash}. The hash covers
// every actor field a query can embed, so a corrected birthday misses cleanly
func (b *base) cacheKey(a Actor) string {
	id := a.ID
	if id == "" {
		id = a.Name
	}
	sum := sha256.Sum256([]byte(a.Name + "|" + a.Birthday + "|" + a.Deathday))
	return "src:v1:" + string(b.desc.Type) + ":" + id + ":" + hex.EncodeToString(sum[:4])
}

func (b *base) cacheGet(ctx context.Context, key string) (Result, bool) {
	if b.deps.Cache == nil {
		return Result{}, false
	}
	raw, ok, err := b.deps.Cache.Get(ctx, key)
	if err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("cache probe failed, continuing uncached")
		return Result{}, false
	}
	if !ok {
		return Result{}, false
	}
	var res Result
	if err := json.Unmarshal([]byte(raw), &res); err != nil {
		return Result{}, false
	}
	res.Meta.Cached = true
	res.CostUSD = 0 // cache hits are free
	return res, true
}

func (b *base) cachePut(ctx context.Context, key string, res Result) {
	if b.deps.Cache == nil || !res.Cacheable() {
		return
	}
	ttl := ttlSuccess
	if res.Err != nil {
		ttl = ttlFailure
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return
	}
	if err := b.deps.Cache.Set(ctx, key, string(raw), ttl); err != nil {
		b.log.Warn().Err(err).Str("key", key).Msg("cache store failed")
	}
}

// get fetches a URL honoring the descriptor's archive fallback setting
func (b *base) get(ctx context.Context, target string, opts ...fetch.ReqOption) (fetch.Page, error) {
	if b.desc.ArchiveFallback {
		return b.deps.Fetch.GetWithArchiveFallback(ctx, target, opts...)
	}
	return b.deps.Fetch.Get(ctx, target, opts...)
}

// bioResult cleans raw text, applies the relevance gates, and builds a
// successful biography Result. Most page and search sources end here
func (b *base) bioResult(ctx context.Context, a Actor, raw string, meta Meta) (Result, error) {
	cl := cleanse.Clean(raw)
	text := cl.Text
	if meta.Title == "" {
		meta.Title = cl.Title
	}
	if meta.Publication == "" {
		meta.Publication = cl.Publication
	}

	if b.deps.AIClean && b.deps.Clean != nil && b.desc.Category == CategoryWebSearch {
		ex, err := b.deps.Clean.ExtractBiographical(ctx, text, a.Name)
		if err == nil {
			if ex.Relevance == llm.RelevanceNone {
				return Result{Entry: Entry{CostUSD: ex.CostUSD}},
					perr.Irrelevantf("%s cleaner found nothing about %s", b.desc.Type, a.Name)
			}
			text = ex.Text
			meta.Title = cl.Title
		}
	}

	if len(text) < b.desc.MinContentLen {
		return Result{}, perr.TooShortf("%s cleaned to %d chars, need %d", b.desc.Type, len(text), b.desc.MinContentLen)
	}
	if !mentions(text, a.Name) {
		return Result{}, perr.Irrelevantf("%s content never mentions %s", b.desc.Type, a.Name)
	}

	fams := bioscore.Families(text)
	conf := bioscore.Score(text)
	if conf == 0 {
		return Result{}, perr.Irrelevantf("%s content has no biographical signal", b.desc.Type)
	}

	return Result{
		Entry: Entry{Confidence: conf, Meta: meta},
		Bio:   &BiographySnippet{Text: text, Families: fams},
	}, nil
}

// mentions checks the folded text contains the subject's folded last name;
// the cheap half of the relevance gate, bioscore is the other half
func mentions(text, name string) bool {
	ft := strings.Fields(namematch.Fold(name))
	if len(ft) == 0 {
		return false
	}
	return strings.Contains(namematch.Fold(text), ft[len(ft)-1])
}

// textResult is bioResult for already-clean text (API snippets, OCR)
func (b *base) textResult(a Actor, text string, meta Meta) (Result, error) {
	if len(text) < b.desc.MinContentLen {
		return Result{}, perr.TooShortf("%s gathered %d chars, need %d", b.desc.Type, len(text), b.desc.MinContentLen)
	}
	if !mentions(text, a.Name) {
		return Result{}, perr.Irrelevantf("%s snippets never mention %s", b.desc.Type, a.Name)
	}
	fams := bioscore.Families(text)
	conf := bioscore.Score(text)
	if conf == 0 {
		return Result{}, perr.Irrelevantf("%s snippets have no biographical signal", b.desc.Type)
	}
	return Result{
		Entry: Entry{Confidence: conf, Meta: meta},
		Bio:   &BiographySnippet{Text: text, Families: fams},
	}, nil
}

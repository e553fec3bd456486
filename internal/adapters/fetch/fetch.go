// Package fetch is the polite HTTP layer under every page-scraping source
//
// It owns timeouts, retry with backoff, block classification, the Wayback
// archive fallback, and a per-host circuit breaker. It does not rate limit;
// the per-source minimum delay is enforced by the source instance that calls it
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"

	perr "curtaincall/internal/platform/errors"
	"curtaincall/internal/platform/logger"
)

const (
	defaultUA        = "curtaincall/1.0 (+https://curtaincall.dev; research into film history)"
	defaultMaxRetry  = 3
	defaultRetryBase = 500 * time.Millisecond
	defaultArchiveTO = 45 * time.Second

	// archiveMirror resolves to the best-known snapshot of the target URL
	archiveMirror = "https://web.archive.org/web/2/"

	maxBody = 2 << 20 // 2 MiB page cap
)

// Options configures the Client
type Options struct {
	UserAgent  string
	MaxRetries int
	RetryBase  time.Duration

	// ArchiveTimeout bounds the Wayback fallback, which is slower than origin
	ArchiveTimeout time.Duration

	// BreakAfter consecutive hard failures opens the per-host breaker
	BreakAfter uint32
}

// Page is the outcome of a successful fetch
type Page struct {
	Content    string
	Title      string
	FinalURL   string
	Status     int
	ViaArchive bool
}

// Client fetches pages with retries, block detection, and breakers
type Client struct {
	http     *http.Client
	opts     Options
	breakers sync.Map // host -> *gobreaker.CircuitBreaker[Page]
	mirror   string
	log      logger.Logger
	now      func() time.Time
	sleep    func(time.Duration)
}

// New constructs a Client with sane defaults
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = defaultUA
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = defaultMaxRetry
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	if o.ArchiveTimeout <= 0 {
		o.ArchiveTimeout = defaultArchiveTO
	}
	if o.BreakAfter == 0 {
		o.BreakAfter = 5
	}
	return &Client{
		http:   &http.Client{}, // deadlines come from the caller's context
		opts:   o,
		mirror: archiveMirror,
		log:    *logger.Named("fetch"),
		now:    time.Now,
		sleep:  time.Sleep,
	}
}

// ReqOption mutates the outgoing request before it is sent
type ReqOption func(*http.Request)

// WithHeader sets a request header, typically an API key
func WithHeader(key, value string) ReqOption {
	return func(r *http.Request) { r.Header.Set(key, value) }
}

// Get fetches target and classifies the response.
// The caller's context carries the per-source deadline
func (c *Client) Get(ctx context.Context, target string, opts ...ReqOption) (Page, error) {
	host := hostOf(target)
	cb := c.breakerFor(host)
	p, err := cb.Execute(func() (Page, error) { return c.get(ctx, target, opts...) })
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return Page{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "fetch %s circuit open", host)
	}
	return p, err
}

// GetWithArchiveFallback fetches target and, when the origin blocks us,
// retries the same URL through the public archive mirror on a longer budget
func (c *Client) GetWithArchiveFallback(ctx context.Context, target string, opts ...ReqOption) (Page, error) {
	p, err := c.Get(ctx, target, opts...)
	if err == nil || !perr.IsCode(err, perr.ErrorCodeBlocked) {
		return p, err
	}

	c.log.Debug().Str("url", target).Msg("origin blocked, trying archive mirror")
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.ArchiveTimeout)
	defer cancel()

	ap, aerr := c.get(actx, c.mirror+target)
	if aerr != nil {
		// the block is the more useful error for the caller
		return Page{}, err
	}
	ap.ViaArchive = true
	return ap, nil
}

// get is one fetch with retries; breaker accounting wraps it in Get
func (c *Client) get(ctx context.Context, target string, opts ...ReqOption) (Page, error) {
	attempts := 0
	for {
		select {
		case <-ctx.Done():
			return Page{}, ctxErr(ctx, target)
		default:
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return Page{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "fetch bad url %q", target)
		}
		req.Header.Set("User-Agent", c.opts.UserAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/json;q=0.9,*/*;q=0.8")
		for _, o := range opts {
			o(req)
		}

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if cerr := ctx.Err(); cerr != nil {
				return Page{}, ctxErr(ctx, target)
			}
			if attempts >= c.opts.MaxRetries {
				return Page{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "fetch %s transport failed", target)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("url", target).Dur("retry_in", back).Int("attempt", attempts).Msg("fetch transport error retrying")
			c.sleep(back)
			attempts++
			continue
		}

		body, rerr := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		_ = resp.Body.Close()

		c.log.Debug().
			Str("url", target).
			Int("status", resp.StatusCode).
			Int("attempt", attempts).
			Dur("latency", lat).
			Int("bytes", len(body)).
			Msg("fetch response")

		switch {
		case resp.StatusCode == http.StatusOK:
			if rerr != nil {
				return Page{}, perr.Wrapf(rerr, perr.ErrorCodeUpstream, "fetch %s read body failed", target)
			}
			content := string(body)
			if marker, blocked := captchaMarker(content); blocked {
				return Page{}, perr.Blockedf("fetch %s served a challenge page (%s)", target, marker)
			}
			final := target
			if resp.Request != nil && resp.Request.URL != nil {
				final = resp.Request.URL.String()
			}
			return Page{Content: content, Title: titleOf(content), FinalURL: final, Status: resp.StatusCode}, nil

		case resp.StatusCode == http.StatusForbidden:
			return Page{}, perr.Blockedf("fetch %s got 403", target)

		case resp.StatusCode == http.StatusTooManyRequests:
			return Page{}, perr.RateLimitedf("fetch %s got 429", target)

		case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusGone:
			return Page{}, perr.NotFoundf("fetch %s got %d", target, resp.StatusCode)

		case resp.StatusCode == http.StatusRequestTimeout:
			return Page{}, perr.Timeoutf("fetch %s got 408", target)

		case resp.StatusCode == http.StatusBadGateway,
			resp.StatusCode == http.StatusServiceUnavailable,
			resp.StatusCode == http.StatusGatewayTimeout:
			if attempts >= c.opts.MaxRetries {
				return Page{}, perr.Upstreamf("fetch %s transient %d after %d attempts", target, resp.StatusCode, attempts+1)
			}
			back := c.backoff(attempts)
			c.log.Warn().Str("url", target).Int("status", resp.StatusCode).Dur("retry_in", back).Msg("fetch transient error retrying")
			c.sleep(back)
			attempts++
			continue

		default:
			if resp.StatusCode >= 500 {
				return Page{}, perr.Upstreamf("fetch %s got %d", target, resp.StatusCode)
			}
			return Page{}, perr.Upstreamf("fetch %s unexpected status %d", target, resp.StatusCode)
		}
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	ms := int64(c.opts.RetryBase / time.Millisecond)
	ms <<= uint(attempt)
	if cap := int64(15 * time.Second / time.Millisecond); ms > cap {
		ms = cap
	}
	// deterministic jitter off the clock, enough to de-sync politeness loops
	j := c.now().UnixNano() % (ms/4 + 1)
	return time.Duration(ms+j) * time.Millisecond
}

func (c *Client) breakerFor(host string) *gobreaker.CircuitBreaker[Page] {
	if v, ok := c.breakers.Load(host); ok {
		return v.(*gobreaker.CircuitBreaker[Page])
	}
	after := c.opts.BreakAfter
	cb := gobreaker.NewCircuitBreaker[Page](gobreaker.Settings{
		Name:    host,
		Timeout: 2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= after
		},
		// only hard upstream trouble trips the breaker; 404s and short
		// content are normal outcomes for a miss
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			switch perr.CodeOf(err) {
			case perr.ErrorCodeBlocked, perr.ErrorCodeUpstream, perr.ErrorCodeUnavailable:
				return false
			}
			return true
		},
	})
	actual, _ := c.breakers.LoadOrStore(host, cb)
	return actual.(*gobreaker.CircuitBreaker[Page])
}

func ctxErr(ctx context.Context, target string) error {
	if ctx.Err() == context.DeadlineExceeded {
		return perr.Timeoutf("fetch %s deadline exceeded", target)
	}
	return perr.Wrapf(ctx.Err(), perr.ErrorCodeUnavailable, "fetch %s canceled", target)
}

func hostOf(target string) string {
	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return target
	}
	return u.Host
}

// captchaMarker scans the head of a 200 body for bot-wall sentinels
func captchaMarker(content string) (string, bool) {
	head := strings.ToLower(content)
	if len(head) > 4096 {
		head = head[:4096]
	}
	for _, m := range []string{
		"captcha",
		"are you a robot",
		"unusual traffic",
		"verify you are human",
		"access to this page has been denied",
	} {
		if strings.Contains(head, m) {
			return m, true
		}
	}
	return "", false
}

// titleOf extracts the <title> without a full parse; sources that need real
// metadata run the content through cleanse
func titleOf(content string) string {
	low := strings.ToLower(content)
	i := strings.Index(low, "<title")
	if i < 0 {
		return ""
	}
	j := strings.Index(low[i:], ">")
	if j < 0 {
		return ""
	}
	rest := content[i+j+1:]
	k := strings.Index(strings.ToLower(rest), "</title>")
	if k < 0 {
		return ""
	}
	return strings.TrimSpace(rest[:k])
}

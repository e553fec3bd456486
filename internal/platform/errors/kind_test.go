package errors

import (
	stderrs "errors"
	"net/http"
	"testing"
)

func TestKindLabels(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{NotConfiguredf("no key"), "not_configured"},
		{RateLimitedf("429"), "rate_limited"},
		{Blockedf("captcha"), "blocked"},
		{Timeoutf("deadline"), "timeout"},
		{NotFoundf("no match"), "not_found"},
		{TooShortf("66 chars"), "content_too_short"},
		{Irrelevantf("wrong person"), "content_irrelevant"},
		{Upstreamf("502"), "upstream_error"},
		{SynthesisFailedf("bad json"), "synthesis_failed"},
		{CostLimitf("budget"), "cost_limit_exceeded"},
		{CacheUnavailablef("redis down"), "cache_unavailable"},
		{Unavailablef("flaky"), "unavailable"},
		{DBf("boom"), "db_error"},
		{stderrs.New("foreign"), "unknown"},
	}
	for _, c := range cases {
		if got := Kind(c.err); got != c.want {
			t.Fatalf("Kind(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestEnrichmentHTTPMapping(t *testing.T) {
	cases := []struct {
		code ErrorCode
		want int
	}{
		{ErrorCodeTimeout, http.StatusGatewayTimeout},
		{ErrorCodeBlocked, http.StatusBadGateway},
		{ErrorCodeUpstream, http.StatusBadGateway},
		{ErrorCodeSynthesisFailed, http.StatusBadGateway},
		{ErrorCodeCacheUnavailable, http.StatusServiceUnavailable},
		{ErrorCodeNotConfigured, http.StatusNotImplemented},
		{ErrorCodeCostLimitExceeded, http.StatusInternalServerError},
		{ErrorCodeContentTooShort, http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := HTTPStatusCode(c.code); got != c.want {
			t.Fatalf("HTTPStatusCode(%v) = %d, want %d", c.code, got, c.want)
		}
	}
}

func TestRetryableTransientCodes(t *testing.T) {
	retry := []error{
		Unavailablef("transient"),
		RateLimitedf("quota"),
		Timeoutf("deadline"),
		Upstreamf("503 body"),
	}
	for _, err := range retry {
		if !Retryable(err) {
			t.Fatalf("Retryable(%v) = false, want true", err)
		}
	}
	noRetry := []error{
		Blockedf("captcha"),
		NotFoundf("gone"),
		TooShortf("thin"),
		SynthesisFailedf("garbage"),
		CacheUnavailablef("redis"),
	}
	for _, err := range noRetry {
		if Retryable(err) {
			t.Fatalf("Retryable(%v) = true, want false", err)
		}
	}
}

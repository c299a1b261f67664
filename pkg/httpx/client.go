// Package httpx builds the outbound HTTP client shared by every API call:
// request logging, retry with backoff and optional rate limiting.
package httpx

import (
	"net/http"

	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

// ClientConfig configures NewClient.
type ClientConfig struct {
	Retry     RetryConfig
	RateLimit RateLimitConfig

	// Base is the innermost transport. Defaults to a clone of
	// http.DefaultTransport.
	Base http.RoundTripper
}

// NewClient returns an http.Client whose transport chain is
//
//	slogx.Transport -> RetryTransport -> RateLimitTransport -> Base
//
// Timeouts are applied per attempt (RetryConfig.AttemptTimeout) rather than
// through http.Client.Timeout, which would also cover the backoff sleeps.
func NewClient(cfg ClientConfig) *http.Client {
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport.(*http.Transport).Clone()
	}

	rt := RateLimitTransport(cfg.RateLimit, base)
	rt = NewRetryTransport(rt, cfg.Retry)
	rt = slogx.Transport(rt)

	return &http.Client{Transport: rt}
}

package httpx

import (
	"net/http"

	"golang.org/x/time/rate"
)

// RateLimitConfig defines outbound rate limiting parameters.
type RateLimitConfig struct {
	// RequestsPerSecond is the sustained request rate. Zero or negative
	// disables limiting.
	RequestsPerSecond float64
	// Burst allows for temporary bursts above the rate (minimum 1).
	Burst int
}

// Enabled reports whether the config limits anything.
func (c RateLimitConfig) Enabled() bool { return c.RequestsPerSecond > 0 }

// RateLimitTransport delays each attempt until the limiter allows it. It sits
// below RetryTransport so retries are throttled too. A disabled config returns
// next unchanged.
func RateLimitTransport(config RateLimitConfig, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	if !config.Enabled() {
		return next
	}

	limiter := rate.NewLimiter(rate.Limit(config.RequestsPerSecond), max(config.Burst, 1))

	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		if err := limiter.Wait(r.Context()); err != nil {
			return nil, err
		}
		return next.RoundTrip(r)
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

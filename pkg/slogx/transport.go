package slogx

import (
	"net/http"
	"time"
)

// Transport wraps next and logs every outgoing request at debug level using
// the logger found in the request context. Query strings are never logged.
func Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return roundTripperFunc(func(r *http.Request) (*http.Response, error) {
		start := time.Now()
		logger := FromContext(r.Context()).With(
			"method", r.Method,
			"host", r.URL.Host,
			"path", r.URL.Path,
		)

		resp, err := next.RoundTrip(r)

		duration := time.Since(start).Milliseconds()
		if err != nil {
			logger.Debug("http_client_request", "error", err, "duration_ms", duration)
			return nil, err
		}

		logger.Debug("http_client_request",
			"status", resp.StatusCode,
			"duration_ms", duration,
		)
		return resp, nil
	})
}

type roundTripperFunc func(*http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(r *http.Request) (*http.Response, error) { return f(r) }

package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
	"github.com/cenkalti/backoff/v4"
)

const (
	DefaultMaxRetries    = 3
	DefaultBackoffFactor = time.Second
	DefaultMaxRetryAfter = 2 * time.Minute

	// maxBackoff caps a single computed delay.
	maxBackoff = 2 * time.Minute
)

// DefaultRetryStatuses are the statuses treated as transient.
var DefaultRetryStatuses = []int{
	http.StatusTooManyRequests,
	http.StatusInternalServerError,
	http.StatusBadGateway,
	http.StatusServiceUnavailable,
	http.StatusGatewayTimeout,
}

// RetryConfig controls RetryTransport.
type RetryConfig struct {
	// MaxRetries is the number of retries after the first attempt. Negative
	// values disable retries; zero means DefaultMaxRetries.
	MaxRetries int

	// BackoffFactor scales the delay schedule. The first retry is immediate,
	// retry n (n >= 2) waits BackoffFactor * 2^(n-2).
	BackoffFactor time.Duration

	// MaxRetryAfter caps a server supplied Retry-After delay.
	MaxRetryAfter time.Duration

	// AttemptTimeout bounds each individual attempt (0 = no bound).
	AttemptTimeout time.Duration

	// RetryStatuses overrides DefaultRetryStatuses.
	RetryStatuses []int

	// OnRetry is called before sleeping ahead of a retry. status is 0 when the
	// previous attempt failed at the transport level.
	OnRetry func(attempt, status int, err error, wait time.Duration)
}

// RetryError is returned once the retry budget is spent.
type RetryError struct {
	Attempts   int
	StatusCode int   // last status, 0 if the last attempt had no response
	Err        error // last transport error, nil if the last attempt got a response
}

func (e *RetryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("giving up after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("giving up after %d attempts: last status %d", e.Attempts, e.StatusCode)
}

func (e *RetryError) Unwrap() error { return e.Err }

// RetryTransport retries connection failures and transient statuses with
// exponential backoff. Request bodies are replayed through Request.GetBody,
// so requests built with http.NewRequest and an in-memory body can be retried.
type RetryTransport struct {
	next http.RoundTripper
	cfg  RetryConfig
}

// NewRetryTransport wraps next. A nil next uses http.DefaultTransport.
func NewRetryTransport(next http.RoundTripper, cfg RetryConfig) *RetryTransport {
	if next == nil {
		next = http.DefaultTransport
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = DefaultMaxRetries
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.MaxRetryAfter <= 0 {
		cfg.MaxRetryAfter = DefaultMaxRetryAfter
	}
	if cfg.RetryStatuses == nil {
		cfg.RetryStatuses = DefaultRetryStatuses
	}
	return &RetryTransport{next: next, cfg: cfg}
}

func (t *RetryTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	policy := t.newPolicy()

	for attempt := 1; ; attempt++ {
		r, err := attemptRequest(req, attempt)
		if err != nil {
			return nil, err
		}

		resp, err := t.roundTrip(r)
		if !t.retryable(ctx, resp, err) {
			return resp, err
		}

		status := 0
		if resp != nil {
			status = resp.StatusCode
		}

		wait := policy.NextBackOff()
		if wait == backoff.Stop || !replayable(req) {
			discard(resp)
			return nil, &RetryError{Attempts: attempt, StatusCode: status, Err: err}
		}
		if d, ok := retryAfter(resp, t.cfg.MaxRetryAfter); ok {
			wait = d
		}
		discard(resp)

		slogx.FromContext(ctx).Warn("retrying request",
			"method", req.Method,
			"path", req.URL.Path,
			"attempt", attempt,
			"status", status,
			"error", err,
			"wait", wait,
		)
		if t.cfg.OnRetry != nil {
			t.cfg.OnRetry(attempt, status, err, wait)
		}

		if err := sleep(ctx, wait); err != nil {
			return nil, err
		}
	}
}

// roundTrip runs one attempt, bounding it with AttemptTimeout. The attempt
// context lives until the response body is closed.
func (t *RetryTransport) roundTrip(r *http.Request) (*http.Response, error) {
	if t.cfg.AttemptTimeout <= 0 {
		return t.next.RoundTrip(r)
	}

	ctx, cancel := context.WithTimeout(r.Context(), t.cfg.AttemptTimeout)
	resp, err := t.next.RoundTrip(r.WithContext(ctx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (t *RetryTransport) retryable(ctx context.Context, resp *http.Response, err error) bool {
	if err != nil {
		// The caller gave up; an attempt timeout on its own is still transient.
		return ctx.Err() == nil
	}
	return slices.Contains(t.cfg.RetryStatuses, resp.StatusCode)
}

// newPolicy builds the delay schedule: 0, F, 2F, 4F, ... limited to MaxRetries.
func (t *RetryTransport) newPolicy() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = t.cfg.BackoffFactor
	exp.RandomizationFactor = 0
	exp.Multiplier = 2
	exp.MaxInterval = maxBackoff
	exp.MaxElapsedTime = 0
	exp.Reset()

	return backoff.WithMaxRetries(&immediateFirst{BackOff: exp}, uint64(t.cfg.MaxRetries))
}

// immediateFirst returns a zero delay for the first retry and defers to the
// wrapped schedule afterwards.
type immediateFirst struct {
	backoff.BackOff
	started bool
}

func (b *immediateFirst) NextBackOff() time.Duration {
	if !b.started {
		b.started = true
		return 0
	}
	return b.BackOff.NextBackOff()
}

func (b *immediateFirst) Reset() {
	b.started = false
	b.BackOff.Reset()
}

// attemptRequest returns the request to send for the given attempt. The
// first attempt reuses the original request untouched.
func attemptRequest(req *http.Request, attempt int) (*http.Request, error) {
	if attempt == 1 {
		return req, nil
	}

	r := req.Clone(req.Context())
	if req.Body != nil && req.Body != http.NoBody {
		body, err := req.GetBody()
		if err != nil {
			return nil, fmt.Errorf("failed to replay request body: %w", err)
		}
		r.Body = body
	}
	return r, nil
}

func replayable(req *http.Request) bool {
	return req.Body == nil || req.Body == http.NoBody || req.GetBody != nil
}

// retryAfter reads a Retry-After header on 429 and 503 responses, either as
// delta-seconds or as an HTTP date.
func retryAfter(resp *http.Response, limit time.Duration) (time.Duration, bool) {
	if resp == nil {
		return 0, false
	}
	if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
		return 0, false
	}

	value := resp.Header.Get("Retry-After")
	if value == "" {
		return 0, false
	}

	var d time.Duration
	if secs, err := strconv.Atoi(value); err == nil {
		d = time.Duration(secs) * time.Second
	} else if at, err := http.ParseTime(value); err == nil {
		d = time.Until(at)
	} else {
		return 0, false
	}

	return min(max(d, 0), limit), true
}

// discard drains and closes a response that will not be handed to the caller
// so the connection can be reused.
func discard(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	_ = resp.Body.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}

// IsRetryError reports whether err carries a *RetryError.
func IsRetryError(err error) bool {
	var re *RetryError
	return errors.As(err, &re)
}

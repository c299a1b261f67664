package app

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func newEventimStub(t *testing.T, hits *atomic.Int32) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/token":
			_, _ = w.Write([]byte(`{"access_token":"tok"}`))
		case "/webhook/v1/events/registrations/":
			_, _ = w.Write([]byte(`[{"uuid":"r1"},{"uuid":"r2"}]`))
		case "/webhook/v1/events/registrations/r1":
			_, _ = w.Write([]byte(`{"event":{"id":1}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNewRejectsIncompleteConfig(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newEventimStub(t, &hits)

	_, err := New(Config{BaseURL: srv.URL})
	var cerr *domain.ConfigurationError
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, []string{EnvClientID, EnvClientSecret, EnvOutputDir}, cerr.Missing)

	_, err = New(Config{
		Credentials: domain.NewCredentials("id", "secret"),
		OutputDir:   t.TempDir(),
		BaseURL:     "not a url",
	})
	require.ErrorAs(t, err, &cerr)
	require.Contains(t, cerr.Invalid, EnvBaseURL)

	require.Zero(t, hits.Load())
}

func TestApplicationRun(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newEventimStub(t, &hits)

	var pushes atomic.Int32
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pushes.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	t.Cleanup(gateway.Close)

	logs := &syncBuffer{}
	cfg, err := LoadConfig(mapLookup(map[string]string{
		EnvClientID:      "id",
		EnvClientSecret:  "very-secret",
		EnvOutputDir:     t.TempDir(),
		EnvBaseURL:       srv.URL,
		EnvMaxRetries:    "1",
		EnvBackoffFactor: "1ms",
		EnvPushgateway:   gateway.URL,
		"LOG_LEVEL":      "debug",
	}))
	require.NoError(t, err)
	cfg.LogOutput = logs

	application, err := New(cfg)
	require.NoError(t, err)

	res := application.Run(t.Context())
	require.NoError(t, res.Err)
	require.Equal(t, domain.RunSucceeded, res.Status)
	require.Equal(t, 2, res.Listed)
	require.Equal(t, 1, res.Fetched)
	require.Equal(t, 1, res.Skipped)
	require.NotEmpty(t, res.Path)
	require.Less(t, res.Duration, time.Minute)

	// token, listing, r1, and r2 twice (one retry)
	require.Equal(t, int32(5), hits.Load())
	require.Equal(t, int32(1), pushes.Load())

	out := logs.String()
	require.Contains(t, out, `"run_id":"`+res.RunID+`"`)
	require.Contains(t, out, `"service":"eventim-report"`)
	require.Contains(t, out, "retrying request")
	require.NotContains(t, out, "very-secret")
	require.NotContains(t, out, `"tok"`)
	require.True(t, strings.Contains(out, `"uuid":"r2"`))
}

func TestApplicationRunSurvivesPushFailure(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := newEventimStub(t, &hits)

	logs := &syncBuffer{}
	application, err := New(Config{
		Credentials:    domain.NewCredentials("id", "secret"),
		OutputDir:      t.TempDir(),
		BaseURL:        srv.URL,
		MaxRetries:     0,
		PushgatewayURL: "http://127.0.0.1:1",
		LogOutput:      logs,
	})
	require.NoError(t, err)

	res := application.Run(t.Context())
	require.Equal(t, domain.RunSucceeded, res.Status)
	require.Contains(t, logs.String(), "failed to push metrics")

	// no retries when MaxRetries is zero
	require.Equal(t, int32(4), hits.Load())
}

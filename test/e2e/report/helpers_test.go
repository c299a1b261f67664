package report_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/aussiebroadwan/eventim-report/internal/report/app"
	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
)

/*
 * Fake Eventim API and helpers for report end-to-end tests. The fake speaks
 * the real wire format: form-encoded client_credentials on /token and bearer
 * protected JSON on the registrations endpoints.
 */

const (
	testClientID     = "svw-automation"
	testClientSecret = "e2e-client-secret"
	testAccessToken  = "e2e-access-token"

	registrationsPath = "/webhook/v1/events/registrations/"
)

// fakeEventim holds the registrations served by the fake API. A detail with
// a non-zero failures count answers 503 that many times before succeeding.
type fakeEventim struct {
	mu sync.Mutex

	order    []string
	details  map[string]string
	failures map[string]int
	requests map[string]int
	agents   []string
}

func newFakeEventim() *fakeEventim {
	return &fakeEventim{
		details:  map[string]string{},
		failures: map[string]int{},
		requests: map[string]int{},
	}
}

// add registers a registration and returns its generated id.
func (f *fakeEventim) add(detail string) string {
	id := uuid.NewString()
	f.order = append(f.order, id)
	f.details[id] = detail
	return id
}

func (f *fakeEventim) count(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.requests[path]
}

func (f *fakeEventim) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.requests[r.URL.Path]++
	f.agents = append(f.agents, r.Header.Get("User-Agent"))

	if r.URL.Path == "/token" {
		body, _ := io.ReadAll(r.Body)
		form := string(body)
		if !strings.Contains(form, "client_id="+testClientID) ||
			!strings.Contains(form, "client_secret="+testClientSecret) ||
			!strings.Contains(form, "grant_type=client_credentials") {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"invalid_client"}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": testAccessToken,
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+testAccessToken {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if r.URL.Path == registrationsPath {
		list := make([]map[string]string, len(f.order))
		for i, id := range f.order {
			list[i] = map[string]string{"uuid": id}
		}
		_ = json.NewEncoder(w).Encode(list)
		return
	}

	id := strings.TrimPrefix(r.URL.Path, registrationsPath)
	detail, ok := f.details[id]
	if !ok {
		http.NotFound(w, r)
		return
	}
	if f.failures[id] > 0 {
		f.failures[id]--
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	_, _ = w.Write([]byte(detail))
}

// setupFakeEventim starts the fake and returns its base URL.
func setupFakeEventim(t *testing.T, f *fakeEventim) string {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return srv.URL
}

// runReport loads configuration from env the way main does and runs once.
func runReport(t *testing.T, env map[string]string) domain.RunResult {
	t.Helper()

	cfg, err := app.LoadConfig(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)
	cfg.LogOutput = io.Discard

	application, err := app.New(cfg)
	require.NoError(t, err)

	return application.Run(t.Context())
}

// reportEnv is a complete environment pointing at baseURL.
func reportEnv(baseURL, outputDir string) map[string]string {
	return map[string]string{
		app.EnvClientID:      testClientID,
		app.EnvClientSecret:  testClientSecret,
		app.EnvOutputDir:     outputDir,
		app.EnvBaseURL:       baseURL,
		app.EnvBackoffFactor: "1ms",
	}
}

// readReport opens the xlsx at path and returns its rows.
func readReport(t *testing.T, path string) [][]string {
	t.Helper()

	require.Equal(t, ".xlsx", filepath.Ext(path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows("Sheet1")
	require.NoError(t, err)
	return rows
}

package service

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aussiebroadwan/eventim-report/pkg/eventimsdk"
	"github.com/aussiebroadwan/eventim-report/pkg/httpx"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

const registrationsPrefix = "/webhook/v1/events/registrations/"

type response struct {
	status int
	body   string
}

// fakeAPI is an in-process stand-in for the Eventim API. Zero status means 200.
type fakeAPI struct {
	mu      sync.Mutex
	token   response
	list    response
	details map[string]response
	calls   map[string]int
	forms   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		token:   response{body: `{"access_token":"tok","token_type":"Bearer","expires_in":3600}`},
		list:    response{body: `[]`},
		details: map[string]response{},
		calls:   map[string]int{},
	}
}

func (f *fakeAPI) Calls(path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[path]
}

func (f *fakeAPI) TotalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls[r.URL.Path]++

	var resp response
	switch {
	case r.URL.Path == "/token" && r.Method == http.MethodPost:
		_ = r.ParseForm()
		f.forms = append(f.forms, r.PostForm.Encode())
		resp = f.token
	case r.Header.Get("Authorization") != "Bearer tok":
		resp = response{status: http.StatusUnauthorized, body: `{"error":"invalid_token"}`}
	case r.URL.Path == registrationsPrefix:
		resp = f.list
	case strings.HasPrefix(r.URL.Path, registrationsPrefix):
		var ok bool
		resp, ok = f.details[strings.TrimPrefix(r.URL.Path, registrationsPrefix)]
		if !ok {
			resp = response{status: http.StatusNotFound, body: `not found`}
		}
	default:
		resp = response{status: http.StatusNotFound}
	}
	f.mu.Unlock()

	if resp.status != 0 {
		w.WriteHeader(resp.status)
	}
	_, _ = w.Write([]byte(resp.body))
}

// start serves f and returns an SDK client behind the real retrying transport
// with a millisecond backoff.
func (f *fakeAPI) start(t *testing.T) *eventimsdk.SDKClient {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client := httpx.NewClient(httpx.ClientConfig{
		Retry: httpx.RetryConfig{BackoffFactor: time.Millisecond},
	})
	return eventimsdk.NewSDKClient(srv.URL, client)
}

// logBuffer collects JSON log lines; safe for the few goroutines a test uses.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func testContext(t *testing.T) (context.Context, *logBuffer) {
	t.Helper()

	logs := &logBuffer{}
	logger := slog.New(slog.NewJSONHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	return slogx.WithContext(t.Context(), logger), logs
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

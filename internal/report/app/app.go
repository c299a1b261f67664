package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/internal/report/export"
	"github.com/aussiebroadwan/eventim-report/internal/report/metrics"
	"github.com/aussiebroadwan/eventim-report/internal/report/service"
	"github.com/aussiebroadwan/eventim-report/pkg/eventimsdk"
	"github.com/aussiebroadwan/eventim-report/pkg/httpx"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	serviceName = "eventim-report"

	pushTimeout = 10 * time.Second
)

// Application holds one configured report job.
type Application struct {
	cfg    Config
	logger *slog.Logger

	metrics    *metrics.Recorder
	httpClient *http.Client
	sdk        *eventimsdk.SDKClient
	runner     *service.Runner
}

// New wires the job. It performs no network activity.
func New(cfg Config) (*Application, error) {
	if err := validate(cfg); err != nil {
		return nil, err
	}

	app := &Application{
		cfg:     cfg,
		logger:  newLogger(cfg),
		metrics: metrics.New(),
	}

	app.initHTTP()
	app.initServices()

	return app, nil
}

// BootstrapLogger returns the logger used when LoadConfig or New fails and
// no Config is available. It honours ENV, LOG_LEVEL and LOG_FORMAT with the
// same defaults as LoadConfig and writes to out.
func BootstrapLogger(lookup LookupFunc, out io.Writer) *slog.Logger {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	cfg := Config{LogOutput: out}
	cfg.Env, cfg.LogLevel, cfg.LogFormat = logSettings(lookup)
	return newLogger(cfg)
}

func newLogger(cfg Config) *slog.Logger {
	return slogx.New(slogx.Config{
		Service: serviceName,
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Output:  cfg.LogOutput,
	})
}

// Run executes one report run. A failed metrics push is logged and does not
// change the result.
func (app *Application) Run(ctx context.Context) domain.RunResult {
	ctx = slogx.WithContext(ctx, app.logger)

	app.logger.Info("eventim report starting",
		"version", BuildVersion,
		"base_url", app.cfg.BaseURL,
		"output_dir", app.cfg.OutputDir,
	)

	res := app.runner.Run(ctx)
	app.pushMetrics(ctx, res)
	return res
}

// Metrics exposes the run collectors.
func (app *Application) Metrics() *metrics.Recorder { return app.metrics }

func (app *Application) initHTTP() {
	retries := app.cfg.MaxRetries
	if retries == 0 {
		retries = -1 // httpx treats 0 as "use the default"
	}

	app.httpClient = httpx.NewClient(httpx.ClientConfig{
		Retry: httpx.RetryConfig{
			MaxRetries:     retries,
			BackoffFactor:  app.cfg.BackoffFactor,
			AttemptTimeout: app.cfg.HTTPTimeout,
			OnRetry: func(_, status int, _ error, _ time.Duration) {
				app.metrics.Retry(status)
			},
		},
		RateLimit: httpx.RateLimitConfig{RequestsPerSecond: app.cfg.RateLimit, Burst: 1},
	})

	app.sdk = eventimsdk.NewSDKClient(app.cfg.BaseURL, app.httpClient)
	if app.cfg.UserAgent != "" {
		app.sdk.UserAgent = app.cfg.UserAgent
	}
}

func (app *Application) initServices() {
	exporter := &service.Exporter{
		Dir:    app.cfg.OutputDir,
		Prefix: app.cfg.FilePrefix,
		Writer: export.NewXLSXWriter(),
	}
	app.runner = service.NewRunner(app.sdk, app.cfg.Credentials, exporter, app.metrics)
}

func (app *Application) pushMetrics(ctx context.Context, res domain.RunResult) {
	if app.cfg.PushgatewayURL == "" {
		return
	}

	// Push even when the run was interrupted.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := app.metrics.Push(ctx, app.cfg.PushgatewayURL, metrics.DefaultJob); err != nil {
		app.logger.Warn("failed to push metrics", "error", err, "run_id", res.RunID)
		return
	}
	app.logger.Debug("metrics pushed", "url", app.cfg.PushgatewayURL, "run_id", res.RunID)
}

// validate catches hand-built configs that skipped LoadConfig.
func validate(cfg Config) error {
	cerr := &domain.ConfigurationError{}
	if cfg.Credentials.ClientID == "" {
		cerr.Missing = append(cerr.Missing, EnvClientID)
	}
	if cfg.Credentials.ClientSecret == "" {
		cerr.Missing = append(cerr.Missing, EnvClientSecret)
	}
	if cfg.OutputDir == "" {
		cerr.Missing = append(cerr.Missing, EnvOutputDir)
	}
	if cfg.BaseURL != "" {
		if u, err := url.Parse(cfg.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			invalid(cerr, EnvBaseURL, "not an absolute URL: "+cfg.BaseURL)
		}
	}
	if !cerr.Empty() {
		return cerr
	}
	return nil
}

// Package metrics records report run statistics as Prometheus collectors.
//
// A batch job has no scrape endpoint, so collectors live on a private
// registry that can be pushed to a Pushgateway when the run ends.
package metrics

import (
	"context"
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
)

// DefaultJob is the Pushgateway job label.
const DefaultJob = "eventim_report"

// Recorder is safe to use as a nil pointer; every method is then a no-op.
type Recorder struct {
	registry *prometheus.Registry

	listed       prometheus.Gauge
	fetched      prometheus.Counter
	skipped      prometheus.Counter
	retries      *prometheus.CounterVec
	runs         *prometheus.CounterVec
	duration     prometheus.Gauge
	lastSuccess  prometheus.Gauge
	exportedRows prometheus.Gauge
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		listed: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eventim_report_registrations_listed",
			Help: "Registrations returned by the listing endpoint in the last run",
		}),
		fetched: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventim_report_registrations_fetched_total",
			Help: "Registration details fetched and flattened",
		}),
		skipped: factory.NewCounter(prometheus.CounterOpts{
			Name: "eventim_report_registrations_skipped_total",
			Help: "Registration details skipped after a failed fetch",
		}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventim_report_http_retries_total",
			Help: "Outbound HTTP attempts that were retried, by status (0 for connection errors)",
		}, []string{"status"}),
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "eventim_report_runs_total",
			Help: "Report runs by outcome",
		}, []string{"status"}),
		duration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eventim_report_run_duration_seconds",
			Help: "Wall time of the last run",
		}),
		lastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eventim_report_last_success_timestamp_seconds",
			Help: "Unix time of the last run that wrote a report",
		}),
		exportedRows: factory.NewGauge(prometheus.GaugeOpts{
			Name: "eventim_report_exported_rows",
			Help: "Rows written to the last report file",
		}),
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) Listed(n int) {
	if r == nil {
		return
	}
	r.listed.Set(float64(n))
}

func (r *Recorder) Fetched() {
	if r == nil {
		return
	}
	r.fetched.Inc()
}

func (r *Recorder) Skipped() {
	if r == nil {
		return
	}
	r.skipped.Inc()
}

// Retry counts one retried attempt. status is 0 for connection errors.
func (r *Recorder) Retry(status int) {
	if r == nil {
		return
	}
	r.retries.WithLabelValues(strconv.Itoa(status)).Inc()
}

// Run records the outcome of a finished run.
func (r *Recorder) Run(res domain.RunResult) {
	if r == nil {
		return
	}
	r.runs.WithLabelValues(string(res.Status)).Inc()
	r.duration.Set(res.Duration.Seconds())
	if res.Status == domain.RunSucceeded {
		r.exportedRows.Set(float64(res.Fetched))
		r.lastSuccess.Set(float64(res.StartedAt.Add(res.Duration).Unix()))
	}
}

// Push sends every collector to the Pushgateway at url, replacing the
// previous values for job.
func (r *Recorder) Push(ctx context.Context, url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if job == "" {
		job = DefaultJob
	}

	if err := push.New(url, job).Gatherer(r.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

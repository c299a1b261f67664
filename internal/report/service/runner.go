package service

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/internal/report/metrics"
	"github.com/aussiebroadwan/eventim-report/pkg/idx"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

// Runner sequences one report run. Items are fetched one at a time in the
// order the listing returned them.
type Runner struct {
	Credentials domain.Credentials

	Authenticator *Authenticator
	Lister        *Lister
	Fetcher       *Fetcher
	Exporter      *Exporter

	// Metrics may be nil.
	Metrics *metrics.Recorder

	Now func() time.Time
}

// NewRunner wires the pipeline around a single API client.
func NewRunner(api API, creds domain.Credentials, exporter *Exporter, m *metrics.Recorder) *Runner {
	return &Runner{
		Credentials:   creds,
		Authenticator: &Authenticator{Issuer: api},
		Lister:        &Lister{Source: api},
		Fetcher:       &Fetcher{Source: api},
		Exporter:      exporter,
		Metrics:       m,
	}
}

// Run executes the pipeline and reports how it went. It never panics or
// exits; fatal problems come back as RunFailed with Err set.
func (r *Runner) Run(ctx context.Context) domain.RunResult {
	start := nowOrDefault(r.Now)
	runID := idx.NewAt(start)
	ctx = slogx.WithRunID(ctx, runID.String())
	l := slogx.FromContext(ctx)

	res := domain.RunResult{RunID: runID.String(), StartedAt: start}
	l.Info("report run started")

	err := r.run(ctx, &res)
	switch {
	case err != nil:
		res.Status = domain.RunFailed
		res.Err = err
	case res.Path == "":
		res.Status = domain.RunNoData
	default:
		res.Status = domain.RunSucceeded
	}
	res.Duration = nowOrDefault(r.Now).Sub(start)
	r.Metrics.Run(res)

	attrs := []any{
		"status", res.Status,
		"listed", res.Listed,
		"fetched", res.Fetched,
		"skipped", res.Skipped,
		"duration_ms", res.Duration.Milliseconds(),
	}
	if res.Failed() {
		l.Error("report run failed", append(attrs, "error", res.Err)...)
	} else {
		l.Info("report run finished", append(attrs, "path", res.Path)...)
	}
	return res
}

func (r *Runner) run(ctx context.Context, res *domain.RunResult) error {
	token, err := r.Authenticator.Authenticate(ctx, r.Credentials)
	if err != nil {
		return err
	}

	ids, err := r.Lister.List(ctx, token)
	if err != nil {
		return err
	}
	res.Listed = len(ids)
	r.Metrics.Listed(len(ids))

	records := make([]domain.Record, 0, len(ids))
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted after %d of %d registrations: %w",
				res.Fetched+res.Skipped, len(ids), err)
		}

		result := r.Fetcher.Fetch(ctx, token, id)
		if !result.OK() {
			res.Skipped++
			r.Metrics.Skipped()
			continue
		}
		res.Fetched++
		r.Metrics.Fetched()
		records = append(records, result.Record)
	}

	// A cancellation during the last fetch turns into a skip; do not export
	// a partial report in that case.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}

	path, err := r.Exporter.Export(ctx, records)
	if err != nil {
		return err
	}
	res.Path = path
	return nil
}

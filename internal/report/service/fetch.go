package service

import (
	"context"
	"time"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/internal/report/flatten"
	"github.com/aussiebroadwan/eventim-report/pkg/httpx"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

type Fetcher struct {
	Source RegistrationSource

	// Now stamps each record; defaults to time.Now.
	Now func() time.Time
}

// Fetch downloads and flattens one registration. Failures never propagate:
// they come back as a skipped result and a warning naming the registration.
func (f *Fetcher) Fetch(ctx context.Context, token domain.AccessToken, id domain.RegistrationID) domain.FetchResult {
	l := slogx.FromContext(ctx).With("uuid", id.String())

	body, err := f.Source.GetRegistration(ctx, token.Reveal(), id.String())
	if err != nil {
		l.Warn("skipping registration, fetch failed",
			"error", err,
			"retries_exhausted", httpx.IsRetryError(err),
		)
		return domain.Skipped(id, err)
	}

	rec, err := flatten.Flatten(body)
	if err != nil {
		l.Warn("skipping registration, unusable body", "error", err)
		return domain.Skipped(id, err)
	}

	rec.Stamp(nowOrDefault(f.Now))

	l.Debug("registration fetched", "columns", rec.Len())
	return domain.Fetched(id, rec)
}

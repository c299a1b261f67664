package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/pkg/eventimsdk"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

const registrationsEndpoint = "registrations"

type Lister struct {
	Source RegistrationLister
}

// List returns every registration identifier in API order. Any failure is
// fatal for the run.
func (s *Lister) List(ctx context.Context, token domain.AccessToken) ([]domain.RegistrationID, error) {
	l := slogx.FromContext(ctx)

	summaries, err := s.Source.ListRegistrations(ctx, token.Reveal())
	if err != nil {
		if errors.Is(err, eventimsdk.ErrMalformedResponse) {
			l.Error("malformed registrations listing", "error", err)
			return nil, &domain.MalformedResponseError{Endpoint: registrationsEndpoint, Err: err}
		}
		l.Error("failed to list registrations", "error", err)
		return nil, &domain.ListingError{Err: err}
	}

	ids := make([]domain.RegistrationID, len(summaries))
	for i, s := range summaries {
		ids[i] = domain.RegistrationID(s.UUID)
	}

	l.Info("registrations listed", "count", len(ids))
	return ids, nil
}

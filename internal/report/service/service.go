// Package service implements the report pipeline: authenticate, list
// registrations, fetch and flatten each one, then export the merged table.
package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/aussiebroadwan/eventim-report/pkg/eventimsdk"
)

// TokenIssuer exchanges client credentials for an access token.
type TokenIssuer interface {
	ClientCredentialsGrant(ctx context.Context, clientID, clientSecret, grantType string) (*eventimsdk.TokenResponse, error)
}

// RegistrationLister returns the registrations visible to a token.
type RegistrationLister interface {
	ListRegistrations(ctx context.Context, token string) ([]eventimsdk.RegistrationSummary, error)
}

// RegistrationSource returns the raw detail document for one registration.
type RegistrationSource interface {
	GetRegistration(ctx context.Context, token, uuid string) (json.RawMessage, error)
}

// API is everything the pipeline needs from the remote side.
// *eventimsdk.SDKClient implements it.
type API interface {
	TokenIssuer
	RegistrationLister
	RegistrationSource
}

var _ API = (*eventimsdk.SDKClient)(nil)

func nowOrDefault(now func() time.Time) time.Time {
	if now == nil {
		return time.Now()
	}
	return now()
}

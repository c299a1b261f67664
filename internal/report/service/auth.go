package service

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/eventim-report/internal/report/domain"
	"github.com/aussiebroadwan/eventim-report/pkg/eventimsdk"
	"github.com/aussiebroadwan/eventim-report/pkg/slogx"
)

const tokenEndpoint = "token"

type Authenticator struct {
	Issuer TokenIssuer
}

// Authenticate performs a single client_credentials exchange. The token is
// neither cached nor refreshed.
func (a *Authenticator) Authenticate(ctx context.Context, creds domain.Credentials) (domain.AccessToken, error) {
	l := slogx.FromContext(ctx)

	resp, err := a.Issuer.ClientCredentialsGrant(ctx, creds.ClientID, creds.ClientSecret, creds.GrantType)
	if err != nil {
		if errors.Is(err, eventimsdk.ErrMalformedResponse) {
			l.Error("malformed token response", "error", err)
			return "", &domain.MalformedResponseError{Endpoint: tokenEndpoint, Err: err}
		}
		l.Error("failed to obtain access token", "error", err, "credentials", creds)
		return "", &domain.AuthenticationError{Err: err}
	}

	l.Info("access token obtained",
		"client_id", creds.ClientID,
		"token_type", resp.TokenType,
		"expires_in", resp.ExpiresIn,
	)
	return domain.AccessToken(resp.AccessToken), nil
}

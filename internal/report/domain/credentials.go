package domain

import "log/slog"

// GrantTypeClientCredentials is the only grant the report job uses.
const GrantTypeClientCredentials = "client_credentials"

// Credentials are the client credentials exchanged for an access token.
// Constructed once per run and never persisted.
type Credentials struct {
	ClientID     string
	ClientSecret string //nolint:gosec // redacted in String and LogValue
	GrantType    string
}

// NewCredentials returns client_credentials credentials.
func NewCredentials(clientID, clientSecret string) Credentials {
	return Credentials{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		GrantType:    GrantTypeClientCredentials,
	}
}

func (c Credentials) String() string {
	return "Credentials{ClientID: " + c.ClientID + ", ClientSecret: [REDACTED]}"
}

// LogValue keeps the secret out of structured logs.
func (c Credentials) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("client_id", c.ClientID),
		slog.String("grant_type", c.GrantType),
	)
}

// AccessToken is an opaque bearer credential valid for one run.
type AccessToken string

func (t AccessToken) String() string { return "[REDACTED]" }

// LogValue keeps the token out of structured logs.
func (t AccessToken) LogValue() slog.Value { return slog.StringValue("[REDACTED]") }

// Reveal returns the raw token for the Authorization header.
func (t AccessToken) Reveal() string { return string(t) }

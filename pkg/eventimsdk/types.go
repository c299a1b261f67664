package eventimsdk

// ============================================================================
// Token Types
// ============================================================================

// TokenResponse represents the response of POST /token.
type TokenResponse struct {
	// AccessToken is the bearer token used to authenticate API requests
	AccessToken string `json:"access_token"`

	// TokenType is normally "Bearer"
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token, if reported
	ExpiresIn int `json:"expires_in,omitempty"`
}

// ============================================================================
// Registration Types
// ============================================================================

// RegistrationSummary is one entry of the registrations collection. Only the
// identifier is used; the detail endpoint carries everything else.
type RegistrationSummary struct {
	UUID string `json:"uuid"`
}

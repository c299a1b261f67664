package eventimsdk

import (
	"net/http"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production Eventim Sports API.
	DefaultBaseURL = "https://api.eventimsports.com"

	// DefaultUserAgent is the client identifying header the API expects.
	DefaultUserAgent = "Automation_Client"

	tokenPath         = "/token"
	registrationsPath = "/webhook/v1/events/registrations/"
)

// SDKClient is a client for the Eventim Sports webhook API.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client

	// UserAgent is sent on every request, including the token request.
	UserAgent string
}

// NewSDKClient creates a client for baseURL. A nil httpClient falls back to a
// plain client with a 30 second timeout; production callers pass the shared
// retrying client from httpx.NewClient.
func NewSDKClient(baseURL string, httpClient *http.Client) *SDKClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &SDKClient{
		BaseURL:    strings.TrimSuffix(baseURL, "/"),
		HTTPClient: httpClient,
		UserAgent:  DefaultUserAgent,
	}
}

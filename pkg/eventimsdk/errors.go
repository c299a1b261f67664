package eventimsdk

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrMalformedResponse is wrapped by every error caused by a 2xx response
// whose body does not match the documented shape.
var ErrMalformedResponse = errors.New("malformed response")

// maxErrorBody bounds how much of an error response is kept on APIError.
const maxErrorBody = 512

// APIError represents a non-2xx response from the Eventim API.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Code is the OAuth2 error code when the body carried one (e.g. "invalid_client")
	Code string

	// Description is the OAuth2 error_description, if any
	Description string

	// Body holds the first bytes of the raw response body
	Body string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("HTTP %d: %s: %s", e.StatusCode, e.Code, e.Description)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// malformed wraps ErrMalformedResponse with some context.
func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedResponse, fmt.Sprintf(format, args...))
}

// parseErrorResponse turns a non-2xx response into an *APIError, picking up
// the OAuth2 error fields when the token endpoint sends them.
func parseErrorResponse(resp *http.Response, body []byte) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}
	apiErr.Body = string(body)

	var errResp struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error != "" {
		apiErr.Code = errResp.Error
		apiErr.Description = errResp.ErrorDescription
	}

	return apiErr
}

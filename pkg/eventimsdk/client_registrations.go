package eventimsdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// ListRegistrations returns the identifiers of every registration visible to
// the token, in the order the API lists them.
//
// The body must be a JSON array of objects that each carry a string "uuid";
// anything else is reported as ErrMalformedResponse.
func (c *SDKClient) ListRegistrations(ctx context.Context, token string) ([]RegistrationSummary, error) {
	resp, err := c.doAuthRequest(ctx, token, http.MethodGet, registrationsPath)
	if err != nil {
		return nil, err
	}

	var entries []map[string]json.RawMessage
	if err := decodeJSON(resp, &entries); err != nil {
		return nil, err
	}
	if entries == nil {
		return nil, malformed("registrations body is null")
	}

	summaries := make([]RegistrationSummary, 0, len(entries))
	for i, entry := range entries {
		raw, ok := entry["uuid"]
		if !ok {
			return nil, malformed("registration %d has no uuid", i)
		}

		var uuid string
		if err := json.Unmarshal(raw, &uuid); err != nil || uuid == "" {
			return nil, malformed("registration %d has an invalid uuid %s", i, string(raw))
		}

		summaries = append(summaries, RegistrationSummary{UUID: uuid})
	}

	return summaries, nil
}

// GetRegistration returns the raw JSON detail document for one registration.
// The document shape is not fixed, so it is handed back undecoded.
func (c *SDKClient) GetRegistration(ctx context.Context, token, uuid string) (json.RawMessage, error) {
	resp, err := c.doAuthRequest(ctx, token, http.MethodGet, registrationsPath+url.PathEscape(uuid))
	if err != nil {
		return nil, err
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, malformed("registration %s: body is not valid JSON", uuid)
	}

	return json.RawMessage(body), nil
}

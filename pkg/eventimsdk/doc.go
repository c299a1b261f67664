/*
Package eventimsdk provides a small client for the Eventim Sports webhook API.

# Overview

The API is protected by OAuth2 client credentials. A caller first exchanges its
client id and secret for a bearer token, then uses the token to list event
registrations and fetch each registration's detail document:

	client := eventimsdk.NewSDKClient(eventimsdk.DefaultBaseURL, httpClient)

	tok, err := client.ClientCredentialsGrant(ctx, clientID, clientSecret, "client_credentials")
	if err != nil {
		return err
	}

	regs, err := client.ListRegistrations(ctx, tok.AccessToken)
	if err != nil {
		return err
	}

	for _, reg := range regs {
		doc, err := client.GetRegistration(ctx, tok.AccessToken, reg.UUID)
		...
	}

Tokens are not cached or refreshed; every call takes the token explicitly.

# Transport

The SDK performs no retries itself. Pass an *http.Client built with
httpx.NewClient to get retry with backoff on connection errors and on
429/500/502/503/504 responses.

# Error Handling

  - *APIError: the API answered with a non-2xx status. Code and Description are
    filled from an OAuth2 error body when present.
  - ErrMalformedResponse: a 2xx body did not have the documented shape
    (missing access_token, a listing that is not an array of objects with a
    uuid, a detail body that is not JSON). Test with errors.Is.
  - Anything else is a transport failure, typically wrapping *httpx.RetryError.

Every request carries the User-Agent header from SDKClient.UserAgent
(DefaultUserAgent unless overridden).
*/
package eventimsdk

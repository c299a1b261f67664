package eventimsdk

import (
	"context"
	"net/http"
	"net/url"
	"strings"
)

// ClientCredentialsGrant requests an access token using the OAuth2
// client_credentials grant. The credentials travel form-encoded in the body,
// which is what the Eventim token endpoint accepts.
//
// A 2xx response without an access_token is reported as ErrMalformedResponse.
func (c *SDKClient) ClientCredentialsGrant(
	ctx context.Context,
	clientID, clientSecret, grantType string,
) (*TokenResponse, error) {
	if grantType == "" {
		grantType = "client_credentials"
	}

	data := url.Values{
		"client_id":     {clientID},
		"client_secret": {clientSecret},
		"grant_type":    {grantType},
	}

	return c.requestToken(ctx, data)
}

func (c *SDKClient) requestToken(ctx context.Context, data url.Values) (*TokenResponse, error) {
	resp, err := c.doRequest(
		ctx,
		http.MethodPost,
		tokenPath,
		strings.NewReader(data.Encode()),
		map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
	)
	if err != nil {
		return nil, err
	}

	var tokenResp TokenResponse
	if err := decodeJSON(resp, &tokenResp); err != nil {
		return nil, err
	}

	if tokenResp.AccessToken == "" {
		return nil, malformed("token response has no access_token")
	}

	return &tokenResp, nil
}

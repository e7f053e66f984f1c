package auth

import "net/http"

// DefaultUserAgent identifies this client to the provider's token endpoint.
const DefaultUserAgent = "MyAnimeList OAuth Client"

// userAgentTransport sets a fixed User-Agent on every outbound request.
type userAgentTransport struct {
	userAgent string
	base      http.RoundTripper
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(req)
}

// clientAuthTransport replaces the Authorization header with HTTP Basic
// credentials built from the raw client ID and secret. x/oauth2 form-escapes
// both before encoding, which the provider does not undo.
type clientAuthTransport struct {
	clientID     string
	clientSecret string
	base         http.RoundTripper
}

func (t *clientAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.clientID, t.clientSecret)
	return t.base.RoundTrip(req)
}

// withClientAuth returns a copy of client that authenticates every request
// with the given credentials.
func withClientAuth(client *http.Client, clientID, clientSecret string) *http.Client {
	base := client.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	authed := *client
	authed.Transport = &clientAuthTransport{
		clientID:     clientID,
		clientSecret: clientSecret,
		base:         base,
	}
	return &authed
}

// NewHTTPClient returns the client used for token requests. A nil base uses
// http.DefaultTransport. No timeout is set; requests are bounded by their
// context.
func NewHTTPClient(userAgent string, base http.RoundTripper) *http.Client {
	if base == nil {
		base = http.DefaultTransport
	}
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	return &http.Client{
		Transport: &userAgentTransport{userAgent: userAgent, base: base},
	}
}

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"malauth-go/internal/metrics"

	"golang.org/x/oauth2"
)

// MyAnimeListEndpoint is the provider's OAuth2 endpoint. Client credentials
// go in a Basic Authorization header, which the token client rewrites from
// the unescaped ID and secret.
var MyAnimeListEndpoint = oauth2.Endpoint{
	AuthURL:   "https://myanimelist.net/v1/oauth2/authorize",
	TokenURL:  "https://myanimelist.net/v1/oauth2/token",
	AuthStyle: oauth2.AuthStyleInHeader,
}

// Credentials identify this client to the provider.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
}

// TokenResponse is the subset of the provider's token response returned to
// callers. Other provider fields are dropped.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    any    `json:"expires_in"`
}

// OAuthManager builds authorization URLs and exchanges authorization codes.
// It holds no per-request state and is safe for concurrent use.
type OAuthManager struct {
	config *oauth2.Config
	client *http.Client
	pkce   PKCEGenerator
}

// NewOAuthManager creates a new OAuthManager. Empty endpoint URLs fall back
// to MyAnimeListEndpoint; a nil client uses NewHTTPClient defaults.
func NewOAuthManager(creds Credentials, pkce PKCEGenerator, client *http.Client) *OAuthManager {
	endpoint := MyAnimeListEndpoint
	if creds.AuthURL != "" {
		endpoint.AuthURL = creds.AuthURL
	}
	if creds.TokenURL != "" {
		endpoint.TokenURL = creds.TokenURL
	}
	if pkce == nil {
		pkce = NewPKCEGenerator()
	}
	if client == nil {
		client = NewHTTPClient(DefaultUserAgent, nil)
	}

	return &OAuthManager{
		config: &oauth2.Config{
			ClientID:     creds.ClientID,
			ClientSecret: creds.ClientSecret,
			RedirectURL:  creds.RedirectURL,
			Endpoint:     endpoint,
		},
		client: withClientAuth(client, creds.ClientID, creds.ClientSecret),
		pkce:   pkce,
	}
}

// AuthURL generates a fresh code verifier, embeds it in the state blob next
// to marker and returns the provider authorization URL.
func (m *OAuthManager) AuthURL(marker string) (string, error) {
	verifier, err := m.pkce.GenerateCodeVerifier(MinVerifierLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate code verifier: %w", err)
	}

	challenge, err := m.pkce.GenerateCodeChallenge(verifier)
	if err != nil {
		return "", fmt.Errorf("failed to generate code challenge: %w", err)
	}

	state, err := EncodeState(marker, verifier)
	if err != nil {
		return "", err
	}

	return m.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", ChallengeMethodPlain),
	), nil
}

// HandleCallback recovers the code verifier from rawState and exchanges code
// for a token. verifyState, when set, is called with the blob's state marker
// and any error it returns rejects the callback as an invalid state.
func (m *OAuthManager) HandleCallback(ctx context.Context, code, rawState string, verifyState func(marker string) error) (*TokenResponse, error) {
	blob, err := DecodeState(rawState)
	if err != nil {
		return nil, err
	}

	if verifyState != nil {
		if err := verifyState(blob.State); err != nil {
			return nil, &StateError{Err: err}
		}
	}

	return m.Exchange(ctx, code, blob.CodeVerifier)
}

// Exchange performs the token request. Provider HTTP errors are returned as
// *ProviderError; anything else is wrapped as is.
func (m *OAuthManager) Exchange(ctx context.Context, code, verifier string) (*TokenResponse, error) {
	if code == "" || verifier == "" {
		return nil, ErrMissingParams
	}

	start := time.Now()
	defer func() {
		metrics.TokenExchangeDuration.Observe(time.Since(start).Seconds())
	}()

	ctx = context.WithValue(ctx, oauth2.HTTPClient, m.client)
	token, err := m.config.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) && retrieveErr.Response != nil &&
			retrieveErr.Response.StatusCode >= http.StatusBadRequest {
			return nil, &ProviderError{
				StatusCode: retrieveErr.Response.StatusCode,
				Body:       string(retrieveErr.Body),
			}
		}
		return nil, fmt.Errorf("failed to exchange code for token: %w", err)
	}

	return &TokenResponse{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresIn:    token.Extra("expires_in"),
	}, nil
}

package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"malauth-go/internal/auth"
	"malauth-go/internal/metrics"

	"go.uber.org/zap"
)

//
// Authentication Handlers
//

// handleLogin starts the OAuth2 flow by redirecting the user to the
// provider's consent page. The URL is also returned in the body for callers
// that do not follow redirects.
func (a *Application) handleLogin(w http.ResponseWriter, r *http.Request) {
	marker := a.Config.Auth.StateMarker

	var bindCookie *http.Cookie
	if a.Binder != nil {
		nonce, cookie, err := a.Binder.Bind()
		if err != nil {
			a.Logger.Error("failed to bind state", zap.Error(err))
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		marker, bindCookie = nonce, cookie
	}

	authURL, err := a.Auth.AuthURL(marker)
	if err != nil {
		a.Logger.Error("failed to generate auth URL", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if bindCookie != nil {
		http.SetCookie(w, bindCookie)
	}
	metrics.LoginsStarted.Inc()

	w.Header().Set("Location", authURL)
	allowAnyOrigin(w)
	writeJSON(w, http.StatusFound, map[string]string{"url": authURL})
}

// handleCallback handles the redirect from the provider after user consent
// and exchanges the authorization code for a token.
func (a *Application) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	code := query.Get("code")
	state := query.Get("state")

	var verifyState func(string) error
	if a.Binder != nil {
		var cookieValue string
		if cookie, err := r.Cookie(auth.StateCookieName); err == nil {
			cookieValue = cookie.Value
		}
		verifyState = func(marker string) error {
			return a.Binder.Verify(cookieValue, marker)
		}
		// The binding is single use whatever the outcome.
		http.SetCookie(w, a.Binder.Clear())
	}

	token, err := a.Auth.HandleCallback(r.Context(), code, state, verifyState)
	if err != nil {
		status, message, outcome := errorResponse(err)
		metrics.TokenExchanges.WithLabelValues(outcome).Inc()

		requestID, _ := getRequestIDFromContext(r)
		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.String("outcome", outcome),
			zap.Int("status", status),
			zap.Error(err),
		}
		if status >= http.StatusInternalServerError {
			a.Logger.Error("token exchange failed", fields...)
		} else {
			a.Logger.Warn("token exchange rejected", fields...)
		}

		writeError(w, status, message)
		return
	}

	metrics.TokenExchanges.WithLabelValues(metrics.OutcomeSuccess).Inc()
	allowAnyOrigin(w)
	writeJSON(w, http.StatusOK, token)
}

func (a *Application) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// errorResponse maps an error from the callback flow to a status code, the
// client-facing message and a metrics outcome.
func errorResponse(err error) (int, string, string) {
	var stateErr *auth.StateError
	var providerErr *auth.ProviderError

	switch {
	case errors.As(err, &stateErr):
		return http.StatusBadRequest, fmt.Sprintf("Invalid state parameter: %v", stateErr.Err), metrics.OutcomeInvalidState
	case errors.Is(err, auth.ErrMissingParams):
		return http.StatusBadRequest, "Missing code or code_verifier", metrics.OutcomeMissingParams
	case errors.As(err, &providerErr):
		return providerErr.StatusCode, providerErr.Body, metrics.OutcomeProviderError
	default:
		return http.StatusInternalServerError, err.Error(), metrics.OutcomeInternalError
	}
}

func allowAnyOrigin(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeJSON writes v as the response body. HTML escaping is off so provider
// error bodies are passed through unchanged.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		http.Error(w, "failed to encode response", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

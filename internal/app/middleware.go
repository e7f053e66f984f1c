package app

import (
	"context"
	"net/http"

	"github.com/felixge/httpsnoop"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// contextKey is a custom type to use as a key for context values.
type contextKey string

// requestIDContextKey is the key for storing the request ID in the request context.
const requestIDContextKey = contextKey("requestID")

const requestIDHeader = "X-Request-ID"

// withRequestID tags each request with an ID, reusing the caller's
// X-Request-ID when present, and echoes it in the response.
func (a *Application) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, requestID)

		ctx := context.WithValue(r.Context(), requestIDContextKey, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// logRequests logs one line per request. Query strings are left out since
// they carry authorization codes.
func (a *Application) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m := httpsnoop.CaptureMetrics(next, w, r)

		requestID, _ := getRequestIDFromContext(r)
		a.Logger.Info("request",
			zap.String("request_id", requestID),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", m.Code),
			zap.Duration("duration", m.Duration),
			zap.Int64("bytes", m.Written),
		)
	})
}

// getRequestIDFromContext retrieves the request ID from the request's context.
func getRequestIDFromContext(r *http.Request) (string, bool) {
	requestID, ok := r.Context().Value(requestIDContextKey).(string)
	return requestID, ok
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Token exchange outcomes, used as the "outcome" label.
const (
	OutcomeSuccess       = "success"
	OutcomeInvalidState  = "invalid_state"
	OutcomeMissingParams = "missing_params"
	OutcomeProviderError = "provider_error"
	OutcomeInternalError = "internal_error"
)

var (
	// LoginsStarted is a counter for authorization redirects issued.
	LoginsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "malauth_logins_total",
			Help: "The total number of authorization redirects issued.",
		},
	)

	// TokenExchanges is a counter for callbacks handled, by outcome.
	TokenExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "malauth_token_exchanges_total",
			Help: "The total number of OAuth callbacks handled, by outcome.",
		},
		[]string{"outcome"},
	)

	// TokenExchangeDuration is a histogram of token endpoint round trips.
	TokenExchangeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "malauth_token_exchange_duration_seconds",
			Help:    "A histogram of the token endpoint request duration.",
			Buckets: prometheus.DefBuckets,
		},
	)
)

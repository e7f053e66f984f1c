package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"malauth-go/internal/auth"
	"malauth-go/internal/config"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// Application holds all the major components of the service.
type Application struct {
	Config        *config.Config
	Logger        *zap.Logger
	Auth          *auth.OAuthManager
	Binder        *auth.StateBinder // nil unless state binding is enabled
	HttpServer    *http.Server
	MetricsServer *http.Server
}

// New creates and initializes a new Application instance.
func New(cfg *config.Config, logger *zap.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("config cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	redirect, err := url.Parse(cfg.Auth.RedirectURI)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redirect URI: %w", err)
	}

	// Setup: Auth Manager
	client := auth.NewHTTPClient(cfg.Auth.UserAgent, otelhttp.NewTransport(http.DefaultTransport))
	oauthManager := auth.NewOAuthManager(auth.Credentials{
		ClientID:     cfg.Auth.ClientID,
		ClientSecret: cfg.Auth.ClientSecret,
		RedirectURL:  cfg.Auth.RedirectURI,
		AuthURL:      cfg.Auth.AuthURL,
		TokenURL:     cfg.Auth.TokenURL,
	}, auth.NewPKCEGenerator(), client)

	app := &Application{
		Config: cfg,
		Logger: logger,
		Auth:   oauthManager,
	}

	if cfg.StateBinding.Enabled {
		app.Binder = auth.NewStateBinder(
			[]byte(cfg.StateBinding.Key),
			cfg.StateBinding.TTL.Duration,
			redirect.Scheme == "https",
		)
	}

	// Setup: HTTP Server for metrics
	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", promhttp.Handler())
	app.MetricsServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.MetricsPort),
		Handler: metricsMux,
	}

	// Setup: Main HTTP Server
	app.HttpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler: app.Handler(),
	}

	return app, nil
}

// Handler returns the API routes wrapped in the middleware chain.
func (a *Application) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /auth/login", a.handleLogin)
	mux.HandleFunc("GET /auth/callback", a.handleCallback)
	mux.HandleFunc("GET /healthz", a.handleHealth)

	return otelhttp.NewHandler(a.withRequestID(a.logRequests(mux)), "malauth")
}

// Run serves the API and metrics servers until ctx is cancelled or either
// server fails, then shuts both down.
func (a *Application) Run(ctx context.Context) error {
	var g run.Group

	ctx, cancel := context.WithCancel(ctx)
	g.Add(func() error {
		<-ctx.Done()
		return ctx.Err()
	}, func(error) {
		cancel()
	})

	for _, srv := range []*http.Server{a.HttpServer, a.MetricsServer} {
		srv := srv
		g.Add(func() error {
			a.Logger.Info("starting server", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server %s: %w", srv.Addr, err)
			}
			return nil
		}, func(error) {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.Logger.Error("server shutdown error", zap.String("addr", srv.Addr), zap.Error(err))
			}
		})
	}

	err := g.Run()
	a.Logger.Info("application stopped")
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"time"

	"malauth-go/internal/auth"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

// Config holds all configuration for the application.
type Config struct {
	HTTPPort       int    `json:"http_port" env:"HTTP_PORT" validate:"gte=0,lte=65535"`
	MetricsPort    int    `json:"metrics_port" env:"METRICS_PORT" validate:"gte=0,lte=65535"`
	LogLevel       string `json:"log_level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
	TracingEnabled bool   `json:"tracing_enabled" env:"TRACING_ENABLED"`

	Auth         AuthConfig         `json:"auth"`
	StateBinding StateBindingConfig `json:"state_binding"`
}

// AuthConfig identifies this client to the OAuth provider.
type AuthConfig struct {
	ClientID     string `json:"client_id" env:"CLIENT_ID" validate:"required"`
	ClientSecret string `json:"client_secret" env:"CLIENT_SECRET" validate:"required"`
	RedirectURI  string `json:"redirect_uri" env:"REDIRECT_URI" validate:"required,url"`
	AuthURL      string `json:"auth_url" env:"AUTH_URL" validate:"required,url"`
	TokenURL     string `json:"token_url" env:"TOKEN_URL" validate:"required,url"`
	UserAgent    string `json:"user_agent" env:"USER_AGENT" validate:"required"`
	StateMarker  string `json:"state_marker" env:"STATE_MARKER" validate:"required"`
}

// StateBindingConfig controls the signed cookie that ties a callback to the
// browser that started the login.
type StateBindingConfig struct {
	Enabled bool     `json:"enabled" env:"STATE_BINDING_ENABLED"`
	Key     string   `json:"key" env:"STATE_BINDING_KEY" validate:"omitempty,min=32"`
	TTL     Duration `json:"ttl" env:"STATE_BINDING_TTL" validate:"min=1m"`
}

// Duration is a wrapper around time.Duration that implements JSON marshaling/unmarshaling
type Duration struct {
	time.Duration
}

// UnmarshalJSON implements json.Unmarshaler
func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		return d.UnmarshalText([]byte(value))
	default:
		return fmt.Errorf("invalid duration")
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, used for environment values.
func (d *Duration) UnmarshalText(b []byte) error {
	parsed, err := time.ParseDuration(string(b))
	if err != nil {
		return err
	}
	d.Duration = parsed
	return nil
}

// MarshalJSON implements json.Marshaler
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// Default returns the configuration used before the file and environment
// are applied.
func Default() *Config {
	return &Config{
		HTTPPort:    8080,
		MetricsPort: 9090,
		LogLevel:    "info",
		Auth: AuthConfig{
			AuthURL:     auth.MyAnimeListEndpoint.AuthURL,
			TokenURL:    auth.MyAnimeListEndpoint.TokenURL,
			UserAgent:   auth.DefaultUserAgent,
			StateMarker: auth.DefaultStateMarker,
		},
		StateBinding: StateBindingConfig{
			TTL: Duration{10 * time.Minute},
		},
	}
}

// Load reads configuration from an optional file and overrides it with
// environment variables. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	validate := validator.New()

	// Register custom validation for Duration
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if duration, ok := field.Interface().(Duration); ok {
			return duration.Duration
		}
		return nil
	}, Duration{})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	// Additional custom validations
	if c.StateBinding.Enabled && c.StateBinding.Key == "" {
		return fmt.Errorf("state binding is enabled but no signing key is set")
	}

	return nil
}

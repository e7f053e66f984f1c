package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := Default()
	cfg.Auth.ClientID = "test-client-id"
	cfg.Auth.ClientSecret = "test-client-secret"
	cfg.Auth.RedirectURI = "http://localhost:8080/auth/callback"
	return cfg
}

func TestConfig_Defaults(t *testing.T) {
	cfg := Default()

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "https://myanimelist.net/v1/oauth2/authorize", cfg.Auth.AuthURL)
	assert.Equal(t, "https://myanimelist.net/v1/oauth2/token", cfg.Auth.TokenURL)
	assert.Equal(t, "MyAnimeList OAuth Client", cfg.Auth.UserAgent)
	assert.Equal(t, "RandomStateString", cfg.Auth.StateMarker)
	assert.False(t, cfg.StateBinding.Enabled)
	assert.Equal(t, 10*time.Minute, cfg.StateBinding.TTL.Duration)
}

func TestConfig_LoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")

	configJSON := `{
		"http_port": 8081,
		"log_level": "debug",
		"auth": {
			"client_id": "file-client-id",
			"client_secret": "file-client-secret",
			"redirect_uri": "https://example.com/auth/callback"
		},
		"state_binding": {
			"enabled": true,
			"key": "0123456789abcdef0123456789abcdef",
			"ttl": "5m"
		}
	}`
	err := os.WriteFile(configPath, []byte(configJSON), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.HTTPPort)
	assert.Equal(t, 9090, cfg.MetricsPort)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "file-client-id", cfg.Auth.ClientID)
	assert.Equal(t, "https://example.com/auth/callback", cfg.Auth.RedirectURI)
	assert.Equal(t, "RandomStateString", cfg.Auth.StateMarker)
	assert.True(t, cfg.StateBinding.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.StateBinding.TTL.Duration)

	// Test loading non-existent file
	_, err = Load(filepath.Join(tmpDir, "non-existent.json"))
	assert.Error(t, err)

	// Test loading invalid JSON
	invalidPath := filepath.Join(tmpDir, "invalid.json")
	err = os.WriteFile(invalidPath, []byte("{invalid json}"), 0644)
	require.NoError(t, err)
	_, err = Load(invalidPath)
	assert.Error(t, err)
}

func TestConfig_LoadFromEnvironment(t *testing.T) {
	t.Setenv("CLIENT_ID", "env-client-id")
	t.Setenv("CLIENT_SECRET", "env-client-secret")
	t.Setenv("REDIRECT_URI", "https://env.example.com/auth/callback")
	t.Setenv("METRICS_PORT", "9191")
	t.Setenv("STATE_BINDING_TTL", "15m")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "env-client-id", cfg.Auth.ClientID)
	assert.Equal(t, "env-client-secret", cfg.Auth.ClientSecret)
	assert.Equal(t, "https://env.example.com/auth/callback", cfg.Auth.RedirectURI)
	assert.Equal(t, 9191, cfg.MetricsPort)
	assert.Equal(t, 15*time.Minute, cfg.StateBinding.TTL.Duration)
	assert.Equal(t, "https://myanimelist.net/v1/oauth2/token", cfg.Auth.TokenURL)
}

func TestConfig_EnvironmentOverrides(t *testing.T) {
	t.Setenv("CLIENT_ID", "env-client-id")
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("USER_AGENT", "env-agent")

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.json")
	configJSON := `{
		"log_level": "debug",
		"auth": {
			"client_id": "file-client-id",
			"client_secret": "file-client-secret",
			"redirect_uri": "https://example.com/auth/callback"
		}
	}`
	err := os.WriteFile(configPath, []byte(configJSON), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Check that environment variables override file values
	assert.Equal(t, "env-client-id", cfg.Auth.ClientID)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "env-agent", cfg.Auth.UserAgent)

	// Check that non-overridden values remain
	assert.Equal(t, "file-client-secret", cfg.Auth.ClientSecret)
	assert.Equal(t, "https://example.com/auth/callback", cfg.Auth.RedirectURI)
}

func TestConfig_InvalidEnvironmentValue(t *testing.T) {
	t.Setenv("CLIENT_ID", "env-client-id")
	t.Setenv("CLIENT_SECRET", "env-client-secret")
	t.Setenv("REDIRECT_URI", "https://env.example.com/auth/callback")
	t.Setenv("HTTP_PORT", "not-a-port")

	_, err := Load("")
	assert.ErrorContains(t, err, "applying environment overrides")
}

func TestConfig_Validation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(cfg *Config)
		shouldError bool
	}{
		{
			name:        "valid config",
			mutate:      func(cfg *Config) {},
			shouldError: false,
		},
		{
			name:        "missing client id",
			mutate:      func(cfg *Config) { cfg.Auth.ClientID = "" },
			shouldError: true,
		},
		{
			name:        "missing client secret",
			mutate:      func(cfg *Config) { cfg.Auth.ClientSecret = "" },
			shouldError: true,
		},
		{
			name:        "missing redirect uri",
			mutate:      func(cfg *Config) { cfg.Auth.RedirectURI = "" },
			shouldError: true,
		},
		{
			name:        "redirect uri is not a url",
			mutate:      func(cfg *Config) { cfg.Auth.RedirectURI = "callback" },
			shouldError: true,
		},
		{
			name:        "invalid log level",
			mutate:      func(cfg *Config) { cfg.LogLevel = "verbose" },
			shouldError: true,
		},
		{
			name:        "port out of range",
			mutate:      func(cfg *Config) { cfg.HTTPPort = 70000 },
			shouldError: true,
		},
		{
			name:        "binding enabled without key",
			mutate:      func(cfg *Config) { cfg.StateBinding.Enabled = true },
			shouldError: true,
		},
		{
			name: "binding key too short",
			mutate: func(cfg *Config) {
				cfg.StateBinding.Enabled = true
				cfg.StateBinding.Key = "short"
			},
			shouldError: true,
		},
		{
			name:        "binding ttl too short",
			mutate:      func(cfg *Config) { cfg.StateBinding.TTL = Duration{30 * time.Second} },
			shouldError: true,
		},
		{
			name: "binding enabled with key",
			mutate: func(cfg *Config) {
				cfg.StateBinding.Enabled = true
				cfg.StateBinding.Key = "0123456789abcdef0123456789abcdef"
			},
			shouldError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

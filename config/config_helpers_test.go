package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestExpandString tests the expandString function with various scenarios
func TestExpandString(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		envVars  map[string]string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			envVars:  map[string]string{},
			expected: "",
		},
		{
			name:     "string without placeholders",
			input:    "simple-string",
			envVars:  map[string]string{},
			expected: "simple-string",
		},
		{
			name:     "simple variable expansion",
			input:    "${CPDF_BASE}",
			envVars:  map[string]string{"CPDF_BASE": "https://example.test/api"},
			expected: "https://example.test/api",
		},
		{
			name:     "variable in middle of string",
			input:    "prefix-${CPDF_DIR}-suffix",
			envVars:  map[string]string{"CPDF_DIR": "cache"},
			expected: "prefix-cache-suffix",
		},
		{
			name:     "variable with default value - env var exists",
			input:    "${CPDF_DIR:-.cache}",
			envVars:  map[string]string{"CPDF_DIR": "/var/cache/cpdf"},
			expected: "/var/cache/cpdf",
		},
		{
			name:     "variable with default value - env var missing",
			input:    "${CPDF_DIR:-.cache}",
			envVars:  map[string]string{},
			expected: ".cache",
		},
		{
			name:     "variable with default value - env var empty",
			input:    "${CPDF_DIR:-.cache}",
			envVars:  map[string]string{"CPDF_DIR": ""},
			expected: ".cache",
		},
		{
			name:     "unresolved variable - no default",
			input:    "${CPDF_MISSING}",
			envVars:  map[string]string{},
			expected: "${CPDF_MISSING}",
		},
		{
			name:     "mixed resolved and unresolved with defaults",
			input:    "${CPDF_A}:${CPDF_B:-fallback}:${CPDF_C}",
			envVars:  map[string]string{"CPDF_A": "value1"},
			expected: "value1:fallback:${CPDF_C}",
		},
		{
			name:     "default value with colon in it",
			input:    "${CPDF_URL:-http://localhost:8080}",
			envVars:  map[string]string{},
			expected: "http://localhost:8080",
		},
		{
			name:     "empty default value - env var missing",
			input:    "${CPDF_OPTIONAL:-}",
			envVars:  map[string]string{},
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			result := expandString(tt.input)
			if result != tt.expected {
				t.Errorf("expandString(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestApplyEnvOverrides tests the applyEnvOverrides function
func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "API_BASE_URL override",
			envVars: map[string]string{"API_BASE_URL": "http://127.0.0.1:9999"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.API.BaseURL != "http://127.0.0.1:9999" {
					t.Errorf("API.BaseURL = %q, want %q", cfg.API.BaseURL, "http://127.0.0.1:9999")
				}
			},
		},
		{
			name:    "cache overrides",
			envVars: map[string]string{"CACHE_TYPE": "redis", "REDIS_URL": "redis://localhost:6379/1", "CACHE_MAX_AGE": "3600"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Type != "redis" {
					t.Errorf("Cache.Type = %q, want %q", cfg.Cache.Type, "redis")
				}
				if cfg.Cache.Redis.URL != "redis://localhost:6379/1" {
					t.Errorf("Cache.Redis.URL = %q", cfg.Cache.Redis.URL)
				}
				if cfg.Cache.MaxAge != 3600 {
					t.Errorf("Cache.MaxAge = %d, want 3600", cfg.Cache.MaxAge)
				}
			},
		},
		{
			name:    "bool overrides",
			envVars: map[string]string{"METRICS_ENABLED": "1"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Metrics.Enabled {
					t.Error("Metrics.Enabled should be true")
				}
			},
		},
		{
			name:    "HTTP timeout overrides",
			envVars: map[string]string{"HTTP_TIMEOUT": "5", "HTTP_RESPONSE_HEADER_TIMEOUT": "4"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.HTTP.Timeout != 5 {
					t.Errorf("HTTP.Timeout = %d, want 5", cfg.HTTP.Timeout)
				}
				if cfg.HTTP.ResponseHeaderTimeout != 4 {
					t.Errorf("HTTP.ResponseHeaderTimeout = %d, want 4", cfg.HTTP.ResponseHeaderTimeout)
				}
			},
		},
		{
			name:    "no env vars set preserves defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Cache.Dir != ".cache" {
					t.Errorf("Cache.Dir = %q, want %q", cfg.Cache.Dir, ".cache")
				}
				if cfg.HTTP.Timeout != 30 {
					t.Errorf("HTTP.Timeout = %d, want 30", cfg.HTTP.Timeout)
				}
				if cfg.Cache.MaxAge != 604800 {
					t.Errorf("Cache.MaxAge = %d, want 604800", cfg.Cache.MaxAge)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := buildDefaultConfig()
			require.NoError(t, applyEnvOverrides(cfg))
			tt.check(t, cfg)
		})
	}
}

func TestApplyEnvOverrides_InvalidInteger(t *testing.T) {
	t.Setenv("CACHE_MAX_AGE", "a week")

	err := applyEnvOverrides(buildDefaultConfig())
	require.Error(t, err)
	require.Contains(t, err.Error(), "CACHE_MAX_AGE")
}

func TestLoadYAML_MissingImplicitFileIsIgnored(t *testing.T) {
	cfg := buildDefaultConfig()
	source, err := loadYAML(cfg, "does-not-exist.yaml", false)
	require.NoError(t, err)
	require.Empty(t, source)

	_, err = loadYAML(cfg, "does-not-exist.yaml", true)
	require.Error(t, err)
}

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	result, err := Load()
	require.NoError(t, err)
	require.Empty(t, result.Source)

	cfg := result.Config
	assert.Equal(t, "https://www.layahealthcare.ie/api", cfg.API.BaseURL)
	assert.Equal(t, "local", cfg.Cache.Type)
	assert.Equal(t, 7*24*time.Hour, cfg.CacheMaxAge())
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout())
	assert.Equal(t, "360 care select", cfg.Report.DefaultPlan)
}

func TestLoad_YAMLWithPlaceholders(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	content := `
api:
  base_url: "${TEST_CPDF_BASE:-http://localhost:7070}"
cache:
  dir: "/tmp/cpdf-cache"
  max_age: 60
report:
  default_plan: "Essential Health"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "config.yaml", result.Source)
	assert.Equal(t, "http://localhost:7070", result.Config.API.BaseURL)
	assert.Equal(t, "/tmp/cpdf-cache", result.Config.Cache.Dir)
	assert.Equal(t, time.Minute, result.Config.CacheMaxAge())
	assert.Equal(t, "Essential Health", result.Config.Report.DefaultPlan)
	// untouched sections keep their defaults
	assert.Equal(t, "/consultant/specialities.json", result.Config.API.SpecialitiesPath)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("cache:\n  dir: from-yaml\n"), 0o644))
	t.Setenv("CACHE_DIR", "from-env")

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-env", result.Config.Cache.Dir)
}

func TestLoad_ExplicitConfigMissing(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("CONSULTANTPDF_CONFIG", "nope.yaml")

	_, err := Load()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "unknown cache type", mutate: func(c *Config) { c.Cache.Type = "memcached" }, wantErr: true},
		{name: "redis without url", mutate: func(c *Config) { c.Cache.Type = "redis" }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.Cache.Type = "redis"
			c.Cache.Redis.URL = "redis://localhost:6379"
		}},
		{name: "sqlite uses cache dir", mutate: func(c *Config) { c.Cache.Type = "sqlite" }},
		{name: "sqlite without location", mutate: func(c *Config) {
			c.Cache.Type = "sqlite"
			c.Cache.Dir = ""
		}, wantErr: true},
		{name: "zero timeout", mutate: func(c *Config) { c.HTTP.Timeout = 0 }, wantErr: true},
		{name: "bad log format", mutate: func(c *Config) { c.Logging.Format = "xml" }, wantErr: true},
		{name: "metrics without textfile", mutate: func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Textfile = ""
		}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := buildDefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

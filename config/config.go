// Package config provides configuration management for the application.
package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is read from the working directory when CONSULTANTPDF_CONFIG is unset.
const DefaultConfigFile = "config.yaml"

// Config holds the application configuration
type Config struct {
	API      APIConfig      `yaml:"api"`
	Cache    CacheConfig    `yaml:"cache"`
	HTTP     HTTPConfig     `yaml:"http"`
	Fallback FallbackConfig `yaml:"fallback"`
	Report   ReportConfig   `yaml:"report"`
	Logging  LogConfig      `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

// APIConfig holds the upstream directory API location.
type APIConfig struct {
	BaseURL          string `yaml:"base_url" env:"API_BASE_URL"`
	SpecialitiesPath string `yaml:"specialities_path" env:"API_SPECIALITIES_PATH"`
	HospitalsPath    string `yaml:"hospitals_path" env:"API_HOSPITALS_PATH"`
	ConsultantsPath  string `yaml:"consultants_path" env:"API_CONSULTANTS_PATH"`
	PlanSummaryPath  string `yaml:"plan_summary_path" env:"API_PLAN_SUMMARY_PATH"`
	UserAgent        string `yaml:"user_agent" env:"API_USER_AGENT"`
}

// CacheConfig holds resource cache configuration
type CacheConfig struct {
	// Type is "local" (one JSON file per resource), "sqlite" or "redis".
	Type string `yaml:"type" env:"CACHE_TYPE"`

	Dir string `yaml:"dir" env:"CACHE_DIR"`

	// SQLitePath is the database file for the sqlite backend (default: <dir>/consultantpdf.db).
	SQLitePath string `yaml:"sqlite_path" env:"CACHE_SQLITE_PATH"`

	// MaxAge is the freshness window in seconds.
	MaxAge int `yaml:"max_age" env:"CACHE_MAX_AGE"`

	Redis RedisConfig `yaml:"redis"`
}

// RedisConfig holds Redis-specific cache configuration
type RedisConfig struct {
	URL    string `yaml:"url" env:"REDIS_URL"`
	Prefix string `yaml:"prefix" env:"REDIS_PREFIX"`
	// Expiry in seconds; 0 keeps entries until overwritten so stale reads remain possible.
	Expiry int `yaml:"expiry" env:"REDIS_EXPIRY"`
}

// HTTPConfig holds HTTP client timeouts in seconds.
type HTTPConfig struct {
	Timeout               int `yaml:"timeout" env:"HTTP_TIMEOUT"`
	ResponseHeaderTimeout int `yaml:"response_header_timeout" env:"HTTP_RESPONSE_HEADER_TIMEOUT"`
}

// FallbackConfig locates the bundled JSON snapshots used when both the remote
// API and the cache are unavailable.
type FallbackConfig struct {
	Dir string `yaml:"dir" env:"FALLBACK_DIR"`
}

// ReportConfig holds PDF output defaults.
type ReportConfig struct {
	OutputDir   string `yaml:"output_dir" env:"REPORT_OUTPUT_DIR"`
	DefaultPlan string `yaml:"default_plan" env:"REPORT_DEFAULT_PLAN"`
}

// LogConfig holds logger configuration.
type LogConfig struct {
	// Format is "pretty", "json" or "text".
	Format string `yaml:"format" env:"LOG_FORMAT"`
	Level  string `yaml:"level" env:"LOG_LEVEL"`
}

// MetricsConfig controls the Prometheus textfile written after each run.
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Textfile string `yaml:"textfile" env:"METRICS_TEXTFILE"`
}

// LoadResult is returned by Load.
type LoadResult struct {
	Config *Config
	// Source is the config file that was read, or "" when only defaults and
	// environment variables were used.
	Source string
}

// CacheMaxAge returns the freshness window as a duration.
func (c *Config) CacheMaxAge() time.Duration {
	return time.Duration(c.Cache.MaxAge) * time.Second
}

// HTTPTimeout returns the per-request timeout as a duration.
func (c *Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.Timeout) * time.Second
}

func buildDefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:          "https://www.layahealthcare.ie/api",
			SpecialitiesPath: "/consultant/specialities.json",
			HospitalsPath:    "/consultant/approved_hospitals.json",
			ConsultantsPath:  "/consultant/searchConsultants.json",
			PlanSummaryPath:  "/plans/plans/plansummary.json",
			UserAgent:        "laya-pdf/1.0",
		},
		Cache: CacheConfig{
			Type:   "local",
			Dir:    ".cache",
			MaxAge: 7 * 24 * 60 * 60,
			Redis: RedisConfig{
				Prefix: "consultantpdf:",
			},
		},
		HTTP: HTTPConfig{
			Timeout:               30,
			ResponseHeaderTimeout: 30,
		},
		Fallback: FallbackConfig{
			Dir: ".",
		},
		Report: ReportConfig{
			OutputDir:   ".",
			DefaultPlan: "360 care select",
		},
		Logging: LogConfig{
			Format: "pretty",
			Level:  "info",
		},
		Metrics: MetricsConfig{
			Textfile: "consultantpdf.prom",
		},
	}
}

// Load reads configuration from defaults, an optional .env file, an optional
// YAML config file and environment variables, in increasing precedence.
func Load() (*LoadResult, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := buildDefaultConfig()

	path := os.Getenv("CONSULTANTPDF_CONFIG")
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	source, err := loadYAML(cfg, path, explicit)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &LoadResult{Config: cfg, Source: source}, nil
}

// loadYAML merges the file at path over cfg. A missing file is only an error
// when the path was set explicitly.
func loadYAML(cfg *Config, path string, explicit bool) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return "", nil
		}
		return "", fmt.Errorf("reading config file %s: %w", path, err)
	}

	expanded := expandString(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return "", fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return path, nil
}

var placeholderPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default} placeholders.
// Unset or empty variables without a default are left untouched.
func expandString(s string) string {
	if s == "" {
		return s
	}
	return placeholderPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := placeholderPattern.FindStringSubmatch(match)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]
		if val := os.Getenv(name); val != "" {
			return val
		}
		if hasDefault {
			return def
		}
		return match
	})
}

// applyEnvOverrides walks cfg and sets every field tagged with env:"NAME"
// whose environment variable is non-empty.
func applyEnvOverrides(cfg *Config) error {
	return applyEnvToStruct(reflect.ValueOf(cfg).Elem())
}

func applyEnvToStruct(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field := v.Field(i)
		sf := t.Field(i)

		if field.Kind() == reflect.Struct {
			if err := applyEnvToStruct(field); err != nil {
				return err
			}
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		raw := os.Getenv(name)
		if raw == "" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(raw)
		case reflect.Int:
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("invalid integer for %s: %q", name, raw)
			}
			field.SetInt(int64(n))
		case reflect.Bool:
			b, err := strconv.ParseBool(strings.TrimSpace(raw))
			if err != nil {
				return fmt.Errorf("invalid boolean for %s: %q", name, raw)
			}
			field.SetBool(b)
		}
	}
	return nil
}

// Validate rejects configurations that cannot produce a report.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url is required")
	}
	switch c.Cache.Type {
	case "local", "sqlite":
		if c.Cache.Dir == "" && c.Cache.SQLitePath == "" {
			return fmt.Errorf("cache.dir is required when cache.type is %q", c.Cache.Type)
		}
	case "redis":
		if c.Cache.Redis.URL == "" {
			return fmt.Errorf("REDIS_URL is required when cache.type is \"redis\"")
		}
	default:
		return fmt.Errorf("cache.type must be \"local\", \"sqlite\" or \"redis\", got %q", c.Cache.Type)
	}
	if c.Cache.MaxAge < 0 {
		return fmt.Errorf("cache.max_age must not be negative, got %d", c.Cache.MaxAge)
	}
	if c.HTTP.Timeout <= 0 {
		return fmt.Errorf("http.timeout must be positive, got %d", c.HTTP.Timeout)
	}
	switch c.Logging.Format {
	case "pretty", "json", "text":
	default:
		return fmt.Errorf("logging.format must be \"pretty\", \"json\" or \"text\", got %q", c.Logging.Format)
	}
	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		return fmt.Errorf("metrics.textfile is required when metrics are enabled")
	}
	return nil
}

package config

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration. File values live in
// baseDir/config.json; environment variables override the file.
type Config struct {
	// LogLevel is the zerolog level name: trace, debug, info, warn, error.
	LogLevel string `json:"log_level,omitempty"`

	// LogFormat selects "json" or "text" log output.
	LogFormat string `json:"log_format,omitempty"`

	// FetchTimeoutMS bounds one change-page fetch, in milliseconds.
	FetchTimeoutMS int `json:"fetch_timeout_ms,omitempty"`

	// APITimeoutMS bounds one Jira API round trip, in milliseconds.
	APITimeoutMS int `json:"api_timeout_ms,omitempty"`

	// RetryTimeoutMS bounds the extraction retry window, in milliseconds.
	// Pages render their content progressively; extraction polls until this
	// deadline before settling for a best-effort result.
	RetryTimeoutMS int `json:"retry_timeout_ms,omitempty"`

	// WebAddr is the listen address for the preview server (gjira serve).
	WebAddr string `json:"web_addr,omitempty"`

	// DisabledTools is a list of MCP tool names to exclude from registration.
	// Unknown tool names are logged as warnings.
	DisabledTools []string `json:"disabled_tools,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		LogLevel:       "info",
		LogFormat:      "json",
		FetchTimeoutMS: 10000,
		APITimeoutMS:   15000,
		RetryTimeoutMS: 1800,
		WebAddr:        "127.0.0.1:8747",
	}
}

// BaseDir returns the application data directory: $GJIRA_HOME if set,
// otherwise ~/.gjira.
func BaseDir() (string, error) {
	if dir := os.Getenv("GJIRA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".gjira"), nil
}

// Load loads configuration from baseDir/config.json and applies environment
// overrides. A .env file in the working directory is read first if present.
// Returns default config if the file doesn't exist.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.gjira.
func Load(baseDir string) (*Config, error) {
	_ = godotenv.Load(".env")

	cfg, err := loadFile(filepath.Join(baseDir, "config.json"))
	if err != nil {
		return nil, err
	}
	cfg.applyEnv()
	return cfg, nil
}

// loadFileRaw loads configuration from a specific file path.
// Returns zero-valued config if the file doesn't exist (not defaults).
func loadFileRaw(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile loads configuration from a specific file path.
// Returns default config if the file doesn't exist.
func loadFile(configPath string) (*Config, error) {
	cfg, err := loadFileRaw(configPath)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), cfg), nil
}

// applyEnv overrides file values with GJIRA_* environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("GJIRA_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("GJIRA_LOG_FORMAT"); v != "" {
		c.LogFormat = v
	}
	if v := os.Getenv("GJIRA_WEB_ADDR"); v != "" {
		c.WebAddr = v
	}
	if d, ok := envDuration("GJIRA_FETCH_TIMEOUT"); ok {
		c.FetchTimeoutMS = int(d / time.Millisecond)
	}
	if d, ok := envDuration("GJIRA_API_TIMEOUT"); ok {
		c.APITimeoutMS = int(d / time.Millisecond)
	}
	if d, ok := envDuration("GJIRA_RETRY_TIMEOUT"); ok {
		c.RetryTimeoutMS = int(d / time.Millisecond)
	}
}

// envDuration parses a Go duration string from the environment. Malformed
// values are ignored rather than failing startup.
func envDuration(key string) (time.Duration, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// FetchTimeout returns the page-fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}

// APITimeout returns the Jira round-trip timeout as a duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.APITimeoutMS) * time.Millisecond
}

// RetryTimeout returns the extraction retry window as a duration.
func (c *Config) RetryTimeout() time.Duration {
	return time.Duration(c.RetryTimeoutMS) * time.Millisecond
}

// Merge combines base and overlay configs.
// Overlay values take precedence for scalars; arrays are merged and deduplicated.
func Merge(base, overlay *Config) *Config {
	result := &Config{}

	result.LogLevel = overlay.LogLevel
	if result.LogLevel == "" {
		result.LogLevel = base.LogLevel
	}

	result.LogFormat = overlay.LogFormat
	if result.LogFormat == "" {
		result.LogFormat = base.LogFormat
	}

	result.WebAddr = overlay.WebAddr
	if result.WebAddr == "" {
		result.WebAddr = base.WebAddr
	}

	result.FetchTimeoutMS = overlay.FetchTimeoutMS
	if result.FetchTimeoutMS == 0 {
		result.FetchTimeoutMS = base.FetchTimeoutMS
	}

	result.APITimeoutMS = overlay.APITimeoutMS
	if result.APITimeoutMS == 0 {
		result.APITimeoutMS = base.APITimeoutMS
	}

	result.RetryTimeoutMS = overlay.RetryTimeoutMS
	if result.RetryTimeoutMS == 0 {
		result.RetryTimeoutMS = base.RetryTimeoutMS
	}

	result.DisabledTools = mergeStringSlice(base.DisabledTools, overlay.DisabledTools)

	return result
}

// mergeStringSlice combines two slices, trims whitespace, and removes duplicates.
func mergeStringSlice(a, b []string) []string {
	seen := make(map[string]bool)
	result := make([]string, 0, len(a)+len(b))

	for _, s := range a {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}
	for _, s := range b {
		s = strings.TrimSpace(s)
		if s != "" && !seen[s] {
			seen[s] = true
			result = append(result, s)
		}
	}

	if len(result) == 0 {
		return nil
	}
	return result
}

// Package config provides configuration loading and validation for the CLI
// and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jonathan/resume-pipeline/internal/sources"
	"github.com/jonathan/resume-pipeline/internal/storage"
)

// Config represents the pipeline configuration that can be loaded from a
// JSON file. All fields are optional; missing values use defaults or must be
// provided via CLI flags.
type Config struct {
	// Source references
	ProfileURL   string `json:"profile_url,omitempty"`   // Code-hosting profile URL
	PortfolioURL string `json:"portfolio_url,omitempty"` // Portfolio site URL
	PostingFile  string `json:"posting_file,omitempty"`  // Path to job posting text file
	PostingText  string `json:"posting_text,omitempty"`  // Inline job posting text
	ResumeFile   string `json:"resume_file,omitempty"`   // Path to a prior resume (pdf, docx, txt, md)
	Additions    string `json:"additions,omitempty"`     // Extra candidate-supplied facts

	// Behavior
	APIKey                string `json:"api_key,omitempty"`                 // Gemini API key
	UseBrowser            bool   `json:"use_browser,omitempty"`             // Render portfolio sites with a headless browser
	Verbose               bool   `json:"verbose,omitempty"`                 // Print detailed progress information
	CollectTimeoutSeconds int    `json:"collect_timeout_seconds,omitempty"` // Budget for the collection phase
	RetryAttempts         int    `json:"retry_attempts,omitempty"`          // Per-adapter attempt budget
	RetryBackoffMS        int    `json:"retry_backoff_ms,omitempty"`        // Initial backoff between attempts

	// Services
	DatabaseURL string         `json:"database_url,omitempty"` // PostgreSQL connection URL
	ServerAddr  string         `json:"server_addr,omitempty"`  // Listen address for serve mode
	Storage     storage.Config `json:"storage,omitempty"`      // Object store for uploaded resumes
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.PostingFile != "" && c.PostingText != "" {
		return fmt.Errorf("config error: 'posting_file' and 'posting_text' are mutually exclusive")
	}

	if c.CollectTimeoutSeconds < 0 {
		return fmt.Errorf("config error: 'collect_timeout_seconds' must be non-negative")
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("config error: 'retry_attempts' must be non-negative")
	}
	if c.RetryBackoffMS < 0 {
		return fmt.Errorf("config error: 'retry_backoff_ms' must be non-negative")
	}

	if c.PostingFile != "" {
		if _, err := os.Stat(c.PostingFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: posting file not found: %s", c.PostingFile)
		}
	}
	if c.ResumeFile != "" {
		if _, err := os.Stat(c.ResumeFile); os.IsNotExist(err) {
			return fmt.Errorf("config error: resume file not found: %s", c.ResumeFile)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from
// defaults. This is used to apply config file values as defaults for CLI
// flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.ProfileURL == "" {
		result.ProfileURL = defaults.ProfileURL
	}
	if result.PortfolioURL == "" {
		result.PortfolioURL = defaults.PortfolioURL
	}
	if result.PostingFile == "" {
		result.PostingFile = defaults.PostingFile
	}
	if result.PostingText == "" {
		result.PostingText = defaults.PostingText
	}
	if result.ResumeFile == "" {
		result.ResumeFile = defaults.ResumeFile
	}
	if result.Additions == "" {
		result.Additions = defaults.Additions
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.ServerAddr == "" {
		result.ServerAddr = defaults.ServerAddr
	}
	if !result.Storage.Configured() {
		result.Storage = defaults.Storage
	}

	if result.RetryAttempts == 0 {
		result.RetryAttempts = defaults.RetryAttempts
	}
	if result.RetryBackoffMS == 0 {
		result.RetryBackoffMS = defaults.RetryBackoffMS
	}
	if result.CollectTimeoutSeconds == 0 {
		if defaults.CollectTimeoutSeconds > 0 {
			result.CollectTimeoutSeconds = defaults.CollectTimeoutSeconds
		} else {
			result.CollectTimeoutSeconds = 120 // Default collection budget
		}
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// CollectTimeout converts the configured budget to a duration.
func (c *Config) CollectTimeout() time.Duration {
	return time.Duration(c.CollectTimeoutSeconds) * time.Second
}

// RetryPolicy builds the per-adapter retry policy, falling back to the
// package default when unconfigured.
func (c *Config) RetryPolicy() sources.RetryPolicy {
	policy := sources.DefaultRetryPolicy()
	if c.RetryAttempts > 0 {
		policy.MaxAttempts = c.RetryAttempts
	}
	if c.RetryBackoffMS > 0 {
		policy.Backoff = time.Duration(c.RetryBackoffMS) * time.Millisecond
	}
	return policy
}

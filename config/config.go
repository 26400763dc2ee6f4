// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the master configuration for the Keyfob client.
type Config struct {
	// ServerURL is the auth service origin.
	// Default: http://localhost:8000
	ServerURL string `yaml:"server_url"`

	// StateDir is where the persisted session entries live.
	// Supports ${HOME} and ${VAR:-default} expansion.
	// Default: ${HOME}/.local/state/keyfob
	StateDir string `yaml:"state_dir"`

	// CodeLength is the width of the one-time code.
	// Default: 6
	CodeLength int `yaml:"code_length"`

	// CodeTTLSeconds is the client-side validity window shown for an
	// emailed code. The server remains authoritative; this drives the
	// countdown only.
	// Default: 120
	CodeTTLSeconds int `yaml:"code_ttl_seconds"`

	// ResendCooldownSeconds gates how soon a new code may be
	// requested for the same attempt.
	// Default: 60
	ResendCooldownSeconds int `yaml:"resend_cooldown_seconds"`

	// LowTimeThresholdSeconds is the remaining-time boundary below
	// which the countdown renders as urgent.
	// Default: 30
	LowTimeThresholdSeconds int `yaml:"low_time_threshold_seconds"`

	// RequestTimeoutSeconds bounds each network call.
	// Default: 15
	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
}

// Default returns the development defaults. These are the base that a
// loaded file merges over, and the whole configuration when no file is
// given.
func Default() *Config {
	return &Config{
		ServerURL:               "http://localhost:8000",
		StateDir:                "${HOME}/.local/state/keyfob",
		CodeLength:              6,
		CodeTTLSeconds:          120,
		ResendCooldownSeconds:   60,
		LowTimeThresholdSeconds: 30,
		RequestTimeoutSeconds:   15,
	}
}

// Load loads configuration from the file named by the KEYFOB_CONFIG
// environment variable. If the variable is unset, the defaults are
// returned as-is — the client is usable with zero configuration
// against a local service.
func Load() (*Config, error) {
	configPath := os.Getenv("KEYFOB_CONFIG")
	if configPath == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, cfg.Validate()
	}
	return LoadFile(configPath)
}

// LoadFile loads configuration from a specific file path. The file is
// the single source of truth; environment variables do not override
// its values. The only expansion performed is ${HOME} and similar
// patterns in StateDir.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}

	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the client cannot run
// with.
func (c *Config) Validate() error {
	if c.ServerURL == "" {
		return fmt.Errorf("server_url is required")
	}
	if _, err := url.Parse(c.ServerURL); err != nil {
		return fmt.Errorf("invalid server_url %q: %w", c.ServerURL, err)
	}
	if c.StateDir == "" {
		return fmt.Errorf("state_dir is required")
	}
	if c.CodeLength < 4 || c.CodeLength > 10 {
		return fmt.Errorf("code_length %d out of range [4,10]", c.CodeLength)
	}
	if c.CodeTTLSeconds <= 0 {
		return fmt.Errorf("code_ttl_seconds must be positive")
	}
	if c.ResendCooldownSeconds <= 0 {
		return fmt.Errorf("resend_cooldown_seconds must be positive")
	}
	if c.LowTimeThresholdSeconds < 0 || c.LowTimeThresholdSeconds >= c.CodeTTLSeconds {
		return fmt.Errorf("low_time_threshold_seconds %d must be in [0, code_ttl_seconds)", c.LowTimeThresholdSeconds)
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive")
	}
	return nil
}

// RequestTimeout returns the per-call network budget as a Duration.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSeconds) * time.Second
}

// variablePattern matches ${VAR} and ${VAR:-default}.
var variablePattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandVariables expands ${HOME}-style references in StateDir so the
// default config is portable across accounts.
func (c *Config) expandVariables() {
	c.StateDir = expand(c.StateDir)
}

func expand(value string) string {
	expanded := variablePattern.ReplaceAllStringFunc(value, func(match string) string {
		groups := variablePattern.FindStringSubmatch(match)
		if env, ok := os.LookupEnv(groups[1]); ok {
			return env
		}
		return groups[2]
	})
	return filepath.Clean(expanded)
}

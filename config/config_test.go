// Copyright 2026 The Keyfob Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.expandVariables()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.CodeLength != 6 || cfg.CodeTTLSeconds != 120 || cfg.ResendCooldownSeconds != 60 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.RequestTimeout() != 15*time.Second {
		t.Errorf("RequestTimeout = %v", cfg.RequestTimeout())
	}
}

func TestLoadFileMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keyfob.yaml")
	content := "server_url: https://auth.example.com\ncode_ttl_seconds: 300\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.ServerURL != "https://auth.example.com" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if cfg.CodeTTLSeconds != 300 {
		t.Errorf("CodeTTLSeconds = %d", cfg.CodeTTLSeconds)
	}
	// Unspecified fields keep their defaults.
	if cfg.CodeLength != 6 {
		t.Errorf("CodeLength = %d, want default 6", cfg.CodeLength)
	}
}

func TestLoadFileRejectsBadValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{"zero ttl", "code_ttl_seconds: 0\n", "code_ttl_seconds"},
		{"code too short", "code_length: 2\n", "code_length"},
		{"threshold above ttl", "code_ttl_seconds: 30\nlow_time_threshold_seconds: 40\n", "low_time_threshold_seconds"},
		{"not yaml", ": : :\n", "parsing"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "keyfob.yaml")
			if err := os.WriteFile(path, []byte(test.content), 0600); err != nil {
				t.Fatalf("writing config: %v", err)
			}
			_, err := LoadFile(path)
			if err == nil || !strings.Contains(err.Error(), test.wantErr) {
				t.Errorf("error = %v, want mention of %q", err, test.wantErr)
			}
		})
	}
}

func TestExpandVariables(t *testing.T) {
	t.Setenv("KEYFOB_TEST_ROOT", "/srv/keyfob")

	cfg := Default()
	cfg.StateDir = "${KEYFOB_TEST_ROOT}/state"
	cfg.expandVariables()
	if cfg.StateDir != "/srv/keyfob/state" {
		t.Errorf("StateDir = %q", cfg.StateDir)
	}

	cfg.StateDir = "${KEYFOB_TEST_UNSET:-/tmp/fallback}/state"
	cfg.expandVariables()
	if cfg.StateDir != "/tmp/fallback/state" {
		t.Errorf("StateDir with default = %q", cfg.StateDir)
	}
}

func TestLoadWithoutEnvUsesDefaults(t *testing.T) {
	t.Setenv("KEYFOB_CONFIG", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ServerURL != "http://localhost:8000" {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if strings.Contains(cfg.StateDir, "${") {
		t.Errorf("StateDir not expanded: %q", cfg.StateDir)
	}
}

// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func defaults() map[string]any {
	return map[string]any{
		"validator.base_url":        "https://openrouter.ai/api/v1",
		"validator.timeout_seconds": 15,
		"database.type":             "sqlite",
		"database.dsn":              "./audit.db",
		"language":                  "en",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	got, err := LoadConfig[Config](&cobra.Command{}, defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Validator.BaseURL != "https://openrouter.ai/api/v1" {
		t.Fatalf("unexpected base url: %q", got.Validator.BaseURL)
	}
	if got.Validator.TimeoutSeconds != 15 {
		t.Fatalf("unexpected timeout: %d", got.Validator.TimeoutSeconds)
	}
	if got.Database.Type != "sqlite" {
		t.Fatalf("unexpected database type: %q", got.Database.Type)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PINVAULT_VALIDATOR_BASE_URL", "http://localhost:9999/api")
	t.Setenv("PINVAULT_LANGUAGE", "ru")

	got, err := LoadConfig[Config](&cobra.Command{}, defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Validator.BaseURL != "http://localhost:9999/api" {
		t.Fatalf("env override not applied, got %q", got.Validator.BaseURL)
	}
	if got.Language != "ru" {
		t.Fatalf("expected ru from env, got %q", got.Language)
	}
}

func TestLoadConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("PINVAULT_LANGUAGE", "ru")

	cmd := &cobra.Command{}
	cmd.Flags().String("language", "", "language")
	if err := cmd.Flags().Set("language", "de"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	got, err := LoadConfig[Config](cmd, defaults(), nil)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Language != "de" {
		t.Fatalf("expected de from flag (not ru from env), got %q", got.Language)
	}
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	file := filepath.Join(t.TempDir(), "custom.yaml")
	body := "validator:\n  base_url: http://files.example/api\nlanguage: de\n"
	if err := os.WriteFile(file, []byte(body), 0o600); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	got, err := LoadConfig[Config](&cobra.Command{}, defaults(), &file)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if got.Validator.BaseURL != "http://files.example/api" {
		t.Fatalf("file value not applied, got %q", got.Validator.BaseURL)
	}
	if got.Language != "de" {
		t.Fatalf("expected de from file, got %q", got.Language)
	}
}

func TestWriteConfigFile_RoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	c := Config{Language: "ru"}
	c.Validator.BaseURL = "http://w.example/api"
	c.Database.Type = "sqlite"
	if err := WriteConfigFile(&c, false); err != nil {
		t.Fatalf("WriteConfigFile failed: %v", err)
	}

	path, err := getConfigPath(false)
	if err != nil {
		t.Fatalf("getConfigPath failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	for _, want := range []string{"base_url: http://w.example/api", "language: ru"} {
		if !strings.Contains(string(data), want) {
			t.Fatalf("written config missing %q:\n%s", want, data)
		}
	}
}

// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package cli

import (
	"io"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/toeirei/pinvault/internal/config"
)

// isolate points every persistence path at temp directories and resets the
// package-level state the commands share.
func isolate(t *testing.T) {
	t.Helper()
	tmp := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmp, "config"))
	t.Setenv("PINVAULT_VAULT_PATH", filepath.Join(tmp, "vault.json"))
	t.Setenv("PINVAULT_DATABASE_DSN", filepath.Join(tmp, "audit.db"))
	auditStore = nil
	t.Cleanup(func() {
		if auditStore != nil {
			_ = auditStore.Close()
			auditStore = nil
		}
	})
}

// runCommand executes the root command with args and captures stdout.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe failed: %v", err)
	}
	os.Stdout = w

	cmd := NewRootCmd()
	cmd.SetArgs(args)
	execErr := cmd.Execute()

	_ = w.Close()
	os.Stdout = old
	out, _ := io.ReadAll(r)
	return string(out), execErr
}

func TestRootCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := NewRootCmd()
	want := []string{"setup", "unlock", "run", "status", "reset", "audit", "version"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("missing subcommand %q", name)
		}
	}
}

func TestVersionCmd_PrintsVersion(t *testing.T) {
	isolate(t)
	out, err := runCommand(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "pinvault") {
		t.Fatalf("unexpected version output: %q", out)
	}
}

func TestStatusCmd_EmptyVault(t *testing.T) {
	isolate(t)
	out, err := runCommand(t, "status")
	if err != nil {
		t.Fatalf("status command failed: %v", err)
	}
	if !strings.Contains(out, "Vault empty") {
		t.Fatalf("expected empty-vault status, got %q", out)
	}
}

func TestResetCmd_WithYesFlagOnEmptyVault(t *testing.T) {
	isolate(t)
	out, err := runCommand(t, "reset", "--yes")
	if err != nil {
		t.Fatalf("reset command failed: %v", err)
	}
	if !strings.Contains(out, "Credentials cleared") {
		t.Fatalf("expected reset confirmation, got %q", out)
	}
}

func TestSetup_WritesDefaultConfigOnFirstRun(t *testing.T) {
	isolate(t)
	if _, err := runCommand(t, "version"); err != nil {
		t.Fatalf("version command failed: %v", err)
	}

	path, err := config.UserConfigFile()
	if err != nil {
		t.Fatalf("UserConfigFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("default config not written on first run: %v", err)
	}
	if !strings.Contains(string(data), "base_url:") {
		t.Fatalf("written config missing validator settings:\n%s", data)
	}
}

func TestConfigDefaults_CoverAllKeys(t *testing.T) {
	d := configDefaults()
	for _, key := range []string{
		"validator.base_url", "validator.timeout_seconds",
		"database.type", "database.dsn", "language", "vault_path", "debug",
	} {
		if _, ok := d[key]; !ok {
			t.Fatalf("missing default for %q", key)
		}
	}
}

func TestResolveBuildVersion_LinkerValueWins(t *testing.T) {
	orig := version
	defer func() { version = orig }()
	version = "v2.0.0"

	info := &debug.BuildInfo{Main: debug.Module{Version: "v1.0.0"}}
	v, _, _ := resolveBuildVersion(info)
	if v != "v2.0.0" {
		t.Fatalf("expected linker version, got %s", v)
	}
}

func TestResolveBuildVersion_BuildInfoFallback(t *testing.T) {
	info := &debug.BuildInfo{Main: debug.Module{Version: "v1.2.3"}}
	v, _, _ := resolveBuildVersion(info)
	if v != "v1.2.3" {
		t.Fatalf("expected build info fallback, got %s", v)
	}
}

func TestReadSecret_PipedInput(t *testing.T) {
	old := os.Stdin
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe failed: %v", err)
	}
	os.Stdin = r
	defer func() { os.Stdin = old }()

	go func() {
		_, _ = w.WriteString("sk-piped\n")
		_ = w.Close()
	}()

	got, err := readSecret("key: ")
	if err != nil {
		t.Fatalf("readSecret failed: %v", err)
	}
	if got != "sk-piped" {
		t.Fatalf("expected sk-piped, got %q", got)
	}
}

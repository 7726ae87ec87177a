// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// main.go sets up the command-line interface for Pinvault using the Cobra
// library: the root command (TUI login), the non-interactive vault
// commands, and the audit trail commands.

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/spf13/cobra"

	"github.com/toeirei/pinvault/internal/config"
	"github.com/toeirei/pinvault/internal/db"
	"github.com/toeirei/pinvault/internal/gate"
	"github.com/toeirei/pinvault/internal/i18n"
	"github.com/toeirei/pinvault/internal/logging"
	"github.com/toeirei/pinvault/internal/model"
	"github.com/toeirei/pinvault/internal/tui"
	"github.com/toeirei/pinvault/internal/validator"
	"github.com/toeirei/pinvault/internal/vault"
)

var version = "dev"   // set by the linker
var gitCommit = "dev" // set at build time with the short commit SHA
var buildDate = ""    // set at build time (RFC3339)

var cfgFile string
var appConfig config.Config

// auditStore is opened once per invocation; nil when the backend is
// unreachable (auth still works, events are just not recorded).
var auditStore *db.AuditStore

func configDefaults() map[string]any {
	auditDSN := "./pinvault-audit.db"
	if base, err := os.UserConfigDir(); err == nil {
		auditDSN = filepath.Join(base, "pinvault", "audit.db")
	}
	return map[string]any{
		"validator.base_url":        validator.DefaultBaseURL,
		"validator.timeout_seconds": 15,
		"database.type":             "sqlite",
		"database.dsn":              auditDSN,
		"language":                  "en",
		"vault_path":                "",
		"debug":                     false,
	}
}

// setupServices loads configuration and initializes i18n and logging for
// the invoked command.
func setupServices(cmd *cobra.Command, _ []string) error {
	var optionalConfigPath *string
	if cfgFile != "" {
		optionalConfigPath = &cfgFile
	}

	var err error
	appConfig, err = config.LoadConfig[config.Config](cmd, configDefaults(), optionalConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logging.SetDebug(appConfig.Debug)
	i18n.Init(appConfig.Language)

	// First run: persist the resolved defaults so users have a file to edit.
	// Skipped when an explicit --config path is given.
	if cfgFile == "" {
		ensureUserConfigFile()
	}
	return nil
}

// ensureUserConfigFile writes the current configuration to the per-user
// config path if no file exists there yet. Failures are logged and
// tolerated; a read-only home must not break the CLI.
func ensureUserConfigFile() {
	path, err := config.UserConfigFile()
	if err != nil {
		return
	}
	if _, err := os.Stat(path); err == nil || !os.IsNotExist(err) {
		return
	}
	if err := config.WriteConfigFile(&appConfig, false); err != nil {
		logging.Warnf("could not write default config file: %v", err)
		return
	}
	logging.Debugf("wrote default config to %s", path)
}

// openAudit opens the audit backend once. Failures are logged and tolerated.
func openAudit() *db.AuditStore {
	if auditStore != nil {
		return auditStore
	}
	if appConfig.Database.Type == "sqlite" {
		// The default sqlite DSN lives next to the vault file.
		if err := os.MkdirAll(filepath.Dir(appConfig.Database.Dsn), 0o700); err != nil {
			logging.Warnf("could not create audit directory: %v", err)
			return nil
		}
	}
	s, err := db.New(appConfig.Database.Type, appConfig.Database.Dsn)
	if err != nil {
		logging.Warnf("audit log unavailable: %v", err)
		return nil
	}
	auditStore = s
	return s
}

// buildGate assembles the auth gate from the configured collaborators.
func buildGate(onUnlock func(string)) *gate.Gate {
	store := vault.New(appConfig.VaultPath)
	v := validator.New(appConfig.Validator.BaseURL,
		time.Duration(appConfig.Validator.TimeoutSeconds)*time.Second)

	opts := gate.Options{OnUnlock: onUnlock}
	if a := openAudit(); a != nil {
		opts.Audit = a
	}
	return gate.New(store, v, opts)
}

// NewRootCmd builds the root command and its tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "pinvault",
		Short: "PIN-gated vault for a provider API key",
		Long: `Pinvault protects a long-lived API key behind a short numeric PIN.
The key is validated once against the provider's balance endpoint; every
later launch only asks for the PIN, fully offline.

Running pinvault without a subcommand starts the interactive login flow.`,
		PersistentPreRunE: setupServices,
		SilenceUsage:      true,
		RunE: func(cmd *cobra.Command, args []string) error {
			g := buildGate(nil)
			if err := tui.Run(g); err != nil {
				return err
			}
			if g.State() == model.StateAuthenticated {
				fmt.Println(i18n.T("login.unlocked"))
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to an explicit config file")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().String("language", "", "UI language (en, ru, de)")

	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(unlockCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(resetCmd)
	rootCmd.AddCommand(newAuditCmd())
	rootCmd.AddCommand(versionCmd)

	return rootCmd
}

// Execute runs the CLI and closes shared resources afterwards.
func Execute() error {
	defer func() {
		if auditStore != nil {
			if err := auditStore.Close(); err != nil {
				logging.Errorf("failed to close audit store: %v", err)
			}
		}
	}()

	return NewRootCmd().Execute()
}

// resolveBuildVersion prefers linker-set values and falls back to module
// build info for `go install` binaries.
func resolveBuildVersion(info *debug.BuildInfo) (string, string, string) {
	v := version
	if v == "dev" && info != nil &&
		info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	return v, gitCommit, buildDate
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		v, commit, date := resolveBuildVersion(info)
		fmt.Printf("pinvault %s (%s)", v, commit)
		if date != "" {
			fmt.Printf(" built %s", date)
		}
		fmt.Println()
	},
}

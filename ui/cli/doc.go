// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Package cli wires the Pinvault command-line interface using Cobra. The
// root command launches the interactive TUI login flow; subcommands cover
// non-interactive setup, unlocking, credential reset, status inspection and
// the audit trail.
package cli

// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// Command-line entrypoint for Pinvault.
//
// Usage:
//
//	go run . [flags]
//	./pinvault [flags]
//
// This launches the Pinvault CLI. See --help for options.
package main

import (
	"log"
	"os"

	"github.com/toeirei/pinvault/ui/cli"
)

// main is the entrypoint for the Pinvault CLI.
func main() {
	if err := cli.Execute(); err != nil {
		log.Printf("Pinvault CLI error: %v", err)
		os.Exit(1)
	}
}

// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

package db

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/toeirei/pinvault/internal/model"
)

// exportEnvelope is the on-disk shape of an audit export.
type exportEnvelope struct {
	Version int               `json:"version"`
	Events  []model.AuthEvent `json:"events"`
}

const exportVersion = 1

// Export writes all events as a zstd-compressed JSON file and returns the
// number of exported events. The credential record itself is never part of
// an export.
func (s *AuditStore) Export(path string) (int, error) {
	events, err := s.List(0)
	if err != nil {
		return 0, err
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("could not create export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zw, err := zstd.NewWriter(file)
	if err != nil {
		return 0, fmt.Errorf("could not create zstd writer: %w", err)
	}

	env := exportEnvelope{Version: exportVersion, Events: events}
	if err := json.NewEncoder(zw).Encode(&env); err != nil {
		_ = zw.Close()
		return 0, fmt.Errorf("could not encode export: %w", err)
	}
	if err := zw.Close(); err != nil {
		return 0, fmt.Errorf("could not finish export: %w", err)
	}
	return len(events), nil
}

// Import reads a zstd-compressed JSON export and appends its events,
// keeping their original timestamps. Returns the number of imported events.
func (s *AuditStore) Import(path string) (int, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("could not open export file: %w", err)
	}
	defer func() { _ = file.Close() }()

	zr, err := zstd.NewReader(file)
	if err != nil {
		return 0, fmt.Errorf("could not create zstd reader: %w", err)
	}
	defer zr.Close()

	var env exportEnvelope
	if err := json.NewDecoder(zr).Decode(&env); err != nil {
		return 0, fmt.Errorf("could not decode json from zstd reader: %w", err)
	}
	if env.Version != exportVersion {
		return 0, fmt.Errorf("unsupported export version %d", env.Version)
	}

	ctx := context.Background()
	for _, ev := range env.Events {
		row := &authEventModel{
			Timestamp: ev.Timestamp,
			Action:    ev.Action,
			Details:   ev.Details,
		}
		if _, err := s.bdb.NewInsert().Model(row).Exec(ctx); err != nil {
			return 0, fmt.Errorf("failed to import auth event: %w", err)
		}
	}
	return len(env.Events), nil
}

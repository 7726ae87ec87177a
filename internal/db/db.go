// Copyright (c) 2026 ToeiRei
// Pinvault - PIN-gated API key vault
// This source code is licensed under the MIT license found in the LICENSE file.

// package db holds the append-only authentication audit trail. Events are
// recorded best-effort: a broken audit backend never blocks the login flow.
// The backend is selected by configuration; sqlite is the default, postgres
// and mysql are available for installations that centralize their logs.
package db // import "github.com/toeirei/pinvault/internal/db"

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/toeirei/pinvault/internal/model"

	_ "github.com/go-sql-driver/mysql" // mysql audit backend
	_ "github.com/jackc/pgx/v5/stdlib" // postgres audit backend
	_ "modernc.org/sqlite"             // sqlite audit backend (default)
)

// authEventModel maps the auth_events table for Bun.
type authEventModel struct {
	bun.BaseModel `bun:"table:auth_events"`
	ID            int       `bun:"id,pk,autoincrement"`
	Timestamp     time.Time `bun:"timestamp,notnull"`
	Action        string    `bun:"action,notnull"`
	Details       string    `bun:"details"`
}

// AuditStore is a bun-backed store for auth events.
type AuditStore struct {
	bdb *bun.DB
}

// New opens the audit database for the given backend type and DSN and
// ensures the schema exists.
func New(dbType, dsn string) (*AuditStore, error) {
	driverName := dbType
	// The pgx stdlib driver registers as "pgx"; map "postgres" to it.
	if dbType == "postgres" {
		driverName = "pgx"
	}
	sqlDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit database: %w", err)
	}

	// A local audit trail sees one writer; keep the pool tiny. In-memory
	// SQLite additionally needs a single connection so the schema stays
	// visible (per-connection in-memory database semantics).
	if dbType == "sqlite" {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	} else {
		sqlDB.SetMaxOpenConns(4)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	bdb := createBunDB(sqlDB, dbType)

	ctx := context.Background()
	if _, err := bdb.NewCreateTable().Model((*authEventModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = bdb.Close()
		return nil, fmt.Errorf("failed to create auth_events table: %w", err)
	}

	return &AuditStore{bdb: bdb}, nil
}

// createBunDB constructs a *bun.DB with the dialect matching dbType.
// Unknown types fall back to sqlite.
func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

// Close releases the underlying database handle.
func (s *AuditStore) Close() error {
	return s.bdb.Close()
}

// Add appends one event. Details must never contain secrets.
func (s *AuditStore) Add(action, details string) error {
	ev := &authEventModel{
		Timestamp: time.Now().UTC(),
		Action:    action,
		Details:   details,
	}
	if _, err := s.bdb.NewInsert().Model(ev).Exec(context.Background()); err != nil {
		return fmt.Errorf("failed to record auth event: %w", err)
	}
	return nil
}

// List returns events newest first. A non-positive limit returns all.
func (s *AuditStore) List(limit int) ([]model.AuthEvent, error) {
	var rows []authEventModel
	q := s.bdb.NewSelect().Model(&rows).Order("timestamp DESC", "id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to list auth events: %w", err)
	}

	out := make([]model.AuthEvent, 0, len(rows))
	for _, r := range rows {
		out = append(out, model.AuthEvent{
			ID:        r.ID,
			Timestamp: r.Timestamp,
			Action:    r.Action,
			Details:   r.Details,
		})
	}
	return out, nil
}

// Count returns the total number of recorded events.
func (s *AuditStore) Count() (int, error) {
	n, err := s.bdb.NewSelect().Model((*authEventModel)(nil)).Count(context.Background())
	if err != nil {
		return 0, fmt.Errorf("failed to count auth events: %w", err)
	}
	return n, nil
}

// Package db provides SQLite storage implementation.
package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/qhdzhm/happy-sub000/internal/rearrange"
)

// SQLite implements rearrange.Store using SQLite. The store keeps a single
// recovery snapshot: every Save overwrites it wholesale and bumps the
// version, so a half-written snapshot can never be mixed with an older one.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite snapshot store and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Save implements rearrange.Store. The previous snapshot is replaced in the
// same transaction that assigns the next version number.
func (s *SQLite) Save(ctx context.Context, snap *rearrange.Snapshot) error {
	payload, err := json.Marshal(snap.Bookings)
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var version int64
	err = tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(version), 0) FROM snapshots`).Scan(&version)
	if err != nil {
		return fmt.Errorf("reading current version: %w", err)
	}
	version++

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clearing previous snapshot: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, version, created_at, payload) VALUES (?, ?, ?, ?)`,
		snap.ID,
		version,
		snap.CreatedAt.Format(time.RFC3339),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("inserting snapshot: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	snap.Version = version
	return nil
}

// Latest implements rearrange.Store. Returns nil without error when no
// snapshot has been saved.
func (s *SQLite) Latest(ctx context.Context) (*rearrange.Snapshot, error) {
	query := `
		SELECT id, version, created_at, payload
		FROM snapshots
		ORDER BY version DESC
		LIMIT 1
	`

	var (
		snap      rearrange.Snapshot
		createdAt string
		payload   string
	)

	err := s.db.QueryRowContext(ctx, query).Scan(&snap.ID, &snap.Version, &createdAt, &payload)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying snapshot: %w", err)
	}

	snap.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created at: %w", err)
	}

	if err := json.Unmarshal([]byte(payload), &snap.Bookings); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	return &snap, nil
}

// Clear implements rearrange.Store.
func (s *SQLite) Clear(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM snapshots`); err != nil {
		return fmt.Errorf("clearing snapshots: %w", err)
	}
	return nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

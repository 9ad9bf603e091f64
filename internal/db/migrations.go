package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS snapshots (
			id         TEXT NOT NULL,
			version    INTEGER NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			payload    TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_snapshots_version ON snapshots(version);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating snapshots table: %w", err)
	}

	return nil
}

package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Runs table - one row per regression batch
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			annotation_file TEXT NOT NULL,
			total INTEGER NOT NULL DEFAULT 0,
			succeeded INTEGER NOT NULL DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Run results table - per-image outcome within a run, in batch order
		`CREATE TABLE IF NOT EXISTS run_results (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			image TEXT NOT NULL,
			success INTEGER NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_run_results_run_id ON run_results(run_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

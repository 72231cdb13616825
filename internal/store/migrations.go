package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one calibration run of a user on a device
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			username TEXT NOT NULL,
			device TEXT NOT NULL,
			created_at DATETIME NOT NULL
		)`,

		// Calibration samples table - fixation trials of a session in capture order
		`CREATE TABLE IF NOT EXISTS calibration_samples (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			sequence INTEGER NOT NULL,
			head_position TEXT NOT NULL DEFAULT '',
			viewing_distance TEXT NOT NULL DEFAULT '',
			target_x REAL NOT NULL,
			target_y REAL NOT NULL,
			gaze_x REAL NOT NULL,
			gaze_y REAL NOT NULL,
			face_transform TEXT NOT NULL,
			captured_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_sessions_user_device ON sessions(username, device, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_calibration_samples_session_id ON calibration_samples(session_id)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}

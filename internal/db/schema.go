package db

import "fmt"

// migrations are applied in order; PRAGMA user_version records how many ran.
var migrations = []string{
	`
-- Activity table
CREATE TABLE IF NOT EXISTS activity (
    id TEXT PRIMARY KEY,
    timestamp DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    action TEXT NOT NULL,
    entity TEXT NOT NULL,
    entity_id TEXT DEFAULT '',
    ok INTEGER NOT NULL DEFAULT 1,
    message TEXT DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity(timestamp);
`,
	`CREATE INDEX IF NOT EXISTS idx_activity_entity ON activity(entity, entity_id);`,
}

// SchemaVersion is the version a fully migrated database reports.
var SchemaVersion = len(migrations)

func (db *DB) version() (int, error) {
	var v int
	if err := db.conn.QueryRow("PRAGMA user_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}

func (db *DB) migrate() error {
	v, err := db.version()
	if err != nil {
		return err
	}
	for i := v; i < len(migrations); i++ {
		tx, err := db.conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", i+1)); err != nil {
			tx.Rollback()
			return fmt.Errorf("set schema version: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

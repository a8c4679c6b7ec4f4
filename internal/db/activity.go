package db

import (
	"fmt"
	"time"

	"github.com/marcus/bastion/internal/events"
	"github.com/marcus/bastion/internal/models"
)

// Record appends an activity entry. ID and Timestamp are filled in when empty.
// Entries whose entity and action are not a known combination are rejected.
func (db *DB) Record(e *models.ActivityEntry) error {
	if err := events.Validate(e.Entity, e.Action); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	if e.ID == "" {
		e.ID = idGenerator()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	_, err := db.conn.Exec(`
		INSERT INTO activity (id, timestamp, action, entity, entity_id, ok, message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Timestamp.UTC(), e.Action, e.Entity, e.EntityID, e.OK, e.Message,
	)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first. A limit below 1 means 50.
func (db *DB) Recent(limit int) ([]models.ActivityEntry, error) {
	if limit < 1 {
		limit = 50
	}
	rows, err := db.conn.Query(`
		SELECT id, timestamp, action, entity, entity_id, ok, message
		FROM activity
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Entity, &e.EntityID, &e.OK, &e.Message); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// ForEntity returns the entries for one entity, newest first.
func (db *DB) ForEntity(entity, entityID string) ([]models.ActivityEntry, error) {
	rows, err := db.conn.Query(`
		SELECT id, timestamp, action, entity, entity_id, ok, message
		FROM activity
		WHERE entity = ? AND entity_id = ?
		ORDER BY timestamp DESC, rowid DESC`, entity, entityID)
	if err != nil {
		return nil, fmt.Errorf("query activity: %w", err)
	}
	defer rows.Close()

	var out []models.ActivityEntry
	for rows.Next() {
		var e models.ActivityEntry
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Action, &e.Entity, &e.EntityID, &e.OK, &e.Message); err != nil {
			return nil, fmt.Errorf("scan activity: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Prune deletes entries older than cutoff and returns how many were removed.
func (db *DB) Prune(cutoff time.Time) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM activity WHERE timestamp < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune activity: %w", err)
	}
	return res.RowsAffected()
}

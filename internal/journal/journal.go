// Package journal keeps a local append-only record of admin actions so an
// operator can audit what the desk did against the backend.
package journal

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mediadesk/internal/models"

	_ "github.com/mattn/go-sqlite3"
)

type Journal struct {
	db *sql.DB
}

// Open opens (creating if needed) the journal database at path.
func Open(path string) (*Journal, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open journal database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to journal database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Journal{db: db}, nil
}

func createTables(db *sql.DB) error {
	query := `CREATE TABLE IF NOT EXISTS actions (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        action TEXT NOT NULL,
        booking_id INTEGER NOT NULL DEFAULT 0,
        actor_id INTEGER NOT NULL DEFAULT 0,
        outcome TEXT NOT NULL,
        detail TEXT,
        created_at TIMESTAMP NOT NULL
    )`
	if _, err := db.Exec(query); err != nil {
		return err
	}

	_, err := db.Exec(`CREATE INDEX IF NOT EXISTS idx_actions_created_at ON actions(created_at)`)
	return err
}

// Record appends one entry. CreatedAt defaults to now when unset.
func (j *Journal) Record(ctx context.Context, entry models.JournalEntry) error {
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	_, err := j.db.ExecContext(ctx,
		`INSERT INTO actions (action, booking_id, actor_id, outcome, detail, created_at)
         VALUES (?, ?, ?, ?, ?, ?)`,
		entry.Action, entry.BookingID, entry.ActorID, entry.Outcome, entry.Detail, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record action: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := j.db.QueryContext(ctx,
		`SELECT id, action, booking_id, actor_id, outcome, COALESCE(detail, ''), created_at
         FROM actions ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query actions: %w", err)
	}
	defer rows.Close()

	var entries []models.JournalEntry
	for rows.Next() {
		var e models.JournalEntry
		if err := rows.Scan(&e.ID, &e.Action, &e.BookingID, &e.ActorID, &e.Outcome, &e.Detail, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan action: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

func (j *Journal) Close() error {
	return j.db.Close()
}

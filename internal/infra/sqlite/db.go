// Package sqlite provides SQLite-based persistent storage for sheep
// accounts, sleep sessions and achievements.
// Uses WAL mode for concurrent reads and crash-safe writes.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"github.com/sleepsheep/sheep/internal/domain"
)

var _ domain.Store = (*DB)(nil)

// DB wraps a SQLite connection with WAL mode and migrations.
type DB struct {
	db *sql.DB
}

// Open creates or opens the SQLite database at dir/sheep.db.
// Enables WAL mode, foreign keys, and 5-second busy timeout.
func Open(dir string) (*DB, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	dbPath := filepath.Join(dir, "sheep.db")
	dsn := dbPath + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// SQLite is single-writer
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	d := &DB{db: db}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return d, nil
}

// Close cleanly shuts down the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Ping checks database connectivity.
func (d *DB) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// migrate runs idempotent schema migrations.
func (d *DB) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS accounts (
			user_id            TEXT PRIMARY KEY,
			total_points       INTEGER NOT NULL DEFAULT 0,
			current_streak     INTEGER NOT NULL DEFAULT 0,
			longest_streak     INTEGER NOT NULL DEFAULT 0,
			streak_start_date  TEXT NOT NULL DEFAULT '',
			last_sleep_date    TEXT NOT NULL DEFAULT '',
			streak_active      BOOLEAN NOT NULL DEFAULT 0,
			stage              TEXT NOT NULL DEFAULT 'baby',
			mood               TEXT NOT NULL DEFAULT 'happy',
			revived            BOOLEAN NOT NULL DEFAULT 0,
			sessions_completed INTEGER NOT NULL DEFAULT 0,
			deaths             INTEGER NOT NULL DEFAULT 0,
			updated_at         INTEGER NOT NULL
		)`,

		`CREATE TABLE IF NOT EXISTS user_settings (
			user_id              TEXT PRIMARY KEY,
			bedtime_target       TEXT NOT NULL,
			wake_time_target     TEXT NOT NULL,
			notification_enabled BOOLEAN NOT NULL DEFAULT 1,
			check_in_interval    INTEGER NOT NULL DEFAULT 30
		)`,

		`CREATE TABLE IF NOT EXISTS sleep_sessions (
			id               TEXT PRIMARY KEY,
			user_id          TEXT NOT NULL,
			bedtime          INTEGER NOT NULL,
			wake_time        INTEGER,
			sleep_date       TEXT NOT NULL,
			check_ins_missed INTEGER NOT NULL DEFAULT 0,
			snooze_count     INTEGER NOT NULL DEFAULT 0,
			points_earned    INTEGER NOT NULL DEFAULT 0,
			created_at       INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_bedtime ON sleep_sessions(user_id, bedtime)`,

		`CREATE TABLE IF NOT EXISTS achievements (
			user_id     TEXT NOT NULL,
			id          TEXT NOT NULL,
			unlocked_at INTEGER NOT NULL,
			PRIMARY KEY (user_id, id)
		)`,
	}

	for _, m := range migrations {
		if _, err := d.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\nSQL: %s", err, m)
		}
	}
	return nil
}

// ─── Helpers ────────────────────────────────────────────────────────────────

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func nullableMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}

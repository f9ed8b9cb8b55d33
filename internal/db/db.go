package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jthurman/gmtrack/internal/config"
	_ "modernc.org/sqlite"
)

// CurrentSchemaVersion is the latest schema version.
// Bump this when adding migrations.
const CurrentSchemaVersion = 1

// DBTX is satisfied by both *sql.DB and *sql.Tx, so queries can run inside or
// outside a transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Init initializes the SQLite database at baseDir/gmtrack.db.
// The baseDir parameter allows tests to use t.TempDir() instead of ~/.gmtrack.
func Init(baseDir string) (*sql.DB, error) {
	// Create base directory with restricted permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	// Explicit chmod (best-effort, may not work on all platforms)
	_ = os.Chmod(baseDir, 0700)

	// Create backups subdirectory
	backupsDir := filepath.Join(baseDir, "backups")
	if err := os.MkdirAll(backupsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create backups directory: %w", err)
	}
	_ = os.Chmod(backupsDir, 0700)

	// Open database with pragmas in connection string (applies to all connections).
	// foreign_keys is required for campaign cascade deletes.
	dbPath := filepath.Join(baseDir, "gmtrack.db")
	dsn := dbPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Verify WAL mode is active
	if err := verifyWALMode(db); err != nil {
		db.Close()
		return nil, err
	}

	// Run migrations (this creates the file if it doesn't exist)
	if err := migrate(db); err != nil {
		db.Close()
		return nil, err
	}

	// Set file permissions after file exists (best-effort)
	_ = os.Chmod(dbPath, 0600)

	return db, nil
}

// ConfigurePool applies connection pool settings from config.
// Only sets limits if explicitly configured (non-zero values).
// Call after Init if you need to tune pool behavior for contention.
func ConfigurePool(db *sql.DB, cfg *config.Config) {
	if cfg == nil {
		return
	}
	if cfg.DBMaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	}
	if cfg.DBMaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.DBMaxIdleConns)
	}
}

// migrate applies schema migrations based on user_version.
func migrate(db *sql.DB) error {
	version, err := GetUserVersion(db)
	if err != nil {
		return err
	}

	// Migration 0 -> 1: Initial schema (v1)
	if version < 1 {
		schema := `
		CREATE TABLE IF NOT EXISTS campaigns (
		  id         TEXT PRIMARY KEY,
		  name       TEXT NOT NULL,
		  active     INTEGER NOT NULL DEFAULT 0,
		  created_at INTEGER NOT NULL
		);

		CREATE TABLE IF NOT EXISTS characters (
		  id              TEXT PRIMARY KEY,
		  campaign_id     TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		  name            TEXT NOT NULL,
		  type            TEXT NOT NULL DEFAULT 'PLAYER',
		  race            TEXT,
		  class           TEXT,
		  level           INTEGER NOT NULL DEFAULT 1,
		  hp              INTEGER NOT NULL,
		  max_hp          INTEGER NOT NULL,
		  armor_class     INTEGER NOT NULL DEFAULT 10,
		  speed           INTEGER NOT NULL DEFAULT 30,
		  initiative      INTEGER NOT NULL DEFAULT 0,
		  initiative_roll INTEGER NOT NULL DEFAULT 0,
		  active_turn     INTEGER NOT NULL DEFAULT 0,
		  conditions      TEXT,
		  inventory       TEXT,
		  attributes      TEXT,
		  image_url       TEXT,
		  source_id       TEXT,
		  created_at      INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_characters_campaign
		ON characters(campaign_id);

		CREATE INDEX IF NOT EXISTS idx_characters_turn_order
		ON characters(campaign_id, initiative_roll DESC, id ASC);

		CREATE TABLE IF NOT EXISTS log_entries (
		  id          TEXT PRIMARY KEY,
		  campaign_id TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		  content     TEXT NOT NULL,
		  type        TEXT NOT NULL DEFAULT 'Story',
		  timestamp   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_log_entries_campaign_ts
		ON log_entries(campaign_id, timestamp DESC);

		CREATE TABLE IF NOT EXISTS encounters (
		  id           TEXT PRIMARY KEY,
		  campaign_id  TEXT NOT NULL REFERENCES campaigns(id) ON DELETE CASCADE,
		  name         TEXT NOT NULL,
		  status       TEXT NOT NULL DEFAULT 'PLANNED',
		  participants TEXT,
		  created_at   INTEGER NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_encounters_campaign
		ON encounters(campaign_id);

		CREATE TABLE IF NOT EXISTS settings (
		  id           INTEGER PRIMARY KEY CHECK (id = 1),
		  auto_backup  INTEGER NOT NULL DEFAULT 0,
		  backup_count INTEGER NOT NULL DEFAULT 5
		);
		`
		if _, err := db.Exec(schema); err != nil {
			return fmt.Errorf("migration 1 failed: %w", err)
		}
		if err := SetUserVersion(db, 1); err != nil {
			return err
		}
	}

	// Future migrations go here:
	// if version < 2 { ... }

	return nil
}

// verifyWALMode checks that WAL mode is active (set via connection string).
func verifyWALMode(db *sql.DB) error {
	var journalMode string
	if err := db.QueryRow("PRAGMA journal_mode;").Scan(&journalMode); err != nil {
		return fmt.Errorf("failed to verify journal mode: %w", err)
	}
	if journalMode != "wal" {
		return fmt.Errorf("expected WAL mode, got %s", journalMode)
	}
	return nil
}

// GetUserVersion returns the current schema version (user_version pragma).
func GetUserVersion(db *sql.DB) (int, error) {
	var version int
	if err := db.QueryRow("PRAGMA user_version;").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get user_version: %w", err)
	}
	return version, nil
}

// SetUserVersion sets the schema version (user_version pragma).
func SetUserVersion(db *sql.DB, version int) error {
	_, err := db.Exec(fmt.Sprintf("PRAGMA user_version=%d", version))
	if err != nil {
		return fmt.Errorf("failed to set user_version: %w", err)
	}
	return nil
}

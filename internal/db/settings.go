package db

import (
	"context"
	"database/sql"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// GetSettings returns the settings row, or defaults when none has been saved
// yet.
func GetSettings(ctx context.Context, q DBTX) (*game.Settings, error) {
	query := `SELECT auto_backup, backup_count FROM settings WHERE id = 1`
	row := q.QueryRowContext(ctx, query)
	var s game.Settings
	err := row.Scan(&s.AutoBackup, &s.BackupCount)
	if err == sql.ErrNoRows {
		return &game.Settings{AutoBackup: false, BackupCount: game.DefaultBackupCount}, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &s, nil
}

// UpsertSettings writes the singleton settings row.
func UpsertSettings(ctx context.Context, q DBTX, s *game.Settings) error {
	query := `
		INSERT INTO settings (id, auto_backup, backup_count)
		VALUES (1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			auto_backup = excluded.auto_backup,
			backup_count = excluded.backup_count
	`
	if _, err := q.ExecContext(ctx, query, s.AutoBackup, s.BackupCount); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

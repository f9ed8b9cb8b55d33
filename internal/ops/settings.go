package ops

import (
	"context"
	"database/sql"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// SettingsOutput wraps the settings record.
type SettingsOutput struct {
	Settings *game.Settings `json:"settings"`
}

// GetSettings returns the application settings, defaults when none saved.
func GetSettings(ctx context.Context, database *sql.DB, cfg *config.Config) (*SettingsOutput, error) {
	settings, err := db.GetSettings(ctx, database)
	if err != nil {
		return nil, err
	}
	return &SettingsOutput{Settings: settings}, nil
}

// UpdateSettingsInput contains parameters for the UpdateSettings operation.
// Nil fields are left unchanged.
type UpdateSettingsInput struct {
	AutoBackup  *bool
	BackupCount *int
}

// UpdateSettings patches the settings record.
func UpdateSettings(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateSettingsInput) (*SettingsOutput, error) {
	settings, err := db.GetSettings(ctx, database)
	if err != nil {
		return nil, err
	}
	if input.AutoBackup != nil {
		settings.AutoBackup = *input.AutoBackup
	}
	if input.BackupCount != nil {
		if *input.BackupCount < 1 {
			return nil, errors.NewInvalidRequest("backup_count must be at least 1")
		}
		settings.BackupCount = *input.BackupCount
	}
	if err := db.UpsertSettings(ctx, database, settings); err != nil {
		return nil, err
	}
	return &SettingsOutput{Settings: settings}, nil
}

package ops

import (
	"context"
	"testing"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

func TestGetSettings_Defaults(t *testing.T) {
	database, cfg := setupTest(t)

	out, err := GetSettings(context.Background(), database, cfg)
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if out.Settings.AutoBackup {
		t.Error("default AutoBackup = true, want false")
	}
	if out.Settings.BackupCount != game.DefaultBackupCount {
		t.Errorf("default BackupCount = %d, want %d", out.Settings.BackupCount, game.DefaultBackupCount)
	}
}

func TestUpdateSettings_Patch(t *testing.T) {
	database, cfg := setupTest(t)
	ctx := context.Background()

	out, err := UpdateSettings(ctx, database, cfg, UpdateSettingsInput{AutoBackup: boolPtr(true)})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if !out.Settings.AutoBackup {
		t.Error("AutoBackup not updated")
	}
	if out.Settings.BackupCount != game.DefaultBackupCount {
		t.Errorf("untouched BackupCount = %d, want default", out.Settings.BackupCount)
	}

	out, err = UpdateSettings(ctx, database, cfg, UpdateSettingsInput{BackupCount: intPtr(9)})
	if err != nil {
		t.Fatalf("UpdateSettings failed: %v", err)
	}
	if !out.Settings.AutoBackup || out.Settings.BackupCount != 9 {
		t.Errorf("settings = %+v, want AutoBackup=true BackupCount=9", out.Settings)
	}
}

func TestUpdateSettings_InvalidCount(t *testing.T) {
	database, cfg := setupTest(t)
	_, err := UpdateSettings(context.Background(), database, cfg, UpdateSettingsInput{BackupCount: intPtr(0)})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("zero backup_count = %v, want INVALID_REQUEST", err)
	}
}

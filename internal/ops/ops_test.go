package ops

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/game"
)

func setupTest(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("db.Init failed: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.BackupDir = filepath.Join(tmpDir, "backups")
	return database, cfg
}

func stringPtr(s string) *string { return &s }

func intPtr(n int) *int { return &n }

func boolPtr(b bool) *bool { return &b }

// seedCampaign inserts a bare campaign without the starter party.
func seedCampaign(t *testing.T, database *sql.DB, id, name string) {
	t.Helper()
	c := &game.Campaign{ID: id, Name: name, Active: true, CreatedAt: game.Now()}
	if err := db.InsertCampaign(context.Background(), database, c); err != nil {
		t.Fatalf("InsertCampaign failed: %v", err)
	}
}

// seedCharacter inserts a character with the given initiative roll.
func seedCharacter(t *testing.T, database *sql.DB, id, campaignID, name string, roll int) {
	t.Helper()
	c := &game.Character{
		ID:             id,
		CampaignID:     campaignID,
		Name:           name,
		Type:           game.TypePlayer,
		Level:          1,
		HP:             10,
		MaxHP:          10,
		ArmorClass:     12,
		Speed:          30,
		InitiativeRoll: roll,
		CreatedAt:      game.Now(),
	}
	if err := db.InsertCharacter(context.Background(), database, c); err != nil {
		t.Fatalf("InsertCharacter failed: %v", err)
	}
}

func TestCleanOptionalString(t *testing.T) {
	if got := cleanOptionalString(nil); got != nil {
		t.Errorf("cleanOptionalString(nil) = %v, want nil", got)
	}
	if got := cleanOptionalString(stringPtr("  ")); got != nil {
		t.Errorf("cleanOptionalString(blank) = %v, want nil", got)
	}
	if got := cleanOptionalString(stringPtr(" x ")); got == nil || *got != "x" {
		t.Errorf("cleanOptionalString(\" x \") = %v, want x", got)
	}
}

func TestValidateName(t *testing.T) {
	if _, err := validateName("   "); err == nil {
		t.Error("validateName(blank) should fail")
	}
	name, err := validateName("  Strahd  ")
	if err != nil {
		t.Fatalf("validateName failed: %v", err)
	}
	if name != "Strahd" {
		t.Errorf("name = %q, want Strahd", name)
	}
}

func TestGenerateULID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := generateULID()
		if len(id) != 26 {
			t.Fatalf("ULID length = %d, want 26", len(id))
		}
		if seen[id] {
			t.Fatalf("duplicate ULID %s", id)
		}
		seen[id] = true
	}
}

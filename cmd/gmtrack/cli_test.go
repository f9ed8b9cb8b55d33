package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/ops"
)

// setupTest creates a temporary database and config for testing.
func setupTest(t *testing.T) (*sql.DB, *config.Config) {
	t.Helper()
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	if err != nil {
		t.Fatalf("failed to init test db: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.BackupDir = filepath.Join(tmpDir, "backups")
	return database, cfg
}

// runApp runs the CLI with the given args, capturing stdout.
func runApp(t *testing.T, database *sql.DB, cfg *config.Config, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(database, cfg)

	oldStdout := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := app.Run(append([]string{"gmtrack"}, args...))

	w.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	os.Stdout = oldStdout

	return buf.String(), err
}

// TestCLICampaignCreateAndList tests campaign create and list commands.
func TestCLICampaignCreateAndList(t *testing.T) {
	database, cfg := setupTest(t)

	out, err := runApp(t, database, cfg, "campaign", "create", "Storm King")
	if err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	var created ops.CreateCampaignOutput
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if created.Campaign.ID == "" {
		t.Error("expected non-empty campaign ID")
	}
	if !created.Campaign.Active {
		t.Error("new campaign should be active")
	}

	out, err = runApp(t, database, cfg, "campaign", "list")
	if err != nil {
		t.Fatalf("campaign list failed: %v", err)
	}
	if !strings.Contains(out, "Storm King") {
		t.Errorf("expected campaign in list output: %s", out)
	}
}

// TestCLICampaignShow tests that show includes the starter party.
func TestCLICampaignShow(t *testing.T) {
	database, cfg := setupTest(t)

	if _, err := runApp(t, database, cfg, "campaign", "create", "Default Party"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "campaign", "show")
	if err != nil {
		t.Fatalf("campaign show failed: %v", err)
	}

	var detail ops.GetCampaignOutput
	if err := json.Unmarshal([]byte(out), &detail); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if len(detail.Characters) != 2 {
		t.Errorf("expected starter party of 2, got %d", len(detail.Characters))
	}
}

// TestCLICharacterAddHPInitiative tests the character subcommands.
func TestCLICharacterAddHPInitiative(t *testing.T) {
	database, cfg := setupTest(t)

	if _, err := runApp(t, database, cfg, "campaign", "create", "Chars", "--no-party"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "character", "add", "--max-hp=22", "--type=NPC", "Ogre")
	if err != nil {
		t.Fatalf("character add failed: %v", err)
	}
	var added ops.CharacterOutput
	if err := json.Unmarshal([]byte(out), &added); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if added.Character.MaxHP != 22 || added.Character.HP != 22 {
		t.Errorf("hp = %d/%d, want 22/22", added.Character.HP, added.Character.MaxHP)
	}
	if added.Character.Type != "NPC" {
		t.Errorf("type = %s, want NPC", added.Character.Type)
	}

	out, err = runApp(t, database, cfg, "character", "hp", "--delta=-8", added.Character.ID)
	if err != nil {
		t.Fatalf("character hp failed: %v", err)
	}
	var hurt ops.CharacterOutput
	if err := json.Unmarshal([]byte(out), &hurt); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if hurt.Character.HP != 14 {
		t.Errorf("hp = %d, want 14", hurt.Character.HP)
	}

	out, err = runApp(t, database, cfg, "character", "initiative", added.Character.ID, "17")
	if err != nil {
		t.Fatalf("character initiative failed: %v", err)
	}
	var rolled ops.CharacterOutput
	if err := json.Unmarshal([]byte(out), &rolled); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if rolled.Character.InitiativeRoll != 17 {
		t.Errorf("roll = %d, want 17", rolled.Character.InitiativeRoll)
	}
}

// TestCLIAdvance tests turn advancement including the stale-expectation guard.
func TestCLIAdvance(t *testing.T) {
	database, cfg := setupTest(t)

	if _, err := runApp(t, database, cfg, "campaign", "create", "Initiative"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "advance")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	var first ops.AdvanceOutput
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if !first.Advanced {
		t.Error("first advance should move the turn")
	}

	// Re-submitting without an expectation must not move the turn again
	out, err = runApp(t, database, cfg, "advance")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	var dup ops.AdvanceOutput
	if err := json.Unmarshal([]byte(out), &dup); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if dup.Advanced {
		t.Error("duplicate advance should be ignored")
	}
	if dup.Character.ID != first.Character.ID {
		t.Error("duplicate advance should return the current holder")
	}

	// Carrying the expectation moves the turn
	out, err = runApp(t, database, cfg, "advance", "--expected", first.Character.ID)
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	var next ops.AdvanceOutput
	if err := json.Unmarshal([]byte(out), &next); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if !next.Advanced {
		t.Error("advance with matching expectation should move the turn")
	}
	if next.Character.ID == first.Character.ID {
		t.Error("turn should move to a different character")
	}
}

// TestCLIAdvanceDefaultsToActiveCampaign tests that advance without
// --campaign targets the active campaign, not whichever came first.
func TestCLIAdvanceDefaultsToActiveCampaign(t *testing.T) {
	database, cfg := setupTest(t)

	out, err := runApp(t, database, cfg, "campaign", "create", "First Table")
	if err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}
	var first ops.CreateCampaignOutput
	if err := json.Unmarshal([]byte(out), &first); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}

	if _, err := runApp(t, database, cfg, "campaign", "create", "Second Table"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}
	if _, err := runApp(t, database, cfg, "campaign", "activate", first.Campaign.ID); err != nil {
		t.Fatalf("campaign activate failed: %v", err)
	}

	out, err = runApp(t, database, cfg, "advance")
	if err != nil {
		t.Fatalf("advance failed: %v", err)
	}
	var result ops.AdvanceOutput
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("failed to parse output: %v", err)
	}
	if result.Character.CampaignID != first.Campaign.ID {
		t.Errorf("advance targeted campaign %s, want active campaign %s",
			result.Character.CampaignID, first.Campaign.ID)
	}
}

// TestCLILog tests log add and recent.
func TestCLILog(t *testing.T) {
	database, cfg := setupTest(t)

	if _, err := runApp(t, database, cfg, "campaign", "create", "Chronicle"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "log", "add", "--type=Combat", "The dragon descends.")
	if err != nil {
		t.Fatalf("log add failed: %v", err)
	}
	var added ops.AppendLogOutput
	if err := json.Unmarshal([]byte(out), &added); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if added.Entry.Type != "Combat" {
		t.Errorf("type = %s, want Combat", added.Entry.Type)
	}

	out, err = runApp(t, database, cfg, "log", "recent", "--limit=10")
	if err != nil {
		t.Fatalf("log recent failed: %v", err)
	}
	if !strings.Contains(out, "The dragon descends.") {
		t.Errorf("expected entry in recent output: %s", out)
	}
}

// TestCLIBackupLifecycle tests backup create, list, restore and delete.
func TestCLIBackupLifecycle(t *testing.T) {
	database, cfg := setupTest(t)

	if _, err := runApp(t, database, cfg, "campaign", "create", "Saved"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	out, err := runApp(t, database, cfg, "backup", "create")
	if err != nil {
		t.Fatalf("backup create failed: %v", err)
	}
	var created ops.CreateBackupOutput
	if err := json.Unmarshal([]byte(out), &created); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if created.Campaigns != 1 || created.Characters != 2 {
		t.Errorf("backup counts = %d campaigns/%d characters, want 1/2", created.Campaigns, created.Characters)
	}

	out, err = runApp(t, database, cfg, "backup", "list")
	if err != nil {
		t.Fatalf("backup list failed: %v", err)
	}
	if !strings.Contains(out, created.Filename) {
		t.Errorf("expected %s in list output: %s", created.Filename, out)
	}

	if _, err := runApp(t, database, cfg, "backup", "restore", created.Filename); err != nil {
		t.Fatalf("backup restore failed: %v", err)
	}

	detail, err := ops.GetCampaign(context.Background(), database, cfg, ops.GetCampaignInput{})
	if err != nil {
		t.Fatalf("get campaign after restore: %v", err)
	}
	if len(detail.Characters) != 2 {
		t.Errorf("characters after restore = %d, want 2", len(detail.Characters))
	}

	if _, err := runApp(t, database, cfg, "backup", "delete", created.Filename); err != nil {
		t.Fatalf("backup delete failed: %v", err)
	}
	list, err := ops.ListBackups(cfg)
	if err != nil {
		t.Fatalf("list backups: %v", err)
	}
	if len(list.Filenames) != 0 {
		t.Errorf("backups after delete = %d, want 0", len(list.Filenames))
	}
}

// TestCLISettings tests settings get and set.
func TestCLISettings(t *testing.T) {
	database, cfg := setupTest(t)

	out, err := runApp(t, database, cfg, "settings", "set", "--auto-backup", "--count=3")
	if err != nil {
		t.Fatalf("settings set failed: %v", err)
	}
	var updated ops.SettingsOutput
	if err := json.Unmarshal([]byte(out), &updated); err != nil {
		t.Fatalf("failed to parse output: %v\nOutput: %s", err, out)
	}
	if !updated.Settings.AutoBackup || updated.Settings.BackupCount != 3 {
		t.Errorf("settings = %+v, want auto-backup on, count 3", updated.Settings)
	}

	out, err = runApp(t, database, cfg, "settings", "get")
	if err != nil {
		t.Fatalf("settings get failed: %v", err)
	}
	if !strings.Contains(out, `"backupCount": 3`) {
		t.Errorf("expected count 3 in output: %s", out)
	}
}

// TestCLIErrorHandling tests that domain errors surface with their codes.
func TestCLIErrorHandling(t *testing.T) {
	database, cfg := setupTest(t)

	_, err := runApp(t, database, cfg, "campaign", "show")
	if err == nil {
		t.Fatal("expected error with no campaigns")
	}
	if !strings.Contains(err.Error(), "NOT_FOUND") {
		t.Errorf("expected NOT_FOUND in error, got: %v", err)
	}

	_, err = runApp(t, database, cfg, "campaign", "create", "")
	if err == nil {
		t.Fatal("expected error for blank name")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST in error, got: %v", err)
	}
}

// TestIsCLIMode tests CLI vs MCP mode detection.
func TestIsCLIMode(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"gmtrack"},
			expected: false,
		},
		{
			name:     "campaign command",
			args:     []string{"gmtrack", "campaign"},
			expected: true,
		},
		{
			name:     "advance command",
			args:     []string{"gmtrack", "advance"},
			expected: true,
		},
		{
			name:     "web command",
			args:     []string{"gmtrack", "web"},
			expected: true,
		},
		{
			name:     "help flag",
			args:     []string{"gmtrack", "--help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"gmtrack", "--version"},
			expected: true,
		},
		{
			name:     "unknown arg defaults to MCP",
			args:     []string{"gmtrack", "--unknown"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Save and restore os.Args
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isCLIMode()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestIsHelpOrVersion tests help/version detection.
func TestIsHelpOrVersion(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected bool
	}{
		{
			name:     "no args",
			args:     []string{"gmtrack"},
			expected: false,
		},
		{
			name:     "help flag",
			args:     []string{"gmtrack", "--help"},
			expected: true,
		},
		{
			name:     "help command",
			args:     []string{"gmtrack", "help"},
			expected: true,
		},
		{
			name:     "version flag",
			args:     []string{"gmtrack", "-v"},
			expected: true,
		},
		{
			name:     "regular command",
			args:     []string{"gmtrack", "campaign"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			oldArgs := os.Args
			defer func() { os.Args = oldArgs }()

			os.Args = tt.args
			result := isHelpOrVersion()

			if result != tt.expected {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

// TestParseIntArg_Invalid tests the positional integer parser via initiative.
func TestParseIntArg_Invalid(t *testing.T) {
	database, cfg := setupTest(t)

	if _, err := runApp(t, database, cfg, "campaign", "create", "Args"); err != nil {
		t.Fatalf("campaign create failed: %v", err)
	}

	_, err := runApp(t, database, cfg, "character", "initiative", "some-id", "lots")
	if err == nil {
		t.Fatal("expected error for non-integer roll")
	}
	if !strings.Contains(err.Error(), "INVALID_REQUEST") {
		t.Errorf("expected INVALID_REQUEST, got: %v", err)
	}
}

package ops

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/game"
)

// TestFullWorkflow exercises a complete session lifecycle:
// create campaign → add characters → roll initiative → run a combat round →
// log → save encounter → backup → destructive change → restore → verify.
func TestFullWorkflow(t *testing.T) {
	tmpDir := t.TempDir()
	database, err := db.Init(tmpDir)
	require.NoError(t, err)
	defer database.Close()

	cfg := config.DefaultConfig()
	cfg.BackupDir = filepath.Join(tmpDir, "backups")
	ctx := context.Background()

	// 1. Create a campaign with the starter party
	created, err := CreateCampaign(ctx, database, cfg, CreateCampaignInput{Name: "Night Below"})
	require.NoError(t, err)
	campaignID := created.Campaign.ID

	// 2. Add an NPC opponent
	npc, err := CreateCharacter(ctx, database, cfg, CreateCharacterInput{
		CampaignID: campaignID,
		Name:       "Goblin Boss",
		Type:       game.TypeNPC,
		MaxHP:      21,
		ArmorClass: 17,
	})
	require.NoError(t, err)

	// 3. Roll initiative for everyone
	detail, err := GetCampaign(ctx, database, cfg, GetCampaignInput{CampaignID: campaignID})
	require.NoError(t, err)
	require.Len(t, detail.Characters, 3)

	rolls := map[string]int{"Grom": 14, "Elara": 19, "Goblin Boss": 9}
	for _, c := range detail.Characters {
		_, err := SetInitiative(ctx, database, cfg, SetInitiativeInput{
			CharacterID: c.ID,
			Roll:        rolls[c.Name],
		})
		require.NoError(t, err)
	}

	// 4. Start combat: highest roll goes first
	turn, err := Advance(ctx, database, cfg, AdvanceInput{CampaignID: campaignID})
	require.NoError(t, err)
	require.Equal(t, "Elara", turn.Character.Name)

	// A stale client repeats the request with no expectation: no double
	// advance, same holder returned.
	repeat, err := Advance(ctx, database, cfg, AdvanceInput{CampaignID: campaignID})
	require.NoError(t, err)
	require.False(t, repeat.Advanced)
	require.Equal(t, turn.Character.ID, repeat.Character.ID)

	// 5. Advance through the round
	turn, err = Advance(ctx, database, cfg, AdvanceInput{
		CampaignID:       campaignID,
		ExpectedActiveID: stringPtr(turn.Character.ID),
	})
	require.NoError(t, err)
	require.Equal(t, "Grom", turn.Character.Name)

	// 6. Grom takes a hit, the table logs it
	_, err = UpdateHP(ctx, database, cfg, UpdateHPInput{CharacterID: turn.Character.ID, Delta: -7})
	require.NoError(t, err)
	_, err = AppendLog(ctx, database, cfg, AppendLogInput{
		CampaignID: campaignID,
		Content:    "The goblin boss lands a vicious blow on Grom.",
		Type:       game.LogCombat,
	})
	require.NoError(t, err)

	// 7. Save the fight as an encounter snapshot
	enc, err := SaveEncounter(ctx, database, cfg, SaveEncounterInput{
		CampaignID: campaignID,
		Name:       "Goblin Warren",
	})
	require.NoError(t, err)
	require.Len(t, enc.Encounter.Participants, 3)

	// 8. Back up everything
	backup, err := CreateBackup(ctx, database, cfg)
	require.NoError(t, err)
	require.Equal(t, 3, backup.Characters)

	list, err := ListBackups(cfg)
	require.NoError(t, err)
	require.Equal(t, []string{backup.Filename}, list.Filenames)

	// 9. Disaster: the goblin boss is deleted mid-session
	err = DeleteCharacter(ctx, database, cfg, DeleteCharacterInput{CharacterID: npc.Character.ID})
	require.NoError(t, err)

	// 10. Restore and verify the full state came back
	err = RestoreBackup(ctx, database, cfg, backup.Filename)
	require.NoError(t, err)

	detail, err = GetCampaign(ctx, database, cfg, GetCampaignInput{CampaignID: campaignID})
	require.NoError(t, err)
	require.Len(t, detail.Characters, 3)
	require.Len(t, detail.Encounters, 1)

	var grom *game.Character
	for _, c := range detail.Characters {
		if c.Name == "Grom" {
			grom = c
		}
	}
	require.NotNil(t, grom)
	require.Equal(t, 18, grom.HP, "damage taken before the backup survives the restore")
	require.True(t, grom.ActiveTurn, "turn state survives the restore")
}

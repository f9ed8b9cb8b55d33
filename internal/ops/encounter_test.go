package ops

import (
	"context"
	"testing"

	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

func TestSaveEncounter_CapturesLiveState(t *testing.T) {
	database, cfg := setupTest(t)
	ctx := context.Background()
	seedCampaign(t, database, "C1", "Test")
	seedCharacter(t, database, "P1", "C1", "Pip", 20)
	seedCharacter(t, database, "P2", "C1", "Quin", 15)

	out, err := SaveEncounter(ctx, database, cfg, SaveEncounterInput{
		CampaignID: "C1",
		Name:       "Bridge Fight",
	})
	if err != nil {
		t.Fatalf("SaveEncounter failed: %v", err)
	}
	e := out.Encounter
	if e.Status != game.EncounterPlanned {
		t.Errorf("Status = %s, want PLANNED", e.Status)
	}
	if len(e.Participants) != 2 {
		t.Fatalf("got %d participants, want 2", len(e.Participants))
	}
	// Captured in turn order with current rolls and HP.
	if e.Participants[0].CharacterID != "P1" || e.Participants[0].Initiative != 20 {
		t.Errorf("first participant = %+v, want P1 at 20", e.Participants[0])
	}
	if e.Participants[0].CurrentHP == nil || *e.Participants[0].CurrentHP != 10 {
		t.Errorf("CurrentHP = %v, want 10", e.Participants[0].CurrentHP)
	}
}

func TestSaveEncounter_ExplicitParticipants(t *testing.T) {
	database, cfg := setupTest(t)
	ctx := context.Background()
	seedCampaign(t, database, "C1", "Test")
	seedCharacter(t, database, "P1", "C1", "Pip", 0)

	out, err := SaveEncounter(ctx, database, cfg, SaveEncounterInput{
		CampaignID:   "C1",
		Name:         "Planned Ambush",
		Participants: game.Participants{{CharacterID: "P1", Initiative: 13}},
	})
	if err != nil {
		t.Fatalf("SaveEncounter failed: %v", err)
	}
	if len(out.Encounter.Participants) != 1 || out.Encounter.Participants[0].Initiative != 13 {
		t.Errorf("participants = %+v", out.Encounter.Participants)
	}
}

func TestSaveEncounter_NoParticipants(t *testing.T) {
	database, cfg := setupTest(t)
	seedCampaign(t, database, "C1", "Empty")

	_, err := SaveEncounter(context.Background(), database, cfg, SaveEncounterInput{
		CampaignID: "C1",
		Name:       "Nothing Here",
	})
	if !errors.Is(err, errors.ErrInvalidRequest) {
		t.Errorf("SaveEncounter empty = %v, want INVALID_REQUEST", err)
	}
}

func TestLoadEncounter_AppliesSavedState(t *testing.T) {
	database, cfg := setupTest(t)
	ctx := context.Background()
	seedCampaign(t, database, "C1", "Test")
	seedCharacter(t, database, "P1", "C1", "Pip", 20)
	seedCharacter(t, database, "P2", "C1", "Quin", 15)
	if err := db.SetActiveTurn(ctx, database, "P1"); err != nil {
		t.Fatalf("SetActiveTurn failed: %v", err)
	}

	hp := 4
	saved, err := SaveEncounter(ctx, database, cfg, SaveEncounterInput{
		CampaignID: "C1",
		Name:       "Rematch",
		Participants: game.Participants{
			{CharacterID: "P1", Initiative: 3, CurrentHP: &hp},
			{CharacterID: "P2", Initiative: 22},
			{CharacterID: "GONE", Initiative: 11}, // no longer exists, skipped
		},
	})
	if err != nil {
		t.Fatalf("SaveEncounter failed: %v", err)
	}

	out, err := LoadEncounter(ctx, database, cfg, LoadEncounterInput{EncounterID: saved.Encounter.ID})
	if err != nil {
		t.Fatalf("LoadEncounter failed: %v", err)
	}
	if out.Encounter.Status != game.EncounterActive {
		t.Errorf("Status = %s, want ACTIVE", out.Encounter.Status)
	}

	p1, err := db.GetCharacter(ctx, database, "P1")
	if err != nil {
		t.Fatalf("GetCharacter failed: %v", err)
	}
	if p1.InitiativeRoll != 3 || p1.HP != 4 {
		t.Errorf("P1 roll=%d hp=%d, want 3/4", p1.InitiativeRoll, p1.HP)
	}
	if p1.ActiveTurn {
		t.Error("turn should be reset on load")
	}
	p2, err := db.GetCharacter(ctx, database, "P2")
	if err != nil {
		t.Fatalf("GetCharacter failed: %v", err)
	}
	if p2.InitiativeRoll != 22 || p2.HP != 10 {
		t.Errorf("P2 roll=%d hp=%d, want 22 and untouched HP 10", p2.InitiativeRoll, p2.HP)
	}
}

func TestLoadEncounter_Missing(t *testing.T) {
	database, cfg := setupTest(t)
	_, err := LoadEncounter(context.Background(), database, cfg, LoadEncounterInput{EncounterID: "nope"})
	if !errors.Is(err, errors.ErrNotFound) {
		t.Errorf("LoadEncounter missing = %v, want NOT_FOUND", err)
	}
}

func TestListAndDeleteEncounters(t *testing.T) {
	database, cfg := setupTest(t)
	ctx := context.Background()
	seedCampaign(t, database, "C1", "Test")
	seedCharacter(t, database, "P1", "C1", "Pip", 10)

	saved, err := SaveEncounter(ctx, database, cfg, SaveEncounterInput{CampaignID: "C1", Name: "One"})
	if err != nil {
		t.Fatalf("SaveEncounter failed: %v", err)
	}

	list, err := ListEncounters(ctx, database, cfg, ListEncountersInput{CampaignID: "C1"})
	if err != nil {
		t.Fatalf("ListEncounters failed: %v", err)
	}
	if len(list.Encounters) != 1 {
		t.Fatalf("got %d encounters, want 1", len(list.Encounters))
	}

	if err := DeleteEncounter(ctx, database, cfg, DeleteEncounterInput{EncounterID: saved.Encounter.ID}); err != nil {
		t.Fatalf("DeleteEncounter failed: %v", err)
	}
	list, err = ListEncounters(ctx, database, cfg, ListEncountersInput{CampaignID: "C1"})
	if err != nil {
		t.Fatalf("ListEncounters failed: %v", err)
	}
	if len(list.Encounters) != 0 {
		t.Errorf("got %d encounters after delete, want 0", len(list.Encounters))
	}
}

package ops

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// SaveEncounterInput contains parameters for the SaveEncounter operation.
type SaveEncounterInput struct {
	CampaignID string // defaults to the active campaign when blank
	Name       string
	Status     string // defaults to PLANNED
	// Participants is the saved order. When empty, the campaign's current
	// live initiative state is captured instead.
	Participants game.Participants
}

// EncounterOutput wraps a single encounter result.
type EncounterOutput struct {
	Encounter *game.Encounter `json:"encounter"`
}

// SaveEncounter stores an initiative snapshot, independent of the live
// character rows.
func SaveEncounter(ctx context.Context, database *sql.DB, cfg *config.Config, input SaveEncounterInput) (*EncounterOutput, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if _, err := db.GetCampaign(ctx, database, campaignID); err != nil {
		return nil, err
	}

	status := strings.ToUpper(strings.TrimSpace(input.Status))
	if status == "" {
		status = game.EncounterPlanned
	}

	participants := input.Participants
	if len(participants) == 0 {
		characters, err := db.ListCharactersByTurnOrder(ctx, database, campaignID)
		if err != nil {
			return nil, err
		}
		for _, c := range characters {
			hp := c.HP
			participants = append(participants, game.EncounterParticipant{
				CharacterID: c.ID,
				Initiative:  c.InitiativeRoll,
				CurrentHP:   &hp,
			})
		}
	}
	if len(participants) == 0 {
		return nil, errors.NewInvalidRequest("encounter has no participants")
	}

	encounter := &game.Encounter{
		ID:           generateULID(),
		CampaignID:   campaignID,
		Name:         name,
		Status:       status,
		Participants: participants,
		CreatedAt:    game.Now(),
	}
	if err := db.InsertEncounter(ctx, database, encounter); err != nil {
		return nil, err
	}
	return &EncounterOutput{Encounter: encounter}, nil
}

// ListEncountersInput contains parameters for the ListEncounters operation.
type ListEncountersInput struct {
	CampaignID string // defaults to the active campaign when blank
}

// ListEncountersOutput contains the result of the ListEncounters operation.
type ListEncountersOutput struct {
	Encounters []*game.Encounter `json:"encounters"`
}

// ListEncounters returns a campaign's encounters, newest first.
func ListEncounters(ctx context.Context, database *sql.DB, cfg *config.Config, input ListEncountersInput) (*ListEncountersOutput, error) {
	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}
	encounters, err := db.ListEncounters(ctx, database, campaignID)
	if err != nil {
		return nil, err
	}
	return &ListEncountersOutput{Encounters: encounters}, nil
}

// LoadEncounterInput contains parameters for the LoadEncounter operation.
type LoadEncounterInput struct {
	EncounterID string
}

// LoadEncounter applies a saved initiative snapshot to the live character
// rows: each participant's roll (and HP, when recorded) is written back, and
// the turn is reset, all in one transaction. Participants that no longer
// exist are skipped.
func LoadEncounter(ctx context.Context, database *sql.DB, cfg *config.Config, input LoadEncounterInput) (*EncounterOutput, error) {
	id := strings.TrimSpace(input.EncounterID)
	if id == "" {
		return nil, errors.NewInvalidRequest("encounter_id is required")
	}
	encounter, err := db.GetEncounter(ctx, database, id)
	if err != nil {
		return nil, err
	}

	err = inTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.ClearActiveTurn(ctx, tx, encounter.CampaignID); err != nil {
			return err
		}
		for _, p := range encounter.Participants {
			if _, err := db.GetCharacter(ctx, tx, p.CharacterID); err != nil {
				if errors.Is(err, errors.ErrNotFound) {
					continue
				}
				return err
			}
			if err := db.UpdateCharacterInitiativeRoll(ctx, tx, p.CharacterID, p.Initiative); err != nil {
				return err
			}
			if p.CurrentHP != nil {
				if err := db.UpdateCharacterHP(ctx, tx, p.CharacterID, *p.CurrentHP); err != nil {
					return err
				}
			}
		}
		return db.UpdateEncounterStatus(ctx, tx, encounter.ID, game.EncounterActive)
	})
	if err != nil {
		return nil, err
	}

	updated, err := db.GetEncounter(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return &EncounterOutput{Encounter: updated}, nil
}

// DeleteEncounterInput contains parameters for the DeleteEncounter operation.
type DeleteEncounterInput struct {
	EncounterID string
}

// DeleteEncounter removes a saved encounter.
func DeleteEncounter(ctx context.Context, database *sql.DB, cfg *config.Config, input DeleteEncounterInput) error {
	id := strings.TrimSpace(input.EncounterID)
	if id == "" {
		return errors.NewInvalidRequest("encounter_id is required")
	}
	return db.DeleteEncounter(ctx, database, id)
}

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

// CreateCharacterInput contains parameters for the CreateCharacter operation.
type CreateCharacterInput struct {
	CampaignID string // defaults to the active campaign when blank
	Name       string
	Type       string // defaults to PLAYER
	Race       *string
	Class      *string
	Level      int // defaults to 1
	HP         int
	MaxHP      int
	ArmorClass int // defaults to 10
	Speed      int // defaults to 30
	Initiative int
	Conditions game.Conditions
	Inventory  game.Inventory
	Attributes game.Attributes
	ImageURL   *string
}

// CharacterOutput wraps a single character result.
type CharacterOutput struct {
	Character *game.Character `json:"character"`
}

// CreateCharacter adds a character to a campaign.
func CreateCharacter(ctx context.Context, database *sql.DB, cfg *config.Config, input CreateCharacterInput) (*CharacterOutput, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}
	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}
	// Campaign must exist before we attach anything to it.
	if _, err := db.GetCampaign(ctx, database, campaignID); err != nil {
		return nil, err
	}

	if input.MaxHP <= 0 {
		return nil, errors.NewInvalidRequest("max_hp must be positive")
	}
	hp := input.HP
	if hp <= 0 || hp > input.MaxHP {
		hp = input.MaxHP
	}

	character := &game.Character{
		ID:         generateULID(),
		CampaignID: campaignID,
		Name:       name,
		Type:       characterType(input.Type),
		Race:       cleanOptionalString(input.Race),
		Class:      cleanOptionalString(input.Class),
		Level:      defaultInt(input.Level, 1),
		HP:         hp,
		MaxHP:      input.MaxHP,
		ArmorClass: defaultInt(input.ArmorClass, 10),
		Speed:      defaultInt(input.Speed, 30),
		Initiative: input.Initiative,
		Conditions: input.Conditions,
		Inventory:  input.Inventory,
		Attributes: input.Attributes,
		ImageURL:   cleanOptionalString(input.ImageURL),
		CreatedAt:  game.Now(),
	}
	if err := db.InsertCharacter(ctx, database, character); err != nil {
		return nil, err
	}
	return &CharacterOutput{Character: character}, nil
}

func characterType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if t == "" {
		return game.TypePlayer
	}
	return t
}

func defaultInt(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

// UpdateHPInput contains parameters for the UpdateHP operation.
type UpdateHPInput struct {
	CharacterID string
	// Delta is added to current HP: positive heals, negative damages.
	Delta int
}

// UpdateHP applies a hit point change to a character.
func UpdateHP(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateHPInput) (*CharacterOutput, error) {
	id := strings.TrimSpace(input.CharacterID)
	if id == "" {
		return nil, errors.NewInvalidRequest("character_id is required")
	}
	current, err := db.GetCharacter(ctx, database, id)
	if err != nil {
		return nil, err
	}
	if err := db.UpdateCharacterHP(ctx, database, id, current.HP+input.Delta); err != nil {
		return nil, err
	}
	updated, err := db.GetCharacter(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return &CharacterOutput{Character: updated}, nil
}

// SetInitiativeInput contains parameters for the SetInitiative operation.
type SetInitiativeInput struct {
	CharacterID string
	Roll        int
}

// SetInitiative records a character's initiative roll for the current combat.
func SetInitiative(ctx context.Context, database *sql.DB, cfg *config.Config, input SetInitiativeInput) (*CharacterOutput, error) {
	id := strings.TrimSpace(input.CharacterID)
	if id == "" {
		return nil, errors.NewInvalidRequest("character_id is required")
	}
	if err := db.UpdateCharacterInitiativeRoll(ctx, database, id, input.Roll); err != nil {
		return nil, err
	}
	updated, err := db.GetCharacter(ctx, database, id)
	if err != nil {
		return nil, err
	}
	return &CharacterOutput{Character: updated}, nil
}

// UpdateCharacterInput contains parameters for the UpdateCharacter operation.
// Nil fields are left unchanged.
type UpdateCharacterInput struct {
	CharacterID string
	Name        *string
	Type        *string
	Race        *string
	Class       *string
	Level       *int
	MaxHP       *int
	ArmorClass  *int
	Speed       *int
	Initiative  *int
	Conditions  *game.Conditions
	Inventory   *game.Inventory
	Attributes  *game.Attributes
	ImageURL    *string
}

// UpdateCharacter patches a character's fields.
func UpdateCharacter(ctx context.Context, database *sql.DB, cfg *config.Config, input UpdateCharacterInput) (*CharacterOutput, error) {
	id := strings.TrimSpace(input.CharacterID)
	if id == "" {
		return nil, errors.NewInvalidRequest("character_id is required")
	}
	c, err := db.GetCharacter(ctx, database, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name, err := validateName(*input.Name)
		if err != nil {
			return nil, err
		}
		c.Name = name
	}
	if input.Type != nil {
		c.Type = characterType(*input.Type)
	}
	if input.Race != nil {
		c.Race = cleanOptionalString(input.Race)
	}
	if input.Class != nil {
		c.Class = cleanOptionalString(input.Class)
	}
	if input.Level != nil {
		c.Level = *input.Level
	}
	if input.MaxHP != nil {
		if *input.MaxHP <= 0 {
			return nil, errors.NewInvalidRequest("max_hp must be positive")
		}
		c.MaxHP = *input.MaxHP
		if c.HP > c.MaxHP {
			c.HP = c.MaxHP
		}
	}
	if input.ArmorClass != nil {
		c.ArmorClass = *input.ArmorClass
	}
	if input.Speed != nil {
		c.Speed = *input.Speed
	}
	if input.Initiative != nil {
		c.Initiative = *input.Initiative
	}
	if input.Conditions != nil {
		c.Conditions = *input.Conditions
	}
	if input.Inventory != nil {
		c.Inventory = *input.Inventory
	}
	if input.Attributes != nil {
		c.Attributes = *input.Attributes
	}
	if input.ImageURL != nil {
		c.ImageURL = cleanOptionalString(input.ImageURL)
	}

	if err := db.UpdateCharacter(ctx, database, c); err != nil {
		return nil, err
	}
	return &CharacterOutput{Character: c}, nil
}

// CloneCharacterInput contains parameters for the CloneCharacter operation.
type CloneCharacterInput struct {
	// SourceID names the library template to copy.
	SourceID string
	// CampaignID is the destination; defaults to the active campaign.
	CampaignID string
}

// CloneCharacter copies a library template into a campaign. The clone keeps a
// source link back to the template; the link is informational and nothing
// cascades through it.
func CloneCharacter(ctx context.Context, database *sql.DB, cfg *config.Config, input CloneCharacterInput) (*CharacterOutput, error) {
	sourceID := strings.TrimSpace(input.SourceID)
	if sourceID == "" {
		return nil, errors.NewInvalidRequest("source_id is required")
	}
	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if _, err := db.GetCampaign(ctx, database, campaignID); err != nil {
		return nil, err
	}
	source, err := db.GetCharacter(ctx, database, sourceID)
	if err != nil {
		return nil, err
	}

	clone := *source
	clone.ID = generateULID()
	clone.CampaignID = campaignID
	clone.SourceID = &source.ID
	clone.HP = source.MaxHP
	clone.InitiativeRoll = 0
	clone.ActiveTurn = false
	clone.CreatedAt = game.Now()

	if err := db.InsertCharacter(ctx, database, &clone); err != nil {
		return nil, err
	}
	return &CharacterOutput{Character: &clone}, nil
}

// DeleteCharacterInput contains parameters for the DeleteCharacter operation.
type DeleteCharacterInput struct {
	CharacterID string
}

// DeleteCharacter removes a character.
func DeleteCharacter(ctx context.Context, database *sql.DB, cfg *config.Config, input DeleteCharacterInput) error {
	id := strings.TrimSpace(input.CharacterID)
	if id == "" {
		return errors.NewInvalidRequest("character_id is required")
	}
	return db.DeleteCharacter(ctx, database, id)
}

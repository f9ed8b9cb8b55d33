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

// CreateCampaignInput contains parameters for the CreateCampaign operation.
type CreateCampaignInput struct {
	Name string
	// SkipDefaultParty suppresses the starter characters.
	SkipDefaultParty bool
}

// CreateCampaignOutput contains the result of the CreateCampaign operation.
type CreateCampaignOutput struct {
	Campaign *game.Campaign `json:"campaign"`
}

// CreateCampaign creates a campaign, marked active, seeded with a small
// starter party unless suppressed.
func CreateCampaign(ctx context.Context, database *sql.DB, cfg *config.Config, input CreateCampaignInput) (*CreateCampaignOutput, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return nil, err
	}

	campaign := &game.Campaign{
		ID:        generateULID(),
		Name:      name,
		Active:    true,
		CreatedAt: game.Now(),
	}

	err = inTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.InsertCampaign(ctx, tx, campaign); err != nil {
			return err
		}
		if input.SkipDefaultParty {
			return nil
		}
		for _, c := range defaultParty(campaign.ID) {
			if err := db.InsertCharacter(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &CreateCampaignOutput{Campaign: campaign}, nil
}

// defaultParty builds the starter characters for a new campaign.
func defaultParty(campaignID string) []*game.Character {
	orc, barbarian := "Orc", "Barbarian"
	elf, wizard := "Elf", "Wizard"
	return []*game.Character{
		{
			ID:         generateULID(),
			CampaignID: campaignID,
			Name:       "Grom",
			Type:       game.TypePlayer,
			Race:       &orc,
			Class:      &barbarian,
			Level:      1,
			HP:         25,
			MaxHP:      25,
			ArmorClass: 14,
			Speed:      30,
			Initiative: 2,
			Attributes: game.Attributes{"str": 16, "dex": 12},
			CreatedAt:  game.Now(),
		},
		{
			ID:         generateULID(),
			CampaignID: campaignID,
			Name:       "Elara",
			Type:       game.TypePlayer,
			Race:       &elf,
			Class:      &wizard,
			Level:      1,
			HP:         12,
			MaxHP:      12,
			ArmorClass: 11,
			Speed:      30,
			Initiative: 3,
			Attributes: game.Attributes{"int": 17, "dex": 14},
			CreatedAt:  game.Now(),
		},
	}
}

// ListCampaignsOutput contains the result of the ListCampaigns operation.
type ListCampaignsOutput struct {
	Campaigns []*game.Campaign `json:"campaigns"`
}

// ListCampaigns returns all campaigns, newest first.
func ListCampaigns(ctx context.Context, database *sql.DB, cfg *config.Config) (*ListCampaignsOutput, error) {
	campaigns, err := db.ListCampaigns(ctx, database)
	if err != nil {
		return nil, err
	}
	return &ListCampaignsOutput{Campaigns: campaigns}, nil
}

// ActiveCampaign returns the campaign that commands without an explicit ID
// operate on: the active one, falling back to the most recently created.
func ActiveCampaign(ctx context.Context, database *sql.DB, cfg *config.Config) (*game.Campaign, error) {
	return db.GetActiveCampaign(ctx, database)
}

// GetCampaignInput contains parameters for the GetCampaign operation.
type GetCampaignInput struct {
	// CampaignID defaults to the active campaign when blank.
	CampaignID string
	// LogLimit caps the returned log entries; 0 means DefaultLogLimit.
	LogLimit int
}

// GetCampaignOutput is the campaign detail view: the campaign plus its
// characters in turn order, recent logs, and encounters.
type GetCampaignOutput struct {
	Campaign   *game.Campaign    `json:"campaign"`
	Characters []*game.Character `json:"characters"`
	LogEntries []*game.LogEntry  `json:"logEntries"`
	Encounters []*game.Encounter `json:"encounters"`
}

// GetCampaign returns a campaign with its characters, logs, and encounters.
func GetCampaign(ctx context.Context, database *sql.DB, cfg *config.Config, input GetCampaignInput) (*GetCampaignOutput, error) {
	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}
	campaign, err := db.GetCampaign(ctx, database, campaignID)
	if err != nil {
		return nil, err
	}

	limit := input.LogLimit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	characters, err := db.ListCharactersByTurnOrder(ctx, database, campaignID)
	if err != nil {
		return nil, err
	}
	logEntries, err := db.ListLogEntries(ctx, database, campaignID, limit)
	if err != nil {
		return nil, err
	}
	encounters, err := db.ListEncounters(ctx, database, campaignID)
	if err != nil {
		return nil, err
	}

	return &GetCampaignOutput{
		Campaign:   campaign,
		Characters: characters,
		LogEntries: logEntries,
		Encounters: encounters,
	}, nil
}

// PublicCampaign returns the active campaign restricted to player characters,
// for the shared table display.
func PublicCampaign(ctx context.Context, database *sql.DB, cfg *config.Config) (*GetCampaignOutput, error) {
	out, err := GetCampaign(ctx, database, cfg, GetCampaignInput{})
	if err != nil {
		return nil, err
	}
	players := out.Characters[:0]
	for _, c := range out.Characters {
		if c.Type == game.TypePlayer {
			players = append(players, c)
		}
	}
	out.Characters = players
	return out, nil
}

// ActivateCampaignInput contains parameters for the ActivateCampaign operation.
type ActivateCampaignInput struct {
	CampaignID string
}

// ActivateCampaign marks one campaign active and deactivates the rest.
func ActivateCampaign(ctx context.Context, database *sql.DB, cfg *config.Config, input ActivateCampaignInput) (*CreateCampaignOutput, error) {
	campaignID := strings.TrimSpace(input.CampaignID)
	if campaignID == "" {
		return nil, errors.NewInvalidRequest("campaign_id is required")
	}
	err := inTx(ctx, database, func(tx *sql.Tx) error {
		return db.SetActiveCampaign(ctx, tx, campaignID)
	})
	if err != nil {
		return nil, err
	}
	campaign, err := db.GetCampaign(ctx, database, campaignID)
	if err != nil {
		return nil, err
	}
	return &CreateCampaignOutput{Campaign: campaign}, nil
}

package ops

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// AdvanceInput contains parameters for the Advance operation.
type AdvanceInput struct {
	CampaignID string
	// ExpectedActiveID is the caller's belief about who currently holds the
	// turn. It is a precondition, not a command: when it disagrees with the
	// database, the turn does not move.
	ExpectedActiveID *string
}

// AdvanceOutput contains the result of the Advance operation.
type AdvanceOutput struct {
	Character *game.Character `json:"character"`
	// Advanced is false when the guard rejected a stale request and the
	// returned character is the unchanged authoritative holder.
	Advanced bool `json:"advanced"`
}

// Advance moves the turn to the next character in initiative order.
//
// Multiple clients may request an advance for the same turn. The guard treats
// ExpectedActiveID as a compare-and-swap precondition: if it is absent or
// names a character other than the one actually holding the turn, nothing is
// mutated and the authoritative holder is returned, healing the caller's
// stale view instead of double-advancing.
func Advance(ctx context.Context, database *sql.DB, cfg *config.Config, input AdvanceInput) (*AdvanceOutput, error) {
	campaignID := strings.TrimSpace(input.CampaignID)
	if campaignID == "" {
		return nil, errors.NewInvalidRequest("campaign_id is required")
	}

	// initiative_roll DESC, id ASC: the id tie-break makes the order total,
	// so every caller computes the same sequence.
	characters, err := db.ListCharactersByTurnOrder(ctx, database, campaignID)
	if err != nil {
		return nil, err
	}
	if len(characters) == 0 {
		return nil, errors.NewNotFound(fmt.Sprintf("characters in campaign %s", campaignID))
	}

	current := findActiveTurn(characters)
	expected := cleanOptionalString(input.ExpectedActiveID)

	if current != nil {
		if expected == nil || *expected != current.ID {
			// Stale or missing precondition. Return the authoritative holder
			// unchanged; the caller resyncs from the return value.
			fresh, err := db.GetCharacter(ctx, database, current.ID)
			if err != nil {
				return nil, err
			}
			return &AdvanceOutput{Character: fresh, Advanced: false}, nil
		}
	} else if expected != nil {
		// A caller believes someone holds the turn but nobody does. Treat it
		// as a combat restart rather than a conflict.
		log.Printf("advance: expected active %s but no character holds the turn in campaign %s; restarting at the top",
			*expected, campaignID)
	}

	currentIndex := -1
	if current != nil {
		for i, c := range characters {
			if c.ID == current.ID {
				currentIndex = i
				break
			}
		}
	}
	next := characters[(currentIndex+1)%len(characters)]

	// Clear-all then set-one as a single atomic unit, so no committed read
	// ever observes zero or two holders.
	err = inTx(ctx, database, func(tx *sql.Tx) error {
		if err := db.ClearActiveTurn(ctx, tx, campaignID); err != nil {
			return err
		}
		return db.SetActiveTurn(ctx, tx, next.ID)
	})
	if err != nil {
		return nil, err
	}

	// Best-effort combat log. The turn change stands even if this fails.
	entry := &game.LogEntry{
		ID:         generateULID(),
		CampaignID: campaignID,
		Content:    fmt.Sprintf("It is now %s's turn.", next.Name),
		Type:       game.LogCombat,
		Timestamp:  game.Now(),
	}
	if err := db.InsertLogEntry(ctx, database, entry); err != nil {
		log.Printf("advance: failed to write combat log entry: %v", err)
	}

	fresh, err := db.GetCharacter(ctx, database, next.ID)
	if err != nil {
		return nil, err
	}
	return &AdvanceOutput{Character: fresh, Advanced: true}, nil
}

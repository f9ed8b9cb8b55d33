package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// Field limits
const (
	MaxNameChars    = 200
	MaxLogLimit     = 500
	DefaultLogLimit = 50
)

// generateULID creates a new ULID string.
func generateULID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// resolveCampaignID returns the campaign to operate on: the given ID when
// present, otherwise the active campaign.
func resolveCampaignID(ctx context.Context, database *sql.DB, campaignID string) (string, error) {
	campaignID = strings.TrimSpace(campaignID)
	if campaignID != "" {
		return campaignID, nil
	}
	c, err := db.GetActiveCampaign(ctx, database)
	if err != nil {
		return "", err
	}
	return c.ID, nil
}

// validateName checks a required name field.
func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", errors.NewInvalidRequest("name is required")
	}
	if len(name) > MaxNameChars {
		return "", errors.NewInvalidRequest("name exceeds maximum length")
	}
	return name, nil
}

// cleanOptionalString trims an optional string, returning nil when the result
// is empty.
func cleanOptionalString(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// inTx runs fn inside a transaction, committing on nil and rolling back on
// error.
func inTx(ctx context.Context, database *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := database.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// findActiveTurn returns the character holding the turn, or nil.
func findActiveTurn(characters []*game.Character) *game.Character {
	for _, c := range characters {
		if c.ActiveTurn {
			return c
		}
	}
	return nil
}

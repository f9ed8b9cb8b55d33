package db

import (
	"context"
	"database/sql"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

const characterColumns = `
	id, campaign_id, name, type, race, class, level,
	hp, max_hp, armor_class, speed, initiative, initiative_roll,
	active_turn, conditions, inventory, attributes,
	image_url, source_id, created_at
`

// InsertCharacter stores a new character.
func InsertCharacter(ctx context.Context, q DBTX, c *game.Character) error {
	query := `
		INSERT INTO characters (` + characterColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		c.ID, c.CampaignID, c.Name, c.Type, toNullString(c.Race), toNullString(c.Class), c.Level,
		c.HP, c.MaxHP, c.ArmorClass, c.Speed, c.Initiative, c.InitiativeRoll,
		c.ActiveTurn, c.Conditions, c.Inventory, c.Attributes,
		toNullString(c.ImageURL), toNullString(c.SourceID), c.CreatedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetCharacter retrieves a character by ID.
func GetCharacter(ctx context.Context, q DBTX, id string) (*game.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters WHERE id = ?`
	row := q.QueryRowContext(ctx, query, id)
	c, err := scanCharacterRow(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListCharactersByTurnOrder returns a campaign's characters in turn order:
// highest initiative roll first, ID ascending as the tiebreak. The tiebreak
// makes the ordering total, so every reader computes the same sequence.
func ListCharactersByTurnOrder(ctx context.Context, q DBTX, campaignID string) ([]*game.Character, error) {
	query := `
		SELECT ` + characterColumns + `
		FROM characters
		WHERE campaign_id = ?
		ORDER BY initiative_roll DESC, id ASC
	`
	return queryCharacters(ctx, q, query, campaignID)
}

// ListAllCharacters returns every character across all campaigns, in insertion
// order. Used by backup.
func ListAllCharacters(ctx context.Context, q DBTX) ([]*game.Character, error) {
	query := `SELECT ` + characterColumns + ` FROM characters ORDER BY id ASC`
	return queryCharacters(ctx, q, query)
}

// UpdateCharacter rewrites a character's mutable fields.
func UpdateCharacter(ctx context.Context, q DBTX, c *game.Character) error {
	query := `
		UPDATE characters SET
			name = ?, type = ?, race = ?, class = ?, level = ?,
			hp = ?, max_hp = ?, armor_class = ?, speed = ?,
			initiative = ?, initiative_roll = ?,
			conditions = ?, inventory = ?, attributes = ?, image_url = ?
		WHERE id = ?
	`
	res, err := q.ExecContext(ctx, query,
		c.Name, c.Type, toNullString(c.Race), toNullString(c.Class), c.Level,
		c.HP, c.MaxHP, c.ArmorClass, c.Speed,
		c.Initiative, c.InitiativeRoll,
		c.Conditions, c.Inventory, c.Attributes, toNullString(c.ImageURL),
		c.ID,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(c.ID)
	}
	return nil
}

// UpdateCharacterHP sets a character's current hit points.
func UpdateCharacterHP(ctx context.Context, q DBTX, id string, hp int) error {
	res, err := q.ExecContext(ctx, `UPDATE characters SET hp = ? WHERE id = ?`, hp, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// UpdateCharacterInitiativeRoll sets a character's combat initiative roll.
func UpdateCharacterInitiativeRoll(ctx context.Context, q DBTX, id string, roll int) error {
	res, err := q.ExecContext(ctx, `UPDATE characters SET initiative_roll = ? WHERE id = ?`, roll, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// ClearActiveTurn unsets the active-turn flag for every character in a
// campaign.
func ClearActiveTurn(ctx context.Context, q DBTX, campaignID string) error {
	_, err := q.ExecContext(ctx,
		`UPDATE characters SET active_turn = 0 WHERE campaign_id = ? AND active_turn = 1`,
		campaignID)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// SetActiveTurn marks a single character as holding the turn.
func SetActiveTurn(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `UPDATE characters SET active_turn = 1 WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// UpdateCharacterSource sets the source link on a character. A nil sourceID
// clears it. Used by restore's second pass.
func UpdateCharacterSource(ctx context.Context, q DBTX, id string, sourceID *string) error {
	_, err := q.ExecContext(ctx, `UPDATE characters SET source_id = ? WHERE id = ?`,
		toNullString(sourceID), id)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteCharacter removes a character by ID.
func DeleteCharacter(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM characters WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if n == 0 {
		return errors.NewNotFound(id)
	}
	return nil
}

// DeleteAllCharacters removes every character row. Used by restore.
func DeleteAllCharacters(ctx context.Context, q DBTX) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM characters`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func queryCharacters(ctx context.Context, q DBTX, query string, args ...any) ([]*game.Character, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var characters []*game.Character
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		characters = append(characters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return characters, nil
}

func scanCharacter(rows *sql.Rows) (*game.Character, error) {
	var c game.Character
	var race, class, imageURL, sourceID sql.NullString
	err := rows.Scan(
		&c.ID, &c.CampaignID, &c.Name, &c.Type, &race, &class, &c.Level,
		&c.HP, &c.MaxHP, &c.ArmorClass, &c.Speed, &c.Initiative, &c.InitiativeRoll,
		&c.ActiveTurn, &c.Conditions, &c.Inventory, &c.Attributes,
		&imageURL, &sourceID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Race = fromNullString(race)
	c.Class = fromNullString(class)
	c.ImageURL = fromNullString(imageURL)
	c.SourceID = fromNullString(sourceID)
	return &c, nil
}

func scanCharacterRow(row *sql.Row) (*game.Character, error) {
	var c game.Character
	var race, class, imageURL, sourceID sql.NullString
	err := row.Scan(
		&c.ID, &c.CampaignID, &c.Name, &c.Type, &race, &class, &c.Level,
		&c.HP, &c.MaxHP, &c.ArmorClass, &c.Speed, &c.Initiative, &c.InitiativeRoll,
		&c.ActiveTurn, &c.Conditions, &c.Inventory, &c.Attributes,
		&imageURL, &sourceID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Race = fromNullString(race)
	c.Class = fromNullString(class)
	c.ImageURL = fromNullString(imageURL)
	c.SourceID = fromNullString(sourceID)
	return &c, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}

package db

import (
	"context"
	"database/sql"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// InsertCampaign stores a new campaign.
func InsertCampaign(ctx context.Context, q DBTX, c *game.Campaign) error {
	query := `
		INSERT INTO campaigns (id, name, active, created_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, c.ID, c.Name, c.Active, c.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetCampaign retrieves a campaign by ID.
func GetCampaign(ctx context.Context, q DBTX, id string) (*game.Campaign, error) {
	query := `
		SELECT id, name, active, created_at
		FROM campaigns
		WHERE id = ?
	`
	row := q.QueryRowContext(ctx, query, id)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// GetActiveCampaign returns the active campaign, or the most recently created
// one when none is marked active. Returns NOT_FOUND when no campaigns exist.
func GetActiveCampaign(ctx context.Context, q DBTX) (*game.Campaign, error) {
	query := `
		SELECT id, name, active, created_at
		FROM campaigns
		ORDER BY active DESC, created_at DESC, id DESC
		LIMIT 1
	`
	row := q.QueryRowContext(ctx, query)
	c, err := scanCampaign(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("active campaign")
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return c, nil
}

// ListCampaigns returns all campaigns, newest first.
func ListCampaigns(ctx context.Context, q DBTX) ([]*game.Campaign, error) {
	query := `
		SELECT id, name, active, created_at
		FROM campaigns
		ORDER BY created_at DESC, id DESC
	`
	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var campaigns []*game.Campaign
	for rows.Next() {
		var c game.Campaign
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		campaigns = append(campaigns, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return campaigns, nil
}

// SetActiveCampaign marks one campaign active and all others inactive.
// Both statements should run inside a transaction.
func SetActiveCampaign(ctx context.Context, q DBTX, id string) error {
	if _, err := q.ExecContext(ctx, `UPDATE campaigns SET active = 0 WHERE active = 1`); err != nil {
		return errors.NewInternal(err)
	}
	res, err := q.ExecContext(ctx, `UPDATE campaigns SET active = 1 WHERE id = ?`, id)
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

// DeleteAllCampaigns removes every campaign row. Used by restore.
func DeleteAllCampaigns(ctx context.Context, q DBTX) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM campaigns`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func scanCampaign(row *sql.Row) (*game.Campaign, error) {
	var c game.Campaign
	if err := row.Scan(&c.ID, &c.Name, &c.Active, &c.CreatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

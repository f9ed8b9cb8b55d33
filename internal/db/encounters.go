package db

import (
	"context"
	"database/sql"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// InsertEncounter stores a new encounter.
func InsertEncounter(ctx context.Context, q DBTX, e *game.Encounter) error {
	query := `
		INSERT INTO encounters (id, campaign_id, name, status, participants, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, e.ID, e.CampaignID, e.Name, e.Status, e.Participants, e.CreatedAt)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetEncounter retrieves an encounter by ID.
func GetEncounter(ctx context.Context, q DBTX, id string) (*game.Encounter, error) {
	query := `
		SELECT id, campaign_id, name, status, participants, created_at
		FROM encounters
		WHERE id = ?
	`
	row := q.QueryRowContext(ctx, query, id)
	var e game.Encounter
	err := row.Scan(&e.ID, &e.CampaignID, &e.Name, &e.Status, &e.Participants, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(id)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	return &e, nil
}

// ListEncounters returns a campaign's encounters, newest first.
func ListEncounters(ctx context.Context, q DBTX, campaignID string) ([]*game.Encounter, error) {
	query := `
		SELECT id, campaign_id, name, status, participants, created_at
		FROM encounters
		WHERE campaign_id = ?
		ORDER BY created_at DESC, id DESC
	`
	return queryEncounters(ctx, q, query, campaignID)
}

// ListAllEncounters returns every encounter across all campaigns. Used by
// backup.
func ListAllEncounters(ctx context.Context, q DBTX) ([]*game.Encounter, error) {
	query := `
		SELECT id, campaign_id, name, status, participants, created_at
		FROM encounters
		ORDER BY id ASC
	`
	return queryEncounters(ctx, q, query)
}

// UpdateEncounterStatus sets an encounter's status.
func UpdateEncounterStatus(ctx context.Context, q DBTX, id, status string) error {
	res, err := q.ExecContext(ctx, `UPDATE encounters SET status = ? WHERE id = ?`, status, id)
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

// DeleteEncounter removes an encounter by ID.
func DeleteEncounter(ctx context.Context, q DBTX, id string) error {
	res, err := q.ExecContext(ctx, `DELETE FROM encounters WHERE id = ?`, id)
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

// DeleteAllEncounters removes every encounter row. Used by restore.
func DeleteAllEncounters(ctx context.Context, q DBTX) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM encounters`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func queryEncounters(ctx context.Context, q DBTX, query string, args ...any) ([]*game.Encounter, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var encounters []*game.Encounter
	for rows.Next() {
		var e game.Encounter
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.Name, &e.Status, &e.Participants, &e.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		encounters = append(encounters, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return encounters, nil
}

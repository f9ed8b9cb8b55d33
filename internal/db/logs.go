package db

import (
	"context"

	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// InsertLogEntry stores a new log entry.
func InsertLogEntry(ctx context.Context, q DBTX, e *game.LogEntry) error {
	query := `
		INSERT INTO log_entries (id, campaign_id, content, type, timestamp)
		VALUES (?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query, e.ID, e.CampaignID, e.Content, e.Type, e.Timestamp)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// ListLogEntries returns a campaign's log entries, newest first. A limit of 0
// means no limit.
func ListLogEntries(ctx context.Context, q DBTX, campaignID string, limit int) ([]*game.LogEntry, error) {
	query := `
		SELECT id, campaign_id, content, type, timestamp
		FROM log_entries
		WHERE campaign_id = ?
		ORDER BY timestamp DESC, id DESC
	`
	args := []any{campaignID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return queryLogEntries(ctx, q, query, args...)
}

// ListAllLogEntries returns every log entry across all campaigns. Used by
// backup.
func ListAllLogEntries(ctx context.Context, q DBTX) ([]*game.LogEntry, error) {
	query := `
		SELECT id, campaign_id, content, type, timestamp
		FROM log_entries
		ORDER BY id ASC
	`
	return queryLogEntries(ctx, q, query)
}

// LatestLogTimestamp returns the timestamp of a campaign's most recent log
// entry, or a zero Time when the campaign has no entries.
func LatestLogTimestamp(ctx context.Context, q DBTX, campaignID string) (game.Time, error) {
	entries, err := ListLogEntries(ctx, q, campaignID, 1)
	if err != nil {
		return game.Time{}, err
	}
	if len(entries) == 0 {
		return game.Time{}, nil
	}
	return entries[0].Timestamp, nil
}

// DeleteAllLogEntries removes every log entry row. Used by restore.
func DeleteAllLogEntries(ctx context.Context, q DBTX) error {
	if _, err := q.ExecContext(ctx, `DELETE FROM log_entries`); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

func queryLogEntries(ctx context.Context, q DBTX, query string, args ...any) ([]*game.LogEntry, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var entries []*game.LogEntry
	for rows.Next() {
		var e game.LogEntry
		if err := rows.Scan(&e.ID, &e.CampaignID, &e.Content, &e.Type, &e.Timestamp); err != nil {
			return nil, errors.NewInternal(err)
		}
		entries = append(entries, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return entries, nil
}

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

// AppendLogInput contains parameters for the AppendLog operation.
type AppendLogInput struct {
	CampaignID string // defaults to the active campaign when blank
	Content    string
	Type       string // defaults to Story
}

// AppendLogOutput contains the result of the AppendLog operation.
type AppendLogOutput struct {
	Entry *game.LogEntry `json:"entry"`
}

// AppendLog records a narrative entry. After the write commits, the
// auto-backup check is launched as a fire-and-forget goroutine; its outcome
// never affects this call.
func AppendLog(ctx context.Context, database *sql.DB, cfg *config.Config, input AppendLogInput) (*AppendLogOutput, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, errors.NewInvalidRequest("content is required")
	}
	if cfg != nil && cfg.MaxLogChars > 0 && len(content) > cfg.MaxLogChars {
		return nil, errors.NewInvalidRequest("content exceeds maximum length")
	}

	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}
	if _, err := db.GetCampaign(ctx, database, campaignID); err != nil {
		return nil, err
	}

	entryType := strings.TrimSpace(input.Type)
	if entryType == "" {
		entryType = game.LogStory
	}

	entry := &game.LogEntry{
		ID:         generateULID(),
		CampaignID: campaignID,
		Content:    content,
		Type:       entryType,
		Timestamp:  game.Now(),
	}
	if err := db.InsertLogEntry(ctx, database, entry); err != nil {
		return nil, err
	}

	go MaybeAutoBackup(context.Background(), database, cfg)

	return &AppendLogOutput{Entry: entry}, nil
}

// RecentLogsInput contains parameters for the RecentLogs operation.
type RecentLogsInput struct {
	CampaignID string // defaults to the active campaign when blank
	Limit      int    // defaults to DefaultLogLimit, capped at MaxLogLimit
}

// RecentLogsOutput contains the result of the RecentLogs operation.
type RecentLogsOutput struct {
	Entries []*game.LogEntry `json:"entries"`
}

// RecentLogs returns a campaign's newest log entries.
func RecentLogs(ctx context.Context, database *sql.DB, cfg *config.Config, input RecentLogsInput) (*RecentLogsOutput, error) {
	campaignID, err := resolveCampaignID(ctx, database, input.CampaignID)
	if err != nil {
		return nil, err
	}

	limit := input.Limit
	if limit <= 0 {
		limit = DefaultLogLimit
	}
	if limit > MaxLogLimit {
		limit = MaxLogLimit
	}

	entries, err := db.ListLogEntries(ctx, database, campaignID, limit)
	if err != nil {
		return nil, err
	}
	return &RecentLogsOutput{Entries: entries}, nil
}

package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
	"github.com/jthurman/gmtrack/internal/game"
)

// Snapshot is the backup artifact: a full export of every table, wrapped with
// the capture timestamp.
type Snapshot struct {
	Timestamp  game.Time         `json:"timestamp"`
	Campaigns  []*game.Campaign  `json:"campaigns"`
	Characters []*game.Character `json:"characters"`
	LogEntries []*game.LogEntry  `json:"logEntries"`
	Encounters []*game.Encounter `json:"encounters"`
}

// CreateBackupOutput contains the result of the CreateBackup operation.
type CreateBackupOutput struct {
	Filename   string `json:"filename"`
	Path       string `json:"path"`
	Campaigns  int    `json:"campaigns"`
	Characters int    `json:"characters"`
	LogEntries int    `json:"logEntries"`
	Encounters int    `json:"encounters"`
}

// CreateBackup exports the entire store to a timestamped JSON file in the
// backup directory. The filename is derived from the capture timestamp with
// filesystem-unsafe characters replaced, so lexicographic filename order is
// chronological order.
func CreateBackup(ctx context.Context, database *sql.DB, cfg *config.Config) (*CreateBackupOutput, error) {
	now := game.Now()

	snapshot := &Snapshot{Timestamp: now}

	var err error
	snapshot.Campaigns, err = db.ListCampaigns(ctx, database)
	if err != nil {
		return nil, err
	}
	snapshot.Characters, err = db.ListAllCharacters(ctx, database)
	if err != nil {
		return nil, err
	}
	snapshot.LogEntries, err = db.ListAllLogEntries(ctx, database)
	if err != nil {
		return nil, err
	}
	snapshot.Encounters, err = db.ListAllEncounters(ctx, database)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	filename := BackupFilename(now)
	path := filepath.Join(cfg.BackupDir, filename)

	if err := os.MkdirAll(cfg.BackupDir, 0700); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to create backup directory: %w", err))
	}

	// Write to temp file first, then atomic rename so a crash mid-write never
	// leaves a truncated artifact under a backup name.
	randBytes := make([]byte, 8)
	if _, err := rand.Read(randBytes); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to generate temp file name: %w", err))
	}
	tempPath := path + "." + hex.EncodeToString(randBytes) + ".tmp"
	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to write backup file: %w", err))
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return nil, errors.NewInternal(fmt.Errorf("failed to finalize backup: %w", err))
	}

	return &CreateBackupOutput{
		Filename:   filename,
		Path:       path,
		Campaigns:  len(snapshot.Campaigns),
		Characters: len(snapshot.Characters),
		LogEntries: len(snapshot.LogEntries),
		Encounters: len(snapshot.Encounters),
	}, nil
}

// BackupFilename derives the artifact name from a capture timestamp:
// backup-<ISO timestamp with ':' and '.' replaced by '-'>.json.
func BackupFilename(t game.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	safe := strings.NewReplacer(":", "-", ".", "-").Replace(iso)
	return "backup-" + safe + ".json"
}

// ListBackupsOutput contains the result of the ListBackups operation.
type ListBackupsOutput struct {
	Filenames []string `json:"filenames"`
}

// ListBackups returns backup filenames, newest first.
func ListBackups(cfg *config.Config) (*ListBackupsOutput, error) {
	names, err := listBackupFiles(cfg)
	if err != nil {
		return nil, err
	}
	// Lexicographic descending is chronological descending.
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return &ListBackupsOutput{Filenames: names}, nil
}

// listBackupFiles returns backup filenames in unspecified order.
func listBackupFiles(cfg *config.Config) ([]string, error) {
	entries, err := os.ReadDir(cfg.BackupDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.NewInternal(fmt.Errorf("failed to read backup directory: %w", err))
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, "backup-") && strings.HasSuffix(name, ".json") {
			names = append(names, name)
		}
	}
	return names, nil
}

// DeleteBackup removes one backup artifact.
func DeleteBackup(cfg *config.Config, filename string) error {
	path, err := backupPath(cfg, filename)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(filename)
		}
		return errors.NewInternal(fmt.Errorf("failed to delete backup: %w", err))
	}
	return nil
}

// backupPath validates a backup filename and resolves it inside the backup
// directory. The name is reduced to a bare basename first, so a crafted
// filename cannot reach outside the directory.
func backupPath(cfg *config.Config, filename string) (string, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return "", errors.NewInvalidRequest("filename is required")
	}
	base := filepath.Base(filename)
	if base != filename || base == "." || base == ".." {
		return "", errors.NewInvalidRequest("filename must be a bare backup name")
	}
	if !strings.HasPrefix(base, "backup-") || !strings.HasSuffix(base, ".json") {
		return "", errors.NewInvalidRequest("filename must match backup-*.json")
	}
	return filepath.Join(cfg.BackupDir, base), nil
}

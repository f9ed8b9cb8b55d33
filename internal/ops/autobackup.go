package ops

import (
	"context"
	"database/sql"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/game"
)

// MaybeAutoBackup creates today's backup if auto-backup is enabled and none
// exists yet, then prunes backups beyond the retention count.
//
// It is invoked opportunistically after log-writing actions, usually as a
// fire-and-forget goroutine, so it never returns an error: every failure is
// logged and swallowed.
func MaybeAutoBackup(ctx context.Context, database *sql.DB, cfg *config.Config) {
	settings, err := db.GetSettings(ctx, database)
	if err != nil {
		log.Printf("auto-backup: failed to read settings: %v", err)
		return
	}
	if !settings.AutoBackup {
		return
	}

	names, err := listBackupFiles(cfg)
	if err != nil {
		log.Printf("auto-backup: failed to list backups: %v", err)
		return
	}

	// One backup per calendar day: the filename embeds the ISO date.
	today := time.Now().UTC().Format("2006-01-02")
	for _, name := range names {
		if strings.Contains(name, today) {
			return
		}
	}

	out, err := CreateBackup(ctx, database, cfg)
	if err != nil {
		log.Printf("auto-backup: failed to create backup: %v", err)
		return
	}
	log.Printf("auto-backup: created %s", out.Filename)

	pruneBackups(cfg, settings.BackupCount)
}

// pruneBackups deletes the oldest backups beyond the retention count. Each
// deletion is independent; one failure does not block the others.
func pruneBackups(cfg *config.Config, keep int) {
	if keep <= 0 {
		keep = game.DefaultBackupCount
	}
	names, err := listBackupFiles(cfg)
	if err != nil {
		log.Printf("auto-backup: failed to list backups for pruning: %v", err)
		return
	}
	if len(names) <= keep {
		return
	}
	// Lexicographic ascending is oldest first.
	sort.Strings(names)
	for _, name := range names[:len(names)-keep] {
		if err := DeleteBackup(cfg, name); err != nil {
			log.Printf("auto-backup: failed to prune %s: %v", name, err)
		}
	}
}

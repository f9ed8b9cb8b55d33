package ops

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"

	"github.com/jthurman/gmtrack/internal/config"
	"github.com/jthurman/gmtrack/internal/db"
	"github.com/jthurman/gmtrack/internal/errors"
)

// RestoreBackup replaces the entire store with the contents of one backup
// artifact. The whole restore runs in a single transaction: any failure rolls
// everything back and the store is exactly as it was before the call.
func RestoreBackup(ctx context.Context, database *sql.DB, cfg *config.Config, filename string) error {
	path, err := backupPath(cfg, filename)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return errors.NewFileNotFound(filename)
		}
		return errors.NewInternal(err)
	}

	var snapshot Snapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return errors.NewCorruptBackup(filename, err)
	}

	return inTx(ctx, database, func(tx *sql.Tx) error {
		// Children before parents.
		if err := db.DeleteAllLogEntries(ctx, tx); err != nil {
			return err
		}
		if err := db.DeleteAllEncounters(ctx, tx); err != nil {
			return err
		}
		if err := db.DeleteAllCharacters(ctx, tx); err != nil {
			return err
		}
		if err := db.DeleteAllCampaigns(ctx, tx); err != nil {
			return err
		}

		for _, c := range snapshot.Campaigns {
			if err := db.InsertCampaign(ctx, tx, c); err != nil {
				return err
			}
		}

		// Insert characters with the template link stripped. source_id is a
		// same-table reference, so a clone can name a row that has not been
		// inserted yet; breaking the link makes insertion order-independent.
		for _, c := range snapshot.Characters {
			stripped := *c
			stripped.SourceID = nil
			if err := db.InsertCharacter(ctx, tx, &stripped); err != nil {
				return err
			}
		}

		for _, e := range snapshot.LogEntries {
			if err := db.InsertLogEntry(ctx, tx, e); err != nil {
				return err
			}
		}
		for _, e := range snapshot.Encounters {
			if err := db.InsertEncounter(ctx, tx, e); err != nil {
				return err
			}
		}

		// Second pass: every row exists now, so the links can be restored.
		for _, c := range snapshot.Characters {
			if c.SourceID == nil {
				continue
			}
			if err := db.UpdateCharacterSource(ctx, tx, c.ID, c.SourceID); err != nil {
				return err
			}
		}
		return nil
	})
}

package db

import (
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
)

// SaveRow is one persisted save slot. SnapshotJSON is opaque to this package.
type SaveRow struct {
	Slot         int
	SaveID       string
	Episode      int
	EventID      int
	Language     string
	Preview      string
	SnapshotJSON []byte
	SavedAt      int64
}

// UpsertSave writes a slot, replacing whatever was there.
func UpsertSave(db *sql.DB, r *SaveRow) error {
	query := `
		INSERT INTO saves (
			slot, save_id, episode, event_id, language, preview, snapshot_json, saved_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET
			save_id = excluded.save_id,
			episode = excluded.episode,
			event_id = excluded.event_id,
			language = excluded.language,
			preview = excluded.preview,
			snapshot_json = excluded.snapshot_json,
			saved_at = excluded.saved_at
	`
	_, err := db.Exec(query,
		r.Slot, r.SaveID, r.Episode, r.EventID, r.Language, r.Preview, string(r.SnapshotJSON), r.SavedAt,
	)
	if err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// GetSave returns a slot, or nil when the slot is empty.
func GetSave(db *sql.DB, slot int) (*SaveRow, error) {
	query := `
		SELECT slot, save_id, episode, event_id, language, preview, snapshot_json, saved_at
		FROM saves
		WHERE slot = ?
	`
	var r SaveRow
	var data string
	err := db.QueryRow(query, slot).Scan(
		&r.Slot, &r.SaveID, &r.Episode, &r.EventID, &r.Language, &r.Preview, &data, &r.SavedAt,
	)
	if err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, errors.NewInternal(err)
	}
	r.SnapshotJSON = []byte(data)
	return &r, nil
}

// SaveExists reports whether a slot holds a save.
func SaveExists(db *sql.DB, slot int) (bool, error) {
	var exists int
	err := db.QueryRow(`SELECT EXISTS(SELECT 1 FROM saves WHERE slot = ?)`, slot).Scan(&exists)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return exists == 1, nil
}

// DeleteSave clears a slot. It reports whether a row was removed.
func DeleteSave(db *sql.DB, slot int) (bool, error) {
	result, err := db.Exec(`DELETE FROM saves WHERE slot = ?`, slot)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListSaves returns every occupied slot, newest first. SnapshotJSON is not loaded.
func ListSaves(db *sql.DB) ([]SaveRow, error) {
	query := `
		SELECT slot, save_id, episode, event_id, language, preview, saved_at
		FROM saves
		ORDER BY saved_at DESC, slot ASC
	`
	rows, err := db.Query(query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	out := []SaveRow{}
	for rows.Next() {
		var r SaveRow
		if err := rows.Scan(&r.Slot, &r.SaveID, &r.Episode, &r.EventID, &r.Language, &r.Preview, &r.SavedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return out, nil
}

// UnlockTape records a tape as unlocked. It reports whether the tape was newly unlocked.
func UnlockTape(db *sql.DB, id string, at time.Time) (bool, error) {
	result, err := db.Exec(`INSERT OR IGNORE INTO tapes (id, unlocked_at) VALUES (?, ?)`, id, at.Unix())
	if err != nil {
		return false, errors.NewInternal(err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return n > 0, nil
}

// ListUnlockedTapes returns unlocked tape ids in unlock order.
func ListUnlockedTapes(db *sql.DB) ([]string, error) {
	rows, err := db.Query(`SELECT id FROM tapes ORDER BY unlocked_at ASC, id ASC`)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, errors.NewInternal(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}
	return ids, nil
}

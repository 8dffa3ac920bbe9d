package save

import (
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/logging"
)

// AutoSlot is the slot written by autosave.
const AutoSlot = 0

// MaxSlot is the highest manual slot number.
const MaxSlot = 9

// SlotStore keeps a save in one row of the saves table.
type SlotStore struct {
	db     *sql.DB
	slot   int
	logger *slog.Logger
	now    func() time.Time
}

var _ Store = (*SlotStore)(nil)

// NewSlotStore creates a store for one slot.
func NewSlotStore(database *sql.DB, slot int, logger *slog.Logger) (*SlotStore, error) {
	if slot < AutoSlot || slot > MaxSlot {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("slot must be between %d and %d", AutoSlot, MaxSlot))
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SlotStore{db: database, slot: slot, logger: logger, now: time.Now}, nil
}

// Slot returns the slot number.
func (s *SlotStore) Slot() int {
	return s.slot
}

// Save writes the snapshot into the slot, replacing any previous save.
func (s *SlotStore) Save(snap *Snapshot) error {
	stamp(snap, s.now())
	data, err := encode(snap)
	if err != nil {
		return errors.NewInvalidRequest(fmt.Sprintf("cannot save: %v", err))
	}
	return db.UpsertSave(s.db, &db.SaveRow{
		Slot:         s.slot,
		SaveID:       snap.ID,
		Episode:      snap.EpisodeNumber,
		EventID:      snap.EventID,
		Language:     snap.Language,
		Preview:      snap.Preview,
		SnapshotJSON: data,
		SavedAt:      snap.SavedAt.Unix(),
	})
}

// Load returns the slot's snapshot, or nil when empty or unreadable.
func (s *SlotStore) Load() (*Snapshot, error) {
	snap, err := s.LoadStrict()
	if errors.Is(err, errors.ErrCorruptSave) {
		logging.LogError(s.logger, "ignoring corrupt save", err)
		return nil, nil
	}
	return snap, err
}

// LoadStrict reports a corrupt slot as CORRUPT_SAVE.
func (s *SlotStore) LoadStrict() (*Snapshot, error) {
	row, err := db.GetSave(s.db, s.slot)
	if err != nil || row == nil {
		return nil, err
	}
	snap, err := decode(row.SnapshotJSON)
	if err != nil {
		return nil, errors.NewCorruptSave(fmt.Sprintf("slot %d", s.slot), err)
	}
	return snap, nil
}

// Exists reports whether the slot is occupied.
func (s *SlotStore) Exists() (bool, error) {
	return db.SaveExists(s.db, s.slot)
}

// Delete clears the slot.
func (s *SlotStore) Delete() error {
	_, err := db.DeleteSave(s.db, s.slot)
	return err
}

// SlotSummary describes an occupied slot for a load menu.
type SlotSummary struct {
	Slot          int       `json:"slot"`
	EpisodeNumber int       `json:"episode"`
	EventID       int       `json:"event_id"`
	Language      string    `json:"language"`
	Preview       string    `json:"preview"`
	SavedAt       time.Time `json:"saved_at"`
}

// ListSlots returns every occupied slot, newest first.
func ListSlots(database *sql.DB) ([]SlotSummary, error) {
	rows, err := db.ListSaves(database)
	if err != nil {
		return nil, err
	}
	out := make([]SlotSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, SlotSummary{
			Slot:          r.Slot,
			EpisodeNumber: r.Episode,
			EventID:       r.EventID,
			Language:      r.Language,
			Preview:       r.Preview,
			SavedAt:       time.Unix(r.SavedAt, 0).UTC(),
		})
	}
	return out, nil
}

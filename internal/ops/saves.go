package ops

import (
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/config"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/save"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
)

// SaveOutput contains the result of the Save operation.
type SaveOutput struct {
	Slot     int       `json:"slot"`
	ID       string    `json:"id"`
	Episode  int       `json:"episode"`
	EventID  int       `json:"event_id"`
	Language string    `json:"language"`
	Preview  string    `json:"preview"`
	SavedAt  time.Time `json:"saved_at"`
}

// Save writes the session to a slot.
func Save(env *Env, sess *session.Session, slot int) (*SaveOutput, error) {
	store, err := env.SaveStore(slot)
	if err != nil {
		return nil, err
	}
	snap, err := sess.Snapshot()
	if err != nil {
		return nil, err
	}
	if err := store.Save(snap); err != nil {
		return nil, err
	}
	return &SaveOutput{
		Slot:     effectiveSlot(env, slot),
		ID:       snap.ID,
		Episode:  snap.EpisodeNumber,
		EventID:  snap.EventID,
		Language: snap.Language,
		Preview:  snap.Preview,
		SavedAt:  snap.SavedAt,
	}, nil
}

// LoadSave returns the snapshot in a slot, or nil when the slot is empty or unreadable.
func LoadSave(env *Env, slot int) (*save.Snapshot, error) {
	store, err := env.SaveStore(slot)
	if err != nil {
		return nil, err
	}
	return store.Load()
}

// DeleteSave clears a slot. Clearing an empty slot is not an error.
func DeleteSave(env *Env, slot int) error {
	store, err := env.SaveStore(slot)
	if err != nil {
		return err
	}
	return store.Delete()
}

// ListSavesOutput contains the result of the ListSaves operation.
type ListSavesOutput struct {
	Backend string             `json:"backend"`
	Saves   []save.SlotSummary `json:"saves"`
}

// ListSaves returns every save, newest first.
func ListSaves(env *Env) (*ListSavesOutput, error) {
	out := &ListSavesOutput{Backend: env.Config.SaveBackend, Saves: []save.SlotSummary{}}

	if env.Config.SaveBackend == config.BackendSQLite {
		slots, err := save.ListSlots(env.DB)
		if err != nil {
			return nil, err
		}
		out.Saves = slots
		return out, nil
	}

	snap, err := LoadSave(env, save.AutoSlot)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		out.Saves = append(out.Saves, save.SlotSummary{
			Slot:          save.AutoSlot,
			EpisodeNumber: snap.EpisodeNumber,
			EventID:       snap.EventID,
			Language:      snap.Language,
			Preview:       snap.Preview,
			SavedAt:       snap.SavedAt,
		})
	}
	return out, nil
}

func effectiveSlot(env *Env, slot int) int {
	if env.Config.SaveBackend == config.BackendSQLite {
		return slot
	}
	return save.AutoSlot
}

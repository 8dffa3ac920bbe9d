package ops

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/config"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/episode"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/logging"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/player"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/save"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// Env bundles what the operations need. One Env serves a whole process.
type Env struct {
	Config   *config.Config
	Episodes *episode.Store
	DB       *sql.DB

	// DataDir holds savegame.json for the file backend.
	DataDir string

	Logger *slog.Logger
}

func (e *Env) logger() *slog.Logger {
	if e.Logger == nil {
		return logging.Discard()
	}
	return e.Logger
}

// SaveStore returns the store for a slot under the configured backend.
// The file backend has a single save, so slot is ignored there.
func (e *Env) SaveStore(slot int) (save.Store, error) {
	switch e.Config.SaveBackend {
	case config.BackendSQLite:
		if e.DB == nil {
			return nil, errors.NewInternal(fmt.Errorf("sqlite save backend needs a database"))
		}
		store, err := save.NewSlotStore(e.DB, slot, e.logger())
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return save.NewFileStore(e.DataDir, e.logger()), nil
	}
}

// InitialState builds the player state a new game starts from.
func (e *Env) InitialState() *player.State {
	if s := e.Config.StartingStats; s != nil {
		return player.WithStats(story.Stats{Physical: s.Physical, Mental: s.Mental})
	}
	return player.New()
}

// NewSession creates an uninitialized session configured from Env.
func (e *Env) NewSession() (*session.Session, error) {
	opts := session.Options{
		HistoryCapacity: e.Config.HistoryCapacity,
		InitialState:    e.InitialState(),
		Logger:          e.logger(),
	}
	if e.Config.Autosave {
		store, err := e.SaveStore(save.AutoSlot)
		if err != nil {
			return nil, err
		}
		opts.Autosave = store
	}
	return session.New(e.Episodes, opts), nil
}

package ops

import (
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/logging"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/resolver"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
)

// StartInput contains parameters for the Start operation.
type StartInput struct {
	Episode    int    // default: config start_episode
	Language   string // default: config language
	StartEvent int    // 0 = first event

	// Resume continues from the save in Slot instead of starting fresh.
	Resume bool
	Slot   int
}

// Start loads an episode into sess, or resumes a saved game.
func Start(env *Env, sess *session.Session, input StartInput) (*session.Display, error) {
	if input.Resume {
		store, err := env.SaveStore(input.Slot)
		if err != nil {
			return nil, err
		}
		snap, err := store.Load()
		if err != nil {
			return nil, err
		}
		if snap == nil {
			return nil, errors.NewInvalidRequest("no saved game to resume")
		}
		if err := sess.Resume(snap); err != nil {
			return nil, err
		}
		d := sess.Current()
		return &d, nil
	}

	number := input.Episode
	if number == 0 {
		number = env.Config.StartEpisode
	}
	lang := input.Language
	if lang == "" {
		lang = env.Config.Language
	}
	if err := sess.LoadEpisode(number, lang, input.StartEvent); err != nil {
		return nil, err
	}
	d := sess.Current()
	return &d, nil
}

// Choose takes the choice at index and records any tape it unlocked.
func Choose(env *Env, sess *session.Session, index int) (*session.Transition, error) {
	t, err := sess.Choose(index)
	if err != nil {
		return nil, err
	}
	recordUnlocks(env, t.SideEffects)
	return t, nil
}

// recordUnlocks persists tape unlocks. Failures are logged; the choice already happened.
func recordUnlocks(env *Env, effects []resolver.SideEffect) {
	if env.DB == nil {
		return
	}
	for _, fx := range effects {
		if fx.Kind != resolver.UnlockTape {
			continue
		}
		if _, err := db.UnlockTape(env.DB, fx.Target, time.Now()); err != nil {
			logging.LogError(env.logger(), "failed to record tape unlock", err)
		}
	}
}

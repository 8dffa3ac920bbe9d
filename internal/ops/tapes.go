package ops

import (
	"github.com/FabienROFFET/Noise-Over-Silence/internal/session"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/tapes"
)

// ListTapesOutput contains the result of the ListTapes operation.
type ListTapesOutput struct {
	Tapes    []tapes.Tape `json:"tapes"`
	Unlocked int          `json:"unlocked"`
}

// ListTapes returns the tape catalog with recorded unlocks applied.
// When sess is non-nil, tapes held in its inventory are unlocked and recorded too.
func ListTapes(env *Env, sess *session.Session) (*ListTapesOutput, error) {
	catalog := tapes.Default()
	if env.DB != nil {
		var err error
		if catalog, err = tapes.Load(env.DB); err != nil {
			return nil, err
		}
	}

	if sess != nil {
		if added := catalog.Sync(sess.State().Inventory); len(added) > 0 && env.DB != nil {
			if err := catalog.Persist(env.DB); err != nil {
				return nil, err
			}
		}
	}

	return &ListTapesOutput{
		Tapes:    catalog.Tapes(),
		Unlocked: len(catalog.Unlocked()),
	}, nil
}

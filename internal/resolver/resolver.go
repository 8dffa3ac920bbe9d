package resolver

import (
	"log/slog"
	"strings"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/graph"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/player"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// SideEffectKind names something the presentation layer may want to react to.
type SideEffectKind string

const (
	UnlockTape         SideEffectKind = "UNLOCK_TAPE"
	ItemLost           SideEffectKind = "ITEM_LOST"
	ConsequenceApplied SideEffectKind = "CONSEQUENCE_APPLIED"
	EndingReached      SideEffectKind = "ENDING_REACHED"
)

// SideEffect is emitted while resolving a choice.
type SideEffect struct {
	Kind   SideEffectKind `json:"kind"`
	Target string         `json:"target,omitempty"`
	Value  int            `json:"value,omitempty"`
}

// Resolution is the full outcome of a choice. State is a new object; the
// caller commits it by replacing its own state.
type Resolution struct {
	Next        *int
	State       *player.State
	SideEffects []SideEffect
	Skipped     []story.Consequence
}

// Ended reports whether the choice led to an ending.
func (r *Resolution) Ended() bool {
	return r.Next == nil
}

// Resolver applies choices to player state.
type Resolver struct {
	logger *slog.Logger
}

// New creates a resolver. A nil logger discards skipped-consequence warnings.
func New(logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{logger: logger}
}

// Resolve computes the effect of taking choice at current.
//
// Steps run in a fixed order: lose items, unlock tape, consequences, next event.
// All mutation happens on a clone, so state is left untouched when Resolve fails.
func (r *Resolver) Resolve(g *graph.Graph, current *story.Event, choice story.Choice, state *player.State) (*Resolution, error) {
	next := state.Clone()
	res := &Resolution{State: next}

	for _, item := range choice.LoseItems {
		if next.RemoveItem(item) {
			res.SideEffects = append(res.SideEffects, SideEffect{Kind: ItemLost, Target: item})
		}
	}

	if choice.UnlockTape != "" && next.AddTape(choice.UnlockTape) {
		res.SideEffects = append(res.SideEffects, SideEffect{Kind: UnlockTape, Target: choice.UnlockTape})
	}

	for _, c := range choice.Consequences {
		if !apply(next, c) {
			r.logger.Warn("skipping consequence",
				"event_id", current.ID,
				"choice", choice.Text,
				"type", string(c.Type),
				"target", c.Target,
			)
			res.Skipped = append(res.Skipped, c)
			continue
		}
		res.SideEffects = append(res.SideEffects, SideEffect{
			Kind:   ConsequenceApplied,
			Target: string(c.Type) + ":" + c.Target,
			Value:  c.Value,
		})
	}

	if choice.IsEnding() || current.IsTerminal() {
		res.SideEffects = append(res.SideEffects, SideEffect{Kind: EndingReached})
		return res, nil
	}
	id := *choice.NextEvent
	if !g.Has(id) {
		return nil, errors.NewInvalidNextEvent(current.ID, choice.Text, id)
	}
	res.Next = &id
	return res, nil
}

// IsEnding reports whether a choice ends the episode on purpose, as opposed
// to pointing at an event that does not exist.
func IsEnding(choice story.Choice) bool {
	return choice.IsEnding()
}

func apply(s *player.State, c story.Consequence) bool {
	target := strings.TrimSpace(c.Target)
	if target == "" {
		return false
	}
	switch c.Type {
	case story.ConsequenceStat:
		return s.AdjustStat(target, c.Value)
	case story.ConsequenceFlag:
		s.SetFlag(target, c.Value != 0)
	case story.ConsequenceRelationship:
		s.AdjustRelationship(target, c.Value)
	case story.ConsequenceItem:
		if c.Value < 0 {
			s.RemoveItem(target)
		} else {
			s.AddItem(target)
		}
	default:
		return false
	}
	return true
}

package player

import (
	"maps"
	"slices"
	"strings"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// Stat names accepted by AdjustStat.
const (
	StatPhysical = "physical"
	StatMental   = "mental"
)

// State is the mutable record of one player's progress.
// Items and tapes behave as sets: adding a present name or removing an absent one is a no-op.
type State struct {
	Stats         story.Stats     `json:"stats"`
	Inventory     story.Inventory `json:"inventory"`
	Flags         map[string]bool `json:"flags,omitempty"`
	Relationships map[string]int  `json:"relationships,omitempty"`
}

// New returns an empty state.
func New() *State {
	return &State{
		Inventory:     story.Inventory{Items: []string{}, Tapes: []string{}},
		Flags:         map[string]bool{},
		Relationships: map[string]int{},
	}
}

// WithStats returns a fresh state starting from the given stats.
func WithStats(stats story.Stats) *State {
	s := New()
	s.Stats = stats
	return s
}

// Clone deep-copies the state. Mutating the clone never affects the original.
func (s *State) Clone() *State {
	c := &State{
		Stats:         s.Stats,
		Inventory:     s.Inventory.Clone(),
		Flags:         maps.Clone(s.Flags),
		Relationships: maps.Clone(s.Relationships),
	}
	if c.Flags == nil {
		c.Flags = map[string]bool{}
	}
	if c.Relationships == nil {
		c.Relationships = map[string]int{}
	}
	return c
}

// ApplyStatsOverride replaces the stats wholesale.
func (s *State) ApplyStatsOverride(stats story.Stats) {
	s.Stats = stats
}

// ApplyInventoryOverride replaces the inventory wholesale with a de-duplicated copy.
func (s *State) ApplyInventoryOverride(inv story.Inventory) {
	s.Inventory = story.Inventory{
		Items: dedupe(inv.Items),
		Tapes: dedupe(inv.Tapes),
	}
}

// AddItem adds an item if it is not already carried.
func (s *State) AddItem(name string) bool {
	return addTo(&s.Inventory.Items, name)
}

// AddTape marks a tape as collected if it is not already.
func (s *State) AddTape(name string) bool {
	return addTo(&s.Inventory.Tapes, name)
}

// RemoveItem drops an item. Removing an absent item is a no-op.
func (s *State) RemoveItem(name string) bool {
	i := slices.Index(s.Inventory.Items, name)
	if i < 0 {
		return false
	}
	s.Inventory.Items = slices.Delete(s.Inventory.Items, i, i+1)
	return true
}

// HasItem reports whether the name is held as either an item or a tape.
func (s *State) HasItem(name string) bool {
	return slices.Contains(s.Inventory.Items, name) || slices.Contains(s.Inventory.Tapes, name)
}

// HasTape reports whether a tape has been collected.
func (s *State) HasTape(name string) bool {
	return slices.Contains(s.Inventory.Tapes, name)
}

// SetFlag sets a named boolean flag.
func (s *State) SetFlag(name string, value bool) {
	if s.Flags == nil {
		s.Flags = map[string]bool{}
	}
	s.Flags[name] = value
}

// Flag returns a flag's value; unset flags are false.
func (s *State) Flag(name string) bool {
	return s.Flags[name]
}

// AdjustRelationship adds delta to a named relationship score.
func (s *State) AdjustRelationship(name string, delta int) {
	if s.Relationships == nil {
		s.Relationships = map[string]int{}
	}
	s.Relationships[name] += delta
}

// Relationship returns a relationship score; unknown names are 0.
func (s *State) Relationship(name string) int {
	return s.Relationships[name]
}

// AdjustStat adds delta to the named stat. It returns false for unknown stat names.
func (s *State) AdjustStat(name string, delta int) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case StatPhysical:
		s.Stats.Physical += delta
	case StatMental:
		s.Stats.Mental += delta
	default:
		return false
	}
	return true
}

// Equal compares two states by value. Nil and empty collections are equal.
func (s *State) Equal(o *State) bool {
	if s == nil || o == nil {
		return s == o
	}
	return s.Stats == o.Stats &&
		slices.Equal(s.Inventory.Items, o.Inventory.Items) &&
		slices.Equal(s.Inventory.Tapes, o.Inventory.Tapes) &&
		maps.Equal(s.Flags, o.Flags) &&
		maps.Equal(s.Relationships, o.Relationships)
}

func addTo(set *[]string, name string) bool {
	if slices.Contains(*set, name) {
		return false
	}
	*set = append(*set, name)
	return true
}

func dedupe(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}

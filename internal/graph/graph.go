package graph

import (
	"slices"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// Graph indexes an episode's events by id. It is read-only after Build.
type Graph struct {
	episode *story.Episode
	byID    map[int]*story.Event
	ids     []int // sorted ascending
}

// Build validates and indexes an episode.
// Rules:
// - the episode must have at least one event
// - event ids must be unique
// - every non-ending choice must point at an event in the episode
func Build(ep *story.Episode) (*Graph, error) {
	if ep == nil || len(ep.Events) == 0 {
		id := 0
		if ep != nil {
			id = ep.ID
		}
		return nil, errors.NewEmptyEpisode(id)
	}

	g := &Graph{
		episode: ep,
		byID:    make(map[int]*story.Event, len(ep.Events)),
		ids:     make([]int, 0, len(ep.Events)),
	}
	for i := range ep.Events {
		ev := &ep.Events[i]
		if _, dup := g.byID[ev.ID]; dup {
			return nil, errors.NewDuplicateEventID(ev.ID)
		}
		g.byID[ev.ID] = ev
		g.ids = append(g.ids, ev.ID)
	}
	slices.Sort(g.ids)

	var dangling []errors.DanglingRef
	for i := range ep.Events {
		ev := &ep.Events[i]
		for _, c := range ev.Choices {
			if c.IsEnding() {
				continue
			}
			if _, ok := g.byID[*c.NextEvent]; !ok {
				dangling = append(dangling, errors.DanglingRef{
					EventID:   ev.ID,
					Choice:    c.Text,
					NextEvent: *c.NextEvent,
				})
			}
		}
	}
	if len(dangling) > 0 {
		return nil, errors.NewDanglingReference(dangling)
	}

	return g, nil
}

// Episode returns the indexed episode.
func (g *Graph) Episode() *story.Episode {
	return g.episode
}

// Event looks up an event by id.
func (g *Graph) Event(id int) (*story.Event, error) {
	ev, ok := g.byID[id]
	if !ok {
		return nil, errors.NewEventNotFound(id)
	}
	return ev, nil
}

// Has reports whether an event id exists.
func (g *Graph) Has(id int) bool {
	_, ok := g.byID[id]
	return ok
}

// First returns the lowest-id event, where a restarted episode begins.
func (g *Graph) First() *story.Event {
	return g.byID[g.ids[0]]
}

// Len returns the number of events.
func (g *Graph) Len() int {
	return len(g.ids)
}

// IDs returns all event ids in ascending order.
func (g *Graph) IDs() []int {
	return slices.Clone(g.ids)
}

// Endings returns the ids of events that offer no choices.
func (g *Graph) Endings() []int {
	var out []int
	for _, id := range g.ids {
		if g.byID[id].IsTerminal() {
			out = append(out, id)
		}
	}
	return out
}

// Unreachable returns ids that cannot be reached from First by following choices.
// These are not errors, but usually mean an authoring mistake.
func (g *Graph) Unreachable() []int {
	seen := map[int]bool{}
	queue := []int{g.ids[0]}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if seen[id] {
			continue
		}
		seen[id] = true
		for _, c := range g.byID[id].Choices {
			if !c.IsEnding() && !seen[*c.NextEvent] {
				queue = append(queue, *c.NextEvent)
			}
		}
	}

	var out []int
	for _, id := range g.ids {
		if !seen[id] {
			out = append(out, id)
		}
	}
	return out
}

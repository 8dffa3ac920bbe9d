package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

func next(id int) *int { return &id }

func sampleEpisode() *story.Episode {
	return &story.Episode{
		ID:    1,
		Title: "The Static",
		Events: []story.Event{
			{ID: 3, Text: "C", Choices: []story.Choice{{Text: "end", NextEvent: nil}}},
			{ID: 1, Text: "A", Choices: []story.Choice{
				{Text: "go", NextEvent: next(2)},
				{Text: "skip", NextEvent: next(3)},
			}},
			{ID: 2, Text: "B"},
			{ID: 7, Text: "orphan", Choices: []story.Choice{{Text: "back", NextEvent: next(1)}}},
		},
	}
}

func TestBuild_Valid(t *testing.T) {
	g, err := Build(sampleEpisode())
	require.NoError(t, err)

	assert.Equal(t, 4, g.Len())
	assert.Equal(t, []int{1, 2, 3, 7}, g.IDs())
	assert.Equal(t, 1, g.First().ID)
	assert.True(t, g.Has(7))
	assert.False(t, g.Has(4))

	ev, err := g.Event(2)
	require.NoError(t, err)
	assert.Equal(t, "B", ev.Text)
}

func TestBuild_EveryChoiceResolves(t *testing.T) {
	g, err := Build(sampleEpisode())
	require.NoError(t, err)

	for _, id := range g.IDs() {
		ev, err := g.Event(id)
		require.NoError(t, err)
		for _, c := range ev.Choices {
			if !c.IsEnding() {
				assert.True(t, g.Has(c.Next()), "event %d choice %q", id, c.Text)
			}
		}
	}
}

func TestBuild_DuplicateEventID(t *testing.T) {
	ep := sampleEpisode()
	ep.Events = append(ep.Events, story.Event{ID: 2, Text: "again"})

	_, err := Build(ep)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrDuplicateEventID))
}

func TestBuild_DanglingReference(t *testing.T) {
	ep := sampleEpisode()
	ep.Events[2].Choices = []story.Choice{{Text: "into the void", NextEvent: next(99)}}

	_, err := Build(ep)
	require.Error(t, err)
	require.True(t, errors.Is(err, errors.ErrDanglingReference))

	eErr := err.(*errors.EngineError)
	refs := eErr.Details["references"].([]errors.DanglingRef)
	require.Len(t, refs, 1)
	assert.Equal(t, errors.DanglingRef{EventID: 2, Choice: "into the void", NextEvent: 99}, refs[0])
	assert.Contains(t, eErr.Message, "into the void")
}

func TestBuild_Empty(t *testing.T) {
	_, err := Build(&story.Episode{ID: 5})
	assert.True(t, errors.Is(err, errors.ErrEmptyEpisode))

	_, err = Build(nil)
	assert.True(t, errors.Is(err, errors.ErrEmptyEpisode))
}

func TestEvent_NotFound(t *testing.T) {
	g, err := Build(sampleEpisode())
	require.NoError(t, err)

	_, err = g.Event(42)
	assert.True(t, errors.Is(err, errors.ErrEventNotFound))
}

func TestEndings(t *testing.T) {
	g, err := Build(sampleEpisode())
	require.NoError(t, err)

	assert.Equal(t, []int{2}, g.Endings())
}

func TestUnreachable(t *testing.T) {
	g, err := Build(sampleEpisode())
	require.NoError(t, err)

	assert.Equal(t, []int{7}, g.Unreachable())
}

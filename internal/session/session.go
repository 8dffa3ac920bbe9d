package session

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/graph"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/history"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/logging"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/player"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/resolver"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/save"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// EpisodeLoader is satisfied by *episode.Store.
type EpisodeLoader interface {
	Load(number int, language string) (*story.Episode, error)
}

// Options configures a session. The zero value is usable.
type Options struct {
	// HistoryCapacity bounds the history log; 0 means history.DefaultCapacity.
	HistoryCapacity int

	// InitialState is cloned whenever the player state is reset.
	InitialState *player.State

	// Autosave, when set, receives a snapshot after every choice.
	// Autosave failures are logged, never returned.
	Autosave save.Store

	Logger *slog.Logger
	Clock  func() time.Time
}

// Session plays one episode for one player.
// It is not safe for concurrent use; callers serialize LoadEpisode, MakeChoice and Restart.
type Session struct {
	id       string
	loader   EpisodeLoader
	resolver *resolver.Resolver
	opts     Options
	logger   *slog.Logger

	phase    Phase
	episode  *story.Episode
	graph    *graph.Graph
	language string
	current  *story.Event
	state    *player.State
	history  *history.Log
}

// New creates an uninitialized session.
func New(loader EpisodeLoader, opts Options) *Session {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.InitialState == nil {
		opts.InitialState = player.New()
	}
	id := ulid.MustNew(ulid.Timestamp(opts.Clock()), ulid.Monotonic(rand.Reader, 0)).String()
	return &Session{
		id:       id,
		loader:   loader,
		resolver: resolver.New(opts.Logger),
		opts:     opts,
		logger:   opts.Logger.With("session", id),
		phase:    Uninitialized,
		state:    opts.InitialState.Clone(),
		history:  history.New(opts.HistoryCapacity),
	}
}

// ID returns the session's ULID.
func (s *Session) ID() string { return s.id }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Episode returns the loaded episode, or nil. The episode is shared and must not be modified.
func (s *Session) Episode() *story.Episode { return s.episode }

// Graph returns the loaded episode's graph, or nil.
func (s *Session) Graph() *graph.Graph { return s.graph }

// State returns a copy of the player state.
func (s *Session) State() *player.State { return s.state.Clone() }

// History returns a copy of the history log, oldest first.
func (s *Session) History() []history.Entry { return s.history.Entries() }

// LoadEpisode loads an episode and shows startEventID, or the first event when it is 0.
// On failure the session is left exactly as it was.
func (s *Session) LoadEpisode(number int, language string, startEventID int) error {
	ep, err := s.loader.Load(number, language)
	if err != nil {
		return err
	}
	g, err := graph.Build(ep)
	if err != nil {
		return err
	}
	start := g.First()
	if startEventID != 0 {
		if start, err = g.Event(startEventID); err != nil {
			return err
		}
	}

	s.episode = ep
	s.graph = g
	s.language = language
	s.phase = EpisodeLoaded
	s.reset()
	s.logger.Info("episode loaded", "episode", number, "language", language, "events", g.Len(), "start", start.ID)
	s.showEvent(start)
	return nil
}

// MakeChoice takes one of the current event's choices.
// The choice must match one offered by the current event; stale choices are rejected.
func (s *Session) MakeChoice(choice story.Choice) (*Transition, error) {
	if s.phase != AtEvent {
		return nil, errors.NewNotInEvent(s.phase.String())
	}
	i := indexOf(s.current, choice)
	if i < 0 {
		return nil, errors.NewInvalidChoice(s.current.ID, choice.Text)
	}
	return s.take(i)
}

// Choose takes the current event's choice at index (0-based).
func (s *Session) Choose(index int) (*Transition, error) {
	if s.phase != AtEvent {
		return nil, errors.NewNotInEvent(s.phase.String())
	}
	if index < 0 || index >= len(s.current.Choices) {
		return nil, errors.NewInvalidChoice(s.current.ID, fmt.Sprintf("#%d", index))
	}
	return s.take(index)
}

func (s *Session) take(index int) (*Transition, error) {
	from := s.current
	choice := from.Choices[index]

	res, err := s.resolver.Resolve(s.graph, from, choice, s.state)
	if err != nil {
		return nil, err
	}

	s.history.SetLastChoice(choice.Text)
	s.state = res.State

	t := &Transition{From: from.ID, SideEffects: res.SideEffects}
	if res.Ended() {
		s.phase = Ended
		t.Ended = true
		s.logger.Debug("ending reached", "event_id", from.ID, "choice", choice.Text)
	} else {
		next, err := s.graph.Event(*res.Next)
		if err != nil {
			// Build guarantees every non-ending choice resolves.
			return nil, errors.NewInternal(err)
		}
		s.showEvent(next)
		to := next.ID
		t.To = &to
		if s.phase == Ended {
			t.Ended = true
			t.SideEffects = append(t.SideEffects, resolver.SideEffect{Kind: resolver.EndingReached})
		}
		s.logger.Debug("choice made", "from", from.ID, "to", to, "choice", choice.Text)
	}

	s.autosave()
	t.Display = s.Current()
	return t, nil
}

// Restart resets the player and returns to the first event of the loaded episode.
func (s *Session) Restart() error {
	if s.graph == nil {
		return errors.NewNotInEvent(s.phase.String())
	}
	s.reset()
	s.showEvent(s.graph.First())
	s.logger.Info("episode restarted", "episode", s.episode.ID)
	return nil
}

// Current returns the displayable state.
func (s *Session) Current() Display {
	d := Display{
		SessionID: s.id,
		Phase:     s.phase,
		Stats:     s.state.Stats,
		Inventory: s.state.Inventory.Clone(),
		Choices:   []ChoiceView{},
	}
	if s.episode != nil {
		d.EpisodeNumber = s.episode.ID
		d.EpisodeTitle = s.episode.Title
		d.Language = s.language
		if s.episode.ChapterIntro != nil {
			intro := *s.episode.ChapterIntro
			d.ChapterIntro = &intro
		}
	}
	if s.current != nil {
		d.Event = viewEvent(s.current)
		if s.phase == AtEvent {
			d.Choices = viewChoices(s.current)
		}
	}
	return d
}

// Snapshot captures the session for saving.
func (s *Session) Snapshot() (*save.Snapshot, error) {
	if s.current == nil {
		return nil, errors.NewNotInEvent(s.phase.String())
	}
	return &save.Snapshot{
		ID:            save.NewID(),
		EpisodeNumber: s.episode.ID,
		EpisodeTitle:  s.episode.Title,
		EventID:       s.current.ID,
		Language:      s.language,
		Stats:         s.state.Stats,
		Inventory:     s.state.Inventory.Clone(),
		Flags:         maps.Clone(s.state.Flags),
		Relationships: maps.Clone(s.state.Relationships),
		History:       s.history.Entries(),
		Ended:         s.phase == Ended,
		SavedAt:       s.opts.Clock(),
		Preview:       save.Preview(s.current.Text),
	}, nil
}

// Resume restores a snapshot exactly: no overrides are re-applied and no history is appended.
// On failure the session is left exactly as it was.
func (s *Session) Resume(snap *save.Snapshot) error {
	if snap == nil {
		return errors.NewInvalidRequest("nothing to resume")
	}
	ep, err := s.loader.Load(snap.EpisodeNumber, snap.Language)
	if err != nil {
		return err
	}
	g, err := graph.Build(ep)
	if err != nil {
		return err
	}
	ev, err := g.Event(snap.EventID)
	if err != nil {
		return err
	}

	state := player.New()
	state.Stats = snap.Stats
	state.Inventory = snap.Inventory.Clone()
	maps.Copy(state.Flags, snap.Flags)
	maps.Copy(state.Relationships, snap.Relationships)

	s.episode = ep
	s.graph = g
	s.language = snap.Language
	s.current = ev
	s.state = state
	s.history.Restore(snap.History)
	s.phase = AtEvent
	if snap.Ended || ev.IsTerminal() {
		s.phase = Ended
	}
	s.logger.Info("session resumed", "episode", ep.ID, "event_id", ev.ID, "phase", s.phase.String())
	return nil
}

func (s *Session) reset() {
	s.state = s.opts.InitialState.Clone()
	s.history.Clear()
	s.current = nil
}

// showEvent makes ev current: overrides are applied and a history entry is appended.
func (s *Session) showEvent(ev *story.Event) {
	if ev.Stats != nil {
		s.state.ApplyStatsOverride(*ev.Stats)
	}
	if ev.Inventory != nil {
		s.state.ApplyInventoryOverride(*ev.Inventory)
	}
	s.history.Append(history.Entry{
		EventID:   ev.ID,
		Location:  ev.Location,
		Text:      ev.Text,
		Timestamp: s.opts.Clock(),
		Stats:     s.state.Stats,
		Inventory: s.state.Inventory.Clone(),
	})
	s.current = ev
	s.phase = AtEvent
	if ev.IsTerminal() {
		s.phase = Ended
	}
}

func (s *Session) autosave() {
	if s.opts.Autosave == nil {
		return
	}
	snap, err := s.Snapshot()
	if err == nil {
		err = s.opts.Autosave.Save(snap)
	}
	if err != nil {
		logging.LogError(s.logger, "autosave failed", err)
	}
}

// indexOf finds choice among ev's choices by value.
func indexOf(ev *story.Event, choice story.Choice) int {
	return slices.IndexFunc(ev.Choices, func(c story.Choice) bool {
		return c.Text == choice.Text &&
			c.IsEnding() == choice.IsEnding() &&
			c.Next() == choice.Next() &&
			c.UnlockTape == choice.UnlockTape &&
			slices.Equal(c.LoseItems, choice.LoseItems) &&
			slices.Equal(c.Consequences, choice.Consequences)
	})
}

package session

import (
	"github.com/FabienROFFET/Noise-Over-Silence/internal/resolver"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// Phase is where a session is in its lifecycle.
type Phase int

const (
	Uninitialized Phase = iota
	EpisodeLoaded
	AtEvent
	Ended
)

func (p Phase) String() string {
	switch p {
	case Uninitialized:
		return "uninitialized"
	case EpisodeLoaded:
		return "episode_loaded"
	case AtEvent:
		return "at_event"
	case Ended:
		return "ended"
	}
	return "unknown"
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// EventView is the presentable part of an event.
type EventView struct {
	ID           int                `json:"id"`
	Location     string             `json:"location,omitempty"`
	Text         string             `json:"text"`
	TextPosition story.TextPosition `json:"text_position"`
	PanelWidth   float64            `json:"panel_width"`
	Image        string             `json:"image,omitempty"`
	ImagePrompt  string             `json:"image_prompt,omitempty"`
	Soundscape   string             `json:"soundscape,omitempty"`
	VoiceOver    string             `json:"voice_over,omitempty"`
}

// ChoiceView is a selectable option. Index is what Choose expects.
type ChoiceView struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Ending bool   `json:"ending,omitempty"`
}

// Display is everything the presentation layer needs to draw the current moment.
// It holds copies; changing it never affects the session.
type Display struct {
	SessionID     string              `json:"session_id"`
	Phase         Phase               `json:"phase"`
	EpisodeNumber int                 `json:"episode,omitempty"`
	EpisodeTitle  string              `json:"episode_title,omitempty"`
	Language      string              `json:"language,omitempty"`
	ChapterIntro  *story.ChapterIntro `json:"chapter_intro,omitempty"`
	Event         *EventView          `json:"event,omitempty"`
	Stats         story.Stats         `json:"stats"`
	Inventory     story.Inventory     `json:"inventory"`
	Choices       []ChoiceView        `json:"choices"`
}

// Transition is the outcome of a choice.
type Transition struct {
	From        int                   `json:"from"`
	To          *int                  `json:"to"`
	Ended       bool                  `json:"ended"`
	SideEffects []resolver.SideEffect `json:"side_effects"`
	Display     Display               `json:"display"`
}

func viewEvent(ev *story.Event) *EventView {
	if ev == nil {
		return nil
	}
	return &EventView{
		ID:           ev.ID,
		Location:     ev.Location,
		Text:         ev.Text,
		TextPosition: ev.TextPosition,
		PanelWidth:   ev.PanelWidth,
		Image:        ev.Image,
		ImagePrompt:  ev.ImagePrompt,
		Soundscape:   ev.Soundscape,
		VoiceOver:    ev.VoiceOver,
	}
}

func viewChoices(ev *story.Event) []ChoiceView {
	out := make([]ChoiceView, 0, len(ev.Choices))
	for i, c := range ev.Choices {
		out = append(out, ChoiceView{Index: i, Text: c.Text, Ending: c.IsEnding()})
	}
	return out
}

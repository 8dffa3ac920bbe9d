package story

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies the encoding of an episode document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromName infers the document format from a file name extension.
func FormatFromName(name string) (Format, bool) {
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return FormatJSON, true
	case ".yaml", ".yml":
		return FormatYAML, true
	}
	return "", false
}

// The document shapes below mirror the authoring format. Several spellings of the
// same field exist across authored episodes; all are accepted and folded into the
// in-memory model by toEpisode.

type rawEpisode struct {
	Episode      *int        `json:"episode" yaml:"episode"`
	ID           *int        `json:"id" yaml:"id"`
	Title        string      `json:"title" yaml:"title"`
	ChapterIntro *rawChapter `json:"chapter_intro" yaml:"chapter_intro"`
	Chapter      *rawChapter `json:"chapter" yaml:"chapter"`
	Events       *[]rawEvent `json:"events" yaml:"events"`
}

type rawChapter struct {
	Number        int     `json:"number" yaml:"number"`
	Title         string  `json:"title" yaml:"title"`
	IntroImage    string  `json:"intro_image" yaml:"intro_image"`
	IntroDuration float64 `json:"intro_duration" yaml:"intro_duration"`
}

type rawEvent struct {
	ID           int         `json:"id" yaml:"id"`
	Location     string      `json:"location" yaml:"location"`
	Text         string      `json:"text" yaml:"text"`
	TextPosition string      `json:"text_position" yaml:"text_position"`
	PanelWidth   float64     `json:"panel_width" yaml:"panel_width"`
	Stats        *Stats      `json:"stats" yaml:"stats"`
	Inventory    *Inventory  `json:"inventory" yaml:"inventory"`
	SoundscapeMP string      `json:"soundscape_mp3" yaml:"soundscape_mp3"`
	Soundscape   string      `json:"soundscape" yaml:"soundscape"`
	VoiceOver    string      `json:"voice_over" yaml:"voice_over"`
	ImageLink    string      `json:"image_link" yaml:"image_link"`
	Image        string      `json:"image" yaml:"image"`
	ImagePrompt  string      `json:"image_prompt" yaml:"image_prompt"`
	Choices      []rawChoice `json:"choices" yaml:"choices"`
}

type rawChoice struct {
	Text         string        `json:"text" yaml:"text"`
	NextEvent    *int          `json:"next_event" yaml:"next_event"`
	Ending       string        `json:"ending" yaml:"ending"`
	UnlockTape   string        `json:"unlock_tape" yaml:"unlock_tape"`
	LoseItems    []string      `json:"lose_items" yaml:"lose_items"`
	Consequences []Consequence `json:"consequences" yaml:"consequences"`
}

// Decode parses an episode document. Errors describe what is malformed;
// callers wrap them with the document name.
func Decode(data []byte, format Format) (*Episode, error) {
	var raw rawEpisode
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
	return raw.toEpisode()
}

func (r *rawEpisode) toEpisode() (*Episode, error) {
	if r.Events == nil {
		return nil, fmt.Errorf("missing required field \"events\"")
	}

	ep := &Episode{Title: r.Title}
	switch {
	case r.Episode != nil:
		ep.ID = *r.Episode
	case r.ID != nil:
		ep.ID = *r.ID
	}
	if ep.ID < 0 {
		return nil, fmt.Errorf("episode number must not be negative, got %d", ep.ID)
	}

	chapter := r.ChapterIntro
	if chapter == nil {
		chapter = r.Chapter
	}
	if chapter != nil {
		duration := chapter.IntroDuration
		if duration <= 0 {
			duration = DefaultIntroDuration
		}
		ep.ChapterIntro = &ChapterIntro{
			Number:          chapter.Number,
			Title:           chapter.Title,
			Image:           chapter.IntroImage,
			DurationSeconds: duration,
		}
	}

	ep.Events = make([]Event, 0, len(*r.Events))
	for i, re := range *r.Events {
		ev, err := re.toEvent()
		if err != nil {
			return nil, fmt.Errorf("events[%d]: %w", i, err)
		}
		ep.Events = append(ep.Events, ev)
	}
	return ep, nil
}

func (r *rawEvent) toEvent() (Event, error) {
	if r.ID <= 0 {
		return Event{}, fmt.Errorf("event id must be positive, got %d", r.ID)
	}

	pos := TextPosition(strings.ToLower(strings.TrimSpace(r.TextPosition)))
	switch pos {
	case "":
		pos = TextRight
	case TextLeft, TextRight, TextCenter:
	default:
		return Event{}, fmt.Errorf("event %d: unknown text_position %q", r.ID, r.TextPosition)
	}

	width := r.PanelWidth
	if width == 0 {
		width = DefaultPanelWidth
	}
	if width < 0 || width > 1 {
		return Event{}, fmt.Errorf("event %d: panel_width must be in (0,1], got %g", r.ID, r.PanelWidth)
	}

	ev := Event{
		ID:           r.ID,
		Location:     r.Location,
		Text:         r.Text,
		TextPosition: pos,
		PanelWidth:   width,
		Soundscape:   firstNonEmpty(r.SoundscapeMP, r.Soundscape),
		VoiceOver:    r.VoiceOver,
		Image:        firstNonEmpty(r.ImageLink, r.Image),
		ImagePrompt:  r.ImagePrompt,
		Choices:      make([]Choice, 0, len(r.Choices)),
	}
	if r.Stats != nil {
		s := *r.Stats
		ev.Stats = &s
	}
	if r.Inventory != nil {
		inv := r.Inventory.Clone()
		ev.Inventory = &inv
	}

	for j, rc := range r.Choices {
		if strings.TrimSpace(rc.Text) == "" {
			return Event{}, fmt.Errorf("event %d: choices[%d] has no text", r.ID, j)
		}
		ev.Choices = append(ev.Choices, Choice{
			Text:         rc.Text,
			NextEvent:    nextEvent(rc),
			UnlockTape:   strings.TrimSpace(rc.UnlockTape),
			LoseItems:    rc.LoseItems,
			Consequences: rc.Consequences,
		})
	}
	return ev, nil
}

// nextEvent is the one conversion rule for endings: absent, null, zero or negative
// next_event, or an explicit ending marker, all become nil.
func nextEvent(rc rawChoice) *int {
	if strings.TrimSpace(rc.Ending) != "" {
		return nil
	}
	if rc.NextEvent == nil || *rc.NextEvent <= 0 {
		return nil
	}
	n := *rc.NextEvent
	return &n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package story

// TextPosition controls which side of the screen an event's text panel slides in from.
type TextPosition string

const (
	TextLeft   TextPosition = "left"
	TextRight  TextPosition = "right"
	TextCenter TextPosition = "center"
)

// DefaultPanelWidth is the fraction of the screen used by the text panel
// when an event does not specify one.
const DefaultPanelWidth = 0.33

// DefaultIntroDuration is how long, in seconds, a chapter intro is shown
// when the document does not say.
const DefaultIntroDuration = 3.0

// Episode is a complete narrative unit: a directed graph of events.
// Episodes are read-only once loaded and may be shared between sessions.
type Episode struct {
	ID           int
	Title        string
	Language     string // language of the source document, "" for the unsuffixed one
	ChapterIntro *ChapterIntro
	Events       []Event
}

// ChapterIntro is the title card shown before an episode's first event.
type ChapterIntro struct {
	Number          int     `json:"number"`
	Title           string  `json:"title"`
	Image           string  `json:"image,omitempty"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// Event is a single narrative beat.
type Event struct {
	ID           int
	Location     string
	Text         string
	TextPosition TextPosition
	PanelWidth   float64

	// Stats and Inventory, when set, replace the player's state wholesale on arrival.
	Stats     *Stats
	Inventory *Inventory

	Soundscape  string
	VoiceOver   string
	Image       string
	ImagePrompt string

	Choices []Choice
}

// IsTerminal reports whether the event offers no way forward.
func (e *Event) IsTerminal() bool {
	return len(e.Choices) == 0
}

// Choice is a player-selectable option on an event.
type Choice struct {
	Text string

	// NextEvent is nil when the choice ends the episode.
	NextEvent *int

	UnlockTape   string
	LoseItems    []string
	Consequences []Consequence
}

// IsEnding reports whether the choice intentionally ends the narrative branch.
func (c Choice) IsEnding() bool {
	return c.NextEvent == nil
}

// Next returns the destination id, or 0 for an ending.
func (c Choice) Next() int {
	if c.NextEvent == nil {
		return 0
	}
	return *c.NextEvent
}

// ConsequenceType names the kind of state change a consequence applies.
// The set is open; unknown types are skipped by the resolver.
type ConsequenceType string

const (
	ConsequenceStat         ConsequenceType = "stat"
	ConsequenceFlag         ConsequenceType = "flag"
	ConsequenceRelationship ConsequenceType = "relationship"
	ConsequenceItem         ConsequenceType = "item"
)

// Consequence is a typed state-mutation instruction attached to a choice.
type Consequence struct {
	Type   ConsequenceType `json:"type" yaml:"type"`
	Target string          `json:"target" yaml:"target"`
	Value  int             `json:"value" yaml:"value"`
}

// Stats holds the player's numeric attributes.
type Stats struct {
	Physical int `json:"physical" yaml:"physical"`
	Mental   int `json:"mental" yaml:"mental"`
}

// Inventory holds carried items and collected tapes.
type Inventory struct {
	Items []string `json:"items" yaml:"items"`
	Tapes []string `json:"tapes" yaml:"tapes"`
}

// Clone returns a deep copy of the inventory.
func (inv Inventory) Clone() Inventory {
	return Inventory{
		Items: cloneStrings(inv.Items),
		Tapes: cloneStrings(inv.Tapes),
	}
}

func cloneStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}

package save

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/history"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// PreviewLength is the number of runes of event text kept in a save preview.
const PreviewLength = 50

// Snapshot is everything needed to resume a session exactly where it was saved.
type Snapshot struct {
	ID            string          `json:"id"`
	EpisodeNumber int             `json:"episode"`
	EpisodeTitle  string          `json:"episode_title,omitempty"`
	EventID       int             `json:"event_id"`
	Language      string          `json:"language"`
	Stats         story.Stats     `json:"stats"`
	Inventory     story.Inventory `json:"inventory"`
	Flags         map[string]bool `json:"flags,omitempty"`
	Relationships map[string]int  `json:"relationships,omitempty"`
	History       []history.Entry `json:"history"`
	Ended         bool            `json:"ended"`
	SavedAt       time.Time       `json:"saved_at"`
	Preview       string          `json:"preview"`
}

// Preview shortens event text for a load menu.
func Preview(text string) string {
	if utf8.RuneCountInString(text) <= PreviewLength {
		return text
	}
	return string([]rune(text)[:PreviewLength]) + "..."
}

// NewID returns a fresh save id.
func NewID() string {
	entropy := ulid.Monotonic(rand.Reader, 0)
	return ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// Validate checks the fields a resume depends on.
func (s *Snapshot) Validate() error {
	if s.EpisodeNumber <= 0 {
		return fmt.Errorf("episode must be positive, got %d", s.EpisodeNumber)
	}
	if s.EventID <= 0 {
		return fmt.Errorf("event_id must be positive, got %d", s.EventID)
	}
	return nil
}

func encode(s *Snapshot) ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return json.MarshalIndent(s, "", "  ")
}

func decode(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	if s.Inventory.Items == nil {
		s.Inventory.Items = []string{}
	}
	if s.Inventory.Tapes == nil {
		s.Inventory.Tapes = []string{}
	}
	return &s, nil
}

// stamp fills the id and time of a snapshot that has not been saved before.
func stamp(s *Snapshot, now time.Time) {
	if s.ID == "" {
		s.ID = NewID()
	}
	if s.SavedAt.IsZero() {
		s.SavedAt = now
	}
}

// Package tapes is the collectible cassette catalog. Choices unlock tapes; the
// tape deck plays the unlocked ones.
package tapes

import (
	"database/sql"
	"slices"
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// Tape is one collectible cassette. AudioRef is resolved by the presentation layer.
type Tape struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Artist      string `json:"artist"`
	Description string `json:"description"`
	AudioRef    string `json:"audio_ref"`
	Unlocked    bool   `json:"unlocked"`
}

// DefaultTapes returns the stock catalog. The first tape starts unlocked.
func DefaultTapes() []Tape {
	return []Tape{
		{
			ID:          "tape_01",
			Title:       "Forgotten Melodies",
			Artist:      "Unknown Artist",
			Description: "A haunting melody from before the silence",
			AudioRef:    "Audio/Tapes/tape_01",
			Unlocked:    true,
		},
		{
			ID:          "tape_02",
			Title:       "Winter Dreams",
			Artist:      "The Lost Ones",
			Description: "Echoes of a warmer past",
			AudioRef:    "Audio/Tapes/tape_02",
		},
		{
			ID:          "tape_03",
			Title:       "City Lights",
			Artist:      "Brno Collective",
			Description: "When the city still glowed",
			AudioRef:    "Audio/Tapes/tape_03",
		},
	}
}

// Catalog is an ordered set of tapes.
type Catalog struct {
	tapes []Tape
}

// NewCatalog creates a catalog from a copy of tapes.
func NewCatalog(tapes []Tape) *Catalog {
	return &Catalog{tapes: slices.Clone(tapes)}
}

// Default creates the stock catalog.
func Default() *Catalog {
	return NewCatalog(DefaultTapes())
}

// Tapes returns a copy of every tape in order.
func (c *Catalog) Tapes() []Tape {
	return slices.Clone(c.tapes)
}

// Len returns the number of tapes.
func (c *Catalog) Len() int {
	return len(c.tapes)
}

// Get looks up a tape by id.
func (c *Catalog) Get(id string) (Tape, bool) {
	i := c.index(id)
	if i < 0 {
		return Tape{}, false
	}
	return c.tapes[i], true
}

// Unlock marks a tape unlocked. It reports whether anything changed;
// unknown ids and already unlocked tapes return false.
func (c *Catalog) Unlock(id string) bool {
	i := c.index(id)
	if i < 0 || c.tapes[i].Unlocked {
		return false
	}
	c.tapes[i].Unlocked = true
	return true
}

// Unlocked returns the unlocked tapes in catalog order.
func (c *Catalog) Unlocked() []Tape {
	var out []Tape
	for _, t := range c.tapes {
		if t.Unlocked {
			out = append(out, t)
		}
	}
	return out
}

// Next returns the index of the next unlocked tape after i, wrapping around.
// It returns -1 when nothing is unlocked.
func (c *Catalog) Next(i int) int {
	return c.step(i, 1)
}

// Previous returns the index of the previous unlocked tape before i, wrapping around.
// It returns -1 when nothing is unlocked.
func (c *Catalog) Previous(i int) int {
	return c.step(i, -1)
}

func (c *Catalog) step(i, dir int) int {
	n := len(c.tapes)
	if n == 0 {
		return -1
	}
	for range n {
		i = ((i+dir)%n + n) % n
		if c.tapes[i].Unlocked {
			return i
		}
	}
	return -1
}

// Sync unlocks every catalog tape held in inv and returns the ids newly unlocked.
// Tapes in inv that the catalog does not know are ignored.
func (c *Catalog) Sync(inv story.Inventory) []string {
	var added []string
	for _, id := range inv.Tapes {
		if c.Unlock(id) {
			added = append(added, id)
		}
	}
	return added
}

// Load returns the default catalog with the unlocks recorded in the database applied.
func Load(database *sql.DB) (*Catalog, error) {
	ids, err := db.ListUnlockedTapes(database)
	if err != nil {
		return nil, err
	}
	c := Default()
	for _, id := range ids {
		c.Unlock(id)
	}
	return c, nil
}

// Persist records every unlocked tape. Already recorded tapes keep their unlock time.
func (c *Catalog) Persist(database *sql.DB) error {
	now := time.Now()
	for _, t := range c.tapes {
		if !t.Unlocked {
			continue
		}
		if _, err := db.UnlockTape(database, t.ID, now); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) index(id string) int {
	return slices.IndexFunc(c.tapes, func(t Tape) bool { return t.ID == id })
}

package history

import (
	"time"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

// DefaultCapacity is the number of entries kept before the oldest are evicted.
const DefaultCapacity = 100

// Entry records one visited event and the choice the player took there.
// Stats and Inventory are snapshots taken on arrival; they never alias live state.
type Entry struct {
	EventID     int             `json:"event_id"`
	Location    string          `json:"location,omitempty"`
	Text        string          `json:"text"`
	ChoiceTaken string          `json:"choice_taken"`
	Timestamp   time.Time       `json:"timestamp"`
	Stats       story.Stats     `json:"stats"`
	Inventory   story.Inventory `json:"inventory"`
}

// Log is an append-only, capacity-bounded history. Oldest entries go first.
type Log struct {
	entries  []Entry
	capacity int
}

// New creates a log. A non-positive capacity uses DefaultCapacity.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Log{capacity: capacity}
}

// Append adds an entry, evicting the oldest when the log is over capacity.
func (l *Log) Append(e Entry) {
	e.Inventory = e.Inventory.Clone()
	l.entries = append(l.entries, e)
	if over := len(l.entries) - l.capacity; over > 0 {
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
}

// SetLastChoice records the choice taken at the most recent event.
// The choice is only known after the event was shown, so the entry is amended in place.
// It returns false when the log is empty.
func (l *Log) SetLastChoice(text string) bool {
	if len(l.entries) == 0 {
		return false
	}
	l.entries[len(l.entries)-1].ChoiceTaken = text
	return true
}

// Last returns the most recent entry.
func (l *Log) Last() (Entry, bool) {
	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return copyEntry(l.entries[len(l.entries)-1]), true
}

// Entries returns a copy of the log, oldest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[i] = copyEntry(e)
	}
	return out
}

// Len returns the number of entries held.
func (l *Log) Len() int {
	return len(l.entries)
}

// Capacity returns the maximum number of entries held.
func (l *Log) Capacity() int {
	return l.capacity
}

// Clear drops every entry.
func (l *Log) Clear() {
	l.entries = nil
}

// Restore replaces the log contents, keeping the most recent entries that fit.
func (l *Log) Restore(entries []Entry) {
	l.entries = nil
	for _, e := range entries {
		l.Append(e)
	}
}

func copyEntry(e Entry) Entry {
	e.Inventory = e.Inventory.Clone()
	return e
}

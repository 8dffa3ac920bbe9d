package save

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FabienROFFET/Noise-Over-Silence/internal/db"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/errors"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/history"
	"github.com/FabienROFFET/Noise-Over-Silence/internal/story"
)

func sampleSnapshot() *Snapshot {
	return &Snapshot{
		EpisodeNumber: 1,
		EpisodeTitle:  "The Static",
		EventID:       3,
		Language:      "en",
		Stats:         story.Stats{Physical: 70, Mental: 40},
		Inventory:     story.Inventory{Items: []string{"map"}, Tapes: []string{"tape_01"}},
		Flags:         map[string]bool{"met_anna": true},
		History: []history.Entry{
			{EventID: 1, Text: "A", ChoiceTaken: "go"},
			{EventID: 3, Text: "C"},
		},
		Preview: Preview("C"),
	}
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "short", Preview("short"))

	exact := strings.Repeat("a", PreviewLength)
	assert.Equal(t, exact, Preview(exact))

	long := strings.Repeat("b", PreviewLength+1)
	assert.Equal(t, strings.Repeat("b", PreviewLength)+"...", Preview(long))

	// counts runes, not bytes
	czech := strings.Repeat("ž", PreviewLength+5)
	assert.Equal(t, strings.Repeat("ž", PreviewLength)+"...", Preview(czech))
}

func TestFileStore_LoadBeforeSave(t *testing.T) {
	fs := NewFileStore(t.TempDir(), nil)

	snap, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	exists, err := fs.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStore_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(filepath.Join(dir, "data"), nil)

	in := sampleSnapshot()
	require.NoError(t, fs.Save(in))
	assert.NotEmpty(t, in.ID)
	assert.False(t, in.SavedAt.IsZero())

	exists, err := fs.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	out, err := fs.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.ID, out.ID)
	assert.Equal(t, 1, out.EpisodeNumber)
	assert.Equal(t, 3, out.EventID)
	assert.Equal(t, "en", out.Language)
	assert.Equal(t, in.Stats, out.Stats)
	assert.Equal(t, in.Inventory, out.Inventory)
	assert.Equal(t, in.Flags, out.Flags)
	require.Len(t, out.History, 2)
	assert.Equal(t, "go", out.History[0].ChoiceTaken)
	assert.True(t, in.SavedAt.Equal(out.SavedAt))

	// no temp files left behind
	entries, err := os.ReadDir(filepath.Join(dir, "data"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStore_OverwritesWholesale(t *testing.T) {
	fs := NewFileStore(t.TempDir(), nil)

	require.NoError(t, fs.Save(sampleSnapshot()))
	second := sampleSnapshot()
	second.EventID = 9
	second.Flags = nil
	require.NoError(t, fs.Save(second))

	out, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, 9, out.EventID)
	assert.Empty(t, out.Flags)
}

func TestFileStore_RejectsInvalidSnapshot(t *testing.T) {
	fs := NewFileStore(t.TempDir(), nil)

	err := fs.Save(&Snapshot{EpisodeNumber: 1})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	exists, err := fs.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestFileStore_CorruptLoadsAsNil(t *testing.T) {
	dir := t.TempDir()
	var logs bytes.Buffer
	fs := NewFileStore(dir, slog.New(slog.NewTextHandler(&logs, nil)))

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"episode": 1, "event_id":`), 0600))

	snap, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
	assert.Contains(t, logs.String(), "CORRUPT_SAVE")

	_, err = fs.LoadStrict()
	assert.True(t, errors.Is(err, errors.ErrCorruptSave))
}

func TestFileStore_InvalidContentIsCorrupt(t *testing.T) {
	dir := t.TempDir()
	fs := NewFileStore(dir, nil)

	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"episode": 0, "event_id": 1}`), 0600))

	_, err := fs.LoadStrict()
	assert.True(t, errors.Is(err, errors.ErrCorruptSave))
}

func TestFileStore_DeleteIdempotent(t *testing.T) {
	fs := NewFileStore(t.TempDir(), nil)

	require.NoError(t, fs.Delete())
	require.NoError(t, fs.Save(sampleSnapshot()))
	require.NoError(t, fs.Delete())
	require.NoError(t, fs.Delete())

	snap, err := fs.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)
}

func TestFileStore_RefusesSymlink(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "elsewhere.json")
	require.NoError(t, os.WriteFile(target, []byte("keep"), 0600))
	if err := os.Symlink(target, filepath.Join(dir, FileName)); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	fs := NewFileStore(dir, nil)
	require.Error(t, fs.Save(sampleSnapshot()))

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "keep", string(data))
}

func openDB(t *testing.T) *SlotStore {
	t.Helper()
	database, err := db.Init(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	s, err := NewSlotStore(database, AutoSlot, nil)
	require.NoError(t, err)
	return s
}

func TestSlotStore_RoundTrip(t *testing.T) {
	s := openDB(t)

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	in := sampleSnapshot()
	require.NoError(t, s.Save(in))

	exists, err := s.Exists()
	require.NoError(t, err)
	assert.True(t, exists)

	out, err := s.Load()
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, in.EventID, out.EventID)
	assert.Equal(t, in.Inventory, out.Inventory)
	assert.Equal(t, in.Stats, out.Stats)

	require.NoError(t, s.Delete())
	require.NoError(t, s.Delete())
	exists, err = s.Exists()
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSlotStore_Corrupt(t *testing.T) {
	s := openDB(t)
	require.NoError(t, db.UpsertSave(s.db, &db.SaveRow{
		Slot: AutoSlot, SaveID: "x", Episode: 1, EventID: 1, Language: "en",
		SnapshotJSON: []byte("not json"), SavedAt: 1,
	}))

	snap, err := s.Load()
	require.NoError(t, err)
	assert.Nil(t, snap)

	_, err = s.LoadStrict()
	assert.True(t, errors.Is(err, errors.ErrCorruptSave))
}

func TestNewSlotStore_Range(t *testing.T) {
	_, err := NewSlotStore(nil, MaxSlot+1, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = NewSlotStore(nil, -1, nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))
}

func TestListSlots(t *testing.T) {
	auto := openDB(t)
	manual, err := NewSlotStore(auto.db, 3, nil)
	require.NoError(t, err)

	older := sampleSnapshot()
	older.SavedAt = time.Unix(1000, 0)
	require.NoError(t, auto.Save(older))

	newer := sampleSnapshot()
	newer.EventID = 7
	newer.SavedAt = time.Unix(2000, 0)
	require.NoError(t, manual.Save(newer))

	slots, err := ListSlots(auto.db)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, 3, slots[0].Slot)
	assert.Equal(t, 7, slots[0].EventID)
	assert.Equal(t, AutoSlot, slots[1].Slot)
	assert.Equal(t, int64(1000), slots[1].SavedAt.Unix())
}

func TestWriteFileAtomic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.md")

	require.NoError(t, WriteFileAtomic(path, []byte("one")))
	require.NoError(t, WriteFileAtomic(path, []byte("two")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "two", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

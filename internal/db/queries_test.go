package db

import (
	"database/sql"
	"testing"
	"time"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Init(t.TempDir())
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestSave(slot int, savedAt int64) *SaveRow {
	return &SaveRow{
		Slot:         slot,
		SaveID:       "01HSAVE000000000000000000",
		Episode:      1,
		EventID:      3,
		Language:     "en",
		Preview:      "The radio hisses...",
		SnapshotJSON: []byte(`{"episode":1}`),
		SavedAt:      savedAt,
	}
}

func TestUpsertAndGetSave(t *testing.T) {
	db := openTestDB(t)

	r := newTestSave(0, 100)
	if err := UpsertSave(db, r); err != nil {
		t.Fatalf("UpsertSave failed: %v", err)
	}

	got, err := GetSave(db, 0)
	if err != nil {
		t.Fatalf("GetSave failed: %v", err)
	}
	if got == nil {
		t.Fatal("GetSave returned nil for an occupied slot")
	}
	if got.EventID != 3 || got.Language != "en" || got.Preview != r.Preview {
		t.Errorf("GetSave = %+v, want %+v", got, r)
	}
	if string(got.SnapshotJSON) != `{"episode":1}` {
		t.Errorf("SnapshotJSON = %s", got.SnapshotJSON)
	}
}

func TestUpsertSave_Overwrites(t *testing.T) {
	db := openTestDB(t)

	if err := UpsertSave(db, newTestSave(1, 100)); err != nil {
		t.Fatalf("UpsertSave failed: %v", err)
	}
	second := newTestSave(1, 200)
	second.EventID = 7
	if err := UpsertSave(db, second); err != nil {
		t.Fatalf("UpsertSave failed: %v", err)
	}

	got, err := GetSave(db, 1)
	if err != nil {
		t.Fatalf("GetSave failed: %v", err)
	}
	if got.EventID != 7 || got.SavedAt != 200 {
		t.Errorf("GetSave = %+v, want event 7 at 200", got)
	}

	rows, err := ListSaves(db)
	if err != nil {
		t.Fatalf("ListSaves failed: %v", err)
	}
	if len(rows) != 1 {
		t.Errorf("ListSaves length = %d, want 1", len(rows))
	}
}

func TestGetSave_Empty(t *testing.T) {
	db := openTestDB(t)

	got, err := GetSave(db, 5)
	if err != nil {
		t.Fatalf("GetSave failed: %v", err)
	}
	if got != nil {
		t.Errorf("GetSave = %+v, want nil", got)
	}
}

func TestSaveExistsAndDelete(t *testing.T) {
	db := openTestDB(t)

	exists, err := SaveExists(db, 0)
	if err != nil || exists {
		t.Fatalf("SaveExists = %v, %v; want false, nil", exists, err)
	}

	if err := UpsertSave(db, newTestSave(0, 1)); err != nil {
		t.Fatalf("UpsertSave failed: %v", err)
	}
	exists, err = SaveExists(db, 0)
	if err != nil || !exists {
		t.Fatalf("SaveExists = %v, %v; want true, nil", exists, err)
	}

	removed, err := DeleteSave(db, 0)
	if err != nil || !removed {
		t.Fatalf("DeleteSave = %v, %v; want true, nil", removed, err)
	}
	removed, err = DeleteSave(db, 0)
	if err != nil || removed {
		t.Fatalf("second DeleteSave = %v, %v; want false, nil", removed, err)
	}
}

func TestListSaves_NewestFirst(t *testing.T) {
	db := openTestDB(t)

	for slot, at := range map[int]int64{0: 300, 1: 100, 2: 200} {
		if err := UpsertSave(db, newTestSave(slot, at)); err != nil {
			t.Fatalf("UpsertSave failed: %v", err)
		}
	}

	rows, err := ListSaves(db)
	if err != nil {
		t.Fatalf("ListSaves failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("ListSaves length = %d, want 3", len(rows))
	}
	wantSlots := []int{0, 2, 1}
	for i, r := range rows {
		if r.Slot != wantSlots[i] {
			t.Errorf("rows[%d].Slot = %d, want %d", i, r.Slot, wantSlots[i])
		}
		if r.SnapshotJSON != nil {
			t.Errorf("rows[%d].SnapshotJSON should not be loaded", i)
		}
	}
}

func TestListSaves_Empty(t *testing.T) {
	db := openTestDB(t)

	rows, err := ListSaves(db)
	if err != nil {
		t.Fatalf("ListSaves failed: %v", err)
	}
	if rows == nil || len(rows) != 0 {
		t.Errorf("ListSaves = %v, want empty non-nil slice", rows)
	}
}

func TestUnlockTape(t *testing.T) {
	db := openTestDB(t)
	base := time.Unix(1_700_000_000, 0)

	added, err := UnlockTape(db, "tape_02", base)
	if err != nil || !added {
		t.Fatalf("UnlockTape = %v, %v; want true, nil", added, err)
	}
	added, err = UnlockTape(db, "tape_02", base.Add(time.Hour))
	if err != nil || added {
		t.Fatalf("repeat UnlockTape = %v, %v; want false, nil", added, err)
	}
	if _, err := UnlockTape(db, "tape_01", base.Add(-time.Hour)); err != nil {
		t.Fatalf("UnlockTape failed: %v", err)
	}

	ids, err := ListUnlockedTapes(db)
	if err != nil {
		t.Fatalf("ListUnlockedTapes failed: %v", err)
	}
	if len(ids) != 2 || ids[0] != "tape_01" || ids[1] != "tape_02" {
		t.Errorf("ListUnlockedTapes = %v, want [tape_01 tape_02]", ids)
	}
}

package playlist

import (
	"errors"
	"testing"
)

func newFilledData(t *testing.T, files ...string) PlaylistData {
	t.Helper()
	d := NewMemoryPlaylistData(1000)
	entries := make([]*Entry, len(files))
	for i, f := range files {
		entries[i] = &Entry{Filename: f}
	}
	d.InsertItems(0, entries)
	return d
}

func TestMemDataInsertAndRenumber(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	if d.NEntries() != 3 {
		t.Fatalf("expected 3 entries, got %d", d.NEntries())
	}
	for i := 0; i < 3; i++ {
		if d.EntryAt(i).Number != i {
			t.Fatalf("entry %d has stale Number %d", i, d.EntryAt(i).Number)
		}
	}
}

func TestMemDataRemoveEntriesShiftsPosition(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3")
	d.SetPosition(3, false)

	changed := d.RemoveEntries(1, 1)
	if changed {
		t.Fatal("removing before the position should not invalidate it")
	}
	if d.Position() != 2 {
		t.Fatalf("expected position to shift to 2, got %d", d.Position())
	}
}

func TestMemDataRemoveEntriesInvalidatesPosition(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	d.SetPosition(1, false)

	changed := d.RemoveEntries(1, 1)
	if !changed {
		t.Fatal("removing the positioned entry should report a change")
	}
	if d.Position() != -1 {
		t.Fatalf("expected position -1, got %d", d.Position())
	}
}

func TestMemDataRemoveSelected(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	d.SelectEntry(0, true)
	d.SelectEntry(2, true)

	d.RemoveSelected()
	if d.NEntries() != 1 {
		t.Fatalf("expected 1 entry left, got %d", d.NEntries())
	}
	if d.EntryAt(0).Filename != "b.mp3" {
		t.Fatalf("expected b.mp3 to survive, got %q", d.EntryAt(0).Filename)
	}
}

func TestMemDataQueueTakesPriorityInNextSong(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	d.SetPosition(0, false)
	d.QueueInsert(2)

	if !d.NextSong(false, 0) {
		t.Fatal("NextSong should have moved")
	}
	if d.Position() != 2 {
		t.Fatalf("expected the queued entry (index 2) to be picked first, got %d", d.Position())
	}
	if d.NQueued() != 0 {
		t.Fatal("queue should be drained after NextSong consumes it")
	}
}

func TestMemDataNextSongRepeatWrapsToHint(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3")
	d.SetPosition(1, false)

	if !d.NextSong(true, 0) {
		t.Fatal("NextSong with repeat should move even at the last entry")
	}
	if d.Position() != 0 {
		t.Fatalf("expected wraparound to hint 0, got %d", d.Position())
	}
}

func TestMemDataNextSongNoRepeatStopsAtEnd(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3")
	d.SetPosition(1, false)

	if d.NextSong(false, 0) {
		t.Fatal("NextSong without repeat should not move past the last entry")
	}
}

func TestMemDataUpdateEntryFromScanAppliesTuple(t *testing.T) {
	d := newFilledData(t, "a.mp3")
	entry := d.EntryAt(0)
	d.UpdateEntryFromScan(entry, ScanResult{Tuple: Tuple{Valid: true, Title: "A"}}, false)

	if !entry.Tuple.Valid || entry.Tuple.Title != "A" {
		t.Fatalf("tuple was not applied: %+v", entry.Tuple)
	}
	if !d.UpdatePending() {
		t.Fatal("expected a pending update after a scan result landed")
	}
}

func TestMemDataUpdateEntryFromScanRecordsError(t *testing.T) {
	d := newFilledData(t, "a.mp3")
	entry := d.EntryAt(0)
	d.UpdateEntryFromScan(entry, ScanResult{Err: errTestScan}, false)

	if entry.Error == "" {
		t.Fatal("expected entry.Error to be set")
	}
}

func TestMemDataNextUnscannedEntry(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3")
	d.EntryAt(0).Tuple.Valid = true

	if idx := d.NextUnscannedEntry(0); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	d.EntryAt(1).Tuple.Valid = true
	if idx := d.NextUnscannedEntry(0); idx != -1 {
		t.Fatalf("expected -1 once everything is scanned, got %d", idx)
	}
}

func TestMemDataSwapAndCancelUpdates(t *testing.T) {
	d := newFilledData(t, "a.mp3")
	d.QueueUpdate(UpdateMetadata, 0, 1)
	if !d.UpdatePending() {
		t.Fatal("expected a pending update")
	}
	d.SwapUpdates()
	if d.UpdatePending() {
		t.Fatal("pending should be cleared after SwapUpdates")
	}
	if d.LastUpdate().Level != UpdateMetadata {
		t.Fatalf("expected last update level Metadata, got %v", d.LastUpdate().Level)
	}
	d.QueueUpdate(UpdateStructure, 0, 1)
	d.CancelUpdates()
	if d.UpdatePending() || d.LastUpdate().Level != UpdateNone {
		t.Fatal("CancelUpdates should clear both pending and last")
	}
}

func TestMemDataShiftEntriesMovesHintedEntry(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3")

	moved := d.ShiftEntries(0, 2)
	if moved != 2 {
		t.Fatalf("expected to move 2, got %d", moved)
	}
	order := []string{d.EntryAt(0).Filename, d.EntryAt(1).Filename, d.EntryAt(2).Filename, d.EntryAt(3).Filename}
	want := []string{"b.mp3", "c.mp3", "a.mp3", "d.mp3"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
	for i := 0; i < 4; i++ {
		if d.EntryAt(i).Number != i {
			t.Fatalf("entry %d has stale Number %d", i, d.EntryAt(i).Number)
		}
	}
}

func TestMemDataShiftEntriesMovesSelectedBlock(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3", "d.mp3", "e.mp3")
	d.SelectEntry(0, true)
	d.SelectEntry(1, true)

	moved := d.ShiftEntries(0, 2)
	if moved != 2 {
		t.Fatalf("expected to move 2, got %d", moved)
	}
	order := make([]string, d.NEntries())
	for i := range order {
		order[i] = d.EntryAt(i).Filename
	}
	want := []string{"c.mp3", "d.mp3", "a.mp3", "b.mp3", "e.mp3"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected order %v, got %v", want, order)
		}
	}
}

func TestMemDataShiftEntriesClampsAtBoundary(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")

	moved := d.ShiftEntries(1, 5)
	if moved != 1 {
		t.Fatalf("expected the move to clamp to 1, got %d", moved)
	}
	if d.EntryAt(2).Filename != "b.mp3" {
		t.Fatalf("expected b.mp3 to land at the end, got %s", d.EntryAt(2).Filename)
	}
}

func TestMemDataShiftEntriesPreservesPlayingEntry(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	d.SetPosition(0, false)
	playing := d.EntryAt(0)

	d.ShiftEntries(0, 2)
	if d.Position() != 2 {
		t.Fatalf("expected position to follow the moved entry to 2, got %d", d.Position())
	}
	if d.EntryAt(d.Position()) != playing {
		t.Fatal("expected the entry at the new position to still be the one that was playing")
	}
}

func TestMemDataShiftEntriesNoSelectionNoHintIsNoop(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3")
	if moved := d.ShiftEntries(5, 1); moved != 0 {
		t.Fatalf("expected an out-of-range hint to be a no-op, got moved=%d", moved)
	}
}

func TestMemDataFocusIndependentOfPosition(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	d.SetPosition(0, false)
	d.SetFocus(2)

	if d.Position() != 0 {
		t.Fatalf("expected position to stay 0, got %d", d.Position())
	}
	if d.Focus() != 2 {
		t.Fatalf("expected focus 2, got %d", d.Focus())
	}

	d.SetPosition(1, true)
	if d.Focus() != 1 {
		t.Fatalf("expected update_focus=true to move focus to 1, got %d", d.Focus())
	}
}

func TestMemDataFocusInvalidatedByRemoval(t *testing.T) {
	d := newFilledData(t, "a.mp3", "b.mp3", "c.mp3")
	d.SetFocus(1)

	d.RemoveEntries(1, 1)
	if d.Focus() != -1 {
		t.Fatalf("expected focus on the removed entry to reset to -1, got %d", d.Focus())
	}
}

var errTestScan = errors.New("scan failed for test")

package playlist

import "testing"

func TestPlaylistIndexTracksRegistryPosition(t *testing.T) {
	mgr, _ := newTestManager(nil, nil)

	first := mgr.Active()
	if first.Index() != 0 {
		t.Fatalf("expected the only playlist to sit at index 0, got %d", first.Index())
	}

	mgr.NewPlaylist()
	second := mgr.ByIndex(1)
	if second.Index() != 1 {
		t.Fatalf("expected the new playlist at index 1, got %d", second.Index())
	}

	first.Remove()
	if second.Index() != 0 {
		t.Fatalf("expected the surviving playlist to shift to index 0, got %d", second.Index())
	}
}

func TestPlaylistShiftEntriesFiresStructureUpdate(t *testing.T) {
	mgr, hooks := newTestManager(nil, nil)
	pl := mgr.Active()
	pl.InsertItems(0, []string{"a.mp3", "b.mp3", "c.mp3"})

	hooks.mu.Lock()
	hooks.calls = nil
	hooks.mu.Unlock()

	moved := pl.ShiftEntries(0, 1)
	if moved != 1 {
		t.Fatalf("expected to move 1, got %d", moved)
	}
	if pl.EntryAt(0).Filename != "b.mp3" {
		t.Fatalf("expected b.mp3 to lead, got %s", pl.EntryAt(0).Filename)
	}
	if len(hooks.snapshot()) == 0 {
		t.Fatal("expected a structure-update hook after a real shift")
	}
}

func TestPlaylistShiftEntriesNoopFiresNothing(t *testing.T) {
	mgr, hooks := newTestManager(nil, nil)
	pl := mgr.Active()
	pl.InsertItems(0, []string{"a.mp3"})

	hooks.mu.Lock()
	hooks.calls = nil
	hooks.mu.Unlock()

	if moved := pl.ShiftEntries(0, 0); moved != 0 {
		t.Fatalf("expected a zero-distance shift to be a no-op, got moved=%d", moved)
	}
	if len(hooks.snapshot()) != 0 {
		t.Fatalf("a no-op ShiftEntries should fire no hooks, got %v", hooks.snapshot())
	}
}

func TestPlaylistShiftEntriesDeadHandleIsNoop(t *testing.T) {
	mgr, _ := newTestManager(nil, nil)
	pl := mgr.Active()
	pl.Remove()

	if moved := pl.ShiftEntries(0, 1); moved != 0 {
		t.Fatalf("expected a dead handle to report moved=0, got %d", moved)
	}
}

package playlist

import (
	"testing"
	"time"
)

func TestLoadStateNoFileIsANoop(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(ManagerOptions{DataDir: dir})
	mgr.Init()

	if err := mgr.LoadState(); err != nil {
		t.Fatalf("LoadState on a fresh directory should not error, got %v", err)
	}
	if mgr.NPlaylists() != 1 {
		t.Fatalf("expected the seeded default playlist to survive, got %d playlists", mgr.NPlaylists())
	}
}

func TestSaveAndLoadStateRoundtrip(t *testing.T) {
	dir := t.TempDir()
	pb := newFakePlayback()

	mgr := NewManager(ManagerOptions{DataDir: dir, Playback: pb})
	mgr.Init()

	first := mgr.ByIndex(0)
	first.SetFilename("mix.audpl")
	first.InsertItems(0, []string{"a.mp3", "b.mp3", "c.mp3"})
	first.SetPosition(1, false)

	second := mgr.InsertPlaylist(1)
	second.SetFilename("other.audpl")
	second.InsertItems(0, []string{"d.mp3"})
	second.Activate()

	mgr.SetPlaying(first, 0, false)
	time.Sleep(10 * time.Millisecond)

	if err := mgr.SaveState(45*time.Second, true); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	restored := NewManager(ManagerOptions{DataDir: dir, Playback: pb})
	restored.Init()
	if err := restored.LoadState(); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	if restored.Playing().Valid() {
		t.Fatal("LoadState alone must not start playback; that's Resume's job")
	}
	restored.Resume()
	time.Sleep(10 * time.Millisecond)

	if restored.NPlaylists() != 2 {
		t.Fatalf("expected 2 restored playlists, got %d", restored.NPlaylists())
	}

	pl0 := restored.ByIndex(0)
	if pl0.Filename() != "mix.audpl" {
		t.Fatalf("expected filename mix.audpl, got %q", pl0.Filename())
	}
	if pl0.Position() != 1 {
		t.Fatalf("expected restored position 1, got %d", pl0.Position())
	}
	if pl0.ID() != first.ID() {
		t.Fatalf("expected the restored playlist to keep stamp %d, got %d", first.ID(), pl0.ID())
	}

	pl1 := restored.ByIndex(1)
	if pl1.Filename() != "other.audpl" {
		t.Fatalf("expected filename other.audpl, got %q", pl1.Filename())
	}
	if !restored.Active().Valid() || restored.Active().ID() != second.ID() {
		t.Fatal("expected the second playlist to be restored as active")
	}

	if !restored.Playing().Valid() || restored.Playing().ID() != first.ID() {
		t.Fatal("expected the first playlist to be restored as playing")
	}

	calls := pb.calls()
	if len(calls) == 0 {
		t.Fatal("expected Resume to start playback via the Playback collaborator")
	}
	last := calls[len(calls)-1]
	if last.Filename != "b.mp3" {
		t.Fatalf("expected playback to resume on b.mp3 (position 1), got %q", last.Filename)
	}
	if last.ResumeTime != 45*time.Second || !last.Paused {
		t.Fatalf("expected resume time 45s paused=true, got %v paused=%v", last.ResumeTime, last.Paused)
	}
}

func TestSaveStateOmitsResumeBlockForStoppedPlaylists(t *testing.T) {
	dir := t.TempDir()
	mgr := NewManager(ManagerOptions{DataDir: dir})
	mgr.Init()

	pl := mgr.ByIndex(0)
	pl.InsertItems(0, []string{"a.mp3"})

	if err := mgr.SaveState(0, false); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	restored := NewManager(ManagerOptions{DataDir: dir})
	restored.Init()
	if err := restored.LoadState(); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	restored.Resume()
	if restored.Playing().Valid() {
		t.Fatal("no playlist was playing when saved, so none should be restored as playing")
	}
}

func TestResumeWithoutPriorLoadStateIsANoop(t *testing.T) {
	mgr, _ := newTestManager(nil, newFakePlayback())
	mgr.Resume()
	if mgr.Playing().Valid() {
		t.Fatal("Resume with nothing pending must not start playback")
	}
}

func TestResumeIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	pb := newFakePlayback()

	mgr := NewManager(ManagerOptions{DataDir: dir, Playback: pb})
	mgr.Init()
	pl := mgr.ByIndex(0)
	pl.InsertItems(0, []string{"a.mp3"})
	mgr.SetPlaying(pl, 0, false)
	time.Sleep(10 * time.Millisecond)
	if err := mgr.SaveState(0, false); err != nil {
		t.Fatalf("SaveState failed: %v", err)
	}

	restored := NewManager(ManagerOptions{DataDir: dir, Playback: pb})
	restored.Init()
	if err := restored.LoadState(); err != nil {
		t.Fatalf("LoadState failed: %v", err)
	}
	restored.Resume()
	time.Sleep(10 * time.Millisecond)
	n := len(pb.calls())

	restored.Resume()
	time.Sleep(10 * time.Millisecond)
	if len(pb.calls()) != n {
		t.Fatalf("a second Resume should not re-trigger playback, call count went from %d to %d", n, len(pb.calls()))
	}
}

func TestSaveStateWithoutDataDirIsANoop(t *testing.T) {
	mgr := NewManager(ManagerOptions{})
	mgr.Init()
	if err := mgr.SaveState(0, false); err != nil {
		t.Fatalf("SaveState without a data directory should be a no-op, got %v", err)
	}
}

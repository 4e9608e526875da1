package playlist

import "testing"

func newTestRegistry() *registry {
	return newRegistry(newIDTable(), NewMemoryPlaylistData)
}

func TestRegistryInsertAndByIndex(t *testing.T) {
	r := newTestRegistry()
	a := r.insert(0, -1)
	b := r.insert(1, -1)
	if r.nPlaylists() != 2 {
		t.Fatalf("expected 2 playlists, got %d", r.nPlaylists())
	}
	if r.byIndex(0) != a || r.byIndex(1) != b {
		t.Fatal("byIndex did not match insertion order")
	}
	if a.index != 0 || b.index != 1 {
		t.Fatalf("unexpected indices: %d, %d", a.index, b.index)
	}
}

func TestRegistryRemoveAtRefillsWhenEmpty(t *testing.T) {
	r := newTestRegistry()
	only := r.insert(0, -1)
	r.activate(only)

	removed, activeChanged, _ := r.removeAt(0)
	if removed != only {
		t.Fatal("removeAt returned the wrong record")
	}
	if removed.live() {
		t.Fatal("removed record must no longer be live")
	}
	if r.nPlaylists() != 1 {
		t.Fatalf("registry should have refilled to 1 playlist, got %d", r.nPlaylists())
	}
	if !activeChanged {
		t.Fatal("removing the active playlist must report activeChanged")
	}
	if r.activeID == only || r.activeID == nil {
		t.Fatal("active reference must move to the refilled playlist")
	}
}

func TestRegistryRemoveAtReportsPlayingChanged(t *testing.T) {
	r := newTestRegistry()
	a := r.insert(0, -1)
	r.insert(1, -1)
	r.playingID = a

	_, _, playingChanged := r.removeAt(0)
	if !playingChanged {
		t.Fatal("removing the playing playlist must report playingChanged")
	}
	if r.playingID != nil {
		t.Fatal("playingID must be cleared once its playlist is removed")
	}
}

func TestRegistryReorderForward(t *testing.T) {
	r := newTestRegistry()
	recs := make([]*idRecord, 5)
	for i := range recs {
		recs[i] = r.insert(i, -1)
	}
	// move [0,1] to start at index 3: expect order 2,3,4,0,1
	r.reorder(0, 3, 2)
	want := []*idRecord{recs[2], recs[3], recs[4], recs[0], recs[1]}
	for i, rec := range want {
		if r.byIndex(i) != rec {
			t.Fatalf("position %d: expected record %d, got %d", i, rec.stamp, r.byIndex(i).stamp)
		}
		if r.byIndex(i).index != int32(i) {
			t.Fatalf("position %d: index not renumbered, got %d", i, r.byIndex(i).index)
		}
	}
}

func TestRegistryReorderBackward(t *testing.T) {
	r := newTestRegistry()
	recs := make([]*idRecord, 5)
	for i := range recs {
		recs[i] = r.insert(i, -1)
	}
	// move [3,4] to start at index 0: expect order 3,4,0,1,2
	r.reorder(3, 0, 2)
	want := []*idRecord{recs[3], recs[4], recs[0], recs[1], recs[2]}
	for i, rec := range want {
		if r.byIndex(i) != rec {
			t.Fatalf("position %d: expected record %d, got %d", i, rec.stamp, r.byIndex(i).stamp)
		}
	}
}

func TestRegistryBlankReusesEmptyDefault(t *testing.T) {
	r := newTestRegistry()
	rec := r.insert(0, -1)
	r.activate(rec)

	got, created := r.blank()
	if created {
		t.Fatal("blank should reuse the existing empty default playlist")
	}
	if got != rec {
		t.Fatal("blank returned a different record than the reusable default")
	}
}

func TestRegistryBlankCreatesWhenActiveIsNotDefault(t *testing.T) {
	r := newTestRegistry()
	rec := r.insert(0, -1)
	rec.data.SetTitle("My Mix")
	r.activate(rec)

	got, created := r.blank()
	if !created {
		t.Fatal("blank should insert a new playlist when the active one is not an empty default")
	}
	if got == rec {
		t.Fatal("blank should not reuse a titled, non-default playlist")
	}
}

func TestRegistryTemporaryReusesExistingNowPlaying(t *testing.T) {
	r := newTestRegistry()
	nowPlaying := r.insert(0, -1)
	nowPlaying.data.SetTitle("Now Playing")
	r.insert(1, -1)

	got, created := r.temporary()
	if created {
		t.Fatal("temporary should reuse an existing \"Now Playing\" playlist")
	}
	if got != nowPlaying {
		t.Fatal("temporary returned the wrong record")
	}
}

func TestRegistryTemporaryCreatesAndTitles(t *testing.T) {
	r := newTestRegistry()
	r.insert(0, -1)

	got, created := r.temporary()
	if !created {
		t.Fatal("temporary should create a playlist when none is titled \"Now Playing\"")
	}
	if got.data.Title() != "Now Playing" {
		t.Fatalf("expected title \"Now Playing\", got %q", got.data.Title())
	}
}

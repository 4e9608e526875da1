package playlist

// registry is the ordered sequence of exclusively-owned PlaylistData plus
// the active/playing weak references. Every method here assumes the
// Manager's global lock is already held; registry performs no locking, no
// hook firing and no scanner/playback side effects of its own — those are
// orchestrated by Manager so that the bookkeeping here stays a pure,
// easily-tested structure.
type registry struct {
	table     *idTable
	factory   PlaylistDataFactory
	playlists []*idRecord
	activeID  *idRecord
	playingID *idRecord
}

func newRegistry(table *idTable, factory PlaylistDataFactory) *registry {
	return &registry{table: table, factory: factory}
}

func (r *registry) nPlaylists() int { return len(r.playlists) }

func (r *registry) byIndex(i int) *idRecord {
	if i < 0 || i >= len(r.playlists) {
		return nil
	}
	return r.playlists[i]
}

func (r *registry) renumber(from int) {
	for i := from; i < len(r.playlists); i++ {
		r.playlists[i].index = int32(i)
	}
}

// insert creates a brand new playlist at position at (clamped into range)
// and returns its record, live and linked into the Registry.
func (r *registry) insert(at int, stamp int64) *idRecord {
	rec := r.table.alloc(stamp)
	rec.data = r.factory(rec.stamp)
	if at < 0 || at > len(r.playlists) {
		at = len(r.playlists)
	}
	r.playlists = append(r.playlists[:at], append([]*idRecord{rec}, r.playlists[at:]...)...)
	r.renumber(at)
	return rec
}

// removeAt deletes the playlist at index i, synthesizing a fresh default
// playlist if the Registry would otherwise become empty. It reports
// whether the active and/or playing references moved as a result, so the
// caller can fire the appropriate hooks.
func (r *registry) removeAt(i int) (removed *idRecord, activeChanged, playingChanged bool) {
	if i < 0 || i >= len(r.playlists) {
		return nil, false, false
	}
	removed = r.playlists[i]
	r.playlists = append(r.playlists[:i], r.playlists[i+1:]...)
	removed.data = nil
	removed.index = -1

	if len(r.playlists) == 0 {
		r.playlists = append(r.playlists, r.insertBlankRecord())
	}
	r.renumber(i)

	if r.activeID == removed {
		idx := i
		if idx >= len(r.playlists) {
			idx = len(r.playlists) - 1
		}
		r.activeID = r.playlists[idx]
		activeChanged = true
	}
	if r.playingID == removed {
		r.playingID = nil
		playingChanged = true
	}
	return removed, activeChanged, playingChanged
}

// insertBlankRecord allocates a new empty playlist record at index 0
// without linking it into r.playlists; used only to refill an emptied
// Registry, whose caller appends it.
func (r *registry) insertBlankRecord() *idRecord {
	rec := r.table.alloc(-1)
	rec.data = r.factory(rec.stamp)
	rec.index = 0
	return rec
}

// reorder rotates the count playlists starting at from so that they begin
// at to instead, per the §4.1 contract.
func (r *registry) reorder(from, to, count int) {
	n := len(r.playlists)
	if count <= 0 || from < 0 || to < 0 || from+count > n || to+count > n || from == to {
		return
	}
	moved := append([]*idRecord{}, r.playlists[from:from+count]...)
	rest := append(append([]*idRecord{}, r.playlists[:from]...), r.playlists[from+count:]...)

	// to names the moved block's starting index in the final, full-length
	// Registry; since rest is that same final order with the block already
	// excised, exactly `to` of its elements precede the block.
	insertAt := to
	if insertAt > len(rest) {
		insertAt = len(rest)
	}

	newOrder := append([]*idRecord{}, rest[:insertAt]...)
	newOrder = append(newOrder, moved...)
	newOrder = append(newOrder, rest[insertAt:]...)
	r.playlists = newOrder

	lo := from
	if to < lo {
		lo = to
	}
	r.renumber(lo)
}

func (r *registry) activate(rec *idRecord) {
	if rec != nil && rec.live() {
		r.activeID = rec
	}
}

// blank reuses the active playlist if it is an untitled, empty default,
// otherwise it inserts a fresh one right after it. created reports
// whether a new playlist was actually inserted.
func (r *registry) blank() (rec *idRecord, created bool) {
	if a := r.activeID; a != nil && a.live() && a.data.NEntries() == 0 && a.data.Title() == "New Playlist" {
		return a, false
	}
	at := 0
	if r.activeID != nil {
		at = int(r.activeID.index) + 1
	}
	return r.insert(at, -1), true
}

// temporary reuses or creates a playlist titled "Now Playing", biasing
// toward reuse per the Open Question in DESIGN NOTES: an existing
// "Now Playing" playlist wins over reusing the active-empty-default one.
func (r *registry) temporary() (rec *idRecord, created bool) {
	for _, rec := range r.playlists {
		if rec.data.Title() == "Now Playing" {
			return rec, false
		}
	}
	rec, created = r.blank()
	rec.data.SetTitle("Now Playing")
	return rec, created
}

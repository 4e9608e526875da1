package playlist

// idRecord is the immortal half of the ID/weak-handle scheme described in
// DESIGN NOTES: it outlives the PlaylistData it refers to so that external
// callers can keep dereferencing a stale Playlist handle without crashing.
// Every field is only ever touched while the owning Manager's lock is held.
type idRecord struct {
	stamp uint32
	index int32 // current Registry position, or -1 once removed
	data  PlaylistData
}

func (rec *idRecord) live() bool {
	return rec != nil && rec.data != nil
}

// idTable maps stamps to idRecords. Stamps are the filename key for
// persisted playlists (e.g. "1000.audpl") and are unique and immutable for
// the process lifetime. Records are never removed from the table one at a
// time: once allocated a stamp stays resolvable, even after the playlist it
// named is gone. Only Manager.End and Manager.LoadState drop the whole
// table.
type idTable struct {
	records map[uint32]*idRecord
	next    uint32
}

func newIDTable() *idTable {
	return &idTable{
		records: map[uint32]*idRecord{},
		next:    1000,
	}
}

// alloc reserves a stamp and returns a fresh, not-yet-live idRecord for it.
// A negative or already-used requested stamp falls back to the next value
// from the monotonic counter.
func (t *idTable) alloc(requested int64) *idRecord {
	var stamp uint32
	if requested >= 0 && t.records[uint32(requested)] == nil {
		stamp = uint32(requested)
		if t.next <= stamp {
			t.next = stamp + 1
		}
	} else {
		for {
			stamp = t.next
			t.next++
			if t.records[stamp] == nil {
				break
			}
		}
	}
	rec := &idRecord{stamp: stamp, index: -1}
	t.records[stamp] = rec
	return rec
}

func (t *idTable) lookup(stamp uint32) *idRecord {
	return t.records[stamp]
}

package playlist

import (
	"math/rand"
	"sort"
	"time"
)

// PlaylistData is the per-playlist container the core relies on. Its
// internals are not part of this package's contract beyond this interface
// — a caller may substitute its own implementation (backed by a remote
// player, a database, whatever) through a PlaylistDataFactory; the default
// below is an in-memory implementation good enough to run the whole
// package end to end.
type PlaylistData interface {
	ID() uint32
	Title() string
	SetTitle(string)
	Filename() string
	SetFilename(string)
	Modified() bool
	SetModified(bool)

	NEntries() int
	EntryAt(i int) *Entry
	Position() int
	SetPosition(entry int, updateFocus bool)
	Focus() int
	SetFocus(entry int)

	InsertItems(at int, entries []*Entry)
	RemoveEntries(at, n int) (positionChanged bool)
	RemoveSelected() (positionChanged bool)

	EntrySelected(i int) bool
	SelectEntry(i int, selected bool)
	NSelected() int
	SelectAll(selected bool)
	ShiftEntries(entryNum, distance int) (moved int)

	SortByFilename()
	SortByTuple()
	SortSelectedByFilename()
	SortSelectedByTuple()
	ReverseOrder()
	ReverseSelected()
	RandomizeOrder()
	RandomizeSelected()

	TotalLengthMs() int64
	SelectedLengthMs() int64

	NQueued() int
	QueueInsert(entryIndex int)
	QueueInsertSelected()
	QueueGetEntry(i int) int
	QueueFindEntry(entryIndex int) int
	QueueRemove(i int)
	QueueRemoveSelected()

	NextSong(repeat bool, hint int) bool
	PrevSong() bool

	NextUnscannedEntry(row int) int
	ResetTuples(selectedOnly bool)
	ResetTupleOfFile(path string) bool
	UpdateEntryFromScan(entry *Entry, res ScanResult, delayed bool)
	SetEntryTuple(entry *Entry, tuple Tuple)
	ScanStatus() ScanStatus
	SetScanStatus(ScanStatus)
	ResumeTime() time.Duration
	SetResumeTime(time.Duration)

	QueueUpdate(level UpdateLevel, at, number int)
	LastUpdate() UpdateRecord
	UpdatePending() bool
	SwapUpdates()
	CancelUpdates()
}

// PlaylistDataFactory constructs a fresh, empty PlaylistData for the given
// stamp. Manager uses it whenever a new playlist is created.
type PlaylistDataFactory func(stamp uint32) PlaylistData

// NewMemoryPlaylistData is the default PlaylistDataFactory, grounded on the
// teacher's player.Playlist / PlaylistMetaKeeper: an in-memory slice of
// entries, each carrying its own selection flag, plus a queue.
func NewMemoryPlaylistData(stamp uint32) PlaylistData {
	return &memData{
		id:       stamp,
		title:    "New Playlist",
		position: -1,
		focus:    -1,
	}
}

type memData struct {
	id       uint32
	title    string
	filename string
	modified bool

	entries  []*Entry
	position int
	focus    int

	queue []*Entry

	scanStatus ScanStatus
	resumeTime time.Duration

	pending UpdateRecord
	last    UpdateRecord
}

func (d *memData) ID() uint32 { return d.id }

func (d *memData) Title() string     { return d.title }
func (d *memData) SetTitle(t string) { d.title = t; d.modified = true }

func (d *memData) Filename() string     { return d.filename }
func (d *memData) SetFilename(f string) { d.filename = f; d.modified = true }

func (d *memData) Modified() bool     { return d.modified }
func (d *memData) SetModified(m bool) { d.modified = m }

func (d *memData) NEntries() int { return len(d.entries) }

func (d *memData) EntryAt(i int) *Entry {
	if i < 0 || i >= len(d.entries) {
		return nil
	}
	return d.entries[i]
}

func (d *memData) Position() int { return d.position }

func (d *memData) SetPosition(entry int, updateFocus bool) {
	if entry < -1 || entry >= len(d.entries) {
		return
	}
	d.position = entry
	if updateFocus {
		d.focus = entry
	}
}

// Focus is the playlist view's cursor row, independent of the playing
// position. No operation in this package reads it.
func (d *memData) Focus() int { return d.focus }

func (d *memData) SetFocus(entry int) {
	if entry < -1 || entry >= len(d.entries) {
		return
	}
	d.focus = entry
}

func (d *memData) renumber(from int) {
	for i := from; i < len(d.entries); i++ {
		d.entries[i].Number = i
	}
}

func (d *memData) InsertItems(at int, items []*Entry) {
	if at < 0 || at > len(d.entries) {
		at = len(d.entries)
	}
	d.entries = append(d.entries[:at], append(append([]*Entry{}, items...), d.entries[at:]...)...)
	if d.position >= at {
		d.position += len(items)
	}
	if d.focus >= at {
		d.focus += len(items)
	}
	d.renumber(at)
	d.modified = true
}

func (d *memData) RemoveEntries(at, n int) bool {
	if at < 0 || n <= 0 || at >= len(d.entries) {
		return false
	}
	if at+n > len(d.entries) {
		n = len(d.entries) - at
	}
	removed := d.entries[at : at+n]
	d.entries = append(d.entries[:at], d.entries[at+n:]...)
	for _, e := range removed {
		d.dequeueEntry(e)
	}
	d.renumber(at)
	d.modified = true

	changed := false
	if d.position >= at && d.position < at+n {
		d.position = -1
		changed = true
	} else if d.position >= at+n {
		d.position -= n
	}
	if d.focus >= at && d.focus < at+n {
		d.focus = -1
	} else if d.focus >= at+n {
		d.focus -= n
	}
	return changed
}

func (d *memData) EntrySelected(i int) bool {
	if i < 0 || i >= len(d.entries) {
		return false
	}
	return d.entries[i].selected
}

func (d *memData) SelectEntry(i int, selected bool) {
	if i < 0 || i >= len(d.entries) {
		return
	}
	d.entries[i].selected = selected
}

func (d *memData) NSelected() int {
	n := 0
	for _, e := range d.entries {
		if e.selected {
			n++
		}
	}
	return n
}

func (d *memData) SelectAll(selected bool) {
	for _, e := range d.entries {
		e.selected = selected
	}
}

func (d *memData) RemoveSelected() bool {
	at := -1
	removedBeforePos := 0
	removedBeforeFocus := 0
	kept := make([]*Entry, 0, len(d.entries))
	changed := false
	focusChanged := false
	for i, e := range d.entries {
		if e.selected {
			if at == -1 {
				at = i
			}
			d.dequeueEntry(e)
			if i == d.position {
				changed = true
			} else if i < d.position {
				removedBeforePos++
			}
			if i == d.focus {
				focusChanged = true
			} else if i < d.focus {
				removedBeforeFocus++
			}
			continue
		}
		kept = append(kept, e)
	}
	d.entries = kept
	if at == -1 {
		at = len(d.entries)
	}
	d.renumber(at)
	if changed {
		d.position = -1
	} else if d.position >= 0 {
		d.position -= removedBeforePos
	}
	if focusChanged {
		d.focus = -1
	} else if d.focus >= 0 {
		d.focus -= removedBeforeFocus
	}
	d.modified = true
	return changed
}

func (d *memData) selectedIndices() []int {
	idx := make([]int, 0, len(d.entries))
	for i, e := range d.entries {
		if e.selected {
			idx = append(idx, i)
		}
	}
	return idx
}

// ShiftEntries moves the selected entries (or just entryNum, if nothing
// is selected) by distance positions, one step at a time, stopping as
// soon as the leading edge of the moving block would run off either end
// of the playlist. Selected entries keep their relative order; the gap
// they leave behind is filled by whichever unselected entries they swap
// past. Returns the distance actually covered, which may fall short of
// distance once a boundary is hit.
func (d *memData) ShiftEntries(entryNum, distance int) int {
	idx := d.selectedIndices()
	if len(idx) == 0 {
		if entryNum < 0 || entryNum >= len(d.entries) {
			return 0
		}
		idx = []int{entryNum}
	}
	if distance == 0 {
		return 0
	}
	step := 1
	if distance < 0 {
		step = -1
	}
	limit := distance * step

	var posEntry *Entry
	if d.position >= 0 {
		posEntry = d.entries[d.position]
	}

	moved := 0
	for moved < limit {
		if !d.shiftOnce(idx, step) {
			break
		}
		for i := range idx {
			idx[i] += step
		}
		moved++
	}

	if moved > 0 {
		d.renumber(0)
		d.modified = true
		if posEntry != nil {
			d.position = d.indexOf(posEntry)
		}
	}
	return moved * step
}

// shiftOnce moves every index in idx (kept sorted ascending) one slot in
// the direction of step, provided the block's leading edge stays in
// bounds. Must only be called with idx already sorted ascending.
func (d *memData) shiftOnce(idx []int, step int) bool {
	if step > 0 {
		if idx[len(idx)-1]+1 >= len(d.entries) {
			return false
		}
		for i := len(idx) - 1; i >= 0; i-- {
			p := idx[i]
			d.entries[p], d.entries[p+1] = d.entries[p+1], d.entries[p]
		}
		return true
	}
	if idx[0]-1 < 0 {
		return false
	}
	for _, p := range idx {
		d.entries[p], d.entries[p-1] = d.entries[p-1], d.entries[p]
	}
	return true
}

func (d *memData) selectedSlice() []*Entry {
	out := make([]*Entry, 0, len(d.entries))
	for _, e := range d.entries {
		if e.selected {
			out = append(out, e)
		}
	}
	return out
}

func (d *memData) SortByFilename() {
	sort.SliceStable(d.entries, func(i, j int) bool {
		return d.entries[i].Filename < d.entries[j].Filename
	})
	d.renumber(0)
	d.modified = true
}

func (d *memData) SortByTuple() {
	sort.SliceStable(d.entries, func(i, j int) bool {
		a, b := d.entries[i].Tuple, d.entries[j].Tuple
		if a.Artist != b.Artist {
			return a.Artist < b.Artist
		}
		if a.Album != b.Album {
			return a.Album < b.Album
		}
		return a.AlbumTrack < b.AlbumTrack
	})
	d.renumber(0)
	d.modified = true
}

func (d *memData) sortSelectedBy(less func(a, b *Entry) bool) {
	idx := make([]int, 0, len(d.entries))
	sel := make([]*Entry, 0, len(d.entries))
	for i, e := range d.entries {
		if e.selected {
			idx = append(idx, i)
			sel = append(sel, e)
		}
	}
	sort.SliceStable(sel, func(i, j int) bool { return less(sel[i], sel[j]) })
	for k, i := range idx {
		d.entries[i] = sel[k]
	}
	d.renumber(0)
	d.modified = true
}

func (d *memData) SortSelectedByFilename() {
	d.sortSelectedBy(func(a, b *Entry) bool { return a.Filename < b.Filename })
}

func (d *memData) SortSelectedByTuple() {
	d.sortSelectedBy(func(a, b *Entry) bool { return a.Tuple.Artist < b.Tuple.Artist })
}

func (d *memData) ReverseOrder() {
	for i, j := 0, len(d.entries)-1; i < j; i, j = i+1, j-1 {
		d.entries[i], d.entries[j] = d.entries[j], d.entries[i]
	}
	d.renumber(0)
	d.modified = true
}

func (d *memData) ReverseSelected() {
	idx := make([]int, 0, len(d.entries))
	for i, e := range d.entries {
		if e.selected {
			idx = append(idx, i)
		}
	}
	for i, j := 0, len(idx)-1; i < j; i, j = i+1, j-1 {
		a, b := idx[i], idx[j]
		d.entries[a], d.entries[b] = d.entries[b], d.entries[a]
	}
	d.renumber(0)
	d.modified = true
}

func (d *memData) RandomizeOrder() {
	rand.Shuffle(len(d.entries), func(i, j int) {
		d.entries[i], d.entries[j] = d.entries[j], d.entries[i]
	})
	d.renumber(0)
	d.modified = true
}

func (d *memData) RandomizeSelected() {
	idx := make([]int, 0, len(d.entries))
	for i, e := range d.entries {
		if e.selected {
			idx = append(idx, i)
		}
	}
	rand.Shuffle(len(idx), func(i, j int) {
		a, b := idx[i], idx[j]
		d.entries[a], d.entries[b] = d.entries[b], d.entries[a]
	})
	d.renumber(0)
	d.modified = true
}

func (d *memData) TotalLengthMs() int64 {
	var total int64
	for _, e := range d.entries {
		total += e.Tuple.Duration.Milliseconds()
	}
	return total
}

func (d *memData) SelectedLengthMs() int64 {
	var total int64
	for _, e := range d.entries {
		if e.selected {
			total += e.Tuple.Duration.Milliseconds()
		}
	}
	return total
}

func (d *memData) NQueued() int { return len(d.queue) }

func (d *memData) QueueInsert(entryIndex int) {
	if entryIndex < 0 || entryIndex >= len(d.entries) {
		return
	}
	d.queue = append(d.queue, d.entries[entryIndex])
}

func (d *memData) QueueInsertSelected() {
	d.queue = append(d.queue, d.selectedSlice()...)
}

func (d *memData) QueueGetEntry(i int) int {
	if i < 0 || i >= len(d.queue) {
		return -1
	}
	return d.indexOf(d.queue[i])
}

func (d *memData) QueueFindEntry(entryIndex int) int {
	if entryIndex < 0 || entryIndex >= len(d.entries) {
		return -1
	}
	e := d.entries[entryIndex]
	for i, q := range d.queue {
		if q == e {
			return i
		}
	}
	return -1
}

func (d *memData) QueueRemove(i int) {
	if i < 0 || i >= len(d.queue) {
		return
	}
	d.queue = append(d.queue[:i], d.queue[i+1:]...)
}

func (d *memData) QueueRemoveSelected() {
	kept := make([]*Entry, 0, len(d.queue))
	for _, q := range d.queue {
		if !q.selected {
			kept = append(kept, q)
		}
	}
	d.queue = kept
}

func (d *memData) dequeueEntry(e *Entry) {
	kept := make([]*Entry, 0, len(d.queue))
	for _, q := range d.queue {
		if q != e {
			kept = append(kept, q)
		}
	}
	d.queue = kept
}

func (d *memData) indexOf(e *Entry) int {
	for i, x := range d.entries {
		if x == e {
			return i
		}
	}
	return -1
}

// NextSong advances the position, preferring a queued entry if one exists.
// It returns false if no move was possible (end of playlist and no repeat).
func (d *memData) NextSong(repeat bool, hint int) bool {
	if len(d.entries) == 0 {
		return false
	}
	if len(d.queue) > 0 {
		next := d.queue[0]
		d.queue = d.queue[1:]
		if idx := d.indexOf(next); idx >= 0 {
			d.position = idx
			return true
		}
	}
	next := d.position + 1
	if next >= len(d.entries) {
		if !repeat {
			return false
		}
		next = hint
		if next < 0 || next >= len(d.entries) {
			next = 0
		}
	}
	d.position = next
	return true
}

func (d *memData) PrevSong() bool {
	if d.position <= 0 {
		return false
	}
	d.position--
	return true
}

// NextUnscannedEntry returns the index of the first entry at or after row
// whose tuple is still invalid, or -1 if there is none.
func (d *memData) NextUnscannedEntry(row int) int {
	if row < 0 {
		row = 0
	}
	for i := row; i < len(d.entries); i++ {
		if !d.entries[i].Tuple.Valid {
			return i
		}
	}
	return -1
}

func (d *memData) ResetTuples(selectedOnly bool) {
	for _, e := range d.entries {
		if selectedOnly && !e.selected {
			continue
		}
		e.Tuple.Valid = false
	}
}

func (d *memData) ResetTupleOfFile(path string) bool {
	found := false
	for _, e := range d.entries {
		if e.Filename == path {
			e.Tuple.Valid = false
			found = true
		}
	}
	return found
}

func (d *memData) UpdateEntryFromScan(entry *Entry, res ScanResult, delayed bool) {
	if res.Err != nil {
		entry.Error = res.Err.Error()
	} else {
		entry.Error = ""
		if res.Tuple.Valid {
			entry.Tuple = res.Tuple
		}
		if res.Decoder != nil {
			entry.Decoder = res.Decoder
		}
	}
	idx := d.indexOf(entry)
	if idx >= 0 {
		d.pending.queue(UpdateMetadata, idx, 1)
	}
	_ = delayed // the delayed/immediate choice is made by the caller against the global update bus, not recorded per playlist.
}

func (d *memData) SetEntryTuple(entry *Entry, tuple Tuple) {
	entry.Tuple = tuple
}

func (d *memData) ScanStatus() ScanStatus        { return d.scanStatus }
func (d *memData) SetScanStatus(s ScanStatus)    { d.scanStatus = s }
func (d *memData) ResumeTime() time.Duration     { return d.resumeTime }
func (d *memData) SetResumeTime(t time.Duration) { d.resumeTime = t }

func (d *memData) QueueUpdate(level UpdateLevel, at, number int) {
	d.pending.queue(level, at, number)
}

func (d *memData) LastUpdate() UpdateRecord { return d.last }

func (d *memData) UpdatePending() bool { return d.pending.Level != UpdateNone }

func (d *memData) SwapUpdates() {
	d.last = d.pending
	d.pending = UpdateRecord{}
}

func (d *memData) CancelUpdates() {
	d.pending = UpdateRecord{}
	d.last = UpdateRecord{}
}

package playlist

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// logDeadHandle records a debug trace when a call against p is silently
// dropped because its handle is dead, per the DeadHandle swallow policy. A
// nil p.rec is a null handle, not a dead one, and is not logged.
func (p Playlist) logDeadHandle() {
	if p.rec != nil {
		log.WithError(ErrDeadHandle).Debug("playlist: dropped call on a dead handle")
	}
}

// Playlist is the weak handle callers hold onto: a (Manager, idRecord)
// pair. Its zero value is a legal null handle. Every method degrades to a
// no-op or a zero-valued/false/-1 result instead of an error when the
// handle is dead or null — callers do not need to special-case a deleted
// playlist on every call, per the DeadHandle rule in §7.
type Playlist struct {
	mgr *Manager
	rec *idRecord
}

// Valid reports whether the handle currently resolves to a live playlist.
func (p Playlist) Valid() bool {
	return p.rec != nil && p.rec.live()
}

// ID returns the handle's stamp, the number used in persisted filenames
// like "1000.audpl". It is stable even after the playlist is removed.
func (p Playlist) ID() uint32 {
	if p.rec == nil {
		return 0
	}
	return p.rec.stamp
}

// Index returns the playlist's current position in the Registry's order,
// or -1 once the handle has been removed.
func (p Playlist) Index() int {
	if p.rec == nil {
		return -1
	}
	p.mgr.mu.Lock()
	defer p.mgr.mu.Unlock()
	if !p.rec.live() {
		return -1
	}
	return int(p.rec.index)
}

func (p Playlist) withData(fn func(d PlaylistData)) {
	if !p.Valid() {
		p.logDeadHandle()
		return
	}
	p.mgr.mu.Lock()
	defer p.mgr.mu.Unlock()
	if p.rec.live() {
		fn(p.rec.data)
	}
}

// --- metadata ---------------------------------------------------------

func (p Playlist) Title() string {
	var out string
	p.withData(func(d PlaylistData) { out = d.Title() })
	return out
}

func (p Playlist) SetTitle(title string) {
	p.withData(func(d PlaylistData) { d.SetTitle(title) })
	p.queueUpdate(UpdateMetadata, 0, 0)
}

func (p Playlist) Filename() string {
	var out string
	p.withData(func(d PlaylistData) { out = d.Filename() })
	return out
}

func (p Playlist) SetFilename(name string) {
	p.withData(func(d PlaylistData) { d.SetFilename(name) })
}

func (p Playlist) Modified() bool {
	var out bool
	p.withData(func(d PlaylistData) { out = d.Modified() })
	return out
}

func (p Playlist) SetModified(m bool) {
	p.withData(func(d PlaylistData) { d.SetModified(m) })
}

// --- entries ------------------------------------------------------------

func (p Playlist) NEntries() int {
	var n int
	p.withData(func(d PlaylistData) { n = d.NEntries() })
	return n
}

func (p Playlist) EntryAt(i int) *Entry {
	var e *Entry
	p.withData(func(d PlaylistData) { e = d.EntryAt(i) })
	return e
}

// InsertItems inserts entries for the given filenames at position at,
// queues a Structure update for this playlist, arms the scan scheduler
// over the new entries and re-evaluates playback if the playing position
// shifted.
func (p Playlist) InsertItems(at int, filenames []string) {
	entries := make([]*Entry, len(filenames))
	for i, f := range filenames {
		entries[i] = &Entry{Filename: f}
	}
	p.structuralOp(func(d PlaylistData) bool {
		before := d.Position()
		d.InsertItems(at, entries)
		return d.Position() != before
	})
}

func (p Playlist) RemoveEntries(at, n int) {
	p.structuralOp(func(d PlaylistData) bool { return d.RemoveEntries(at, n) })
}

func (p Playlist) RemoveSelected() {
	p.structuralOp(func(d PlaylistData) bool { return d.RemoveSelected() })
}

// structuralOp runs fn (a PlaylistData mutation that reports whether the
// current position changed) under the lock, then handles the update-bus
// and playback-coordinator fallout, firing hooks after the lock releases.
func (p Playlist) structuralOp(fn func(d PlaylistData) bool) {
	if !p.Valid() {
		p.logDeadHandle()
		return
	}
	m := p.mgr
	m.mu.Lock()
	if !p.rec.live() {
		m.mu.Unlock()
		return
	}
	positionChanged := fn(p.rec.data)
	calls := m.afterStructureChangeLocked(p.rec, positionChanged)
	m.scan.restart()
	m.mu.Unlock()

	fireHooks(m.hooks, calls)
	m.flushUpdate()
}

// --- selection ------------------------------------------------------------

func (p Playlist) EntrySelected(i int) bool {
	var sel bool
	p.withData(func(d PlaylistData) { sel = d.EntrySelected(i) })
	return sel
}

func (p Playlist) SelectEntry(i int, selected bool) {
	p.withData(func(d PlaylistData) { d.SelectEntry(i, selected) })
}

func (p Playlist) NSelected() int {
	var n int
	p.withData(func(d PlaylistData) { n = d.NSelected() })
	return n
}

func (p Playlist) SelectAll(selected bool) {
	p.withData(func(d PlaylistData) { d.SelectAll(selected) })
}

// ShiftEntries moves the selected entries (or just entryNum if nothing is
// selected) by distance rows, clamped at either end of the playlist, and
// returns the distance actually moved. A no-op (moved == 0) fires no
// update or hook, matching the rest of the no-op convention in this file.
func (p Playlist) ShiftEntries(entryNum, distance int) int {
	if !p.Valid() {
		p.logDeadHandle()
		return 0
	}
	m := p.mgr
	m.mu.Lock()
	if !p.rec.live() {
		m.mu.Unlock()
		return 0
	}
	moved := p.rec.data.ShiftEntries(entryNum, distance)
	if moved == 0 {
		m.mu.Unlock()
		return 0
	}
	calls := m.afterStructureChangeLocked(p.rec, false)
	m.scan.restart()
	m.mu.Unlock()

	fireHooks(m.hooks, calls)
	m.flushUpdate()
	return moved
}

// --- sort & shuffle ---------------------------------------------------

func (p Playlist) SortByFilename() { p.reorderOp(func(d PlaylistData) { d.SortByFilename() }) }
func (p Playlist) SortByTuple()    { p.reorderOp(func(d PlaylistData) { d.SortByTuple() }) }
func (p Playlist) SortSelectedByFilename() {
	p.reorderOp(func(d PlaylistData) { d.SortSelectedByFilename() })
}
func (p Playlist) SortSelectedByTuple() {
	p.reorderOp(func(d PlaylistData) { d.SortSelectedByTuple() })
}
func (p Playlist) ReverseOrder()    { p.reorderOp(func(d PlaylistData) { d.ReverseOrder() }) }
func (p Playlist) ReverseSelected() { p.reorderOp(func(d PlaylistData) { d.ReverseSelected() }) }
func (p Playlist) RandomizeOrder()  { p.reorderOp(func(d PlaylistData) { d.RandomizeOrder() }) }
func (p Playlist) RandomizeSelected() {
	p.reorderOp(func(d PlaylistData) { d.RandomizeSelected() })
}

// reorderOp runs fn, a reshuffle that never changes set membership, only
// order — which still invalidates row-indexed queue/playback bookkeeping
// callers may hold, so it goes through the same Structure-update path as
// an insert or removal.
func (p Playlist) reorderOp(fn func(d PlaylistData)) {
	p.structuralOp(func(d PlaylistData) bool {
		fn(d)
		return false
	})
}

// --- length -------------------------------------------------------------

func (p Playlist) TotalLengthMs() int64 {
	var n int64
	p.withData(func(d PlaylistData) { n = d.TotalLengthMs() })
	return n
}

func (p Playlist) SelectedLengthMs() int64 {
	var n int64
	p.withData(func(d PlaylistData) { n = d.SelectedLengthMs() })
	return n
}

// --- queue ----------------------------------------------------------------

func (p Playlist) NQueued() int {
	var n int
	p.withData(func(d PlaylistData) { n = d.NQueued() })
	return n
}

func (p Playlist) QueueInsert(entryIndex int) {
	p.withData(func(d PlaylistData) { d.QueueInsert(entryIndex) })
}

func (p Playlist) QueueInsertSelected() {
	p.withData(func(d PlaylistData) { d.QueueInsertSelected() })
}

func (p Playlist) QueueGetEntry(i int) int {
	var n int
	p.withData(func(d PlaylistData) { n = d.QueueGetEntry(i) })
	return n
}

func (p Playlist) QueueFindEntry(entryIndex int) int {
	var n int
	p.withData(func(d PlaylistData) { n = d.QueueFindEntry(entryIndex) })
	return n
}

func (p Playlist) QueueRemove(i int) {
	p.withData(func(d PlaylistData) { d.QueueRemove(i) })
}

func (p Playlist) QueueRemoveSelected() {
	p.withData(func(d PlaylistData) { d.QueueRemoveSelected() })
}

// --- position & playback ------------------------------------------------

func (p Playlist) Position() int {
	var n int = -1
	p.withData(func(d PlaylistData) { n = d.Position() })
	return n
}

// SetPosition moves the cursor without affecting playback, even on the
// playing playlist; Play starts playback from the current position.
func (p Playlist) SetPosition(entry int, updateFocus bool) {
	p.withData(func(d PlaylistData) { d.SetPosition(entry, updateFocus) })
	p.queueUpdate(UpdateMetadata, 0, 0)
}

// Focus returns the playlist view's cursor row, or -1 if none is set.
// Unlike Position, it is purely a UI concern: no operation in this
// package reads it, and it has no effect on playback.
func (p Playlist) Focus() int {
	n := -1
	p.withData(func(d PlaylistData) { n = d.Focus() })
	return n
}

func (p Playlist) SetFocus(entry int) {
	p.withData(func(d PlaylistData) { d.SetFocus(entry) })
}

// NextSong advances the cursor, preferring a queued entry. If the playing
// entry belongs to this playlist, playback follows the new position. A
// call that cannot move (already at the end with repeat off) is a true
// no-op: it queues no update and fires no hook.
func (p Playlist) NextSong(repeat bool, hint int) bool {
	return p.stepSong(func(d PlaylistData) bool { return d.NextSong(repeat, hint) })
}

func (p Playlist) PrevSong() bool {
	return p.stepSong(func(d PlaylistData) bool { return d.PrevSong() })
}

// stepSong runs a cursor-advancing mutation that may genuinely do nothing.
// structuralOp's other callers (insert, remove, sort) always mutate
// something worth announcing, but a stepSong call that doesn't move must
// skip the update bus and every hook entirely.
func (p Playlist) stepSong(fn func(d PlaylistData) bool) bool {
	if !p.Valid() {
		p.logDeadHandle()
		return false
	}
	m := p.mgr
	m.mu.Lock()
	if !p.rec.live() {
		m.mu.Unlock()
		return false
	}
	if !fn(p.rec.data) {
		m.mu.Unlock()
		return false
	}
	calls := m.afterStructureChangeLocked(p.rec, true)
	m.scan.restart()
	m.mu.Unlock()

	fireHooks(m.hooks, calls)
	m.flushUpdate()
	return true
}

// Play starts playback at this playlist's current position.
func (p Playlist) Play(resumeTime time.Duration, paused bool) {
	if !p.Valid() {
		return
	}
	p.mgr.SetPlaying(p, resumeTime, paused)
}

func (p Playlist) IsPlaying() bool {
	if !p.Valid() {
		return false
	}
	p.mgr.mu.Lock()
	defer p.mgr.mu.Unlock()
	return p.mgr.pb.playingID == p.rec
}

// --- scanning -------------------------------------------------------------

func (p Playlist) ScanStatus() ScanStatus {
	var s ScanStatus
	p.withData(func(d PlaylistData) { s = d.ScanStatus() })
	return s
}

// ScanInProgress reports whether this playlist still has unscanned or
// in-flight entries.
func (p Playlist) ScanInProgress() bool {
	return p.ScanStatus() != NotScanning
}

// RescanAll invalidates every cached tuple in the playlist and restarts
// the scan walk over it.
func (p Playlist) RescanAll() { p.ResetTuples(false) }

// RescanSelected is RescanAll narrowed to the current selection.
func (p Playlist) RescanSelected() { p.ResetTuples(true) }

// ResetTuples invalidates cached metadata (selectedOnly narrows to the
// current selection) and restarts the scan scheduler's walk so the
// entries get rescanned.
func (p Playlist) ResetTuples(selectedOnly bool) {
	if !p.Valid() {
		p.logDeadHandle()
		return
	}
	m := p.mgr
	m.mu.Lock()
	if !p.rec.live() {
		m.mu.Unlock()
		return
	}
	p.rec.data.ResetTuples(selectedOnly)
	p.rec.data.SetScanStatus(ScanActive)
	m.scan.restart()
	m.queueGlobalUpdateLocked(UpdateMetadata, true)
	m.mu.Unlock()
	m.flushUpdate()
}

// ResetTupleOfFile invalidates every entry across this playlist matching
// path; used when an external rescan_file hook (see Open Questions in §9)
// names a specific file.
func (p Playlist) ResetTupleOfFile(path string) bool {
	var found bool
	p.withData(func(d PlaylistData) { found = d.ResetTupleOfFile(path) })
	if found {
		p.mgr.mu.Lock()
		p.mgr.scan.restart()
		p.mgr.queueGlobalUpdateLocked(UpdateMetadata, true)
		p.mgr.mu.Unlock()
		p.mgr.flushUpdate()
	}
	return found
}

// --- update inspection -----------------------------------------------------

func (p Playlist) LastUpdate() UpdateRecord {
	var u UpdateRecord
	p.withData(func(d PlaylistData) { u = d.LastUpdate() })
	return u
}

func (p Playlist) UpdatePending() bool {
	var pending bool
	p.withData(func(d PlaylistData) { pending = d.UpdatePending() })
	return pending
}

// SwapUpdates moves this playlist's pending update into last and clears
// pending, the per-playlist half of consuming a global update notification.
func (p Playlist) SwapUpdates() {
	p.withData(func(d PlaylistData) { d.SwapUpdates() })
}

func (p Playlist) queueUpdate(level UpdateLevel, at, number int) {
	if !p.Valid() {
		return
	}
	m := p.mgr
	m.mu.Lock()
	if p.rec.live() {
		p.rec.data.QueueUpdate(level, at, number)
		m.queueGlobalUpdateLocked(level, false)
	}
	m.mu.Unlock()
	m.flushUpdate()
}

// --- lifecycle -------------------------------------------------------------

// Activate makes this the active playlist.
func (p Playlist) Activate() {
	if !p.Valid() {
		return
	}
	p.mgr.Activate(p)
}

func (p Playlist) IsActive() bool {
	if !p.Valid() {
		return false
	}
	p.mgr.mu.Lock()
	defer p.mgr.mu.Unlock()
	return p.mgr.reg.activeID == p.rec
}

// Remove deletes this playlist from the Registry.
func (p Playlist) Remove() {
	if !p.Valid() {
		return
	}
	p.mgr.RemovePlaylist(p)
}

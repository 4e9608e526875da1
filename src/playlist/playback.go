package playlist

import "time"

// Playback is the external decoding/output collaborator named in §4.6.
// Begin and End are invoked from a dedicated goroutine, never under the
// Manager's lock, so they are free to block on device I/O. serial
// identifies the playback episode Begin was started for: if playback
// moves on before a slow Begin finishes opening its file, a callback
// against the old serial via PlaybackEntryRead/PlaybackEntrySetTuple is
// silently dropped instead of corrupting the new episode's state.
// A track-to-track advance within the same playing playlist calls Begin
// again with a higher serial without an intervening End: the backend must
// treat a new Begin as superseding whatever it was doing for the previous
// serial.
type Playback interface {
	Begin(serial uint64, filename string, resumeTime time.Duration, paused bool)
	End()
}

// playbackCoordinator binds "currently playing" to one entry in one
// playlist. Every method assumes the Manager's lock is held.
type playbackCoordinator struct {
	mgr *Manager
	pb  Playback

	playingID *idRecord
	serial    uint64
}

func newPlaybackCoordinator(mgr *Manager, pb Playback) *playbackCoordinator {
	return &playbackCoordinator{mgr: mgr, pb: pb}
}

// setPlayingLocked makes rec's current-position entry the playing entry. A
// nil or dead rec, or one whose position has no entry, simply stops
// playback. force re-binds even if rec is already playing, used when the
// same playlist's position moved out from under it. Per §4.5,
// PlaybackBegin and PlaybackStop are mutually exclusive outcomes of one
// call: switching directly between two valid playing entries supersedes
// the old episode through Begin alone (a higher serial, no intervening
// End), and PlaybackStop only fires when there is no new entry to hand
// off to — mirroring original_source's set_playing_locked, which builds
// playback_hooks via an if/else between PlaybackBegin and PlaybackStop,
// never both.
func (c *playbackCoordinator) setPlayingLocked(rec *idRecord, resumeTime time.Duration, paused bool, force bool) []hookCall {
	if c.playingID == rec && !force {
		return nil
	}
	if rec != nil && rec.live() {
		if entry := rec.data.EntryAt(rec.data.Position()); entry != nil {
			return c.beginLocked(rec, entry, resumeTime, paused)
		}
	}
	c.mgr.scan.resetPlayback()
	if c.playingID == nil {
		return nil
	}
	c.stopLocked()
	return []hookCall{func(h Hooks) { h.PlaybackStop() }}
}

// beginLocked binds rec/entry as the playing entry and starts the new
// episode. It never fires PlaybackStop itself: armForPlayback already
// reclaims any previous for-playback reservation, and the bumped serial
// alone is enough to invalidate callbacks against whatever was playing
// before, so a Playback backend sees a new Begin superseding the old one
// instead of an End/Begin pair.
func (c *playbackCoordinator) beginLocked(rec *idRecord, entry *Entry, resumeTime time.Duration, paused bool) []hookCall {
	c.playingID = rec
	c.mgr.reg.playingID = rec
	c.serial++
	serial, filename := c.serial, entry.Filename
	c.mgr.scan.armForPlayback(rec, entry)

	calls := []hookCall{
		func(h Hooks) { h.PlaylistSetPlaying(c.mgr.handle(rec)) },
		func(h Hooks) { h.PlaylistPosition(c.mgr.handle(rec)) },
	}
	if c.pb != nil {
		pb := c.pb
		go pb.Begin(serial, filename, resumeTime, paused)
	}
	calls = append(calls, func(h Hooks) { h.PlaybackBegin() })
	return calls
}

// stopLocked clears the playing reference and signals the Playback
// collaborator to tear down, without firing any hooks itself — callers
// decide whether a PlaybackStop hook is warranted (setPlayingLocked always
// wants one; a plain stop-on-removal might want PlaylistSetPlaying(nil)
// instead, or both).
func (c *playbackCoordinator) stopLocked() {
	if c.playingID == nil {
		return
	}
	c.playingID = nil
	c.mgr.reg.playingID = nil
	c.serial++
	if c.pb != nil {
		pb := c.pb
		go pb.End()
	}
}

// changePlaybackLocked re-evaluates playback against rec after one of its
// entries moved or was removed. If rec's position is no longer valid,
// playback stops; otherwise it repositions within the same playing
// playlist, per the "Insert, play, next" scenario: rec was already
// playing, so only PlaylistPosition/PlaybackBegin fire, not a fresh
// PlaylistSetPlaying/PlaybackStop pair.
func (c *playbackCoordinator) changePlaybackLocked(rec *idRecord) []hookCall {
	if rec.data.Position() < 0 {
		c.stopLocked()
		c.mgr.scan.resetPlayback()
		return []hookCall{
			func(h Hooks) { h.PlaylistSetPlaying(c.mgr.handle(nil)) },
			func(h Hooks) { h.PlaybackStop() },
		}
	}
	return c.repositionLocked(rec)
}

// repositionLocked restarts playback at rec's current position without
// re-announcing PlaylistSetPlaying: the playing playlist has not changed,
// only where within it. The bumped serial still invalidates any in-flight
// callback against the previous position.
func (c *playbackCoordinator) repositionLocked(rec *idRecord) []hookCall {
	entry := rec.data.EntryAt(rec.data.Position())
	if entry == nil {
		c.stopLocked()
		c.mgr.scan.resetPlayback()
		return []hookCall{
			func(h Hooks) { h.PlaylistSetPlaying(c.mgr.handle(nil)) },
			func(h Hooks) { h.PlaybackStop() },
		}
	}
	c.serial++
	serial, filename := c.serial, entry.Filename
	c.mgr.scan.armForPlayback(rec, entry)

	calls := []hookCall{func(h Hooks) { h.PlaylistPosition(c.mgr.handle(rec)) }}
	if c.pb != nil {
		pb := c.pb
		go pb.Begin(serial, filename, 0, false)
	}
	calls = append(calls, func(h Hooks) { h.PlaybackBegin() })
	return calls
}

// SetPlaying makes pl the playing playlist, starting playback at its
// current position. An empty (zero) Playlist or a dead handle stops
// playback instead.
func (m *Manager) SetPlaying(pl Playlist, resumeTime time.Duration, paused bool) {
	m.mu.Lock()
	rec := pl.rec
	if rec != nil && !rec.live() {
		rec = nil
	}
	calls := m.pb.setPlayingLocked(rec, resumeTime, paused, false)
	m.mu.Unlock()
	fireHooks(m.hooks, calls)
}

// StopPlaying tears down playback without designating a replacement.
func (m *Manager) StopPlaying() {
	m.mu.Lock()
	calls := m.pb.setPlayingLocked(nil, 0, false, false)
	m.mu.Unlock()
	fireHooks(m.hooks, calls)
}

// PlaybackEntryRead is called back by the Playback collaborator's Begin
// goroutine to resolve serial to the entry it should decode. Per §4.6 it
// runs the entry's for-playback scan synchronously on the calling
// goroutine before returning, instead of going through the bounded
// background pool — the playback thread blocks on this call, not on a
// completion callback. ok is false if serial is stale, in which case the
// caller should abandon this Begin episode entirely.
func (m *Manager) PlaybackEntryRead(serial uint64) (info DecodeInfo, ok bool) {
	m.mu.Lock()
	rec := m.pb.playingID
	if m.pb.serial != serial || rec == nil || !rec.live() {
		m.mu.Unlock()
		return DecodeInfo{}, false
	}
	entry := rec.data.EntryAt(rec.data.Position())
	if entry == nil {
		m.mu.Unlock()
		return DecodeInfo{}, false
	}
	filename := entry.Filename

	item := m.scan.forPlaybackItem
	if item == nil || item.rec != rec || item.entry != entry || entry.Tuple.Valid || m.scan.scanner == nil {
		m.mu.Unlock()
		return DecodeInfo{Filename: filename}, true
	}
	req := ScanRequest{Filename: entry.Filename, Decoder: entry.Decoder}
	m.mu.Unlock()

	res := m.scan.scanSync(req)

	m.mu.Lock()
	if m.pb.serial != serial || m.pb.playingID != rec || !rec.live() {
		m.mu.Unlock()
		return DecodeInfo{Filename: filename, Err: res.Err}, true
	}
	calls := m.scan.finish(item, res, false)
	m.scan.forPlaybackItem = nil
	m.cond.Broadcast()
	m.mu.Unlock()

	fireHooks(m.hooks, calls)
	m.flushUpdate()

	return DecodeInfo{Filename: filename, Decoder: res.Decoder, Err: res.Err}, true
}

// PlaybackEntrySetTuple lets the Playback collaborator hand back tuple
// metadata it scanned synchronously for the entry bound to serial, per
// the for-playback scan handoff in §4.6. Stale serials are dropped.
func (m *Manager) PlaybackEntrySetTuple(serial uint64, tuple Tuple) {
	m.mu.Lock()
	rec := m.pb.playingID
	if m.pb.serial != serial || rec == nil || !rec.live() {
		m.mu.Unlock()
		return
	}
	entry := rec.data.EntryAt(rec.data.Position())
	if entry != nil && !entry.Tuple.IsCuesheet() {
		rec.data.SetEntryTuple(entry, tuple)
		m.queueGlobalUpdateLocked(UpdateMetadata, false)
	}
	m.mu.Unlock()
	m.flushUpdate()
}

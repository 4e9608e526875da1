package playlist

// ScanThreads bounds the number of scan items the scheduler keeps in
// flight at once, per the pool size named in §4.4.
const ScanThreads = 2

// ScanRequest describes one file the core wants metadata for. Decoder, if
// non-nil, is the entry's decoder handle from an earlier scan result, which
// a Scanner may reuse instead of reopening the file.
type ScanRequest struct {
	Filename string
	Decoder  interface{}
}

// ScanResult is what a Scanner hands back for one ScanRequest. Err set
// means the scan failed (ErrScanFailure territory); Tuple.Valid distinguishes
// "scanned, nothing usable" from "scanned successfully".
type ScanResult struct {
	Tuple   Tuple
	Decoder interface{}
	Err     error
}

// DecodeInfo is what Manager.PlaybackEntryRead hands back to the Playback
// collaborator's Begin goroutine once the for-playback scan for the entry
// has run, per §4.6: the filename to open, the decoder handle the Scanner
// produced while scanning it (if any), and the scan error (if any).
type DecodeInfo struct {
	Filename string
	Decoder  interface{}
	Err      error
}

// Scanner is the tag-reading collaborator, external to this package per
// §1: it owns file I/O and codec-specific metadata parsing. Scan runs
// asynchronously against the scheduler's bounded pool and must eventually
// call done exactly once. ScanSync is used by the playback thread for the
// for-playback scan item described in §4.6, and must block until the
// result is ready.
type Scanner interface {
	Scan(req ScanRequest, done func(ScanResult))
	ScanSync(req ScanRequest) ScanResult
}

// scanItem tracks one in-flight asynchronous scan: which playlist record
// and entry it belongs to, so a stale completion against a removed
// playlist or entry can be dropped safely. forPlayback marks the single
// reserved item the playback thread will run itself via scanSync instead
// of the item being submitted to the bounded pool.
type scanItem struct {
	rec         *idRecord
	entry       *Entry
	forPlayback bool
}

// scanScheduler walks every playlist's entries looking for unscanned
// tuples and keeps up to ScanThreads requests in flight against the
// Scanner collaborator. Every method assumes the Manager's lock is held,
// except the done callback it hands to Scanner.Scan, which reacquires it.
type scanScheduler struct {
	mgr     *Manager
	scanner Scanner

	enabledNominal bool
	inFlight       []*scanItem

	// forPlaybackItem is the single reservation armed by
	// playbackCoordinator for the entry that is about to play. It never
	// appears in inFlight and is never submitted to Scanner.Scan — the
	// playback thread claims it and runs it synchronously via scanSync.
	forPlaybackItem *scanItem

	cursorPlaylist int
	cursorRow      int
}

func newScanScheduler(mgr *Manager, scanner Scanner) *scanScheduler {
	return &scanScheduler{mgr: mgr, scanner: scanner}
}

// enabled reports whether the scheduler should be walking playlists right
// now: it needs a Scanner, the nominal policy must be on, and
// metadata_on_play must not be suppressing background scanning. It has no
// bearing on the for-playback reservation armed by armForPlayback, which
// bypasses the background walk entirely — metadata_on_play turns off
// "scan everything", not "scan what's about to play".
func (s *scanScheduler) enabled() bool {
	return s.scanner != nil && s.enabledNominal && !s.mgr.config.MetadataOnPlay
}

// schedule tops up the in-flight pool from the cursor position. Must be
// called with the lock held; it is idempotent and cheap to call liberally
// any time playlist content, scan policy or the pool's occupancy changes.
func (s *scanScheduler) schedule() {
	if !s.enabled() {
		return
	}
	for len(s.inFlight) < ScanThreads {
		if !s.queueNextEntry() {
			return
		}
	}
}

// queueNextEntry walks forward from the cursor across every playlist in
// Registry order looking for one unscanned entry, submits it to the
// Scanner and advances the cursor past it. Returns false once a full pass
// over every playlist found nothing left to scan.
func (s *scanScheduler) queueNextEntry() bool {
	reg := s.mgr.reg
	n := reg.nPlaylists()
	if n == 0 {
		return false
	}
	for visited := 0; visited < n; visited++ {
		pli := s.cursorPlaylist % n
		rec := reg.byIndex(pli)
		if rec == nil || !rec.live() {
			s.cursorPlaylist = (s.cursorPlaylist + 1) % n
			s.cursorRow = 0
			continue
		}
		row := rec.data.NextUnscannedEntry(s.cursorRow)
		if row < 0 {
			s.cursorPlaylist = (s.cursorPlaylist + 1) % n
			s.cursorRow = 0
			continue
		}
		entry := rec.data.EntryAt(row)
		s.cursorRow = row + 1
		if s.forPlaybackItem != nil && s.forPlaybackItem.rec == rec && s.forPlaybackItem.entry == entry {
			continue
		}
		s.queueEntry(rec, entry)
		return true
	}
	return false
}

// queueEntry submits one entry to the Scanner's async path. Must be
// called with the lock held.
func (s *scanScheduler) queueEntry(rec *idRecord, entry *Entry) {
	item := &scanItem{rec: rec, entry: entry}
	s.inFlight = append(s.inFlight, item)
	req := ScanRequest{Filename: entry.Filename, Decoder: entry.Decoder}
	s.scanner.Scan(req, func(res ScanResult) {
		s.mgr.mu.Lock()
		calls := s.finish(item, res, true)
		s.mgr.cond.Broadcast()
		s.mgr.mu.Unlock()
		fireHooks(s.mgr.hooks, calls)
		s.mgr.flushUpdate()
	})
}

// forceScan submits entry for immediate scanning outside the background
// pool's ScanThreads cap, for the blocking get_entry(Wait) path: a caller
// waiting on a specific entry should not queue behind ordinary background
// scanning. A no-op if entry is already in flight or there is no Scanner.
// Must be called with the lock held.
func (s *scanScheduler) forceScan(rec *idRecord, entry *Entry) {
	if s.scanner == nil {
		return
	}
	for _, it := range s.inFlight {
		if it.rec == rec && it.entry == entry {
			return
		}
	}
	s.queueEntry(rec, entry)
}

// finish applies a completed scan result to its entry and pool-bookkeeping.
// Must be called with the lock held; returns hooks to fire after release.
// delayed controls which update-bus path the per-playlist change rides on:
// true for background completions (coalesced), false for the synchronous
// for-playback path.
func (s *scanScheduler) finish(item *scanItem, res ScanResult, delayed bool) []hookCall {
	idx := -1
	for i, it := range s.inFlight {
		if it == item {
			idx = i
			break
		}
	}
	if idx >= 0 {
		s.inFlight = append(s.inFlight[:idx], s.inFlight[idx+1:]...)
	}

	var calls []hookCall
	if item.rec.live() {
		item.rec.data.UpdateEntryFromScan(item.entry, res, delayed)
		s.mgr.queueGlobalUpdateLocked(UpdateMetadata, delayed)
		if s.checkComplete(item.rec) {
			pl := s.mgr.handle(item.rec)
			calls = append(calls, func(h Hooks) { h.PlaylistScanComplete(pl) })
		}
	}
	s.schedule()
	return calls
}

// checkComplete advances rec's scan lifecycle and reports whether it just
// finished. ScanActive flips to ScanEnding once the cursor has walked past
// its last unscanned entry; ScanEnding only reverts to NotScanning, firing
// the completion hook, once no in-flight item still references rec — so a
// playlist visited by more than one in-flight item at once still gets
// exactly one completion notification, not one per item.
func (s *scanScheduler) checkComplete(rec *idRecord) bool {
	if !rec.live() {
		return false
	}
	d := rec.data
	if d.ScanStatus() == ScanActive && d.NextUnscannedEntry(0) < 0 {
		d.SetScanStatus(ScanEnding)
	}
	if d.ScanStatus() != ScanEnding {
		return false
	}
	for _, it := range s.inFlight {
		if it.rec == rec {
			return false
		}
	}
	d.SetScanStatus(NotScanning)
	return true
}

// restart resets the walking cursor to the top and marks every live
// playlist as ScanActive again; called after every Structure-level change
// and after a ResetTuples-style bulk invalidation. Must be called with the
// lock held.
func (s *scanScheduler) restart() {
	s.cursorPlaylist = 0
	s.cursorRow = 0
	n := s.mgr.reg.nPlaylists()
	for i := 0; i < n; i++ {
		if rec := s.mgr.reg.byIndex(i); rec != nil && rec.live() {
			rec.data.SetScanStatus(ScanActive)
		}
	}
	s.schedule()
}

// cancelPlaylist drops any in-flight scan items belonging to rec (a
// playlist about to be removed). Their Scanner callbacks may still fire
// later; finish silently drops them because item.rec is no longer live.
// The for-playback reservation, if any, belongs only to the currently
// playing record, so it is dropped the same way rather than requeued.
func (s *scanScheduler) cancelPlaylist(rec *idRecord) {
	kept := make([]*scanItem, 0, len(s.inFlight))
	for _, it := range s.inFlight {
		if it.rec != rec {
			kept = append(kept, it)
		}
	}
	s.inFlight = kept
	if s.forPlaybackItem != nil && s.forPlaybackItem.rec == rec {
		s.forPlaybackItem = nil
	}
}

// armForPlayback reserves entry as the for-playback scan item, per the
// "Playback hand-off" paragraph in §4.4: it replaces whatever was
// reserved before (handing that one back to ordinary scanning via
// resetPlayback) and is itself never submitted to Scanner.Scan — the
// playback thread claims it through scanSync. Must be called with the
// lock held.
func (s *scanScheduler) armForPlayback(rec *idRecord, entry *Entry) {
	s.resetPlayback()
	s.forPlaybackItem = &scanItem{rec: rec, entry: entry, forPlayback: true}
}

// resetPlayback clears the current for-playback reservation. If it was
// never claimed by scanSync and the entry is still unscanned, it is
// resubmitted to the ordinary background pool instead of being dropped,
// so a playback episode that ends before the playback thread gets around
// to reading still leaves the entry eligible for a regular scan. Must be
// called with the lock held.
func (s *scanScheduler) resetPlayback() {
	item := s.forPlaybackItem
	s.forPlaybackItem = nil
	if item == nil || !item.rec.live() || item.entry.Tuple.Valid || s.scanner == nil {
		return
	}
	s.queueEntry(item.rec, item.entry)
}

// scanSync runs the reserved for-playback scan item synchronously on the
// calling goroutine (the playback thread's), bypassing the pool entirely
// per §4.6. Must be called without the Manager's lock held, since the
// Scanner is free to block on file I/O.
func (s *scanScheduler) scanSync(req ScanRequest) ScanResult {
	return s.scanner.ScanSync(req)
}

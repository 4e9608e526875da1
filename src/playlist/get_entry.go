package playlist

import (
	"errors"

	log "github.com/sirupsen/logrus"

	"playlistcore/src/util"
)

// errEntryNotReady is the sentinel RetryOnce needs to see a non-nil error
// on the branch it should retry: github.com/matryer/try's Do stops as soon
// as the wrapped function returns a nil error, regardless of the retry
// bool it's paired with, so "not ready yet, try again" must carry an
// error of its own rather than nil.
var errEntryNotReady = errors.New("playlist: entry not ready after scan")

// EntryMode selects whether entry_decoder/entry_tuple may block waiting
// for a scan result, per the get_entry contract in §5/§6.
type EntryMode int

const (
	Nowait EntryMode = iota
	Wait
)

// EntryDecoder resolves entry i's scanned decoder handle. In Wait mode, if
// no decoder is available yet, it forces a scan and blocks until one
// shows up, is deleted out from under it, or the retry budget runs out.
func (p Playlist) EntryDecoder(i int, mode EntryMode) interface{} {
	entry := p.getEntry(i, mode, func(e *Entry) bool { return e.Decoder != nil })
	if entry == nil {
		return nil
	}
	return entry.Decoder
}

// EntryTuple resolves entry i's scanned tuple under the same contract as
// EntryDecoder, waiting for Tuple.Valid instead of a non-nil decoder.
func (p Playlist) EntryTuple(i int, mode EntryMode) Tuple {
	entry := p.getEntry(i, mode, func(e *Entry) bool { return e.Tuple.Valid })
	if entry == nil {
		return Tuple{}
	}
	return entry.Tuple
}

// getEntry resolves entry i under the lock. In Wait mode, if ready(entry)
// is not already true, it forces an immediate scan of the entry and blocks
// on the Manager's condition variable, woken by every scan completion,
// retrying the scan at most once (via util.RetryOnce) before giving up and
// returning whatever is available — so a stuck scanner can never hang the
// caller forever. Returns nil if the handle is dead or i is out of range.
// If the entry at i changes during the wait (a deletion or a reorder), it
// stops waiting and returns whatever entry now sits at i, or nil if i is
// now out of range.
func (p Playlist) getEntry(i int, mode EntryMode, ready func(*Entry) bool) *Entry {
	if !p.Valid() {
		if p.rec != nil {
			log.WithError(ErrDeadHandle).Debug("playlist: getEntry on a dead handle")
		}
		return nil
	}
	m, rec := p.mgr, p.rec
	m.mu.Lock()
	defer m.mu.Unlock()

	if !rec.live() {
		log.WithError(ErrDeadHandle).Debug("playlist: getEntry handle died while acquiring the lock")
		return nil
	}
	entry := rec.data.EntryAt(i)
	if entry == nil {
		log.WithError(ErrOutOfRange).WithField("index", i).Debug("playlist: getEntry index out of range")
		return nil
	}
	if mode == Nowait || ready(entry) {
		return entry
	}

	util.RetryOnce(func(attempt int) (bool, error) {
		m.scan.forceScan(rec, entry)
		m.cond.Wait()

		if !rec.live() {
			entry = nil
			return false, nil
		}
		cur := rec.data.EntryAt(i)
		if cur != entry {
			entry = cur
			return false, nil
		}
		if ready(entry) {
			return false, nil
		}
		return true, errEntryNotReady
	})
	return entry
}

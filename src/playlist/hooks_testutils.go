package playlist

import "sync"

// recordingHooks captures every hook call it receives, in order, for
// tests that need to assert on the exact sequence fired after a lock
// release.
type recordingHooks struct {
	mu    sync.Mutex
	calls []string
}

func newRecordingHooks() *recordingHooks {
	return &recordingHooks{}
}

func (h *recordingHooks) record(name string) {
	h.mu.Lock()
	h.calls = append(h.calls, name)
	h.mu.Unlock()
}

func (h *recordingHooks) snapshot() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string{}, h.calls...)
}

func (h *recordingHooks) PlaylistUpdate(UpdateLevel)    { h.record("update") }
func (h *recordingHooks) PlaylistScanComplete(Playlist) { h.record("scan-complete") }
func (h *recordingHooks) PlaylistActivate(Playlist)     { h.record("activate") }
func (h *recordingHooks) PlaylistSetPlaying(Playlist)   { h.record("set-playing") }
func (h *recordingHooks) PlaylistPosition(Playlist)     { h.record("position") }
func (h *recordingHooks) PlaybackBegin()                { h.record("playback-begin") }
func (h *recordingHooks) PlaybackStop()                 { h.record("playback-stop") }

var _ Hooks = (*recordingHooks)(nil)

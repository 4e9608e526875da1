package playlist

import "playlistcore/src/util"

// UpdateEvent, ScanCompleteEvent etc. are the typed events EmitterHooks
// emits, one per named hook in §6.
type UpdateEvent struct{ Level UpdateLevel }
type ScanCompleteEvent struct{ Playlist Playlist }
type ActivateEvent struct{ Playlist Playlist }
type SetPlayingEvent struct{ Playlist Playlist }
type PositionEvent struct{ Playlist Playlist }
type PlaybackBeginEvent struct{}
type PlaybackStopEvent struct{}

// EmitterHooks is the default Hooks implementation, built on the package's
// typed event bus. Callers that don't need a custom hook sink can use
// NewEmitterHooks and Listen(ctx) for any of the events above.
type EmitterHooks struct {
	util.Emitter
}

func NewEmitterHooks() *EmitterHooks {
	return &EmitterHooks{}
}

func (h *EmitterHooks) PlaylistUpdate(level UpdateLevel)    { h.Emit(UpdateEvent{Level: level}) }
func (h *EmitterHooks) PlaylistScanComplete(pl Playlist)    { h.Emit(ScanCompleteEvent{Playlist: pl}) }
func (h *EmitterHooks) PlaylistActivate(pl Playlist)        { h.Emit(ActivateEvent{Playlist: pl}) }
func (h *EmitterHooks) PlaylistSetPlaying(pl Playlist)      { h.Emit(SetPlayingEvent{Playlist: pl}) }
func (h *EmitterHooks) PlaylistPosition(pl Playlist)        { h.Emit(PositionEvent{Playlist: pl}) }
func (h *EmitterHooks) PlaybackBegin()                      { h.Emit(PlaybackBeginEvent{}) }
func (h *EmitterHooks) PlaybackStop()                       { h.Emit(PlaybackStopEvent{}) }

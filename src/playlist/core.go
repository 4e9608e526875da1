package playlist

import (
	"path/filepath"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"

	"playlistcore/src/util"
)

// Manager owns the single global lock and every piece of state described
// in the data model: the Registry, the IdTable, the scan scheduler, the
// playback coordinator and the update bus. Every public operation on a
// Playlist handle ends up calling into a Manager method.
type Manager struct {
	mu   sync.Mutex
	cond *sync.Cond

	table *idTable
	reg   *registry

	scan *scanScheduler
	pb   *playbackCoordinator

	updateLevel   UpdateLevel
	updateDelayed bool
	updateTimer   timer

	hooks Hooks

	config Config
	prefs  *util.PersistentStorage

	dataDir string

	pendingResume *pendingResume
}

// pendingResume holds the playback LoadState restored from the state
// file until Resume is called to actually hand it to the Playback
// collaborator. Splitting load from resume lets a caller finish
// initializing its own playback subsystem before audio starts.
type pendingResume struct {
	rec        *idRecord
	resumeTime time.Duration
	paused     bool
}

// timer is the subset of *time.Timer Manager needs; it exists so tests can
// substitute a fake clock without pulling in a full scheduler abstraction.
type timer interface {
	Stop() bool
}

// ManagerOptions configures a new Manager. Scanner and Playback are the
// external collaborators named in §6; DataFactory defaults to the
// in-memory implementation if left nil.
type ManagerOptions struct {
	DataDir     string
	Hooks       Hooks
	Scanner     Scanner
	Playback    Playback
	DataFactory PlaylistDataFactory
	Config      Config
}

func NewManager(opts ManagerOptions) *Manager {
	if opts.Hooks == nil {
		opts.Hooks = NopHooks{}
	}
	if opts.DataFactory == nil {
		opts.DataFactory = NewMemoryPlaylistData
	}
	m := &Manager{
		table:   newIDTable(),
		hooks:   opts.Hooks,
		config:  opts.Config,
		dataDir: opts.DataDir,
	}
	m.cond = sync.NewCond(&m.mu)
	m.reg = newRegistry(m.table, opts.DataFactory)
	m.scan = newScanScheduler(m, opts.Scanner)
	m.pb = newPlaybackCoordinator(m, opts.Playback)
	return m
}

// Init seeds the Registry with a default playlist if it is empty, and
// attempts to restore persisted configuration from dataDir. Per Lifecycle
// in §2, this must run before any other public operation.
func (m *Manager) Init() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.reg.nPlaylists() == 0 {
		rec := m.reg.insert(0, -1)
		m.reg.activate(rec)
	}

	if m.dataDir != "" {
		if err := util.EnsureDir(m.dataDir); err != nil {
			log.WithField("dir", m.dataDir).Warnf("playlist: could not create data directory: %v", err)
		} else {
			store, err := util.NewPersistentStorage(filepath.Join(m.dataDir, "prefs.json"), &m.config)
			if err != nil {
				log.Warnf("playlist: could not load preferences: %v", err)
			} else {
				m.prefs = store
			}
		}
	}

	m.scan.enabledNominal = true
	m.scan.schedule()
	return nil
}

// EnableScan toggles the scanner's nominal policy (it may still be
// effectively disabled by metadata_on_play, see ScanScheduler.enabled).
func (m *Manager) EnableScan(enabled bool) {
	m.mu.Lock()
	m.scan.enabledNominal = enabled
	m.scan.schedule()
	m.mu.Unlock()
}

// End shuts the core down: cancels the update timer, asserts no playback
// is active (InvariantViolation is a fatal precondition violation per the
// error handling design, not a recoverable runtime error), clears every
// playlist and drops the ID table.
func (m *Manager) End() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.updateTimer != nil {
		m.updateTimer.Stop()
	}
	if m.pb.playingID != nil {
		panic("playlist: End called while playback is still active")
	}
	m.reg.playlists = nil
	m.reg.activeID = nil
	m.table.records = map[uint32]*idRecord{}
}

// GetConfig returns a snapshot of the live configuration.
func (m *Manager) GetConfig() Config {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.config
}

// SetConfig installs a new configuration. A metadata_on_play transition
// immediately re-evaluates the scan scheduler's effective enablement.
func (m *Manager) SetConfig(cfg Config) {
	m.mu.Lock()
	prevMetadataOnPlay := m.config.MetadataOnPlay
	m.config = cfg
	if m.prefs != nil {
		if err := m.prefs.SetValue(&m.config); err != nil {
			log.Warnf("playlist: could not persist preferences: %v", err)
		}
	}
	if cfg.MetadataOnPlay != prevMetadataOnPlay {
		m.scan.schedule()
	}
	m.mu.Unlock()
}

func (m *Manager) handle(rec *idRecord) Playlist {
	return Playlist{mgr: m, rec: rec}
}

// --- Registry-level public operations -------------------------------------

func (m *Manager) NPlaylists() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reg.nPlaylists()
}

func (m *Manager) ByIndex(i int) Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle(m.reg.byIndex(i))
}

func (m *Manager) Active() Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle(m.reg.activeID)
}

func (m *Manager) Playing() Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.handle(m.reg.playingID)
}

// ScanInProgressAny reports whether any playlist in the Registry still
// has unscanned or in-flight entries.
func (m *Manager) ScanInProgressAny() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.reg.playlists {
		if rec.data.ScanStatus() != NotScanning {
			return true
		}
	}
	return false
}

// UpdatePendingAny reports whether any playlist has a queued update
// still waiting to be picked up by SwapUpdates.
func (m *Manager) UpdatePendingAny() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.reg.playlists {
		if rec.data.UpdatePending() {
			return true
		}
	}
	return false
}

// RescanFile is the free-standing counterpart to Playlist.ResetTupleOfFile:
// it invalidates the cached tuple for path in every playlist that has an
// entry pointing at it, and reports whether any match was found.
func (m *Manager) RescanFile(path string) bool {
	found := false
	for i := 0; i < m.NPlaylists(); i++ {
		if m.ByIndex(i).ResetTupleOfFile(path) {
			found = true
		}
	}
	return found
}

func (m *Manager) InsertPlaylist(at int) Playlist {
	return m.insertWithStamp(at, -1)
}

func (m *Manager) InsertWithStamp(at int, stamp int64) Playlist {
	return m.insertWithStamp(at, stamp)
}

func (m *Manager) insertWithStamp(at int, stamp int64) Playlist {
	m.mu.Lock()
	rec := m.reg.insert(at, stamp)
	m.queueGlobalUpdateLocked(UpdateStructure, false)
	m.scan.restart()
	m.mu.Unlock()
	m.flushUpdate()
	return m.handle(rec)
}

// NewPlaylist inserts a fresh playlist right after the active one and
// activates it.
func (m *Manager) NewPlaylist() Playlist {
	m.mu.Lock()
	at := 0
	if m.reg.activeID != nil {
		at = int(m.reg.activeID.index) + 1
	}
	rec := m.reg.insert(at, -1)
	m.reg.activate(rec)
	m.queueGlobalUpdateLocked(UpdateStructure, false)
	m.scan.restart()
	m.mu.Unlock()
	m.flushUpdate()
	pl := m.handle(rec)
	m.hooks.PlaylistActivate(pl)
	return pl
}

func (m *Manager) Blank() Playlist {
	m.mu.Lock()
	rec, created := m.reg.blank()
	if created {
		m.queueGlobalUpdateLocked(UpdateStructure, false)
		m.scan.restart()
	}
	m.mu.Unlock()
	if created {
		m.flushUpdate()
	}
	return m.handle(rec)
}

func (m *Manager) Temporary() Playlist {
	m.mu.Lock()
	rec, created := m.reg.temporary()
	if created {
		m.queueGlobalUpdateLocked(UpdateStructure, false)
		m.scan.restart()
	}
	m.mu.Unlock()
	if created {
		m.flushUpdate()
	}
	return m.handle(rec)
}

func (m *Manager) ReorderPlaylists(from, to, count int) {
	m.mu.Lock()
	m.reg.reorder(from, to, count)
	m.queueGlobalUpdateLocked(UpdateStructure, false)
	m.scan.restart()
	m.mu.Unlock()
	m.flushUpdate()
}

// RemovePlaylist erases the playlist behind pl, per the policy in §4.1:
// the Registry is kept non-empty, active/playing references are adjusted,
// and the right hooks are fired outside the lock.
func (m *Manager) RemovePlaylist(pl Playlist) {
	rec := pl.rec
	if rec == nil || !rec.live() {
		return
	}
	m.mu.Lock()
	idx := int(rec.index)
	_, activeChanged, playingChanged := m.reg.removeAt(idx)
	m.scan.cancelPlaylist(rec)
	m.scan.restart()

	var calls []hookCall
	if activeChanged {
		active := m.reg.activeID
		calls = append(calls, func(h Hooks) { h.PlaylistActivate(m.handle(active)) })
	}
	if playingChanged {
		calls = append(calls, func(h Hooks) { h.PlaylistSetPlaying(m.handle(nil)) })
		m.pb.stopLocked()
		calls = append(calls, func(h Hooks) { h.PlaybackStop() })
	}
	m.queueGlobalUpdateLocked(UpdateStructure, false)
	m.mu.Unlock()

	fireHooks(m.hooks, calls)
	m.flushUpdate()
}

func (m *Manager) Activate(pl Playlist) {
	if pl.rec == nil || !pl.rec.live() {
		return
	}
	m.mu.Lock()
	m.reg.activate(pl.rec)
	m.mu.Unlock()
	m.hooks.PlaylistActivate(pl)
}

// afterStructureChangeLocked queues a Structure update for rec and, if the
// playing playlist's position may have become invalid, folds in the hooks
// needed to restart or stop playback. Per §4.3/§5, a Structure update
// always resets the scan cursor before the next item is queued, so
// callers use scan.restart() instead of scan.schedule() to pick back up
// after this returns. Must be called with the lock held; returns the hook
// calls to fire after it is released.
func (m *Manager) afterStructureChangeLocked(rec *idRecord, positionChanged bool) []hookCall {
	var calls []hookCall
	rec.data.QueueUpdate(UpdateStructure, 0, rec.data.NEntries())
	if rec.data.ScanStatus() == NotScanning {
		rec.data.SetScanStatus(ScanActive)
	}
	if positionChanged && m.pb.playingID == rec {
		calls = append(calls, m.pb.changePlaybackLocked(rec)...)
	}
	m.queueGlobalUpdateLocked(UpdateStructure, false)
	return calls
}

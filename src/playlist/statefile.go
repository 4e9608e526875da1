package playlist

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const stateFileName = "playlist-state"

func (s ResumeState) String() string {
	switch s {
	case ResumePlay:
		return "play"
	case ResumePause:
		return "pause"
	default:
		return "stop"
	}
}

func parseResumeState(s string) ResumeState {
	switch s {
	case "play":
		return ResumePlay
	case "pause":
		return ResumePause
	default:
		return ResumeStop
	}
}

// SaveState writes the coarse bookkeeping described in §4.7 to dataDir's
// state file: which playlist is active and playing, and each playlist's
// filename/position. resumeTime and resumePaused describe the playing
// playlist's live position; the caller must read them off its Playback
// collaborator *before* calling SaveState, since Playback may block and
// must never be queried while the Manager's lock is held.
func (m *Manager) SaveState(resumeTime time.Duration, resumePaused bool) error {
	if m.dataDir == "" {
		return nil
	}
	m.mu.Lock()
	lines := m.renderStateLocked(resumeTime, resumePaused)
	m.mu.Unlock()

	path := filepath.Join(m.dataDir, stateFileName)
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	w := bufio.NewWriter(f)
	for _, line := range lines {
		if _, err := w.WriteString(line + "\n"); err != nil {
			f.Close()
			return fmt.Errorf("%w: %v", ErrIoFailure, err)
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	return os.Rename(tmp, path)
}

func (m *Manager) renderStateLocked(resumeTime time.Duration, resumePaused bool) []string {
	var lines []string
	if m.reg.activeID != nil {
		lines = append(lines, fmt.Sprintf("active %d", m.reg.activeID.stamp))
	}
	if m.reg.playingID != nil {
		lines = append(lines, fmt.Sprintf("playing %d", m.reg.playingID.stamp))
	}
	for _, rec := range m.reg.playlists {
		lines = append(lines, fmt.Sprintf("playlist %d", rec.stamp))
		if fn := rec.data.Filename(); fn != "" {
			lines = append(lines, "filename "+fn)
		}
		lines = append(lines, fmt.Sprintf("position %d", rec.data.Position()))
		if rec == m.reg.playingID {
			state := ResumePlay
			if resumePaused {
				state = ResumePause
			}
			lines = append(lines, "resume-state "+state.String())
			lines = append(lines, fmt.Sprintf("resume-time %d", resumeTime.Milliseconds()))
		}
	}
	return lines
}

// stateEntry is one "playlist" block parsed from the state file.
type stateEntry struct {
	stamp        int64
	filename     string
	position     int
	resumeState  ResumeState
	resumeTimeMs int64
}

// LoadState replaces the Registry's current contents with the playlists
// named in dataDir's state file (creating one per "playlist" block, with
// the stamp it names so filenames referring to "<stamp>.audpl" keep
// resolving). If a playing playlist was recorded, its saved position and
// pause state are stashed for a later call to Resume rather than handed
// to the Playback collaborator immediately — a caller may still be
// bringing its own playback subsystem up at this point. It is a no-op,
// not an error, if the file does not exist yet — a fresh install has
// nothing to restore.
func (m *Manager) LoadState() error {
	if m.dataDir == "" {
		return nil
	}
	path := filepath.Join(m.dataDir, stateFileName)
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	defer f.Close()

	var activeStamp, playingStamp int64 = -1, -1
	var entries []*stateEntry
	var cur *stateEntry

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			continue
		}
		switch key {
		case "active":
			activeStamp, _ = strconv.ParseInt(val, 10, 64)
		case "playing":
			playingStamp, _ = strconv.ParseInt(val, 10, 64)
		case "playlist":
			stamp, _ := strconv.ParseInt(val, 10, 64)
			cur = &stateEntry{stamp: stamp, position: -1}
			entries = append(entries, cur)
		case "filename":
			if cur != nil {
				cur.filename = val
			}
		case "position":
			if cur != nil {
				cur.position, _ = strconv.Atoi(val)
			}
		case "resume-state":
			if cur != nil {
				cur.resumeState = parseResumeState(val)
			}
		case "resume-time":
			if cur != nil {
				cur.resumeTimeMs, _ = strconv.ParseInt(val, 10, 64)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrIoFailure, err)
	}
	if len(entries) == 0 {
		return nil
	}

	m.mu.Lock()
	// LoadState always runs right after Init, before any caller could hold
	// a handle into the default playlist Init just seeded, so it is safe
	// to drop the table entirely and let the saved stamps claim their
	// original slots instead of colliding with it.
	m.table.records = map[uint32]*idRecord{}
	m.table.next = 1000
	m.reg.playlists = nil
	m.reg.activeID = nil
	m.reg.playingID = nil

	var activeRec, playingRec *idRecord
	var playingEntry *stateEntry
	for _, se := range entries {
		rec := m.reg.insert(len(m.reg.playlists), se.stamp)
		rec.data.SetFilename(se.filename)
		if se.position >= 0 {
			rec.data.SetPosition(se.position, false)
			rec.data.SetFocus(se.position)
		} else if rec.data.NEntries() > 0 {
			rec.data.SetFocus(0)
		}
		if se.stamp == activeStamp {
			activeRec = rec
		}
		if se.stamp == playingStamp {
			playingRec, playingEntry = rec, se
		}
	}
	if activeRec != nil {
		m.reg.activate(activeRec)
	}
	if playingRec != nil && playingEntry != nil && playingEntry.resumeState != ResumeStop {
		m.pendingResume = &pendingResume{
			rec:        playingRec,
			resumeTime: time.Duration(playingEntry.resumeTimeMs) * time.Millisecond,
			paused:     playingEntry.resumeState == ResumePause,
		}
	}
	m.mu.Unlock()
	return nil
}

// Resume hands off the playback state LoadState restored to the wired
// Playback collaborator, if any was recorded. Calling it without a prior
// LoadState, or when the saved state named no playing playlist, is a
// no-op. Idempotent: a second call has nothing left to resume.
func (m *Manager) Resume() {
	m.mu.Lock()
	pr := m.pendingResume
	m.pendingResume = nil
	m.mu.Unlock()
	if pr == nil || !pr.rec.live() {
		return
	}
	m.SetPlaying(m.handle(pr.rec), pr.resumeTime, pr.paused)
}

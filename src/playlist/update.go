package playlist

import "time"

// updateDelay is the coalescing window for the delayed update path: a
// burst of per-entry scan completions collapses into one PlaylistUpdate
// hook call 250ms after the first one in the burst.
const updateDelay = 250 * time.Millisecond

// queueGlobalUpdateLocked merges level into the pending global update.
// Immediate (delayed=false) updates are picked up by the caller's next
// flushUpdate call once the lock is released. Delayed updates arm a timer
// that fires fireDelayedUpdate after updateDelay, coalescing any further
// updates queued (of either kind) in the meantime. Per §5, a delayed
// update is only ever a convenience for coalescing a burst of scan
// completions — any non-delayed update that arrives while a timer is
// still armed unconditionally flushes it, cancelling the timer so the
// merged level goes out through the caller's own flushUpdate instead of
// waiting out the rest of the window.
func (m *Manager) queueGlobalUpdateLocked(level UpdateLevel, delayed bool) {
	if level == UpdateNone {
		return
	}
	m.updateLevel = maxLevel(m.updateLevel, level)
	if delayed {
		if !m.updateDelayed {
			m.updateDelayed = true
			m.updateTimer = time.AfterFunc(updateDelay, m.fireDelayedUpdate)
		}
		return
	}
	if m.updateDelayed {
		m.updateDelayed = false
		if m.updateTimer != nil {
			m.updateTimer.Stop()
			m.updateTimer = nil
		}
	}
}

// flushUpdate delivers the pending immediate-path update, if any, and must
// be called with the lock NOT held. If a delayed update is currently
// armed, the pending level is left alone; fireDelayedUpdate will deliver
// it instead.
func (m *Manager) flushUpdate() {
	m.mu.Lock()
	if m.updateDelayed {
		m.mu.Unlock()
		return
	}
	level := m.updateLevel
	m.updateLevel = UpdateNone
	m.mu.Unlock()

	if level != UpdateNone {
		m.hooks.PlaylistUpdate(level)
	}
}

func (m *Manager) fireDelayedUpdate() {
	m.mu.Lock()
	level := m.updateLevel
	m.updateLevel = UpdateNone
	m.updateDelayed = false
	m.updateTimer = nil
	m.mu.Unlock()

	if level != UpdateNone {
		m.hooks.PlaylistUpdate(level)
	}
}

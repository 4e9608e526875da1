package playlist

import (
	"sync"
	"time"
)

// fakePlayback records every Begin/End call it receives so tests can
// assert on the sequence of playback episodes without a real decoder.
type fakePlayback struct {
	mu      sync.Mutex
	begins  []fakeBeginCall
	ends    int
	blocker chan struct{} // closed to let a blocked Begin proceed, if set
}

type fakeBeginCall struct {
	Serial     uint64
	Filename   string
	ResumeTime time.Duration
	Paused     bool
}

func newFakePlayback() *fakePlayback {
	return &fakePlayback{}
}

func (p *fakePlayback) Begin(serial uint64, filename string, resumeTime time.Duration, paused bool) {
	p.mu.Lock()
	blocker := p.blocker
	p.mu.Unlock()
	if blocker != nil {
		<-blocker
	}
	p.mu.Lock()
	p.begins = append(p.begins, fakeBeginCall{serial, filename, resumeTime, paused})
	p.mu.Unlock()
}

func (p *fakePlayback) End() {
	p.mu.Lock()
	p.ends++
	p.mu.Unlock()
}

func (p *fakePlayback) calls() []fakeBeginCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]fakeBeginCall{}, p.begins...)
}

func (p *fakePlayback) endCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ends
}

var _ Playback = (*fakePlayback)(nil)

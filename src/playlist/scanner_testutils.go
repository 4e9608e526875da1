package playlist

import "sync"

// fakeScanner is a deterministic, in-memory Scanner: every filename gets
// the Tuple registered for it via set, or an invalid empty Tuple if never
// registered. async, when true, defers completion of Scan calls until
// release is called, to exercise the scheduler's in-flight bookkeeping.
type fakeScanner struct {
	mu      sync.Mutex
	results map[string]ScanResult
	async   bool
	pending []func()
}

func newFakeScanner() *fakeScanner {
	return &fakeScanner{results: map[string]ScanResult{}}
}

func (s *fakeScanner) set(filename string, res ScanResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[filename] = res
}

func (s *fakeScanner) resultFor(filename string) ScanResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res, ok := s.results[filename]; ok {
		return res
	}
	return ScanResult{Tuple: Tuple{Valid: true, Title: filename}}
}

// Scan always completes on a separate goroutine, mirroring the real
// Scanner contract (§4.4): the scheduler calls Scan with its lock held, so
// a same-goroutine callback would deadlock. When async is false the
// goroutine runs immediately; callers that need entries scanned before
// asserting on them should give it a moment (see TestScanSchedulerWalksAllEntries).
func (s *fakeScanner) Scan(req ScanRequest, done func(ScanResult)) {
	res := s.resultFor(req.Filename)
	if !s.async {
		go done(res)
		return
	}
	s.mu.Lock()
	s.pending = append(s.pending, func() { done(res) })
	s.mu.Unlock()
}

// release runs every deferred Scan completion queued while async is true.
func (s *fakeScanner) release() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

func (s *fakeScanner) ScanSync(req ScanRequest) ScanResult {
	return s.resultFor(req.Filename)
}

var _ Scanner = (*fakeScanner)(nil)

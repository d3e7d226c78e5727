package operation

import "time"

// Scan is the device discovery operation. It is either idle or scanning.
type Scan struct {
	clock    Clock
	duration time.Duration
	handle   *Handle
	started  time.Time
}

// NewScan creates an idle scan whose completion fires duration after Start.
func NewScan(clock Clock, duration time.Duration) *Scan {
	return &Scan{clock: clock, duration: duration}
}

// Start begins a scan and returns immediately.
//
// While a scan is pending Start returns ErrScanInProgress and changes
// nothing: the original completion keeps its deadline and no second
// completion is scheduled.
//
// onComplete runs exactly once, after the scan has returned to idle, unless
// the scan is cancelled first.
func (s *Scan) Start(onComplete func()) error {
	if s.handle.Pending() {
		return ErrScanInProgress
	}

	s.started = s.clock.Now()
	var h *Handle
	h = schedule(s.clock, s.duration, func() {
		if s.handle != h {
			return
		}
		s.handle = nil
		if onComplete != nil {
			onComplete()
		}
	})
	s.handle = h
	return nil
}

// Cancel abandons a pending scan. It reports whether a scan was pending.
func (s *Scan) Cancel() bool {
	h := s.handle
	s.handle = nil
	return h.Cancel()
}

// IsScanning reports whether a scan is pending.
func (s *Scan) IsScanning() bool {
	return s.handle.Pending()
}

// Deadline returns when the pending scan completes (zero when idle).
func (s *Scan) Deadline() time.Time {
	if !s.IsScanning() {
		return time.Time{}
	}
	return s.handle.Deadline()
}

// StartedAt returns when the pending scan began (zero when idle).
func (s *Scan) StartedAt() time.Time {
	if !s.IsScanning() {
		return time.Time{}
	}
	return s.started
}

// Duration returns the configured scan latency.
func (s *Scan) Duration() time.Duration {
	return s.duration
}

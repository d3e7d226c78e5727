package operation

import (
	"sync"
	"time"
)

// Handle is a cancellable scheduled completion.
//
// The wrapped callback runs at most once, and never after Cancel has
// returned. Cancelling after the callback has started has no effect.
type Handle struct {
	mu        sync.Mutex
	timer     Timer
	deadline  time.Time
	cancelled bool
	done      bool
}

// schedule arranges for f to run after d unless the returned handle is cancelled first.
func schedule(clock Clock, d time.Duration, f func()) *Handle {
	h := &Handle{deadline: clock.Now().Add(d)}

	h.mu.Lock()
	h.timer = clock.AfterFunc(d, func() {
		if h.claim() {
			f()
		}
	})
	h.mu.Unlock()

	return h
}

// claim marks the handle done. False means the callback must be skipped.
func (h *Handle) claim() bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancelled || h.done {
		return false
	}
	h.done = true
	return true
}

// Cancel stops the completion. It reports whether the callback was
// prevented (false if it already ran or was already cancelled).
func (h *Handle) Cancel() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.cancelled || h.done {
		return false
	}
	h.cancelled = true
	if h.timer != nil {
		h.timer.Stop()
	}
	return true
}

// Pending reports whether the completion is still scheduled.
func (h *Handle) Pending() bool {
	if h == nil {
		return false
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return !h.cancelled && !h.done
}

// Deadline returns when the completion is due.
func (h *Handle) Deadline() time.Time {
	if h == nil {
		return time.Time{}
	}
	return h.deadline
}

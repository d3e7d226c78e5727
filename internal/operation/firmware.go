package operation

import (
	"fmt"
	"sort"
	"time"
)

// Firmware tracks firmware updates keyed by device ID.
//
// Updates for different devices run independently. A second Start for a
// device that is already updating is rejected without touching the
// pending countdown.
type Firmware struct {
	clock    Clock
	duration time.Duration
	inflight map[string]*Handle
}

// NewFirmware creates a Firmware tracker whose updates take duration.
func NewFirmware(clock Clock, duration time.Duration) *Firmware {
	return &Firmware{
		clock:    clock,
		duration: duration,
		inflight: make(map[string]*Handle),
	}
}

// Start marks deviceID as updating and schedules its completion.
//
// Returns ErrUpdateInProgress (wrapped with the device ID) if the device is
// already updating. onComplete runs exactly once after the busy flag has
// been cleared, unless the update is cancelled first. Completion never
// fails and does not report a new firmware version.
func (f *Firmware) Start(deviceID string, onComplete func(deviceID string)) error {
	if f.inflight[deviceID].Pending() {
		return fmt.Errorf("device %s: %w", deviceID, ErrUpdateInProgress)
	}

	var h *Handle
	h = schedule(f.clock, f.duration, func() {
		if f.inflight[deviceID] != h {
			return
		}
		delete(f.inflight, deviceID)
		if onComplete != nil {
			onComplete(deviceID)
		}
	})
	f.inflight[deviceID] = h
	return nil
}

// Cancel abandons the update for deviceID. It reports whether one was pending.
func (f *Firmware) Cancel(deviceID string) bool {
	h, ok := f.inflight[deviceID]
	if !ok {
		return false
	}
	delete(f.inflight, deviceID)
	return h.Cancel()
}

// CancelAll abandons every pending update and returns how many were cancelled.
func (f *Firmware) CancelAll() int {
	n := 0
	for id, h := range f.inflight {
		if h.Cancel() {
			n++
		}
		delete(f.inflight, id)
	}
	return n
}

// IsUpdating reports whether deviceID has an update in flight.
func (f *Firmware) IsUpdating(deviceID string) bool {
	return f.inflight[deviceID].Pending()
}

// Deadline returns when the update for deviceID completes (zero when idle).
func (f *Firmware) Deadline(deviceID string) time.Time {
	h := f.inflight[deviceID]
	if !h.Pending() {
		return time.Time{}
	}
	return h.Deadline()
}

// Active returns the IDs of devices with an update in flight, sorted.
func (f *Firmware) Active() []string {
	ids := make([]string, 0, len(f.inflight))
	for id, h := range f.inflight {
		if h.Pending() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Duration returns the configured update duration.
func (f *Firmware) Duration() time.Duration {
	return f.duration
}

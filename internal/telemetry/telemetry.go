// Package telemetry turns session events into time-series points.
package telemetry

import (
	"time"

	"github.com/nerrad567/earpanel-core/internal/session"
	"github.com/nerrad567/earpanel-core/internal/status"
)

// Writer is the subset of *influxdb.Client the sink uses. Implementations
// must not block.
type Writer interface {
	WriteBatteryLevel(deviceID, slot string, level int, timestamp time.Time)
	WriteEvent(eventType, deviceID string, timestamp time.Time)
}

// Sink counts every event and records battery readings when a device is
// connected or discovered.
type Sink struct {
	w Writer
}

var _ session.EventSink = (*Sink)(nil)

// NewSink creates a sink writing to w.
func NewSink(w Writer) *Sink {
	return &Sink{w: w}
}

// HandleEvent implements session.EventSink.
func (s *Sink) HandleEvent(e session.Event) {
	ts := e.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	s.w.WriteEvent(string(e.Type), e.DeviceID, ts)

	switch e.Type {
	case session.EventDeviceConnected, session.EventDeviceDiscovered:
		readings, _ := e.Data["batteries"].([]status.Reading)
		for _, r := range readings {
			s.w.WriteBatteryLevel(e.DeviceID, string(r.Slot), r.Level, ts)
		}
	}
}

package session

import "time"

// EventType identifies what happened in a session.
type EventType string

// Event types.
const (
	EventDeviceConnected         EventType = "device.connected"
	EventDeviceDisconnected      EventType = "device.disconnected"
	EventScanStarted             EventType = "scan.started"
	EventScanCompleted           EventType = "scan.completed"
	EventDeviceDiscovered        EventType = "device.discovered"
	EventFirmwareUpdateStarted   EventType = "firmware.update_started"
	EventFirmwareUpdateCompleted EventType = "firmware.update_completed"
	EventEqualizerChanged        EventType = "equalizer.changed"
	EventControlChanged          EventType = "control.changed"
	EventFindRequested           EventType = "device.find_requested"
	EventBatteryLow              EventType = "battery.low"
	EventPreferencesChanged      EventType = "preferences.changed"
)

// AllEventTypes returns every event type.
func AllEventTypes() []EventType {
	return []EventType{
		EventDeviceConnected,
		EventDeviceDisconnected,
		EventScanStarted,
		EventScanCompleted,
		EventDeviceDiscovered,
		EventFirmwareUpdateStarted,
		EventFirmwareUpdateCompleted,
		EventEqualizerChanged,
		EventControlChanged,
		EventFindRequested,
		EventBatteryLow,
		EventPreferencesChanged,
	}
}

// Event is a notification of a session state change.
type Event struct {
	Type      EventType      `json:"type"`
	DeviceID  string         `json:"device_id,omitempty"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data,omitempty"`
}

// EventSink receives session events.
//
// HandleEvent is called from the goroutine that produced the event, after
// the controller lock has been released. It should return quickly and must
// not call back into the Controller.
type EventSink interface {
	HandleEvent(Event)
}

// SinkFunc adapts a function to an EventSink.
type SinkFunc func(Event)

// HandleEvent calls f(e).
func (f SinkFunc) HandleEvent(e Event) { f(e) }

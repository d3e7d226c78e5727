package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/earpanel-core/internal/control"
	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/equalizer"
	"github.com/nerrad567/earpanel-core/internal/operation"
	"github.com/nerrad567/earpanel-core/internal/status"
)

// Logger defines the logging interface used by the Controller.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Default operation durations.
const (
	DefaultScanDuration     = 3000 * time.Millisecond
	DefaultFirmwareDuration = 5000 * time.Millisecond
)

// Options configures a Controller. Zero values select defaults.
type Options struct {
	// Clock schedules operation completions. Defaults to operation.SystemClock.
	Clock operation.Clock

	ScanDuration     time.Duration
	FirmwareDuration time.Duration

	// Discoverable devices are appended by a completed scan if not already known.
	Discoverable []device.Device

	Preferences control.Preferences

	Logger Logger
}

// Controller is the explicit session object. All methods are thread-safe.
type Controller struct {
	mu           sync.Mutex
	clock        operation.Clock
	registry     *device.Registry
	scan         *operation.Scan
	firmware     *operation.Firmware
	eq           *equalizer.State
	controls     *control.Store
	prefs        control.Preferences
	discoverable []device.Device
	pending      []Event
	closed       bool
	logger       Logger

	// dispatchMu keeps sink delivery in production order across goroutines.
	dispatchMu sync.Mutex
	sinksMu    sync.RWMutex
	sinks      []EventSink
}

// NewController creates a session around registry.
func NewController(registry *device.Registry, opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = operation.SystemClock{}
	}
	if opts.ScanDuration <= 0 {
		opts.ScanDuration = DefaultScanDuration
	}
	if opts.FirmwareDuration <= 0 {
		opts.FirmwareDuration = DefaultFirmwareDuration
	}
	if opts.Logger == nil {
		opts.Logger = noopLogger{}
	}

	c := &Controller{
		registry: registry,
		eq:       equalizer.New(),
		controls: control.NewStore(),
		prefs:    opts.Preferences,
		logger:   opts.Logger,
	}
	for i := range opts.Discoverable {
		c.discoverable = append(c.discoverable, *opts.Discoverable[i].DeepCopy())
	}

	c.clock = operation.Serialized(opts.Clock, c.runCompletion)
	c.scan = operation.NewScan(c.clock, opts.ScanDuration)
	c.firmware = operation.NewFirmware(c.clock, opts.FirmwareDuration)
	return c
}

// AddSink registers a sink for every subsequent event.
func (c *Controller) AddSink(sink EventSink) {
	c.sinksMu.Lock()
	defer c.sinksMu.Unlock()
	c.sinks = append(c.sinks, sink)
}

// Close cancels every pending operation. Later commands return ErrClosed
// and no further completion runs.
func (c *Controller) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	scanCancelled := c.scan.Cancel()
	updates := c.firmware.CancelAll()
	c.pending = nil

	c.logger.Info("session closed", "scan_cancelled", scanCancelled, "updates_cancelled", updates)
	return nil
}

// do runs fn under the controller lock and then delivers the events it queued.
func (c *Controller) do(fn func() error) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	err := fn()
	events := c.pending
	c.pending = nil

	c.dispatchMu.Lock()
	c.mu.Unlock()
	c.dispatch(events)
	c.dispatchMu.Unlock()

	return err
}

// runCompletion is the executor behind the serialized clock.
func (c *Controller) runCompletion(f func()) {
	_ = c.do(func() error {
		f()
		return nil
	})
}

// read runs fn under the controller lock without producing events.
func (c *Controller) read(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

func (c *Controller) dispatch(events []Event) {
	if len(events) == 0 {
		return
	}
	c.sinksMu.RLock()
	sinks := append([]EventSink(nil), c.sinks...)
	c.sinksMu.RUnlock()

	for _, e := range events {
		for _, s := range sinks {
			s.HandleEvent(e)
		}
	}
}

// emit queues an event. Callers hold c.mu.
func (c *Controller) emit(typ EventType, deviceID string, data map[string]any) {
	c.pending = append(c.pending, Event{
		Type:      typ,
		DeviceID:  deviceID,
		Timestamp: c.clock.Now().UTC(),
		Data:      data,
	})
}

// Devices returns every known device in insertion order.
func (c *Controller) Devices() []device.Device {
	return c.registry.ListDevices()
}

// Device returns one device. Returns device.ErrDeviceNotFound if unknown.
func (c *Controller) Device(id string) (*device.Device, error) {
	return c.registry.GetDevice(id)
}

// ActiveDevice returns the connected device, if any.
func (c *Controller) ActiveDevice() (device.Device, bool) {
	return status.ActiveDevice(c.registry.ListDevices())
}

// Connect connects id, disconnecting whichever device was active. If id is
// already connected it is disconnected instead.
func (c *Controller) Connect(id string) (device.ConnectionChange, error) {
	var change device.ConnectionChange
	err := c.do(func() error {
		var err error
		change, err = c.registry.Connect(id)
		if err != nil {
			return fmt.Errorf("connecting %s: %w", id, err)
		}

		if prev := change.Disconnected(); prev != "" {
			c.emit(EventDeviceDisconnected, prev, nil)
		}
		if change.Current == "" {
			return nil
		}

		d, err := c.registry.GetDevice(change.Current)
		if err != nil {
			return err
		}
		summary := status.Summarize(*d)
		c.emit(EventDeviceConnected, d.ID, map[string]any{
			"name":        d.Name,
			"audio_codec": d.AudioCodec,
			"batteries":   summary.Batteries,
		})

		if c.prefs.LowBatteryAlert {
			if critical := status.CriticalBatteries(*d); len(critical) > 0 {
				c.emit(EventBatteryLow, d.ID, map[string]any{
					"name":      d.Name,
					"batteries": critical,
				})
			}
		}
		return nil
	})
	return change, err
}

// Status is the panel read-out of the whole session.
type Status struct {
	Active      *status.Summary     `json:"active,omitempty"`
	DeviceCount int                 `json:"device_count"`
	Scanning    bool                `json:"scanning"`
	Updating    []string            `json:"updating"`
	Equalizer   equalizer.Snapshot  `json:"equalizer"`
	Preferences control.Preferences `json:"preferences"`
}

// Status returns a consistent snapshot of the session.
func (c *Controller) Status() Status {
	var st Status
	c.read(func() {
		devices := c.registry.ListDevices()
		if d, ok := status.ActiveDevice(devices); ok {
			summary := status.Summarize(d)
			st.Active = &summary
		}
		st.DeviceCount = len(devices)
		st.Scanning = c.scan.IsScanning()
		st.Updating = c.firmware.Active()
		st.Equalizer = c.eq.Snapshot()
		st.Preferences = c.prefs
	})
	return st
}

package device

import (
	"fmt"
	"sync"
)

// Logger defines the logging interface used by the Registry.
// This allows different logging implementations to be used.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry holds the known devices in insertion order and enforces the
// single-active-connection invariant.
//
// All public methods are thread-safe.
type Registry struct {
	mu      sync.RWMutex
	devices []*Device      // insertion order
	byID    map[string]int // index into devices
	logger  Logger
}

// ConnectionChange describes the effect of a Connect call.
// Empty IDs mean no device.
type ConnectionChange struct {
	Previous string `json:"previous,omitempty"` // active device before the call
	Current  string `json:"current,omitempty"`  // active device after the call
}

// Disconnected reports whether a device lost its connection.
func (c ConnectionChange) Disconnected() string {
	if c.Previous != "" && c.Previous != c.Current {
		return c.Previous
	}
	return ""
}

// NewRegistry creates a registry seeded with devices.
//
// Every device is validated, IDs must be unique and at most one device may
// be connected. The input slice is copied.
func NewRegistry(devices []Device) (*Registry, error) {
	r := &Registry{
		devices: make([]*Device, 0, len(devices)),
		byID:    make(map[string]int, len(devices)),
		logger:  noopLogger{},
	}

	connected := 0
	for i := range devices {
		d := devices[i].DeepCopy()
		if err := ValidateDevice(d); err != nil {
			return nil, fmt.Errorf("device %d: %w", i, err)
		}
		if _, dup := r.byID[d.ID]; dup {
			return nil, fmt.Errorf("device %s: %w", d.ID, ErrDeviceExists)
		}
		if d.IsConnected {
			connected++
		}
		r.byID[d.ID] = len(r.devices)
		r.devices = append(r.devices, d)
	}

	if connected > 1 {
		return nil, ErrMultipleConnected
	}

	return r, nil
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// ListDevices returns every device in insertion order.
// The returned devices are deep copies; callers can safely modify them.
func (r *Registry) ListDevices() []Device {
	r.mu.RLock()
	defer r.mu.RUnlock()

	devices := make([]Device, len(r.devices))
	for i, d := range r.devices {
		devices[i] = *d.DeepCopy()
	}
	return devices
}

// GetDevice retrieves a device by ID.
// Returns ErrDeviceNotFound if the device does not exist.
// The returned device is a deep copy; callers can safely modify it.
func (r *Registry) GetDevice(id string) (*Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	idx, ok := r.byID[id]
	if !ok {
		return nil, ErrDeviceNotFound
	}
	return r.devices[idx].DeepCopy(), nil
}

// Connect makes id the active device.
//
// If id is already connected it is disconnected instead (toggle off).
// Otherwise id is connected and every other device disconnected in a
// single update, so no reader ever observes two connected devices.
// Returns ErrDeviceNotFound for unknown IDs, leaving the registry unchanged.
func (r *Registry) Connect(id string) (ConnectionChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.byID[id]
	if !ok {
		return ConnectionChange{}, ErrDeviceNotFound
	}

	change := ConnectionChange{Previous: r.activeIDLocked()}

	if r.devices[idx].IsConnected {
		r.devices[idx].IsConnected = false
		r.logger.Info("device disconnected", "id", id)
		return change, nil
	}

	for i, d := range r.devices {
		d.IsConnected = i == idx
	}
	change.Current = id

	r.logger.Info("device connected", "id", id, "previous", change.Previous)
	return change, nil
}

// Append adds a newly discovered device at the end of the list.
//
// The device is validated and stored disconnected. Returns ErrDeviceExists
// if the ID is already known.
func (r *Registry) Append(d Device) error {
	cpy := d.DeepCopy()
	cpy.IsConnected = false
	if err := ValidateDevice(cpy); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, dup := r.byID[cpy.ID]; dup {
		return fmt.Errorf("device %s: %w", cpy.ID, ErrDeviceExists)
	}
	r.byID[cpy.ID] = len(r.devices)
	r.devices = append(r.devices, cpy)

	r.logger.Info("device added", "id", cpy.ID, "name", cpy.Name)
	return nil
}

// Has reports whether id is a known device.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// ActiveID returns the ID of the connected device, or "" if none.
func (r *Registry) ActiveID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.activeIDLocked()
}

func (r *Registry) activeIDLocked() string {
	for _, d := range r.devices {
		if d.IsConnected {
			return d.ID
		}
	}
	return ""
}

// Count returns the number of known devices.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.devices)
}

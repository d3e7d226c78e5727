package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/status"
)

// ScanStatus describes the scan operation. StartedAt and Deadline are nil
// while idle.
type ScanStatus struct {
	Scanning   bool      `json:"scanning"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	Deadline   *time.Time `json:"deadline,omitempty"`
	DurationMS int64      `json:"duration_ms"`
}

// FirmwareStatus describes the firmware operation of one device. Deadline
// is nil unless an update is pending.
type FirmwareStatus struct {
	DeviceID        string     `json:"device_id"`
	FirmwareVersion string     `json:"firmware_version"`
	Updating        bool       `json:"updating"`
	Deadline        *time.Time `json:"deadline,omitempty"`
	DurationMS      int64      `json:"duration_ms"`
}

func timeOrNil(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

// StartScan begins device discovery and returns immediately.
//
// While a scan is pending it returns operation.ErrScanInProgress and the
// pending scan keeps its original deadline. On completion the scan returns
// to idle and any catalog device not yet known is appended, in one step.
func (c *Controller) StartScan() error {
	return c.do(func() error {
		if err := c.scan.Start(c.completeScan); err != nil {
			return err
		}
		c.logger.Info("scan started", "duration", c.scan.Duration())
		c.emit(EventScanStarted, "", map[string]any{
			"duration_ms": c.scan.Duration().Milliseconds(),
		})
		return nil
	})
}

// completeScan runs under the controller lock.
func (c *Controller) completeScan() {
	discovered := 0
	for _, d := range c.discoverable {
		if c.registry.Has(d.ID) {
			continue
		}
		if err := c.registry.Append(d); err != nil {
			if !errors.Is(err, device.ErrDeviceExists) {
				c.logger.Warn("discarding discovered device", "id", d.ID, "error", err)
			}
			continue
		}
		discovered++

		summary := status.Summarize(d)
		c.emit(EventDeviceDiscovered, d.ID, map[string]any{
			"name":      d.Name,
			"type":      string(d.Type),
			"batteries": summary.Batteries,
		})
	}

	c.logger.Info("scan completed", "discovered", discovered)
	c.emit(EventScanCompleted, "", map[string]any{"discovered": discovered})
}

// CancelScan abandons a pending scan without appending anything.
// It reports whether a scan was pending.
func (c *Controller) CancelScan() bool {
	cancelled := false
	_ = c.do(func() error {
		cancelled = c.scan.Cancel()
		return nil
	})
	return cancelled
}

// IsScanning reports whether a scan is pending.
func (c *Controller) IsScanning() bool {
	var scanning bool
	c.read(func() { scanning = c.scan.IsScanning() })
	return scanning
}

// ScanStatus returns the scan read-out.
func (c *Controller) ScanStatus() ScanStatus {
	var st ScanStatus
	c.read(func() {
		st = ScanStatus{
			Scanning:   c.scan.IsScanning(),
			StartedAt:  timeOrNil(c.scan.StartedAt()),
			Deadline:   timeOrNil(c.scan.Deadline()),
			DurationMS: c.scan.Duration().Milliseconds(),
		}
	})
	return st
}

// StartFirmwareUpdate begins a simulated firmware update of id.
//
// Returns device.ErrDeviceNotFound for unknown devices and
// operation.ErrUpdateInProgress if id is already updating; the pending
// countdown is not restarted. Completion clears the busy flag only; the
// firmware version is left as it was.
func (c *Controller) StartFirmwareUpdate(id string) error {
	return c.do(func() error {
		d, err := c.registry.GetDevice(id)
		if err != nil {
			return fmt.Errorf("firmware update %s: %w", id, err)
		}
		if err := c.firmware.Start(id, c.completeFirmwareUpdate); err != nil {
			return err
		}
		c.logger.Info("firmware update started", "device_id", id, "version", d.FirmwareVersion)
		c.emit(EventFirmwareUpdateStarted, id, map[string]any{
			"firmware_version": d.FirmwareVersion,
			"duration_ms":      c.firmware.Duration().Milliseconds(),
		})
		return nil
	})
}

// completeFirmwareUpdate runs under the controller lock.
func (c *Controller) completeFirmwareUpdate(id string) {
	version := ""
	if d, err := c.registry.GetDevice(id); err == nil {
		version = d.FirmwareVersion
	}
	c.logger.Info("firmware update completed", "device_id", id)
	c.emit(EventFirmwareUpdateCompleted, id, map[string]any{
		"firmware_version": version,
	})
}

// CancelFirmwareUpdate abandons the update of id. It reports whether one was pending.
func (c *Controller) CancelFirmwareUpdate(id string) bool {
	cancelled := false
	_ = c.do(func() error {
		cancelled = c.firmware.Cancel(id)
		return nil
	})
	return cancelled
}

// IsUpdating reports whether id has a firmware update in flight.
func (c *Controller) IsUpdating(id string) bool {
	var updating bool
	c.read(func() { updating = c.firmware.IsUpdating(id) })
	return updating
}

// ActiveUpdates returns the IDs of devices with an update in flight.
func (c *Controller) ActiveUpdates() []string {
	var ids []string
	c.read(func() { ids = c.firmware.Active() })
	return ids
}

// FirmwareStatus returns the firmware read-out of id.
func (c *Controller) FirmwareStatus(id string) (FirmwareStatus, error) {
	var (
		st  FirmwareStatus
		err error
	)
	c.read(func() {
		var d *device.Device
		d, err = c.registry.GetDevice(id)
		if err != nil {
			return
		}
		st = FirmwareStatus{
			DeviceID:        id,
			FirmwareVersion: d.FirmwareVersion,
			Updating:        c.firmware.IsUpdating(id),
			Deadline:        timeOrNil(c.firmware.Deadline(id)),
			DurationMS:      c.firmware.Duration().Milliseconds(),
		}
	})
	return st, err
}

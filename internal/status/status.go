// Package status derives connection and battery read-outs from registry data.
//
// Every function here is pure: it reads the devices it is given and never
// touches session state.
package status

import "github.com/nerrad567/earpanel-core/internal/device"

// Severity classifies a battery level.
type Severity string

// Battery severities.
const (
	SeverityGood     Severity = "good"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Severity thresholds in percent.
const (
	goodAbove    = 60
	warningAbove = 30
)

// BatterySeverity classifies a battery level: above 60 is good, above 30
// is a warning, anything else is critical. Every battery read-out uses this
// one classifier.
func BatterySeverity(level int) Severity {
	switch {
	case level > goodAbove:
		return SeverityGood
	case level > warningAbove:
		return SeverityWarning
	default:
		return SeverityCritical
	}
}

// ActiveDevice returns the connected device, or false if none is connected.
func ActiveDevice(devices []device.Device) (device.Device, bool) {
	for _, d := range devices {
		if d.IsConnected {
			return d, true
		}
	}
	return device.Device{}, false
}

// Reading is one battery slot with its classification.
type Reading struct {
	Slot     device.BatterySlot `json:"slot"`
	Level    int                `json:"level"`
	Severity Severity           `json:"severity"`
}

// Summary is the connection read-out for one device.
type Summary struct {
	DeviceID        string    `json:"device_id"`
	Name            string    `json:"name"`
	Model           string    `json:"model"`
	Icon            string    `json:"icon"`
	AudioCodec      string    `json:"audio_codec"`
	FirmwareVersion string    `json:"firmware_version"`
	Connected       bool      `json:"connected"`
	Batteries       []Reading `json:"batteries"`
}

// Summarize builds the read-out for d.
func Summarize(d device.Device) Summary {
	s := Summary{
		DeviceID:        d.ID,
		Name:            d.Name,
		Model:           d.Model,
		Icon:            DeviceIcon(d.Type),
		AudioCodec:      d.AudioCodec,
		FirmwareVersion: d.FirmwareVersion,
		Connected:       d.IsConnected,
		Batteries:       []Reading{},
	}
	for _, b := range d.Batteries() {
		s.Batteries = append(s.Batteries, Reading{
			Slot:     b.Slot,
			Level:    b.Level,
			Severity: BatterySeverity(b.Level),
		})
	}
	return s
}

// LowestBattery returns the reading with the lowest level, or false if the
// device reports none. Ties go to the first slot in left, right, case order.
func LowestBattery(d device.Device) (Reading, bool) {
	batteries := d.Batteries()
	if len(batteries) == 0 {
		return Reading{}, false
	}
	lowest := batteries[0]
	for _, b := range batteries[1:] {
		if b.Level < lowest.Level {
			lowest = b
		}
	}
	return Reading{Slot: lowest.Slot, Level: lowest.Level, Severity: BatterySeverity(lowest.Level)}, true
}

// CriticalBatteries returns every reading of d classified critical.
func CriticalBatteries(d device.Device) []Reading {
	var out []Reading
	for _, r := range Summarize(d).Batteries {
		if r.Severity == SeverityCritical {
			out = append(out, r)
		}
	}
	return out
}

// DeviceIcon maps a device type to the icon name used by panels.
func DeviceIcon(t device.DeviceType) string {
	switch t {
	case device.DeviceTypeEar:
		return "headphones"
	case device.DeviceTypePhone:
		return "smartphone"
	case device.DeviceTypeCMF:
		return "speaker"
	default:
		return "bluetooth"
	}
}

package device

// DeviceType is the product family of a device.
type DeviceType string

// Device types.
const (
	DeviceTypeEar   DeviceType = "ear"
	DeviceTypePhone DeviceType = "phone"
	DeviceTypeCMF   DeviceType = "cmf"
)

// AllDeviceTypes returns every recognised device type.
func AllDeviceTypes() []DeviceType {
	return []DeviceType{DeviceTypeEar, DeviceTypePhone, DeviceTypeCMF}
}

// BatterySlot names one of the independently reported batteries.
type BatterySlot string

// Battery slots.
const (
	SlotLeft  BatterySlot = "left"
	SlotRight BatterySlot = "right"
	SlotCase  BatterySlot = "case"
)

// Device is a paired wireless audio peripheral.
type Device struct {
	// Identity
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	Type  DeviceType `json:"type"`
	Model string     `json:"model"`

	// Battery levels in percent. Nil means the slot does not exist or is not reported.
	BatteryLeft  *int `json:"battery_left,omitempty"`
	BatteryRight *int `json:"battery_right,omitempty"`
	BatteryCase  *int `json:"battery_case,omitempty"`

	IsConnected bool `json:"is_connected"`

	// Capabilities
	HasANC            bool `json:"has_anc"`
	HasTransparency   bool `json:"has_transparency"`
	HasFindMy         bool `json:"has_find_my"`
	HasDualConnection bool `json:"has_dual_connection"`

	// Metadata
	FirmwareVersion string `json:"firmware_version"`
	AudioCodec      string `json:"audio_codec"`
}

// Battery is a single reported battery level.
type Battery struct {
	Slot  BatterySlot `json:"slot"`
	Level int         `json:"level"`
}

// DeepCopy creates an independent copy of the Device.
// Battery pointers are re-allocated so the copy can be modified freely.
func (d *Device) DeepCopy() *Device {
	if d == nil {
		return nil
	}

	cpy := *d
	cpy.BatteryLeft = copyInt(d.BatteryLeft)
	cpy.BatteryRight = copyInt(d.BatteryRight)
	cpy.BatteryCase = copyInt(d.BatteryCase)
	return &cpy
}

// Batteries returns the reported battery levels in left, right, case order.
func (d *Device) Batteries() []Battery {
	var out []Battery
	for _, b := range []struct {
		slot  BatterySlot
		level *int
	}{
		{SlotLeft, d.BatteryLeft},
		{SlotRight, d.BatteryRight},
		{SlotCase, d.BatteryCase},
	} {
		if b.level != nil {
			out = append(out, Battery{Slot: b.slot, Level: *b.level})
		}
	}
	return out
}

// Level returns a pointer to an int, for building devices in code.
func Level(v int) *int {
	return &v
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

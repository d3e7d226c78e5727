package device

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed default_catalog.yaml
var defaultCatalogYAML []byte

// Catalog is the device set a session starts from.
type Catalog struct {
	// Devices are paired at startup, in display order.
	Devices []Device

	// Discoverable devices are returned by the simulated scan.
	Discoverable []Device
}

// catalogFile is the on-disk YAML layout.
type catalogFile struct {
	Devices      []catalogEntry `yaml:"devices"`
	Discoverable []catalogEntry `yaml:"discoverable"`
}

type catalogEntry struct {
	ID        string `yaml:"id"`
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	Model     string `yaml:"model"`
	Connected bool   `yaml:"connected"`
	Battery   struct {
		Left  *int `yaml:"left"`
		Right *int `yaml:"right"`
		Case  *int `yaml:"case"`
	} `yaml:"battery"`
	Capabilities struct {
		ANC            bool `yaml:"anc"`
		Transparency   bool `yaml:"transparency"`
		FindMy         bool `yaml:"find_my"`
		DualConnection bool `yaml:"dual_connection"`
	} `yaml:"capabilities"`
	FirmwareVersion string `yaml:"firmware_version"`
	AudioCodec      string `yaml:"audio_codec"`
}

func (e catalogEntry) device() Device {
	return Device{
		ID:                e.ID,
		Name:              e.Name,
		Type:              DeviceType(e.Type),
		Model:             e.Model,
		BatteryLeft:       e.Battery.Left,
		BatteryRight:      e.Battery.Right,
		BatteryCase:       e.Battery.Case,
		IsConnected:       e.Connected,
		HasANC:            e.Capabilities.ANC,
		HasTransparency:   e.Capabilities.Transparency,
		HasFindMy:         e.Capabilities.FindMy,
		HasDualConnection: e.Capabilities.DualConnection,
		FirmwareVersion:   e.FirmwareVersion,
		AudioCodec:        e.AudioCodec,
	}
}

// DefaultCatalog returns the built-in catalog.
func DefaultCatalog() (*Catalog, error) {
	return ParseCatalog(defaultCatalogYAML)
}

// LoadCatalog reads a catalog from a YAML file.
func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
//
// Entries without an ID get a generated one. Discoverable entries are
// always stored disconnected. IDs must be unique across both lists so a
// repeated scan never adds the same device twice.
func ParseCatalog(data []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	cat := &Catalog{
		Devices:      make([]Device, 0, len(file.Devices)),
		Discoverable: make([]Device, 0, len(file.Discoverable)),
	}
	seen := make(map[string]struct{})
	connected := 0

	add := func(entry catalogEntry, discoverable bool) (Device, error) {
		d := entry.device()
		if d.ID == "" {
			d.ID = GenerateID()
		}
		if discoverable {
			d.IsConnected = false
		}
		if err := ValidateDevice(&d); err != nil {
			return Device{}, fmt.Errorf("catalog entry %q: %w", entry.Name, err)
		}
		if _, dup := seen[d.ID]; dup {
			return Device{}, fmt.Errorf("catalog entry %q: %w", d.ID, ErrDeviceExists)
		}
		seen[d.ID] = struct{}{}
		return d, nil
	}

	for _, entry := range file.Devices {
		d, err := add(entry, false)
		if err != nil {
			return nil, err
		}
		if d.IsConnected {
			connected++
		}
		cat.Devices = append(cat.Devices, d)
	}
	if connected > 1 {
		return nil, ErrMultipleConnected
	}

	for _, entry := range file.Discoverable {
		d, err := add(entry, true)
		if err != nil {
			return nil, err
		}
		cat.Discoverable = append(cat.Discoverable, d)
	}

	return cat, nil
}

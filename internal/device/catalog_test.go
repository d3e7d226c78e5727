package device

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultCatalog(t *testing.T) {
	cat, err := DefaultCatalog()
	if err != nil {
		t.Fatalf("DefaultCatalog() error = %v", err)
	}

	if len(cat.Devices) != 2 {
		t.Fatalf("len(Devices) = %d, want 2", len(cat.Devices))
	}

	ear := cat.Devices[0]
	if ear.ID != "1" || ear.Type != DeviceTypeEar || !ear.IsConnected {
		t.Errorf("first device = %+v", ear)
	}
	if *ear.BatteryLeft != 85 || *ear.BatteryRight != 82 || *ear.BatteryCase != 67 {
		t.Errorf("ear batteries = %v", ear.Batteries())
	}
	if !ear.HasANC || !ear.HasTransparency || !ear.HasFindMy || !ear.HasDualConnection {
		t.Error("ear should have every capability")
	}
	if ear.FirmwareVersion != "1.2.4" || ear.AudioCodec != "LHDC" {
		t.Errorf("ear metadata = %s/%s", ear.FirmwareVersion, ear.AudioCodec)
	}

	phone := cat.Devices[1]
	if phone.IsConnected || phone.HasANC || phone.BatteryRight != nil || *phone.BatteryLeft != 78 {
		t.Errorf("phone = %+v", phone)
	}

	if len(cat.Discoverable) == 0 {
		t.Fatal("default catalog should include a discoverable device")
	}
	for _, d := range cat.Discoverable {
		if d.IsConnected {
			t.Errorf("discoverable %s is connected", d.ID)
		}
	}

	if _, err := NewRegistry(cat.Devices); err != nil {
		t.Errorf("NewRegistry(default) error = %v", err)
	}
}

func TestParseCatalog_GeneratesMissingIDs(t *testing.T) {
	cat, err := ParseCatalog([]byte(`
discoverable:
  - name: "Speaker"
    type: cmf
    connected: true
`))
	if err != nil {
		t.Fatalf("ParseCatalog() error = %v", err)
	}
	if len(cat.Discoverable) != 1 {
		t.Fatalf("len(Discoverable) = %d", len(cat.Discoverable))
	}
	d := cat.Discoverable[0]
	if d.ID == "" {
		t.Error("missing ID was not generated")
	}
	if d.IsConnected {
		t.Error("discoverable device must be stored disconnected")
	}
}

func TestParseCatalog_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr error
	}{
		{
			name: "duplicate across lists",
			yaml: `
devices:
  - {id: "1", name: "A", type: ear}
discoverable:
  - {id: "1", name: "B", type: ear}
`,
			wantErr: ErrDeviceExists,
		},
		{
			name: "two connected",
			yaml: `
devices:
  - {id: "1", name: "A", type: ear, connected: true}
  - {id: "2", name: "B", type: ear, connected: true}
`,
			wantErr: ErrMultipleConnected,
		},
		{
			name: "bad battery",
			yaml: `
devices:
  - {id: "1", name: "A", type: ear, battery: {left: -5}}
`,
			wantErr: ErrInvalidBattery,
		},
		{
			name:    "bad type",
			yaml:    `devices: [{id: "1", name: "A", type: watch}]`,
			wantErr: ErrInvalidDeviceType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseCatalog() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestParseCatalog_InvalidYAML(t *testing.T) {
	if _, err := ParseCatalog([]byte("devices: [")); err == nil {
		t.Error("ParseCatalog() expected error for invalid YAML")
	}
}

func TestLoadCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `
devices:
  - id: "bench"
    name: "Bench Buds"
    type: ear
    battery: {left: 50, right: 51}
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("LoadCatalog() error = %v", err)
	}
	if len(cat.Devices) != 1 || cat.Devices[0].ID != "bench" || *cat.Devices[0].BatteryRight != 51 {
		t.Errorf("Devices = %+v", cat.Devices)
	}

	if _, err := LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadCatalog(missing) expected error")
	}
}

func TestValidateName(t *testing.T) {
	long := make([]byte, maxNameLength+1)
	for i := range long {
		long[i] = 'x'
	}
	if err := ValidateName(string(long)); !errors.Is(err, ErrInvalidName) {
		t.Errorf("ValidateName(long) error = %v", err)
	}
	if err := ValidateName("  "); !errors.Is(err, ErrInvalidName) {
		t.Errorf("ValidateName(blank) error = %v", err)
	}
	if err := ValidateName("Ear (2)"); err != nil {
		t.Errorf("ValidateName(valid) error = %v", err)
	}
}

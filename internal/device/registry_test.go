package device

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"
)

func testDevices() []Device {
	return []Device{
		{ID: "a", Name: "Alpha", Type: DeviceTypeEar, BatteryLeft: Level(80), BatteryRight: Level(70), BatteryCase: Level(50)},
		{ID: "b", Name: "Bravo", Type: DeviceTypePhone, BatteryLeft: Level(40)},
		{ID: "c", Name: "Charlie", Type: DeviceTypeCMF},
	}
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r, err := NewRegistry(testDevices())
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	return r
}

func connectedIDs(devices []Device) []string {
	var ids []string
	for _, d := range devices {
		if d.IsConnected {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

func TestNewRegistry_Validation(t *testing.T) {
	tests := []struct {
		name    string
		devices []Device
		wantErr error
	}{
		{
			name:    "duplicate id",
			devices: []Device{{ID: "x", Name: "X", Type: DeviceTypeEar}, {ID: "x", Name: "Y", Type: DeviceTypeEar}},
			wantErr: ErrDeviceExists,
		},
		{
			name: "two connected",
			devices: []Device{
				{ID: "x", Name: "X", Type: DeviceTypeEar, IsConnected: true},
				{ID: "y", Name: "Y", Type: DeviceTypeEar, IsConnected: true},
			},
			wantErr: ErrMultipleConnected,
		},
		{
			name:    "invalid type",
			devices: []Device{{ID: "x", Name: "X", Type: "tablet"}},
			wantErr: ErrInvalidDeviceType,
		},
		{
			name:    "battery over 100",
			devices: []Device{{ID: "x", Name: "X", Type: DeviceTypeEar, BatteryCase: Level(101)}},
			wantErr: ErrInvalidBattery,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(tt.devices)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewRegistry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRegistry_ListDevices_InsertionOrderAndCopies(t *testing.T) {
	r := newTestRegistry(t)

	list := r.ListDevices()
	if len(list) != 3 || list[0].ID != "a" || list[1].ID != "b" || list[2].ID != "c" {
		t.Fatalf("ListDevices() order = %v", list)
	}

	*list[0].BatteryLeft = 1
	list[1].Name = "mutated"

	again := r.ListDevices()
	if *again[0].BatteryLeft != 80 || again[1].Name != "Bravo" {
		t.Error("mutating listed devices changed registry state")
	}
}

func TestRegistry_GetDevice(t *testing.T) {
	r := newTestRegistry(t)

	d, err := r.GetDevice("b")
	if err != nil {
		t.Fatalf("GetDevice() error = %v", err)
	}
	if d.Name != "Bravo" {
		t.Errorf("Name = %q, want Bravo", d.Name)
	}

	if _, err := r.GetDevice("zzz"); !errors.Is(err, ErrDeviceNotFound) {
		t.Errorf("GetDevice(unknown) error = %v, want ErrDeviceNotFound", err)
	}
}

func TestRegistry_ConnectSequence(t *testing.T) {
	r := newTestRegistry(t)

	change, err := r.Connect("a")
	if err != nil {
		t.Fatalf("Connect(a) error = %v", err)
	}
	if got := connectedIDs(r.ListDevices()); len(got) != 1 || got[0] != "a" {
		t.Fatalf("after Connect(a): connected = %v", got)
	}
	if change.Previous != "" || change.Current != "a" {
		t.Errorf("change = %+v", change)
	}

	change, _ = r.Connect("b")
	if got := connectedIDs(r.ListDevices()); len(got) != 1 || got[0] != "b" {
		t.Fatalf("after Connect(b): connected = %v", got)
	}
	if change.Previous != "a" || change.Current != "b" || change.Disconnected() != "a" {
		t.Errorf("change = %+v", change)
	}

	change, _ = r.Connect("b")
	if got := connectedIDs(r.ListDevices()); len(got) != 0 {
		t.Fatalf("after second Connect(b): connected = %v, want none", got)
	}
	if change.Previous != "b" || change.Current != "" || change.Disconnected() != "b" {
		t.Errorf("toggle change = %+v", change)
	}
	if r.ActiveID() != "" {
		t.Errorf("ActiveID() = %q, want empty", r.ActiveID())
	}
}

func TestRegistry_ConnectUnknownLeavesStateUnchanged(t *testing.T) {
	r := newTestRegistry(t)
	_, _ = r.Connect("c")

	if _, err := r.Connect("nope"); !errors.Is(err, ErrDeviceNotFound) {
		t.Fatalf("Connect(unknown) error = %v, want ErrDeviceNotFound", err)
	}
	if r.ActiveID() != "c" {
		t.Errorf("ActiveID() = %q, want c", r.ActiveID())
	}
}

func TestRegistry_AtMostOneConnected_RandomSequence(t *testing.T) {
	r := newTestRegistry(t)
	rng := rand.New(rand.NewSource(42))
	ids := []string{"a", "b", "c", "missing"}

	for i := 0; i < 2000; i++ {
		switch rng.Intn(5) {
		case 0:
			_ = r.Append(Device{ID: fmt.Sprintf("d%d", i), Name: "New", Type: DeviceTypeEar, IsConnected: true})
			ids = append(ids, fmt.Sprintf("d%d", i))
		default:
			_, _ = r.Connect(ids[rng.Intn(len(ids))])
		}

		if got := connectedIDs(r.ListDevices()); len(got) > 1 {
			t.Fatalf("step %d: %d devices connected: %v", i, len(got), got)
		}
	}
}

func TestRegistry_ConcurrentReadersNeverSeeTwoConnected(t *testing.T) {
	r := newTestRegistry(t)
	var wg sync.WaitGroup
	stop := make(chan struct{})
	violations := make(chan []string, 1)

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				if got := connectedIDs(r.ListDevices()); len(got) > 1 {
					select {
					case violations <- got:
					default:
					}
					return
				}
			}
		}()
	}

	for i := 0; i < 1000; i++ {
		_, _ = r.Connect([]string{"a", "b", "c"}[i%3])
	}
	close(stop)
	wg.Wait()

	select {
	case got := <-violations:
		t.Fatalf("reader observed %v connected", got)
	default:
	}
}

func TestRegistry_Append(t *testing.T) {
	r := newTestRegistry(t)

	err := r.Append(Device{ID: "d", Name: "Delta", Type: DeviceTypeEar, IsConnected: true})
	if err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	if r.Count() != 4 || !r.Has("d") {
		t.Fatalf("Count() = %d, Has(d) = %v", r.Count(), r.Has("d"))
	}
	d, _ := r.GetDevice("d")
	if d.IsConnected {
		t.Error("appended device should be disconnected")
	}
	if list := r.ListDevices(); list[3].ID != "d" {
		t.Error("appended device should be last")
	}

	if err := r.Append(Device{ID: "a", Name: "Dup", Type: DeviceTypeEar}); !errors.Is(err, ErrDeviceExists) {
		t.Errorf("Append(dup) error = %v, want ErrDeviceExists", err)
	}
	if err := r.Append(Device{ID: "e", Name: "", Type: DeviceTypeEar}); !errors.Is(err, ErrInvalidName) {
		t.Errorf("Append(no name) error = %v, want ErrInvalidName", err)
	}
}

func TestDevice_Batteries(t *testing.T) {
	d := Device{BatteryLeft: Level(10), BatteryCase: Level(90)}

	got := d.Batteries()
	if len(got) != 2 || got[0] != (Battery{SlotLeft, 10}) || got[1] != (Battery{SlotCase, 90}) {
		t.Errorf("Batteries() = %v", got)
	}
	if len((&Device{}).Batteries()) != 0 {
		t.Error("device without levels should report no batteries")
	}
}

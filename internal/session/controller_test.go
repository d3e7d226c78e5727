package session

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/earpanel-core/internal/control"
	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/equalizer"
	"github.com/nerrad567/earpanel-core/internal/operation"
)

// recorder is an EventSink that keeps every event.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) HandleEvent(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

func (r *recorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]EventType, len(r.events))
	for i, e := range r.events {
		out[i] = e.Type
	}
	return out
}

func (r *recorder) count(typ EventType) int {
	n := 0
	for _, t := range r.types() {
		if t == typ {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

type fixture struct {
	ctrl  *Controller
	clock *operation.ManualClock
	rec   *recorder
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	registry, err := device.NewRegistry([]device.Device{
		{
			ID: "1", Name: "Nothing Ear (2)", Type: device.DeviceTypeEar,
			BatteryLeft: device.Level(85), BatteryRight: device.Level(82), BatteryCase: device.Level(67),
			IsConnected: true, HasANC: true, HasTransparency: true, HasFindMy: true, HasDualConnection: true,
			FirmwareVersion: "1.2.4", AudioCodec: "LHDC",
		},
		{
			ID: "2", Name: "Nothing Phone (2)", Type: device.DeviceTypePhone,
			BatteryLeft: device.Level(78), FirmwareVersion: "2.5.1", AudioCodec: "AAC",
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}

	clock := operation.NewManualClock(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	ctrl := NewController(registry, Options{
		Clock:            clock,
		ScanDuration:     3 * time.Second,
		FirmwareDuration: 5 * time.Second,
		Discoverable: []device.Device{
			{ID: "3", Name: "CMF Buds Pro", Type: device.DeviceTypeCMF, BatteryLeft: device.Level(24), HasANC: true},
		},
		Preferences: control.Preferences{LowBatteryAlert: true},
	})
	rec := &recorder{}
	ctrl.AddSink(rec)
	t.Cleanup(func() { _ = ctrl.Close() })

	return fixture{ctrl: ctrl, clock: clock, rec: rec}
}

func TestController_ConnectSwitchAndToggle(t *testing.T) {
	f := newFixture(t)

	change, err := f.ctrl.Connect("2")
	if err != nil {
		t.Fatalf("Connect(2) error = %v", err)
	}
	if change.Previous != "1" || change.Current != "2" {
		t.Errorf("change = %+v", change)
	}
	if got := f.rec.types(); len(got) != 2 || got[0] != EventDeviceDisconnected || got[1] != EventDeviceConnected {
		t.Errorf("events = %v", got)
	}
	if d, ok := f.ctrl.ActiveDevice(); !ok || d.ID != "2" {
		t.Errorf("ActiveDevice() = %v, %v", d.ID, ok)
	}

	f.rec.reset()
	if _, err := f.ctrl.Connect("2"); err != nil {
		t.Fatalf("toggle Connect(2) error = %v", err)
	}
	if _, ok := f.ctrl.ActiveDevice(); ok {
		t.Error("device still active after toggle")
	}
	if got := f.rec.types(); len(got) != 1 || got[0] != EventDeviceDisconnected {
		t.Errorf("toggle events = %v", got)
	}
}

func TestController_ConnectUnknown(t *testing.T) {
	f := newFixture(t)

	_, err := f.ctrl.Connect("99")
	if !errors.Is(err, device.ErrDeviceNotFound) {
		t.Fatalf("Connect(99) error = %v, want ErrDeviceNotFound", err)
	}
	if d, _ := f.ctrl.ActiveDevice(); d.ID != "1" {
		t.Errorf("active device changed to %q", d.ID)
	}
	if len(f.rec.types()) != 0 {
		t.Errorf("failed command emitted %v", f.rec.types())
	}
}

func TestController_ScanAppendsDiscoveredDevicesOnce(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.StartScan(); err != nil {
		t.Fatalf("StartScan() error = %v", err)
	}
	if !f.ctrl.IsScanning() {
		t.Fatal("IsScanning() = false after StartScan")
	}

	f.clock.Advance(time.Second)
	if err := f.ctrl.StartScan(); !errors.Is(err, operation.ErrScanInProgress) {
		t.Fatalf("second StartScan() error = %v, want ErrScanInProgress", err)
	}
	if st := f.ctrl.ScanStatus(); st.Deadline == nil || st.StartedAt == nil || !st.Deadline.Equal(st.StartedAt.Add(3*time.Second)) {
		t.Errorf("scan deadline moved: %+v", st)
	}
	if len(f.ctrl.Devices()) != 2 {
		t.Fatal("devices appended before completion")
	}

	f.clock.Advance(2 * time.Second)
	if f.ctrl.IsScanning() {
		t.Error("still scanning after the original deadline")
	}
	devices := f.ctrl.Devices()
	if len(devices) != 3 || devices[2].ID != "3" || devices[2].IsConnected {
		t.Fatalf("devices after scan = %+v", devices)
	}
	if f.rec.count(EventScanCompleted) != 1 || f.rec.count(EventDeviceDiscovered) != 1 || f.rec.count(EventScanStarted) != 1 {
		t.Errorf("events = %v", f.rec.types())
	}

	// A second scan finds nothing new.
	_ = f.ctrl.StartScan()
	f.clock.Advance(3 * time.Second)
	if len(f.ctrl.Devices()) != 3 {
		t.Errorf("second scan duplicated devices: %d", len(f.ctrl.Devices()))
	}
	if f.rec.count(EventDeviceDiscovered) != 1 {
		t.Errorf("discovered events = %d, want 1", f.rec.count(EventDeviceDiscovered))
	}
}

func TestController_ScanFlagAndDevicesChangeTogether(t *testing.T) {
	f := newFixture(t)
	_ = f.ctrl.StartScan()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	torn := make(chan Status, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			st := f.ctrl.Status()
			// Idle with only the seed devices would mean the flag flipped first.
			if !st.Scanning && st.DeviceCount == 2 {
				select {
				case torn <- st:
				default:
				}
				return
			}
		}
	}()

	f.clock.Advance(3 * time.Second)
	close(stop)
	wg.Wait()

	select {
	case st := <-torn:
		t.Fatalf("observed torn scan state: %+v", st)
	default:
	}
}

func TestController_CancelScan(t *testing.T) {
	f := newFixture(t)
	_ = f.ctrl.StartScan()

	if !f.ctrl.CancelScan() {
		t.Fatal("CancelScan() = false")
	}
	f.clock.Advance(time.Minute)

	if len(f.ctrl.Devices()) != 2 || f.rec.count(EventScanCompleted) != 0 {
		t.Error("cancelled scan completed")
	}
}

func TestController_FirmwareUpdate(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.StartFirmwareUpdate("1"); err != nil {
		t.Fatalf("StartFirmwareUpdate() error = %v", err)
	}
	f.clock.Advance(4 * time.Second)

	err := f.ctrl.StartFirmwareUpdate("1")
	if !errors.Is(err, operation.ErrUpdateInProgress) || !errors.Is(err, operation.ErrBusy) {
		t.Fatalf("second StartFirmwareUpdate() error = %v, want busy", err)
	}
	if err := f.ctrl.StartFirmwareUpdate("2"); err != nil {
		t.Fatalf("StartFirmwareUpdate(2) error = %v", err)
	}
	if got := f.ctrl.ActiveUpdates(); len(got) != 2 {
		t.Errorf("ActiveUpdates() = %v", got)
	}

	f.clock.Advance(time.Second)
	if f.ctrl.IsUpdating("1") {
		t.Error("device 1 still updating at its original deadline")
	}
	if !f.ctrl.IsUpdating("2") {
		t.Error("device 2 finished early")
	}

	st, err := f.ctrl.FirmwareStatus("1")
	if err != nil {
		t.Fatalf("FirmwareStatus() error = %v", err)
	}
	if st.FirmwareVersion != "1.2.4" || st.Updating {
		t.Errorf("FirmwareStatus(1) = %+v, want unchanged version and idle", st)
	}

	f.clock.Advance(4 * time.Second)
	if f.rec.count(EventFirmwareUpdateCompleted) != 2 {
		t.Errorf("completed events = %d, want 2", f.rec.count(EventFirmwareUpdateCompleted))
	}
}

func TestController_FirmwareUpdateUnknownDevice(t *testing.T) {
	f := newFixture(t)

	if err := f.ctrl.StartFirmwareUpdate("nope"); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("error = %v, want ErrDeviceNotFound", err)
	}
	if _, err := f.ctrl.FirmwareStatus("nope"); !errors.Is(err, device.ErrDeviceNotFound) {
		t.Errorf("FirmwareStatus error = %v, want ErrDeviceNotFound", err)
	}
}

func TestController_CancelFirmwareUpdate(t *testing.T) {
	f := newFixture(t)
	_ = f.ctrl.StartFirmwareUpdate("2")

	if !f.ctrl.CancelFirmwareUpdate("2") {
		t.Fatal("CancelFirmwareUpdate() = false")
	}
	f.clock.Advance(time.Minute)
	if f.rec.count(EventFirmwareUpdateCompleted) != 0 {
		t.Error("cancelled update completed")
	}
}

func TestController_Equalizer(t *testing.T) {
	f := newFixture(t)

	if f.ctrl.EqualizerLabel() != "balanced" {
		t.Errorf("initial label = %q", f.ctrl.EqualizerLabel())
	}

	if err := f.ctrl.SetPreset("rock"); err != nil {
		t.Fatalf("SetPreset() error = %v", err)
	}
	if _, err := f.ctrl.SetBand(3, 0); err != nil {
		t.Fatalf("SetBand() error = %v", err)
	}
	if f.ctrl.EqualizerLabel() != equalizer.Custom {
		t.Errorf("label = %q, want custom", f.ctrl.EqualizerLabel())
	}

	gain, _ := f.ctrl.SetBand(0, 99)
	if gain != 12 || f.ctrl.EqualizerBands()[0] != 12 {
		t.Errorf("SetBand(0, 99) = %d", gain)
	}

	if _, err := f.ctrl.SetBand(10, 0); !errors.Is(err, equalizer.ErrBandIndexOutOfRange) {
		t.Errorf("SetBand(10) error = %v", err)
	}
	if err := f.ctrl.SetPreset("nope"); !errors.Is(err, equalizer.ErrPresetNotFound) {
		t.Errorf("SetPreset(nope) error = %v", err)
	}

	_ = f.ctrl.ResetEqualizer()
	if f.ctrl.Equalizer().Label != "balanced" {
		t.Errorf("label after reset = %q", f.ctrl.Equalizer().Label)
	}
	if got := f.rec.count(EventEqualizerChanged); got != 4 {
		t.Errorf("equalizer events = %d, want 4", got)
	}
}

func TestController_ControlsRequireActiveDevice(t *testing.T) {
	f := newFixture(t)
	_, _ = f.ctrl.Connect("1") // toggle off

	if _, _, err := f.ctrl.Controls(); !errors.Is(err, ErrNoActiveDevice) {
		t.Errorf("Controls() error = %v", err)
	}
	if _, err := f.ctrl.SetVolume(10); !errors.Is(err, ErrNoActiveDevice) {
		t.Errorf("SetVolume() error = %v", err)
	}
	if _, err := f.ctrl.FindDevice(); !errors.Is(err, ErrNoActiveDevice) {
		t.Errorf("FindDevice() error = %v", err)
	}
}

func TestController_Controls(t *testing.T) {
	f := newFixture(t)

	d, s, err := f.ctrl.Controls()
	if err != nil {
		t.Fatalf("Controls() error = %v", err)
	}
	if d.ID != "1" || s.NoiseMode != control.NoiseANC || s.Volume != 75 {
		t.Errorf("Controls() = %s %+v", d.ID, s)
	}

	s, err = f.ctrl.SetNoiseMode("transparency")
	if err != nil || s.NoiseMode != control.NoiseTransparency {
		t.Errorf("SetNoiseMode() = %+v, %v", s, err)
	}
	if _, err := f.ctrl.SetNoiseMode("boost"); !errors.Is(err, control.ErrInvalidNoiseMode) {
		t.Errorf("SetNoiseMode(boost) error = %v", err)
	}

	s, _ = f.ctrl.SetVolume(140)
	if s.Volume != 100 {
		t.Errorf("volume = %d, want 100", s.Volume)
	}

	s, err = f.ctrl.SetEnhancement("bass_boost", true)
	if err != nil || !s.Enhancements[control.BassBoost] {
		t.Errorf("SetEnhancement() = %+v, %v", s, err)
	}

	id, err := f.ctrl.FindDevice()
	if err != nil || id != "1" {
		t.Errorf("FindDevice() = %q, %v", id, err)
	}

	// The phone has no ANC or find-my.
	_, _ = f.ctrl.Connect("2")
	if _, err := f.ctrl.SetNoiseMode("anc"); !errors.Is(err, control.ErrUnsupported) {
		t.Errorf("SetNoiseMode(anc) on phone error = %v", err)
	}
	if _, err := f.ctrl.FindDevice(); !errors.Is(err, control.ErrUnsupported) {
		t.Errorf("FindDevice() on phone error = %v", err)
	}

	if got := f.rec.count(EventControlChanged); got != 3 {
		t.Errorf("control events = %d, want 3", got)
	}
	if got := f.rec.count(EventFindRequested); got != 1 {
		t.Errorf("find events = %d, want 1", got)
	}
}

func TestController_LowBatteryNotice(t *testing.T) {
	f := newFixture(t)
	_ = f.ctrl.StartScan()
	f.clock.Advance(3 * time.Second)
	f.rec.reset()

	// Device 3 has a 24% left bud.
	if _, err := f.ctrl.Connect("3"); err != nil {
		t.Fatalf("Connect(3) error = %v", err)
	}
	if f.rec.count(EventBatteryLow) != 1 {
		t.Fatalf("events = %v, want one battery.low", f.rec.types())
	}

	off := false
	_, _ = f.ctrl.UpdatePreferences(control.PreferencesPatch{LowBatteryAlert: &off})
	f.rec.reset()
	_, _ = f.ctrl.Connect("2")
	_, _ = f.ctrl.Connect("3")
	if f.rec.count(EventBatteryLow) != 0 {
		t.Error("battery.low emitted with alerts disabled")
	}
}

func TestController_Preferences(t *testing.T) {
	f := newFixture(t)

	on := true
	p, err := f.ctrl.UpdatePreferences(control.PreferencesPatch{AutoUpdates: &on})
	if err != nil || !p.AutoUpdates {
		t.Fatalf("UpdatePreferences() = %+v, %v", p, err)
	}
	if !f.ctrl.Preferences().AutoUpdates {
		t.Error("preference not stored")
	}

	_, _ = f.ctrl.UpdatePreferences(control.PreferencesPatch{})
	if got := f.rec.count(EventPreferencesChanged); got != 1 {
		t.Errorf("preferences events = %d, want 1", got)
	}
}

func TestController_Status(t *testing.T) {
	f := newFixture(t)
	_ = f.ctrl.StartFirmwareUpdate("2")

	st := f.ctrl.Status()
	if st.Active == nil || st.Active.DeviceID != "1" || st.Active.Icon != "headphones" {
		t.Fatalf("Status().Active = %+v", st.Active)
	}
	if st.DeviceCount != 2 || st.Scanning || len(st.Updating) != 1 || st.Equalizer.Label != "balanced" {
		t.Errorf("Status() = %+v", st)
	}
}

func TestController_CloseCancelsPending(t *testing.T) {
	f := newFixture(t)
	_ = f.ctrl.StartScan()
	_ = f.ctrl.StartFirmwareUpdate("1")
	f.rec.reset()

	if err := f.ctrl.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	f.clock.Advance(time.Minute)

	if len(f.rec.types()) != 0 {
		t.Errorf("events after Close: %v", f.rec.types())
	}
	if len(f.ctrl.Devices()) != 2 {
		t.Error("scan completed after Close")
	}
	if _, err := f.ctrl.Connect("2"); !errors.Is(err, ErrClosed) {
		t.Errorf("Connect() after Close error = %v, want ErrClosed", err)
	}
}

func TestController_EventTimestampsFollowClock(t *testing.T) {
	f := newFixture(t)
	f.clock.Advance(90 * time.Second)

	_ = f.ctrl.ResetEqualizer()

	f.rec.mu.Lock()
	defer f.rec.mu.Unlock()
	want := time.Date(2026, 1, 1, 0, 1, 30, 0, time.UTC)
	if len(f.rec.events) != 1 || !f.rec.events[0].Timestamp.Equal(want) {
		t.Errorf("events = %+v, want timestamp %v", f.rec.events, want)
	}
}

func TestSinkFunc(t *testing.T) {
	var got EventType
	SinkFunc(func(e Event) { got = e.Type }).HandleEvent(Event{Type: EventScanStarted})
	if got != EventScanStarted {
		t.Errorf("got %q", got)
	}
	if len(AllEventTypes()) != 12 {
		t.Errorf("AllEventTypes() = %d types", len(AllEventTypes()))
	}
}

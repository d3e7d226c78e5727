package bus

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/earpanel-core/internal/operation"
	"github.com/nerrad567/earpanel-core/internal/session"
)

type message struct {
	topic    string
	payload  []byte
	retained bool
}

// fakeTransport records publishes and keeps subscribed handlers.
type fakeTransport struct {
	mu       sync.Mutex
	messages []message
	handlers map[string]mqtt.MessageHandler
	failPub  error
}

func (f *fakeTransport) Publish(topic string, payload []byte, _ byte, retained bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failPub != nil {
		return f.failPub
	}
	f.messages = append(f.messages, message{topic: topic, payload: payload, retained: retained})
	return nil
}

func (f *fakeTransport) Subscribe(topic string, _ byte, handler mqtt.MessageHandler) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.handlers == nil {
		f.handlers = make(map[string]mqtt.MessageHandler)
	}
	f.handlers[topic] = handler
	return nil
}

func (f *fakeTransport) snapshot() []message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]message(nil), f.messages...)
}

func newController(t *testing.T) (*session.Controller, *operation.ManualClock) {
	t.Helper()
	registry, err := device.NewRegistry([]device.Device{
		{ID: "1", Name: "Nothing Ear (2)", Type: device.DeviceTypeEar, BatteryLeft: device.Level(85),
			HasANC: true, HasTransparency: true, HasFindMy: true, FirmwareVersion: "1.2.4", AudioCodec: "LHDC"},
		{ID: "2", Name: "Nothing Phone (2)", Type: device.DeviceTypePhone, BatteryLeft: device.Level(78),
			FirmwareVersion: "2.5.1", AudioCodec: "AAC"},
	})
	if err != nil {
		t.Fatalf("NewRegistry() error = %v", err)
	}
	clock := operation.NewManualClock(time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	ctrl := session.NewController(registry, session.Options{Clock: clock})
	t.Cleanup(func() { ctrl.Close() }) //nolint:errcheck // Test cleanup
	return ctrl, clock
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPublisherPublishesEventsAndState(t *testing.T) {
	ctrl, _ := newController(t)
	transport := &fakeTransport{}
	pub := NewPublisher(transport, ctrl, 1, nil)
	ctrl.AddSink(pub)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go pub.Run(ctx)

	if _, err := ctrl.Connect("1"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// initial state, connected event, state after connect
	waitFor(t, func() bool { return len(transport.snapshot()) >= 3 })

	msgs := transport.snapshot()
	if msgs[0].topic != "earpanel/state/active" || !msgs[0].retained {
		t.Errorf("first message = %s (retained %v), want retained state", msgs[0].topic, msgs[0].retained)
	}
	if msgs[1].topic != "earpanel/event/device.connected" || msgs[1].retained {
		t.Errorf("second message = %s, want non-retained device.connected", msgs[1].topic)
	}

	var e session.Event
	if err := json.Unmarshal(msgs[1].payload, &e); err != nil {
		t.Fatalf("decoding event: %v", err)
	}
	if e.DeviceID != "1" {
		t.Errorf("event device_id = %q, want 1", e.DeviceID)
	}

	var st activeState
	if err := json.Unmarshal(msgs[2].payload, &st); err != nil {
		t.Fatalf("decoding state: %v", err)
	}
	if st.Active == nil || st.Active.DeviceID != "1" {
		t.Errorf("state active = %+v, want device 1", st.Active)
	}
}

func TestPublisherSkipsStateForSettings(t *testing.T) {
	transport := &fakeTransport{}
	pub := NewPublisher(transport, nil, 0, nil)

	pub.publish(session.Event{Type: session.EventEqualizerChanged})
	msgs := transport.snapshot()
	if len(msgs) != 1 || msgs[0].topic != "earpanel/event/equalizer.changed" {
		t.Errorf("messages = %+v, want one equalizer event", msgs)
	}
}

func TestPublisherDropsWhenFull(t *testing.T) {
	pub := NewPublisher(&fakeTransport{}, nil, 0, nil)
	for range defaultBufferSize + 2 {
		pub.HandleEvent(session.Event{Type: session.EventControlChanged})
	}
	if pub.Dropped() != 2 {
		t.Errorf("Dropped() = %d, want 2", pub.Dropped())
	}
}

func TestPublisherPublishErrorIsLogged(t *testing.T) {
	transport := &fakeTransport{failPub: mqtt.ErrNotConnected}
	pub := NewPublisher(transport, nil, 0, nil)
	pub.publish(session.Event{Type: session.EventScanStarted})
	if len(transport.snapshot()) != 0 {
		t.Error("nothing should be recorded when publish fails")
	}
}

func TestCommandsSubscribe(t *testing.T) {
	ctrl, _ := newController(t)
	transport := &fakeTransport{}
	if err := NewCommands(ctrl).Subscribe(transport, 1); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if _, ok := transport.handlers["earpanel/command/+"]; !ok {
		t.Error("command wildcard not subscribed")
	}
}

func TestCommandsHandle(t *testing.T) {
	ctrl, clock := newController(t)
	cmds := NewCommands(ctrl)

	if err := cmds.Handle("earpanel/command/connect", []byte(`{"device_id":"1"}`)); err != nil {
		t.Fatalf("connect error = %v", err)
	}
	if d, ok := ctrl.ActiveDevice(); !ok || d.ID != "1" {
		t.Error("device 1 should be active")
	}

	if err := cmds.Handle("earpanel/command/preset", []byte(`{"name":"bass"}`)); err != nil {
		t.Fatalf("preset error = %v", err)
	}
	if ctrl.EqualizerLabel() != "bass" {
		t.Errorf("label = %q, want bass", ctrl.EqualizerLabel())
	}

	if err := cmds.Handle("earpanel/command/band", []byte(`{"index":0,"value":99}`)); err != nil {
		t.Fatalf("band error = %v", err)
	}
	if ctrl.EqualizerBands()[0] != 12 {
		t.Errorf("band 0 = %d, want clamped 12", ctrl.EqualizerBands()[0])
	}

	if err := cmds.Handle("earpanel/command/volume", []byte(`{"volume":40}`)); err != nil {
		t.Fatalf("volume error = %v", err)
	}
	if err := cmds.Handle("earpanel/command/noise", []byte(`{"mode":"transparency"}`)); err != nil {
		t.Fatalf("noise error = %v", err)
	}
	if _, settings, err := ctrl.Controls(); err != nil || settings.Volume != 40 {
		t.Errorf("Controls() = %+v, %v; want volume 40", settings, err)
	}

	if err := cmds.Handle("earpanel/command/scan", nil); err != nil {
		t.Fatalf("scan error = %v", err)
	}
	if err := cmds.Handle("earpanel/command/scan", nil); !errors.Is(err, operation.ErrScanInProgress) {
		t.Errorf("second scan error = %v, want ErrScanInProgress", err)
	}
	clock.Advance(3 * time.Second)
	if ctrl.IsScanning() {
		t.Error("scan should have completed")
	}

	if err := cmds.Handle("earpanel/command/firmware", []byte(`{"device_id":"2"}`)); err != nil {
		t.Fatalf("firmware error = %v", err)
	}
	if !ctrl.IsUpdating("2") {
		t.Error("device 2 should be updating")
	}

	if err := cmds.Handle("earpanel/command/reset_equalizer", nil); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if err := cmds.Handle("earpanel/command/find", nil); err != nil {
		t.Fatalf("find error = %v", err)
	}
}

func TestCommandsHandleErrors(t *testing.T) {
	ctrl, _ := newController(t)
	cmds := NewCommands(ctrl)

	tests := []struct {
		name    string
		topic   string
		payload string
		want    error
	}{
		{"unknown action", "earpanel/command/explode", "", ErrUnknownCommand},
		{"foreign topic", "earpanel/event/scan.started", "", ErrUnknownCommand},
		{"unknown device", "earpanel/command/connect", `{"device_id":"99"}`, device.ErrDeviceNotFound},
		{"no active device", "earpanel/command/volume", `{"volume":10}`, session.ErrNoActiveDevice},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := cmds.Handle(tt.topic, []byte(tt.payload))
			if !errors.Is(err, tt.want) {
				t.Errorf("Handle() error = %v, want %v", err, tt.want)
			}
		})
	}

	if err := cmds.Handle("earpanel/command/connect", []byte(`{`)); err == nil {
		t.Error("malformed payload should fail")
	}
	if err := cmds.Handle("earpanel/command/explode", nil); err == nil || !strings.HasPrefix(err.Error(), "bus: unknown command") {
		t.Errorf("unknown command error = %q, want bus: prefix", err)
	}
}

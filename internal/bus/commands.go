package bus

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/earpanel-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/earpanel-core/internal/session"
)

// commandPayload carries the arguments of every command. Each action reads
// only the fields it needs.
type commandPayload struct {
	DeviceID string `json:"device_id"`
	Name     string `json:"name"`
	Mode     string `json:"mode"`
	Index    int    `json:"index"`
	Value    int    `json:"value"`
	Volume   int    `json:"volume"`
	Enabled  bool   `json:"enabled"`
}

// Commands routes earpanel/command/{action} messages to a controller.
type Commands struct {
	ctrl *session.Controller
}

// NewCommands creates a command router for ctrl.
func NewCommands(ctrl *session.Controller) *Commands {
	return &Commands{ctrl: ctrl}
}

// Subscribe registers the router on every command topic.
func (c *Commands) Subscribe(transport Transport, qos byte) error {
	if err := transport.Subscribe(mqtt.Topics{}.AllCommands(), qos, c.Handle); err != nil {
		return fmt.Errorf("subscribing to commands: %w", err)
	}
	return nil
}

// Handle executes one command message. It matches mqtt.MessageHandler.
func (c *Commands) Handle(topic string, payload []byte) error {
	action, ok := mqtt.Topics{}.CommandAction(topic)
	if !ok {
		return fmt.Errorf("%w: topic %s", ErrUnknownCommand, topic)
	}

	var p commandPayload
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &p); err != nil {
			return fmt.Errorf("decoding %s payload: %w", action, err)
		}
	}

	var err error
	switch action {
	case "connect":
		_, err = c.ctrl.Connect(p.DeviceID)
	case "scan":
		err = c.ctrl.StartScan()
	case "cancel_scan":
		c.ctrl.CancelScan()
	case "firmware":
		err = c.ctrl.StartFirmwareUpdate(p.DeviceID)
	case "preset":
		err = c.ctrl.SetPreset(p.Name)
	case "band":
		_, err = c.ctrl.SetBand(p.Index, p.Value)
	case "reset_equalizer":
		err = c.ctrl.ResetEqualizer()
	case "noise":
		_, err = c.ctrl.SetNoiseMode(p.Mode)
	case "volume":
		_, err = c.ctrl.SetVolume(p.Volume)
	case "enhancement":
		_, err = c.ctrl.SetEnhancement(p.Name, p.Enabled)
	case "find":
		_, err = c.ctrl.FindDevice()
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, action)
	}
	if err != nil {
		return fmt.Errorf("command %s: %w", action, err)
	}
	return nil
}

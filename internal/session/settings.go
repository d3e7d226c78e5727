package session

import (
	"github.com/nerrad567/earpanel-core/internal/control"
	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/equalizer"
)

// EqualizerBands returns the current band gains.
func (c *Controller) EqualizerBands() equalizer.Bands {
	var b equalizer.Bands
	c.read(func() { b = c.eq.Bands() })
	return b
}

// EqualizerLabel returns the active preset name or "custom".
func (c *Controller) EqualizerLabel() string {
	var l string
	c.read(func() { l = c.eq.Label() })
	return l
}

// Equalizer returns the full equalizer read-out.
func (c *Controller) Equalizer() equalizer.Snapshot {
	var s equalizer.Snapshot
	c.read(func() { s = c.eq.Snapshot() })
	return s
}

// SetPreset applies a named preset. Returns equalizer.ErrPresetNotFound for unknown names.
func (c *Controller) SetPreset(name string) error {
	return c.do(func() error {
		if err := c.eq.SetPreset(name); err != nil {
			return err
		}
		c.emitEqualizer()
		return nil
	})
}

// SetBand sets one band gain, clamped to the gain limits, and returns the
// stored value. Returns equalizer.ErrBandIndexOutOfRange for bad indexes.
func (c *Controller) SetBand(index, value int) (int, error) {
	var gain int
	err := c.do(func() error {
		var err error
		gain, err = c.eq.SetBand(index, value)
		if err != nil {
			return err
		}
		c.emitEqualizer()
		return nil
	})
	return gain, err
}

// ResetEqualizer applies the balanced preset.
func (c *Controller) ResetEqualizer() error {
	return c.do(func() error {
		c.eq.Reset()
		c.emitEqualizer()
		return nil
	})
}

func (c *Controller) emitEqualizer() {
	bands := c.eq.Bands()
	c.emit(EventEqualizerChanged, "", map[string]any{
		"label": c.eq.Label(),
		"bands": bands[:],
	})
}

// activeLocked returns the connected device. Callers hold c.mu.
func (c *Controller) activeLocked() (*device.Device, error) {
	id := c.registry.ActiveID()
	if id == "" {
		return nil, ErrNoActiveDevice
	}
	return c.registry.GetDevice(id)
}

// Controls returns the listening settings of the active device.
func (c *Controller) Controls() (device.Device, control.Settings, error) {
	var (
		d   *device.Device
		s   control.Settings
		err error
	)
	c.read(func() {
		d, err = c.activeLocked()
		if err != nil {
			return
		}
		s = c.controls.Get(*d)
	})
	if err != nil {
		return device.Device{}, control.Settings{}, err
	}
	return *d, s, nil
}

// updateControls applies fn to the active device's settings and emits
// control.changed on success.
func (c *Controller) updateControls(setting string, fn func(d device.Device) (control.Settings, error)) (control.Settings, error) {
	var s control.Settings
	err := c.do(func() error {
		d, err := c.activeLocked()
		if err != nil {
			return err
		}
		s, err = fn(*d)
		if err != nil {
			return err
		}
		c.emit(EventControlChanged, d.ID, map[string]any{
			"setting":  setting,
			"settings": s,
		})
		return nil
	})
	return s, err
}

// SetNoiseMode changes the noise control mode of the active device.
func (c *Controller) SetNoiseMode(mode string) (control.Settings, error) {
	m, err := control.ParseNoiseMode(mode)
	if err != nil {
		return control.Settings{}, err
	}
	return c.updateControls("noise_mode", func(d device.Device) (control.Settings, error) {
		return c.controls.SetNoiseMode(d, m)
	})
}

// SetVolume sets the volume of the active device, clamped to 0-100.
func (c *Controller) SetVolume(volume int) (control.Settings, error) {
	return c.updateControls("volume", func(d device.Device) (control.Settings, error) {
		return c.controls.SetVolume(d, volume), nil
	})
}

// SetEnhancement toggles an audio enhancement on the active device.
func (c *Controller) SetEnhancement(name string, enabled bool) (control.Settings, error) {
	e, err := control.ParseEnhancement(name)
	if err != nil {
		return control.Settings{}, err
	}
	return c.updateControls(name, func(d device.Device) (control.Settings, error) {
		return c.controls.SetEnhancement(d, e, enabled)
	})
}

// FindDevice asks the active device to play its locator chime.
// Returns control.ErrUnsupported if the device has no find-my support.
func (c *Controller) FindDevice() (string, error) {
	var id string
	err := c.do(func() error {
		d, err := c.activeLocked()
		if err != nil {
			return err
		}
		if err := control.CheckFindMy(*d); err != nil {
			return err
		}
		id = d.ID
		c.logger.Info("find my device requested", "device_id", d.ID)
		c.emit(EventFindRequested, d.ID, map[string]any{"name": d.Name})
		return nil
	})
	return id, err
}

// Preferences returns the user preferences.
func (c *Controller) Preferences() control.Preferences {
	var p control.Preferences
	c.read(func() { p = c.prefs })
	return p
}

// UpdatePreferences applies a partial update and returns the result.
// An empty patch changes nothing and emits nothing.
func (c *Controller) UpdatePreferences(patch control.PreferencesPatch) (control.Preferences, error) {
	var p control.Preferences
	err := c.do(func() error {
		if !patch.Empty() {
			c.prefs = patch.Apply(c.prefs)
			c.emit(EventPreferencesChanged, "", map[string]any{"preferences": c.prefs})
		}
		p = c.prefs
		return nil
	})
	return p, err
}

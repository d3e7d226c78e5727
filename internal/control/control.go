// Package control holds the per-device listening settings of a session:
// noise control, volume and audio enhancements, plus the panel-wide user
// preferences.
//
// Settings are created lazily from device capabilities the first time a
// device is looked at, and kept for the life of the session. Store is not
// safe for concurrent use; the session controller owns it.
package control

import (
	"fmt"
	"sort"

	"github.com/nerrad567/earpanel-core/internal/device"
)

// NoiseMode is the active noise control mode.
type NoiseMode string

// Noise control modes.
const (
	NoiseOff          NoiseMode = "off"
	NoiseANC          NoiseMode = "anc"
	NoiseTransparency NoiseMode = "transparency"
)

// Enhancement names an audio enhancement toggle.
type Enhancement string

// Audio enhancements.
const (
	BassBoost    Enhancement = "bass_boost"
	SpatialAudio Enhancement = "spatial_audio"
	VocalClarity Enhancement = "vocal_clarity"
)

// Volume limits in percent.
const (
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 75
)

// defaultEnhancements is the initial toggle state of every device.
var defaultEnhancements = map[Enhancement]bool{
	BassBoost:    false,
	SpatialAudio: true,
	VocalClarity: false,
}

// Settings is the listening state of one device.
type Settings struct {
	NoiseMode    NoiseMode            `json:"noise_mode"`
	Volume       int                  `json:"volume"`
	Enhancements map[Enhancement]bool `json:"enhancements"`
}

func (s *Settings) clone() Settings {
	cpy := *s
	cpy.Enhancements = make(map[Enhancement]bool, len(s.Enhancements))
	for k, v := range s.Enhancements {
		cpy.Enhancements[k] = v
	}
	return cpy
}

// Store keeps Settings per device ID.
type Store struct {
	settings map[string]*Settings
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{settings: make(map[string]*Settings)}
}

// DefaultSettings returns the initial settings for d: ANC when the device
// supports it, otherwise off; volume 75; spatial audio on.
func DefaultSettings(d device.Device) Settings {
	mode := NoiseOff
	if d.HasANC {
		mode = NoiseANC
	}
	s := Settings{
		NoiseMode:    mode,
		Volume:       DefaultVolume,
		Enhancements: make(map[Enhancement]bool, len(defaultEnhancements)),
	}
	for k, v := range defaultEnhancements {
		s.Enhancements[k] = v
	}
	return s
}

func (s *Store) get(d device.Device) *Settings {
	st, ok := s.settings[d.ID]
	if !ok {
		def := DefaultSettings(d)
		st = &def
		s.settings[d.ID] = st
	}
	return st
}

// Get returns a copy of the settings for d.
func (s *Store) Get(d device.Device) Settings {
	return s.get(d).clone()
}

// SetNoiseMode changes the noise control mode of d.
//
// anc needs HasANC and transparency needs HasTransparency; off is always
// allowed. A rejected change leaves the settings untouched.
func (s *Store) SetNoiseMode(d device.Device, mode NoiseMode) (Settings, error) {
	if err := CheckNoiseMode(d, mode); err != nil {
		return Settings{}, err
	}
	st := s.get(d)
	st.NoiseMode = mode
	return st.clone(), nil
}

// SetVolume sets the volume of d, clamped to [MinVolume, MaxVolume].
func (s *Store) SetVolume(d device.Device, volume int) Settings {
	st := s.get(d)
	st.Volume = ClampVolume(volume)
	return st.clone()
}

// SetEnhancement toggles an audio enhancement on d.
func (s *Store) SetEnhancement(d device.Device, name Enhancement, enabled bool) (Settings, error) {
	if _, ok := defaultEnhancements[name]; !ok {
		return Settings{}, fmt.Errorf("%q: %w", name, ErrUnknownEnhancement)
	}
	st := s.get(d)
	st.Enhancements[name] = enabled
	return st.clone(), nil
}

// ParseNoiseMode converts a mode name into a NoiseMode.
func ParseNoiseMode(name string) (NoiseMode, error) {
	switch m := NoiseMode(name); m {
	case NoiseOff, NoiseANC, NoiseTransparency:
		return m, nil
	default:
		return "", fmt.Errorf("%q: %w", name, ErrInvalidNoiseMode)
	}
}

// CheckNoiseMode reports whether d can use mode.
func CheckNoiseMode(d device.Device, mode NoiseMode) error {
	switch mode {
	case NoiseOff:
		return nil
	case NoiseANC:
		if !d.HasANC {
			return fmt.Errorf("noise cancellation on %s: %w", d.ID, ErrUnsupported)
		}
		return nil
	case NoiseTransparency:
		if !d.HasTransparency {
			return fmt.Errorf("transparency on %s: %w", d.ID, ErrUnsupported)
		}
		return nil
	default:
		return fmt.Errorf("%q: %w", mode, ErrInvalidNoiseMode)
	}
}

// CheckFindMy reports whether d supports the find-my-device chime.
func CheckFindMy(d device.Device) error {
	if !d.HasFindMy {
		return fmt.Errorf("find my device on %s: %w", d.ID, ErrUnsupported)
	}
	return nil
}

// ClampVolume limits v to [MinVolume, MaxVolume].
func ClampVolume(v int) int {
	switch {
	case v < MinVolume:
		return MinVolume
	case v > MaxVolume:
		return MaxVolume
	default:
		return v
	}
}

// Enhancements returns the enhancement names, sorted.
func Enhancements() []Enhancement {
	out := make([]Enhancement, 0, len(defaultEnhancements))
	for k := range defaultEnhancements {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseEnhancement converts a name into an Enhancement.
func ParseEnhancement(name string) (Enhancement, error) {
	e := Enhancement(name)
	if _, ok := defaultEnhancements[e]; !ok {
		return "", fmt.Errorf("%q: %w", name, ErrUnknownEnhancement)
	}
	return e, nil
}

package equalizer

import "fmt"

// State is the equalizer profile of a session.
//
// State is not safe for concurrent use; the session controller owns it.
type State struct {
	bands Bands
	label string
}

// Snapshot is a copy of the equalizer profile for read-outs.
type Snapshot struct {
	Bands       []int    `json:"bands"`
	Label       string   `json:"label"`
	Frequencies []string `json:"frequencies"`
}

// New returns a State holding the balanced preset.
func New() *State {
	s := &State{}
	s.Reset()
	return s
}

// SetPreset replaces every band with the named preset and labels the
// profile with its name. Unknown names leave the state untouched.
func (s *State) SetPreset(name string) error {
	bands, err := PresetBands(name)
	if err != nil {
		return fmt.Errorf("preset %q: %w", name, err)
	}
	s.bands = bands
	s.label = name
	return nil
}

// SetBand sets one band, clamping the value to the gain limits, and marks
// the profile custom. It returns the stored gain.
func (s *State) SetBand(index, value int) (int, error) {
	if index < 0 || index >= BandCount {
		return 0, fmt.Errorf("band %d: %w", index, ErrBandIndexOutOfRange)
	}
	gain := ClampGain(value)
	s.bands[index] = gain
	s.label = Custom
	return gain, nil
}

// Reset applies the balanced preset.
func (s *State) Reset() {
	_ = s.SetPreset(DefaultPreset)
}

// Bands returns a copy of the current gains.
func (s *State) Bands() Bands {
	return s.bands
}

// Label returns the active preset name or Custom.
func (s *State) Label() string {
	return s.label
}

// Snapshot returns a copy of the profile including frequency labels.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Bands:       append([]int(nil), s.bands[:]...),
		Label:       s.label,
		Frequencies: Frequencies(),
	}
}

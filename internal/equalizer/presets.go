package equalizer

// BandCount is the number of equalizer bands.
const BandCount = 10

// Gain limits in dB. Out-of-range values are clamped.
const (
	MinGain = -12
	MaxGain = 12
)

// Label values that are not preset names.
const (
	// Custom marks a profile that has been edited band by band.
	Custom = "custom"

	// DefaultPreset is the preset applied by New and Reset.
	DefaultPreset = "balanced"
)

// Bands is a full set of band gains in dB, lowest frequency first.
type Bands [BandCount]int

type preset struct {
	name  string
	bands Bands
}

// presets is ordered for display.
var presets = []preset{
	{name: "balanced", bands: Bands{0, 0, 0, 0, 0, 0, 0, 0, 0, 0}},
	{name: "bass", bands: Bands{4, 3, 2, 1, 0, -1, -2, -2, -2, -1}},
	{name: "vocal", bands: Bands{-2, -1, 0, 2, 4, 3, 2, 1, 0, -1}},
	{name: "treble", bands: Bands{-2, -1, 0, 1, 2, 3, 4, 5, 4, 3}},
	{name: "rock", bands: Bands{3, 2, 1, 0, -1, 0, 2, 3, 3, 2}},
	{name: "classical", bands: Bands{2, 1, 0, -1, 0, 1, 2, 3, 2, 1}},
	{name: "jazz", bands: Bands{2, 1, 0, 1, 2, 1, 0, 1, 2, 3}},
	{name: "pop", bands: Bands{1, 2, 1, 0, -1, 1, 2, 2, 1, 0}},
}

var frequencies = [BandCount]string{"60", "170", "310", "600", "1K", "3K", "6K", "12K", "14K", "16K"}

// Presets returns the preset names in display order.
func Presets() []string {
	names := make([]string, len(presets))
	for i, p := range presets {
		names[i] = p.name
	}
	return names
}

// PresetBands returns the gain vector of a named preset.
func PresetBands(name string) (Bands, error) {
	for _, p := range presets {
		if p.name == name {
			return p.bands, nil
		}
	}
	return Bands{}, ErrPresetNotFound
}

// Frequencies returns the centre frequency label (Hz) of each band.
func Frequencies() []string {
	out := make([]string, BandCount)
	copy(out, frequencies[:])
	return out
}

// ClampGain limits a gain to [MinGain, MaxGain].
func ClampGain(v int) int {
	switch {
	case v < MinGain:
		return MinGain
	case v > MaxGain:
		return MaxGain
	default:
		return v
	}
}

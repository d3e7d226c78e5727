// Package equalizer holds the 10-band equalizer state of a control session.
//
// A profile is ten integer gains in dB, each within [MinGain, MaxGain], plus
// a label. The label names a preset only while the bands are exactly that
// preset's vector and no band has been edited since the preset was applied.
// Any single-band edit switches the label to Custom, even when the edited
// bands happen to equal a preset.
//
// Usage:
//
//	eq := equalizer.New()
//	_ = eq.SetPreset("bass")
//	_ = eq.SetBand(0, 99)    // clamped to 12, label becomes "custom"
//	eq.Reset()               // back to "balanced"
package equalizer

// Package channel implements the analog conditioning pipelines feeding the
// neuron: direct current clamp, Gaussian noise, adaptive photodiode and two
// decaying synapse channels. Each scalar a channel produces is either
// re-derived every tick from a live potentiometer (auto) or held at an
// externally commanded value (manual).
package channel

import "github.com/OpenSourceNeuro/Spikeling/pkg/hal"

// Pot conditioning constants. Readings are 12-bit; values within Offset of
// the range centre map to zero, values outside map linearly with a
// per-channel divisor.
const (
	PotOffset = hal.ADCMax / 15 // symmetric dead band half-width

	ClampScale float32 = hal.ADCMax / 100.0
	NoiseScale float32 = hal.ADCMax / 25.0
	PDScale    float32 = hal.ADCMax / 50.0
	SynScale   float32 = hal.ADCMax / 50.0
)

// Source is a scalar that is either auto-derived from its live hardware
// source every tick, or held at an externally supplied value until released.
// The zero value is an auto source reading 0.
type Source struct {
	manual bool
	value  float32
}

// SetManual stores v and suspends auto derivation.
func (s *Source) SetManual(v float32) {
	s.manual = true
	s.value = v
}

// SetAuto releases the manual hold; the next tick re-derives the value from
// the live source. The stored value is left untouched until then.
func (s *Source) SetAuto() {
	s.manual = false
}

// SetManualKeep switches to manual without changing the stored value. Used
// when a command carried no parsable argument: the override still engages
// but the previous value stands.
func (s *Source) SetManualKeep() {
	s.manual = true
}

// IsAuto reports whether the value is re-derived from the live source.
func (s *Source) IsAuto() bool { return !s.manual }

// Value returns the current scalar.
func (s *Source) Value() float32 { return s.value }

// Derive stores v only while in auto mode and returns the effective value.
func (s *Source) Derive(v float32) float32 {
	if !s.manual {
		s.value = v
	}
	return s.value
}

// DeadZone maps a raw 12-bit reading to a signed scalar: readings within
// PotOffset of the range centre yield 0, readings outside map linearly,
// continuous at the band edges.
func DeadZone(raw int, scale float32) float32 {
	centred := float32(raw - hal.ADCMax/2)
	switch {
	case centred >= PotOffset:
		return (centred - PotOffset) / scale
	case centred <= -PotOffset:
		return (centred + PotOffset) / scale
	default:
		return 0
	}
}

// mapRange linearly remaps x from [inMin, inMax] to [outMin, outMax].
func mapRange(x, inMin, inMax, outMin, outMax float32) float32 {
	return (x-inMin)*(outMax-outMin)/(inMax-inMin) + outMin
}

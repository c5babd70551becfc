package channel

import (
	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
)

// Synapse calibration. The analog input spans a slightly padded native range
// before remapping into the neuron's display-voltage range; the axon offset
// compensates the sending board's DAC bias.
const (
	DefaultSyn1Decay float32 = 0.995
	DefaultSyn2Decay float32 = 0.990

	synAnalogLow  float32 = -10.0
	synAnalogHigh float32 = hal.ADCMax + 400.0
	axonOffset    float32 = -6.75
)

// Synapse accumulates current from a one-bit spike line: each high reading
// adds the gain, and every tick the current decays multiplicatively toward
// zero. It also derives a display-only membrane voltage from a second analog
// input.
type Synapse struct {
	SpikeIn hal.DigitalReader
	VmIn    hal.AnalogReader
	GainPot hal.AnalogReader

	Gain  Source
	Decay Source

	defaultDecay float32

	Current float32
	Vm      float32
}

// NewSynapse creates a synapse channel with the given default decay constant.
func NewSynapse(spikeIn hal.DigitalReader, vmIn, gainPot hal.AnalogReader, defaultDecay float32) *Synapse {
	return &Synapse{
		SpikeIn:      spikeIn,
		VmIn:         vmIn,
		GainPot:      gainPot,
		defaultDecay: defaultDecay,
	}
}

// Update integrates one tick: accumulate on a high spike line, decay
// unconditionally, and refresh the display voltage.
func (s *Synapse) Update() {
	spike := s.SpikeIn.Read()

	if s.Gain.IsAuto() {
		s.Gain.Derive(DeadZone(s.GainPot.Read(), SynScale))
	}

	if spike {
		s.Current += s.Gain.Value()
	}

	s.Current *= s.Decay.Derive(s.defaultDecay)

	raw := float32(s.VmIn.Read())
	s.Vm = mapRange(raw, synAnalogLow, synAnalogHigh, neuron.VMin, neuron.VMax) + axonOffset
}

// Package engine owns the fixed-step control loop: the time base, the single
// state aggregate every command surface writes through, per-tick channel and
// neuron updates, output mapping and telemetry emission.
package engine

import (
	"math/rand"

	"github.com/OpenSourceNeuro/Spikeling/pkg/channel"
	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
	"github.com/OpenSourceNeuro/Spikeling/pkg/stimulus"
)

// Board is the set of hardware collaborators the loop consumes. SimBoard
// implements it for the emulator and tests; a real port would back it with
// SPI converter and GPIO drivers.
type Board interface {
	ClampPot() hal.AnalogReader
	NoisePot() hal.AnalogReader
	Photodiode() hal.AnalogReader
	PDGainPot() hal.AnalogReader
	Syn1Spike() hal.DigitalReader
	Syn1Analog() hal.AnalogReader
	Syn1GainPot() hal.AnalogReader
	Syn2Spike() hal.DigitalReader
	Syn2Analog() hal.AnalogReader
	Syn2GainPot() hal.AnalogReader
	CurrentIn() hal.AnalogReader
	StimStrPot() hal.AnalogReader
	StimFreqPot() hal.AnalogReader
	Clock() hal.Clock

	LEDRed() hal.PWMWriter
	LEDGreen() hal.PWMWriter
	LEDBlue() hal.PWMWriter
	StimLight() hal.PWMWriter
	AxonDAC() hal.DACWriter
	StimDAC() hal.DACWriter
	AxonDigital() hal.PinWriter
	Buzzer() hal.PinWriter
}

var _ Board = (*hal.SimBoard)(nil)

// State is the owned aggregate of everything the loop mutates per tick.
// Command handlers write through it between ticks; nothing else holds it.
type State struct {
	Neuron     *neuron.Neuron
	Clamp      *channel.Clamp
	Noise      *channel.Noise
	Photodiode *channel.Photodiode
	Syn1       *channel.Synapse
	Syn2       *channel.Synapse
	Stim       *stimulus.Generator
	Time       *TimeBase

	LEDEnabled    bool
	BuzzerEnabled bool

	// VOut is the displayed voltage of the last completed tick: the raw
	// membrane value, or VPeak while spiking.
	VOut float32
}

// NewState wires a fresh aggregate against the board's inputs. rng seeds the
// noise channel; pass a deterministic source in tests, nil for the default.
func NewState(board Board, preset neuron.Preset, periodMicros int64, rng *rand.Rand) *State {
	return &State{
		Neuron:     neuron.New(preset),
		Clamp:      channel.NewClamp(board.ClampPot()),
		Noise:      channel.NewNoise(board.NoisePot(), rng),
		Photodiode: channel.NewPhotodiode(board.Photodiode(), board.PDGainPot()),
		Syn1: channel.NewSynapse(board.Syn1Spike(), board.Syn1Analog(),
			board.Syn1GainPot(), channel.DefaultSyn1Decay),
		Syn2: channel.NewSynapse(board.Syn2Spike(), board.Syn2Analog(),
			board.Syn2GainPot(), channel.DefaultSyn2Decay),
		Stim:          stimulus.New(board.StimStrPot(), board.StimFreqPot(), board.CurrentIn()),
		Time:          NewTimeBase(board.Clock(), periodMicros),
		LEDEnabled:    true,
		BuzzerEnabled: true,
	}
}

// TotalCurrent sums every channel's contribution for this tick.
func (s *State) TotalCurrent() float32 {
	return s.Clamp.Current.Value() +
		s.Stim.InputCurrent +
		s.Photodiode.Current +
		s.Syn1.Current +
		s.Syn2.Current +
		s.Noise.Current.Value()
}

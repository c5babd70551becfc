package channel

import "github.com/OpenSourceNeuro/Spikeling/pkg/hal"

// Photodiode defaults. Decay and recovery apply while their sources are in
// auto mode; a manual override substitutes a commanded rate.
const (
	pdWindow          = 10
	pdInvScale        = 1.0 / 0.45
	pdAmpMin  float32 = 0.0
	pdAmpMax  float32 = 1.0

	DefaultPDDecay    float32 = 0.001
	DefaultPDRecovery float32 = 0.025
)

// Photodiode converts averaged light readings into current, with a
// light-adaptation amplitude: sustained stimulation of one polarity
// compresses future gain, absence of stimulation slowly restores it.
type Photodiode struct {
	Sensor  hal.AnalogReader
	GainPot hal.AnalogReader

	Gain     Source
	Decay    Source
	Recovery Source

	window  [pdWindow]int
	idx     int
	sum     int
	Average float32

	Amp      float32 // adaptation amplitude, starts at 1.0
	Polarity float32 // sign of the gain
	Current  float32
}

// NewPhotodiode creates a photodiode channel reading the given sensor and
// gain potentiometer.
func NewPhotodiode(sensor, gainPot hal.AnalogReader) *Photodiode {
	return &Photodiode{
		Sensor:   sensor,
		GainPot:  gainPot,
		Amp:      pdAmpMax,
		Polarity: 1,
	}
}

// Update pushes one raw reading through the averaging window, re-derives the
// gain and adapts the amplitude.
func (p *Photodiode) Update() {
	v := p.Sensor.Read()
	p.sum += v - p.window[p.idx]
	p.window[p.idx] = v
	p.idx++
	if p.idx >= pdWindow {
		p.idx = 0
	}
	p.Average = float32(p.sum) / pdWindow

	if p.Gain.IsAuto() {
		p.Gain.Derive(DeadZone(p.GainPot.Read(), PDScale))
	}

	p.Polarity = 1
	if p.Gain.Value() < 0 {
		p.Polarity = -1
	}

	p.Current = p.Average * p.Gain.Value() * pdInvScale * p.Amp

	decay := p.Decay.Derive(DefaultPDDecay)
	if p.Amp > pdAmpMin {
		p.Amp -= p.Polarity * decay * p.Current
		if p.Amp < pdAmpMin {
			p.Amp = pdAmpMin
		}
	}

	recovery := p.Recovery.Derive(DefaultPDRecovery)
	if p.Amp < pdAmpMax {
		p.Amp += recovery
		if p.Amp > pdAmpMax {
			p.Amp = pdAmpMax
		}
	}
}

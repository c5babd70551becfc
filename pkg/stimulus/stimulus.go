// Package stimulus implements the duty-cycled / free-form stimulus generator
// and the gated analog current-in path it controls.
package stimulus

import (
	"github.com/OpenSourceNeuro/Spikeling/pkg/channel"
	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/chewxy/math32"
)

const (
	basePeriod = 500 // duty-cycle length at frequency 0, in ticks
	minPeriod  = 10  // floor added to every recomputed cycle

	lightScaling   float32 = 5.12 // strength % to 10-bit PWM
	currentScaling float32 = 0.9  // strength % to DAC counts
	currentInScale float32 = 0.1  // raw current-in counts to model current
	strengthMin    float32 = 5.0  // |strength| below this gates current-in off

	// Pot mappings: dead-zone-then-linear onto roughly ±100 percent.
	strengthScale float32 = float32(hal.ADCMax/2-channel.PotOffset) / 100.0
	freqScale     float32 = float32(hal.ADCMax/2-channel.PotOffset) / 100.0
)

// Generator produces the stimulus drive signal. In duty-cycled mode strength
// and frequency come from pots (or manual holds) and the output toggles on a
// phase counter; in free-form mode a single commanded value drives the
// outputs directly. The trigger latch marks the start of each cycle for
// exactly one tick.
type Generator struct {
	StrengthPot hal.AnalogReader
	FreqPot     hal.AnalogReader
	CurrentIn   hal.AnalogReader

	Strength channel.Source // percent, ±100
	Freq     channel.Source // percent, ±100
	Custom   channel.Source // manual hold active = free-form mode

	counter    int
	steps      int
	armed      bool
	fire       bool
	lastCustom bool

	// Per-tick outputs.
	State        float32 // raw stimulus state for telemetry; 0 in the OFF phase
	Trigger      bool
	LightOut     int // 10-bit PWM toward the stimulating LED
	DACOut       int // DAC counts toward the stimulus current output
	InputCurrent float32
}

// New creates a generator reading the given pots and current-in source.
// The initial cycle length corresponds to frequency 0.
func New(strengthPot, freqPot, currentIn hal.AnalogReader) *Generator {
	return &Generator{
		StrengthPot: strengthPot,
		FreqPot:     freqPot,
		CurrentIn:   currentIn,
		steps:       basePeriod + minPeriod,
	}
}

// Steps returns the current duty-cycle length in ticks.
func (g *Generator) Steps() int { return g.steps }

// Phase returns the position within the current cycle.
func (g *Generator) Phase() int { return g.counter }

// Fire requests a one-shot trigger, consumed by the next free-form tick.
func (g *Generator) Fire() { g.fire = true }

// Advance moves the generator one tick and refreshes the gated input current.
func (g *Generator) Advance() {
	custom := !g.Custom.IsAuto()
	if custom != g.lastCustom {
		// Mode switch restarts the phase; latch semantics are per-mode.
		g.counter = 0
		g.lastCustom = custom
	}

	if custom {
		g.advanceFreeForm()
	} else {
		g.advanceDuty()
	}

	g.updateInputCurrent(custom)
}

func (g *Generator) advanceDuty() {
	var str, freq float32
	if g.Strength.IsAuto() {
		str = g.Strength.Derive(channel.DeadZone(g.StrengthPot.Read(), strengthScale))
	} else {
		str = g.Strength.Value()
	}
	if g.Freq.IsAuto() {
		// Frequency pot runs inverted: high readings shorten the cycle.
		freq = g.Freq.Derive(-channel.DeadZone(g.FreqPot.Read(), freqScale))
	} else {
		freq = g.Freq.Value()
	}

	digital := 0
	if str >= 0 {
		digital = int(str * lightScaling)
	}
	analog := int(math32.Abs(str) * currentScaling)

	if g.counter < g.steps/2 {
		g.LightOut = clampInt(digital, 0, hal.PWMMax)
		g.DACOut = analog
		g.State = str
	} else {
		g.LightOut = 0
		g.DACOut = 0
		g.State = 0
	}

	g.counter++

	g.Trigger = g.armed
	g.armed = false

	if g.counter >= g.steps {
		g.counter = 0
		g.armed = true
		s := float32(basePeriod) + freq*basePeriod/100.0 + minPeriod
		g.steps = int(s + 0.5)
	}
}

func (g *Generator) advanceFreeForm() {
	g.Trigger = g.fire
	g.fire = false

	v := g.Custom.Value()
	digital := 0
	if v > 0 {
		digital = int(v * lightScaling)
	}
	g.LightOut = clampInt(digital, 0, hal.PWMMax)
	g.DACOut = int(math32.Abs(v) * currentScaling)
	g.State = v
}

// updateInputCurrent reads the stimulus's own analog current-in path and
// gates it on the generator state, so a stale reading cannot leak current
// during the OFF half of the cycle.
func (g *Generator) updateInputCurrent(custom bool) {
	raw := float32(g.CurrentIn.Read())

	if custom {
		v := g.Custom.Value()
		switch {
		case v > 0:
			g.InputCurrent = raw * currentInScale
		case v < 0:
			g.InputCurrent = -raw * currentInScale
		default:
			g.InputCurrent = 0
		}
		return
	}

	str := g.Strength.Value()
	switch {
	case str > strengthMin:
		g.InputCurrent = raw * currentInScale
	case str < -strengthMin:
		g.InputCurrent = -raw * currentInScale
	default:
		g.InputCurrent = 0
	}
	if g.State == 0 {
		g.InputCurrent = 0
	}
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

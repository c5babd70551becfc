// Package command implements the device's external command surfaces. Both
// the serial line surface and the structured remote surface resolve tokens
// through one dispatch table and write through the same state aggregate, so
// the override discipline is identical regardless of ingress: an "on"
// operation stores a (pre-scaled) value and suspends auto derivation, the
// matching "off" operation releases the channel back to its live source.
package command

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/OpenSourceNeuro/Spikeling/pkg/channel"
	"github.com/OpenSourceNeuro/Spikeling/pkg/engine"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
)

// Submitter queues a state mutation for the next tick boundary.
// *engine.Loop implements it.
type Submitter interface {
	Submit(func(*engine.State))
}

type handler func(st *engine.State, arg float32, hasArg bool)

// Dispatcher resolves command tokens and hands the resulting mutations to
// the loop.
type Dispatcher struct {
	loop  Submitter
	table map[string]handler
}

// NewDispatcher builds the full command table. It fails if a token is
// registered twice, so a wiring mistake surfaces at startup rather than as a
// silently shadowed command.
func NewDispatcher(loop Submitter) (*Dispatcher, error) {
	d := &Dispatcher{
		loop:  loop,
		table: make(map[string]handler),
	}

	add := func(name string, fn handler) error {
		if _, dup := d.table[name]; dup {
			return fmt.Errorf("duplicate command token %q", name)
		}
		d.table[name] = fn
		return nil
	}

	// manual stores the scaled argument and engages the override; a missing
	// or garbled argument still engages the override but leaves the stored
	// value untouched.
	manual := func(src func(*engine.State) *channel.Source, scale float32) handler {
		return func(st *engine.State, arg float32, hasArg bool) {
			s := src(st)
			if hasArg {
				s.SetManual(arg * scale)
				return
			}
			s.SetManualKeep()
		}
	}
	auto := func(src func(*engine.State) *channel.Source) handler {
		return func(st *engine.State, _ float32, _ bool) {
			src(st).SetAuto()
		}
	}

	entries := []struct {
		name string
		fn   handler
	}{
		{"DT", func(st *engine.State, arg float32, hasArg bool) {
			if hasArg {
				st.Time.SetPeriod(int64(arg))
			}
		}},
		{"NEU", func(st *engine.State, arg float32, hasArg bool) {
			if hasArg {
				st.Neuron.SetPreset(neuron.ClampPreset(int(arg)))
			}
		}},

		{"FR1", manual(func(st *engine.State) *channel.Source { return &st.Stim.Freq }, 1)},
		{"FR0", auto(func(st *engine.State) *channel.Source { return &st.Stim.Freq })},
		{"ST1", manual(func(st *engine.State) *channel.Source { return &st.Stim.Strength }, 1)},
		{"ST0", auto(func(st *engine.State) *channel.Source { return &st.Stim.Strength })},
		{"SC1", manual(func(st *engine.State) *channel.Source { return &st.Stim.Custom }, 1)},
		{"SC0", auto(func(st *engine.State) *channel.Source { return &st.Stim.Custom })},
		{"TR", func(st *engine.State, _ float32, _ bool) { st.Stim.Fire() }},

		{"PG1", manual(func(st *engine.State) *channel.Source { return &st.Photodiode.Gain }, 0.1)},
		{"PG0", auto(func(st *engine.State) *channel.Source { return &st.Photodiode.Gain })},
		{"PD1", manual(func(st *engine.State) *channel.Source { return &st.Photodiode.Decay }, 1)},
		{"PD0", auto(func(st *engine.State) *channel.Source { return &st.Photodiode.Decay })},
		{"PR1", manual(func(st *engine.State) *channel.Source { return &st.Photodiode.Recovery }, 1)},
		{"PR0", auto(func(st *engine.State) *channel.Source { return &st.Photodiode.Recovery })},

		{"IC1", manual(func(st *engine.State) *channel.Source { return &st.Clamp.Current }, 1)},
		{"IC0", auto(func(st *engine.State) *channel.Source { return &st.Clamp.Current })},
		{"NO1", manual(func(st *engine.State) *channel.Source { return &st.Noise.Current }, 1)},
		{"NO0", auto(func(st *engine.State) *channel.Source { return &st.Noise.Current })},

		{"SG11", manual(func(st *engine.State) *channel.Source { return &st.Syn1.Gain }, 0.25)},
		{"SG10", auto(func(st *engine.State) *channel.Source { return &st.Syn1.Gain })},
		{"SD11", manual(func(st *engine.State) *channel.Source { return &st.Syn1.Decay }, 0.001)},
		{"SD10", auto(func(st *engine.State) *channel.Source { return &st.Syn1.Decay })},
		{"SG21", manual(func(st *engine.State) *channel.Source { return &st.Syn2.Gain }, 0.25)},
		{"SG20", auto(func(st *engine.State) *channel.Source { return &st.Syn2.Gain })},
		{"SD21", manual(func(st *engine.State) *channel.Source { return &st.Syn2.Decay }, 0.001)},
		{"SD20", auto(func(st *engine.State) *channel.Source { return &st.Syn2.Decay })},

		{"BZ1", func(st *engine.State, _ float32, _ bool) { st.BuzzerEnabled = true }},
		{"BZ0", func(st *engine.State, _ float32, _ bool) { st.BuzzerEnabled = false }},
		{"LED1", func(st *engine.State, _ float32, _ bool) { st.LEDEnabled = true }},
		{"LED0", func(st *engine.State, _ float32, _ bool) { st.LEDEnabled = false }},

		// Connection handshake; the board blinks its LEDs, the core has no
		// state to change.
		{"CON", func(*engine.State, float32, bool) {}},
	}

	for _, e := range entries {
		if err := add(e.name, e.fn); err != nil {
			return nil, err
		}
	}

	return d, nil
}

// Execute resolves name and queues its mutation. Unknown tokens are reported
// to the caller and produce no state change.
func (d *Dispatcher) Execute(name string, arg float32, hasArg bool) error {
	fn, ok := d.table[name]
	if !ok {
		return fmt.Errorf("unknown command: %s", name)
	}
	d.loop.Submit(func(st *engine.State) {
		fn(st, arg, hasArg)
	})
	return nil
}

// ExecuteLine parses a whitespace-tokenized line ("IC1 120.0") and executes
// it. An unparsable argument is treated as absent, leaving the previous
// value untouched.
func (d *Dispatcher) ExecuteLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}

	var (
		arg    float32
		hasArg bool
	)
	if len(fields) > 1 {
		if v, err := strconv.ParseFloat(fields[1], 32); err == nil {
			arg = float32(v)
			hasArg = true
		}
	}
	return d.Execute(fields[0], arg, hasArg)
}

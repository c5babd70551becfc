package engine

import (
	"context"
	"log"
	"math/rand"
	"time"

	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
	"github.com/OpenSourceNeuro/Spikeling/pkg/telemetry"
)

// Sink consumes one telemetry packet per tick. Sinks must not block; slow
// consumers apply their own decimation or buffering.
type Sink interface {
	Send(telemetry.Packet)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(telemetry.Packet)

func (f SinkFunc) Send(p telemetry.Packet) { f(p) }

// commandQueueSize bounds pending external commands between ticks.
const commandQueueSize = 64

// Loop is the single-threaded control core. All state is owned by the loop;
// command surfaces submit closures that the loop applies synchronously before
// computing a tick, so no mutation is visible mid-tick.
type Loop struct {
	state    *State
	outputs  *Outputs
	sinks    []Sink
	commands chan func(*State)
}

// New builds a loop over the given board.
func New(board Board, preset neuron.Preset, periodMicros int64, rng *rand.Rand) *Loop {
	return &Loop{
		state:    NewState(board, preset, periodMicros, rng),
		outputs:  NewOutputs(board),
		commands: make(chan func(*State), commandQueueSize),
	}
}

// State exposes the aggregate for tests and startup wiring. External writers
// must go through Submit instead.
func (l *Loop) State() *State { return l.state }

// AddSink registers a telemetry consumer. Not safe once Run has started.
func (l *Loop) AddSink(s Sink) {
	l.sinks = append(l.sinks, s)
}

// Submit queues a state mutation for the next tick boundary. A full queue
// drops the command; the surfaces are expected to be far slower than ticks.
func (l *Loop) Submit(fn func(*State)) {
	select {
	case l.commands <- fn:
	default:
		log.Printf("engine: command queue full, dropping command")
	}
}

// drainCommands applies all pending mutations.
func (l *Loop) drainCommands() {
	for {
		select {
		case fn := <-l.commands:
			fn(l.state)
		default:
			return
		}
	}
}

// Tick computes one control step unconditionally and returns the packet it
// emitted.
func (l *Loop) Tick() telemetry.Packet {
	st := l.state

	l.drainCommands()

	st.Clamp.Update()
	st.Noise.Update()
	st.Photodiode.Update()
	st.Syn1.Update()
	st.Syn2.Update()
	st.Stim.Advance()

	st.Neuron.Step(st.TotalCurrent())

	st.VOut = l.outputs.Apply(st.Neuron, st.Stim, st.LEDEnabled, st.BuzzerEnabled)

	pkt := telemetry.Sample(
		st.VOut,
		st.Stim.State,
		st.Neuron.TotalCurrent,
		st.Syn1.Vm, st.Syn1.Current,
		st.Syn2.Vm, st.Syn2.Current,
		st.Stim.Trigger,
	)
	for _, s := range l.sinks {
		s.Send(pkt)
	}
	return pkt
}

// Run busy-polls the time base until the context is cancelled. The short
// sleep keeps the poll from monopolising a core while staying well under the
// minimum tick period.
func (l *Loop) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if l.state.Time.Due() {
			l.Tick()
			continue
		}
		time.Sleep(100 * time.Microsecond)
	}
}

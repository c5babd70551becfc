// Package neuron implements the two-variable Izhikevich spiking model the
// device integrates once per control tick.
package neuron

// Display bounds shared by the output mapper and the synapse voltage remap.
const (
	VMin   float32 = -110.0 // hard floor for the membrane variable
	VMax   float32 = 100.0  // top of the display range
	VSpike float32 = -30.0  // nominal spike threshold
	VPeak  float32 = 30.0   // apex; crossing it registers a spike
)

// DefaultDt is the integration step in model milliseconds per tick.
const DefaultDt float32 = 0.1

// Neuron holds the dynamic state and the active parameter set.
// V and U persist across ticks; only the spike-reset rule or a preset
// reselection touches them outside of Step.
type Neuron struct {
	V float32 // membrane potential (mV)
	U float32 // recovery variable

	Params Params
	Preset Preset

	Dt           float32
	TotalCurrent float32

	// Spiking reflects the peak crossing of the most recently completed
	// step, evaluated before the after-spike reset.
	Spiking bool
}

// New returns a neuron initialised to the given preset's resting state.
func New(p Preset) *Neuron {
	n := &Neuron{Dt: DefaultDt}
	n.SetPreset(p)
	return n
}

// SetPreset installs a parameter set in bulk and resets the membrane to the
// preset's resting point: v = v_rest, u = b*v_rest.
func (n *Neuron) SetPreset(p Preset) {
	p = ClampPreset(int(p))
	n.Preset = p
	n.Params = p.Params()
	n.V = n.Params.VRest
	n.U = n.Params.B * n.V
	n.Spiking = false
}

// Step advances the model by one forward-Euler step with injected current i,
// then applies the after-spike reset and the display floor. The Spiking flag
// it leaves behind is what the output mapper consumes this tick.
func (n *Neuron) Step(i float32) {
	n.TotalCurrent = i

	dt := n.Dt
	v, u := n.V, n.U
	v += dt * (0.04*v*v + 5*v + 140 - u + i)
	u += dt * n.Params.A * (n.Params.B*v - u)

	n.Spiking = v >= VPeak
	if n.Spiking {
		v = n.Params.C
		u += n.Params.D
	}
	if v <= VMin {
		v = VMin
	}

	n.V, n.U = v, u
}

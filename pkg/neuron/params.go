package neuron

// Preset identifies one of the named Izhikevich firing regimes.
// Parameter values follow Izhikevich (2004), "Which model to use for
// cortical spiking neurons?", figure 1.
type Preset int

const (
	TonicSpiking Preset = iota
	PhasicSpiking
	TonicBursting
	PhasicBursting
	MixedMode
	SpikeFrequencyAdaptation
	Class1
	Class2
	SpikeLatency
	SubthresholdOscillations
	Resonator
	Integrator
	ReboundSpike
	ReboundBurst
	ThresholdVariability
	Bistability
	DAP
	Accommodation
	InhibitionInducedSpiking
	InhibitionInducedBursting

	numPresets
)

// NumPresets is the number of defined firing regimes.
const NumPresets = int(numPresets)

// Params holds the four Izhikevich model parameters plus the resting
// potential the membrane is reset to when the preset is selected.
type Params struct {
	A     float32 // time scale of the recovery variable u
	B     float32 // sensitivity of u to subthreshold v
	C     float32 // after-spike reset value of v (mV)
	D     float32 // after-spike increment of u
	VRest float32 // resting membrane potential (mV)
}

var presetParams = [NumPresets]Params{
	TonicSpiking:              {0.02, 0.20, -65.0, 6.0, -70.0},
	PhasicSpiking:             {0.02, 0.25, -65.0, 6.0, -64.0},
	TonicBursting:             {0.02, 0.20, -50.0, 2.0, -70.0},
	PhasicBursting:            {0.02, 0.25, -55.0, 0.05, -64.0},
	MixedMode:                 {0.02, 0.20, -55.0, 4.0, -70.0},
	SpikeFrequencyAdaptation:  {0.01, 0.20, -65.0, 8.0, -70.0},
	Class1:                    {0.02, -0.10, -55.0, 6.0, -60.0},
	Class2:                    {0.20, 0.26, -65.0, 0.0, -64.0},
	SpikeLatency:              {0.02, 0.20, -65.0, 6.0, -70.0},
	SubthresholdOscillations:  {0.05, 0.26, -60.0, 0.0, -62.0},
	Resonator:                 {0.10, 0.26, -60.0, -1.0, -62.0},
	Integrator:                {0.02, -0.10, -55.0, 6.0, -60.0},
	ReboundSpike:              {0.03, 0.25, -60.0, 4.0, -64.0},
	ReboundBurst:              {0.03, 0.25, -52.0, 0.0, -64.0},
	ThresholdVariability:      {0.03, 0.25, -60.0, 4.0, -64.0},
	Bistability:               {0.10, 0.26, -60.0, 0.0, -61.0},
	DAP:                       {1.00, 0.20, -60.0, -21.0, -70.0},
	Accommodation:             {0.02, 1.00, -55.0, 4.0, -65.0},
	InhibitionInducedSpiking:  {0.02, 1.00, -60.0, 8.0, -63.8},
	InhibitionInducedBursting: {0.026, -1.00, -45.0, -2.0, -63.8},
}

var presetNames = [NumPresets]string{
	TonicSpiking:              "TonicSpiking",
	PhasicSpiking:             "PhasicSpiking",
	TonicBursting:             "TonicBursting",
	PhasicBursting:            "PhasicBursting",
	MixedMode:                 "MixedMode",
	SpikeFrequencyAdaptation:  "SpikeFrequencyAdaptation",
	Class1:                    "Class1",
	Class2:                    "Class2",
	SpikeLatency:              "SpikeLatency",
	SubthresholdOscillations:  "SubthresholdOscillations",
	Resonator:                 "Resonator",
	Integrator:                "Integrator",
	ReboundSpike:              "ReboundSpike",
	ReboundBurst:              "ReboundBurst",
	ThresholdVariability:      "ThresholdVariability",
	Bistability:               "Bistability",
	DAP:                       "DAP",
	Accommodation:             "Accommodation",
	InhibitionInducedSpiking:  "InhibitionInducedSpiking",
	InhibitionInducedBursting: "InhibitionInducedBursting",
}

// ClampPreset maps an arbitrary index onto a valid preset. Out-of-range
// indices select TonicSpiking, matching the device's behaviour for bad
// preset commands.
func ClampPreset(index int) Preset {
	if index < 0 || index >= NumPresets {
		return TonicSpiking
	}
	return Preset(index)
}

// Params returns the parameter set of the preset.
func (p Preset) Params() Params {
	return presetParams[ClampPreset(int(p))]
}

func (p Preset) String() string {
	return presetNames[ClampPreset(int(p))]
}

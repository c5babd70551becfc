package channel

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
)

// fixed returns an analog reader with a settable value.
func fixed(v int) *int { return &v }

func reader(p *int) hal.AnalogReader {
	return hal.AnalogFunc(func() int { return *p })
}

func TestClamp_AutoFollowsPot(t *testing.T) {
	pot := fixed(hal.ADCMax / 2)
	c := NewClamp(reader(pot))

	c.Update()
	assert.Equal(t, float32(0), c.Current.Value())

	*pot = hal.ADCMax
	c.Update()
	assert.Greater(t, c.Current.Value(), float32(0))
}

func TestClamp_ManualOverride(t *testing.T) {
	pot := fixed(hal.ADCMax)
	c := NewClamp(reader(pot))

	c.Current.SetManual(0.20)
	c.Update()
	assert.Equal(t, float32(0.20), c.Current.Value())

	// Release: the pot wins again on the next update.
	c.Current.SetAuto()
	c.Update()
	auto := c.Current.Value()
	assert.Greater(t, auto, float32(1))
}

func TestNoise_SilentBelowFloor(t *testing.T) {
	pot := fixed(PotOffset)
	n := NewNoise(reader(pot), rand.New(rand.NewSource(1)))

	for i := 0; i < 50; i++ {
		n.Update()
		assert.Equal(t, float32(0), n.Current.Value())
	}
}

func TestNoise_SigmaIsHalfAmplitude(t *testing.T) {
	pot := fixed(hal.ADCMax)
	n := NewNoise(reader(pot), rand.New(rand.NewSource(1)))

	n.Update()
	amp := (float32(hal.ADCMax) - PotOffset) / NoiseScale
	assert.InDelta(t, 0.5*amp, n.Sigma(), 1e-3)
}

func TestNoise_DrawsVary(t *testing.T) {
	pot := fixed(hal.ADCMax)
	n := NewNoise(reader(pot), rand.New(rand.NewSource(7)))

	seen := map[float32]bool{}
	for i := 0; i < 20; i++ {
		n.Update()
		seen[n.Current.Value()] = true
	}
	assert.Greater(t, len(seen), 10, "fresh sample per tick")
}

func TestNoise_ManualHoldsCurrent(t *testing.T) {
	pot := fixed(hal.ADCMax)
	n := NewNoise(reader(pot), rand.New(rand.NewSource(1)))

	n.Current.SetManual(1.25)
	for i := 0; i < 10; i++ {
		n.Update()
		assert.Equal(t, float32(1.25), n.Current.Value())
	}
}

func TestPhotodiode_WindowAverage(t *testing.T) {
	sensor := fixed(0)
	gain := fixed(hal.ADCMax / 2)
	p := NewPhotodiode(reader(sensor), reader(gain))

	*sensor = 100
	for i := 0; i < 5; i++ {
		p.Update()
	}
	// Five readings of 100 in a ten-slot window.
	assert.InDelta(t, 50.0, p.Average, 1e-4)

	for i := 0; i < 5; i++ {
		p.Update()
	}
	assert.InDelta(t, 100.0, p.Average, 1e-4)
}

func TestPhotodiode_DarkIsQuiet(t *testing.T) {
	sensor := fixed(0)
	gain := fixed(hal.ADCMax)
	p := NewPhotodiode(reader(sensor), reader(gain))

	for i := 0; i < 20; i++ {
		p.Update()
	}
	assert.Equal(t, float32(0), p.Current)
	assert.InDelta(t, 1.0, p.Amp, 1e-4)
}

func TestPhotodiode_AdaptationAndRecovery(t *testing.T) {
	sensor := fixed(hal.ADCMax)
	gain := fixed(hal.ADCMax)
	p := NewPhotodiode(reader(sensor), reader(gain))

	for i := 0; i < 200; i++ {
		p.Update()
	}
	adapted := p.Amp
	assert.Less(t, adapted, float32(1.0), "sustained light compresses the amplitude")
	assert.GreaterOrEqual(t, adapted, float32(0))

	// Darkness restores the amplitude toward full scale.
	*sensor = 0
	for i := 0; i < 200; i++ {
		p.Update()
	}
	assert.InDelta(t, 1.0, p.Amp, 1e-3)
}

func TestPhotodiode_ManualGain(t *testing.T) {
	sensor := fixed(1000)
	gain := fixed(hal.ADCMax / 2)
	p := NewPhotodiode(reader(sensor), reader(gain))

	p.Gain.SetManual(-2)
	p.Update()
	assert.Equal(t, float32(-2), p.Gain.Value())
	assert.Equal(t, float32(-1), p.Polarity)
	assert.Less(t, p.Current, float32(0))
}

func TestSynapse_AccumulateAndDecay(t *testing.T) {
	spike := false
	spikeIn := hal.DigitalFunc(func() bool { return spike })
	vm := fixed(0)
	gain := fixed(hal.ADCMax / 2)

	s := NewSynapse(spikeIn, reader(vm), reader(gain), DefaultSyn1Decay)
	s.Gain.SetManual(2.0)

	spike = true
	s.Update()
	require.InDelta(t, 2.0*DefaultSyn1Decay, s.Current, 1e-4)

	// Line low: pure multiplicative decay toward zero.
	spike = false
	prev := s.Current
	for i := 0; i < 100; i++ {
		s.Update()
		assert.InDelta(t, prev*DefaultSyn1Decay, s.Current, 1e-4)
		prev = s.Current
	}
	assert.Less(t, s.Current, float32(1.25))

	for i := 0; i < 5000; i++ {
		s.Update()
	}
	assert.InDelta(t, 0, s.Current, 1e-3)
}

func TestSynapse_SustainedLineKeepsAdding(t *testing.T) {
	spikeIn := hal.DigitalFunc(func() bool { return true })
	vm := fixed(0)
	gain := fixed(hal.ADCMax / 2)

	s := NewSynapse(spikeIn, reader(vm), reader(gain), DefaultSyn2Decay)
	s.Gain.SetManual(1.0)

	for i := 0; i < 500; i++ {
		s.Update()
	}
	// Accumulation balances decay near gain/(1-decay) * decay.
	limit := 1.0 / (1.0 - DefaultSyn2Decay) * DefaultSyn2Decay
	assert.InDelta(t, limit, s.Current, 1.0)
}

func TestSynapse_VmRemap(t *testing.T) {
	spikeIn := hal.DigitalFunc(func() bool { return false })
	vm := fixed(2047)
	gain := fixed(hal.ADCMax / 2)

	s := NewSynapse(spikeIn, reader(vm), reader(gain), DefaultSyn1Decay)
	s.Update()

	want := mapRange(2047, synAnalogLow, synAnalogHigh, neuron.VMin, neuron.VMax) + axonOffset
	assert.InDelta(t, want, s.Vm, 1e-4)

	// The padded input range keeps real readings inside the display span.
	*vm = 0
	s.Update()
	assert.Greater(t, s.Vm, neuron.VMin+axonOffset-1)
	*vm = hal.ADCMax
	s.Update()
	assert.Less(t, s.Vm, neuron.VMax)
}

package stimulus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
)

func fixed(v int) *int { return &v }

func reader(p *int) hal.AnalogReader {
	return hal.AnalogFunc(func() int { return *p })
}

// newCentred returns a generator with both pots at the dead-zone centre and
// no analog current in.
func newCentred() (*Generator, *int) {
	str := fixed(hal.ADCMax / 2)
	freq := fixed(hal.ADCMax / 2)
	cur := fixed(0)
	return New(reader(str), reader(freq), reader(cur)), cur
}

func TestDutyCycle_DefaultLength(t *testing.T) {
	g, _ := newCentred()
	assert.Equal(t, 510, g.Steps())
}

func TestDutyCycle_OnThenOff(t *testing.T) {
	g, _ := newCentred()
	g.Strength.SetManual(50)

	steps := g.Steps()
	for i := 0; i < steps/2; i++ {
		g.Advance()
		assert.Equal(t, float32(50), g.State, "tick %d should be in the ON phase", i)
		assert.Equal(t, int(50*lightScaling), g.LightOut)
		assert.Equal(t, int(50*currentScaling), g.DACOut)
	}
	for i := steps / 2; i < steps; i++ {
		g.Advance()
		assert.Equal(t, float32(0), g.State, "tick %d should be in the OFF phase", i)
		assert.Equal(t, 0, g.LightOut)
		assert.Equal(t, 0, g.DACOut)
	}
}

func TestDutyCycle_NegativeStrengthDarkLight(t *testing.T) {
	g, _ := newCentred()
	g.Strength.SetManual(-50)

	g.Advance()
	assert.Equal(t, float32(-50), g.State)
	assert.Equal(t, 0, g.LightOut, "light only drives positive strength")
	assert.Equal(t, int(50*currentScaling), g.DACOut, "current output uses the magnitude")
}

func TestDutyCycle_TriggerFiresTickAfterWrap(t *testing.T) {
	g, _ := newCentred()

	steps := g.Steps()
	for i := 0; i < steps; i++ {
		g.Advance()
		require.False(t, g.Trigger, "no trigger inside the first cycle (tick %d)", i)
	}

	g.Advance()
	assert.True(t, g.Trigger, "trigger fires exactly one tick after the wrap")
	g.Advance()
	assert.False(t, g.Trigger, "trigger lasts one tick")
}

func TestDutyCycle_FrequencyRecomputesLength(t *testing.T) {
	g, _ := newCentred()
	g.Freq.SetManual(100)

	// The new length takes effect at the wrap.
	for i := 0; i < 510; i++ {
		g.Advance()
	}
	assert.Equal(t, 1010, g.Steps())

	g.Freq.SetManual(-98)
	for i := 0; i < 1010; i++ {
		g.Advance()
	}
	assert.Equal(t, 20, g.Steps())
}

func TestInputCurrent_GatedByPhaseAndStrength(t *testing.T) {
	g, cur := newCentred()
	*cur = 100
	g.Strength.SetManual(50)

	g.Advance()
	assert.InDelta(t, 100*currentInScale, g.InputCurrent, 1e-4)

	// OFF phase kills the path even though the reading is unchanged.
	for i := 1; i < g.Steps()/2+1; i++ {
		g.Advance()
	}
	assert.Equal(t, float32(0), g.InputCurrent)
}

func TestInputCurrent_NegativeStrengthInverts(t *testing.T) {
	g, cur := newCentred()
	*cur = 100
	g.Strength.SetManual(-50)

	g.Advance()
	assert.InDelta(t, -100*currentInScale, g.InputCurrent, 1e-4)
}

func TestInputCurrent_SmallStrengthGatesOff(t *testing.T) {
	g, cur := newCentred()
	*cur = 100
	g.Strength.SetManual(3)

	g.Advance()
	assert.Equal(t, float32(0), g.InputCurrent)
}

func TestFreeForm_DrivesOutputsDirectly(t *testing.T) {
	g, cur := newCentred()
	*cur = 100
	g.Custom.SetManual(20)
	level := float32(20)

	for i := 0; i < 1000; i++ {
		g.Advance()
		assert.Equal(t, float32(20), g.State, "no duty phase in free-form mode")
		assert.Equal(t, int(level*lightScaling), g.LightOut)
		assert.InDelta(t, 100*currentInScale, g.InputCurrent, 1e-4)
	}
}

func TestFreeForm_ZeroValueGatesCurrentIn(t *testing.T) {
	g, cur := newCentred()
	*cur = 100
	g.Custom.SetManual(0)

	g.Advance()
	assert.Equal(t, float32(0), g.InputCurrent)
}

func TestFreeForm_FireOneShot(t *testing.T) {
	g, _ := newCentred()
	g.Custom.SetManual(10)

	g.Advance()
	require.False(t, g.Trigger)

	g.Fire()
	g.Advance()
	assert.True(t, g.Trigger)
	g.Advance()
	assert.False(t, g.Trigger)
}

func TestModeSwitch_ResetsPhase(t *testing.T) {
	g, _ := newCentred()

	for i := 0; i < 100; i++ {
		g.Advance()
	}
	require.Equal(t, 100, g.Phase())

	g.Custom.SetManual(5)
	g.Advance()
	assert.Equal(t, 0, g.Phase())

	g.Custom.SetAuto()
	g.Advance()
	// Back in duty mode from the start of a cycle.
	assert.Equal(t, 1, g.Phase())
	assert.NotEqual(t, float32(5), g.State)
}

func TestDutyCycle_AutoPotMapping(t *testing.T) {
	str := fixed(hal.ADCMax)
	freq := fixed(hal.ADCMax / 2)
	cur := fixed(0)
	g := New(reader(str), reader(freq), reader(cur))

	g.Advance()
	// Full-scale pot lands near +100 percent.
	assert.InDelta(t, 100, g.Strength.Value(), 1.0)

	// Frequency pot runs inverted: a full-scale reading shortens the cycle,
	// a zero reading stretches it.
	*freq = hal.ADCMax
	for i := 1; i < 510; i++ {
		g.Advance()
	}
	assert.Less(t, g.Steps(), 510)
	assert.GreaterOrEqual(t, g.Steps(), minPeriod)

	*freq = 0
	for g.Phase() != 0 {
		g.Advance()
	}
	g.Advance()
	for g.Phase() != 0 {
		g.Advance()
	}
	assert.Greater(t, g.Steps(), 510)
}

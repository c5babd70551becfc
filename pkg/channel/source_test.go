package channel

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
)

func TestSource_ManualAutoCycle(t *testing.T) {
	var s Source

	assert.True(t, s.IsAuto())
	assert.Equal(t, float32(0), s.Value())

	// Auto: every Derive refreshes the value.
	assert.Equal(t, float32(1.5), s.Derive(1.5))
	assert.Equal(t, float32(1.5), s.Value())

	// Manual: Derive returns the held value and stores nothing.
	s.SetManual(0.20)
	assert.False(t, s.IsAuto())
	assert.Equal(t, float32(0.20), s.Derive(7.0))
	assert.Equal(t, float32(0.20), s.Value())

	// Back to auto: next Derive re-derives from the live source.
	s.SetAuto()
	assert.True(t, s.IsAuto())
	assert.Equal(t, float32(0.20), s.Value())
	assert.Equal(t, float32(3.0), s.Derive(3.0))
}

func TestSource_SetManualKeep(t *testing.T) {
	var s Source
	s.Derive(2.5)

	s.SetManualKeep()
	assert.False(t, s.IsAuto())
	assert.Equal(t, float32(2.5), s.Value())
}

func TestDeadZone_CentreBand(t *testing.T) {
	centre := hal.ADCMax / 2

	assert.Equal(t, float32(0), DeadZone(centre, ClampScale))
	assert.Equal(t, float32(0), DeadZone(centre+PotOffset, ClampScale))
	assert.Equal(t, float32(0), DeadZone(centre-PotOffset, ClampScale))
}

func TestDeadZone_ContinuousAtBandEdges(t *testing.T) {
	centre := hal.ADCMax / 2

	// One count outside the band is one count's worth of output, not a jump.
	hi := DeadZone(centre+PotOffset+1, ClampScale)
	assert.InDelta(t, 1.0/ClampScale, hi, 1e-6)

	lo := DeadZone(centre-PotOffset-1, ClampScale)
	assert.InDelta(t, -1.0/ClampScale, lo, 1e-6)
}

func TestDeadZone_FullScale(t *testing.T) {
	centre := hal.ADCMax / 2

	want := float32(hal.ADCMax-centre-PotOffset) / ClampScale
	assert.InDelta(t, want, DeadZone(hal.ADCMax, ClampScale), 1e-4)

	wantLo := float32(-centre+PotOffset) / ClampScale
	assert.InDelta(t, wantLo, DeadZone(0, ClampScale), 1e-4)
}

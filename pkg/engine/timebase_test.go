package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
)

type fakeClock struct {
	now int64
}

func (c *fakeClock) reader() hal.Clock {
	return hal.ClockFunc(func() int64 { return c.now })
}

func TestTimeBase_NotDueBeforePeriod(t *testing.T) {
	clk := &fakeClock{}
	tb := NewTimeBase(clk.reader(), 1000)

	clk.now = 999
	assert.False(t, tb.Due())
	clk.now = 1000
	assert.True(t, tb.Due())
	assert.False(t, tb.Due())
}

func TestTimeBase_PhasePreserved(t *testing.T) {
	clk := &fakeClock{}
	tb := NewTimeBase(clk.reader(), 1000)

	// Late polling must not shift the tick grid: deadlines stay multiples of
	// the period regardless of when Due is asked.
	clk.now = 1700
	require.True(t, tb.Due())
	assert.False(t, tb.Due(), "next deadline is 2000, not 2700")

	clk.now = 2000
	assert.True(t, tb.Due())
}

func TestTimeBase_OverrunMergesTicks(t *testing.T) {
	clk := &fakeClock{}
	tb := NewTimeBase(clk.reader(), 1000)

	// Missing several deadlines catches up one at a time.
	clk.now = 5500
	for i := 0; i < 5; i++ {
		require.True(t, tb.Due(), "catch-up tick %d", i)
	}
	assert.False(t, tb.Due())
}

func TestTimeBase_PeriodClamped(t *testing.T) {
	clk := &fakeClock{}
	tb := NewTimeBase(clk.reader(), 0)
	assert.Equal(t, MinPeriodMicros, tb.Period())

	tb.SetPeriod(2000000)
	assert.Equal(t, MaxPeriodMicros, tb.Period())

	tb.SetPeriod(3000)
	assert.Equal(t, int64(3000), tb.Period())
}

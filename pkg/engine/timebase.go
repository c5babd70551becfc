package engine

import "github.com/OpenSourceNeuro/Spikeling/pkg/hal"

// Tick period bounds, applied uniformly to every control surface.
const (
	MinPeriodMicros     int64 = 1000
	MaxPeriodMicros     int64 = 1000000
	DefaultPeriodMicros int64 = 3000
)

// TimeBase gates the control loop to a fixed period. Deadlines advance by
// adding the period to the previous deadline, never to "now", so dispatch
// latency cannot accumulate into drift; an iteration that overruns by more
// than one period merges at most one tick.
type TimeBase struct {
	clock  hal.Clock
	period int64
	last   int64
}

// NewTimeBase creates a time base ticking every periodMicros, clamped to the
// allowed range.
func NewTimeBase(clock hal.Clock, periodMicros int64) *TimeBase {
	tb := &TimeBase{clock: clock, last: clock.NowMicros()}
	tb.SetPeriod(periodMicros)
	return tb
}

// Due reports whether a tick deadline has passed, advancing the deadline
// phase-preservingly when it has.
func (tb *TimeBase) Due() bool {
	now := tb.clock.NowMicros()
	if now-tb.last < tb.period {
		return false
	}
	tb.last += tb.period
	return true
}

// SetPeriod changes the tick period at runtime, clamped to
// [MinPeriodMicros, MaxPeriodMicros].
func (tb *TimeBase) SetPeriod(periodMicros int64) {
	if periodMicros < MinPeriodMicros {
		periodMicros = MinPeriodMicros
	}
	if periodMicros > MaxPeriodMicros {
		periodMicros = MaxPeriodMicros
	}
	tb.period = periodMicros
}

// Period returns the current tick period in microseconds.
func (tb *TimeBase) Period() int64 { return tb.period }

package channel

import "github.com/OpenSourceNeuro/Spikeling/pkg/hal"

// Clamp injects a constant current set by the clamp potentiometer, or by a
// manual override that suspends the pot read entirely.
type Clamp struct {
	Pot     hal.AnalogReader
	Current Source
}

// NewClamp creates a clamp channel reading the given potentiometer.
func NewClamp(pot hal.AnalogReader) *Clamp {
	return &Clamp{Pot: pot}
}

// Update re-derives the injected current for this tick.
func (c *Clamp) Update() {
	if c.Current.IsAuto() {
		c.Current.Derive(DeadZone(c.Pot.Read(), ClampScale))
	}
}

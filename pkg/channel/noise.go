package channel

import (
	"math/rand"

	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/chewxy/math32"
)

// sigmaTolerance is the hysteresis below which a new standard deviation does
// not re-parameterise the generator, avoiding per-tick churn.
const sigmaTolerance float32 = 1e-3

// Noise injects Gaussian current. The amplitude comes from the noise
// potentiometer (unipolar: readings at or below the dead-band floor give
// silence) and the generator's standard deviation is half the amplitude.
// A manual override holds the drawn current itself at a fixed value.
type Noise struct {
	Pot     hal.AnalogReader
	Current Source

	rng   *rand.Rand
	amp   float32
	sigma float32
}

// NewNoise creates a noise channel. rng may be seeded deterministically for
// tests; a nil rng falls back to the global source.
func NewNoise(pot hal.AnalogReader, rng *rand.Rand) *Noise {
	return &Noise{Pot: pot, rng: rng}
}

// Sigma returns the generator's current standard deviation.
func (n *Noise) Sigma() float32 { return n.sigma }

// Update draws one fresh sample as the channel's current for this tick.
func (n *Noise) Update() {
	if !n.Current.IsAuto() {
		return
	}

	raw := n.Pot.Read()
	if raw <= PotOffset {
		n.Current.Derive(0)
		return
	}

	n.amp = (float32(raw) - PotOffset) / NoiseScale

	newSigma := 0.5 * n.amp
	if math32.Abs(newSigma-n.sigma) > sigmaTolerance {
		n.sigma = newSigma
	}

	n.Current.Derive(n.sigma * float32(n.norm()))
}

func (n *Noise) norm() float64 {
	if n.rng != nil {
		return n.rng.NormFloat64()
	}
	return rand.NormFloat64()
}

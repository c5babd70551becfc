package engine

import (
	"github.com/OpenSourceNeuro/Spikeling/pkg/hal"
	"github.com/OpenSourceNeuro/Spikeling/pkg/neuron"
	"github.com/OpenSourceNeuro/Spikeling/pkg/stimulus"
)

// vmLEDGain maps displayed voltage onto the 10-bit LED scale.
const vmLEDGain = float32(hal.PWMMax) / (neuron.VPeak - neuron.VMin)

// pwmOut deduplicates writes to a PWM peripheral.
type pwmOut struct {
	w     hal.PWMWriter
	last  int
	valid bool
}

func (o *pwmOut) write(v int) {
	if o.valid && v == o.last {
		return
	}
	o.last = v
	o.valid = true
	o.w.Write(v)
}

// dacOut deduplicates writes to a DAC channel.
type dacOut struct {
	w     hal.DACWriter
	last  int
	valid bool
}

func (o *dacOut) write(v int) {
	if o.valid && v == o.last {
		return
	}
	o.last = v
	o.valid = true
	o.w.Write(v)
}

// pinOut deduplicates writes to a digital line.
type pinOut struct {
	w     hal.PinWriter
	last  bool
	valid bool
}

func (o *pinOut) write(level bool) {
	if o.valid && level == o.last {
		return
	}
	o.last = level
	o.valid = true
	o.w.Write(level)
}

// Outputs maps neuron and stimulus state onto the indicator peripherals,
// skipping writes whose value has not changed since the last tick.
type Outputs struct {
	ledR, ledG, ledB pwmOut
	stimLight        pwmOut
	axonDAC, stimDAC dacOut
	axonD, buzzer    pinOut
}

// NewOutputs binds the output mapper to the board's writers.
func NewOutputs(board Board) *Outputs {
	return &Outputs{
		ledR:      pwmOut{w: board.LEDRed()},
		ledG:      pwmOut{w: board.LEDGreen()},
		ledB:      pwmOut{w: board.LEDBlue()},
		stimLight: pwmOut{w: board.StimLight()},
		axonDAC:   dacOut{w: board.AxonDAC()},
		stimDAC:   dacOut{w: board.StimDAC()},
		axonD:     pinOut{w: board.AxonDigital()},
		buzzer:    pinOut{w: board.Buzzer()},
	}
}

// Apply drives the indicators for this tick and returns the displayed
// voltage.
func (o *Outputs) Apply(n *neuron.Neuron, stim *stimulus.Generator, ledEnabled, buzzerEnabled bool) float32 {
	var vOut float32

	if n.Spiking {
		vOut = neuron.VPeak
		o.axonD.write(true)
		if ledEnabled {
			// Full white flash on spike.
			o.ledR.write(hal.PWMMax)
			o.ledG.write(hal.PWMMax)
			o.ledB.write(hal.PWMMax)
		}
		if buzzerEnabled {
			o.buzzer.write(true)
		}
	} else {
		vOut = n.V
		o.axonD.write(false)
		o.buzzer.write(false)
		if ledEnabled {
			// Subthreshold: red encodes the membrane, others off.
			pwm := (vOut - neuron.VMin) * vmLEDGain
			if pwm < 0 {
				pwm = 0
			}
			if pwm > float32(hal.PWMMax) {
				pwm = float32(hal.PWMMax)
			}
			o.ledR.write(int(pwm))
			o.ledG.write(0)
			o.ledB.write(0)
		}
	}

	if !ledEnabled {
		o.ledR.write(0)
		o.ledG.write(0)
		o.ledB.write(0)
	}
	if !buzzerEnabled {
		o.buzzer.write(false)
	}

	norm := (vOut - neuron.VMin) / (neuron.VMax - neuron.VMin)
	if norm < 0 {
		norm = 0
	}
	if norm > 1 {
		norm = 1
	}
	o.axonDAC.write(int(norm*float32(hal.DACMax) + 0.5))

	o.stimLight.write(stim.LightOut)
	o.stimDAC.write(stim.DACOut)

	return vOut
}

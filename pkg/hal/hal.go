// Package hal defines the hardware collaborators the control loop consumes:
// analog sample sources, digital spike lines, indicator/output writers and a
// monotonic clock. The real board wires these to SPI converters and GPIOs;
// tests and the emulator use SimBoard.
package hal

// Converter ranges on the reference board (MCP3208 in, MCP4922 out, 10-bit PWM).
const (
	ADCMax = 4095
	DACMax = 4095
	PWMMax = 1023
)

// AnalogReader returns the latest raw sample of one analog input in [0, ADCMax].
type AnalogReader interface {
	Read() int
}

// DigitalReader reports the level of one digital input line.
type DigitalReader interface {
	Read() bool
}

// PWMWriter drives one PWM output with a duty value in [0, PWMMax].
type PWMWriter interface {
	Write(value int)
}

// DACWriter drives one analog output with a value in [0, DACMax].
type DACWriter interface {
	Write(value int)
}

// PinWriter drives one digital output line.
type PinWriter interface {
	Write(level bool)
}

// Clock is a monotonic microsecond clock.
type Clock interface {
	NowMicros() int64
}

// AnalogFunc adapts a function to AnalogReader.
type AnalogFunc func() int

func (f AnalogFunc) Read() int { return f() }

// DigitalFunc adapts a function to DigitalReader.
type DigitalFunc func() bool

func (f DigitalFunc) Read() bool { return f() }

// ClockFunc adapts a function to Clock.
type ClockFunc func() int64

func (f ClockFunc) NowMicros() int64 { return f() }

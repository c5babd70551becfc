package hal

import (
	"sync"
	"time"
)

// SimBoard is a software stand-in for the Spikeling board. Inputs are set by
// tests or the emulator UI thread; outputs record the last value written by
// the control loop. All accessors are safe for concurrent use, mirroring the
// real board where the bus transactions are atomic per channel.
type SimBoard struct {
	mu sync.RWMutex

	// Analog inputs, raw 12-bit values.
	clampPot    int
	noisePot    int
	photodiode  int
	pdGainPot   int
	syn1Analog  int
	syn1GainPot int
	syn2Analog  int
	syn2GainPot int
	currentIn   int
	stimStrPot  int
	stimFreqPot int

	// Digital inputs.
	syn1Spike bool
	syn2Spike bool

	// Recorded outputs.
	ledR, ledG, ledB int
	stimLight        int
	axonDAC          int
	stimDAC          int
	axonDigital      bool
	buzzer           bool

	start time.Time
}

// NewSimBoard creates a simulated board with all pots at mid-range (the
// dead-zone centre, so every channel starts quiet) and all lines low.
func NewSimBoard() *SimBoard {
	return &SimBoard{
		clampPot:    ADCMax / 2,
		noisePot:    0,
		pdGainPot:   ADCMax / 2,
		syn1GainPot: ADCMax / 2,
		syn2GainPot: ADCMax / 2,
		stimStrPot:  ADCMax / 2,
		stimFreqPot: ADCMax / 2,
		start:       time.Now(),
	}
}

func (b *SimBoard) read(p *int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return *p
}

func (b *SimBoard) set(p *int, v int) {
	if v < 0 {
		v = 0
	}
	if v > ADCMax {
		v = ADCMax
	}
	b.mu.Lock()
	*p = v
	b.mu.Unlock()
}

// Input setters used by the emulator and tests.

func (b *SimBoard) SetClampPot(v int)    { b.set(&b.clampPot, v) }
func (b *SimBoard) SetNoisePot(v int)    { b.set(&b.noisePot, v) }
func (b *SimBoard) SetPhotodiode(v int)  { b.set(&b.photodiode, v) }
func (b *SimBoard) SetPDGainPot(v int)   { b.set(&b.pdGainPot, v) }
func (b *SimBoard) SetSyn1Analog(v int)  { b.set(&b.syn1Analog, v) }
func (b *SimBoard) SetSyn1GainPot(v int) { b.set(&b.syn1GainPot, v) }
func (b *SimBoard) SetSyn2Analog(v int)  { b.set(&b.syn2Analog, v) }
func (b *SimBoard) SetSyn2GainPot(v int) { b.set(&b.syn2GainPot, v) }
func (b *SimBoard) SetCurrentIn(v int)   { b.set(&b.currentIn, v) }
func (b *SimBoard) SetStimStrPot(v int)  { b.set(&b.stimStrPot, v) }
func (b *SimBoard) SetStimFreqPot(v int) { b.set(&b.stimFreqPot, v) }

func (b *SimBoard) SetSyn1Spike(level bool) {
	b.mu.Lock()
	b.syn1Spike = level
	b.mu.Unlock()
}

func (b *SimBoard) SetSyn2Spike(level bool) {
	b.mu.Lock()
	b.syn2Spike = level
	b.mu.Unlock()
}

// Readers handed to the control loop.

func (b *SimBoard) ClampPot() AnalogReader    { return AnalogFunc(func() int { return b.read(&b.clampPot) }) }
func (b *SimBoard) NoisePot() AnalogReader    { return AnalogFunc(func() int { return b.read(&b.noisePot) }) }
func (b *SimBoard) Photodiode() AnalogReader  { return AnalogFunc(func() int { return b.read(&b.photodiode) }) }
func (b *SimBoard) PDGainPot() AnalogReader   { return AnalogFunc(func() int { return b.read(&b.pdGainPot) }) }
func (b *SimBoard) Syn1Analog() AnalogReader  { return AnalogFunc(func() int { return b.read(&b.syn1Analog) }) }
func (b *SimBoard) Syn1GainPot() AnalogReader { return AnalogFunc(func() int { return b.read(&b.syn1GainPot) }) }
func (b *SimBoard) Syn2Analog() AnalogReader  { return AnalogFunc(func() int { return b.read(&b.syn2Analog) }) }
func (b *SimBoard) Syn2GainPot() AnalogReader { return AnalogFunc(func() int { return b.read(&b.syn2GainPot) }) }
func (b *SimBoard) CurrentIn() AnalogReader   { return AnalogFunc(func() int { return b.read(&b.currentIn) }) }
func (b *SimBoard) StimStrPot() AnalogReader  { return AnalogFunc(func() int { return b.read(&b.stimStrPot) }) }
func (b *SimBoard) StimFreqPot() AnalogReader { return AnalogFunc(func() int { return b.read(&b.stimFreqPot) }) }

func (b *SimBoard) Syn1Spike() DigitalReader {
	return DigitalFunc(func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return b.syn1Spike
	})
}

func (b *SimBoard) Syn2Spike() DigitalReader {
	return DigitalFunc(func() bool {
		b.mu.RLock()
		defer b.mu.RUnlock()
		return b.syn2Spike
	})
}

// Clock returns a monotonic microsecond clock backed by the host clock.
func (b *SimBoard) Clock() Clock {
	return ClockFunc(func() int64 {
		return time.Since(b.start).Microseconds()
	})
}

// Output writers handed to the control loop.

type pwmFunc func(int)

func (f pwmFunc) Write(v int) { f(v) }

type dacFunc func(int)

func (f dacFunc) Write(v int) { f(v) }

type pinFunc func(bool)

func (f pinFunc) Write(level bool) { f(level) }

func (b *SimBoard) writeInt(p *int, v int) {
	b.mu.Lock()
	*p = v
	b.mu.Unlock()
}

func (b *SimBoard) LEDRed() PWMWriter    { return pwmFunc(func(v int) { b.writeInt(&b.ledR, v) }) }
func (b *SimBoard) LEDGreen() PWMWriter  { return pwmFunc(func(v int) { b.writeInt(&b.ledG, v) }) }
func (b *SimBoard) LEDBlue() PWMWriter   { return pwmFunc(func(v int) { b.writeInt(&b.ledB, v) }) }
func (b *SimBoard) StimLight() PWMWriter { return pwmFunc(func(v int) { b.writeInt(&b.stimLight, v) }) }
func (b *SimBoard) AxonDAC() DACWriter   { return dacFunc(func(v int) { b.writeInt(&b.axonDAC, v) }) }
func (b *SimBoard) StimDAC() DACWriter   { return dacFunc(func(v int) { b.writeInt(&b.stimDAC, v) }) }

func (b *SimBoard) AxonDigital() PinWriter {
	return pinFunc(func(level bool) {
		b.mu.Lock()
		b.axonDigital = level
		b.mu.Unlock()
	})
}

func (b *SimBoard) Buzzer() PinWriter {
	return pinFunc(func(level bool) {
		b.mu.Lock()
		b.buzzer = level
		b.mu.Unlock()
	})
}

// Output snapshots for tests and the emulator status line.

func (b *SimBoard) LEDValues() (r, g, bl int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledR, b.ledG, b.ledB
}

func (b *SimBoard) AxonOut() (dac int, digital bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.axonDAC, b.axonDigital
}

func (b *SimBoard) StimOut() (light, dac int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.stimLight, b.stimDAC
}

func (b *SimBoard) BuzzerOn() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.buzzer
}

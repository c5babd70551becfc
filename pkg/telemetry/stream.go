package telemetry

import "sync"

// Decimation bounds for secondary transports.
const (
	MinDecimation = 1
	MaxDecimation = 500
)

// Stream throttles a secondary telemetry consumer: disabled by default, and
// when enabled it passes one of every N ticks. Safe for concurrent control
// from a command surface while the loop calls Take.
type Stream struct {
	mu      sync.Mutex
	enabled bool
	decim   int
	count   int
}

// NewStream returns a disabled stream with the given decimation.
func NewStream(decim int) *Stream {
	s := &Stream{}
	s.SetDecimation(decim)
	return s
}

// SetEnabled turns the stream on or off.
func (s *Stream) SetEnabled(on bool) {
	s.mu.Lock()
	s.enabled = on
	s.mu.Unlock()
}

// SetDecimation sets the 1-of-N rate, clamped to [MinDecimation, MaxDecimation].
func (s *Stream) SetDecimation(n int) {
	if n < MinDecimation {
		n = MinDecimation
	}
	if n > MaxDecimation {
		n = MaxDecimation
	}
	s.mu.Lock()
	s.decim = n
	s.mu.Unlock()
}

// Take reports whether the current tick's packet should be sent.
func (s *Stream) Take() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.enabled {
		return false
	}
	s.count++
	if s.count < s.decim {
		return false
	}
	s.count = 0
	return true
}

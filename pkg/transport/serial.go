// Package transport carries telemetry out and commands in over the device's
// two links: a byte-stream serial port with sync-headed frames, and a
// message-framed WebSocket server with headerless payloads.
package transport

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"

	"go.bug.st/serial"

	"github.com/OpenSourceNeuro/Spikeling/pkg/telemetry"
)

const (
	// DefaultBaudRate matches the board's USB-serial bridge.
	DefaultBaudRate = 250000
	// DefaultBufferSize is the default depth of the outbound frame queue.
	DefaultBufferSize = 256
)

// LineExecutor applies one whitespace-tokenized command line.
// *command.Dispatcher implements it.
type LineExecutor interface {
	ExecuteLine(line string) error
}

// Serial streams telemetry frames out of a serial port and feeds inbound
// lines to the command surface. The byte stream has no message boundaries,
// so every outbound packet is prefixed with the two-byte sync header.
type Serial struct {
	port     string
	baudRate int

	exec   LineExecutor
	stream *telemetry.Stream

	conn      serial.Port
	frames    chan telemetry.Packet
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// NewSerial creates a serial link on the named port. The stream gate decides
// which ticks reach the wire.
func NewSerial(port string, baudRate, bufSize int, exec LineExecutor, stream *telemetry.Stream) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		exec:     exec,
		stream:   stream,
		frames:   make(chan telemetry.Packet, bufSize),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns the names of available serial ports.
func Ports() ([]string, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}
	return ports, nil
}

// Connect opens the port and starts the read and write pumps.
func (s *Serial) Connect() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.connected {
		return fmt.Errorf("already connected")
	}

	mode := &serial.Mode{
		BaudRate: s.baudRate,
	}

	port, err := serial.Open(s.port, mode)
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", s.port, err)
	}

	s.conn = port
	s.connected = true

	go s.readCommands()
	go s.writeFrames()

	return nil
}

// Close stops the pumps and closes the port.
func (s *Serial) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.connected {
		return nil
	}

	s.cancel()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			log.Printf("Error closing serial port: %v", err)
		}
		s.conn = nil
	}

	s.connected = false

	return nil
}

// IsConnected reports whether the link is open.
func (s *Serial) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.connected
}

// Send queues one tick's packet for transmission. It implements engine.Sink
// and never blocks the control loop: if the wire cannot keep up, frames are
// dropped here rather than stalling a tick.
func (s *Serial) Send(pkt telemetry.Packet) {
	if s.stream != nil && !s.stream.Take() {
		return
	}
	select {
	case s.frames <- pkt:
	default:
		log.Printf("serial: frame queue full, dropping frame")
	}
}

// writeFrames drains the outbound queue onto the wire, one sync-headed
// 18-byte frame per packet.
func (s *Serial) writeFrames() {
	buf := make([]byte, 0, telemetry.FrameSize)
	for {
		select {
		case <-s.ctx.Done():
			return
		case pkt := <-s.frames:
			frame := pkt.AppendFrame(buf[:0])

			s.mu.RLock()
			conn := s.conn
			s.mu.RUnlock()
			if conn == nil {
				return
			}

			if _, err := conn.Write(frame); err != nil {
				log.Printf("serial: write failed: %v", err)
				return
			}
		}
	}
}

// readCommands reads newline-terminated command lines and applies them.
func (s *Serial) readCommands() {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("Panic in readCommands: %v", r)
		}
	}()

	scanner := bufio.NewScanner(s.conn)
	for {
		select {
		case <-s.ctx.Done():
			return
		default:
			if !scanner.Scan() {
				if err := scanner.Err(); err != nil && err != io.EOF {
					log.Printf("Error reading from serial port: %v", err)
				}
				return
			}

			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			if err := s.exec.ExecuteLine(line); err != nil {
				log.Printf("serial: %v", err)
			}
		}
	}
}

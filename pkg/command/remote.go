package command

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/OpenSourceNeuro/Spikeling/pkg/telemetry"
)

// Remote message types.
const (
	msgCommand = "scmd"
	msgStream  = "stream"
	msgPing    = "ping"
)

type wireMsg struct {
	Type   string   `json:"type"`
	Cmd    string   `json:"cmd,omitempty"`
	V      *float64 `json:"v,omitempty"`
	Enable *bool    `json:"enable,omitempty"`
	Decim  *int     `json:"decim,omitempty"`
}

// Remote is the structured command surface carried over message-framed
// transports. It wraps the shared dispatcher and adds per-connection stream
// control.
type Remote struct {
	d      *Dispatcher
	stream *telemetry.Stream
}

// NewRemote binds a remote surface to the dispatcher and a stream gate.
func NewRemote(d *Dispatcher, stream *telemetry.Stream) *Remote {
	return &Remote{d: d, stream: stream}
}

// Hello is the greeting sent once per accepted connection.
func Hello() []byte {
	b, _ := json.Marshal(map[string]any{
		"type":  "hello",
		"model": "spikeling",
		"proto": 1,
	})
	return b
}

// Handle processes one inbound message and returns the optional reply.
// Messages that do not look like JSON fall back to the line syntax, so a
// terminal pasted onto the remote transport still works.
func (r *Remote) Handle(msg []byte) ([]byte, error) {
	text := strings.TrimSpace(string(msg))
	if text == "" {
		return nil, nil
	}
	if !strings.HasPrefix(text, "{") {
		return nil, r.d.ExecuteLine(text)
	}

	var m wireMsg
	if err := json.Unmarshal(msg, &m); err != nil {
		return nil, fmt.Errorf("decode message: %w", err)
	}

	switch m.Type {
	case msgCommand:
		var (
			arg    float32
			hasArg bool
		)
		if m.V != nil {
			arg = float32(*m.V)
			hasArg = true
		}
		return nil, r.d.Execute(m.Cmd, arg, hasArg)

	case msgStream:
		if m.Decim != nil {
			r.stream.SetDecimation(*m.Decim)
		}
		if m.Enable != nil {
			r.stream.SetEnabled(*m.Enable)
		}
		return nil, nil

	case msgPing:
		return []byte(`{"type":"pong"}`), nil

	default:
		return nil, fmt.Errorf("unknown message type: %q", m.Type)
	}
}

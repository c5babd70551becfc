// Package telemetry implements the binary sample-packet protocol: fixed-point
// quantization, the 16-byte wire record, sync framing, byte-wise receiver
// resynchronization and per-consumer decimation.
package telemetry

import "encoding/binary"

// Quantization scales. Voltages and currents carry two decimal places; the
// synapse display voltages are already integer-ish millivolts.
const (
	VScale    float32 = 100.0
	IScale    float32 = 100.0
	SynVScale float32 = 1.0
)

// Wire sizes. The payload is always 8 little-endian int16 fields; the sync
// header is prepended only on byte-stream transports that need it.
const (
	Header0 = 0xAA
	Header1 = 0x55

	HeaderSize  = 2
	PayloadSize = 16
	FrameSize   = HeaderSize + PayloadSize
)

// Packet is the quantized telemetry record, one per tick.
type Packet struct {
	V         int16 // displayed voltage x100
	StimState int16 // raw stimulus state
	ITotal    int16 // total injected current x100
	Syn1Vm    int16 // synapse 1 display voltage
	ISyn1     int16 // synapse 1 current x100
	Syn2Vm    int16 // synapse 2 display voltage
	ISyn2     int16 // synapse 2 current x100
	Trigger   int16 // 0 or 1
}

// Quantize scales x and rounds half away from zero. Values beyond the int16
// range wrap; extreme states are accepted rather than guarded.
func Quantize(x, scale float32) int16 {
	x *= scale
	if x >= 0 {
		return int16(int32(x + 0.5))
	}
	return int16(int32(x - 0.5))
}

// Sample quantizes one tick's state into a Packet.
func Sample(vOut float32, stimState float32, iTotal, syn1Vm, iSyn1, syn2Vm, iSyn2 float32, trigger bool) Packet {
	p := Packet{
		V:         Quantize(vOut, VScale),
		StimState: Quantize(stimState, 1),
		ITotal:    Quantize(iTotal, IScale),
		Syn1Vm:    Quantize(syn1Vm, SynVScale),
		ISyn1:     Quantize(iSyn1, IScale),
		Syn2Vm:    Quantize(syn2Vm, SynVScale),
		ISyn2:     Quantize(iSyn2, IScale),
	}
	if trigger {
		p.Trigger = 1
	}
	return p
}

// AppendPayload appends the 16-byte little-endian payload to dst.
func (p Packet) AppendPayload(dst []byte) []byte {
	for _, f := range [8]int16{p.V, p.StimState, p.ITotal, p.Syn1Vm, p.ISyn1, p.Syn2Vm, p.ISyn2, p.Trigger} {
		dst = binary.LittleEndian.AppendUint16(dst, uint16(f))
	}
	return dst
}

// AppendFrame appends the sync header followed by the payload to dst.
func (p Packet) AppendFrame(dst []byte) []byte {
	dst = append(dst, Header0, Header1)
	return p.AppendPayload(dst)
}

// decodePayload rebuilds a Packet from exactly PayloadSize bytes.
func decodePayload(b []byte) Packet {
	field := func(i int) int16 {
		return int16(binary.LittleEndian.Uint16(b[2*i:]))
	}
	return Packet{
		V:         field(0),
		StimState: field(1),
		ITotal:    field(2),
		Syn1Vm:    field(3),
		ISyn1:     field(4),
		Syn2Vm:    field(5),
		ISyn2:     field(6),
		Trigger:   field(7),
	}
}

// Values rescales the packet back to floating state in wire order:
// v, stim, itot, syn1vm, isyn1, syn2vm, isyn2, trigger.
func (p Packet) Values() [8]float32 {
	return [8]float32{
		float32(p.V) / VScale,
		float32(p.StimState),
		float32(p.ITotal) / IScale,
		float32(p.Syn1Vm) / SynVScale,
		float32(p.ISyn1) / IScale,
		float32(p.Syn2Vm) / SynVScale,
		float32(p.ISyn2) / IScale,
		float32(p.Trigger),
	}
}

package telemetry

// Decoder locates packet boundaries in a byte stream using the sync pattern.
// It tolerates junk between frames and false starts: while waiting for the
// second sync byte, another first-sync byte keeps it waiting instead of
// discarding, so a run of 0xAA bytes still locks on to the first real frame.
type Decoder struct {
	state   decodeState
	payload [PayloadSize]byte
	n       int
}

type decodeState int

const (
	seekFirst decodeState = iota
	seekSecond
	inPayload
)

// Feed consumes b and appends every completed packet to pkts, returning the
// extended slice. Partial frames persist across calls.
func (d *Decoder) Feed(pkts []Packet, b []byte) []Packet {
	for _, c := range b {
		switch d.state {
		case seekFirst:
			if c == Header0 {
				d.state = seekSecond
			}
		case seekSecond:
			switch c {
			case Header1:
				d.state = inPayload
				d.n = 0
			case Header0:
				// Still a candidate first sync byte; keep waiting.
			default:
				d.state = seekFirst
			}
		case inPayload:
			d.payload[d.n] = c
			d.n++
			if d.n == PayloadSize {
				pkts = append(pkts, decodePayload(d.payload[:]))
				d.state = seekFirst
			}
		}
	}
	return pkts
}

// Reset drops any partial frame and returns to the initial sync state.
func (d *Decoder) Reset() {
	d.state = seekFirst
	d.n = 0
}

package rcscan

// DefaultMinPulses is the shortest train worth trying to decode.
const DefaultMinPulses = 16

// MaxBits is the widest value a decode can produce.
const MaxBits = 64

// Result is a decoded code. Protocol is nil when nothing matched.
type Result struct {
	Protocol *Protocol
	Bits     int
	Value    uint64
}

// Decoder matches pulse trains against an ordered protocol registry.
type Decoder struct {
	Registry  Registry
	MinPulses int
}

// NewDecoder creates a decoder over reg with the default minimum train length.
func NewDecoder(reg Registry) *Decoder {
	return &Decoder{Registry: reg, MinPulses: DefaultMinPulses}
}

var defaultDecoder = NewDecoder(Protocols())

// Decode decodes pulses against the built-in protocol catalog.
func Decode(pulses []Pulse) (Result, bool) {
	return defaultDecoder.Decode(pulses)
}

// Decode tries every protocol in registry order and returns the first one
// that consumes the whole train. Trains shorter than MinPulses never match.
func (d *Decoder) Decode(pulses []Pulse) (Result, bool) {
	minPulses := d.MinPulses
	if minPulses < 2 {
		minPulses = 2
	}
	if len(pulses) < minPulses {
		return Result{}, false
	}

	for i := range d.Registry {
		p := &d.Registry[i]
		if bits, value, ok := decodeProtocol(p, pulses); ok {
			return Result{Protocol: p, Bits: bits, Value: value}, true
		}
	}
	return Result{}, false
}

// decodeProtocol walks pulses as symbols of p. It succeeds only when every
// usable pulse was consumed as part of a valid symbol.
func decodeProtocol(p *Protocol, pulses []Pulse) (int, uint64, bool) {
	n := len(pulses)
	if !p.AddLastPulse && pulses[n-1].Duration == 0 {
		n--
	}

	cursor := 0
	if pulses[cursor].Level != p.ActiveLevel() {
		// extra leading edge
		cursor++
	}
	if cursor+1 >= len(pulses) {
		return 0, 0, false
	}

	// The sync pair is only present when its gap was shorter than the
	// capture idle threshold.
	if Match(pulses[cursor].Duration, pulses[cursor+1].Duration, p.PulseUs,
		p.Sync, p.Tolerance, cursor <= widenedPositions, false) {
		cursor += 2
	}

	var (
		bits  int
		value uint64
	)
	for cursor < n-1 {
		high, low := pulses[cursor].Duration, pulses[cursor+1].Duration
		widen := cursor <= widenedPositions
		last := cursor == n-2

		switch {
		case Match(high, low, p.PulseUs, p.Zero, p.Tolerance, widen, last):
			value <<= 1
		case Match(high, low, p.PulseUs, p.One, p.Tolerance, widen, last):
			value = value<<1 | 1
		default:
			return 0, 0, false
		}
		cursor += 2
		bits++
		if bits > MaxBits {
			return 0, 0, false
		}
	}
	return bits, value, cursor >= n-1
}

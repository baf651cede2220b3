package capture

import (
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
)

// Config holds the thresholds used to split and validate trains.
type Config struct {
	// Idle is the gap with no edges that ends a train.
	Idle time.Duration
	// Glitch is the shortest pulse a valid train may contain.
	Glitch time.Duration
	// MinPairs is the shortest valid train, in high/low pairs.
	// A useful code carries at least 24 data bits and a few sync pulses.
	MinPairs int
}

// DefaultConfig returns the default capture thresholds.
func DefaultConfig() Config {
	return Config{
		Idle:     DefaultIdle,
		Glitch:   DefaultGlitch,
		MinPairs: DefaultMinPairs,
	}
}

// Valid reports whether a train is long enough and free of glitches.
// The trailing pulse is exempt from the glitch check because the capture
// may have cut it short.
func (c Config) Valid(pulses []rcscan.Pulse) bool {
	pairs := (len(pulses) + 1) / 2
	if pairs < c.MinPairs || len(pulses) == 0 {
		return false
	}
	minUs := c.Glitch.Microseconds()
	for i := 0; i < len(pulses)-1; i++ {
		if int64(pulses[i].Duration) < minUs {
			return false
		}
	}
	return true
}

// Assembler builds pulse trains from timestamped edges.
// Not safe for concurrent use; the caller must synchronize.
type Assembler struct {
	cfg     Config
	pulses  []rcscan.Pulse
	level   rcscan.Level // level since lastEdge
	last    int64        // µs
	started bool

	// Rejected counts trains dropped by Valid.
	Rejected int
}

// NewAssembler creates an Assembler using cfg.
func NewAssembler(cfg Config) *Assembler {
	return &Assembler{cfg: cfg}
}

// Edge records a transition to level at tsUs. When the gap since the
// previous edge exceeds the idle threshold, the train that gap ended is
// returned.
func (a *Assembler) Edge(tsUs int64, level rcscan.Level) (Train, bool) {
	if !a.started {
		a.started = true
		a.last = tsUs
		a.level = level
		return Train{}, false
	}

	var (
		train Train
		ok    bool
	)
	gap := tsUs - a.last
	if gap > a.cfg.Idle.Microseconds() {
		train, ok = a.finish()
	} else {
		a.pulses = append(a.pulses, rcscan.Pulse{
			Duration: rcscan.ClampDuration(gap),
			Level:    a.level,
		})
	}
	a.last = tsUs
	a.level = level
	return train, ok
}

// Flush ends the current train if no edge has arrived for longer than the
// idle threshold at nowUs.
func (a *Assembler) Flush(nowUs int64) (Train, bool) {
	if !a.started || nowUs-a.last <= a.cfg.Idle.Microseconds() {
		return Train{}, false
	}
	return a.finish()
}

// finish closes the current train. The idle phase that ended it was never
// measured, so it is recorded as a zero-length pulse.
func (a *Assembler) finish() (Train, bool) {
	if len(a.pulses) == 0 {
		return Train{}, false
	}
	pulses := append(a.pulses, rcscan.Pulse{Duration: 0, Level: a.level})
	a.pulses = nil

	if !a.cfg.Valid(pulses) {
		a.Rejected++
		return Train{}, false
	}
	return Train{
		Pulses:     pulses,
		CapturedUs: uint64(a.last + a.cfg.Idle.Microseconds()),
	}, true
}

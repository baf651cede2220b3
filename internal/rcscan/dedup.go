package rcscan

import "sync"

// Many transmitters repeat each code several times. Counting sync gaps and
// inter-frame delays, more than 20 distinct codes within one second does not
// happen in practice, so the log never needs to grow.
const (
	LogCapacity           = 20
	DuplicateWindowMillis = 1000
)

// LogEntry is one slot of the signal log.
type LogEntry struct {
	LastSeenMs uint64
	Bits       int
	Value      uint64
	Used       bool
}

// SignalLog remembers recently seen codes so repeats can be suppressed.
// It is safe for concurrent use; each Check runs under a single lock.
type SignalLog struct {
	mu        sync.Mutex
	entries   [LogCapacity]LogEntry
	matchBits bool
}

// LogOption configures a SignalLog.
type LogOption func(*SignalLog)

// WithBitCountMatch makes two codes equal only when both value and bit
// count agree. Without it, codes are compared by value alone.
func WithBitCountMatch() LogOption {
	return func(l *SignalLog) { l.matchBits = true }
}

// NewSignalLog creates an empty signal log.
func NewSignalLog(opts ...LogOption) *SignalLog {
	l := &SignalLog{}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check reports whether the code was already seen within the duplicate
// window and records this sighting. captureUs is the capture time in
// microseconds on a monotonic clock.
//
// When every slot holds a code seen within the window the new code is not
// recorded and Check returns false.
//
// TODO: value-only equality makes an 8-bit and a 24-bit code with the same
// value collide; make WithBitCountMatch the default once consumers of
// REPEAT events have been checked against it.
func (l *SignalLog) Check(captureUs uint64, bits int, value uint64) bool {
	nowMs := captureUs / 1000

	l.mu.Lock()
	defer l.mu.Unlock()

	free := -1
	for i := range l.entries {
		e := &l.entries[i]
		if e.Used && e.Value == value && (!l.matchBits || e.Bits == bits) {
			e.Bits = bits
			fresh := age(nowMs, e.LastSeenMs) > DuplicateWindowMillis
			e.LastSeenMs = nowMs
			return !fresh
		}
		if free < 0 && (!e.Used || age(nowMs, e.LastSeenMs) > DuplicateWindowMillis) {
			free = i
		}
	}

	if free >= 0 {
		l.entries[free] = LogEntry{LastSeenMs: nowMs, Bits: bits, Value: value, Used: true}
	}
	return false
}

// Entries returns a copy of the used log slots in index order.
func (l *SignalLog) Entries() []LogEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []LogEntry
	for _, e := range l.entries {
		if e.Used {
			out = append(out, e)
		}
	}
	return out
}

// age is zero when the clock appears to run backwards.
func age(nowMs, thenMs uint64) uint64 {
	if nowMs < thenMs {
		return 0
	}
	return nowMs - thenMs
}

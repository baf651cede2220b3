// Package rcscan decodes captured 433 MHz pulse trains into PWM remote-control
// codes and filters out repeated transmissions of the same code.
// This package has NO external dependencies (no GPIO, MQTT, OS, or clocks).
// Capture timestamps are always passed in by the caller.
package rcscan

// MaxPulseDuration is the longest pulse a capture can represent (15 bits).
const MaxPulseDuration = 1<<15 - 1

// Level is the logic level of a captured pulse.
type Level uint8

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

// Pulse is one phase of a pulse train: how long the line stayed at Level.
type Pulse struct {
	Duration uint16 // microseconds, at most MaxPulseDuration
	Level    Level
}

// ClampDuration converts a microsecond count into a pulse duration,
// saturating at MaxPulseDuration.
func ClampDuration(us int64) uint16 {
	if us < 0 {
		return 0
	}
	if us > MaxPulseDuration {
		return MaxPulseDuration
	}
	return uint16(us)
}

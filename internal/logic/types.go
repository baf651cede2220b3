// Package logic contains the pure decode pipeline for captured pulse trains.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via parameters.
package logic

import (
	"fmt"
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
)

// EventType distinguishes fresh codes from retransmissions.
type EventType string

const (
	EventCode   EventType = "CODE"
	EventRepeat EventType = "REPEAT"
)

// Event is a decoded remote-control code.
type Event struct {
	Timestamp time.Time
	Type      EventType
	Protocol  uint8
	Bits      int
	Value     uint64
}

// Duplicate reports whether the event repeats a code seen within the
// duplicate window.
func (e Event) Duplicate() bool {
	return e.Type == EventRepeat
}

// Hex returns the code value zero-padded to its bit width.
func (e Event) Hex() string {
	digits := (e.Bits + 3) / 4
	if digits == 0 {
		digits = 1
	}
	return fmt.Sprintf("%0*x", digits, e.Value)
}

// Input is one captured pulse train.
type Input struct {
	Pulses []rcscan.Pulse
	// CapturedUs is the capture time on the receiver's monotonic clock.
	CapturedUs uint64
	// Time is the wall-clock time used to stamp events.
	Time time.Time
}

// EventCounts tracks pipeline totals since startup.
type EventCounts struct {
	Trains     int
	Decoded    int
	Duplicates int
	Unmatched  int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	Counts    EventCounts
}

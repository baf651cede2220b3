package logic

import (
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
)

// Detector decodes pulse trains and classifies the resulting codes as
// fresh or repeated.
type Detector struct {
	decoder       *rcscan.Decoder
	signals       *rcscan.SignalLog
	startTime     time.Time
	eventCounts   EventCounts
	lastHeartbeat time.Time
	last          *Event
}

// NewDetector creates a detector that owns signals for its lifetime.
// The startTime is used for calculating uptime in heartbeat events.
func NewDetector(decoder *rcscan.Decoder, signals *rcscan.SignalLog, startTime time.Time) *Detector {
	return &Detector{
		decoder:       decoder,
		signals:       signals,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Process decodes one train. It returns nil when no protocol matched.
func (d *Detector) Process(input Input) *Event {
	d.eventCounts.Trains++

	res, ok := d.decoder.Decode(input.Pulses)
	if !ok {
		d.eventCounts.Unmatched++
		return nil
	}

	event := Event{
		Timestamp: input.Time,
		Type:      EventCode,
		Protocol:  res.Protocol.ID,
		Bits:      res.Bits,
		Value:     res.Value,
	}
	if d.signals.Check(input.CapturedUs, res.Bits, res.Value) {
		event.Type = EventRepeat
		d.eventCounts.Duplicates++
	} else {
		d.eventCounts.Decoded++
	}

	d.last = &event
	return &event
}

// LastEvent returns the most recently decoded code, fresh or repeated.
func (d *Detector) LastEvent() (Event, bool) {
	if d.last == nil {
		return Event{}, false
	}
	return *d.last, true
}

// EventCountsSnapshot returns a copy of the pipeline totals.
func (d *Detector) EventCountsSnapshot() EventCounts {
	return d.eventCounts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since the
// last heartbeat (or startup). Returns nil if the interval has not elapsed,
// or if interval is <= 0 (disabled).
func (d *Detector) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(d.lastHeartbeat) < interval {
		return nil
	}

	d.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(d.startTime),
		Counts:    d.eventCounts,
	}
}

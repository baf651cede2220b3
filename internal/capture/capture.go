// Package capture turns raw receiver output into pulse trains.
// The GPIO implementation timestamps edges on a Linux GPIO character device,
// the serial implementation reads trains from an external pulse streamer,
// and the fake implementation allows testing without hardware.
package capture

import (
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
)

// Train is one contiguous burst of pulses bounded by an idle gap.
type Train struct {
	Pulses []rcscan.Pulse
	// CapturedUs is the capture time in microseconds on a monotonic clock.
	CapturedUs uint64
}

// Source delivers captured pulse trains.
type Source interface {
	// Trains returns the channel trains are delivered on. It is closed
	// when the source stops.
	Trains() <-chan Train

	// Close releases capture resources.
	Close() error
}

// Default capture thresholds.
const (
	DefaultPin      = 27 // BCM numbering
	DefaultIdle     = 5 * time.Millisecond
	DefaultGlitch   = 100 * time.Microsecond
	DefaultMinPairs = 23
)

// trainBuffer is how many completed trains may wait for the consumer.
const trainBuffer = 16

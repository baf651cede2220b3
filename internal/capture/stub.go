//go:build !linux

package capture

import (
	"errors"

	"github.com/sweeney/rc-scanner/internal/rcscan"
)

// GPIOSource is not available on non-Linux platforms.
type GPIOSource struct{}

// NewGPIOSource returns an error on non-Linux platforms.
func NewGPIOSource(chipName string, pin int, cfg Config) (*GPIOSource, error) {
	return nil, errors.New("gpio: not supported on this platform (requires Linux)")
}

// Trains is not implemented on non-Linux platforms.
func (s *GPIOSource) Trains() <-chan Train {
	return nil
}

// Level is not implemented on non-Linux platforms.
func (s *GPIOSource) Level() (rcscan.Level, error) {
	return rcscan.Low, errors.New("gpio: not supported")
}

// Close is not implemented on non-Linux platforms.
func (s *GPIOSource) Close() error {
	return nil
}

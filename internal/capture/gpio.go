//go:build linux

package capture

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
	"github.com/warthog618/go-gpiocdev"
)

// GPIOSource captures pulse trains from a receiver data pin using edge
// events on the Linux GPIO character device.
type GPIOSource struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line

	mu        sync.Mutex
	asm       *Assembler
	lastEvent time.Time // wall time of the last edge, for idle flushing

	out  chan Train
	done chan struct{}
	wg   sync.WaitGroup
}

// NewGPIOSource requests pin on chip for both-edge events.
func NewGPIOSource(chipName string, pin int, cfg Config) (*GPIOSource, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	s := &GPIOSource{
		chip: chip,
		asm:  NewAssembler(cfg),
		out:  make(chan Train, trainBuffer),
		done: make(chan struct{}),
	}

	// Pull-down keeps the line quiet when the receiver is unplugged.
	line, err := chip.RequestLine(pin,
		gpiocdev.WithPullDown,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEventHandler(s.handleEvent))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request rx pin %d: %w", pin, err)
	}
	s.line = line

	s.wg.Add(1)
	go s.flushLoop(cfg.Idle)
	return s, nil
}

// Trains returns the channel completed trains are delivered on.
func (s *GPIOSource) Trains() <-chan Train {
	return s.out
}

// Level returns the current raw level of the receiver pin.
func (s *GPIOSource) Level() (rcscan.Level, error) {
	v, err := s.line.Value()
	if err != nil {
		return rcscan.Low, fmt.Errorf("read rx pin: %w", err)
	}
	if v == 0 {
		return rcscan.Low, nil
	}
	return rcscan.High, nil
}

func (s *GPIOSource) handleEvent(evt gpiocdev.LineEvent) {
	level := rcscan.Low
	if evt.Type == gpiocdev.LineEventRisingEdge {
		level = rcscan.High
	}

	s.mu.Lock()
	train, ok := s.asm.Edge(evt.Timestamp.Microseconds(), level)
	s.lastEvent = time.Now()
	s.mu.Unlock()

	if ok {
		s.deliver(train)
	}
}

// flushLoop ends trains whose final edge is followed by silence, since no
// further edge will arrive to close them.
func (s *GPIOSource) flushLoop(idle time.Duration) {
	defer s.wg.Done()

	ticker := time.NewTicker(idle)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.mu.Lock()
			var (
				train Train
				ok    bool
			)
			if !s.lastEvent.IsZero() {
				// Edge timestamps use the kernel clock; extrapolate from the last one.
				now := s.asm.last + time.Since(s.lastEvent).Microseconds()
				train, ok = s.asm.Flush(now)
			}
			s.mu.Unlock()
			if ok {
				s.deliver(train)
			}
		}
	}
}

func (s *GPIOSource) deliver(train Train) {
	select {
	case s.out <- train:
	default:
		log.Printf("capture: consumer busy, dropping %d-pulse train", len(train.Pulses))
	}
}

// Close stops edge delivery and releases GPIO resources.
// Reconfigures the pin to a plain pulled-down input before closing.
func (s *GPIOSource) Close() error {
	close(s.done)
	s.wg.Wait()

	var errs []error
	if s.line != nil {
		if err := s.line.Reconfigure(gpiocdev.AsInput, gpiocdev.WithPullDown); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure rx pin: %w", err))
		}
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close rx pin: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	close(s.out)

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

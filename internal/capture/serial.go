package capture

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/sweeney/rc-scanner/internal/rcscan"
	"go.bug.st/serial"
)

// PortOptions describes the serial link to an external pulse streamer.
type PortOptions struct {
	BaudRate int    `toml:"baud_rate"`
	DataBits int    `toml:"data_bits"`
	StopBits int    `toml:"stop_bits"`
	Parity   string `toml:"parity"`
}

// Normalize validates the options and applies defaults for any unset values.
func (o PortOptions) Normalize() (PortOptions, error) {
	opts := o

	if opts.BaudRate <= 0 {
		opts.BaudRate = 115200
	}
	if opts.DataBits == 0 {
		opts.DataBits = 8
	}
	if opts.DataBits < 5 || opts.DataBits > 8 {
		return opts, fmt.Errorf("invalid data bits %d: must be between 5 and 8", opts.DataBits)
	}
	if opts.StopBits == 0 {
		opts.StopBits = 1
	}
	if opts.StopBits != 1 && opts.StopBits != 2 {
		return opts, fmt.Errorf("invalid stop bits %d: supported values are 1 or 2", opts.StopBits)
	}

	parity := strings.TrimSpace(strings.ToUpper(opts.Parity))
	switch parity {
	case "", "N", "NONE":
		parity = "N"
	case "E", "EVEN":
		parity = "E"
	case "O", "ODD":
		parity = "O"
	default:
		return opts, fmt.Errorf("unsupported parity %q: expected N, E, or O", opts.Parity)
	}
	opts.Parity = parity
	return opts, nil
}

// SerialMode converts the options into the mode go.bug.st/serial expects.
func (o PortOptions) SerialMode() (*serial.Mode, error) {
	opts, err := o.Normalize()
	if err != nil {
		return nil, err
	}

	mode := &serial.Mode{
		BaudRate: opts.BaudRate,
		DataBits: opts.DataBits,
		StopBits: serial.OneStopBit,
		Parity:   serial.NoParity,
	}
	if opts.StopBits == 2 {
		mode.StopBits = serial.TwoStopBits
	}
	switch opts.Parity {
	case "E":
		mode.Parity = serial.EvenParity
	case "O":
		mode.Parity = serial.OddParity
	}
	return mode, nil
}

// ParseTrain parses one line from a pulse streamer: whitespace separated
// durations in microseconds, "+" for high and "-" for low, e.g.
// "+350 -10850 +350 -1050". Unsigned values count as high.
func ParseTrain(line string) ([]rcscan.Pulse, error) {
	fields := strings.Fields(line)
	pulses := make([]rcscan.Pulse, 0, len(fields))
	for _, f := range fields {
		level := rcscan.High
		switch f[0] {
		case '-':
			level = rcscan.Low
			f = f[1:]
		case '+':
			f = f[1:]
		}
		us, err := strconv.ParseUint(f, 10, 32)
		if err != nil {
			return nil, fmt.Errorf("parse pulse %q: %w", f, err)
		}
		if us > rcscan.MaxPulseDuration {
			us = rcscan.MaxPulseDuration
		}
		pulses = append(pulses, rcscan.Pulse{Duration: uint16(us), Level: level})
	}
	return pulses, nil
}

// SerialSource reads pulse trains from a streamer on a serial port,
// one train per line. Lines starting with '#' are ignored.
type SerialSource struct {
	rc  io.ReadCloser
	cfg Config
	now func() uint64

	out  chan Train
	wg   sync.WaitGroup
	once sync.Once
}

// NewSerialSource opens path with opts and starts reading trains.
func NewSerialSource(path string, opts PortOptions, cfg Config) (*SerialSource, error) {
	mode, err := opts.SerialMode()
	if err != nil {
		return nil, fmt.Errorf("serial options: %w", err)
	}
	port, err := serial.Open(path, mode)
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", path, err)
	}
	return newSerialSource(port, cfg, monotonicMicros()), nil
}

func newSerialSource(rc io.ReadCloser, cfg Config, now func() uint64) *SerialSource {
	s := &SerialSource{
		rc:  rc,
		cfg: cfg,
		now: now,
		out: make(chan Train, trainBuffer),
	}
	s.wg.Add(1)
	go s.readLoop()
	return s
}

// Trains returns the channel completed trains are delivered on.
func (s *SerialSource) Trains() <-chan Train {
	return s.out
}

func (s *SerialSource) readLoop() {
	defer s.wg.Done()
	defer close(s.out)

	scanner := bufio.NewScanner(s.rc)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		pulses, err := ParseTrain(line)
		if err != nil {
			log.Printf("capture: serial: %v", err)
			continue
		}
		if !s.cfg.Valid(pulses) {
			continue
		}
		s.out <- Train{Pulses: pulses, CapturedUs: s.now()}
	}
	if err := scanner.Err(); err != nil {
		log.Printf("capture: serial read stopped: %v", err)
	}
}

// Close closes the port and waits for the reader to stop.
func (s *SerialSource) Close() error {
	var err error
	s.once.Do(func() {
		err = s.rc.Close()
		// Unblock a reader waiting on a full channel.
		go func() {
			for range s.out {
			}
		}()
		s.wg.Wait()
	})
	if err != nil {
		return fmt.Errorf("close serial port: %w", err)
	}
	return nil
}

// monotonicMicros returns a clock counting microseconds since it was made.
func monotonicMicros() func() uint64 {
	start := time.Now()
	return func() uint64 {
		return uint64(time.Since(start).Microseconds())
	}
}

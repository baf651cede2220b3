// Package config loads rc-scanner settings from an optional TOML file.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/sweeney/rc-scanner/internal/capture"
)

// Capture sources.
const (
	SourceGPIO   = "gpio"
	SourceSerial = "serial"
)

// Config holds everything the daemon needs to start.
type Config struct {
	Source string
	Chip   string
	Pin    int

	SerialPort string
	Serial     capture.PortOptions

	Idle     time.Duration
	Glitch   time.Duration
	MinPairs int

	Broker   string
	ClientID string

	Heartbeat      time.Duration
	HTTPAddr       string
	StrictDedup    bool
	PublishRepeats bool
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Source:    SourceGPIO,
		Chip:      "gpiochip0",
		Pin:       capture.DefaultPin,
		Idle:      capture.DefaultIdle,
		Glitch:    capture.DefaultGlitch,
		MinPairs:  capture.DefaultMinPairs,
		Broker:    "tcp://192.168.1.200:1883",
		ClientID:  "rc-scanner",
		Heartbeat: 15 * time.Minute,
		HTTPAddr:  ":80",
	}
}

type fileConfig struct {
	Source         string              `toml:"source"`
	Chip           string              `toml:"chip"`
	Pin            int                 `toml:"pin"`
	SerialPort     string              `toml:"serial_port"`
	Serial         capture.PortOptions `toml:"serial"`
	Idle           string              `toml:"idle"`
	Glitch         string              `toml:"glitch"`
	MinPairs       int                 `toml:"min_pairs"`
	Broker         string              `toml:"broker"`
	ClientID       string              `toml:"client_id"`
	Heartbeat      string              `toml:"heartbeat"`
	HTTPAddr       string              `toml:"http"`
	StrictDedup    bool                `toml:"strict_dedup"`
	PublishRepeats bool                `toml:"publish_repeats"`
}

// Load reads path and overlays the keys it defines onto Default.
func Load(path string) (Config, error) {
	cfg := Default()

	var raw fileConfig
	meta, err := toml.DecodeFile(path, &raw)
	if err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return Config{}, fmt.Errorf("load config: unknown key %q", undecoded[0].String())
	}

	if meta.IsDefined("source") {
		cfg.Source = strings.ToLower(strings.TrimSpace(raw.Source))
	}
	if meta.IsDefined("chip") {
		cfg.Chip = strings.TrimSpace(raw.Chip)
	}
	if meta.IsDefined("pin") {
		cfg.Pin = raw.Pin
	}
	if meta.IsDefined("serial_port") {
		cfg.SerialPort = strings.TrimSpace(raw.SerialPort)
	}
	if meta.IsDefined("serial") {
		cfg.Serial = raw.Serial
	}

	for _, d := range []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"idle", raw.Idle, &cfg.Idle},
		{"glitch", raw.Glitch, &cfg.Glitch},
		{"heartbeat", raw.Heartbeat, &cfg.Heartbeat},
	} {
		if !meta.IsDefined(d.key) {
			continue
		}
		v, err := time.ParseDuration(strings.TrimSpace(d.raw))
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if meta.IsDefined("min_pairs") {
		cfg.MinPairs = raw.MinPairs
	}
	if meta.IsDefined("broker") {
		cfg.Broker = strings.TrimSpace(raw.Broker)
	}
	if meta.IsDefined("client_id") {
		cfg.ClientID = strings.TrimSpace(raw.ClientID)
	}
	if meta.IsDefined("http") {
		cfg.HTTPAddr = strings.TrimSpace(raw.HTTPAddr)
	}
	if meta.IsDefined("strict_dedup") {
		cfg.StrictDedup = raw.StrictDedup
	}
	if meta.IsDefined("publish_repeats") {
		cfg.PublishRepeats = raw.PublishRepeats
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate reports the first setting that cannot be used.
func (c Config) Validate() error {
	switch c.Source {
	case SourceGPIO:
		if c.Pin < 0 {
			return fmt.Errorf("invalid pin %d", c.Pin)
		}
		if c.Chip == "" {
			return fmt.Errorf("chip is required for gpio source")
		}
	case SourceSerial:
		if c.SerialPort == "" {
			return fmt.Errorf("serial_port is required for serial source")
		}
		if _, err := c.Serial.Normalize(); err != nil {
			return fmt.Errorf("serial: %w", err)
		}
	default:
		return fmt.Errorf("unknown source %q: expected %s or %s", c.Source, SourceGPIO, SourceSerial)
	}

	if c.Idle <= 0 {
		return fmt.Errorf("idle must be positive, got %v", c.Idle)
	}
	if c.Glitch < 0 || c.Glitch >= c.Idle {
		return fmt.Errorf("glitch %v must be between 0 and idle %v", c.Glitch, c.Idle)
	}
	if c.MinPairs < 0 {
		return fmt.Errorf("min_pairs must not be negative, got %d", c.MinPairs)
	}
	if c.Heartbeat < 0 {
		return fmt.Errorf("heartbeat must not be negative, got %v", c.Heartbeat)
	}
	if c.Broker == "" {
		return fmt.Errorf("broker is required")
	}
	return nil
}

// Capture returns the train assembly settings.
func (c Config) Capture() capture.Config {
	return capture.Config{
		Idle:     c.Idle,
		Glitch:   c.Glitch,
		MinPairs: c.MinPairs,
	}
}

// Input names the capture input for display: the pin number or the
// serial device.
func (c Config) Input() string {
	if c.Source == SourceSerial {
		return c.SerialPort
	}
	return c.Chip + ":" + strconv.Itoa(c.Pin)
}

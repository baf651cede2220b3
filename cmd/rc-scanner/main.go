// Command rc-scanner decodes 433 MHz remote-control codes and publishes them to MQTT.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/rc-scanner/internal/capture"
	"github.com/sweeney/rc-scanner/internal/config"
	"github.com/sweeney/rc-scanner/internal/logic"
	"github.com/sweeney/rc-scanner/internal/mqtt"
	"github.com/sweeney/rc-scanner/internal/rcscan"
	"github.com/sweeney/rc-scanner/internal/status"
	"github.com/sweeney/rc-scanner/internal/web"
)

// housekeeping is how often heartbeat and connection state are checked.
const housekeeping = time.Second

type options struct {
	cfg           config.Config
	listProtocols bool
	printLevel    bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if opts.listProtocols {
		printProtocols(os.Stdout, rcscan.Protocols())
		return
	}
	if opts.printLevel {
		if err := printLevel(opts.cfg); err != nil {
			log.Fatalf("fatal: %v", err)
		}
		return
	}

	if err := run(opts.cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

// parseFlags builds the configuration from defaults, the optional -config
// file, then any flags given explicitly on the command line.
func parseFlags(args []string) (options, error) {
	def := config.Default()
	fs := flag.NewFlagSet("rc-scanner", flag.ContinueOnError)

	configPath := fs.String("config", "", "TOML config file (explicit flags override it)")
	source := fs.String("source", def.Source, `Capture source: "gpio" or "serial"`)
	chip := fs.String("chip", def.Chip, "GPIO chip name")
	pin := fs.Int("pin", def.Pin, "BCM pin number of the receiver data line")
	serialPort := fs.String("serial-port", def.SerialPort, "Serial device of an external pulse streamer")
	baud := fs.Int("baud", 0, "Serial baud rate (default 115200)")
	idle := fs.Duration("idle", def.Idle, "Gap that ends a pulse train")
	glitch := fs.Duration("glitch", def.Glitch, "Shortest pulse accepted in a train")
	minPairs := fs.Int("min-pairs", def.MinPairs, "Shortest accepted train in high/low pairs")
	broker := fs.String("broker", def.Broker, "MQTT broker address")
	clientID := fs.String("client-id", def.ClientID, "MQTT client ID")
	heartbeat := fs.Duration("heartbeat", def.Heartbeat, "Heartbeat interval (0 to disable)")
	httpAddr := fs.String("http", def.HTTPAddr, "HTTP status address (empty to disable)")
	strictDedup := fs.Bool("strict-dedup", def.StrictDedup, "Treat codes with equal value but different bit count as distinct")
	publishRepeats := fs.Bool("publish-repeats", def.PublishRepeats, "Also publish retransmissions of a recent code")
	listProtocols := fs.Bool("list-protocols", false, "Print the protocol table and exit")
	printLevelFlag := fs.Bool("print-level", false, "Print the current receiver line level and exit")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	cfg := def
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return options{}, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "source":
			cfg.Source = *source
		case "chip":
			cfg.Chip = *chip
		case "pin":
			cfg.Pin = *pin
		case "serial-port":
			cfg.SerialPort = *serialPort
		case "baud":
			cfg.Serial.BaudRate = *baud
		case "idle":
			cfg.Idle = *idle
		case "glitch":
			cfg.Glitch = *glitch
		case "min-pairs":
			cfg.MinPairs = *minPairs
		case "broker":
			cfg.Broker = *broker
		case "client-id":
			cfg.ClientID = *clientID
		case "heartbeat":
			cfg.Heartbeat = *heartbeat
		case "http":
			cfg.HTTPAddr = *httpAddr
		case "strict-dedup":
			cfg.StrictDedup = *strictDedup
		case "publish-repeats":
			cfg.PublishRepeats = *publishRepeats
		}
	})

	if err := cfg.Validate(); err != nil {
		return options{}, fmt.Errorf("config: %w", err)
	}
	return options{cfg: cfg, listProtocols: *listProtocols, printLevel: *printLevelFlag}, nil
}

func printProtocols(w io.Writer, reg rcscan.Registry) {
	fmt.Fprintf(w, "%-4s %-6s %-4s %-6s %-6s %-6s %s\n", "ID", "UNIT", "TOL", "SYNC", "ZERO", "ONE", "FLAGS")
	for _, p := range reg {
		flags := ""
		if p.Inverted {
			flags += "inverted "
		}
		if p.AddLastPulse {
			flags += "add-last-pulse"
		}
		fmt.Fprintf(w, "%-4d %-6d %-4d %-6s %-6s %-6s %s\n",
			p.ID, p.PulseUs, p.Tolerance,
			fmt.Sprintf("%d:%d", p.Sync.High, p.Sync.Low),
			fmt.Sprintf("%d:%d", p.Zero.High, p.Zero.Low),
			fmt.Sprintf("%d:%d", p.One.High, p.One.Low),
			flags)
	}
}

func printLevel(cfg config.Config) error {
	src, err := capture.NewGPIOSource(cfg.Chip, cfg.Pin, cfg.Capture())
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer src.Close()

	level, err := src.Level()
	if err != nil {
		return fmt.Errorf("read gpio: %w", err)
	}
	fmt.Printf("%s pin %d: %s\n", cfg.Chip, cfg.Pin, level)
	return nil
}

func openSource(cfg config.Config) (capture.Source, error) {
	if cfg.Source == config.SourceSerial {
		return capture.NewSerialSource(cfg.SerialPort, cfg.Serial, cfg.Capture())
	}
	return capture.NewGPIOSource(cfg.Chip, cfg.Pin, cfg.Capture())
}

func run(cfg config.Config) error {
	source, err := openSource(cfg)
	if err != nil {
		return fmt.Errorf("init capture: %w", err)
	}
	defer source.Close()

	publisher, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	registry := rcscan.Protocols()
	var logOpts []rcscan.LogOption
	if cfg.StrictDedup {
		logOpts = append(logOpts, rcscan.WithBitCountMatch())
	}

	startTime := time.Now()
	detector := logic.NewDetector(rcscan.NewDecoder(registry), rcscan.NewSignalLog(logOpts...), startTime)

	// Initialize status tracker (before STARTUP so snapshot is available)
	tracker := status.NewTracker(startTime, status.Config{
		Source:      cfg.Source,
		Input:       cfg.Input(),
		IdleUs:      cfg.Idle.Microseconds(),
		GlitchUs:    cfg.Glitch.Microseconds(),
		MinPairs:    cfg.MinPairs,
		Protocols:   len(registry),
		StrictDedup: cfg.StrictDedup,
		HeartbeatMs: cfg.Heartbeat.Milliseconds(),
		Broker:      cfg.Broker,
		HTTPAddr:    cfg.HTTPAddr,
	})
	tracker.SetMQTTConnected(publisher.IsConnected())
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, registry)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: source=%s input=%s idle=%v glitch=%v min_pairs=%d protocols=%d broker=%s heartbeat=%v",
		cfg.Source, cfg.Input(), cfg.Idle, cfg.Glitch, cfg.MinPairs, len(registry), cfg.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(housekeeping)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(source, publisher, publisher, tracker, detector, cfg.Heartbeat, cfg.PublishRepeats, time.Now, ticker.C, sigCh)
}

func runLoop(source capture.Source, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, detector *logic.Detector, heartbeat time.Duration, publishRepeats bool, now func() time.Time, tick <-chan time.Time, sig <-chan os.Signal) error {
	trains := source.Trains()

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			publishShutdown(publisher, mqttStatus, tracker, now(), signalName)
			return nil

		case train, ok := <-trains:
			if !ok {
				log.Printf("capture source stopped")
				publishShutdown(publisher, mqttStatus, tracker, now(), "SOURCE_CLOSED")
				return errors.New("capture source closed")
			}

			event := detector.Process(logic.Input{
				Pulses:     train.Pulses,
				CapturedUs: train.CapturedUs,
				Time:       now(),
			})

			if event != nil {
				log.Printf("%s: protocol=%d bits=%d value=0x%s", event.Type, event.Protocol, event.Bits, event.Hex())
				if !event.Duplicate() || publishRepeats {
					if err := publisher.Publish(*event); err != nil {
						log.Printf("publish error: %v", err)
						// Don't crash on publish failure
					}
				}
			}

			// Update status tracker for HTTP consumers
			if tracker != nil {
				tracker.Update(detector.EventCountsSnapshot(), event)
			}

		case <-tick:
			t := now()
			if tracker != nil && mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}

			hbData := detector.CheckHeartbeat(t, heartbeat)
			if hbData == nil {
				continue
			}
			log.Printf("heartbeat: uptime=%v trains=%d decoded=%d duplicates=%d unmatched=%d",
				hbData.Uptime, hbData.Counts.Trains, hbData.Counts.Decoded, hbData.Counts.Duplicates, hbData.Counts.Unmatched)

			hbEvent := mqtt.SystemEvent{
				Timestamp: hbData.Timestamp,
				Event:     "HEARTBEAT",
			}
			if tracker != nil {
				// Refresh network info for heartbeat
				if net := readNetworkInfo(); net != nil {
					tracker.SetNetwork(net)
				}
				tracker.Update(hbData.Counts, nil)
				hbEvent.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "HEARTBEAT", "")
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}
		}
	}
}

func publishShutdown(publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, t time.Time, reason string) {
	event := mqtt.SystemEvent{
		Timestamp: t,
		Event:     "SHUTDOWN",
		Reason:    reason,
		Retained:  true,
	}
	if tracker != nil {
		if mqttStatus != nil {
			tracker.SetMQTTConnected(mqttStatus.IsConnected())
		}
		event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", reason)
	}
	if err := publisher.PublishSystem(event); err != nil {
		log.Printf("failed to publish shutdown event: %v", err)
	} else {
		log.Printf("published shutdown event")
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

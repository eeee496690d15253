// Smart Bin device firmware.
//
// This binary runs on a bin: it drives the lid, reads the fill and
// proximity sensors, forwards RFID scans, and obeys the control plane
// over MQTT. Without real hardware attached it runs against simulated
// sensors, which is how it is exercised in development; RFID scans are
// then read line by line from stdin.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/smartbin-iot/smartbin-core/internal/firmware"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/config"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configPath := flag.String("config", defaultConfigPath, "path to config.yaml")
	binID := flag.String("bin-id", "", "override the configured bin ID")
	flag.Parse()

	log := logging.Default()
	log.Info("starting Smart Bin device",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *binID != "" {
		cfg.Device.BinID = *binID
	}
	if cfg.Device.BinID == "" {
		return errors.New("device bin_id is required (config device.bin_id or -bin-id)")
	}

	log = logging.New(cfg.Logging, version).With("bin_id", cfg.Device.BinID)

	// Each device needs its own broker identity, and its last will lets
	// the control plane see an ungraceful death as "offline".
	topics := mqtt.Topics{}
	mqttCfg := cfg.MQTT
	mqttCfg.Broker.ClientID = "bin-device-" + cfg.Device.BinID

	client, err := mqtt.Connect(mqttCfg, &mqtt.Will{
		Topic:    topics.Status(cfg.Device.BinID),
		Payload:  mqtt.StatusOffline,
		QoS:      1,
		Retained: false,
	})
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	client.SetLogger(log.With("component", "mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", mqttCfg.Broker.Host, mqttCfg.Broker.Port),
		"client_id", mqttCfg.Broker.ClientID,
	)

	// Simulated hardware. On a real bin these constructors are replaced
	// by the GPIO-backed implementations.
	fill := firmware.NewDistanceSensor(newSimFillPulser(cfg.Device.CapacityCM))
	proximity := firmware.NewDistanceSensor(newSimProximityPulser())
	lid := firmware.NewLidActuator(simPositioner{log: log})
	if cfg.Device.SettleDelay > 0 {
		lid.SetSettleDelay(cfg.Device.SettleDelay)
	}

	reader := newStdinTagReader()
	go reader.watch(ctx, log)

	device := firmware.NewDevice(cfg.Device, client, proximity, fill, lid, reader, log)

	log.Info("device running", "mode", cfg.Device.Mode)
	return device.Run(ctx)
}

// stdinTagReader turns stdin lines into RFID scans for simulation.
type stdinTagReader struct {
	scans chan string
}

func newStdinTagReader() *stdinTagReader {
	return &stdinTagReader{scans: make(chan string, 4)}
}

// watch reads stdin until EOF or cancellation.
func (r *stdinTagReader) watch(ctx context.Context, log *logging.Logger) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		uid := strings.TrimSpace(scanner.Text())
		if uid == "" {
			continue
		}
		select {
		case r.scans <- uid:
		case <-ctx.Done():
			return
		default:
			log.Warn("discarding scan, queue full", "uid", uid)
		}
	}
}

// Poll implements firmware.TagReader.
func (r *stdinTagReader) Poll() (string, bool) {
	select {
	case uid := <-r.scans:
		return uid, true
	default:
		return "", false
	}
}

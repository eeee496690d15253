// Smart Bin control plane.
//
// This is the backend half of the Smart Bin system: it routes device
// traffic from the MQTT broker, makes the access and fill-level
// decisions, distributes configuration, and serves the admin API.
// Bin devices run the bin-device binary instead.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/smartbin-iot/smartbin-core/migrations"

	"github.com/smartbin-iot/smartbin-core/internal/api"
	"github.com/smartbin-iot/smartbin-core/internal/bin"
	"github.com/smartbin-iot/smartbin-core/internal/control"
	"github.com/smartbin-iot/smartbin-core/internal/credential"
	"github.com/smartbin-iot/smartbin-core/internal/eventlog"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/config"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/database"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/influxdb"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/logging"
	"github.com/smartbin-iot/smartbin-core/internal/infrastructure/mqtt"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting Smart Bin control plane",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open database
	db, err := database.Open(database.Config{
		Path:        cfg.Database.Path,
		WALMode:     cfg.Database.WALMode,
		BusyTimeout: cfg.Database.BusyTimeout,
	})
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		log.Info("closing database")
		if closeErr := db.Close(); closeErr != nil {
			log.Error("error closing database", "error", closeErr)
		}
	}()
	log.Info("database connected", "path", cfg.Database.Path)

	// Run migrations
	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories over the shared database
	binRepo := bin.NewSQLiteRepository(db.DB)
	credRepo := credential.NewSQLiteRepository(db.DB)
	eventRepo := eventlog.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker. The control plane has no last will; only
	// devices announce presence.
	mqttClient, err := mqtt.Connect(cfg.MQTT, nil)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.With("component", "mqtt"))
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	// Optional fill-level history in InfluxDB
	var metrics control.MetricsWriter
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case err == nil:
		defer func() {
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(writeErr error) {
			log.Error("InfluxDB write failed", "error", writeErr)
		})
		metrics = influxClient
		log.Info("InfluxDB connected", "url", cfg.InfluxDB.URL, "bucket", cfg.InfluxDB.Bucket)
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled, fill-level history not recorded")
	default:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	}

	// Business handlers
	resolver := control.NewResolver(binRepo, credRepo, eventRepo, mqttClient, log)
	engine := control.NewEngine(binRepo, eventRepo, mqttClient, metrics, log)
	tracker := control.NewTracker(binRepo, eventRepo, metrics, log)
	distributor := control.NewDistributor(binRepo, eventRepo, mqttClient, log)
	commander := control.NewCommander(binRepo, eventRepo, mqttClient, log)

	// Dispatcher: per-bin ordered routing into the handlers
	dispatcher := control.NewDispatcher(log)
	dispatcher.Handle("data", engine.HandleReading)
	dispatcher.Handle("rfid_check", resolver.HandleScan)
	dispatcher.Handle("status", tracker.HandleStatus)
	dispatcher.Start()
	defer dispatcher.Stop()

	topics := mqtt.Topics{}
	for _, sub := range []struct {
		topic string
		qos   byte
	}{
		{topics.AllTelemetry(), 0},
		{topics.AllRFIDChecks(), 1},
		{topics.AllStatus(), 1},
	} {
		if subErr := mqttClient.Subscribe(sub.topic, sub.qos, dispatcher.Route); subErr != nil {
			return fmt.Errorf("subscribing to %s: %w", sub.topic, subErr)
		}
	}
	log.Info("device topics subscribed")

	// Admin API
	server, err := api.New(api.Deps{
		Config:      cfg.API,
		Logger:      log,
		Bins:        binRepo,
		Credentials: credRepo,
		Events:      eventRepo,
		Distributor: distributor,
		Commander:   commander,
		Database:    db,
		Broker:      mqttClient,
		Version:     version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := server.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	log.Info("Smart Bin control plane running")
	<-ctx.Done()
	log.Info("shutdown signal received")

	return nil
}

// getConfigPath returns the configuration file path from the command line
// or the default.
func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if env := os.Getenv("SMARTBIN_CONFIG"); env != "" {
		return env
	}
	return defaultConfigPath
}

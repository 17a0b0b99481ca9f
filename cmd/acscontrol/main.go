// ACS Control Core - telemetry ingestion and configuration sync
//
// This is the main entry point for the ACS Control core service. It
// connects the MQTT broker, the SQLite store and the background
// scheduler that keeps device configuration in sync:
//   - Devices publish telemetry on ACS_Control/<mac>/Temperatura
//   - Devices pull configuration via ACS_Control/<mac>/ConfigRequest
//   - Operator changes are pushed on ACS_Control/<mac>/ConfigUpdate
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/dmorante/acs-control-core/migrations"

	"github.com/dmorante/acs-control-core/internal/api"
	"github.com/dmorante/acs-control-core/internal/configsync"
	"github.com/dmorante/acs-control-core/internal/device"
	"github.com/dmorante/acs-control-core/internal/infrastructure/config"
	"github.com/dmorante/acs-control-core/internal/infrastructure/database"
	"github.com/dmorante/acs-control-core/internal/infrastructure/influxdb"
	"github.com/dmorante/acs-control-core/internal/infrastructure/logging"
	"github.com/dmorante/acs-control-core/internal/infrastructure/mqtt"
	"github.com/dmorante/acs-control-core/internal/telemetry"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
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

// run is the actual application logic, separated from main for
// testability. Returning an error allows main to handle exit codes
// consistently.
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting ACS Control Core",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)

	// Open database and apply migrations
	db, err := database.Open(ctx, database.Config{
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
	log.Info("database connected", "path", db.Path())

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	// Repositories
	deviceRepo := device.NewSQLiteRepository(db.DB)
	stateRepo := device.NewSQLiteStateRepository(db.DB)
	measurementRepo := telemetry.NewSQLiteRepository(db.DB)

	// Connect to MQTT broker. A failed initial connection is fatal; the
	// client reconnects on its own after that.
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	mqttClient.SetLogger(log)
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})

	// Connect to InfluxDB (optional telemetry mirror)
	var influxClient *influxdb.Client
	var mirror telemetry.Mirror
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		mirror = influxClient
		log.Info("InfluxDB mirror connected",
			"url", cfg.InfluxDB.URL,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB mirror disabled")
	}

	// Wire the message pipeline: router classifies, ingest and config
	// services handle.
	ingestService := telemetry.NewService(measurementRepo, deviceRepo, mirror, log)
	configService := configsync.NewService(stateRepo, mqttClient, log)
	router := configsync.NewRouter(ctx, ingestService, configService, log)

	topics := mqtt.Topics{}
	qos := byte(cfg.MQTT.QoS)
	if err := mqttClient.Subscribe(topics.TelemetrySubscription(), qos, router.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to telemetry: %w", err)
	}
	if err := mqttClient.Subscribe(topics.ConfigRequestSubscription(), qos, router.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to config requests: %w", err)
	}
	log.Info("subscriptions established",
		"telemetry", topics.TelemetrySubscription(),
		"config_requests", topics.ConfigRequestSubscription(),
	)

	// Start the change-detection scheduler
	scheduler := configsync.NewScheduler(deviceRepo, stateRepo, mqttClient, log, cfg.Scheduler.GetPollInterval())
	go scheduler.Run(ctx)
	log.Info("scheduler started", "poll_interval", cfg.Scheduler.GetPollInterval())

	// Start the report API (optional)
	if cfg.API.Enabled {
		reportServer, err := api.New(api.Deps{
			Config:       cfg.API,
			Logger:       log,
			Measurements: measurementRepo,
			Version:      version,
		})
		if err != nil {
			return fmt.Errorf("creating report server: %w", err)
		}
		if err := reportServer.Start(ctx); err != nil {
			return fmt.Errorf("starting report server: %w", err)
		}
		defer func() {
			log.Info("stopping report server")
			if closeErr := reportServer.Close(); closeErr != nil {
				log.Error("error closing report server", "error", closeErr)
			}
		}()
	} else {
		log.Info("report API disabled")
	}

	// Verify all connections are healthy
	if err := healthCheck(ctx, db, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. Report server (if enabled)
	// 2. InfluxDB (if enabled)
	// 3. MQTT
	// 4. Database

	log.Info("ACS Control Core stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses ACSCONTROL_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("ACSCONTROL_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when the mirror is disabled.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}

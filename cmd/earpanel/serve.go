package main

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/nerrad567/earpanel-core/internal/api"
	"github.com/nerrad567/earpanel-core/internal/bus"
	"github.com/nerrad567/earpanel-core/internal/control"
	"github.com/nerrad567/earpanel-core/internal/device"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/config"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/database"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/logging"
	"github.com/nerrad567/earpanel-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/earpanel-core/internal/journal"
	"github.com/nerrad567/earpanel-core/internal/session"
	"github.com/nerrad567/earpanel-core/internal/telemetry"
	"github.com/nerrad567/earpanel-core/migrations"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the control panel daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), configPath(cmd), nil)
		},
	}
}

// run is the daemon, separated from the command for testability.
// It blocks until ctx is cancelled. ready, when non-nil, receives the API
// listen address once every component is up.
func run(ctx context.Context, path string, ready chan<- string) error {
	// Use default logger until config is loaded
	log := logging.Default()

	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ver := buildVersion()
	log = logging.New(cfg.Logging, ver)
	log.Info("starting earpanel", "version", ver, "panel", cfg.Panel.ID, "config", path)

	cat, err := loadCatalog(cfg.Panel.CatalogFile)
	if err != nil {
		return err
	}
	registry, err := device.NewRegistry(cat.Devices)
	if err != nil {
		return fmt.Errorf("creating device registry: %w", err)
	}
	registry.SetLogger(log.Component("registry"))
	log.Info("device registry initialised",
		"devices", registry.Count(),
		"discoverable", len(cat.Discoverable),
	)

	ctrl := session.NewController(registry, session.Options{
		ScanDuration:     cfg.ScanDuration(),
		FirmwareDuration: cfg.FirmwareUpdateDuration(),
		Discoverable:     cat.Discoverable,
		Preferences:      control.PreferencesFromConfig(cfg.Preferences),
		Logger:           log.Component("session"),
	})
	defer func() {
		if closeErr := ctrl.Close(); closeErr != nil {
			log.Error("error closing session", "error", closeErr)
		}
	}()
	ctrl.AddSink(eventLogger(log.Component("events")))

	checks := make(map[string]api.HealthChecker)

	// Activity journal (optional)
	var store *journal.Store
	if cfg.Database.Enabled {
		db, openErr := database.Open(database.ConfigFrom(cfg.Database))
		if openErr != nil {
			return fmt.Errorf("opening database: %w", openErr)
		}
		defer func() {
			log.Info("closing database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing database", "error", closeErr)
			}
		}()
		if migrateErr := db.Migrate(ctx, migrations.Source()); migrateErr != nil {
			return fmt.Errorf("running migrations: %w", migrateErr)
		}
		log.Info("database connected", "path", db.Path())

		store = journal.NewStore(db.DB)
		recorder := journal.NewRecorder(store, journal.RecorderOptions{
			Retention: cfg.JournalRetention(),
			Logger:    log.Component("journal"),
		})
		ctrl.AddSink(recorder)
		recCtx, stopRecorder := context.WithCancel(ctx)
		go recorder.Run(recCtx)
		// Runs before the database defer above.
		defer func() {
			stopRecorder()
			<-recorder.Done()
		}()
		checks["database"] = db
	} else {
		log.Info("activity journal disabled")
	}

	// MQTT bridge (optional)
	if cfg.MQTT.Enabled {
		mqttClient, connErr := mqtt.Connect(cfg.MQTT)
		if connErr != nil {
			return fmt.Errorf("connecting to MQTT: %w", connErr)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		mqttClient.SetLogger(log.Component("mqtt"))
		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})
		log.Info("MQTT connected",
			"broker", net.JoinHostPort(cfg.MQTT.Broker.Host, strconv.Itoa(cfg.MQTT.Broker.Port)),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		qos := byte(cfg.MQTT.QoS) //nolint:gosec // validated to 0..2
		publisher := bus.NewPublisher(mqttClient, ctrl, qos, log.Component("bus"))
		ctrl.AddSink(publisher)
		go publisher.Run(ctx)

		if subErr := bus.NewCommands(ctrl).Subscribe(mqttClient, qos); subErr != nil {
			return fmt.Errorf("subscribing to MQTT commands: %w", subErr)
		}
		log.Info("MQTT command router ready", "subscriptions", mqttClient.SubscriptionCount())
		checks["mqtt"] = mqttClient
	} else {
		log.Info("MQTT disabled")
	}

	// Battery telemetry (optional)
	if cfg.InfluxDB.Enabled {
		influxClient, connErr := influxdb.Connect(cfg.InfluxDB)
		if connErr != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", connErr)
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		ctrl.AddSink(telemetry.NewSink(influxClient))
		checks["influxdb"] = influxClient
	} else {
		log.Info("InfluxDB disabled")
	}

	srv, err := api.New(api.Deps{
		Config:     cfg.API,
		WS:         cfg.WebSocket,
		Logger:     log.Component("api"),
		Controller: ctrl,
		Journal:    store,
		Checks:     checks,
		Version:    ver,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := srv.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		if closeErr := srv.Close(); closeErr != nil {
			log.Error("error stopping API server", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")
	if ready != nil {
		ready <- srv.Addr()
	}

	<-ctx.Done()
	log.Info("shutdown signal received, cleaning up")

	// Deferred calls run in reverse order: API, InfluxDB, MQTT,
	// database, session.
	return nil
}

// eventLogger logs every session event at debug level.
func eventLogger(log *logging.Logger) session.EventSink {
	return session.SinkFunc(func(e session.Event) {
		log.Debug("session event", "type", e.Type, "device_id", e.DeviceID)
	})
}

// voicelight - Discord voice presence to MQTT LED bridge
//
// This is the bridge daemon. It watches voice-channel joins and leaves on
// Discord and publishes the matching lighting command for every tracked user
// to that user's LED controller over MQTT.
//
// Users are managed with the voicelight-admin tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/ledcord/voicelight/migrations"

	"github.com/ledcord/voicelight/internal/api"
	"github.com/ledcord/voicelight/internal/audit"
	"github.com/ledcord/voicelight/internal/discord"
	"github.com/ledcord/voicelight/internal/infrastructure/config"
	"github.com/ledcord/voicelight/internal/infrastructure/database"
	"github.com/ledcord/voicelight/internal/infrastructure/influxdb"
	"github.com/ledcord/voicelight/internal/infrastructure/logging"
	"github.com/ledcord/voicelight/internal/infrastructure/mqtt"
	"github.com/ledcord/voicelight/internal/lightconfig"
	"github.com/ledcord/voicelight/internal/presence"
	"github.com/ledcord/voicelight/internal/publish"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// mqttStartupWait is how long startup waits for the first broker connection
// before carrying on with publishes being skipped.
const mqttStartupWait = 10 * time.Second

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
//
// Shutdown releases resources in reverse order of acquisition: the Discord
// session, then the status API, then MQTT (publishes from here on are skipped), then InfluxDB,
// then the database.
func run(ctx context.Context) error { //nolint:gocognit,gocyclo // linear startup sequence
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting voicelight",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.RequireGateway(); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

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
	log.Info("database connected", "path", cfg.Database.Path)

	if migrateErr := db.Migrate(ctx); migrateErr != nil {
		return fmt.Errorf("running migrations: %w", migrateErr)
	}
	log.Info("database migrations complete")

	store := lightconfig.NewSQLiteStore(db.DB)

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
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
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	} else {
		log.Info("InfluxDB disabled")
	}

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
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT connected", "client_id", cfg.MQTT.Broker.ClientID)
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	mqttClient.SetOnReconnecting(func() {
		log.Info("MQTT reconnecting", "interval", cfg.MQTT.ReconnectInterval())
	})

	waitCtx, cancelWait := context.WithTimeout(ctx, mqttStartupWait)
	if waitErr := mqttClient.WaitConnected(waitCtx); waitErr != nil {
		log.Warn("MQTT not connected yet, light commands will be skipped until it is", "error", waitErr)
	}
	cancelWait()

	// Optional sinks stay untyped-nil when InfluxDB is disabled.
	var (
		cueRecorder        publish.Recorder
		transitionRecorder presence.TransitionRecorder
	)
	if influxClient != nil {
		cueRecorder = influxClient
		transitionRecorder = influxClient
	}

	gateway := publish.NewGateway(mqttClient, cueRecorder, log.With("component", "publish"))
	bridge := presence.NewBridge(store, gateway, mqtt.Topics{Prefix: cfg.MQTT.TopicPrefix}, transitionRecorder, log.With("component", "presence"))

	if err := healthCheck(ctx, db, mqttClient, influxClient, log); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	if cfg.API.Enabled {
		var influxHealth api.HealthChecker
		if influxClient != nil {
			influxHealth = influxClient
		}
		apiServer, apiErr := api.New(api.Deps{
			Config:   cfg.API,
			Logger:   log.With("component", "api"),
			Database: db,
			MQTT:     mqttClient,
			InfluxDB: influxHealth,
			Roster:   store,
			Audit:    audit.NewSQLiteRepository(db.DB),
			Version:  version,
		})
		if apiErr != nil {
			return fmt.Errorf("creating API server: %w", apiErr)
		}
		if startErr := apiServer.Start(ctx); startErr != nil {
			return fmt.Errorf("starting API server: %w", startErr)
		}
		defer func() {
			if closeErr := apiServer.Close(); closeErr != nil {
				log.Error("error closing API server", "error", closeErr)
			}
		}()
	}

	listener, err := discord.New(cfg.Discord.Token, bridge, store, log.With("component", "discord"))
	if err != nil {
		return fmt.Errorf("creating discord listener: %w", err)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = listener.Run(runCtx) //nolint:errcheck // returns ctx.Err() on shutdown
	}()
	defer func() {
		cancelRun()
		<-runDone
	}()

	if err := listener.Open(); err != nil {
		return fmt.Errorf("connecting to discord: %w", err)
	}
	defer func() {
		log.Info("closing discord session")
		if closeErr := listener.Close(); closeErr != nil {
			log.Error("error closing discord session", "error", closeErr)
		}
	}()

	log.Info("initialisation complete, waiting for shutdown signal")

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	if dropped := listener.Dropped(); dropped > 0 {
		log.Warn("transitions dropped while the queue was full", "count", dropped)
	}

	return nil
}

// getConfigPath returns the configuration file path.
// Checks VOICELIGHT_CONFIG environment variable first, then uses default.
func getConfigPath() string {
	if path := os.Getenv("VOICELIGHT_CONFIG"); path != "" {
		return path
	}
	return config.DefaultPath
}

// healthCheck verifies the infrastructure the bridge needs.
// A broker that is still connecting is reported but does not fail startup.
func healthCheck(ctx context.Context, db *database.DB, mqttClient *mqtt.Client, influxClient *influxdb.Client, log *logging.Logger) error {
	if err := db.HealthCheck(ctx); err != nil {
		return fmt.Errorf("database: %w", err)
	}

	if err := mqttClient.HealthCheck(ctx); err != nil {
		log.Warn("mqtt health check", "error", err, "state", mqttClient.State().String())
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	log.Info("health checks complete")
	return nil
}

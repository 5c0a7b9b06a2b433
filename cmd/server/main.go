package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"trace-emissions-service/internal/adapters/cache"
	"trace-emissions-service/internal/adapters/catalog"
	"trace-emissions-service/internal/adapters/geocoding"
	"trace-emissions-service/internal/adapters/lookup"
	"trace-emissions-service/internal/adapters/publisher"
	"trace-emissions-service/internal/adapters/repositories"
	"trace-emissions-service/internal/api"
	"trace-emissions-service/internal/config"
	"trace-emissions-service/internal/platform/db"
	"trace-emissions-service/internal/platform/obs"
	"trace-emissions-service/internal/ports"
	"trace-emissions-service/internal/services"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters (Postgres, ORS, lookup services, Kafka) behind
// ports and starts the HTTP server.
func main() {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.RequireServer(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	if envErr != nil {
		log.Debug("no .env file found, using environment variables")
	}
	log.Info("starting trace-emissions-service", zap.String("port", cfg.Port), zap.String("env", cfg.Env))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	if err := repositories.Migrate(ctx, conn); err != nil {
		log.Fatal("failed to run migrations", zap.Error(err))
	}

	footprints, err := catalog.Load(cfg.FootprintsPath)
	if err != nil {
		log.Fatal("failed to load footprint catalog", zap.Error(err))
	}

	// ORS geocodes through the persistent cache to avoid repeated lookups.
	var geocodeCache ports.GeocodeCache = cache.NewSQLGeocodeCache(conn)
	if cfg.RedisURL != "" {
		rdb, err := cache.OpenRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
		geocodeCache = &cache.TieredGeocodeCache{
			Near: cache.NewRedisGeocodeCache(rdb, cfg.GeocodeCacheTTL),
			Far:  geocodeCache,
		}
		log.Info("geocode cache fronted by redis", zap.Duration("ttl", cfg.GeocodeCacheTTL))
	}

	ors, err := geocoding.NewORSClient(cfg.ORSAPIKey,
		geocoding.WithBaseURL(cfg.ORSBaseURL),
		geocoding.WithGeocodeCache(geocodeCache),
	)
	if err != nil {
		log.Fatal("failed to create ORS client", zap.Error(err))
	}

	distributors, err := lookup.NewDistributorClient(cfg.DistributorLookupURL)
	if err != nil {
		log.Fatal("failed to create distributor lookup", zap.Error(err))
	}
	waterSources, err := lookup.NewWaterSourceClient(cfg.WaterSourceLookupURL)
	if err != nil {
		log.Fatal("failed to create water source lookup", zap.Error(err))
	}

	var snapshots ports.SnapshotPublisher
	if len(cfg.KafkaBrokers) > 0 {
		kp := publisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log)
		defer func() { _ = kp.Close() }()
		snapshots = kp
		log.Info("publishing snapshots to kafka",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.KafkaTopic),
		)
	} else {
		snapshots = publisher.NewLogPublisher(log)
	}

	facilities := repositories.NewPostgresFacilityRepository(conn)
	chain := &services.RouteChain{
		Geocoder:      ors,
		Directions:    ors,
		Distributors:  distributors,
		Facilities:    facilities,
		WaterSources:  waterSources,
		Publisher:     snapshots,
		LookupTimeout: cfg.LookupTimeout,
		RunTimeout:    cfg.RunTimeout,
	}

	router := api.NewRouter(api.Deps{
		Sessions:     services.NewSessionStore(chain, cfg.SessionTTL),
		Facilities:   facilities,
		Catalog:      footprints,
		SessionTTL:   cfg.SessionTTL,
		SecureCookie: cfg.Env == "production",
		Logger:       log,
	})

	// An impact run is cut off at RUN_TIMEOUT; the slack covers encoding the
	// partial result.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.RunTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	go func() {
		log.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down trace-emissions-service...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server forced shutdown", zap.Error(err))
	}
	cancel()

	log.Info("trace-emissions-service stopped")
}

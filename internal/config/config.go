package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Config is the process configuration, read from the environment after an
// optional .env file has been loaded by the caller.
type Config struct {
	Env      string
	LogLevel string
	Port     string

	DatabaseURL string
	SeedPath    string

	ORSAPIKey  string
	ORSBaseURL string

	DistributorLookupURL string
	WaterSourceLookupURL string
	LookupTimeout        time.Duration
	RunTimeout           time.Duration

	FootprintsPath string

	RedisURL        string
	GeocodeCacheTTL time.Duration

	KafkaBrokers []string
	KafkaTopic   string

	SessionTTL time.Duration
}

// Get returns the environment value for key, or fallback when unset.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := Get(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("config: %s must be positive, got %s", key, v)
	}
	return d, nil
}

func splitList(v string) []string {
	if v == "" {
		return nil
	}
	out := make([]string, 0, 4)
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Load reads every setting and applies defaults. Required values are checked
// by the binaries that need them (see RequireDatabase, RequireServer).
func Load() (Config, error) {
	cfg := Config{
		Env:                  Get("APP_ENV", "production"),
		LogLevel:             Get("LOG_LEVEL", "info"),
		Port:                 Get("PORT", "8080"),
		DatabaseURL:          Get("DATABASE_URL", ""),
		SeedPath:             Get("SEED_PATH", "data/seeds/facilities.json"),
		ORSAPIKey:            Get("ORS_API_KEY", ""),
		ORSBaseURL:           Get("ORS_BASE_URL", "https://api.openrouteservice.org"),
		DistributorLookupURL: Get("DISTRIBUTOR_LOOKUP_URL", "http://localhost:3001/api/distributors"),
		WaterSourceLookupURL: Get("WATER_SOURCE_LOOKUP_URL", "http://localhost:3001/api/water-sources"),
		FootprintsPath:       Get("FOOTPRINTS_PATH", ""),
		RedisURL:             Get("REDIS_URL", ""),
		KafkaBrokers:         splitList(Get("KAFKA_BROKERS", "")),
		KafkaTopic:           Get("KAFKA_TOPIC", "trace.emissions"),
	}

	var err error
	if cfg.LookupTimeout, err = getDuration("LOOKUP_TIMEOUT", 10*time.Second); err != nil {
		return cfg, err
	}
	if cfg.RunTimeout, err = getDuration("RUN_TIMEOUT", time.Minute); err != nil {
		return cfg, err
	}
	if cfg.SessionTTL, err = getDuration("SESSION_TTL", 30*time.Minute); err != nil {
		return cfg, err
	}
	if cfg.GeocodeCacheTTL, err = getDuration("GEOCODE_CACHE_TTL", 7*24*time.Hour); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// RequireDatabase reports a missing DATABASE_URL.
func (c Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("config: DATABASE_URL is required")
	}
	return nil
}

// RequireServer checks the settings the HTTP server cannot start without.
func (c Config) RequireServer() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.ORSAPIKey == "" {
		return fmt.Errorf("config: ORS_API_KEY is required")
	}
	return nil
}

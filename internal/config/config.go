package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port string `mapstructure:"PORT" validate:"required"`

	RoutingProvider    string        `mapstructure:"ROUTING_PROVIDER" validate:"oneof=osrm mock"`
	RoutingBaseURL     string        `mapstructure:"ROUTING_BASE_URL" validate:"required,url"`
	RoutingProfile     string        `mapstructure:"ROUTING_PROFILE" validate:"required"`
	RoutingTimeout     time.Duration `mapstructure:"ROUTING_TIMEOUT" validate:"gt=0"`
	RoutingMaxAttempts int           `mapstructure:"ROUTING_MAX_ATTEMPTS" validate:"gte=1,lte=10"`

	ProximityThresholdMeters float64 `mapstructure:"PROXIMITY_THRESHOLD_METERS" validate:"gt=0"`

	DestinationSource string `mapstructure:"DESTINATION_SOURCE" validate:"oneof=file postgres"`
	DestinationsPath  string `mapstructure:"DESTINATIONS_PATH"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`

	RedisAddr     string        `mapstructure:"REDIS_ADDR"`
	RedisPassword string        `mapstructure:"REDIS_PASSWORD"`
	RouteCache    string        `mapstructure:"ROUTE_CACHE" validate:"oneof=none redis postgres"`
	RouteCacheTTL time.Duration `mapstructure:"ROUTE_CACHE_TTL" validate:"gte=0"`

	LocationSource string `mapstructure:"LOCATION_SOURCE" validate:"oneof=http kafka"`
	KafkaBrokers   string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic     string `mapstructure:"KAFKA_TOPIC"`
	KafkaGroupID   string `mapstructure:"KAFKA_GROUP_ID"`

	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"oneof=json text"`
}

var defaults = map[string]any{
	"PORT":                       "8080",
	"ROUTING_PROVIDER":           "osrm",
	"ROUTING_BASE_URL":           "https://router.project-osrm.org",
	"ROUTING_PROFILE":            "driving",
	"ROUTING_TIMEOUT":            "10s",
	"ROUTING_MAX_ATTEMPTS":       1,
	"PROXIMITY_THRESHOLD_METERS": 50.0,
	"DESTINATION_SOURCE":         "file",
	"DESTINATIONS_PATH":          "data/destinations.json",
	"DATABASE_URL":               "",
	"REDIS_ADDR":                 "",
	"REDIS_PASSWORD":             "",
	"ROUTE_CACHE":                "none",
	"ROUTE_CACHE_TTL":            "10m",
	"LOCATION_SOURCE":            "http",
	"KAFKA_BROKERS":              "localhost:9092",
	"KAFKA_TOPIC":                "positions",
	"KAFKA_GROUP_ID":             "arrival-route-service",
	"LOG_LEVEL":                  "info",
	"LOG_FORMAT":                 "json",
}

// Load reads an optional .env file, then the process environment, applies defaults and validates.
func Load() (Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: unmarshal: %w", err)
	}

	cfg.DestinationSource = strings.ToLower(strings.TrimSpace(cfg.DestinationSource))
	cfg.RouteCache = strings.ToLower(strings.TrimSpace(cfg.RouteCache))
	cfg.LocationSource = strings.ToLower(strings.TrimSpace(cfg.LocationSource))
	cfg.RoutingProvider = strings.ToLower(strings.TrimSpace(cfg.RoutingProvider))

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate checks field constraints and the cross-field requirements of the chosen backends.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if c.DestinationSource == "file" && strings.TrimSpace(c.DestinationsPath) == "" {
		return fmt.Errorf("validate config: DESTINATIONS_PATH is required when DESTINATION_SOURCE=file")
	}
	if (c.DestinationSource == "postgres" || c.RouteCache == "postgres") && strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("validate config: DATABASE_URL is required for postgres backends")
	}
	if c.RouteCache == "redis" && strings.TrimSpace(c.RedisAddr) == "" {
		return fmt.Errorf("validate config: REDIS_ADDR is required when ROUTE_CACHE=redis")
	}
	if c.LocationSource == "kafka" && (strings.TrimSpace(c.KafkaBrokers) == "" || strings.TrimSpace(c.KafkaTopic) == "") {
		return fmt.Errorf("validate config: KAFKA_BROKERS and KAFKA_TOPIC are required when LOCATION_SOURCE=kafka")
	}

	return nil
}

// Brokers splits KAFKA_BROKERS on commas.
func (c Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

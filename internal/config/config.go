package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port            string        `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL               string `mapstructure:"url"`
	SeedPath          string `mapstructure:"seed_path"`
	CommitMaxAttempts int    `mapstructure:"commit_max_attempts"`
}

type KafkaConfig struct {
	Brokers   string `mapstructure:"brokers"`
	TripTopic string `mapstructure:"trip_topic"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Kafka    KafkaConfig    `mapstructure:"kafka"`
}

// UseMemoryStore reports whether no database is configured.
func (c Config) UseMemoryStore() bool {
	return strings.TrimSpace(c.Database.URL) == ""
}

// EventsEnabled reports whether trip events should be published.
func (c Config) EventsEnabled() bool {
	return strings.TrimSpace(c.Kafka.Brokers) != ""
}

// Load reads an optional config.yaml from the given paths (default "." and
// "./config"), then overrides it with environment variables. A .env file,
// when present, is loaded into the environment first.
func Load(paths ...string) (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	if len(paths) == 0 {
		paths = []string{".", "./config"}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("database.seed_path", "data/seeds/network.json")
	v.SetDefault("database.commit_max_attempts", 4)
	v.SetDefault("kafka.trip_topic", "trip-events")

	bindings := map[string]string{
		"server.port":                  "PORT",
		"server.shutdown_timeout":      "SHUTDOWN_TIMEOUT",
		"database.url":                 "DATABASE_URL",
		"database.seed_path":           "SEED_PATH",
		"database.commit_max_attempts": "COMMIT_MAX_ATTEMPTS",
		"kafka.brokers":                "KAFKA_BROKERS",
		"kafka.trip_topic":             "KAFKA_TRIP_TOPIC",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("load config: bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("load config: read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("load config: decode: %w", err)
	}

	if cfg.Database.CommitMaxAttempts < 1 {
		return Config{}, fmt.Errorf("load config: commit_max_attempts must be at least 1, got %d", cfg.Database.CommitMaxAttempts)
	}
	if strings.TrimSpace(cfg.Server.Port) == "" {
		return Config{}, errors.New("load config: port is required")
	}

	return cfg, nil
}

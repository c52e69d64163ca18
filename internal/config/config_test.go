package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "DATABASE_URL", "SEED_PATH", "COMMIT_MAX_ATTEMPTS", "KAFKA_BROKERS", "KAFKA_TRIP_TOPIC", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("port = %q", cfg.Server.Port)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Database.SeedPath != "data/seeds/network.json" || cfg.Database.CommitMaxAttempts != 4 {
		t.Errorf("database = %+v", cfg.Database)
	}
	if cfg.Kafka.TripTopic != "trip-events" {
		t.Errorf("topic = %q", cfg.Kafka.TripTopic)
	}
	if !cfg.UseMemoryStore() || cfg.EventsEnabled() {
		t.Errorf("memory = %v, events = %v", cfg.UseMemoryStore(), cfg.EventsEnabled())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	yaml := []byte(`
server:
  port: "9090"
database:
  url: postgres://file
  commit_max_attempts: 6
kafka:
  brokers: kafka-1:9092
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("KAFKA_TRIP_TOPIC", "trips")

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %q, want file value", cfg.Server.Port)
	}
	if cfg.Database.URL != "postgres://env" {
		t.Errorf("url = %q, want env override", cfg.Database.URL)
	}
	if cfg.Database.CommitMaxAttempts != 6 {
		t.Errorf("attempts = %d", cfg.Database.CommitMaxAttempts)
	}
	if cfg.Kafka.TripTopic != "trips" || !cfg.EventsEnabled() {
		t.Errorf("kafka = %+v", cfg.Kafka)
	}
	if cfg.UseMemoryStore() {
		t.Errorf("expected database store")
	}
}

func TestLoadRejectsBadAttempts(t *testing.T) {
	t.Setenv("COMMIT_MAX_ATTEMPTS", "0")

	if _, err := Load(t.TempDir()); err == nil {
		t.Errorf("expected error for zero commit attempts")
	}
}

package main

import (
	"context"
	"database/sql"
	"fleet-trip-service/internal/adapters/repositories"
	"fleet-trip-service/internal/config"
	"fleet-trip-service/internal/platform/db"
	"fmt"
	"log"
	"time"
)

// dbtool creates the Postgres schema and loads the seed network.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	if cfg.UseMemoryStore() {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.Database.URL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := initAndSeed(ctx, conn, cfg.Database.SeedPath); err != nil {
		log.Fatal(err)
	}
}

func initAndSeed(ctx context.Context, conn *sql.DB, seedPath string) error {
	log.Println("Initializing database schema...")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	log.Println("Schema ready.")

	log.Printf("Seeding database from %s...", seedPath)
	if err := repositories.SeedFromJSON(ctx, conn, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	log.Println("Seeding complete.")

	return nil
}

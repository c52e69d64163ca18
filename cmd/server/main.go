package main

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/adapters/events"
	"fleet-trip-service/internal/adapters/memory"
	"fleet-trip-service/internal/adapters/repositories"
	"fleet-trip-service/internal/adapters/seed"
	"fleet-trip-service/internal/api"
	"fleet-trip-service/internal/config"
	"fleet-trip-service/internal/platform/db"
	"fleet-trip-service/internal/ports"
	"fleet-trip-service/internal/services"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

// stores groups the port implementations chosen at startup.
type stores struct {
	graph     ports.GraphStore
	trucks    ports.TruckStore
	drivers   ports.DriverStore
	locations ports.StopLocationStore
	products  ports.ProductStore
	trips     ports.TripStore
}

// main is the application composition root.
// It wires concrete adapters (Postgres or in-memory, Kafka) behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	st, closeStores, err := openStores(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer closeStores()

	var publisher ports.EventPublisher
	if cfg.EventsEnabled() {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.TripTopic, services.TripPlannedEventType)
		if err != nil {
			log.Fatal(err)
		}
		defer kp.Close()
		publisher = kp
		log.Printf("Trip events enabled topic=%s brokers=%s", cfg.Kafka.TripTopic, cfg.Kafka.Brokers)
	}

	router := services.NewRoutingService(st.graph)
	planner := services.NewTripPlanner(services.TripPlannerDeps{
		Graph:     st.graph,
		Trucks:    st.trucks,
		Drivers:   st.drivers,
		Locations: st.locations,
		Products:  st.products,
		Trips:     st.trips,
		Router:    router,
		Events:    publisher,
		Now:       time.Now,
	})

	handler := api.NewRouter(api.Services{
		Planner: planner,
		Trips:   services.NewTripService(st.trips),
		Graph:   services.NewGraphService(st.graph),
		Stock:   services.NewStockService(st.products),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Server listening addr=:%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	// In-flight commits run detached from request cancellation, so give
	// them time to finish before closing the database.
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("Server stopped")
}

func openStores(cfg config.Config) (stores, func(), error) {
	if cfg.UseMemoryStore() {
		n, err := seed.Load(cfg.Database.SeedPath)
		if err != nil {
			return stores{}, nil, fmt.Errorf("open stores: %w", err)
		}
		mem, err := memory.NewStoreFromSeed(n)
		if err != nil {
			return stores{}, nil, fmt.Errorf("open stores: %w", err)
		}
		log.Printf("DATABASE_URL not set; using in-memory store seeded from %s", cfg.Database.SeedPath)
		return stores{
			graph:     mem,
			trucks:    mem.Trucks(),
			drivers:   mem.Drivers(),
			locations: mem,
			products:  mem,
			trips:     mem,
		}, func() {}, nil
	}

	conn, err := db.Open(cfg.Database.URL)
	if err != nil {
		return stores{}, nil, err
	}
	return postgresStores(conn, cfg.Database.CommitMaxAttempts), func() { conn.Close() }, nil
}

func postgresStores(conn *sql.DB, maxAttempts int) stores {
	return stores{
		graph:     repositories.NewPostgresGraphStore(conn),
		trucks:    repositories.NewPostgresTruckStore(conn),
		drivers:   repositories.NewPostgresDriverStore(conn),
		locations: repositories.NewPostgresStopLocationStore(conn),
		products:  repositories.NewPostgresProductStore(conn),
		trips:     repositories.NewPostgresTripStore(conn, maxAttempts),
	}
}

package api

import (
	"fleet-trip-service/internal/api/handlers"
	"fleet-trip-service/internal/services"
	"net/http"

	"github.com/gorilla/mux"
)

// Services the HTTP layer depends on.
type Services struct {
	Planner *services.TripPlanner
	Trips   *services.TripService
	Graph   *services.GraphService
	Stock   *services.StockService
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(svc Services) http.Handler {
	r := mux.NewRouter()

	trips := &handlers.TripHandler{Planner: svc.Planner, Trips: svc.Trips, Graph: svc.Graph}
	graph := &handlers.GraphHandler{Graph: svc.Graph}
	stock := &handlers.StockHandler{Stock: svc.Stock}

	r.HandleFunc("/health", handlers.Health).Methods(http.MethodGet)

	r.HandleFunc("/trips/plan-and-create", trips.PlanAndCreate).Methods(http.MethodPost)
	r.HandleFunc("/trips", trips.List).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}", trips.Get).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/route", trips.Route).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/route.geojson", trips.RouteGeoJSON).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/manifest.xlsx", trips.Manifest).Methods(http.MethodGet)
	r.HandleFunc("/trips/{id}/status", trips.UpdateStatus).Methods(http.MethodPatch)
	r.HandleFunc("/trips/{id}/stops/{stopId}/status", trips.UpdateStopStatus).Methods(http.MethodPatch)

	r.HandleFunc("/graph/nodes", graph.ListNodes).Methods(http.MethodGet)
	r.HandleFunc("/graph/nodes", graph.CreateNode).Methods(http.MethodPost)
	r.HandleFunc("/graph/edges", graph.ListEdges).Methods(http.MethodGet)
	r.HandleFunc("/graph/edges", graph.CreateEdge).Methods(http.MethodPost)

	r.HandleFunc("/products/{id}/stock", stock.Get).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}/stock/adjust", stock.Adjust).Methods(http.MethodPost)

	return loggingMiddleware(requestIDMiddleware(r))
}

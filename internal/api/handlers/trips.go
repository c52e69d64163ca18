package handlers

import (
	"bytes"
	"errors"
	"fleet-trip-service/internal/adapters/export"
	"fleet-trip-service/internal/api/dto"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/services"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const userIDHeader = "X-User-ID"

type TripHandler struct {
	Planner *services.TripPlanner
	Trips   *services.TripService
	Graph   *services.GraphService
}

// PlanAndCreate validates, routes and commits a new trip.
func (h *TripHandler) PlanAndCreate(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(r.Header.Get(userIDHeader))
	if userID == "" {
		writeError(w, r, http.StatusUnauthorized, "missing "+userIDHeader+" header")
		return
	}

	var req dto.PlanTripRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	planReq := domain.TripPlanRequest{
		TruckID:         req.TruckID,
		DriverID:        req.DriverID,
		StartNodeID:     req.StartNodeID,
		StopLocationIDs: req.StopLocationIDs,
		CargoItems:      make([]domain.CargoLine, 0, len(req.CargoItems)),
	}
	for _, c := range req.CargoItems {
		planReq.CargoItems = append(planReq.CargoItems, domain.CargoLine{ProductID: c.ProductID, Quantity: c.Quantity})
	}

	res, err := h.Planner.PlanAndCreateTrip(r.Context(), planReq, userID)
	if err != nil {
		writeServiceError(w, r, "trips.plan", err)
		return
	}

	out := dto.PlanTripResponse{
		TripID:               res.TripID,
		TotalWeightKg:        res.TotalWeightKg,
		TotalPlannedDistance: res.TotalPlannedDistance,
		Stops:                make([]dto.PlannedStopResponse, 0, len(res.Stops)),
		RouteSteps:           routeSteps(res.RouteSteps),
	}
	for _, s := range res.Stops {
		out.Stops = append(out.Stops, dto.PlannedStopResponse{
			ID:             s.ID,
			StopLocationID: s.StopLocationID,
			Name:           s.Name,
			Order:          s.Order,
			Status:         string(s.Status),
		})
	}

	w.Header().Set("Location", "/trips/"+res.TripID.String())
	writeJSON(w, r, http.StatusCreated, out)
}

func (h *TripHandler) List(w http.ResponseWriter, r *http.Request) {
	filter, err := parseTripFilter(r)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	trips, err := h.Trips.ListTrips(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, "trips.list", err)
		return
	}

	res := dto.ListTripsResponse{Trips: make([]dto.TripSummaryResponse, 0, len(trips))}
	for _, t := range trips {
		res.Trips = append(res.Trips, tripSummary(t))
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	t, err := h.Trips.GetTrip(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "trips.get", err)
		return
	}

	res := dto.TripDetailsResponse{
		TripSummaryResponse: tripSummary(t.TripSummary),
		Stops:               make([]dto.TripStopResponse, 0, len(t.Stops)),
		CargoItems:          make([]dto.CargoItemResponse, 0, len(t.CargoItems)),
	}
	for _, s := range t.Stops {
		res.Stops = append(res.Stops, dto.TripStopResponse{
			ID:                s.ID,
			StopLocationID:    s.StopLocationID,
			Name:              s.Name,
			StopOrder:         s.StopOrder,
			Status:            string(s.Status),
			ActualArrivalTime: s.ActualArrivalTime,
			Notes:             s.Notes,
		})
	}
	for _, c := range t.CargoItems {
		res.CargoItems = append(res.CargoItems, dto.CargoItemResponse{
			ProductID:     c.ProductID,
			ProductName:   c.ProductName,
			Quantity:      c.Quantity,
			TotalWeightKg: c.TotalWeightKg,
		})
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (h *TripHandler) Route(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	steps, err := h.Trips.GetRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "trips.route", err)
		return
	}
	writeJSON(w, r, http.StatusOK, dto.TripRouteResponse{TripID: id, Steps: routeSteps(steps)})
}

func (h *TripHandler) RouteGeoJSON(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	steps, err := h.Trips.GetRoute(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "trips.route_geojson", err)
		return
	}
	nodes, err := h.Graph.NodesByID(r.Context(), routeNodeIDs(steps))
	if err != nil {
		writeServiceError(w, r, "trips.route_geojson", err)
		return
	}

	body, err := export.RouteGeoJSON(steps, nodes).MarshalJSON()
	if err != nil {
		writeServiceError(w, r, "trips.route_geojson", err)
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *TripHandler) Manifest(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	details, err := h.Trips.GetTrip(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, "trips.manifest", err)
		return
	}
	// A trip whose stops all sit on the start node has no steps.
	steps, err := h.Trips.GetRoute(r.Context(), id)
	if err != nil && !errors.Is(err, domain.ErrTripNotFound) {
		writeServiceError(w, r, "trips.manifest", err)
		return
	}
	nodes, err := h.Graph.NodesByID(r.Context(), routeNodeIDs(steps))
	if err != nil {
		writeServiceError(w, r, "trips.manifest", err)
		return
	}

	// Buffer so a failed render can still return a JSON error.
	var buf bytes.Buffer
	if err := export.WriteManifest(&buf, details, steps, nodes); err != nil {
		writeServiceError(w, r, "trips.manifest", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="trip-%s.xlsx"`, id))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *TripHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Trips.UpdateTripStatus(r.Context(), id, req.Status); err != nil {
		writeServiceError(w, r, "trips.update_status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TripHandler) UpdateStopStatus(w http.ResponseWriter, r *http.Request) {
	tripID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	stopID, ok := pathID(w, r, "stopId")
	if !ok {
		return
	}
	var req dto.UpdateStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.Trips.UpdateStopStatus(r.Context(), tripID, stopID, req.Status, req.Notes); err != nil {
		writeServiceError(w, r, "trips.update_stop_status", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseTripFilter(r *http.Request) (domain.TripFilter, error) {
	q := r.URL.Query()
	var f domain.TripFilter

	if v := strings.TrimSpace(q.Get("driver_id")); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			return f, errors.New("invalid driver_id")
		}
		f.DriverID = &id
	}
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		st, err := domain.ParseTripStatus(v)
		if err != nil {
			return f, errors.New("invalid status")
		}
		f.Status = &st
	}
	for _, p := range []struct {
		key string
		dst **time.Time
	}{{"from", &f.From}, {"to", &f.To}} {
		v := strings.TrimSpace(q.Get(p.key))
		if v == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return f, fmt.Errorf("invalid %s: expected RFC3339 timestamp", p.key)
		}
		*p.dst = &t
	}
	return f, nil
}

func tripSummary(t domain.TripSummary) dto.TripSummaryResponse {
	return dto.TripSummaryResponse{
		ID:                   t.ID,
		TruckID:              t.TruckID,
		TruckName:            t.TruckName,
		DriverID:             t.DriverID,
		DriverName:           t.DriverName,
		CreatedByUserID:      t.CreatedByUserID,
		Status:               string(t.Status),
		TotalPlannedDistance: t.TotalPlannedDistance,
		TotalPlannedCost:     t.TotalPlannedCost,
		CreatedAt:            t.CreatedAt,
		DoneAt:               t.DoneAt,
	}
}

func routeSteps(steps []domain.TripRouteStep) []dto.RouteStepResponse {
	out := make([]dto.RouteStepResponse, 0, len(steps))
	for _, s := range steps {
		out = append(out, dto.RouteStepResponse{
			StepOrder:        s.StepOrder,
			FromNodeID:       s.FromNodeID,
			ToNodeID:         s.ToNodeID,
			EdgeWeight:       s.EdgeWeight,
			CumulativeWeight: s.CumulativeWeight,
		})
	}
	return out
}

func routeNodeIDs(steps []domain.TripRouteStep) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(steps)+1)
	ids := make([]uuid.UUID, 0, len(steps)+1)
	add := func(id uuid.UUID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, s := range steps {
		add(s.FromNodeID)
		add(s.ToNodeID)
	}
	return ids
}

package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CargoItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

type PlanTripRequest struct {
	TruckID         uuid.UUID          `json:"truck_id"`
	DriverID        uuid.UUID          `json:"driver_id"`
	StartNodeID     uuid.UUID          `json:"start_node_id"`
	StopLocationIDs []uuid.UUID        `json:"stop_location_ids"`
	CargoItems      []CargoItemRequest `json:"cargo_items"`
}

type PlannedStopResponse struct {
	ID             uuid.UUID `json:"id"`
	StopLocationID uuid.UUID `json:"stop_location_id"`
	Name           string    `json:"name"`
	Order          int       `json:"order"`
	Status         string    `json:"status"`
}

type RouteStepResponse struct {
	StepOrder        int             `json:"step_order"`
	FromNodeID       uuid.UUID       `json:"from_node_id"`
	ToNodeID         uuid.UUID       `json:"to_node_id"`
	EdgeWeight       decimal.Decimal `json:"edge_weight"`
	CumulativeWeight decimal.Decimal `json:"cumulative_weight"`
}

type PlanTripResponse struct {
	TripID               uuid.UUID             `json:"trip_id"`
	TotalWeightKg        decimal.Decimal       `json:"total_weight_kg"`
	TotalPlannedDistance decimal.Decimal       `json:"total_planned_distance"`
	Stops                []PlannedStopResponse `json:"stops"`
	RouteSteps           []RouteStepResponse   `json:"route_steps"`
}

type TripSummaryResponse struct {
	ID                   uuid.UUID        `json:"id"`
	TruckID              uuid.UUID        `json:"truck_id"`
	TruckName            string           `json:"truck_name"`
	DriverID             uuid.UUID        `json:"driver_id"`
	DriverName           string           `json:"driver_name"`
	CreatedByUserID      string           `json:"created_by_user_id"`
	Status               string           `json:"status"`
	TotalPlannedDistance decimal.Decimal  `json:"total_planned_distance"`
	TotalPlannedCost     *decimal.Decimal `json:"total_planned_cost,omitempty"`
	CreatedAt            time.Time        `json:"created_at"`
	DoneAt               *time.Time       `json:"done_at,omitempty"`
}

type TripStopResponse struct {
	ID                uuid.UUID  `json:"id"`
	StopLocationID    uuid.UUID  `json:"stop_location_id"`
	Name              string     `json:"name"`
	StopOrder         int        `json:"stop_order"`
	Status            string     `json:"status"`
	ActualArrivalTime *time.Time `json:"actual_arrival_time,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

type CargoItemResponse struct {
	ProductID     uuid.UUID       `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	TotalWeightKg decimal.Decimal `json:"total_weight_kg"`
}

type TripDetailsResponse struct {
	TripSummaryResponse
	Stops      []TripStopResponse  `json:"stops"`
	CargoItems []CargoItemResponse `json:"cargo_items"`
}

type ListTripsResponse struct {
	Trips []TripSummaryResponse `json:"trips"`
}

type TripRouteResponse struct {
	TripID uuid.UUID           `json:"trip_id"`
	Steps  []RouteStepResponse `json:"steps"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
	Notes  string `json:"notes"`
}

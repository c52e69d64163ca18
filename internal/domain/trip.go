package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type TripStatus string

const (
	TripWaiting   TripStatus = "waiting"
	TripActive    TripStatus = "active"
	TripDone      TripStatus = "done"
	TripCancelled TripStatus = "cancelled"
)

// Terminal statuses are never overwritten.
func (s TripStatus) IsTerminal() bool {
	return s == TripDone || s == TripCancelled
}

var tripTransitions = map[TripStatus][]TripStatus{
	TripWaiting: {TripActive, TripCancelled},
	TripActive:  {TripDone, TripCancelled},
}

// CanTransitionTo reports whether a trip in status s may move to next.
// A trip never returns to waiting once it has started.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	for _, allowed := range tripTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func ParseTripStatus(s string) (TripStatus, error) {
	switch st := TripStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case TripWaiting, TripActive, TripDone, TripCancelled:
		return st, nil
	}
	return "", fmt.Errorf("parse trip status %q: %w", s, ErrInvalidStatus)
}

type StopStatus string

const (
	StopPending   StopStatus = "pending"
	StopDelivered StopStatus = "delivered"
	StopFailed    StopStatus = "failed"
	StopDelayed   StopStatus = "delayed"
)

func ParseStopStatus(s string) (StopStatus, error) {
	switch st := StopStatus(strings.ToLower(strings.TrimSpace(s))); st {
	case StopPending, StopDelivered, StopFailed, StopDelayed:
		return st, nil
	}
	return "", fmt.Errorf("parse stop status %q: %w", s, ErrInvalidStatus)
}

// Trip is the aggregate root of a planned delivery run.
// It is created only by the trip planner, together with its stops,
// cargo items and route steps, as one atomic unit.
type Trip struct {
	ID                   uuid.UUID
	TruckID              uuid.UUID
	DriverID             uuid.UUID
	CreatedByUserID      string
	Status               TripStatus
	TotalPlannedDistance decimal.Decimal
	TotalPlannedCost     *decimal.Decimal
	CreatedAt            time.Time
	DoneAt               *time.Time
}

type TripStop struct {
	ID                 uuid.UUID
	TripID             uuid.UUID
	StopLocationID     uuid.UUID
	StopOrder          int
	Status             StopStatus
	PlannedArrivalTime *time.Time
	ActualArrivalTime  *time.Time
	Notes              string
}

type TripCargoItem struct {
	ID            uuid.UUID
	TripID        uuid.UUID
	ProductID     uuid.UUID
	Quantity      int
	TotalWeightKg decimal.Decimal
}

// One traversed graph edge within the trip's overall path.
type TripRouteStep struct {
	ID               uuid.UUID
	TripID           uuid.UUID
	StepOrder        int
	FromNodeID       uuid.UUID
	ToNodeID         uuid.UUID
	EdgeWeight       decimal.Decimal
	CumulativeWeight decimal.Decimal
}

// Stock to withdraw for one product when a trip is committed.
type StockDelta struct {
	ProductID   uuid.UUID
	ProductName string
	Quantity    int
}

// Everything the trip store persists for a newly planned trip.
type NewTripCommit struct {
	Trip        Trip
	Stops       []TripStop
	CargoItems  []TripCargoItem
	RouteSteps  []TripRouteStep
	StockDeltas []StockDelta
}

type CargoLine struct {
	ProductID uuid.UUID
	Quantity  int
}

type TripPlanRequest struct {
	TruckID         uuid.UUID
	DriverID        uuid.UUID
	StartNodeID     uuid.UUID
	StopLocationIDs []uuid.UUID
	CargoItems      []CargoLine
}

type PlannedStop struct {
	ID             uuid.UUID
	StopLocationID uuid.UUID
	Name           string
	Order          int
	Status         StopStatus
}

type TripPlanResult struct {
	TripID               uuid.UUID
	TotalWeightKg        decimal.Decimal
	TotalPlannedDistance decimal.Decimal
	Stops                []PlannedStop
	RouteSteps           []TripRouteStep
}

// Read model of a persisted trip.
type TripSummary struct {
	Trip
	TruckName  string
	DriverName string
}

type CargoDetail struct {
	ProductID     uuid.UUID
	ProductName   string
	Quantity      int
	TotalWeightKg decimal.Decimal
}

type StopDetail struct {
	TripStop
	Name string
}

type TripDetails struct {
	TripSummary
	Stops      []StopDetail
	CargoItems []CargoDetail
}

type TripFilter struct {
	DriverID *uuid.UUID
	Status   *TripStatus
	From     *time.Time
	To       *time.Time
}

// Matches reports whether a trip passes every set filter field.
func (f TripFilter) Matches(t Trip) bool {
	if f.DriverID != nil && t.DriverID != *f.DriverID {
		return false
	}
	if f.Status != nil && t.Status != *f.Status {
		return false
	}
	if f.From != nil && t.CreatedAt.Before(*f.From) {
		return false
	}
	if f.To != nil && t.CreatedAt.After(*f.To) {
		return false
	}
	return true
}

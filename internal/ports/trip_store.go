package ports

import (
	"context"
	"fleet-trip-service/internal/domain"
	"time"

	"github.com/google/uuid"
)

// Port: trip persistence.
type TripStore interface {
	// Persist a planned trip as one atomic unit: withdraw every stock delta
	// (failing with a *domain.StockConflictError if any would go negative)
	// and insert the trip, its stops, cargo items and route steps.
	// Either everything is visible afterwards or nothing is.
	CommitNewTrip(ctx context.Context, c domain.NewTripCommit) (uuid.UUID, error)

	GetTrip(ctx context.Context, id uuid.UUID) (*domain.TripDetails, error)
	ListTrips(ctx context.Context, f domain.TripFilter) ([]domain.TripSummary, error)
	ListRouteSteps(ctx context.Context, tripID uuid.UUID) ([]domain.TripRouteStep, error)

	// Change the trip status unless the current one is terminal or the
	// move is not allowed by domain.TripStatus.CanTransitionTo.
	// When the trip moves from waiting to cancelled its cargo is returned
	// to stock in the same unit.
	UpdateTripStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus, at time.Time) error
	UpdateStopStatus(ctx context.Context, tripID, stopID uuid.UUID, status domain.StopStatus, notes string, at time.Time) error
}

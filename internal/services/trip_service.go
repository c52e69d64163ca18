package services

import (
	"context"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fleet-trip-service/internal/ports"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// TripService serves reads and status changes for trips that already exist.
// Trips are only ever created by TripPlanner.
type TripService struct {
	Trips ports.TripStore
	Now   func() time.Time
}

func NewTripService(trips ports.TripStore) *TripService {
	return &TripService{Trips: trips, Now: time.Now}
}

func (s *TripService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *TripService) GetTrip(ctx context.Context, id uuid.UUID) (_ *domain.TripDetails, err error) {
	defer obs.Time(ctx, "trips.GetTrip")(&err)

	details, err := s.Trips.GetTrip(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get trip %s: %w", id, err)
	}
	return details, nil
}

func (s *TripService) ListTrips(ctx context.Context, f domain.TripFilter) (_ []domain.TripSummary, err error) {
	defer obs.Time(ctx, "trips.ListTrips")(&err)

	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, fmt.Errorf("list trips: to %s is before from %s: %w",
			f.To.Format(time.RFC3339), f.From.Format(time.RFC3339), domain.ErrInvalidFilter)
	}

	trips, err := s.Trips.ListTrips(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list trips: %w", err)
	}
	return trips, nil
}

// GetRoute returns the trip's route steps in order.
func (s *TripService) GetRoute(ctx context.Context, id uuid.UUID) (_ []domain.TripRouteStep, err error) {
	defer obs.Time(ctx, "trips.GetRoute")(&err)

	steps, err := s.Trips.ListRouteSteps(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get route %s: %w", id, err)
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("get route %s: %w", id, domain.ErrTripNotFound)
	}
	return steps, nil
}

func (s *TripService) UpdateTripStatus(ctx context.Context, id uuid.UUID, status string) (err error) {
	defer obs.Time(ctx, "trips.UpdateTripStatus")(&err)

	st, err := domain.ParseTripStatus(status)
	if err != nil {
		return err
	}
	if err := s.Trips.UpdateTripStatus(ctx, id, st, s.now()); err != nil {
		return fmt.Errorf("update trip %s status to %s: %w", id, st, err)
	}
	return nil
}

func (s *TripService) UpdateStopStatus(ctx context.Context, tripID, stopID uuid.UUID, status, notes string) (err error) {
	defer obs.Time(ctx, "trips.UpdateStopStatus")(&err)

	st, err := domain.ParseStopStatus(status)
	if err != nil {
		return err
	}
	if err := s.Trips.UpdateStopStatus(ctx, tripID, stopID, st, notes, s.now()); err != nil {
		return fmt.Errorf("update stop %s of trip %s to %s: %w", stopID, tripID, st, err)
	}
	return nil
}

package memory

import (
	"context"
	"fleet-trip-service/internal/domain"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// CommitNewTrip checks every stock delta, then applies all withdrawals and
// inserts under one lock. Nothing is applied unless every check passes.
func (s *Store) CommitNewTrip(ctx context.Context, c domain.NewTripCommit) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.trips[c.Trip.ID]; exists {
		return uuid.Nil, fmt.Errorf("commit trip %s: duplicate trip id", c.Trip.ID)
	}

	// Sum per product so a product listed twice is checked once in total.
	need := make(map[uuid.UUID]int, len(c.StockDeltas))
	for _, d := range c.StockDeltas {
		need[d.ProductID] += d.Quantity
	}
	for _, d := range c.StockDeltas {
		st, ok := s.stock[d.ProductID]
		if !ok || st.AvailableQuantity < need[d.ProductID] {
			return uuid.Nil, &domain.StockConflictError{ProductID: d.ProductID, ProductName: d.ProductName}
		}
	}

	if s.FailCommit != nil {
		return uuid.Nil, fmt.Errorf("commit trip %s: %w", c.Trip.ID, s.FailCommit)
	}

	for id, qty := range need {
		st := s.stock[id]
		st.AvailableQuantity -= qty
		st.UpdatedAt = c.Trip.CreatedAt
		s.stock[id] = st
	}

	s.trips[c.Trip.ID] = &tripRecord{
		trip:  c.Trip,
		stops: append([]domain.TripStop(nil), c.Stops...),
		cargo: append([]domain.TripCargoItem(nil), c.CargoItems...),
		steps: append([]domain.TripRouteStep(nil), c.RouteSteps...),
	}
	return c.Trip.ID, nil
}

func (s *Store) summary(t domain.Trip) domain.TripSummary {
	sum := domain.TripSummary{Trip: t}
	if truck, ok := s.trucks[t.TruckID]; ok {
		sum.TruckName = truck.Name
	}
	if driver, ok := s.drivers[t.DriverID]; ok {
		sum.DriverName = driver.FullName()
	}
	return sum
}

func (s *Store) GetTrip(ctx context.Context, id uuid.UUID) (*domain.TripDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.trips[id]
	if !ok {
		return nil, domain.ErrTripNotFound
	}

	details := &domain.TripDetails{TripSummary: s.summary(rec.trip)}
	for _, stop := range rec.stops {
		details.Stops = append(details.Stops, domain.StopDetail{
			TripStop: stop,
			Name:     s.locations[stop.StopLocationID].Name,
		})
	}
	sort.Slice(details.Stops, func(i, j int) bool { return details.Stops[i].StopOrder < details.Stops[j].StopOrder })

	for _, item := range rec.cargo {
		details.CargoItems = append(details.CargoItems, domain.CargoDetail{
			ProductID:     item.ProductID,
			ProductName:   s.products[item.ProductID].Name,
			Quantity:      item.Quantity,
			TotalWeightKg: item.TotalWeightKg,
		})
	}
	return details, nil
}

// ListTrips returns matching trips, newest first.
func (s *Store) ListTrips(ctx context.Context, f domain.TripFilter) ([]domain.TripSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.TripSummary, 0, len(s.trips))
	for _, rec := range s.trips {
		if f.Matches(rec.trip) {
			out = append(out, s.summary(rec.trip))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListRouteSteps(ctx context.Context, tripID uuid.UUID) ([]domain.TripRouteStep, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.trips[tripID]
	if !ok {
		return nil, nil
	}
	steps := append([]domain.TripRouteStep(nil), rec.steps...)
	sort.Slice(steps, func(i, j int) bool { return steps[i].StepOrder < steps[j].StepOrder })
	return steps, nil
}

func (s *Store) UpdateTripStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.trips[id]
	if !ok {
		return domain.ErrTripNotFound
	}
	if rec.trip.Status.IsTerminal() {
		return domain.ErrTerminalStatus
	}
	if !rec.trip.Status.CanTransitionTo(status) {
		return fmt.Errorf("%s -> %s: %w", rec.trip.Status, status, domain.ErrInvalidTransition)
	}

	if rec.trip.Status == domain.TripWaiting && status == domain.TripCancelled {
		for _, item := range rec.cargo {
			st := s.stock[item.ProductID]
			st.ProductID = item.ProductID
			st.AvailableQuantity += item.Quantity
			st.UpdatedAt = at
			s.stock[item.ProductID] = st
		}
	}

	rec.trip.Status = status
	if status == domain.TripDone {
		done := at
		rec.trip.DoneAt = &done
	}
	return nil
}

func (s *Store) UpdateStopStatus(ctx context.Context, tripID, stopID uuid.UUID, status domain.StopStatus, notes string, at time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.trips[tripID]
	if !ok {
		return domain.ErrTripNotFound
	}
	if rec.trip.Status.IsTerminal() {
		return domain.ErrTerminalStatus
	}

	for i := range rec.stops {
		if rec.stops[i].ID != stopID {
			continue
		}
		arrived := at
		rec.stops[i].Status = status
		rec.stops[i].Notes = notes
		rec.stops[i].ActualArrivalTime = &arrived
		return nil
	}
	return domain.ErrStopNotFound
}

// StockOf returns the current quantity of a product, or -1 when unknown.
func (s *Store) StockOf(productID uuid.UUID) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.stock[productID]
	if !ok {
		return -1
	}
	return st.AvailableQuantity
}

// TripCount returns how many trips are stored.
func (s *Store) TripCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.trips)
}

package services

import (
	"context"
	"errors"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fleet-trip-service/internal/ports"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TripPlanner turns a trip request into a persisted, fully routed trip.
//
// Validation runs to completion before any route is computed, and routing
// completes before the commit. Validation, business-rule and routing
// failures come back as *domain.PlanningError with no side effects.
type TripPlanner struct {
	Graph     ports.GraphStore
	Trucks    ports.TruckStore
	Drivers   ports.DriverStore
	Locations ports.StopLocationStore
	Products  ports.ProductStore
	Trips     ports.TripStore
	Router    Router

	// Optional. Publish failures are logged and never fail planning.
	Events ports.EventPublisher
	// Upper bound on how long a publish may hold the response.
	PublishTimeout time.Duration

	Now   func() time.Time
	NewID func() uuid.UUID
}

// TripPlannerDeps carries the collaborators of a TripPlanner.
type TripPlannerDeps struct {
	Graph     ports.GraphStore
	Trucks    ports.TruckStore
	Drivers   ports.DriverStore
	Locations ports.StopLocationStore
	Products  ports.ProductStore
	Trips     ports.TripStore
	Router    Router
	Events    ports.EventPublisher
	Now       func() time.Time
}

func NewTripPlanner(deps TripPlannerDeps) *TripPlanner {
	return &TripPlanner{
		Graph:     deps.Graph,
		Trucks:    deps.Trucks,
		Drivers:   deps.Drivers,
		Locations: deps.Locations,
		Products:  deps.Products,
		Trips:     deps.Trips,
		Router:    deps.Router,
		Events:    deps.Events,
		Now:       deps.Now,
	}
}

// Published after a trip is committed.
type TripPlannedEvent struct {
	TripID               uuid.UUID       `json:"trip_id"`
	TruckID              uuid.UUID       `json:"truck_id"`
	DriverID             uuid.UUID       `json:"driver_id"`
	CreatedByUserID      string          `json:"created_by_user_id"`
	StopLocationIDs      []uuid.UUID     `json:"stop_location_ids"`
	TotalWeightKg        decimal.Decimal `json:"total_weight_kg"`
	TotalPlannedDistance decimal.Decimal `json:"total_planned_distance"`
	PlannedAt            time.Time       `json:"planned_at"`
}

const TripPlannedEventType = "trip.planned"

const defaultPublishTimeout = 2 * time.Second

func (p *TripPlanner) now() time.Time {
	if p.Now != nil {
		return p.Now().UTC()
	}
	return time.Now().UTC()
}

func (p *TripPlanner) newID() uuid.UUID {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.New()
}

// PlanAndCreateTrip validates the request, computes one shortest path per
// leg and commits the trip with its stock withdrawals as a single unit.
func (p *TripPlanner) PlanAndCreateTrip(
	ctx context.Context,
	req domain.TripPlanRequest,
	requestedBy string,
) (_ *domain.TripPlanResult, err error) {
	defer obs.Time(ctx, "trips.PlanAndCreateTrip")(&err)

	if err := validateShape(req); err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	truck, err := p.Trucks.FindActive(ctx, req.TruckID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: find truck %s: %w", req.TruckID, err)
	}
	if truck == nil {
		return nil, domain.NewPlanningError(domain.KindInfeasible, domain.ReasonTruckUnavailable, "truck unavailable")
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	driver, err := p.Drivers.FindActive(ctx, req.DriverID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: find driver %s: %w", req.DriverID, err)
	}
	if driver == nil {
		return nil, domain.NewPlanningError(domain.KindInfeasible, domain.ReasonDriverUnavailable, "driver unavailable")
	}

	locations, err := p.resolveStops(ctx, req.StopLocationIDs)
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	startExists, err := p.Graph.NodeExists(ctx, req.StartNodeID)
	if err != nil {
		return nil, fmt.Errorf("plan trip: check start node %s: %w", req.StartNodeID, err)
	}
	if !startExists {
		return nil, domain.NewPlanningError(domain.KindValidation, domain.ReasonInvalidStartNode, "invalid start node")
	}

	products, err := p.resolveProducts(ctx, req.CargoItems)
	if err != nil {
		return nil, err
	}

	// Stock is checked per line in request order so the first short
	// product is the one reported.
	totalWeight := decimal.Zero
	for _, line := range req.CargoItems {
		product := products[line.ProductID]
		if product.Available() < line.Quantity {
			return nil, domain.InsufficientStock(product.Name)
		}
		totalWeight = totalWeight.Add(product.LineWeight(line.Quantity))
	}
	if !truck.CanCarry(totalWeight) {
		return nil, domain.NewPlanningError(domain.KindInfeasible, domain.ReasonPayloadExceeded, "payload exceeds truck capacity")
	}

	tripID := p.newID()
	steps, distance, err := p.planRoute(ctx, tripID, req, locations)
	if err != nil {
		return nil, err
	}

	now := p.now()
	commit := domain.NewTripCommit{
		Trip: domain.Trip{
			ID:                   tripID,
			TruckID:              truck.ID,
			DriverID:             driver.ID,
			CreatedByUserID:      requestedBy,
			Status:               domain.TripWaiting,
			TotalPlannedDistance: distance,
			CreatedAt:            now,
		},
		RouteSteps: steps,
	}

	stops := make([]domain.PlannedStop, 0, len(req.StopLocationIDs))
	for i, locID := range req.StopLocationIDs {
		stop := domain.TripStop{
			ID:             p.newID(),
			TripID:         tripID,
			StopLocationID: locID,
			StopOrder:      i + 1,
			Status:         domain.StopPending,
		}
		commit.Stops = append(commit.Stops, stop)
		stops = append(stops, domain.PlannedStop{
			ID:             stop.ID,
			StopLocationID: locID,
			Name:           locations[locID].Name,
			Order:          stop.StopOrder,
			Status:         stop.Status,
		})
	}

	for _, line := range req.CargoItems {
		product := products[line.ProductID]
		commit.CargoItems = append(commit.CargoItems, domain.TripCargoItem{
			ID:            p.newID(),
			TripID:        tripID,
			ProductID:     product.ID,
			Quantity:      line.Quantity,
			TotalWeightKg: product.LineWeight(line.Quantity),
		})
		commit.StockDeltas = append(commit.StockDeltas, domain.StockDelta{
			ProductID:   product.ID,
			ProductName: product.Name,
			Quantity:    line.Quantity,
		})
	}

	// Last cancellation point. The commit itself runs detached from
	// cancellation so it either lands completely or not at all.
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	commitCtx := context.WithoutCancel(ctx)

	if _, err := p.Trips.CommitNewTrip(commitCtx, commit); err != nil {
		var conflict *domain.StockConflictError
		if errors.As(err, &conflict) {
			return nil, domain.InsufficientStock(conflict.ProductName)
		}
		log.Printf("req_id=%s op=trips.commit trip_id=%s truck_id=%s err=%v", obs.RequestID(ctx), tripID, truck.ID, err)
		return nil, fmt.Errorf("plan trip: %w", domain.ErrTripCreateFailed)
	}

	p.publishPlanned(commitCtx, commit, totalWeight)

	return &domain.TripPlanResult{
		TripID:               tripID,
		TotalWeightKg:        totalWeight,
		TotalPlannedDistance: distance,
		Stops:                stops,
		RouteSteps:           steps,
	}, nil
}

// validateShape checks the request before any store is touched.
func validateShape(req domain.TripPlanRequest) error {
	if len(req.StopLocationIDs) == 0 {
		return domain.NewPlanningError(domain.KindValidation, domain.ReasonNoStops, "trip requires at least one stop")
	}
	if len(req.CargoItems) == 0 {
		return domain.NewPlanningError(domain.KindValidation, domain.ReasonNoCargo, "trip requires at least one cargo item")
	}

	seen := make(map[uuid.UUID]struct{}, len(req.CargoItems))
	for _, line := range req.CargoItems {
		if line.Quantity <= 0 {
			return domain.NewPlanningError(domain.KindValidation, domain.ReasonInvalidQuantity,
				fmt.Sprintf("cargo quantity for product %s must be positive", line.ProductID))
		}
		if _, dup := seen[line.ProductID]; dup {
			return domain.NewPlanningError(domain.KindValidation, domain.ReasonDuplicateProduct,
				fmt.Sprintf("product %s appears in more than one cargo line", line.ProductID))
		}
		seen[line.ProductID] = struct{}{}
	}
	return nil
}

// resolveStops loads every requested stop location. A location may be
// visited more than once, so resolution is checked on distinct ids.
func (p *TripPlanner) resolveStops(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.StopLocation, error) {
	distinct := uniqueIDs(ids)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	found, err := p.Locations.FindManyWithGraphNode(ctx, distinct)
	if err != nil {
		return nil, fmt.Errorf("plan trip: find stop locations: %w", err)
	}

	byID := make(map[uuid.UUID]domain.StopLocation, len(found))
	for _, loc := range found {
		byID[loc.ID] = loc
	}
	for _, id := range distinct {
		if _, ok := byID[id]; !ok {
			return nil, domain.NewPlanningError(domain.KindValidation, domain.ReasonInvalidStopLocations, "invalid stop location(s)")
		}
	}
	return byID, nil
}

func (p *TripPlanner) resolveProducts(ctx context.Context, lines []domain.CargoLine) (map[uuid.UUID]domain.Product, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("plan trip: %w", err)
	}
	found, err := p.Products.FindManyWithStock(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("plan trip: find products: %w", err)
	}

	byID := make(map[uuid.UUID]domain.Product, len(found))
	for _, prod := range found {
		byID[prod.ID] = prod
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, domain.NewPlanningError(domain.KindValidation, domain.ReasonInvalidProducts, "invalid product(s)")
		}
	}
	return byID, nil
}

// planRoute computes one leg per stop in request order, starting from the
// start node. Steps are numbered continuously across legs and carry the
// running total.
func (p *TripPlanner) planRoute(
	ctx context.Context,
	tripID uuid.UUID,
	req domain.TripPlanRequest,
	locations map[uuid.UUID]domain.StopLocation,
) ([]domain.TripRouteStep, decimal.Decimal, error) {
	steps := make([]domain.TripRouteStep, 0, len(req.StopLocationIDs)*4)
	cumulative := decimal.Zero
	current := req.StartNodeID

	for i, locID := range req.StopLocationIDs {
		loc := locations[locID]

		if err := ctx.Err(); err != nil {
			return nil, decimal.Zero, fmt.Errorf("plan trip: %w", err)
		}
		leg, err := p.Router.ShortestPath(ctx, current, loc.GraphNodeID)
		if err != nil {
			if errors.Is(err, domain.ErrNoPath) {
				return nil, decimal.Zero, &domain.PlanningError{
					Kind:    domain.KindRouting,
					Reason:  domain.ReasonNoRoute,
					Message: fmt.Sprintf("no route for leg %d from node %s to stop %q (node %s)", i+1, current, loc.Name, loc.GraphNodeID),
					Err:     err,
				}
			}
			return nil, decimal.Zero, fmt.Errorf("plan trip: route leg %d: %w", i+1, err)
		}

		for _, e := range leg {
			cumulative = cumulative.Add(e.Weight)
			steps = append(steps, domain.TripRouteStep{
				ID:               p.newID(),
				TripID:           tripID,
				StepOrder:        len(steps) + 1,
				FromNodeID:       e.FromNodeID,
				ToNodeID:         e.ToNodeID,
				EdgeWeight:       e.Weight,
				CumulativeWeight: cumulative,
			})
		}

		current = loc.GraphNodeID
	}

	return steps, cumulative, nil
}

func (p *TripPlanner) publishPlanned(ctx context.Context, c domain.NewTripCommit, totalWeight decimal.Decimal) {
	if p.Events == nil {
		return
	}

	locIDs := make([]uuid.UUID, 0, len(c.Stops))
	for _, s := range c.Stops {
		locIDs = append(locIDs, s.StopLocationID)
	}

	event := TripPlannedEvent{
		TripID:               c.Trip.ID,
		TruckID:              c.Trip.TruckID,
		DriverID:             c.Trip.DriverID,
		CreatedByUserID:      c.Trip.CreatedByUserID,
		StopLocationIDs:      locIDs,
		TotalWeightKg:        totalWeight,
		TotalPlannedDistance: c.Trip.TotalPlannedDistance,
		PlannedAt:            c.Trip.CreatedAt,
	}
	timeout := p.PublishTimeout
	if timeout <= 0 {
		timeout = defaultPublishTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := p.Events.Publish(ctx, c.Trip.ID.String(), event); err != nil {
		log.Printf("req_id=%s op=trips.publish event=%s trip_id=%s err=%v", obs.RequestID(ctx), TripPlannedEventType, c.Trip.ID, err)
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

package services

import (
	"context"
	"errors"
	"fleet-trip-service/internal/domain"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

func TestPlanAndCreateTripSuccess(t *testing.T) {
	f := newFixture(t, 5)

	res, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(2, f.uptown, f.harbor), "dispatcher-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !res.TotalWeightKg.Equal(decimal.NewFromInt(60)) {
		t.Errorf("total weight = %s, want 60", res.TotalWeightKg)
	}
	if !res.TotalPlannedDistance.Equal(decimal.NewFromInt(8)) {
		t.Errorf("total distance = %s, want 8", res.TotalPlannedDistance)
	}

	// Leg 1: A->B->C, leg 2: C->D, numbered continuously.
	wantSteps := []struct {
		from, to   uuid.UUID
		weight     int64
		cumulative int64
	}{
		{f.a, f.b, 5, 5},
		{f.b, f.c, 2, 7},
		{f.c, f.d, 1, 8},
	}
	if len(res.RouteSteps) != len(wantSteps) {
		t.Fatalf("expected %d route steps, got %d", len(wantSteps), len(res.RouteSteps))
	}
	for i, w := range wantSteps {
		s := res.RouteSteps[i]
		if s.StepOrder != i+1 || s.FromNodeID != w.from || s.ToNodeID != w.to {
			t.Errorf("step %d = %+v", i+1, s)
		}
		if !s.EdgeWeight.Equal(decimal.NewFromInt(w.weight)) || !s.CumulativeWeight.Equal(decimal.NewFromInt(w.cumulative)) {
			t.Errorf("step %d weight=%s cumulative=%s, want %d/%d", i+1, s.EdgeWeight, s.CumulativeWeight, w.weight, w.cumulative)
		}
	}
	last := res.RouteSteps[len(res.RouteSteps)-1]
	if !last.CumulativeWeight.Equal(res.TotalPlannedDistance) {
		t.Errorf("final cumulative %s != total distance %s", last.CumulativeWeight, res.TotalPlannedDistance)
	}

	if len(res.Stops) != 2 {
		t.Fatalf("expected 2 stops, got %d", len(res.Stops))
	}
	for i, want := range []struct {
		loc  uuid.UUID
		name string
	}{{f.uptown, "Uptown"}, {f.harbor, "Harbor"}} {
		s := res.Stops[i]
		if s.Order != i+1 || s.StopLocationID != want.loc || s.Name != want.name || s.Status != domain.StopPending {
			t.Errorf("stop %d = %+v", i+1, s)
		}
	}

	if got := f.store.StockOf(f.product); got != 3 {
		t.Errorf("stock = %d, want 3", got)
	}

	details, err := f.store.GetTrip(context.Background(), res.TripID)
	if err != nil {
		t.Fatalf("get trip: %v", err)
	}
	if details.Status != domain.TripWaiting || details.CreatedByUserID != "dispatcher-1" {
		t.Errorf("trip = status %q by %q", details.Status, details.CreatedByUserID)
	}
	if !details.CreatedAt.Equal(f.fixedNow) {
		t.Errorf("created at = %v, want %v", details.CreatedAt, f.fixedNow)
	}
	cargoTotal := decimal.Zero
	for _, c := range details.CargoItems {
		cargoTotal = cargoTotal.Add(c.TotalWeightKg)
	}
	if !cargoTotal.Equal(res.TotalWeightKg) {
		t.Errorf("persisted cargo weight %s != reported %s", cargoTotal, res.TotalWeightKg)
	}
	if len(details.Stops) != 2 || details.Stops[0].StopOrder != 1 || details.Stops[1].StopOrder != 2 {
		t.Errorf("persisted stops = %+v", details.Stops)
	}

	steps, err := f.store.ListRouteSteps(context.Background(), res.TripID)
	if err != nil || len(steps) != 3 {
		t.Fatalf("persisted steps = %d, err = %v", len(steps), err)
	}
}

func TestPlanAndCreateTripPayloadExceeded(t *testing.T) {
	f := newFixture(t, 5)

	// 4 x 30kg = 120kg on a 100kg truck.
	_, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(4, f.uptown), "u")

	pe, ok := domain.AsPlanningError(err)
	if !ok {
		t.Fatalf("err = %v, want PlanningError", err)
	}
	if pe.Reason != domain.ReasonPayloadExceeded || pe.Kind != domain.KindInfeasible {
		t.Errorf("reason = %s/%s, want infeasible/payload_exceeds_capacity", pe.Kind, pe.Reason)
	}
	if pe.Message != "payload exceeds truck capacity" {
		t.Errorf("message = %q", pe.Message)
	}
	if got := f.store.StockOf(f.product); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if f.store.TripCount() != 0 {
		t.Errorf("trip count = %d, want 0", f.store.TripCount())
	}
}

func TestPlanAndCreateTripInsufficientStock(t *testing.T) {
	f := newFixture(t, 2)

	_, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(3, f.uptown), "u")

	pe, ok := domain.AsPlanningError(err)
	if !ok {
		t.Fatalf("err = %v, want PlanningError", err)
	}
	if pe.Reason != domain.ReasonInsufficientStock {
		t.Errorf("reason = %s, want insufficient_stock", pe.Reason)
	}
	if pe.Message != "insufficient stock for P" {
		t.Errorf("message = %q, want it to name product P", pe.Message)
	}
	if got := f.store.StockOf(f.product); got != 2 {
		t.Errorf("stock = %d, want 2", got)
	}
}

func TestPlanAndCreateTripValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *fixture, req *domain.TripPlanRequest)
		reason domain.PlanningReason
		kind   domain.PlanningKind
	}{
		{
			name:   "no stops",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.StopLocationIDs = nil },
			reason: domain.ReasonNoStops,
			kind:   domain.KindValidation,
		},
		{
			name:   "no cargo",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.CargoItems = nil },
			reason: domain.ReasonNoCargo,
			kind:   domain.KindValidation,
		},
		{
			name:   "zero quantity",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.CargoItems[0].Quantity = 0 },
			reason: domain.ReasonInvalidQuantity,
			kind:   domain.KindValidation,
		},
		{
			name: "duplicate product line",
			mutate: func(f *fixture, req *domain.TripPlanRequest) {
				req.CargoItems = append(req.CargoItems, domain.CargoLine{ProductID: f.product, Quantity: 1})
			},
			reason: domain.ReasonDuplicateProduct,
			kind:   domain.KindValidation,
		},
		{
			name:   "unknown truck",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.TruckID = uuid.New() },
			reason: domain.ReasonTruckUnavailable,
			kind:   domain.KindInfeasible,
		},
		{
			name:   "inactive truck",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.TruckID = f.idleRig },
			reason: domain.ReasonTruckUnavailable,
			kind:   domain.KindInfeasible,
		},
		{
			name:   "inactive driver",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.DriverID = f.offDuty },
			reason: domain.ReasonDriverUnavailable,
			kind:   domain.KindInfeasible,
		},
		{
			name: "unknown stop location",
			mutate: func(f *fixture, req *domain.TripPlanRequest) {
				req.StopLocationIDs = append(req.StopLocationIDs, uuid.New())
			},
			reason: domain.ReasonInvalidStopLocations,
			kind:   domain.KindValidation,
		},
		{
			name:   "unknown start node",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.StartNodeID = uuid.New() },
			reason: domain.ReasonInvalidStartNode,
			kind:   domain.KindValidation,
		},
		{
			name:   "unknown product",
			mutate: func(f *fixture, req *domain.TripPlanRequest) { req.CargoItems[0].ProductID = uuid.New() },
			reason: domain.ReasonInvalidProducts,
			kind:   domain.KindValidation,
		},
		{
			// Both stops and truck are bad; the stop check runs first.
			name: "fail fast order",
			mutate: func(f *fixture, req *domain.TripPlanRequest) {
				req.StopLocationIDs = nil
				req.TruckID = uuid.New()
			},
			reason: domain.ReasonNoStops,
			kind:   domain.KindValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, 5)
			req := f.request(1, f.uptown)
			tt.mutate(f, &req)

			_, err := f.planner.PlanAndCreateTrip(context.Background(), req, "u")

			pe, ok := domain.AsPlanningError(err)
			if !ok {
				t.Fatalf("err = %v, want PlanningError", err)
			}
			if pe.Reason != tt.reason || pe.Kind != tt.kind {
				t.Errorf("got %s/%s, want %s/%s", pe.Kind, pe.Reason, tt.kind, tt.reason)
			}
			if got := f.store.StockOf(f.product); got != 5 {
				t.Errorf("stock = %d, want 5", got)
			}
			if f.store.TripCount() != 0 {
				t.Errorf("trip count = %d, want 0", f.store.TripCount())
			}
		})
	}
}

func TestPlanAndCreateTripUnreachableLeg(t *testing.T) {
	f := newFixture(t, 5)

	_, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(1, f.uptown, f.island), "u")

	pe, ok := domain.AsPlanningError(err)
	if !ok {
		t.Fatalf("err = %v, want PlanningError", err)
	}
	if pe.Kind != domain.KindRouting || pe.Reason != domain.ReasonNoRoute {
		t.Errorf("got %s/%s, want routing/no_route", pe.Kind, pe.Reason)
	}
	if !errors.Is(err, domain.ErrNoPath) {
		t.Errorf("errors.Is(ErrNoPath) = false")
	}
	if !strings.Contains(pe.Message, "leg 2") || !strings.Contains(pe.Message, "Island") {
		t.Errorf("message %q should name leg 2 and stop Island", pe.Message)
	}
	if got := f.store.StockOf(f.product); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if f.store.TripCount() != 0 {
		t.Errorf("trip count = %d, want 0", f.store.TripCount())
	}
}

func TestPlanAndCreateTripLegsInRequestOrder(t *testing.T) {
	f := newFixture(t, 5)
	router := &recordingRouter{inner: f.planner.Router}
	f.planner.Router = router

	// Harbor before Uptown, then Uptown again: the second visit is a zero-length leg.
	res, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(1, f.harbor, f.uptown, f.uptown), "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	wantLegs := [][2]uuid.UUID{{f.a, f.d}, {f.d, f.c}, {f.c, f.c}}
	if len(router.legs) != len(wantLegs) {
		t.Fatalf("legs = %d, want %d", len(router.legs), len(wantLegs))
	}
	for i := range wantLegs {
		if router.legs[i] != wantLegs[i] {
			t.Errorf("leg %d = %v, want %v", i+1, router.legs[i], wantLegs[i])
		}
	}

	// A->B->C->D (8) then D->C (1); the revisit adds no steps.
	if len(res.RouteSteps) != 4 {
		t.Fatalf("route steps = %d, want 4", len(res.RouteSteps))
	}
	for i, s := range res.RouteSteps {
		if s.StepOrder != i+1 {
			t.Errorf("step %d has order %d", i, s.StepOrder)
		}
	}
	if !res.TotalPlannedDistance.Equal(decimal.NewFromInt(9)) {
		t.Errorf("total distance = %s, want 9", res.TotalPlannedDistance)
	}
	if len(res.Stops) != 3 || res.Stops[2].Order != 3 || res.Stops[2].StopLocationID != f.uptown {
		t.Errorf("stops = %+v", res.Stops)
	}
}

func TestPlanAndCreateTripCommitFailureRollsBack(t *testing.T) {
	f := newFixture(t, 5)
	f.store.FailCommit = errors.New("disk full")

	_, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(2, f.uptown), "u")

	if !errors.Is(err, domain.ErrTripCreateFailed) {
		t.Fatalf("err = %v, want ErrTripCreateFailed", err)
	}
	if strings.Contains(err.Error(), "disk full") {
		t.Errorf("error %q leaks the underlying cause", err)
	}
	if _, ok := domain.AsPlanningError(err); ok {
		t.Errorf("commit failure must not be reported as a planning error")
	}
	if got := f.store.StockOf(f.product); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if f.store.TripCount() != 0 {
		t.Errorf("trip count = %d, want 0", f.store.TripCount())
	}
}

func TestPlanAndCreateTripCancelled(t *testing.T) {
	f := newFixture(t, 5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.planner.PlanAndCreateTrip(ctx, f.request(1, f.uptown), "u")

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if got := f.store.StockOf(f.product); got != 5 {
		t.Errorf("stock = %d, want 5", got)
	}
	if f.store.TripCount() != 0 {
		t.Errorf("trip count = %d, want 0", f.store.TripCount())
	}
}

func TestPlanAndCreateTripConcurrentStock(t *testing.T) {
	for round := 0; round < 20; round++ {
		f := newFixture(t, 5)

		var wg sync.WaitGroup
		errs := make([]error, 2)
		start := make(chan struct{})
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				<-start
				_, errs[i] = f.planner.PlanAndCreateTrip(context.Background(), f.request(3, f.uptown), "u")
			}(i)
		}
		close(start)
		wg.Wait()

		succeeded := 0
		for _, err := range errs {
			if err == nil {
				succeeded++
				continue
			}
			pe, ok := domain.AsPlanningError(err)
			if !ok || pe.Reason != domain.ReasonInsufficientStock {
				t.Fatalf("round %d: loser err = %v, want insufficient stock", round, err)
			}
		}
		if succeeded != 1 {
			t.Fatalf("round %d: %d requests succeeded, want exactly 1", round, succeeded)
		}
		if got := f.store.StockOf(f.product); got != 2 {
			t.Fatalf("round %d: stock = %d, want 2", round, got)
		}
	}
}

func TestPlanAndCreateTripPublishesEvent(t *testing.T) {
	f := newFixture(t, 5)
	pub := &fakePublisher{err: errors.New("broker down")}
	f.planner.Events = pub

	res, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(1, f.uptown), "u")
	if err != nil {
		t.Fatalf("publish failure must not fail planning: %v", err)
	}
	if len(pub.keys) != 1 || pub.keys[0] != res.TripID.String() {
		t.Errorf("published keys = %v, want [%s]", pub.keys, res.TripID)
	}
}

func TestPlanAndCreateTripBoundsSlowPublish(t *testing.T) {
	f := newFixture(t, 5)
	pub := &fakePublisher{block: true}
	f.planner.Events = pub
	f.planner.PublishTimeout = 20 * time.Millisecond

	// The request context never ends; only the publish timeout can release it.
	start := time.Now()
	res, err := f.planner.PlanAndCreateTrip(context.Background(), f.request(1, f.uptown), "u")
	if err != nil {
		t.Fatalf("slow publish must not fail planning: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("planning took %v, want it bounded by the publish timeout", elapsed)
	}
	if len(pub.keys) != 1 || pub.keys[0] != res.TripID.String() {
		t.Errorf("published keys = %v, want [%s]", pub.keys, res.TripID)
	}
	if got := f.store.StockOf(f.product); got != 4 {
		t.Errorf("stock = %d, want 4", got)
	}
}

package services

import (
	"context"
	"fleet-trip-service/internal/adapters/memory"
	"fleet-trip-service/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// fixture is the A-B-C-D network:
//
//	A --5-- B --2-- C --1-- D      E (isolated)
//	 \_______10______/
//
// Stop locations: "Uptown" at C, "Harbor" at D, "Island" at E.
type fixture struct {
	store   *memory.Store
	planner *TripPlanner

	a, b, c, d, e uuid.UUID
	uptown        uuid.UUID
	harbor        uuid.UUID
	island        uuid.UUID

	truck    uuid.UUID
	driver   uuid.UUID
	product  uuid.UUID
	idleRig  uuid.UUID
	offDuty  uuid.UUID
	fixedNow time.Time
}

func newFixture(t *testing.T, stock int) *fixture {
	t.Helper()

	f := &fixture{
		store:    memory.NewStore(),
		a:        uuid.New(),
		b:        uuid.New(),
		c:        uuid.New(),
		d:        uuid.New(),
		e:        uuid.New(),
		uptown:   uuid.New(),
		harbor:   uuid.New(),
		island:   uuid.New(),
		truck:    uuid.New(),
		driver:   uuid.New(),
		product:  uuid.New(),
		idleRig:  uuid.New(),
		offDuty:  uuid.New(),
		fixedNow: time.Date(2026, 5, 4, 8, 0, 0, 0, time.UTC),
	}

	for id, name := range map[uuid.UUID]string{f.a: "A", f.b: "B", f.c: "C", f.d: "D", f.e: "E"} {
		f.store.AddNode(domain.GraphNode{ID: id, Name: name})
	}
	f.store.AddEdge(edge(f.a, f.b, 5, true))
	f.store.AddEdge(edge(f.b, f.c, 2, true))
	f.store.AddEdge(edge(f.a, f.c, 10, true))
	f.store.AddEdge(edge(f.c, f.d, 1, true))

	for id, loc := range map[uuid.UUID]struct {
		name string
		node uuid.UUID
	}{
		f.uptown: {"Uptown", f.c},
		f.harbor: {"Harbor", f.d},
		f.island: {"Island", f.e},
	} {
		if err := f.store.AddStopLocation(domain.StopLocation{ID: id, Name: loc.name, GraphNodeID: loc.node}); err != nil {
			t.Fatalf("add stop location: %v", err)
		}
	}

	f.store.AddTruck(domain.Truck{ID: f.truck, Name: "Rig 1", MaxPayloadKg: decimal.NewFromInt(100), IsActive: true})
	f.store.AddTruck(domain.Truck{ID: f.idleRig, Name: "Rig 2", MaxPayloadKg: decimal.NewFromInt(100), IsActive: false})
	f.store.AddDriver(domain.Driver{ID: f.driver, FirstName: "Dana", LastName: "Reyes", IsActive: true})
	f.store.AddDriver(domain.Driver{ID: f.offDuty, FirstName: "Sam", LastName: "Cole", IsActive: false})
	f.store.AddProduct(domain.Product{
		ID:           f.product,
		Name:         "P",
		UnitWeightKg: decimal.NewFromInt(30),
		Stock:        &domain.ProductStock{AvailableQuantity: stock},
	})

	f.planner = NewTripPlanner(TripPlannerDeps{
		Graph:     f.store,
		Trucks:    f.store.Trucks(),
		Drivers:   f.store.Drivers(),
		Locations: f.store,
		Products:  f.store,
		Trips:     f.store,
		Router:    NewRoutingService(f.store),
		Now:       func() time.Time { return f.fixedNow },
	})
	return f
}

func (f *fixture) request(qty int, stops ...uuid.UUID) domain.TripPlanRequest {
	return domain.TripPlanRequest{
		TruckID:         f.truck,
		DriverID:        f.driver,
		StartNodeID:     f.a,
		StopLocationIDs: stops,
		CargoItems:      []domain.CargoLine{{ProductID: f.product, Quantity: qty}},
	}
}

// recordingRouter records legs and delegates to an inner router.
type recordingRouter struct {
	inner Router
	mu    sync.Mutex
	legs  [][2]uuid.UUID
}

func (r *recordingRouter) ShortestPath(ctx context.Context, start, end uuid.UUID) ([]domain.RouteEdge, error) {
	r.mu.Lock()
	r.legs = append(r.legs, [2]uuid.UUID{start, end})
	r.mu.Unlock()
	return r.inner.ShortestPath(ctx, start, end)
}

type fakePublisher struct {
	keys []string
	err  error
	// block makes Publish wait for its context to end.
	block bool
}

func (p *fakePublisher) Publish(ctx context.Context, key string, value any) error {
	p.keys = append(p.keys, key)
	if p.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return p.err
}

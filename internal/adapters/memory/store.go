package memory

import (
	"context"
	"fleet-trip-service/internal/adapters/seed"
	"fleet-trip-service/internal/domain"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

type tripRecord struct {
	trip  domain.Trip
	stops []domain.TripStop
	cargo []domain.TripCargoItem
	steps []domain.TripRouteStep
}

// In-memory implementation of every store port.
//
// A single mutex guards all state, so a trip commit (stock withdrawals plus
// inserts) is applied all-or-nothing and is isolated from concurrent
// commits. Values are copied in and out; callers never share state with
// the store.
type Store struct {
	mu sync.RWMutex

	nodes     map[uuid.UUID]domain.GraphNode
	edges     []domain.GraphEdge
	trucks    map[uuid.UUID]domain.Truck
	drivers   map[uuid.UUID]domain.Driver
	locations map[uuid.UUID]domain.StopLocation
	products  map[uuid.UUID]domain.Product
	stock     map[uuid.UUID]domain.ProductStock
	trips     map[uuid.UUID]*tripRecord

	// FailCommit, when set, makes CommitNewTrip fail after its stock
	// checks pass and before anything is applied.
	FailCommit error
}

func NewStore() *Store {
	return &Store{
		nodes:     make(map[uuid.UUID]domain.GraphNode),
		trucks:    make(map[uuid.UUID]domain.Truck),
		drivers:   make(map[uuid.UUID]domain.Driver),
		locations: make(map[uuid.UUID]domain.StopLocation),
		products:  make(map[uuid.UUID]domain.Product),
		stock:     make(map[uuid.UUID]domain.ProductStock),
		trips:     make(map[uuid.UUID]*tripRecord),
	}
}

// NewStoreFromSeed builds a store holding the given demo network.
func NewStoreFromSeed(n *seed.Network) (*Store, error) {
	s := NewStore()
	at := n.LoadedAt

	for _, sn := range n.Nodes {
		node, err := sn.ToDomain()
		if err != nil {
			return nil, fmt.Errorf("memory seed: %w", err)
		}
		s.AddNode(node)
	}
	for _, e := range n.Edges {
		s.AddEdge(e.ToDomain())
	}
	for _, l := range n.Locations {
		if err := s.AddStopLocation(l.ToDomain(at)); err != nil {
			return nil, fmt.Errorf("memory seed: %w", err)
		}
	}
	for _, t := range n.Trucks {
		s.AddTruck(t.ToDomain(at))
	}
	for _, d := range n.Drivers {
		s.AddDriver(d.ToDomain(at))
	}
	for _, p := range n.Products {
		s.AddProduct(p.ToDomain(at))
	}
	return s, nil
}

func (s *Store) AddNode(n domain.GraphNode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nodes[n.ID] = n
}

func (s *Store) AddEdge(e domain.GraphEdge) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edges = append(s.edges, e)
}

func (s *Store) AddTruck(t domain.Truck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trucks[t.ID] = t
}

func (s *Store) AddDriver(d domain.Driver) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.drivers[d.ID] = d
}

// AddStopLocation requires the location's graph node to exist.
func (s *Store) AddStopLocation(l domain.StopLocation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[l.GraphNodeID]; !ok {
		return fmt.Errorf("add stop location %q: %w", l.Name, domain.ErrInvalidNodeRef)
	}
	l.GraphNode = nil
	s.locations[l.ID] = l
	return nil
}

// AddProduct stores the product and its stock record (zero when absent).
func (s *Store) AddProduct(p domain.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stock := domain.ProductStock{ProductID: p.ID, UpdatedAt: p.CreatedAt}
	if p.Stock != nil {
		stock = *p.Stock
		stock.ProductID = p.ID
	}
	p.Stock = nil
	s.products[p.ID] = p
	s.stock[p.ID] = stock
}

// Trucks returns the truck store view.
func (s *Store) Trucks() *TruckStore { return &TruckStore{s: s} }

// Drivers returns the driver store view.
func (s *Store) Drivers() *DriverStore { return &DriverStore{s: s} }

type TruckStore struct{ s *Store }

func (t *TruckStore) FindActive(ctx context.Context, truckID uuid.UUID) (*domain.Truck, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	defer t.s.mu.RUnlock()

	truck, ok := t.s.trucks[truckID]
	if !ok || !truck.IsActive {
		return nil, nil
	}
	return &truck, nil
}

type DriverStore struct{ s *Store }

func (d *DriverStore) FindActive(ctx context.Context, driverID uuid.UUID) (*domain.Driver, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.s.mu.RLock()
	defer d.s.mu.RUnlock()

	driver, ok := d.s.drivers[driverID]
	if !ok || !driver.IsActive {
		return nil, nil
	}
	return &driver, nil
}

// Graph

func (s *Store) ListEdges(ctx context.Context) ([]domain.GraphEdge, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.GraphEdge(nil), s.edges...), nil
}

func (s *Store) NodeExists(ctx context.Context, nodeID uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.nodes[nodeID]
	return ok, nil
}

// ListNodes returns nodes ordered by name.
func (s *Store) ListNodes(ctx context.Context) ([]domain.GraphNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.GraphNode, 0, len(s.nodes))
	for _, n := range s.nodes {
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	return out, nil
}

func (s *Store) GetNodes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.GraphNode, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[uuid.UUID]domain.GraphNode, len(ids))
	for _, id := range ids {
		if n, ok := s.nodes[id]; ok {
			out[id] = n
		}
	}
	return out, nil
}

func (s *Store) CreateNode(ctx context.Context, node domain.GraphNode) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.AddNode(node)
	return nil
}

func (s *Store) CreateEdge(ctx context.Context, edge domain.GraphEdge) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, fromOK := s.nodes[edge.FromNodeID]
	_, toOK := s.nodes[edge.ToNodeID]
	if !fromOK || !toOK {
		return fmt.Errorf("create edge: %w", domain.ErrInvalidNodeRef)
	}
	s.edges = append(s.edges, edge)
	return nil
}

// Stop locations

func (s *Store) FindManyWithGraphNode(ctx context.Context, ids []uuid.UUID) ([]domain.StopLocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.StopLocation, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		loc, ok := s.locations[id]
		if !ok {
			continue
		}
		if node, ok := s.nodes[loc.GraphNodeID]; ok {
			n := node
			loc.GraphNode = &n
		}
		out = append(out, loc)
	}
	return out, nil
}

// Products

func (s *Store) FindManyWithStock(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Product, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		p, ok := s.products[id]
		if !ok {
			continue
		}
		if st, ok := s.stock[id]; ok {
			stock := st
			p.Stock = &stock
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Store) GetStock(ctx context.Context, productID uuid.UUID) (*domain.ProductStock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	st, ok := s.stock[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	return &st, nil
}

func (s *Store) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, at time.Time) (*domain.ProductStock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.stock[productID]
	if !ok {
		return nil, domain.ErrProductNotFound
	}
	if st.AvailableQuantity+delta < 0 {
		return nil, domain.ErrNegativeStock
	}
	st.AvailableQuantity += delta
	st.UpdatedAt = at
	s.stock[productID] = st
	return &st, nil
}

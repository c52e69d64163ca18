package services

import (
	"context"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fleet-trip-service/internal/ports"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geo"
	"github.com/shopspring/decimal"
)

// GraphService maintains the routing graph.
type GraphService struct {
	Graph ports.GraphStore
	NewID func() uuid.UUID
}

func NewGraphService(graph ports.GraphStore) *GraphService {
	return &GraphService{Graph: graph, NewID: uuid.New}
}

func (s *GraphService) newID() uuid.UUID {
	if s.NewID != nil {
		return s.NewID()
	}
	return uuid.New()
}

func (s *GraphService) ListNodes(ctx context.Context) (_ []domain.GraphNode, err error) {
	defer obs.Time(ctx, "graph.ListNodes")(&err)

	nodes, err := s.Graph.ListNodes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list nodes: %w", err)
	}
	return nodes, nil
}

func (s *GraphService) ListEdges(ctx context.Context) (_ []domain.GraphEdge, err error) {
	defer obs.Time(ctx, "graph.ListEdges")(&err)

	edges, err := s.Graph.ListEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return edges, nil
}

// NodesByID returns the known nodes among ids.
func (s *GraphService) NodesByID(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.GraphNode, error) {
	nodes, err := s.Graph.GetNodes(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("get nodes: %w", err)
	}
	return nodes, nil
}

func (s *GraphService) CreateNode(ctx context.Context, name string, lat, lon *float64) (_ *domain.GraphNode, err error) {
	defer obs.Time(ctx, "graph.CreateNode")(&err)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("create node: %w", domain.ErrNameRequired)
	}
	coords, err := domain.NewCoordinates(lat, lon)
	if err != nil {
		return nil, fmt.Errorf("create node %q: %w: %w", name, domain.ErrInvalidCoordinates, err)
	}

	node := domain.GraphNode{ID: s.newID(), Name: name, Coords: coords}
	if err := s.Graph.CreateNode(ctx, node); err != nil {
		return nil, fmt.Errorf("create node %q: %w", name, err)
	}
	return &node, nil
}

// CreateEdge connects two existing nodes. A nil weight defaults to the
// great-circle distance in km when both nodes have coordinates.
func (s *GraphService) CreateEdge(
	ctx context.Context,
	from, to uuid.UUID,
	weight *decimal.Decimal,
	bidirectional bool,
) (_ *domain.GraphEdge, err error) {
	defer obs.Time(ctx, "graph.CreateEdge")(&err)

	nodes, err := s.Graph.GetNodes(ctx, []uuid.UUID{from, to})
	if err != nil {
		return nil, fmt.Errorf("create edge: load nodes: %w", err)
	}
	fromNode, fromOK := nodes[from]
	toNode, toOK := nodes[to]
	if !fromOK || !toOK {
		return nil, fmt.Errorf("create edge %s -> %s: %w", from, to, domain.ErrInvalidNodeRef)
	}

	var w decimal.Decimal
	switch {
	case weight != nil:
		w = *weight
	case fromNode.Coords != nil && toNode.Coords != nil:
		w = haversineKm(*fromNode.Coords, *toNode.Coords)
	default:
		return nil, fmt.Errorf("create edge %s -> %s: weight required without coordinates: %w", from, to, domain.ErrInvalidWeight)
	}
	if w.IsNegative() {
		return nil, fmt.Errorf("create edge %s -> %s: %w", from, to, domain.ErrInvalidWeight)
	}

	e := domain.GraphEdge{
		ID:              s.newID(),
		FromNodeID:      from,
		ToNodeID:        to,
		Weight:          w,
		IsBidirectional: bidirectional,
	}
	if err := s.Graph.CreateEdge(ctx, e); err != nil {
		return nil, fmt.Errorf("create edge %s -> %s: %w", from, to, err)
	}
	return &e, nil
}

// haversineKm rounds to metres.
func haversineKm(a, b domain.Coordinates) decimal.Decimal {
	metres := geo.DistanceHaversine(a.Point(), b.Point())
	return decimal.NewFromFloat(metres / 1000).Round(3)
}

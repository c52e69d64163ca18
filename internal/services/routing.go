package services

import (
	"context"
	"errors"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fleet-trip-service/internal/ports"
	"fmt"

	"github.com/google/uuid"
)

// Router answers "how do I get from node X to node Y".
type Router interface {
	ShortestPath(ctx context.Context, start, end uuid.UUID) ([]domain.RouteEdge, error)
}

// RoutingService runs the shortest-path engine over the live graph.
// The edge set is loaded on every call; edges may be added between calls.
type RoutingService struct {
	Graph ports.GraphStore
}

func NewRoutingService(graph ports.GraphStore) *RoutingService {
	return &RoutingService{Graph: graph}
}

func (s *RoutingService) ShortestPath(ctx context.Context, start, end uuid.UUID) (_ []domain.RouteEdge, err error) {
	defer obs.Time(ctx, "routing.ShortestPath")(&err)

	if s.Graph == nil {
		return nil, errors.New("routing: graph store is nil")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	edges, err := s.Graph.ListEdges(ctx)
	if err != nil {
		return nil, fmt.Errorf("routing: list edges: %w", err)
	}

	path, err := ShortestPath(start, end, edges)
	if err != nil {
		return nil, fmt.Errorf("routing: %w", err)
	}
	return path, nil
}

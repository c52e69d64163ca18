package services

import (
	"context"
	"errors"
	"fleet-trip-service/internal/domain"
	"testing"

	"github.com/google/uuid"
)

// fakeGraph serves a mutable edge list and counts loads.
type fakeGraph struct {
	edges   []domain.GraphEdge
	listErr error
	loads   int
}

func (g *fakeGraph) ListEdges(ctx context.Context) ([]domain.GraphEdge, error) {
	g.loads++
	if g.listErr != nil {
		return nil, g.listErr
	}
	return g.edges, nil
}

func (g *fakeGraph) NodeExists(ctx context.Context, nodeID uuid.UUID) (bool, error) {
	return false, nil
}

func (g *fakeGraph) ListNodes(ctx context.Context) ([]domain.GraphNode, error) { return nil, nil }

func (g *fakeGraph) GetNodes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.GraphNode, error) {
	return map[uuid.UUID]domain.GraphNode{}, nil
}

func (g *fakeGraph) CreateNode(ctx context.Context, node domain.GraphNode) error { return nil }

func (g *fakeGraph) CreateEdge(ctx context.Context, e domain.GraphEdge) error {
	g.edges = append(g.edges, e)
	return nil
}

func TestRoutingServiceSeesNewEdges(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	graph := &fakeGraph{}
	svc := NewRoutingService(graph)

	_, err := svc.ShortestPath(context.Background(), a, b)
	if !errors.Is(err, domain.ErrNoPath) {
		t.Fatalf("err = %v, want ErrNoPath", err)
	}

	graph.edges = append(graph.edges, edge(a, b, 3, false))

	path, err := svc.ShortestPath(context.Background(), a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(path) != 1 || path[0].FromNodeID != a || path[0].ToNodeID != b {
		t.Errorf("path = %+v", path)
	}
	if graph.loads != 2 {
		t.Errorf("edge loads = %d, want one per call", graph.loads)
	}
}

func TestRoutingServiceSameNode(t *testing.T) {
	a := uuid.New()
	svc := NewRoutingService(&fakeGraph{})

	path, err := svc.ShortestPath(context.Background(), a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path == nil || len(path) != 0 {
		t.Errorf("path = %#v, want empty non-nil", path)
	}
}

func TestRoutingServiceErrors(t *testing.T) {
	storeErr := errors.New("connection reset")

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		svc     *RoutingService
		ctx     context.Context
		wantErr error
	}{
		{"store failure", NewRoutingService(&fakeGraph{listErr: storeErr}), context.Background(), storeErr},
		{"cancelled", NewRoutingService(&fakeGraph{}), cancelled, context.Canceled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.svc.ShortestPath(tt.ctx, uuid.New(), uuid.New())
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if errors.Is(err, domain.ErrNoPath) {
				t.Errorf("infrastructure failure reported as ErrNoPath")
			}
		})
	}

	if _, err := (&RoutingService{}).ShortestPath(context.Background(), uuid.New(), uuid.New()); err == nil {
		t.Errorf("expected error for missing graph store")
	}
}

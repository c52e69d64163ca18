package ports

import (
	"context"
	"fleet-trip-service/internal/domain"

	"github.com/google/uuid"
)

// Port: the persisted routing graph.
// Planning only reads from it; many requests may read concurrently.
type GraphStore interface {
	// Return every edge of the current graph.
	ListEdges(ctx context.Context) ([]domain.GraphEdge, error)
	NodeExists(ctx context.Context, nodeID uuid.UUID) (bool, error)
	ListNodes(ctx context.Context) ([]domain.GraphNode, error)
	// Return the nodes among ids that exist, keyed by id.
	GetNodes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.GraphNode, error)
	CreateNode(ctx context.Context, node domain.GraphNode) error
	CreateEdge(ctx context.Context, edge domain.GraphEdge) error
}

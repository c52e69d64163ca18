package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// A named point in the routing graph (depot, hub, delivery area).
type GraphNode struct {
	ID     uuid.UUID
	Name   string
	Coords *Coordinates
}

// A weighted connection between two graph nodes.
// Bidirectional edges are traversable both ways with the same weight;
// otherwise only From -> To.
type GraphEdge struct {
	ID              uuid.UUID
	FromNodeID      uuid.UUID
	ToNodeID        uuid.UUID
	Weight          decimal.Decimal
	IsBidirectional bool
}

// A directed edge as traversed on a computed path.
type RouteEdge struct {
	FromNodeID uuid.UUID
	ToNodeID   uuid.UUID
	Weight     decimal.Decimal
}

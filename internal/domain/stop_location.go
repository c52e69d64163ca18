package domain

import (
	"time"

	"github.com/google/uuid"
)

// A named delivery location pinned to exactly one graph node.
type StopLocation struct {
	ID          uuid.UUID
	Name        string
	AddressText string
	GraphNodeID uuid.UUID
	GraphNode   *GraphNode
	Coords      *Coordinates
	CreatedAt   time.Time
}

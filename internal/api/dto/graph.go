package dto

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type NodeResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Lat  *float64  `json:"lat,omitempty"`
	Lon  *float64  `json:"lon,omitempty"`
}

type CreateNodeRequest struct {
	Name string   `json:"name"`
	Lat  *float64 `json:"lat"`
	Lon  *float64 `json:"lon"`
}

type EdgeResponse struct {
	ID              uuid.UUID       `json:"id"`
	FromNodeID      uuid.UUID       `json:"from_node_id"`
	ToNodeID        uuid.UUID       `json:"to_node_id"`
	Weight          decimal.Decimal `json:"weight"`
	IsBidirectional bool            `json:"is_bidirectional"`
}

// Weight may be omitted when both nodes have coordinates.
// IsBidirectional defaults to true.
type CreateEdgeRequest struct {
	FromNodeID      uuid.UUID        `json:"from_node_id"`
	ToNodeID        uuid.UUID        `json:"to_node_id"`
	Weight          *decimal.Decimal `json:"weight"`
	IsBidirectional *bool            `json:"is_bidirectional"`
}

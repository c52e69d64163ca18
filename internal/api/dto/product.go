package dto

import (
	"time"

	"github.com/google/uuid"
)

type StockResponse struct {
	ProductID         uuid.UUID `json:"product_id"`
	AvailableQuantity int       `json:"available_quantity"`
	UpdatedAt         time.Time `json:"updated_at"`
}

type AdjustStockRequest struct {
	Delta  int    `json:"delta"`
	Reason string `json:"reason"`
}

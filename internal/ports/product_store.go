package ports

import (
	"context"
	"fleet-trip-service/internal/domain"
	"time"

	"github.com/google/uuid"
)

// Port: products and their stock records.
type ProductStore interface {
	// Return the products among ids that exist, each with its stock.
	FindManyWithStock(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error)
	GetStock(ctx context.Context, productID uuid.UUID) (*domain.ProductStock, error)
	// Apply a signed delta atomically. Must fail with domain.ErrNegativeStock
	// rather than drive the quantity below zero.
	AdjustStock(ctx context.Context, productID uuid.UUID, delta int, at time.Time) (*domain.ProductStock, error)
}

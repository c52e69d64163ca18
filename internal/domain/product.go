package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Product that can be loaded as trip cargo.
// Every product owns exactly one stock record.
type Product struct {
	ID           uuid.UUID
	Name         string
	SKU          string
	UnitWeightKg decimal.Decimal
	CreatedAt    time.Time
	Stock        *ProductStock
}

// Available quantity of a product. AvailableQuantity is never negative.
type ProductStock struct {
	ProductID         uuid.UUID
	AvailableQuantity int
	UpdatedAt         time.Time
}

// LineWeight returns quantity x unit weight.
func (p *Product) LineWeight(quantity int) decimal.Decimal {
	return p.UnitWeightKg.Mul(decimal.NewFromInt(int64(quantity)))
}

// Available returns the stocked quantity, treating a missing record as zero.
func (p *Product) Available() int {
	if p.Stock == nil {
		return 0
	}
	return p.Stock.AvailableQuantity
}

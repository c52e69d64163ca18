package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Delivery truck available for trip planning.
type Truck struct {
	ID           uuid.UUID
	Name         string
	PlateNumber  string
	MaxPayloadKg decimal.Decimal
	IsActive     bool
	CreatedAt    time.Time
}

// CanCarry reports whether a load of weightKg fits within the payload limit.
func (t *Truck) CanCarry(weightKg decimal.Decimal) bool {
	return weightKg.LessThanOrEqual(t.MaxPayloadKg)
}

package ports

import (
	"context"
	"fleet-trip-service/internal/domain"

	"github.com/google/uuid"
)

// Port: truck lookups.
type TruckStore interface {
	// Return the truck only when it exists and is active; nil otherwise.
	FindActive(ctx context.Context, truckID uuid.UUID) (*domain.Truck, error)
}

// Port: driver lookups.
type DriverStore interface {
	// Return the driver only when it exists and is active; nil otherwise.
	FindActive(ctx context.Context, driverID uuid.UUID) (*domain.Driver, error)
}

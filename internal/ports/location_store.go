package ports

import (
	"context"
	"fleet-trip-service/internal/domain"

	"github.com/google/uuid"
)

// Port: stop locations with their graph node resolved.
type StopLocationStore interface {
	// Return the locations among ids that exist. Missing ids are omitted.
	FindManyWithGraphNode(ctx context.Context, ids []uuid.UUID) ([]domain.StopLocation, error)
}

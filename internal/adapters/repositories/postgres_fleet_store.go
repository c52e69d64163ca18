package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/domain"
	"fmt"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the TruckStore port.
type PostgresTruckStore struct{ DB *sql.DB }

func NewPostgresTruckStore(db *sql.DB) *PostgresTruckStore {
	return &PostgresTruckStore{DB: db}
}

// Return the truck only when it exists and is active.
func (s *PostgresTruckStore) FindActive(ctx context.Context, truckID uuid.UUID) (*domain.Truck, error) {
	if s.DB == nil {
		return nil, errors.New("truck store: DB is nil")
	}

	query := `
	SELECT id, name, plate_number, max_payload_kg, is_active, created_at
	FROM trucks
	WHERE id = $1 AND is_active;
	`
	var t domain.Truck
	err := s.DB.QueryRowContext(ctx, query, truckID).
		Scan(&t.ID, &t.Name, &t.PlateNumber, &t.MaxPayloadKg, &t.IsActive, &t.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find truck %s: %w", truckID, err)
	}
	return &t, nil
}

// Postgres-backed implementation of the DriverStore port.
type PostgresDriverStore struct{ DB *sql.DB }

func NewPostgresDriverStore(db *sql.DB) *PostgresDriverStore {
	return &PostgresDriverStore{DB: db}
}

// Return the driver only when it exists and is active.
func (s *PostgresDriverStore) FindActive(ctx context.Context, driverID uuid.UUID) (*domain.Driver, error) {
	if s.DB == nil {
		return nil, errors.New("driver store: DB is nil")
	}

	query := `
	SELECT id, user_id, first_name, last_name, email, phone_number, license_number,
		is_active, created_at, updated_at
	FROM drivers
	WHERE id = $1 AND is_active;
	`
	var d domain.Driver
	err := s.DB.QueryRowContext(ctx, query, driverID).Scan(
		&d.ID, &d.UserID, &d.FirstName, &d.LastName, &d.Email, &d.PhoneNumber, &d.LicenseNumber,
		&d.IsActive, &d.CreatedAt, &d.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find driver %s: %w", driverID, err)
	}
	return &d, nil
}

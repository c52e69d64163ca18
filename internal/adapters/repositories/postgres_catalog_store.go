package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Postgres-backed implementation of the StopLocationStore port.
type PostgresStopLocationStore struct{ DB *sql.DB }

func NewPostgresStopLocationStore(db *sql.DB) *PostgresStopLocationStore {
	return &PostgresStopLocationStore{DB: db}
}

func (s *PostgresStopLocationStore) FindManyWithGraphNode(ctx context.Context, ids []uuid.UUID) ([]domain.StopLocation, error) {
	if s.DB == nil {
		return nil, errors.New("stop location store: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.StopLocation{}, nil
	}

	query := `
	SELECT l.id, l.name, l.address_text, l.graph_node_id, l.created_at,
		n.name, n.lat, n.lon
	FROM stop_locations l
	JOIN graph_nodes n ON n.id = l.graph_node_id
	WHERE l.id = ANY($1::uuid[]);
	`
	rows, err := s.DB.QueryContext(ctx, query, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("find stop locations: query stop_locations table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.StopLocation, 0, len(ids))
	for rows.Next() {
		var l domain.StopLocation
		var node domain.GraphNode
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&l.ID, &l.Name, &l.AddressText, &l.GraphNodeID, &l.CreatedAt, &node.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("find stop locations: scan row: %w", err)
		}
		node.ID = l.GraphNodeID
		node.Coords = coordsFrom(lat, lon)
		l.GraphNode = &node
		l.Coords = node.Coords
		out = append(out, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find stop locations: row iteration: %w", err)
	}
	return out, nil
}

// Postgres-backed implementation of the ProductStore port.
type PostgresProductStore struct{ DB *sql.DB }

func NewPostgresProductStore(db *sql.DB) *PostgresProductStore {
	return &PostgresProductStore{DB: db}
}

func (s *PostgresProductStore) FindManyWithStock(ctx context.Context, ids []uuid.UUID) ([]domain.Product, error) {
	if s.DB == nil {
		return nil, errors.New("product store: DB is nil")
	}
	if len(ids) == 0 {
		return []domain.Product{}, nil
	}

	query := `
	SELECT p.id, p.name, p.sku, p.unit_weight_kg, p.created_at,
		s.available_quantity, s.updated_at
	FROM products p
	LEFT JOIN product_stocks s ON s.product_id = p.id
	WHERE p.id = ANY($1::uuid[]);
	`
	rows, err := s.DB.QueryContext(ctx, query, idStrings(ids))
	if err != nil {
		return nil, fmt.Errorf("find products: query products table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Product, 0, len(ids))
	for rows.Next() {
		var p domain.Product
		var qty sql.NullInt64
		var updated sql.NullTime
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.UnitWeightKg, &p.CreatedAt, &qty, &updated); err != nil {
			return nil, fmt.Errorf("find products: scan row: %w", err)
		}
		if qty.Valid {
			p.Stock = &domain.ProductStock{
				ProductID:         p.ID,
				AvailableQuantity: int(qty.Int64),
				UpdatedAt:         updated.Time,
			}
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find products: row iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresProductStore) GetStock(ctx context.Context, productID uuid.UUID) (*domain.ProductStock, error) {
	if s.DB == nil {
		return nil, errors.New("product store: DB is nil")
	}

	st := domain.ProductStock{ProductID: productID}
	err := s.DB.QueryRowContext(ctx, `
	SELECT available_quantity, updated_at
	FROM product_stocks
	WHERE product_id = $1;
	`, productID).Scan(&st.AvailableQuantity, &st.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProductNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get stock %s: %w", productID, err)
	}
	return &st, nil
}

// AdjustStock applies the delta in one conditional statement so concurrent
// adjustments and trip commits never drive the quantity below zero.
func (s *PostgresProductStore) AdjustStock(ctx context.Context, productID uuid.UUID, delta int, at time.Time) (_ *domain.ProductStock, err error) {
	defer obs.Time(ctx, "product.store.AdjustStock")(&err)

	if s.DB == nil {
		return nil, errors.New("product store: DB is nil")
	}

	st := domain.ProductStock{ProductID: productID}
	err = s.DB.QueryRowContext(ctx, `
	UPDATE product_stocks
	SET available_quantity = available_quantity + $2, updated_at = $3
	WHERE product_id = $1 AND available_quantity + $2 >= 0
	RETURNING available_quantity, updated_at;
	`, productID, delta, at).Scan(&st.AvailableQuantity, &st.UpdatedAt)
	if err == nil {
		return &st, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("adjust stock %s: %w", productID, err)
	}

	if _, getErr := s.GetStock(ctx, productID); getErr != nil {
		return nil, getErr
	}
	return nil, domain.ErrNegativeStock
}

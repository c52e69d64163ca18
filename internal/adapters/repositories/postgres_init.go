package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/adapters/seed"
	"fmt"
)

// Initialize the Postgres schema. Safe to run repeatedly.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGraphQuery := `
	CREATE TABLE IF NOT EXISTS graph_nodes (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		lat DOUBLE PRECISION,
		lon DOUBLE PRECISION
	);

	CREATE TABLE IF NOT EXISTS graph_edges (
		id UUID PRIMARY KEY,
		from_node_id UUID NOT NULL REFERENCES graph_nodes(id),
		to_node_id UUID NOT NULL REFERENCES graph_nodes(id),
		weight NUMERIC(12, 3) NOT NULL CHECK (weight >= 0),
		is_bidirectional BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createFleetQuery := `
	CREATE TABLE IF NOT EXISTS trucks (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		plate_number TEXT NOT NULL DEFAULT '',
		max_payload_kg NUMERIC(12, 3) NOT NULL CHECK (max_payload_kg > 0),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS drivers (
		id UUID PRIMARY KEY,
		user_id TEXT NOT NULL DEFAULT '',
		first_name TEXT NOT NULL,
		last_name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone_number TEXT NOT NULL DEFAULT '',
		license_number TEXT NOT NULL DEFAULT '',
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createCatalogQuery := `
	CREATE TABLE IF NOT EXISTS stop_locations (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		address_text TEXT NOT NULL DEFAULT '',
		graph_node_id UUID NOT NULL REFERENCES graph_nodes(id),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		sku TEXT NOT NULL DEFAULT '',
		unit_weight_kg NUMERIC(12, 3) NOT NULL CHECK (unit_weight_kg > 0),
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS product_stocks (
		product_id UUID PRIMARY KEY REFERENCES products(id),
		available_quantity INTEGER NOT NULL CHECK (available_quantity >= 0),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createTripsQuery := `
	CREATE TABLE IF NOT EXISTS trips (
		id UUID PRIMARY KEY,
		truck_id UUID NOT NULL REFERENCES trucks(id),
		driver_id UUID NOT NULL REFERENCES drivers(id),
		created_by_user_id TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL,
		total_planned_distance NUMERIC(14, 3) NOT NULL,
		total_planned_cost NUMERIC(14, 2),
		created_at TIMESTAMPTZ NOT NULL,
		done_at TIMESTAMPTZ
	);

	CREATE TABLE IF NOT EXISTS trip_stops (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		stop_location_id UUID NOT NULL REFERENCES stop_locations(id),
		stop_order INTEGER NOT NULL,
		status TEXT NOT NULL,
		planned_arrival_time TIMESTAMPTZ,
		actual_arrival_time TIMESTAMPTZ,
		notes TEXT NOT NULL DEFAULT '',
		UNIQUE (trip_id, stop_order)
	);

	CREATE TABLE IF NOT EXISTS trip_cargo_items (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		product_id UUID NOT NULL REFERENCES products(id),
		quantity INTEGER NOT NULL CHECK (quantity > 0),
		total_weight_kg NUMERIC(14, 3) NOT NULL
	);

	CREATE TABLE IF NOT EXISTS trip_route_steps (
		id UUID PRIMARY KEY,
		trip_id UUID NOT NULL REFERENCES trips(id) ON DELETE CASCADE,
		step_order INTEGER NOT NULL,
		from_node_id UUID NOT NULL REFERENCES graph_nodes(id),
		to_node_id UUID NOT NULL REFERENCES graph_nodes(id),
		edge_weight NUMERIC(12, 3) NOT NULL,
		cumulative_weight NUMERIC(14, 3) NOT NULL,
		UNIQUE (trip_id, step_order)
	);
	`

	createIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_trips_driver_created ON trips(driver_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_trips_status ON trips(status);
	CREATE INDEX IF NOT EXISTS idx_graph_edges_from ON graph_edges(from_node_id);
	`

	statements := []string{
		createGraphQuery,
		createFleetQuery,
		createCatalogQuery,
		createTripsQuery,
		createIndexQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate reference data from a seed file. Existing rows are updated in
// place; stock levels already present are left untouched.
func SeedFromJSON(ctx context.Context, db *sql.DB, jsonPath string) error {
	n, err := seed.Load(jsonPath)
	if err != nil {
		return fmt.Errorf("seed network: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("seed network: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, sn := range n.Nodes {
		node, err := sn.ToDomain()
		if err != nil {
			return fmt.Errorf("seed network: %w", err)
		}
		lat, lon := nullCoords(node.Coords)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO graph_nodes (id, name, lat, lon)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, lat = EXCLUDED.lat, lon = EXCLUDED.lon;
		`, node.ID, node.Name, lat, lon); err != nil {
			return fmt.Errorf("seed network: insert node %q: %w", node.Name, err)
		}
	}

	for _, se := range n.Edges {
		e := se.ToDomain()
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO graph_edges (id, from_node_id, to_node_id, weight, is_bidirectional)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET weight = EXCLUDED.weight, is_bidirectional = EXCLUDED.is_bidirectional;
		`, e.ID, e.FromNodeID, e.ToNodeID, e.Weight, e.IsBidirectional); err != nil {
			return fmt.Errorf("seed network: insert edge %s: %w", e.ID, err)
		}
	}

	for _, sl := range n.Locations {
		l := sl.ToDomain(n.LoadedAt)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO stop_locations (id, name, address_text, graph_node_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, address_text = EXCLUDED.address_text, graph_node_id = EXCLUDED.graph_node_id;
		`, l.ID, l.Name, l.AddressText, l.GraphNodeID, l.CreatedAt); err != nil {
			return fmt.Errorf("seed network: insert location %q: %w", l.Name, err)
		}
	}

	for _, st := range n.Trucks {
		t := st.ToDomain(n.LoadedAt)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO trucks (id, name, plate_number, max_payload_kg, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, plate_number = EXCLUDED.plate_number,
			max_payload_kg = EXCLUDED.max_payload_kg, is_active = EXCLUDED.is_active;
		`, t.ID, t.Name, t.PlateNumber, t.MaxPayloadKg, t.IsActive, t.CreatedAt); err != nil {
			return fmt.Errorf("seed network: insert truck %q: %w", t.Name, err)
		}
	}

	for _, sd := range n.Drivers {
		d := sd.ToDomain(n.LoadedAt)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO drivers (id, user_id, first_name, last_name, email, license_number, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name, last_name = EXCLUDED.last_name,
			email = EXCLUDED.email, license_number = EXCLUDED.license_number,
			is_active = EXCLUDED.is_active, updated_at = EXCLUDED.updated_at;
		`, d.ID, d.UserID, d.FirstName, d.LastName, d.Email, d.LicenseNumber, d.IsActive, d.CreatedAt); err != nil {
			return fmt.Errorf("seed network: insert driver %q: %w", d.FullName(), err)
		}
	}

	for _, sp := range n.Products {
		p := sp.ToDomain(n.LoadedAt)
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO products (id, name, sku, unit_weight_kg, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, sku = EXCLUDED.sku, unit_weight_kg = EXCLUDED.unit_weight_kg;
		`, p.ID, p.Name, p.SKU, p.UnitWeightKg, p.CreatedAt); err != nil {
			return fmt.Errorf("seed network: insert product %q: %w", p.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO product_stocks (product_id, available_quantity, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (product_id) DO NOTHING;
		`, p.ID, p.Stock.AvailableQuantity, p.Stock.UpdatedAt); err != nil {
			return fmt.Errorf("seed network: insert stock for %q: %w", p.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed network: commit tx: %w", err)
	}

	return nil
}

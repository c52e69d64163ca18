package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Postgres-backed implementation of the TripStore port.
type PostgresTripStore struct {
	DB *sql.DB

	// Upper bound on commit attempts after serialization failures or deadlocks.
	MaxAttempts int
}

func NewPostgresTripStore(db *sql.DB, maxAttempts int) *PostgresTripStore {
	return &PostgresTripStore{DB: db, MaxAttempts: maxAttempts}
}

// CommitNewTrip withdraws stock and inserts the trip graph in one
// transaction. Stock rows are updated in product id order so concurrent
// commits lock them in the same order.
func (s *PostgresTripStore) CommitNewTrip(ctx context.Context, c domain.NewTripCommit) (_ uuid.UUID, err error) {
	defer obs.Time(ctx, "trip.store.CommitNewTrip")(&err)

	if s.DB == nil {
		return uuid.Nil, errors.New("trip store: DB is nil")
	}

	deltas := append([]domain.StockDelta(nil), c.StockDeltas...)
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].ProductID.String() < deltas[j].ProductID.String()
	})

	err = withTxRetry(ctx, s.DB, s.MaxAttempts, func(tx *sql.Tx) error {
		for _, d := range deltas {
			res, err := tx.ExecContext(ctx, `
			UPDATE product_stocks
			SET available_quantity = available_quantity - $1, updated_at = $3
			WHERE product_id = $2 AND available_quantity >= $1;
			`, d.Quantity, d.ProductID, c.Trip.CreatedAt)
			if err != nil {
				return fmt.Errorf("withdraw stock %s: %w", d.ProductID, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("withdraw stock %s: rows affected: %w", d.ProductID, err)
			}
			if n == 0 {
				return &domain.StockConflictError{ProductID: d.ProductID, ProductName: d.ProductName}
			}
		}

		t := c.Trip
		if _, err := tx.ExecContext(ctx, `
		INSERT INTO trips (id, truck_id, driver_id, created_by_user_id, status,
			total_planned_distance, total_planned_cost, created_at, done_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`, t.ID, t.TruckID, t.DriverID, t.CreatedByUserID, string(t.Status),
			t.TotalPlannedDistance, nullDecimal(t.TotalPlannedCost), t.CreatedAt, nullTime(t.DoneAt)); err != nil {
			return fmt.Errorf("insert trip: %w", err)
		}

		for _, st := range c.Stops {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO trip_stops (id, trip_id, stop_location_id, stop_order, status,
				planned_arrival_time, actual_arrival_time, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
			`, st.ID, st.TripID, st.StopLocationID, st.StopOrder, string(st.Status),
				nullTime(st.PlannedArrivalTime), nullTime(st.ActualArrivalTime), st.Notes); err != nil {
				return fmt.Errorf("insert stop %d: %w", st.StopOrder, err)
			}
		}

		for _, item := range c.CargoItems {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO trip_cargo_items (id, trip_id, product_id, quantity, total_weight_kg)
			VALUES ($1, $2, $3, $4, $5);
			`, item.ID, item.TripID, item.ProductID, item.Quantity, item.TotalWeightKg); err != nil {
				return fmt.Errorf("insert cargo item %s: %w", item.ProductID, err)
			}
		}

		for _, step := range c.RouteSteps {
			if _, err := tx.ExecContext(ctx, `
			INSERT INTO trip_route_steps (id, trip_id, step_order, from_node_id, to_node_id,
				edge_weight, cumulative_weight)
			VALUES ($1, $2, $3, $4, $5, $6, $7);
			`, step.ID, step.TripID, step.StepOrder, step.FromNodeID, step.ToNodeID,
				step.EdgeWeight, step.CumulativeWeight); err != nil {
				return fmt.Errorf("insert route step %d: %w", step.StepOrder, err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("commit trip %s: %w", c.Trip.ID, err)
	}
	return c.Trip.ID, nil
}

const tripSummaryColumns = `
	t.id, t.truck_id, t.driver_id, t.created_by_user_id, t.status,
	t.total_planned_distance, t.total_planned_cost, t.created_at, t.done_at,
	COALESCE(tr.name, ''), COALESCE(d.first_name || ' ' || d.last_name, '')
`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTripSummary(r rowScanner) (domain.TripSummary, error) {
	var sum domain.TripSummary
	var status string
	var cost decimal.NullDecimal
	var done sql.NullTime
	err := r.Scan(
		&sum.ID, &sum.TruckID, &sum.DriverID, &sum.CreatedByUserID, &status,
		&sum.TotalPlannedDistance, &cost, &sum.CreatedAt, &done,
		&sum.TruckName, &sum.DriverName,
	)
	if err != nil {
		return sum, err
	}
	sum.Status = domain.TripStatus(status)
	sum.DriverName = strings.TrimSpace(sum.DriverName)
	if cost.Valid {
		c := cost.Decimal
		sum.TotalPlannedCost = &c
	}
	if done.Valid {
		at := done.Time
		sum.DoneAt = &at
	}
	return sum, nil
}

func (s *PostgresTripStore) GetTrip(ctx context.Context, id uuid.UUID) (_ *domain.TripDetails, err error) {
	defer obs.Time(ctx, "trip.store.GetTrip")(&err)

	if s.DB == nil {
		return nil, errors.New("trip store: DB is nil")
	}

	row := s.DB.QueryRowContext(ctx, `
	SELECT `+tripSummaryColumns+`
	FROM trips t
	LEFT JOIN trucks tr ON tr.id = t.truck_id
	LEFT JOIN drivers d ON d.id = t.driver_id
	WHERE t.id = $1;
	`, id)
	sum, err := scanTripSummary(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrTripNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get trip %s: %w", id, err)
	}
	details := &domain.TripDetails{TripSummary: sum}

	stopRows, err := s.DB.QueryContext(ctx, `
	SELECT s.id, s.stop_location_id, s.stop_order, s.status,
		s.planned_arrival_time, s.actual_arrival_time, s.notes, COALESCE(l.name, '')
	FROM trip_stops s
	LEFT JOIN stop_locations l ON l.id = s.stop_location_id
	WHERE s.trip_id = $1
	ORDER BY s.stop_order;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get trip %s: query stops: %w", id, err)
	}
	defer stopRows.Close()

	for stopRows.Next() {
		var sd domain.StopDetail
		var status string
		var planned, actual sql.NullTime
		if err := stopRows.Scan(&sd.ID, &sd.StopLocationID, &sd.StopOrder, &status,
			&planned, &actual, &sd.Notes, &sd.Name); err != nil {
			return nil, fmt.Errorf("get trip %s: scan stop: %w", id, err)
		}
		sd.TripID = id
		sd.Status = domain.StopStatus(status)
		sd.PlannedArrivalTime = timePtr(planned)
		sd.ActualArrivalTime = timePtr(actual)
		details.Stops = append(details.Stops, sd)
	}
	if err := stopRows.Err(); err != nil {
		return nil, fmt.Errorf("get trip %s: stop iteration: %w", id, err)
	}

	cargoRows, err := s.DB.QueryContext(ctx, `
	SELECT c.product_id, COALESCE(p.name, ''), c.quantity, c.total_weight_kg
	FROM trip_cargo_items c
	LEFT JOIN products p ON p.id = c.product_id
	WHERE c.trip_id = $1
	ORDER BY p.name, c.product_id;
	`, id)
	if err != nil {
		return nil, fmt.Errorf("get trip %s: query cargo: %w", id, err)
	}
	defer cargoRows.Close()

	for cargoRows.Next() {
		var cd domain.CargoDetail
		if err := cargoRows.Scan(&cd.ProductID, &cd.ProductName, &cd.Quantity, &cd.TotalWeightKg); err != nil {
			return nil, fmt.Errorf("get trip %s: scan cargo: %w", id, err)
		}
		details.CargoItems = append(details.CargoItems, cd)
	}
	if err := cargoRows.Err(); err != nil {
		return nil, fmt.Errorf("get trip %s: cargo iteration: %w", id, err)
	}

	return details, nil
}

// ListTrips returns matching trips, newest first.
func (s *PostgresTripStore) ListTrips(ctx context.Context, f domain.TripFilter) (_ []domain.TripSummary, err error) {
	defer obs.Time(ctx, "trip.store.ListTrips")(&err)

	if s.DB == nil {
		return nil, errors.New("trip store: DB is nil")
	}

	var where []string
	var args []any
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.DriverID != nil {
		add("t.driver_id = $%d", *f.DriverID)
	}
	if f.Status != nil {
		add("t.status = $%d", string(*f.Status))
	}
	if f.From != nil {
		add("t.created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("t.created_at <= $%d", *f.To)
	}

	query := `
	SELECT ` + tripSummaryColumns + `
	FROM trips t
	LEFT JOIN trucks tr ON tr.id = t.truck_id
	LEFT JOIN drivers d ON d.id = t.driver_id
	`
	if len(where) > 0 {
		query += "WHERE " + strings.Join(where, " AND ") + "\n"
	}
	query += "ORDER BY t.created_at DESC, t.id;"

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list trips: query trips table: %w", err)
	}
	defer rows.Close()

	out := make([]domain.TripSummary, 0, 32)
	for rows.Next() {
		sum, err := scanTripSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("list trips: scan row: %w", err)
		}
		out = append(out, sum)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list trips: row iteration: %w", err)
	}
	return out, nil
}

func (s *PostgresTripStore) ListRouteSteps(ctx context.Context, tripID uuid.UUID) ([]domain.TripRouteStep, error) {
	if s.DB == nil {
		return nil, errors.New("trip store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, `
	SELECT id, step_order, from_node_id, to_node_id, edge_weight, cumulative_weight
	FROM trip_route_steps
	WHERE trip_id = $1
	ORDER BY step_order;
	`, tripID)
	if err != nil {
		return nil, fmt.Errorf("list route steps %s: %w", tripID, err)
	}
	defer rows.Close()

	var steps []domain.TripRouteStep
	for rows.Next() {
		step := domain.TripRouteStep{TripID: tripID}
		if err := rows.Scan(&step.ID, &step.StepOrder, &step.FromNodeID, &step.ToNodeID,
			&step.EdgeWeight, &step.CumulativeWeight); err != nil {
			return nil, fmt.Errorf("list route steps %s: scan row: %w", tripID, err)
		}
		steps = append(steps, step)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list route steps %s: row iteration: %w", tripID, err)
	}
	return steps, nil
}

// lockTripStatus reads the trip status under a row lock.
func lockTripStatus(ctx context.Context, tx *sql.Tx, id uuid.UUID) (domain.TripStatus, error) {
	var status string
	err := tx.QueryRowContext(ctx, `SELECT status FROM trips WHERE id = $1 FOR UPDATE;`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", domain.ErrTripNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lock trip %s: %w", id, err)
	}
	return domain.TripStatus(status), nil
}

func (s *PostgresTripStore) UpdateTripStatus(ctx context.Context, id uuid.UUID, status domain.TripStatus, at time.Time) (err error) {
	defer obs.Time(ctx, "trip.store.UpdateTripStatus")(&err)

	if s.DB == nil {
		return errors.New("trip store: DB is nil")
	}

	return withTxRetry(ctx, s.DB, s.MaxAttempts, func(tx *sql.Tx) error {
		current, err := lockTripStatus(ctx, tx, id)
		if err != nil {
			return err
		}
		if current.IsTerminal() {
			return domain.ErrTerminalStatus
		}
		if !current.CanTransitionTo(status) {
			return fmt.Errorf("%s -> %s: %w", current, status, domain.ErrInvalidTransition)
		}

		if current == domain.TripWaiting && status == domain.TripCancelled {
			if _, err := tx.ExecContext(ctx, `
			UPDATE product_stocks ps
			SET available_quantity = ps.available_quantity + c.quantity, updated_at = $2
			FROM trip_cargo_items c
			WHERE c.trip_id = $1 AND ps.product_id = c.product_id;
			`, id, at); err != nil {
				return fmt.Errorf("restore stock for trip %s: %w", id, err)
			}
		}

		var doneAt sql.NullTime
		if status == domain.TripDone {
			doneAt = sql.NullTime{Time: at, Valid: true}
		}
		if _, err := tx.ExecContext(ctx, `
		UPDATE trips SET status = $2, done_at = COALESCE($3, done_at) WHERE id = $1;
		`, id, string(status), doneAt); err != nil {
			return fmt.Errorf("update trip %s: %w", id, err)
		}
		return nil
	})
}

func (s *PostgresTripStore) UpdateStopStatus(
	ctx context.Context,
	tripID, stopID uuid.UUID,
	status domain.StopStatus,
	notes string,
	at time.Time,
) (err error) {
	defer obs.Time(ctx, "trip.store.UpdateStopStatus")(&err)

	if s.DB == nil {
		return errors.New("trip store: DB is nil")
	}

	return withTxRetry(ctx, s.DB, s.MaxAttempts, func(tx *sql.Tx) error {
		current, err := lockTripStatus(ctx, tx, tripID)
		if err != nil {
			return err
		}
		if current.IsTerminal() {
			return domain.ErrTerminalStatus
		}

		res, err := tx.ExecContext(ctx, `
		UPDATE trip_stops
		SET status = $3, notes = $4, actual_arrival_time = $5
		WHERE id = $2 AND trip_id = $1;
		`, tripID, stopID, string(status), notes, at)
		if err != nil {
			return fmt.Errorf("update stop %s: %w", stopID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("update stop %s: rows affected: %w", stopID, err)
		}
		if n == 0 {
			return domain.ErrStopNotFound
		}
		return nil
	})
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

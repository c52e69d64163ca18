package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/domain"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error codes worth retrying a whole transaction for.
const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
)

const defaultMaxTxAttempts = 4

func idStrings(ids []uuid.UUID) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, id.String())
	}
	return out
}

func nullCoords(c *domain.Coordinates) (sql.NullFloat64, sql.NullFloat64) {
	if c == nil {
		return sql.NullFloat64{}, sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: c.Lat, Valid: true}, sql.NullFloat64{Float64: c.Lon, Valid: true}
}

func coordsFrom(lat, lon sql.NullFloat64) *domain.Coordinates {
	if !lat.Valid || !lon.Valid {
		return nil
	}
	return &domain.Coordinates{Lat: lat.Float64, Lon: lon.Float64}
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgSerializationFailure || pgErr.Code == pgDeadlockDetected
	}
	return false
}

// withTxRetry runs fn in a read-committed transaction, retrying the whole
// transaction on serialization failures and deadlocks with exponential
// backoff while respecting context cancellation.
func withTxRetry(ctx context.Context, db *sql.DB, maxAttempts int, fn func(tx *sql.Tx) error) error {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxTxAttempts
	}
	backoff := 50 * time.Millisecond

	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = runTx(ctx, db, fn)
		if lastErr == nil {
			return nil
		}

		if !isRetryable(lastErr) || attempt == maxAttempts {
			return lastErr
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return lastErr
}

func runTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

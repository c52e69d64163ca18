package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fleet-trip-service/internal/domain"
	"fleet-trip-service/internal/platform/obs"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const pgForeignKeyViolation = "23503"

// Postgres-backed implementation of the GraphStore port.
type PostgresGraphStore struct{ DB *sql.DB }

func NewPostgresGraphStore(db *sql.DB) *PostgresGraphStore {
	return &PostgresGraphStore{DB: db}
}

// Return every edge of the current graph.
func (s *PostgresGraphStore) ListEdges(ctx context.Context) (_ []domain.GraphEdge, err error) {
	defer obs.Time(ctx, "graph.store.ListEdges")(&err)

	if s.DB == nil {
		return nil, errors.New("graph store: DB is nil")
	}

	query := `
	SELECT id, from_node_id, to_node_id, weight, is_bidirectional
	FROM graph_edges
	ORDER BY id;
	`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list edges: query graph_edges table: %w", err)
	}
	defer rows.Close()

	edges := make([]domain.GraphEdge, 0, 64)
	for rows.Next() {
		var e domain.GraphEdge
		if err := rows.Scan(&e.ID, &e.FromNodeID, &e.ToNodeID, &e.Weight, &e.IsBidirectional); err != nil {
			return nil, fmt.Errorf("list edges: scan row: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list edges: row iteration: %w", err)
	}

	return edges, nil
}

func (s *PostgresGraphStore) NodeExists(ctx context.Context, nodeID uuid.UUID) (bool, error) {
	if s.DB == nil {
		return false, errors.New("graph store: DB is nil")
	}

	var exists bool
	err := s.DB.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM graph_nodes WHERE id = $1);`, nodeID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("node exists %s: %w", nodeID, err)
	}
	return exists, nil
}

func (s *PostgresGraphStore) ListNodes(ctx context.Context) ([]domain.GraphNode, error) {
	return s.queryNodes(ctx, `
	SELECT id, name, lat, lon
	FROM graph_nodes
	ORDER BY name, id;
	`)
}

func (s *PostgresGraphStore) GetNodes(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]domain.GraphNode, error) {
	out := make(map[uuid.UUID]domain.GraphNode, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	nodes, err := s.queryNodes(ctx, `
	SELECT id, name, lat, lon
	FROM graph_nodes
	WHERE id = ANY($1::uuid[]);
	`, idStrings(ids))
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		out[n.ID] = n
	}
	return out, nil
}

func (s *PostgresGraphStore) queryNodes(ctx context.Context, query string, args ...any) ([]domain.GraphNode, error) {
	if s.DB == nil {
		return nil, errors.New("graph store: DB is nil")
	}

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list nodes: query graph_nodes table: %w", err)
	}
	defer rows.Close()

	nodes := make([]domain.GraphNode, 0, 32)
	for rows.Next() {
		var n domain.GraphNode
		var lat, lon sql.NullFloat64
		if err := rows.Scan(&n.ID, &n.Name, &lat, &lon); err != nil {
			return nil, fmt.Errorf("list nodes: scan row: %w", err)
		}
		n.Coords = coordsFrom(lat, lon)
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list nodes: row iteration: %w", err)
	}
	return nodes, nil
}

func (s *PostgresGraphStore) CreateNode(ctx context.Context, node domain.GraphNode) error {
	if s.DB == nil {
		return errors.New("graph store: DB is nil")
	}

	lat, lon := nullCoords(node.Coords)
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO graph_nodes (id, name, lat, lon)
	VALUES ($1, $2, $3, $4);
	`, node.ID, node.Name, lat, lon)
	if err != nil {
		return fmt.Errorf("create node %q: %w", node.Name, err)
	}
	return nil
}

func (s *PostgresGraphStore) CreateEdge(ctx context.Context, e domain.GraphEdge) error {
	if s.DB == nil {
		return errors.New("graph store: DB is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO graph_edges (id, from_node_id, to_node_id, weight, is_bidirectional)
	VALUES ($1, $2, $3, $4, $5);
	`, e.ID, e.FromNodeID, e.ToNodeID, e.Weight, e.IsBidirectional)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgForeignKeyViolation {
			return fmt.Errorf("create edge: %w", domain.ErrInvalidNodeRef)
		}
		return fmt.Errorf("create edge %s -> %s: %w", e.FromNodeID, e.ToNodeID, err)
	}
	return nil
}

package services

import (
	"container/heap"
	"fleet-trip-service/internal/domain"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ShortestPath computes the minimum-weight sequence of directed edges from
// start to end using Dijkstra's algorithm.
//
// Bidirectional edges contribute an arc in each direction. Weights are
// assumed non-negative. When several paths share the minimum weight, the
// one returned depends on edge order and heap discovery order and is not
// otherwise specified. The input slice is never modified.
func ShortestPath(start, end uuid.UUID, edges []domain.GraphEdge) ([]domain.RouteEdge, error) {
	if start == end {
		return []domain.RouteEdge{}, nil
	}

	adjacency := buildAdjacency(edges)
	distances := map[uuid.UUID]decimal.Decimal{start: decimal.Zero}
	previous := make(map[uuid.UUID]domain.RouteEdge)

	pq := &frontier{}
	heap.Push(pq, &frontierItem{node: start, dist: decimal.Zero})
	seq := 1

	for pq.Len() > 0 {
		item := heap.Pop(pq).(*frontierItem)
		current := item.node
		if current == end {
			break
		}

		// Lazy deletion: a stale entry was superseded by a shorter one.
		if best := distances[current]; item.dist.GreaterThan(best) {
			continue
		}

		for _, arc := range adjacency[current] {
			tentative := item.dist.Add(arc.Weight)
			if existing, ok := distances[arc.ToNodeID]; ok && !tentative.LessThan(existing) {
				continue
			}
			distances[arc.ToNodeID] = tentative
			previous[arc.ToNodeID] = arc
			heap.Push(pq, &frontierItem{node: arc.ToNodeID, dist: tentative, seq: seq})
			seq++
		}
	}

	if _, ok := distances[end]; !ok {
		return nil, fmt.Errorf("shortest path %s -> %s: %w", start, end, domain.ErrNoPath)
	}

	path := make([]domain.RouteEdge, 0, 8)
	for cursor := end; cursor != start; {
		arc, ok := previous[cursor]
		if !ok {
			return nil, fmt.Errorf("shortest path %s -> %s: broken predecessor chain at %s: %w", start, end, cursor, domain.ErrNoPath)
		}
		path = append(path, arc)
		cursor = arc.FromNodeID
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}

// RouteWeight sums the weights along a path.
func RouteWeight(path []domain.RouteEdge) decimal.Decimal {
	total := decimal.Zero
	for _, e := range path {
		total = total.Add(e.Weight)
	}
	return total
}

func buildAdjacency(edges []domain.GraphEdge) map[uuid.UUID][]domain.RouteEdge {
	adjacency := make(map[uuid.UUID][]domain.RouteEdge)
	for _, e := range edges {
		adjacency[e.FromNodeID] = append(adjacency[e.FromNodeID], domain.RouteEdge{
			FromNodeID: e.FromNodeID,
			ToNodeID:   e.ToNodeID,
			Weight:     e.Weight,
		})
		if e.IsBidirectional {
			adjacency[e.ToNodeID] = append(adjacency[e.ToNodeID], domain.RouteEdge{
				FromNodeID: e.ToNodeID,
				ToNodeID:   e.FromNodeID,
				Weight:     e.Weight,
			})
		}
	}
	return adjacency
}

type frontierItem struct {
	node uuid.UUID
	dist decimal.Decimal
	seq  int
}

// frontier is a min-heap on tentative distance; equal distances pop in
// insertion order.
type frontier []*frontierItem

func (f frontier) Len() int { return len(f) }
func (f frontier) Less(i, j int) bool {
	if c := f[i].dist.Cmp(f[j].dist); c != 0 {
		return c < 0
	}
	return f[i].seq < f[j].seq
}
func (f frontier) Swap(i, j int) { f[i], f[j] = f[j], f[i] }

func (f *frontier) Push(x any) { *f = append(*f, x.(*frontierItem)) }

func (f *frontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*f = old[:n-1]
	return item
}

package export

import (
	"fleet-trip-service/internal/domain"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RouteGeoJSON renders a trip route as a feature collection: one
// LineString through every located node in travel order, plus a Point per
// distinct node. Nodes without coordinates are left out.
func RouteGeoJSON(steps []domain.TripRouteStep, nodes map[uuid.UUID]domain.GraphNode) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	if len(steps) == 0 {
		return fc
	}

	path := make([]uuid.UUID, 0, len(steps)+1)
	path = append(path, steps[0].FromNodeID)
	for _, s := range steps {
		path = append(path, s.ToNodeID)
	}

	line := make(orb.LineString, 0, len(path))
	var points []*geojson.Feature
	seen := make(map[uuid.UUID]struct{}, len(path))

	for i, id := range path {
		node, ok := nodes[id]
		if !ok || node.Coords == nil {
			continue
		}
		pt := node.Coords.Point()
		line = append(line, pt)

		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}

		f := geojson.NewFeature(pt)
		f.Properties["node_id"] = id.String()
		f.Properties["name"] = node.Name
		f.Properties["sequence"] = i
		points = append(points, f)
	}

	if len(line) >= 2 {
		f := geojson.NewFeature(line)
		f.Properties["kind"] = "route"
		f.Properties["trip_id"] = steps[0].TripID.String()
		f.Properties["total_weight"] = steps[len(steps)-1].CumulativeWeight.String()
		fc.Append(f)
	}
	for _, p := range points {
		p.Properties["kind"] = "node"
		fc.Append(p)
	}
	return fc
}

package export

import (
	"bytes"
	"fleet-trip-service/internal/domain"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

type route struct {
	trip    uuid.UUID
	a, b, c uuid.UUID
	nodes   map[uuid.UUID]domain.GraphNode
	steps   []domain.TripRouteStep
}

// newRoute is A -> B -> C -> B, with C unlocated.
func newRoute() route {
	r := route{trip: uuid.New(), a: uuid.New(), b: uuid.New(), c: uuid.New()}
	r.nodes = map[uuid.UUID]domain.GraphNode{
		r.a: {ID: r.a, Name: "Depot", Coords: &domain.Coordinates{Lon: -74.0060, Lat: 40.7128}},
		r.b: {ID: r.b, Name: "Cross Dock", Coords: &domain.Coordinates{Lon: -73.9352, Lat: 40.7306}},
		r.c: {ID: r.c, Name: "Yard"},
	}
	hops := [][2]uuid.UUID{{r.a, r.b}, {r.b, r.c}, {r.c, r.b}}
	total := decimal.Zero
	for i, h := range hops {
		w := decimal.NewFromInt(int64(i + 1))
		total = total.Add(w)
		r.steps = append(r.steps, domain.TripRouteStep{
			ID: uuid.New(), TripID: r.trip, StepOrder: i + 1,
			FromNodeID: h[0], ToNodeID: h[1], EdgeWeight: w, CumulativeWeight: total,
		})
	}
	return r
}

func TestRouteGeoJSON(t *testing.T) {
	r := newRoute()

	fc := RouteGeoJSON(r.steps, r.nodes)

	if len(fc.Features) != 3 {
		t.Fatalf("features = %d, want line + 2 points", len(fc.Features))
	}
	line, ok := fc.Features[0].Geometry.(orb.LineString)
	if !ok {
		t.Fatalf("first feature is %T, want LineString", fc.Features[0].Geometry)
	}
	// A, B, (C skipped), B
	if len(line) != 3 || line[0] != r.nodes[r.a].Coords.Point() {
		t.Errorf("line = %v", line)
	}
	if got := fc.Features[0].Properties["total_weight"]; got != "6" {
		t.Errorf("total_weight = %v, want 6", got)
	}
	for _, f := range fc.Features[1:] {
		if _, ok := f.Geometry.(orb.Point); !ok {
			t.Errorf("node feature is %T", f.Geometry)
		}
		if f.Properties["name"] == "Yard" {
			t.Errorf("unlocated node rendered")
		}
	}

	if _, err := fc.MarshalJSON(); err != nil {
		t.Errorf("marshal: %v", err)
	}
}

func TestRouteGeoJSONEmpty(t *testing.T) {
	fc := RouteGeoJSON(nil, nil)
	if fc == nil || len(fc.Features) != 0 {
		t.Errorf("fc = %+v, want empty collection", fc)
	}
}

func TestWriteManifest(t *testing.T) {
	r := newRoute()
	arrived := time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)
	details := &domain.TripDetails{
		TripSummary: domain.TripSummary{
			Trip: domain.Trip{
				ID:                   r.trip,
				Status:               domain.TripActive,
				CreatedByUserID:      "dispatcher-1",
				TotalPlannedDistance: decimal.NewFromInt(6),
				CreatedAt:            arrived.Add(-time.Hour),
			},
			TruckName:  "Volvo VNL",
			DriverName: "Maria Lopez",
		},
		Stops: []domain.StopDetail{
			{TripStop: domain.TripStop{StopOrder: 1, Status: domain.StopDelivered, ActualArrivalTime: &arrived}, Name: "Market Street"},
			{TripStop: domain.TripStop{StopOrder: 2, Status: domain.StopPending}, Name: "Harbor Delivery"},
		},
		CargoItems: []domain.CargoDetail{
			{ProductName: "Beverage Cases", Quantity: 10, TotalWeightKg: decimal.NewFromInt(180)},
		},
	}

	var buf bytes.Buffer
	if err := WriteManifest(&buf, details, r.steps, r.nodes); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	want := []string{sheetTrip, sheetStops, sheetCargo, sheetRoute}
	got := f.GetSheetList()
	if len(got) != len(want) {
		t.Fatalf("sheets = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sheet %d = %q, want %q", i, got[i], want[i])
		}
	}

	tests := []struct {
		sheet, cell, want string
	}{
		{sheetTrip, "B3", "Volvo VNL"},
		{sheetTrip, "B4", "Maria Lopez"},
		{sheetStops, "B2", "Market Street"},
		{sheetStops, "C2", "delivered"},
		{sheetStops, "D3", ""},
		{sheetCargo, "B2", "10"},
		{sheetRoute, "B2", "Depot"},
		{sheetRoute, "C2", "Cross Dock"},
		{sheetRoute, "E4", "6"},
	}
	for _, tt := range tests {
		v, err := f.GetCellValue(tt.sheet, tt.cell)
		if err != nil {
			t.Errorf("%s!%s: %v", tt.sheet, tt.cell, err)
			continue
		}
		if v != tt.want {
			t.Errorf("%s!%s = %q, want %q", tt.sheet, tt.cell, v, tt.want)
		}
	}
}

func TestWriteManifestNilTrip(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteManifest(&buf, nil, nil, nil); err == nil {
		t.Errorf("expected error for nil trip")
	}
}

package export

import (
	"fleet-trip-service/internal/domain"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

const (
	sheetTrip  = "Trip"
	sheetStops = "Stops"
	sheetCargo = "Cargo"
	sheetRoute = "Route"
)

// WriteManifest writes an XLSX driver manifest with Trip, Stops, Cargo and
// Route sheets. nodes resolves node names on the Route sheet and may be nil.
func WriteManifest(
	w io.Writer,
	details *domain.TripDetails,
	steps []domain.TripRouteStep,
	nodes map[uuid.UUID]domain.GraphNode,
) error {
	if details == nil {
		return fmt.Errorf("write manifest: %w", domain.ErrTripNotFound)
	}

	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("write manifest: header style: %w", err)
	}

	trip := [][]any{
		{"Trip ID", details.ID.String()},
		{"Status", string(details.Status)},
		{"Truck", details.TruckName},
		{"Driver", details.DriverName},
		{"Created by", details.CreatedByUserID},
		{"Created at", details.CreatedAt.Format(time.RFC3339)},
		{"Planned distance", details.TotalPlannedDistance.String()},
	}
	if details.DoneAt != nil {
		trip = append(trip, []any{"Done at", details.DoneAt.Format(time.RFC3339)})
	}

	stops := make([][]any, 0, len(details.Stops))
	for _, s := range details.Stops {
		arrival := ""
		if s.ActualArrivalTime != nil {
			arrival = s.ActualArrivalTime.Format(time.RFC3339)
		}
		stops = append(stops, []any{s.StopOrder, s.Name, string(s.Status), arrival, s.Notes})
	}

	cargo := make([][]any, 0, len(details.CargoItems))
	for _, c := range details.CargoItems {
		weight, _ := c.TotalWeightKg.Float64()
		cargo = append(cargo, []any{c.ProductName, c.Quantity, weight})
	}

	route := make([][]any, 0, len(steps))
	for _, s := range steps {
		edge, _ := s.EdgeWeight.Float64()
		total, _ := s.CumulativeWeight.Float64()
		route = append(route, []any{s.StepOrder, nodeLabel(nodes, s.FromNodeID), nodeLabel(nodes, s.ToNodeID), edge, total})
	}

	sheets := []struct {
		name    string
		headers []string
		rows    [][]any
	}{
		{sheetTrip, []string{"Field", "Value"}, trip},
		{sheetStops, []string{"Order", "Stop", "Status", "Arrived", "Notes"}, stops},
		{sheetCargo, []string{"Product", "Quantity", "Weight (kg)"}, cargo},
		{sheetRoute, []string{"Step", "From", "To", "Weight", "Cumulative"}, route},
	}

	for i, sh := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sh.name); err != nil {
				return fmt.Errorf("write manifest: rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sh.name); err != nil {
			return fmt.Errorf("write manifest: new sheet %s: %w", sh.name, err)
		}
		if err := writeTable(f, sh.name, sh.headers, sh.rows, headerStyle); err != nil {
			return fmt.Errorf("write manifest: sheet %s: %w", sh.name, err)
		}
	}
	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

func writeTable(f *excelize.File, sheet string, headers []string, rows [][]any, headerStyle int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, headerStyle); err != nil {
			return err
		}
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}

	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		return err
	}
	return f.SetColWidth(sheet, "A", last, 20)
}

func nodeLabel(nodes map[uuid.UUID]domain.GraphNode, id uuid.UUID) string {
	if n, ok := nodes[id]; ok && n.Name != "" {
		return n.Name
	}
	return id.String()
}

package seed

import (
	"fleet-trip-service/internal/domain"
	"fmt"
	"time"
)

func (n Node) ToDomain() (domain.GraphNode, error) {
	coords, err := domain.NewCoordinates(n.Lat, n.Lon)
	if err != nil {
		return domain.GraphNode{}, fmt.Errorf("node %q: %w", n.Name, err)
	}
	return domain.GraphNode{ID: n.ID, Name: n.Name, Coords: coords}, nil
}

func (e Edge) ToDomain() domain.GraphEdge {
	return domain.GraphEdge{
		ID:              e.ID,
		FromNodeID:      e.From,
		ToNodeID:        e.To,
		Weight:          e.Weight,
		IsBidirectional: e.IsBidirectional(),
	}
}

func (l Location) ToDomain(at time.Time) domain.StopLocation {
	return domain.StopLocation{
		ID:          l.ID,
		Name:        l.Name,
		AddressText: l.Address,
		GraphNodeID: l.Node,
		CreatedAt:   at,
	}
}

func (t Truck) ToDomain(at time.Time) domain.Truck {
	return domain.Truck{
		ID:           t.ID,
		Name:         t.Name,
		PlateNumber:  t.Plate,
		MaxPayloadKg: t.MaxPayloadKg,
		IsActive:     t.Active,
		CreatedAt:    at,
	}
}

func (d Driver) ToDomain(at time.Time) domain.Driver {
	return domain.Driver{
		ID:            d.ID,
		UserID:        d.UserID,
		FirstName:     d.FirstName,
		LastName:      d.LastName,
		Email:         d.Email,
		LicenseNumber: d.License,
		IsActive:      d.Active,
		CreatedAt:     at,
		UpdatedAt:     at,
	}
}

func (p Product) ToDomain(at time.Time) domain.Product {
	return domain.Product{
		ID:           p.ID,
		Name:         p.Name,
		SKU:          p.SKU,
		UnitWeightKg: p.UnitWeightKg,
		CreatedAt:    at,
		Stock: &domain.ProductStock{
			ProductID:         p.ID,
			AvailableQuantity: p.Quantity,
			UpdatedAt:         at,
		},
	}
}

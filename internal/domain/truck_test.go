package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestTruckCanCarry(t *testing.T) {
	truck := &Truck{Name: "T1", MaxPayloadKg: decimal.NewFromInt(100), IsActive: true}

	tests := []struct {
		name   string
		weight decimal.Decimal
		want   bool
	}{
		{name: "empty", weight: decimal.Zero, want: true},
		{name: "under", weight: decimal.NewFromInt(90), want: true},
		{name: "exactly at limit", weight: decimal.NewFromInt(100), want: true},
		{name: "over", weight: decimal.RequireFromString("100.01"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := truck.CanCarry(tt.weight); got != tt.want {
				t.Errorf("CanCarry(%s) = %v, want %v", tt.weight, got, tt.want)
			}
		})
	}
}

func TestProductLineWeight(t *testing.T) {
	p := &Product{Name: "P", UnitWeightKg: decimal.RequireFromString("2.5")}

	if got := p.LineWeight(4); !got.Equal(decimal.NewFromInt(10)) {
		t.Errorf("LineWeight(4) = %s, want 10", got)
	}
	if p.Available() != 0 {
		t.Errorf("Available() without stock = %d, want 0", p.Available())
	}

	p.Stock = &ProductStock{AvailableQuantity: 7}
	if p.Available() != 7 {
		t.Errorf("Available() = %d, want 7", p.Available())
	}
}

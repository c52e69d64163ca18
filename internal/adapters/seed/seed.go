package seed

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Node struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	Lat  *float64  `json:"lat"`
	Lon  *float64  `json:"lon"`
}

type Edge struct {
	ID            uuid.UUID       `json:"id"`
	From          uuid.UUID       `json:"from"`
	To            uuid.UUID       `json:"to"`
	Weight        decimal.Decimal `json:"weight"`
	Bidirectional *bool           `json:"bidirectional"`
}

type Location struct {
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Address string    `json:"address"`
	Node    uuid.UUID `json:"node"`
}

type Truck struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	Plate        string          `json:"plate"`
	MaxPayloadKg decimal.Decimal `json:"max_payload_kg"`
	Active       bool            `json:"active"`
}

type Driver struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"user_id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	Email     string    `json:"email"`
	License   string    `json:"license"`
	Active    bool      `json:"active"`
}

type Product struct {
	ID           uuid.UUID       `json:"id"`
	Name         string          `json:"name"`
	SKU          string          `json:"sku"`
	UnitWeightKg decimal.Decimal `json:"unit_weight_kg"`
	Quantity     int             `json:"quantity"`
}

// Network is the demo data set: graph, fleet, locations and products.
type Network struct {
	Nodes     []Node     `json:"nodes"`
	Edges     []Edge     `json:"edges"`
	Locations []Location `json:"locations"`
	Trucks    []Truck    `json:"trucks"`
	Drivers   []Driver   `json:"drivers"`
	Products  []Product  `json:"products"`

	LoadedAt time.Time `json:"-"`
}

// Load reads and validates a seed file.
func Load(path string) (*Network, error) {
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load seed: read %q: %w", path, err)
	}

	var n Network
	if err := json.Unmarshal(bytes, &n); err != nil {
		return nil, fmt.Errorf("load seed: parse json: %w", err)
	}
	if err := n.validate(); err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	n.LoadedAt = time.Now().UTC()
	return &n, nil
}

func (n *Network) validate() error {
	nodes := make(map[uuid.UUID]struct{}, len(n.Nodes))
	for i, node := range n.Nodes {
		if node.ID == uuid.Nil || strings.TrimSpace(node.Name) == "" {
			return fmt.Errorf("node at index %d: id and name are required", i+1)
		}
		nodes[node.ID] = struct{}{}
	}

	for i, e := range n.Edges {
		_, fromOK := nodes[e.From]
		_, toOK := nodes[e.To]
		if !fromOK || !toOK {
			return fmt.Errorf("edge at index %d: unknown node reference", i+1)
		}
		if e.Weight.IsNegative() {
			return fmt.Errorf("edge at index %d: weight must be non-negative", i+1)
		}
	}

	for i, l := range n.Locations {
		if _, ok := nodes[l.Node]; !ok {
			return fmt.Errorf("location %q at index %d: unknown node", l.Name, i+1)
		}
	}

	for i, t := range n.Trucks {
		if !t.MaxPayloadKg.IsPositive() {
			return fmt.Errorf("truck %q at index %d: max payload must be positive", t.Name, i+1)
		}
	}

	for i, p := range n.Products {
		if !p.UnitWeightKg.IsPositive() {
			return fmt.Errorf("product %q at index %d: unit weight must be positive", p.Name, i+1)
		}
		if p.Quantity < 0 {
			return fmt.Errorf("product %q at index %d: quantity cannot be negative", p.Name, i+1)
		}
	}

	return nil
}

// IsBidirectional defaults to true when the flag is omitted.
func (e Edge) IsBidirectional() bool {
	return e.Bidirectional == nil || *e.Bidirectional
}

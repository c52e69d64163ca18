package seed

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const validSeed = `{
  "nodes": [
    {"id": "11111111-1111-1111-1111-111111111111", "name": "Depot", "lat": 40.7, "lon": -74.0},
    {"id": "22222222-2222-2222-2222-222222222222", "name": "Hub"}
  ],
  "edges": [
    {"id": "33333333-3333-3333-3333-333333333333", "from": "11111111-1111-1111-1111-111111111111", "to": "22222222-2222-2222-2222-222222222222", "weight": "4.2"},
    {"id": "44444444-4444-4444-4444-444444444444", "from": "22222222-2222-2222-2222-222222222222", "to": "11111111-1111-1111-1111-111111111111", "weight": 3, "bidirectional": false}
  ],
  "products": [
    {"id": "55555555-5555-5555-5555-555555555555", "name": "Crate", "unit_weight_kg": "12.5", "quantity": 40}
  ]
}`

func writeSeed(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "network.json")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}
	return path
}

func TestLoadValidSeed(t *testing.T) {
	n, err := Load(writeSeed(t, validSeed))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(n.Nodes) != 2 || len(n.Edges) != 2 || len(n.Products) != 1 {
		t.Fatalf("unexpected counts: nodes=%d edges=%d products=%d", len(n.Nodes), len(n.Edges), len(n.Products))
	}
	if !n.Edges[0].IsBidirectional() {
		t.Errorf("edge without flag should default to bidirectional")
	}
	if n.Edges[1].IsBidirectional() {
		t.Errorf("edge with bidirectional=false should be one-way")
	}

	node, err := n.Nodes[0].ToDomain()
	if err != nil {
		t.Fatalf("ToDomain: %v", err)
	}
	if node.Coords == nil || node.Coords.Lat != 40.7 {
		t.Errorf("coords = %+v, want lat 40.7", node.Coords)
	}
	if hub, _ := n.Nodes[1].ToDomain(); hub.Coords != nil {
		t.Errorf("node without coordinates should have nil Coords")
	}
}

func TestLoadRejectsDanglingEdge(t *testing.T) {
	body := strings.Replace(validSeed, `"to": "22222222-2222-2222-2222-222222222222", "weight": "4.2"`,
		`"to": "99999999-9999-9999-9999-999999999999", "weight": "4.2"`, 1)

	if _, err := Load(writeSeed(t, body)); err == nil || !strings.Contains(err.Error(), "unknown node") {
		t.Fatalf("err = %v, want unknown node reference", err)
	}
}

func TestLoadRejectsNegativeWeight(t *testing.T) {
	body := strings.Replace(validSeed, `"weight": "4.2"`, `"weight": "-1"`, 1)

	if _, err := Load(writeSeed(t, body)); err == nil || !strings.Contains(err.Error(), "non-negative") {
		t.Fatalf("err = %v, want non-negative weight error", err)
	}
}

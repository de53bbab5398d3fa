package graph

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func buildTriangle(t *testing.T) *Graph {
	t.Helper()
	b := NewBuilder(3, 3)
	for i := 0; i < 3; i++ {
		b.AddNode(float64(i), float64(-i))
	}
	for _, e := range [][3]int{{0, 1, 1}, {1, 2, 3}, {2, 0, 1}} {
		if _, err := b.AddEdge(e[0], e[1], e[2]); err != nil {
			t.Fatalf("AddEdge(%v): %v", e, err)
		}
	}
	return b.Build()
}

func TestBuilderCSR(t *testing.T) {
	b := NewBuilder(0, 0)
	for i := 0; i < 4; i++ {
		b.AddNode(0, float64(i))
	}
	edges := [][2]int{{2, 0}, {0, 1}, {2, 3}, {0, 3}}
	for _, e := range edges {
		if _, err := b.AddEdge(e[0], e[1], 1); err != nil {
			t.Fatal(err)
		}
	}
	g := b.Build()

	tests := []struct {
		node    int
		wantTo  []int
		wantIDs []int
	}{
		{node: 0, wantTo: []int{1, 3}, wantIDs: []int{1, 3}},
		{node: 1, wantTo: nil, wantIDs: nil},
		{node: 2, wantTo: []int{0, 3}, wantIDs: []int{0, 2}},
		{node: 3, wantTo: nil, wantIDs: nil},
	}
	for _, tt := range tests {
		arcs := g.EdgesOf(tt.node)
		if len(arcs) != len(tt.wantTo) {
			t.Fatalf("node %d: got %d arcs, want %d", tt.node, len(arcs), len(tt.wantTo))
		}
		for i, a := range arcs {
			if a.To != tt.wantTo[i] || a.Edge != tt.wantIDs[i] {
				t.Errorf("node %d arc %d = %+v, want to=%d edge=%d", tt.node, i, a, tt.wantTo[i], tt.wantIDs[i])
			}
		}
	}
	if g.Edge(2).From != 2 || g.Edge(2).To != 3 {
		t.Errorf("Edge(2) = %+v", g.Edge(2))
	}
}

func TestBuilderRejectsBadEdges(t *testing.T) {
	b := NewBuilder(0, 0)
	b.AddNode(0, 0)
	b.AddNode(0, 1)

	tests := []struct {
		name     string
		from, to int
		capacity int
		want     error
	}{
		{"UnknownFrom", 5, 0, 1, ErrInvalidNode},
		{"UnknownTo", 0, -1, 1, ErrInvalidNode},
		{"NegativeCapacity", 0, 1, -2, ErrNegativeCapacity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := b.AddEdge(tt.from, tt.to, tt.capacity)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddEdge error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHash(t *testing.T) {
	g1 := buildTriangle(t)
	g2 := buildTriangle(t)
	if g1.Hash() != g2.Hash() {
		t.Error("Hash should be deterministic")
	}
	if len(g1.Hash()) != 64 {
		t.Errorf("Hash length = %d, want 64", len(g1.Hash()))
	}

	b := NewBuilder(3, 3)
	for i := 0; i < 3; i++ {
		b.AddNode(float64(i), float64(-i))
	}
	b.AddEdge(0, 1, 1)
	b.AddEdge(1, 2, 2) // capacity differs
	b.AddEdge(2, 0, 1)
	if b.Build().Hash() == g1.Hash() {
		t.Error("different capacities should change the hash")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g := buildTriangle(t)
	path := filepath.Join(t.TempDir(), "g.json")
	if err := WriteDocumentFile(FromGraph(g), path); err != nil {
		t.Fatalf("WriteDocumentFile: %v", err)
	}
	doc, err := ReadDocumentFile(path)
	if err != nil {
		t.Fatalf("ReadDocumentFile: %v", err)
	}
	got, err := doc.Build(DefaultCapacity)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if got.Hash() != g.Hash() {
		t.Error("round trip changed the graph")
	}
}

func TestReadDocumentErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Malformed", `{"nodes": [`},
		{"UnknownField", `{"nodes": [], "edges": [], "extra": 1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ReadDocument(strings.NewReader(tt.input)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestDocumentBuildErrors(t *testing.T) {
	doc, err := ReadDocument(strings.NewReader(`{"nodes": [{"lat": 0, "lon": 0}], "edges": [{"from": 0, "to": 3}]}`))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := doc.Build(1); !errors.Is(err, ErrInvalidNode) {
		t.Errorf("Build error = %v, want ErrInvalidNode", err)
	}
}

func TestDocumentDefaultCapacity(t *testing.T) {
	doc := &Document{
		Nodes: []NodeRecord{{}, {}},
		Edges: []EdgeRecord{{From: 0, To: 1}},
	}
	g, err := doc.Build(0)
	if err != nil {
		t.Fatal(err)
	}
	if c := g.Edge(0).Capacity; c != DefaultCapacity {
		t.Errorf("capacity = %d, want %d", c, DefaultCapacity)
	}
	g, _ = doc.Build(7)
	if c := g.Edge(0).Capacity; c != 7 {
		t.Errorf("capacity = %d, want 7", c)
	}
}

package graph

import (
	"fmt"
)

// DefaultCapacity is the capacity given to edges that do not specify one.
const DefaultCapacity = 1

// Document is the JSON serialization format of a routing graph.
//
// Node ids are implicit: the i-th entry of Nodes is node i. Edge ids are
// likewise the index into Edges.
type Document struct {
	Nodes []NodeRecord `json:"nodes"`
	Edges []EdgeRecord `json:"edges"`
}

// NodeRecord is a node position in WGS84 degrees.
type NodeRecord struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// EdgeRecord is a directed edge with optional attribute tags.
type EdgeRecord struct {
	From       int             `json:"from"`
	To         int             `json:"to"`
	Capacity   *int            `json:"capacity,omitempty"` // nil means the build default
	Wheelchair *WheelchairTags `json:"wheelchair,omitempty"`
	Border     *BorderTags     `json:"border,omitempty"`
}

// WheelchairTags are raw accessibility tags of a way segment. Zero values
// mean "not tagged"; Incline uses nil for that since zero is a real grade.
type WheelchairTags struct {
	Surface    int     `json:"surface,omitempty"`
	Smoothness int     `json:"smoothness,omitempty"`
	TrackType  int     `json:"track_type,omitempty"`
	Incline    *int    `json:"incline,omitempty"`
	KerbHeight float64 `json:"kerb_height,omitempty"`
	Width      float64 `json:"width,omitempty"` // meters
	Side       string  `json:"side,omitempty"`  // "left", "right" or empty
}

// BorderTags describe an edge crossing between two regions.
type BorderTags struct {
	Type  int `json:"type"` // 0 none, 1 controlled, 2 open
	Start int `json:"start"`
	End   int `json:"end"`
}

// Build converts the document into a [Graph]. Edges without a capacity get
// defaultCapacity; a non-positive defaultCapacity means [DefaultCapacity].
func (d *Document) Build(defaultCapacity int) (*Graph, error) {
	if defaultCapacity <= 0 {
		defaultCapacity = DefaultCapacity
	}
	b := NewBuilder(len(d.Nodes), len(d.Edges))
	for _, n := range d.Nodes {
		b.AddNode(n.Lat, n.Lon)
	}
	for i, e := range d.Edges {
		c := defaultCapacity
		if e.Capacity != nil {
			c = *e.Capacity
		}
		if _, err := b.AddEdge(e.From, e.To, c); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return b.Build(), nil
}

// FromGraph converts a Graph to its serialization format. Attribute tags are
// not part of a Graph and are left empty.
func FromGraph(g *Graph) *Document {
	d := &Document{
		Nodes: make([]NodeRecord, g.NodeCount()),
		Edges: make([]EdgeRecord, g.EdgeCount()),
	}
	for i := range d.Nodes {
		lat, lon := g.Coord(i)
		d.Nodes[i] = NodeRecord{Lat: lat, Lon: lon}
	}
	for i, e := range g.Edges() {
		c := e.Capacity
		d.Edges[i] = EdgeRecord{From: e.From, To: e.To, Capacity: &c}
	}
	return d
}

package graph

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidNode is returned by [Builder.AddEdge] when an endpoint is not
	// a node id of the graph under construction.
	ErrInvalidNode = errors.New("invalid node id")

	// ErrNegativeCapacity is returned by [Builder.AddEdge] for capacities
	// below zero.
	ErrNegativeCapacity = errors.New("negative edge capacity")
)

// Arc is an outgoing adjacency entry.
type Arc struct {
	To       int // Neighbor node id
	Edge     int // Edge id
	Capacity int
}

// Edge is a directed graph edge.
type Edge struct {
	ID       int
	From     int
	To       int
	Capacity int
}

// Graph is an immutable directed graph in compressed sparse row form.
// It is safe for concurrent readers.
type Graph struct {
	lat     []float64
	lon     []float64
	offsets []int // offsets[n]..offsets[n+1] index arcs of node n
	arcs    []Arc
	edges   []Edge
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.lat) }

// EdgeCount returns the number of directed edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// EdgesOf returns the outgoing arcs of node. The slice aliases internal
// storage and must not be modified.
func (g *Graph) EdgesOf(node int) []Arc {
	return g.arcs[g.offsets[node]:g.offsets[node+1]]
}

// Coord returns the latitude and longitude of node.
func (g *Graph) Coord(node int) (lat, lon float64) {
	return g.lat[node], g.lon[node]
}

// Edge returns the edge with the given id.
func (g *Graph) Edge(id int) Edge { return g.edges[id] }

// Edges returns all edges in id order. The slice aliases internal storage.
func (g *Graph) Edges() []Edge { return g.edges }

// Hash returns a hex SHA-256 digest over coordinates and edges. Two graphs
// with the same hash produce the same partition for the same options.
func (g *Graph) Hash() string {
	h := sha256.New()
	var buf [8]byte
	put := func(v uint64) {
		binary.LittleEndian.PutUint64(buf[:], v)
		h.Write(buf[:])
	}
	put(uint64(len(g.lat)))
	for i := range g.lat {
		put(math.Float64bits(g.lat[i]))
		put(math.Float64bits(g.lon[i]))
	}
	put(uint64(len(g.edges)))
	for _, e := range g.edges {
		put(uint64(e.From))
		put(uint64(e.To))
		put(uint64(e.Capacity))
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Builder accumulates nodes and edges for a [Graph].
// The zero value is ready to use.
type Builder struct {
	lat   []float64
	lon   []float64
	edges []Edge
}

// NewBuilder returns a builder with room for the given node and edge counts.
func NewBuilder(nodes, edges int) *Builder {
	return &Builder{
		lat:   make([]float64, 0, nodes),
		lon:   make([]float64, 0, nodes),
		edges: make([]Edge, 0, edges),
	}
}

// AddNode appends a node and returns its id.
func (b *Builder) AddNode(lat, lon float64) int {
	b.lat = append(b.lat, lat)
	b.lon = append(b.lon, lon)
	return len(b.lat) - 1
}

// AddEdge appends a directed edge and returns its id.
func (b *Builder) AddEdge(from, to, capacity int) (int, error) {
	n := len(b.lat)
	if from < 0 || from >= n {
		return 0, fmt.Errorf("edge %d->%d: %w: %d", from, to, ErrInvalidNode, from)
	}
	if to < 0 || to >= n {
		return 0, fmt.Errorf("edge %d->%d: %w: %d", from, to, ErrInvalidNode, to)
	}
	if capacity < 0 {
		return 0, fmt.Errorf("edge %d->%d: %w", from, to, ErrNegativeCapacity)
	}
	id := len(b.edges)
	b.edges = append(b.edges, Edge{ID: id, From: from, To: to, Capacity: capacity})
	return id, nil
}

// Build freezes the accumulated nodes and edges into a Graph. The builder
// may be reused afterwards; later additions do not affect the result.
func (b *Builder) Build() *Graph {
	n := len(b.lat)
	g := &Graph{
		lat:     append([]float64(nil), b.lat...),
		lon:     append([]float64(nil), b.lon...),
		offsets: make([]int, n+1),
		arcs:    make([]Arc, len(b.edges)),
		edges:   append([]Edge(nil), b.edges...),
	}
	for _, e := range b.edges {
		g.offsets[e.From+1]++
	}
	for i := 0; i < n; i++ {
		g.offsets[i+1] += g.offsets[i]
	}
	next := append([]int(nil), g.offsets[:n]...)
	for _, e := range b.edges {
		g.arcs[next[e.From]] = Arc{To: e.To, Edge: e.ID, Capacity: e.Capacity}
		next[e.From]++
	}
	return g
}

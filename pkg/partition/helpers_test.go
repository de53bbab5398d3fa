package partition

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/isocell/isocell/pkg/graph"
)

func quietOptions(min, max int) Options {
	opts := DefaultOptions()
	opts.MinCellNodes = min
	opts.MaxCellNodes = max
	opts.Logger = log.New(io.Discard)
	return opts
}

// twoCliques builds two 6-node cliques joined by one bridge edge 5->6 and
// returns the graph and the bridge's edge id.
func twoCliques(t *testing.T) (*graph.Graph, int) {
	t.Helper()
	b := graph.NewBuilder(12, 31)
	for i := 0; i < 6; i++ {
		b.AddNode(float64(i%3)*0.1, float64(i)*0.1)
	}
	for i := 0; i < 6; i++ {
		b.AddNode(float64(i%3)*0.1, 10+float64(i)*0.1)
	}
	for base := 0; base < 12; base += 6 {
		for i := base; i < base+6; i++ {
			for j := i + 1; j < base+6; j++ {
				mustEdge(t, b, i, j, 1)
			}
		}
	}
	bridge := mustEdge(t, b, 5, 6, 1)
	return b.Build(), bridge
}

// grid builds a w x h grid with edges in both directions between neighbors.
func grid(t *testing.T, w, h int) *graph.Graph {
	t.Helper()
	b := graph.NewBuilder(w*h, 4*w*h)
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			b.AddNode(float64(r), float64(c))
		}
	}
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			u := r*w + c
			if c+1 < w {
				mustEdge(t, b, u, u+1, 1)
				mustEdge(t, b, u+1, u, 1)
			}
			if r+1 < h {
				mustEdge(t, b, u, u+w, 1)
				mustEdge(t, b, u+w, u, 1)
			}
		}
	}
	return b.Build()
}

func mustEdge(t *testing.T, b *graph.Builder, from, to, capacity int) int {
	t.Helper()
	id, err := b.AddEdge(from, to, capacity)
	if err != nil {
		t.Fatalf("AddEdge(%d, %d): %v", from, to, err)
	}
	return id
}

// checkPartition verifies coverage, cell ids and cut sets of tree against g.
func checkPartition(t *testing.T, g *graph.Graph, tree *Tree, opts Options) {
	t.Helper()

	seen := make([]int, g.NodeCount())
	for i := range seen {
		seen[i] = -1
	}
	for leaf := range tree.Leaves() {
		for _, u := range leaf.Nodes {
			if seen[u] != -1 {
				t.Fatalf("node %d in cells %d and %d", u, seen[u], leaf.CellID)
			}
			seen[u] = leaf.CellID
		}
		if leaf.Size() > opts.MaxCellNodes && leaf.Reason != LeafBudgetExhausted && leaf.Reason != LeafDegenerate {
			t.Errorf("cell %d has %d nodes > max %d (reason %s)", leaf.CellID, leaf.Size(), opts.MaxCellNodes, leaf.Reason)
		}
		if leaf.Size() < opts.MinCellNodes && leaf.Reason != LeafIrreducible {
			t.Errorf("cell %d has %d nodes < min %d (reason %s)", leaf.CellID, leaf.Size(), opts.MinCellNodes, leaf.Reason)
		}
	}
	for u, cell := range seen {
		if cell == -1 {
			t.Fatalf("node %d is in no cell", u)
		}
		if got := tree.LeafCellID(u); got != cell {
			t.Errorf("LeafCellID(%d) = %d, want %d", u, got, cell)
		}
	}

	tree.Walk(func(n *Node, _ int) bool {
		if n.Leaf {
			return true
		}
		if got, want := n.Size(), n.Left.Size()+n.Right.Size(); got != want {
			t.Errorf("internal node has %d nodes, children %d", got, want)
		}
		want := crossing(g, n.Left.Nodes, n.Right.Nodes)
		if !equalInts(n.CutEdges, want) {
			t.Errorf("cut edges = %v, want %v", n.CutEdges, want)
		}
		return true
	})
}

// crossing lists edges with one endpoint in a and the other in b.
func crossing(g *graph.Graph, a, b []int) []int {
	side := make(map[int]int)
	for _, u := range a {
		side[u] = 1
	}
	for _, u := range b {
		side[u] = 2
	}
	var out []int
	for _, e := range g.Edges() {
		sf, st := side[e.From], side[e.To]
		if sf != 0 && st != 0 && sf != st {
			out = append(out, e.ID)
		}
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// componentCount counts the connected components nodes induce in g, with
// edges taken as undirected.
func componentCount(g *graph.Graph, nodes []int) int {
	parent := make(map[int]int, len(nodes))
	for _, u := range nodes {
		parent[u] = u
	}
	var find func(int) int
	find = func(u int) int {
		if parent[u] != u {
			parent[u] = find(parent[u])
		}
		return parent[u]
	}
	count := len(nodes)
	for _, e := range g.Edges() {
		_, okf := parent[e.From]
		_, okt := parent[e.To]
		if !okf || !okt {
			continue
		}
		if a, b := find(e.From), find(e.To); a != b {
			parent[a] = b
			count--
		}
	}
	return count
}

package partition

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
)

// LeafReason records why a node set was not split further.
type LeafReason uint8

const (
	// NotLeaf marks internal nodes.
	NotLeaf LeafReason = iota
	// LeafWithinBounds is a set of at most MaxCellNodes nodes.
	LeafWithinBounds
	// LeafIrreducible is a connected component smaller than MinCellNodes.
	LeafIrreducible
	// LeafBudgetExhausted is an oversize set left when the splitting budget
	// ran out.
	LeafBudgetExhausted
	// LeafDegenerate is an oversize set whose nodes cannot be ordered by any
	// projection.
	LeafDegenerate
)

var leafReasonNames = [...]string{
	NotLeaf:             "",
	LeafWithinBounds:    "within_bounds",
	LeafIrreducible:     "irreducible",
	LeafBudgetExhausted: "budget_exhausted",
	LeafDegenerate:      "degenerate",
}

func (r LeafReason) String() string {
	if int(r) < len(leafReasonNames) {
		return leafReasonNames[r]
	}
	return fmt.Sprintf("LeafReason(%d)", r)
}

// MarshalText implements encoding.TextMarshaler.
func (r LeafReason) MarshalText() ([]byte, error) {
	if int(r) >= len(leafReasonNames) {
		return nil, fmt.Errorf("unknown leaf reason %d", r)
	}
	return []byte(leafReasonNames[r]), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *LeafReason) UnmarshalText(b []byte) error {
	for i, name := range leafReasonNames {
		if name == string(b) {
			*r = LeafReason(i)
			return nil
		}
	}
	return fmt.Errorf("unknown leaf reason %q", b)
}

// Node is a partition tree node.
//
// For an internal node, Nodes is the disjoint union of the children's Nodes
// and CutEdges holds exactly the graph edges with one endpoint in each child.
// Nodes and CutEdges are sorted ascending.
type Node struct {
	Nodes    []int
	Leaf     bool
	Reason   LeafReason // NotLeaf for internal nodes
	CellID   int        // post-order leaf number, -1 for internal nodes
	CutEdges []int
	Left     *Node // unreachable side of the cut
	Right    *Node // side reachable from the source
}

// Size returns the number of graph nodes under n.
func (n *Node) Size() int { return len(n.Nodes) }

// Tree is an immutable partition of a graph's nodes into cells.
// It is safe for concurrent readers.
type Tree struct {
	ID   uuid.UUID
	Root *Node

	cells  []*Node
	cellOf []int
}

// newTree numbers the leaves of root in post-order and indexes them.
func newTree(id uuid.UUID, root *Node, nodeCount int) *Tree {
	t := &Tree{ID: id, Root: root, cellOf: make([]int, nodeCount)}
	for i := range t.cellOf {
		t.cellOf[i] = -1
	}
	var visit func(n *Node)
	visit = func(n *Node) {
		if n.Leaf {
			n.CellID = len(t.cells)
			t.cells = append(t.cells, n)
			for _, u := range n.Nodes {
				if u >= 0 && u < nodeCount {
					t.cellOf[u] = n.CellID
				}
			}
			return
		}
		n.CellID = -1
		visit(n.Left)
		visit(n.Right)
	}
	if root != nil {
		visit(root)
	}
	return t
}

// NodeCount returns the number of graph nodes the tree covers.
func (t *Tree) NodeCount() int { return len(t.cellOf) }

// CellCount returns the number of leaves.
func (t *Tree) CellCount() int { return len(t.cells) }

// LeafCellID returns the cell id of a graph node, or -1 if node is out of
// range.
func (t *Tree) LeafCellID(node int) int {
	if node < 0 || node >= len(t.cellOf) {
		return -1
	}
	return t.cellOf[node]
}

// Cell returns the leaf with the given cell id, or nil.
func (t *Tree) Cell(id int) *Node {
	if id < 0 || id >= len(t.cells) {
		return nil
	}
	return t.cells[id]
}

// Leaves yields the leaves in cell id order. The sequence can be iterated
// any number of times.
func (t *Tree) Leaves() iter.Seq[*Node] {
	return func(yield func(*Node) bool) {
		for _, n := range t.cells {
			if !yield(n) {
				return
			}
		}
	}
}

// CutEdges returns the sorted union of all internal nodes' cut edges.
func (t *Tree) CutEdges() []int {
	var all []int
	t.Walk(func(n *Node, _ int) bool {
		all = append(all, n.CutEdges...)
		return true
	})
	slices.Sort(all)
	return slices.Compact(all)
}

// Walk visits nodes in pre-order with their depth. Returning false from fn
// skips the node's children.
func (t *Tree) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if n == nil || !fn(n, depth) || n.Leaf {
			return
		}
		visit(n.Left, depth+1)
		visit(n.Right, depth+1)
	}
	visit(t.Root, 0)
}

// Depth returns the length of the longest root-to-leaf path.
func (t *Tree) Depth() int {
	d := 0
	t.Walk(func(_ *Node, depth int) bool {
		d = max(d, depth)
		return true
	})
	return d
}

// CellSizes returns the node count of every cell in cell id order.
func (t *Tree) CellSizes() []int {
	sizes := make([]int, len(t.cells))
	for i, n := range t.cells {
		sizes[i] = n.Size()
	}
	return sizes
}

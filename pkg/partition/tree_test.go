package partition

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

func handTree() *Tree {
	leaf := func(reason LeafReason, nodes ...int) *Node {
		return &Node{Nodes: nodes, Leaf: true, Reason: reason}
	}
	root := &Node{
		Nodes:    []int{0, 1, 2, 3, 4},
		CutEdges: []int{7},
		Left: &Node{
			Nodes:    []int{0, 3, 4},
			CutEdges: []int{2, 5},
			Left:     leaf(LeafWithinBounds, 0, 4),
			Right:    leaf(LeafIrreducible, 3),
		},
		Right: leaf(LeafWithinBounds, 1, 2),
	}
	return newTree(uuid.MustParse("6f1c2a34-1111-4c3b-9a77-0123456789ab"), root, 5)
}

func TestTreePostOrderNumbering(t *testing.T) {
	tree := handTree()
	want := map[int]int{0: 0, 4: 0, 3: 1, 1: 2, 2: 2}
	for node, cell := range want {
		if got := tree.LeafCellID(node); got != cell {
			t.Errorf("LeafCellID(%d) = %d, want %d", node, got, cell)
		}
	}
	if tree.Root.CellID != -1 || tree.Root.Left.CellID != -1 {
		t.Error("internal nodes should have cell id -1")
	}
	if tree.CellCount() != 3 {
		t.Errorf("CellCount = %d, want 3", tree.CellCount())
	}
	if tree.Depth() != 2 {
		t.Errorf("Depth = %d, want 2", tree.Depth())
	}
}

func TestTreeLeavesRestartable(t *testing.T) {
	tree := handTree()
	for pass := 0; pass < 2; pass++ {
		var ids []int
		for leaf := range tree.Leaves() {
			ids = append(ids, leaf.CellID)
		}
		if !equalInts(ids, []int{0, 1, 2}) {
			t.Errorf("pass %d: leaves = %v", pass, ids)
		}
	}
	for leaf := range tree.Leaves() {
		if leaf.CellID != 0 {
			t.Error("break should stop iteration")
		}
		break
	}
}

func TestTreeCutEdgesUnion(t *testing.T) {
	if got := handTree().CutEdges(); !equalInts(got, []int{2, 5, 7}) {
		t.Errorf("CutEdges = %v, want [2 5 7]", got)
	}
}

func TestTreeJSONRoundTrip(t *testing.T) {
	g, _ := twoCliques(t)
	tree, err := Partition(context.Background(), g, quietOptions(4, 8))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteTree(&buf, tree); err != nil {
		t.Fatalf("WriteTree: %v", err)
	}
	got, err := ReadTree(&buf)
	if err != nil {
		t.Fatalf("ReadTree: %v", err)
	}

	if got.ID != tree.ID {
		t.Errorf("ID = %s, want %s", got.ID, tree.ID)
	}
	if !equalInts(got.CellSizes(), tree.CellSizes()) {
		t.Errorf("CellSizes = %v, want %v", got.CellSizes(), tree.CellSizes())
	}
	if !equalInts(got.CutEdges(), tree.CutEdges()) {
		t.Errorf("CutEdges = %v, want %v", got.CutEdges(), tree.CutEdges())
	}
	for u := 0; u < g.NodeCount(); u++ {
		if got.LeafCellID(u) != tree.LeafCellID(u) {
			t.Errorf("LeafCellID(%d) = %d, want %d", u, got.LeafCellID(u), tree.LeafCellID(u))
		}
	}
	if !equalInts(got.Root.Nodes, tree.Root.Nodes) {
		t.Error("internal node set not rebuilt from children")
	}
}

func TestReadTreeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"Malformed", `{"root":`},
		{"DuplicateNode", `{"node_count": 2, "root": {"left": {"cell": 0, "reason": "within_bounds", "nodes": [0, 1]},
			"right": {"cell": 1, "reason": "within_bounds", "nodes": [1]}}}`},
		{"MissingNode", `{"node_count": 3, "root": {"cell": 0, "reason": "within_bounds", "nodes": [0, 1]}}`},
		{"WrongCellID", `{"node_count": 2, "root": {"left": {"cell": 1, "reason": "within_bounds", "nodes": [0]},
			"right": {"cell": 0, "reason": "within_bounds", "nodes": [1]}}}`},
		{"OneChild", `{"node_count": 1, "root": {"left": {"cell": 0, "reason": "within_bounds", "nodes": [0]}}}`},
		{"UnknownReason", `{"node_count": 1, "root": {"cell": 0, "reason": "tired", "nodes": [0]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadTree(strings.NewReader(tt.input))
			if !isoerrors.Is(err, isoerrors.ErrCodeInvalidInput) {
				t.Errorf("ReadTree error = %v, want INVALID_INPUT", err)
			}
		})
	}
}

func TestLeafReasonText(t *testing.T) {
	for _, r := range []LeafReason{LeafWithinBounds, LeafIrreducible, LeafBudgetExhausted, LeafDegenerate} {
		b, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%d): %v", r, err)
		}
		var back LeafReason
		if err := back.UnmarshalText(b); err != nil || back != r {
			t.Errorf("UnmarshalText(%q) = %v, %v", b, back, err)
		}
	}
	if _, err := LeafReason(99).MarshalText(); err == nil {
		t.Error("MarshalText should reject unknown reasons")
	}
}

func TestTreeToDOT(t *testing.T) {
	dot := handTree().ToDOT()

	if !strings.HasPrefix(dot, "digraph PartitionTree {") {
		t.Error("ToDOT() should start with 'digraph PartitionTree {'")
	}
	if !strings.HasSuffix(strings.TrimSpace(dot), "}") {
		t.Error("ToDOT() should end with '}'")
	}
	for _, exp := range []string{
		`label="5 nodes\ncut 1"`,
		`label="cell 0\n2 nodes"`,
		`fillcolor="lightgrey"`,
		"n0 -> n1;",
		"shape=ellipse",
		`style="filled,rounded"`,
	} {
		if !strings.Contains(dot, exp) {
			t.Errorf("ToDOT() missing %q", exp)
		}
	}
}

func TestTreeToDOTEmptyTree(t *testing.T) {
	dot := (&Tree{}).ToDOT()
	if !strings.Contains(dot, "digraph PartitionTree {") {
		t.Error("ToDOT() should produce valid DOT for an empty tree")
	}
}

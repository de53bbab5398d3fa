package partition

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"

	isoerrors "github.com/isocell/isocell/pkg/errors"
)

// treeJSON is the serialization format of a Tree. Only leaves list their
// nodes; internal node sets are rebuilt from the children on read.
type treeJSON struct {
	ID        uuid.UUID `json:"id"`
	NodeCount int       `json:"node_count"`
	Root      *nodeJSON `json:"root,omitempty"`
}

type nodeJSON struct {
	Cell   *int       `json:"cell,omitempty"`
	Reason LeafReason `json:"reason,omitempty"`
	Nodes  []int      `json:"nodes,omitempty"`
	Cut    []int      `json:"cut,omitempty"`
	Left   *nodeJSON  `json:"left,omitempty"`
	Right  *nodeJSON  `json:"right,omitempty"`
}

func toJSON(n *Node) *nodeJSON {
	if n == nil {
		return nil
	}
	if n.Leaf {
		cell := n.CellID
		return &nodeJSON{Cell: &cell, Reason: n.Reason, Nodes: n.Nodes}
	}
	return &nodeJSON{Cut: n.CutEdges, Left: toJSON(n.Left), Right: toJSON(n.Right)}
}

func fromJSON(j *nodeJSON) (*Node, error) {
	if j.Cell != nil {
		if j.Left != nil || j.Right != nil {
			return nil, fmt.Errorf("leaf %d has children", *j.Cell)
		}
		if j.Reason == NotLeaf {
			return nil, fmt.Errorf("leaf %d has no reason", *j.Cell)
		}
		nodes := append([]int(nil), j.Nodes...)
		slices.Sort(nodes)
		return &Node{Nodes: nodes, Leaf: true, Reason: j.Reason, CellID: *j.Cell}, nil
	}
	if j.Left == nil || j.Right == nil {
		return nil, fmt.Errorf("internal node needs two children")
	}
	left, err := fromJSON(j.Left)
	if err != nil {
		return nil, err
	}
	right, err := fromJSON(j.Right)
	if err != nil {
		return nil, err
	}
	cut := append([]int(nil), j.Cut...)
	slices.Sort(cut)
	return &Node{
		Nodes:    union([][]int{left.Nodes, right.Nodes}),
		CellID:   -1,
		CutEdges: cut,
		Left:     left,
		Right:    right,
	}, nil
}

// WriteTree encodes t as indented JSON.
func WriteTree(w io.Writer, t *Tree) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(treeJSON{ID: t.ID, NodeCount: t.NodeCount(), Root: toJSON(t.Root)}); err != nil {
		return fmt.Errorf("encode tree: %w", err)
	}
	return nil
}

// WriteTreeFile writes t to path.
func WriteTreeFile(path string, t *Tree) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WriteTree(f, t); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ReadTree decodes a tree written by WriteTree. It fails with INVALID_INPUT
// if the leaves do not partition 0..node_count-1 or if stored cell ids
// disagree with the post-order numbering.
func ReadTree(r io.Reader) (*Tree, error) {
	var tj treeJSON
	if err := json.NewDecoder(r).Decode(&tj); err != nil {
		return nil, isoerrors.Wrap(isoerrors.ErrCodeInvalidInput, err, "decode tree")
	}
	var root *Node
	if tj.Root != nil {
		var err error
		if root, err = fromJSON(tj.Root); err != nil {
			return nil, isoerrors.Wrap(isoerrors.ErrCodeInvalidInput, err, "decode tree")
		}
	}

	stored := map[*Node]int{}
	if root != nil {
		collectLeaves(root, stored)
	}
	t := newTree(tj.ID, root, tj.NodeCount)
	for n, id := range stored {
		if n.CellID != id {
			return nil, isoerrors.New(isoerrors.ErrCodeInvalidInput, "leaf stored as cell %d is cell %d in post-order", id, n.CellID)
		}
	}
	if err := t.checkCoverage(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadTreeFile reads a tree from path.
func ReadTreeFile(path string) (*Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

func collectLeaves(n *Node, out map[*Node]int) {
	if n.Leaf {
		out[n] = n.CellID
		return
	}
	collectLeaves(n.Left, out)
	collectLeaves(n.Right, out)
}

// checkCoverage verifies that every node lies in exactly one leaf.
func (t *Tree) checkCoverage() error {
	seen := make([]bool, len(t.cellOf))
	for leaf := range t.Leaves() {
		for _, u := range leaf.Nodes {
			if u < 0 || u >= len(seen) {
				return isoerrors.New(isoerrors.ErrCodeInvalidInput, "cell %d lists node %d outside [0, %d)", leaf.CellID, u, len(seen))
			}
			if seen[u] {
				return isoerrors.New(isoerrors.ErrCodeInvalidInput, "node %d appears in more than one cell", u)
			}
			seen[u] = true
		}
	}
	for u, ok := range seen {
		if !ok {
			return isoerrors.New(isoerrors.ErrCodeInvalidInput, "node %d is in no cell", u)
		}
	}
	return nil
}

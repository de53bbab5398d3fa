package partition

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// ToDOT returns a Graphviz DOT representation of the tree.
//
// Internal nodes show their size and cut size; leaves show their cell id and
// size. Leaves that are not within bounds are filled to stand out.
func (t *Tree) ToDOT() string {
	var buf bytes.Buffer
	buf.WriteString("digraph PartitionTree {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [fontname=\"SF Mono, Menlo, monospace\", fontsize=12, style=filled, fillcolor=white];\n")
	buf.WriteString("  edge [arrowhead=none];\n\n")

	if t.Root != nil {
		writeDOTNode(&buf, t.Root, 0)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeDOTNode(buf *bytes.Buffer, n *Node, id int) int {
	nodeID := fmt.Sprintf("n%d", id)
	next := id + 1

	if n.Leaf {
		fill := "white"
		switch n.Reason {
		case LeafIrreducible:
			fill = "lightgrey"
		case LeafBudgetExhausted, LeafDegenerate:
			fill = "lightsalmon"
		}
		fmt.Fprintf(buf, "  %s [label=\"cell %d\\n%d nodes\", shape=box, style=\"filled,rounded\", fillcolor=%q];\n",
			nodeID, n.CellID, n.Size(), fill)
		return next
	}

	fmt.Fprintf(buf, "  %s [label=\"%d nodes\\ncut %d\", shape=ellipse];\n", nodeID, n.Size(), len(n.CutEdges))
	for _, c := range []*Node{n.Left, n.Right} {
		fmt.Fprintf(buf, "  %s -> n%d;\n", nodeID, next)
		next = writeDOTNode(buf, c, next)
	}
	return next
}

// RenderSVG renders the tree as an SVG document via Graphviz.
func (t *Tree) RenderSVG(ctx context.Context) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(t.ToDOT()))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}

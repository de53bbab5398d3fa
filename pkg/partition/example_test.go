package partition_test

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"

	"github.com/isocell/isocell/pkg/graph"
	"github.com/isocell/isocell/pkg/partition"
)

func ExamplePartition() {
	// Two triangles of streets joined by a single bridge.
	b := graph.NewBuilder(6, 7)
	for i := 0; i < 3; i++ {
		b.AddNode(float64(i%2), float64(i))
	}
	for i := 0; i < 3; i++ {
		b.AddNode(float64(i%2), 50+float64(i))
	}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 0}, {3, 4}, {4, 5}, {5, 3}, {2, 3}} {
		_, _ = b.AddEdge(e[0], e[1], 1)
	}

	opts := partition.DefaultOptions()
	opts.MinCellNodes = 2
	opts.MaxCellNodes = 4
	opts.Logger = log.New(io.Discard)

	tree, err := partition.Partition(context.Background(), b.Build(), opts)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	for cell := range tree.Leaves() {
		fmt.Printf("cell %d: %v\n", cell.CellID, cell.Nodes)
	}
	fmt.Println("cut edges:", tree.CutEdges())
	// Output:
	// cell 0: [3 4 5]
	// cell 1: [0 1 2]
	// cut edges: [6]
}

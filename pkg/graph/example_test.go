package graph_test

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/isocell/isocell/pkg/graph"
)

func ExampleWriteDocument() {
	b := graph.NewBuilder(2, 1)
	a := b.AddNode(49.41, 8.69)
	c := b.AddNode(49.42, 8.7)
	_, _ = b.AddEdge(a, c, 2)

	var buf bytes.Buffer
	if err := graph.WriteDocument(graph.FromGraph(b.Build()), &buf); err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Print(buf.String())
	// Output:
	// {
	//   "nodes": [
	//     {
	//       "lat": 49.41,
	//       "lon": 8.69
	//     },
	//     {
	//       "lat": 49.42,
	//       "lon": 8.7
	//     }
	//   ],
	//   "edges": [
	//     {
	//       "from": 0,
	//       "to": 1,
	//       "capacity": 2
	//     }
	//   ]
	// }
}

func ExampleReadDocument() {
	input := `{
		"nodes": [{"lat": 0, "lon": 0}, {"lat": 0, "lon": 1}, {"lat": 1, "lon": 1}],
		"edges": [
			{"from": 0, "to": 1, "wheelchair": {"surface": 3, "width": 1.2, "side": "left"}},
			{"from": 1, "to": 2, "capacity": 5}
		]
	}`
	doc, err := graph.ReadDocument(strings.NewReader(input))
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	g, err := doc.Build(graph.DefaultCapacity)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("nodes:", g.NodeCount(), "edges:", g.EdgeCount())
	for _, arc := range g.EdgesOf(1) {
		fmt.Printf("1 -> %d (edge %d, capacity %d)\n", arc.To, arc.Edge, arc.Capacity)
	}
	fmt.Println("surface:", doc.Edges[0].Wheelchair.Surface)
	// Output:
	// nodes: 3 edges: 2
	// 1 -> 2 (edge 1, capacity 5)
	// surface: 3
}

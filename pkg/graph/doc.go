// Package graph provides the base routing graph consumed by the partitioner
// and the attribute importers.
//
// # Core Types
//
//   - [Graph]: immutable compressed-sparse-row graph with node coordinates
//   - [Builder]: incremental construction of a Graph
//   - [Document], [NodeRecord], [EdgeRecord]: the JSON wire format
//
// Node ids are dense integers 0..N-1. Edges are directed and identified by
// their insertion index; [Graph.EdgesOf] lists the outgoing arcs of a node.
// The partitioner treats every edge as undirected.
//
// # Serialization
//
// Graphs use a node-link JSON format. Nodes are listed in id order, edges in
// id order, and each edge may carry raw attribute tags that the importer
// turns into compact per-edge storage rows:
//
//	{
//	  "nodes": [{"lat": 49.41, "lon": 8.69}, {"lat": 49.42, "lon": 8.70}],
//	  "edges": [{
//	    "from": 0, "to": 1, "capacity": 1,
//	    "wheelchair": {"surface": 3, "width": 1.2, "side": "left"},
//	    "border": {"type": 1, "start": 2, "end": 3}
//	  }]
//	}
//
// Common operations:
//
//	doc, _ := graph.ReadDocumentFile("city.json") // File → Document
//	g, _ := doc.Build(1)                          // Document → Graph
//	graph.WriteDocumentFile(doc, "out.json")      // Document → File
//
// [Graph.Hash] identifies a graph by content so that a partition built for
// one graph version can be cached and reused until the graph changes.
package graph

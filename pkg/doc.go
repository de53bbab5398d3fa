// Package pkg holds the isocell libraries.
//
// # Overview
//
// isocell prepares road graphs for fast isochrone queries. It splits a graph
// into compact cells with the inertial flow heuristic and stores per-edge and
// per-node attributes in fixed-width binary rows. The libraries are:
//
//  1. [bitfield] - bit-packed field codec and row layouts
//  2. [edgestore] - growable row stores and their persistence backends
//  3. [schema] - wheelchair, border and partition-cell row layouts
//  4. [graph] - CSR base graph and its JSON document format
//  5. [partition] - inertial flow partitioner and partition tree
//
// Supporting packages: [config] (TOML/YAML configuration), [cache]
// (content-addressed tree cache), [observability] (hooks with a Prometheus
// implementation in observability/prom), [errors] (coded errors) and
// [buildinfo].
//
// # Data Flow
//
//	graph JSON
//	     ↓
//	[graph] package (CSR graph + per-edge tags)
//	     ↓                          ↓
//	[partition] package         [schema] edge storages
//	     ↓                          ↓
//	[schema] CellStorage  →  [edgestore] segments (file, badger, redis)
//
// # Quick Start
//
//	doc, _ := graph.ReadDocumentFile("city.json")
//	g, _ := doc.Build(graph.DefaultCapacity)
//
//	tree, _ := partition.Partition(ctx, g, partition.DefaultOptions())
//
//	dir, _ := edgestore.NewFileDirectory("data")
//	cells := schema.NewCellStorage()
//	_ = cells.Init(dir, g.NodeCount())
//	_ = cells.Fill(tree, g)
//	_ = cells.Flush(ctx)
//
// [bitfield]: https://pkg.go.dev/github.com/isocell/isocell/pkg/bitfield
// [edgestore]: https://pkg.go.dev/github.com/isocell/isocell/pkg/edgestore
// [schema]: https://pkg.go.dev/github.com/isocell/isocell/pkg/schema
// [graph]: https://pkg.go.dev/github.com/isocell/isocell/pkg/graph
// [partition]: https://pkg.go.dev/github.com/isocell/isocell/pkg/partition
// [config]: https://pkg.go.dev/github.com/isocell/isocell/pkg/config
// [cache]: https://pkg.go.dev/github.com/isocell/isocell/pkg/cache
// [observability]: https://pkg.go.dev/github.com/isocell/isocell/pkg/observability
// [errors]: https://pkg.go.dev/github.com/isocell/isocell/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/isocell/isocell/pkg/buildinfo
package pkg

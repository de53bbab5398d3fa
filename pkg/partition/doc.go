// Package partition splits a routing graph into cells with the inertial flow
// heuristic and exposes the result as a [Tree].
//
// # Algorithm
//
// Each node set larger than MaxCellNodes is divided in two:
//
//  1. If SeparateConnectedComponents is set and the induced subgraph is
//     disconnected, every component is partitioned on its own and the
//     components are joined under internal nodes with empty cut sets.
//  2. Nodes are projected onto four directions (lon, lat, lon+lat and
//     lon-lat). For each direction the lowest and highest SplitFraction of
//     nodes seed a super-source and a super-sink.
//  3. A maximum flow (Dinic) between the seeds yields a minimum cut. Nodes
//     still reachable from the source in the residual network form the
//     right child; the rest form the left child.
//  4. The direction with the smallest cut wins, ties broken by balance.
//     Cuts that leave a side below MinCellNodes are only used if no
//     direction produces a valid one, in which case the set is split at the
//     median of the best direction instead.
//
// Edges are treated as undirected. Every directed edge contributes its
// capacity in both directions of the flow network.
//
// # Termination
//
// A set of at most MaxCellNodes nodes becomes a leaf. The total number of
// max-flow phases is bounded by MaxSplittingIterations; once the budget is
// spent, pending sets become oversize leaves and a warning is logged. A set
// whose nodes all share one position cannot be projected and becomes a leaf
// too. Neither condition fails the partition.
//
// # Concurrency
//
// With MaxThreads > 1, sibling subtrees are split on separate goroutines.
// Each split owns its flow network; the iteration budget is an atomic
// counter; cell ids are assigned once the whole tree is built. Cancelling the
// context stops the partition before the next split with a CANCELLED error.
package partition

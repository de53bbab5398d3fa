package partition

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	isoerrors "github.com/isocell/isocell/pkg/errors"
	"github.com/isocell/isocell/pkg/graph"
	"github.com/isocell/isocell/pkg/observability"
)

// Graph is the routing graph read by the partitioner.
// *graph.Graph implements it.
type Graph interface {
	NodeCount() int
	EdgesOf(node int) []graph.Arc
	Coord(node int) (lat, lon float64)
}

var _ Graph = (*graph.Graph)(nil)

// direction projects a coordinate onto lat*x + lon*y.
type direction struct {
	name string
	lat  float64
	lon  float64
}

var directions = [...]direction{
	{name: "lon", lat: 0, lon: 1},
	{name: "lat", lat: 1, lon: 0},
	{name: "lon+lat", lat: 1, lon: 1},
	{name: "lon-lat", lat: -1, lon: 1},
}

var errBudgetExhausted = errors.New("splitting iteration budget exhausted")

type partitioner struct {
	g          Graph
	adj        *adjacency
	opts       Options
	log        *log.Logger
	hooks      observability.PartitionHooks
	group      *errgroup.Group
	iterations atomic.Int64
	locals     sync.Pool // *[]int32 sized NodeCount, all -1 when idle
}

// candidate is the outcome of one direction's min cut.
type candidate struct {
	dir   int
	cut   int64
	left  []int
	right []int
}

func (c *candidate) imbalance() int {
	d := len(c.left) - len(c.right)
	if d < 0 {
		return -d
	}
	return d
}

func (c *candidate) betterThan(o *candidate) bool {
	if c.cut != o.cut {
		return c.cut < o.cut
	}
	return c.imbalance() < o.imbalance()
}

// Partition builds the partition tree of g.
//
// The returned error is INVALID_CONFIG for invalid options and CANCELLED when
// ctx is done before the tree is complete. Budget exhaustion and degenerate
// node sets produce leaves, not errors.
func Partition(ctx context.Context, g Graph, opts Options) (*Tree, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	n := g.NodeCount()
	p := &partitioner{
		g:     g,
		adj:   newAdjacency(g),
		opts:  opts,
		log:   logger,
		hooks: observability.Partition(),
	}
	p.locals.New = func() any {
		l := make([]int32, n)
		for i := range l {
			l[i] = -1
		}
		return &l
	}

	start := time.Now()
	p.hooks.OnPartitionStart(ctx, n)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}

	var root *Node
	var err error
	if opts.MaxThreads > 1 {
		grp, gctx := errgroup.WithContext(ctx)
		grp.SetLimit(opts.MaxThreads - 1)
		p.group = grp
		root, err = p.build(gctx, all, false)
		if werr := grp.Wait(); err == nil {
			err = werr
		}
	} else {
		root, err = p.build(ctx, all, false)
	}
	if err != nil {
		p.hooks.OnPartitionComplete(ctx, 0, time.Since(start), err)
		return nil, err
	}

	t := newTree(uuid.New(), root, n)
	p.log.Info("partition complete",
		"nodes", n,
		"cells", t.CellCount(),
		"cut_edges", len(t.CutEdges()),
		"iterations", p.iterations.Load(),
		"duration", time.Since(start).Round(time.Millisecond))
	p.hooks.OnPartitionComplete(ctx, t.CellCount(), time.Since(start), nil)
	return t, nil
}

// build returns the subtree for nodes, which must be sorted. connected is
// true when nodes is known to induce a connected subgraph.
//
// With component separation enabled, a disconnected node set is split into
// its components before the size bound is checked, so every cell it yields
// is connected.
func (p *partitioner) build(ctx context.Context, nodes []int, connected bool) (*Node, error) {
	if p.opts.SeparateConnectedComponents && !connected && len(nodes) > 1 {
		local := p.acquire(nodes)
		comps := p.adj.components(nodes, *local)
		p.release(nodes, local)
		if len(comps) > 1 {
			p.log.Debug("separating components", "nodes", len(nodes), "components", len(comps))
			return p.groupComponents(ctx, nodes, comps)
		}
	}

	if len(nodes) <= p.opts.MaxCellNodes {
		reason := LeafWithinBounds
		if len(nodes) < p.opts.MinCellNodes {
			reason = LeafIrreducible
		}
		return p.leaf(ctx, nodes, reason), nil
	}

	if err := ctx.Err(); err != nil {
		return nil, isoerrors.Wrap(isoerrors.ErrCodeCancelled, err, "partition cancelled")
	}
	if p.iterations.Load() >= p.opts.MaxSplittingIterations {
		return p.budgetLeaf(ctx, nodes), nil
	}

	start := time.Now()
	c, err := p.split(ctx, nodes)
	if errors.Is(err, errBudgetExhausted) {
		return p.budgetLeaf(ctx, nodes), nil
	}
	if err != nil {
		return nil, err
	}
	if c == nil {
		p.log.Warn("all nodes share one position, emitting oversize cell", "nodes", len(nodes))
		return p.leaf(ctx, nodes, LeafDegenerate), nil
	}

	cut := p.cutEdges(c.left, c.right)
	p.log.Debug("split",
		"nodes", len(nodes),
		"direction", directions[c.dir].name,
		"cut", len(cut),
		"left", len(c.left),
		"right", len(c.right))
	p.hooks.OnSplit(ctx, len(nodes), len(cut), time.Since(start))

	n := &Node{Nodes: nodes, CutEdges: cut, CellID: -1}
	left, right := c.left, c.right
	err = p.fork(n,
		func() (*Node, error) { return p.build(ctx, left, false) },
		func() (*Node, error) { return p.build(ctx, right, false) })
	if err != nil {
		return nil, err
	}
	return n, nil
}

// groupComponents joins comps under a balanced binary tree of internal nodes
// with empty cut sets.
func (p *partitioner) groupComponents(ctx context.Context, nodes []int, comps [][]int) (*Node, error) {
	if len(comps) == 1 {
		return p.build(ctx, comps[0], true)
	}
	mid := len(comps) / 2
	lc, rc := comps[:mid], comps[mid:]
	n := &Node{Nodes: nodes, CellID: -1}
	err := p.fork(n,
		func() (*Node, error) { return p.groupComponents(ctx, union(lc), lc) },
		func() (*Node, error) { return p.groupComponents(ctx, union(rc), rc) })
	if err != nil {
		return nil, err
	}
	return n, nil
}

// fork builds both children of n. The right child is handed to the worker
// group when a slot is free and built inline otherwise.
func (p *partitioner) fork(n *Node, left, right func() (*Node, error)) error {
	rightTask := func() error {
		c, err := right()
		if err != nil {
			return err
		}
		n.Right = c
		return nil
	}
	spawned := p.group != nil && p.group.TryGo(rightTask)

	c, err := left()
	if err != nil {
		return err
	}
	n.Left = c
	if !spawned {
		return rightTask()
	}
	return nil
}

func (p *partitioner) leaf(ctx context.Context, nodes []int, reason LeafReason) *Node {
	p.hooks.OnLeaf(ctx, len(nodes), reason.String())
	return &Node{Nodes: nodes, Leaf: true, Reason: reason, CellID: -1}
}

func (p *partitioner) budgetLeaf(ctx context.Context, nodes []int) *Node {
	p.log.Warn("splitting budget exhausted, emitting oversize cell",
		"nodes", len(nodes), "budget", p.opts.MaxSplittingIterations)
	return p.leaf(ctx, nodes, LeafBudgetExhausted)
}

// split returns the chosen division of nodes, or nil if no direction can
// order them.
func (p *partitioner) split(ctx context.Context, nodes []int) (*candidate, error) {
	m := len(nodes)
	local := p.acquire(nodes)
	defer p.release(nodes, local)

	proj := make([]float64, m)
	var orders [len(directions)][]int
	spread := false
	for d, dir := range directions {
		for i, u := range nodes {
			lat, lon := p.g.Coord(u)
			proj[i] = dir.lat*lat + dir.lon*lon
		}
		order := make([]int, m)
		for i := range order {
			order[i] = i
		}
		slices.SortFunc(order, func(a, b int) int {
			if c := cmp.Compare(proj[a], proj[b]); c != 0 {
				return c
			}
			return cmp.Compare(a, b)
		})
		if proj[order[m-1]] > proj[order[0]] {
			spread = true
		}
		orders[d] = order
	}
	if !spread {
		return nil, nil
	}

	phase := func() error {
		if err := ctx.Err(); err != nil {
			return isoerrors.Wrap(isoerrors.ErrCodeCancelled, err, "partition cancelled")
		}
		if p.iterations.Add(1) > p.opts.MaxSplittingIterations {
			return errBudgetExhausted
		}
		return nil
	}

	k := p.opts.seedSize(m)
	var best, bestAny *candidate
	for d := range directions {
		c, err := p.minCut(nodes, *local, orders[d], k, phase)
		if err != nil {
			return nil, err
		}
		c.dir = d
		if bestAny == nil || c.betterThan(bestAny) {
			bestAny = c
		}
		valid := len(c.left) >= p.opts.MinCellNodes && len(c.right) >= p.opts.MinCellNodes
		if valid && (best == nil || c.betterThan(best)) {
			best = c
		}
	}
	if best != nil {
		return best, nil
	}

	p.log.Warn("no balanced cut, splitting at median",
		"nodes", m, "direction", directions[bestAny.dir].name, "cut", bestAny.cut)
	order := orders[bestAny.dir]
	half := m / 2
	fb := &candidate{dir: bestAny.dir}
	for _, li := range order[:half] {
		fb.right = append(fb.right, nodes[li])
	}
	for _, li := range order[half:] {
		fb.left = append(fb.left, nodes[li])
	}
	slices.Sort(fb.left)
	slices.Sort(fb.right)
	return fb, nil
}

// minCut solves one direction. order lists local indices by projection.
func (p *partitioner) minCut(nodes []int, local []int32, order []int, k int, phase func() error) (*candidate, error) {
	m := len(nodes)
	src, sink := m, m+1

	pairs := 2 * k
	for li, u := range nodes {
		lo, hi := p.adj.span(u)
		for i := lo; i < hi; i++ {
			if local[p.adj.nbr[i]] > int32(li) {
				pairs++
			}
		}
	}

	f := newNetwork(m+2, pairs)
	for li, u := range nodes {
		lo, hi := p.adj.span(u)
		for i := lo; i < hi; i++ {
			if lv := local[p.adj.nbr[i]]; lv > int32(li) {
				c := p.adj.cap[i]
				f.addPair(li, int(lv), c, c)
			}
		}
	}
	for _, li := range order[:k] {
		f.addPair(src, li, infiniteCapacity, 0)
	}
	for _, li := range order[m-k:] {
		f.addPair(li, sink, infiniteCapacity, 0)
	}

	flow, err := f.maxFlow(src, sink, phase)
	if err != nil {
		return nil, err
	}
	seen := f.reachable(src)
	c := &candidate{cut: flow}
	for li, u := range nodes {
		if seen[li] {
			c.right = append(c.right, u)
		} else {
			c.left = append(c.left, u)
		}
	}
	return c, nil
}

// cutEdges returns the sorted ids of edges joining left and right.
func (p *partitioner) cutEdges(left, right []int) []int {
	side := p.acquire(right)
	defer p.release(right, side)

	var cut []int
	for _, u := range left {
		lo, hi := p.adj.span(u)
		for i := lo; i < hi; i++ {
			if (*side)[p.adj.nbr[i]] >= 0 {
				cut = append(cut, int(p.adj.edge[i]))
			}
		}
	}
	slices.Sort(cut)
	return slices.Compact(cut)
}

// acquire returns a scratch map from global node id to index in nodes.
func (p *partitioner) acquire(nodes []int) *[]int32 {
	l := p.locals.Get().(*[]int32)
	for i, u := range nodes {
		(*l)[u] = int32(i)
	}
	return l
}

func (p *partitioner) release(nodes []int, l *[]int32) {
	for _, u := range nodes {
		(*l)[u] = -1
	}
	p.locals.Put(l)
}

// union merges sorted node lists into one sorted list.
func union(lists [][]int) []int {
	var n int
	for _, l := range lists {
		n += len(l)
	}
	out := make([]int, 0, n)
	for _, l := range lists {
		out = append(out, l...)
	}
	slices.Sort(out)
	return out
}

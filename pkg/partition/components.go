package partition

import "slices"

// adjacency is the undirected view of the input graph: every directed edge
// u->v appears in the lists of both u and v with its full capacity.
type adjacency struct {
	offsets []int
	nbr     []int32
	cap     []int64
	edge    []int32
}

func newAdjacency(g Graph) *adjacency {
	n := g.NodeCount()
	a := &adjacency{offsets: make([]int, n+1)}
	for u := 0; u < n; u++ {
		for _, arc := range g.EdgesOf(u) {
			if arc.To == u {
				continue
			}
			a.offsets[u+1]++
			a.offsets[arc.To+1]++
		}
	}
	for i := 0; i < n; i++ {
		a.offsets[i+1] += a.offsets[i]
	}
	m := a.offsets[n]
	a.nbr = make([]int32, m)
	a.cap = make([]int64, m)
	a.edge = make([]int32, m)
	pos := append([]int(nil), a.offsets[:n]...)
	put := func(u, v, c, e int) {
		i := pos[u]
		a.nbr[i], a.cap[i], a.edge[i] = int32(v), int64(c), int32(e)
		pos[u]++
	}
	for u := 0; u < n; u++ {
		for _, arc := range g.EdgesOf(u) {
			if arc.To == u {
				continue
			}
			put(u, arc.To, arc.Capacity, arc.Edge)
			put(arc.To, u, arc.Capacity, arc.Edge)
		}
	}
	return a
}

// span returns the index range of node u's neighbors.
func (a *adjacency) span(u int) (int, int) { return a.offsets[u], a.offsets[u+1] }

// components splits nodes, which must be sorted, into the connected components
// of the subgraph they induce. local maps a global node id to its position
// in nodes, or -1 for nodes outside the set. Components are returned sorted
// and ordered by their smallest node.
func (a *adjacency) components(nodes []int, local []int32) [][]int {
	seen := make([]bool, len(nodes))
	var comps [][]int
	var stack []int
	for start := range nodes {
		if seen[start] {
			continue
		}
		seen[start] = true
		comp := []int{nodes[start]}
		stack = append(stack[:0], nodes[start])
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			lo, hi := a.span(u)
			for i := lo; i < hi; i++ {
				li := local[a.nbr[i]]
				if li < 0 || seen[li] {
					continue
				}
				seen[li] = true
				v := int(a.nbr[i])
				comp = append(comp, v)
				stack = append(stack, v)
			}
		}
		slices.Sort(comp)
		comps = append(comps, comp)
	}
	return comps
}

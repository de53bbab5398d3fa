package partition

import "math"

// network is a residual flow network solved with Dinic's algorithm.
//
// Arcs are stored in pairs: arc a and arc a^1 are each other's reverse, so
// pushing d units along a is cap[a] -= d, cap[a^1] += d.
type network struct {
	head  []int32 // first arc leaving each vertex, -1 if none
	next  []int32
	to    []int32
	cap   []int64
	level []int32
	iter  []int32
	queue []int32
}

func newNetwork(vertices, arcPairs int) *network {
	f := &network{
		head:  make([]int32, vertices),
		next:  make([]int32, 0, 2*arcPairs),
		to:    make([]int32, 0, 2*arcPairs),
		cap:   make([]int64, 0, 2*arcPairs),
		level: make([]int32, vertices),
		iter:  make([]int32, vertices),
		queue: make([]int32, 0, vertices),
	}
	for i := range f.head {
		f.head[i] = -1
	}
	return f
}

// addPair adds arc u->v with capacity c and its reverse v->u with capacity rc.
func (f *network) addPair(u, v int, c, rc int64) {
	f.addArc(u, v, c)
	f.addArc(v, u, rc)
}

func (f *network) addArc(u, v int, c int64) {
	f.next = append(f.next, f.head[u])
	f.to = append(f.to, int32(v))
	f.cap = append(f.cap, c)
	f.head[u] = int32(len(f.to) - 1)
}

// maxFlow pushes flow from s to t until no augmenting path remains. phase is
// called before each BFS level-graph construction; a non-nil error stops the
// computation and is returned with the flow found so far.
func (f *network) maxFlow(s, t int, phase func() error) (int64, error) {
	var flow int64
	for {
		if err := phase(); err != nil {
			return flow, err
		}
		if !f.bfs(s, t) {
			return flow, nil
		}
		copy(f.iter, f.head)
		for {
			d := f.augment(s, t, math.MaxInt64)
			if d == 0 {
				break
			}
			flow += d
		}
	}
}

// bfs builds the level graph and reports whether t is reachable.
func (f *network) bfs(s, t int) bool {
	for i := range f.level {
		f.level[i] = -1
	}
	f.level[s] = 0
	q := append(f.queue[:0], int32(s))
	for i := 0; i < len(q); i++ {
		u := q[i]
		for a := f.head[u]; a != -1; a = f.next[a] {
			v := f.to[a]
			if f.cap[a] > 0 && f.level[v] < 0 {
				f.level[v] = f.level[u] + 1
				q = append(q, v)
			}
		}
	}
	f.queue = q
	return f.level[t] >= 0
}

// augment finds one blocking-flow path from u to t in the level graph.
func (f *network) augment(u, t int, limit int64) int64 {
	if u == t {
		return limit
	}
	for ; f.iter[u] != -1; f.iter[u] = f.next[f.iter[u]] {
		a := f.iter[u]
		v := int(f.to[a])
		if f.cap[a] <= 0 || f.level[v] != f.level[u]+1 {
			continue
		}
		if d := f.augment(v, t, min(limit, f.cap[a])); d > 0 {
			f.cap[a] -= d
			f.cap[a^1] += d
			return d
		}
	}
	return 0
}

// reachable marks the vertices reachable from s in the residual network.
func (f *network) reachable(s int) []bool {
	seen := make([]bool, len(f.head))
	seen[s] = true
	q := append(f.queue[:0], int32(s))
	for i := 0; i < len(q); i++ {
		u := q[i]
		for a := f.head[u]; a != -1; a = f.next[a] {
			v := f.to[a]
			if f.cap[a] > 0 && !seen[v] {
				seen[v] = true
				q = append(q, v)
			}
		}
	}
	f.queue = q
	return seen
}

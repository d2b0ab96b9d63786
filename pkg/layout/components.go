package layout

// unionFind is a disjoint-set forest with path halving and union by rank.
type unionFind struct {
	parent []int
	rank   []byte
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent, rank: make([]byte, n)}
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(x, y int) {
	rx, ry := uf.find(x), uf.find(y)
	if rx == ry {
		return
	}
	if uf.rank[rx] < uf.rank[ry] {
		rx, ry = ry, rx
	}
	uf.parent[ry] = rx
	if uf.rank[rx] == uf.rank[ry] {
		uf.rank[rx]++
	}
}

// connectedComponents groups the nodes of g. Components are ordered by their
// smallest member and members are ascending.
func connectedComponents(g Graph) [][]int {
	n := g.Len()
	uf := newUnionFind(n)
	for u := range n {
		for _, v := range g.Neighbors(u) {
			uf.union(u, v)
		}
	}

	slot := make(map[int]int)
	var comps [][]int
	for i := range n {
		root := uf.find(i)
		k, ok := slot[root]
		if !ok {
			k = len(comps)
			slot[root] = k
			comps = append(comps, nil)
		}
		comps[k] = append(comps[k], i)
	}
	return comps
}

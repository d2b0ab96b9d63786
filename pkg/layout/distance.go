package layout

import (
	"context"
	"math"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// ShortestPaths returns the all-pairs hop distances of g, treating every
// bond as an undirected edge of length 1. Unreachable pairs are +Inf.
//
// One breadth-first search runs per source, at most workers at a time.
// Source i writes only the cells (i, j) with j >= i, so no two searches
// touch the same cell.
func ShortestPaths(ctx context.Context, g Graph, workers int) (*mat.SymDense, error) {
	n := g.Len()
	if n == 0 {
		return nil, nil
	}
	dist := mat.NewSymDense(n, nil)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(workers, 1))
	for src := range n {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			hops := bfs(g, src)
			for j := src; j < n; j++ {
				d := math.Inf(1)
				if hops[j] >= 0 {
					d = float64(hops[j])
				}
				dist.SetSym(src, j, d)
			}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return dist, nil
}

// bfs returns hop counts from src, -1 for unreachable nodes.
func bfs(g Graph, src int) []int {
	hops := make([]int, g.Len())
	for i := range hops {
		hops[i] = -1
	}
	hops[src] = 0
	queue := []int{src}
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, v := range g.Neighbors(u) {
			if hops[v] < 0 {
				hops[v] = hops[u] + 1
				queue = append(queue, v)
			}
		}
	}
	return hops
}

package layout

import (
	"context"
	"math"
	"math/rand/v2"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r2"
)

// jitter is the radius of the random displacement applied to a node that
// coincides with another during majorization.
const jitter = 1e-6

// Stress evaluates sum over node pairs i<j of w_ij (||p_i - p_j|| - d_ij)^2
// with w_ij = 1/d_ij^2 for the given nodes. Pairs with infinite or zero
// target distance are skipped.
func Stress(pos []r2.Vec, nodes []int, dist mat.Symmetric) float64 {
	s := 0.0
	for a := 0; a < len(nodes); a++ {
		i := nodes[a]
		for b := a + 1; b < len(nodes); b++ {
			j := nodes[b]
			d := dist.At(i, j)
			if d == 0 || math.IsInf(d, 1) {
				continue
			}
			diff := r2.Norm(r2.Sub(pos[i], pos[j])) - d
			s += diff * diff / (d * d)
		}
	}
	return s
}

func forceDirected(ctx context.Context, g Graph, opts Options) (*Layout, error) {
	n := g.Len()
	l := &Layout{Mode: ForceDirected, Seed: opts.Seed, Positions: make([]r2.Vec, n)}
	if n == 0 {
		return l, nil
	}

	dist, err := ShortestPaths(ctx, g, opts.Workers)
	if err != nil {
		return nil, err
	}

	comps := connectedComponents(g)
	l.Components = make([]Component, len(comps))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(opts.Workers)
	for k, nodes := range comps {
		eg.Go(func() error {
			c, err := majorize(ctx, l.Positions, nodes, dist, opts, uint64(k))
			if err != nil {
				return err
			}
			l.Components[k] = c
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	if len(comps) > 1 {
		pack(l.Positions, comps)
	}
	return l, l.Warning()
}

// majorize runs Gauss-Seidel stress majorization over one component,
// writing only pos[i] for i in nodes. Each node update minimizes a
// quadratic majorant of the stress with every other node fixed, so the
// stress never increases between sweeps.
func majorize(ctx context.Context, pos []r2.Vec, nodes []int, dist mat.Symmetric, opts Options, stream uint64) (Component, error) {
	c := Component{Nodes: nodes}

	init := circle(len(nodes), unitChordRadius(len(nodes)))
	for a, i := range nodes {
		pos[i] = init[a]
	}
	if len(nodes) < 2 {
		c.Converged = true
		c.StressHistory = []float64{0}
		return c, nil
	}

	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^(stream+1)*0x9e3779b97f4a7c15))
	prev := Stress(pos, nodes, dist)
	c.StressHistory = append(c.StressHistory, prev)

	for c.Iterations < opts.MaxIterations {
		if err := ctx.Err(); err != nil {
			return c, err
		}
		if prev == 0 {
			c.Converged = true
			break
		}

		for _, i := range nodes {
			pos[i] = relax(pos, i, nodes, dist, rng)
		}
		c.Iterations++

		cur := Stress(pos, nodes, dist)
		c.StressHistory = append(c.StressHistory, cur)
		if (prev-cur)/prev < opts.Tolerance {
			c.Converged = true
			break
		}
		prev = cur
	}
	return c, nil
}

// relax returns the position of node i minimizing the majorant of stress
// with all other nodes held at their current positions. If i coincides with
// another node it is first nudged in a random direction.
func relax(pos []r2.Vec, i int, nodes []int, dist mat.Symmetric, rng *rand.Rand) r2.Vec {
	p := pos[i]
	for {
		next, ok := majorant(p, pos, i, nodes, dist)
		if ok {
			return next
		}
		theta := rng.Float64() * 2 * math.Pi
		p = r2.Add(p, r2.Vec{X: jitter * math.Cos(theta), Y: jitter * math.Sin(theta)})
	}
}

// majorant computes the weighted average of the ideal positions of node i
// as seen from each other node, taking i to be at p. It reports false if p
// coincides with another node.
func majorant(p r2.Vec, pos []r2.Vec, i int, nodes []int, dist mat.Symmetric) (r2.Vec, bool) {
	var sum r2.Vec
	wsum := 0.0
	for _, j := range nodes {
		if j == i {
			continue
		}
		d := dist.At(i, j)
		if d == 0 || math.IsInf(d, 1) {
			continue
		}
		delta := r2.Sub(p, pos[j])
		norm := r2.Norm(delta)
		if norm == 0 {
			return p, false
		}
		w := 1 / (d * d)
		sum = r2.Add(sum, r2.Scale(w, r2.Add(pos[j], r2.Scale(d/norm, delta))))
		wsum += w
	}
	if wsum == 0 {
		return p, true
	}
	return r2.Scale(1/wsum, sum), true
}

// pack translates each component so that components sit left to right in
// order, separated by componentGap and vertically centered on y = 0.
func pack(pos []r2.Vec, comps [][]int) {
	cursor := 0.0
	for _, nodes := range comps {
		b := bounds(pos, nodes)
		shift := r2.Vec{X: cursor - b.Min.X, Y: -(b.Min.Y + b.Max.Y) / 2}
		for _, i := range nodes {
			pos[i] = r2.Add(pos[i], shift)
		}
		cursor += b.Max.X - b.Min.X + componentGap
	}
}

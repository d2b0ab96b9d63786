package layout

import (
	"context"
	"errors"
	"math"
	"runtime"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
)

// ErrDisconnected accompanies a complete force-directed layout of a graph
// with more than one connected component. It is a warning, not a failure.
var ErrDisconnected = errors.New("graph is disconnected")

// Mode selects the layout strategy.
type Mode string

const (
	// Circular places nodes evenly on a unit circle in index order.
	Circular Mode = "circular"
	// ForceDirected minimizes weighted stress between Euclidean and
	// shortest-path distances.
	ForceDirected Mode = "force_directed"
)

// Default option values.
const (
	DefaultMode          = ForceDirected
	DefaultMaxIterations = 200
	DefaultTolerance     = 1e-4
	DefaultSeed          = uint64(42)
)

// componentGap separates packed components, in graph distance units.
const componentGap = 2.0

// ParseMode converts a user-facing mode name into a [Mode].
// Hyphenated and underscored spellings are accepted.
func ParseMode(s string) (Mode, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "circular":
		return Circular, nil
	case "force_directed", "":
		return ForceDirected, nil
	default:
		return "", rnaerrors.New(rnaerrors.ErrCodeInvalidLayoutMode,
			"unknown layout mode %q (must be circular or force_directed)", s)
	}
}

// Graph is the view of a structure the layout engine needs: nodes are the
// integers [0, Len()) and Neighbors lists the nodes bonded to i. Both bond
// kinds count as edges of weight 1.
type Graph interface {
	Len() int
	Neighbors(i int) []int
}

// Options configures [Compute]. Zero values select defaults.
type Options struct {
	Mode          Mode
	MaxIterations int
	Tolerance     float64
	Seed          uint64

	// Workers bounds parallelism of the shortest-path and per-component
	// stages. Zero uses GOMAXPROCS.
	Workers int
}

func (o Options) withDefaults() (Options, error) {
	if o.Mode == "" {
		o.Mode = DefaultMode
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = DefaultMaxIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.Seed == 0 {
		o.Seed = DefaultSeed
	}
	if o.Workers <= 0 {
		o.Workers = runtime.GOMAXPROCS(0)
	}

	if o.Mode != Circular && o.Mode != ForceDirected {
		return o, rnaerrors.New(rnaerrors.ErrCodeInvalidLayoutMode, "unknown layout mode %q", o.Mode)
	}
	if o.MaxIterations < 0 {
		return o, rnaerrors.New(rnaerrors.ErrCodeInvalidLayout, "max iterations must be positive, got %d", o.MaxIterations)
	}
	if o.Tolerance < 0 || math.IsNaN(o.Tolerance) {
		return o, rnaerrors.New(rnaerrors.ErrCodeInvalidLayout, "tolerance must be positive, got %g", o.Tolerance)
	}
	return o, nil
}

// Component records how one connected component was laid out.
type Component struct {
	// Nodes are the member indices in ascending order.
	Nodes []int
	// Iterations is the number of majorization sweeps performed.
	Iterations int
	// Converged is false when the iteration cap stopped the descent.
	Converged bool
	// StressHistory holds the stress of the initial configuration followed
	// by the stress after each sweep.
	StressHistory []float64
}

// Stress returns the final stress of the component.
func (c Component) Stress() float64 {
	if len(c.StressHistory) == 0 {
		return 0
	}
	return c.StressHistory[len(c.StressHistory)-1]
}

// Layout maps each node index to a position. Units are graph distance:
// bonded nodes sit roughly one unit apart in force-directed mode.
type Layout struct {
	Mode      Mode
	Seed      uint64
	Positions []r2.Vec

	// Components is set in force-directed mode, one entry per connected
	// component ordered by smallest member index.
	Components []Component
}

// Len returns the number of positioned nodes.
func (l *Layout) Len() int { return len(l.Positions) }

// Position returns the coordinate of node i.
func (l *Layout) Position(i int) r2.Vec { return l.Positions[i] }

// Bounds returns the axis-aligned bounding box of all positions.
// An empty layout yields the zero box.
func (l *Layout) Bounds() r2.Box {
	return bounds(l.Positions, nil)
}

// Iterations returns the largest sweep count over all components.
func (l *Layout) Iterations() int {
	it := 0
	for _, c := range l.Components {
		it = max(it, c.Iterations)
	}
	return it
}

// Stress returns the summed final stress over all components.
func (l *Layout) Stress() float64 {
	s := 0.0
	for _, c := range l.Components {
		s += c.Stress()
	}
	return s
}

// Warning returns the non-fatal disconnected-graph error for a
// force-directed layout of several components, and nil otherwise.
func (l *Layout) Warning() error {
	if len(l.Components) < 2 {
		return nil
	}
	return rnaerrors.Wrap(rnaerrors.ErrCodeDisconnectedGraph, ErrDisconnected,
		"structure graph has %d connected components; each was laid out independently", len(l.Components))
}

// Compute lays out g. It is a shorthand for [ComputeContext] with a
// background context.
func Compute(g Graph, opts Options) (*Layout, error) {
	return ComputeContext(context.Background(), g, opts)
}

// ComputeContext lays out g with the strategy selected by opts.Mode.
//
// In force-directed mode a graph with several connected components is laid
// out per component and packed left to right; the complete layout is then
// returned together with an error for which [rnaerrors.IsWarning] and
// errors.Is(err, [ErrDisconnected]) hold. Any other error means no layout.
//
// Results are deterministic for a fixed seed regardless of Workers.
func ComputeContext(ctx context.Context, g Graph, opts Options) (*Layout, error) {
	opts, err := opts.withDefaults()
	if err != nil {
		return nil, err
	}

	if opts.Mode == Circular {
		return &Layout{Mode: Circular, Seed: opts.Seed, Positions: circle(g.Len(), 1.0)}, nil
	}
	return forceDirected(ctx, g, opts)
}

func bounds(pos []r2.Vec, idx []int) r2.Box {
	if len(pos) == 0 {
		return r2.Box{}
	}
	first := 0
	if idx != nil {
		if len(idx) == 0 {
			return r2.Box{}
		}
		first = idx[0]
	}
	b := r2.Box{Min: pos[first], Max: pos[first]}
	grow := func(p r2.Vec) {
		b.Min.X = min(b.Min.X, p.X)
		b.Min.Y = min(b.Min.Y, p.Y)
		b.Max.X = max(b.Max.X, p.X)
		b.Max.Y = max(b.Max.Y, p.Y)
	}
	if idx == nil {
		for _, p := range pos {
			grow(p)
		}
	} else {
		for _, i := range idx {
			grow(pos[i])
		}
	}
	return b
}

package render

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/structure"
	"github.com/matzehuels/rnaviz/pkg/style"
)

// Default viewport dimensions, in pixels.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
	DefaultMargin = 40
)

const (
	radiusFactor = 0.3
	minRadius    = 3.0
	maxRadius    = 20.0
	fontFactor   = 0.9
)

// Viewport is the drawing area a scene is fitted into.
type Viewport struct {
	Width  float64 `json:"width" toml:"width"`
	Height float64 `json:"height" toml:"height"`
	Margin float64 `json:"margin" toml:"margin"`

	// NodeRadius fixes the marker radius. Zero derives it from the mean
	// on-screen backbone length.
	NodeRadius float64 `json:"node_radius,omitempty" toml:"node_radius"`
}

// DefaultViewport returns an 800x600 viewport with a 40 pixel margin.
func DefaultViewport() Viewport {
	return Viewport{Width: DefaultWidth, Height: DefaultHeight, Margin: DefaultMargin}
}

// Validate reports whether the viewport leaves room to draw.
func (v Viewport) Validate() error {
	if v.Width <= 0 || v.Height <= 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "viewport must have positive size, got %gx%g", v.Width, v.Height)
	}
	if v.Margin < 0 || 2*v.Margin >= min(v.Width, v.Height) {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "viewport margin %g does not fit %gx%g", v.Margin, v.Width, v.Height)
	}
	if v.NodeRadius < 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "node radius must not be negative, got %g", v.NodeRadius)
	}
	return nil
}

// Marker is a nucleotide drawn as a labeled disc.
type Marker struct {
	Index      int     `json:"index"`
	Base       string  `json:"base"`
	Label      string  `json:"label"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Radius     float64 `json:"radius"`
	Fill       string  `json:"fill"`
	LabelColor string  `json:"label_color"`
	FontSize   float64 `json:"font_size"`
}

// Segment is a bond drawn as a straight line between marker centers.
type Segment struct {
	I      int                `json:"i"`
	J      int                `json:"j"`
	Kind   structure.BondKind `json:"kind"`
	X1     float64            `json:"x1"`
	Y1     float64            `json:"y1"`
	X2     float64            `json:"x2"`
	Y2     float64            `json:"y2"`
	Stroke string             `json:"stroke"`
	Width  float64            `json:"width"`
}

// Scene is a format-independent description of a rendered structure in
// screen coordinates: origin top-left, y pointing down.
type Scene struct {
	Width    float64   `json:"width"`
	Height   float64   `json:"height"`
	Sequence string    `json:"sequence"`
	Markers  []Marker  `json:"markers"`
	Segments []Segment `json:"segments"`
}

// BuildScene fits layout l of structure g into vp and applies the policy.
// Segments list backbone bonds before pairing bonds so that pairings are
// painted on top. Neither g nor l is modified.
func BuildScene(g *structure.Structure, l *layout.Layout, policy style.Policy, vp Viewport) (*Scene, error) {
	if err := vp.Validate(); err != nil {
		return nil, err
	}
	if l == nil || l.Len() != g.Len() {
		got := 0
		if l != nil {
			got = l.Len()
		}
		return nil, rnaerrors.New(rnaerrors.ErrCodeInvalidLayout,
			"layout has %d positions for %d nucleotides", got, g.Len())
	}
	for i, p := range l.Positions {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return nil, rnaerrors.New(rnaerrors.ErrCodeInvalidLayout, "position %d is not finite: %v", i, p)
		}
	}

	project := fit(l.Bounds(), vp)
	pts := make([]r2.Vec, l.Len())
	for i, p := range l.Positions {
		pts[i] = project(p)
	}

	bonds := g.Bonds()
	radius := vp.NodeRadius
	if radius == 0 {
		radius = autoRadius(pts, bonds)
	}

	s := &Scene{
		Width:    vp.Width,
		Height:   vp.Height,
		Sequence: g.Sequence(),
		Markers:  make([]Marker, 0, g.Len()),
		Segments: make([]Segment, 0, len(bonds)),
	}
	for _, n := range g.Nucleotides() {
		fill := policy.NodeColor(n.Base)
		s.Markers = append(s.Markers, Marker{
			Index:      n.Index,
			Base:       n.Base.String(),
			Label:      n.Label(),
			X:          pts[n.Index].X,
			Y:          pts[n.Index].Y,
			Radius:     radius,
			Fill:       fill,
			LabelColor: policy.LabelColorFor(fill),
			FontSize:   radius * fontFactor,
		})
	}
	for _, b := range bonds {
		st := policy.BondStroke(b.Kind)
		s.Segments = append(s.Segments, Segment{
			I: b.I, J: b.J, Kind: b.Kind,
			X1: pts[b.I].X, Y1: pts[b.I].Y,
			X2: pts[b.J].X, Y2: pts[b.J].Y,
			Stroke: st.Color,
			Width:  st.Width,
		})
	}
	return s, nil
}

// fit returns the projection of layout coordinates into the viewport: a
// uniform scale centered in the drawable area with the y axis flipped.
func fit(b r2.Box, vp Viewport) func(r2.Vec) r2.Vec {
	aw := vp.Width - 2*vp.Margin
	ah := vp.Height - 2*vp.Margin
	w := b.Max.X - b.Min.X
	h := b.Max.Y - b.Min.Y

	scale := math.Inf(1)
	if w > 0 {
		scale = aw / w
	}
	if h > 0 {
		scale = min(scale, ah/h)
	}
	if math.IsInf(scale, 1) {
		scale = 1
	}

	ox := vp.Margin + (aw-w*scale)/2
	oy := vp.Margin + (ah-h*scale)/2
	return func(p r2.Vec) r2.Vec {
		return r2.Vec{
			X: ox + (p.X-b.Min.X)*scale,
			Y: oy + (b.Max.Y-p.Y)*scale,
		}
	}
}

func autoRadius(pts []r2.Vec, bonds []structure.Bond) float64 {
	sum, n := 0.0, 0
	for _, b := range bonds {
		if b.Kind != structure.Backbone {
			continue
		}
		sum += r2.Norm(r2.Sub(pts[b.I], pts[b.J]))
		n++
	}
	if n == 0 {
		return maxRadius
	}
	return max(minRadius, min(maxRadius, radiusFactor*sum/float64(n)))
}

package sink

import (
	"encoding/json"

	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	structure *structure.Structure
	layout    *layout.Layout
}

// WithJSONStructure adds the dot-bracket notation and pair list.
func WithJSONStructure(s *structure.Structure) JSONOption {
	return func(r *jsonRenderer) { r.structure = s }
}

// WithJSONLayout adds layout diagnostics (mode, seed, iterations, stress)
// and the raw layout coordinates.
func WithJSONLayout(l *layout.Layout) JSONOption {
	return func(r *jsonRenderer) { r.layout = l }
}

type jsonOutput struct {
	Width      float64          `json:"width"`
	Height     float64          `json:"height"`
	Sequence   string           `json:"sequence"`
	DotBracket string           `json:"dot_bracket,omitempty"`
	Pairs      []int            `json:"pairs,omitempty"`
	Markers    []render.Marker  `json:"markers"`
	Segments   []render.Segment `json:"segments"`
	Layout     *LayoutInfo      `json:"layout,omitempty"`
}

// LayoutInfo is the serialized form of a layout and its diagnostics.
type LayoutInfo struct {
	Mode       layout.Mode  `json:"mode"`
	Seed       uint64       `json:"seed"`
	Iterations int          `json:"iterations"`
	Stress     float64      `json:"stress"`
	Components int          `json:"components"`
	Positions  [][2]float64 `json:"positions"`
	Labels     []string     `json:"labels,omitempty"`
}

// NewLayoutInfo summarizes l. If s is non-nil, node labels are included in
// position order.
func NewLayoutInfo(s *structure.Structure, l *layout.Layout) *LayoutInfo {
	info := &LayoutInfo{
		Mode:       l.Mode,
		Seed:       l.Seed,
		Iterations: l.Iterations(),
		Stress:     l.Stress(),
		Components: max(1, len(l.Components)),
		Positions:  make([][2]float64, l.Len()),
	}
	if l.Len() == 0 {
		info.Components = 0
	}
	for i, p := range l.Positions {
		info.Positions[i] = [2]float64{p.X, p.Y}
	}
	if s != nil {
		for _, n := range s.Nucleotides() {
			info.Labels = append(info.Labels, n.Label())
		}
	}
	return info
}

// RenderJSON serializes the scene for external drawing collaborators.
func RenderJSON(s *render.Scene, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}

	out := jsonOutput{
		Width:    s.Width,
		Height:   s.Height,
		Sequence: s.Sequence,
		Markers:  s.Markers,
		Segments: s.Segments,
	}
	if r.structure != nil {
		out.DotBracket = r.structure.DotBracket()
		for _, b := range r.structure.Pairings() {
			out.Pairs = append(out.Pairs, b.I, b.J)
		}
	}
	if r.layout != nil {
		out.Layout = NewLayoutInfo(r.structure, r.layout)
	}
	return json.MarshalIndent(out, "", "  ")
}

// RenderLayoutJSON serializes only the layout of s.
func RenderLayoutJSON(s *structure.Structure, l *layout.Layout) ([]byte, error) {
	return json.MarshalIndent(NewLayoutInfo(s, l), "", "  ")
}

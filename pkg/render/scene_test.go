package render

import (
	"math"
	"reflect"
	"testing"

	"gonum.org/v1/gonum/spatial/r2"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/structure"
	"github.com/matzehuels/rnaviz/pkg/style"
)

func augc(t *testing.T) (*structure.Structure, *layout.Layout) {
	t.Helper()
	s, err := structure.New("AUGC", []int{0, 3})
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(s, layout.Options{Mode: layout.Circular})
	if err != nil {
		t.Fatal(err)
	}
	return s, l
}

func TestBuildScene(t *testing.T) {
	s, l := augc(t)
	scene, err := BuildScene(s, l, style.Default(), DefaultViewport())
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	if len(scene.Markers) != 4 {
		t.Fatalf("markers = %d, want 4", len(scene.Markers))
	}
	wantLabels := []string{"A0", "U1", "G2", "C3"}
	wantFill := []string{"lightblue", "red", "lightgreen", "yellow"}
	for i, m := range scene.Markers {
		if m.Label != wantLabels[i] {
			t.Errorf("marker %d label = %q, want %q", i, m.Label, wantLabels[i])
		}
		if m.Fill != wantFill[i] {
			t.Errorf("marker %d fill = %q, want %q", i, m.Fill, wantFill[i])
		}
		if m.Radius <= 0 || m.FontSize <= 0 {
			t.Errorf("marker %d has radius %g font %g", i, m.Radius, m.FontSize)
		}
	}

	if len(scene.Segments) != 4 {
		t.Fatalf("segments = %d, want 3 backbone + 1 pairing", len(scene.Segments))
	}
	for i, seg := range scene.Segments[:3] {
		if seg.Kind != structure.Backbone || seg.Stroke != "black" || seg.Width != 1.0 {
			t.Errorf("segment %d = %+v, want black backbone of width 1", i, seg)
		}
	}
	last := scene.Segments[3]
	if last.Kind != structure.Pairing || last.I != 0 || last.J != 3 || last.Stroke != "red" || last.Width != 1.2 {
		t.Errorf("pairing segment = %+v", last)
	}
	if last.X1 != scene.Markers[0].X || last.Y2 != scene.Markers[3].Y {
		t.Error("segment endpoints do not match marker centers")
	}
}

func TestBuildSceneDuplicatePairings(t *testing.T) {
	s, err := structure.New("AUGC", []int{0, 3, 0, 3})
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(s, layout.Options{Mode: layout.Circular})
	if err != nil {
		t.Fatal(err)
	}
	scene, err := BuildScene(s, l, style.Default(), DefaultViewport())
	if err != nil {
		t.Fatalf("BuildScene: %v", err)
	}

	var pairings []Segment
	for _, seg := range scene.Segments {
		if seg.Kind == structure.Pairing {
			pairings = append(pairings, seg)
		}
	}
	if len(pairings) != 2 {
		t.Fatalf("pairing segments = %d, want 2", len(pairings))
	}
	for i, seg := range pairings {
		if seg.I != 0 || seg.J != 3 {
			t.Errorf("pairing %d joins %d-%d, want 0-3", i, seg.I, seg.J)
		}
	}
	if len(scene.Segments) != 5 {
		t.Errorf("segments = %d, want 3 backbone + 2 pairing", len(scene.Segments))
	}
}

func TestBuildSceneFitsViewport(t *testing.T) {
	s, l := augc(t)
	vp := Viewport{Width: 400, Height: 200, Margin: 20}
	scene, err := BuildScene(s, l, style.Default(), vp)
	if err != nil {
		t.Fatal(err)
	}
	for _, m := range scene.Markers {
		if m.X < vp.Margin-1e-9 || m.X > vp.Width-vp.Margin+1e-9 ||
			m.Y < vp.Margin-1e-9 || m.Y > vp.Height-vp.Margin+1e-9 {
			t.Errorf("marker %s at (%g, %g) outside drawable area", m.Label, m.X, m.Y)
		}
	}

	// Unit circle into 160px of height: radius 80, centered at (200, 100).
	a, u := scene.Markers[0], scene.Markers[1]
	if math.Abs(a.X-280) > 1e-9 || math.Abs(a.Y-100) > 1e-9 {
		t.Errorf("A0 at (%g, %g), want (280, 100)", a.X, a.Y)
	}
	// U1 is at +y in layout space, so it appears above the center.
	if math.Abs(u.X-200) > 1e-9 || math.Abs(u.Y-20) > 1e-9 {
		t.Errorf("U1 at (%g, %g), want (200, 20)", u.X, u.Y)
	}
}

func TestBuildSceneDoesNotMutate(t *testing.T) {
	s, l := augc(t)
	before := append([]r2.Vec(nil), l.Positions...)
	bondsBefore := s.Bonds()
	if _, err := BuildScene(s, l, style.Default(), DefaultViewport()); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, l.Positions) {
		t.Error("layout positions changed")
	}
	if !reflect.DeepEqual(bondsBefore, s.Bonds()) {
		t.Error("structure bonds changed")
	}
}

func TestBuildSceneSingleNode(t *testing.T) {
	s, err := structure.New("G", nil)
	if err != nil {
		t.Fatal(err)
	}
	l, err := layout.Compute(s, layout.Options{})
	if err != nil {
		t.Fatal(err)
	}
	scene, err := BuildScene(s, l, style.Default(), DefaultViewport())
	if err != nil {
		t.Fatal(err)
	}
	m := scene.Markers[0]
	if m.X != DefaultWidth/2 || m.Y != DefaultHeight/2 {
		t.Errorf("single marker at (%g, %g), want viewport center", m.X, m.Y)
	}
	if len(scene.Segments) != 0 {
		t.Errorf("segments = %d, want 0", len(scene.Segments))
	}
}

func TestBuildSceneErrors(t *testing.T) {
	s, l := augc(t)
	short := &layout.Layout{Positions: l.Positions[:2]}
	nan := &layout.Layout{Positions: []r2.Vec{{}, {X: math.NaN()}, {}, {}}}

	tests := []struct {
		name string
		l    *layout.Layout
		vp   Viewport
		code rnaerrors.Code
	}{
		{"nil layout", nil, DefaultViewport(), rnaerrors.ErrCodeInvalidLayout},
		{"size mismatch", short, DefaultViewport(), rnaerrors.ErrCodeInvalidLayout},
		{"non-finite position", nan, DefaultViewport(), rnaerrors.ErrCodeInvalidLayout},
		{"zero viewport", l, Viewport{}, rnaerrors.ErrCodeInvalidConfig},
		{"margin too large", l, Viewport{Width: 100, Height: 100, Margin: 50}, rnaerrors.ErrCodeInvalidConfig},
		{"negative radius", l, Viewport{Width: 100, Height: 100, NodeRadius: -1}, rnaerrors.ErrCodeInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildScene(s, tt.l, style.Default(), tt.vp)
			if code := rnaerrors.GetCode(err); code != tt.code {
				t.Errorf("code = %q, want %q (err: %v)", code, tt.code, err)
			}
		})
	}
}

func TestOverlaps(t *testing.T) {
	scene := &Scene{Markers: []Marker{
		{X: 0, Y: 0, Radius: 5},
		{X: 8, Y: 0, Radius: 5},
		{X: 100, Y: 100, Radius: 5},
		{X: 0, Y: 9, Radius: 5},
		{X: 7, Y: 7, Radius: 4}, // bounding squares touch marker 0 but discs do not
	}}
	got := scene.Overlaps()
	want := []Overlap{{I: 0, J: 1}, {I: 0, J: 3}, {I: 1, J: 4}, {I: 3, J: 4}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Overlaps() = %v, want %v", got, want)
	}
}

func TestOverlapsNone(t *testing.T) {
	s, l := augc(t)
	scene, err := BuildScene(s, l, style.Default(), DefaultViewport())
	if err != nil {
		t.Fatal(err)
	}
	if got := scene.Overlaps(); len(got) != 0 {
		t.Errorf("Overlaps() = %v, want none", got)
	}
}

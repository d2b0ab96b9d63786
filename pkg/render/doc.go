// Package render turns a laid-out structure into a drawable scene.
//
// # Overview
//
// [BuildScene] combines a [structure.Structure], a [layout.Layout] and a
// [style.Policy] into a [Scene]: one [Marker] per nucleotide (disc, fill,
// label) and one [Segment] per bond (line, stroke, width). Layout
// coordinates are scaled uniformly into a [Viewport], centered, and flipped
// so that y grows downward as on screen.
//
// The scene is format independent. Concrete outputs live in the [sink]
// subpackage:
//
//	scene, err := render.BuildScene(s, l, style.Default(), render.DefaultViewport())
//	svg := sink.RenderSVG(scene)
//	png, err := sink.RenderPNG(scene)
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert any SVG using the external rsvg-convert tool
// (from librsvg). A missing tool is reported as RENDER_TARGET_UNAVAILABLE.
//
// # Diagnostics
//
// [Scene.Overlaps] lists marker pairs whose discs intersect, which usually
// means the viewport is too small for the sequence length.
//
// [sink]: github.com/matzehuels/rnaviz/pkg/render/sink
package render

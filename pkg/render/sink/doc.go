// Package sink provides output format renderers for scenes built by
// [render.BuildScene].
//
// # Supported Formats
//
//   - SVG: Scalable vector graphics ([RenderSVG])
//   - PNG: Raster image drawn in-process with gg ([RenderPNG])
//   - PDF: Print-ready output (SVG converted by rsvg-convert)
//   - DOT: Graphviz source with pinned positions ([ToDOT]), renderable
//     in-process with [RenderGraphvizSVG]
//   - JSON: Scene description for external drawing tools ([RenderJSON])
//
// # Usage
//
//	svg := sink.RenderSVG(scene, sink.WithLegend(), sink.WithBackground("white"))
//	png, err := sink.RenderPNG(scene, sink.WithScale(2))
//	err = sink.WriteFile("hairpin.svg", svg)
//
// SVG and PNG output need no external tools. PDF requires librsvg:
//   - macOS: brew install librsvg
//   - Linux: apt install librsvg2-bin
//
// [render.BuildScene]: github.com/matzehuels/rnaviz/pkg/render.BuildScene
package sink

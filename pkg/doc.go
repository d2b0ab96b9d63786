// Package pkg provides the core libraries for rnaviz RNA structure drawings.
//
// # Overview
//
// rnaviz turns an RNA sequence and a list of base-pairing indices into a
// labeled graph and draws it. The pkg directory is organized into three
// areas:
//
//  1. Domain logic: [structure], [layout], [style], [render]
//  2. Orchestration: [pipeline] (parse → layout → scene → render)
//  3. Infrastructure: [cache], [config], [errors], [observability], [api]
//
// # Architecture
//
// The typical data flow through rnaviz:
//
//	sequence + pairs
//	       ↓
//	  [structure] package (nucleotides, backbone and pairing bonds)
//	       ↓
//	  [layout] package (circular or stress-majorization coordinates)
//	       ↓
//	  [render] package (viewport fitting, styled scene)
//	       ↓
//	  [render/sink] package (SVG, PNG, PDF, JSON, DOT)
//
// # Quick Start
//
//	import (
//	    "github.com/matzehuels/rnaviz/pkg/layout"
//	    "github.com/matzehuels/rnaviz/pkg/render"
//	    "github.com/matzehuels/rnaviz/pkg/render/sink"
//	    "github.com/matzehuels/rnaviz/pkg/structure"
//	    "github.com/matzehuels/rnaviz/pkg/style"
//	)
//
//	// 1. Build the structure graph
//	s, _ := structure.New("GGGAAAUCC", []int{0, 8, 1, 7, 2, 6})
//
//	// 2. Compute layout
//	l, _ := layout.Compute(s, layout.Options{Mode: layout.ForceDirected})
//
//	// 3. Fit and style the scene
//	scene, _ := render.BuildScene(s, l, style.Default(), render.DefaultViewport())
//
//	// 4. Render to SVG
//	svg := sink.RenderSVG(scene)
//
// Most callers use [pipeline.Runner] instead, which validates options,
// applies defaults and caches layouts and artifacts.
//
// # Main Packages
//
// [structure] - The structure graph: one node per nucleotide, backbone bonds
// between consecutive nucleotides and pairing bonds between the literal
// indices given. Construction rejects invalid bases, odd-length or
// out-of-range pair lists and self-pairings.
//
// [layout] - Node coordinates. Circular mode spaces nodes evenly on the unit
// circle; force_directed mode minimizes stress against shortest-path
// distances, laying out disconnected components separately.
//
// [render] and [render/sink] - Scene construction and output formats.
//
// [cache] - Layout and artifact caching with file, Redis and MongoDB
// backends.
//
// [api] - The HTTP API served by "rnaviz serve".
package pkg

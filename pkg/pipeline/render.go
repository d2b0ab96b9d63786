package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/render/sink"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// BuildScene fits l into the configured viewport and applies the style policy.
func BuildScene(s *structure.Structure, l *layout.Layout, opts Options) (*render.Scene, error) {
	opts.SetRenderDefaults()
	return render.BuildScene(s, l, *opts.Policy, opts.Viewport())
}

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, scene *render.Scene, s *structure.Structure, l *layout.Layout, opts Options) (map[string][]byte, error) {
	r := &renderer{ctx: ctx, scene: scene, structure: s, layout: l, opts: opts}
	artifacts := make(map[string][]byte, len(opts.Formats))
	for _, format := range opts.Formats {
		data, err := r.render(format)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

type renderer struct {
	ctx       context.Context
	scene     *render.Scene
	structure *structure.Structure
	layout    *layout.Layout
	opts      Options

	graphvizSVG []byte
}

func (r *renderer) render(format string) ([]byte, error) {
	graphviz := r.opts.Engine == EngineGraphviz

	switch format {
	case FormatSVG:
		if graphviz {
			return r.viaGraphviz()
		}
		return sink.RenderSVG(r.scene, r.svgOptions()...), nil
	case FormatPNG:
		if graphviz {
			svg, err := r.viaGraphviz()
			if err != nil {
				return nil, err
			}
			return render.ToPNG(svg, r.opts.Scale)
		}
		pngOpts := []sink.PNGOption{sink.WithScale(r.opts.Scale)}
		if r.opts.Background != "" {
			pngOpts = append(pngOpts, sink.WithPNGBackground(r.opts.Background))
		}
		return sink.RenderPNG(r.scene, pngOpts...)
	case FormatPDF:
		if graphviz {
			svg, err := r.viaGraphviz()
			if err != nil {
				return nil, err
			}
			return render.ToPDF(svg)
		}
		return sink.RenderPDF(r.scene, sink.WithPDFSVGOptions(r.svgOptions()...))
	case FormatJSON:
		return sink.RenderJSON(r.scene, sink.WithJSONStructure(r.structure), sink.WithJSONLayout(r.layout))
	case FormatDOT:
		return []byte(sink.ToDOT(r.scene)), nil
	default:
		return nil, ValidateFormat(format)
	}
}

func (r *renderer) viaGraphviz() ([]byte, error) {
	if r.graphvizSVG != nil {
		return r.graphvizSVG, nil
	}
	svg, err := sink.RenderGraphvizSVG(r.ctx, sink.ToDOT(r.scene))
	if err != nil {
		return nil, err
	}
	r.graphvizSVG = svg
	return svg, nil
}

func (r *renderer) svgOptions() []sink.SVGOption {
	var opts []sink.SVGOption
	if r.opts.Background != "" {
		opts = append(opts, sink.WithBackground(r.opts.Background))
	}
	if r.opts.Title != "" {
		opts = append(opts, sink.WithTitle(r.opts.Title))
	}
	if r.opts.Legend {
		opts = append(opts, sink.WithLegend())
	}
	return opts
}

package sink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/style"
)

// pointsPerInch converts scene pixels to Graphviz inches.
const pointsPerInch = 72.0

// ToDOT converts a scene to an undirected Graphviz graph. Every node is
// pinned (pos="x,y!") at its scene position, so neato reproduces the layout
// instead of computing its own. Graphviz's y axis points up, so scene
// coordinates are flipped.
func ToDOT(s *render.Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph rna {\n")
	buf.WriteString("  graph [bgcolor=\"transparent\", splines=false, outputorder=edgesfirst];\n")
	buf.WriteString("  node [shape=circle, style=filled, fixedsize=true, fontname=\"Helvetica\", penwidth=1];\n")
	buf.WriteString("\n")

	for _, m := range s.Markers {
		fmt.Fprintf(&buf, "  %q [label=%q, pos=\"%.4f,%.4f!\", width=%.4f, fillcolor=%q, fontcolor=%q, fontsize=%.1f];\n",
			m.Label, m.Label,
			m.X/pointsPerInch, (s.Height-m.Y)/pointsPerInch,
			2*m.Radius/pointsPerInch,
			style.Hex(m.Fill), style.Hex(m.LabelColor), labelSize(m))
	}

	buf.WriteString("\n")
	for _, seg := range s.Segments {
		fmt.Fprintf(&buf, "  %q -- %q [class=%q, color=%q, penwidth=%.2f];\n",
			s.Markers[seg.I].Label, s.Markers[seg.J].Label, seg.Kind.String(), style.Hex(seg.Stroke), seg.Width)
	}

	buf.WriteString("}\n")
	return buf.String()
}

// RenderGraphvizSVG renders a DOT graph to SVG in-process using the neato
// engine, which honours pinned node positions.
func RenderGraphvizSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> header (which sizes in points
// and carries a DOCTYPE-dependent namespace set) with a plain one sized to
// the viewBox.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	header := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(header))
}

package sink

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"maps"
	"slices"

	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

const (
	legendRadius  = 7.0
	legendSpacing = 20.0
	titleSize     = 16.0
)

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	title      string
	legend     bool
	outline    string
}

// WithBackground fills the canvas with color c before drawing.
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithTitle writes a <title> element and a caption above the drawing.
func WithTitle(t string) SVGOption { return func(r *svgRenderer) { r.title = t } }

// WithLegend draws a base-to-color key in the top-left corner.
func WithLegend() SVGOption { return func(r *svgRenderer) { r.legend = true } }

// WithOutline sets the stroke color of marker circles (default black).
func WithOutline(c string) SVGOption { return func(r *svgRenderer) { r.outline = c } }

// RenderSVG draws the scene as a standalone SVG document. Bonds are drawn
// beneath markers, backbone before pairing.
func RenderSVG(s *render.Scene, opts ...SVGOption) []byte {
	r := svgRenderer{outline: "black"}
	for _, opt := range opts {
		opt(&r)
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		s.Width, s.Height, s.Width, s.Height)

	if r.title != "" {
		fmt.Fprintf(&buf, "  <title>%s</title>\n", escape(r.title))
	}
	if r.background != "" {
		fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", escape(r.background))
	}

	renderBonds(&buf, s)
	renderMarkers(&buf, s, r.outline)

	if r.title != "" {
		fmt.Fprintf(&buf, `  <text x="%.1f" y="%.1f" font-family="sans-serif" font-size="%.0f" text-anchor="middle">%s</text>`+"\n",
			s.Width/2, titleSize+4, titleSize, escape(r.title))
	}
	if r.legend {
		renderLegend(&buf, s, r.outline)
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes()
}

func renderBonds(buf *bytes.Buffer, s *render.Scene) {
	buf.WriteString(`  <g class="bonds" stroke-linecap="round">` + "\n")
	for _, kind := range []structure.BondKind{structure.Backbone, structure.Pairing} {
		for _, seg := range s.Segments {
			if seg.Kind != kind {
				continue
			}
			fmt.Fprintf(buf, `    <line class="bond %s" x1="%.2f" y1="%.2f" x2="%.2f" y2="%.2f" stroke="%s" stroke-width="%.2f"/>`+"\n",
				seg.Kind, seg.X1, seg.Y1, seg.X2, seg.Y2, escape(seg.Stroke), seg.Width)
		}
	}
	buf.WriteString("  </g>\n")
}

func renderMarkers(buf *bytes.Buffer, s *render.Scene, outline string) {
	buf.WriteString(`  <g class="nucleotides" font-family="sans-serif" text-anchor="middle" dominant-baseline="central">` + "\n")
	for _, m := range s.Markers {
		fmt.Fprintf(buf, `    <circle id="nt-%d" cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="%s" stroke-width="1"/>`+"\n",
			m.Index, m.X, m.Y, m.Radius, escape(m.Fill), escape(outline))
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f" font-size="%.1f" fill="%s">%s</text>`+"\n",
			m.X, m.Y, labelSize(m), escape(m.LabelColor), escape(m.Label))
	}
	buf.WriteString("  </g>\n")
}

func renderLegend(buf *bytes.Buffer, s *render.Scene, outline string) {
	fills := make(map[string]string)
	for _, m := range s.Markers {
		if _, ok := fills[m.Base]; !ok {
			fills[m.Base] = m.Fill
		}
	}
	buf.WriteString(`  <g class="legend" font-family="sans-serif" font-size="12" dominant-baseline="central">` + "\n")
	y := legendSpacing
	for _, base := range slices.Sorted(maps.Keys(fills)) {
		fmt.Fprintf(buf, `    <circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s" stroke="%s"/>`+"\n",
			legendSpacing, y, legendRadius, escape(fills[base]), escape(outline))
		fmt.Fprintf(buf, `    <text x="%.1f" y="%.1f">%s</text>`+"\n", legendSpacing+2*legendRadius, y, escape(base))
		y += legendSpacing
	}
	buf.WriteString("  </g>\n")
}

// labelSize shrinks the font for long labels so they stay inside the disc.
func labelSize(m render.Marker) float64 {
	if n := len(m.Label); n > 2 {
		return m.FontSize * 2 / float64(n)
	}
	return m.FontSize
}

func escape(s string) string {
	var buf bytes.Buffer
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

package sink

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/style"
)

// PNGOption configures [RenderPNG].
type PNGOption func(*pngRenderer)

type pngRenderer struct {
	scale      float64
	background string
}

// WithScale sets the pixel scale factor (default 2.0 for 2x resolution).
func WithScale(s float64) PNGOption { return func(r *pngRenderer) { r.scale = s } }

// WithPNGBackground sets the canvas color (default white). An empty string
// leaves the canvas transparent.
func WithPNGBackground(c string) PNGOption { return func(r *pngRenderer) { r.background = c } }

// RenderPNG rasterizes the scene in-process. Labels use the Go Regular font.
func RenderPNG(s *render.Scene, opts ...PNGOption) ([]byte, error) {
	r := pngRenderer{scale: 2.0, background: "white"}
	for _, opt := range opts {
		opt(&r)
	}
	if r.scale <= 0 {
		return nil, fmt.Errorf("png scale must be positive, got %g", r.scale)
	}

	k := r.scale
	dc := gg.NewContext(int(s.Width*k+0.5), int(s.Height*k+0.5))

	if r.background != "" {
		c, err := style.Parse(r.background)
		if err != nil {
			return nil, err
		}
		dc.SetColor(c)
		dc.Clear()
	}

	for _, seg := range s.Segments {
		c, err := style.Parse(seg.Stroke)
		if err != nil {
			return nil, fmt.Errorf("bond %d-%d: %w", seg.I, seg.J, err)
		}
		dc.SetColor(c)
		dc.SetLineWidth(seg.Width * k)
		dc.DrawLine(seg.X1*k, seg.Y1*k, seg.X2*k, seg.Y2*k)
		dc.Stroke()
	}

	faces := newFaceCache()
	for _, m := range s.Markers {
		fill, err := style.Parse(m.Fill)
		if err != nil {
			return nil, fmt.Errorf("nucleotide %s: %w", m.Label, err)
		}
		dc.DrawCircle(m.X*k, m.Y*k, m.Radius*k)
		dc.SetColor(fill)
		dc.FillPreserve()
		dc.SetColor(color.Black)
		dc.SetLineWidth(k)
		dc.Stroke()

		face, err := faces.get(labelSize(m) * k)
		if err != nil {
			return nil, err
		}
		text, err := style.Parse(m.LabelColor)
		if err != nil {
			text = color.RGBA{A: 0xff}
		}
		dc.SetFontFace(face)
		dc.SetColor(text)
		dc.DrawStringAnchored(m.Label, m.X*k, m.Y*k, 0.5, 0.5)
	}

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// faceCache builds Go Regular faces per pixel size.
type faceCache struct {
	font  *opentype.Font
	faces map[float64]font.Face
	err   error
}

func newFaceCache() *faceCache {
	f, err := opentype.Parse(goregular.TTF)
	return &faceCache{font: f, faces: make(map[float64]font.Face), err: err}
}

func (c *faceCache) get(size float64) (font.Face, error) {
	if c.err != nil {
		return nil, fmt.Errorf("parse font: %w", c.err)
	}
	if f, ok := c.faces[size]; ok {
		return f, nil
	}
	f, err := opentype.NewFace(c.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("font face: %w", err)
	}
	c.faces[size] = f
	return f, nil
}

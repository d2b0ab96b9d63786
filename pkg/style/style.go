// Package style maps nucleotides and bonds to visual attributes.
//
// A [Policy] assigns a fill color to each base and a stroke (color and
// width) to each bond kind. Colors are given as CSS/SVG color names
// ("lightblue") or hex triplets ("#add8e6", "#fff") and are resolved with
// [Parse].
package style

import (
	"fmt"
	"image/color"
	"maps"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/image/colornames"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// Stroke is the line style of a bond.
type Stroke struct {
	Color string  `json:"color" toml:"color"`
	Width float64 `json:"width" toml:"width"`
}

// Policy decides node fill by base and edge stroke by bond kind.
type Policy struct {
	NodeColors map[structure.Base]string
	Backbone   Stroke
	Pairing    Stroke

	// LabelColor is the text color of node labels. Empty picks black or
	// white per node for contrast with its fill.
	LabelColor string
}

// Default returns the standard policy: A lightblue, U red, G lightgreen,
// C yellow; backbone black 1.0; pairing red 1.2.
func Default() Policy {
	return Policy{
		NodeColors: map[structure.Base]string{
			structure.Adenine:  "lightblue",
			structure.Uracil:   "red",
			structure.Guanine:  "lightgreen",
			structure.Cytosine: "yellow",
		},
		Backbone: Stroke{Color: "black", Width: 1.0},
		Pairing:  Stroke{Color: "red", Width: 1.2},
	}
}

// NodeColor returns the fill for base b, falling back to the default
// policy for bases the receiver does not mention.
func (p Policy) NodeColor(b structure.Base) string {
	if c, ok := p.NodeColors[b]; ok && c != "" {
		return c
	}
	return Default().NodeColors[b]
}

// BondStroke returns the stroke for bonds of kind k.
func (p Policy) BondStroke(k structure.BondKind) Stroke {
	if k == structure.Pairing {
		return p.Pairing
	}
	return p.Backbone
}

// LabelColorFor returns the label color to draw on top of fill.
func (p Policy) LabelColorFor(fill string) string {
	if p.LabelColor != "" {
		return p.LabelColor
	}
	c, err := Parse(fill)
	if err != nil {
		return "black"
	}
	// Rec. 601 luma.
	if 299*int(c.R)+587*int(c.G)+114*int(c.B) < 128*1000 {
		return "white"
	}
	return "black"
}

// Validate checks that every color resolves and every width is positive.
func (p Policy) Validate() error {
	for _, b := range slices.Sorted(maps.Keys(p.NodeColors)) {
		if !b.Valid() {
			return rnaerrors.New(rnaerrors.ErrCodeInvalidColor, "color assigned to unknown base %q", b.String())
		}
		if _, err := Parse(p.NodeColors[b]); err != nil {
			return fmt.Errorf("node color for %s: %w", b, err)
		}
	}
	for _, s := range []struct {
		name string
		Stroke
	}{{"backbone", p.Backbone}, {"pairing", p.Pairing}} {
		if _, err := Parse(s.Color); err != nil {
			return fmt.Errorf("%s stroke: %w", s.name, err)
		}
		if s.Width <= 0 {
			return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "%s stroke width must be positive, got %g", s.name, s.Width)
		}
	}
	if p.LabelColor != "" {
		if _, err := Parse(p.LabelColor); err != nil {
			return fmt.Errorf("label color: %w", err)
		}
	}
	return nil
}

// Parse resolves a color name or #rgb / #rrggbb hex string.
// Names are matched case-insensitively against the SVG 1.1 color keywords.
func Parse(s string) (color.RGBA, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if strings.HasPrefix(name, "#") {
		return parseHex(name)
	}
	if c, ok := colornames.Map[name]; ok {
		return c, nil
	}
	return color.RGBA{}, rnaerrors.New(rnaerrors.ErrCodeInvalidColor, "unknown color %q", s)
}

// Hex returns the #rrggbb form of a color name, or the input unchanged if
// it cannot be resolved.
func Hex(s string) string {
	c, err := Parse(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func parseHex(s string) (color.RGBA, error) {
	digits := s[1:]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	if len(digits) != 6 {
		return color.RGBA{}, rnaerrors.New(rnaerrors.ErrCodeInvalidColor, "invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return color.RGBA{}, rnaerrors.Wrap(rnaerrors.ErrCodeInvalidColor, err, "invalid hex color %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

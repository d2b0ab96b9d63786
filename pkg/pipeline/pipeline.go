// Package pipeline runs the structure → layout → scene → artifact pipeline
// shared by the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of four sequential stages:
//
//  1. Structure: validate the sequence and pairing list into a [structure.Structure]
//  2. Layout: compute 2D positions (circular or force-directed)
//  3. Scene: fit the layout into the viewport and apply the style policy
//  4. Render: serialize the scene in each requested format
//
// Layouts and artifacts are cached through [cache.Cache]; the structure and
// scene stages are cheap and always recomputed.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    Sequence: "AUGC",
//	    Pairs:    []int{0, 3},
//	    Formats:  []string{"svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	svg := result.Artifacts["svg"]
//
// A disconnected structure graph is not a failure: the result is complete
// and [Result.Warning] carries the DISCONNECTED_GRAPH error.
package pipeline

import (
	"io"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rnaviz/pkg/cache"
	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/structure"
	"github.com/matzehuels/rnaviz/pkg/style"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultScale is the PNG pixel density multiplier.
	DefaultScale = 2.0

	// DefaultEngine draws every format with the built-in renderers.
	DefaultEngine = EngineNative

	// MaxCanvasPixels caps the drawing area in pixels. For PNG output the
	// area is measured after scaling.
	MaxCanvasPixels = 1 << 26
)

// Format constants for output formats.
const (
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
	FormatJSON = "json"
	FormatDOT  = "dot"
)

// Engines. The graphviz engine routes SVG, PNG and PDF output through the
// DOT document and Graphviz's neato with pinned positions.
const (
	EngineNative   = "native"
	EngineGraphviz = "graphviz"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
	FormatJSON: true,
	FormatDOT:  true,
}

// ValidEngines is the set of supported render engines.
var ValidEngines = map[string]bool{
	EngineNative:   true,
	EngineGraphviz: true,
}

// ContentTypes maps each format to its MIME type.
var ContentTypes = map[string]string{
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for a pipeline run.
// This struct supports JSON serialization for API requests.
// A zero numeric field selects its default, so a zero margin, seed or
// tolerance cannot be requested.
type Options struct {
	// Structure options
	Sequence string `json:"sequence"`
	Pairs    []int  `json:"pairs"`

	// Layout options
	Mode          string  `json:"mode,omitempty"`
	MaxIterations int     `json:"max_iterations,omitempty"`
	Tolerance     float64 `json:"tolerance,omitempty"`
	Seed          uint64  `json:"seed,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Engine     string   `json:"engine,omitempty"`
	Width      float64  `json:"width,omitempty"`
	Height     float64  `json:"height,omitempty"`
	Margin     float64  `json:"margin,omitempty"`
	NodeRadius float64  `json:"node_radius,omitempty"`
	Title      string   `json:"title,omitempty"`
	Legend     bool     `json:"legend,omitempty"`
	Background string   `json:"background,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	Refresh    bool     `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Policy  *style.Policy `json:"-"`
	Workers int           `json:"-"`
	Logger  *log.Logger   `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Structure     *structure.Structure
	StructureHash string

	Layout     *layout.Layout
	LayoutHash string

	// Scene is nil when only the layout stage ran.
	Scene    *render.Scene
	Overlaps []render.Overlap

	// Warning is the non-fatal DISCONNECTED_GRAPH error, if any.
	Warning error

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Nucleotides int
	Pairings    int
	Components  int
	Iterations  int
	Stress      float64
	ParseTime   time.Duration
	LayoutTime  time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each cached stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidFormat,
			"invalid format: %q (must be one of: svg, png, pdf, json, dot)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateEngine checks that an engine is valid.
func ValidateEngine(engine string) error {
	if !ValidEngines[engine] {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig,
			"invalid engine: %q (must be one of: native, graphviz)", engine)
	}
	return nil
}

// ParseFormats splits a comma-separated format list, lowercasing and
// dropping duplicates and blanks.
func ParseFormats(s string) []string {
	var out []string
	for _, f := range strings.Split(s, ",") {
		f = strings.ToLower(strings.TrimSpace(f))
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks every stage's options and applies defaults.
// It is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if err := o.ValidateForParse(); err != nil {
		return err
	}
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// ValidateForParse normalizes the sequence to uppercase and performs cheap
// input checks. Alphabet and pairing checks happen when the structure is built.
func (o *Options) ValidateForParse() error {
	if err := rnaerrors.ValidateSequenceInput(o.Sequence, 0); err != nil {
		return err
	}
	o.Sequence = structure.Normalize(o.Sequence)
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return nil
}

// SetLayoutDefaults sets default values for layout computation.
func (o *Options) SetLayoutDefaults() {
	if o.Mode == "" {
		o.Mode = string(layout.DefaultMode)
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = layout.DefaultMaxIterations
	}
	if o.Tolerance == 0 {
		o.Tolerance = layout.DefaultTolerance
	}
	if o.Seed == 0 {
		o.Seed = layout.DefaultSeed
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout validates and sets defaults for layout computation.
// The mode is rewritten to its canonical spelling.
func (o *Options) ValidateForLayout() error {
	o.SetLayoutDefaults()
	mode, err := layout.ParseMode(o.Mode)
	if err != nil {
		return err
	}
	o.Mode = string(mode)
	if o.MaxIterations < 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidLayout, "max_iterations must be positive, got %d", o.MaxIterations)
	}
	if o.Tolerance < 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidLayout, "tolerance must be positive, got %g", o.Tolerance)
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatSVG}
	}
	if o.Engine == "" {
		o.Engine = DefaultEngine
	}
	if o.Width == 0 {
		o.Width = render.DefaultWidth
	}
	if o.Height == 0 {
		o.Height = render.DefaultHeight
	}
	if o.Margin == 0 {
		o.Margin = render.DefaultMargin
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Policy == nil {
		p := style.Default()
		o.Policy = &p
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateEngine(o.Engine); err != nil {
		return err
	}
	if err := o.Viewport().Validate(); err != nil {
		return err
	}
	if o.Scale < 0 {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig, "scale must be positive, got %g", o.Scale)
	}
	if px := o.canvasPixels(); !(px <= MaxCanvasPixels) {
		return rnaerrors.New(rnaerrors.ErrCodeInvalidConfig,
			"canvas of %.0f pixels exceeds the limit of %d", px, MaxCanvasPixels)
	}
	if o.Background != "" {
		if _, err := style.Parse(o.Background); err != nil {
			return err
		}
	}
	return o.Policy.Validate()
}

// canvasPixels returns the largest pixel area any requested format draws.
func (o *Options) canvasPixels() float64 {
	px := o.Width * o.Height
	if slices.Contains(o.Formats, FormatPNG) {
		px *= o.Scale * o.Scale
	}
	return px
}

// LayoutOptions returns the layout engine settings.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{
		Mode:          layout.Mode(o.Mode),
		MaxIterations: o.MaxIterations,
		Tolerance:     o.Tolerance,
		Seed:          o.Seed,
		Workers:       o.Workers,
	}
}

// Viewport returns the scene viewport.
func (o *Options) Viewport() render.Viewport {
	return render.Viewport{
		Width:      o.Width,
		Height:     o.Height,
		Margin:     o.Margin,
		NodeRadius: o.NodeRadius,
	}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Mode:          o.Mode,
		MaxIterations: o.MaxIterations,
		Tolerance:     o.Tolerance,
		Seed:          o.Seed,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format:     format,
		Engine:     o.Engine,
		Width:      o.Width,
		Height:     o.Height,
		Margin:     o.Margin,
		NodeRadius: o.NodeRadius,
		Style:      policyHash(o.Policy),
		Background: o.Background,
		Title:      o.Title,
		Legend:     o.Legend,
		Scale:      o.Scale,
	}
}

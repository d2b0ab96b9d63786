package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	rnaerrors "github.com/matzehuels/rnaviz/pkg/errors"
	"github.com/matzehuels/rnaviz/pkg/layout"
	"github.com/matzehuels/rnaviz/pkg/pipeline"
	"github.com/matzehuels/rnaviz/pkg/render"
	"github.com/matzehuels/rnaviz/pkg/render/sink"
)

// layoutFlags are the layout engine flags shared by render and layout.
// They override the configuration file only when set explicitly.
type layoutFlags struct {
	mode          string
	maxIterations int
	tolerance     float64
	seed          uint64
	noCache       bool
	refresh       bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.mode, "mode", string(layout.DefaultMode), "layout mode: force_directed, circular")
	cmd.Flags().IntVar(&f.maxIterations, "max-iterations", layout.DefaultMaxIterations, "stress majorization iteration cap (0 uses the default)")
	cmd.Flags().Float64Var(&f.tolerance, "tolerance", layout.DefaultTolerance, "relative stress change that stops iterating (0 uses the default)")
	cmd.Flags().Uint64Var(&f.seed, "seed", layout.DefaultSeed, "seed for the coincident-node perturbation (0 uses the default)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute and overwrite cached results")
}

func (f *layoutFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	flags := cmd.Flags()
	if flags.Changed("mode") {
		opts.Mode = f.mode
	}
	if flags.Changed("max-iterations") {
		opts.MaxIterations = f.maxIterations
	}
	if flags.Changed("tolerance") {
		opts.Tolerance = f.tolerance
	}
	if flags.Changed("seed") {
		opts.Seed = f.seed
	}
	opts.Refresh = f.refresh
}

// renderFlags holds the command-line flags for the render command.
type renderFlags struct {
	layoutFlags
	output     string
	formats    string
	engine     string
	width      float64
	height     float64
	margin     float64
	radius     float64
	title      string
	legend     bool
	background string
	scale      float64
}

// renderCommand creates the render command for drawing a structure.
func (c *CLI) renderCommand() *cobra.Command {
	var f renderFlags

	cmd := &cobra.Command{
		Use:   "render SEQUENCE [PAIRS]",
		Short: "Render an RNA structure to SVG, PNG, PDF, JSON or DOT",
		Long: `Render an RNA structure.

SEQUENCE uses the bases A, U, G and C (lowercase is accepted). PAIRS is a
comma-separated list of indices read two at a time, so "0,8,1,7" pairs
nucleotide 0 with 8 and 1 with 7. Omit PAIRS for an unpaired chain.

With a single format, -o names the output file. With several formats, -o is
a base path and each format gets its own extension.

Layouts and artifacts are cached locally for faster subsequent runs.`,
		Example: `  rnaviz render GGGAAAUCC 0,8,1,7,2,6
  rnaviz render gggaaaucc 0,8,1,7,2,6 -f svg,png -o hairpin --legend
  rnaviz render AUGC 0,3 --mode circular --engine graphviz`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), cmd, args, &f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", pipeline.FormatSVG, "output format(s): svg, png, pdf, json, dot (comma-separated)")
	f.layoutFlags.register(cmd)
	cmd.Flags().StringVar(&f.engine, "engine", pipeline.DefaultEngine, "drawing engine: native, graphviz")
	cmd.Flags().Float64Var(&f.width, "width", render.DefaultWidth, "viewport width (0 uses the default)")
	cmd.Flags().Float64Var(&f.height, "height", render.DefaultHeight, "viewport height (0 uses the default)")
	cmd.Flags().Float64Var(&f.margin, "margin", render.DefaultMargin, "viewport margin (0 uses the default)")
	cmd.Flags().Float64Var(&f.radius, "node-radius", 0, "nucleotide radius (0 sizes nodes from the layout)")
	cmd.Flags().StringVar(&f.title, "title", "", "drawing title")
	cmd.Flags().BoolVar(&f.legend, "legend", false, "draw a base color legend")
	cmd.Flags().StringVar(&f.background, "background", "", "background color (default: transparent)")
	cmd.Flags().Float64Var(&f.scale, "scale", pipeline.DefaultScale, "PNG scale factor (0 uses the default)")

	return cmd
}

func (f *renderFlags) apply(cmd *cobra.Command, opts *pipeline.Options) {
	f.layoutFlags.apply(cmd, opts)
	flags := cmd.Flags()
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if flags.Changed("height") {
		opts.Height = f.height
	}
	if flags.Changed("margin") {
		opts.Margin = f.margin
	}
	opts.Formats = pipeline.ParseFormats(f.formats)
	opts.Engine = f.engine
	opts.NodeRadius = f.radius
	opts.Title = f.title
	opts.Legend = f.legend
	opts.Background = f.background
	opts.Scale = f.scale
}

// runRender runs the full pipeline and writes one file per format.
func (c *CLI) runRender(ctx context.Context, cmd *cobra.Command, args []string, f *renderFlags) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	opts, err := baseOptions(cfg)
	if err != nil {
		return err
	}
	if opts.Sequence, opts.Pairs, err = parseInput(args); err != nil {
		return err
	}
	f.apply(cmd, &opts)
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	if f.output != "" {
		if err := rnaerrors.ValidateOutputPath(f.output); err != nil {
			return err
		}
	}

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger
	prog := newProgress(c.Logger)

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.Execute(ctx, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	if result.Warning != nil {
		printWarning("%s", rnaerrors.UserMessage(result.Warning))
	}

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, f.output)
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("Rendered %d artifacts", len(paths)))

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Nucleotides, result.Stats.Pairings, result.Stats.Components,
		result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit)
	return nil
}

// writeArtifacts writes each format in request order and returns the paths.
func writeArtifacts(artifacts map[string][]byte, formats []string, output string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, format := range formats {
		path := outputPath(output, format, len(formats) > 1)
		if err := sink.WriteFile(path, artifacts[format]); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// outputPath derives the file for format. A single format writes to output
// as given; multiple formats treat output as a base path and strip a known
// format extension from it.
func outputPath(output, format string, multiple bool) string {
	if output == "" {
		return defaultOutputBase + "." + format
	}
	if !multiple {
		return output
	}
	return basePath(output) + "." + format
}

func basePath(output string) string {
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.ToLower(strings.TrimPrefix(ext, "."))] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

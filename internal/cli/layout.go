package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/rnaviz/pkg/render/sink"
)

// layoutCommand creates the layout command for printing node coordinates.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		f      layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout SEQUENCE [PAIRS]",
		Short: "Compute node coordinates for an RNA structure",
		Long: `Compute node coordinates for an RNA structure.

The layout is printed as JSON: the mode, one labeled position per
nucleotide, the iteration count, the final stress and the number of
connected components. Use -o to write it to a file instead.

Layouts are cached locally for faster subsequent runs.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), cmd, args, &f, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	f.register(cmd)

	return cmd
}

// runLayout computes the layout and writes it as JSON.
func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, args []string, f *layoutFlags, output string) error {
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

	runner, err := c.newRunner(ctx, cfg, f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts.Logger = c.Logger

	spinner := newSpinnerWithContext(ctx, "Computing layout...")
	spinner.Start()

	result, err := runner.ExecuteLayout(ctx, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return err
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	data, err := sink.RenderLayoutJSON(result.Structure, result.Layout)
	if err != nil {
		return fmt.Errorf("encode layout: %w", err)
	}

	if output == "" {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
		return err
	}
	if err := sink.WriteFile(output, data); err != nil {
		return err
	}
	printSuccess("Layout complete")
	printFile(output)
	printStats(result.Stats.Nucleotides, result.Stats.Pairings, result.Stats.Components, result.CacheInfo.LayoutHit)
	return nil
}

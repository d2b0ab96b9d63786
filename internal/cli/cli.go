// Package cli implements the rnaviz command-line interface.
//
// Commands:
//   - render: draw a structure as SVG, PNG, PDF, JSON or DOT
//   - layout: print node coordinates as JSON
//   - inspect: print the dot-bracket notation and the pairings
//   - serve: run the HTTP API
//   - cache: inspect and clear the artifact cache
//   - config: show the effective configuration
//
// Settings come from the TOML configuration file (see package config);
// command-line flags override file values.
package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rnaviz/pkg/buildinfo"
	"github.com/matzehuels/rnaviz/pkg/cache"
	"github.com/matzehuels/rnaviz/pkg/config"
	"github.com/matzehuels/rnaviz/pkg/pipeline"
	"github.com/matzehuels/rnaviz/pkg/structure"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "rnaviz"

	// defaultOutputBase names output files when -o is not given.
	defaultOutputBase = "structure"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "rnaviz draws RNA secondary structures as graphs",
		Long: `rnaviz turns an RNA sequence and its base-pairing indices into a
labeled graph: one node per nucleotide, backbone edges along the chain and
pairing edges between paired bases, laid out on a circle or by stress
majorization.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "configuration file (default: user config dir)")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the configuration file selected by --config.
func (c *CLI) loadConfig() (config.Config, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the configured cache.
// Keys are scoped to the build so upgrades never read stale artifacts.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := newCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(ch, cache.NewScopedKeyer(nil, buildinfo.CacheScope()), c.Logger)
	runner.TTL = cfg.Cache.TTL.Duration
	return runner, nil
}

func newCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	opts, err := cfg.Cache.Options()
	if err != nil {
		return nil, err
	}
	if opts.Backend == cache.BackendFile && opts.Dir == "" {
		dir, err := cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}
	ch, err := cache.Open(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s cache: %w", opts.Backend, err)
	}
	return ch, nil
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the file cache directory (~/.cache/rnaviz/ on Linux).
func cacheDir() (string, error) {
	return cache.DefaultDir()
}

// =============================================================================
// Options Helpers
// =============================================================================

// baseOptions converts the configuration into pipeline options.
func baseOptions(cfg config.Config) (pipeline.Options, error) {
	policy, err := cfg.Policy()
	if err != nil {
		return pipeline.Options{}, err
	}
	return pipeline.Options{
		Mode:          cfg.LayoutMode,
		MaxIterations: cfg.MaxIterations,
		Tolerance:     cfg.Tolerance,
		Seed:          cfg.Seed,
		Width:         cfg.Viewport.Width,
		Height:        cfg.Viewport.Height,
		Margin:        cfg.Viewport.Margin,
		Policy:        &policy,
	}, nil
}

// parseInput normalizes the positional SEQ [PAIRS] arguments.
// Lowercase bases are accepted and uppercased; a missing PAIRS argument
// means an unpaired chain.
func parseInput(args []string) (string, []int, error) {
	seq := structure.Normalize(args[0])
	if len(args) < 2 || strings.TrimSpace(args[1]) == "" {
		return seq, nil, nil
	}
	pairs, err := structure.ParsePairs(args[1])
	if err != nil {
		return "", nil, err
	}
	return seq, pairs, nil
}

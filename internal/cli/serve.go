package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/rnaviz/pkg/api"
	"github.com/matzehuels/rnaviz/pkg/config"
	"github.com/matzehuels/rnaviz/pkg/observability"
	"github.com/matzehuels/rnaviz/pkg/pipeline"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Run the HTTP API.

Routes:
  GET  /api/v1/health
  POST /api/v1/layout   node coordinates as JSON
  POST /api/v1/render   one artifact in the requested format

Request defaults (layout settings, styles, viewport) come from the
configuration file. The server shuts down gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), cmd, addr, noCache)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", config.DefaultAddr, "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runServe(ctx context.Context, cmd *cobra.Command, addr string, noCache bool) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	if !cmd.Flags().Changed("addr") && cfg.Server.Addr != "" {
		addr = cfg.Server.Addr
	}

	server, runner, err := c.newServer(ctx, cfg, noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	if c.Logger.GetLevel() <= log.DebugLevel {
		hooks := observability.NewLogHooks(c.Logger)
		observability.SetPipelineHooks(hooks)
		observability.SetCacheHooks(hooks)
		observability.SetHTTPHooks(hooks)
		defer observability.Reset()
	}

	printInfo("Serving on %s", addr)
	return server.ListenAndServe(ctx, addr)
}

// newServer builds the API server and the runner it shares across requests.
func (c *CLI) newServer(ctx context.Context, cfg config.Config, noCache bool) (*api.Server, *pipeline.Runner, error) {
	defaults, err := baseOptions(cfg)
	if err != nil {
		return nil, nil, err
	}
	runner, err := c.newRunner(ctx, cfg, noCache)
	if err != nil {
		return nil, nil, fmt.Errorf("initialize runner: %w", err)
	}
	server := api.New(runner, c.Logger, api.Config{
		MaxSequenceLen: cfg.Server.MaxSequenceLen,
		RequestTimeout: cfg.Server.RequestTimeout.Duration,
		Defaults:       defaults,
	})
	return server, runner, nil
}

package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/flowtower/pkg/api"
	"github.com/matzehuels/flowtower/pkg/pipeline"
	"github.com/matzehuels/flowtower/pkg/poll"
	"github.com/matzehuels/flowtower/pkg/server"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr          string
		statsInterval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve workflow diagram layouts over HTTP",
		Long: `Run the layout HTTP server.

Routes:

  GET  /healthz                       liveness and version
  GET  /stats                         last polled system statistics
  GET  /diagrams/{id}/layout          layout of a workflow's diagram (JSON)
  GET  /diagrams/{id}.{svg,dot,png,json}
  POST /layout                        lay out a diagram in the request body

Layout defaults come from the config file and apply to every request that
does not override them with query parameters.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runServe(cmd.Context(), addr, statsInterval)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", server.DefaultAddr, "listen address")
	cmd.Flags().DurationVar(&statsInterval, "stats-interval", poll.DefaultInterval, "how often to poll system statistics (0 disables /stats)")

	return cmd
}

// runServe starts the stats poller and the HTTP server and blocks until ctx
// is cancelled or either fails.
func (c *CLI) runServe(ctx context.Context, addr string, statsInterval time.Duration) error {
	cc := c.newCache(ctx)
	client, err := c.newClient(cc)
	if err != nil {
		_ = cc.Close()
		return err
	}
	runner := pipeline.NewRunner(cc, nil, client, c.Logger)
	defer runner.Close()

	opts := []server.Option{
		server.WithLogger(c.Logger),
		server.WithDefaults(c.layoutDefaults()),
	}

	g, ctx := errgroup.WithContext(ctx)

	if statsInterval > 0 {
		poller := poll.NewPoller(statsInterval, client.SystemStats)
		opts = append(opts, server.WithStats(poller))
		g.Go(func() error {
			poller.Run(ctx, func(r poll.Result[api.SystemStats]) {
				if r.Err != nil {
					c.Logger.Warn("stats poll failed", "err", r.Err)
				}
			})
			return nil
		})
	}

	srv := server.New(runner, opts...)
	g.Go(func() error {
		c.Logger.Debug("serving layouts", "api", c.config.APIURL, "stats_interval", statsInterval)
		return srv.ListenAndServe(ctx, addr)
	})

	return g.Wait()
}

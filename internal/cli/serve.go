package cli

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/matzehuels/treemap/pkg/observability"
	"github.com/matzehuels/treemap/pkg/observability/prom"
	"github.com/matzehuels/treemap/pkg/pipeline"
	"github.com/matzehuels/treemap/pkg/server"
)

// serveCommand creates the serve command: an HTTP server drawing treemaps
// on request.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		metrics bool
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve treemaps over HTTP",
		Long: `Serve treemaps over HTTP.

Routes:
  GET /                 HTML page with dataset navigation
  GET /treemap.svg      the SVG for ?data=<key>
  GET /api/layout       the layout and legend as JSON
  GET /api/datasets     the dataset registry
  GET /healthz          liveness and build information
  GET /metrics          Prometheus metrics (unless --metrics=false)

Layout query parameters: data, tiling, ratio, width, height, select.`,
		Example: `  treemap serve --addr :8080
  curl 'localhost:8080/treemap.svg?data=movies&tiling=binary'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			if !cmd.Flags().Changed("metrics") {
				metrics = c.cfg.Server.Metrics
			}

			runner, err := c.newRunner(ctx, noCache)
			if err != nil {
				return err
			}
			defer runner.Close()

			opts := []server.Option{
				server.WithLogger(c.Logger),
				server.WithDefaults(pipeline.FromConfig(c.cfg)),
			}
			if metrics {
				m := prom.New(prometheus.DefaultRegisterer)
				observability.Register(m)
				defer observability.Reset()
				opts = append(opts, server.WithMetrics(m, prometheus.DefaultGatherer))
			}

			printInfo("Serving on %s", StyleLink.Render("http://"+addr))
			return server.New(runner, opts...).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config: 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&metrics, "metrics", true, "expose Prometheus metrics on /metrics")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

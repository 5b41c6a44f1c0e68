package cli

import (
	"github.com/spf13/cobra"

	"github.com/TFMV/pivotgraph/metrics"
	"github.com/TFMV/pivotgraph/physics"
	"github.com/TFMV/pivotgraph/server"
	"github.com/TFMV/pivotgraph/session"
)

func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr    string
		dataset string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve layout sessions over HTTP",
		Long: `Serve layout sessions over HTTP.

Each session runs its own simulation at the configured frame rate. Rendered
views are available per session, and Prometheus metrics under /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			ds, err := c.loadDataset(cfg, dataset)
			if err != nil {
				return err
			}

			logger := loggerFromContext(cmd.Context())
			opts := c.sessionOptions(cfg)
			opts.Hooks = metrics.SimulationHooks{}

			fps := cfg.Simulation.FPS
			store := session.NewStore(func() physics.TickSource {
				return physics.NewFrameTicker(fps)
			}, cfg.Server.MaxSessions, opts)

			srv := server.New(server.Config{
				Addr:            cfg.Server.Addr,
				ShutdownTimeout: cfg.ShutdownTimeout(),
			}, ds, store, logger)

			logger.Info("serving dataset", "name", ds.Name, "nodes", len(ds.Nodes), "fps", fps)
			return srv.Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default: config, then :8080)")
	cmd.Flags().StringVarP(&dataset, "dataset", "d", "", "dataset file (JSON, YAML, CSV or edge log)")
	return cmd
}

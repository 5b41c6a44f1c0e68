package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/TFMV/pivotgraph/config"
	"github.com/TFMV/pivotgraph/ingest"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/session"
)

const appName = "pivotgraph"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// ConfigPath is bound to --config. Empty means the default location.
	ConfigPath string
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
		Short: "Pivotgraph lays out concept graphs around a chosen focus",
		Long: `Pivotgraph is a force-directed layout engine for concept graphs. Nodes
settle into rings around a focus node by their weighted shortest-path distance,
so changing the focus re-centres the whole picture.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&c.ConfigPath, "config", "c", "", "config file (default: "+config.DefaultPath()+")")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.pathsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.watchCommand())

	return root
}

// loadConfig reads the config file and applies its log level unless the
// logger was already raised to debug by --verbose.
func (c *CLI) loadConfig() (*config.Config, error) {
	cfg, err := config.Load(c.ConfigPath)
	if err != nil {
		return nil, err
	}
	if c.Logger.GetLevel() != log.DebugLevel {
		c.Logger.SetLevel(cfg.LogLevel())
	}
	return cfg, nil
}

// loadDataset reads path, falling back to the configured dataset and then to
// the embedded sample.
func (c *CLI) loadDataset(cfg *config.Config, path string) (*models.Dataset, error) {
	if path == "" {
		path = cfg.Simulation.Dataset
	}
	if path == "" {
		c.Logger.Debug("using embedded sample dataset")
		return ingest.Sample()
	}

	ds, err := ingest.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", path, err)
	}
	c.Logger.Debug("loaded dataset", "path", path, "nodes", len(ds.Nodes), "edges", len(ds.AllEdges()))
	return ds, nil
}

// sessionOptions maps the config onto session options.
func (c *CLI) sessionOptions(cfg *config.Config) session.Options {
	opts := session.DefaultOptions()
	opts.Params = cfg.Physics
	opts.Seed = cfg.Simulation.Seed
	opts.Logger = c.Logger
	return opts
}

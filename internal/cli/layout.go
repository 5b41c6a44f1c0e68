package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/TFMV/pivotgraph/ingest"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
	"github.com/TFMV/pivotgraph/render"
	"github.com/TFMV/pivotgraph/session"
)

type layoutOptions struct {
	output    string
	format    string
	ticks     int
	focus     string
	secondary string
	metric    string
	width     float64
	height    float64
	palette   string
	title     string
	noLabels  bool
	seed      int64
}

// layoutCommand runs a batch simulation and renders the settled frame.
func (c *CLI) layoutCommand() *cobra.Command {
	opts := layoutOptions{format: "svg", ticks: 600, width: 1200, height: 900}

	cmd := &cobra.Command{
		Use:   "layout [dataset]",
		Short: "Settle a dataset around a focus and render it",
		Long: `Settle a dataset around a focus and render it.

The simulation is stepped synchronously for --ticks frames and the final
positions are rendered in the requested format. Without a dataset argument the
configured dataset or the embedded sample is used.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runLayout(cmd.Context(), cmd, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: svg, ascii, html, json, dot, png")
	cmd.Flags().IntVarP(&opts.ticks, "ticks", "n", opts.ticks, "simulation ticks to run")
	cmd.Flags().StringVar(&opts.focus, "focus", "", "primary focus node (default: root)")
	cmd.Flags().StringVar(&opts.secondary, "secondary", "", "secondary (thematic) focus node")
	cmd.Flags().StringVarP(&opts.metric, "metric", "m", "", "metric: combined, meaning, influence, chronology")
	cmd.Flags().Float64Var(&opts.width, "width", opts.width, "frame width")
	cmd.Flags().Float64Var(&opts.height, "height", opts.height, "frame height")
	cmd.Flags().StringVar(&opts.palette, "palette", "default", "palette: default, surreal")
	cmd.Flags().StringVar(&opts.title, "title", "", "title drawn on the frame")
	cmd.Flags().BoolVar(&opts.noLabels, "no-labels", false, "hide node labels")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "scatter seed (default: config, then clock)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, cmd *cobra.Command, path string, opts layoutOptions) error {
	if opts.ticks < 0 {
		return fmt.Errorf("ticks must not be negative")
	}
	renderer, err := render.GetRenderer(opts.format)
	if err != nil {
		return err
	}
	pal, err := ingest.GetPalette(opts.palette)
	if err != nil {
		return err
	}

	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ds, err := c.loadDataset(cfg, path)
	if err != nil {
		return err
	}

	sopts := c.sessionOptions(cfg)
	if opts.seed != 0 {
		sopts.Seed = opts.seed
	}
	ticker := &physics.ManualTicker{}
	sess, err := session.New("layout", ds, ticker, sopts)
	if err != nil {
		return err
	}
	defer sess.Close()

	focus := opts.focus
	if focus == "" {
		focus = cfg.Simulation.Focus
	}
	if err := sess.Focus(focus, opts.secondary); err != nil {
		return err
	}
	metric := cfg.Metric()
	if opts.metric != "" {
		metric = models.ParseMetric(opts.metric)
	}
	if err := sess.SetMetric(metric); err != nil {
		return err
	}

	prog := newProgress(c.Logger)
	for i := 0; i < opts.ticks; i++ {
		if i%100 == 0 && ctx.Err() != nil {
			return ctx.Err()
		}
		ticker.Step(1)
	}
	layout := sess.Layout()
	prog.done(fmt.Sprintf("Settled %d nodes", len(layout.Nodes())))

	ropts := render.NewDefaultOptions(opts.format)
	ropts.Width = opts.width
	ropts.Height = opts.height
	ropts.Palette = pal
	ropts.Title = opts.title
	ropts.ShowLabels = !opts.noLabels

	out, err := renderer.Render(render.FrameOf(layout), ropts)
	if err != nil {
		return fmt.Errorf("render %s: %w", opts.format, err)
	}

	if opts.output == "" {
		_, err = cmd.OutOrStdout().Write(out)
		return err
	}
	if err := os.WriteFile(opts.output, out, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", opts.output, err)
	}

	w := cmd.ErrOrStderr()
	printSuccess(w, "Layout complete")
	printFile(w, opts.output)
	printStats(w, len(layout.Nodes()), len(layout.Edges()), sess.Ticks())
	return nil
}

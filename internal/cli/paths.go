package cli

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
)

var (
	pathsHeader  = color.New(color.FgHiBlack)
	pathsFocus   = color.New(color.FgHiGreen, color.Bold)
	pathsNear    = color.New(color.FgCyan)
	pathsFar     = color.New(color.FgYellow)
	pathsMissing = color.New(color.FgRed)
)

// pathRow is one line of the distance report.
type pathRow struct {
	Node     models.Node
	Degree   int
	Distance float64
	Ring     float64
}

func (c *CLI) pathsCommand() *cobra.Command {
	var (
		from   string
		metric string
	)

	cmd := &cobra.Command{
		Use:   "paths [dataset]",
		Short: "Print weighted shortest-path distances from a focus",
		Long: `Print weighted shortest-path distances from a focus.

Distances drive the radial rings of the layout: the Ring column is the radius a
node is pulled towards when the focus sits at the origin. Unreachable nodes are
listed last and sit on the outermost ring.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			ds, err := c.loadDataset(cfg, path)
			if err != nil {
				return err
			}
			m := cfg.Metric()
			if metric != "" {
				m = models.ParseMetric(metric)
			}
			if !m.Known() {
				return fmt.Errorf("unknown metric %q", m)
			}
			if from == "" {
				from = ds.Root
			}
			if _, err := ds.FindNodeByID(from); err != nil {
				return err
			}

			rows := distanceReport(ds, from, m, cfg.Physics)
			loggerFromContext(cmd.Context()).Debug("computed distances", "from", from, "metric", m, "nodes", len(rows))
			writePathsTable(cmd.OutOrStdout(), from, m, rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "focus node (default: root)")
	cmd.Flags().StringVarP(&metric, "metric", "m", "", "metric: combined, meaning, influence, chronology")
	return cmd
}

// distanceReport builds the active graph for metric m and measures every
// node from the focus. Rows are ordered by distance, unreachable last.
func distanceReport(ds *models.Dataset, from string, m models.Metric, p physics.Params) []pathRow {
	filter := models.DefaultFilter()
	filter.Metric = m
	nodes, edges := graph.BuildActive(ds, filter)
	adj := graph.NewAdjacency(edges)
	dist := physics.DistancesFrom(from, nodes, edges, m)

	maxDist := 0.0
	for _, d := range dist {
		if !math.IsInf(d, 0) && d > maxDist {
			maxDist = d
		}
	}
	if maxDist == 0 {
		maxDist = 1
	}

	rows := make([]pathRow, 0, len(nodes))
	for _, n := range nodes {
		d := dist[n.ID]
		norm := 1.0
		if !math.IsInf(d, 0) {
			norm = d / maxDist
		}
		rows = append(rows, pathRow{
			Node:     n,
			Degree:   adj.Degree(n.ID),
			Distance: d,
			Ring:     p.RingInner + p.RingSpan*norm,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Distance != rows[j].Distance {
			return rows[i].Distance < rows[j].Distance
		}
		return rows[i].Node.ID < rows[j].Node.ID
	})
	return rows
}

func writePathsTable(w io.Writer, from string, m models.Metric, rows []pathRow) {
	headers := []string{"NODE", "KIND", "LAYER", "DEGREE", "DISTANCE", "RING"}
	cells := make([][]string, len(rows))
	for i, r := range rows {
		dist := "unreachable"
		if !math.IsInf(r.Distance, 0) {
			dist = fmt.Sprintf("%.2f", r.Distance)
		}
		cells[i] = []string{
			r.Node.DisplayLabel(),
			r.Node.Kind.String(),
			fmt.Sprint(r.Node.Layer),
			fmt.Sprint(r.Degree),
			dist,
			fmt.Sprintf("%.0f", r.Ring),
		}
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range cells {
		for i, cell := range row {
			widths[i] = max(widths[i], len([]rune(cell)))
		}
	}

	fmt.Fprintf(w, "Distances from %s (%s)\n\n", pathsFocus.Sprint(from), m)

	var head, sep strings.Builder
	for i, h := range headers {
		fmt.Fprintf(&head, "%-*s  ", widths[i], h)
		sep.WriteString(strings.Repeat("─", widths[i]) + "  ")
	}
	pathsHeader.Fprintln(w, strings.TrimRight(head.String(), " "))
	pathsHeader.Fprintln(w, strings.TrimRight(sep.String(), " "))

	for i, row := range cells {
		var line strings.Builder
		for j, cell := range row {
			fmt.Fprintf(&line, "%-*s  ", widths[j], cell)
		}
		rowColor(rows[i]).Fprintln(w, strings.TrimRight(line.String(), " "))
	}
}

func rowColor(r pathRow) *color.Color {
	switch {
	case math.IsInf(r.Distance, 0):
		return pathsMissing
	case r.Distance == 0:
		return pathsFocus
	case r.Distance <= 2:
		return pathsNear
	default:
		return pathsFar
	}
}

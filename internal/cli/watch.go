package cli

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
	"github.com/TFMV/pivotgraph/render"
	"github.com/TFMV/pivotgraph/session"
)

func (c *CLI) watchCommand() *cobra.Command {
	var focus string

	cmd := &cobra.Command{
		Use:   "watch [dataset]",
		Short: "Watch the layout settle in the terminal",
		Long: `Watch the layout settle in the terminal.

Keys:
  ←/→, tab     move the focus through the nodes
  o            focus the root
  s / x        cycle / clear the thematic (secondary) focus
  m            cycle the metric
  space        pause or resume
  r            scatter the layout again
  q            quit`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return c.runWatch(cmd.Context(), path, focus)
		},
	}

	cmd.Flags().StringVar(&focus, "focus", "", "starting focus (default: config, then root)")
	return cmd
}

func (c *CLI) runWatch(ctx context.Context, path, focus string) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	ds, err := c.loadDataset(cfg, path)
	if err != nil {
		return err
	}

	ticker := &physics.ManualTicker{}
	sess, err := session.New("watch", ds, ticker, c.sessionOptions(cfg))
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.SetMetric(cfg.Metric()); err != nil {
		return err
	}
	if focus == "" {
		focus = cfg.Simulation.Focus
	}
	if focus != "" {
		if err := sess.Focus(focus, ""); err != nil {
			return err
		}
	}

	m := newWatchModel(sess, ticker, time.Second/time.Duration(cfg.Simulation.FPS))
	_, err = tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}

// frameMsg advances the simulation by one tick.
type frameMsg time.Time

func nextFrame(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// watchModel is the bubbletea model of the terminal viewer. The session
// runs on a ManualTicker that the model steps once per frame, so ticks and
// drawing never overlap.
type watchModel struct {
	sess     *session.Session
	ticker   *physics.ManualTicker
	interval time.Duration
	options  *render.OutputOptions

	order     []string
	cursor    int
	thematic  []string
	secondary int

	width, height int
	err           error
}

func newWatchModel(sess *session.Session, ticker *physics.ManualTicker, interval time.Duration) watchModel {
	ds := sess.Dataset()
	m := watchModel{
		sess:      sess,
		ticker:    ticker,
		interval:  interval,
		options:   render.NewDefaultOptions("ascii"),
		secondary: -1,
		width:     100,
		height:    36,
	}
	for _, n := range ds.Nodes {
		m.order = append(m.order, n.ID)
		if n.Kind == models.KindThematic {
			m.thematic = append(m.thematic, n.ID)
		}
	}
	sort.Strings(m.order)
	sort.Strings(m.thematic)

	focus := sess.View().Focus
	for i, id := range m.order {
		if id == focus {
			m.cursor = i
		}
	}
	return m
}

func (m watchModel) Init() tea.Cmd {
	return nextFrame(m.interval)
}

func (m watchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case frameMsg:
		m.ticker.Step(1)
		return m, nextFrame(m.interval)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "right", "l", "tab":
			m.cursor = (m.cursor + 1) % len(m.order)
			m.refocus()
		case "left", "h", "shift+tab":
			m.cursor = (m.cursor - 1 + len(m.order)) % len(m.order)
			m.refocus()
		case "o":
			for i, id := range m.order {
				if id == m.sess.Dataset().Root {
					m.cursor = i
				}
			}
			m.refocus()
		case "s":
			if len(m.thematic) > 0 {
				m.secondary = (m.secondary + 1) % len(m.thematic)
				m.refocus()
			}
		case "x":
			m.secondary = -1
			m.refocus()
		case "m":
			m.err = m.sess.SetMetric(nextMetric(m.sess.View().Metric))
		case " ":
			if m.sess.Running() {
				m.sess.Pause()
			} else {
				m.sess.Resume()
			}
		case "r":
			m.sess.Reset()
		}
	}
	return m, nil
}

func (m *watchModel) refocus() {
	secondary := ""
	if m.secondary >= 0 {
		secondary = m.thematic[m.secondary]
	}
	m.err = m.sess.Focus(m.order[m.cursor], secondary)
}

func nextMetric(cur models.Metric) models.Metric {
	all := models.Metrics()
	for i, mt := range all {
		if mt == cur {
			return all[(i+1)%len(all)]
		}
	}
	return all[0]
}

func (m watchModel) View() string {
	var b strings.Builder

	view := m.sess.View()
	ds := m.sess.Dataset()
	b.WriteString(styleTitle.Render(appName) + styleDim.Render(" · "+ds.Name) + "\n")

	frame := render.FrameOf(m.sess.Layout())
	b.WriteString(render.Grid(frame, m.options, m.width, m.height-4))
	b.WriteString("\n")

	status := []string{
		styleLabel.Render("focus ") + styleValue.Render(label(ds, view.Focus)),
	}
	if view.Secondary != "" {
		status = append(status, styleLabel.Render("theme ")+styleValue.Render(label(ds, view.Secondary)))
	}
	status = append(status,
		styleLabel.Render("metric ")+styleValue.Render(string(view.Metric)),
		styleLabel.Render("tick ")+styleNumber.Render(fmt.Sprint(m.sess.Ticks())),
	)
	if !m.sess.Running() {
		status = append(status, styleWarning.Render("paused"))
	}
	b.WriteString(strings.Join(status, styleDim.Render("  │  ")) + "\n")

	if m.err != nil {
		b.WriteString(styleError.Render(m.err.Error()))
	} else {
		b.WriteString(styleDim.Render("←/→ focus · o root · s/x theme · m metric · space pause · r reset · q quit"))
	}
	return b.String()
}

func label(ds *models.Dataset, id string) string {
	if n, err := ds.FindNodeByID(id); err == nil {
		return n.DisplayLabel()
	}
	return id
}

// Package session binds a dataset, a user's view state and a running
// simulation. Sessions are what the HTTP server and the terminal viewer
// drive.
package session

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
	"github.com/TFMV/pivotgraph/physics"
)

var (
	ErrUnknownMetric = errors.New("unknown metric")
	ErrNoDataset     = errors.New("no dataset")
)

// Options configure every simulation a session creates.
type Options struct {
	Params physics.Params
	// Seed fixes the scatter. Zero seeds from the clock.
	Seed   int64
	Logger *log.Logger
	Hooks  physics.Hooks
}

// DefaultOptions returns the stock physics with a discarded hook set.
func DefaultOptions() Options {
	return Options{Params: physics.DefaultParams(), Hooks: physics.NoopHooks{}}
}

// Session is one perspective over a dataset.
type Session struct {
	ID      string
	Created time.Time

	mu      sync.Mutex
	dataset *models.Dataset
	view    models.ViewState
	sim     *physics.Simulation
	active  map[string]bool
	logger  *log.Logger
}

// New builds the active graph for the default view, focuses the root and
// starts the simulation on src. Zero Params fall back to the stock force
// model.
func New(id string, ds *models.Dataset, src physics.TickSource, opts Options) (*Session, error) {
	if ds == nil {
		return nil, ErrNoDataset
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	params := opts.Params
	if params == (physics.Params{}) {
		params = physics.DefaultParams()
	}
	logger := log.Default()
	if opts.Logger != nil {
		logger = opts.Logger
	}
	logger = logger.With("session", id)

	simOpts := []physics.Option{
		physics.WithParams(params),
		physics.WithRoot(ds.Root),
		physics.WithRand(rand.New(rand.NewSource(seed))),
		physics.WithLogger(logger),
	}
	if opts.Hooks != nil {
		simOpts = append(simOpts, physics.WithHooks(opts.Hooks))
	}

	s := &Session{
		ID:      id,
		Created: time.Now(),
		dataset: ds,
		view:    *models.NewViewState(ds.Root),
		sim:     physics.NewSimulation(src, simOpts...),
		logger:  logger,
	}

	s.rebuildLocked()
	s.sim.SetMetric(s.view.Metric)
	s.sim.Start()
	return s, nil
}

// Dataset returns the session's dataset.
func (s *Session) Dataset() *models.Dataset {
	return s.dataset
}

// View returns a copy of the current view state.
func (s *Session) View() models.ViewState {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Filter.HiddenKinds = append([]models.Kind(nil), v.Filter.HiddenKinds...)
	return v
}

// Focus moves the perspective. An empty primary falls back to the root; an
// empty secondary clears the thematic focus. Both must be in the active
// graph: a node hidden by the filter cannot take the origin.
func (s *Session) Focus(primary, secondary string) error {
	if primary == "" {
		primary = s.dataset.Root
	}
	if _, err := s.dataset.FindNodeByID(primary); err != nil {
		return err
	}
	if secondary != "" {
		if _, err := s.dataset.FindNodeByID(secondary); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range []string{primary, secondary} {
		if id != "" && !s.active[id] {
			return fmt.Errorf("%w: %s is hidden by the filter", models.ErrNodeNotFound, id)
		}
	}
	s.view.Focus = primary
	s.view.Secondary = secondary
	s.sim.SetFocus(primary, secondary)
	return nil
}

// SetMetric switches the scoring metric. Thresholds change with it, so the
// active graph is rebuilt and the layout scattered again.
func (s *Session) SetMetric(m models.Metric) error {
	if !m.Known() {
		return fmt.Errorf("%w: %q", ErrUnknownMetric, m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.Metric = m
	s.view.Filter.Metric = m
	s.sim.SetMetric(m)
	s.rebuildLocked()
	return nil
}

// SetFilter replaces the filter. The filter's metric is overridden by the
// view metric. A focus the filter hides falls back to the root, and a hidden
// secondary is cleared.
func (s *Session) SetFilter(f models.FilterState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Metric = s.view.Metric
	s.view.Filter = f
	s.rebuildLocked()
}

func (s *Session) rebuildLocked() {
	nodes, edges := graph.BuildActive(s.dataset, s.view.Filter)
	s.active = make(map[string]bool, len(nodes))
	for _, n := range nodes {
		s.active[n.ID] = true
	}
	s.sim.SetData(nodes, edges)

	// the root is always active
	if !s.active[s.view.Focus] {
		s.logger.Debug("focus hidden by filter, returning to root", "focus", s.view.Focus)
		s.view.Focus = s.dataset.Root
	}
	if s.view.Secondary != "" && !s.active[s.view.Secondary] {
		s.logger.Debug("secondary focus hidden by filter", "secondary", s.view.Secondary)
		s.view.Secondary = ""
	}
	s.sim.SetFocus(s.view.Focus, s.view.Secondary)
}

// Reset scatters the layout again.
func (s *Session) Reset() {
	s.sim.ResetLayout()
}

// Step runs n synchronous ticks.
func (s *Session) Step(n int) {
	for i := 0; i < n; i++ {
		s.sim.Step()
	}
}

// Pause stops the tick loop; Resume restarts it.
func (s *Session) Pause()  { s.sim.Stop() }
func (s *Session) Resume() { s.sim.Start() }

// Running reports whether the simulation is ticking.
func (s *Session) Running() bool { return s.sim.Running() }

// Ticks returns the number of ticks run so far.
func (s *Session) Ticks() uint64 { return s.sim.Ticks() }

// Nodes returns a snapshot of the simulated nodes.
func (s *Session) Nodes() []physics.SimNode { return s.sim.Nodes() }

// Close destroys the simulation. It is safe to call more than once.
func (s *Session) Close() {
	s.sim.Destroy()
}

// Layout adapts the session to physics.Layout for renderers.
func (s *Session) Layout() physics.Layout {
	return s.sim
}

// Snapshot is a JSON-friendly view of a session. Unreachable distances are
// null.
type Snapshot struct {
	ID        string              `json:"id"`
	Dataset   string              `json:"dataset"`
	Created   time.Time           `json:"created"`
	View      models.ViewState    `json:"view"`
	Running   bool                `json:"running"`
	Ticks     uint64              `json:"ticks"`
	Nodes     []physics.SimNode   `json:"nodes"`
	Edges     []models.Edge       `json:"edges"`
	Distances map[string]*float64 `json:"distances"`
}

// Snapshot captures the current state.
func (s *Session) Snapshot() Snapshot {
	dist := s.sim.Distances()
	out := make(map[string]*float64, len(dist))
	for id, d := range dist {
		if math.IsInf(d, 0) || math.IsNaN(d) {
			out[id] = nil
			continue
		}
		out[id] = models.Score(d)
	}

	return Snapshot{
		ID:        s.ID,
		Dataset:   s.dataset.Name,
		Created:   s.Created,
		View:      s.View(),
		Running:   s.sim.Running(),
		Ticks:     s.sim.Ticks(),
		Nodes:     s.sim.Nodes(),
		Edges:     s.sim.Edges(),
		Distances: out,
	}
}

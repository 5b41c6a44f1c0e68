package physics

import (
	"math/rand"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/TFMV/pivotgraph/models"
)

// Simulation owns the node and edge buffers, the focus and metric, and the
// tick loop. It is the only writer of node state; readers get snapshots.
//
// A Simulation starts Stopped. Start schedules ticks on the TickSource,
// Stop cancels them. Exactly one tick runs at a time.
type Simulation struct {
	mu sync.Mutex

	src     TickSource
	cancel  func()
	gen     uint64
	running bool

	nodes     []SimNode
	edges     []models.Edge
	focus     string
	secondary string
	metric    models.Metric
	dims      Dimensions

	integrator *Integrator
	distances  map[string]float64
	ticks      uint64

	rng    *rand.Rand
	logger *log.Logger
	hooks  Hooks
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithLogger sets the logger. Only debug-level messages are emitted.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulation) { s.logger = l }
}

// WithRand sets the source used to scatter nodes.
func WithRand(r *rand.Rand) Option {
	return func(s *Simulation) { s.rng = r }
}

// WithParams replaces the force model constants.
func WithParams(p Params) Option {
	return func(s *Simulation) { s.integrator.Params = p }
}

// WithRoot sets the dataset root anchor.
func WithRoot(id string) Option {
	return func(s *Simulation) { s.integrator.Root = id }
}

// WithHooks registers event hooks.
func WithHooks(h Hooks) Option {
	return func(s *Simulation) { s.hooks = h }
}

// NewSimulation creates a stopped simulation driven by src.
func NewSimulation(src TickSource, opts ...Option) *Simulation {
	seed := time.Now().UnixNano()
	s := &Simulation{
		src:        src,
		metric:     models.MetricCombined,
		integrator: NewIntegrator(DefaultParams(), "", seed),
		rng:        rand.New(rand.NewSource(seed)),
		logger:     log.Default(),
		hooks:      NoopHooks{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetData replaces the buffers. Positions are scattered uniformly in
// [-InitialSpread, InitialSpread] and velocities zeroed. Only the first node
// with a given id is kept.
func (s *Simulation) SetData(nodes []models.Node, edges []models.Edge) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool, len(nodes))
	s.nodes = make([]SimNode, 0, len(nodes))
	for _, n := range nodes {
		if seen[n.ID] {
			s.logger.Debug("skipping duplicate node", "id", n.ID)
			continue
		}
		seen[n.ID] = true
		s.nodes = append(s.nodes, SimNode{Node: n})
	}
	s.edges = append([]models.Edge(nil), edges...)
	s.distances = nil
	s.scatterLocked()

	s.logger.Debug("simulation data replaced", "nodes", len(s.nodes), "edges", len(s.edges))
	s.hooks.OnReset(ResetData)
}

// SetFocus sets the primary focus and the optional secondary (thematic)
// focus. It takes effect on the next tick.
func (s *Simulation) SetFocus(primary, secondary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.focus = primary
	s.secondary = secondary
	s.logger.Debug("focus changed", "primary", primary, "secondary", secondary)
}

// SetMetric selects the scoring metric used for distances.
func (s *Simulation) SetMetric(m models.Metric) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metric = m
}

// UpdateConfig records the viewport. The force model ignores it.
func (s *Simulation) UpdateConfig(d Dimensions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dims = d
}

// ResetLayout scatters the current nodes again and (re)starts ticking.
func (s *Simulation) ResetLayout() {
	s.mu.Lock()
	s.scatterLocked()
	s.distances = nil
	s.hooks.OnReset(ResetShuffle)
	s.mu.Unlock()

	s.Start()
}

// Start begins ticking. Any previous loop is stopped first.
func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopLocked()
	s.gen++
	gen := s.gen
	s.running = true
	s.cancel = s.src.Schedule(func() { s.tickIf(gen) })
	s.logger.Debug("simulation started", "generation", gen)
}

// Stop cancels the pending tick. No tick runs after Stop returns.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// Destroy stops ticking and clears the buffers. It is safe to call more
// than once.
func (s *Simulation) Destroy() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
	s.nodes = nil
	s.edges = nil
	s.distances = nil
}

// Step runs one tick synchronously, whether or not the loop is running.
func (s *Simulation) Step() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stepLocked()
}

// Running reports whether ticks are scheduled.
func (s *Simulation) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Nodes returns a snapshot of the current nodes.
func (s *Simulation) Nodes() []SimNode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SimNode(nil), s.nodes...)
}

// Edges returns a snapshot of the current edges.
func (s *Simulation) Edges() []models.Edge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Edge(nil), s.edges...)
}

// Distances returns the focus distances computed by the last tick.
func (s *Simulation) Distances() map[string]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]float64, len(s.distances))
	for k, v := range s.distances {
		out[k] = v
	}
	return out
}

// Focus returns the primary and secondary focus ids.
func (s *Simulation) Focus() (primary, secondary string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.focus, s.secondary
}

// Metric returns the active metric.
func (s *Simulation) Metric() models.Metric {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.metric
}

// Dimensions returns the last viewport passed to UpdateConfig.
func (s *Simulation) Dimensions() Dimensions {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dims
}

// Ticks returns the number of ticks run since creation.
func (s *Simulation) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

func (s *Simulation) tickIf(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running || s.gen != gen {
		return
	}
	s.stepLocked()
}

func (s *Simulation) stepLocked() {
	start := time.Now()
	res := s.integrator.Step(s.nodes, s.edges, s.focus, s.secondary, s.metric)
	s.distances = res.Distances
	s.ticks++
	if res.Repaired > 0 {
		s.logger.Debug("reset non-finite node state", "nodes", res.Repaired, "tick", s.ticks)
	}
	s.hooks.OnTick(len(s.nodes), len(s.edges), time.Since(start))
}

func (s *Simulation) stopLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	if s.running {
		s.logger.Debug("simulation stopped", "generation", s.gen)
	}
	s.running = false
	s.gen++
}

func (s *Simulation) scatterLocked() {
	spread := s.integrator.Params.InitialSpread
	for i := range s.nodes {
		n := &s.nodes[i]
		n.X = (s.rng.Float64()*2 - 1) * spread
		n.Y = (s.rng.Float64()*2 - 1) * spread
		n.VX, n.VY = 0, 0
	}
}

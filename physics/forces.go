package physics

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
)

// Integrator advances node state by one tick of the force model.
type Integrator struct {
	Params Params
	// Root is the dataset's universal anchor. It sits at the origin when it
	// is the focus and at (AnchorX, AnchorY) otherwise.
	Root string

	noise opensimplex.Noise
	clock float64
}

// NewIntegrator creates an integrator. seed only feeds the drift noise.
func NewIntegrator(p Params, root string, seed int64) *Integrator {
	return &Integrator{Params: p, Root: root, noise: opensimplex.New(seed)}
}

// TickResult summarises one integration step.
type TickResult struct {
	// Focus is the effective focus: the secondary focus when it is active,
	// otherwise the primary one.
	Focus     string
	Distances map[string]float64
	// Repaired counts nodes whose state had to be reset to stay finite.
	Repaired int
}

// Step applies one tick to nodes in place. A secondary focus that is not
// among nodes is ignored.
func (in *Integrator) Step(nodes []SimNode, edges []models.Edge, focus, secondary string, metric models.Metric) TickResult {
	index := make(map[string]int, len(nodes))
	plain := make([]models.Node, len(nodes))
	for i := range nodes {
		index[nodes[i].ID] = i
		plain[i] = nodes[i].Node
	}

	if _, ok := index[secondary]; !ok {
		secondary = ""
	}
	effective := focus
	if secondary != "" {
		effective = secondary
	}

	dist := DistancesFrom(effective, plain, edges, metric)
	maxDist := maxFinite(dist)
	inner := thematicRing(edges, secondary)

	in.springs(nodes, index, edges, secondary)
	in.gravity(nodes, dist, maxDist, inner, secondary != "")
	in.pin(nodes, index, effective)
	in.separate(nodes)
	in.drift(nodes)
	in.integrate(nodes)
	repaired := repair(nodes)
	in.pin(nodes, index, effective)

	return TickResult{Focus: effective, Distances: dist, Repaired: repaired}
}

func (in *Integrator) springs(nodes []SimNode, index map[string]int, edges []models.Edge, secondary string) {
	p := in.Params
	for _, e := range edges {
		i, okA := index[e.Source]
		j, okB := index[e.Target]
		if !okA || !okB || i == j {
			continue
		}
		a, b := &nodes[i], &nodes[j]

		dx, dy := b.X-a.X, b.Y-a.Y
		d := math.Max(math.Hypot(dx, dy), p.Epsilon)
		nx, ny := dx/d, dy/d

		sp := SpringFor(e.Type)
		k := sp.Stiffness
		if secondary != "" && e.Touches(secondary) {
			k *= p.ThematicStiffness
		}
		f := (d - sp.Length) * k

		a.VX += nx * f
		a.VY += ny * f
		b.VX -= nx * f
		b.VY -= ny * f
	}
}

// gravity nudges each node toward its ring, keeping its current angle.
func (in *Integrator) gravity(nodes []SimNode, dist map[string]float64, maxDist float64, inner map[string]bool, focused bool) {
	p := in.Params
	strength := p.Gravity
	if focused {
		strength = p.GravityFocused
	}

	for i := range nodes {
		n := &nodes[i]
		norm := 1.0
		if d, ok := dist[n.ID]; ok && finite(d) {
			norm = d / maxDist
		}

		r := p.RingInner + p.RingSpan*norm
		if inner[n.ID] {
			r *= p.ThematicRing
		}

		angle := math.Atan2(n.Y, n.X)
		tx, ty := r*math.Cos(angle), r*math.Sin(angle)
		n.VX += (tx - n.X) * strength
		n.VY += (ty - n.Y) * strength
	}
}

func (in *Integrator) pin(nodes []SimNode, index map[string]int, focus string) {
	if i, ok := index[focus]; ok {
		nodes[i].X, nodes[i].Y, nodes[i].VX, nodes[i].VY = 0, 0, 0, 0
	}
	if in.Root == "" || in.Root == focus {
		return
	}
	if i, ok := index[in.Root]; ok {
		nodes[i].X, nodes[i].Y = in.Params.AnchorX, in.Params.AnchorY
		nodes[i].VX, nodes[i].VY = 0, 0
	}
}

// separate runs pairwise repulsion on velocities and collision correction
// on positions.
func (in *Integrator) separate(nodes []SimNode) {
	p := in.Params
	radii := make([]float64, len(nodes))
	for i := range nodes {
		radii[i] = p.CollisionRadius(nodes[i].Node)
	}

	for i := 0; i < len(nodes); i++ {
		a := &nodes[i]
		for j := i + 1; j < len(nodes); j++ {
			b := &nodes[j]

			dx, dy := b.X-a.X, b.Y-a.Y
			d2 := dx*dx + dy*dy
			if d2 == 0 {
				a.VX -= p.Nudge
				b.VX += p.Nudge
				continue
			}
			d := math.Sqrt(d2)
			nx, ny := dx/d, dy/d

			base := p.Repulsion
			if a.Kind.Heavy() || b.Kind.Heavy() {
				base = p.RepulsionHeavy
			}
			f := base / (d2 + p.RepulsionSoftening)
			a.VX -= nx * f
			a.VY -= ny * f
			b.VX += nx * f
			b.VY += ny * f

			if minD := radii[i] + radii[j]; d < minD {
				push := (minD - d) * p.CollisionStrength
				a.X -= nx * push
				a.Y -= ny * push
				b.X += nx * push
				b.Y += ny * push
			}
		}
	}
}

func (in *Integrator) drift(nodes []SimNode) {
	p := in.Params
	if p.Drift == 0 {
		return
	}
	if in.noise == nil {
		in.noise = opensimplex.New(0)
	}

	in.clock += 0.01
	for i := range nodes {
		n := &nodes[i]
		sx, sy := n.X*p.DriftScale, n.Y*p.DriftScale
		n.VX += in.noise.Eval3(sx, sy, in.clock) * p.Drift
		n.VY += in.noise.Eval3(sx+100, sy+100, in.clock) * p.Drift
	}
}

func (in *Integrator) integrate(nodes []SimNode) {
	damping := in.Params.Damping
	for i := range nodes {
		n := &nodes[i]
		n.VX *= damping
		n.VY *= damping
		n.X += n.VX
		n.Y += n.VY
	}
}

func repair(nodes []SimNode) int {
	count := 0
	for i := range nodes {
		if !nodes[i].Finite() {
			nodes[i].X, nodes[i].Y, nodes[i].VX, nodes[i].VY = 0, 0, 0, 0
			count++
		}
	}
	return count
}

// thematicRing returns the secondary focus and its thematic neighbours.
func thematicRing(edges []models.Edge, secondary string) map[string]bool {
	if secondary == "" {
		return nil
	}
	ring := map[string]bool{secondary: true}
	for _, id := range graph.NewAdjacency(edges).Neighbors(secondary, models.EdgeThematic) {
		ring[id] = true
	}
	return ring
}

package physics

import (
	"github.com/TFMV/pivotgraph/models"
)

// Params holds the tuning constants of the force model. The defaults were
// tuned by eye; only boundedness and qualitative ordering are guaranteed.
type Params struct {
	Damping float64 `toml:"damping"`

	// Radial rings: target radius = RingInner + RingSpan * normalized distance.
	RingInner    float64 `toml:"ring_inner"`
	RingSpan     float64 `toml:"ring_span"`
	ThematicRing float64 `toml:"thematic_ring"`

	Gravity        float64 `toml:"gravity"`
	GravityFocused float64 `toml:"gravity_focused"`

	// ThematicStiffness multiplies springs touching the secondary focus.
	ThematicStiffness float64 `toml:"thematic_stiffness"`

	Repulsion          float64 `toml:"repulsion"`
	RepulsionHeavy     float64 `toml:"repulsion_heavy"`
	RepulsionSoftening float64 `toml:"repulsion_softening"`

	CollisionBase     float64 `toml:"collision_base"`
	CollisionMax      float64 `toml:"collision_max"`
	CollisionPerRune  float64 `toml:"collision_per_rune"`
	CollisionStrength float64 `toml:"collision_strength"`

	// Root anchor used while the root is not the focus.
	AnchorX float64 `toml:"anchor_x"`
	AnchorY float64 `toml:"anchor_y"`

	InitialSpread float64 `toml:"initial_spread"`
	Nudge         float64 `toml:"nudge"`
	Epsilon       float64 `toml:"epsilon"`

	// Drift adds simplex noise to velocities. Zero disables it.
	Drift      float64 `toml:"drift"`
	DriftScale float64 `toml:"drift_scale"`
}

// DefaultParams returns the stock force model.
func DefaultParams() Params {
	return Params{
		Damping:            0.86,
		RingInner:          80,
		RingSpan:           620,
		ThematicRing:       0.55,
		Gravity:            0.02,
		GravityFocused:     0.03,
		ThematicStiffness:  2.3,
		Repulsion:          1600,
		RepulsionHeavy:     3200,
		RepulsionSoftening: 10,
		CollisionBase:      15,
		CollisionMax:       110,
		CollisionPerRune:   3.0,
		CollisionStrength:  0.05,
		AnchorX:            -300,
		AnchorY:            0,
		InitialSpread:      150,
		Nudge:              0.5,
		Epsilon:            0.01,
		Drift:              0,
		DriftScale:         0.01,
	}
}

// Spring is the rest length and stiffness of an edge type.
type Spring struct {
	Length    float64
	Stiffness float64
}

// SpringFor returns the spring of an edge type. Unknown types get the
// default spring.
func SpringFor(t models.EdgeType) Spring {
	switch t {
	case models.EdgePrimary:
		return Spring{Length: 110, Stiffness: 0.05}
	case models.EdgeCrossReference:
		return Spring{Length: 160, Stiffness: 0.01}
	case models.EdgeThematic:
		return Spring{Length: 250, Stiffness: 0.008}
	case models.EdgeArchetypal:
		return Spring{Length: 280, Stiffness: 0.005}
	default:
		return Spring{Length: 140, Stiffness: 0.03}
	}
}

// CollisionRadius grows with label length so long labels do not overlap.
func (p Params) CollisionRadius(n models.Node) float64 {
	grow := float64(labelRunes(n)) * p.CollisionPerRune
	if grow > p.CollisionMax {
		grow = p.CollisionMax
	}
	return p.CollisionBase + grow
}

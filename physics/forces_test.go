package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/pivotgraph/models"
)

func simNode(id string, x, y float64) SimNode {
	return SimNode{Node: models.Node{ID: id, Label: id}, X: x, Y: y}
}

func indexOf(nodes []SimNode) map[string]int {
	idx := make(map[string]int, len(nodes))
	for i, n := range nodes {
		idx[n.ID] = i
	}
	return idx
}

func TestSpringForTypes(t *testing.T) {
	cases := []struct {
		typ       models.EdgeType
		length    float64
		stiffness float64
	}{
		{models.EdgePrimary, 110, 0.05},
		{models.EdgeCrossReference, 160, 0.01},
		{models.EdgeThematic, 250, 0.008},
		{models.EdgeArchetypal, 280, 0.005},
		{"other", 140, 0.03},
	}
	for _, tc := range cases {
		sp := SpringFor(tc.typ)
		assert.Equal(t, tc.length, sp.Length, tc.typ)
		assert.Equal(t, tc.stiffness, sp.Stiffness, tc.typ)
	}
}

func TestCollisionRadius(t *testing.T) {
	p := DefaultParams()
	assert.Equal(t, 18.0, p.CollisionRadius(models.Node{Label: "A"}))
	assert.Equal(t, 15.0+3*4, p.CollisionRadius(models.Node{Label: "Ωmeg"}))
	long := models.Node{Label: "a label that goes on for quite a while, well past the cap"}
	assert.Equal(t, 125.0, p.CollisionRadius(long))
}

func TestSpringsPullTowardNaturalLength(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "", 1)
	nodes := []SimNode{simNode("a", 0, 0), simNode("b", 200, 0)}
	edges := []models.Edge{models.NewEdge("a", "b", models.EdgePrimary)}

	in.springs(nodes, indexOf(nodes), edges, "")
	assert.InDelta(t, 4.5, nodes[0].VX, 1e-9)
	assert.InDelta(t, -4.5, nodes[1].VX, 1e-9)
	assert.Zero(t, nodes[0].VY)

	nodes = []SimNode{simNode("a", 0, 0), simNode("b", 200, 0)}
	in.springs(nodes, indexOf(nodes), edges, "b")
	assert.InDelta(t, 4.5*2.3, nodes[0].VX, 1e-9)

	// compressed springs push apart
	nodes = []SimNode{simNode("a", 0, 0), simNode("b", 10, 0)}
	in.springs(nodes, indexOf(nodes), edges, "")
	assert.Less(t, nodes[0].VX, 0.0)
	assert.Greater(t, nodes[1].VX, 0.0)
}

func TestSpringsSkipMissingEndpoints(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "", 1)
	nodes := []SimNode{simNode("a", 0, 0)}
	edges := []models.Edge{
		models.NewEdge("a", "ghost", models.EdgePrimary),
		models.NewEdge("a", "a", models.EdgePrimary),
	}
	in.springs(nodes, indexOf(nodes), edges, "")
	assert.Zero(t, nodes[0].VX)
	assert.Zero(t, nodes[0].VY)
}

func TestGravityTargetsRing(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "", 1)

	nodes := []SimNode{simNode("n", 10, 0)}
	in.gravity(nodes, map[string]float64{"n": 1}, 1, nil, false)
	assert.InDelta(t, (700-10)*0.02, nodes[0].VX, 1e-9)
	assert.InDelta(t, 0, nodes[0].VY, 1e-9)

	nodes = []SimNode{simNode("n", 10, 0)}
	in.gravity(nodes, map[string]float64{"n": 1}, 1, map[string]bool{"n": true}, true)
	assert.InDelta(t, (385-10)*0.03, nodes[0].VX, 1e-9)

	// unreachable nodes go to the outer ring
	nodes = []SimNode{simNode("n", 0, 10)}
	in.gravity(nodes, map[string]float64{"n": math.Inf(1)}, 4, nil, false)
	assert.InDelta(t, (700-10)*0.02, nodes[0].VY, 1e-9)

	nodes = []SimNode{simNode("n", 100, 0)}
	in.gravity(nodes, map[string]float64{"n": 0}, 4, nil, false)
	assert.InDelta(t, (80-100)*0.02, nodes[0].VX, 1e-9)
}

func TestSeparateRepelsAndResolvesOverlap(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "", 1)
	nodes := []SimNode{simNode("A", 0, 0), simNode("B", 10, 0)}

	in.separate(nodes)
	f := 1600.0 / (100 + 10)
	assert.InDelta(t, -f, nodes[0].VX, 1e-9)
	assert.InDelta(t, f, nodes[1].VX, 1e-9)
	assert.InDelta(t, -1.3, nodes[0].X, 1e-9)
	assert.InDelta(t, 11.3, nodes[1].X, 1e-9)

	heavy := []SimNode{simNode("A", 0, 0), simNode("B", 10, 0)}
	heavy[1].Kind = models.KindArchetype
	in.separate(heavy)
	assert.InDelta(t, -2*f, heavy[0].VX, 1e-9)
}

func TestSeparateNudgesCoincidentNodes(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "", 1)
	nodes := []SimNode{simNode("a", 5, 5), simNode("b", 5, 5)}

	res := in.Step(nodes, nil, "", "", models.MetricCombined)
	assert.Zero(t, res.Repaired)
	assert.NotEqual(t, nodes[0].X, nodes[1].X)
	for _, n := range nodes {
		assert.True(t, n.Finite())
	}
}

func TestStepPinsFocusAndRoot(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "root", 1)
	nodes := []SimNode{simNode("root", 40, 40), simNode("f", 12, -7), simNode("x", 100, 100)}
	edges := []models.Edge{
		models.NewEdge("root", "f", models.EdgePrimary),
		models.NewEdge("f", "x", models.EdgePrimary),
	}

	res := in.Step(nodes, edges, "f", "", models.MetricCombined)
	assert.Equal(t, "f", res.Focus)
	assert.Equal(t, 0.0, nodes[1].X)
	assert.Equal(t, 0.0, nodes[1].Y)
	assert.Equal(t, -300.0, nodes[0].X)
	assert.Equal(t, 0.0, nodes[0].Y)

	res = in.Step(nodes, edges, "root", "", models.MetricCombined)
	assert.Equal(t, "root", res.Focus)
	assert.Equal(t, 0.0, nodes[0].X)
	assert.Equal(t, 0.0, nodes[0].Y)
}

func TestStepSecondaryFocus(t *testing.T) {
	in := NewIntegrator(DefaultParams(), "root", 1)
	nodes := []SimNode{simNode("root", 0, 0), simNode("t", 50, 50), simNode("u", -80, 20)}
	edges := []models.Edge{
		models.NewEdge("root", "t", models.EdgeThematic),
		models.NewEdge("t", "u", models.EdgeThematic),
	}

	res := in.Step(nodes, edges, "root", "t", models.MetricCombined)
	assert.Equal(t, "t", res.Focus)
	assert.Equal(t, 0.0, nodes[1].X)
	assert.Equal(t, 0.0, nodes[1].Y)
	assert.Equal(t, -300.0, nodes[0].X)
	assert.Equal(t, 0.0, res.Distances["t"])

	// an absent secondary falls back to the primary focus
	res = in.Step(nodes, edges, "root", "missing", models.MetricCombined)
	assert.Equal(t, "root", res.Focus)
	assert.Equal(t, 0.0, nodes[0].X)
}

func TestThematicRing(t *testing.T) {
	edges := []models.Edge{
		models.NewEdge("s", "a", models.EdgeThematic),
		models.NewEdge("b", "s", models.EdgeThematic),
		models.NewEdge("s", "c", models.EdgePrimary),
	}
	assert.Nil(t, thematicRing(edges, ""))
	assert.Equal(t, map[string]bool{"s": true, "a": true, "b": true}, thematicRing(edges, "s"))
}

func TestRepairResetsNonFinite(t *testing.T) {
	nodes := []SimNode{
		{Node: models.Node{ID: "a"}, X: math.NaN(), Y: 3, VX: 1},
		{Node: models.Node{ID: "b"}, X: 1, Y: 2, VX: math.Inf(1)},
		{Node: models.Node{ID: "c"}, X: 1, Y: 2},
	}
	assert.Equal(t, 2, repair(nodes))
	assert.Equal(t, SimNode{Node: models.Node{ID: "a"}}, nodes[0])
	assert.Equal(t, SimNode{Node: models.Node{ID: "b"}}, nodes[1])
	assert.Equal(t, 1.0, nodes[2].X)
}

func TestStepStaysFiniteOnRandomGraphs(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	nodes, edges := randomGraph(rng, 40, 60)

	p := DefaultParams()
	p.Drift = 0.4
	in := NewIntegrator(p, "n0", 3)

	sim := make([]SimNode, len(nodes))
	for i, n := range nodes {
		// half of the nodes start stacked on top of each other
		if i%2 == 0 {
			sim[i] = SimNode{Node: n, X: 1, Y: 1}
		} else {
			sim[i] = SimNode{Node: n, X: rng.Float64()*300 - 150, Y: rng.Float64()*300 - 150}
		}
	}

	metrics := append(models.Metrics(), "bogus")
	for tick := 0; tick < 300; tick++ {
		secondary := ""
		if tick > 100 {
			secondary = "n7"
		}
		in.Step(sim, edges, "n3", secondary, metrics[tick%len(metrics)])
		for _, n := range sim {
			require.True(t, n.Finite(), "tick %d node %s", tick, n.ID)
		}
	}
}

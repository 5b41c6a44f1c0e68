package physics

import (
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
)

func nodesOf(ids ...string) []models.Node {
	out := make([]models.Node, len(ids))
	for i, id := range ids {
		out[i] = models.Node{ID: id, Label: id}
	}
	return out
}

func TestDistancesFromBasic(t *testing.T) {
	nodes := nodesOf("a", "b", "c", "d", "e")
	edges := []models.Edge{
		models.NewEdge("a", "b", models.EdgePrimary),
		models.NewEdge("b", "c", models.EdgeCrossReference).WithScores(100, 100, 100),
		models.NewEdge("a", "c", models.EdgeCrossReference).WithScores(0, 0, 0),
		models.NewEdge("d", "e", models.EdgePrimary),
	}

	dist := DistancesFrom("a", nodes, edges, models.MetricCombined)
	require.Len(t, dist, 5)
	assert.Equal(t, 0.0, dist["a"])
	assert.InDelta(t, 1.0, dist["b"], 1e-9)
	assert.InDelta(t, 2.0, dist["c"], 1e-9)
	assert.True(t, math.IsInf(dist["d"], 1))
	assert.True(t, math.IsInf(dist["e"], 1))
}

func TestDistancesFromUnknownRoot(t *testing.T) {
	nodes := nodesOf("a", "b")
	edges := []models.Edge{models.NewEdge("a", "b", models.EdgePrimary)}

	dist := DistancesFrom("nope", nodes, edges, models.MetricCombined)
	require.Len(t, dist, 2)
	for id, d := range dist {
		assert.True(t, math.IsInf(d, 1), id)
	}

	dist = DistancesFrom("", nodes, edges, models.MetricCombined)
	assert.True(t, math.IsInf(dist["a"], 1))
}

func TestDistancesFromParallelEdgesKeepCheapest(t *testing.T) {
	nodes := nodesOf("a", "b")
	cheap := models.NewEdge("a", "b", models.EdgePrimary)
	dear := models.NewEdge("b", "a", models.EdgeThematic).WithScores(0, 0, 0)

	for _, edges := range [][]models.Edge{{cheap, dear}, {dear, cheap}} {
		dist := DistancesFrom("a", nodes, edges, models.MetricCombined)
		assert.InDelta(t, 1.0, dist["b"], 1e-9)
	}
}

func TestDistancesFromToleratesBadEdges(t *testing.T) {
	nodes := append(nodesOf("a", "b"), models.Node{ID: "a", Label: "dup"})
	edges := []models.Edge{
		models.NewEdge("a", "ghost", models.EdgePrimary),
		models.NewEdge("a", "a", models.EdgePrimary),
		models.NewEdge("ghost", "b", models.EdgePrimary),
	}

	dist := DistancesFrom("a", nodes, edges, models.MetricCombined)
	assert.Len(t, dist, 2)
	assert.Equal(t, 0.0, dist["a"])
	assert.True(t, math.IsInf(dist["b"], 1))
	_, hasGhost := dist["ghost"]
	assert.False(t, hasGhost)
}

func TestDistancesFromMetricChangesWeights(t *testing.T) {
	nodes := nodesOf("a", "b")
	edges := []models.Edge{models.NewEdge("a", "b", models.EdgeCrossReference).WithScores(100, 0, 0)}

	meaning := DistancesFrom("a", nodes, edges, models.MetricMeaning)
	influence := DistancesFrom("a", nodes, edges, models.MetricInfluence)
	assert.InDelta(t, 1.0, meaning["b"], 1e-9)
	assert.InDelta(t, 2.8, influence["b"], 1e-9)
}

func randomGraph(rng *rand.Rand, n, m int) ([]models.Node, []models.Edge) {
	kinds := models.Kinds()
	types := []models.EdgeType{
		models.EdgePrimary, models.EdgeCrossReference, models.EdgeThematic, models.EdgeArchetypal, "mystery",
	}

	nodes := make([]models.Node, n)
	for i := range nodes {
		label := fmt.Sprintf("node-%d", i)
		for j := rng.Intn(4); j > 0; j-- {
			label += " long label"
		}
		nodes[i] = models.Node{ID: fmt.Sprintf("n%d", i), Label: label, Kind: kinds[rng.Intn(len(kinds))]}
	}

	edges := make([]models.Edge, m)
	for i := range edges {
		a, b := rng.Intn(n), rng.Intn(n)
		edges[i] = models.NewEdge(nodes[a].ID, nodes[b].ID, types[rng.Intn(len(types))]).
			WithScores(rng.Float64()*100, rng.Float64()*100, rng.Float64()*100)
	}
	return nodes, edges
}

func TestDistancesFromTriangleInequality(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	nodes, edges := randomGraph(rng, 50, 90)

	for _, metric := range append(models.Metrics(), "unknown") {
		dist := DistancesFrom("n0", nodes, edges, metric)
		assert.Equal(t, 0.0, dist["n0"])

		for _, e := range edges {
			if e.Source == e.Target {
				continue
			}
			w := graph.Weight(e, metric)
			du, dv := dist[e.Source], dist[e.Target]
			assert.GreaterOrEqual(t, du, 0.0)
			assert.GreaterOrEqual(t, dv, 0.0)
			if !math.IsInf(du, 1) {
				assert.LessOrEqual(t, dv, du+w+1e-9, "%s -> %s", e.Source, e.Target)
			}
			if !math.IsInf(dv, 1) {
				assert.LessOrEqual(t, du, dv+w+1e-9, "%s -> %s", e.Target, e.Source)
			}
		}
	}
}

func TestMaxFinite(t *testing.T) {
	inf := math.Inf(1)
	assert.Equal(t, 1.0, maxFinite(map[string]float64{}))
	assert.Equal(t, 1.0, maxFinite(map[string]float64{"a": 0, "b": inf}))
	assert.Equal(t, 3.5, maxFinite(map[string]float64{"a": 0, "b": 3.5, "c": inf, "d": 2}))
}

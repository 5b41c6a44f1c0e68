package physics

import (
	"math"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"

	"github.com/TFMV/pivotgraph/graph"
	"github.com/TFMV/pivotgraph/models"
)

// DistancesFrom returns the weighted shortest-path distance from root to
// every node. Edges are undirected, weighted by graph.Weight under metric.
// Unreachable nodes, and every node when root is unknown, get +Inf.
func DistancesFrom(root string, nodes []models.Node, edges []models.Edge, metric models.Metric) map[string]float64 {
	dist := make(map[string]float64, len(nodes))
	ids := make(map[string]int64, len(nodes))

	g := simple.NewWeightedUndirectedGraph(0, math.Inf(1))
	for _, n := range nodes {
		dist[n.ID] = math.Inf(1)
		if _, dup := ids[n.ID]; dup {
			continue
		}
		id := int64(len(ids))
		ids[n.ID] = id
		g.AddNode(simple.Node(id))
	}

	for _, e := range edges {
		u, okU := ids[e.Source]
		v, okV := ids[e.Target]
		if !okU || !okV || u == v {
			continue
		}
		w := graph.Weight(e, metric)
		// parallel edges: the cheapest one wins
		if cur, ok := g.Weight(u, v); ok && cur <= w {
			continue
		}
		g.SetWeightedEdge(g.NewWeightedEdge(simple.Node(u), simple.Node(v), w))
	}

	src, ok := ids[root]
	if !ok {
		return dist
	}

	shortest := path.DijkstraFrom(simple.Node(src), g)
	for nodeID, id := range ids {
		dist[nodeID] = shortest.WeightTo(id)
	}
	return dist
}

// maxFinite returns the largest finite distance, or 1 when there is none
// or it is zero.
func maxFinite(dist map[string]float64) float64 {
	top := 0.0
	for _, d := range dist {
		if finite(d) && d > top {
			top = d
		}
	}
	if top <= 0 {
		return 1
	}
	return top
}
